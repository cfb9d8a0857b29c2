package engine

import (
	"fmt"
	"sort"
)

// Entry signals and confidence labels derived from the day-trade score.
const (
	SignalBuy   = "BUY"
	SignalWatch = "WATCH"

	ConfidenceHigh   = "HIGH"
	ConfidenceMedium = "MEDIUM"
	ConfidenceLow    = "LOW"
)

// TradingSignal is the trading-bot shaped view of one ranked contract.
type TradingSignal struct {
	Symbol      string             `json:"symbol"`
	Underlying  string             `json:"underlying"`
	Strike      float64            `json:"strike"`
	Kind        OptionKind         `json:"option_type"`
	Premium     float64            `json:"premium"`
	Delta       float64            `json:"delta"`
	Score       float64            `json:"score"`
	ProbProfit  float64            `json:"prob_profit"`
	Breakeven   float64            `json:"breakeven"`
	MaxLoss     float64            `json:"max_loss"`
	RiskReward  map[string]float64 `json:"move_risk_reward"`
	EntrySignal string             `json:"entry_signal"`
	Confidence  string             `json:"confidence"`
}

// TradingSignals shapes the top contracts per side into actionable signals:
// BUY above a 0.3 score, WATCH otherwise, with confidence graded at
// 0.4/0.25.
func (r *AnalysisResult) TradingSignals(topPerSide int) []TradingSignal {
	if topPerSide <= 0 {
		topPerSide = 5
	}

	signals := make([]TradingSignal, 0, topPerSide*2)
	for _, kind := range []OptionKind{Call, Put} {
		count := 0
		for _, c := range r.Contracts {
			if c.Kind != kind {
				continue
			}

			rr := make(map[string]float64, len(c.Moves))
			for _, m := range c.Moves {
				rr[m.Name] = m.RiskReward
			}

			letter := "C"
			if kind == Put {
				letter = "P"
			}

			entry := SignalWatch
			if c.Score > 0.3 {
				entry = SignalBuy
			}

			confidence := ConfidenceLow
			switch {
			case c.Score > 0.4:
				confidence = ConfidenceHigh
			case c.Score > 0.25:
				confidence = ConfidenceMedium
			}

			signals = append(signals, TradingSignal{
				Symbol:      fmt.Sprintf("%s%.0f%s", c.Underlying, c.Strike, letter),
				Underlying:  c.Underlying,
				Strike:      c.Strike,
				Kind:        c.Kind,
				Premium:     c.Premium,
				Delta:       c.Greeks.Delta,
				Score:       c.Score,
				ProbProfit:  c.Probability.ProbProfit,
				Breakeven:   c.Probability.Breakeven,
				MaxLoss:     c.MaxLoss,
				RiskReward:  rr,
				EntrySignal: entry,
				Confidence:  confidence,
			})

			count++
			if count == topPerSide {
				break
			}
		}
	}
	return signals
}

// BacktestRankings lists the top strikes under several simple orderings,
// shaped for backtesting universes.
type BacktestRankings struct {
	HighDelta     []float64 `json:"high_delta"`
	BestRR        []float64 `json:"best_rr"`
	DayTradeScore []float64 `json:"day_trade_score"`
	CheapOptions  []float64 `json:"cheap_options"`
}

// BacktestRankings ranks the result's contracts by delta, primary-move
// risk/reward, composite score, and cheapness.
func (r *AnalysisResult) BacktestRankings(topN int) BacktestRankings {
	if topN <= 0 {
		topN = 10
	}

	return BacktestRankings{
		HighDelta: rankStrikes(r.Contracts, topN, func(a, b RankedContract) bool {
			return a.Greeks.Delta > b.Greeks.Delta
		}),
		BestRR: rankStrikes(r.Contracts, topN, func(a, b RankedContract) bool {
			return a.primaryRiskReward(r.Summary.PrimaryMove) > b.primaryRiskReward(r.Summary.PrimaryMove)
		}),
		DayTradeScore: rankStrikes(r.Contracts, topN, func(a, b RankedContract) bool {
			return a.Score > b.Score
		}),
		CheapOptions: rankStrikes(r.Contracts, topN, func(a, b RankedContract) bool {
			return a.Premium < b.Premium
		}),
	}
}

func rankStrikes(contracts []RankedContract, topN int, less func(a, b RankedContract) bool) []float64 {
	ordered := make([]RankedContract, len(contracts))
	copy(ordered, contracts)
	sort.SliceStable(ordered, func(i, j int) bool { return less(ordered[i], ordered[j]) })

	if len(ordered) > topN {
		ordered = ordered[:topN]
	}
	strikes := make([]float64, len(ordered))
	for i, c := range ordered {
		strikes[i] = c.Strike
	}
	return strikes
}

// StrategyRanked pairs a contract with its strategy-specific score and the
// liquidity estimate that fed it.
type StrategyRanked struct {
	Rank      int               `json:"rank"`
	Score     float64           `json:"score"`
	Contract  RankedContract    `json:"contract"`
	Liquidity LiquidityEstimate `json:"liquidity"`
}

// RankByStrategy re-scores the result's contracts for a specific strategy
// and returns the top maxContracts entries above the minimum liquidity
// score (0-1 scale). The day-trade strategy keeps the composite score the
// contracts already carry.
func RankByStrategy(result *AnalysisResult, strategy Strategy, maxContracts int, minLiquidity float64) ([]StrategyRanked, error) {
	if !strategy.Valid() {
		return nil, &InvalidInputError{Field: "strategy", Message: "unknown strategy"}
	}
	if maxContracts <= 0 {
		maxContracts = 5
	}

	spot := result.Summary.Spot
	dte := result.Summary.DTE

	ranked := make([]StrategyRanked, 0, len(result.Contracts))
	for _, c := range result.Contracts {
		liq := EstimateLiquidity(spot, c.Strike, c.Kind, dte)
		if liq.Score < minLiquidity {
			continue
		}

		score := c.Score
		if strategy != StrategyDayTrade {
			score = StrategyScore(strategy, c.baseline, spot, c.Strike, liq)
		}

		ranked = append(ranked, StrategyRanked{Score: score, Contract: c, Liquidity: liq})
	}

	sort.SliceStable(ranked, func(i, j int) bool { return ranked[i].Score > ranked[j].Score })
	if len(ranked) > maxContracts {
		ranked = ranked[:maxContracts]
	}
	for i := range ranked {
		ranked[i].Rank = i + 1
	}
	return ranked, nil
}
