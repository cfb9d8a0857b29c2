package engine

import "math"

// Strategy selects the scoring variant used when ranking contracts.
type Strategy string

const (
	StrategyDayTrade   Strategy = "day_trade"
	StrategyGammaScalp Strategy = "gamma_scalp"
	StrategyThetaDecay Strategy = "theta_decay"
	StrategyMomentum   Strategy = "momentum"
	StrategyHedge      Strategy = "hedge"
)

// Valid reports whether the strategy is a known scoring variant.
func (s Strategy) Valid() bool {
	switch s {
	case StrategyDayTrade, StrategyGammaScalp, StrategyThetaDecay, StrategyMomentum, StrategyHedge:
		return true
	}
	return false
}

// DayTradeScore is the composite ranking score: delta exposure weighted
// 0.4, risk/reward at the primary scenario move 0.3, affordability 0.2, and
// probability of finishing in the money 0.1.
func DayTradeScore(g Greeks, primaryRiskReward float64, prob ProbabilityResult) float64 {
	return math.Abs(g.Delta)*0.4 +
		primaryRiskReward*0.3 +
		1/(g.Price+1)*0.2 +
		prob.ProbITM*0.1
}

// Liquidity tiers derived from the 0-1 liquidity score.
const (
	LiquidityHigh    = "HIGH"
	LiquidityMedium  = "MEDIUM"
	LiquidityLow     = "LOW"
	LiquidityVeryLow = "VERY_LOW"
)

// LiquidityEstimate approximates contract liquidity from moneyness and
// days-to-expiry when no open-interest data is available. Score is on
// [0, 1]; contracts near the money with 7-45 DTE score highest.
type LiquidityEstimate struct {
	Score float64 `json:"score"`
	Tier  string  `json:"tier"`
}

// EstimateLiquidity scores how actively a contract is likely to trade.
func EstimateLiquidity(spot, strike float64, kind OptionKind, dte int) LiquidityEstimate {
	moneyness := strike / spot
	if kind == Put {
		moneyness = spot / strike
	}

	atmFactor := math.Max(0.1, 1-math.Abs(moneyness-1)*2)

	var dteFactor float64
	switch {
	case dte >= 7 && dte <= 45:
		dteFactor = 1.0
	case dte < 7:
		dteFactor = 0.3 + float64(dte)/7*0.7
	default:
		dteFactor = math.Max(0.1, 1-float64(dte-45)/60)
	}

	score := atmFactor * dteFactor
	return LiquidityEstimate{Score: score, Tier: liquidityTier(score)}
}

func liquidityTier(score float64) string {
	switch {
	case score > 0.8:
		return LiquidityHigh
	case score > 0.5:
		return LiquidityMedium
	case score > 0.2:
		return LiquidityLow
	default:
		return LiquidityVeryLow
	}
}

// StrategyScore computes the strategy-specific ranking score for a
// contract. Each variant starts from the liquidity score mapped onto a 0-10
// base and re-weights toward the Greek that drives the strategy: gamma for
// scalping, theta for decay collection, delta for momentum, vega for
// hedging. The day-trade strategy has its own composite and takes the
// primary-move risk/reward and probability data instead.
func StrategyScore(strategy Strategy, g Greeks, spot, strike float64, liquidity LiquidityEstimate) float64 {
	base := liquidity.Score * 10
	distance := math.Abs(strike-spot) / spot

	switch strategy {
	case StrategyGammaScalp:
		return base + math.Abs(g.Gamma)*100 - distance*10
	case StrategyThetaDecay:
		return base + math.Abs(g.Theta)*10 + math.Min(5, distance*20)
	case StrategyMomentum:
		return base + math.Abs(g.Delta)*10
	case StrategyHedge:
		return base + math.Abs(g.Vega)*5
	}
	return base
}
