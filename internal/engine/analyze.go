package engine

import (
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/google/uuid"
)

// ScenarioMove is one named dollar move of the underlying to evaluate every
// contract against.
type ScenarioMove struct {
	Name string  `json:"name"`
	Size float64 `json:"size"`
}

// ScenarioSpec is the ordered list of moves for an analysis run. Primary
// names the move whose risk/reward feeds the day-trade score; when empty,
// the first declared move is primary. Ordering is explicit here so the
// scoring formula never depends on map iteration order.
type ScenarioSpec struct {
	Moves   []ScenarioMove `json:"moves"`
	Primary string         `json:"primary,omitempty"`
}

// Validate checks the scenario list is non-empty, uniquely named, and that
// Primary (when set) names a declared move.
func (s ScenarioSpec) Validate() error {
	if len(s.Moves) == 0 {
		return &InvalidInputError{Field: "scenarios", Message: "at least one move is required"}
	}

	seen := make(map[string]bool, len(s.Moves))
	for _, m := range s.Moves {
		if m.Name == "" {
			return &InvalidInputError{Field: "scenarios", Message: "move name must not be empty"}
		}
		if seen[m.Name] {
			return &InvalidInputError{Field: "scenarios", Message: fmt.Sprintf("duplicate move %q", m.Name)}
		}
		seen[m.Name] = true
	}

	if s.Primary != "" && !seen[s.Primary] {
		return &InvalidInputError{Field: "scenarios", Message: fmt.Sprintf("primary move %q is not declared", s.Primary)}
	}
	return nil
}

// PrimaryMove returns the designated primary move, defaulting to the first
// declared one.
func (s ScenarioSpec) PrimaryMove() ScenarioMove {
	if s.Primary != "" {
		for _, m := range s.Moves {
			if m.Name == s.Primary {
				return m
			}
		}
	}
	return s.Moves[0]
}

// DefaultScenarios mirrors the stock SPY scenario ladder.
func DefaultScenarios() ScenarioSpec {
	return ScenarioSpec{
		Moves: []ScenarioMove{
			{Name: "target", Size: 2.0},
			{Name: "conservative", Size: 1.0},
			{Name: "aggressive", Size: 3.0},
		},
		Primary: "target",
	}
}

// PricingMode selects whether ranked rows quote the theoretical price or
// the estimated mark.
type PricingMode string

const (
	PriceTheoretical PricingMode = "theoretical"
	PriceMark        PricingMode = "mark"
)

// PremiumBand filters ranked contracts to a premium range.
type PremiumBand struct {
	Min float64 `json:"min"`
	Max float64 `json:"max"`
}

// AnalysisRequest carries every input of a full analysis run explicitly.
// Nothing here is ambient state: two goroutines can run analyses with
// different scalings or scenarios concurrently without interference.
type AnalysisRequest struct {
	Underlying      string
	Spot            float64
	Expiry          float64 // years
	Rate            float64
	Vol             float64
	DTE             int
	StrikeIncrement float64
	StrikeWidth     float64
	Scenarios       ScenarioSpec
	Scaling         ScalingMode
	Premium         PremiumBand
	Pricing         PricingMode
	PriceAdjustment float64
	LiquidityFactor float64
}

func (r AnalysisRequest) validate() error {
	if r.Spot <= 0 {
		return &InvalidInputError{Field: "spot", Message: "must be positive"}
	}
	if r.Vol <= 0 && r.Expiry > 0 {
		return &InvalidInputError{Field: "vol", Message: "required for unexpired contracts"}
	}
	if r.StrikeIncrement <= 0 {
		return &InvalidInputError{Field: "strike_increment", Message: "must be positive"}
	}
	if r.StrikeWidth <= 0 {
		return &InvalidInputError{Field: "strike_width", Message: "must be positive"}
	}
	if r.DTE < 0 {
		return &InvalidInputError{Field: "dte", Message: "must not be negative"}
	}
	if r.Scaling != "" && !r.Scaling.Valid() {
		return &InvalidInputError{Field: "scaling", Message: "must be daily, per_minute, or annual"}
	}
	if r.Pricing != "" && r.Pricing != PriceTheoretical && r.Pricing != PriceMark {
		return &InvalidInputError{Field: "pricing", Message: "must be theoretical or mark"}
	}
	if r.Premium.Max > 0 && r.Premium.Min > r.Premium.Max {
		return &InvalidInputError{Field: "premium", Message: "min must not exceed max"}
	}
	return r.Scenarios.Validate()
}

// MoveOutcome is the per-contract effect of one scenario move.
type MoveOutcome struct {
	Name        string  `json:"name"`
	Size        float64 `json:"size"`
	PriceChange float64 `json:"price_change"`
	RiskReward  float64 `json:"risk_reward"`
}

// RankedContract is one fully evaluated row of the analysis table. It is
// immutable once produced; the aggregator only sorts and filters.
type RankedContract struct {
	Underlying  string            `json:"underlying"`
	Strike      float64           `json:"strike"`
	Kind        OptionKind        `json:"kind"`
	Premium     float64           `json:"premium"`
	Theoretical float64           `json:"theoretical_price"`
	Moneyness   float64           `json:"moneyness"`
	Greeks      Greeks            `json:"greeks"`
	Probability ProbabilityResult `json:"probability"`
	Moves       []MoveOutcome     `json:"moves"`
	Mark        *MarkPrice        `json:"mark,omitempty"`
	MaxLoss     float64           `json:"max_loss"`
	Score       float64           `json:"score"`
	Rank        int               `json:"rank"`

	// baseline keeps the daily-basis Greeks before display scaling.
	// All scoring reads from here; Greeks above is presentation only.
	baseline Greeks
}

// primaryRiskReward returns the risk/reward of the named move, falling back
// to the first outcome.
func (c RankedContract) primaryRiskReward(name string) float64 {
	for _, m := range c.Moves {
		if m.Name == name {
			return m.RiskReward
		}
	}
	if len(c.Moves) > 0 {
		return c.Moves[0].RiskReward
	}
	return 0
}

// Summary aggregates run-level statistics over the ranked table.
type Summary struct {
	RunID           string      `json:"run_id"`
	Underlying      string      `json:"underlying"`
	Spot            float64     `json:"spot"`
	PriceShift      *PriceShift `json:"price_shift,omitempty"`
	DTE             int         `json:"dte"`
	Vol             float64     `json:"implied_vol"`
	Rate            float64     `json:"risk_free_rate"`
	Scaling         ScalingMode `json:"greeks_scaling"`
	PrimaryMove     string      `json:"primary_move"`
	TotalContracts  int         `json:"total_contracts"`
	ATMCallPremium  float64     `json:"atm_call_premium"`
	ATMPutPremium   float64     `json:"atm_put_premium"`
	BestCallStrikes []float64   `json:"best_call_strikes"`
	BestPutStrikes  []float64   `json:"best_put_strikes"`
	GeneratedAt     time.Time   `json:"generated_at"`
}

// AnalysisResult is the ranked table plus its summary.
type AnalysisResult struct {
	Contracts []RankedContract `json:"contracts"`
	Summary   Summary          `json:"summary"`
}

// Analyze runs the full pipeline: strike ladder, per-contract pricing,
// probabilities, scenario outcomes, optional mark pricing, scoring, and the
// final ranked, premium-filtered table. The run is deterministic: identical
// requests produce identical tables (the run ID and timestamp aside), with
// equal scores tie-broken by ascending strike, calls before puts.
func Analyze(req AnalysisRequest) (*AnalysisResult, error) {
	if err := req.validate(); err != nil {
		return nil, err
	}

	if req.Scaling == "" {
		req.Scaling = ScaleDaily
	}
	if req.Pricing == "" {
		req.Pricing = PriceTheoretical
	}

	spot := req.Spot
	var shift *PriceShift
	if req.PriceAdjustment != 0 {
		s, err := ShiftPrice(req.Spot, req.PriceAdjustment)
		if err != nil {
			return nil, err
		}
		if s.AdjustedPrice <= 0 {
			return nil, &InvalidInputError{Field: "price_adjustment", Message: "adjusted price must stay positive"}
		}
		shift = &s
		spot = s.AdjustedPrice
	}

	strikes, err := StrikeLadder(spot, req.StrikeIncrement, req.StrikeWidth, req.DTE)
	if err != nil {
		return nil, err
	}

	primary := req.Scenarios.PrimaryMove()

	contracts := make([]RankedContract, 0, len(strikes)*2)
	for _, strike := range strikes {
		for _, kind := range []OptionKind{Call, Put} {
			row, err := evaluateContract(req, spot, strike, kind, primary.Name)
			if err != nil {
				return nil, err
			}
			contracts = append(contracts, row)
		}
	}

	summary := Summary{
		RunID:       uuid.NewString(),
		Underlying:  req.Underlying,
		Spot:        spot,
		PriceShift:  shift,
		DTE:         req.DTE,
		Vol:         req.Vol,
		Rate:        req.Rate,
		Scaling:     req.Scaling,
		PrimaryMove: primary.Name,
		GeneratedAt: time.Now().UTC(),
	}
	summary.ATMCallPremium = atmPremium(contracts, Call)
	summary.ATMPutPremium = atmPremium(contracts, Put)

	// Stable sort: score descending; rows were generated strike-ascending
	// with calls before puts, so ties preserve that order.
	sort.SliceStable(contracts, func(i, j int) bool {
		return contracts[i].Score > contracts[j].Score
	})

	summary.BestCallStrikes = topStrikes(contracts, Call, 3)
	summary.BestPutStrikes = topStrikes(contracts, Put, 3)

	if req.Premium.Max > 0 || req.Premium.Min > 0 {
		filtered := contracts[:0:0]
		for _, c := range contracts {
			if c.Premium < req.Premium.Min {
				continue
			}
			if req.Premium.Max > 0 && c.Premium > req.Premium.Max {
				continue
			}
			filtered = append(filtered, c)
		}
		contracts = filtered
	}

	for i := range contracts {
		contracts[i].Rank = i + 1
	}
	summary.TotalContracts = len(contracts)

	return &AnalysisResult{Contracts: contracts, Summary: summary}, nil
}

func evaluateContract(req AnalysisRequest, spot, strike float64, kind OptionKind, primaryName string) (RankedContract, error) {
	spec := OptionSpec{Spot: spot, Strike: strike, Expiry: req.Expiry, Rate: req.Rate, Vol: req.Vol, Kind: kind}

	base, err := Price(spec)
	if err != nil {
		return RankedContract{}, err
	}

	prob, err := ProfitProbabilities(spec)
	if err != nil {
		return RankedContract{}, err
	}

	moves := make([]MoveOutcome, 0, len(req.Scenarios.Moves))
	for _, mv := range req.Scenarios.Moves {
		moved := spec
		if kind == Call {
			moved.Spot = spot + mv.Size
		} else {
			moved.Spot = spot - math.Abs(mv.Size)
		}

		var changed Greeks
		if moved.Spot > 0 {
			changed, err = Price(moved)
			if err != nil {
				return RankedContract{}, err
			}
		}

		change := changed.Price - base.Price
		rr := 0.0
		if base.Price > 0.01 {
			rr = change / base.Price
		}
		moves = append(moves, MoveOutcome{Name: mv.Name, Size: mv.Size, PriceChange: change, RiskReward: rr})
	}

	row := RankedContract{
		Underlying:  req.Underlying,
		Strike:      strike,
		Kind:        kind,
		Theoretical: base.Price,
		Moneyness:   spec.Moneyness(),
		Greeks:      Scale(base, req.Scaling),
		Probability: prob,
		Moves:       moves,
		baseline:    base,
	}

	row.Premium = base.Price
	if req.Pricing == PriceMark {
		mark := EstimateMarkPrice(base.Price, spot, strike, kind, req.LiquidityFactor)
		row.Mark = &mark
		row.Premium = mark.Mark
	}
	row.MaxLoss = row.Premium

	// Score from unscaled baseline Greeks so the ranking does not shift
	// with the requested display scaling.
	row.Score = DayTradeScore(base, row.primaryRiskReward(primaryName), prob)

	return row, nil
}

func atmPremium(contracts []RankedContract, kind OptionKind) float64 {
	best := math.MaxFloat64
	premium := 0.0
	for _, c := range contracts {
		if c.Kind != kind {
			continue
		}
		if dist := math.Abs(c.Moneyness - 1); dist < best {
			best = dist
			premium = c.Premium
		}
	}
	return premium
}

func topStrikes(sorted []RankedContract, kind OptionKind, n int) []float64 {
	strikes := make([]float64, 0, n)
	for _, c := range sorted {
		if c.Kind != kind {
			continue
		}
		strikes = append(strikes, c.Strike)
		if len(strikes) == n {
			break
		}
	}
	return strikes
}
