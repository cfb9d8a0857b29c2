package engine

import "math"

// Scenario directions, classified by the sign of the applied adjustment.
const (
	DirectionBullish = "bullish"
	DirectionBearish = "bearish"
	DirectionNeutral = "neutral"
)

// PriceShift describes a what-if move of the underlying by a signed dollar
// amount.
type PriceShift struct {
	BasePrice     float64 `json:"base_price"`
	Adjustment    float64 `json:"adjustment"`
	AdjustedPrice float64 `json:"adjusted_price"`
	Direction     string  `json:"direction"`
	PercentChange float64 `json:"percent_change"`
}

// ShiftPrice applies a signed dollar adjustment to the underlying price and
// classifies the scenario.
func ShiftPrice(base, adjustment float64) (PriceShift, error) {
	if base <= 0 {
		return PriceShift{}, &InvalidInputError{Field: "base_price", Message: "must be positive"}
	}

	direction := DirectionNeutral
	if adjustment > 0 {
		direction = DirectionBullish
	} else if adjustment < 0 {
		direction = DirectionBearish
	}

	return PriceShift{
		BasePrice:     base,
		Adjustment:    adjustment,
		AdjustedPrice: base + adjustment,
		Direction:     direction,
		PercentChange: adjustment / base * 100,
	}, nil
}

// ExpectedMove holds the formula-based expected move of the underlying:
// the one-sigma move S*sigma*sqrt(T) with half and double multiples and the
// percentage-of-spot equivalent.
type ExpectedMove struct {
	HalfSigma     float64 `json:"half_sigma"`
	OneSigma      float64 `json:"one_sigma"`
	TwoSigma      float64 `json:"two_sigma"`
	PercentOfSpot float64 `json:"percent_of_spot"`
}

// FormulaExpectedMove computes the standard-formula expected move.
func FormulaExpectedMove(spot, sigma, expiry float64) (ExpectedMove, error) {
	if spot <= 0 {
		return ExpectedMove{}, &InvalidInputError{Field: "spot", Message: "must be positive"}
	}
	if sigma < 0 {
		return ExpectedMove{}, &InvalidInputError{Field: "vol", Message: "must not be negative"}
	}

	oneSigma := spot * sigma * math.Sqrt(math.Max(expiry, 0))
	return ExpectedMove{
		HalfSigma:     oneSigma * 0.5,
		OneSigma:      oneSigma,
		TwoSigma:      oneSigma * 2,
		PercentOfSpot: oneSigma / spot * 100,
	}, nil
}

// StraddleQuote prices the at-the-money straddle. The combined premium is
// the market-implied expected move; the breakevens sit one premium either
// side of the ATM strike.
type StraddleQuote struct {
	ATMStrike      float64 `json:"atm_strike"`
	CallPrice      float64 `json:"call_price"`
	PutPrice       float64 `json:"put_price"`
	StraddlePrice  float64 `json:"straddle_price"`
	BreakevenUpper float64 `json:"breakeven_upper"`
	BreakevenLower float64 `json:"breakeven_lower"`
	CallDelta      float64 `json:"call_delta"`
	PutDelta       float64 `json:"put_delta"`
	TotalVega      float64 `json:"total_vega"`
	TotalTheta     float64 `json:"total_theta"`
}

// ATMStraddle prices the call and put at the ATM strike implied by the
// configured increment.
func ATMStraddle(spot, expiry, rate, sigma, increment float64) (StraddleQuote, error) {
	if increment <= 0 {
		return StraddleQuote{}, &InvalidInputError{Field: "increment", Message: "must be positive"}
	}

	atm := ATMStrike(spot, increment)

	call, err := Price(OptionSpec{Spot: spot, Strike: atm, Expiry: expiry, Rate: rate, Vol: sigma, Kind: Call})
	if err != nil {
		return StraddleQuote{}, err
	}
	put, err := Price(OptionSpec{Spot: spot, Strike: atm, Expiry: expiry, Rate: rate, Vol: sigma, Kind: Put})
	if err != nil {
		return StraddleQuote{}, err
	}

	straddle := call.Price + put.Price
	return StraddleQuote{
		ATMStrike:      atm,
		CallPrice:      call.Price,
		PutPrice:       put.Price,
		StraddlePrice:  straddle,
		BreakevenUpper: atm + straddle,
		BreakevenLower: atm - straddle,
		CallDelta:      call.Delta,
		PutDelta:       put.Delta,
		TotalVega:      call.Vega + put.Vega,
		TotalTheta:     call.Theta + put.Theta,
	}, nil
}

// Recommended method labels for MoveComparison.
const (
	RecommendFormula     = "formula"
	RecommendInvestigate = "investigate"
)

// DefaultMoveThreshold is the absolute dollar gap between the formula move
// and the straddle premium past which the comparison flags "investigate".
const DefaultMoveThreshold = 0.5

// MoveComparison contrasts the formula-based expected move against the ATM
// straddle premium.
type MoveComparison struct {
	Formula     ExpectedMove  `json:"formula"`
	Straddle    StraddleQuote `json:"straddle"`
	Difference  float64       `json:"difference"`
	Threshold   float64       `json:"threshold"`
	Recommended string        `json:"recommended"`
}

// CompareExpectedMoves computes both expected-move estimates and flags the
// pair for investigation when they disagree by more than threshold dollars.
// A non-positive threshold selects DefaultMoveThreshold.
func CompareExpectedMoves(spot, expiry, rate, sigma, increment, threshold float64) (MoveComparison, error) {
	if threshold <= 0 {
		threshold = DefaultMoveThreshold
	}

	formula, err := FormulaExpectedMove(spot, sigma, expiry)
	if err != nil {
		return MoveComparison{}, err
	}

	straddle, err := ATMStraddle(spot, expiry, rate, sigma, increment)
	if err != nil {
		return MoveComparison{}, err
	}

	diff := math.Abs(formula.OneSigma - straddle.StraddlePrice)
	recommended := RecommendFormula
	if diff >= threshold {
		recommended = RecommendInvestigate
	}

	return MoveComparison{
		Formula:     formula,
		Straddle:    straddle,
		Difference:  diff,
		Threshold:   threshold,
		Recommended: recommended,
	}, nil
}
