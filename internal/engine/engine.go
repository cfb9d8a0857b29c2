// Package engine implements the options analytics core: closed-form
// Black-Scholes pricing and Greeks, implied volatility solving, strike
// ladder generation, scenario and expected-move modelling, mark price
// estimation, and composite contract scoring.
//
// Every exported function is a pure computation over its explicit inputs.
// The package performs no I/O, holds no mutable state, and is safe to call
// concurrently.
package engine

// OptionKind identifies the contract side.
type OptionKind string

const (
	Call OptionKind = "call"
	Put  OptionKind = "put"
)

// Valid reports whether the kind is one of call or put.
func (k OptionKind) Valid() bool {
	return k == Call || k == Put
}

// OptionSpec fully describes a single European option contract for pricing.
type OptionSpec struct {
	Spot   float64 // underlying price, > 0
	Strike float64 // strike price, > 0
	Expiry float64 // time to expiry in years; <= 0 means expired
	Rate   float64 // annualized risk-free rate
	Vol    float64 // annualized volatility; may be 0 only when Expiry <= 0
	Kind   OptionKind
}

// Greeks holds the theoretical price and sensitivities for one contract.
// Theta is per calendar day and vega per 1 percentage point of volatility
// (the daily baseline convention); use Scale to convert.
type Greeks struct {
	Price float64 `json:"price"`
	Delta float64 `json:"delta"`
	Gamma float64 `json:"gamma"`
	Theta float64 `json:"theta"`
	Vega  float64 `json:"vega"`
	Rho   float64 `json:"rho"`
	D1    float64 `json:"d1"`
	D2    float64 `json:"d2"`
}

// Moneyness returns spot/strike for calls and strike/spot for puts, so a
// value above 1 always means in-the-money.
func (s OptionSpec) Moneyness() float64 {
	if s.Kind == Put {
		return s.Strike / s.Spot
	}
	return s.Spot / s.Strike
}

func (s OptionSpec) validate() error {
	if s.Spot <= 0 {
		return &InvalidInputError{Field: "spot", Message: "must be positive"}
	}
	if s.Strike <= 0 {
		return &InvalidInputError{Field: "strike", Message: "must be positive"}
	}
	if !s.Kind.Valid() {
		return &InvalidInputError{Field: "kind", Message: "must be call or put"}
	}
	if s.Vol < 0 {
		return &InvalidInputError{Field: "vol", Message: "must not be negative"}
	}
	if s.Vol == 0 && s.Expiry > 0 {
		return &InvalidInputError{Field: "vol", Message: "required for unexpired contracts"}
	}
	return nil
}

func clamp(value, min, max float64) float64 {
	if value < min {
		return min
	}
	if value > max {
		return max
	}
	return value
}
