package engine

import (
	"fmt"
	"strings"
)

// InvalidInputError reports a malformed numeric input. It is returned, never
// coerced: a non-positive spot or an undefined volatility is a caller bug,
// not something the formulas should paper over.
type InvalidInputError struct {
	Field   string
	Message string
}

func (e *InvalidInputError) Error() string {
	return fmt.Sprintf("invalid input %s: %s", e.Field, e.Message)
}

// ConvergenceError reports an implied volatility solve that failed: either
// the bracket showed no sign change, or the iteration budget was exhausted.
// It carries the attempted bracket and diagnostic hints so callers can widen
// the search or reject the quote.
type ConvergenceError struct {
	MarketPrice float64
	BracketLow  float64
	BracketHigh float64
	PriceAtLow  float64
	PriceAtHigh float64
	Iterations  int
	Hints       []string
}

func (e *ConvergenceError) Error() string {
	msg := fmt.Sprintf(
		"implied volatility did not converge for market price %.4f (bracket [%.4f, %.4f], prices [%.4f, %.4f], %d iterations)",
		e.MarketPrice, e.BracketLow, e.BracketHigh, e.PriceAtLow, e.PriceAtHigh, e.Iterations,
	)
	if len(e.Hints) > 0 {
		msg += ": " + strings.Join(e.Hints, "; ")
	}
	return msg
}
