package engine

import "math"

// ATMStrike rounds the spot price to the nearest strike increment.
func ATMStrike(spot, increment float64) float64 {
	return math.Round(spot/increment) * increment
}

// StrikeLadder generates the ordered set of strikes to evaluate around the
// at-the-money strike. The configured width is stretched or shrunk with
// days-to-expiry (clamped to 0.5x-2x of a 7-day baseline), then snapped to
// whole increments so every strike in the ladder is an exact multiple of
// the increment. The result is strictly increasing, evenly spaced, and
// contains the ATM strike exactly once.
func StrikeLadder(spot, increment, width float64, dte int) ([]float64, error) {
	if spot <= 0 {
		return nil, &InvalidInputError{Field: "spot", Message: "must be positive"}
	}
	if increment <= 0 {
		return nil, &InvalidInputError{Field: "increment", Message: "must be positive"}
	}
	if width <= 0 {
		return nil, &InvalidInputError{Field: "width", Message: "must be positive"}
	}
	if dte < 0 {
		return nil, &InvalidInputError{Field: "dte", Message: "must not be negative"}
	}

	dteMultiplier := clamp(float64(dte)/7, 0.5, 2.0)
	adjustedWidth := width * dteMultiplier

	atm := ATMStrike(spot, increment)
	steps := int(math.Floor(adjustedWidth/increment + 1e-9))

	strikes := make([]float64, 0, 2*steps+1)
	for k := -steps; k <= steps; k++ {
		strikes = append(strikes, atm+float64(k)*increment)
	}
	return strikes, nil
}
