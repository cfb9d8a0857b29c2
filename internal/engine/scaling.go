package engine

// ScalingMode selects the time basis that theta, vega and rho are reported
// in. The pricing kernel always produces the daily baseline; Scale is a pure
// post-processing transform and must only ever be applied to baseline
// values, never chained.
type ScalingMode string

const (
	ScaleDaily     ScalingMode = "daily"
	ScalePerMinute ScalingMode = "per_minute"
	ScaleAnnual    ScalingMode = "annual"
)

// Valid reports whether the mode is one of the supported scalings.
func (m ScalingMode) Valid() bool {
	switch m {
	case ScaleDaily, ScalePerMinute, ScaleAnnual:
		return true
	}
	return false
}

const minutesPerDay = 24 * 60

// Scale converts baseline (daily) Greeks into the requested representation.
// Price, delta, gamma and the d1/d2 terms are basis-free and pass through
// unchanged.
//
//	per_minute: theta per minute, rho per 1bp instead of per 100bp
//	annual:     theta per 365 days, vega per 100% of vol instead of per 1%
//	daily:      identity
func Scale(g Greeks, mode ScalingMode) Greeks {
	switch mode {
	case ScalePerMinute:
		g.Theta /= minutesPerDay
		g.Rho /= 100
	case ScaleAnnual:
		g.Theta *= 365
		g.Vega *= 100
	}
	return g
}
