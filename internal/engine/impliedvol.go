package engine

import "math"

// Implied volatility is solved with Brent's method over an annualized
// volatility bracket of 0.01% to 500%, matching the search window of the
// validation harness this engine was calibrated against.
const (
	ivBracketLow  = 0.0001
	ivBracketHigh = 5.0
	ivTolerance   = 1e-6
	ivMaxIter     = 100
)

// IVSolution is the result of inverting the pricing kernel for one market
// price. IVLow/IVHigh bracket the solution at +/-10% to report local price
// sensitivity; the Greeks are evaluated at the solved volatility.
type IVSolution struct {
	ImpliedVol       float64 `json:"implied_volatility"`
	MarketPrice      float64 `json:"market_price"`
	TheoreticalPrice float64 `json:"theoretical_price"`
	PriceDifference  float64 `json:"price_difference"`
	IVLow            float64 `json:"iv_low"`
	IVHigh           float64 `json:"iv_high"`
	PriceAtIVLow     float64 `json:"price_at_iv_low"`
	PriceAtIVHigh    float64 `json:"price_at_iv_high"`
	Delta            float64 `json:"delta"`
	Gamma            float64 `json:"gamma"`
	Theta            float64 `json:"theta"`
	Vega             float64 `json:"vega"`
	Iterations       int     `json:"iterations"`
}

// ImpliedVolatility finds the volatility at which the Black-Scholes price
// equals marketPrice. It is fully deterministic: identical inputs always
// produce the identical solution. Failures come back as a *ConvergenceError
// carrying the attempted bracket; they are never approximated with a
// default volatility.
func ImpliedVolatility(marketPrice, spot, strike, expiry, rate float64, kind OptionKind) (*IVSolution, error) {
	base := OptionSpec{Spot: spot, Strike: strike, Expiry: expiry, Rate: rate, Vol: ivBracketLow, Kind: kind}
	if err := base.validate(); err != nil {
		return nil, err
	}
	if marketPrice <= 0 {
		return nil, &InvalidInputError{Field: "market_price", Message: "must be positive"}
	}

	priceAt := func(sigma float64) float64 {
		spec := base
		spec.Vol = sigma
		g, err := Price(spec)
		if err != nil {
			// Inputs were validated above; the only failure mode left is
			// the degenerate-expiry branch, which prices at intrinsic.
			return expiredGreeks(spec).Price
		}
		return g.Price
	}

	objective := func(sigma float64) float64 {
		return priceAt(sigma) - marketPrice
	}

	fLow := objective(ivBracketLow)
	fHigh := objective(ivBracketHigh)

	if expiry <= 0 || fLow*fHigh > 0 {
		return nil, &ConvergenceError{
			MarketPrice: marketPrice,
			BracketLow:  ivBracketLow,
			BracketHigh: ivBracketHigh,
			PriceAtLow:  fLow + marketPrice,
			PriceAtHigh: fHigh + marketPrice,
			Hints: []string{
				"price may be outside the bounds reachable within the volatility bracket",
				"option may be deeply ITM/OTM",
				"very short or long time to expiration",
			},
		}
	}

	iv, iterations, ok := brent(objective, ivBracketLow, ivBracketHigh, ivTolerance, ivMaxIter)
	if !ok {
		return nil, &ConvergenceError{
			MarketPrice: marketPrice,
			BracketLow:  ivBracketLow,
			BracketHigh: ivBracketHigh,
			PriceAtLow:  fLow + marketPrice,
			PriceAtHigh: fHigh + marketPrice,
			Iterations:  iterations,
			Hints:       []string{"iteration budget exhausted before reaching tolerance"},
		}
	}

	solved := base
	solved.Vol = iv
	g, err := Price(solved)
	if err != nil {
		return nil, err
	}

	ivLow := iv * 0.9
	ivHigh := iv * 1.1

	return &IVSolution{
		ImpliedVol:       iv,
		MarketPrice:      marketPrice,
		TheoreticalPrice: g.Price,
		PriceDifference:  marketPrice - g.Price,
		IVLow:            ivLow,
		IVHigh:           ivHigh,
		PriceAtIVLow:     priceAt(ivLow),
		PriceAtIVHigh:    priceAt(ivHigh),
		Delta:            g.Delta,
		Gamma:            g.Gamma,
		Theta:            g.Theta,
		Vega:             g.Vega,
		Iterations:       iterations,
	}, nil
}

// brent finds a root of f in [a, b] using Brent's method: inverse quadratic
// interpolation with secant and bisection fallbacks. The caller must ensure
// f(a) and f(b) have opposite signs.
func brent(f func(float64) float64, a, b, tol float64, maxIter int) (root float64, iterations int, ok bool) {
	fa, fb := f(a), f(b)
	if fa == 0 {
		return a, 0, true
	}
	if fb == 0 {
		return b, 0, true
	}
	if fa*fb > 0 {
		return 0, 0, false
	}

	if math.Abs(fa) < math.Abs(fb) {
		a, b = b, a
		fa, fb = fb, fa
	}

	c, fc := a, fa
	var d float64
	bisected := true

	for i := 1; i <= maxIter; i++ {
		var s float64
		if fa != fc && fb != fc {
			// Inverse quadratic interpolation.
			s = a*fb*fc/((fa-fb)*(fa-fc)) +
				b*fa*fc/((fb-fa)*(fb-fc)) +
				c*fa*fb/((fc-fa)*(fc-fb))
		} else {
			// Secant step.
			s = b - fb*(b-a)/(fb-fa)
		}

		lo, hi := (3*a+b)/4, b
		if lo > hi {
			lo, hi = hi, lo
		}

		useBisection := s < lo || s > hi ||
			(bisected && math.Abs(s-b) >= math.Abs(b-c)/2) ||
			(!bisected && math.Abs(s-b) >= math.Abs(c-d)/2) ||
			(bisected && math.Abs(b-c) < tol) ||
			(!bisected && math.Abs(c-d) < tol)

		if useBisection {
			s = (a + b) / 2
			bisected = true
		} else {
			bisected = false
		}

		fs := f(s)
		d = c
		c, fc = b, fb

		if fa*fs < 0 {
			b, fb = s, fs
		} else {
			a, fa = s, fs
		}

		if math.Abs(fa) < math.Abs(fb) {
			a, b = b, a
			fa, fb = fb, fa
		}

		if fb == 0 || math.Abs(b-a) < tol {
			return b, i, true
		}
	}

	return b, maxIter, false
}
