package engine

import "math"

// ProbabilityResult carries breakeven and risk-neutral probability metrics
// for one contract, derived from the theoretical premium and the
// risk-neutral drift.
type ProbabilityResult struct {
	Breakeven  float64 `json:"breakeven"`
	ProbProfit float64 `json:"prob_profit"`
	ProbITM    float64 `json:"prob_itm"`
	Premium    float64 `json:"premium"`
}

// ProfitProbabilities computes the breakeven price, the probability that a
// long position expires profitable, and the probability the contract
// finishes in the money. At or past expiry the probabilities degenerate to
// moneyness indicators.
func ProfitProbabilities(spec OptionSpec) (ProbabilityResult, error) {
	g, err := Price(spec)
	if err != nil {
		return ProbabilityResult{}, err
	}

	S, K, T, r, sigma := spec.Spot, spec.Strike, spec.Expiry, spec.Rate, spec.Vol

	var breakeven float64
	if spec.Kind == Call {
		breakeven = K + g.Price
	} else {
		breakeven = K - g.Price
	}

	result := ProbabilityResult{Breakeven: breakeven, Premium: g.Price}

	volTime := sigma * math.Sqrt(math.Max(T, 0))
	if T <= 0 || volTime < minVolTime {
		result.ProbProfit = indicator(spec.Kind, S, breakeven)
		result.ProbITM = indicator(spec.Kind, S, K)
		return result, nil
	}

	drift := (r - sigma*sigma/2) * T

	d := (math.Log(S/breakeven) + drift) / volTime
	dITM := (math.Log(S/K) + drift) / volTime

	if spec.Kind == Call {
		result.ProbProfit = normCDF(d)
		result.ProbITM = normCDF(dITM)
	} else {
		result.ProbProfit = normCDF(-d)
		result.ProbITM = normCDF(-dITM)
	}

	return result, nil
}

// indicator is the degenerate-expiry probability: 1 when the spot is past
// the level in the profitable direction, 0 otherwise.
func indicator(kind OptionKind, spot, level float64) float64 {
	if kind == Call {
		if spot > level {
			return 1
		}
		return 0
	}
	if spot < level {
		return 1
	}
	return 0
}
