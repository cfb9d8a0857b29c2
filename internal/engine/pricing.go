package engine

import (
	"math"

	"gonum.org/v1/gonum/stat/distuv"
)

var stdNormal = distuv.UnitNormal

func normCDF(x float64) float64 {
	return stdNormal.CDF(x)
}

func normPDF(x float64) float64 {
	return stdNormal.Prob(x)
}

// minVolTime is the smallest sigma*sqrt(T) the closed form will divide by.
// Anything below collapses to the expiry branch.
const minVolTime = 1e-10

// Price computes the Black-Scholes theoretical price and Greeks for one
// contract. Theta is per calendar day and vega per 1 percentage point of
// volatility. An expired contract (Expiry <= 0) prices at intrinsic value
// with delta pinned to moneyness and all other sensitivities zero.
func Price(spec OptionSpec) (Greeks, error) {
	if err := spec.validate(); err != nil {
		return Greeks{}, err
	}

	S, K, T, r, sigma := spec.Spot, spec.Strike, spec.Expiry, spec.Rate, spec.Vol

	volTime := sigma * math.Sqrt(math.Max(T, 0))
	if T <= 0 || volTime < minVolTime {
		return expiredGreeks(spec), nil
	}

	d1 := (math.Log(S/K) + (r+sigma*sigma/2)*T) / volTime
	d2 := d1 - volTime

	discount := math.Exp(-r * T)

	g := Greeks{D1: d1, D2: d2}
	if spec.Kind == Call {
		g.Price = S*normCDF(d1) - K*discount*normCDF(d2)
		g.Delta = normCDF(d1)
		g.Rho = K * T * discount * normCDF(d2)
		g.Theta = (-S*normPDF(d1)*sigma/(2*math.Sqrt(T)) - r*K*discount*normCDF(d2)) / 365
	} else {
		g.Price = K*discount*normCDF(-d2) - S*normCDF(-d1)
		g.Delta = -normCDF(-d1)
		g.Rho = -K * T * discount * normCDF(-d2)
		g.Theta = (-S*normPDF(d1)*sigma/(2*math.Sqrt(T)) + r*K*discount*normCDF(-d2)) / 365
	}

	g.Gamma = normPDF(d1) / (S * volTime)
	g.Vega = S * normPDF(d1) * math.Sqrt(T) / 100

	return g, nil
}

func expiredGreeks(spec OptionSpec) Greeks {
	if spec.Kind == Call {
		g := Greeks{Price: math.Max(spec.Spot-spec.Strike, 0)}
		if spec.Spot > spec.Strike {
			g.Delta = 1
		}
		return g
	}

	g := Greeks{Price: math.Max(spec.Strike-spec.Spot, 0)}
	if spec.Spot < spec.Strike {
		g.Delta = -1
	}
	return g
}
