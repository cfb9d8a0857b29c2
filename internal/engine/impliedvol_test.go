package engine

import (
	"errors"
	"math"
	"strings"
	"testing"
)

func TestImpliedVolatilityRoundTrip(t *testing.T) {
	const (
		S = 100.0
		K = 100.0
		T = 30.0 / 365
		r = 0.05
	)

	for _, sigma := range []float64{0.05, 0.132, 0.25, 0.50, 1.0, 2.0, 2.9} {
		for _, kind := range []OptionKind{Call, Put} {
			g, err := Price(OptionSpec{Spot: S, Strike: K, Expiry: T, Rate: r, Vol: sigma, Kind: kind})
			if err != nil {
				t.Fatalf("Price returned error: %v", err)
			}

			sol, err := ImpliedVolatility(g.Price, S, K, T, r, kind)
			if err != nil {
				t.Fatalf("sigma=%f kind=%s: %v", sigma, kind, err)
			}
			if math.Abs(sol.ImpliedVol-sigma) > 1e-4 {
				t.Errorf("sigma=%f kind=%s: solved %f, want within 1e-4", sigma, kind, sol.ImpliedVol)
			}
			if sol.Iterations > ivMaxIter {
				t.Errorf("iterations %d exceeds budget", sol.Iterations)
			}
			if math.Abs(sol.PriceDifference) > 0.01 {
				t.Errorf("sigma=%f: theoretical price off by %f", sigma, sol.PriceDifference)
			}
		}
	}
}

func TestImpliedVolatilityDeterministic(t *testing.T) {
	first, err := ImpliedVolatility(3.29, 596.22, 594, 0.003968, 0.044, Call)
	if err != nil {
		t.Fatalf("ImpliedVolatility returned error: %v", err)
	}
	second, err := ImpliedVolatility(3.29, 596.22, 594, 0.003968, 0.044, Call)
	if err != nil {
		t.Fatalf("ImpliedVolatility returned error: %v", err)
	}
	if *first != *second {
		t.Errorf("identical inputs produced different solutions: %+v vs %+v", first, second)
	}
	if first.IVLow >= first.ImpliedVol || first.IVHigh <= first.ImpliedVol {
		t.Errorf("sensitivity bracket [%f, %f] does not contain solution %f", first.IVLow, first.IVHigh, first.ImpliedVol)
	}
	if first.PriceAtIVLow >= first.PriceAtIVHigh {
		t.Errorf("price not increasing in vol: %f at low, %f at high", first.PriceAtIVLow, first.PriceAtIVHigh)
	}
}

func TestImpliedVolatilityConvergenceFailure(t *testing.T) {
	tests := []struct {
		name        string
		marketPrice float64
		spot        float64
		strike      float64
		expiry      float64
	}{
		// Below intrinsic: no volatility can price this low.
		{"price below intrinsic", 2.0, 110, 100, 30.0 / 365},
		// Above the price reachable at the top of the bracket.
		{"price above bracket ceiling", 99.0, 100, 100, 1.0 / 365},
		{"expired contract", 5.0, 105, 100, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ImpliedVolatility(tt.marketPrice, tt.spot, tt.strike, tt.expiry, 0.05, Call)
			var conv *ConvergenceError
			if !errors.As(err, &conv) {
				t.Fatalf("expected ConvergenceError, got %v", err)
			}
			if conv.BracketLow != ivBracketLow || conv.BracketHigh != ivBracketHigh {
				t.Errorf("bracket [%f, %f], want [%f, %f]", conv.BracketLow, conv.BracketHigh, ivBracketLow, ivBracketHigh)
			}
			if len(conv.Hints) == 0 {
				t.Error("convergence error carries no hints")
			}
			if !strings.Contains(conv.Error(), "did not converge") {
				t.Errorf("error message missing context: %q", conv.Error())
			}
		})
	}
}

func TestImpliedVolatilityInvalidInputs(t *testing.T) {
	tests := []struct {
		name        string
		marketPrice float64
		spot        float64
		strike      float64
	}{
		{"zero market price", 0, 100, 100},
		{"negative market price", -1, 100, 100},
		{"zero spot", 3, 0, 100},
		{"zero strike", 3, 100, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ImpliedVolatility(tt.marketPrice, tt.spot, tt.strike, 0.1, 0.05, Call)
			var invalid *InvalidInputError
			if !errors.As(err, &invalid) {
				t.Fatalf("expected InvalidInputError, got %v", err)
			}
		})
	}
}
