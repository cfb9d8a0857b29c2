package engine

import (
	"math"
	"testing"
)

func TestProfitProbabilities(t *testing.T) {
	spec := OptionSpec{Spot: 100, Strike: 100, Expiry: 30.0 / 365, Rate: 0.05, Vol: 0.25, Kind: Call}

	res, err := ProfitProbabilities(spec)
	if err != nil {
		t.Fatalf("ProfitProbabilities returned error: %v", err)
	}

	g, err := Price(spec)
	if err != nil {
		t.Fatalf("Price returned error: %v", err)
	}
	if got, want := res.Breakeven, spec.Strike+g.Price; math.Abs(got-want) > 1e-9 {
		t.Errorf("breakeven = %f, want %f", got, want)
	}
	if res.ProbProfit <= 0 || res.ProbProfit >= 1 {
		t.Errorf("prob profit %f out of (0, 1)", res.ProbProfit)
	}
	// Breakeven sits above the strike, so profiting is strictly harder
	// than merely finishing in the money.
	if res.ProbProfit >= res.ProbITM {
		t.Errorf("prob profit %f >= prob ITM %f", res.ProbProfit, res.ProbITM)
	}

	spec.Kind = Put
	put, err := ProfitProbabilities(spec)
	if err != nil {
		t.Fatalf("ProfitProbabilities returned error: %v", err)
	}
	pg, err := Price(spec)
	if err != nil {
		t.Fatalf("Price returned error: %v", err)
	}
	if got, want := put.Breakeven, spec.Strike-pg.Price; math.Abs(got-want) > 1e-9 {
		t.Errorf("put breakeven = %f, want %f", got, want)
	}
	if put.ProbProfit >= put.ProbITM {
		t.Errorf("put prob profit %f >= prob ITM %f", put.ProbProfit, put.ProbITM)
	}
}

func TestProfitProbabilitiesDeepMoneyness(t *testing.T) {
	deepITM, err := ProfitProbabilities(OptionSpec{Spot: 200, Strike: 100, Expiry: 7.0 / 365, Rate: 0.04, Vol: 0.2, Kind: Call})
	if err != nil {
		t.Fatalf("ProfitProbabilities returned error: %v", err)
	}
	deepOTM, err := ProfitProbabilities(OptionSpec{Spot: 50, Strike: 100, Expiry: 7.0 / 365, Rate: 0.04, Vol: 0.2, Kind: Call})
	if err != nil {
		t.Fatalf("ProfitProbabilities returned error: %v", err)
	}

	if deepITM.ProbITM < 0.99 {
		t.Errorf("deep ITM call prob ITM = %f, want near 1", deepITM.ProbITM)
	}
	if deepOTM.ProbITM > 0.01 {
		t.Errorf("deep OTM call prob ITM = %f, want near 0", deepOTM.ProbITM)
	}
}

func TestProfitProbabilitiesExpired(t *testing.T) {
	tests := []struct {
		name    string
		spec    OptionSpec
		wantITM float64
	}{
		{"expired ITM call", OptionSpec{Spot: 105, Strike: 100, Expiry: 0, Kind: Call}, 1},
		{"expired OTM call", OptionSpec{Spot: 95, Strike: 100, Expiry: 0, Kind: Call}, 0},
		{"expired ITM put", OptionSpec{Spot: 95, Strike: 100, Expiry: 0, Kind: Put}, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, err := ProfitProbabilities(tt.spec)
			if err != nil {
				t.Fatalf("ProfitProbabilities returned error: %v", err)
			}
			if res.ProbITM != tt.wantITM {
				t.Errorf("prob ITM = %f, want %f", res.ProbITM, tt.wantITM)
			}
		})
	}
}
