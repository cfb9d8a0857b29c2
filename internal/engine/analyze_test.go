package engine

import (
	"errors"
	"fmt"
	"math"
	"testing"
)

func baseRequest() AnalysisRequest {
	return AnalysisRequest{
		Underlying:      "SPY",
		Spot:            604.53,
		Expiry:          8.0 / 252,
		Rate:            0.044,
		Vol:             0.132,
		DTE:             8,
		StrikeIncrement: 2.5,
		StrikeWidth:     35,
		Scenarios:       DefaultScenarios(),
	}
}

func TestAnalyzeTableShape(t *testing.T) {
	res, err := Analyze(baseRequest())
	if err != nil {
		t.Fatalf("Analyze returned error: %v", err)
	}

	strikes, err := StrikeLadder(604.53, 2.5, 35, 8)
	if err != nil {
		t.Fatalf("StrikeLadder returned error: %v", err)
	}
	if want := len(strikes) * 2; len(res.Contracts) != want {
		t.Fatalf("table has %d rows, want %d (call and put per strike)", len(res.Contracts), want)
	}
	if res.Summary.TotalContracts != len(res.Contracts) {
		t.Errorf("summary count %d != table size %d", res.Summary.TotalContracts, len(res.Contracts))
	}

	for i, c := range res.Contracts {
		if c.Rank != i+1 {
			t.Errorf("row %d has rank %d", i, c.Rank)
		}
		if i > 0 && c.Score > res.Contracts[i-1].Score {
			t.Errorf("row %d score %f above previous %f", i, c.Score, res.Contracts[i-1].Score)
		}
		if len(c.Moves) != 3 {
			t.Errorf("row %d has %d move outcomes, want 3", i, len(c.Moves))
		}
		if c.MaxLoss != c.Premium {
			t.Errorf("row %d max loss %f != premium %f", i, c.MaxLoss, c.Premium)
		}
		if c.Mark != nil {
			t.Errorf("row %d carries mark data under theoretical pricing", i)
		}
	}

	if res.Summary.RunID == "" {
		t.Error("summary missing run ID")
	}
	if res.Summary.PrimaryMove != "target" {
		t.Errorf("primary move = %q, want target", res.Summary.PrimaryMove)
	}
	if res.Summary.ATMCallPremium <= 0 || res.Summary.ATMPutPremium <= 0 {
		t.Errorf("ATM premiums not populated: %+v", res.Summary)
	}
	if len(res.Summary.BestCallStrikes) != 3 || len(res.Summary.BestPutStrikes) != 3 {
		t.Errorf("best strikes not top-3 per side: %+v", res.Summary)
	}
}

func TestAnalyzeDeterministic(t *testing.T) {
	req := baseRequest()
	first, err := Analyze(req)
	if err != nil {
		t.Fatalf("Analyze returned error: %v", err)
	}
	second, err := Analyze(req)
	if err != nil {
		t.Fatalf("Analyze returned error: %v", err)
	}

	if len(first.Contracts) != len(second.Contracts) {
		t.Fatalf("run sizes differ: %d vs %d", len(first.Contracts), len(second.Contracts))
	}
	for i := range first.Contracts {
		a, b := first.Contracts[i], second.Contracts[i]
		if a.Strike != b.Strike || a.Kind != b.Kind || a.Score != b.Score || a.Premium != b.Premium {
			t.Errorf("row %d differs between runs: %+v vs %+v", i, a, b)
		}
	}
	if first.Summary.RunID == second.Summary.RunID {
		t.Error("distinct runs share a run ID")
	}
}

func TestAnalyzeScalingDoesNotChangeRanking(t *testing.T) {
	daily, err := Analyze(baseRequest())
	if err != nil {
		t.Fatalf("Analyze returned error: %v", err)
	}

	req := baseRequest()
	req.Scaling = ScalePerMinute
	perMin, err := Analyze(req)
	if err != nil {
		t.Fatalf("Analyze returned error: %v", err)
	}

	for i := range daily.Contracts {
		d, p := daily.Contracts[i], perMin.Contracts[i]
		if d.Strike != p.Strike || d.Kind != p.Kind {
			t.Fatalf("row %d ordering differs under scaling: %f/%s vs %f/%s", i, d.Strike, d.Kind, p.Strike, p.Kind)
		}
		if d.Score != p.Score {
			t.Errorf("row %d score changed with display scaling: %f vs %f", i, d.Score, p.Score)
		}
		if want := d.Greeks.Theta / 1440; math.Abs(p.Greeks.Theta-want) > 1e-12 {
			t.Errorf("row %d theta not rescaled: %g, want %g", i, p.Greeks.Theta, want)
		}
	}
}

func TestAnalyzePremiumFilter(t *testing.T) {
	req := baseRequest()
	req.Premium = PremiumBand{Min: 0.05, Max: 5.0}

	res, err := Analyze(req)
	if err != nil {
		t.Fatalf("Analyze returned error: %v", err)
	}
	if len(res.Contracts) == 0 {
		t.Fatal("premium filter removed every contract")
	}
	for _, c := range res.Contracts {
		if c.Premium < 0.05 || c.Premium > 5.0 {
			t.Errorf("contract %f/%s premium %f outside [0.05, 5.00]", c.Strike, c.Kind, c.Premium)
		}
	}
	for i, c := range res.Contracts {
		if c.Rank != i+1 {
			t.Errorf("filtered row %d has rank %d", i, c.Rank)
		}
	}

	// The summary's ATM premiums reflect the full table, before filtering.
	unfiltered, err := Analyze(baseRequest())
	if err != nil {
		t.Fatalf("Analyze returned error: %v", err)
	}
	if res.Summary.ATMCallPremium != unfiltered.Summary.ATMCallPremium {
		t.Errorf("ATM call premium changed under filtering: %f vs %f", res.Summary.ATMCallPremium, unfiltered.Summary.ATMCallPremium)
	}
}

func TestAnalyzeMarkPricing(t *testing.T) {
	req := baseRequest()
	req.Pricing = PriceMark

	res, err := Analyze(req)
	if err != nil {
		t.Fatalf("Analyze returned error: %v", err)
	}
	for _, c := range res.Contracts {
		if c.Mark == nil {
			t.Fatalf("contract %f/%s missing mark data", c.Strike, c.Kind)
		}
		if c.Premium != c.Mark.Mark {
			t.Errorf("contract %f/%s premium %f != mark %f", c.Strike, c.Kind, c.Premium, c.Mark.Mark)
		}
		if c.Theoretical != c.Mark.Theoretical {
			t.Errorf("contract %f/%s theoretical mismatch", c.Strike, c.Kind)
		}
	}
}

func TestAnalyzePriceAdjustment(t *testing.T) {
	req := baseRequest()
	req.PriceAdjustment = 5.0

	res, err := Analyze(req)
	if err != nil {
		t.Fatalf("Analyze returned error: %v", err)
	}
	if res.Summary.PriceShift == nil {
		t.Fatal("summary missing price shift")
	}
	if res.Summary.PriceShift.Direction != DirectionBullish {
		t.Errorf("direction = %q, want bullish", res.Summary.PriceShift.Direction)
	}
	if want := 604.53 + 5.0; res.Summary.Spot != want {
		t.Errorf("summary spot = %f, want adjusted %f", res.Summary.Spot, want)
	}

	// The ladder re-centers on the adjusted price.
	atm := ATMStrike(609.53, 2.5)
	found := false
	for _, c := range res.Contracts {
		if c.Strike == atm {
			found = true
			break
		}
	}
	if !found {
		t.Errorf("adjusted ATM strike %f absent from table", atm)
	}
}

func TestAnalyzePrimaryMoveSelection(t *testing.T) {
	req := baseRequest()
	req.Scenarios = ScenarioSpec{
		Moves: []ScenarioMove{
			{Name: "small", Size: 0.5},
			{Name: "large", Size: 4.0},
		},
		Primary: "large",
	}

	res, err := Analyze(req)
	if err != nil {
		t.Fatalf("Analyze returned error: %v", err)
	}
	if res.Summary.PrimaryMove != "large" {
		t.Errorf("primary move = %q, want large", res.Summary.PrimaryMove)
	}

	// Same moves with the small one primary must produce lower scores for
	// OTM calls, whose risk/reward grows with the move size.
	req.Scenarios.Primary = "small"
	small, err := Analyze(req)
	if err != nil {
		t.Fatalf("Analyze returned error: %v", err)
	}

	byKey := make(map[string]RankedContract, len(small.Contracts))
	for _, c := range small.Contracts {
		byKey[contractKey(c)] = c
	}
	higher := 0
	for _, c := range res.Contracts {
		if c.Kind == Call && c.Score > byKey[contractKey(c)].Score {
			higher++
		}
	}
	if higher == 0 {
		t.Error("larger primary move never raised a call score")
	}
}

func contractKey(c RankedContract) string {
	return fmt.Sprintf("%s:%.2f", c.Kind, c.Strike)
}

func TestAnalyzeInvalidRequests(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*AnalysisRequest)
	}{
		{"zero spot", func(r *AnalysisRequest) { r.Spot = 0 }},
		{"zero vol", func(r *AnalysisRequest) { r.Vol = 0 }},
		{"zero increment", func(r *AnalysisRequest) { r.StrikeIncrement = 0 }},
		{"negative width", func(r *AnalysisRequest) { r.StrikeWidth = -1 }},
		{"bad scaling", func(r *AnalysisRequest) { r.Scaling = "hourly" }},
		{"bad pricing", func(r *AnalysisRequest) { r.Pricing = "midpoint" }},
		{"inverted premium band", func(r *AnalysisRequest) { r.Premium = PremiumBand{Min: 10, Max: 1} }},
		{"no scenarios", func(r *AnalysisRequest) { r.Scenarios = ScenarioSpec{} }},
		{"duplicate scenario", func(r *AnalysisRequest) {
			r.Scenarios = ScenarioSpec{Moves: []ScenarioMove{{Name: "x", Size: 1}, {Name: "x", Size: 2}}}
		}},
		{"undeclared primary", func(r *AnalysisRequest) {
			r.Scenarios = ScenarioSpec{Moves: []ScenarioMove{{Name: "x", Size: 1}}, Primary: "y"}
		}},
		{"adjustment below zero", func(r *AnalysisRequest) { r.PriceAdjustment = -700 }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := baseRequest()
			tt.mutate(&req)
			_, err := Analyze(req)
			var invalid *InvalidInputError
			if !errors.As(err, &invalid) {
				t.Fatalf("expected InvalidInputError, got %v", err)
			}
		})
	}
}
