package commentary

import (
	"context"
	"strings"
	"testing"

	"github.com/greekscope/greekscope/internal/engine"
)

func sampleContract() engine.RankedContract {
	return engine.RankedContract{
		Underlying: "SPY",
		Strike:     605,
		Kind:       engine.Call,
		Premium:    3.42,
		Greeks:     engine.Greeks{Delta: 0.52, Price: 3.42},
		Probability: engine.ProbabilityResult{
			Breakeven: 608.42,
			ProbITM:   0.48,
		},
		Moves: []engine.MoveOutcome{
			{Name: "target", Size: 2.0, RiskReward: 0.35},
			{Name: "conservative", Size: 1.0, RiskReward: 0.16},
		},
	}
}

func TestRuleBasedContractCommentary(t *testing.T) {
	ctx := context.Background()
	c := NewRuleBased()

	text, err := c.ContractCommentary(ctx, sampleContract(), "target")
	if err != nil {
		t.Fatalf("ContractCommentary returned error: %v", err)
	}

	for _, want := range []string{"SPY 605.00 call", "52% delta", "target move returns 35%", "48% chance"} {
		if !strings.Contains(text, want) {
			t.Errorf("commentary missing %q: %s", want, text)
		}
	}

	// Deterministic.
	again, err := c.ContractCommentary(ctx, sampleContract(), "target")
	if err != nil {
		t.Fatalf("ContractCommentary returned error: %v", err)
	}
	if text != again {
		t.Error("identical inputs produced different commentary")
	}
}

func TestRuleBasedContractCommentaryVariants(t *testing.T) {
	ctx := context.Background()
	c := NewRuleBased()

	deep := sampleContract()
	deep.Greeks.Delta = 0.88
	deep.Premium = 14.20
	text, err := c.ContractCommentary(ctx, deep, "target")
	if err != nil {
		t.Fatalf("ContractCommentary returned error: %v", err)
	}
	if !strings.Contains(text, "deep ITM") || !strings.Contains(text, "expensive") {
		t.Errorf("deep ITM commentary wrong: %s", text)
	}

	lotto := sampleContract()
	lotto.Kind = engine.Put
	lotto.Greeks.Delta = -0.08
	lotto.Premium = 0.22
	lotto.Moves = []engine.MoveOutcome{{Name: "target", RiskReward: -0.4}}
	text, err = c.ContractCommentary(ctx, lotto, "target")
	if err != nil {
		t.Fatalf("ContractCommentary returned error: %v", err)
	}
	if !strings.Contains(text, "put") || !strings.Contains(text, "lottery") || !strings.Contains(text, "loses 40%") {
		t.Errorf("far OTM put commentary wrong: %s", text)
	}
}

func TestRuleBasedRunCommentary(t *testing.T) {
	result := &engine.AnalysisResult{
		Summary: engine.Summary{
			Underlying:      "SPY",
			Spot:            604.53,
			DTE:             8,
			Vol:             0.132,
			PrimaryMove:     "target",
			TotalContracts:  58,
			ATMCallPremium:  5.10,
			ATMPutPremium:   4.65,
			BestCallStrikes: []float64{575, 577.5, 580},
			BestPutStrikes:  []float64{635, 632.5, 630},
		},
	}

	text, err := NewRuleBased().RunCommentary(context.Background(), result)
	if err != nil {
		t.Fatalf("RunCommentary returned error: %v", err)
	}
	for _, want := range []string{"SPY at 604.53", "8 DTE", "13.2% implied vol", "58 contracts", "Best calls: 575.00"} {
		if !strings.Contains(text, want) {
			t.Errorf("run commentary missing %q: %s", want, text)
		}
	}
}
