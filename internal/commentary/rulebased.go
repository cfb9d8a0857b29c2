package commentary

import (
	"context"
	"fmt"
	"math"
	"strings"

	"github.com/greekscope/greekscope/internal/engine"
)

// RuleBased generates deterministic commentary from the contract's own
// numbers. Identical inputs always produce identical text.
type RuleBased struct{}

// NewRuleBased creates a rule-based commentator.
func NewRuleBased() *RuleBased {
	return &RuleBased{}
}

// ContractCommentary builds a one-paragraph explanation of the contract's
// score from its delta exposure, scenario payoff, cost, and probability.
func (c *RuleBased) ContractCommentary(_ context.Context, contract engine.RankedContract, primaryMove string) (string, error) {
	var parts []string

	absDelta := math.Abs(contract.Greeks.Delta)
	switch {
	case absDelta > 0.7:
		parts = append(parts, fmt.Sprintf("deep ITM with %.0f%% delta exposure, moves nearly dollar-for-dollar with the underlying", absDelta*100))
	case absDelta > 0.45:
		parts = append(parts, fmt.Sprintf("near the money with %.0f%% delta, balanced directional exposure", absDelta*100))
	case absDelta > 0.25:
		parts = append(parts, fmt.Sprintf("OTM with %.0f%% delta, cheaper but needs a real move", absDelta*100))
	default:
		parts = append(parts, fmt.Sprintf("far OTM lottery ticket at %.0f%% delta", absDelta*100))
	}

	if rr := primaryRiskReward(contract, primaryMove); rr > 0 {
		parts = append(parts, fmt.Sprintf("the %s move returns %.0f%% on premium", primaryMove, rr*100))
	} else if rr < 0 {
		parts = append(parts, fmt.Sprintf("the %s move loses %.0f%% of premium", primaryMove, -rr*100))
	}

	switch {
	case contract.Premium < 1:
		parts = append(parts, fmt.Sprintf("low $%.2f cost caps risk per contract", contract.Premium))
	case contract.Premium > 10:
		parts = append(parts, fmt.Sprintf("expensive at $%.2f, sizing matters", contract.Premium))
	}

	parts = append(parts, fmt.Sprintf("%.0f%% chance of finishing ITM", contract.Probability.ProbITM*100))

	side := "call"
	if contract.Kind == engine.Put {
		side = "put"
	}
	return fmt.Sprintf("%s %.2f %s: %s.", contract.Underlying, contract.Strike, side, strings.Join(parts, "; ")), nil
}

// RunCommentary summarizes the run: top strikes per side, ATM pricing, and
// the scenario assumption behind the ranking.
func (c *RuleBased) RunCommentary(_ context.Context, result *engine.AnalysisResult) (string, error) {
	s := result.Summary

	var b strings.Builder
	fmt.Fprintf(&b, "%s at %.2f, %d DTE, %.1f%% implied vol. ", s.Underlying, s.Spot, s.DTE, s.Vol*100)
	fmt.Fprintf(&b, "Ranked %d contracts on the %q move. ", s.TotalContracts, s.PrimaryMove)
	fmt.Fprintf(&b, "ATM straddle costs %.2f (%.2f call, %.2f put). ", s.ATMCallPremium+s.ATMPutPremium, s.ATMCallPremium, s.ATMPutPremium)

	if len(s.BestCallStrikes) > 0 {
		fmt.Fprintf(&b, "Best calls: %s. ", joinStrikes(s.BestCallStrikes))
	}
	if len(s.BestPutStrikes) > 0 {
		fmt.Fprintf(&b, "Best puts: %s.", joinStrikes(s.BestPutStrikes))
	}

	if s.PriceShift != nil {
		fmt.Fprintf(&b, " Priced off a %s %.2f adjustment from %.2f.", s.PriceShift.Direction, s.PriceShift.Adjustment, s.PriceShift.BasePrice)
	}

	return b.String(), nil
}

func primaryRiskReward(contract engine.RankedContract, primaryMove string) float64 {
	for _, m := range contract.Moves {
		if m.Name == primaryMove {
			return m.RiskReward
		}
	}
	if len(contract.Moves) > 0 {
		return contract.Moves[0].RiskReward
	}
	return 0
}

func joinStrikes(strikes []float64) string {
	parts := make([]string, len(strikes))
	for i, s := range strikes {
		parts[i] = fmt.Sprintf("%.2f", s)
	}
	return strings.Join(parts, ", ")
}
