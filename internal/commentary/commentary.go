// Package commentary turns ranked analysis output into short written
// explanations. The rule-based commentator is deterministic and always
// available; the OpenAI commentator layers model-written prose on top and
// falls back to the rules when the API is unreachable.
package commentary

import (
	"context"

	"github.com/greekscope/greekscope/internal/engine"
)

// Commentator produces human-readable commentary for analysis output.
type Commentator interface {
	// ContractCommentary explains why one ranked contract scored the way
	// it did.
	ContractCommentary(ctx context.Context, contract engine.RankedContract, primaryMove string) (string, error)

	// RunCommentary summarizes a whole analysis run.
	RunCommentary(ctx context.Context, result *engine.AnalysisResult) (string, error)
}
