package evaluator

import (
	"context"
	"fmt"

	"github.com/yungbote/regwatch-backend/internal/types"
)

// Evaluator is the external compliance-evaluation capability. The core
// treats it as a black box: any failure (unreachable, timeout, garbage
// payload) surfaces as an error, never as a default verdict.
type Evaluator interface {
	Evaluate(ctx context.Context, listing *types.Listing) (*types.Verdict, error)
}

// ValidateVerdict rejects malformed evaluator output before it can
// reach storage or the status-transition rule.
func ValidateVerdict(v *types.Verdict) error {
	if v == nil {
		return fmt.Errorf("verdict is nil")
	}
	if !v.Severity.Valid() {
		return fmt.Errorf("unknown severity %q", v.Severity)
	}
	if v.Confidence < 0 || v.Confidence > 1 {
		return fmt.Errorf("confidence %v out of range [0,1]", v.Confidence)
	}
	if v.Compliant && len(v.Violations) > 0 {
		return fmt.Errorf("compliant verdict carries %d violations", len(v.Violations))
	}
	for _, summary := range v.AgentSummaries {
		if !summary.Severity.Valid() {
			return fmt.Errorf("agent %q has unknown severity %q", summary.Agent, summary.Severity)
		}
	}
	return nil
}
