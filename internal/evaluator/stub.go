package evaluator

import (
	"context"
	"hash/fnv"

	"github.com/yungbote/regwatch-backend/internal/logger"
	"github.com/yungbote/regwatch-backend/internal/types"
)

// StubEvaluator is the in-process stand-in used when no evaluator
// service is configured. It picks one of three canned verdicts keyed
// by the listing content, so repeated evaluations of an unchanged
// listing are deterministic.
type StubEvaluator struct {
	log *logger.Logger
}

func NewStubEvaluator(log *logger.Logger) *StubEvaluator {
	return &StubEvaluator{log: log.With("service", "StubEvaluator")}
}

var stubVerdicts = []types.Verdict{
	{
		Compliant:   true,
		Violations:  []string{},
		Suggestions: []string{"Consider adding more detailed product specifications"},
		Severity:    types.SeverityLow,
		Confidence:  0.85,
		UsesContext: true,
		TopRules:    []string{"General product safety guidelines"},
		AgentSummaries: []types.AgentSummary{
			{
				Agent:       "CPSC_Safety_Agent",
				Table:       "safety_rules",
				Score:       0.9,
				Compliant:   true,
				Severity:    types.SeverityLow,
				UsesContext: true,
				TopRules:    []string{"Basic safety compliance", "Product labeling requirements"},
			},
		},
	},
	{
		Compliant:   false,
		Violations:  []string{"Missing safety warnings", "Incomplete ingredient list"},
		Suggestions: []string{"Add proper safety warnings", "Include complete ingredient information"},
		Severity:    types.SeverityMedium,
		Confidence:  0.75,
		UsesContext: true,
		TopRules:    []string{"FDA labeling requirements", "Consumer safety standards"},
		AgentSummaries: []types.AgentSummary{
			{
				Agent:       "FDA_Food_Agent",
				Table:       "food_safety_rules",
				Score:       0.6,
				Compliant:   false,
				Severity:    types.SeverityMedium,
				UsesContext: true,
				TopRules:    []string{"Ingredient disclosure", "Allergen warnings"},
			},
		},
	},
	{
		Compliant:   false,
		Violations:  []string{"Prohibited substance detected", "Missing FDA approval", "Safety hazard identified"},
		Suggestions: []string{"Remove prohibited substances", "Obtain FDA approval", "Address safety concerns"},
		Severity:    types.SeverityCritical,
		Confidence:  0.95,
		UsesContext: true,
		TopRules:    []string{"FDA drug regulations", "CPSC safety standards", "Prohibited substances list"},
		AgentSummaries: []types.AgentSummary{
			{
				Agent:       "FDA_Drug_Agent",
				Table:       "drug_regulations",
				Score:       0.2,
				Compliant:   false,
				Severity:    types.SeverityCritical,
				UsesContext: true,
				TopRules:    []string{"Prescription drug regulations", "Controlled substances"},
			},
		},
	},
}

func (e *StubEvaluator) Evaluate(ctx context.Context, listing *types.Listing) (*types.Verdict, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	hasher := fnv.New32a()
	_, _ = hasher.Write([]byte(listing.Title))
	_, _ = hasher.Write([]byte{0})
	_, _ = hasher.Write([]byte(listing.Description))
	picked := stubVerdicts[int(hasher.Sum32())%len(stubVerdicts)]
	e.log.Debug("Stub evaluation", "listing_id", listing.ID, "severity", picked.Severity, "compliant", picked.Compliant)
	return &picked, nil
}
