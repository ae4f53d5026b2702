package types

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

type Severity string

const (
	SeverityLow      Severity = "low"
	SeverityMedium   Severity = "medium"
	SeverityHigh     Severity = "high"
	SeverityCritical Severity = "critical"
)

func (s Severity) Valid() bool {
	switch s {
	case SeverityLow, SeverityMedium, SeverityHigh, SeverityCritical:
		return true
	}
	return false
}

// Rank orders severities low < medium < high < critical.
func (s Severity) Rank() int {
	switch s {
	case SeverityLow:
		return 0
	case SeverityMedium:
		return 1
	case SeverityHigh:
		return 2
	case SeverityCritical:
		return 3
	}
	return -1
}

// AgentSummary is one sub-evaluator's contribution to a verdict.
type AgentSummary struct {
	Agent       string   `json:"agent"`
	Table       string   `json:"table"`
	Score       float64  `json:"score"`
	Compliant   bool     `json:"compliant"`
	Severity    Severity `json:"severity"`
	UsesContext bool     `json:"uses_context"`
	TopRules    []string `json:"top_rules"`
}

// Verdict is the evaluator's wire-level answer for one listing.
type Verdict struct {
	Compliant      bool           `json:"compliant"`
	Violations     []string       `json:"violations"`
	Suggestions    []string       `json:"suggestions"`
	Severity       Severity       `json:"severity"`
	Confidence     float64        `json:"confidence"`
	UsesContext    bool           `json:"uses_context"`
	TopRules       []string       `json:"top_rules"`
	AgentSummaries []AgentSummary `json:"agent_summaries"`
}

type ComplianceResult struct {
	ID             uuid.UUID      `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	ListingID      uuid.UUID      `gorm:"type:uuid;not null;index;column:listing_id" json:"listing_id"`
	Compliant      bool           `gorm:"not null;column:compliant" json:"compliant"`
	Violations     datatypes.JSON `gorm:"column:violations;type:jsonb" json:"violations"`
	Suggestions    datatypes.JSON `gorm:"column:suggestions;type:jsonb" json:"suggestions"`
	Severity       Severity       `gorm:"not null;column:severity" json:"severity"`
	Confidence     float64        `gorm:"not null;column:confidence" json:"confidence"`
	UsesContext    bool           `gorm:"column:uses_context" json:"uses_context"`
	TopRules       datatypes.JSON `gorm:"column:top_rules;type:jsonb" json:"top_rules"`
	AgentSummaries datatypes.JSON `gorm:"column:agent_summaries;type:jsonb" json:"agent_summaries"`
	CreatedAt      time.Time      `gorm:"not null;default:now();index" json:"created_at"`
}

func (ComplianceResult) TableName() string { return "compliance_result" }

// NewComplianceResult freezes a verdict into an immutable result row.
func NewComplianceResult(listingID uuid.UUID, v *Verdict) (*ComplianceResult, error) {
	violations, err := json.Marshal(emptyIfNil(v.Violations))
	if err != nil {
		return nil, err
	}
	suggestions, err := json.Marshal(emptyIfNil(v.Suggestions))
	if err != nil {
		return nil, err
	}
	topRules, err := json.Marshal(emptyIfNil(v.TopRules))
	if err != nil {
		return nil, err
	}
	summaries := v.AgentSummaries
	if summaries == nil {
		summaries = []AgentSummary{}
	}
	agentSummaries, err := json.Marshal(summaries)
	if err != nil {
		return nil, err
	}
	return &ComplianceResult{
		ID:             uuid.New(),
		ListingID:      listingID,
		Compliant:      v.Compliant,
		Violations:     datatypes.JSON(violations),
		Suggestions:    datatypes.JSON(suggestions),
		Severity:       v.Severity,
		Confidence:     v.Confidence,
		UsesContext:    v.UsesContext,
		TopRules:       datatypes.JSON(topRules),
		AgentSummaries: datatypes.JSON(agentSummaries),
	}, nil
}

// Verdict reconstructs the wire shape stored in this row.
func (r *ComplianceResult) Verdict() (*Verdict, error) {
	v := &Verdict{
		Compliant:   r.Compliant,
		Severity:    r.Severity,
		Confidence:  r.Confidence,
		UsesContext: r.UsesContext,
	}
	if err := unmarshalJSONColumn(r.Violations, &v.Violations); err != nil {
		return nil, err
	}
	if err := unmarshalJSONColumn(r.Suggestions, &v.Suggestions); err != nil {
		return nil, err
	}
	if err := unmarshalJSONColumn(r.TopRules, &v.TopRules); err != nil {
		return nil, err
	}
	var summaries []AgentSummary
	if len(r.AgentSummaries) > 0 {
		if err := json.Unmarshal(r.AgentSummaries, &summaries); err != nil {
			return nil, err
		}
	}
	if summaries == nil {
		summaries = []AgentSummary{}
	}
	v.AgentSummaries = summaries
	return v, nil
}

func emptyIfNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}

func unmarshalJSONColumn(raw datatypes.JSON, out *[]string) error {
	if len(raw) > 0 {
		if err := json.Unmarshal(raw, out); err != nil {
			return err
		}
	}
	if *out == nil {
		*out = []string{}
	}
	return nil
}
