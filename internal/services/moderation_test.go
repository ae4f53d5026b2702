package services

import (
	"testing"

	"github.com/yungbote/regwatch-backend/internal/types"
)

func TestShouldFlag(t *testing.T) {
	cases := []struct {
		name    string
		verdict types.Verdict
		want    bool
	}{
		{
			name:    "compliant low",
			verdict: types.Verdict{Compliant: true, Severity: types.SeverityLow},
			want:    false,
		},
		{
			name:    "compliant critical never flags",
			verdict: types.Verdict{Compliant: true, Severity: types.SeverityCritical},
			want:    false,
		},
		{
			name:    "non-compliant low",
			verdict: types.Verdict{Compliant: false, Severity: types.SeverityLow},
			want:    false,
		},
		{
			name:    "non-compliant medium",
			verdict: types.Verdict{Compliant: false, Severity: types.SeverityMedium},
			want:    false,
		},
		{
			name:    "non-compliant high",
			verdict: types.Verdict{Compliant: false, Severity: types.SeverityHigh},
			want:    true,
		},
		{
			name:    "non-compliant critical",
			verdict: types.Verdict{Compliant: false, Severity: types.SeverityCritical},
			want:    true,
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := shouldFlag(&tc.verdict); got != tc.want {
				t.Fatalf("shouldFlag(%+v) = %v, want %v", tc.verdict, got, tc.want)
			}
		})
	}
}

func TestNextStatus(t *testing.T) {
	flagging := &types.Verdict{Compliant: false, Severity: types.SeverityCritical}
	benign := &types.Verdict{Compliant: true, Severity: types.SeverityLow}

	cases := []struct {
		name    string
		current types.ListingStatus
		verdict *types.Verdict
		want    types.ListingStatus
	}{
		{"active stays active on clean verdict", types.ListingStatusActive, benign, types.ListingStatusActive},
		{"active flagged on severe verdict", types.ListingStatusActive, flagging, types.ListingStatusFlagged},
		{"flagged never downgraded by clean verdict", types.ListingStatusFlagged, benign, types.ListingStatusFlagged},
		{"flagged stays flagged on severe verdict", types.ListingStatusFlagged, flagging, types.ListingStatusFlagged},
		{"banned untouched by clean verdict", types.ListingStatusBanned, benign, types.ListingStatusBanned},
		{"banned untouched by severe verdict", types.ListingStatusBanned, flagging, types.ListingStatusBanned},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := nextStatus(tc.current, tc.verdict); got != tc.want {
				t.Fatalf("nextStatus(%s, %+v) = %s, want %s", tc.current, tc.verdict, got, tc.want)
			}
		})
	}
}
