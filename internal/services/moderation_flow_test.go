package services

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/yungbote/regwatch-backend/internal/apierr"
	"github.com/yungbote/regwatch-backend/internal/repos"
	"github.com/yungbote/regwatch-backend/internal/repos/testutil"
	"github.com/yungbote/regwatch-backend/internal/types"
)

// scriptedEvaluator returns its queued verdicts (or errors) in order.
type scriptedEvaluator struct {
	verdicts []*types.Verdict
	errs     []error
	calls    int
}

func (se *scriptedEvaluator) Evaluate(_ context.Context, _ *types.Listing) (*types.Verdict, error) {
	i := se.calls
	se.calls++
	if i >= len(se.verdicts) {
		return nil, fmt.Errorf("unexpected evaluation call %d", i)
	}
	return se.verdicts[i], se.errs[i]
}

func seedListing(tb testing.TB, db *gorm.DB, listingRepo repos.ListingRepo, status types.ListingStatus) *types.Listing {
	tb.Helper()
	listing, err := listingRepo.Create(context.Background(), nil, &types.Listing{
		ID:          uuid.New(),
		SellerID:    "seller-" + uuid.NewString()[:8],
		Title:       "Herbal sleep supplement",
		Description: "Cures insomnia permanently",
		Status:      status,
	})
	if err != nil {
		tb.Fatalf("seed listing: %v", err)
	}
	tb.Cleanup(func() {
		db.Exec(`DELETE FROM appeal WHERE listing_id = ?`, listing.ID)
		db.Exec(`DELETE FROM flag WHERE listing_id = ?`, listing.ID)
		db.Exec(`DELETE FROM compliance_result WHERE listing_id = ?`, listing.ID)
		db.Exec(`DELETE FROM listing WHERE id = ?`, listing.ID)
	})
	return listing
}

func TestModerationFlow(t *testing.T) {
	db := testutil.DB(t)
	log := testutil.Logger(t)
	ctx := context.Background()

	listingRepo := repos.NewListingRepo(db, log)
	resultRepo := repos.NewComplianceResultRepo(db, log)
	flagRepo := repos.NewFlagRepo(db, log)
	appealRepo := repos.NewAppealRepo(db, log)

	eval := &scriptedEvaluator{
		verdicts: []*types.Verdict{
			{
				Compliant:  false,
				Violations: []string{"Unsubstantiated medical claim", "Missing FDA disclaimer"},
				Severity:   types.SeverityCritical,
				Confidence: 0.95,
			},
			{
				Compliant:  true,
				Severity:   types.SeverityLow,
				Confidence: 0.9,
			},
		},
		errs: []error{nil, nil},
	}
	moderation := NewModerationService(db, log, listingRepo, resultRepo, flagRepo, eval, 5*time.Second)
	appeals := NewAppealService(db, log, appealRepo, listingRepo)

	listing := seedListing(t, db, listingRepo, types.ListingStatusActive)

	// A critical non-compliant verdict flags the listing and opens a flag.
	result, err := moderation.Evaluate(ctx, listing.ID)
	if err != nil {
		t.Fatalf("Evaluate: %v", err)
	}
	if result.Compliant || result.Severity != types.SeverityCritical {
		t.Fatalf("unexpected result: %+v", result)
	}
	got, err := listingRepo.GetByID(ctx, nil, listing.ID)
	if err != nil {
		t.Fatalf("reload listing: %v", err)
	}
	if got.Status != types.ListingStatusFlagged {
		t.Fatalf("expected listing Flagged, got %s", got.Status)
	}
	if got.LastCheckedAt == nil {
		t.Fatalf("last_checked_at not stamped")
	}
	flags, err := flagRepo.ListByListingID(ctx, nil, listing.ID)
	if err != nil {
		t.Fatalf("ListByListingID: %v", err)
	}
	if len(flags) != 1 || flags[0].Reviewed {
		t.Fatalf("expected one open flag, got %+v", flags)
	}
	if flags[0].Severity != types.SeverityCritical {
		t.Fatalf("flag severity = %s", flags[0].Severity)
	}

	// A later clean verdict records a result but never downgrades Flagged.
	if _, err := moderation.Evaluate(ctx, listing.ID); err != nil {
		t.Fatalf("second Evaluate: %v", err)
	}
	got, err = listingRepo.GetByID(ctx, nil, listing.ID)
	if err != nil {
		t.Fatalf("reload listing: %v", err)
	}
	if got.Status != types.ListingStatusFlagged {
		t.Fatalf("clean verdict downgraded status to %s", got.Status)
	}
	history, err := resultRepo.ListByListingID(ctx, nil, listing.ID)
	if err != nil {
		t.Fatalf("ListByListingID: %v", err)
	}
	if len(history) != 2 {
		t.Fatalf("expected 2 results, got %d", len(history))
	}

	// Banning reviews every open flag in the same commit.
	if err := moderation.Ban(ctx, listing.ID, "repeat medical claims"); err != nil {
		t.Fatalf("Ban: %v", err)
	}
	got, err = listingRepo.GetByID(ctx, nil, listing.ID)
	if err != nil {
		t.Fatalf("reload listing: %v", err)
	}
	if got.Status != types.ListingStatusBanned {
		t.Fatalf("expected Banned, got %s", got.Status)
	}
	flags, err = flagRepo.ListByListingID(ctx, nil, listing.ID)
	if err != nil {
		t.Fatalf("ListByListingID: %v", err)
	}
	for _, f := range flags {
		if !f.Reviewed {
			t.Fatalf("flag %s left open after ban", f.ID)
		}
	}

	// The seller appeals; approval reinstates the listing atomically.
	appeal, err := appeals.File(ctx, FileAppealInput{
		ListingID: listing.ID,
		SellerID:  listing.SellerID,
		Reason:    "Listing copy has been corrected",
	})
	if err != nil {
		t.Fatalf("File: %v", err)
	}
	if appeal.Status != types.AppealStatusPending {
		t.Fatalf("new appeal status = %s", appeal.Status)
	}

	resolved, err := appeals.Resolve(ctx, appeal.ID, true)
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if resolved.Status != types.AppealStatusApproved || resolved.ResolvedAt == nil {
		t.Fatalf("unexpected resolved appeal: %+v", resolved)
	}
	got, err = listingRepo.GetByID(ctx, nil, listing.ID)
	if err != nil {
		t.Fatalf("reload listing: %v", err)
	}
	if got.Status != types.ListingStatusActive {
		t.Fatalf("approval did not reinstate listing, status = %s", got.Status)
	}

	// Resolution is exactly-once.
	if _, err := appeals.Resolve(ctx, appeal.ID, false); err == nil {
		t.Fatalf("second Resolve succeeded")
	} else if apiErr, ok := apierr.As(err); !ok || apiErr.Code != apierr.CodeAlreadyResolved {
		t.Fatalf("second Resolve error = %v, want already_resolved", err)
	}
}

func TestModerationEvaluateFailure(t *testing.T) {
	db := testutil.DB(t)
	log := testutil.Logger(t)
	ctx := context.Background()

	listingRepo := repos.NewListingRepo(db, log)
	resultRepo := repos.NewComplianceResultRepo(db, log)
	flagRepo := repos.NewFlagRepo(db, log)

	eval := &scriptedEvaluator{
		verdicts: []*types.Verdict{nil},
		errs:     []error{fmt.Errorf("evaluator unreachable")},
	}
	moderation := NewModerationService(db, log, listingRepo, resultRepo, flagRepo, eval, 5*time.Second)

	listing := seedListing(t, db, listingRepo, types.ListingStatusActive)

	_, err := moderation.Evaluate(ctx, listing.ID)
	if err == nil {
		t.Fatalf("Evaluate succeeded with failing evaluator")
	}
	apiErr, ok := apierr.As(err)
	if !ok || apiErr.Code != apierr.CodeEvaluation {
		t.Fatalf("error = %v, want evaluation_failed", err)
	}

	// The failed attempt is still recorded, with no result row and no
	// status change.
	got, err := listingRepo.GetByID(ctx, nil, listing.ID)
	if err != nil {
		t.Fatalf("reload listing: %v", err)
	}
	if got.Status != types.ListingStatusActive {
		t.Fatalf("failed evaluation changed status to %s", got.Status)
	}
	if got.LastCheckedAt == nil {
		t.Fatalf("last_checked_at not stamped on failure")
	}
	history, err := resultRepo.ListByListingID(ctx, nil, listing.ID)
	if err != nil {
		t.Fatalf("ListByListingID: %v", err)
	}
	if len(history) != 0 {
		t.Fatalf("failed evaluation stored %d results", len(history))
	}
}

// hookedEvaluator runs a callback while the evaluation is in flight,
// before the verdict is returned.
type hookedEvaluator struct {
	verdict *types.Verdict
	during  func()
}

func (he *hookedEvaluator) Evaluate(_ context.Context, _ *types.Listing) (*types.Verdict, error) {
	if he.during != nil {
		he.during()
		he.during = nil
	}
	return he.verdict, nil
}

func TestEvaluateDoesNotOverrideConcurrentBan(t *testing.T) {
	db := testutil.DB(t)
	log := testutil.Logger(t)
	ctx := context.Background()

	listingRepo := repos.NewListingRepo(db, log)
	resultRepo := repos.NewComplianceResultRepo(db, log)
	flagRepo := repos.NewFlagRepo(db, log)

	listing := seedListing(t, db, listingRepo, types.ListingStatusActive)

	// The ban commits while the evaluator round-trip is still open, so
	// Evaluate's pre-call snapshot of the status is stale by the time it
	// writes.
	var moderation ModerationService
	eval := &hookedEvaluator{
		verdict: &types.Verdict{
			Compliant:  false,
			Violations: []string{"Prohibited substance detected"},
			Severity:   types.SeverityCritical,
			Confidence: 0.95,
		},
		during: func() {
			if err := moderation.Ban(ctx, listing.ID, "manual takedown"); err != nil {
				t.Errorf("Ban during evaluation: %v", err)
			}
		},
	}
	moderation = NewModerationService(db, log, listingRepo, resultRepo, flagRepo, eval, 5*time.Second)

	if _, err := moderation.Evaluate(ctx, listing.ID); err != nil {
		t.Fatalf("Evaluate: %v", err)
	}

	got, err := listingRepo.GetByID(ctx, nil, listing.ID)
	if err != nil {
		t.Fatalf("reload listing: %v", err)
	}
	if got.Status != types.ListingStatusBanned {
		t.Fatalf("stale evaluation overwrote ban, status = %s", got.Status)
	}

	// The verdict itself is still recorded.
	history, err := resultRepo.ListByListingID(ctx, nil, listing.ID)
	if err != nil {
		t.Fatalf("ListByListingID: %v", err)
	}
	if len(history) != 1 {
		t.Fatalf("expected 1 result, got %d", len(history))
	}
}

func TestModerationNotFound(t *testing.T) {
	db := testutil.DB(t)
	log := testutil.Logger(t)
	ctx := context.Background()

	listingRepo := repos.NewListingRepo(db, log)
	resultRepo := repos.NewComplianceResultRepo(db, log)
	flagRepo := repos.NewFlagRepo(db, log)

	eval := &scriptedEvaluator{}
	moderation := NewModerationService(db, log, listingRepo, resultRepo, flagRepo, eval, 5*time.Second)

	missing := uuid.New()
	for name, call := range map[string]func() error{
		"Evaluate":  func() error { _, err := moderation.Evaluate(ctx, missing); return err },
		"Ban":       func() error { return moderation.Ban(ctx, missing, "gone") },
		"Reinstate": func() error { return moderation.Reinstate(ctx, missing) },
	} {
		err := call()
		if err == nil {
			t.Fatalf("%s on missing listing succeeded", name)
		}
		if apiErr, ok := apierr.As(err); !ok || apiErr.Code != apierr.CodeNotFound {
			t.Fatalf("%s error = %v, want not_found", name, err)
		}
	}
	if eval.calls != 0 {
		t.Fatalf("evaluator called %d times for missing listing", eval.calls)
	}
}
