package repos

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/yungbote/regwatch-backend/internal/repos/testutil"
	"github.com/yungbote/regwatch-backend/internal/types"
)

func TestAppealRepo(t *testing.T) {
	db := testutil.DB(t)
	tx := testutil.Tx(t, db)

	listingRepo := NewListingRepo(db, testutil.Logger(t))
	repo := NewAppealRepo(db, testutil.Logger(t))
	ctx := context.Background()

	listing, err := listingRepo.Create(ctx, tx, &types.Listing{
		ID:          uuid.New(),
		SellerID:    "seller-3",
		Title:       "Vitamin gummies",
		Description: "Daily supplement",
		Status:      types.ListingStatusBanned,
	})
	if err != nil {
		t.Fatalf("Create listing: %v", err)
	}

	created, err := repo.Create(ctx, tx, &types.Appeal{
		ID:        uuid.New(),
		ListingID: listing.ID,
		SellerID:  listing.SellerID,
		Reason:    "Labels fixed, please re-review",
		Status:    types.AppealStatusPending,
	})
	if err != nil {
		t.Fatalf("Create appeal: %v", err)
	}

	pending, err := repo.ListAll(ctx, tx, types.AppealStatusPending)
	if err != nil {
		t.Fatalf("ListAll (pending): %v", err)
	}
	found := false
	for _, a := range pending {
		if a.ID == created.ID {
			found = true
		}
	}
	if !found {
		t.Fatalf("ListAll (pending): appeal not returned")
	}

	resolvedAt := time.Now().UTC().Truncate(time.Millisecond)
	rows, err := repo.Resolve(ctx, tx, created.ID, types.AppealStatusApproved, resolvedAt)
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if rows != 1 {
		t.Fatalf("Resolve: expected 1 row affected, got %d", rows)
	}

	// The guarded update must refuse a second resolution.
	rows, err = repo.Resolve(ctx, tx, created.ID, types.AppealStatusRejected, time.Now().UTC())
	if err != nil {
		t.Fatalf("Resolve (again): %v", err)
	}
	if rows != 0 {
		t.Fatalf("Resolve (again): expected 0 rows affected, got %d", rows)
	}

	got, err := repo.GetByID(ctx, tx, created.ID)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if got.Status != types.AppealStatusApproved {
		t.Fatalf("expected status approved, got %s", got.Status)
	}
	if got.ResolvedAt == nil || !got.ResolvedAt.Equal(resolvedAt) {
		t.Fatalf("expected resolved_at %v, got %v", resolvedAt, got.ResolvedAt)
	}
}
