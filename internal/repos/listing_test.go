package repos

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/yungbote/regwatch-backend/internal/repos/testutil"
	"github.com/yungbote/regwatch-backend/internal/types"
)

func TestListingRepo(t *testing.T) {
	db := testutil.DB(t)
	tx := testutil.Tx(t, db)

	repo := NewListingRepo(db, testutil.Logger(t))
	ctx := context.Background()

	created, err := repo.Create(ctx, tx, &types.Listing{
		ID:          uuid.New(),
		SellerID:    "seller-1",
		Title:       "Herbal tea",
		Description: "Loose leaf blend",
		Status:      types.ListingStatusActive,
	})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	got, err := repo.GetByID(ctx, tx, created.ID)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if got.SellerID != "seller-1" || got.Status != types.ListingStatusActive {
		t.Fatalf("GetByID: unexpected result: %+v", got)
	}

	if _, err := repo.GetByID(ctx, tx, uuid.New()); !errors.Is(err, gorm.ErrRecordNotFound) {
		t.Fatalf("GetByID (missing): expected ErrRecordNotFound, got %v", err)
	}

	listed, err := repo.List(ctx, tx, ListingFilter{SellerID: "seller-1"})
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(listed) != 1 || listed[0].ID != created.ID {
		t.Fatalf("List by seller: unexpected result: %+v", listed)
	}

	listed, err = repo.List(ctx, tx, ListingFilter{SellerID: "seller-1", Query: "herbal"})
	if err != nil {
		t.Fatalf("List (query): %v", err)
	}
	if len(listed) != 1 {
		t.Fatalf("List (query): expected case-insensitive title match, got %+v", listed)
	}

	listed, err = repo.List(ctx, tx, ListingFilter{SellerID: "seller-1", Status: types.ListingStatusBanned})
	if err != nil {
		t.Fatalf("List (status): %v", err)
	}
	if len(listed) != 0 {
		t.Fatalf("List (status): expected no banned listings, got %+v", listed)
	}

	if err := repo.UpdateStatus(ctx, tx, created.ID, types.ListingStatusFlagged); err != nil {
		t.Fatalf("UpdateStatus: %v", err)
	}
	checkedAt := time.Now().UTC().Truncate(time.Millisecond)
	if err := repo.SetLastChecked(ctx, tx, created.ID, checkedAt); err != nil {
		t.Fatalf("SetLastChecked: %v", err)
	}
	if err := repo.UpdateFields(ctx, tx, created.ID, map[string]interface{}{"title": "Herbal tea sampler"}); err != nil {
		t.Fatalf("UpdateFields: %v", err)
	}

	got, err = repo.GetByID(ctx, tx, created.ID)
	if err != nil {
		t.Fatalf("GetByID (reload): %v", err)
	}
	if got.Status != types.ListingStatusFlagged {
		t.Fatalf("expected status Flagged, got %s", got.Status)
	}
	if got.LastCheckedAt == nil || !got.LastCheckedAt.Equal(checkedAt) {
		t.Fatalf("expected last_checked_at %v, got %v", checkedAt, got.LastCheckedAt)
	}
	if got.Title != "Herbal tea sampler" {
		t.Fatalf("expected updated title, got %q", got.Title)
	}
}
