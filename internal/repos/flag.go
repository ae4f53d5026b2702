package repos

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/yungbote/regwatch-backend/internal/logger"
	"github.com/yungbote/regwatch-backend/internal/types"
)

// OpenFlag is a flag joined with the listing context the review queue
// shows next to it.
type OpenFlag struct {
	types.Flag
	ListingTitle  string              `gorm:"column:listing_title" json:"listing_title"`
	ListingImage  *string             `gorm:"column:listing_image" json:"listing_image,omitempty"`
	ListingStatus types.ListingStatus `gorm:"column:listing_status" json:"listing_status"`
}

type FlagRepo interface {
	Create(ctx context.Context, tx *gorm.DB, flag *types.Flag) (*types.Flag, error)
	GetByID(ctx context.Context, tx *gorm.DB, flagID uuid.UUID) (*types.Flag, error)
	ListOpen(ctx context.Context, tx *gorm.DB) ([]*OpenFlag, error)
	ListByListingID(ctx context.Context, tx *gorm.DB, listingID uuid.UUID) ([]*types.Flag, error)
	MarkReviewed(ctx context.Context, tx *gorm.DB, flagID uuid.UUID) error
	ReviewAllForListing(ctx context.Context, tx *gorm.DB, listingID uuid.UUID) error
}

type flagRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewFlagRepo(db *gorm.DB, baseLog *logger.Logger) FlagRepo {
	repoLog := baseLog.With("repo", "FlagRepo")
	return &flagRepo{db: db, log: repoLog}
}

func (fr *flagRepo) Create(ctx context.Context, tx *gorm.DB, flag *types.Flag) (*types.Flag, error) {
	transaction := tx
	if transaction == nil {
		transaction = fr.db
	}
	if err := transaction.WithContext(ctx).Create(flag).Error; err != nil {
		return nil, err
	}
	return flag, nil
}

func (fr *flagRepo) GetByID(ctx context.Context, tx *gorm.DB, flagID uuid.UUID) (*types.Flag, error) {
	transaction := tx
	if transaction == nil {
		transaction = fr.db
	}
	var result types.Flag
	if err := transaction.WithContext(ctx).
		Where("id = ?", flagID).
		First(&result).Error; err != nil {
		return nil, err
	}
	return &result, nil
}

// ListOpen joins the listing in one query so the queue never pairs an
// open flag with listing state from a different point in time.
func (fr *flagRepo) ListOpen(ctx context.Context, tx *gorm.DB) ([]*OpenFlag, error) {
	transaction := tx
	if transaction == nil {
		transaction = fr.db
	}
	var results []*OpenFlag
	if err := transaction.WithContext(ctx).
		Table("flag").
		Select("flag.*, listing.title AS listing_title, listing.image_url AS listing_image, listing.status AS listing_status").
		Joins("JOIN listing ON listing.id = flag.listing_id").
		Where("flag.reviewed = ?", false).
		Order("flag.created_at DESC").
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (fr *flagRepo) ListByListingID(ctx context.Context, tx *gorm.DB, listingID uuid.UUID) ([]*types.Flag, error) {
	transaction := tx
	if transaction == nil {
		transaction = fr.db
	}
	var results []*types.Flag
	if err := transaction.WithContext(ctx).
		Where("listing_id = ?", listingID).
		Order("created_at DESC").
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (fr *flagRepo) MarkReviewed(ctx context.Context, tx *gorm.DB, flagID uuid.UUID) error {
	transaction := tx
	if transaction == nil {
		transaction = fr.db
	}
	return transaction.WithContext(ctx).
		Model(&types.Flag{}).
		Where("id = ?", flagID).
		Update("reviewed", true).Error
}

func (fr *flagRepo) ReviewAllForListing(ctx context.Context, tx *gorm.DB, listingID uuid.UUID) error {
	transaction := tx
	if transaction == nil {
		transaction = fr.db
	}
	return transaction.WithContext(ctx).
		Model(&types.Flag{}).
		Where("listing_id = ? AND reviewed = ?", listingID, false).
		Update("reviewed", true).Error
}
