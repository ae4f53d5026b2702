package repos

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/yungbote/regwatch-backend/internal/logger"
	"github.com/yungbote/regwatch-backend/internal/types"
)

type ListingFilter struct {
	SellerID string
	Status   types.ListingStatus
	Query    string
	Limit    int
	Offset   int
}

type ListingRepo interface {
	Create(ctx context.Context, tx *gorm.DB, listing *types.Listing) (*types.Listing, error)
	GetByID(ctx context.Context, tx *gorm.DB, listingID uuid.UUID) (*types.Listing, error)
	GetByIDForUpdate(ctx context.Context, tx *gorm.DB, listingID uuid.UUID) (*types.Listing, error)
	GetByIDs(ctx context.Context, tx *gorm.DB, listingIDs []uuid.UUID) ([]*types.Listing, error)
	List(ctx context.Context, tx *gorm.DB, filter ListingFilter) ([]*types.Listing, error)
	UpdateFields(ctx context.Context, tx *gorm.DB, listingID uuid.UUID, updates map[string]interface{}) error
	UpdateStatus(ctx context.Context, tx *gorm.DB, listingID uuid.UUID, status types.ListingStatus) error
	SetLastChecked(ctx context.Context, tx *gorm.DB, listingID uuid.UUID, checkedAt time.Time) error
}

type listingRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewListingRepo(db *gorm.DB, baseLog *logger.Logger) ListingRepo {
	repoLog := baseLog.With("repo", "ListingRepo")
	return &listingRepo{db: db, log: repoLog}
}

func (lr *listingRepo) Create(ctx context.Context, tx *gorm.DB, listing *types.Listing) (*types.Listing, error) {
	transaction := tx
	if transaction == nil {
		transaction = lr.db
	}
	if err := transaction.WithContext(ctx).Create(listing).Error; err != nil {
		return nil, err
	}
	return listing, nil
}

func (lr *listingRepo) GetByID(ctx context.Context, tx *gorm.DB, listingID uuid.UUID) (*types.Listing, error) {
	transaction := tx
	if transaction == nil {
		transaction = lr.db
	}
	var result types.Listing
	if err := transaction.WithContext(ctx).
		Where("id = ?", listingID).
		First(&result).Error; err != nil {
		return nil, err
	}
	return &result, nil
}

// GetByIDForUpdate takes a row lock, so it only makes sense inside a
// transaction.
func (lr *listingRepo) GetByIDForUpdate(ctx context.Context, tx *gorm.DB, listingID uuid.UUID) (*types.Listing, error) {
	transaction := tx
	if transaction == nil {
		transaction = lr.db
	}
	var result types.Listing
	if err := transaction.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("id = ?", listingID).
		First(&result).Error; err != nil {
		return nil, err
	}
	return &result, nil
}

func (lr *listingRepo) GetByIDs(ctx context.Context, tx *gorm.DB, listingIDs []uuid.UUID) ([]*types.Listing, error) {
	transaction := tx
	if transaction == nil {
		transaction = lr.db
	}
	var results []*types.Listing
	if len(listingIDs) == 0 {
		return results, nil
	}
	if err := transaction.WithContext(ctx).
		Where("id IN ?", listingIDs).
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (lr *listingRepo) List(ctx context.Context, tx *gorm.DB, filter ListingFilter) ([]*types.Listing, error) {
	transaction := tx
	if transaction == nil {
		transaction = lr.db
	}
	query := transaction.WithContext(ctx).Model(&types.Listing{})
	if filter.SellerID != "" {
		query = query.Where("seller_id = ?", filter.SellerID)
	}
	if filter.Status != "" {
		query = query.Where("status = ?", filter.Status)
	}
	if filter.Query != "" {
		pattern := "%" + filter.Query + "%"
		query = query.Where("title ILIKE ? OR description ILIKE ?", pattern, pattern)
	}
	limit := filter.Limit
	if limit <= 0 {
		limit = 50
	}
	query = query.Order("created_at DESC").Limit(limit)
	if filter.Offset > 0 {
		query = query.Offset(filter.Offset)
	}
	var results []*types.Listing
	if err := query.Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (lr *listingRepo) UpdateFields(ctx context.Context, tx *gorm.DB, listingID uuid.UUID, updates map[string]interface{}) error {
	transaction := tx
	if transaction == nil {
		transaction = lr.db
	}
	if len(updates) == 0 {
		return nil
	}
	return transaction.WithContext(ctx).
		Model(&types.Listing{}).
		Where("id = ?", listingID).
		Updates(updates).Error
}

func (lr *listingRepo) UpdateStatus(ctx context.Context, tx *gorm.DB, listingID uuid.UUID, status types.ListingStatus) error {
	transaction := tx
	if transaction == nil {
		transaction = lr.db
	}
	return transaction.WithContext(ctx).
		Model(&types.Listing{}).
		Where("id = ?", listingID).
		Update("status", status).Error
}

func (lr *listingRepo) SetLastChecked(ctx context.Context, tx *gorm.DB, listingID uuid.UUID, checkedAt time.Time) error {
	transaction := tx
	if transaction == nil {
		transaction = lr.db
	}
	return transaction.WithContext(ctx).
		Model(&types.Listing{}).
		Where("id = ?", listingID).
		Update("last_checked_at", checkedAt).Error
}
