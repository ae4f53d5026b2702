package repos

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/yungbote/regwatch-backend/internal/logger"
	"github.com/yungbote/regwatch-backend/internal/types"
)

type ComplianceResultRepo interface {
	Create(ctx context.Context, tx *gorm.DB, result *types.ComplianceResult) (*types.ComplianceResult, error)
	ListByListingID(ctx context.Context, tx *gorm.DB, listingID uuid.UUID) ([]*types.ComplianceResult, error)
	LatestByListingIDs(ctx context.Context, tx *gorm.DB, listingIDs []uuid.UUID) (map[uuid.UUID]*types.ComplianceResult, error)
}

type complianceResultRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewComplianceResultRepo(db *gorm.DB, baseLog *logger.Logger) ComplianceResultRepo {
	repoLog := baseLog.With("repo", "ComplianceResultRepo")
	return &complianceResultRepo{db: db, log: repoLog}
}

func (cr *complianceResultRepo) Create(ctx context.Context, tx *gorm.DB, result *types.ComplianceResult) (*types.ComplianceResult, error) {
	transaction := tx
	if transaction == nil {
		transaction = cr.db
	}
	if err := transaction.WithContext(ctx).Create(result).Error; err != nil {
		return nil, err
	}
	return result, nil
}

func (cr *complianceResultRepo) ListByListingID(ctx context.Context, tx *gorm.DB, listingID uuid.UUID) ([]*types.ComplianceResult, error) {
	transaction := tx
	if transaction == nil {
		transaction = cr.db
	}
	var results []*types.ComplianceResult
	if err := transaction.WithContext(ctx).
		Where("listing_id = ?", listingID).
		Order("created_at DESC").
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (cr *complianceResultRepo) LatestByListingIDs(ctx context.Context, tx *gorm.DB, listingIDs []uuid.UUID) (map[uuid.UUID]*types.ComplianceResult, error) {
	transaction := tx
	if transaction == nil {
		transaction = cr.db
	}
	latest := make(map[uuid.UUID]*types.ComplianceResult, len(listingIDs))
	if len(listingIDs) == 0 {
		return latest, nil
	}
	var results []*types.ComplianceResult
	if err := transaction.WithContext(ctx).
		Where("listing_id IN ?", listingIDs).
		Order("created_at DESC").
		Find(&results).Error; err != nil {
		return nil, err
	}
	// Rows come back newest first, so the first row per listing wins.
	for _, result := range results {
		if _, ok := latest[result.ListingID]; !ok {
			latest[result.ListingID] = result
		}
	}
	return latest, nil
}
