package repos

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/yungbote/regwatch-backend/internal/logger"
	"github.com/yungbote/regwatch-backend/internal/types"
)

type AppealRepo interface {
	Create(ctx context.Context, tx *gorm.DB, appeal *types.Appeal) (*types.Appeal, error)
	GetByID(ctx context.Context, tx *gorm.DB, appealID uuid.UUID) (*types.Appeal, error)
	ListAll(ctx context.Context, tx *gorm.DB, status types.AppealStatus) ([]*types.Appeal, error)
	// Resolve flips a pending appeal exactly once; the returned count is
	// zero when the appeal was already resolved (or missing).
	Resolve(ctx context.Context, tx *gorm.DB, appealID uuid.UUID, status types.AppealStatus, resolvedAt time.Time) (int64, error)
}

type appealRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewAppealRepo(db *gorm.DB, baseLog *logger.Logger) AppealRepo {
	repoLog := baseLog.With("repo", "AppealRepo")
	return &appealRepo{db: db, log: repoLog}
}

func (ar *appealRepo) Create(ctx context.Context, tx *gorm.DB, appeal *types.Appeal) (*types.Appeal, error) {
	transaction := tx
	if transaction == nil {
		transaction = ar.db
	}
	if err := transaction.WithContext(ctx).Create(appeal).Error; err != nil {
		return nil, err
	}
	return appeal, nil
}

func (ar *appealRepo) GetByID(ctx context.Context, tx *gorm.DB, appealID uuid.UUID) (*types.Appeal, error) {
	transaction := tx
	if transaction == nil {
		transaction = ar.db
	}
	var result types.Appeal
	if err := transaction.WithContext(ctx).
		Where("id = ?", appealID).
		First(&result).Error; err != nil {
		return nil, err
	}
	return &result, nil
}

func (ar *appealRepo) ListAll(ctx context.Context, tx *gorm.DB, status types.AppealStatus) ([]*types.Appeal, error) {
	transaction := tx
	if transaction == nil {
		transaction = ar.db
	}
	query := transaction.WithContext(ctx).Model(&types.Appeal{})
	if status != "" {
		query = query.Where("status = ?", status)
	}
	var results []*types.Appeal
	if err := query.Order("created_at DESC").Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (ar *appealRepo) Resolve(ctx context.Context, tx *gorm.DB, appealID uuid.UUID, status types.AppealStatus, resolvedAt time.Time) (int64, error) {
	transaction := tx
	if transaction == nil {
		transaction = ar.db
	}
	result := transaction.WithContext(ctx).
		Model(&types.Appeal{}).
		Where("id = ? AND status = ?", appealID, types.AppealStatusPending).
		Updates(map[string]interface{}{
			"status":      status,
			"resolved_at": resolvedAt,
		})
	if result.Error != nil {
		return 0, result.Error
	}
	return result.RowsAffected, nil
}
