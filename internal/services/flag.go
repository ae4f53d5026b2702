package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/yungbote/regwatch-backend/internal/apierr"
	"github.com/yungbote/regwatch-backend/internal/logger"
	"github.com/yungbote/regwatch-backend/internal/repos"
)

type FlagService interface {
	ListOpen(ctx context.Context) ([]*repos.OpenFlag, error)
	MarkReviewed(ctx context.Context, flagID uuid.UUID) error
}

type flagService struct {
	db       *gorm.DB
	log      *logger.Logger
	flagRepo repos.FlagRepo
}

func NewFlagService(db *gorm.DB, log *logger.Logger, flagRepo repos.FlagRepo) FlagService {
	serviceLog := log.With("service", "FlagService")
	return &flagService{
		db:       db,
		log:      serviceLog,
		flagRepo: flagRepo,
	}
}

func (fs *flagService) ListOpen(ctx context.Context) ([]*repos.OpenFlag, error) {
	flags, err := fs.flagRepo.ListOpen(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("list open flags: %w", err)
	}
	return flags, nil
}

func (fs *flagService) MarkReviewed(ctx context.Context, flagID uuid.UUID) error {
	return fs.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		flag, err := fs.flagRepo.GetByID(ctx, tx, flagID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apierr.NotFound(fmt.Errorf("flag %s not found", flagID))
			}
			return fmt.Errorf("load flag %s: %w", flagID, err)
		}
		if flag.Reviewed {
			// Idempotent: marking twice is fine.
			return nil
		}
		if err := fs.flagRepo.MarkReviewed(ctx, tx, flagID); err != nil {
			return fmt.Errorf("mark flag reviewed: %w", err)
		}
		return nil
	})
}
