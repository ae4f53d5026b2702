package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/yungbote/regwatch-backend/internal/apierr"
	"github.com/yungbote/regwatch-backend/internal/logger"
	"github.com/yungbote/regwatch-backend/internal/repos"
	"github.com/yungbote/regwatch-backend/internal/types"
)

type FileAppealInput struct {
	ListingID uuid.UUID `json:"listing_id"`
	SellerID  string    `json:"seller_id"`
	Reason    string    `json:"reason"`
}

type AppealService interface {
	File(ctx context.Context, input FileAppealInput) (*types.Appeal, error)
	ListAll(ctx context.Context, status types.AppealStatus) ([]*types.Appeal, error)
	Resolve(ctx context.Context, appealID uuid.UUID, approve bool) (*types.Appeal, error)
}

type appealService struct {
	db          *gorm.DB
	log         *logger.Logger
	appealRepo  repos.AppealRepo
	listingRepo repos.ListingRepo
}

func NewAppealService(db *gorm.DB, log *logger.Logger, appealRepo repos.AppealRepo, listingRepo repos.ListingRepo) AppealService {
	serviceLog := log.With("service", "AppealService")
	return &appealService{
		db:          db,
		log:         serviceLog,
		appealRepo:  appealRepo,
		listingRepo: listingRepo,
	}
}

func (as *appealService) File(ctx context.Context, input FileAppealInput) (*types.Appeal, error) {
	sellerID := strings.TrimSpace(input.SellerID)
	reason := strings.TrimSpace(input.Reason)
	if sellerID == "" || reason == "" {
		return nil, apierr.Validation(fmt.Errorf("seller_id and reason are required"))
	}
	if input.ListingID == uuid.Nil {
		return nil, apierr.Validation(fmt.Errorf("listing_id is required"))
	}

	appeal := &types.Appeal{
		ID:        uuid.New(),
		ListingID: input.ListingID,
		SellerID:  sellerID,
		Reason:    reason,
		Status:    types.AppealStatusPending,
	}
	if err := as.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if _, err := as.listingRepo.GetByID(ctx, tx, input.ListingID); err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apierr.NotFound(fmt.Errorf("listing %s not found", input.ListingID))
			}
			return fmt.Errorf("load listing %s: %w", input.ListingID, err)
		}
		if _, err := as.appealRepo.Create(ctx, tx, appeal); err != nil {
			return fmt.Errorf("file appeal: %w", err)
		}
		return nil
	}); err != nil {
		return nil, err
	}

	as.log.Info("Appeal filed", "appeal_id", appeal.ID, "listing_id", appeal.ListingID, "seller_id", appeal.SellerID)
	return appeal, nil
}

func (as *appealService) ListAll(ctx context.Context, status types.AppealStatus) ([]*types.Appeal, error) {
	if status != "" && !status.Valid() {
		return nil, apierr.Validation(fmt.Errorf("unknown appeal status %q", status))
	}
	appeals, err := as.appealRepo.ListAll(ctx, nil, status)
	if err != nil {
		return nil, fmt.Errorf("list appeals: %w", err)
	}
	return appeals, nil
}

func (as *appealService) Resolve(ctx context.Context, appealID uuid.UUID, approve bool) (*types.Appeal, error) {
	status := types.AppealStatusRejected
	if approve {
		status = types.AppealStatusApproved
	}

	var out *types.Appeal
	if err := as.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		appeal, err := as.appealRepo.GetByID(ctx, tx, appealID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apierr.NotFound(fmt.Errorf("appeal %s not found", appealID))
			}
			return fmt.Errorf("load appeal %s: %w", appealID, err)
		}
		if appeal.Status != types.AppealStatusPending {
			return apierr.AlreadyResolved(fmt.Errorf("appeal %s already %s", appealID, appeal.Status))
		}

		resolvedAt := time.Now().UTC()
		rows, err := as.appealRepo.Resolve(ctx, tx, appealID, status, resolvedAt)
		if err != nil {
			return fmt.Errorf("resolve appeal: %w", err)
		}
		if rows == 0 {
			return apierr.Conflict(fmt.Errorf("appeal %s was resolved concurrently", appealID))
		}

		// Approval and reinstatement commit together or not at all.
		if approve {
			if err := as.listingRepo.UpdateStatus(ctx, tx, appeal.ListingID, types.ListingStatusActive); err != nil {
				return fmt.Errorf("reinstate listing %s: %w", appeal.ListingID, err)
			}
		}

		appeal.Status = status
		appeal.ResolvedAt = &resolvedAt
		out = appeal
		return nil
	}); err != nil {
		return nil, err
	}

	as.log.Info("Appeal resolved", "appeal_id", appealID, "status", status)
	return out, nil
}
