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
	"github.com/yungbote/regwatch-backend/internal/evaluator"
	"github.com/yungbote/regwatch-backend/internal/logger"
	"github.com/yungbote/regwatch-backend/internal/repos"
	"github.com/yungbote/regwatch-backend/internal/types"
)

// ModerationService owns the listing lifecycle state machine: it turns
// evaluator verdicts into status transitions and flags, and applies
// operator decisions.
type ModerationService interface {
	Evaluate(ctx context.Context, listingID uuid.UUID) (*types.ComplianceResult, error)
	Ban(ctx context.Context, listingID uuid.UUID, reason string) error
	Reinstate(ctx context.Context, listingID uuid.UUID) error
}

type moderationService struct {
	db          *gorm.DB
	log         *logger.Logger
	listingRepo repos.ListingRepo
	resultRepo  repos.ComplianceResultRepo
	flagRepo    repos.FlagRepo
	evaluator   evaluator.Evaluator
	evalTimeout time.Duration
}

func NewModerationService(
	db *gorm.DB,
	log *logger.Logger,
	listingRepo repos.ListingRepo,
	resultRepo repos.ComplianceResultRepo,
	flagRepo repos.FlagRepo,
	complianceEvaluator evaluator.Evaluator,
	evalTimeout time.Duration,
) ModerationService {
	serviceLog := log.With("service", "ModerationService")
	return &moderationService{
		db:          db,
		log:         serviceLog,
		listingRepo: listingRepo,
		resultRepo:  resultRepo,
		flagRepo:    flagRepo,
		evaluator:   complianceEvaluator,
		evalTimeout: evalTimeout,
	}
}

// shouldFlag is true for the verdicts that open a Flag: non-compliant
// with high or critical severity.
func shouldFlag(v *types.Verdict) bool {
	return !v.Compliant && v.Severity.Rank() >= types.SeverityHigh.Rank()
}

// nextStatus applies the evaluation transition rule. Only Active
// listings move to Flagged; a later low-severity or compliant verdict
// never downgrades Flagged or Banned, that takes an explicit
// moderation or appeal action.
func nextStatus(current types.ListingStatus, v *types.Verdict) types.ListingStatus {
	if current == types.ListingStatusActive && shouldFlag(v) {
		return types.ListingStatusFlagged
	}
	return current
}

func (ms *moderationService) Evaluate(ctx context.Context, listingID uuid.UUID) (*types.ComplianceResult, error) {
	listing, err := ms.listingRepo.GetByID(ctx, nil, listingID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apierr.NotFound(fmt.Errorf("listing %s not found", listingID))
		}
		return nil, fmt.Errorf("load listing %s: %w", listingID, err)
	}

	evalCtx, cancel := context.WithTimeout(ctx, ms.evalTimeout)
	verdict, evalErr := ms.evaluator.Evaluate(evalCtx, listing)
	cancel()
	if evalErr == nil {
		evalErr = evaluator.ValidateVerdict(verdict)
	}

	checkedAt := time.Now().UTC()
	if evalErr != nil {
		// The attempt is still recorded; no result row, status untouched.
		if markErr := ms.listingRepo.SetLastChecked(ctx, nil, listingID, checkedAt); markErr != nil {
			ms.log.Error("Failed to record evaluation attempt", "listing_id", listingID, "error", markErr)
		}
		ms.log.Warn("Evaluation failed", "listing_id", listingID, "error", evalErr)
		return nil, apierr.Evaluation(fmt.Errorf("evaluate listing %s: %w", listingID, evalErr))
	}

	result, err := types.NewComplianceResult(listing.ID, verdict)
	if err != nil {
		return nil, fmt.Errorf("encode compliance result: %w", err)
	}

	if err := ms.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		// The pre-call snapshot is stale by up to the evaluator timeout.
		// Re-read under a row lock so a ban or reinstate that committed
		// during the round-trip decides the transition, not the snapshot.
		current, err := ms.listingRepo.GetByIDForUpdate(ctx, tx, listing.ID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apierr.NotFound(fmt.Errorf("listing %s not found", listing.ID))
			}
			return fmt.Errorf("lock listing %s: %w", listing.ID, err)
		}
		if _, err := ms.resultRepo.Create(ctx, tx, result); err != nil {
			return fmt.Errorf("record compliance result: %w", err)
		}
		if err := ms.listingRepo.SetLastChecked(ctx, tx, current.ID, checkedAt); err != nil {
			return fmt.Errorf("update last_checked_at: %w", err)
		}
		if shouldFlag(verdict) {
			flag := &types.Flag{
				ID:        uuid.New(),
				ListingID: current.ID,
				SellerID:  current.SellerID,
				Severity:  verdict.Severity,
				Reason:    strings.Join(verdict.Violations, ", "),
			}
			if _, err := ms.flagRepo.Create(ctx, tx, flag); err != nil {
				return fmt.Errorf("open flag: %w", err)
			}
		}
		if next := nextStatus(current.Status, verdict); next != current.Status {
			if err := ms.listingRepo.UpdateStatus(ctx, tx, current.ID, next); err != nil {
				return fmt.Errorf("transition listing status: %w", err)
			}
			ms.log.Info("Listing status transition",
				"listing_id", current.ID,
				"from", current.Status,
				"to", next,
				"severity", verdict.Severity,
			)
		}
		return nil
	}); err != nil {
		return nil, err
	}

	return result, nil
}

func (ms *moderationService) Ban(ctx context.Context, listingID uuid.UUID, reason string) error {
	err := ms.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		listing, err := ms.listingRepo.GetByID(ctx, tx, listingID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apierr.NotFound(fmt.Errorf("listing %s not found", listingID))
			}
			return fmt.Errorf("load listing %s: %w", listingID, err)
		}
		if listing.Status != types.ListingStatusBanned {
			if err := ms.listingRepo.UpdateStatus(ctx, tx, listingID, types.ListingStatusBanned); err != nil {
				return fmt.Errorf("ban listing: %w", err)
			}
		}
		if err := ms.flagRepo.ReviewAllForListing(ctx, tx, listingID); err != nil {
			return fmt.Errorf("review open flags: %w", err)
		}
		return nil
	})
	if err != nil {
		return err
	}
	ms.log.Info("Listing banned", "listing_id", listingID, "reason", reason)
	return nil
}

func (ms *moderationService) Reinstate(ctx context.Context, listingID uuid.UUID) error {
	err := ms.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		_, err := ms.listingRepo.GetByID(ctx, tx, listingID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apierr.NotFound(fmt.Errorf("listing %s not found", listingID))
			}
			return fmt.Errorf("load listing %s: %w", listingID, err)
		}
		if err := ms.listingRepo.UpdateStatus(ctx, tx, listingID, types.ListingStatusActive); err != nil {
			return fmt.Errorf("reinstate listing: %w", err)
		}
		return nil
	})
	if err != nil {
		return err
	}
	ms.log.Info("Listing reinstated", "listing_id", listingID)
	return nil
}
