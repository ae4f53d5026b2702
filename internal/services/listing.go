package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/yungbote/regwatch-backend/internal/apierr"
	"github.com/yungbote/regwatch-backend/internal/logger"
	"github.com/yungbote/regwatch-backend/internal/repos"
	"github.com/yungbote/regwatch-backend/internal/types"
)

type CreateListingInput struct {
	SellerID    string   `json:"seller_id"`
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Category    *string  `json:"category"`
	Price       *float64 `json:"price"`
	Inventory   *int     `json:"inventory"`
	ImageURL    *string  `json:"image_url"`
}

// UpdateListingInput enumerates the mutable fields. Anything else in a
// PATCH body is ignored rather than written through.
type UpdateListingInput struct {
	Title       *string  `json:"title"`
	Description *string  `json:"description"`
	Category    *string  `json:"category"`
	Price       *float64 `json:"price"`
	Inventory   *int     `json:"inventory"`
	ImageURL    *string  `json:"image_url"`
}

type ListingService interface {
	Create(ctx context.Context, input CreateListingInput) (*types.Listing, error)
	Get(ctx context.Context, listingID uuid.UUID) (*types.Listing, error)
	List(ctx context.Context, filter repos.ListingFilter) ([]*types.Listing, error)
	Update(ctx context.Context, listingID uuid.UUID, input UpdateListingInput) (*types.Listing, error)
}

type listingService struct {
	db          *gorm.DB
	log         *logger.Logger
	listingRepo repos.ListingRepo
	resultRepo  repos.ComplianceResultRepo
	moderation  ModerationService
}

func NewListingService(
	db *gorm.DB,
	log *logger.Logger,
	listingRepo repos.ListingRepo,
	resultRepo repos.ComplianceResultRepo,
	moderation ModerationService,
) ListingService {
	serviceLog := log.With("service", "ListingService")
	return &listingService{
		db:          db,
		log:         serviceLog,
		listingRepo: listingRepo,
		resultRepo:  resultRepo,
		moderation:  moderation,
	}
}

func (ls *listingService) Create(ctx context.Context, input CreateListingInput) (*types.Listing, error) {
	sellerID := strings.TrimSpace(input.SellerID)
	title := strings.TrimSpace(input.Title)
	description := strings.TrimSpace(input.Description)
	if sellerID == "" || title == "" || description == "" {
		return nil, apierr.Validation(fmt.Errorf("seller_id, title and description are required"))
	}

	listing := &types.Listing{
		ID:          uuid.New(),
		SellerID:    sellerID,
		Title:       title,
		Description: description,
		Category:    input.Category,
		Price:       input.Price,
		Inventory:   input.Inventory,
		ImageURL:    input.ImageURL,
		Status:      types.ListingStatusActive,
	}
	if _, err := ls.listingRepo.Create(ctx, nil, listing); err != nil {
		return nil, fmt.Errorf("create listing: %w", err)
	}

	// First evaluation is fire-and-forget: the listing is visible and
	// usable before the verdict lands, and caller cancellation does not
	// reach the evaluator call.
	ls.scheduleEvaluation(listing.ID)

	return listing, nil
}

func (ls *listingService) Get(ctx context.Context, listingID uuid.UUID) (*types.Listing, error) {
	listing, err := ls.listingRepo.GetByID(ctx, nil, listingID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apierr.NotFound(fmt.Errorf("listing %s not found", listingID))
		}
		return nil, fmt.Errorf("load listing %s: %w", listingID, err)
	}
	if err := ls.attachLatestVerdicts(ctx, []*types.Listing{listing}); err != nil {
		return nil, err
	}
	return listing, nil
}

func (ls *listingService) List(ctx context.Context, filter repos.ListingFilter) ([]*types.Listing, error) {
	listings, err := ls.listingRepo.List(ctx, nil, filter)
	if err != nil {
		return nil, fmt.Errorf("list listings: %w", err)
	}
	if err := ls.attachLatestVerdicts(ctx, listings); err != nil {
		return nil, err
	}
	return listings, nil
}

func (ls *listingService) Update(ctx context.Context, listingID uuid.UUID, input UpdateListingInput) (*types.Listing, error) {
	updates := map[string]interface{}{}
	if input.Title != nil {
		title := strings.TrimSpace(*input.Title)
		if title == "" {
			return nil, apierr.Validation(fmt.Errorf("title cannot be empty"))
		}
		updates["title"] = title
	}
	if input.Description != nil {
		description := strings.TrimSpace(*input.Description)
		if description == "" {
			return nil, apierr.Validation(fmt.Errorf("description cannot be empty"))
		}
		updates["description"] = description
	}
	if input.Category != nil {
		updates["category"] = *input.Category
	}
	if input.Price != nil {
		updates["price"] = *input.Price
	}
	if input.Inventory != nil {
		updates["inventory"] = *input.Inventory
	}
	if input.ImageURL != nil {
		updates["image_url"] = *input.ImageURL
	}

	var updated *types.Listing
	if err := ls.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if _, err := ls.listingRepo.GetByID(ctx, tx, listingID); err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apierr.NotFound(fmt.Errorf("listing %s not found", listingID))
			}
			return fmt.Errorf("load listing %s: %w", listingID, err)
		}
		if err := ls.listingRepo.UpdateFields(ctx, tx, listingID, updates); err != nil {
			return fmt.Errorf("update listing: %w", err)
		}
		listing, err := ls.listingRepo.GetByID(ctx, tx, listingID)
		if err != nil {
			return fmt.Errorf("reload listing: %w", err)
		}
		updated = listing
		return nil
	}); err != nil {
		return nil, err
	}

	// Edited content gets rechecked.
	if len(updates) > 0 {
		ls.scheduleEvaluation(listingID)
	}

	if err := ls.attachLatestVerdicts(ctx, []*types.Listing{updated}); err != nil {
		return nil, err
	}
	return updated, nil
}

func (ls *listingService) scheduleEvaluation(listingID uuid.UUID) {
	go func() {
		if _, err := ls.moderation.Evaluate(context.Background(), listingID); err != nil {
			ls.log.Warn("Background evaluation failed", "listing_id", listingID, "error", err)
		}
	}()
}

func (ls *listingService) attachLatestVerdicts(ctx context.Context, listings []*types.Listing) error {
	if len(listings) == 0 {
		return nil
	}
	ids := make([]uuid.UUID, 0, len(listings))
	for _, listing := range listings {
		ids = append(ids, listing.ID)
	}
	latest, err := ls.resultRepo.LatestByListingIDs(ctx, nil, ids)
	if err != nil {
		return fmt.Errorf("load latest compliance results: %w", err)
	}
	for _, listing := range listings {
		result, ok := latest[listing.ID]
		if !ok {
			continue
		}
		verdict, err := result.Verdict()
		if err != nil {
			ls.log.Warn("Unreadable stored compliance result", "listing_id", listing.ID, "result_id", result.ID, "error", err)
			continue
		}
		listing.Compliance = verdict
	}
	return nil
}
