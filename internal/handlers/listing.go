package handlers

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/yungbote/regwatch-backend/internal/apierr"
	"github.com/yungbote/regwatch-backend/internal/logger"
	"github.com/yungbote/regwatch-backend/internal/repos"
	"github.com/yungbote/regwatch-backend/internal/services"
	"github.com/yungbote/regwatch-backend/internal/types"
)

type ListingHandler struct {
	log            *logger.Logger
	listingService services.ListingService
}

func NewListingHandler(log *logger.Logger, listingService services.ListingService) *ListingHandler {
	return &ListingHandler{
		log:            log.With("handler", "ListingHandler"),
		listingService: listingService,
	}
}

func (h *ListingHandler) Create(c *gin.Context) {
	var input services.CreateListingInput
	if err := c.ShouldBindJSON(&input); err != nil {
		RespondError(c, http.StatusBadRequest, apierr.CodeValidation, err)
		return
	}
	listing, err := h.listingService.Create(c.Request.Context(), input)
	if err != nil {
		respondServiceError(c, h.log, err)
		return
	}
	c.JSON(http.StatusCreated, listing)
}

func (h *ListingHandler) Get(c *gin.Context) {
	listingID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		RespondError(c, http.StatusBadRequest, apierr.CodeValidation, fmt.Errorf("invalid listing id"))
		return
	}
	listing, err := h.listingService.Get(c.Request.Context(), listingID)
	if err != nil {
		respondServiceError(c, h.log, err)
		return
	}
	RespondOK(c, listing)
}

func (h *ListingHandler) List(c *gin.Context) {
	filter := repos.ListingFilter{
		SellerID: c.Query("seller_id"),
		Status:   types.ListingStatus(c.Query("status")),
		Query:    c.Query("q"),
	}
	if filter.Status != "" && !filter.Status.Valid() {
		RespondError(c, http.StatusBadRequest, apierr.CodeValidation, fmt.Errorf("unknown status %q", filter.Status))
		return
	}
	if raw := c.Query("limit"); raw != "" {
		limit, err := strconv.Atoi(raw)
		if err != nil || limit < 0 {
			RespondError(c, http.StatusBadRequest, apierr.CodeValidation, fmt.Errorf("invalid limit"))
			return
		}
		filter.Limit = limit
	}
	if raw := c.Query("offset"); raw != "" {
		offset, err := strconv.Atoi(raw)
		if err != nil || offset < 0 {
			RespondError(c, http.StatusBadRequest, apierr.CodeValidation, fmt.Errorf("invalid offset"))
			return
		}
		filter.Offset = offset
	}
	listings, err := h.listingService.List(c.Request.Context(), filter)
	if err != nil {
		respondServiceError(c, h.log, err)
		return
	}
	if listings == nil {
		listings = []*types.Listing{}
	}
	RespondOK(c, listings)
}

func (h *ListingHandler) Update(c *gin.Context) {
	listingID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		RespondError(c, http.StatusBadRequest, apierr.CodeValidation, fmt.Errorf("invalid listing id"))
		return
	}
	var input services.UpdateListingInput
	if err := c.ShouldBindJSON(&input); err != nil {
		RespondError(c, http.StatusBadRequest, apierr.CodeValidation, err)
		return
	}
	listing, err := h.listingService.Update(c.Request.Context(), listingID, input)
	if err != nil {
		respondServiceError(c, h.log, err)
		return
	}
	RespondOK(c, listing)
}
