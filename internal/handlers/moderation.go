package handlers

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/yungbote/regwatch-backend/internal/apierr"
	"github.com/yungbote/regwatch-backend/internal/logger"
	"github.com/yungbote/regwatch-backend/internal/services"
)

type ModerationHandler struct {
	log               *logger.Logger
	moderationService services.ModerationService
}

func NewModerationHandler(log *logger.Logger, moderationService services.ModerationService) *ModerationHandler {
	return &ModerationHandler{
		log:               log.With("handler", "ModerationHandler"),
		moderationService: moderationService,
	}
}

// Recheck runs a synchronous evaluation and returns the recorded result.
func (h *ModerationHandler) Recheck(c *gin.Context) {
	listingID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		RespondError(c, http.StatusBadRequest, apierr.CodeValidation, fmt.Errorf("invalid listing id"))
		return
	}
	result, err := h.moderationService.Evaluate(c.Request.Context(), listingID)
	if err != nil {
		respondServiceError(c, h.log, err)
		return
	}
	RespondOK(c, result)
}

type banRequest struct {
	ListingID uuid.UUID `json:"listing_id"`
	Reason    string    `json:"reason"`
}

func (h *ModerationHandler) Ban(c *gin.Context) {
	var req banRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondError(c, http.StatusBadRequest, apierr.CodeValidation, err)
		return
	}
	if req.ListingID == uuid.Nil {
		RespondError(c, http.StatusBadRequest, apierr.CodeValidation, fmt.Errorf("listing_id is required"))
		return
	}
	if strings.TrimSpace(req.Reason) == "" {
		RespondError(c, http.StatusBadRequest, apierr.CodeValidation, fmt.Errorf("reason is required"))
		return
	}
	if err := h.moderationService.Ban(c.Request.Context(), req.ListingID, req.Reason); err != nil {
		respondServiceError(c, h.log, err)
		return
	}
	RespondOK(c, gin.H{"ok": true})
}

type reinstateRequest struct {
	ListingID uuid.UUID `json:"listing_id"`
}

func (h *ModerationHandler) Reinstate(c *gin.Context) {
	var req reinstateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondError(c, http.StatusBadRequest, apierr.CodeValidation, err)
		return
	}
	if req.ListingID == uuid.Nil {
		RespondError(c, http.StatusBadRequest, apierr.CodeValidation, fmt.Errorf("listing_id is required"))
		return
	}
	if err := h.moderationService.Reinstate(c.Request.Context(), req.ListingID); err != nil {
		respondServiceError(c, h.log, err)
		return
	}
	RespondOK(c, gin.H{"ok": true})
}
