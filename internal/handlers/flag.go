package handlers

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/yungbote/regwatch-backend/internal/apierr"
	"github.com/yungbote/regwatch-backend/internal/logger"
	"github.com/yungbote/regwatch-backend/internal/repos"
	"github.com/yungbote/regwatch-backend/internal/services"
)

type FlagHandler struct {
	log         *logger.Logger
	flagService services.FlagService
}

func NewFlagHandler(log *logger.Logger, flagService services.FlagService) *FlagHandler {
	return &FlagHandler{
		log:         log.With("handler", "FlagHandler"),
		flagService: flagService,
	}
}

func (h *FlagHandler) ListOpen(c *gin.Context) {
	flags, err := h.flagService.ListOpen(c.Request.Context())
	if err != nil {
		respondServiceError(c, h.log, err)
		return
	}
	if flags == nil {
		flags = []*repos.OpenFlag{}
	}
	RespondOK(c, flags)
}

func (h *FlagHandler) MarkReviewed(c *gin.Context) {
	flagID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		RespondError(c, http.StatusBadRequest, apierr.CodeValidation, fmt.Errorf("invalid flag id"))
		return
	}
	if err := h.flagService.MarkReviewed(c.Request.Context(), flagID); err != nil {
		respondServiceError(c, h.log, err)
		return
	}
	RespondOK(c, gin.H{"ok": true})
}
