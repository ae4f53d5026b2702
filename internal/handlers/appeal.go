package handlers

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/yungbote/regwatch-backend/internal/apierr"
	"github.com/yungbote/regwatch-backend/internal/logger"
	"github.com/yungbote/regwatch-backend/internal/services"
	"github.com/yungbote/regwatch-backend/internal/types"
)

type AppealHandler struct {
	log           *logger.Logger
	appealService services.AppealService
}

func NewAppealHandler(log *logger.Logger, appealService services.AppealService) *AppealHandler {
	return &AppealHandler{
		log:           log.With("handler", "AppealHandler"),
		appealService: appealService,
	}
}

func (h *AppealHandler) File(c *gin.Context) {
	var input services.FileAppealInput
	if err := c.ShouldBindJSON(&input); err != nil {
		RespondError(c, http.StatusBadRequest, apierr.CodeValidation, err)
		return
	}
	appeal, err := h.appealService.File(c.Request.Context(), input)
	if err != nil {
		respondServiceError(c, h.log, err)
		return
	}
	c.JSON(http.StatusCreated, appeal)
}

func (h *AppealHandler) ListAll(c *gin.Context) {
	status := types.AppealStatus(c.Query("status"))
	appeals, err := h.appealService.ListAll(c.Request.Context(), status)
	if err != nil {
		respondServiceError(c, h.log, err)
		return
	}
	if appeals == nil {
		appeals = []*types.Appeal{}
	}
	RespondOK(c, appeals)
}

type resolveRequest struct {
	Approve bool `json:"approve"`
}

func (h *AppealHandler) Resolve(c *gin.Context) {
	appealID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		RespondError(c, http.StatusBadRequest, apierr.CodeValidation, fmt.Errorf("invalid appeal id"))
		return
	}
	var req resolveRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondError(c, http.StatusBadRequest, apierr.CodeValidation, err)
		return
	}
	appeal, err := h.appealService.Resolve(c.Request.Context(), appealID, req.Approve)
	if err != nil {
		respondServiceError(c, h.log, err)
		return
	}
	RespondOK(c, appeal)
}
