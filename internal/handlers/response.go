package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/yungbote/regwatch-backend/internal/apierr"
	"github.com/yungbote/regwatch-backend/internal/logger"
)

type APIError struct {
	Message string `json:"message"`
	Code    string `json:"code,omitempty"`
}

type ErrorEnvelope struct {
	Error APIError `json:"error"`
}

func RespondError(c *gin.Context, status int, code string, err error) {
	msg := "unknown error"
	if err != nil {
		msg = err.Error()
	}
	c.JSON(status, ErrorEnvelope{
		Error: APIError{
			Message: msg,
			Code:    code,
		},
	})
}

func RespondOK(c *gin.Context, payload any) {
	c.JSON(http.StatusOK, payload)
}

// respondServiceError maps service errors onto the stable error codes;
// anything unrecognized is a 500.
func respondServiceError(c *gin.Context, log *logger.Logger, err error) {
	if apiErr, ok := apierr.As(err); ok {
		RespondError(c, apiErr.Status, apiErr.Code, apiErr)
		return
	}
	if log != nil {
		log.Error("Unhandled service error", "error", err, "path", c.FullPath())
	}
	RespondError(c, http.StatusInternalServerError, apierr.CodeInternal, err)
}
