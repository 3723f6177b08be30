package handlers

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/smart-chama/chama_backend/internal/apperrors"
)

// ErrorResponse is the unified error envelope for all endpoints.
type ErrorResponse struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

// respondError maps a service error to the unified error envelope. Unexpected
// errors are logged and surfaced as a generic 500 so internals never leak.
func respondError(c *gin.Context, logger *slog.Logger, err error) {
	var appErr *apperrors.AppError
	if errors.As(err, &appErr) && appErr.Code >= 400 && appErr.Code < 500 {
		c.JSON(appErr.Code, ErrorResponse{Code: appErr.Code, Message: appErr.Message})
		return
	}

	status := http.StatusInternalServerError
	message := "Internal server error"
	switch {
	case errors.Is(err, apperrors.ErrValidation), errors.Is(err, apperrors.ErrInvalidState):
		status, message = http.StatusBadRequest, err.Error()
	case errors.Is(err, apperrors.ErrUnauthorized), errors.Is(err, apperrors.ErrRefreshTokenExpired):
		status, message = http.StatusUnauthorized, err.Error()
	case errors.Is(err, apperrors.ErrForbidden):
		status, message = http.StatusForbidden, err.Error()
	case errors.Is(err, apperrors.ErrNotFound):
		status, message = http.StatusNotFound, err.Error()
	case errors.Is(err, apperrors.ErrDuplicate):
		status, message = http.StatusConflict, err.Error()
	}

	if status == http.StatusInternalServerError {
		logger.Error("Unexpected service error", slog.String("error", err.Error()))
	}
	c.JSON(status, ErrorResponse{Code: status, Message: message})
}

// respondBindError surfaces a request binding failure as a 400.
func respondBindError(c *gin.Context, err error) {
	c.JSON(http.StatusBadRequest, ErrorResponse{Code: http.StatusBadRequest, Message: "Invalid request format: " + err.Error()})
}

// respondUnauthorized is used when the authenticated user ID is missing from
// the request context.
func respondUnauthorized(c *gin.Context) {
	c.JSON(http.StatusUnauthorized, ErrorResponse{Code: http.StatusUnauthorized, Message: "Unauthorized"})
}
