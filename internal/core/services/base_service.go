package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/smart-chama/chama_backend/internal/apperrors"
	"github.com/smart-chama/chama_backend/internal/core/domain"
	portssvc "github.com/smart-chama/chama_backend/internal/core/ports/services"
	"github.com/smart-chama/chama_backend/internal/middleware"
)

// BaseService provides common functionality for all services
type BaseService struct {
	Users portssvc.UserReaderSvc
}

// GetLogger gets the logger from context or returns a default one
func (s *BaseService) GetLogger(ctx context.Context) *slog.Logger {
	logger := middleware.GetLoggerFromCtx(ctx)
	if logger == nil {
		return slog.Default()
	}
	return logger
}

// LogError logs an error with consistent formatting
func (s *BaseService) LogError(ctx context.Context, err error, msg string, keyvals ...any) {
	logger := s.GetLogger(ctx)
	args := make([]any, 0, len(keyvals)+2)
	args = append(args, slog.String("error", err.Error()))
	args = append(args, keyvals...)
	logger.Error(msg, args...)
}

// LogInfo logs an info message with consistent formatting
func (s *BaseService) LogInfo(ctx context.Context, msg string, keyvals ...any) {
	logger := s.GetLogger(ctx)
	logger.Info(msg, keyvals...)
}

// LogDebug logs a debug message with consistent formatting
func (s *BaseService) LogDebug(ctx context.Context, msg string, keyvals ...any) {
	logger := s.GetLogger(ctx)
	logger.Debug(msg, keyvals...)
}

// RequireAdmin loads the requesting user and verifies the admin role.
// A missing user is reported as forbidden rather than not found so the
// failure kind reflects the authorization check, not the lookup.
func (s *BaseService) RequireAdmin(ctx context.Context, userID string) (*domain.User, error) {
	user, err := s.Users.GetUserByID(ctx, userID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, fmt.Errorf("%w: unknown requesting user", apperrors.ErrForbidden)
		}
		return nil, fmt.Errorf("failed to load requesting user %s: %w", userID, err)
	}
	if !user.IsAdmin() {
		return nil, fmt.Errorf("%w: admin role required", apperrors.ErrForbidden)
	}
	return user, nil
}

// RequireOwnerOrAdmin permits the record owner or any admin.
func (s *BaseService) RequireOwnerOrAdmin(ctx context.Context, userID, ownerID string) error {
	if userID == ownerID {
		return nil
	}
	_, err := s.RequireAdmin(ctx, userID)
	return err
}
