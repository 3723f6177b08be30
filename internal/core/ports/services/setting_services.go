package services

import (
	"context"

	"github.com/smart-chama/chama_backend/internal/core/domain"
	"github.com/smart-chama/chama_backend/internal/dto"
)

// SettingsSvcFacade defines operations over the chama-wide settings.
type SettingsSvcFacade interface {
	// GetSettings retrieves the current settings, falling back to defaults
	// when none have been stored yet.
	GetSettings(ctx context.Context) (*domain.ChamaSettings, error)

	// UpdateSettings amends the settings. Admin only.
	UpdateSettings(ctx context.Context, req dto.UpdateSettingsRequest, requestingUserID string) (*domain.ChamaSettings, error)
}
