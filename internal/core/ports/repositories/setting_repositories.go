package repositories

import (
	"context"

	"github.com/smart-chama/chama_backend/internal/core/domain"
)

// SettingRepository defines operations over the single chama settings row.
type SettingRepository interface {
	// GetSettings retrieves the current settings.
	GetSettings(ctx context.Context) (*domain.ChamaSettings, error)

	// SaveSettings inserts or replaces the settings row.
	SaveSettings(ctx context.Context, settings domain.ChamaSettings) error
}
