package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/shopspring/decimal"

	"github.com/smart-chama/chama_backend/internal/apperrors"
	"github.com/smart-chama/chama_backend/internal/core/domain"
	portsrepo "github.com/smart-chama/chama_backend/internal/core/ports/repositories"
	portssvc "github.com/smart-chama/chama_backend/internal/core/ports/services"
	"github.com/smart-chama/chama_backend/internal/dto"
)

// settingsService serves the chama-wide configuration row.
type settingsService struct {
	BaseService
	settingRepo portsrepo.SettingRepository
}

// NewSettingsService creates a new SettingsService.
func NewSettingsService(settingRepo portsrepo.SettingRepository, userSvc portssvc.UserReaderSvc) portssvc.SettingsSvcFacade {
	return &settingsService{
		BaseService: BaseService{Users: userSvc},
		settingRepo: settingRepo,
	}
}

// Ensure settingsService implements the portssvc.SettingsSvcFacade interface
var _ portssvc.SettingsSvcFacade = (*settingsService)(nil)

// GetSettings retrieves the current settings, falling back to defaults when
// none have been stored yet.
// Implements portssvc.SettingsSvcFacade
func (s *settingsService) GetSettings(ctx context.Context) (*domain.ChamaSettings, error) {
	settings, err := s.settingRepo.GetSettings(ctx)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			defaults := domain.DefaultChamaSettings()
			return &defaults, nil
		}
		return nil, fmt.Errorf("failed to load settings: %w", err)
	}
	return settings, nil
}

// UpdateSettings amends the settings. Admin only.
// Implements portssvc.SettingsSvcFacade
func (s *settingsService) UpdateSettings(ctx context.Context, req dto.UpdateSettingsRequest, requestingUserID string) (*domain.ChamaSettings, error) {
	if _, err := s.RequireAdmin(ctx, requestingUserID); err != nil {
		return nil, err
	}

	settings, err := s.GetSettings(ctx)
	if err != nil {
		return nil, err
	}

	if req.MonthlyContributionAmount != nil {
		if req.MonthlyContributionAmount.LessThanOrEqual(decimal.Zero) {
			return nil, fmt.Errorf("%w: monthly contribution amount must be positive", apperrors.ErrValidation)
		}
		settings.MonthlyContributionAmount = *req.MonthlyContributionAmount
	}
	if req.DefaultInterestRate != nil {
		rate := *req.DefaultInterestRate
		if rate.IsNegative() || rate.GreaterThan(decimal.NewFromInt(100)) {
			return nil, fmt.Errorf("%w: default interest rate must be between 0 and 100", apperrors.ErrValidation)
		}
		settings.DefaultInterestRate = rate
	}
	if req.MaxLoanDurationMonths != nil {
		if *req.MaxLoanDurationMonths < 1 {
			return nil, fmt.Errorf("%w: max loan duration must be at least one month", apperrors.ErrValidation)
		}
		settings.MaxLoanDurationMonths = *req.MaxLoanDurationMonths
	}
	if req.LoanMultiplier != nil {
		if req.LoanMultiplier.IsNegative() {
			return nil, fmt.Errorf("%w: loan multiplier cannot be negative", apperrors.ErrValidation)
		}
		settings.LoanMultiplier = *req.LoanMultiplier
	}
	if req.CurrencyCode != nil {
		if len(*req.CurrencyCode) != 3 {
			return nil, fmt.Errorf("%w: currency code must be a 3-letter ISO code", apperrors.ErrValidation)
		}
		settings.CurrencyCode = *req.CurrencyCode
	}
	settings.Touch(requestingUserID, time.Now().UTC())

	if err := s.settingRepo.SaveSettings(ctx, *settings); err != nil {
		s.LogError(ctx, err, "failed to save settings")
		return nil, fmt.Errorf("failed to save settings: %w", err)
	}
	s.LogInfo(ctx, "settings updated", slog.String("updated_by", requestingUserID))
	return settings, nil
}
