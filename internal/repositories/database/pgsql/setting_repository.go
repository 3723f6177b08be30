package pgsql

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/smart-chama/chama_backend/internal/apperrors"
	"github.com/smart-chama/chama_backend/internal/core/domain"
	portsrepo "github.com/smart-chama/chama_backend/internal/core/ports/repositories"
	"github.com/smart-chama/chama_backend/internal/models"
	"github.com/smart-chama/chama_backend/internal/utils/mapping"
)

type PgxSettingRepository struct {
	BaseRepository
}

func newPgxSettingRepository(pool *pgxpool.Pool) portsrepo.SettingRepository {
	return &PgxSettingRepository{BaseRepository: BaseRepository{Pool: pool}}
}

// Ensure PgxSettingRepository implements portsrepo.SettingRepository
var _ portsrepo.SettingRepository = (*PgxSettingRepository)(nil)

func (r *PgxSettingRepository) GetSettings(ctx context.Context) (*domain.ChamaSettings, error) {
	query := `
		SELECT settings_id, monthly_contribution_amount, default_interest_rate,
		       max_loan_duration_months, loan_multiplier, currency_code,
		       created_at, created_by, last_updated_at, last_updated_by
		FROM chama_settings
		WHERE settings_id = 1;
	`
	var s models.ChamaSettings
	err := r.Pool.QueryRow(ctx, query).Scan(
		&s.SettingsID,
		&s.MonthlyContributionAmount,
		&s.DefaultInterestRate,
		&s.MaxLoanDurationMonths,
		&s.LoanMultiplier,
		&s.CurrencyCode,
		&s.CreatedAt,
		&s.CreatedBy,
		&s.LastUpdatedAt,
		&s.LastUpdatedBy,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to load chama settings: %w", err)
	}
	settings := mapping.ToDomainChamaSettings(s)
	return &settings, nil
}

// SaveSettings inserts or replaces the single settings row.
func (r *PgxSettingRepository) SaveSettings(ctx context.Context, settings domain.ChamaSettings) error {
	s := mapping.ToModelChamaSettings(settings)
	query := `
		INSERT INTO chama_settings (settings_id, monthly_contribution_amount, default_interest_rate,
			max_loan_duration_months, loan_multiplier, currency_code,
			created_at, created_by, last_updated_at, last_updated_by)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		ON CONFLICT (settings_id) DO UPDATE SET
			monthly_contribution_amount = EXCLUDED.monthly_contribution_amount,
			default_interest_rate = EXCLUDED.default_interest_rate,
			max_loan_duration_months = EXCLUDED.max_loan_duration_months,
			loan_multiplier = EXCLUDED.loan_multiplier,
			currency_code = EXCLUDED.currency_code,
			last_updated_at = EXCLUDED.last_updated_at,
			last_updated_by = EXCLUDED.last_updated_by;
	`
	_, err := r.Pool.Exec(ctx, query,
		s.SettingsID, s.MonthlyContributionAmount, s.DefaultInterestRate,
		s.MaxLoanDurationMonths, s.LoanMultiplier, s.CurrencyCode,
		s.CreatedAt, s.CreatedBy, s.LastUpdatedAt, s.LastUpdatedBy,
	)
	if err != nil {
		return fmt.Errorf("failed to save chama settings: %w", err)
	}
	return nil
}
