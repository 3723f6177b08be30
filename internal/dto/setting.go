package dto

import (
	"github.com/shopspring/decimal"

	"github.com/smart-chama/chama_backend/internal/core/domain"
)

// UpdateSettingsRequest defines the chama settings an admin may change.
// Pointers differentiate omitted fields from zero values.
type UpdateSettingsRequest struct {
	MonthlyContributionAmount *decimal.Decimal `json:"monthlyContributionAmount"`
	DefaultInterestRate       *decimal.Decimal `json:"defaultInterestRate"`
	MaxLoanDurationMonths     *int             `json:"maxLoanDurationMonths"`
	LoanMultiplier            *decimal.Decimal `json:"loanMultiplier"`
	CurrencyCode              *string          `json:"currencyCode"`
}

// SettingsResponse defines the data returned for chama settings.
type SettingsResponse struct {
	MonthlyContributionAmount decimal.Decimal `json:"monthlyContributionAmount"`
	DefaultInterestRate       decimal.Decimal `json:"defaultInterestRate"`
	MaxLoanDurationMonths     int             `json:"maxLoanDurationMonths"`
	LoanMultiplier            decimal.Decimal `json:"loanMultiplier"`
	CurrencyCode              string          `json:"currencyCode"`
}

// ToSettingsResponse converts domain.ChamaSettings to SettingsResponse DTO.
func ToSettingsResponse(s *domain.ChamaSettings) SettingsResponse {
	return SettingsResponse{
		MonthlyContributionAmount: s.MonthlyContributionAmount,
		DefaultInterestRate:       s.DefaultInterestRate,
		MaxLoanDurationMonths:     s.MaxLoanDurationMonths,
		LoanMultiplier:            s.LoanMultiplier,
		CurrencyCode:              s.CurrencyCode,
	}
}
