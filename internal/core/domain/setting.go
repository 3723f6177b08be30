package domain

import "github.com/shopspring/decimal"

// ChamaSettings holds the group-wide configuration that drives loan and
// contribution defaults. Stored as a single row; admins may update it.
type ChamaSettings struct {
	MonthlyContributionAmount decimal.Decimal `json:"monthlyContributionAmount"`
	DefaultInterestRate       decimal.Decimal `json:"defaultInterestRate"` // Percent, applied when an application omits a rate
	MaxLoanDurationMonths     int             `json:"maxLoanDurationMonths"`
	LoanMultiplier            decimal.Decimal `json:"loanMultiplier"` // Max principal as a multiple of the member's completed contributions; zero disables the cap
	CurrencyCode              string          `json:"currencyCode"`
	AuditFields
}

// DefaultChamaSettings returns the settings used before an admin configures
// the group. The 10% rate and 12-month cap follow common chama practice.
func DefaultChamaSettings() ChamaSettings {
	return ChamaSettings{
		MonthlyContributionAmount: decimal.NewFromInt(1000),
		DefaultInterestRate:       decimal.NewFromInt(10),
		MaxLoanDurationMonths:     12,
		LoanMultiplier:            decimal.NewFromInt(3),
		CurrencyCode:              "KES",
	}
}
