package models

import "github.com/shopspring/decimal"

// ChamaSettings is the single-row table of group-wide configuration.
type ChamaSettings struct {
	SettingsID                int             `db:"settings_id"` // Always 1
	MonthlyContributionAmount decimal.Decimal `db:"monthly_contribution_amount"`
	DefaultInterestRate       decimal.Decimal `db:"default_interest_rate"`
	MaxLoanDurationMonths     int             `db:"max_loan_duration_months"`
	LoanMultiplier            decimal.Decimal `db:"loan_multiplier"`
	CurrencyCode              string          `db:"currency_code"`
	AuditFields
}
