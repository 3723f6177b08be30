package mapping

import (
	"github.com/smart-chama/chama_backend/internal/core/domain"
	"github.com/smart-chama/chama_backend/internal/models"
)

// ToModelChamaSettings converts domain settings to the model row
func ToModelChamaSettings(d domain.ChamaSettings) models.ChamaSettings {
	return models.ChamaSettings{
		SettingsID:                1,
		MonthlyContributionAmount: d.MonthlyContributionAmount,
		DefaultInterestRate:       d.DefaultInterestRate,
		MaxLoanDurationMonths:     d.MaxLoanDurationMonths,
		LoanMultiplier:            d.LoanMultiplier,
		CurrencyCode:              d.CurrencyCode,
		AuditFields:               ToModelAuditFields(d.AuditFields),
	}
}

// ToDomainChamaSettings converts the model row to domain settings
func ToDomainChamaSettings(m models.ChamaSettings) domain.ChamaSettings {
	return domain.ChamaSettings{
		MonthlyContributionAmount: m.MonthlyContributionAmount,
		DefaultInterestRate:       m.DefaultInterestRate,
		MaxLoanDurationMonths:     m.MaxLoanDurationMonths,
		LoanMultiplier:            m.LoanMultiplier,
		CurrencyCode:              m.CurrencyCode,
		AuditFields:               ToDomainAuditFields(m.AuditFields),
	}
}
