package mapping

import (
	"database/sql"

	"github.com/smart-chama/chama_backend/internal/core/domain"
	"github.com/smart-chama/chama_backend/internal/models"
)

// ToModelLoan converts a domain Loan to a model Loan
func ToModelLoan(d domain.Loan) models.Loan {
	m := models.Loan{
		LoanID:             d.LoanID,
		MemberID:           d.MemberID,
		Principal:          d.Principal,
		InterestRate:       d.InterestRate,
		DurationMonths:     d.DurationMonths,
		Purpose:            d.Purpose,
		TotalPayable:       d.TotalPayable,
		MonthlyInstallment: d.MonthlyInstallment,
		TotalPaid:          d.TotalPaid,
		Balance:            d.Balance,
		Status:             string(d.Status),
		Version:            d.Version,
		AuditFields:        ToModelAuditFields(d.AuditFields),
		DeletedAt:          d.DeletedAt,
	}
	if d.ApprovedBy != nil {
		m.ApprovedBy = sql.NullString{String: *d.ApprovedBy, Valid: true}
	}
	if d.ApprovedAt != nil {
		m.ApprovedAt = sql.NullTime{Time: *d.ApprovedAt, Valid: true}
	}
	if d.RejectedBy != nil {
		m.RejectedBy = sql.NullString{String: *d.RejectedBy, Valid: true}
	}
	if d.RejectedAt != nil {
		m.RejectedAt = sql.NullTime{Time: *d.RejectedAt, Valid: true}
	}
	if d.RejectionReason != nil {
		m.RejectionReason = sql.NullString{String: *d.RejectionReason, Valid: true}
	}
	return m
}

// ToDomainLoan converts a model Loan to a domain Loan
func ToDomainLoan(m models.Loan) domain.Loan {
	d := domain.Loan{
		LoanID:             m.LoanID,
		MemberID:           m.MemberID,
		Principal:          m.Principal,
		InterestRate:       m.InterestRate,
		DurationMonths:     m.DurationMonths,
		Purpose:            m.Purpose,
		TotalPayable:       m.TotalPayable,
		MonthlyInstallment: m.MonthlyInstallment,
		TotalPaid:          m.TotalPaid,
		Balance:            m.Balance,
		Status:             domain.LoanStatus(m.Status),
		Version:            m.Version,
		AuditFields:        ToDomainAuditFields(m.AuditFields),
		DeletedAt:          m.DeletedAt,
	}
	if m.ApprovedBy.Valid {
		v := m.ApprovedBy.String
		d.ApprovedBy = &v
	}
	if m.ApprovedAt.Valid {
		t := m.ApprovedAt.Time
		d.ApprovedAt = &t
	}
	if m.RejectedBy.Valid {
		v := m.RejectedBy.String
		d.RejectedBy = &v
	}
	if m.RejectedAt.Valid {
		t := m.RejectedAt.Time
		d.RejectedAt = &t
	}
	if m.RejectionReason.Valid {
		v := m.RejectionReason.String
		d.RejectionReason = &v
	}
	return d
}

// ToDomainLoanSlice converts a slice of model Loans to domain Loans
func ToDomainLoanSlice(ms []models.Loan) []domain.Loan {
	ds := make([]domain.Loan, len(ms))
	for i, m := range ms {
		ds[i] = ToDomainLoan(m)
	}
	return ds
}

// ToModelRepayment converts a domain Repayment to a model Repayment
func ToModelRepayment(d domain.Repayment) models.Repayment {
	m := models.Repayment{
		RepaymentID:   d.RepaymentID,
		LoanID:        d.LoanID,
		Amount:        d.Amount,
		PaymentMethod: string(d.PaymentMethod),
		Status:        string(d.Status),
		PaidAt:        d.PaidAt,
		AuditFields:   ToModelAuditFields(d.AuditFields),
	}
	if d.Reference != "" {
		m.Reference = sql.NullString{String: d.Reference, Valid: true}
	}
	return m
}

// ToDomainRepayment converts a model Repayment to a domain Repayment
func ToDomainRepayment(m models.Repayment) domain.Repayment {
	d := domain.Repayment{
		RepaymentID:   m.RepaymentID,
		LoanID:        m.LoanID,
		Amount:        m.Amount,
		PaymentMethod: domain.PaymentMethod(m.PaymentMethod),
		Status:        domain.RepaymentStatus(m.Status),
		PaidAt:        m.PaidAt,
		AuditFields:   ToDomainAuditFields(m.AuditFields),
	}
	if m.Reference.Valid {
		d.Reference = m.Reference.String
	}
	return d
}

// ToDomainRepaymentSlice converts a slice of model Repayments to domain Repayments
func ToDomainRepaymentSlice(ms []models.Repayment) []domain.Repayment {
	ds := make([]domain.Repayment, len(ms))
	for i, m := range ms {
		ds[i] = ToDomainRepayment(m)
	}
	return ds
}
