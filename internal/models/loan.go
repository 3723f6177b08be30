package models

import (
	"database/sql"
	"time"

	"github.com/shopspring/decimal"
)

// Loan is the database row for a member loan. The loan shares its identifier
// with the LOAN entry in the ledger.
type Loan struct {
	LoanID         string          `db:"loan_id"`
	MemberID       string          `db:"member_id"`
	Principal      decimal.Decimal `db:"principal"`
	InterestRate   decimal.Decimal `db:"interest_rate"`
	DurationMonths int             `db:"duration_months"`
	Purpose        string          `db:"purpose"`

	TotalPayable       decimal.Decimal `db:"total_payable"`
	MonthlyInstallment decimal.Decimal `db:"monthly_installment"`
	TotalPaid          decimal.Decimal `db:"total_paid"`
	Balance            decimal.Decimal `db:"balance"`

	Status          string         `db:"status"`
	ApprovedBy      sql.NullString `db:"approved_by"`
	ApprovedAt      sql.NullTime   `db:"approved_at"`
	RejectedBy      sql.NullString `db:"rejected_by"`
	RejectedAt      sql.NullTime   `db:"rejected_at"`
	RejectionReason sql.NullString `db:"rejection_reason"`

	Version int64 `db:"version"`
	AuditFields
	DeletedAt *time.Time `db:"deleted_at"`
}

// Repayment is the database row for a single loan repayment.
type Repayment struct {
	RepaymentID   string          `db:"repayment_id"`
	LoanID        string          `db:"loan_id"`
	Amount        decimal.Decimal `db:"amount"`
	PaymentMethod string          `db:"payment_method"`
	Reference     sql.NullString  `db:"reference"`
	Status        string          `db:"status"`
	PaidAt        time.Time       `db:"paid_at"`
	AuditFields
}
