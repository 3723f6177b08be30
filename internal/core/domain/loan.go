package domain

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// LoanStatus is the loan lifecycle status.
// Valid transitions: PENDING -> APPROVED -> COMPLETED, PENDING -> REJECTED.
// APPROVED is the single repayable state; disbursement is implied by approval.
type LoanStatus string

const (
	LoanPending   LoanStatus = "PENDING"
	LoanApproved  LoanStatus = "APPROVED"
	LoanRejected  LoanStatus = "REJECTED"
	LoanCompleted LoanStatus = "COMPLETED"
)

// RepaymentStatus is the settlement status of a single repayment.
type RepaymentStatus string

const (
	RepaymentCompleted RepaymentStatus = "COMPLETED"
	RepaymentFailed    RepaymentStatus = "FAILED"
)

// Loan represents a member loan with its derived economics.
// It is a specialization of a ledger entry with kind LOAN; the entry and the
// loan row share the same identifier.
type Loan struct {
	LoanID         string          `json:"loanID"` // Primary Key; equals the ledger entry ID
	MemberID       string          `json:"memberID"`
	Principal      decimal.Decimal `json:"principal"`
	InterestRate   decimal.Decimal `json:"interestRate"` // Simple interest, percent 0-100
	DurationMonths int             `json:"durationMonths"`
	Purpose        string          `json:"purpose"`

	// Derived fields; recomputed, never independently mutated.
	TotalPayable       decimal.Decimal `json:"totalPayable"`
	MonthlyInstallment decimal.Decimal `json:"monthlyInstallment"`
	TotalPaid          decimal.Decimal `json:"totalPaid"`
	Balance            decimal.Decimal `json:"balance"`

	Status          LoanStatus `json:"status"`
	ApprovedBy      *string    `json:"approvedBy,omitempty"`
	ApprovedAt      *time.Time `json:"approvedAt,omitempty"`
	RejectedBy      *string    `json:"rejectedBy,omitempty"`
	RejectedAt      *time.Time `json:"rejectedAt,omitempty"`
	RejectionReason *string    `json:"rejectionReason,omitempty"`

	// Version is the optimistic concurrency stamp; the repository increments
	// it on every balance mutation.
	Version int64 `json:"version"`

	Repayments []Repayment `json:"repayments,omitempty"` // Ordered, append-only
	AuditFields
	DeletedAt *time.Time `json:"deletedAt,omitempty"`
}

// Repayment is a single repayment against a loan.
type Repayment struct {
	RepaymentID   string          `json:"repaymentID"`
	LoanID        string          `json:"loanID"`
	Amount        decimal.Decimal `json:"amount"`
	PaymentMethod PaymentMethod   `json:"paymentMethod"`
	Reference     string          `json:"reference"`
	Status        RepaymentStatus `json:"status"`
	PaidAt        time.Time       `json:"paidAt"`
	AuditFields
}

// moneyPlaces is the scale money amounts are rounded to. Derived loan values
// are rounded half-up at computation time and stored rounded, so every code
// path observes the same figures.
const moneyPlaces = 2

// RoundMoney rounds an amount to the canonical money scale, half away from zero.
func RoundMoney(d decimal.Decimal) decimal.Decimal {
	return d.Round(moneyPlaces)
}

// TotalPayable computes principal plus simple interest, rounded to money scale:
// principal + principal * rate / 100.
func TotalPayable(principal, interestRate decimal.Decimal) decimal.Decimal {
	interest := principal.Mul(interestRate).Div(decimal.NewFromInt(100))
	return RoundMoney(principal.Add(interest))
}

// MonthlyInstallment computes the flat monthly payment for a loan, rounded to
// money scale: totalPayable / durationMonths.
func MonthlyInstallment(totalPayable decimal.Decimal, durationMonths int) decimal.Decimal {
	return RoundMoney(totalPayable.Div(decimal.NewFromInt(int64(durationMonths))))
}

// Validate checks the loan application constraints.
func (l *Loan) Validate(maxDurationMonths int) error {
	if l.Principal.LessThanOrEqual(decimal.Zero) {
		return fmt.Errorf("principal must be positive, got %s", l.Principal)
	}
	if l.InterestRate.IsNegative() || l.InterestRate.GreaterThan(decimal.NewFromInt(100)) {
		return fmt.Errorf("interest rate must be between 0 and 100, got %s", l.InterestRate)
	}
	if l.DurationMonths < 1 || l.DurationMonths > maxDurationMonths {
		return fmt.Errorf("duration must be between 1 and %d months, got %d", maxDurationMonths, l.DurationMonths)
	}
	if l.Purpose == "" {
		return fmt.Errorf("loan purpose is required")
	}
	return nil
}

// ComputeDerived fills TotalPayable, MonthlyInstallment and the opening
// Balance from the principal, rate and duration.
func (l *Loan) ComputeDerived() {
	l.TotalPayable = TotalPayable(l.Principal, l.InterestRate)
	l.MonthlyInstallment = MonthlyInstallment(l.TotalPayable, l.DurationMonths)
	l.TotalPaid = decimal.Zero
	l.Balance = l.TotalPayable
}

// RecalculateBalance re-derives Balance from TotalPayable and TotalPaid,
// clamped at zero. Returns true when the loan is fully paid.
func (l *Loan) RecalculateBalance() bool {
	balance := l.TotalPayable.Sub(l.TotalPaid)
	if balance.IsNegative() {
		balance = decimal.Zero
	}
	l.Balance = balance
	return l.Balance.IsZero()
}

// IsRepayable reports whether repayments may be recorded against the loan.
func (l *Loan) IsRepayable() bool {
	return l.Status == LoanApproved
}

// RemainingInstallments is the number of monthly payments left at the
// current balance.
func (l *Loan) RemainingInstallments() int {
	if l.MonthlyInstallment.IsZero() || l.Balance.IsZero() {
		return 0
	}
	return int(l.Balance.Div(l.MonthlyInstallment).Ceil().IntPart())
}

// InstallmentsDue computes how many installments should have been settled by
// now, counting whole months since approval and capping at the duration.
func (l *Loan) InstallmentsDue(now time.Time) int {
	if l.Status != LoanApproved || l.ApprovedAt == nil {
		return 0
	}
	months := 0
	for t := l.ApprovedAt.AddDate(0, 1, 0); !t.After(now); t = t.AddDate(0, 1, 0) {
		months++
	}
	if months > l.DurationMonths {
		months = l.DurationMonths
	}
	return months
}

// IsOverdue reports whether the amount paid so far lags the schedule.
func (l *Loan) IsOverdue(now time.Time) bool {
	due := l.InstallmentsDue(now)
	if due == 0 {
		return false
	}
	expected := l.MonthlyInstallment.Mul(decimal.NewFromInt(int64(due)))
	return l.TotalPaid.LessThan(expected)
}
