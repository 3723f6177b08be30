package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// EntryKind classifies a ledger entry.
type EntryKind string

const (
	KindContribution EntryKind = "CONTRIBUTION"
	KindLoan         EntryKind = "LOAN"
	KindExpense      EntryKind = "EXPENSE"
	KindRepayment    EntryKind = "REPAYMENT"
	KindFine         EntryKind = "FINE"
	KindInterest     EntryKind = "INTEREST"
)

// EntryStatus is the shared approval-workflow status for ledger entries.
// Valid transitions: PENDING -> APPROVED -> COMPLETED, PENDING -> REJECTED.
type EntryStatus string

const (
	StatusPending   EntryStatus = "PENDING"
	StatusApproved  EntryStatus = "APPROVED"
	StatusRejected  EntryStatus = "REJECTED"
	StatusCompleted EntryStatus = "COMPLETED"
)

// PaymentMethod enumerates the accepted settlement channels.
type PaymentMethod string

const (
	PaymentCash         PaymentMethod = "CASH"
	PaymentBankTransfer PaymentMethod = "BANK_TRANSFER"
	PaymentMobileMoney  PaymentMethod = "MOBILE_MONEY"
	PaymentCheck        PaymentMethod = "CHECK"
)

// ContributionType classifies contribution entries.
type ContributionType string

const (
	ContributionRegular       ContributionType = "REGULAR"
	ContributionSpecial       ContributionType = "SPECIAL"
	ContributionEmergency     ContributionType = "EMERGENCY"
	ContributionLoanRepayment ContributionType = "LOAN_REPAYMENT"
)

// LedgerEntry is the unified financial record: contributions, loans,
// expenses, repayments, fines and interest all share this shape.
type LedgerEntry struct {
	EntryID          string           `json:"entryID"`  // Primary Key (UUID)
	MemberID         string           `json:"memberID"` // FK -> users.user_id
	Kind             EntryKind        `json:"kind"`
	ContributionType ContributionType `json:"contributionType,omitempty"` // Contributions only
	Amount           decimal.Decimal  `json:"amount"` // Always >= 0
	Status           EntryStatus      `json:"status"`
	EntryDate        time.Time        `json:"entryDate"` // Value date
	PaymentMethod    PaymentMethod    `json:"paymentMethod"`
	Reference        string           `json:"reference"` // External reference, e.g. mobile money code
	Notes            string           `json:"notes"`
	ApprovedBy       *string          `json:"approvedBy,omitempty"`
	ApprovedAt       *time.Time       `json:"approvedAt,omitempty"`
	RejectionReason  *string          `json:"rejectionReason,omitempty"`
	AuditFields
	DeletedAt *time.Time `json:"deletedAt,omitempty"` // Soft delete; only pending entries
}

// CanTransitionTo reports whether the approval workflow allows moving the
// entry from its current status to target.
func (e *LedgerEntry) CanTransitionTo(target EntryStatus) bool {
	switch target {
	case StatusApproved, StatusRejected:
		return e.Status == StatusPending
	case StatusCompleted:
		return e.Status == StatusApproved
	default:
		return false
	}
}

// ValidEntryKind reports whether k is a known entry kind.
func ValidEntryKind(k EntryKind) bool {
	switch k {
	case KindContribution, KindLoan, KindExpense, KindRepayment, KindFine, KindInterest:
		return true
	}
	return false
}

// ValidPaymentMethod reports whether m is a known payment method.
func ValidPaymentMethod(m PaymentMethod) bool {
	switch m {
	case PaymentCash, PaymentBankTransfer, PaymentMobileMoney, PaymentCheck:
		return true
	}
	return false
}

// ValidContributionType reports whether t is a known contribution type.
func ValidContributionType(t ContributionType) bool {
	switch t {
	case ContributionRegular, ContributionSpecial, ContributionEmergency, ContributionLoanRepayment:
		return true
	}
	return false
}
