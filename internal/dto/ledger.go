package dto

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/smart-chama/chama_backend/internal/core/domain"
)

// CreateTransactionRequest defines the data an admin submits to record a
// general ledger transaction (expense, fine, interest).
type CreateTransactionRequest struct {
	MemberID      string          `json:"memberID" binding:"required"`
	Kind          string          `json:"kind" binding:"required,oneof=CONTRIBUTION LOAN EXPENSE REPAYMENT FINE INTEREST"`
	Amount        decimal.Decimal `json:"amount" binding:"required,gt=0"`
	PaymentMethod string          `json:"paymentMethod" binding:"omitempty,oneof=CASH BANK_TRANSFER MOBILE_MONEY CHECK"`
	Reference     string          `json:"reference"`
	Notes         string          `json:"notes"`
	EntryDate     *time.Time      `json:"entryDate"`
}

// UpdateTransactionRequest defines the fields editable while an entry is pending.
type UpdateTransactionRequest struct {
	Amount        *decimal.Decimal `json:"amount"`
	PaymentMethod *string          `json:"paymentMethod"`
	Reference     *string          `json:"reference"`
	Notes         *string          `json:"notes"`
	EntryDate     *time.Time       `json:"entryDate"`
}

// RejectEntryRequest carries the mandatory rejection reason.
type RejectEntryRequest struct {
	Reason string `json:"reason" binding:"required"`
}

// ListEntriesParams defines query parameters for listing ledger entries.
type ListEntriesParams struct {
	Limit     int     `form:"limit,default=20"`
	NextToken *string `form:"nextToken"`
	Kind      *string `form:"kind"`
	Status    *string `form:"status"`
	MemberID  *string `form:"memberID"`
	StartDate *string `form:"startDate"` // YYYY-MM-DD
	EndDate   *string `form:"endDate"`   // YYYY-MM-DD
}

// EntryResponse defines the data returned for a ledger entry.
type EntryResponse struct {
	EntryID         string          `json:"entryID"`
	MemberID        string          `json:"memberID"`
	Kind            string          `json:"kind"`
	Amount          decimal.Decimal `json:"amount"`
	Status          string          `json:"status"`
	PaymentMethod   string          `json:"paymentMethod"`
	Reference       string          `json:"reference"`
	Notes           string          `json:"notes"`
	EntryDate       time.Time       `json:"entryDate"`
	ApprovedBy      *string         `json:"approvedBy,omitempty"`
	ApprovedAt      *time.Time      `json:"approvedAt,omitempty"`
	RejectionReason *string         `json:"rejectionReason,omitempty"`
	CreatedAt       time.Time       `json:"createdAt"`
	CreatedBy       string          `json:"createdBy"`
}

// ListEntriesResponse wraps a page of ledger entries.
type ListEntriesResponse struct {
	Entries   []EntryResponse `json:"entries"`
	NextToken *string         `json:"nextToken,omitempty"`
}

// ToEntryResponse converts a domain.LedgerEntry to EntryResponse DTO.
func ToEntryResponse(e *domain.LedgerEntry) EntryResponse {
	return EntryResponse{
		EntryID:         e.EntryID,
		MemberID:        e.MemberID,
		Kind:            string(e.Kind),
		Amount:          e.Amount,
		Status:          string(e.Status),
		PaymentMethod:   string(e.PaymentMethod),
		Reference:       e.Reference,
		Notes:           e.Notes,
		EntryDate:       e.EntryDate,
		ApprovedBy:      e.ApprovedBy,
		ApprovedAt:      e.ApprovedAt,
		RejectionReason: e.RejectionReason,
		CreatedAt:       e.CreatedAt,
		CreatedBy:       e.CreatedBy,
	}
}

// ToListEntriesResponse converts a page of domain entries to ListEntriesResponse DTO.
func ToListEntriesResponse(entries []domain.LedgerEntry, nextToken *string) ListEntriesResponse {
	responses := make([]EntryResponse, len(entries))
	for i, e := range entries {
		responses[i] = ToEntryResponse(&e)
	}
	return ListEntriesResponse{Entries: responses, NextToken: nextToken}
}
