package services

import (
	"context"

	"github.com/smart-chama/chama_backend/internal/core/domain"
	"github.com/smart-chama/chama_backend/internal/dto"
)

// LedgerReaderSvc defines read operations over the ledger
type LedgerReaderSvc interface {
	// GetEntryByID retrieves a ledger entry. Members may only read their own
	// entries; admins may read any.
	GetEntryByID(ctx context.Context, entryID string, requestingUserID string) (*domain.LedgerEntry, error)

	// ListEntries retrieves a filtered, paginated list of ledger entries.
	// Admin only.
	ListEntries(ctx context.Context, requestingUserID string, params dto.ListEntriesParams) (*dto.ListEntriesResponse, error)
}

// LedgerWriterSvc defines write operations over the ledger
type LedgerWriterSvc interface {
	// CreateTransaction records a general ledger transaction. Admin only.
	CreateTransaction(ctx context.Context, req dto.CreateTransactionRequest, creatorUserID string) (*domain.LedgerEntry, error)

	// UpdateTransaction amends a pending ledger entry. Admin only.
	UpdateTransaction(ctx context.Context, entryID string, req dto.UpdateTransactionRequest, requestingUserID string) (*domain.LedgerEntry, error)

	// DeleteTransaction soft-deletes a pending ledger entry. Admin only.
	DeleteTransaction(ctx context.Context, entryID string, requestingUserID string) error
}

// LedgerApprovalSvc defines the admin-gated entry state transitions shared by
// contributions and general transactions.
type LedgerApprovalSvc interface {
	// ApproveEntry transitions a pending entry to approved. Admin only.
	ApproveEntry(ctx context.Context, entryID string, approverID string) (*domain.LedgerEntry, error)

	// RejectEntry transitions a pending entry to rejected with a reason. Admin only.
	RejectEntry(ctx context.Context, entryID string, approverID string, reason string) (*domain.LedgerEntry, error)

	// CompleteEntry transitions an approved entry to completed. Admin only.
	CompleteEntry(ctx context.Context, entryID string, requestingUserID string) (*domain.LedgerEntry, error)
}

// LedgerSvcFacade combines all ledger-related service interfaces
type LedgerSvcFacade interface {
	LedgerReaderSvc
	LedgerWriterSvc
	LedgerApprovalSvc
}
