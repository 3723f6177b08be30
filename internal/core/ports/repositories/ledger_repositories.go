package repositories

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/smart-chama/chama_backend/internal/core/domain"
)

// LedgerEntryFilter narrows ledger listings. Nil fields match everything.
type LedgerEntryFilter struct {
	Kind     *domain.EntryKind
	Status   *domain.EntryStatus
	MemberID *string
	FromDate *time.Time
	ToDate   *time.Time
}

// LedgerReader defines read operations for ledger entries
type LedgerReader interface {
	// FindEntryByID retrieves a specific ledger entry by its unique identifier.
	FindEntryByID(ctx context.Context, entryID string) (*domain.LedgerEntry, error)

	// ListEntries retrieves a paginated list of ledger entries matching the
	// filter using token-based pagination. It returns the entries, a token for
	// the next page, and an error.
	ListEntries(ctx context.Context, limit int, nextToken *string, filter LedgerEntryFilter) ([]domain.LedgerEntry, *string, error)

	// ListRecentEntries retrieves the most recent non-deleted entries across
	// all kinds, newest first.
	ListRecentEntries(ctx context.Context, limit int) ([]domain.LedgerEntry, error)
}

// LedgerWriter defines write operations for ledger entries
type LedgerWriter interface {
	// SaveEntry persists a new ledger entry.
	SaveEntry(ctx context.Context, entry domain.LedgerEntry) error

	// UpdateEntry updates a ledger entry's editable fields.
	UpdateEntry(ctx context.Context, entry domain.LedgerEntry) error

	// UpdateEntryStatus records a status transition with its approval or
	// rejection metadata.
	UpdateEntryStatus(ctx context.Context, entryID string, status domain.EntryStatus, approverID *string, rejectionReason *string, updatedBy string, updatedAt time.Time) error

	// MarkEntryDeleted marks a ledger entry as deleted (soft delete).
	MarkEntryDeleted(ctx context.Context, entryID string, deletedAt time.Time, deletedBy string) error
}

// ContributionReader defines read operations over contribution entries
type ContributionReader interface {
	// ListContributionsByMember retrieves a paginated list of a member's
	// contribution entries using token-based pagination.
	ListContributionsByMember(ctx context.Context, memberID string, limit int, nextToken *string) ([]domain.LedgerEntry, *string, error)

	// SumContributionsByMember totals a member's settled contributions.
	SumContributionsByMember(ctx context.Context, memberID string) (decimal.Decimal, error)
}

// LedgerRepositoryFacade combines all ledger-related repository interfaces
// This is a facade for clients that need access to all operations
type LedgerRepositoryFacade interface {
	LedgerReader
	LedgerWriter
	ContributionReader
}
