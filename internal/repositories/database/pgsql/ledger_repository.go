package pgsql

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/smart-chama/chama_backend/internal/apperrors"
	"github.com/smart-chama/chama_backend/internal/core/domain"
	portsrepo "github.com/smart-chama/chama_backend/internal/core/ports/repositories"
	"github.com/smart-chama/chama_backend/internal/models"
	"github.com/smart-chama/chama_backend/internal/utils/mapping"
	"github.com/smart-chama/chama_backend/internal/utils/pagination"
)

const ledgerEntryColumns = `entry_id, member_id, kind, contribution_type, amount, status, entry_date, payment_method,
	reference, notes, approved_by, approved_at, rejection_reason,
	created_at, created_by, last_updated_at, last_updated_by, deleted_at`

type PgxLedgerRepository struct {
	BaseRepository
}

func newPgxLedgerRepository(pool *pgxpool.Pool) portsrepo.LedgerRepositoryFacade {
	return &PgxLedgerRepository{BaseRepository: BaseRepository{Pool: pool}}
}

// Ensure PgxLedgerRepository implements portsrepo.LedgerRepositoryFacade
var _ portsrepo.LedgerRepositoryFacade = (*PgxLedgerRepository)(nil)

func scanLedgerEntry(row pgx.Row) (*models.LedgerEntry, error) {
	var m models.LedgerEntry
	err := row.Scan(
		&m.EntryID,
		&m.MemberID,
		&m.Kind,
		&m.ContributionType,
		&m.Amount,
		&m.Status,
		&m.EntryDate,
		&m.PaymentMethod,
		&m.Reference,
		&m.Notes,
		&m.ApprovedBy,
		&m.ApprovedAt,
		&m.RejectionReason,
		&m.CreatedAt,
		&m.CreatedBy,
		&m.LastUpdatedAt,
		&m.LastUpdatedBy,
		&m.DeletedAt,
	)
	if err != nil {
		return nil, err
	}
	return &m, nil
}

func collectLedgerEntries(rows pgx.Rows) ([]models.LedgerEntry, error) {
	entries := []models.LedgerEntry{}
	for rows.Next() {
		m, err := scanLedgerEntry(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan ledger entry row: %w", err)
		}
		entries = append(entries, *m)
	}
	if rows.Err() != nil {
		return nil, fmt.Errorf("error iterating ledger entry rows: %w", rows.Err())
	}
	return entries, nil
}

func (r *PgxLedgerRepository) SaveEntry(ctx context.Context, entry domain.LedgerEntry) error {
	return insertLedgerEntry(ctx, r.Pool, entry)
}

// execer abstracts the pool and an open transaction for shared inserts.
type execer interface {
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
}

// insertLedgerEntry writes a ledger entry row using either the pool or an
// open transaction. The loan repository reuses it to write REPAYMENT entries
// inside the repayment transaction.
func insertLedgerEntry(ctx context.Context, exec execer, entry domain.LedgerEntry) error {
	m := mapping.ToModelLedgerEntry(entry)
	query := `
		INSERT INTO ledger_entries (` + ledgerEntryColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18);
	`
	_, err := exec.Exec(ctx, query,
		m.EntryID, m.MemberID, m.Kind, m.ContributionType, m.Amount, m.Status,
		m.EntryDate, m.PaymentMethod, m.Reference, m.Notes,
		m.ApprovedBy, m.ApprovedAt, m.RejectionReason,
		m.CreatedAt, m.CreatedBy, m.LastUpdatedAt, m.LastUpdatedBy, m.DeletedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert ledger entry %s: %w", m.EntryID, err)
	}
	return nil
}

func (r *PgxLedgerRepository) FindEntryByID(ctx context.Context, entryID string) (*domain.LedgerEntry, error) {
	query := `SELECT ` + ledgerEntryColumns + ` FROM ledger_entries WHERE entry_id = $1 AND deleted_at IS NULL;`
	m, err := scanLedgerEntry(r.Pool.QueryRow(ctx, query, entryID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find ledger entry %s: %w", entryID, err)
	}
	d := mapping.ToDomainLedgerEntry(*m)
	return &d, nil
}

// ListEntries retrieves a paginated list of ledger entries matching the filter.
// Ordering is entry_date DESC with created_at DESC as the tie-breaker, which
// the pagination token encodes.
func (r *PgxLedgerRepository) ListEntries(ctx context.Context, limit int, nextToken *string, filter portsrepo.LedgerEntryFilter) ([]domain.LedgerEntry, *string, error) {
	if limit <= 0 {
		limit = 20
	}
	fetchLimit := limit + 1

	baseQuery := `SELECT ` + ledgerEntryColumns + ` FROM ledger_entries WHERE deleted_at IS NULL`
	args := []interface{}{}

	addArg := func(clause string, value interface{}) {
		args = append(args, value)
		baseQuery += " AND " + clause + "$" + strconv.Itoa(len(args))
	}

	if filter.Kind != nil {
		addArg("kind = ", string(*filter.Kind))
	}
	if filter.Status != nil {
		addArg("status = ", string(*filter.Status))
	}
	if filter.MemberID != nil {
		addArg("member_id = ", *filter.MemberID)
	}
	if filter.FromDate != nil {
		addArg("entry_date >= ", *filter.FromDate)
	}
	if filter.ToDate != nil {
		addArg("entry_date < ", *filter.ToDate)
	}

	if nextToken != nil && *nextToken != "" {
		lastEntryDate, lastCreatedAt, decodeErr := pagination.DecodeToken(*nextToken)
		if decodeErr != nil {
			return nil, nil, apperrors.NewAppError(400, "invalid nextToken", decodeErr)
		}
		args = append(args, lastEntryDate, lastCreatedAt)
		baseQuery += " AND (entry_date, created_at) < ($" + strconv.Itoa(len(args)-1) + ", $" + strconv.Itoa(len(args)) + ")"
	}

	args = append(args, fetchLimit)
	query := baseQuery + " ORDER BY entry_date DESC, created_at DESC LIMIT $" + strconv.Itoa(len(args)) + ";"

	rows, err := r.Pool.Query(ctx, query, args...)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to query ledger entries: %w", err)
	}
	defer rows.Close()

	entries, err := collectLedgerEntries(rows)
	if err != nil {
		return nil, nil, err
	}

	return paginateLedgerEntries(entries, limit)
}

// paginateLedgerEntries trims the extra fetched row and builds the next token.
func paginateLedgerEntries(entries []models.LedgerEntry, limit int) ([]domain.LedgerEntry, *string, error) {
	var nextTokenVal *string
	if len(entries) > limit {
		last := entries[limit-1]
		token := pagination.EncodeToken(last.EntryDate, last.CreatedAt)
		nextTokenVal = &token
		entries = entries[:limit]
	}
	return mapping.ToDomainLedgerEntrySlice(entries), nextTokenVal, nil
}

func (r *PgxLedgerRepository) ListRecentEntries(ctx context.Context, limit int) ([]domain.LedgerEntry, error) {
	if limit <= 0 {
		limit = 20
	}
	query := `
		SELECT ` + ledgerEntryColumns + `
		FROM ledger_entries
		WHERE deleted_at IS NULL
		ORDER BY created_at DESC
		LIMIT $1;
	`
	rows, err := r.Pool.Query(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query recent ledger entries: %w", err)
	}
	defer rows.Close()

	entries, err := collectLedgerEntries(rows)
	if err != nil {
		return nil, err
	}
	return mapping.ToDomainLedgerEntrySlice(entries), nil
}

func (r *PgxLedgerRepository) UpdateEntry(ctx context.Context, entry domain.LedgerEntry) error {
	m := mapping.ToModelLedgerEntry(entry)
	query := `
		UPDATE ledger_entries
		SET amount = $1, entry_date = $2, payment_method = $3, contribution_type = $4,
		    reference = $5, notes = $6, last_updated_at = $7, last_updated_by = $8
		WHERE entry_id = $9 AND deleted_at IS NULL;
	`
	cmdTag, err := r.Pool.Exec(ctx, query,
		m.Amount, m.EntryDate, m.PaymentMethod, m.ContributionType,
		m.Reference, m.Notes, m.LastUpdatedAt, m.LastUpdatedBy, m.EntryID,
	)
	if err != nil {
		return fmt.Errorf("failed to update ledger entry %s: %w", m.EntryID, err)
	}
	if cmdTag.RowsAffected() == 0 {
		return fmt.Errorf("ledger entry not found or already deleted: %w", apperrors.ErrNotFound)
	}
	return nil
}

func (r *PgxLedgerRepository) UpdateEntryStatus(ctx context.Context, entryID string, status domain.EntryStatus, approverID *string, rejectionReason *string, updatedBy string, updatedAt time.Time) error {
	query := `
		UPDATE ledger_entries
		SET status = $1,
		    approved_by = COALESCE($2, approved_by),
		    approved_at = CASE WHEN $2::text IS NOT NULL THEN $3 ELSE approved_at END,
		    rejection_reason = COALESCE($4, rejection_reason),
		    last_updated_at = $3, last_updated_by = $5
		WHERE entry_id = $6 AND deleted_at IS NULL;
	`
	cmdTag, err := r.Pool.Exec(ctx, query, string(status), approverID, updatedAt, rejectionReason, updatedBy, entryID)
	if err != nil {
		return fmt.Errorf("failed to update status for ledger entry %s: %w", entryID, err)
	}
	if cmdTag.RowsAffected() == 0 {
		return fmt.Errorf("ledger entry not found or already deleted: %w", apperrors.ErrNotFound)
	}
	return nil
}

func (r *PgxLedgerRepository) MarkEntryDeleted(ctx context.Context, entryID string, deletedAt time.Time, deletedBy string) error {
	query := `
		UPDATE ledger_entries
		SET deleted_at = $1, last_updated_at = $1, last_updated_by = $2
		WHERE entry_id = $3 AND deleted_at IS NULL;
	`
	cmdTag, err := r.Pool.Exec(ctx, query, deletedAt, deletedBy, entryID)
	if err != nil {
		return fmt.Errorf("failed to mark ledger entry as deleted: %w", err)
	}
	if cmdTag.RowsAffected() == 0 {
		return fmt.Errorf("ledger entry not found or already deleted: %w", apperrors.ErrNotFound)
	}
	return nil
}

// ListContributionsByMember retrieves a member's contribution entries, newest first.
func (r *PgxLedgerRepository) ListContributionsByMember(ctx context.Context, memberID string, limit int, nextToken *string) ([]domain.LedgerEntry, *string, error) {
	kind := domain.KindContribution
	return r.ListEntries(ctx, limit, nextToken, portsrepo.LedgerEntryFilter{
		Kind:     &kind,
		MemberID: &memberID,
	})
}

// SumContributionsByMember totals a member's settled (COMPLETED) contributions.
func (r *PgxLedgerRepository) SumContributionsByMember(ctx context.Context, memberID string) (decimal.Decimal, error) {
	query := `
		SELECT COALESCE(SUM(amount), 0)
		FROM ledger_entries
		WHERE member_id = $1 AND kind = $2 AND status = $3 AND deleted_at IS NULL;
	`
	var total decimal.Decimal
	err := r.Pool.QueryRow(ctx, query, memberID, string(domain.KindContribution), string(domain.StatusCompleted)).Scan(&total)
	if err != nil {
		return decimal.Zero, fmt.Errorf("failed to sum contributions for member %s: %w", memberID, err)
	}
	return total, nil
}
