package pgsql

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/smart-chama/chama_backend/internal/apperrors"
	"github.com/smart-chama/chama_backend/internal/core/domain"
	portsrepo "github.com/smart-chama/chama_backend/internal/core/ports/repositories"
	"github.com/smart-chama/chama_backend/internal/models"
	"github.com/smart-chama/chama_backend/internal/utils/mapping"
	"github.com/smart-chama/chama_backend/internal/utils/pagination"
)

const loanColumns = `loan_id, member_id, principal, interest_rate, duration_months, purpose,
	total_payable, monthly_installment, total_paid, balance,
	status, approved_by, approved_at, rejected_by, rejected_at, rejection_reason, version,
	created_at, created_by, last_updated_at, last_updated_by, deleted_at`

const repaymentColumns = `repayment_id, loan_id, amount, payment_method, reference, status, paid_at,
	created_at, created_by, last_updated_at, last_updated_by`

type PgxLoanRepository struct {
	BaseRepository
}

func newPgxLoanRepository(pool *pgxpool.Pool) portsrepo.LoanRepositoryFacade {
	return &PgxLoanRepository{BaseRepository: BaseRepository{Pool: pool}}
}

// Ensure PgxLoanRepository implements portsrepo.LoanRepositoryFacade
var _ portsrepo.LoanRepositoryFacade = (*PgxLoanRepository)(nil)

func scanLoan(row pgx.Row) (*models.Loan, error) {
	var m models.Loan
	err := row.Scan(
		&m.LoanID,
		&m.MemberID,
		&m.Principal,
		&m.InterestRate,
		&m.DurationMonths,
		&m.Purpose,
		&m.TotalPayable,
		&m.MonthlyInstallment,
		&m.TotalPaid,
		&m.Balance,
		&m.Status,
		&m.ApprovedBy,
		&m.ApprovedAt,
		&m.RejectedBy,
		&m.RejectedAt,
		&m.RejectionReason,
		&m.Version,
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

func collectLoans(rows pgx.Rows) ([]models.Loan, error) {
	loans := []models.Loan{}
	for rows.Next() {
		m, err := scanLoan(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan loan row: %w", err)
		}
		loans = append(loans, *m)
	}
	if rows.Err() != nil {
		return nil, fmt.Errorf("error iterating loan rows: %w", rows.Err())
	}
	return loans, nil
}

// SaveLoan inserts the loan and its paired LOAN ledger entry in one transaction.
func (r *PgxLoanRepository) SaveLoan(ctx context.Context, loan domain.Loan, entry domain.LedgerEntry) error {
	tx, err := r.Begin(ctx)
	if err != nil {
		return err
	}
	defer r.Rollback(ctx, tx)

	m := mapping.ToModelLoan(loan)
	loanQuery := `
		INSERT INTO loans (` + loanColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19, $20, $21, $22);
	`
	_, err = tx.Exec(ctx, loanQuery,
		m.LoanID, m.MemberID, m.Principal, m.InterestRate, m.DurationMonths, m.Purpose,
		m.TotalPayable, m.MonthlyInstallment, m.TotalPaid, m.Balance,
		m.Status, m.ApprovedBy, m.ApprovedAt, m.RejectedBy, m.RejectedAt, m.RejectionReason, m.Version,
		m.CreatedAt, m.CreatedBy, m.LastUpdatedAt, m.LastUpdatedBy, m.DeletedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert loan %s: %w", m.LoanID, err)
	}

	if err := insertLedgerEntry(ctx, tx, entry); err != nil {
		return err
	}

	return r.Commit(ctx, tx)
}

func (r *PgxLoanRepository) FindLoanByID(ctx context.Context, loanID string) (*domain.Loan, error) {
	query := `SELECT ` + loanColumns + ` FROM loans WHERE loan_id = $1 AND deleted_at IS NULL;`
	m, err := scanLoan(r.Pool.QueryRow(ctx, query, loanID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find loan %s: %w", loanID, err)
	}
	d := mapping.ToDomainLoan(*m)
	return &d, nil
}

// listLoans is the shared pagination body for ListLoans and ListLoansByMember.
// Ordering is created_at DESC; the token encodes the last row's created_at.
func (r *PgxLoanRepository) listLoans(ctx context.Context, limit int, nextToken *string, extraClause string, extraArgs ...interface{}) ([]domain.Loan, *string, error) {
	if limit <= 0 {
		limit = 20
	}
	fetchLimit := limit + 1

	baseQuery := `SELECT ` + loanColumns + ` FROM loans WHERE deleted_at IS NULL`
	args := append([]interface{}{}, extraArgs...)
	if extraClause != "" {
		baseQuery += " AND " + extraClause
	}

	if nextToken != nil && *nextToken != "" {
		lastCreatedAt, decodeErr := pagination.DecodeDateBasedToken(*nextToken)
		if decodeErr != nil {
			return nil, nil, apperrors.NewAppError(400, "invalid nextToken", decodeErr)
		}
		args = append(args, lastCreatedAt)
		baseQuery += " AND created_at < $" + strconv.Itoa(len(args))
	}

	args = append(args, fetchLimit)
	query := baseQuery + " ORDER BY created_at DESC LIMIT $" + strconv.Itoa(len(args)) + ";"

	rows, err := r.Pool.Query(ctx, query, args...)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to query loans: %w", err)
	}
	defer rows.Close()

	loans, err := collectLoans(rows)
	if err != nil {
		return nil, nil, err
	}

	var nextTokenVal *string
	if len(loans) > limit {
		last := loans[limit-1]
		token := pagination.EncodeDateBasedToken(last.CreatedAt)
		nextTokenVal = &token
		loans = loans[:limit]
	}
	return mapping.ToDomainLoanSlice(loans), nextTokenVal, nil
}

func (r *PgxLoanRepository) ListLoans(ctx context.Context, limit int, nextToken *string, status *domain.LoanStatus) ([]domain.Loan, *string, error) {
	if status != nil {
		return r.listLoans(ctx, limit, nextToken, "status = $1", string(*status))
	}
	return r.listLoans(ctx, limit, nextToken, "")
}

func (r *PgxLoanRepository) ListLoansByMember(ctx context.Context, memberID string, limit int, nextToken *string) ([]domain.Loan, *string, error) {
	return r.listLoans(ctx, limit, nextToken, "member_id = $1", memberID)
}

// ListOpenLoans retrieves all approved loans with an outstanding balance.
func (r *PgxLoanRepository) ListOpenLoans(ctx context.Context) ([]domain.Loan, error) {
	query := `
		SELECT ` + loanColumns + `
		FROM loans
		WHERE status = $1 AND deleted_at IS NULL
		ORDER BY approved_at;
	`
	rows, err := r.Pool.Query(ctx, query, string(domain.LoanApproved))
	if err != nil {
		return nil, fmt.Errorf("failed to query open loans: %w", err)
	}
	defer rows.Close()

	loans, err := collectLoans(rows)
	if err != nil {
		return nil, err
	}
	return mapping.ToDomainLoanSlice(loans), nil
}

func (r *PgxLoanRepository) FindRepaymentsByLoanID(ctx context.Context, loanID string) ([]domain.Repayment, error) {
	query := `
		SELECT ` + repaymentColumns + `
		FROM repayments
		WHERE loan_id = $1
		ORDER BY paid_at, created_at;
	`
	rows, err := r.Pool.Query(ctx, query, loanID)
	if err != nil {
		return nil, fmt.Errorf("failed to query repayments for loan %s: %w", loanID, err)
	}
	defer rows.Close()

	repayments := []models.Repayment{}
	for rows.Next() {
		var m models.Repayment
		err := rows.Scan(
			&m.RepaymentID,
			&m.LoanID,
			&m.Amount,
			&m.PaymentMethod,
			&m.Reference,
			&m.Status,
			&m.PaidAt,
			&m.CreatedAt,
			&m.CreatedBy,
			&m.LastUpdatedAt,
			&m.LastUpdatedBy,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan repayment row: %w", err)
		}
		repayments = append(repayments, m)
	}
	if rows.Err() != nil {
		return nil, fmt.Errorf("error iterating repayment rows: %w", rows.Err())
	}
	return mapping.ToDomainRepaymentSlice(repayments), nil
}

func (r *PgxLoanRepository) UpdateLoan(ctx context.Context, loan domain.Loan) error {
	m := mapping.ToModelLoan(loan)
	query := `
		UPDATE loans
		SET principal = $1, interest_rate = $2, duration_months = $3, purpose = $4,
		    total_payable = $5, monthly_installment = $6, total_paid = $7, balance = $8,
		    last_updated_at = $9, last_updated_by = $10, version = version + 1
		WHERE loan_id = $11 AND deleted_at IS NULL;
	`
	cmdTag, err := r.Pool.Exec(ctx, query,
		m.Principal, m.InterestRate, m.DurationMonths, m.Purpose,
		m.TotalPayable, m.MonthlyInstallment, m.TotalPaid, m.Balance,
		m.LastUpdatedAt, m.LastUpdatedBy, m.LoanID,
	)
	if err != nil {
		return fmt.Errorf("failed to update loan %s: %w", m.LoanID, err)
	}
	if cmdTag.RowsAffected() == 0 {
		return fmt.Errorf("loan not found or already deleted: %w", apperrors.ErrNotFound)
	}
	return nil
}

// UpdateLoanStatus writes a status transition with its approval or rejection
// metadata and keeps the paired LOAN ledger entry's status in step.
func (r *PgxLoanRepository) UpdateLoanStatus(ctx context.Context, loan domain.Loan) error {
	tx, err := r.Begin(ctx)
	if err != nil {
		return err
	}
	defer r.Rollback(ctx, tx)

	m := mapping.ToModelLoan(loan)
	loanQuery := `
		UPDATE loans
		SET status = $1, approved_by = $2, approved_at = $3, rejected_by = $4, rejected_at = $5,
		    rejection_reason = $6, last_updated_at = $7, last_updated_by = $8, version = version + 1
		WHERE loan_id = $9 AND deleted_at IS NULL;
	`
	cmdTag, err := tx.Exec(ctx, loanQuery,
		m.Status, m.ApprovedBy, m.ApprovedAt, m.RejectedBy, m.RejectedAt,
		m.RejectionReason, m.LastUpdatedAt, m.LastUpdatedBy, m.LoanID,
	)
	if err != nil {
		return fmt.Errorf("failed to update status for loan %s: %w", m.LoanID, err)
	}
	if cmdTag.RowsAffected() == 0 {
		return fmt.Errorf("loan not found or already deleted: %w", apperrors.ErrNotFound)
	}

	entryQuery := `
		UPDATE ledger_entries
		SET status = $1, approved_by = $2, approved_at = $3, rejection_reason = $4,
		    last_updated_at = $5, last_updated_by = $6
		WHERE entry_id = $7 AND deleted_at IS NULL;
	`
	entryStatus := loanStatusToEntryStatus(loan.Status)
	if _, err := tx.Exec(ctx, entryQuery,
		string(entryStatus), m.ApprovedBy, m.ApprovedAt, m.RejectionReason,
		m.LastUpdatedAt, m.LastUpdatedBy, m.LoanID,
	); err != nil {
		return fmt.Errorf("failed to update ledger entry for loan %s: %w", m.LoanID, err)
	}

	return r.Commit(ctx, tx)
}

// loanStatusToEntryStatus maps the loan lifecycle onto the shared entry workflow.
func loanStatusToEntryStatus(s domain.LoanStatus) domain.EntryStatus {
	switch s {
	case domain.LoanApproved:
		return domain.StatusApproved
	case domain.LoanRejected:
		return domain.StatusRejected
	case domain.LoanCompleted:
		return domain.StatusCompleted
	default:
		return domain.StatusPending
	}
}

// RecordRepayment appends a repayment atomically. The loan row is locked for
// the duration of the transaction, so concurrent repayments against the same
// loan serialize and each one observes the balance left by the previous.
func (r *PgxLoanRepository) RecordRepayment(ctx context.Context, loanID string, repayment domain.Repayment) (*domain.Loan, error) {
	tx, err := r.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer r.Rollback(ctx, tx)

	lockQuery := `SELECT ` + loanColumns + ` FROM loans WHERE loan_id = $1 AND deleted_at IS NULL FOR UPDATE;`
	m, err := scanLoan(tx.QueryRow(ctx, lockQuery, loanID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to lock loan %s for repayment: %w", loanID, err)
	}

	loan := mapping.ToDomainLoan(*m)
	if !loan.IsRepayable() {
		return nil, fmt.Errorf("%w: loan is %s, repayments require %s", apperrors.ErrInvalidState, loan.Status, domain.LoanApproved)
	}
	if repayment.Amount.GreaterThan(loan.Balance) {
		return nil, fmt.Errorf("%w: repayment %s exceeds outstanding balance %s", apperrors.ErrValidation, repayment.Amount, loan.Balance)
	}

	repayment.LoanID = loanID
	mr := mapping.ToModelRepayment(repayment)
	repaymentQuery := `
		INSERT INTO repayments (` + repaymentColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11);
	`
	if _, err := tx.Exec(ctx, repaymentQuery,
		mr.RepaymentID, mr.LoanID, mr.Amount, mr.PaymentMethod, mr.Reference, mr.Status, mr.PaidAt,
		mr.CreatedAt, mr.CreatedBy, mr.LastUpdatedAt, mr.LastUpdatedBy,
	); err != nil {
		return nil, fmt.Errorf("failed to insert repayment for loan %s: %w", loanID, err)
	}

	loan.TotalPaid = domain.RoundMoney(loan.TotalPaid.Add(repayment.Amount))
	paidOff := loan.RecalculateBalance()
	if paidOff {
		loan.Status = domain.LoanCompleted
	}
	loan.Touch(repayment.CreatedBy, repayment.CreatedAt)
	loan.Version++

	updateQuery := `
		UPDATE loans
		SET total_paid = $1, balance = $2, status = $3, last_updated_at = $4, last_updated_by = $5, version = $6
		WHERE loan_id = $7;
	`
	if _, err := tx.Exec(ctx, updateQuery,
		loan.TotalPaid, loan.Balance, string(loan.Status),
		loan.LastUpdatedAt, loan.LastUpdatedBy, loan.Version, loanID,
	); err != nil {
		return nil, fmt.Errorf("failed to update loan %s after repayment: %w", loanID, err)
	}

	// Mirror the repayment into the unified ledger.
	entry := domain.LedgerEntry{
		EntryID:       repayment.RepaymentID,
		MemberID:      loan.MemberID,
		Kind:          domain.KindRepayment,
		Amount:        repayment.Amount,
		Status:        domain.StatusCompleted,
		EntryDate:     repayment.PaidAt,
		PaymentMethod: repayment.PaymentMethod,
		Reference:     repayment.Reference,
		Notes:         "Repayment for loan " + loanID,
		AuditFields:   repayment.AuditFields,
	}
	if err := insertLedgerEntry(ctx, tx, entry); err != nil {
		return nil, err
	}

	// Settle the paired LOAN ledger entry when the loan completes.
	if paidOff {
		completeQuery := `
			UPDATE ledger_entries
			SET status = $1, last_updated_at = $2, last_updated_by = $3
			WHERE entry_id = $4 AND deleted_at IS NULL;
		`
		if _, err := tx.Exec(ctx, completeQuery,
			string(domain.StatusCompleted), loan.LastUpdatedAt, loan.LastUpdatedBy, loanID,
		); err != nil {
			return nil, fmt.Errorf("failed to complete ledger entry for loan %s: %w", loanID, err)
		}
	}

	if err := r.Commit(ctx, tx); err != nil {
		return nil, err
	}
	return &loan, nil
}

// MarkLoanDeleted soft deletes the loan and its paired ledger entry.
func (r *PgxLoanRepository) MarkLoanDeleted(ctx context.Context, loanID string, deletedAt time.Time, deletedBy string) error {
	tx, err := r.Begin(ctx)
	if err != nil {
		return err
	}
	defer r.Rollback(ctx, tx)

	loanQuery := `
		UPDATE loans
		SET deleted_at = $1, last_updated_at = $1, last_updated_by = $2
		WHERE loan_id = $3 AND deleted_at IS NULL;
	`
	cmdTag, err := tx.Exec(ctx, loanQuery, deletedAt, deletedBy, loanID)
	if err != nil {
		return fmt.Errorf("failed to mark loan as deleted: %w", err)
	}
	if cmdTag.RowsAffected() == 0 {
		return fmt.Errorf("loan not found or already deleted: %w", apperrors.ErrNotFound)
	}

	entryQuery := `
		UPDATE ledger_entries
		SET deleted_at = $1, last_updated_at = $1, last_updated_by = $2
		WHERE entry_id = $3 AND deleted_at IS NULL;
	`
	if _, err := tx.Exec(ctx, entryQuery, deletedAt, deletedBy, loanID); err != nil {
		return fmt.Errorf("failed to mark ledger entry for loan %s as deleted: %w", loanID, err)
	}

	return r.Commit(ctx, tx)
}
