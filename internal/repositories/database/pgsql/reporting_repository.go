package pgsql

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/smart-chama/chama_backend/internal/core/domain"
	portsrepo "github.com/smart-chama/chama_backend/internal/core/ports/repositories"
)

type PgxReportingRepository struct {
	BaseRepository
}

func newPgxReportingRepository(pool *pgxpool.Pool) portsrepo.ReportingRepository {
	return &PgxReportingRepository{BaseRepository: BaseRepository{Pool: pool}}
}

// Ensure PgxReportingRepository implements portsrepo.ReportingRepository
var _ portsrepo.ReportingRepository = (*PgxReportingRepository)(nil)

// GetContributionStats aggregates settled contributions with per-month buckets.
func (r *PgxReportingRepository) GetContributionStats(ctx context.Context, from *time.Time, to *time.Time) (*domain.ContributionStats, error) {
	where := `WHERE kind = 'CONTRIBUTION' AND status = 'COMPLETED' AND deleted_at IS NULL`
	args := []interface{}{}
	if from != nil {
		args = append(args, *from)
		where += " AND entry_date >= $" + strconv.Itoa(len(args))
	}
	if to != nil {
		args = append(args, *to)
		where += " AND entry_date < $" + strconv.Itoa(len(args))
	}

	stats := &domain.ContributionStats{
		TotalAmount:  decimal.Zero,
		MonthlyStats: []domain.MonthlyBucket{},
	}

	totalsQuery := `SELECT COUNT(*), COALESCE(SUM(amount), 0) FROM ledger_entries ` + where + `;`
	if err := r.Pool.QueryRow(ctx, totalsQuery, args...).Scan(&stats.TotalContributions, &stats.TotalAmount); err != nil {
		return nil, fmt.Errorf("failed to aggregate contribution totals: %w", err)
	}

	monthlyQuery := `
		SELECT to_char(entry_date, 'YYYY-MM') AS bucket, COUNT(*), COALESCE(SUM(amount), 0)
		FROM ledger_entries ` + where + `
		GROUP BY bucket
		ORDER BY bucket;
	`
	rows, err := r.Pool.Query(ctx, monthlyQuery, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to aggregate monthly contributions: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var bucket domain.MonthlyBucket
		if err := rows.Scan(&bucket.Bucket, &bucket.Count, &bucket.Total); err != nil {
			return nil, fmt.Errorf("failed to scan monthly bucket row: %w", err)
		}
		stats.MonthlyStats = append(stats.MonthlyStats, bucket)
	}
	if rows.Err() != nil {
		return nil, fmt.Errorf("error iterating monthly bucket rows: %w", rows.Err())
	}
	return stats, nil
}

// GetLoanStats aggregates loan counts and the approved principal total.
func (r *PgxReportingRepository) GetLoanStats(ctx context.Context) (*domain.LoanStats, error) {
	query := `
		SELECT COUNT(*),
		       COUNT(*) FILTER (WHERE status = 'APPROVED'),
		       COUNT(*) FILTER (WHERE status = 'PENDING'),
		       COALESCE(SUM(principal) FILTER (WHERE status = 'APPROVED'), 0)
		FROM loans
		WHERE deleted_at IS NULL;
	`
	stats := &domain.LoanStats{TotalAmount: decimal.Zero}
	err := r.Pool.QueryRow(ctx, query).Scan(&stats.TotalLoans, &stats.ActiveLoans, &stats.PendingLoans, &stats.TotalAmount)
	if err != nil {
		return nil, fmt.Errorf("failed to aggregate loan stats: %w", err)
	}
	return stats, nil
}

// GetFinanceReport computes the fund-level totals. Net balance is settled
// contributions minus settled expenses.
func (r *PgxReportingRepository) GetFinanceReport(ctx context.Context, from *time.Time, to *time.Time) (*domain.FinanceReport, error) {
	report := &domain.FinanceReport{
		TotalContributions: decimal.Zero,
		TotalLoans:         decimal.Zero,
		ActiveLoans:        decimal.Zero,
		NetBalance:         decimal.Zero,
	}

	entriesWhere := `WHERE status = 'COMPLETED' AND deleted_at IS NULL`
	entriesArgs := []interface{}{}
	if from != nil {
		entriesArgs = append(entriesArgs, *from)
		entriesWhere += " AND entry_date >= $" + strconv.Itoa(len(entriesArgs))
	}
	if to != nil {
		entriesArgs = append(entriesArgs, *to)
		entriesWhere += " AND entry_date < $" + strconv.Itoa(len(entriesArgs))
	}

	entriesQuery := `
		SELECT COALESCE(SUM(amount) FILTER (WHERE kind = 'CONTRIBUTION'), 0),
		       COALESCE(SUM(amount) FILTER (WHERE kind = 'EXPENSE'), 0)
		FROM ledger_entries ` + entriesWhere + `;`
	var contributions, expenses decimal.Decimal
	if err := r.Pool.QueryRow(ctx, entriesQuery, entriesArgs...).Scan(&contributions, &expenses); err != nil {
		return nil, fmt.Errorf("failed to aggregate ledger totals: %w", err)
	}

	loansWhere := `WHERE status = 'APPROVED' AND deleted_at IS NULL`
	loansArgs := []interface{}{}
	if from != nil {
		loansArgs = append(loansArgs, *from)
		loansWhere += " AND approved_at >= $" + strconv.Itoa(len(loansArgs))
	}
	if to != nil {
		loansArgs = append(loansArgs, *to)
		loansWhere += " AND approved_at < $" + strconv.Itoa(len(loansArgs))
	}

	loansQuery := `
		SELECT COALESCE(SUM(principal), 0), COALESCE(SUM(balance), 0)
		FROM loans ` + loansWhere + `;`
	if err := r.Pool.QueryRow(ctx, loansQuery, loansArgs...).Scan(&report.TotalLoans, &report.ActiveLoans); err != nil {
		return nil, fmt.Errorf("failed to aggregate loan totals: %w", err)
	}

	report.TotalContributions = contributions
	report.NetBalance = contributions.Sub(expenses)
	return report, nil
}

// GetMemberSummary aggregates one member's settled contributions and open loan
// position. Unread notification counts are filled in by the caller.
func (r *PgxReportingRepository) GetMemberSummary(ctx context.Context, memberID string) (*domain.MemberSummary, error) {
	summary := &domain.MemberSummary{
		TotalContributed:  decimal.Zero,
		ActiveLoanBalance: decimal.Zero,
		NextInstallment:   decimal.Zero,
	}

	contributionsQuery := `
		SELECT COALESCE(SUM(amount), 0)
		FROM ledger_entries
		WHERE kind = 'CONTRIBUTION' AND status = 'COMPLETED' AND member_id = $1 AND deleted_at IS NULL;
	`
	if err := r.Pool.QueryRow(ctx, contributionsQuery, memberID).Scan(&summary.TotalContributed); err != nil {
		return nil, fmt.Errorf("failed to aggregate contributions for member %s: %w", memberID, err)
	}

	loansQuery := `
		SELECT COALESCE(SUM(balance), 0), COALESCE(SUM(monthly_installment), 0)
		FROM loans
		WHERE member_id = $1 AND status = 'APPROVED' AND deleted_at IS NULL;
	`
	if err := r.Pool.QueryRow(ctx, loansQuery, memberID).Scan(&summary.ActiveLoanBalance, &summary.NextInstallment); err != nil {
		return nil, fmt.Errorf("failed to aggregate loans for member %s: %w", memberID, err)
	}
	return summary, nil
}

func (r *PgxReportingRepository) CountMembers(ctx context.Context) (int64, int64, error) {
	query := `
		SELECT COUNT(*), COUNT(*) FILTER (WHERE status = 'ACTIVE')
		FROM users
		WHERE deleted_at IS NULL;
	`
	var total, active int64
	if err := r.Pool.QueryRow(ctx, query).Scan(&total, &active); err != nil {
		return 0, 0, fmt.Errorf("failed to count members: %w", err)
	}
	return total, active, nil
}

func (r *PgxReportingRepository) CountPendingApprovals(ctx context.Context) (int64, error) {
	query := `SELECT COUNT(*) FROM ledger_entries WHERE status = 'PENDING' AND deleted_at IS NULL;`
	var count int64
	if err := r.Pool.QueryRow(ctx, query).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count pending approvals: %w", err)
	}
	return count, nil
}
