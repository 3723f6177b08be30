package repositories

import (
	"context"
	"time"

	"github.com/smart-chama/chama_backend/internal/core/domain"
)

// ReportingRepository defines operations for retrieving aggregated report data
type ReportingRepository interface {
	// GetContributionStats aggregates settled contributions, optionally
	// bounded by a date window, with per-month buckets.
	GetContributionStats(ctx context.Context, from *time.Time, to *time.Time) (*domain.ContributionStats, error)

	// GetLoanStats aggregates loan counts and approved principal totals.
	GetLoanStats(ctx context.Context) (*domain.LoanStats, error)

	// GetFinanceReport computes the fund-level totals and net balance,
	// optionally bounded by a date window.
	GetFinanceReport(ctx context.Context, from *time.Time, to *time.Time) (*domain.FinanceReport, error)

	// GetMemberSummary aggregates a single member's contributions, loans and
	// outstanding balance. Unread notification counts are filled in by the
	// reporting service, not here.
	GetMemberSummary(ctx context.Context, memberID string) (*domain.MemberSummary, error)

	// CountMembers counts all members and the active subset.
	CountMembers(ctx context.Context) (total int64, active int64, err error)

	// CountPendingApprovals counts ledger entries awaiting admin action.
	CountPendingApprovals(ctx context.Context) (int64, error)
}
