package services

import (
	"context"
	"time"

	"github.com/smart-chama/chama_backend/internal/core/domain"
)

// ReportingService defines operations for generating financial reports
type ReportingService interface {
	// FinanceReport generates the fund-level finance report, optionally
	// bounded by a date window. Admin only.
	FinanceReport(ctx context.Context, requestingUserID string, from *time.Time, to *time.Time) (*domain.FinanceReport, error)

	// DashboardSummary generates the admin landing-page rollup. Admin only.
	DashboardSummary(ctx context.Context, requestingUserID string) (*domain.DashboardSummary, error)

	// MemberSummary generates the calling member's landing-page rollup.
	MemberSummary(ctx context.Context, memberID string) (*domain.MemberSummary, error)
}
