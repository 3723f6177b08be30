package services

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/smart-chama/chama_backend/internal/core/domain"
	portsrepo "github.com/smart-chama/chama_backend/internal/core/ports/repositories"
	portssvc "github.com/smart-chama/chama_backend/internal/core/ports/services"
)

// reportingService implements the ReportingService interface. Aggregations
// are read-only and always return well-typed zero defaults for empty data.
// Results may be cached in Redis; cache failures degrade to direct queries.
type reportingService struct {
	BaseService
	reportingRepo    portsrepo.ReportingRepository
	notificationRepo portsrepo.NotificationReader
	cache            *redis.Client
	cacheTTL         time.Duration
}

// ReportingServiceOption is a functional option for configuring the reporting service
type ReportingServiceOption func(*reportingService)

// WithReportCache enables Redis caching of report payloads.
func WithReportCache(client *redis.Client, ttl time.Duration) ReportingServiceOption {
	return func(s *reportingService) {
		s.cache = client
		s.cacheTTL = ttl
	}
}

// NewReportingService creates a new reporting service with the provided options
func NewReportingService(
	repo portsrepo.ReportingRepository,
	notificationRepo portsrepo.NotificationReader,
	userSvc portssvc.UserReaderSvc,
	options ...ReportingServiceOption,
) portssvc.ReportingService {
	svc := &reportingService{
		BaseService:      BaseService{Users: userSvc},
		reportingRepo:    repo,
		notificationRepo: notificationRepo,
		cacheTTL:         time.Minute,
	}
	for _, option := range options {
		option(svc)
	}
	return svc
}

// Ensure reportingService implements the ReportingService interface
var _ portssvc.ReportingService = (*reportingService)(nil)

// fromCache loads a cached report payload into dest. Returns false on miss or
// any cache error; cache errors are logged, never surfaced.
func (s *reportingService) fromCache(ctx context.Context, key string, dest any) bool {
	if s.cache == nil {
		return false
	}
	raw, err := s.cache.Get(ctx, key).Bytes()
	if err != nil {
		if err != redis.Nil {
			s.LogDebug(ctx, "report cache read failed", slog.String("key", key), slog.String("error", err.Error()))
		}
		return false
	}
	if err := json.Unmarshal(raw, dest); err != nil {
		s.LogDebug(ctx, "report cache payload invalid", slog.String("key", key), slog.String("error", err.Error()))
		return false
	}
	return true
}

// toCache stores a report payload, best effort.
func (s *reportingService) toCache(ctx context.Context, key string, value any) {
	if s.cache == nil {
		return
	}
	raw, err := json.Marshal(value)
	if err != nil {
		return
	}
	if err := s.cache.Set(ctx, key, raw, s.cacheTTL).Err(); err != nil {
		s.LogDebug(ctx, "report cache write failed", slog.String("key", key), slog.String("error", err.Error()))
	}
}

// FinanceReport generates the fund-level finance report. Admin only.
func (s *reportingService) FinanceReport(ctx context.Context, requestingUserID string, from *time.Time, to *time.Time) (*domain.FinanceReport, error) {
	if _, err := s.RequireAdmin(ctx, requestingUserID); err != nil {
		return nil, err
	}

	// Windowed reports are not cached; the unbounded report is the hot one.
	cacheable := from == nil && to == nil
	const cacheKey = "report:finance"
	if cacheable {
		var cached domain.FinanceReport
		if s.fromCache(ctx, cacheKey, &cached) {
			return &cached, nil
		}
	}

	report, err := s.reportingRepo.GetFinanceReport(ctx, from, to)
	if err != nil {
		s.LogError(ctx, err, "failed to generate finance report")
		return nil, fmt.Errorf("failed to generate finance report: %w", err)
	}

	if cacheable {
		s.toCache(ctx, cacheKey, report)
	}
	s.LogInfo(ctx, "finance report generated", slog.String("requested_by", requestingUserID))
	return report, nil
}

// DashboardSummary generates the admin landing-page rollup. Admin only.
func (s *reportingService) DashboardSummary(ctx context.Context, requestingUserID string) (*domain.DashboardSummary, error) {
	if _, err := s.RequireAdmin(ctx, requestingUserID); err != nil {
		return nil, err
	}

	const cacheKey = "report:dashboard"
	var cached domain.DashboardSummary
	if s.fromCache(ctx, cacheKey, &cached) {
		return &cached, nil
	}

	total, active, err := s.reportingRepo.CountMembers(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to count members: %w", err)
	}
	pending, err := s.reportingRepo.CountPendingApprovals(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to count pending approvals: %w", err)
	}
	contributions, err := s.reportingRepo.GetContributionStats(ctx, nil, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to aggregate contribution stats: %w", err)
	}
	loans, err := s.reportingRepo.GetLoanStats(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to aggregate loan stats: %w", err)
	}
	finance, err := s.reportingRepo.GetFinanceReport(ctx, nil, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to generate finance report: %w", err)
	}

	summary := &domain.DashboardSummary{
		TotalMembers:     total,
		ActiveMembers:    active,
		PendingApprovals: pending,
		Contributions:    *contributions,
		Loans:            *loans,
		NetBalance:       finance.NetBalance,
	}
	s.toCache(ctx, cacheKey, summary)
	return summary, nil
}

// MemberSummary generates the calling member's landing-page rollup.
func (s *reportingService) MemberSummary(ctx context.Context, memberID string) (*domain.MemberSummary, error) {
	summary, err := s.reportingRepo.GetMemberSummary(ctx, memberID)
	if err != nil {
		s.LogError(ctx, err, "failed to generate member summary", slog.String("member_id", memberID))
		return nil, fmt.Errorf("failed to generate member summary for %s: %w", memberID, err)
	}

	unread, err := s.notificationRepo.CountUnreadByUser(ctx, memberID)
	if err != nil {
		// The summary is still useful without the unread badge.
		s.LogError(ctx, err, "failed to count unread notifications", slog.String("member_id", memberID))
	} else {
		summary.UnreadNotifications = unread
	}
	return summary, nil
}
