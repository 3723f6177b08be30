package dto

import (
	"github.com/shopspring/decimal"

	"github.com/smart-chama/chama_backend/internal/core/domain"
)

// FinanceReportParams defines query parameters for the finance report.
type FinanceReportParams struct {
	StartDate *string `form:"startDate"` // YYYY-MM-DD
	EndDate   *string `form:"endDate"`   // YYYY-MM-DD
}

// FinanceReportResponse defines the fund-level finance report.
type FinanceReportResponse struct {
	TotalContributions decimal.Decimal `json:"totalContributions"`
	TotalLoans         decimal.Decimal `json:"totalLoans"`
	ActiveLoans        decimal.Decimal `json:"activeLoans"`
	NetBalance         decimal.Decimal `json:"netBalance"`
}

// DashboardSummaryResponse defines the admin dashboard rollup.
type DashboardSummaryResponse struct {
	TotalMembers     int64                     `json:"totalMembers"`
	ActiveMembers    int64                     `json:"activeMembers"`
	PendingApprovals int64                     `json:"pendingApprovals"`
	Contributions    ContributionStatsResponse `json:"contributions"`
	Loans            LoanStatsResponse         `json:"loans"`
	NetBalance       decimal.Decimal           `json:"netBalance"`
}

// MemberSummaryResponse defines the member dashboard rollup.
type MemberSummaryResponse struct {
	TotalContributed    decimal.Decimal `json:"totalContributed"`
	ActiveLoanBalance   decimal.Decimal `json:"activeLoanBalance"`
	NextInstallment     decimal.Decimal `json:"nextInstallment"`
	UnreadNotifications int64           `json:"unreadNotifications"`
}

// ToFinanceReportResponse converts a domain.FinanceReport to a DTO.
func ToFinanceReportResponse(r *domain.FinanceReport) FinanceReportResponse {
	return FinanceReportResponse{
		TotalContributions: r.TotalContributions,
		TotalLoans:         r.TotalLoans,
		ActiveLoans:        r.ActiveLoans,
		NetBalance:         r.NetBalance,
	}
}

// ToDashboardSummaryResponse converts a domain.DashboardSummary to a DTO.
func ToDashboardSummaryResponse(s *domain.DashboardSummary) DashboardSummaryResponse {
	return DashboardSummaryResponse{
		TotalMembers:     s.TotalMembers,
		ActiveMembers:    s.ActiveMembers,
		PendingApprovals: s.PendingApprovals,
		Contributions:    ToContributionStatsResponse(&s.Contributions),
		Loans:            ToLoanStatsResponse(&s.Loans),
		NetBalance:       s.NetBalance,
	}
}

// ToMemberSummaryResponse converts a domain.MemberSummary to a DTO.
func ToMemberSummaryResponse(s *domain.MemberSummary) MemberSummaryResponse {
	return MemberSummaryResponse{
		TotalContributed:    s.TotalContributed,
		ActiveLoanBalance:   s.ActiveLoanBalance,
		NextInstallment:     s.NextInstallment,
		UnreadNotifications: s.UnreadNotifications,
	}
}
