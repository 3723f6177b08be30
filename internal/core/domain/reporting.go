package domain

import (
	"github.com/shopspring/decimal"
)

// MonthlyBucket is one time bucket in a grouped aggregation.
type MonthlyBucket struct {
	Bucket string          `json:"bucket"` // e.g. "2025-06" or "2025-06-14"
	Count  int64           `json:"count"`
	Total  decimal.Decimal `json:"total"`
}

// ContributionStats is the contribution dashboard rollup.
// All fields are zero-valued (never nil) when no data matches.
type ContributionStats struct {
	TotalContributions int64           `json:"totalContributions"`
	TotalAmount        decimal.Decimal `json:"totalAmount"`
	MonthlyStats       []MonthlyBucket `json:"monthlyStats"`
}

// LoanStats is the loan dashboard rollup.
type LoanStats struct {
	TotalLoans   int64           `json:"totalLoans"`
	ActiveLoans  int64           `json:"activeLoans"`
	PendingLoans int64           `json:"pendingLoans"`
	TotalAmount  decimal.Decimal `json:"totalAmount"` // Principal of approved loans
}

// FinanceReport is the period finance report for admins.
type FinanceReport struct {
	TotalContributions decimal.Decimal `json:"totalContributions"`
	TotalLoans         decimal.Decimal `json:"totalLoans"`
	ActiveLoans        decimal.Decimal `json:"activeLoans"` // Outstanding balance on approved loans
	NetBalance         decimal.Decimal `json:"netBalance"`  // Contributions minus expenses, completed only
}

// DashboardSummary is the admin landing-page rollup.
type DashboardSummary struct {
	TotalMembers     int64             `json:"totalMembers"`
	ActiveMembers    int64             `json:"activeMembers"`
	PendingApprovals int64             `json:"pendingApprovals"`
	Contributions    ContributionStats `json:"contributions"`
	Loans            LoanStats         `json:"loans"`
	NetBalance       decimal.Decimal   `json:"netBalance"`
}

// MemberSummary is the member landing-page rollup.
type MemberSummary struct {
	TotalContributed    decimal.Decimal `json:"totalContributed"`
	ActiveLoanBalance   decimal.Decimal `json:"activeLoanBalance"`
	NextInstallment     decimal.Decimal `json:"nextInstallment"`
	UnreadNotifications int64           `json:"unreadNotifications"`
}
