package dto

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/smart-chama/chama_backend/internal/core/domain"
)

// RecordContributionRequest defines the data a member submits to record a contribution.
type RecordContributionRequest struct {
	Amount        decimal.Decimal `json:"amount" binding:"required,gt=0"`
	Type          string          `json:"type" binding:"omitempty,oneof=REGULAR SPECIAL EMERGENCY LOAN_REPAYMENT"`
	PaymentMethod string          `json:"paymentMethod" binding:"omitempty,oneof=CASH BANK_TRANSFER MOBILE_MONEY CHECK"`
	Reference     string          `json:"reference"`
	Notes         string          `json:"notes"`
	EntryDate     *time.Time      `json:"entryDate"` // Optional, defaults to now
}

// AddContributionRequest defines the data an admin submits to record a
// contribution on behalf of a member.
type AddContributionRequest struct {
	MemberID string `json:"memberID" binding:"required"`
	RecordContributionRequest
}

// UpdateContributionRequest defines the fields editable while a contribution
// is still pending. Pointers differentiate omitted fields from zero values.
type UpdateContributionRequest struct {
	Amount        *decimal.Decimal `json:"amount"`
	Type          *string          `json:"type"`
	PaymentMethod *string          `json:"paymentMethod"`
	Reference     *string          `json:"reference"`
	Notes         *string          `json:"notes"`
	EntryDate     *time.Time       `json:"entryDate"`
}

// ListContributionsParams defines query parameters for listing contributions.
type ListContributionsParams struct {
	Limit     int     `form:"limit,default=20"`
	NextToken *string `form:"nextToken"`
	Status    *string `form:"status"`
	MemberID  *string `form:"memberID"`
}

// ContributionResponse defines the data returned for a contribution entry.
type ContributionResponse struct {
	ContributionID string          `json:"contributionID"`
	MemberID       string          `json:"memberID"`
	Amount         decimal.Decimal `json:"amount"`
	Type           string          `json:"type"`
	Status         string          `json:"status"`
	PaymentMethod  string          `json:"paymentMethod"`
	Reference      string          `json:"reference"`
	Notes          string          `json:"notes"`
	EntryDate      time.Time       `json:"entryDate"`
	CreatedAt      time.Time       `json:"createdAt"`
	CreatedBy      string          `json:"createdBy"`
}

// ListContributionsResponse wraps a page of contributions.
type ListContributionsResponse struct {
	Contributions []ContributionResponse `json:"contributions"`
	NextToken     *string                `json:"nextToken,omitempty"`
}

// MemberTotalResponse defines a member's settled contribution total.
type MemberTotalResponse struct {
	MemberID string          `json:"memberID"`
	Total    decimal.Decimal `json:"total"`
}

// MonthlyBucketResponse is one month's aggregate in a stats response.
type MonthlyBucketResponse struct {
	Month string          `json:"month"`
	Count int64           `json:"count"`
	Total decimal.Decimal `json:"total"`
}

// ContributionStatsResponse defines the aggregate contribution figures.
type ContributionStatsResponse struct {
	TotalContributions int64                   `json:"totalContributions"`
	TotalAmount        decimal.Decimal         `json:"totalAmount"`
	MonthlyStats       []MonthlyBucketResponse `json:"monthlyStats"`
}

// ToContributionResponse converts a contribution ledger entry to ContributionResponse DTO.
func ToContributionResponse(e *domain.LedgerEntry) ContributionResponse {
	return ContributionResponse{
		ContributionID: e.EntryID,
		MemberID:       e.MemberID,
		Amount:         e.Amount,
		Type:           string(e.ContributionType),
		Status:         string(e.Status),
		PaymentMethod:  string(e.PaymentMethod),
		Reference:      e.Reference,
		Notes:          e.Notes,
		EntryDate:      e.EntryDate,
		CreatedAt:      e.CreatedAt,
		CreatedBy:      e.CreatedBy,
	}
}

// ToListContributionsResponse converts a page of contribution entries to a DTO.
func ToListContributionsResponse(entries []domain.LedgerEntry, nextToken *string) ListContributionsResponse {
	responses := make([]ContributionResponse, len(entries))
	for i, e := range entries {
		responses[i] = ToContributionResponse(&e)
	}
	return ListContributionsResponse{Contributions: responses, NextToken: nextToken}
}

// ToContributionStatsResponse converts domain.ContributionStats to a DTO,
// always materializing an empty slice so callers never see null monthly stats.
func ToContributionStatsResponse(s *domain.ContributionStats) ContributionStatsResponse {
	monthly := make([]MonthlyBucketResponse, len(s.MonthlyStats))
	for i, b := range s.MonthlyStats {
		monthly[i] = MonthlyBucketResponse{Month: b.Bucket, Count: b.Count, Total: b.Total}
	}
	return ContributionStatsResponse{
		TotalContributions: s.TotalContributions,
		TotalAmount:        s.TotalAmount,
		MonthlyStats:       monthly,
	}
}
