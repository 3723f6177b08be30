package dto

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/smart-chama/chama_backend/internal/core/domain"
)

// ApplyLoanRequest defines the data a member submits to apply for a loan.
// The interest rate is optional; when omitted the chama default rate applies.
type ApplyLoanRequest struct {
	Amount         decimal.Decimal  `json:"amount" binding:"required,gt=0"`
	DurationMonths int              `json:"duration" binding:"required,min=1"`
	Purpose        string           `json:"purpose" binding:"required"`
	InterestRate   *decimal.Decimal `json:"interestRate"` // Optional, defaults from settings
}

// CreateLoanRequest defines the data an admin submits to record a loan for a member.
type CreateLoanRequest struct {
	MemberID       string           `json:"memberID" binding:"required"`
	Amount         decimal.Decimal  `json:"amount" binding:"required,gt=0"`
	DurationMonths int              `json:"duration" binding:"required,min=1"`
	Purpose        string           `json:"purpose" binding:"required"`
	InterestRate   *decimal.Decimal `json:"interestRate"`
}

// UpdateLoanRequest defines the fields editable while a loan is still pending.
// Using pointers to differentiate between omitted fields and zero-value fields.
type UpdateLoanRequest struct {
	Amount         *decimal.Decimal `json:"amount"`
	DurationMonths *int             `json:"duration"`
	Purpose        *string          `json:"purpose"`
	InterestRate   *decimal.Decimal `json:"interestRate"`
}

// RejectLoanRequest carries the mandatory rejection reason.
type RejectLoanRequest struct {
	Reason string `json:"reason" binding:"required"`
}

// RecordRepaymentRequest defines the data needed to record a loan repayment.
type RecordRepaymentRequest struct {
	Amount        decimal.Decimal `json:"amount" binding:"required,gt=0"`
	PaymentMethod string          `json:"paymentMethod" binding:"omitempty,oneof=CASH BANK_TRANSFER MOBILE_MONEY CHECK"`
	Reference     string          `json:"reference"`
	Notes         string          `json:"notes"`
}

// ListLoansParams defines query parameters for listing loans.
type ListLoansParams struct {
	Limit     int     `form:"limit,default=20"`
	NextToken *string `form:"nextToken"`
	Status    *string `form:"status"`
}

// RepaymentResponse defines the data returned for a single repayment.
type RepaymentResponse struct {
	RepaymentID   string          `json:"repaymentID"`
	LoanID        string          `json:"loanID"`
	Amount        decimal.Decimal `json:"amount"`
	PaymentMethod string          `json:"paymentMethod"`
	Reference     string          `json:"reference"`
	Status        string          `json:"status"`
	PaidAt        time.Time       `json:"paidAt"`
}

// LoanResponse defines the data returned for a loan.
type LoanResponse struct {
	LoanID             string              `json:"loanID"`
	MemberID           string              `json:"memberID"`
	Principal          decimal.Decimal     `json:"principal"`
	InterestRate       decimal.Decimal     `json:"interestRate"`
	DurationMonths     int                 `json:"durationMonths"`
	Purpose            string              `json:"purpose"`
	TotalPayable       decimal.Decimal     `json:"totalPayable"`
	MonthlyInstallment decimal.Decimal     `json:"monthlyInstallment"`
	TotalPaid          decimal.Decimal     `json:"totalPaid"`
	Balance            decimal.Decimal     `json:"balance"`
	Status             domain.LoanStatus   `json:"status"`
	ApprovedBy         *string             `json:"approvedBy,omitempty"`
	ApprovedAt         *time.Time          `json:"approvedAt,omitempty"`
	RejectionReason    *string             `json:"rejectionReason,omitempty"`
	Repayments         []RepaymentResponse `json:"repayments,omitempty"`
	CreatedAt          time.Time           `json:"createdAt"`
	CreatedBy          string              `json:"createdBy"`
}

// ListLoansResponse wraps a page of loans with the token for the next page.
type ListLoansResponse struct {
	Loans     []LoanResponse `json:"loans"`
	NextToken *string        `json:"nextToken,omitempty"`
}

// LoanStatsResponse defines the aggregate loan figures for dashboards.
type LoanStatsResponse struct {
	TotalLoans   int64           `json:"totalLoans"`
	ActiveLoans  int64           `json:"activeLoans"`
	PendingLoans int64           `json:"pendingLoans"`
	TotalAmount  decimal.Decimal `json:"totalAmount"`
}

// ToRepaymentResponse converts a domain.Repayment to RepaymentResponse DTO.
func ToRepaymentResponse(r *domain.Repayment) RepaymentResponse {
	return RepaymentResponse{
		RepaymentID:   r.RepaymentID,
		LoanID:        r.LoanID,
		Amount:        r.Amount,
		PaymentMethod: string(r.PaymentMethod),
		Reference:     r.Reference,
		Status:        string(r.Status),
		PaidAt:        r.PaidAt,
	}
}

// ToLoanResponse converts a domain.Loan to LoanResponse DTO.
func ToLoanResponse(l *domain.Loan) LoanResponse {
	resp := LoanResponse{
		LoanID:             l.LoanID,
		MemberID:           l.MemberID,
		Principal:          l.Principal,
		InterestRate:       l.InterestRate,
		DurationMonths:     l.DurationMonths,
		Purpose:            l.Purpose,
		TotalPayable:       l.TotalPayable,
		MonthlyInstallment: l.MonthlyInstallment,
		TotalPaid:          l.TotalPaid,
		Balance:            l.Balance,
		Status:             l.Status,
		ApprovedBy:         l.ApprovedBy,
		ApprovedAt:         l.ApprovedAt,
		RejectionReason:    l.RejectionReason,
		CreatedAt:          l.CreatedAt,
		CreatedBy:          l.CreatedBy,
	}
	if len(l.Repayments) > 0 {
		resp.Repayments = make([]RepaymentResponse, len(l.Repayments))
		for i, r := range l.Repayments {
			resp.Repayments[i] = ToRepaymentResponse(&r)
		}
	}
	return resp
}

// ToListLoansResponse converts a page of domain loans to ListLoansResponse DTO.
func ToListLoansResponse(loans []domain.Loan, nextToken *string) ListLoansResponse {
	responses := make([]LoanResponse, len(loans))
	for i, l := range loans {
		responses[i] = ToLoanResponse(&l)
	}
	return ListLoansResponse{Loans: responses, NextToken: nextToken}
}

// ToLoanStatsResponse converts domain.LoanStats to LoanStatsResponse DTO.
func ToLoanStatsResponse(s *domain.LoanStats) LoanStatsResponse {
	return LoanStatsResponse{
		TotalLoans:   s.TotalLoans,
		ActiveLoans:  s.ActiveLoans,
		PendingLoans: s.PendingLoans,
		TotalAmount:  s.TotalAmount,
	}
}
