package services

import (
	"context"

	"github.com/smart-chama/chama_backend/internal/core/domain"
	"github.com/smart-chama/chama_backend/internal/dto"
)

// LoanReaderSvc defines read operations for loan data
type LoanReaderSvc interface {
	// GetLoanByID retrieves a loan with its repayments. Members may only read
	// their own loans; admins may read any.
	GetLoanByID(ctx context.Context, loanID string, requestingUserID string) (*domain.Loan, error)

	// ListLoans retrieves a paginated list of all loans. Admin only.
	ListLoans(ctx context.Context, requestingUserID string, params dto.ListLoansParams) (*dto.ListLoansResponse, error)

	// ListMemberLoans retrieves a paginated list of a member's own loans.
	ListMemberLoans(ctx context.Context, memberID string, params dto.ListLoansParams) (*dto.ListLoansResponse, error)

	// GetLoanStats retrieves aggregate loan figures. Admin only.
	GetLoanStats(ctx context.Context, requestingUserID string) (*domain.LoanStats, error)
}

// LoanWriterSvc defines write operations for loan data
type LoanWriterSvc interface {
	// ApplyForLoan creates a pending loan application for the calling member,
	// computing the derived economics from the chama settings.
	ApplyForLoan(ctx context.Context, memberID string, req dto.ApplyLoanRequest) (*domain.Loan, error)

	// CreateLoan records a loan on behalf of a member. Admin only.
	CreateLoan(ctx context.Context, req dto.CreateLoanRequest, creatorUserID string) (*domain.Loan, error)

	// UpdateLoan amends a pending loan application and recomputes its figures.
	UpdateLoan(ctx context.Context, loanID string, req dto.UpdateLoanRequest, requestingUserID string) (*domain.Loan, error)

	// DeleteLoan soft-deletes a pending loan application.
	DeleteLoan(ctx context.Context, loanID string, requestingUserID string) error
}

// LoanApprovalSvc defines the admin-gated loan state transitions
type LoanApprovalSvc interface {
	// ApproveLoan transitions a pending loan to approved. Admin only.
	ApproveLoan(ctx context.Context, loanID string, approverID string) (*domain.Loan, error)

	// RejectLoan transitions a pending loan to rejected with a reason. Admin only.
	RejectLoan(ctx context.Context, loanID string, approverID string, reason string) (*domain.Loan, error)
}

// LoanRepaymentSvc defines repayment recording against approved loans
type LoanRepaymentSvc interface {
	// RecordRepayment appends a repayment to an approved loan, updates the
	// balance atomically, and completes the loan when the balance reaches
	// zero. The owner or an admin may record repayments.
	RecordRepayment(ctx context.Context, loanID string, req dto.RecordRepaymentRequest, requestingUserID string) (*domain.Loan, error)
}

// LoanSvcFacade combines all loan-related service interfaces
// This is a facade for clients that need access to all operations
type LoanSvcFacade interface {
	LoanReaderSvc
	LoanWriterSvc
	LoanApprovalSvc
	LoanRepaymentSvc
}
