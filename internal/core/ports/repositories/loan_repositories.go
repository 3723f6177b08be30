package repositories

import (
	"context"
	"time"

	"github.com/smart-chama/chama_backend/internal/core/domain"
)

// LoanReader defines read operations for loan data
type LoanReader interface {
	// FindLoanByID retrieves a specific loan by its unique identifier.
	FindLoanByID(ctx context.Context, loanID string) (*domain.Loan, error)

	// ListLoans retrieves a paginated list of loans using token-based pagination,
	// optionally filtered by status. It returns the loans, a token for the next
	// page, and an error.
	ListLoans(ctx context.Context, limit int, nextToken *string, status *domain.LoanStatus) ([]domain.Loan, *string, error)

	// ListLoansByMember retrieves a paginated list of loans belonging to a member.
	ListLoansByMember(ctx context.Context, memberID string, limit int, nextToken *string) ([]domain.Loan, *string, error)

	// ListOpenLoans retrieves all loans currently in a repayable state.
	ListOpenLoans(ctx context.Context) ([]domain.Loan, error)

	// FindRepaymentsByLoanID retrieves all repayments recorded against a loan,
	// oldest first.
	FindRepaymentsByLoanID(ctx context.Context, loanID string) ([]domain.Repayment, error)
}

// LoanWriter defines write operations for loan data
type LoanWriter interface {
	// SaveLoan persists a new loan together with its ledger entry within a
	// single transaction. The loan and the entry share the same identifier.
	SaveLoan(ctx context.Context, loan domain.Loan, entry domain.LedgerEntry) error

	// UpdateLoan updates a loan's editable fields and recomputed figures.
	UpdateLoan(ctx context.Context, loan domain.Loan) error

	// UpdateLoanStatus records a status transition along with the approval or
	// rejection metadata, keeping the paired ledger entry in step.
	UpdateLoanStatus(ctx context.Context, loan domain.Loan) error

	// RecordRepayment atomically appends a repayment to a loan: it locks the
	// loan row, inserts the repayment, recomputes total paid and balance,
	// writes a matching repayment ledger entry, and marks the loan completed
	// when the balance reaches zero. It returns the updated loan.
	RecordRepayment(ctx context.Context, loanID string, repayment domain.Repayment) (*domain.Loan, error)
}

// LoanLifecycleManager defines operations for managing loan lifecycle
type LoanLifecycleManager interface {
	// MarkLoanDeleted marks a loan and its ledger entry as deleted (soft delete).
	MarkLoanDeleted(ctx context.Context, loanID string, deletedAt time.Time, deletedBy string) error
}

// LoanRepositoryFacade combines all loan-related repository interfaces
// This is a facade for clients that need access to all operations
type LoanRepositoryFacade interface {
	LoanReader
	LoanWriter
	LoanLifecycleManager
}
