package domain_test

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/smart-chama/chama_backend/internal/core/domain"
)

func TestTotalPayable(t *testing.T) {
	tests := []struct {
		name      string
		principal string
		rate      string
		want      string
	}{
		{name: "ten percent", principal: "10000", rate: "10", want: "11000"},
		{name: "zero rate", principal: "5000", rate: "0", want: "5000"},
		{name: "full rate", principal: "100", rate: "100", want: "200"},
		{name: "fractional result rounds half up", principal: "1000.01", rate: "12.5", want: "1125.01"},
		{name: "sub-cent interest rounds", principal: "100.33", rate: "3.33", want: "103.67"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			principal := decimal.RequireFromString(tt.principal)
			rate := decimal.RequireFromString(tt.rate)
			got := domain.TotalPayable(principal, rate)
			assert.True(t, got.Equal(decimal.RequireFromString(tt.want)), "got %s", got)
		})
	}
}

func TestMonthlyInstallment(t *testing.T) {
	tests := []struct {
		name   string
		total  string
		months int
		want   string
	}{
		{name: "even split", total: "11000", months: 5, want: "2200"},
		{name: "single month", total: "500", months: 1, want: "500"},
		{name: "uneven split rounds to cents", total: "1000", months: 3, want: "333.33"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := domain.MonthlyInstallment(decimal.RequireFromString(tt.total), tt.months)
			assert.True(t, got.Equal(decimal.RequireFromString(tt.want)), "got %s", got)
		})
	}
}

func TestLoan_Validate(t *testing.T) {
	base := func() domain.Loan {
		return domain.Loan{
			Principal:      decimal.NewFromInt(10000),
			InterestRate:   decimal.NewFromInt(10),
			DurationMonths: 5,
			Purpose:        "school fees",
		}
	}

	tests := []struct {
		name    string
		mutate  func(*domain.Loan)
		wantErr string
	}{
		{name: "valid", mutate: func(l *domain.Loan) {}},
		{
			name:    "zero principal",
			mutate:  func(l *domain.Loan) { l.Principal = decimal.Zero },
			wantErr: "principal must be positive",
		},
		{
			name:    "negative principal",
			mutate:  func(l *domain.Loan) { l.Principal = decimal.NewFromInt(-5) },
			wantErr: "principal must be positive",
		},
		{
			name:    "rate above 100",
			mutate:  func(l *domain.Loan) { l.InterestRate = decimal.NewFromInt(101) },
			wantErr: "interest rate must be between 0 and 100",
		},
		{
			name:    "negative rate",
			mutate:  func(l *domain.Loan) { l.InterestRate = decimal.NewFromInt(-1) },
			wantErr: "interest rate must be between 0 and 100",
		},
		{
			name:    "zero duration",
			mutate:  func(l *domain.Loan) { l.DurationMonths = 0 },
			wantErr: "duration must be between 1 and 12",
		},
		{
			name:    "duration above cap",
			mutate:  func(l *domain.Loan) { l.DurationMonths = 13 },
			wantErr: "duration must be between 1 and 12",
		},
		{
			name:    "missing purpose",
			mutate:  func(l *domain.Loan) { l.Purpose = "" },
			wantErr: "purpose is required",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			loan := base()
			tt.mutate(&loan)
			err := loan.Validate(12)
			if tt.wantErr == "" {
				assert.NoError(t, err)
			} else {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantErr)
			}
		})
	}
}

// TestLoan_RepaymentLifecycle walks the canonical scenario: a 10000 loan at
// 10% over 5 months is settled by five installments of 2200.
func TestLoan_RepaymentLifecycle(t *testing.T) {
	loan := domain.Loan{
		Principal:      decimal.NewFromInt(10000),
		InterestRate:   decimal.NewFromInt(10),
		DurationMonths: 5,
		Purpose:        "stock for shop",
		Status:         domain.LoanPending,
	}
	loan.ComputeDerived()

	assert.True(t, loan.TotalPayable.Equal(decimal.NewFromInt(11000)))
	assert.True(t, loan.MonthlyInstallment.Equal(decimal.NewFromInt(2200)))
	assert.True(t, loan.Balance.Equal(decimal.NewFromInt(11000)))
	assert.True(t, loan.TotalPaid.IsZero())

	loan.Status = domain.LoanApproved
	installment := decimal.NewFromInt(2200)

	for i := 1; i <= 4; i++ {
		loan.TotalPaid = loan.TotalPaid.Add(installment)
		paidOff := loan.RecalculateBalance()
		assert.False(t, paidOff, "loan must not complete after %d of 5 installments", i)
		expected := loan.TotalPayable.Sub(installment.Mul(decimal.NewFromInt(int64(i))))
		assert.True(t, loan.Balance.Equal(expected), "after %d installments balance is %s", i, loan.Balance)
	}

	loan.TotalPaid = loan.TotalPaid.Add(installment)
	paidOff := loan.RecalculateBalance()
	assert.True(t, paidOff)
	assert.True(t, loan.Balance.IsZero())
}

func TestLoan_RecalculateBalance_ClampsAtZero(t *testing.T) {
	loan := domain.Loan{
		TotalPayable: decimal.NewFromInt(1000),
		TotalPaid:    decimal.NewFromInt(1500),
	}
	paidOff := loan.RecalculateBalance()
	assert.True(t, paidOff)
	assert.True(t, loan.Balance.IsZero(), "balance must clamp at zero, got %s", loan.Balance)
}

func TestLoan_InstallmentsDue(t *testing.T) {
	approvedAt := time.Date(2025, time.January, 15, 0, 0, 0, 0, time.UTC)
	loan := domain.Loan{
		Status:         domain.LoanApproved,
		ApprovedAt:     &approvedAt,
		DurationMonths: 5,
	}

	tests := []struct {
		name string
		now  time.Time
		want int
	}{
		{name: "before first month", now: approvedAt.AddDate(0, 0, 20), want: 0},
		{name: "after one month", now: approvedAt.AddDate(0, 1, 1), want: 1},
		{name: "after three months", now: approvedAt.AddDate(0, 3, 0), want: 3},
		{name: "capped at duration", now: approvedAt.AddDate(2, 0, 0), want: 5},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, loan.InstallmentsDue(tt.now))
		})
	}
}

func TestLoan_IsOverdue(t *testing.T) {
	approvedAt := time.Date(2025, time.March, 1, 0, 0, 0, 0, time.UTC)
	loan := domain.Loan{
		Status:             domain.LoanApproved,
		ApprovedAt:         &approvedAt,
		DurationMonths:     5,
		MonthlyInstallment: decimal.NewFromInt(2200),
		TotalPaid:          decimal.NewFromInt(2200),
	}

	// One installment paid, one due: on schedule.
	assert.False(t, loan.IsOverdue(approvedAt.AddDate(0, 1, 5)))
	// Two due, one paid: overdue.
	assert.True(t, loan.IsOverdue(approvedAt.AddDate(0, 2, 5)))
	// Pending loans are never overdue.
	loan.Status = domain.LoanPending
	assert.False(t, loan.IsOverdue(approvedAt.AddDate(0, 6, 0)))
}
