package services_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"

	"github.com/smart-chama/chama_backend/internal/apperrors"
	"github.com/smart-chama/chama_backend/internal/core/domain"
	portssvc "github.com/smart-chama/chama_backend/internal/core/ports/services"
	"github.com/smart-chama/chama_backend/internal/core/services"
)

// --- Mock ReportingRepository ---
type MockReportingRepository struct {
	mock.Mock
}

func (m *MockReportingRepository) GetContributionStats(ctx context.Context, from *time.Time, to *time.Time) (*domain.ContributionStats, error) {
	args := m.Called(ctx, from, to)
	var stats *domain.ContributionStats
	if args.Get(0) != nil {
		stats = args.Get(0).(*domain.ContributionStats)
	}
	return stats, args.Error(1)
}

func (m *MockReportingRepository) GetLoanStats(ctx context.Context) (*domain.LoanStats, error) {
	args := m.Called(ctx)
	var stats *domain.LoanStats
	if args.Get(0) != nil {
		stats = args.Get(0).(*domain.LoanStats)
	}
	return stats, args.Error(1)
}

func (m *MockReportingRepository) GetFinanceReport(ctx context.Context, from *time.Time, to *time.Time) (*domain.FinanceReport, error) {
	args := m.Called(ctx, from, to)
	var report *domain.FinanceReport
	if args.Get(0) != nil {
		report = args.Get(0).(*domain.FinanceReport)
	}
	return report, args.Error(1)
}

func (m *MockReportingRepository) GetMemberSummary(ctx context.Context, memberID string) (*domain.MemberSummary, error) {
	args := m.Called(ctx, memberID)
	var summary *domain.MemberSummary
	if args.Get(0) != nil {
		summary = args.Get(0).(*domain.MemberSummary)
	}
	return summary, args.Error(1)
}

func (m *MockReportingRepository) CountMembers(ctx context.Context) (int64, int64, error) {
	args := m.Called(ctx)
	return args.Get(0).(int64), args.Get(1).(int64), args.Error(2)
}

func (m *MockReportingRepository) CountPendingApprovals(ctx context.Context) (int64, error) {
	args := m.Called(ctx)
	return args.Get(0).(int64), args.Error(1)
}

// --- Test Suite ---
type ReportingServiceTestSuite struct {
	suite.Suite
	mockReportingRepo *MockReportingRepository
	notificationRepo  *fakeNotificationRepo
	service           portssvc.ReportingService

	adminID  string
	memberID string
}

func (suite *ReportingServiceTestSuite) SetupTest() {
	suite.adminID = uuid.NewString()
	suite.memberID = uuid.NewString()

	users := &stubUserReader{users: map[string]*domain.User{
		suite.adminID: {
			UserID: suite.adminID,
			Role:   domain.RoleAdmin,
			Status: domain.UserActive,
		},
		suite.memberID: {
			UserID: suite.memberID,
			Role:   domain.RoleMember,
			Status: domain.UserActive,
		},
	}}

	suite.mockReportingRepo = new(MockReportingRepository)
	suite.notificationRepo = &fakeNotificationRepo{}
	suite.service = services.NewReportingService(suite.mockReportingRepo, suite.notificationRepo, users)
}

// --- FinanceReport Tests ---

func (suite *ReportingServiceTestSuite) TestFinanceReport_AdminOnly() {
	ctx := context.Background()

	report, err := suite.service.FinanceReport(ctx, suite.memberID, nil, nil)

	suite.Require().Error(err)
	suite.Nil(report)
	suite.ErrorIs(err, apperrors.ErrForbidden)
	suite.mockReportingRepo.AssertNotCalled(suite.T(), "GetFinanceReport", mock.Anything, mock.Anything, mock.Anything)
}

func (suite *ReportingServiceTestSuite) TestFinanceReport_Success() {
	ctx := context.Background()
	expected := &domain.FinanceReport{
		TotalContributions: decimal.NewFromInt(120000),
		TotalLoans:         decimal.NewFromInt(50000),
		ActiveLoans:        decimal.NewFromInt(21000),
		NetBalance:         decimal.NewFromInt(95000),
	}

	suite.mockReportingRepo.On("GetFinanceReport", ctx, (*time.Time)(nil), (*time.Time)(nil)).Return(expected, nil).Once()

	report, err := suite.service.FinanceReport(ctx, suite.adminID, nil, nil)

	suite.Require().NoError(err)
	suite.Require().NotNil(report)
	suite.True(report.NetBalance.Equal(decimal.NewFromInt(95000)))
	suite.mockReportingRepo.AssertExpectations(suite.T())
}

func (suite *ReportingServiceTestSuite) TestFinanceReport_DateWindowReachesRepository() {
	ctx := context.Background()
	from := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	to := time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC)
	windowed := &domain.FinanceReport{
		TotalContributions: decimal.NewFromInt(40000),
		NetBalance:         decimal.NewFromInt(35000),
	}

	suite.mockReportingRepo.On("GetFinanceReport", ctx, &from, &to).Return(windowed, nil).Once()

	report, err := suite.service.FinanceReport(ctx, suite.adminID, &from, &to)

	suite.Require().NoError(err)
	suite.Require().NotNil(report)
	suite.True(report.TotalContributions.Equal(decimal.NewFromInt(40000)))
	suite.mockReportingRepo.AssertExpectations(suite.T())
}

// --- DashboardSummary Tests ---

func (suite *ReportingServiceTestSuite) TestDashboardSummary_AggregatesAllSources() {
	ctx := context.Background()

	suite.mockReportingRepo.On("CountMembers", ctx).Return(int64(25), int64(22), nil).Once()
	suite.mockReportingRepo.On("CountPendingApprovals", ctx).Return(int64(4), nil).Once()
	suite.mockReportingRepo.On("GetContributionStats", ctx, (*time.Time)(nil), (*time.Time)(nil)).Return(&domain.ContributionStats{
		TotalContributions: 310,
		TotalAmount:        decimal.NewFromInt(310000),
		MonthlyStats:       []domain.MonthlyBucket{},
	}, nil).Once()
	suite.mockReportingRepo.On("GetLoanStats", ctx).Return(&domain.LoanStats{
		TotalLoans:   12,
		ActiveLoans:  5,
		PendingLoans: 2,
		TotalAmount:  decimal.NewFromInt(80000),
	}, nil).Once()
	suite.mockReportingRepo.On("GetFinanceReport", ctx, (*time.Time)(nil), (*time.Time)(nil)).Return(&domain.FinanceReport{
		NetBalance: decimal.NewFromInt(250000),
	}, nil).Once()

	summary, err := suite.service.DashboardSummary(ctx, suite.adminID)

	suite.Require().NoError(err)
	suite.Require().NotNil(summary)
	suite.EqualValues(25, summary.TotalMembers)
	suite.EqualValues(22, summary.ActiveMembers)
	suite.EqualValues(4, summary.PendingApprovals)
	suite.EqualValues(310, summary.Contributions.TotalContributions)
	suite.EqualValues(5, summary.Loans.ActiveLoans)
	suite.True(summary.NetBalance.Equal(decimal.NewFromInt(250000)))
	suite.mockReportingRepo.AssertExpectations(suite.T())
}

func (suite *ReportingServiceTestSuite) TestDashboardSummary_AdminOnly() {
	ctx := context.Background()

	summary, err := suite.service.DashboardSummary(ctx, suite.memberID)

	suite.Require().Error(err)
	suite.Nil(summary)
	suite.ErrorIs(err, apperrors.ErrForbidden)
}

// --- MemberSummary Tests ---

func (suite *ReportingServiceTestSuite) TestMemberSummary_FillsUnreadCount() {
	ctx := context.Background()
	suite.notificationRepo.stored = []domain.Notification{
		{NotificationID: uuid.NewString(), RecipientID: suite.memberID},
		{NotificationID: uuid.NewString(), RecipientID: suite.memberID},
		{NotificationID: uuid.NewString(), RecipientID: uuid.NewString()}, // someone else's
	}

	suite.mockReportingRepo.On("GetMemberSummary", ctx, suite.memberID).Return(&domain.MemberSummary{
		TotalContributed:  decimal.NewFromInt(15000),
		ActiveLoanBalance: decimal.NewFromInt(4400),
		NextInstallment:   decimal.NewFromInt(1100),
	}, nil).Once()

	summary, err := suite.service.MemberSummary(ctx, suite.memberID)

	suite.Require().NoError(err)
	suite.Require().NotNil(summary)
	suite.True(summary.TotalContributed.Equal(decimal.NewFromInt(15000)))
	suite.EqualValues(2, summary.UnreadNotifications)
	suite.mockReportingRepo.AssertExpectations(suite.T())
}

func (suite *ReportingServiceTestSuite) TestMemberSummary_ZeroDefaultsForNewMember() {
	ctx := context.Background()

	suite.mockReportingRepo.On("GetMemberSummary", ctx, suite.memberID).Return(&domain.MemberSummary{
		TotalContributed:  decimal.Zero,
		ActiveLoanBalance: decimal.Zero,
		NextInstallment:   decimal.Zero,
	}, nil).Once()

	summary, err := suite.service.MemberSummary(ctx, suite.memberID)

	suite.Require().NoError(err)
	suite.True(summary.TotalContributed.IsZero())
	suite.True(summary.ActiveLoanBalance.IsZero())
	suite.EqualValues(0, summary.UnreadNotifications)
}

func TestReportingServiceTestSuite(t *testing.T) {
	suite.Run(t, new(ReportingServiceTestSuite))
}
