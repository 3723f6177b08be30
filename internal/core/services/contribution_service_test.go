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
	portsrepo "github.com/smart-chama/chama_backend/internal/core/ports/repositories"
	portssvc "github.com/smart-chama/chama_backend/internal/core/ports/services"
	"github.com/smart-chama/chama_backend/internal/core/services"
	"github.com/smart-chama/chama_backend/internal/dto"
)

// --- Mock LedgerRepository (based on ContributionService usage) ---
type MockLedgerRepository struct {
	mock.Mock
}

func (m *MockLedgerRepository) FindEntryByID(ctx context.Context, entryID string) (*domain.LedgerEntry, error) {
	args := m.Called(ctx, entryID)
	var entry *domain.LedgerEntry
	if args.Get(0) != nil {
		entry = args.Get(0).(*domain.LedgerEntry)
	}
	return entry, args.Error(1)
}

func (m *MockLedgerRepository) ListEntries(ctx context.Context, limit int, nextToken *string, filter portsrepo.LedgerEntryFilter) ([]domain.LedgerEntry, *string, error) {
	args := m.Called(ctx, limit, nextToken, filter)
	var entries []domain.LedgerEntry
	if args.Get(0) != nil {
		entries = args.Get(0).([]domain.LedgerEntry)
	}
	var token *string
	if args.Get(1) != nil {
		token = args.Get(1).(*string)
	}
	return entries, token, args.Error(2)
}

func (m *MockLedgerRepository) ListRecentEntries(ctx context.Context, limit int) ([]domain.LedgerEntry, error) {
	args := m.Called(ctx, limit)
	var entries []domain.LedgerEntry
	if args.Get(0) != nil {
		entries = args.Get(0).([]domain.LedgerEntry)
	}
	return entries, args.Error(1)
}

func (m *MockLedgerRepository) SaveEntry(ctx context.Context, entry domain.LedgerEntry) error {
	args := m.Called(ctx, entry)
	return args.Error(0)
}

func (m *MockLedgerRepository) UpdateEntry(ctx context.Context, entry domain.LedgerEntry) error {
	args := m.Called(ctx, entry)
	return args.Error(0)
}

func (m *MockLedgerRepository) UpdateEntryStatus(ctx context.Context, entryID string, status domain.EntryStatus, approverID *string, rejectionReason *string, updatedBy string, updatedAt time.Time) error {
	args := m.Called(ctx, entryID, status, approverID, rejectionReason, updatedBy, updatedAt)
	return args.Error(0)
}

func (m *MockLedgerRepository) MarkEntryDeleted(ctx context.Context, entryID string, deletedAt time.Time, deletedBy string) error {
	args := m.Called(ctx, entryID, deletedAt, deletedBy)
	return args.Error(0)
}

func (m *MockLedgerRepository) ListContributionsByMember(ctx context.Context, memberID string, limit int, nextToken *string) ([]domain.LedgerEntry, *string, error) {
	args := m.Called(ctx, memberID, limit, nextToken)
	var entries []domain.LedgerEntry
	if args.Get(0) != nil {
		entries = args.Get(0).([]domain.LedgerEntry)
	}
	var token *string
	if args.Get(1) != nil {
		token = args.Get(1).(*string)
	}
	return entries, token, args.Error(2)
}

func (m *MockLedgerRepository) SumContributionsByMember(ctx context.Context, memberID string) (decimal.Decimal, error) {
	args := m.Called(ctx, memberID)
	return args.Get(0).(decimal.Decimal), args.Error(1)
}

// --- Test Suite ---
type ContributionServiceTestSuite struct {
	suite.Suite
	mockLedgerRepo *MockLedgerRepository
	reporting      *stubReportingRepo
	notifier       *recordingNotifier
	service        portssvc.ContributionSvcFacade

	adminID  string
	memberID string
}

func (suite *ContributionServiceTestSuite) SetupTest() {
	suite.adminID = uuid.NewString()
	suite.memberID = uuid.NewString()

	users := &stubUserReader{users: map[string]*domain.User{
		suite.adminID: {
			UserID: suite.adminID,
			Name:   "Admin",
			Role:   domain.RoleAdmin,
			Status: domain.UserActive,
		},
		suite.memberID: {
			UserID: suite.memberID,
			Name:   "Member",
			Role:   domain.RoleMember,
			Status: domain.UserActive,
		},
	}}

	suite.mockLedgerRepo = new(MockLedgerRepository)
	suite.reporting = &stubReportingRepo{}
	suite.notifier = &recordingNotifier{}

	suite.service = services.NewContributionService(
		suite.mockLedgerRepo,
		suite.reporting,
		users,
		suite.notifier,
	)
}

func (suite *ContributionServiceTestSuite) pendingContribution() *domain.LedgerEntry {
	return &domain.LedgerEntry{
		EntryID:          uuid.NewString(),
		MemberID:         suite.memberID,
		Kind:             domain.KindContribution,
		ContributionType: domain.ContributionRegular,
		Amount:           decimal.NewFromInt(1000),
		Status:           domain.StatusPending,
		PaymentMethod:    domain.PaymentCash,
		EntryDate:        time.Now().UTC(),
	}
}

// --- RecordContribution Tests ---

func (suite *ContributionServiceTestSuite) TestRecordContribution_Success() {
	ctx := context.Background()
	req := dto.RecordContributionRequest{Amount: decimal.NewFromInt(1500)}

	suite.mockLedgerRepo.On("SaveEntry", ctx, mock.MatchedBy(func(e domain.LedgerEntry) bool {
		return e.MemberID == suite.memberID &&
			e.Kind == domain.KindContribution &&
			e.Status == domain.StatusPending && // member entries await approval
			e.ContributionType == domain.ContributionRegular &&
			e.PaymentMethod == domain.PaymentCash &&
			e.Amount.Equal(decimal.NewFromInt(1500))
	})).Return(nil).Once()

	entry, err := suite.service.RecordContribution(ctx, suite.memberID, req)

	suite.Require().NoError(err)
	suite.Require().NotNil(entry)
	suite.NotEmpty(entry.EntryID)
	suite.mockLedgerRepo.AssertExpectations(suite.T())
}

func (suite *ContributionServiceTestSuite) TestRecordContribution_NonPositiveAmount() {
	ctx := context.Background()

	entry, err := suite.service.RecordContribution(ctx, suite.memberID, dto.RecordContributionRequest{Amount: decimal.NewFromInt(-5)})

	suite.Require().Error(err)
	suite.Nil(entry)
	suite.ErrorIs(err, apperrors.ErrValidation)
	suite.mockLedgerRepo.AssertNotCalled(suite.T(), "SaveEntry", mock.Anything, mock.Anything)
}

func (suite *ContributionServiceTestSuite) TestRecordContribution_UnknownType() {
	ctx := context.Background()
	req := dto.RecordContributionRequest{Amount: decimal.NewFromInt(100), Type: "VOLUNTARY"}

	entry, err := suite.service.RecordContribution(ctx, suite.memberID, req)

	suite.Require().Error(err)
	suite.Nil(entry)
	suite.ErrorIs(err, apperrors.ErrValidation)
}

// --- AddContribution Tests ---

func (suite *ContributionServiceTestSuite) TestAddContribution_SettlesImmediately() {
	ctx := context.Background()
	req := dto.AddContributionRequest{
		MemberID: suite.memberID,
		RecordContributionRequest: dto.RecordContributionRequest{
			Amount:        decimal.NewFromInt(2000),
			PaymentMethod: "MOBILE_MONEY",
		},
	}

	suite.mockLedgerRepo.On("SaveEntry", ctx, mock.MatchedBy(func(e domain.LedgerEntry) bool {
		return e.MemberID == suite.memberID &&
			e.Status == domain.StatusCompleted &&
			e.ApprovedBy != nil && *e.ApprovedBy == suite.adminID &&
			e.PaymentMethod == domain.PaymentMobileMoney
	})).Return(nil).Once()

	entry, err := suite.service.AddContribution(ctx, req, suite.adminID)

	suite.Require().NoError(err)
	suite.Require().NotNil(entry)
	suite.Equal(domain.StatusCompleted, entry.Status)

	suite.Require().Len(suite.notifier.sent, 1)
	suite.Equal(domain.NotifyContributionReceived, suite.notifier.sent[0].Type)
	suite.Equal(suite.memberID, suite.notifier.sent[0].RecipientID)

	suite.mockLedgerRepo.AssertExpectations(suite.T())
}

func (suite *ContributionServiceTestSuite) TestAddContribution_RequiresAdmin() {
	ctx := context.Background()
	req := dto.AddContributionRequest{
		MemberID:                  suite.memberID,
		RecordContributionRequest: dto.RecordContributionRequest{Amount: decimal.NewFromInt(100)},
	}

	entry, err := suite.service.AddContribution(ctx, req, suite.memberID)

	suite.Require().Error(err)
	suite.Nil(entry)
	suite.ErrorIs(err, apperrors.ErrForbidden)
}

func (suite *ContributionServiceTestSuite) TestAddContribution_UnknownMember() {
	ctx := context.Background()
	req := dto.AddContributionRequest{
		MemberID:                  uuid.NewString(),
		RecordContributionRequest: dto.RecordContributionRequest{Amount: decimal.NewFromInt(100)},
	}

	entry, err := suite.service.AddContribution(ctx, req, suite.adminID)

	suite.Require().Error(err)
	suite.Nil(entry)
	suite.ErrorIs(err, apperrors.ErrValidation)
}

// --- GetContributionByID Tests ---

func (suite *ContributionServiceTestSuite) TestGetContributionByID_WrongKind() {
	ctx := context.Background()
	entry := suite.pendingContribution()
	entry.Kind = domain.KindExpense

	suite.mockLedgerRepo.On("FindEntryByID", ctx, entry.EntryID).Return(entry, nil).Once()

	result, err := suite.service.GetContributionByID(ctx, entry.EntryID, suite.adminID)

	suite.Require().Error(err)
	suite.Nil(result)
	suite.ErrorIs(err, apperrors.ErrNotFound)
}

func (suite *ContributionServiceTestSuite) TestGetContributionByID_OwnerAllowed() {
	ctx := context.Background()
	entry := suite.pendingContribution()

	suite.mockLedgerRepo.On("FindEntryByID", ctx, entry.EntryID).Return(entry, nil).Once()

	result, err := suite.service.GetContributionByID(ctx, entry.EntryID, suite.memberID)

	suite.Require().NoError(err)
	suite.Equal(entry.EntryID, result.EntryID)
}

// --- GetMemberTotal Tests ---

func (suite *ContributionServiceTestSuite) TestGetMemberTotal_OwnTotal() {
	ctx := context.Background()

	suite.mockLedgerRepo.On("SumContributionsByMember", ctx, suite.memberID).Return(decimal.NewFromInt(12500), nil).Once()

	total, err := suite.service.GetMemberTotal(ctx, suite.memberID, suite.memberID)

	suite.Require().NoError(err)
	suite.True(total.Equal(decimal.NewFromInt(12500)))
	suite.mockLedgerRepo.AssertExpectations(suite.T())
}

func (suite *ContributionServiceTestSuite) TestGetMemberTotal_EmptyHistoryIsZero() {
	ctx := context.Background()

	suite.mockLedgerRepo.On("SumContributionsByMember", ctx, suite.memberID).Return(decimal.Zero, nil).Once()

	total, err := suite.service.GetMemberTotal(ctx, suite.memberID, suite.memberID)

	suite.Require().NoError(err)
	suite.True(total.IsZero())
}

func (suite *ContributionServiceTestSuite) TestGetMemberTotal_OtherMemberForbidden() {
	ctx := context.Background()
	otherID := uuid.NewString()

	total, err := suite.service.GetMemberTotal(ctx, otherID, suite.memberID)

	suite.Require().Error(err)
	suite.True(total.IsZero())
	suite.ErrorIs(err, apperrors.ErrForbidden)
	suite.mockLedgerRepo.AssertNotCalled(suite.T(), "SumContributionsByMember", mock.Anything, mock.Anything)
}

// --- ListContributions Tests ---

func (suite *ContributionServiceTestSuite) TestListContributions_FiltersToContributionKind() {
	ctx := context.Background()
	entries := []domain.LedgerEntry{*suite.pendingContribution()}

	suite.mockLedgerRepo.On("ListEntries", ctx, 20, (*string)(nil), mock.MatchedBy(func(f portsrepo.LedgerEntryFilter) bool {
		return f.Kind != nil && *f.Kind == domain.KindContribution
	})).Return(entries, nil, nil).Once()

	resp, err := suite.service.ListContributions(ctx, suite.adminID, dto.ListContributionsParams{})

	suite.Require().NoError(err)
	suite.Len(resp.Contributions, 1)
	suite.mockLedgerRepo.AssertExpectations(suite.T())
}

func (suite *ContributionServiceTestSuite) TestListContributions_InvalidStatus() {
	ctx := context.Background()
	bad := "SETTLED"

	resp, err := suite.service.ListContributions(ctx, suite.adminID, dto.ListContributionsParams{Status: &bad})

	suite.Require().Error(err)
	suite.Nil(resp)
	suite.ErrorIs(err, apperrors.ErrValidation)
}

// --- UpdateContribution / DeleteContribution Tests ---

func (suite *ContributionServiceTestSuite) TestUpdateContribution_SettledImmutable() {
	ctx := context.Background()
	entry := suite.pendingContribution()
	entry.Status = domain.StatusCompleted

	suite.mockLedgerRepo.On("FindEntryByID", ctx, entry.EntryID).Return(entry, nil).Once()

	newAmount := decimal.NewFromInt(900)
	result, err := suite.service.UpdateContribution(ctx, entry.EntryID, dto.UpdateContributionRequest{Amount: &newAmount}, suite.memberID)

	suite.Require().Error(err)
	suite.Nil(result)
	suite.ErrorIs(err, apperrors.ErrInvalidState)
}

func (suite *ContributionServiceTestSuite) TestUpdateContribution_RoundsAmount() {
	ctx := context.Background()
	entry := suite.pendingContribution()

	suite.mockLedgerRepo.On("FindEntryByID", ctx, entry.EntryID).Return(entry, nil).Once()
	suite.mockLedgerRepo.On("UpdateEntry", ctx, mock.MatchedBy(func(e domain.LedgerEntry) bool {
		return e.Amount.Equal(decimal.NewFromFloat(1000.56))
	})).Return(nil).Once()

	newAmount := decimal.NewFromFloat(1000.555)
	result, err := suite.service.UpdateContribution(ctx, entry.EntryID, dto.UpdateContributionRequest{Amount: &newAmount}, suite.memberID)

	suite.Require().NoError(err)
	suite.True(result.Amount.Equal(decimal.NewFromFloat(1000.56)))
	suite.mockLedgerRepo.AssertExpectations(suite.T())
}

func (suite *ContributionServiceTestSuite) TestDeleteContribution_PendingOnly() {
	ctx := context.Background()
	entry := suite.pendingContribution()
	entry.Status = domain.StatusApproved

	suite.mockLedgerRepo.On("FindEntryByID", ctx, entry.EntryID).Return(entry, nil).Once()

	err := suite.service.DeleteContribution(ctx, entry.EntryID, suite.memberID)

	suite.Require().Error(err)
	suite.ErrorIs(err, apperrors.ErrInvalidState)
	suite.mockLedgerRepo.AssertNotCalled(suite.T(), "MarkEntryDeleted", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestContributionServiceTestSuite(t *testing.T) {
	suite.Run(t, new(ContributionServiceTestSuite))
}
