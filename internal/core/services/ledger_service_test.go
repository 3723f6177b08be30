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

// --- Test Suite ---
type LedgerServiceTestSuite struct {
	suite.Suite
	mockLedgerRepo *MockLedgerRepository
	notifier       *recordingNotifier
	service        portssvc.LedgerSvcFacade

	adminID  string
	memberID string
}

func (suite *LedgerServiceTestSuite) SetupTest() {
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
	suite.notifier = &recordingNotifier{}
	suite.service = services.NewLedgerService(suite.mockLedgerRepo, users, suite.notifier)
}

func (suite *LedgerServiceTestSuite) pendingEntry(kind domain.EntryKind) *domain.LedgerEntry {
	return &domain.LedgerEntry{
		EntryID:       uuid.NewString(),
		MemberID:      suite.memberID,
		Kind:          kind,
		Amount:        decimal.NewFromInt(500),
		Status:        domain.StatusPending,
		PaymentMethod: domain.PaymentCash,
		EntryDate:     time.Now().UTC(),
	}
}

// --- CreateTransaction Tests ---

func (suite *LedgerServiceTestSuite) TestCreateTransaction_Success() {
	ctx := context.Background()
	req := dto.CreateTransactionRequest{
		MemberID: suite.memberID,
		Kind:     "EXPENSE",
		Amount:   decimal.NewFromInt(750),
		Notes:    "Venue hire",
	}

	suite.mockLedgerRepo.On("SaveEntry", ctx, mock.MatchedBy(func(e domain.LedgerEntry) bool {
		return e.Kind == domain.KindExpense &&
			e.Status == domain.StatusPending &&
			e.Amount.Equal(decimal.NewFromInt(750))
	})).Return(nil).Once()

	entry, err := suite.service.CreateTransaction(ctx, req, suite.adminID)

	suite.Require().NoError(err)
	suite.Require().NotNil(entry)
	suite.NotEmpty(entry.EntryID)
	suite.mockLedgerRepo.AssertExpectations(suite.T())
}

func (suite *LedgerServiceTestSuite) TestCreateTransaction_ContributionKindRejected() {
	ctx := context.Background()
	req := dto.CreateTransactionRequest{
		MemberID: suite.memberID,
		Kind:     "CONTRIBUTION",
		Amount:   decimal.NewFromInt(100),
	}

	entry, err := suite.service.CreateTransaction(ctx, req, suite.adminID)

	suite.Require().Error(err)
	suite.Nil(entry)
	suite.ErrorIs(err, apperrors.ErrValidation)
	suite.mockLedgerRepo.AssertNotCalled(suite.T(), "SaveEntry", mock.Anything, mock.Anything)
}

func (suite *LedgerServiceTestSuite) TestCreateTransaction_AdminOnly() {
	ctx := context.Background()
	req := dto.CreateTransactionRequest{
		MemberID: suite.memberID,
		Kind:     "FINE",
		Amount:   decimal.NewFromInt(50),
	}

	entry, err := suite.service.CreateTransaction(ctx, req, suite.memberID)

	suite.Require().Error(err)
	suite.Nil(entry)
	suite.ErrorIs(err, apperrors.ErrForbidden)
}

// --- Approval Workflow Tests ---

func (suite *LedgerServiceTestSuite) TestApproveEntry_PendingContribution() {
	ctx := context.Background()
	entry := suite.pendingEntry(domain.KindContribution)

	suite.mockLedgerRepo.On("FindEntryByID", ctx, entry.EntryID).Return(entry, nil).Once()
	suite.mockLedgerRepo.On("UpdateEntryStatus", ctx, entry.EntryID, domain.StatusApproved,
		mock.MatchedBy(func(id *string) bool { return id != nil && *id == suite.adminID }),
		(*string)(nil), suite.adminID, mock.AnythingOfType("time.Time")).Return(nil).Once()

	approved, err := suite.service.ApproveEntry(ctx, entry.EntryID, suite.adminID)

	suite.Require().NoError(err)
	suite.Equal(domain.StatusApproved, approved.Status)

	// Approval of a contribution notifies the member.
	suite.Require().Len(suite.notifier.sent, 1)
	suite.Equal(domain.NotifyContributionReceived, suite.notifier.sent[0].Type)
	suite.Equal(suite.memberID, suite.notifier.sent[0].RecipientID)

	suite.mockLedgerRepo.AssertExpectations(suite.T())
}

func (suite *LedgerServiceTestSuite) TestApproveEntry_LoanKindRefused() {
	ctx := context.Background()
	entry := suite.pendingEntry(domain.KindLoan)

	suite.mockLedgerRepo.On("FindEntryByID", ctx, entry.EntryID).Return(entry, nil).Once()

	approved, err := suite.service.ApproveEntry(ctx, entry.EntryID, suite.adminID)

	suite.Require().Error(err)
	suite.Nil(approved)
	suite.ErrorIs(err, apperrors.ErrValidation)
	suite.mockLedgerRepo.AssertNotCalled(suite.T(), "UpdateEntryStatus",
		mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func (suite *LedgerServiceTestSuite) TestApproveEntry_CompletedEntryInvalid() {
	ctx := context.Background()
	entry := suite.pendingEntry(domain.KindExpense)
	entry.Status = domain.StatusCompleted

	suite.mockLedgerRepo.On("FindEntryByID", ctx, entry.EntryID).Return(entry, nil).Once()

	approved, err := suite.service.ApproveEntry(ctx, entry.EntryID, suite.adminID)

	suite.Require().Error(err)
	suite.Nil(approved)
	suite.ErrorIs(err, apperrors.ErrInvalidState)
}

func (suite *LedgerServiceTestSuite) TestRejectEntry_RequiresReason() {
	ctx := context.Background()

	rejected, err := suite.service.RejectEntry(ctx, uuid.NewString(), suite.adminID, "")

	suite.Require().Error(err)
	suite.Nil(rejected)
	suite.ErrorIs(err, apperrors.ErrValidation)
}

func (suite *LedgerServiceTestSuite) TestRejectEntry_Success() {
	ctx := context.Background()
	entry := suite.pendingEntry(domain.KindExpense)
	reason := "Duplicate receipt"

	suite.mockLedgerRepo.On("FindEntryByID", ctx, entry.EntryID).Return(entry, nil).Once()
	suite.mockLedgerRepo.On("UpdateEntryStatus", ctx, entry.EntryID, domain.StatusRejected,
		(*string)(nil),
		mock.MatchedBy(func(r *string) bool { return r != nil && *r == reason }),
		suite.adminID, mock.AnythingOfType("time.Time")).Return(nil).Once()

	rejected, err := suite.service.RejectEntry(ctx, entry.EntryID, suite.adminID, reason)

	suite.Require().NoError(err)
	suite.Equal(domain.StatusRejected, rejected.Status)
	suite.Require().NotNil(rejected.RejectionReason)
	suite.Equal(reason, *rejected.RejectionReason)
	suite.mockLedgerRepo.AssertExpectations(suite.T())
}

func (suite *LedgerServiceTestSuite) TestCompleteEntry_FromApprovedOnly() {
	ctx := context.Background()
	entry := suite.pendingEntry(domain.KindExpense)

	suite.mockLedgerRepo.On("FindEntryByID", ctx, entry.EntryID).Return(entry, nil).Once()

	completed, err := suite.service.CompleteEntry(ctx, entry.EntryID, suite.adminID)

	// Pending entries must be approved before completion.
	suite.Require().Error(err)
	suite.Nil(completed)
	suite.ErrorIs(err, apperrors.ErrInvalidState)
}

func (suite *LedgerServiceTestSuite) TestCompleteEntry_Success() {
	ctx := context.Background()
	entry := suite.pendingEntry(domain.KindExpense)
	entry.Status = domain.StatusApproved

	suite.mockLedgerRepo.On("FindEntryByID", ctx, entry.EntryID).Return(entry, nil).Once()
	suite.mockLedgerRepo.On("UpdateEntryStatus", ctx, entry.EntryID, domain.StatusCompleted,
		mock.Anything, (*string)(nil), suite.adminID, mock.AnythingOfType("time.Time")).Return(nil).Once()

	completed, err := suite.service.CompleteEntry(ctx, entry.EntryID, suite.adminID)

	suite.Require().NoError(err)
	suite.Equal(domain.StatusCompleted, completed.Status)
	suite.mockLedgerRepo.AssertExpectations(suite.T())
}

// --- ListEntries Tests ---

func (suite *LedgerServiceTestSuite) TestListEntries_DateWindowInclusive() {
	ctx := context.Background()
	start := "2026-01-01"
	end := "2026-01-31"

	suite.mockLedgerRepo.On("ListEntries", ctx, 20, (*string)(nil), mock.MatchedBy(func(f portsrepo.LedgerEntryFilter) bool {
		if f.FromDate == nil || f.ToDate == nil {
			return false
		}
		// End date covers the whole closing day.
		return f.ToDate.Equal(time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC))
	})).Return([]domain.LedgerEntry{}, nil, nil).Once()

	_, err := suite.service.ListEntries(ctx, suite.adminID, dto.ListEntriesParams{StartDate: &start, EndDate: &end})

	suite.Require().NoError(err)
	suite.mockLedgerRepo.AssertExpectations(suite.T())
}

func (suite *LedgerServiceTestSuite) TestListEntries_BadDate() {
	ctx := context.Background()
	bad := "31-01-2026"

	resp, err := suite.service.ListEntries(ctx, suite.adminID, dto.ListEntriesParams{StartDate: &bad})

	suite.Require().Error(err)
	suite.Nil(resp)
	suite.ErrorIs(err, apperrors.ErrValidation)
}

// --- UpdateTransaction / DeleteTransaction Tests ---

func (suite *LedgerServiceTestSuite) TestUpdateTransaction_ContributionRefused() {
	ctx := context.Background()
	entry := suite.pendingEntry(domain.KindContribution)

	suite.mockLedgerRepo.On("FindEntryByID", ctx, entry.EntryID).Return(entry, nil).Once()

	newAmount := decimal.NewFromInt(900)
	updated, err := suite.service.UpdateTransaction(ctx, entry.EntryID, dto.UpdateTransactionRequest{Amount: &newAmount}, suite.adminID)

	suite.Require().Error(err)
	suite.Nil(updated)
	suite.ErrorIs(err, apperrors.ErrValidation)
}

func (suite *LedgerServiceTestSuite) TestDeleteTransaction_SettledRefused() {
	ctx := context.Background()
	entry := suite.pendingEntry(domain.KindExpense)
	entry.Status = domain.StatusCompleted

	suite.mockLedgerRepo.On("FindEntryByID", ctx, entry.EntryID).Return(entry, nil).Once()

	err := suite.service.DeleteTransaction(ctx, entry.EntryID, suite.adminID)

	suite.Require().Error(err)
	suite.ErrorIs(err, apperrors.ErrInvalidState)
	suite.mockLedgerRepo.AssertNotCalled(suite.T(), "MarkEntryDeleted", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestLedgerServiceTestSuite(t *testing.T) {
	suite.Run(t, new(LedgerServiceTestSuite))
}
