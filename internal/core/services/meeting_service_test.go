package services_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"

	"github.com/smart-chama/chama_backend/internal/apperrors"
	"github.com/smart-chama/chama_backend/internal/core/domain"
	portssvc "github.com/smart-chama/chama_backend/internal/core/ports/services"
	"github.com/smart-chama/chama_backend/internal/core/services"
	"github.com/smart-chama/chama_backend/internal/dto"
)

// --- Mock MeetingRepository (based on MeetingService usage) ---
type MockMeetingRepository struct {
	mock.Mock
}

func (m *MockMeetingRepository) FindMeetingByID(ctx context.Context, meetingID string) (*domain.Meeting, error) {
	args := m.Called(ctx, meetingID)
	var meeting *domain.Meeting
	if args.Get(0) != nil {
		meeting = args.Get(0).(*domain.Meeting)
	}
	return meeting, args.Error(1)
}

func (m *MockMeetingRepository) ListMeetings(ctx context.Context, limit int, nextToken *string, status *domain.MeetingStatus) ([]domain.Meeting, *string, error) {
	args := m.Called(ctx, limit, nextToken, status)
	var meetings []domain.Meeting
	if args.Get(0) != nil {
		meetings = args.Get(0).([]domain.Meeting)
	}
	var token *string
	if args.Get(1) != nil {
		token = args.Get(1).(*string)
	}
	return meetings, token, args.Error(2)
}

func (m *MockMeetingRepository) ListMeetingsBetween(ctx context.Context, from time.Time, to time.Time) ([]domain.Meeting, error) {
	args := m.Called(ctx, from, to)
	var meetings []domain.Meeting
	if args.Get(0) != nil {
		meetings = args.Get(0).([]domain.Meeting)
	}
	return meetings, args.Error(1)
}

func (m *MockMeetingRepository) SaveMeeting(ctx context.Context, meeting domain.Meeting) error {
	args := m.Called(ctx, meeting)
	return args.Error(0)
}

func (m *MockMeetingRepository) UpdateMeeting(ctx context.Context, meeting domain.Meeting) error {
	args := m.Called(ctx, meeting)
	return args.Error(0)
}

func (m *MockMeetingRepository) UpdateMeetingStatus(ctx context.Context, meetingID string, status domain.MeetingStatus, updatedBy string, updatedAt time.Time) error {
	args := m.Called(ctx, meetingID, status, updatedBy, updatedAt)
	return args.Error(0)
}

func (m *MockMeetingRepository) UpsertAttendee(ctx context.Context, attendee domain.MeetingAttendee) error {
	args := m.Called(ctx, attendee)
	return args.Error(0)
}

func (m *MockMeetingRepository) MarkMeetingDeleted(ctx context.Context, meetingID string, deletedAt time.Time, deletedBy string) error {
	args := m.Called(ctx, meetingID, deletedAt, deletedBy)
	return args.Error(0)
}

// --- Test Suite ---
type MeetingServiceTestSuite struct {
	suite.Suite
	mockMeetingRepo *MockMeetingRepository
	notifier        *recordingNotifier
	service         portssvc.MeetingSvcFacade

	adminID  string
	memberID string
}

func (suite *MeetingServiceTestSuite) SetupTest() {
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

	suite.mockMeetingRepo = new(MockMeetingRepository)
	suite.notifier = &recordingNotifier{}
	suite.service = services.NewMeetingService(suite.mockMeetingRepo, users, suite.notifier)
}

func (suite *MeetingServiceTestSuite) scheduledMeeting() *domain.Meeting {
	return &domain.Meeting{
		MeetingID:       uuid.NewString(),
		Title:           "Monthly general meeting",
		Location:        "Community hall",
		ScheduledAt:     time.Now().Add(72 * time.Hour).UTC(),
		DurationMinutes: 120,
		Status:          domain.MeetingScheduled,
		Attendees: []domain.MeetingAttendee{
			{UserID: suite.memberID, RSVP: domain.RSVPInvited},
			{UserID: suite.adminID, RSVP: domain.RSVPInvited},
		},
	}
}

// --- ScheduleMeeting Tests ---

func (suite *MeetingServiceTestSuite) TestScheduleMeeting_ExplicitAttendees() {
	ctx := context.Background()
	req := dto.CreateMeetingRequest{
		Title:       "Loan committee",
		Location:    "Office",
		ScheduledAt: time.Now().Add(48 * time.Hour),
		AttendeeIDs: []string{suite.memberID},
	}

	suite.mockMeetingRepo.On("SaveMeeting", ctx, mock.MatchedBy(func(m domain.Meeting) bool {
		return m.Status == domain.MeetingScheduled &&
			m.DurationMinutes == 120 && // default duration
			len(m.Attendees) == 1 &&
			m.Attendees[0].UserID == suite.memberID &&
			m.Attendees[0].RSVP == domain.RSVPInvited
	})).Return(nil).Once()

	meeting, err := suite.service.ScheduleMeeting(ctx, req, suite.adminID)

	suite.Require().NoError(err)
	suite.Require().NotNil(meeting)

	suite.Require().Len(suite.notifier.fanouts, 1)
	suite.Equal([]string{suite.memberID}, suite.notifier.fanouts[0])
	suite.Equal(domain.NotifyMeetingInvitation, suite.notifier.sent[0].Type)

	suite.mockMeetingRepo.AssertExpectations(suite.T())
}

func (suite *MeetingServiceTestSuite) TestScheduleMeeting_DefaultsToAllActiveMembers() {
	ctx := context.Background()
	req := dto.CreateMeetingRequest{
		Title:       "AGM",
		Location:    "Community hall",
		ScheduledAt: time.Now().Add(48 * time.Hour),
	}

	suite.mockMeetingRepo.On("SaveMeeting", ctx, mock.MatchedBy(func(m domain.Meeting) bool {
		return len(m.Attendees) == 2 // both active users invited
	})).Return(nil).Once()

	_, err := suite.service.ScheduleMeeting(ctx, req, suite.adminID)

	suite.Require().NoError(err)
	suite.mockMeetingRepo.AssertExpectations(suite.T())
}

func (suite *MeetingServiceTestSuite) TestScheduleMeeting_PastDate() {
	ctx := context.Background()
	req := dto.CreateMeetingRequest{
		Title:       "Yesterday's meeting",
		Location:    "Office",
		ScheduledAt: time.Now().Add(-time.Hour),
	}

	meeting, err := suite.service.ScheduleMeeting(ctx, req, suite.adminID)

	suite.Require().Error(err)
	suite.Nil(meeting)
	suite.ErrorIs(err, apperrors.ErrValidation)
	suite.mockMeetingRepo.AssertNotCalled(suite.T(), "SaveMeeting", mock.Anything, mock.Anything)
}

func (suite *MeetingServiceTestSuite) TestScheduleMeeting_AdminOnly() {
	ctx := context.Background()
	req := dto.CreateMeetingRequest{
		Title:       "Rogue meeting",
		Location:    "Office",
		ScheduledAt: time.Now().Add(time.Hour),
	}

	meeting, err := suite.service.ScheduleMeeting(ctx, req, suite.memberID)

	suite.Require().Error(err)
	suite.Nil(meeting)
	suite.ErrorIs(err, apperrors.ErrForbidden)
}

// --- CancelMeeting Tests ---

func (suite *MeetingServiceTestSuite) TestCancelMeeting_NotifiesAttendees() {
	ctx := context.Background()
	meeting := suite.scheduledMeeting()

	suite.mockMeetingRepo.On("FindMeetingByID", ctx, meeting.MeetingID).Return(meeting, nil).Once()
	suite.mockMeetingRepo.On("UpdateMeetingStatus", ctx, meeting.MeetingID, domain.MeetingCancelled, suite.adminID, mock.AnythingOfType("time.Time")).Return(nil).Once()

	cancelled, err := suite.service.CancelMeeting(ctx, meeting.MeetingID, suite.adminID)

	suite.Require().NoError(err)
	suite.Equal(domain.MeetingCancelled, cancelled.Status)

	suite.Require().Len(suite.notifier.fanouts, 1)
	suite.Len(suite.notifier.fanouts[0], 2)
	suite.Equal(domain.NotifyMeetingCancelled, suite.notifier.sent[0].Type)
	suite.Equal(domain.PriorityHigh, suite.notifier.sent[0].Priority)

	suite.mockMeetingRepo.AssertExpectations(suite.T())
}

func (suite *MeetingServiceTestSuite) TestCancelMeeting_AlreadyCancelled() {
	ctx := context.Background()
	meeting := suite.scheduledMeeting()
	meeting.Status = domain.MeetingCancelled

	suite.mockMeetingRepo.On("FindMeetingByID", ctx, meeting.MeetingID).Return(meeting, nil).Once()

	cancelled, err := suite.service.CancelMeeting(ctx, meeting.MeetingID, suite.adminID)

	suite.Require().Error(err)
	suite.Nil(cancelled)
	suite.ErrorIs(err, apperrors.ErrInvalidState)
}

// --- RespondToInvitation Tests ---

func (suite *MeetingServiceTestSuite) TestRespondToInvitation_Confirm() {
	ctx := context.Background()
	meeting := suite.scheduledMeeting()

	suite.mockMeetingRepo.On("FindMeetingByID", ctx, meeting.MeetingID).Return(meeting, nil).Once()
	suite.mockMeetingRepo.On("UpsertAttendee", ctx, mock.MatchedBy(func(a domain.MeetingAttendee) bool {
		return a.UserID == suite.memberID &&
			a.RSVP == domain.RSVPConfirmed &&
			a.RespondedAt != nil
	})).Return(nil).Once()

	err := suite.service.RespondToInvitation(ctx, meeting.MeetingID, suite.memberID, dto.RSVPRequest{Response: "CONFIRMED"})

	suite.Require().NoError(err)
	suite.mockMeetingRepo.AssertExpectations(suite.T())
}

func (suite *MeetingServiceTestSuite) TestRespondToInvitation_NotInvited() {
	ctx := context.Background()
	meeting := suite.scheduledMeeting()
	strangerID := uuid.NewString()

	suite.mockMeetingRepo.On("FindMeetingByID", ctx, meeting.MeetingID).Return(meeting, nil).Once()

	err := suite.service.RespondToInvitation(ctx, meeting.MeetingID, strangerID, dto.RSVPRequest{Response: "CONFIRMED"})

	suite.Require().Error(err)
	suite.ErrorIs(err, apperrors.ErrForbidden)
	suite.mockMeetingRepo.AssertNotCalled(suite.T(), "UpsertAttendee", mock.Anything, mock.Anything)
}

func (suite *MeetingServiceTestSuite) TestRespondToInvitation_CancelledMeeting() {
	ctx := context.Background()
	meeting := suite.scheduledMeeting()
	meeting.Status = domain.MeetingCancelled

	suite.mockMeetingRepo.On("FindMeetingByID", ctx, meeting.MeetingID).Return(meeting, nil).Once()

	err := suite.service.RespondToInvitation(ctx, meeting.MeetingID, suite.memberID, dto.RSVPRequest{Response: "DECLINED"})

	suite.Require().Error(err)
	suite.ErrorIs(err, apperrors.ErrInvalidState)
}

// --- UpdateMeeting Tests ---

func (suite *MeetingServiceTestSuite) TestUpdateMeeting_ReschedulePastRefused() {
	ctx := context.Background()
	meeting := suite.scheduledMeeting()
	past := time.Now().Add(-time.Hour)

	suite.mockMeetingRepo.On("FindMeetingByID", ctx, meeting.MeetingID).Return(meeting, nil).Once()

	updated, err := suite.service.UpdateMeeting(ctx, meeting.MeetingID, dto.UpdateMeetingRequest{ScheduledAt: &past}, suite.adminID)

	suite.Require().Error(err)
	suite.Nil(updated)
	suite.ErrorIs(err, apperrors.ErrValidation)
}

// --- ListMeetings Tests ---

func (suite *MeetingServiceTestSuite) TestListMeetings_InvalidStatus() {
	ctx := context.Background()
	bad := "POSTPONED"

	resp, err := suite.service.ListMeetings(ctx, suite.memberID, dto.ListMeetingsParams{Status: &bad})

	suite.Require().Error(err)
	suite.Nil(resp)
	suite.ErrorIs(err, apperrors.ErrValidation)
}

// --- MarkAttendance Tests ---

func (suite *MeetingServiceTestSuite) TestMarkAttendance_CompletesMeeting() {
	ctx := context.Background()
	meeting := suite.scheduledMeeting()
	meeting.ScheduledAt = time.Now().Add(-time.Hour).UTC()

	suite.mockMeetingRepo.On("FindMeetingByID", ctx, meeting.MeetingID).Return(meeting, nil).Once()
	suite.mockMeetingRepo.On("UpsertAttendee", ctx, mock.MatchedBy(func(a domain.MeetingAttendee) bool {
		return a.UserID == suite.memberID && a.RSVP == domain.RSVPAttended
	})).Return(nil).Once()
	suite.mockMeetingRepo.On("UpdateMeetingStatus", ctx, meeting.MeetingID, domain.MeetingCompleted, suite.adminID, mock.AnythingOfType("time.Time")).Return(nil).Once()

	updated, err := suite.service.MarkAttendance(ctx, meeting.MeetingID, dto.AttendanceRequest{
		AttendedUserIDs: []string{suite.memberID},
	}, suite.adminID)

	suite.Require().NoError(err)
	suite.Equal(domain.MeetingCompleted, updated.Status)
	suite.mockMeetingRepo.AssertExpectations(suite.T())
}

func (suite *MeetingServiceTestSuite) TestMarkAttendance_BeforeMeetingStarts() {
	ctx := context.Background()
	meeting := suite.scheduledMeeting()

	suite.mockMeetingRepo.On("FindMeetingByID", ctx, meeting.MeetingID).Return(meeting, nil).Once()

	updated, err := suite.service.MarkAttendance(ctx, meeting.MeetingID, dto.AttendanceRequest{
		AttendedUserIDs: []string{suite.memberID},
	}, suite.adminID)

	suite.Require().Error(err)
	suite.Nil(updated)
	suite.ErrorIs(err, apperrors.ErrValidation)
	suite.mockMeetingRepo.AssertNotCalled(suite.T(), "UpsertAttendee", mock.Anything, mock.Anything)
}

func (suite *MeetingServiceTestSuite) TestMarkAttendance_UninvitedUser() {
	ctx := context.Background()
	meeting := suite.scheduledMeeting()
	meeting.ScheduledAt = time.Now().Add(-time.Hour).UTC()

	suite.mockMeetingRepo.On("FindMeetingByID", ctx, meeting.MeetingID).Return(meeting, nil).Once()

	updated, err := suite.service.MarkAttendance(ctx, meeting.MeetingID, dto.AttendanceRequest{
		AttendedUserIDs: []string{uuid.NewString()},
	}, suite.adminID)

	suite.Require().Error(err)
	suite.Nil(updated)
	suite.ErrorIs(err, apperrors.ErrValidation)
}

func TestMeetingServiceTestSuite(t *testing.T) {
	suite.Run(t, new(MeetingServiceTestSuite))
}
