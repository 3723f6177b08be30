package services_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/suite"

	"github.com/smart-chama/chama_backend/internal/apperrors"
	"github.com/smart-chama/chama_backend/internal/core/domain"
	portssvc "github.com/smart-chama/chama_backend/internal/core/ports/services"
	"github.com/smart-chama/chama_backend/internal/core/services"
	"github.com/smart-chama/chama_backend/internal/dto"
)

// fakeNotificationRepo is an in-memory NotificationRepositoryFacade.
type fakeNotificationRepo struct {
	stored  []domain.Notification
	saveErr error
}

func (f *fakeNotificationRepo) FindNotificationByID(ctx context.Context, notificationID string) (*domain.Notification, error) {
	for i := range f.stored {
		if f.stored[i].NotificationID == notificationID {
			return &f.stored[i], nil
		}
	}
	return nil, apperrors.ErrNotFound
}

func (f *fakeNotificationRepo) ListNotificationsByUser(ctx context.Context, userID string, limit int, nextToken *string, unreadOnly bool) ([]domain.Notification, *string, error) {
	var out []domain.Notification
	for _, n := range f.stored {
		if n.RecipientID != userID {
			continue
		}
		if unreadOnly && n.Read {
			continue
		}
		out = append(out, n)
	}
	return out, nil, nil
}

func (f *fakeNotificationRepo) CountUnreadByUser(ctx context.Context, userID string) (int64, error) {
	var count int64
	for _, n := range f.stored {
		if n.RecipientID == userID && !n.Read {
			count++
		}
	}
	return count, nil
}

func (f *fakeNotificationRepo) SaveNotification(ctx context.Context, notification domain.Notification) error {
	if f.saveErr != nil {
		return f.saveErr
	}
	f.stored = append(f.stored, notification)
	return nil
}

func (f *fakeNotificationRepo) SaveNotifications(ctx context.Context, notifications []domain.Notification) error {
	if f.saveErr != nil {
		return f.saveErr
	}
	f.stored = append(f.stored, notifications...)
	return nil
}

func (f *fakeNotificationRepo) MarkRead(ctx context.Context, notificationID string, userID string, readAt time.Time) error {
	for i := range f.stored {
		if f.stored[i].NotificationID == notificationID && f.stored[i].RecipientID == userID {
			f.stored[i].Read = true
			f.stored[i].ReadAt = &readAt
			return nil
		}
	}
	return apperrors.ErrNotFound
}

func (f *fakeNotificationRepo) MarkAllRead(ctx context.Context, userID string, readAt time.Time) error {
	for i := range f.stored {
		if f.stored[i].RecipientID == userID {
			f.stored[i].Read = true
			f.stored[i].ReadAt = &readAt
		}
	}
	return nil
}

// recordingPublisher captures published events and can be made to fail.
type recordingPublisher struct {
	keys       []string
	publishErr error
}

func (r *recordingPublisher) Publish(ctx context.Context, key string, event any) error {
	if r.publishErr != nil {
		return r.publishErr
	}
	r.keys = append(r.keys, key)
	return nil
}

func (r *recordingPublisher) Close() error { return nil }

// --- Test Suite ---
type NotificationServiceTestSuite struct {
	suite.Suite
	repo      *fakeNotificationRepo
	publisher *recordingPublisher
	users     *stubUserReader
	adminID   string
	memberID  string
	service   portssvc.NotificationSvcFacade
}

func (suite *NotificationServiceTestSuite) SetupTest() {
	suite.repo = &fakeNotificationRepo{}
	suite.publisher = &recordingPublisher{}

	admin := activeUser(domain.RoleAdmin)
	member := activeUser(domain.RoleMember)
	suite.adminID = admin.UserID
	suite.memberID = member.UserID
	suite.users = &stubUserReader{users: map[string]*domain.User{
		admin.UserID:  admin,
		member.UserID: member,
	}}

	suite.service = services.NewNotificationService(suite.repo, suite.users, suite.publisher)
}

func (suite *NotificationServiceTestSuite) TestNotify_StoresAndPublishes() {
	ctx := context.Background()
	recipientID := uuid.NewString()

	suite.service.Notify(ctx, domain.Notification{
		RecipientID: recipientID,
		Type:        domain.NotifyLoanApproved,
		Title:       "Loan approved",
		Message:     "Your loan was approved",
	})

	suite.Require().Len(suite.repo.stored, 1)
	stored := suite.repo.stored[0]
	suite.NotEmpty(stored.NotificationID)
	// Omitted priority defaults to medium.
	suite.Equal(domain.PriorityMedium, stored.Priority)
	suite.False(stored.Read)

	// Events are keyed by recipient so per-user ordering holds downstream.
	suite.Equal([]string{recipientID}, suite.publisher.keys)
}

func (suite *NotificationServiceTestSuite) TestNotify_StoreFailureIsSwallowed() {
	ctx := context.Background()
	suite.repo.saveErr = errors.New("db down")

	// Must not panic or propagate; dispatch is best-effort.
	suite.service.Notify(ctx, domain.Notification{
		RecipientID: uuid.NewString(),
		Type:        domain.NotifyLoanApproved,
		Title:       "Loan approved",
	})

	suite.Empty(suite.repo.stored)
	suite.Empty(suite.publisher.keys) // nothing published for a failed store
}

func (suite *NotificationServiceTestSuite) TestNotify_PublishFailureIsSwallowed() {
	ctx := context.Background()
	suite.publisher.publishErr = errors.New("broker unreachable")

	suite.service.Notify(ctx, domain.Notification{
		RecipientID: uuid.NewString(),
		Type:        domain.NotifyContributionReceived,
		Title:       "Contribution received",
	})

	// The in-app notification survives a broker outage.
	suite.Len(suite.repo.stored, 1)
}

func (suite *NotificationServiceTestSuite) TestNotify_WorksWithoutPublisher() {
	ctx := context.Background()
	service := services.NewNotificationService(suite.repo, suite.users, nil)

	service.Notify(ctx, domain.Notification{
		RecipientID: uuid.NewString(),
		Type:        domain.NotifySystemAnnouncement,
		Title:       "Welcome",
	})

	suite.Len(suite.repo.stored, 1)
}

func (suite *NotificationServiceTestSuite) TestNotifyAll_FansOutPerRecipient() {
	ctx := context.Background()
	senderID := uuid.NewString()
	recipients := []string{uuid.NewString(), uuid.NewString(), uuid.NewString()}

	suite.service.NotifyAll(ctx, recipients, domain.Notification{
		SenderID: &senderID,
		Type:     domain.NotifyMeetingInvitation,
		Title:    "Meeting scheduled",
		Priority: domain.PriorityHigh,
	})

	suite.Require().Len(suite.repo.stored, 3)
	seen := map[string]bool{}
	for _, n := range suite.repo.stored {
		suite.NotEmpty(n.NotificationID)
		suite.False(seen[n.NotificationID]) // each copy gets its own ID
		seen[n.NotificationID] = true
		suite.Equal(domain.PriorityHigh, n.Priority)
	}
	suite.Len(suite.publisher.keys, 3)
}

func (suite *NotificationServiceTestSuite) TestNotifyAll_EmptyRecipientsIsNoop() {
	ctx := context.Background()

	suite.service.NotifyAll(ctx, nil, domain.Notification{
		Type:  domain.NotifySystemAnnouncement,
		Title: "Nobody home",
	})

	suite.Empty(suite.repo.stored)
	suite.Empty(suite.publisher.keys)
}

func (suite *NotificationServiceTestSuite) TestMarkRead_ScopedToRecipient() {
	ctx := context.Background()
	ownerID := uuid.NewString()
	intruderID := uuid.NewString()

	suite.service.Notify(ctx, domain.Notification{
		RecipientID: ownerID,
		Type:        domain.NotifyLoanApproved,
		Title:       "Loan approved",
	})
	notificationID := suite.repo.stored[0].NotificationID

	// Another user cannot mark someone else's notification.
	err := suite.service.MarkRead(ctx, notificationID, intruderID)
	suite.Require().Error(err)
	suite.ErrorIs(err, apperrors.ErrNotFound)

	err = suite.service.MarkRead(ctx, notificationID, ownerID)
	suite.Require().NoError(err)
	suite.True(suite.repo.stored[0].Read)
}

func (suite *NotificationServiceTestSuite) TestCountUnread() {
	ctx := context.Background()
	userID := uuid.NewString()

	suite.service.NotifyAll(ctx, []string{userID, userID}, domain.Notification{
		Type:  domain.NotifySystemAnnouncement,
		Title: "Announcement",
	})
	suite.Require().NoError(suite.service.MarkAllRead(ctx, userID))

	count, err := suite.service.CountUnread(ctx, userID)
	suite.Require().NoError(err)
	suite.EqualValues(0, count)
}

func (suite *NotificationServiceTestSuite) TestCreateAnnouncement_BroadcastsToActiveMembers() {
	ctx := context.Background()

	err := suite.service.CreateAnnouncement(ctx, suite.adminID, dto.AnnouncementRequest{
		Title:    "AGM date",
		Message:  "The annual general meeting is on the 15th",
		Priority: "high",
	})
	suite.Require().NoError(err)

	// Both active users (admin included) receive the broadcast.
	suite.Require().Len(suite.repo.stored, 2)
	for _, n := range suite.repo.stored {
		suite.Equal(domain.NotifySystemAnnouncement, n.Type)
		suite.Equal(domain.PriorityHigh, n.Priority)
		suite.Require().NotNil(n.SenderID)
		suite.Equal(suite.adminID, *n.SenderID)
	}
}

func (suite *NotificationServiceTestSuite) TestCreateAnnouncement_AdminOnly() {
	ctx := context.Background()

	err := suite.service.CreateAnnouncement(ctx, suite.memberID, dto.AnnouncementRequest{
		Title:   "AGM date",
		Message: "The annual general meeting is on the 15th",
	})
	suite.Require().Error(err)
	suite.ErrorIs(err, apperrors.ErrForbidden)
	suite.Empty(suite.repo.stored)
}

func TestNotificationServiceTestSuite(t *testing.T) {
	suite.Run(t, new(NotificationServiceTestSuite))
}
