package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/smart-chama/chama_backend/internal/core/domain"
	portsrepo "github.com/smart-chama/chama_backend/internal/core/ports/repositories"
	portssvc "github.com/smart-chama/chama_backend/internal/core/ports/services"
	"github.com/smart-chama/chama_backend/internal/dto"
)

// notificationService stores in-app notifications and publishes delivery
// events. Dispatch is best-effort by contract: Notify and NotifyAll log
// failures and return nothing, so a failed notification can never roll back
// the mutation that triggered it.
type notificationService struct {
	BaseService
	notificationRepo portsrepo.NotificationRepositoryFacade
	publisher        portssvc.EventPublisher
}

// NewNotificationService creates a new NotificationService. The publisher is
// optional; without one, notifications are in-app only.
func NewNotificationService(notificationRepo portsrepo.NotificationRepositoryFacade, userSvc portssvc.UserReaderSvc, publisher portssvc.EventPublisher) portssvc.NotificationSvcFacade {
	return &notificationService{
		BaseService:      BaseService{Users: userSvc},
		notificationRepo: notificationRepo,
		publisher:        publisher,
	}
}

// Ensure notificationService implements the portssvc.NotificationSvcFacade interface
var _ portssvc.NotificationSvcFacade = (*notificationService)(nil)

// notificationEvent is the broker payload for delivery workers.
type notificationEvent struct {
	NotificationID string    `json:"notificationID"`
	RecipientID    string    `json:"recipientID"`
	Type           string    `json:"type"`
	Title          string    `json:"title"`
	Message        string    `json:"message"`
	Priority       string    `json:"priority"`
	CreatedAt      time.Time `json:"createdAt"`
}

// Notify persists an in-app notification and publishes the delivery event.
// Implements portssvc.NotificationDispatcher
func (s *notificationService) Notify(ctx context.Context, notification domain.Notification) {
	now := time.Now().UTC()
	notification.NotificationID = uuid.NewString()
	if notification.Priority == "" {
		notification.Priority = domain.PriorityMedium
	}
	actor := notification.RecipientID
	if notification.SenderID != nil {
		actor = *notification.SenderID
	}
	notification.AuditFields = domain.NewAuditFields(actor, now)

	if err := s.notificationRepo.SaveNotification(ctx, notification); err != nil {
		s.LogError(ctx, err, "failed to store notification",
			slog.String("recipient_id", notification.RecipientID),
			slog.String("type", string(notification.Type)))
		return
	}
	s.publish(ctx, notification)
}

// NotifyAll fans a notification out to a set of recipients.
// Implements portssvc.NotificationDispatcher
func (s *notificationService) NotifyAll(ctx context.Context, recipientIDs []string, notification domain.Notification) {
	if len(recipientIDs) == 0 {
		return
	}
	now := time.Now().UTC()
	if notification.Priority == "" {
		notification.Priority = domain.PriorityMedium
	}

	batch := make([]domain.Notification, len(recipientIDs))
	for i, recipientID := range recipientIDs {
		n := notification
		n.NotificationID = uuid.NewString()
		n.RecipientID = recipientID
		actor := recipientID
		if n.SenderID != nil {
			actor = *n.SenderID
		}
		n.AuditFields = domain.NewAuditFields(actor, now)
		batch[i] = n
	}

	if err := s.notificationRepo.SaveNotifications(ctx, batch); err != nil {
		s.LogError(ctx, err, "failed to store notification batch",
			slog.Int("recipients", len(recipientIDs)),
			slog.String("type", string(notification.Type)))
		return
	}
	for _, n := range batch {
		s.publish(ctx, n)
	}
}

// publish emits the delivery event, best effort.
func (s *notificationService) publish(ctx context.Context, n domain.Notification) {
	if s.publisher == nil {
		return
	}
	event := notificationEvent{
		NotificationID: n.NotificationID,
		RecipientID:    n.RecipientID,
		Type:           string(n.Type),
		Title:          n.Title,
		Message:        n.Message,
		Priority:       string(n.Priority),
		CreatedAt:      n.CreatedAt,
	}
	if err := s.publisher.Publish(ctx, n.RecipientID, event); err != nil {
		s.LogError(ctx, err, "failed to publish notification event",
			slog.String("notification_id", n.NotificationID))
	}
}

// ListNotifications retrieves the caller's notifications, newest first.
// Implements portssvc.NotificationReaderSvc
func (s *notificationService) ListNotifications(ctx context.Context, userID string, params dto.ListNotificationsParams) (*dto.ListNotificationsResponse, error) {
	notifications, nextToken, err := s.notificationRepo.ListNotificationsByUser(ctx, userID, clampLimit(params.Limit), params.NextToken, params.UnreadOnly)
	if err != nil {
		return nil, fmt.Errorf("failed to list notifications for user %s: %w", userID, err)
	}
	resp := dto.ToListNotificationsResponse(notifications, nextToken)
	return &resp, nil
}

// CountUnread counts the caller's unread notifications.
// Implements portssvc.NotificationReaderSvc
func (s *notificationService) CountUnread(ctx context.Context, userID string) (int64, error) {
	count, err := s.notificationRepo.CountUnreadByUser(ctx, userID)
	if err != nil {
		return 0, fmt.Errorf("failed to count unread notifications for user %s: %w", userID, err)
	}
	return count, nil
}

// MarkRead marks one of the caller's notifications as read.
// Implements portssvc.NotificationWriterSvc
func (s *notificationService) MarkRead(ctx context.Context, notificationID string, userID string) error {
	if err := s.notificationRepo.MarkRead(ctx, notificationID, userID, time.Now().UTC()); err != nil {
		return fmt.Errorf("failed to mark notification %s read: %w", notificationID, err)
	}
	return nil
}

// CreateAnnouncement broadcasts a notification to every active member. Admin only.
// Implements portssvc.NotificationWriterSvc
func (s *notificationService) CreateAnnouncement(ctx context.Context, requestingUserID string, req dto.AnnouncementRequest) error {
	if _, err := s.RequireAdmin(ctx, requestingUserID); err != nil {
		return err
	}
	recipientIDs, err := s.Users.ListActiveMemberIDs(ctx)
	if err != nil {
		return fmt.Errorf("failed to list members for announcement: %w", err)
	}

	priority := domain.NotificationPriority(req.Priority)
	if priority == "" {
		priority = domain.PriorityMedium
	}
	s.NotifyAll(ctx, recipientIDs, domain.Notification{
		SenderID: &requestingUserID,
		Type:     domain.NotifySystemAnnouncement,
		Title:    req.Title,
		Message:  req.Message,
		Priority: priority,
	})

	s.LogInfo(ctx, "announcement sent",
		slog.String("sender_id", requestingUserID),
		slog.Int("recipients", len(recipientIDs)))
	return nil
}

// MarkAllRead marks all of the caller's notifications as read.
// Implements portssvc.NotificationWriterSvc
func (s *notificationService) MarkAllRead(ctx context.Context, userID string) error {
	if err := s.notificationRepo.MarkAllRead(ctx, userID, time.Now().UTC()); err != nil {
		return fmt.Errorf("failed to mark notifications read for user %s: %w", userID, err)
	}
	return nil
}
