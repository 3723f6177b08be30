package repositories

import (
	"context"
	"time"

	"github.com/smart-chama/chama_backend/internal/core/domain"
)

// NotificationReader defines read operations for notification data
type NotificationReader interface {
	// FindNotificationByID retrieves a notification by its unique identifier.
	FindNotificationByID(ctx context.Context, notificationID string) (*domain.Notification, error)

	// ListNotificationsByUser retrieves a paginated list of a user's
	// notifications using token-based pagination, newest first. When
	// unreadOnly is set, read notifications are skipped.
	ListNotificationsByUser(ctx context.Context, userID string, limit int, nextToken *string, unreadOnly bool) ([]domain.Notification, *string, error)

	// CountUnreadByUser counts a user's unread notifications.
	CountUnreadByUser(ctx context.Context, userID string) (int64, error)
}

// NotificationWriter defines write operations for notification data
type NotificationWriter interface {
	// SaveNotification persists a new notification.
	SaveNotification(ctx context.Context, notification domain.Notification) error

	// SaveNotifications persists a batch of notifications in one statement.
	SaveNotifications(ctx context.Context, notifications []domain.Notification) error

	// MarkRead marks a single notification as read for its recipient.
	MarkRead(ctx context.Context, notificationID string, userID string, readAt time.Time) error

	// MarkAllRead marks all of a user's notifications as read.
	MarkAllRead(ctx context.Context, userID string, readAt time.Time) error
}

// NotificationRepositoryFacade combines all notification-related repository interfaces
type NotificationRepositoryFacade interface {
	NotificationReader
	NotificationWriter
}
