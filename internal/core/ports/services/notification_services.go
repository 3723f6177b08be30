package services

import (
	"context"

	"github.com/smart-chama/chama_backend/internal/core/domain"
	"github.com/smart-chama/chama_backend/internal/dto"
)

// NotificationReaderSvc defines read operations for a user's notifications
type NotificationReaderSvc interface {
	// ListNotifications retrieves the caller's notifications, newest first.
	ListNotifications(ctx context.Context, userID string, params dto.ListNotificationsParams) (*dto.ListNotificationsResponse, error)

	// CountUnread counts the caller's unread notifications.
	CountUnread(ctx context.Context, userID string) (int64, error)
}

// NotificationWriterSvc defines write operations for a user's notifications
type NotificationWriterSvc interface {
	// MarkRead marks one of the caller's notifications as read.
	MarkRead(ctx context.Context, notificationID string, userID string) error

	// MarkAllRead marks all of the caller's notifications as read.
	MarkAllRead(ctx context.Context, userID string) error

	// CreateAnnouncement broadcasts a notification to every active member.
	// Admin only.
	CreateAnnouncement(ctx context.Context, requestingUserID string, req dto.AnnouncementRequest) error
}

// NotificationDispatcher delivers workflow notifications. Dispatch is
// best-effort: implementations log failures and never return them to the
// mutation that triggered the notification.
type NotificationDispatcher interface {
	// Notify persists an in-app notification and publishes the matching
	// event for external delivery.
	Notify(ctx context.Context, notification domain.Notification)

	// NotifyAll fans a notification out to a set of recipients.
	NotifyAll(ctx context.Context, recipientIDs []string, notification domain.Notification)
}

// NotificationSvcFacade combines all notification-related service interfaces
type NotificationSvcFacade interface {
	NotificationReaderSvc
	NotificationWriterSvc
	NotificationDispatcher
}
