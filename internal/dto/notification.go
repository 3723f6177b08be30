package dto

import (
	"time"

	"github.com/smart-chama/chama_backend/internal/core/domain"
)

// ListNotificationsParams defines query parameters for listing notifications.
type ListNotificationsParams struct {
	Limit      int     `form:"limit,default=20"`
	NextToken  *string `form:"nextToken"`
	UnreadOnly bool    `form:"unreadOnly,default=false"`
}

// AnnouncementRequest defines an admin broadcast to every active member.
type AnnouncementRequest struct {
	Title    string `json:"title" binding:"required"`
	Message  string `json:"message" binding:"required"`
	Priority string `json:"priority" binding:"omitempty,oneof=low medium high"`
}

// NotificationResponse defines the data returned for a notification.
type NotificationResponse struct {
	NotificationID string     `json:"notificationID"`
	Type           string     `json:"type"`
	Title          string     `json:"title"`
	Message        string     `json:"message"`
	Priority       string     `json:"priority"`
	Read           bool       `json:"read"`
	ReadAt         *time.Time `json:"readAt,omitempty"`
	CreatedAt      time.Time  `json:"createdAt"`
}

// ListNotificationsResponse wraps a page of notifications.
type ListNotificationsResponse struct {
	Notifications []NotificationResponse `json:"notifications"`
	NextToken     *string                `json:"nextToken,omitempty"`
}

// UnreadCountResponse reports the caller's unread notification count.
type UnreadCountResponse struct {
	Unread int64 `json:"unread"`
}

// ToNotificationResponse converts a domain.Notification to NotificationResponse DTO.
func ToNotificationResponse(n *domain.Notification) NotificationResponse {
	return NotificationResponse{
		NotificationID: n.NotificationID,
		Type:           string(n.Type),
		Title:          n.Title,
		Message:        n.Message,
		Priority:       string(n.Priority),
		Read:           n.Read,
		ReadAt:         n.ReadAt,
		CreatedAt:      n.CreatedAt,
	}
}

// ToListNotificationsResponse converts a page of notifications to a DTO.
func ToListNotificationsResponse(notifications []domain.Notification, nextToken *string) ListNotificationsResponse {
	responses := make([]NotificationResponse, len(notifications))
	for i, n := range notifications {
		responses[i] = ToNotificationResponse(&n)
	}
	return ListNotificationsResponse{Notifications: responses, NextToken: nextToken}
}
