package domain

import "time"

// NotificationType classifies a notification for the recipient's inbox.
type NotificationType string

const (
	NotifyLoanRequest          NotificationType = "loan_request"
	NotifyLoanApproved         NotificationType = "loan_approved"
	NotifyLoanRejected         NotificationType = "loan_rejected"
	NotifyLoanPaymentReceived  NotificationType = "loan_payment_received"
	NotifyLoanPaymentDue       NotificationType = "loan_payment_due"
	NotifyContributionReceived NotificationType = "contribution_received"
	NotifyMeetingInvitation    NotificationType = "meeting_invitation"
	NotifyMeetingCancelled     NotificationType = "meeting_cancelled"
	NotifyMeetingReminder      NotificationType = "meeting_reminder"
	NotifySystemAnnouncement   NotificationType = "system_announcement"
)

// NotificationPriority orders notifications in the inbox.
type NotificationPriority string

const (
	PriorityLow    NotificationPriority = "low"
	PriorityMedium NotificationPriority = "medium"
	PriorityHigh   NotificationPriority = "high"
)

// Notification is an in-app message for a member, created as a side effect of
// workflow transitions. Delivery is best-effort and never blocks the
// originating mutation.
type Notification struct {
	NotificationID string               `json:"notificationID"`
	RecipientID    string               `json:"recipientID"`
	SenderID       *string              `json:"senderID,omitempty"` // nil for system notifications
	Type           NotificationType     `json:"type"`
	Title          string               `json:"title"`
	Message        string               `json:"message"`
	Priority       NotificationPriority `json:"priority"`
	Read           bool                 `json:"read"`
	ReadAt         *time.Time           `json:"readAt,omitempty"`
	AuditFields
}
