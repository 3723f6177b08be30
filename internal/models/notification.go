package models

import "database/sql"

// Notification is the database row for an in-app notification.
type Notification struct {
	NotificationID string         `db:"notification_id"`
	RecipientID    string         `db:"recipient_id"`
	SenderID       sql.NullString `db:"sender_id"`
	Type           string         `db:"type"`
	Title          string         `db:"title"`
	Message        string         `db:"message"`
	Priority       string         `db:"priority"`
	Read           bool           `db:"read"`
	ReadAt         sql.NullTime   `db:"read_at"`
	AuditFields
}
