package models

import (
	"database/sql"
	"time"
)

// Meeting is the database row for a scheduled chama meeting.
type Meeting struct {
	MeetingID       string    `db:"meeting_id"`
	Title           string    `db:"title"`
	Agenda          string    `db:"agenda"`
	Location        string    `db:"location"`
	ScheduledAt     time.Time `db:"scheduled_at"`
	DurationMinutes int       `db:"duration_minutes"`
	Status          string    `db:"status"`
	AuditFields
}

// MeetingAttendee is the database row for a meeting invitation.
type MeetingAttendee struct {
	MeetingID   string         `db:"meeting_id"`
	UserID      string         `db:"user_id"`
	UserName    sql.NullString `db:"user_name"` // joined from users, not a column
	RSVP        string         `db:"rsvp"`
	RespondedAt sql.NullTime   `db:"responded_at"`
}
