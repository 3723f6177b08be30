package repositories

import (
	"context"
	"time"

	"github.com/smart-chama/chama_backend/internal/core/domain"
)

// MeetingReader defines read operations for meeting data
type MeetingReader interface {
	// FindMeetingByID retrieves a meeting with its attendees.
	FindMeetingByID(ctx context.Context, meetingID string) (*domain.Meeting, error)

	// ListMeetings retrieves a paginated list of meetings using token-based
	// pagination, optionally filtered by status.
	ListMeetings(ctx context.Context, limit int, nextToken *string, status *domain.MeetingStatus) ([]domain.Meeting, *string, error)

	// ListMeetingsBetween retrieves scheduled meetings within a time window,
	// soonest first.
	ListMeetingsBetween(ctx context.Context, from time.Time, to time.Time) ([]domain.Meeting, error)
}

// MeetingWriter defines write operations for meeting data
type MeetingWriter interface {
	// SaveMeeting persists a new meeting together with its attendee roster.
	SaveMeeting(ctx context.Context, meeting domain.Meeting) error

	// UpdateMeeting updates a meeting's editable fields.
	UpdateMeeting(ctx context.Context, meeting domain.Meeting) error

	// UpdateMeetingStatus records a meeting status transition.
	UpdateMeetingStatus(ctx context.Context, meetingID string, status domain.MeetingStatus, updatedBy string, updatedAt time.Time) error

	// UpsertAttendee inserts or updates a member's RSVP for a meeting.
	UpsertAttendee(ctx context.Context, attendee domain.MeetingAttendee) error

	// MarkMeetingDeleted marks a meeting as deleted (soft delete).
	MarkMeetingDeleted(ctx context.Context, meetingID string, deletedAt time.Time, deletedBy string) error
}

// MeetingRepositoryFacade combines all meeting-related repository interfaces
type MeetingRepositoryFacade interface {
	MeetingReader
	MeetingWriter
}
