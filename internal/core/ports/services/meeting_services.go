package services

import (
	"context"

	"github.com/smart-chama/chama_backend/internal/core/domain"
	"github.com/smart-chama/chama_backend/internal/dto"
)

// MeetingReaderSvc defines read operations for meeting data
type MeetingReaderSvc interface {
	// GetMeetingByID retrieves a meeting with its attendee roster.
	GetMeetingByID(ctx context.Context, meetingID string, requestingUserID string) (*domain.Meeting, error)

	// ListMeetings retrieves a paginated list of meetings.
	ListMeetings(ctx context.Context, requestingUserID string, params dto.ListMeetingsParams) (*dto.ListMeetingsResponse, error)
}

// MeetingWriterSvc defines write operations for meeting data
type MeetingWriterSvc interface {
	// ScheduleMeeting creates a meeting and invites the attendees. Admin only.
	ScheduleMeeting(ctx context.Context, req dto.CreateMeetingRequest, creatorUserID string) (*domain.Meeting, error)

	// UpdateMeeting amends a scheduled meeting. Admin only.
	UpdateMeeting(ctx context.Context, meetingID string, req dto.UpdateMeetingRequest, requestingUserID string) (*domain.Meeting, error)

	// CancelMeeting cancels a scheduled meeting and notifies attendees. Admin only.
	CancelMeeting(ctx context.Context, meetingID string, requestingUserID string) (*domain.Meeting, error)

	// RespondToInvitation records the caller's RSVP for a meeting.
	RespondToInvitation(ctx context.Context, meetingID string, userID string, req dto.RSVPRequest) error

	// MarkAttendance records who attended and completes the meeting. Admin only.
	MarkAttendance(ctx context.Context, meetingID string, req dto.AttendanceRequest, requestingUserID string) (*domain.Meeting, error)

	// DeleteMeeting soft-deletes a meeting. Admin only.
	DeleteMeeting(ctx context.Context, meetingID string, requestingUserID string) error
}

// MeetingSvcFacade combines all meeting-related service interfaces
type MeetingSvcFacade interface {
	MeetingReaderSvc
	MeetingWriterSvc
}
