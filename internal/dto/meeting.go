package dto

import (
	"time"

	"github.com/smart-chama/chama_backend/internal/core/domain"
)

// CreateMeetingRequest defines the data needed to schedule a meeting.
// When AttendeeIDs is empty every active member is invited.
type CreateMeetingRequest struct {
	Title           string    `json:"title" binding:"required"`
	Agenda          string    `json:"agenda"`
	Location        string    `json:"location" binding:"required"`
	ScheduledAt     time.Time `json:"scheduledAt" binding:"required"`
	DurationMinutes int       `json:"durationMinutes" binding:"omitempty,min=1"`
	AttendeeIDs     []string  `json:"attendeeIDs"`
}

// UpdateMeetingRequest defines the fields editable on a scheduled meeting.
type UpdateMeetingRequest struct {
	Title           *string    `json:"title"`
	Agenda          *string    `json:"agenda"`
	Location        *string    `json:"location"`
	ScheduledAt     *time.Time `json:"scheduledAt"`
	DurationMinutes *int       `json:"durationMinutes"`
}

// RSVPRequest carries a member's response to a meeting invitation.
type RSVPRequest struct {
	Response string `json:"response" binding:"required,oneof=CONFIRMED DECLINED"`
}

// AttendanceRequest lists the members who were present at a meeting.
type AttendanceRequest struct {
	AttendedUserIDs []string `json:"attendedUserIDs" binding:"required,min=1"`
}

// ListMeetingsParams defines query parameters for listing meetings.
type ListMeetingsParams struct {
	Limit     int     `form:"limit,default=20"`
	NextToken *string `form:"nextToken"`
	Status    *string `form:"status"`
}

// AttendeeResponse defines the data returned for a meeting attendee.
type AttendeeResponse struct {
	UserID      string     `json:"userID"`
	UserName    string     `json:"userName,omitempty"`
	RSVP        string     `json:"rsvp"`
	RespondedAt *time.Time `json:"respondedAt,omitempty"`
}

// MeetingResponse defines the data returned for a meeting.
type MeetingResponse struct {
	MeetingID       string             `json:"meetingID"`
	Title           string             `json:"title"`
	Agenda          string             `json:"agenda"`
	Location        string             `json:"location"`
	ScheduledAt     time.Time          `json:"scheduledAt"`
	DurationMinutes int                `json:"durationMinutes"`
	Status          string             `json:"status"`
	Attendees       []AttendeeResponse `json:"attendees,omitempty"`
	CreatedAt       time.Time          `json:"createdAt"`
	CreatedBy       string             `json:"createdBy"`
}

// ListMeetingsResponse wraps a page of meetings.
type ListMeetingsResponse struct {
	Meetings  []MeetingResponse `json:"meetings"`
	NextToken *string           `json:"nextToken,omitempty"`
}

// ToMeetingResponse converts a domain.Meeting to MeetingResponse DTO.
func ToMeetingResponse(m *domain.Meeting) MeetingResponse {
	resp := MeetingResponse{
		MeetingID:       m.MeetingID,
		Title:           m.Title,
		Agenda:          m.Agenda,
		Location:        m.Location,
		ScheduledAt:     m.ScheduledAt,
		DurationMinutes: m.DurationMinutes,
		Status:          string(m.Status),
		CreatedAt:       m.CreatedAt,
		CreatedBy:       m.CreatedBy,
	}
	if len(m.Attendees) > 0 {
		resp.Attendees = make([]AttendeeResponse, len(m.Attendees))
		for i, a := range m.Attendees {
			resp.Attendees[i] = AttendeeResponse{
				UserID:      a.UserID,
				UserName:    a.UserName,
				RSVP:        string(a.RSVP),
				RespondedAt: a.RespondedAt,
			}
		}
	}
	return resp
}

// ToListMeetingsResponse converts a page of domain meetings to ListMeetingsResponse DTO.
func ToListMeetingsResponse(meetings []domain.Meeting, nextToken *string) ListMeetingsResponse {
	responses := make([]MeetingResponse, len(meetings))
	for i, m := range meetings {
		responses[i] = ToMeetingResponse(&m)
	}
	return ListMeetingsResponse{Meetings: responses, NextToken: nextToken}
}
