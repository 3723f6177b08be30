package domain

import "time"

// MeetingStatus is the lifecycle status of a meeting.
type MeetingStatus string

const (
	MeetingScheduled MeetingStatus = "SCHEDULED"
	MeetingCancelled MeetingStatus = "CANCELLED"
	MeetingCompleted MeetingStatus = "COMPLETED"
)

// RSVPStatus tracks an attendee's response to a meeting invitation.
type RSVPStatus string

const (
	RSVPInvited   RSVPStatus = "INVITED"
	RSVPConfirmed RSVPStatus = "CONFIRMED"
	RSVPDeclined  RSVPStatus = "DECLINED"
	RSVPAttended  RSVPStatus = "ATTENDED"
)

// Meeting represents a scheduled chama meeting.
type Meeting struct {
	MeetingID       string            `json:"meetingID"`
	Title           string            `json:"title"`
	Agenda          string            `json:"agenda"`
	Location        string            `json:"location"`
	ScheduledAt     time.Time         `json:"scheduledAt"`
	DurationMinutes int               `json:"durationMinutes"`
	Status          MeetingStatus     `json:"status"`
	Attendees       []MeetingAttendee `json:"attendees,omitempty"`
	AuditFields
}

// MeetingAttendee is a member's invitation/attendance record for a meeting.
type MeetingAttendee struct {
	MeetingID   string     `json:"meetingID"`
	UserID      string     `json:"userID"`
	UserName    string     `json:"userName,omitempty"`
	RSVP        RSVPStatus `json:"rsvp"`
	RespondedAt *time.Time `json:"respondedAt,omitempty"`
}
