package mapping

import (
	"database/sql"

	"github.com/smart-chama/chama_backend/internal/core/domain"
	"github.com/smart-chama/chama_backend/internal/models"
)

// ToModelMeeting converts a domain Meeting to a model Meeting
func ToModelMeeting(d domain.Meeting) models.Meeting {
	return models.Meeting{
		MeetingID:       d.MeetingID,
		Title:           d.Title,
		Agenda:          d.Agenda,
		Location:        d.Location,
		ScheduledAt:     d.ScheduledAt,
		DurationMinutes: d.DurationMinutes,
		Status:          string(d.Status),
		AuditFields:     ToModelAuditFields(d.AuditFields),
	}
}

// ToDomainMeeting converts a model Meeting to a domain Meeting
func ToDomainMeeting(m models.Meeting) domain.Meeting {
	return domain.Meeting{
		MeetingID:       m.MeetingID,
		Title:           m.Title,
		Agenda:          m.Agenda,
		Location:        m.Location,
		ScheduledAt:     m.ScheduledAt,
		DurationMinutes: m.DurationMinutes,
		Status:          domain.MeetingStatus(m.Status),
		AuditFields:     ToDomainAuditFields(m.AuditFields),
	}
}

// ToDomainMeetingSlice converts a slice of model Meetings to domain Meetings
func ToDomainMeetingSlice(ms []models.Meeting) []domain.Meeting {
	ds := make([]domain.Meeting, len(ms))
	for i, m := range ms {
		ds[i] = ToDomainMeeting(m)
	}
	return ds
}

// ToModelMeetingAttendee converts a domain MeetingAttendee to a model MeetingAttendee
func ToModelMeetingAttendee(d domain.MeetingAttendee) models.MeetingAttendee {
	m := models.MeetingAttendee{
		MeetingID: d.MeetingID,
		UserID:    d.UserID,
		RSVP:      string(d.RSVP),
	}
	if d.UserName != "" {
		m.UserName = sql.NullString{String: d.UserName, Valid: true}
	}
	if d.RespondedAt != nil {
		m.RespondedAt = sql.NullTime{Time: *d.RespondedAt, Valid: true}
	}
	return m
}

// ToDomainMeetingAttendee converts a model MeetingAttendee to a domain MeetingAttendee
func ToDomainMeetingAttendee(m models.MeetingAttendee) domain.MeetingAttendee {
	d := domain.MeetingAttendee{
		MeetingID: m.MeetingID,
		UserID:    m.UserID,
		RSVP:      domain.RSVPStatus(m.RSVP),
	}
	if m.UserName.Valid {
		d.UserName = m.UserName.String
	}
	if m.RespondedAt.Valid {
		t := m.RespondedAt.Time
		d.RespondedAt = &t
	}
	return d
}

// ToDomainMeetingAttendeeSlice converts model attendees to domain attendees
func ToDomainMeetingAttendeeSlice(ms []models.MeetingAttendee) []domain.MeetingAttendee {
	ds := make([]domain.MeetingAttendee, len(ms))
	for i, m := range ms {
		ds[i] = ToDomainMeetingAttendee(m)
	}
	return ds
}
