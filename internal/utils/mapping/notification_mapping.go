package mapping

import (
	"database/sql"

	"github.com/smart-chama/chama_backend/internal/core/domain"
	"github.com/smart-chama/chama_backend/internal/models"
)

// ToModelNotification converts a domain Notification to a model Notification
func ToModelNotification(d domain.Notification) models.Notification {
	m := models.Notification{
		NotificationID: d.NotificationID,
		RecipientID:    d.RecipientID,
		Type:           string(d.Type),
		Title:          d.Title,
		Message:        d.Message,
		Priority:       string(d.Priority),
		Read:           d.Read,
		AuditFields:    ToModelAuditFields(d.AuditFields),
	}
	if d.SenderID != nil {
		m.SenderID = sql.NullString{String: *d.SenderID, Valid: true}
	}
	if d.ReadAt != nil {
		m.ReadAt = sql.NullTime{Time: *d.ReadAt, Valid: true}
	}
	return m
}

// ToDomainNotification converts a model Notification to a domain Notification
func ToDomainNotification(m models.Notification) domain.Notification {
	d := domain.Notification{
		NotificationID: m.NotificationID,
		RecipientID:    m.RecipientID,
		Type:           domain.NotificationType(m.Type),
		Title:          m.Title,
		Message:        m.Message,
		Priority:       domain.NotificationPriority(m.Priority),
		Read:           m.Read,
		AuditFields:    ToDomainAuditFields(m.AuditFields),
	}
	if m.SenderID.Valid {
		v := m.SenderID.String
		d.SenderID = &v
	}
	if m.ReadAt.Valid {
		t := m.ReadAt.Time
		d.ReadAt = &t
	}
	return d
}

// ToDomainNotificationSlice converts model notifications to domain notifications
func ToDomainNotificationSlice(ms []models.Notification) []domain.Notification {
	ds := make([]domain.Notification, len(ms))
	for i, m := range ms {
		ds[i] = ToDomainNotification(m)
	}
	return ds
}
