package mapping

import (
	"database/sql"

	"github.com/smart-chama/chama_backend/internal/core/domain"
	"github.com/smart-chama/chama_backend/internal/models"
)

// ToModelLedgerEntry converts a domain LedgerEntry to a model LedgerEntry
func ToModelLedgerEntry(d domain.LedgerEntry) models.LedgerEntry {
	m := models.LedgerEntry{
		EntryID:       d.EntryID,
		MemberID:      d.MemberID,
		Kind:          string(d.Kind),
		Amount:        d.Amount,
		Status:        string(d.Status),
		EntryDate:     d.EntryDate,
		PaymentMethod: string(d.PaymentMethod),
		AuditFields:   ToModelAuditFields(d.AuditFields),
		DeletedAt:     d.DeletedAt,
	}
	if d.ContributionType != "" {
		m.ContributionType = sql.NullString{String: string(d.ContributionType), Valid: true}
	}
	if d.Reference != "" {
		m.Reference = sql.NullString{String: d.Reference, Valid: true}
	}
	if d.Notes != "" {
		m.Notes = sql.NullString{String: d.Notes, Valid: true}
	}
	if d.ApprovedBy != nil {
		m.ApprovedBy = sql.NullString{String: *d.ApprovedBy, Valid: true}
	}
	if d.ApprovedAt != nil {
		m.ApprovedAt = sql.NullTime{Time: *d.ApprovedAt, Valid: true}
	}
	if d.RejectionReason != nil {
		m.RejectionReason = sql.NullString{String: *d.RejectionReason, Valid: true}
	}
	return m
}

// ToDomainLedgerEntry converts a model LedgerEntry to a domain LedgerEntry
func ToDomainLedgerEntry(m models.LedgerEntry) domain.LedgerEntry {
	d := domain.LedgerEntry{
		EntryID:       m.EntryID,
		MemberID:      m.MemberID,
		Kind:          domain.EntryKind(m.Kind),
		Amount:        m.Amount,
		Status:        domain.EntryStatus(m.Status),
		EntryDate:     m.EntryDate,
		PaymentMethod: domain.PaymentMethod(m.PaymentMethod),
		AuditFields:   ToDomainAuditFields(m.AuditFields),
		DeletedAt:     m.DeletedAt,
	}
	if m.ContributionType.Valid {
		d.ContributionType = domain.ContributionType(m.ContributionType.String)
	}
	if m.Reference.Valid {
		d.Reference = m.Reference.String
	}
	if m.Notes.Valid {
		d.Notes = m.Notes.String
	}
	if m.ApprovedBy.Valid {
		v := m.ApprovedBy.String
		d.ApprovedBy = &v
	}
	if m.ApprovedAt.Valid {
		t := m.ApprovedAt.Time
		d.ApprovedAt = &t
	}
	if m.RejectionReason.Valid {
		v := m.RejectionReason.String
		d.RejectionReason = &v
	}
	return d
}

// ToDomainLedgerEntrySlice converts a slice of model LedgerEntry to domain entries
func ToDomainLedgerEntrySlice(ms []models.LedgerEntry) []domain.LedgerEntry {
	ds := make([]domain.LedgerEntry, len(ms))
	for i, m := range ms {
		ds[i] = ToDomainLedgerEntry(m)
	}
	return ds
}
