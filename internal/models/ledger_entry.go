package models

import (
	"database/sql"
	"time"

	"github.com/shopspring/decimal"
)

// LedgerEntry is the database row for the unified ledger.
type LedgerEntry struct {
	EntryID          string          `db:"entry_id"`
	MemberID         string          `db:"member_id"`
	Kind             string          `db:"kind"`
	ContributionType sql.NullString  `db:"contribution_type"`
	Amount           decimal.Decimal `db:"amount"`
	Status           string          `db:"status"`
	EntryDate        time.Time       `db:"entry_date"`
	PaymentMethod    string          `db:"payment_method"`
	Reference        sql.NullString  `db:"reference"`
	Notes            sql.NullString  `db:"notes"`
	ApprovedBy       sql.NullString  `db:"approved_by"`
	ApprovedAt       sql.NullTime    `db:"approved_at"`
	RejectionReason  sql.NullString  `db:"rejection_reason"`
	AuditFields
	DeletedAt *time.Time `db:"deleted_at"`
}
