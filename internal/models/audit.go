package models

import "time"

// AuditRecord is the audit_records table row. Append-only.
type AuditRecord struct {
	AuditID      string    `db:"audit_id"`
	EntityType   string    `db:"entity_type"`
	EntityID     string    `db:"entity_id"`
	Action       string    `db:"action"`
	StatusBefore string    `db:"status_before"`
	StatusAfter  string    `db:"status_after"`
	Reason       string    `db:"reason"`
	Actor        string    `db:"actor"`
	RecordedAt   time.Time `db:"recorded_at"`
}
