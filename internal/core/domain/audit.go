package domain

import "time"

// AuditRecord is one line of the engine's audit trail: emitted once per state
// transition and once per journal posting. Formatting and display belong to
// the external audit sink.
type AuditRecord struct {
	AuditID      string    `json:"auditID"` // Primary Key (UUID)
	EntityType   string    `json:"entityType"`
	EntityID     string    `json:"entityID"`
	Action       string    `json:"action"` // Event name or "post"/"reverse"
	StatusBefore string    `json:"statusBefore"`
	StatusAfter  string    `json:"statusAfter"`
	Reason       string    `json:"reason"` // Caller-supplied context (e.g. cancellation reason)
	Actor        string    `json:"actor"`
	RecordedAt   time.Time `json:"recordedAt"`
}
