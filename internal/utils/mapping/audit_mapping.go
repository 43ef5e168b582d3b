package mapping

import (
	"github.com/bizledger/erp_core/internal/core/domain"
	"github.com/bizledger/erp_core/internal/models"
)

// ToModelAuditRecord converts a domain AuditRecord to a model AuditRecord
func ToModelAuditRecord(d domain.AuditRecord) models.AuditRecord {
	return models.AuditRecord{
		AuditID:      d.AuditID,
		EntityType:   d.EntityType,
		EntityID:     d.EntityID,
		Action:       d.Action,
		StatusBefore: d.StatusBefore,
		StatusAfter:  d.StatusAfter,
		Reason:       d.Reason,
		Actor:        d.Actor,
		RecordedAt:   d.RecordedAt,
	}
}
