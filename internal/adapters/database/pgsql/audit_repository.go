package pgsql

import (
	"context"
	"fmt"

	"github.com/bizledger/erp_core/internal/core/domain"
	portsrepo "github.com/bizledger/erp_core/internal/core/ports/repositories"
	"github.com/bizledger/erp_core/internal/utils/mapping"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type PgxAuditRepository struct {
	BaseRepository
}

// NewPgxAuditRepository creates the append-only audit sink.
func NewPgxAuditRepository(pool *pgxpool.Pool) portsrepo.AuditRepositoryFacade {
	return &PgxAuditRepository{BaseRepository: NewBaseRepository(pool)}
}

// SaveAuditRecordInTx appends one audit record inside the supplied transaction.
func (r *PgxAuditRepository) SaveAuditRecordInTx(ctx context.Context, tx pgx.Tx, record domain.AuditRecord) error {
	m := mapping.ToModelAuditRecord(record)
	query := `
		INSERT INTO audit_records (audit_id, entity_type, entity_id, action, status_before, status_after, reason, actor, recorded_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9);
	`
	_, err := tx.Exec(ctx, query,
		m.AuditID, m.EntityType, m.EntityID, m.Action,
		m.StatusBefore, m.StatusAfter, m.Reason, m.Actor, m.RecordedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert audit record %s: %w", m.AuditID, mapPgError(err))
	}
	return nil
}
