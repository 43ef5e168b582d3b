package repositories

import (
	"context"

	"github.com/bizledger/erp_core/internal/core/domain"
	"github.com/jackc/pgx/v5"
)

// AuditWriter appends audit records. One record is written per state
// transition and per journal posting, inside the same transaction as the
// change it describes.
type AuditWriter interface {
	SaveAuditRecordInTx(ctx context.Context, tx pgx.Tx, record domain.AuditRecord) error
}

// AuditRepositoryFacade is the audit sink surface the engine writes to.
type AuditRepositoryFacade interface {
	AuditWriter
}
