package repositories

import (
	"context"
	"time"

	"github.com/bizledger/erp_core/internal/core/domain"
	"github.com/jackc/pgx/v5"
)

// JournalReader defines read operations for journal data.
type JournalReader interface {
	// FindEntryByID retrieves a specific journal entry by its unique identifier.
	FindEntryByID(ctx context.Context, entryID string) (*domain.JournalEntry, error)

	// FindLinesByEntryID retrieves all lines of a single journal entry.
	FindLinesByEntryID(ctx context.Context, entryID string) ([]domain.JournalLine, error)

	// FindEntryByReference retrieves the posted entry created for a business
	// event, identified by its source entity.
	FindEntryByReference(ctx context.Context, referenceType, referenceID string, eventType domain.LedgerEventType) (*domain.JournalEntry, error)
}

// JournalWriter defines write operations for journal data.
type JournalWriter interface {
	// SaveEntryInTx persists an entry and its lines and applies the signed
	// minor-unit balance deltas to the affected (already locked) accounts,
	// all inside the supplied transaction.
	SaveEntryInTx(ctx context.Context, tx pgx.Tx, entry domain.JournalEntry, lines []domain.JournalLine, balanceChanges map[string]int64) error

	// MarkEntryReversedInTx links a posted entry to the entry reversing it.
	MarkEntryReversedInTx(ctx context.Context, tx pgx.Tx, entryID, reversingEntryID string, actor string, now time.Time) error
}

// JournalRepositoryFacade combines all journal-related repository interfaces.
type JournalRepositoryFacade interface {
	JournalReader
	JournalWriter
}

// JournalRepositoryWithTx extends JournalRepositoryFacade with transaction capabilities.
type JournalRepositoryWithTx interface {
	JournalRepositoryFacade
	TransactionManager
}
