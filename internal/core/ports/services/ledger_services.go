package services

import (
	"context"

	"github.com/bizledger/erp_core/internal/core/domain"
	"github.com/jackc/pgx/v5"
)

// LedgerReaderSvc defines read operations on the journal.
type LedgerReaderSvc interface {
	// GetEntry retrieves a posted journal entry.
	GetEntry(ctx context.Context, entryID string) (*domain.JournalEntry, error)

	// GetEntryLines retrieves the lines of an entry.
	GetEntryLines(ctx context.Context, entryID string) ([]domain.JournalLine, error)
}

// LedgerPosterSvc builds and persists balanced journal entries for business
// events.
type LedgerPosterSvc interface {
	// PostEvent posts one business event in its own transaction.
	PostEvent(ctx context.Context, event domain.LedgerEvent) (*domain.JournalEntry, error)

	// PostEventInTx posts one business event inside the caller's transaction,
	// so a document transition and its postings commit or roll back together.
	PostEventInTx(ctx context.Context, tx pgx.Tx, event domain.LedgerEvent) (*domain.JournalEntry, error)

	// ReverseEntry posts a reversing entry for a posted entry. Posted entries
	// are never edited; this is the only correction mechanism.
	ReverseEntry(ctx context.Context, entryID string, actor string) (*domain.JournalEntry, error)

	// ReverseEntryInTx reverses an entry inside the caller's transaction, so a
	// document void and its ledger correction commit or roll back together.
	ReverseEntryInTx(ctx context.Context, tx pgx.Tx, entryID string, actor string) (*domain.JournalEntry, error)
}

// LedgerSvcFacade combines the ledger service interfaces.
type LedgerSvcFacade interface {
	LedgerReaderSvc
	LedgerPosterSvc
}
