package pgsql

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/bizledger/erp_core/internal/apperrors"
	"github.com/bizledger/erp_core/internal/core/domain"
	portsrepo "github.com/bizledger/erp_core/internal/core/ports/repositories"
	"github.com/bizledger/erp_core/internal/models"
	"github.com/bizledger/erp_core/internal/utils/mapping"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const journalEntryColumns = `entry_id, entry_date, description, currency_code, exchange_rate, event_type, reference_type, reference_id, status, original_entry_id, reversing_entry_id, amount, created_at, created_by, last_updated_at, last_updated_by`

type PgxJournalRepository struct {
	BaseRepository
}

// NewPgxJournalRepository creates a new repository for journal data.
func NewPgxJournalRepository(pool *pgxpool.Pool) portsrepo.JournalRepositoryWithTx {
	return &PgxJournalRepository{BaseRepository: NewBaseRepository(pool)}
}

func scanJournalEntry(row pgx.Row) (*models.JournalEntry, error) {
	var m models.JournalEntry
	err := row.Scan(
		&m.EntryID,
		&m.EntryDate,
		&m.Description,
		&m.CurrencyCode,
		&m.ExchangeRate,
		&m.EventType,
		&m.ReferenceType,
		&m.ReferenceID,
		&m.Status,
		&m.OriginalEntryID,
		&m.ReversingEntryID,
		&m.Amount,
		&m.CreatedAt,
		&m.CreatedBy,
		&m.LastUpdatedAt,
		&m.LastUpdatedBy,
	)
	if err != nil {
		return nil, err
	}
	return &m, nil
}

// FindEntryByID retrieves a specific journal entry by its unique identifier.
func (r *PgxJournalRepository) FindEntryByID(ctx context.Context, entryID string) (*domain.JournalEntry, error) {
	query := `SELECT ` + journalEntryColumns + ` FROM journal_entries WHERE entry_id = $1;`
	m, err := scanJournalEntry(r.pool.QueryRow(ctx, query, entryID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("%w: journal entry %s", apperrors.ErrNotFound, entryID)
		}
		return nil, fmt.Errorf("failed to find journal entry %s: %w", entryID, mapPgError(err))
	}
	entry := mapping.ToDomainJournalEntry(*m)
	return &entry, nil
}

// FindLinesByEntryID retrieves all lines of a single journal entry.
func (r *PgxJournalRepository) FindLinesByEntryID(ctx context.Context, entryID string) ([]domain.JournalLine, error) {
	query := `
		SELECT line_id, entry_id, account_id, line_type, amount, currency_code, running_balance, notes, created_at, created_by, last_updated_at, last_updated_by
		FROM journal_lines
		WHERE entry_id = $1
		ORDER BY line_id;
	`
	rows, err := r.pool.Query(ctx, query, entryID)
	if err != nil {
		return nil, fmt.Errorf("failed to query journal lines for entry %s: %w", entryID, mapPgError(err))
	}
	defer rows.Close()

	lines := []models.JournalLine{}
	for rows.Next() {
		var m models.JournalLine
		if err := rows.Scan(
			&m.LineID,
			&m.EntryID,
			&m.AccountID,
			&m.LineType,
			&m.Amount,
			&m.CurrencyCode,
			&m.RunningBalance,
			&m.Notes,
			&m.CreatedAt,
			&m.CreatedBy,
			&m.LastUpdatedAt,
			&m.LastUpdatedBy,
		); err != nil {
			return nil, fmt.Errorf("failed to scan journal line row for entry %s: %w", entryID, err)
		}
		lines = append(lines, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating journal line rows for entry %s: %w", entryID, err)
	}
	return mapping.ToDomainJournalLineSlice(lines), nil
}

// FindEntryByReference retrieves the posted, non-reversing entry created for
// a business event.
func (r *PgxJournalRepository) FindEntryByReference(ctx context.Context, referenceType, referenceID string, eventType domain.LedgerEventType) (*domain.JournalEntry, error) {
	query := `
		SELECT ` + journalEntryColumns + `
		FROM journal_entries
		WHERE reference_type = $1 AND reference_id = $2 AND event_type = $3
		  AND status = 'POSTED' AND original_entry_id IS NULL
		ORDER BY created_at DESC
		LIMIT 1;
	`
	m, err := scanJournalEntry(r.pool.QueryRow(ctx, query, referenceType, referenceID, string(eventType)))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("%w: no %s entry for %s %s", apperrors.ErrNotFound, eventType, referenceType, referenceID)
		}
		return nil, fmt.Errorf("failed to find entry by reference %s:%s: %w", referenceType, referenceID, mapPgError(err))
	}
	entry := mapping.ToDomainJournalEntry(*m)
	return &entry, nil
}

// SaveEntryInTx persists an entry and its lines and applies the signed
// minor-unit balance deltas to the affected (already locked) accounts. Each
// line's running balance is the account balance after the whole entry.
func (r *PgxJournalRepository) SaveEntryInTx(ctx context.Context, tx pgx.Tx, entry domain.JournalEntry, lines []domain.JournalLine, balanceChanges map[string]int64) error {
	accountIDs := make([]string, 0, len(balanceChanges))
	for accountID := range balanceChanges {
		accountIDs = append(accountIDs, accountID)
	}
	balances := make(map[string]int64, len(accountIDs))
	rows, err := tx.Query(ctx, `SELECT account_id, balance FROM accounts WHERE account_id = ANY($1);`, accountIDs)
	if err != nil {
		return fmt.Errorf("failed to read account balances: %w", mapPgError(err))
	}
	for rows.Next() {
		var accountID string
		var balance int64
		if err := rows.Scan(&accountID, &balance); err != nil {
			rows.Close()
			return fmt.Errorf("failed to scan account balance: %w", err)
		}
		balances[accountID] = balance
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return fmt.Errorf("error iterating account balances: %w", err)
	}
	if len(balances) != len(accountIDs) {
		return fmt.Errorf("%w: entry %s references missing accounts", apperrors.ErrNotFound, entry.EntryID)
	}

	me := mapping.ToModelJournalEntry(entry)
	entryQuery := `
		INSERT INTO journal_entries (` + journalEntryColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16);
	`
	_, err = tx.Exec(ctx, entryQuery,
		me.EntryID, me.EntryDate, me.Description, me.CurrencyCode, me.ExchangeRate,
		me.EventType, me.ReferenceType, me.ReferenceID, me.Status,
		me.OriginalEntryID, me.ReversingEntryID, me.Amount,
		me.CreatedAt, me.CreatedBy, me.LastUpdatedAt, me.LastUpdatedBy,
	)
	if err != nil {
		return fmt.Errorf("failed to insert journal entry %s: %w", me.EntryID, mapPgError(err))
	}

	batch := &pgx.Batch{}
	lineQuery := `
		INSERT INTO journal_lines (line_id, entry_id, account_id, line_type, amount, currency_code, running_balance, notes, created_at, created_by, last_updated_at, last_updated_by)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12);
	`
	for _, line := range lines {
		ml := mapping.ToModelJournalLine(line)
		ml.RunningBalance = balances[ml.AccountID] + balanceChanges[ml.AccountID]
		batch.Queue(lineQuery,
			ml.LineID, ml.EntryID, ml.AccountID, ml.LineType, ml.Amount, ml.CurrencyCode,
			ml.RunningBalance, ml.Notes,
			ml.CreatedAt, ml.CreatedBy, ml.LastUpdatedAt, ml.LastUpdatedBy,
		)
	}
	balanceQuery := `
		UPDATE accounts
		SET balance = balance + $2, last_updated_at = $3, last_updated_by = $4
		WHERE account_id = $1;
	`
	for accountID, delta := range balanceChanges {
		batch.Queue(balanceQuery, accountID, delta, me.LastUpdatedAt, me.LastUpdatedBy)
	}
	br := tx.SendBatch(ctx, batch)
	if err := br.Close(); err != nil {
		return fmt.Errorf("failed to execute line batch for entry %s: %w", me.EntryID, mapPgError(err))
	}
	return nil
}

// MarkEntryReversedInTx links a posted entry to the entry reversing it.
func (r *PgxJournalRepository) MarkEntryReversedInTx(ctx context.Context, tx pgx.Tx, entryID, reversingEntryID string, actor string, now time.Time) error {
	query := `
		UPDATE journal_entries
		SET status = 'REVERSED', reversing_entry_id = $2, last_updated_at = $3, last_updated_by = $4
		WHERE entry_id = $1 AND status = 'POSTED';
	`
	tag, err := tx.Exec(ctx, query, entryID, reversingEntryID, now, actor)
	if err != nil {
		return fmt.Errorf("failed to mark entry %s reversed: %w", entryID, mapPgError(err))
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%w: journal entry %s is not posted", apperrors.ErrState, entryID)
	}
	return nil
}
