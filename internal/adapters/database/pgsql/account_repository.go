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

const accountColumns = `account_id, code, name, account_type, currency_code, parent_account_id, description, is_active, is_system, balance, created_at, created_by, last_updated_at, last_updated_by`

type PgxAccountRepository struct {
	BaseRepository
}

// NewPgxAccountRepository creates a new repository for chart-of-accounts data.
func NewPgxAccountRepository(pool *pgxpool.Pool) portsrepo.AccountRepositoryWithTx {
	return &PgxAccountRepository{BaseRepository: NewBaseRepository(pool)}
}

func scanAccount(row pgx.Row) (*models.Account, error) {
	var m models.Account
	err := row.Scan(
		&m.AccountID,
		&m.Code,
		&m.Name,
		&m.AccountType,
		&m.CurrencyCode,
		&m.ParentAccountID,
		&m.Description,
		&m.IsActive,
		&m.IsSystem,
		&m.Balance,
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

func collectAccounts(rows pgx.Rows) ([]models.Account, error) {
	defer rows.Close()
	accounts := []models.Account{}
	for rows.Next() {
		m, err := scanAccount(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan account row: %w", err)
		}
		accounts = append(accounts, *m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating account rows: %w", err)
	}
	return accounts, nil
}

// FindAccountByID retrieves a specific account by its unique identifier.
func (r *PgxAccountRepository) FindAccountByID(ctx context.Context, accountID string) (*domain.Account, error) {
	query := `SELECT ` + accountColumns + ` FROM accounts WHERE account_id = $1;`
	m, err := scanAccount(r.pool.QueryRow(ctx, query, accountID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("%w: account %s", apperrors.ErrNotFound, accountID)
		}
		return nil, fmt.Errorf("failed to find account by ID %s: %w", accountID, mapPgError(err))
	}
	account := mapping.ToDomainAccount(*m)
	return &account, nil
}

// FindAccountsByIDs retrieves multiple accounts keyed by ID.
func (r *PgxAccountRepository) FindAccountsByIDs(ctx context.Context, accountIDs []string) (map[string]domain.Account, error) {
	query := `SELECT ` + accountColumns + ` FROM accounts WHERE account_id = ANY($1);`
	rows, err := r.pool.Query(ctx, query, accountIDs)
	if err != nil {
		return nil, fmt.Errorf("failed to query accounts by IDs: %w", mapPgError(err))
	}
	ms, err := collectAccounts(rows)
	if err != nil {
		return nil, err
	}
	result := make(map[string]domain.Account, len(ms))
	for _, m := range ms {
		result[m.AccountID] = mapping.ToDomainAccount(m)
	}
	return result, nil
}

// FindAccountsByCodes retrieves accounts keyed by chart code.
func (r *PgxAccountRepository) FindAccountsByCodes(ctx context.Context, codes []string) (map[string]domain.Account, error) {
	query := `SELECT ` + accountColumns + ` FROM accounts WHERE code = ANY($1);`
	rows, err := r.pool.Query(ctx, query, codes)
	if err != nil {
		return nil, fmt.Errorf("failed to query accounts by codes: %w", mapPgError(err))
	}
	ms, err := collectAccounts(rows)
	if err != nil {
		return nil, err
	}
	result := make(map[string]domain.Account, len(ms))
	for _, m := range ms {
		result[m.Code] = mapping.ToDomainAccount(m)
	}
	return result, nil
}

// ListChildAccounts retrieves the direct children of a parent account.
func (r *PgxAccountRepository) ListChildAccounts(ctx context.Context, parentAccountID string) ([]domain.Account, error) {
	query := `SELECT ` + accountColumns + ` FROM accounts WHERE parent_account_id = $1 ORDER BY code;`
	rows, err := r.pool.Query(ctx, query, parentAccountID)
	if err != nil {
		return nil, fmt.Errorf("failed to query child accounts of %s: %w", parentAccountID, mapPgError(err))
	}
	ms, err := collectAccounts(rows)
	if err != nil {
		return nil, err
	}
	accounts := make([]domain.Account, len(ms))
	for i, m := range ms {
		accounts[i] = mapping.ToDomainAccount(m)
	}
	return accounts, nil
}

// SaveAccount persists a new account.
func (r *PgxAccountRepository) SaveAccount(ctx context.Context, account domain.Account) error {
	m := mapping.ToModelAccount(account)
	query := `
		INSERT INTO accounts (` + accountColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14);
	`
	_, err := r.pool.Exec(ctx, query,
		m.AccountID, m.Code, m.Name, m.AccountType, m.CurrencyCode, m.ParentAccountID,
		m.Description, m.IsActive, m.IsSystem, m.Balance,
		m.CreatedAt, m.CreatedBy, m.LastUpdatedAt, m.LastUpdatedBy,
	)
	if err != nil {
		return fmt.Errorf("failed to insert account %s: %w", m.AccountID, mapPgError(err))
	}
	return nil
}

// DeactivateAccount soft-deletes a non-system account.
func (r *PgxAccountRepository) DeactivateAccount(ctx context.Context, accountID string, actor string, now time.Time) error {
	query := `
		UPDATE accounts
		SET is_active = FALSE, last_updated_at = $2, last_updated_by = $3
		WHERE account_id = $1 AND is_system = FALSE;
	`
	tag, err := r.pool.Exec(ctx, query, accountID, now, actor)
	if err != nil {
		return fmt.Errorf("failed to deactivate account %s: %w", accountID, mapPgError(err))
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%w: account %s (or it is a system account)", apperrors.ErrNotFound, accountID)
	}
	return nil
}

// FindAccountsByIDsForUpdate locks the given account rows for the remainder
// of the transaction and returns them keyed by ID.
func (r *PgxAccountRepository) FindAccountsByIDsForUpdate(ctx context.Context, tx pgx.Tx, accountIDs []string) (map[string]domain.Account, error) {
	query := `SELECT ` + accountColumns + ` FROM accounts WHERE account_id = ANY($1) ORDER BY account_id FOR UPDATE;`
	rows, err := tx.Query(ctx, query, accountIDs)
	if err != nil {
		return nil, fmt.Errorf("failed to lock accounts: %w", mapPgError(err))
	}
	ms, err := collectAccounts(rows)
	if err != nil {
		return nil, err
	}
	if len(ms) != len(accountIDs) {
		return nil, fmt.Errorf("%w: expected %d accounts, found %d", apperrors.ErrNotFound, len(accountIDs), len(ms))
	}
	result := make(map[string]domain.Account, len(ms))
	for _, m := range ms {
		result[m.AccountID] = mapping.ToDomainAccount(m)
	}
	return result, nil
}

// UpdateAccountBalancesInTx applies signed minor-unit balance deltas to the
// locked accounts.
func (r *PgxAccountRepository) UpdateAccountBalancesInTx(ctx context.Context, tx pgx.Tx, balanceChanges map[string]int64, actor string, now time.Time) error {
	query := `
		UPDATE accounts
		SET balance = balance + $2, last_updated_at = $3, last_updated_by = $4
		WHERE account_id = $1;
	`
	batch := &pgx.Batch{}
	for accountID, delta := range balanceChanges {
		batch.Queue(query, accountID, delta, now, actor)
	}
	br := tx.SendBatch(ctx, batch)
	if err := br.Close(); err != nil {
		return fmt.Errorf("failed to apply account balance changes: %w", mapPgError(err))
	}
	return nil
}
