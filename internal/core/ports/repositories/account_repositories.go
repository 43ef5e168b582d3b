package repositories

import (
	"context"
	"time"

	"github.com/bizledger/erp_core/internal/core/domain"
	"github.com/jackc/pgx/v5"
)

// AccountReader defines read operations for chart-of-accounts data.
type AccountReader interface {
	// FindAccountByID retrieves a specific account by its unique identifier.
	FindAccountByID(ctx context.Context, accountID string) (*domain.Account, error)

	// FindAccountsByIDs retrieves multiple accounts keyed by ID.
	FindAccountsByIDs(ctx context.Context, accountIDs []string) (map[string]domain.Account, error)

	// FindAccountsByCodes retrieves accounts keyed by chart code. Used to
	// resolve the ledger posting map.
	FindAccountsByCodes(ctx context.Context, codes []string) (map[string]domain.Account, error)

	// ListChildAccounts retrieves the direct children of a parent account.
	ListChildAccounts(ctx context.Context, parentAccountID string) ([]domain.Account, error)
}

// AccountWriter defines write operations for account data.
type AccountWriter interface {
	// SaveAccount persists a new account.
	SaveAccount(ctx context.Context, account domain.Account) error

	// DeactivateAccount soft-deletes a non-system account.
	DeactivateAccount(ctx context.Context, accountID string, actor string, now time.Time) error
}

// AccountTxOperator defines the in-transaction operations journal posting
// relies on. Accounts are locked before their balances change.
type AccountTxOperator interface {
	// FindAccountsByIDsForUpdate locks the given account rows for the
	// remainder of the transaction and returns them keyed by ID.
	FindAccountsByIDsForUpdate(ctx context.Context, tx pgx.Tx, accountIDs []string) (map[string]domain.Account, error)

	// UpdateAccountBalancesInTx applies signed minor-unit balance deltas to the
	// locked accounts.
	UpdateAccountBalancesInTx(ctx context.Context, tx pgx.Tx, balanceChanges map[string]int64, actor string, now time.Time) error
}

// AccountRepositoryFacade combines all account-related repository interfaces.
type AccountRepositoryFacade interface {
	AccountReader
	AccountWriter
	AccountTxOperator
}

// AccountRepositoryWithTx extends AccountRepositoryFacade with transaction capabilities.
type AccountRepositoryWithTx interface {
	AccountRepositoryFacade
	TransactionManager
}
