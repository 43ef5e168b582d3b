package pgsql

import (
	portsrepo "github.com/bizledger/erp_core/internal/core/ports/repositories"
	"github.com/jackc/pgx/v5/pgxpool"
)

// NewRepositoryProvider builds every pgsql repository around one shared pool.
func NewRepositoryProvider(pool *pgxpool.Pool) *portsrepo.RepositoryProvider {
	return &portsrepo.RepositoryProvider{
		AccountRepo:      NewPgxAccountRepository(pool),
		CurrencyRepo:     NewPgxCurrencyRepository(pool),
		ExchangeRateRepo: NewPgxExchangeRateRepository(pool),
		JournalRepo:      NewPgxJournalRepository(pool),
		DocumentRepo:     NewPgxDocumentRepository(pool),
		InventoryRepo:    NewPgxInventoryRepository(pool),
		PaymentRepo:      NewPgxPaymentRepository(pool),
		AuditRepo:        NewPgxAuditRepository(pool),
	}
}
