package repositories

// RepositoryProvider holds all repository interfaces needed by services.
// This makes passing dependencies to the service container constructor cleaner.
type RepositoryProvider struct {
	AccountRepo      AccountRepositoryWithTx
	CurrencyRepo     CurrencyRepositoryFacade
	ExchangeRateRepo ExchangeRateRepositoryFacade
	JournalRepo      JournalRepositoryWithTx
	DocumentRepo     DocumentRepositoryWithTx
	InventoryRepo    InventoryRepositoryWithTx
	PaymentRepo      PaymentRepositoryWithTx
	AuditRepo        AuditRepositoryFacade
}
