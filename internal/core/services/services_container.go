package services

import (
	portsrepo "github.com/bizledger/erp_core/internal/core/ports/repositories"
	portssvc "github.com/bizledger/erp_core/internal/core/ports/services"
	"github.com/bizledger/erp_core/internal/platform/clock"
	"github.com/bizledger/erp_core/internal/platform/config"
)

// NewServiceContainer wires every engine service against the repository
// provider. Construction order follows the dependency chain: the ledger
// poster first, then the inventory engine and documents on top of it, and the
// payment allocator last since it drives document transitions.
func NewServiceContainer(repos *portsrepo.RepositoryProvider, cfg *config.Config, clk clock.Clock) *portssvc.ServiceContainer {
	calculatorSvc := NewCalculatorService()
	rateSvc := NewExchangeRateService(repos.ExchangeRateRepo, repos.CurrencyRepo, clk)
	ledgerSvc := NewLedgerService(repos.JournalRepo, repos.AccountRepo, repos.AuditRepo, cfg.Ledger, cfg.BaseCurrency, clk)
	inventorySvc := NewInventoryService(repos.InventoryRepo, ledgerSvc, cfg.BaseCurrency, clk)
	documentSvc := NewDocumentService(repos.DocumentRepo, repos.JournalRepo, repos.AuditRepo, rateSvc, inventorySvc, ledgerSvc, cfg.BaseCurrency, clk)
	paymentSvc := NewPaymentService(repos.PaymentRepo, repos.DocumentRepo, documentSvc, rateSvc, ledgerSvc, cfg.BaseCurrency, clk)

	return &portssvc.ServiceContainer{
		Calculator:   calculatorSvc,
		ExchangeRate: rateSvc,
		Document:     documentSvc,
		Inventory:    inventorySvc,
		Ledger:       ledgerSvc,
		Payment:      paymentSvc,
	}
}
