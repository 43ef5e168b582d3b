package services

// ServiceContainer holds instances of all the engine services. This is the
// operation-shaped surface the (external) API layer consumes.
type ServiceContainer struct {
	Calculator   CalculatorSvcFacade
	ExchangeRate ExchangeRateSvcFacade
	Document     DocumentSvcFacade
	Inventory    InventorySvcFacade
	Ledger       LedgerSvcFacade
	Payment      PaymentSvcFacade
}
