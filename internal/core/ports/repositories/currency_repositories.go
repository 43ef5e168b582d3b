package repositories

import (
	"context"

	"github.com/bizledger/erp_core/internal/core/domain"
)

// CurrencyReader defines read operations for currency master data. The engine
// only reads currencies; their lifecycle belongs to the master-data layer.
type CurrencyReader interface {
	// FindCurrencyByCode retrieves a currency by its ISO code.
	FindCurrencyByCode(ctx context.Context, code string) (*domain.Currency, error)

	// ListCurrencies retrieves all known currencies.
	ListCurrencies(ctx context.Context) ([]domain.Currency, error)
}

// CurrencyRepositoryFacade is the full currency repository surface.
type CurrencyRepositoryFacade interface {
	CurrencyReader
}
