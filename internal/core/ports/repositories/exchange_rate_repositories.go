package repositories

import (
	"context"
	"time"

	"github.com/bizledger/erp_core/internal/core/domain"
)

// ExchangeRateReader defines read operations for exchange rate data.
type ExchangeRateReader interface {
	// FindRateAsOf retrieves the latest rate for the pair effective at or
	// before the given instant. Returns apperrors.ErrNotFound if none exists;
	// there is no implicit 1:1 fallback.
	FindRateAsOf(ctx context.Context, fromCode, toCode string, asOf time.Time) (*domain.ExchangeRate, error)
}

// ExchangeRateWriter defines write operations for exchange rate data.
type ExchangeRateWriter interface {
	// SaveExchangeRate persists a new exchange rate row.
	SaveExchangeRate(ctx context.Context, rate domain.ExchangeRate) error
}

// ExchangeRateRepositoryFacade combines the exchange rate interfaces.
type ExchangeRateRepositoryFacade interface {
	ExchangeRateReader
	ExchangeRateWriter
}
