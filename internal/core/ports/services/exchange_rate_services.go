package services

import (
	"context"
	"time"

	"github.com/bizledger/erp_core/internal/core/domain"
	"github.com/bizledger/erp_core/internal/dto"
)

// ExchangeRateSvcFacade resolves and records exchange rates.
type ExchangeRateSvcFacade interface {
	// Resolve looks up the latest rate for the pair effective at or before
	// asOf. Equal currencies resolve to 1 without touching the table; any
	// other pair with no row fails, never falls back to 1:1.
	Resolve(ctx context.Context, fromCode, toCode string, asOf time.Time) (*domain.ExchangeRate, error)

	// CreateExchangeRate adds a rate table row.
	CreateExchangeRate(ctx context.Context, req dto.CreateExchangeRateRequest, actor string) (*domain.ExchangeRate, error)
}
