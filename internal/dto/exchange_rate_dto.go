package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// CreateExchangeRateRequest adds a row to the rate table.
type CreateExchangeRateRequest struct {
	FromCurrencyCode string          `json:"fromCurrencyCode"`
	ToCurrencyCode   string          `json:"toCurrencyCode"`
	Rate             decimal.Decimal `json:"rate"`
	DateEffective    time.Time       `json:"dateEffective"`
}
