package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// ExchangeRate is one row of the rate table: the value of one unit of the
// "from" currency expressed in the "to" currency, effective from DateEffective.
// Resolution picks the latest rate at or before the requested instant; once a
// rate has been frozen onto a document or journal entry it is never
// re-resolved, even if the table row is later corrected.
type ExchangeRate struct {
	ExchangeRateID   string          `json:"exchangeRateID"` // Primary Key (UUID)
	FromCurrencyCode string          `json:"fromCurrencyCode"`
	ToCurrencyCode   string          `json:"toCurrencyCode"`
	Rate             decimal.Decimal `json:"rate"` // Positive
	DateEffective    time.Time       `json:"dateEffective"`
	AuditFields
}
