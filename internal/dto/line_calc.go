package dto

import (
	"github.com/bizledger/erp_core/internal/core/domain"
	"github.com/shopspring/decimal"
)

// ComputeLineRequest is the input of a single line computation.
type ComputeLineRequest struct {
	Quantity        decimal.Decimal `json:"quantity"`
	UnitPrice       int64           `json:"unitPrice"` // Minor units
	CurrencyCode    string          `json:"currencyCode"`
	DiscountPercent decimal.Decimal `json:"discountPercent"`
	TaxPercent      decimal.Decimal `json:"taxPercent"`
}

// LineComputation is the monetary breakdown of one document line.
type LineComputation struct {
	Subtotal       domain.Money `json:"subtotal"`
	DiscountAmount domain.Money `json:"discountAmount"`
	TaxAmount      domain.Money `json:"taxAmount"`
	Total          domain.Money `json:"total"`
}

// DocumentTotals aggregates line components across a document. Each component
// is the sum of the lines' corresponding component, never re-derived from the
// aggregate, so a partial edit of one line leaves the others' figures alone.
type DocumentTotals struct {
	Subtotal       domain.Money `json:"subtotal"`
	DiscountAmount domain.Money `json:"discountAmount"`
	TaxAmount      domain.Money `json:"taxAmount"`
	TotalAmount    domain.Money `json:"totalAmount"`
}
