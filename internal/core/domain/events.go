package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// LedgerEventType tags the business events the ledger knows how to post.
type LedgerEventType string

const (
	CustomerInvoiceIssued   LedgerEventType = "CUSTOMER_INVOICE_ISSUED"
	CustomerPaymentReceived LedgerEventType = "CUSTOMER_PAYMENT_RECEIVED"
	SupplierInvoiceReceived LedgerEventType = "SUPPLIER_INVOICE_RECEIVED"
	SupplierPaymentSent     LedgerEventType = "SUPPLIER_PAYMENT_SENT"
	GoodsReceived           LedgerEventType = "GOODS_RECEIVED"
	GoodsShipped            LedgerEventType = "GOODS_SHIPPED"
	InventoryAdjusted       LedgerEventType = "INVENTORY_ADJUSTED"
)

// LedgerEvent is one money-moving business event handed to the ledger poster.
// The amounts it carries depend on the event type: an invoice carries net, tax
// and gross; a goods movement carries cost; a payment carries its amount.
// Every amount is expressed in the event currency; ExchangeRate is the frozen
// rate to the base currency.
type LedgerEvent struct {
	Type          LedgerEventType `json:"type"`
	ReferenceType string          `json:"referenceType"` // document | payment | stock_movement
	ReferenceID   string          `json:"referenceID"`
	Description   string          `json:"description"`
	CurrencyCode  string          `json:"currencyCode"`
	ExchangeRate  decimal.Decimal `json:"exchangeRate"`
	OccurredAt    time.Time       `json:"occurredAt"`
	Actor         string          `json:"actor"`

	NetAmount   Money `json:"netAmount"`   // Invoice events: subtotal minus discount
	TaxAmount   Money `json:"taxAmount"`   // Invoice events: tax portion
	GrossAmount Money `json:"grossAmount"` // Invoice events: net + tax; payment events: amount
	CostAmount  Money `json:"costAmount"`  // Goods events: signed inventory cost
}
