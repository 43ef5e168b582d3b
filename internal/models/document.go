package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Document is the documents table row. Monetary columns are minor-unit
// integers in the document currency.
type Document struct {
	DocumentID       string          `db:"document_id"`
	DocumentType     string          `db:"document_type"`
	DocumentNumber   string          `db:"document_number"`
	Status           string          `db:"status"`
	CounterpartyID   string          `db:"counterparty_id"`
	CurrencyCode     string          `db:"currency_code"`
	ExchangeRate     decimal.Decimal `db:"exchange_rate"`
	IssueDate        time.Time       `db:"issue_date"`
	DueDate          *time.Time      `db:"due_date"`    // Nullable
	ValidUntil       *time.Time      `db:"valid_until"` // Nullable, quotations only
	LinkedDocumentID *string         `db:"linked_document_id"`
	Subtotal         int64           `db:"subtotal"`
	DiscountAmount   int64           `db:"discount_amount"`
	TaxAmount        int64           `db:"tax_amount"`
	TotalAmount      int64           `db:"total_amount"`
	BalanceDue       int64           `db:"balance_due"`
	Notes            string          `db:"notes"`
	AuditFields
}

// DocumentLine is the document_lines table row.
type DocumentLine struct {
	LineID          string          `db:"line_id"`
	DocumentID      string          `db:"document_id"`
	Position        int             `db:"position"`
	ItemID          string          `db:"item_id"`
	Description     string          `db:"description"`
	Quantity        decimal.Decimal `db:"quantity"`
	UnitPrice       int64           `db:"unit_price"`
	DiscountPercent decimal.Decimal `db:"discount_percent"`
	TaxPercent      decimal.Decimal `db:"tax_percent"`
	Subtotal        int64           `db:"subtotal"`
	DiscountAmount  int64           `db:"discount_amount"`
	TaxAmount       int64           `db:"tax_amount"`
	Total           int64           `db:"total"`
	FulfilledQty    decimal.Decimal `db:"fulfilled_qty"`
	InvoicedQty     decimal.Decimal `db:"invoiced_qty"`
	AuditFields
}
