package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// DocumentLineInput is one line of a document create/update request. Unit
// price arrives in minor units of the document currency.
type DocumentLineInput struct {
	ItemID          string          `json:"itemID"`
	Description     string          `json:"description"`
	Quantity        decimal.Decimal `json:"quantity"`
	UnitPrice       int64           `json:"unitPrice"`
	DiscountPercent decimal.Decimal `json:"discountPercent"`
	TaxPercent      decimal.Decimal `json:"taxPercent"`
}

// CreateDocumentRequest creates a commercial document in its initial state.
type CreateDocumentRequest struct {
	DocumentType   string              `json:"documentType"`
	DocumentNumber string              `json:"documentNumber"`
	CounterpartyID string              `json:"counterpartyID"`
	CurrencyCode   string              `json:"currencyCode"`
	IssueDate      time.Time           `json:"issueDate"`
	DueDate        time.Time           `json:"dueDate"`
	ValidUntil     time.Time           `json:"validUntil"`
	Notes          string              `json:"notes"`
	Lines          []DocumentLineInput `json:"lines"`
}

// LineQuantity addresses a quantity against one existing document line, used
// for partial shipments, receipts and invoicing.
type LineQuantity struct {
	LineID   string          `json:"lineID"`
	Quantity decimal.Decimal `json:"quantity"`
}

// TransitionRequest carries the per-event context of a document transition.
// Most events need none of it; ship/receive events carry the affected lines
// and the stock location.
type TransitionRequest struct {
	Lines    []LineQuantity `json:"lines,omitempty"`
	Location string         `json:"location,omitempty"`
	Reason   string         `json:"reason,omitempty"`
}
