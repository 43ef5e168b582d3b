package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// DocumentType identifies the kind of commercial document a state table
// applies to.
type DocumentType string

const (
	DocTypeQuotation     DocumentType = "QUOTATION"
	DocTypeSalesOrder    DocumentType = "SALES_ORDER"
	DocTypeInvoice       DocumentType = "INVOICE"
	DocTypePurchaseOrder DocumentType = "PURCHASE_ORDER"
	DocTypeShipment      DocumentType = "SHIPMENT"
	DocTypeGoodsReceipt  DocumentType = "GOODS_RECEIPT"
)

// DocumentStatus is a state in a document's lifecycle. The per-type transition
// tables in the document service define which statuses apply to which type.
type DocumentStatus string

const (
	StatusDraft      DocumentStatus = "DRAFT"
	StatusSent       DocumentStatus = "SENT"
	StatusAccepted   DocumentStatus = "ACCEPTED"
	StatusRejected   DocumentStatus = "REJECTED"
	StatusExpired    DocumentStatus = "EXPIRED"
	StatusConverted  DocumentStatus = "CONVERTED"
	StatusPending    DocumentStatus = "PENDING"
	StatusApproved   DocumentStatus = "APPROVED"
	StatusProcessing DocumentStatus = "PROCESSING"
	StatusCompleted  DocumentStatus = "COMPLETED"
	StatusCancelled  DocumentStatus = "CANCELLED"
	StatusPartial    DocumentStatus = "PARTIAL"
	StatusPaid       DocumentStatus = "PAID"
	StatusInTransit  DocumentStatus = "IN_TRANSIT"
	StatusDelivered  DocumentStatus = "DELIVERED"
	StatusReceived   DocumentStatus = "RECEIVED"
)

// DocumentEvent names a requested transition on a document.
type DocumentEvent string

const (
	EventSend       DocumentEvent = "send"
	EventAccept     DocumentEvent = "accept"
	EventReject     DocumentEvent = "reject"
	EventExpire     DocumentEvent = "expire"
	EventConvert    DocumentEvent = "convert"
	EventApprove    DocumentEvent = "approve"
	EventShip       DocumentEvent = "ship"
	EventReceive    DocumentEvent = "receive"
	EventFulfill    DocumentEvent = "fulfill"
	EventCancel     DocumentEvent = "cancel"
	EventVoid       DocumentEvent = "void"
	EventPayPartial DocumentEvent = "pay_partial"
	EventPayFull    DocumentEvent = "pay_full"
	EventDispatch   DocumentEvent = "dispatch"
	EventDeliver    DocumentEvent = "deliver"
)

// DocumentLine belongs to exactly one document. Computed components satisfy
// total = (quantity x unitPrice) - discount + tax, rounded per Money's policy,
// and are immutable once the owning document leaves its editable states.
type DocumentLine struct {
	LineID          string          `json:"lineID"`     // Primary Key (UUID)
	DocumentID      string          `json:"documentID"` // FK -> Document (Not Null)
	Position        int             `json:"position"`   // Order within the document
	ItemID          string          `json:"itemID"`     // Master-data item reference
	Description     string          `json:"description"`
	Quantity        decimal.Decimal `json:"quantity"`        // > 0
	UnitPrice       Money           `json:"unitPrice"`       // Per-unit price in the document currency
	DiscountPercent decimal.Decimal `json:"discountPercent"` // 0..100
	TaxPercent      decimal.Decimal `json:"taxPercent"`      // >= 0
	Subtotal        Money           `json:"subtotal"`        // quantity x unitPrice
	DiscountAmount  Money           `json:"discountAmount"`
	TaxAmount       Money           `json:"taxAmount"`
	Total           Money           `json:"total"`
	FulfilledQty    decimal.Decimal `json:"fulfilledQty"` // Shipped (sales) or received (purchase) so far
	InvoicedQty     decimal.Decimal `json:"invoicedQty"`  // Invoiced against this line so far
	AuditFields
}

// RemainingQty is the quantity not yet shipped/received.
func (l DocumentLine) RemainingQty() decimal.Decimal {
	return l.Quantity.Sub(l.FulfilledQty)
}

// UninvoicedQty is the fulfilled quantity not yet invoiced.
func (l DocumentLine) UninvoicedQty() decimal.Decimal {
	return l.FulfilledQty.Sub(l.InvoicedQty)
}

// Document is a commercial document header: quotation, sales order, invoice,
// purchase order, shipment or goods receipt. It owns its lines exclusively;
// aggregate totals are derived from the lines, never independently settable.
// Once a document has left its initial state it is soft-voided via the
// CANCELLED status, never physically deleted.
type Document struct {
	DocumentID       string          `json:"documentID"` // Primary Key (UUID)
	DocumentType     DocumentType    `json:"documentType"`
	DocumentNumber   string          `json:"documentNumber"` // Human-readable reference
	Status           DocumentStatus  `json:"status"`
	CounterpartyID   string          `json:"counterpartyID"` // Customer or supplier reference
	CurrencyCode     string          `json:"currencyCode"`
	ExchangeRate     decimal.Decimal `json:"exchangeRate"` // Frozen at creation against the base currency
	IssueDate        time.Time       `json:"issueDate"`
	DueDate          time.Time       `json:"dueDate"`
	ValidUntil       time.Time       `json:"validUntil"`       // Quotations: expiry cutoff
	LinkedDocumentID string          `json:"linkedDocumentID"` // Quotation->order, shipment/invoice->order
	Subtotal         Money           `json:"subtotal"`
	DiscountAmount   Money           `json:"discountAmount"`
	TaxAmount        Money           `json:"taxAmount"`
	TotalAmount      Money           `json:"totalAmount"`
	BalanceDue       Money           `json:"balanceDue"` // Invoices: total minus allocations
	Notes            string          `json:"notes"`
	AuditFields
}

// editableStatuses lists, per document type, the states in which header and
// lines may still be mutated.
var editableStatuses = map[DocumentType][]DocumentStatus{
	DocTypeQuotation:     {StatusDraft, StatusSent},
	DocTypeSalesOrder:    {StatusPending},
	DocTypeInvoice:       {StatusDraft},
	DocTypePurchaseOrder: {StatusPending},
	DocTypeShipment:      {StatusPending},
	DocTypeGoodsReceipt:  {StatusPending},
}

// IsEditable reports whether the document's lines may still be changed.
func (d Document) IsEditable() bool {
	for _, s := range editableStatuses[d.DocumentType] {
		if d.Status == s {
			return true
		}
	}
	return false
}

// InitialStatus returns the draft-like state a newly created document of the
// given type starts in.
func InitialStatus(t DocumentType) DocumentStatus {
	switch t {
	case DocTypeQuotation, DocTypeInvoice:
		return StatusDraft
	default:
		return StatusPending
	}
}
