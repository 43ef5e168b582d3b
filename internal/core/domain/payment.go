package domain

import "time"

// PaymentDirection separates customer receipts from supplier payments.
type PaymentDirection string

const (
	PaymentInbound  PaymentDirection = "INBOUND"  // Received from a customer
	PaymentOutbound PaymentDirection = "OUTBOUND" // Sent to a supplier
)

// Payment is money received from a customer or sent to a supplier. It owns
// zero or more allocations; the sum of allocation amounts never exceeds the
// payment amount, and any unallocated remainder stays available for future
// allocation.
type Payment struct {
	PaymentID      string           `json:"paymentID"` // Primary Key (UUID)
	Direction      PaymentDirection `json:"direction"`
	CounterpartyID string           `json:"counterpartyID"`
	Amount         Money            `json:"amount"`
	AllocatedAmount Money           `json:"allocatedAmount"`
	PaymentDate    time.Time        `json:"paymentDate"`
	Reference      string           `json:"reference"` // Bank/cheque reference
	AuditFields
}

// UnallocatedAmount is what remains available for allocation.
func (p Payment) UnallocatedAmount() Money {
	return Money{Amount: p.Amount.Amount - p.AllocatedAmount.Amount, Currency: p.Amount.Currency}
}

// Allocation assigns part or all of a payment to exactly one invoice or bill.
type Allocation struct {
	AllocationID string `json:"allocationID"` // Primary Key (UUID)
	PaymentID    string `json:"paymentID"`    // FK -> Payment (Not Null)
	InvoiceID    string `json:"invoiceID"`    // FK -> Document of type INVOICE (Not Null)
	Amount       Money  `json:"amount"`       // Positive
	AuditFields
}
