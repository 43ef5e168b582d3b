package dto

import "time"

// CreatePaymentRequest records a customer receipt or supplier payment.
type CreatePaymentRequest struct {
	Direction      string    `json:"direction"` // INBOUND or OUTBOUND
	CounterpartyID string    `json:"counterpartyID"`
	Amount         int64     `json:"amount"` // Minor units
	CurrencyCode   string    `json:"currencyCode"`
	PaymentDate    time.Time `json:"paymentDate"`
	Reference      string    `json:"reference"`
}

// AllocationTarget assigns part of a payment to one invoice or bill.
type AllocationTarget struct {
	InvoiceID string `json:"invoiceID"`
	Amount    int64  `json:"amount"` // Minor units
}

// AllocatePaymentRequest allocates a payment across outstanding invoices.
type AllocatePaymentRequest struct {
	Targets []AllocationTarget `json:"targets"`
}
