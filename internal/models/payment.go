package models

import "time"

// Payment is the payments table row. Amounts are minor-unit integers in the
// payment currency.
type Payment struct {
	PaymentID       string    `db:"payment_id"`
	Direction       string    `db:"direction"`
	CounterpartyID  string    `db:"counterparty_id"`
	Amount          int64     `db:"amount"`
	AllocatedAmount int64     `db:"allocated_amount"`
	CurrencyCode    string    `db:"currency_code"`
	PaymentDate     time.Time `db:"payment_date"`
	Reference       string    `db:"reference"`
	AuditFields
}

// Allocation is the payment_allocations table row.
type Allocation struct {
	AllocationID string `db:"allocation_id"`
	PaymentID    string `db:"payment_id"`
	InvoiceID    string `db:"invoice_id"`
	Amount       int64  `db:"amount"`
	CurrencyCode string `db:"currency_code"`
	AuditFields
}
