package services

import (
	"context"

	"github.com/bizledger/erp_core/internal/core/domain"
	"github.com/bizledger/erp_core/internal/dto"
)

// PaymentReaderSvc defines read operations for payments.
type PaymentReaderSvc interface {
	// GetPayment retrieves a payment.
	GetPayment(ctx context.Context, paymentID string) (*domain.Payment, error)

	// ListAllocationsByInvoice lists the allocations made against one invoice.
	ListAllocationsByInvoice(ctx context.Context, invoiceID string) ([]domain.Allocation, error)
}

// PaymentWriterSvc records payments and allocates them across invoices.
type PaymentWriterSvc interface {
	// CreatePayment records a payment and posts its ledger entry.
	CreatePayment(ctx context.Context, req dto.CreatePaymentRequest, actor string) (*domain.Payment, error)

	// AllocatePayment assigns payment amounts to outstanding invoices,
	// updating their balances and states. The unallocated remainder stays on
	// the payment.
	AllocatePayment(ctx context.Context, paymentID string, req dto.AllocatePaymentRequest, actor string) ([]domain.Allocation, error)
}

// PaymentSvcFacade combines the payment service interfaces.
type PaymentSvcFacade interface {
	PaymentReaderSvc
	PaymentWriterSvc
}
