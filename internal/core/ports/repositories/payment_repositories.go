package repositories

import (
	"context"
	"time"

	"github.com/bizledger/erp_core/internal/core/domain"
	"github.com/jackc/pgx/v5"
)

// PaymentReader defines read operations for payments and allocations.
type PaymentReader interface {
	// FindPaymentByID retrieves a payment by its unique identifier.
	FindPaymentByID(ctx context.Context, paymentID string) (*domain.Payment, error)

	// ListAllocationsByPayment retrieves the allocations a payment owns.
	ListAllocationsByPayment(ctx context.Context, paymentID string) ([]domain.Allocation, error)

	// ListAllocationsByInvoice retrieves the allocations made against one invoice.
	ListAllocationsByInvoice(ctx context.Context, invoiceID string) ([]domain.Allocation, error)
}

// PaymentWriter defines write operations for payments.
type PaymentWriter interface {
	// SavePayment persists a new payment.
	SavePayment(ctx context.Context, payment domain.Payment) error
}

// PaymentTxOperator defines the in-transaction operations of the allocator.
type PaymentTxOperator interface {
	// SavePaymentInTx persists a new payment inside the supplied transaction,
	// so the payment row and its ledger posting commit together.
	SavePaymentInTx(ctx context.Context, tx pgx.Tx, payment domain.Payment) error

	// FindPaymentByIDForUpdate locks the payment row for the remainder of the
	// transaction so concurrent allocations cannot both spend the same
	// unallocated remainder.
	FindPaymentByIDForUpdate(ctx context.Context, tx pgx.Tx, paymentID string) (*domain.Payment, error)

	// SaveAllocationInTx persists one allocation row.
	SaveAllocationInTx(ctx context.Context, tx pgx.Tx, allocation domain.Allocation) error

	// UpdateAllocatedAmountInTx sets the payment's allocated total.
	UpdateAllocatedAmountInTx(ctx context.Context, tx pgx.Tx, paymentID string, allocated domain.Money, actor string, now time.Time) error
}

// PaymentRepositoryFacade combines all payment repository interfaces.
type PaymentRepositoryFacade interface {
	PaymentReader
	PaymentWriter
	PaymentTxOperator
}

// PaymentRepositoryWithTx extends PaymentRepositoryFacade with transaction capabilities.
type PaymentRepositoryWithTx interface {
	PaymentRepositoryFacade
	TransactionManager
}
