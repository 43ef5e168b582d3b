package pgsql

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/bizledger/erp_core/internal/apperrors"
	"github.com/bizledger/erp_core/internal/core/domain"
	portsrepo "github.com/bizledger/erp_core/internal/core/ports/repositories"
	"github.com/bizledger/erp_core/internal/models"
	"github.com/bizledger/erp_core/internal/utils/mapping"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const paymentColumns = `payment_id, direction, counterparty_id, amount, allocated_amount, currency_code, payment_date, reference, created_at, created_by, last_updated_at, last_updated_by`

const allocationColumns = `allocation_id, payment_id, invoice_id, amount, currency_code, created_at, created_by, last_updated_at, last_updated_by`

type PgxPaymentRepository struct {
	BaseRepository
}

// NewPgxPaymentRepository creates a new repository for payments and allocations.
func NewPgxPaymentRepository(pool *pgxpool.Pool) portsrepo.PaymentRepositoryWithTx {
	return &PgxPaymentRepository{BaseRepository: NewBaseRepository(pool)}
}

func scanPayment(row pgx.Row) (*models.Payment, error) {
	var m models.Payment
	err := row.Scan(
		&m.PaymentID,
		&m.Direction,
		&m.CounterpartyID,
		&m.Amount,
		&m.AllocatedAmount,
		&m.CurrencyCode,
		&m.PaymentDate,
		&m.Reference,
		&m.CreatedAt,
		&m.CreatedBy,
		&m.LastUpdatedAt,
		&m.LastUpdatedBy,
	)
	if err != nil {
		return nil, err
	}
	return &m, nil
}

func collectAllocations(rows pgx.Rows) ([]domain.Allocation, error) {
	defer rows.Close()
	allocations := []models.Allocation{}
	for rows.Next() {
		var m models.Allocation
		if err := rows.Scan(
			&m.AllocationID,
			&m.PaymentID,
			&m.InvoiceID,
			&m.Amount,
			&m.CurrencyCode,
			&m.CreatedAt,
			&m.CreatedBy,
			&m.LastUpdatedAt,
			&m.LastUpdatedBy,
		); err != nil {
			return nil, fmt.Errorf("failed to scan allocation row: %w", err)
		}
		allocations = append(allocations, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating allocation rows: %w", err)
	}
	return mapping.ToDomainAllocationSlice(allocations), nil
}

// FindPaymentByID retrieves a payment by its unique identifier.
func (r *PgxPaymentRepository) FindPaymentByID(ctx context.Context, paymentID string) (*domain.Payment, error) {
	query := `SELECT ` + paymentColumns + ` FROM payments WHERE payment_id = $1;`
	m, err := scanPayment(r.pool.QueryRow(ctx, query, paymentID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("%w: payment %s", apperrors.ErrNotFound, paymentID)
		}
		return nil, fmt.Errorf("failed to find payment %s: %w", paymentID, mapPgError(err))
	}
	payment := mapping.ToDomainPayment(*m)
	return &payment, nil
}

// ListAllocationsByPayment retrieves the allocations a payment owns.
func (r *PgxPaymentRepository) ListAllocationsByPayment(ctx context.Context, paymentID string) ([]domain.Allocation, error) {
	query := `SELECT ` + allocationColumns + ` FROM payment_allocations WHERE payment_id = $1 ORDER BY created_at;`
	rows, err := r.pool.Query(ctx, query, paymentID)
	if err != nil {
		return nil, fmt.Errorf("failed to query allocations for payment %s: %w", paymentID, mapPgError(err))
	}
	return collectAllocations(rows)
}

// ListAllocationsByInvoice retrieves the allocations made against one invoice.
func (r *PgxPaymentRepository) ListAllocationsByInvoice(ctx context.Context, invoiceID string) ([]domain.Allocation, error) {
	query := `SELECT ` + allocationColumns + ` FROM payment_allocations WHERE invoice_id = $1 ORDER BY created_at;`
	rows, err := r.pool.Query(ctx, query, invoiceID)
	if err != nil {
		return nil, fmt.Errorf("failed to query allocations for invoice %s: %w", invoiceID, mapPgError(err))
	}
	return collectAllocations(rows)
}

// SavePayment persists a new payment.
func (r *PgxPaymentRepository) SavePayment(ctx context.Context, payment domain.Payment) error {
	m := mapping.ToModelPayment(payment)
	query := `
		INSERT INTO payments (` + paymentColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12);
	`
	_, err := r.pool.Exec(ctx, query,
		m.PaymentID, m.Direction, m.CounterpartyID, m.Amount, m.AllocatedAmount,
		m.CurrencyCode, m.PaymentDate, m.Reference,
		m.CreatedAt, m.CreatedBy, m.LastUpdatedAt, m.LastUpdatedBy,
	)
	if err != nil {
		return fmt.Errorf("failed to insert payment %s: %w", m.PaymentID, mapPgError(err))
	}
	return nil
}

// SavePaymentInTx persists a new payment inside the supplied transaction.
func (r *PgxPaymentRepository) SavePaymentInTx(ctx context.Context, tx pgx.Tx, payment domain.Payment) error {
	m := mapping.ToModelPayment(payment)
	query := `
		INSERT INTO payments (` + paymentColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12);
	`
	_, err := tx.Exec(ctx, query,
		m.PaymentID, m.Direction, m.CounterpartyID, m.Amount, m.AllocatedAmount,
		m.CurrencyCode, m.PaymentDate, m.Reference,
		m.CreatedAt, m.CreatedBy, m.LastUpdatedAt, m.LastUpdatedBy,
	)
	if err != nil {
		return fmt.Errorf("failed to insert payment %s: %w", m.PaymentID, mapPgError(err))
	}
	return nil
}

// FindPaymentByIDForUpdate locks the payment row for the remainder of the
// transaction.
func (r *PgxPaymentRepository) FindPaymentByIDForUpdate(ctx context.Context, tx pgx.Tx, paymentID string) (*domain.Payment, error) {
	query := `SELECT ` + paymentColumns + ` FROM payments WHERE payment_id = $1 FOR UPDATE;`
	m, err := scanPayment(tx.QueryRow(ctx, query, paymentID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("%w: payment %s", apperrors.ErrNotFound, paymentID)
		}
		return nil, fmt.Errorf("failed to lock payment %s: %w", paymentID, mapPgError(err))
	}
	payment := mapping.ToDomainPayment(*m)
	return &payment, nil
}

// SaveAllocationInTx persists one allocation row.
func (r *PgxPaymentRepository) SaveAllocationInTx(ctx context.Context, tx pgx.Tx, allocation domain.Allocation) error {
	m := mapping.ToModelAllocation(allocation)
	query := `
		INSERT INTO payment_allocations (` + allocationColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9);
	`
	_, err := tx.Exec(ctx, query,
		m.AllocationID, m.PaymentID, m.InvoiceID, m.Amount, m.CurrencyCode,
		m.CreatedAt, m.CreatedBy, m.LastUpdatedAt, m.LastUpdatedBy,
	)
	if err != nil {
		return fmt.Errorf("failed to insert allocation %s: %w", m.AllocationID, mapPgError(err))
	}
	return nil
}

// UpdateAllocatedAmountInTx sets the payment's allocated total.
func (r *PgxPaymentRepository) UpdateAllocatedAmountInTx(ctx context.Context, tx pgx.Tx, paymentID string, allocated domain.Money, actor string, now time.Time) error {
	query := `
		UPDATE payments
		SET allocated_amount = $2, last_updated_at = $3, last_updated_by = $4
		WHERE payment_id = $1;
	`
	tag, err := tx.Exec(ctx, query, paymentID, allocated.Amount, now, actor)
	if err != nil {
		return fmt.Errorf("failed to update allocated amount of payment %s: %w", paymentID, mapPgError(err))
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%w: payment %s", apperrors.ErrNotFound, paymentID)
	}
	return nil
}
