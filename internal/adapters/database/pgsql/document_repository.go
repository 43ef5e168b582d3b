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
	"github.com/shopspring/decimal"
)

const documentColumns = `document_id, document_type, document_number, status, counterparty_id, currency_code, exchange_rate, issue_date, due_date, valid_until, linked_document_id, subtotal, discount_amount, tax_amount, total_amount, balance_due, notes, created_at, created_by, last_updated_at, last_updated_by`

const documentLineColumns = `line_id, document_id, position, item_id, description, quantity, unit_price, discount_percent, tax_percent, subtotal, discount_amount, tax_amount, total, fulfilled_qty, invoiced_qty, created_at, created_by, last_updated_at, last_updated_by`

type PgxDocumentRepository struct {
	BaseRepository
}

// NewPgxDocumentRepository creates a new repository for commercial documents.
func NewPgxDocumentRepository(pool *pgxpool.Pool) portsrepo.DocumentRepositoryWithTx {
	return &PgxDocumentRepository{BaseRepository: NewBaseRepository(pool)}
}

func scanDocument(row pgx.Row) (*models.Document, error) {
	var m models.Document
	err := row.Scan(
		&m.DocumentID,
		&m.DocumentType,
		&m.DocumentNumber,
		&m.Status,
		&m.CounterpartyID,
		&m.CurrencyCode,
		&m.ExchangeRate,
		&m.IssueDate,
		&m.DueDate,
		&m.ValidUntil,
		&m.LinkedDocumentID,
		&m.Subtotal,
		&m.DiscountAmount,
		&m.TaxAmount,
		&m.TotalAmount,
		&m.BalanceDue,
		&m.Notes,
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

func scanDocumentLines(rows pgx.Rows, currencyCode string) ([]domain.DocumentLine, error) {
	defer rows.Close()
	lines := []domain.DocumentLine{}
	for rows.Next() {
		var m models.DocumentLine
		if err := rows.Scan(
			&m.LineID,
			&m.DocumentID,
			&m.Position,
			&m.ItemID,
			&m.Description,
			&m.Quantity,
			&m.UnitPrice,
			&m.DiscountPercent,
			&m.TaxPercent,
			&m.Subtotal,
			&m.DiscountAmount,
			&m.TaxAmount,
			&m.Total,
			&m.FulfilledQty,
			&m.InvoicedQty,
			&m.CreatedAt,
			&m.CreatedBy,
			&m.LastUpdatedAt,
			&m.LastUpdatedBy,
		); err != nil {
			return nil, fmt.Errorf("failed to scan document line row: %w", err)
		}
		lines = append(lines, mapping.ToDomainDocumentLine(m, currencyCode))
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating document line rows: %w", err)
	}
	return lines, nil
}

// FindDocumentByID retrieves a document header by its unique identifier.
func (r *PgxDocumentRepository) FindDocumentByID(ctx context.Context, documentID string) (*domain.Document, error) {
	query := `SELECT ` + documentColumns + ` FROM documents WHERE document_id = $1;`
	m, err := scanDocument(r.pool.QueryRow(ctx, query, documentID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("%w: document %s", apperrors.ErrNotFound, documentID)
		}
		return nil, fmt.Errorf("failed to find document %s: %w", documentID, mapPgError(err))
	}
	doc := mapping.ToDomainDocument(*m)
	return &doc, nil
}

// FindLinesByDocumentID retrieves the document's lines in position order.
func (r *PgxDocumentRepository) FindLinesByDocumentID(ctx context.Context, documentID string) ([]domain.DocumentLine, error) {
	doc, err := r.FindDocumentByID(ctx, documentID)
	if err != nil {
		return nil, err
	}
	query := `SELECT ` + documentLineColumns + ` FROM document_lines WHERE document_id = $1 ORDER BY position;`
	rows, err := r.pool.Query(ctx, query, documentID)
	if err != nil {
		return nil, fmt.Errorf("failed to query lines for document %s: %w", documentID, mapPgError(err))
	}
	return scanDocumentLines(rows, doc.CurrencyCode)
}

func insertDocumentTx(ctx context.Context, tx pgx.Tx, doc domain.Document, lines []domain.DocumentLine) error {
	m := mapping.ToModelDocument(doc)
	docQuery := `
		INSERT INTO documents (` + documentColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19, $20, $21);
	`
	_, err := tx.Exec(ctx, docQuery,
		m.DocumentID, m.DocumentType, m.DocumentNumber, m.Status, m.CounterpartyID,
		m.CurrencyCode, m.ExchangeRate, m.IssueDate, m.DueDate, m.ValidUntil,
		m.LinkedDocumentID, m.Subtotal, m.DiscountAmount, m.TaxAmount, m.TotalAmount,
		m.BalanceDue, m.Notes,
		m.CreatedAt, m.CreatedBy, m.LastUpdatedAt, m.LastUpdatedBy,
	)
	if err != nil {
		return fmt.Errorf("failed to insert document %s: %w", m.DocumentID, mapPgError(err))
	}

	batch := &pgx.Batch{}
	lineQuery := `
		INSERT INTO document_lines (` + documentLineColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19);
	`
	for _, line := range lines {
		ml := mapping.ToModelDocumentLine(line)
		batch.Queue(lineQuery,
			ml.LineID, ml.DocumentID, ml.Position, ml.ItemID, ml.Description,
			ml.Quantity, ml.UnitPrice, ml.DiscountPercent, ml.TaxPercent,
			ml.Subtotal, ml.DiscountAmount, ml.TaxAmount, ml.Total,
			ml.FulfilledQty, ml.InvoicedQty,
			ml.CreatedAt, ml.CreatedBy, ml.LastUpdatedAt, ml.LastUpdatedBy,
		)
	}
	br := tx.SendBatch(ctx, batch)
	if err := br.Close(); err != nil {
		return fmt.Errorf("failed to execute line batch for document %s: %w", m.DocumentID, mapPgError(err))
	}
	return nil
}

// SaveDocument persists a new document header and its lines.
func (r *PgxDocumentRepository) SaveDocument(ctx context.Context, doc domain.Document, lines []domain.DocumentLine) error {
	tx, err := r.Begin(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if err := insertDocumentTx(ctx, tx, doc, lines); err != nil {
		return err
	}
	return r.Commit(ctx, tx)
}

// SaveDocumentInTx persists a new document inside an existing transaction.
func (r *PgxDocumentRepository) SaveDocumentInTx(ctx context.Context, tx pgx.Tx, doc domain.Document, lines []domain.DocumentLine) error {
	return insertDocumentTx(ctx, tx, doc, lines)
}

// ReplaceLines swaps a still-editable document's lines and totals.
func (r *PgxDocumentRepository) ReplaceLines(ctx context.Context, doc domain.Document, lines []domain.DocumentLine) error {
	tx, err := r.Begin(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if _, err := tx.Exec(ctx, `DELETE FROM document_lines WHERE document_id = $1;`, doc.DocumentID); err != nil {
		return fmt.Errorf("failed to delete lines of document %s: %w", doc.DocumentID, mapPgError(err))
	}

	m := mapping.ToModelDocument(doc)
	headerQuery := `
		UPDATE documents
		SET subtotal = $2, discount_amount = $3, tax_amount = $4, total_amount = $5,
		    last_updated_at = $6, last_updated_by = $7
		WHERE document_id = $1;
	`
	if _, err := tx.Exec(ctx, headerQuery,
		m.DocumentID, m.Subtotal, m.DiscountAmount, m.TaxAmount, m.TotalAmount,
		m.LastUpdatedAt, m.LastUpdatedBy,
	); err != nil {
		return fmt.Errorf("failed to update totals of document %s: %w", m.DocumentID, mapPgError(err))
	}

	batch := &pgx.Batch{}
	lineQuery := `
		INSERT INTO document_lines (` + documentLineColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19);
	`
	for _, line := range lines {
		ml := mapping.ToModelDocumentLine(line)
		batch.Queue(lineQuery,
			ml.LineID, ml.DocumentID, ml.Position, ml.ItemID, ml.Description,
			ml.Quantity, ml.UnitPrice, ml.DiscountPercent, ml.TaxPercent,
			ml.Subtotal, ml.DiscountAmount, ml.TaxAmount, ml.Total,
			ml.FulfilledQty, ml.InvoicedQty,
			ml.CreatedAt, ml.CreatedBy, ml.LastUpdatedAt, ml.LastUpdatedBy,
		)
	}
	br := tx.SendBatch(ctx, batch)
	if err := br.Close(); err != nil {
		return fmt.Errorf("failed to insert replacement lines for document %s: %w", m.DocumentID, mapPgError(err))
	}
	return r.Commit(ctx, tx)
}

// FindDocumentByIDForUpdate locks the document row for the remainder of the
// transaction.
func (r *PgxDocumentRepository) FindDocumentByIDForUpdate(ctx context.Context, tx pgx.Tx, documentID string) (*domain.Document, error) {
	query := `SELECT ` + documentColumns + ` FROM documents WHERE document_id = $1 FOR UPDATE;`
	m, err := scanDocument(tx.QueryRow(ctx, query, documentID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("%w: document %s", apperrors.ErrNotFound, documentID)
		}
		return nil, fmt.Errorf("failed to lock document %s: %w", documentID, mapPgError(err))
	}
	doc := mapping.ToDomainDocument(*m)
	return &doc, nil
}

// FindLinesByDocumentIDForUpdate locks and returns the document's lines.
func (r *PgxDocumentRepository) FindLinesByDocumentIDForUpdate(ctx context.Context, tx pgx.Tx, documentID string) ([]domain.DocumentLine, error) {
	var currencyCode string
	if err := tx.QueryRow(ctx, `SELECT currency_code FROM documents WHERE document_id = $1;`, documentID).Scan(&currencyCode); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("%w: document %s", apperrors.ErrNotFound, documentID)
		}
		return nil, fmt.Errorf("failed to read document %s: %w", documentID, mapPgError(err))
	}
	query := `SELECT ` + documentLineColumns + ` FROM document_lines WHERE document_id = $1 ORDER BY position FOR UPDATE;`
	rows, err := tx.Query(ctx, query, documentID)
	if err != nil {
		return nil, fmt.Errorf("failed to lock lines of document %s: %w", documentID, mapPgError(err))
	}
	return scanDocumentLines(rows, currencyCode)
}

// UpdateStatusInTx moves the document to a new status.
func (r *PgxDocumentRepository) UpdateStatusInTx(ctx context.Context, tx pgx.Tx, documentID string, status domain.DocumentStatus, actor string, now time.Time) error {
	query := `
		UPDATE documents
		SET status = $2, last_updated_at = $3, last_updated_by = $4
		WHERE document_id = $1;
	`
	tag, err := tx.Exec(ctx, query, documentID, string(status), now, actor)
	if err != nil {
		return fmt.Errorf("failed to update status of document %s: %w", documentID, mapPgError(err))
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%w: document %s", apperrors.ErrNotFound, documentID)
	}
	return nil
}

// UpdateLinkedDocumentInTx records a conversion/link target.
func (r *PgxDocumentRepository) UpdateLinkedDocumentInTx(ctx context.Context, tx pgx.Tx, documentID, linkedDocumentID string, actor string, now time.Time) error {
	query := `
		UPDATE documents
		SET linked_document_id = $2, last_updated_at = $3, last_updated_by = $4
		WHERE document_id = $1;
	`
	tag, err := tx.Exec(ctx, query, documentID, linkedDocumentID, now, actor)
	if err != nil {
		return fmt.Errorf("failed to link document %s to %s: %w", documentID, linkedDocumentID, mapPgError(err))
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%w: document %s", apperrors.ErrNotFound, documentID)
	}
	return nil
}

// UpdateLineProgressInTx adds to a line's fulfilled and invoiced quantities.
func (r *PgxDocumentRepository) UpdateLineProgressInTx(ctx context.Context, tx pgx.Tx, lineID string, fulfilledDelta, invoicedDelta decimal.Decimal, actor string, now time.Time) error {
	query := `
		UPDATE document_lines
		SET fulfilled_qty = fulfilled_qty + $2, invoiced_qty = invoiced_qty + $3,
		    last_updated_at = $4, last_updated_by = $5
		WHERE line_id = $1;
	`
	tag, err := tx.Exec(ctx, query, lineID, fulfilledDelta, invoicedDelta, now, actor)
	if err != nil {
		return fmt.Errorf("failed to update progress of line %s: %w", lineID, mapPgError(err))
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%w: document line %s", apperrors.ErrNotFound, lineID)
	}
	return nil
}

// UpdateBalanceDueInTx sets an invoice's remaining balance.
func (r *PgxDocumentRepository) UpdateBalanceDueInTx(ctx context.Context, tx pgx.Tx, documentID string, balanceDue domain.Money, actor string, now time.Time) error {
	query := `
		UPDATE documents
		SET balance_due = $2, last_updated_at = $3, last_updated_by = $4
		WHERE document_id = $1;
	`
	tag, err := tx.Exec(ctx, query, documentID, balanceDue.Amount, now, actor)
	if err != nil {
		return fmt.Errorf("failed to update balance due of document %s: %w", documentID, mapPgError(err))
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%w: document %s", apperrors.ErrNotFound, documentID)
	}
	return nil
}
