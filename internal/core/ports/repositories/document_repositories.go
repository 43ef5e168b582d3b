package repositories

import (
	"context"
	"time"

	"github.com/bizledger/erp_core/internal/core/domain"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
)

// DocumentReader defines read operations for commercial documents.
type DocumentReader interface {
	// FindDocumentByID retrieves a document header by its unique identifier.
	FindDocumentByID(ctx context.Context, documentID string) (*domain.Document, error)

	// FindLinesByDocumentID retrieves the document's lines in position order.
	FindLinesByDocumentID(ctx context.Context, documentID string) ([]domain.DocumentLine, error)
}

// DocumentWriter defines write operations for commercial documents.
type DocumentWriter interface {
	// SaveDocument persists a new document header and its lines.
	SaveDocument(ctx context.Context, doc domain.Document, lines []domain.DocumentLine) error

	// ReplaceLines swaps a still-editable document's lines and totals.
	ReplaceLines(ctx context.Context, doc domain.Document, lines []domain.DocumentLine) error
}

// DocumentTxOperator defines in-transaction operations for document state
// changes. The document row is always the first lock taken; its lines follow.
type DocumentTxOperator interface {
	// FindDocumentByIDForUpdate locks the document row for the remainder of
	// the transaction.
	FindDocumentByIDForUpdate(ctx context.Context, tx pgx.Tx, documentID string) (*domain.Document, error)

	// FindLinesByDocumentIDForUpdate locks and returns the document's lines.
	FindLinesByDocumentIDForUpdate(ctx context.Context, tx pgx.Tx, documentID string) ([]domain.DocumentLine, error)

	// UpdateStatusInTx moves the document to a new status.
	UpdateStatusInTx(ctx context.Context, tx pgx.Tx, documentID string, status domain.DocumentStatus, actor string, now time.Time) error

	// UpdateLinkedDocumentInTx records a conversion/link target (e.g. the
	// sales order created from a quotation).
	UpdateLinkedDocumentInTx(ctx context.Context, tx pgx.Tx, documentID, linkedDocumentID string, actor string, now time.Time) error

	// UpdateLineProgressInTx adds to a line's fulfilled and invoiced quantities.
	UpdateLineProgressInTx(ctx context.Context, tx pgx.Tx, lineID string, fulfilledDelta, invoicedDelta decimal.Decimal, actor string, now time.Time) error

	// UpdateBalanceDueInTx sets an invoice's remaining balance.
	UpdateBalanceDueInTx(ctx context.Context, tx pgx.Tx, documentID string, balanceDue domain.Money, actor string, now time.Time) error

	// SaveDocumentInTx persists a new document (e.g. the order produced by a
	// quotation conversion) inside an existing transaction.
	SaveDocumentInTx(ctx context.Context, tx pgx.Tx, doc domain.Document, lines []domain.DocumentLine) error
}

// DocumentRepositoryFacade combines all document-related repository interfaces.
type DocumentRepositoryFacade interface {
	DocumentReader
	DocumentWriter
	DocumentTxOperator
}

// DocumentRepositoryWithTx extends DocumentRepositoryFacade with transaction capabilities.
type DocumentRepositoryWithTx interface {
	DocumentRepositoryFacade
	TransactionManager
}
