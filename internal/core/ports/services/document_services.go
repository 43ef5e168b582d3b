package services

import (
	"context"

	"github.com/bizledger/erp_core/internal/core/domain"
	"github.com/bizledger/erp_core/internal/dto"
	"github.com/jackc/pgx/v5"
)

// DocumentReaderSvc defines read operations for commercial documents.
type DocumentReaderSvc interface {
	// GetDocument retrieves a document header.
	GetDocument(ctx context.Context, documentID string) (*domain.Document, error)

	// GetDocumentLines retrieves the document's lines in position order.
	GetDocumentLines(ctx context.Context, documentID string) ([]domain.DocumentLine, error)
}

// DocumentWriterSvc defines document creation and (pre-freeze) editing.
type DocumentWriterSvc interface {
	// CreateDocument creates a document in its initial state with computed
	// totals and a frozen exchange rate.
	CreateDocument(ctx context.Context, req dto.CreateDocumentRequest, actor string) (*domain.Document, error)

	// UpdateDocumentLines replaces the lines of a still-editable document and
	// recomputes its totals.
	UpdateDocumentLines(ctx context.Context, documentID string, lines []dto.DocumentLineInput, actor string) (*domain.Document, error)

	// CreateInvoiceFromOrder raises an invoice against fulfilled, uninvoiced
	// order quantities.
	CreateInvoiceFromOrder(ctx context.Context, orderID string, lines []dto.LineQuantity, actor string) (*domain.Document, error)
}

// DocumentTransitionerSvc advances documents through their state machines.
type DocumentTransitionerSvc interface {
	// Transition applies an event to a document, running its guards and side
	// effects atomically with the state change.
	Transition(ctx context.Context, documentID string, event domain.DocumentEvent, req dto.TransitionRequest, actor string) (*domain.Document, error)

	// TransitionInTx applies an event inside the caller's transaction. Used
	// by the payment allocator to drive invoices to PARTIAL/PAID atomically
	// with the allocation.
	TransitionInTx(ctx context.Context, tx pgx.Tx, documentID string, event domain.DocumentEvent, req dto.TransitionRequest, actor string) (*domain.Document, error)
}

// DocumentSvcFacade combines the document service interfaces.
type DocumentSvcFacade interface {
	DocumentReaderSvc
	DocumentWriterSvc
	DocumentTransitionerSvc
}
