package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/bizledger/erp_core/internal/apperrors"
	"github.com/bizledger/erp_core/internal/core/domain"
	portsrepo "github.com/bizledger/erp_core/internal/core/ports/repositories"
	portssvc "github.com/bizledger/erp_core/internal/core/ports/services"
	"github.com/bizledger/erp_core/internal/dto"
	"github.com/bizledger/erp_core/internal/platform/clock"
	"github.com/bizledger/erp_core/internal/platform/logging"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
)

var (
	// ErrIllegalTransition means the event is not defined for the document's
	// current status. Re-applying an event a document has already absorbed
	// lands here too; transitions are not idempotent.
	ErrIllegalTransition = errors.New("illegal document transition")

	// ErrPreconditionFailed means the transition exists but its guard rejected
	// it (e.g. shipping more than the open quantity).
	ErrPreconditionFailed = errors.New("transition precondition failed")

	// ErrUnknownDocumentType rejects document types without a state table.
	ErrUnknownDocumentType = errors.New("unknown document type")

	// ErrDocumentFrozen rejects line edits once a document has left its
	// editable states.
	ErrDocumentFrozen = errors.New("document lines are frozen")

	// ErrNothingToInvoice means the order has no fulfilled, uninvoiced
	// quantity left on the requested lines.
	ErrNothingToInvoice = errors.New("nothing left to invoice")
)

const referenceTypeDocument = "document"

// documentService owns document creation, line editing and the per-type state
// machines. Transitions run their guards, status change, side effects and
// audit record in one transaction; a failed side effect leaves the document
// exactly where it was.
type documentService struct {
	docRepo       portsrepo.DocumentRepositoryWithTx
	journalReader portsrepo.JournalReader
	auditRepo     portsrepo.AuditRepositoryFacade
	rateSvc       portssvc.ExchangeRateSvcFacade
	inventorySvc  portssvc.InventoryTxSvc
	ledgerSvc     portssvc.LedgerPosterSvc
	baseCurrency  string
	clock         clock.Clock
}

// NewDocumentService creates the document service.
func NewDocumentService(
	docRepo portsrepo.DocumentRepositoryWithTx,
	journalReader portsrepo.JournalReader,
	auditRepo portsrepo.AuditRepositoryFacade,
	rateSvc portssvc.ExchangeRateSvcFacade,
	inventorySvc portssvc.InventoryTxSvc,
	ledgerSvc portssvc.LedgerPosterSvc,
	baseCurrency string,
	clk clock.Clock,
) portssvc.DocumentSvcFacade {
	return &documentService{
		docRepo:       docRepo,
		journalReader: journalReader,
		auditRepo:     auditRepo,
		rateSvc:       rateSvc,
		inventorySvc:  inventorySvc,
		ledgerSvc:     ledgerSvc,
		baseCurrency:  baseCurrency,
		clock:         clk,
	}
}

var _ portssvc.DocumentSvcFacade = (*documentService)(nil)

// transitionCtx carries everything a guard or hook needs. Hooks run after the
// status update, inside the same transaction.
type transitionCtx struct {
	tx    pgx.Tx
	doc   *domain.Document
	lines []domain.DocumentLine
	req   dto.TransitionRequest
	actor string
	now   time.Time
}

type transitionKey struct {
	From  domain.DocumentStatus
	Event domain.DocumentEvent
}

type transitionRule struct {
	To    domain.DocumentStatus
	Guard func(ctx context.Context, tc *transitionCtx) error
	Hook  func(ctx context.Context, tc *transitionCtx) error
}

// transitionTable returns the state table for a document type. Tables are
// built per call on the service so guards and hooks can close over it; they
// are small and allocation here is not a concern.
func (s *documentService) transitionTable(docType domain.DocumentType) (map[transitionKey]transitionRule, error) {
	switch docType {
	case domain.DocTypeQuotation:
		return map[transitionKey]transitionRule{
			{domain.StatusDraft, domain.EventSend}:       {To: domain.StatusSent},
			{domain.StatusSent, domain.EventAccept}:      {To: domain.StatusAccepted},
			{domain.StatusSent, domain.EventReject}:      {To: domain.StatusRejected},
			{domain.StatusSent, domain.EventExpire}:      {To: domain.StatusExpired, Guard: s.guardQuotationExpired},
			{domain.StatusDraft, domain.EventCancel}:     {To: domain.StatusCancelled},
			{domain.StatusSent, domain.EventCancel}:      {To: domain.StatusCancelled},
			{domain.StatusAccepted, domain.EventConvert}: {To: domain.StatusConverted, Hook: s.hookConvertQuotation},
		}, nil
	case domain.DocTypeSalesOrder:
		return map[transitionKey]transitionRule{
			{domain.StatusPending, domain.EventApprove}:    {To: domain.StatusApproved, Hook: s.hookReserveOrderStock},
			{domain.StatusPending, domain.EventCancel}:     {To: domain.StatusCancelled},
			{domain.StatusApproved, domain.EventCancel}:    {To: domain.StatusCancelled, Hook: s.hookReleaseOrderStock},
			{domain.StatusApproved, domain.EventShip}:      {To: domain.StatusProcessing, Guard: s.guardShipQuantities, Hook: s.hookShipLines},
			{domain.StatusProcessing, domain.EventShip}:    {To: domain.StatusProcessing, Guard: s.guardShipQuantities, Hook: s.hookShipLines},
			{domain.StatusProcessing, domain.EventFulfill}: {To: domain.StatusCompleted, Guard: s.guardFullyFulfilled},
		}, nil
	case domain.DocTypePurchaseOrder:
		return map[transitionKey]transitionRule{
			{domain.StatusPending, domain.EventApprove}:    {To: domain.StatusApproved},
			{domain.StatusPending, domain.EventCancel}:     {To: domain.StatusCancelled},
			{domain.StatusApproved, domain.EventCancel}:    {To: domain.StatusCancelled},
			{domain.StatusApproved, domain.EventReceive}:   {To: domain.StatusProcessing, Guard: s.guardShipQuantities, Hook: s.hookReceiveLines},
			{domain.StatusProcessing, domain.EventReceive}: {To: domain.StatusProcessing, Guard: s.guardShipQuantities, Hook: s.hookReceiveLines},
			{domain.StatusProcessing, domain.EventFulfill}: {To: domain.StatusCompleted, Guard: s.guardFullyFulfilled},
		}, nil
	case domain.DocTypeInvoice:
		return map[transitionKey]transitionRule{
			{domain.StatusDraft, domain.EventSend}:         {To: domain.StatusSent, Hook: s.hookIssueInvoice},
			{domain.StatusDraft, domain.EventCancel}:       {To: domain.StatusCancelled},
			{domain.StatusSent, domain.EventVoid}:          {To: domain.StatusCancelled, Guard: s.guardInvoiceUnpaid, Hook: s.hookVoidInvoice},
			{domain.StatusSent, domain.EventPayPartial}:    {To: domain.StatusPartial, Guard: s.guardBalancePartial},
			{domain.StatusPartial, domain.EventPayPartial}: {To: domain.StatusPartial, Guard: s.guardBalancePartial},
			{domain.StatusSent, domain.EventPayFull}:       {To: domain.StatusPaid, Guard: s.guardBalanceSettled},
			{domain.StatusPartial, domain.EventPayFull}:    {To: domain.StatusPaid, Guard: s.guardBalanceSettled},
		}, nil
	case domain.DocTypeShipment:
		return map[transitionKey]transitionRule{
			{domain.StatusPending, domain.EventDispatch}:  {To: domain.StatusInTransit},
			{domain.StatusInTransit, domain.EventDeliver}: {To: domain.StatusDelivered},
			{domain.StatusPending, domain.EventCancel}:    {To: domain.StatusCancelled},
		}, nil
	case domain.DocTypeGoodsReceipt:
		return map[transitionKey]transitionRule{
			{domain.StatusPending, domain.EventReceive}: {To: domain.StatusReceived},
			{domain.StatusPending, domain.EventCancel}:  {To: domain.StatusCancelled},
		}, nil
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnknownDocumentType, docType)
	}
}

// GetDocument implements portssvc.DocumentReaderSvc.
func (s *documentService) GetDocument(ctx context.Context, documentID string) (*domain.Document, error) {
	return s.docRepo.FindDocumentByID(ctx, documentID)
}

// GetDocumentLines implements portssvc.DocumentReaderSvc.
func (s *documentService) GetDocumentLines(ctx context.Context, documentID string) ([]domain.DocumentLine, error) {
	return s.docRepo.FindLinesByDocumentID(ctx, documentID)
}

// CreateDocument implements portssvc.DocumentWriterSvc. The exchange rate to
// the base currency is resolved once here and frozen on the document.
func (s *documentService) CreateDocument(ctx context.Context, req dto.CreateDocumentRequest, actor string) (*domain.Document, error) {
	docType := domain.DocumentType(req.DocumentType)
	if _, err := s.transitionTable(docType); err != nil {
		return nil, fmt.Errorf("%w: %w", apperrors.ErrValidation, err)
	}
	if req.CurrencyCode == "" {
		return nil, fmt.Errorf("%w: currency code is required", apperrors.ErrValidation)
	}
	if len(req.Lines) == 0 {
		return nil, fmt.Errorf("%w: document needs at least one line", apperrors.ErrValidation)
	}
	if docType == domain.DocTypeQuotation && req.ValidUntil.IsZero() {
		return nil, fmt.Errorf("%w: quotation requires a validUntil date", apperrors.ErrValidation)
	}

	now := s.clock.Now()
	issueDate := req.IssueDate
	if issueDate.IsZero() {
		issueDate = now
	}
	rate, err := s.rateSvc.Resolve(ctx, req.CurrencyCode, s.baseCurrency, issueDate)
	if err != nil {
		return nil, err
	}

	documentID := uuid.NewString()
	lines, totals, err := s.buildLines(documentID, req.CurrencyCode, req.Lines, actor, now)
	if err != nil {
		return nil, err
	}

	doc := domain.Document{
		DocumentID:     documentID,
		DocumentType:   docType,
		DocumentNumber: req.DocumentNumber,
		Status:         domain.InitialStatus(docType),
		CounterpartyID: req.CounterpartyID,
		CurrencyCode:   req.CurrencyCode,
		ExchangeRate:   rate.Rate,
		IssueDate:      issueDate,
		DueDate:        req.DueDate,
		ValidUntil:     req.ValidUntil,
		Subtotal:       totals.Subtotal,
		DiscountAmount: totals.DiscountAmount,
		TaxAmount:      totals.TaxAmount,
		TotalAmount:    totals.TotalAmount,
		BalanceDue:     domain.Money{Currency: req.CurrencyCode},
		Notes:          req.Notes,
		AuditFields:    domain.AuditFields{CreatedAt: now, CreatedBy: actor, LastUpdatedAt: now, LastUpdatedBy: actor},
	}
	if err := s.docRepo.SaveDocument(ctx, doc, lines); err != nil {
		return nil, fmt.Errorf("failed to create document: %w", err)
	}

	logging.FromContext(ctx).Info("document created",
		slog.String("document_id", documentID),
		slog.String("document_type", string(docType)),
		slog.String("status", string(doc.Status)),
	)
	return &doc, nil
}

// buildLines computes all line components and document totals from raw input.
func (s *documentService) buildLines(documentID, currencyCode string, inputs []dto.DocumentLineInput, actor string, now time.Time) ([]domain.DocumentLine, dto.DocumentTotals, error) {
	audit := domain.AuditFields{CreatedAt: now, CreatedBy: actor, LastUpdatedAt: now, LastUpdatedBy: actor}
	lines := make([]domain.DocumentLine, 0, len(inputs))
	totals := dto.DocumentTotals{
		Subtotal:       domain.Money{Currency: currencyCode},
		DiscountAmount: domain.Money{Currency: currencyCode},
		TaxAmount:      domain.Money{Currency: currencyCode},
		TotalAmount:    domain.Money{Currency: currencyCode},
	}
	for i, input := range inputs {
		computed, err := computeLine(input.Quantity, domain.NewMoney(input.UnitPrice, currencyCode), input.DiscountPercent, input.TaxPercent)
		if err != nil {
			return nil, totals, fmt.Errorf("%w: line %d: %w", apperrors.ErrValidation, i+1, err)
		}
		lines = append(lines, domain.DocumentLine{
			LineID:          uuid.NewString(),
			DocumentID:      documentID,
			Position:        i + 1,
			ItemID:          input.ItemID,
			Description:     input.Description,
			Quantity:        input.Quantity,
			UnitPrice:       domain.NewMoney(input.UnitPrice, currencyCode),
			DiscountPercent: input.DiscountPercent,
			TaxPercent:      input.TaxPercent,
			Subtotal:        computed.Subtotal,
			DiscountAmount:  computed.DiscountAmount,
			TaxAmount:       computed.TaxAmount,
			Total:           computed.Total,
			AuditFields:     audit,
		})
		totals.Subtotal.Amount += computed.Subtotal.Amount
		totals.DiscountAmount.Amount += computed.DiscountAmount.Amount
		totals.TaxAmount.Amount += computed.TaxAmount.Amount
		totals.TotalAmount.Amount += computed.Total.Amount
	}
	return lines, totals, nil
}

// UpdateDocumentLines implements portssvc.DocumentWriterSvc.
func (s *documentService) UpdateDocumentLines(ctx context.Context, documentID string, inputs []dto.DocumentLineInput, actor string) (*domain.Document, error) {
	doc, err := s.docRepo.FindDocumentByID(ctx, documentID)
	if err != nil {
		return nil, err
	}
	if !doc.IsEditable() {
		return nil, fmt.Errorf("%w: %w: %s is %s", apperrors.ErrState, ErrDocumentFrozen, documentID, doc.Status)
	}
	if len(inputs) == 0 {
		return nil, fmt.Errorf("%w: document needs at least one line", apperrors.ErrValidation)
	}

	now := s.clock.Now()
	lines, totals, err := s.buildLines(documentID, doc.CurrencyCode, inputs, actor, now)
	if err != nil {
		return nil, err
	}
	doc.Subtotal = totals.Subtotal
	doc.DiscountAmount = totals.DiscountAmount
	doc.TaxAmount = totals.TaxAmount
	doc.TotalAmount = totals.TotalAmount
	doc.LastUpdatedAt = now
	doc.LastUpdatedBy = actor
	if err := s.docRepo.ReplaceLines(ctx, *doc, lines); err != nil {
		return nil, fmt.Errorf("failed to replace document lines: %w", err)
	}
	return doc, nil
}

// CreateInvoiceFromOrder implements portssvc.DocumentWriterSvc. The invoice
// copies prices and terms from the order; quantities are capped at what has
// been fulfilled but not yet invoiced.
func (s *documentService) CreateInvoiceFromOrder(ctx context.Context, orderID string, lineQtys []dto.LineQuantity, actor string) (*domain.Document, error) {
	tx, err := s.docRepo.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer s.docRepo.Rollback(ctx, tx)

	order, err := s.docRepo.FindDocumentByIDForUpdate(ctx, tx, orderID)
	if err != nil {
		return nil, err
	}
	if order.DocumentType != domain.DocTypeSalesOrder && order.DocumentType != domain.DocTypePurchaseOrder {
		return nil, fmt.Errorf("%w: cannot invoice a %s", apperrors.ErrValidation, order.DocumentType)
	}
	orderLines, err := s.docRepo.FindLinesByDocumentIDForUpdate(ctx, tx, orderID)
	if err != nil {
		return nil, err
	}
	linesByID := make(map[string]domain.DocumentLine, len(orderLines))
	for _, line := range orderLines {
		linesByID[line.LineID] = line
	}

	now := s.clock.Now()
	invoiceID := uuid.NewString()
	audit := domain.AuditFields{CreatedAt: now, CreatedBy: actor, LastUpdatedAt: now, LastUpdatedBy: actor}
	totals := dto.DocumentTotals{
		Subtotal:       domain.Money{Currency: order.CurrencyCode},
		DiscountAmount: domain.Money{Currency: order.CurrencyCode},
		TaxAmount:      domain.Money{Currency: order.CurrencyCode},
		TotalAmount:    domain.Money{Currency: order.CurrencyCode},
	}
	invoiceLines := make([]domain.DocumentLine, 0, len(lineQtys))
	for _, lq := range lineQtys {
		orderLine, ok := linesByID[lq.LineID]
		if !ok {
			return nil, fmt.Errorf("%w: line %s does not belong to order %s", apperrors.ErrValidation, lq.LineID, orderID)
		}
		if lq.Quantity.LessThanOrEqual(decimal.Zero) {
			return nil, fmt.Errorf("%w: invoiced quantity must be positive", apperrors.ErrValidation)
		}
		if lq.Quantity.GreaterThan(orderLine.UninvoicedQty()) {
			return nil, fmt.Errorf("%w: %w: line %s has %s uninvoiced, %s requested",
				apperrors.ErrState, ErrNothingToInvoice, lq.LineID, orderLine.UninvoicedQty(), lq.Quantity)
		}
		computed, err := computeLine(lq.Quantity, orderLine.UnitPrice, orderLine.DiscountPercent, orderLine.TaxPercent)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", apperrors.ErrValidation, err)
		}
		invoiceLines = append(invoiceLines, domain.DocumentLine{
			LineID:          uuid.NewString(),
			DocumentID:      invoiceID,
			Position:        len(invoiceLines) + 1,
			ItemID:          orderLine.ItemID,
			Description:     orderLine.Description,
			Quantity:        lq.Quantity,
			UnitPrice:       orderLine.UnitPrice,
			DiscountPercent: orderLine.DiscountPercent,
			TaxPercent:      orderLine.TaxPercent,
			Subtotal:        computed.Subtotal,
			DiscountAmount:  computed.DiscountAmount,
			TaxAmount:       computed.TaxAmount,
			Total:           computed.Total,
			AuditFields:     audit,
		})
		totals.Subtotal.Amount += computed.Subtotal.Amount
		totals.DiscountAmount.Amount += computed.DiscountAmount.Amount
		totals.TaxAmount.Amount += computed.TaxAmount.Amount
		totals.TotalAmount.Amount += computed.Total.Amount

		if err := s.docRepo.UpdateLineProgressInTx(ctx, tx, lq.LineID, decimal.Zero, lq.Quantity, actor, now); err != nil {
			return nil, fmt.Errorf("failed to record invoiced quantity: %w", err)
		}
	}
	if len(invoiceLines) == 0 {
		return nil, fmt.Errorf("%w: %w", apperrors.ErrState, ErrNothingToInvoice)
	}

	invoice := domain.Document{
		DocumentID:       invoiceID,
		DocumentType:     domain.DocTypeInvoice,
		DocumentNumber:   "INV-" + order.DocumentNumber,
		Status:           domain.StatusDraft,
		CounterpartyID:   order.CounterpartyID,
		CurrencyCode:     order.CurrencyCode,
		ExchangeRate:     order.ExchangeRate,
		IssueDate:        now,
		DueDate:          order.DueDate,
		LinkedDocumentID: order.DocumentID,
		Subtotal:         totals.Subtotal,
		DiscountAmount:   totals.DiscountAmount,
		TaxAmount:        totals.TaxAmount,
		TotalAmount:      totals.TotalAmount,
		BalanceDue:       domain.Money{Currency: order.CurrencyCode},
		AuditFields:      audit,
	}
	if err := s.docRepo.SaveDocumentInTx(ctx, tx, invoice, invoiceLines); err != nil {
		return nil, fmt.Errorf("failed to create invoice: %w", err)
	}
	if err := s.docRepo.Commit(ctx, tx); err != nil {
		return nil, err
	}
	return &invoice, nil
}

// Transition implements portssvc.DocumentTransitionerSvc.
func (s *documentService) Transition(ctx context.Context, documentID string, event domain.DocumentEvent, req dto.TransitionRequest, actor string) (*domain.Document, error) {
	tx, err := s.docRepo.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer s.docRepo.Rollback(ctx, tx)

	doc, err := s.TransitionInTx(ctx, tx, documentID, event, req, actor)
	if err != nil {
		return nil, err
	}
	if err := s.docRepo.Commit(ctx, tx); err != nil {
		return nil, err
	}
	return doc, nil
}

// TransitionInTx implements portssvc.DocumentTransitionerSvc. The document is
// the first lock taken; lines, accounts and stock lots follow in that order.
func (s *documentService) TransitionInTx(ctx context.Context, tx pgx.Tx, documentID string, event domain.DocumentEvent, req dto.TransitionRequest, actor string) (*domain.Document, error) {
	doc, err := s.docRepo.FindDocumentByIDForUpdate(ctx, tx, documentID)
	if err != nil {
		return nil, err
	}
	lines, err := s.docRepo.FindLinesByDocumentIDForUpdate(ctx, tx, documentID)
	if err != nil {
		return nil, err
	}

	doc, err = s.applyEvent(ctx, tx, doc, lines, event, req, actor)
	if err != nil {
		return nil, err
	}

	// Shipping or receiving the last open quantity completes the order
	// without a separate fulfill call.
	if event == domain.EventShip || event == domain.EventReceive {
		if doc.Status == domain.StatusProcessing {
			updated, err := s.docRepo.FindLinesByDocumentIDForUpdate(ctx, tx, documentID)
			if err != nil {
				return nil, err
			}
			if allFulfilled(updated) {
				doc, err = s.applyEvent(ctx, tx, doc, updated, domain.EventFulfill, dto.TransitionRequest{}, actor)
				if err != nil {
					return nil, err
				}
			}
		}
	}
	return doc, nil
}

// applyEvent runs one transition: guard, status update, hook, audit.
func (s *documentService) applyEvent(ctx context.Context, tx pgx.Tx, doc *domain.Document, lines []domain.DocumentLine, event domain.DocumentEvent, req dto.TransitionRequest, actor string) (*domain.Document, error) {
	table, err := s.transitionTable(doc.DocumentType)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", apperrors.ErrValidation, err)
	}
	rule, ok := table[transitionKey{doc.Status, event}]
	if !ok {
		return nil, fmt.Errorf("%w: %w: %s %s cannot %s",
			apperrors.ErrState, ErrIllegalTransition, doc.DocumentType, doc.Status, event)
	}

	now := s.clock.Now()
	tc := &transitionCtx{tx: tx, doc: doc, lines: lines, req: req, actor: actor, now: now}
	if rule.Guard != nil {
		if err := rule.Guard(ctx, tc); err != nil {
			return nil, err
		}
	}

	statusBefore := doc.Status
	if err := s.docRepo.UpdateStatusInTx(ctx, tx, doc.DocumentID, rule.To, actor, now); err != nil {
		return nil, fmt.Errorf("failed to update document status: %w", err)
	}
	doc.Status = rule.To
	doc.LastUpdatedAt = now
	doc.LastUpdatedBy = actor

	if rule.Hook != nil {
		if err := rule.Hook(ctx, tc); err != nil {
			return nil, err
		}
	}

	record := domain.AuditRecord{
		AuditID:      uuid.NewString(),
		EntityType:   referenceTypeDocument,
		EntityID:     doc.DocumentID,
		Action:       string(event),
		StatusBefore: string(statusBefore),
		StatusAfter:  string(rule.To),
		Reason:       req.Reason,
		Actor:        actor,
		RecordedAt:   now,
	}
	if err := s.auditRepo.SaveAuditRecordInTx(ctx, tx, record); err != nil {
		return nil, fmt.Errorf("failed to write audit record: %w", err)
	}

	logging.FromContext(ctx).Info("document transitioned",
		slog.String("document_id", doc.DocumentID),
		slog.String("document_type", string(doc.DocumentType)),
		slog.String("event", string(event)),
		slog.String("from", string(statusBefore)),
		slog.String("to", string(rule.To)),
	)
	return doc, nil
}

func allFulfilled(lines []domain.DocumentLine) bool {
	for _, line := range lines {
		if line.RemainingQty().GreaterThan(decimal.Zero) {
			return false
		}
	}
	return len(lines) > 0
}

// ---- guards ----

func (s *documentService) guardQuotationExpired(ctx context.Context, tc *transitionCtx) error {
	if tc.now.Before(tc.doc.ValidUntil) {
		return fmt.Errorf("%w: %w: quotation valid until %s",
			apperrors.ErrState, ErrPreconditionFailed, tc.doc.ValidUntil.Format(time.RFC3339))
	}
	return nil
}

// guardShipQuantities validates the requested line quantities against the
// open quantity on each order line. Shared by ship and receive.
func (s *documentService) guardShipQuantities(ctx context.Context, tc *transitionCtx) error {
	if len(tc.req.Lines) == 0 {
		return fmt.Errorf("%w: %w: no line quantities supplied", apperrors.ErrValidation, ErrPreconditionFailed)
	}
	if tc.req.Location == "" {
		return fmt.Errorf("%w: %w: stock location is required", apperrors.ErrValidation, ErrPreconditionFailed)
	}
	linesByID := make(map[string]domain.DocumentLine, len(tc.lines))
	for _, line := range tc.lines {
		linesByID[line.LineID] = line
	}
	for _, lq := range tc.req.Lines {
		line, ok := linesByID[lq.LineID]
		if !ok {
			return fmt.Errorf("%w: line %s does not belong to document %s", apperrors.ErrValidation, lq.LineID, tc.doc.DocumentID)
		}
		if lq.Quantity.LessThanOrEqual(decimal.Zero) {
			return fmt.Errorf("%w: %w: quantity must be positive", apperrors.ErrValidation, ErrPreconditionFailed)
		}
		if lq.Quantity.GreaterThan(line.RemainingQty()) {
			return fmt.Errorf("%w: %w: line %s has %s open, %s requested",
				apperrors.ErrState, ErrPreconditionFailed, lq.LineID, line.RemainingQty(), lq.Quantity)
		}
	}
	return nil
}

func (s *documentService) guardFullyFulfilled(ctx context.Context, tc *transitionCtx) error {
	if !allFulfilled(tc.lines) {
		return fmt.Errorf("%w: %w: open quantities remain", apperrors.ErrState, ErrPreconditionFailed)
	}
	return nil
}

func (s *documentService) guardInvoiceUnpaid(ctx context.Context, tc *transitionCtx) error {
	if tc.doc.BalanceDue.Amount != tc.doc.TotalAmount.Amount {
		return fmt.Errorf("%w: %w: invoice %s has allocations",
			apperrors.ErrState, ErrPreconditionFailed, tc.doc.DocumentID)
	}
	return nil
}

func (s *documentService) guardBalancePartial(ctx context.Context, tc *transitionCtx) error {
	if tc.doc.BalanceDue.IsZero() || tc.doc.BalanceDue.Amount == tc.doc.TotalAmount.Amount {
		return fmt.Errorf("%w: %w: balance %s does not indicate a partial payment",
			apperrors.ErrState, ErrPreconditionFailed, tc.doc.BalanceDue)
	}
	return nil
}

func (s *documentService) guardBalanceSettled(ctx context.Context, tc *transitionCtx) error {
	if !tc.doc.BalanceDue.IsZero() {
		return fmt.Errorf("%w: %w: balance %s still due",
			apperrors.ErrState, ErrPreconditionFailed, tc.doc.BalanceDue)
	}
	return nil
}

// ---- hooks ----

// hookConvertQuotation creates a sales order carrying the quotation's frozen
// prices and links the two documents.
func (s *documentService) hookConvertQuotation(ctx context.Context, tc *transitionCtx) error {
	orderID := uuid.NewString()
	audit := domain.AuditFields{CreatedAt: tc.now, CreatedBy: tc.actor, LastUpdatedAt: tc.now, LastUpdatedBy: tc.actor}
	orderLines := make([]domain.DocumentLine, 0, len(tc.lines))
	for i, line := range tc.lines {
		orderLine := line
		orderLine.LineID = uuid.NewString()
		orderLine.DocumentID = orderID
		orderLine.Position = i + 1
		orderLine.FulfilledQty = decimal.Zero
		orderLine.InvoicedQty = decimal.Zero
		orderLine.AuditFields = audit
		orderLines = append(orderLines, orderLine)
	}

	order := domain.Document{
		DocumentID:       orderID,
		DocumentType:     domain.DocTypeSalesOrder,
		DocumentNumber:   "SO-" + tc.doc.DocumentNumber,
		Status:           domain.StatusPending,
		CounterpartyID:   tc.doc.CounterpartyID,
		CurrencyCode:     tc.doc.CurrencyCode,
		ExchangeRate:     tc.doc.ExchangeRate,
		IssueDate:        tc.now,
		DueDate:          tc.doc.DueDate,
		LinkedDocumentID: tc.doc.DocumentID,
		Subtotal:         tc.doc.Subtotal,
		DiscountAmount:   tc.doc.DiscountAmount,
		TaxAmount:        tc.doc.TaxAmount,
		TotalAmount:      tc.doc.TotalAmount,
		BalanceDue:       domain.Money{Currency: tc.doc.CurrencyCode},
		Notes:            tc.doc.Notes,
		AuditFields:      audit,
	}
	if err := s.docRepo.SaveDocumentInTx(ctx, tc.tx, order, orderLines); err != nil {
		return fmt.Errorf("failed to create sales order from quotation: %w", err)
	}
	if err := s.docRepo.UpdateLinkedDocumentInTx(ctx, tc.tx, tc.doc.DocumentID, orderID, tc.actor, tc.now); err != nil {
		return fmt.Errorf("failed to link quotation to order: %w", err)
	}
	tc.doc.LinkedDocumentID = orderID
	return nil
}

// hookReserveOrderStock reserves open quantities at approval time so two
// approved orders cannot both promise the same stock. Requires a location.
func (s *documentService) hookReserveOrderStock(ctx context.Context, tc *transitionCtx) error {
	if tc.req.Location == "" {
		return fmt.Errorf("%w: %w: stock location is required to approve a sales order",
			apperrors.ErrValidation, ErrPreconditionFailed)
	}
	for _, line := range tc.lines {
		if err := s.inventorySvc.ReserveStockInTx(ctx, tc.tx, line.ItemID, tc.req.Location, line.RemainingQty(), tc.actor); err != nil {
			return err
		}
	}
	return nil
}

// hookReleaseOrderStock returns unshipped reservations when an approved order
// is cancelled.
func (s *documentService) hookReleaseOrderStock(ctx context.Context, tc *transitionCtx) error {
	if tc.req.Location == "" {
		return fmt.Errorf("%w: %w: stock location is required to cancel an approved order",
			apperrors.ErrValidation, ErrPreconditionFailed)
	}
	for _, line := range tc.lines {
		remaining := line.RemainingQty()
		if remaining.LessThanOrEqual(decimal.Zero) {
			continue
		}
		if err := s.inventorySvc.ReleaseReservationInTx(ctx, tc.tx, line.ItemID, tc.req.Location, remaining, tc.actor); err != nil {
			return err
		}
	}
	return nil
}

// hookShipLines consumes stock FIFO for each shipped line, records fulfilment
// progress and posts cost of goods sold from the historical lot costs.
func (s *documentService) hookShipLines(ctx context.Context, tc *transitionCtx) error {
	linesByID := make(map[string]domain.DocumentLine, len(tc.lines))
	for _, line := range tc.lines {
		linesByID[line.LineID] = line
	}

	totalCost := domain.Money{Currency: s.baseCurrency}
	for _, lq := range tc.req.Lines {
		line := linesByID[lq.LineID]
		if err := s.inventorySvc.ReleaseReservationInTx(ctx, tc.tx, line.ItemID, tc.req.Location, lq.Quantity, tc.actor); err != nil {
			return err
		}
		consumptions, err := s.inventorySvc.ConsumeStockInTx(ctx, tc.tx, dto.ConsumeStockRequest{
			ItemID:        line.ItemID,
			Location:      tc.req.Location,
			Quantity:      lq.Quantity,
			ReferenceType: referenceTypeDocument,
			ReferenceID:   tc.doc.DocumentID,
		}, tc.actor)
		if err != nil {
			return err
		}
		totalCost.Amount += domain.TotalCost(consumptions, s.baseCurrency).Amount

		if err := s.docRepo.UpdateLineProgressInTx(ctx, tc.tx, lq.LineID, lq.Quantity, decimal.Zero, tc.actor, tc.now); err != nil {
			return fmt.Errorf("failed to record fulfilled quantity: %w", err)
		}
	}

	// Lot costs are carried in the base currency, so the posting is too.
	event := domain.LedgerEvent{
		Type:          domain.GoodsShipped,
		ReferenceType: referenceTypeDocument,
		ReferenceID:   tc.doc.DocumentID,
		Description:   "Goods shipped for order " + tc.doc.DocumentNumber,
		CurrencyCode:  s.baseCurrency,
		CostAmount:    totalCost,
		OccurredAt:    tc.now,
		Actor:         tc.actor,
	}
	if _, err := s.ledgerSvc.PostEventInTx(ctx, tc.tx, event); err != nil {
		return err
	}
	return nil
}

// hookReceiveLines creates costed lots for each received line, records
// progress and accrues the inventory value. Lot costs come from the order's
// unit prices, converted to the base currency through the frozen rate.
func (s *documentService) hookReceiveLines(ctx context.Context, tc *transitionCtx) error {
	linesByID := make(map[string]domain.DocumentLine, len(tc.lines))
	for _, line := range tc.lines {
		linesByID[line.LineID] = line
	}

	totalCost := domain.Money{Currency: s.baseCurrency}
	for _, lq := range tc.req.Lines {
		line := linesByID[lq.LineID]
		unitCostBase := decimal.NewFromInt(line.UnitPrice.Amount).Mul(tc.doc.ExchangeRate).RoundBank(0).IntPart()
		lot, err := s.inventorySvc.ReceiveStockInTx(ctx, tc.tx, dto.ReceiveStockRequest{
			ItemID:        line.ItemID,
			Location:      tc.req.Location,
			Quantity:      lq.Quantity,
			UnitCost:      unitCostBase,
			ReferenceType: referenceTypeDocument,
			ReferenceID:   tc.doc.DocumentID,
		}, tc.actor)
		if err != nil {
			return err
		}
		totalCost.Amount += lot.UnitCost.MulScalar(lq.Quantity).Amount

		if err := s.docRepo.UpdateLineProgressInTx(ctx, tc.tx, lq.LineID, lq.Quantity, decimal.Zero, tc.actor, tc.now); err != nil {
			return fmt.Errorf("failed to record received quantity: %w", err)
		}
	}

	event := domain.LedgerEvent{
		Type:          domain.GoodsReceived,
		ReferenceType: referenceTypeDocument,
		ReferenceID:   tc.doc.DocumentID,
		Description:   "Goods received for order " + tc.doc.DocumentNumber,
		CurrencyCode:  s.baseCurrency,
		CostAmount:    totalCost,
		OccurredAt:    tc.now,
		Actor:         tc.actor,
	}
	if _, err := s.ledgerSvc.PostEventInTx(ctx, tc.tx, event); err != nil {
		return err
	}
	return nil
}

// hookIssueInvoice posts the issuance entry and opens the balance due. An
// invoice raised against a purchase order books the supplier side.
func (s *documentService) hookIssueInvoice(ctx context.Context, tc *transitionCtx) error {
	eventType := domain.CustomerInvoiceIssued
	description := "Customer invoice " + tc.doc.DocumentNumber
	if supplier, err := isSupplierInvoice(ctx, s.docRepo, tc.doc); err != nil {
		return err
	} else if supplier {
		eventType = domain.SupplierInvoiceReceived
		description = "Supplier invoice " + tc.doc.DocumentNumber
	}

	net := domain.NewMoney(tc.doc.Subtotal.Amount-tc.doc.DiscountAmount.Amount, tc.doc.CurrencyCode)
	event := domain.LedgerEvent{
		Type:          eventType,
		ReferenceType: referenceTypeDocument,
		ReferenceID:   tc.doc.DocumentID,
		Description:   description,
		CurrencyCode:  tc.doc.CurrencyCode,
		ExchangeRate:  tc.doc.ExchangeRate,
		NetAmount:     net,
		TaxAmount:     tc.doc.TaxAmount,
		GrossAmount:   tc.doc.TotalAmount,
		OccurredAt:    tc.now,
		Actor:         tc.actor,
	}
	if _, err := s.ledgerSvc.PostEventInTx(ctx, tc.tx, event); err != nil {
		return err
	}

	if err := s.docRepo.UpdateBalanceDueInTx(ctx, tc.tx, tc.doc.DocumentID, tc.doc.TotalAmount, tc.actor, tc.now); err != nil {
		return fmt.Errorf("failed to open balance due: %w", err)
	}
	tc.doc.BalanceDue = tc.doc.TotalAmount
	return nil
}

// hookVoidInvoice reverses the issuance entry and closes the balance.
func (s *documentService) hookVoidInvoice(ctx context.Context, tc *transitionCtx) error {
	eventType := domain.CustomerInvoiceIssued
	if supplier, err := isSupplierInvoice(ctx, s.docRepo, tc.doc); err != nil {
		return err
	} else if supplier {
		eventType = domain.SupplierInvoiceReceived
	}

	entry, err := s.journalReader.FindEntryByReference(ctx, referenceTypeDocument, tc.doc.DocumentID, eventType)
	if err != nil {
		return fmt.Errorf("failed to find issuance entry for invoice %s: %w", tc.doc.DocumentID, err)
	}
	if _, err := s.ledgerSvc.ReverseEntryInTx(ctx, tc.tx, entry.EntryID, tc.actor); err != nil {
		return err
	}

	zero := domain.Money{Currency: tc.doc.CurrencyCode}
	if err := s.docRepo.UpdateBalanceDueInTx(ctx, tc.tx, tc.doc.DocumentID, zero, tc.actor, tc.now); err != nil {
		return fmt.Errorf("failed to close balance due: %w", err)
	}
	tc.doc.BalanceDue = zero
	return nil
}

// isSupplierInvoice reports whether the invoice was raised against a purchase
// order, which flips the issuance posting to the supplier side. Shared with
// the payment allocator, which matches payment direction to the invoice side.
func isSupplierInvoice(ctx context.Context, docs portsrepo.DocumentReader, doc *domain.Document) (bool, error) {
	if doc.LinkedDocumentID == "" {
		return false, nil
	}
	linked, err := docs.FindDocumentByID(ctx, doc.LinkedDocumentID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return false, nil
		}
		return false, err
	}
	return linked.DocumentType == domain.DocTypePurchaseOrder, nil
}
