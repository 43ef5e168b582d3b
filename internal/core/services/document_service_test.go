package services_test

import (
	"context"
	"testing"
	"time"

	"github.com/bizledger/erp_core/internal/apperrors"
	"github.com/bizledger/erp_core/internal/core/domain"
	portssvc "github.com/bizledger/erp_core/internal/core/ports/services"
	"github.com/bizledger/erp_core/internal/core/services"
	"github.com/bizledger/erp_core/internal/dto"
	"github.com/bizledger/erp_core/internal/platform/clock"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"
)

type DocumentServiceTestSuite struct {
	suite.Suite
	mockDocRepo     *MockDocumentRepository
	mockJournalRepo *MockJournalRepository
	mockAuditRepo   *MockAuditRepository
	mockRateSvc     *MockExchangeRateService
	mockInventory   *MockInventoryTxSvc
	mockLedger      *MockLedgerPoster
	now             time.Time
	service         portssvc.DocumentSvcFacade
}

func (suite *DocumentServiceTestSuite) SetupTest() {
	suite.mockDocRepo = new(MockDocumentRepository)
	suite.mockJournalRepo = new(MockJournalRepository)
	suite.mockAuditRepo = new(MockAuditRepository)
	suite.mockRateSvc = new(MockExchangeRateService)
	suite.mockInventory = new(MockInventoryTxSvc)
	suite.mockLedger = new(MockLedgerPoster)
	suite.now = time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC)
	suite.service = services.NewDocumentService(
		suite.mockDocRepo,
		suite.mockJournalRepo,
		suite.mockAuditRepo,
		suite.mockRateSvc,
		suite.mockInventory,
		suite.mockLedger,
		"USD",
		clock.FixedClock{Instant: suite.now},
	)
}

func (suite *DocumentServiceTestSuite) expectAudit() {
	suite.mockAuditRepo.On("SaveAuditRecordInTx", mock.Anything, mock.Anything, mock.AnythingOfType("domain.AuditRecord")).Return(nil)
}

// orderWithLine builds an order document plus one 10-unit line.
func (suite *DocumentServiceTestSuite) orderWithLine(docType domain.DocumentType, status domain.DocumentStatus, fulfilled int64) (*domain.Document, []domain.DocumentLine) {
	doc := &domain.Document{
		DocumentID:     "doc-1",
		DocumentType:   docType,
		DocumentNumber: "SO-100",
		Status:         status,
		CounterpartyID: "cp-1",
		CurrencyCode:   "USD",
		ExchangeRate:   decimal.NewFromInt(1),
		IssueDate:      suite.now,
		Subtotal:       domain.NewMoney(100000, "USD"),
		TotalAmount:    domain.NewMoney(100000, "USD"),
		DiscountAmount: domain.Money{Currency: "USD"},
		TaxAmount:      domain.Money{Currency: "USD"},
		BalanceDue:     domain.Money{Currency: "USD"},
	}
	lines := []domain.DocumentLine{
		{
			LineID:       "line-1",
			DocumentID:   "doc-1",
			Position:     1,
			ItemID:       "item-1",
			Quantity:     decimal.NewFromInt(10),
			UnitPrice:    domain.NewMoney(10000, "USD"),
			Subtotal:     domain.NewMoney(100000, "USD"),
			Total:        domain.NewMoney(100000, "USD"),
			FulfilledQty: decimal.NewFromInt(fulfilled),
		},
	}
	return doc, lines
}

func (suite *DocumentServiceTestSuite) TestCreateDocument_FreezesRateAndComputesTotals() {
	rate := &domain.ExchangeRate{
		FromCurrencyCode: "EUR",
		ToCurrencyCode:   "USD",
		Rate:             decimal.RequireFromString("1.10"),
	}
	suite.mockRateSvc.On("Resolve", mock.Anything, "EUR", "USD", mock.AnythingOfType("time.Time")).Return(rate, nil).Once()

	var savedDoc domain.Document
	var savedLines []domain.DocumentLine
	suite.mockDocRepo.On("SaveDocument", mock.Anything, mock.AnythingOfType("domain.Document"), mock.Anything).
		Run(func(args mock.Arguments) {
			savedDoc = args.Get(1).(domain.Document)
			savedLines = args.Get(2).([]domain.DocumentLine)
		}).
		Return(nil).Once()

	doc, err := suite.service.CreateDocument(context.Background(), dto.CreateDocumentRequest{
		DocumentType:   "INVOICE",
		DocumentNumber: "INV-1",
		CounterpartyID: "cp-1",
		CurrencyCode:   "EUR",
		Lines: []dto.DocumentLineInput{
			{ItemID: "item-1", Quantity: decimal.NewFromInt(10), UnitPrice: 10000, DiscountPercent: decimal.NewFromInt(10), TaxPercent: decimal.NewFromInt(15)},
		},
	}, "user-1")

	suite.Require().NoError(err)
	suite.Equal(domain.StatusDraft, doc.Status)
	suite.True(doc.ExchangeRate.Equal(decimal.RequireFromString("1.10")), "rate frozen at creation")
	suite.Equal(int64(100000), savedDoc.Subtotal.Amount)
	suite.Equal(int64(10000), savedDoc.DiscountAmount.Amount)
	suite.Equal(int64(13500), savedDoc.TaxAmount.Amount)
	suite.Equal(int64(103500), savedDoc.TotalAmount.Amount)
	suite.Require().Len(savedLines, 1)
	suite.Equal(1, savedLines[0].Position)
}

func (suite *DocumentServiceTestSuite) TestCreateDocument_Validation() {
	_, err := suite.service.CreateDocument(context.Background(), dto.CreateDocumentRequest{
		DocumentType: "MEMO", CurrencyCode: "USD",
		Lines: []dto.DocumentLineInput{{Quantity: decimal.NewFromInt(1), UnitPrice: 100}},
	}, "user-1")
	suite.ErrorIs(err, services.ErrUnknownDocumentType)

	_, err = suite.service.CreateDocument(context.Background(), dto.CreateDocumentRequest{
		DocumentType: "INVOICE", CurrencyCode: "USD",
	}, "user-1")
	suite.ErrorIs(err, apperrors.ErrValidation)

	// Quotations need an expiry cutoff.
	_, err = suite.service.CreateDocument(context.Background(), dto.CreateDocumentRequest{
		DocumentType: "QUOTATION", CurrencyCode: "USD",
		Lines: []dto.DocumentLineInput{{Quantity: decimal.NewFromInt(1), UnitPrice: 100}},
	}, "user-1")
	suite.ErrorIs(err, apperrors.ErrValidation)
}

func (suite *DocumentServiceTestSuite) TestUpdateDocumentLines_FrozenDocument() {
	doc, _ := suite.orderWithLine(domain.DocTypeInvoice, domain.StatusSent, 0)
	suite.mockDocRepo.On("FindDocumentByID", mock.Anything, "doc-1").Return(doc, nil).Once()

	_, err := suite.service.UpdateDocumentLines(context.Background(), "doc-1", []dto.DocumentLineInput{
		{ItemID: "item-1", Quantity: decimal.NewFromInt(1), UnitPrice: 100},
	}, "user-1")

	suite.ErrorIs(err, services.ErrDocumentFrozen)
	suite.ErrorIs(err, apperrors.ErrState)
	suite.mockDocRepo.AssertNotCalled(suite.T(), "ReplaceLines", mock.Anything, mock.Anything, mock.Anything)
}

func (suite *DocumentServiceTestSuite) TestTransition_IllegalEvent() {
	doc, lines := suite.orderWithLine(domain.DocTypeInvoice, domain.StatusDraft, 0)
	suite.mockDocRepo.expectTx()
	suite.mockDocRepo.On("FindDocumentByIDForUpdate", mock.Anything, mock.Anything, "doc-1").Return(doc, nil).Once()
	suite.mockDocRepo.On("FindLinesByDocumentIDForUpdate", mock.Anything, mock.Anything, "doc-1").Return(lines, nil).Once()

	_, err := suite.service.Transition(context.Background(), "doc-1", domain.EventApprove, dto.TransitionRequest{}, "user-1")

	suite.ErrorIs(err, services.ErrIllegalTransition)
	suite.ErrorIs(err, apperrors.ErrState)
	suite.mockDocRepo.AssertNotCalled(suite.T(), "UpdateStatusInTx", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func (suite *DocumentServiceTestSuite) TestTransition_EventNotIdempotent() {
	// A SENT quotation cannot absorb send again.
	doc, lines := suite.orderWithLine(domain.DocTypeQuotation, domain.StatusSent, 0)
	suite.mockDocRepo.expectTx()
	suite.mockDocRepo.On("FindDocumentByIDForUpdate", mock.Anything, mock.Anything, "doc-1").Return(doc, nil).Once()
	suite.mockDocRepo.On("FindLinesByDocumentIDForUpdate", mock.Anything, mock.Anything, "doc-1").Return(lines, nil).Once()

	_, err := suite.service.Transition(context.Background(), "doc-1", domain.EventSend, dto.TransitionRequest{}, "user-1")

	suite.ErrorIs(err, services.ErrIllegalTransition)
}

func (suite *DocumentServiceTestSuite) TestTransition_QuotationExpiry() {
	doc, lines := suite.orderWithLine(domain.DocTypeQuotation, domain.StatusSent, 0)
	doc.ValidUntil = suite.now.Add(24 * time.Hour)
	suite.mockDocRepo.expectTx()
	suite.mockDocRepo.On("FindDocumentByIDForUpdate", mock.Anything, mock.Anything, "doc-1").Return(doc, nil).Once()
	suite.mockDocRepo.On("FindLinesByDocumentIDForUpdate", mock.Anything, mock.Anything, "doc-1").Return(lines, nil).Once()

	// Still valid: the guard refuses.
	_, err := suite.service.Transition(context.Background(), "doc-1", domain.EventExpire, dto.TransitionRequest{}, "user-1")
	suite.ErrorIs(err, services.ErrPreconditionFailed)

	// Past the cutoff: the same event lands.
	expired, expiredLines := suite.orderWithLine(domain.DocTypeQuotation, domain.StatusSent, 0)
	expired.ValidUntil = suite.now.Add(-time.Minute)
	suite.mockDocRepo.On("FindDocumentByIDForUpdate", mock.Anything, mock.Anything, "doc-1").Return(expired, nil).Once()
	suite.mockDocRepo.On("FindLinesByDocumentIDForUpdate", mock.Anything, mock.Anything, "doc-1").Return(expiredLines, nil).Once()
	suite.mockDocRepo.On("UpdateStatusInTx", mock.Anything, mock.Anything, "doc-1", domain.StatusExpired, "user-1", suite.now).Return(nil).Once()
	suite.expectAudit()

	result, err := suite.service.Transition(context.Background(), "doc-1", domain.EventExpire, dto.TransitionRequest{}, "user-1")
	suite.Require().NoError(err)
	suite.Equal(domain.StatusExpired, result.Status)
}

func (suite *DocumentServiceTestSuite) TestTransition_ConvertQuotationCreatesOrder() {
	doc, lines := suite.orderWithLine(domain.DocTypeQuotation, domain.StatusAccepted, 0)
	doc.DocumentNumber = "Q-100"
	suite.mockDocRepo.expectTx()
	suite.mockDocRepo.On("FindDocumentByIDForUpdate", mock.Anything, mock.Anything, "doc-1").Return(doc, nil).Once()
	suite.mockDocRepo.On("FindLinesByDocumentIDForUpdate", mock.Anything, mock.Anything, "doc-1").Return(lines, nil).Once()
	suite.mockDocRepo.On("UpdateStatusInTx", mock.Anything, mock.Anything, "doc-1", domain.StatusConverted, "user-1", suite.now).Return(nil).Once()

	var savedOrder domain.Document
	suite.mockDocRepo.On("SaveDocumentInTx", mock.Anything, mock.Anything, mock.AnythingOfType("domain.Document"), mock.Anything).
		Run(func(args mock.Arguments) { savedOrder = args.Get(2).(domain.Document) }).
		Return(nil).Once()
	suite.mockDocRepo.On("UpdateLinkedDocumentInTx", mock.Anything, mock.Anything, "doc-1", mock.AnythingOfType("string"), "user-1", suite.now).Return(nil).Once()
	suite.expectAudit()

	result, err := suite.service.Transition(context.Background(), "doc-1", domain.EventConvert, dto.TransitionRequest{}, "user-1")

	suite.Require().NoError(err)
	suite.Equal(domain.StatusConverted, result.Status)
	suite.Equal(domain.DocTypeSalesOrder, savedOrder.DocumentType)
	suite.Equal("SO-Q-100", savedOrder.DocumentNumber)
	suite.Equal(domain.StatusPending, savedOrder.Status)
	suite.Equal("doc-1", savedOrder.LinkedDocumentID)
	suite.True(savedOrder.ExchangeRate.Equal(doc.ExchangeRate), "order keeps the quotation's frozen rate")
	suite.Equal(result.LinkedDocumentID, savedOrder.DocumentID)
}

func (suite *DocumentServiceTestSuite) TestTransition_ShipRejectsOverQuantity() {
	doc, lines := suite.orderWithLine(domain.DocTypeSalesOrder, domain.StatusApproved, 0)
	suite.mockDocRepo.expectTx()
	suite.mockDocRepo.On("FindDocumentByIDForUpdate", mock.Anything, mock.Anything, "doc-1").Return(doc, nil).Once()
	suite.mockDocRepo.On("FindLinesByDocumentIDForUpdate", mock.Anything, mock.Anything, "doc-1").Return(lines, nil).Once()

	_, err := suite.service.Transition(context.Background(), "doc-1", domain.EventShip, dto.TransitionRequest{
		Location: "WH1",
		Lines:    []dto.LineQuantity{{LineID: "line-1", Quantity: decimal.NewFromInt(12)}},
	}, "user-1")

	suite.ErrorIs(err, services.ErrPreconditionFailed)
	suite.ErrorIs(err, apperrors.ErrState)
	suite.mockInventory.AssertNotCalled(suite.T(), "ConsumeStockInTx", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func (suite *DocumentServiceTestSuite) TestTransition_PartialShipStaysProcessing() {
	doc, lines := suite.orderWithLine(domain.DocTypeSalesOrder, domain.StatusApproved, 0)
	suite.mockDocRepo.expectTx()
	suite.mockDocRepo.On("FindDocumentByIDForUpdate", mock.Anything, mock.Anything, "doc-1").Return(doc, nil).Once()
	// First read feeds the guard; the re-read after the hook still shows 6
	// open units, so the order stays PROCESSING.
	_, afterShip := suite.orderWithLine(domain.DocTypeSalesOrder, domain.StatusProcessing, 4)
	suite.mockDocRepo.On("FindLinesByDocumentIDForUpdate", mock.Anything, mock.Anything, "doc-1").Return(lines, nil).Once()
	suite.mockDocRepo.On("FindLinesByDocumentIDForUpdate", mock.Anything, mock.Anything, "doc-1").Return(afterShip, nil).Once()
	suite.mockDocRepo.On("UpdateStatusInTx", mock.Anything, mock.Anything, "doc-1", domain.StatusProcessing, "user-1", suite.now).Return(nil).Once()
	suite.mockDocRepo.On("UpdateLineProgressInTx", mock.Anything, mock.Anything, "line-1", mock.Anything, mock.Anything, "user-1", suite.now).
		Run(func(args mock.Arguments) {
			suite.True(args.Get(3).(decimal.Decimal).Equal(decimal.NewFromInt(4)), "fulfilled delta")
			suite.True(args.Get(4).(decimal.Decimal).IsZero(), "no invoiced delta on ship")
		}).
		Return(nil).Once()
	suite.expectAudit()

	suite.mockInventory.On("ReleaseReservationInTx", mock.Anything, mock.Anything, "item-1", "WH1", mock.Anything, "user-1").Return(nil).Once()
	consumptions := []domain.LotConsumption{{
		LotID:    "lot-a",
		QtyTaken: decimal.NewFromInt(4),
		UnitCost: domain.NewMoney(1000, "USD"),
		Cost:     domain.NewMoney(4000, "USD"),
	}}
	suite.mockInventory.On("ConsumeStockInTx", mock.Anything, mock.Anything, mock.AnythingOfType("dto.ConsumeStockRequest"), "user-1").Return(consumptions, nil).Once()

	var postedEvent domain.LedgerEvent
	suite.mockLedger.On("PostEventInTx", mock.Anything, mock.Anything, mock.AnythingOfType("domain.LedgerEvent")).
		Run(func(args mock.Arguments) { postedEvent = args.Get(2).(domain.LedgerEvent) }).
		Return(&domain.JournalEntry{EntryID: "entry-1"}, nil).Once()

	result, err := suite.service.Transition(context.Background(), "doc-1", domain.EventShip, dto.TransitionRequest{
		Location: "WH1",
		Lines:    []dto.LineQuantity{{LineID: "line-1", Quantity: decimal.NewFromInt(4)}},
	}, "user-1")

	suite.Require().NoError(err)
	suite.Equal(domain.StatusProcessing, result.Status)
	suite.Equal(domain.GoodsShipped, postedEvent.Type)
	suite.Equal(int64(4000), postedEvent.CostAmount.Amount)
	suite.Equal("USD", postedEvent.CurrencyCode, "cost posts in the base currency")
}

func (suite *DocumentServiceTestSuite) TestTransition_FinalShipCompletesOrder() {
	doc, lines := suite.orderWithLine(domain.DocTypeSalesOrder, domain.StatusApproved, 6)
	suite.mockDocRepo.expectTx()
	suite.mockDocRepo.On("FindDocumentByIDForUpdate", mock.Anything, mock.Anything, "doc-1").Return(doc, nil).Once()
	_, fullyShipped := suite.orderWithLine(domain.DocTypeSalesOrder, domain.StatusProcessing, 10)
	suite.mockDocRepo.On("FindLinesByDocumentIDForUpdate", mock.Anything, mock.Anything, "doc-1").Return(lines, nil).Once()
	suite.mockDocRepo.On("FindLinesByDocumentIDForUpdate", mock.Anything, mock.Anything, "doc-1").Return(fullyShipped, nil).Once()
	suite.mockDocRepo.On("UpdateStatusInTx", mock.Anything, mock.Anything, "doc-1", domain.StatusProcessing, "user-1", suite.now).Return(nil).Once()
	suite.mockDocRepo.On("UpdateStatusInTx", mock.Anything, mock.Anything, "doc-1", domain.StatusCompleted, "user-1", suite.now).Return(nil).Once()
	suite.mockDocRepo.On("UpdateLineProgressInTx", mock.Anything, mock.Anything, "line-1", mock.Anything, mock.Anything, "user-1", suite.now).Return(nil).Once()
	suite.expectAudit()

	suite.mockInventory.On("ReleaseReservationInTx", mock.Anything, mock.Anything, "item-1", "WH1", mock.Anything, "user-1").Return(nil).Once()
	suite.mockInventory.On("ConsumeStockInTx", mock.Anything, mock.Anything, mock.Anything, "user-1").
		Return([]domain.LotConsumption{{LotID: "lot-a", QtyTaken: decimal.NewFromInt(4), Cost: domain.NewMoney(4000, "USD")}}, nil).Once()
	suite.mockLedger.On("PostEventInTx", mock.Anything, mock.Anything, mock.Anything).Return(&domain.JournalEntry{EntryID: "entry-1"}, nil).Once()

	result, err := suite.service.Transition(context.Background(), "doc-1", domain.EventShip, dto.TransitionRequest{
		Location: "WH1",
		Lines:    []dto.LineQuantity{{LineID: "line-1", Quantity: decimal.NewFromInt(4)}},
	}, "user-1")

	suite.Require().NoError(err)
	suite.Equal(domain.StatusCompleted, result.Status, "shipping the last open quantity completes the order")
	suite.mockDocRepo.AssertExpectations(suite.T())
}

func (suite *DocumentServiceTestSuite) TestTransition_ApproveReservesStock() {
	doc, lines := suite.orderWithLine(domain.DocTypeSalesOrder, domain.StatusPending, 0)
	suite.mockDocRepo.expectTx()
	suite.mockDocRepo.On("FindDocumentByIDForUpdate", mock.Anything, mock.Anything, "doc-1").Return(doc, nil).Once()
	suite.mockDocRepo.On("FindLinesByDocumentIDForUpdate", mock.Anything, mock.Anything, "doc-1").Return(lines, nil).Once()
	suite.mockDocRepo.On("UpdateStatusInTx", mock.Anything, mock.Anything, "doc-1", domain.StatusApproved, "user-1", suite.now).Return(nil).Once()
	suite.expectAudit()
	suite.mockInventory.On("ReserveStockInTx", mock.Anything, mock.Anything, "item-1", "WH1", mock.Anything, "user-1").
		Run(func(args mock.Arguments) {
			suite.True(args.Get(4).(decimal.Decimal).Equal(decimal.NewFromInt(10)))
		}).
		Return(nil).Once()

	_, err := suite.service.Transition(context.Background(), "doc-1", domain.EventApprove, dto.TransitionRequest{Location: "WH1"}, "user-1")

	suite.Require().NoError(err)
	suite.mockInventory.AssertExpectations(suite.T())
}

func (suite *DocumentServiceTestSuite) TestTransition_ApproveWithoutLocationFails() {
	doc, lines := suite.orderWithLine(domain.DocTypeSalesOrder, domain.StatusPending, 0)
	suite.mockDocRepo.expectTx()
	suite.mockDocRepo.On("FindDocumentByIDForUpdate", mock.Anything, mock.Anything, "doc-1").Return(doc, nil).Once()
	suite.mockDocRepo.On("FindLinesByDocumentIDForUpdate", mock.Anything, mock.Anything, "doc-1").Return(lines, nil).Once()
	suite.mockDocRepo.On("UpdateStatusInTx", mock.Anything, mock.Anything, "doc-1", domain.StatusApproved, "user-1", suite.now).Return(nil).Once()

	_, err := suite.service.Transition(context.Background(), "doc-1", domain.EventApprove, dto.TransitionRequest{}, "user-1")

	suite.ErrorIs(err, services.ErrPreconditionFailed)
	suite.mockDocRepo.AssertNotCalled(suite.T(), "Commit", mock.Anything, mock.Anything)
}

func (suite *DocumentServiceTestSuite) TestTransition_SendInvoicePostsIssuance() {
	doc, lines := suite.orderWithLine(domain.DocTypeInvoice, domain.StatusDraft, 0)
	doc.DocumentNumber = "INV-1"
	doc.TaxAmount = domain.NewMoney(13500, "USD")
	doc.Subtotal = domain.NewMoney(100000, "USD")
	doc.DiscountAmount = domain.NewMoney(10000, "USD")
	doc.TotalAmount = domain.NewMoney(103500, "USD")

	suite.mockDocRepo.expectTx()
	suite.mockDocRepo.On("FindDocumentByIDForUpdate", mock.Anything, mock.Anything, "doc-1").Return(doc, nil).Once()
	suite.mockDocRepo.On("FindLinesByDocumentIDForUpdate", mock.Anything, mock.Anything, "doc-1").Return(lines, nil).Once()
	suite.mockDocRepo.On("UpdateStatusInTx", mock.Anything, mock.Anything, "doc-1", domain.StatusSent, "user-1", suite.now).Return(nil).Once()
	suite.mockDocRepo.On("UpdateBalanceDueInTx", mock.Anything, mock.Anything, "doc-1", domain.NewMoney(103500, "USD"), "user-1", suite.now).Return(nil).Once()
	suite.expectAudit()

	var postedEvent domain.LedgerEvent
	suite.mockLedger.On("PostEventInTx", mock.Anything, mock.Anything, mock.AnythingOfType("domain.LedgerEvent")).
		Run(func(args mock.Arguments) { postedEvent = args.Get(2).(domain.LedgerEvent) }).
		Return(&domain.JournalEntry{EntryID: "entry-1"}, nil).Once()

	result, err := suite.service.Transition(context.Background(), "doc-1", domain.EventSend, dto.TransitionRequest{}, "user-1")

	suite.Require().NoError(err)
	suite.Equal(domain.StatusSent, result.Status)
	suite.Equal(domain.NewMoney(103500, "USD"), result.BalanceDue, "balance opens at the full total")
	suite.Equal(domain.CustomerInvoiceIssued, postedEvent.Type)
	suite.Equal(int64(90000), postedEvent.NetAmount.Amount, "net is subtotal minus discount")
	suite.Equal(int64(13500), postedEvent.TaxAmount.Amount)
	suite.Equal(int64(103500), postedEvent.GrossAmount.Amount)
}

func (suite *DocumentServiceTestSuite) TestTransition_SendPOInvoicePostsSupplierSide() {
	doc, lines := suite.orderWithLine(domain.DocTypeInvoice, domain.StatusDraft, 0)
	doc.LinkedDocumentID = "po-1"
	suite.mockDocRepo.expectTx()
	suite.mockDocRepo.On("FindDocumentByIDForUpdate", mock.Anything, mock.Anything, "doc-1").Return(doc, nil).Once()
	suite.mockDocRepo.On("FindLinesByDocumentIDForUpdate", mock.Anything, mock.Anything, "doc-1").Return(lines, nil).Once()
	suite.mockDocRepo.On("FindDocumentByID", mock.Anything, "po-1").Return(&domain.Document{
		DocumentID:   "po-1",
		DocumentType: domain.DocTypePurchaseOrder,
	}, nil).Once()
	suite.mockDocRepo.On("UpdateStatusInTx", mock.Anything, mock.Anything, "doc-1", domain.StatusSent, "user-1", suite.now).Return(nil).Once()
	suite.mockDocRepo.On("UpdateBalanceDueInTx", mock.Anything, mock.Anything, "doc-1", mock.Anything, "user-1", suite.now).Return(nil).Once()
	suite.expectAudit()

	var postedEvent domain.LedgerEvent
	suite.mockLedger.On("PostEventInTx", mock.Anything, mock.Anything, mock.AnythingOfType("domain.LedgerEvent")).
		Run(func(args mock.Arguments) { postedEvent = args.Get(2).(domain.LedgerEvent) }).
		Return(&domain.JournalEntry{EntryID: "entry-1"}, nil).Once()

	_, err := suite.service.Transition(context.Background(), "doc-1", domain.EventSend, dto.TransitionRequest{}, "user-1")

	suite.Require().NoError(err)
	suite.Equal(domain.SupplierInvoiceReceived, postedEvent.Type)
}

func (suite *DocumentServiceTestSuite) TestTransition_VoidReversesIssuance() {
	doc, lines := suite.orderWithLine(domain.DocTypeInvoice, domain.StatusSent, 0)
	doc.BalanceDue = doc.TotalAmount
	suite.mockDocRepo.expectTx()
	suite.mockDocRepo.On("FindDocumentByIDForUpdate", mock.Anything, mock.Anything, "doc-1").Return(doc, nil).Once()
	suite.mockDocRepo.On("FindLinesByDocumentIDForUpdate", mock.Anything, mock.Anything, "doc-1").Return(lines, nil).Once()
	suite.mockDocRepo.On("UpdateStatusInTx", mock.Anything, mock.Anything, "doc-1", domain.StatusCancelled, "user-1", suite.now).Return(nil).Once()
	suite.mockJournalRepo.On("FindEntryByReference", mock.Anything, "document", "doc-1", domain.CustomerInvoiceIssued).
		Return(&domain.JournalEntry{EntryID: "entry-1"}, nil).Once()
	suite.mockLedger.On("ReverseEntryInTx", mock.Anything, mock.Anything, "entry-1", "user-1").
		Return(&domain.JournalEntry{EntryID: "entry-2", OriginalEntryID: "entry-1"}, nil).Once()
	suite.mockDocRepo.On("UpdateBalanceDueInTx", mock.Anything, mock.Anything, "doc-1", domain.Money{Currency: "USD"}, "user-1", suite.now).Return(nil).Once()
	suite.expectAudit()

	result, err := suite.service.Transition(context.Background(), "doc-1", domain.EventVoid, dto.TransitionRequest{}, "user-1")

	suite.Require().NoError(err)
	suite.Equal(domain.StatusCancelled, result.Status)
	suite.True(result.BalanceDue.IsZero())
	suite.mockLedger.AssertExpectations(suite.T())
}

func (suite *DocumentServiceTestSuite) TestTransition_VoidRefusedAfterAllocation() {
	doc, lines := suite.orderWithLine(domain.DocTypeInvoice, domain.StatusSent, 0)
	doc.TotalAmount = domain.NewMoney(100000, "USD")
	doc.BalanceDue = domain.NewMoney(60000, "USD")
	suite.mockDocRepo.expectTx()
	suite.mockDocRepo.On("FindDocumentByIDForUpdate", mock.Anything, mock.Anything, "doc-1").Return(doc, nil).Once()
	suite.mockDocRepo.On("FindLinesByDocumentIDForUpdate", mock.Anything, mock.Anything, "doc-1").Return(lines, nil).Once()

	_, err := suite.service.Transition(context.Background(), "doc-1", domain.EventVoid, dto.TransitionRequest{}, "user-1")

	suite.ErrorIs(err, services.ErrPreconditionFailed)
	suite.mockLedger.AssertNotCalled(suite.T(), "ReverseEntryInTx", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func (suite *DocumentServiceTestSuite) TestCreateInvoiceFromOrder() {
	order, orderLines := suite.orderWithLine(domain.DocTypeSalesOrder, domain.StatusProcessing, 6)
	suite.mockDocRepo.expectTx()
	suite.mockDocRepo.On("FindDocumentByIDForUpdate", mock.Anything, mock.Anything, "doc-1").Return(order, nil).Once()
	suite.mockDocRepo.On("FindLinesByDocumentIDForUpdate", mock.Anything, mock.Anything, "doc-1").Return(orderLines, nil).Once()
	suite.mockDocRepo.On("UpdateLineProgressInTx", mock.Anything, mock.Anything, "line-1", mock.Anything, mock.Anything, "user-1", suite.now).
		Run(func(args mock.Arguments) {
			suite.True(args.Get(3).(decimal.Decimal).IsZero(), "no fulfilled delta on invoicing")
			suite.True(args.Get(4).(decimal.Decimal).Equal(decimal.NewFromInt(6)), "invoiced delta")
		}).
		Return(nil).Once()

	var savedInvoice domain.Document
	suite.mockDocRepo.On("SaveDocumentInTx", mock.Anything, mock.Anything, mock.AnythingOfType("domain.Document"), mock.Anything).
		Run(func(args mock.Arguments) { savedInvoice = args.Get(2).(domain.Document) }).
		Return(nil).Once()

	invoice, err := suite.service.CreateInvoiceFromOrder(context.Background(), "doc-1", []dto.LineQuantity{
		{LineID: "line-1", Quantity: decimal.NewFromInt(6)},
	}, "user-1")

	suite.Require().NoError(err)
	suite.Equal(domain.DocTypeInvoice, invoice.DocumentType)
	suite.Equal("INV-SO-100", invoice.DocumentNumber)
	suite.Equal(domain.StatusDraft, invoice.Status)
	suite.Equal("doc-1", invoice.LinkedDocumentID)
	// 6 x 100.00 at the order's prices.
	suite.Equal(int64(60000), savedInvoice.TotalAmount.Amount)
}

func (suite *DocumentServiceTestSuite) TestCreateInvoiceFromOrder_CapsAtUninvoiced() {
	order, orderLines := suite.orderWithLine(domain.DocTypeSalesOrder, domain.StatusProcessing, 6)
	orderLines[0].InvoicedQty = decimal.NewFromInt(4)
	suite.mockDocRepo.expectTx()
	suite.mockDocRepo.On("FindDocumentByIDForUpdate", mock.Anything, mock.Anything, "doc-1").Return(order, nil).Once()
	suite.mockDocRepo.On("FindLinesByDocumentIDForUpdate", mock.Anything, mock.Anything, "doc-1").Return(orderLines, nil).Once()

	_, err := suite.service.CreateInvoiceFromOrder(context.Background(), "doc-1", []dto.LineQuantity{
		{LineID: "line-1", Quantity: decimal.NewFromInt(3)},
	}, "user-1")

	suite.ErrorIs(err, services.ErrNothingToInvoice)
	suite.mockDocRepo.AssertNotCalled(suite.T(), "SaveDocumentInTx", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestDocumentServiceTestSuite(t *testing.T) {
	suite.Run(t, new(DocumentServiceTestSuite))
}
