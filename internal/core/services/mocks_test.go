package services_test

import (
	"context"
	"time"

	"github.com/bizledger/erp_core/internal/core/domain"
	"github.com/bizledger/erp_core/internal/dto"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
)

// Shared mocks for the service test suites. Transactions are mocked at the
// repository boundary: Begin returns a nil pgx.Tx, which the services only
// ever pass through to other mocked methods.

// --- transaction manager mixin ---

type mockTxManager struct {
	mock.Mock
}

func (m *mockTxManager) Begin(ctx context.Context) (pgx.Tx, error) {
	args := m.Called(ctx)
	tx, _ := args.Get(0).(pgx.Tx)
	return tx, args.Error(1)
}

func (m *mockTxManager) Commit(ctx context.Context, tx pgx.Tx) error {
	return m.Called(ctx, tx).Error(0)
}

func (m *mockTxManager) Rollback(ctx context.Context, tx pgx.Tx) error {
	return m.Called(ctx, tx).Error(0)
}

// expectTx wires the happy-path Begin/Commit/Rollback expectations.
func (m *mockTxManager) expectTx() {
	m.On("Begin", mock.Anything).Return(nil, nil)
	m.On("Commit", mock.Anything, mock.Anything).Return(nil)
	m.On("Rollback", mock.Anything, mock.Anything).Return(nil).Maybe()
}

// --- journal repository ---

type MockJournalRepository struct {
	mockTxManager
}

func (m *MockJournalRepository) FindEntryByID(ctx context.Context, entryID string) (*domain.JournalEntry, error) {
	args := m.Called(ctx, entryID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.JournalEntry), args.Error(1)
}

func (m *MockJournalRepository) FindLinesByEntryID(ctx context.Context, entryID string) ([]domain.JournalLine, error) {
	args := m.Called(ctx, entryID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.JournalLine), args.Error(1)
}

func (m *MockJournalRepository) FindEntryByReference(ctx context.Context, referenceType, referenceID string, eventType domain.LedgerEventType) (*domain.JournalEntry, error) {
	args := m.Called(ctx, referenceType, referenceID, eventType)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.JournalEntry), args.Error(1)
}

func (m *MockJournalRepository) SaveEntryInTx(ctx context.Context, tx pgx.Tx, entry domain.JournalEntry, lines []domain.JournalLine, balanceChanges map[string]int64) error {
	return m.Called(ctx, tx, entry, lines, balanceChanges).Error(0)
}

func (m *MockJournalRepository) MarkEntryReversedInTx(ctx context.Context, tx pgx.Tx, entryID, reversingEntryID string, actor string, now time.Time) error {
	return m.Called(ctx, tx, entryID, reversingEntryID, actor, now).Error(0)
}

// --- account repository ---

type MockAccountRepository struct {
	mockTxManager
}

func (m *MockAccountRepository) FindAccountByID(ctx context.Context, accountID string) (*domain.Account, error) {
	args := m.Called(ctx, accountID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Account), args.Error(1)
}

func (m *MockAccountRepository) FindAccountsByIDs(ctx context.Context, accountIDs []string) (map[string]domain.Account, error) {
	args := m.Called(ctx, accountIDs)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(map[string]domain.Account), args.Error(1)
}

func (m *MockAccountRepository) FindAccountsByCodes(ctx context.Context, codes []string) (map[string]domain.Account, error) {
	args := m.Called(ctx, codes)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(map[string]domain.Account), args.Error(1)
}

func (m *MockAccountRepository) ListChildAccounts(ctx context.Context, parentAccountID string) ([]domain.Account, error) {
	args := m.Called(ctx, parentAccountID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Account), args.Error(1)
}

func (m *MockAccountRepository) SaveAccount(ctx context.Context, account domain.Account) error {
	return m.Called(ctx, account).Error(0)
}

func (m *MockAccountRepository) DeactivateAccount(ctx context.Context, accountID string, actor string, now time.Time) error {
	return m.Called(ctx, accountID, actor, now).Error(0)
}

func (m *MockAccountRepository) FindAccountsByIDsForUpdate(ctx context.Context, tx pgx.Tx, accountIDs []string) (map[string]domain.Account, error) {
	args := m.Called(ctx, tx, accountIDs)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(map[string]domain.Account), args.Error(1)
}

func (m *MockAccountRepository) UpdateAccountBalancesInTx(ctx context.Context, tx pgx.Tx, balanceChanges map[string]int64, actor string, now time.Time) error {
	return m.Called(ctx, tx, balanceChanges, actor, now).Error(0)
}

// --- audit repository ---

type MockAuditRepository struct {
	mock.Mock
}

func (m *MockAuditRepository) SaveAuditRecordInTx(ctx context.Context, tx pgx.Tx, record domain.AuditRecord) error {
	return m.Called(ctx, tx, record).Error(0)
}

// --- inventory repository ---

type MockInventoryRepository struct {
	mockTxManager
}

func (m *MockInventoryRepository) ListOpenLots(ctx context.Context, itemID, location string) ([]domain.StockLot, error) {
	args := m.Called(ctx, itemID, location)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.StockLot), args.Error(1)
}

func (m *MockInventoryRepository) FindMovementByID(ctx context.Context, movementID string) (*domain.StockMovement, error) {
	args := m.Called(ctx, movementID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.StockMovement), args.Error(1)
}

func (m *MockInventoryRepository) FindMovementsByReference(ctx context.Context, referenceType, referenceID string) ([]domain.StockMovement, error) {
	args := m.Called(ctx, referenceType, referenceID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.StockMovement), args.Error(1)
}

func (m *MockInventoryRepository) GetBalance(ctx context.Context, itemID, location string) (*domain.InventoryBalance, error) {
	args := m.Called(ctx, itemID, location)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.InventoryBalance), args.Error(1)
}

func (m *MockInventoryRepository) SaveLotInTx(ctx context.Context, tx pgx.Tx, lot domain.StockLot) error {
	return m.Called(ctx, tx, lot).Error(0)
}

func (m *MockInventoryRepository) FindLotByIDForUpdate(ctx context.Context, tx pgx.Tx, lotID string) (*domain.StockLot, error) {
	args := m.Called(ctx, tx, lotID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.StockLot), args.Error(1)
}

func (m *MockInventoryRepository) FindOpenLotsForUpdate(ctx context.Context, tx pgx.Tx, itemID, location string) ([]domain.StockLot, error) {
	args := m.Called(ctx, tx, itemID, location)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.StockLot), args.Error(1)
}

func (m *MockInventoryRepository) UpdateLotAvailableInTx(ctx context.Context, tx pgx.Tx, lotID string, availableQty decimal.Decimal, actor string, now time.Time) error {
	return m.Called(ctx, tx, lotID, availableQty, actor, now).Error(0)
}

func (m *MockInventoryRepository) SaveMovementInTx(ctx context.Context, tx pgx.Tx, movement domain.StockMovement) error {
	return m.Called(ctx, tx, movement).Error(0)
}

func (m *MockInventoryRepository) UpsertBalanceInTx(ctx context.Context, tx pgx.Tx, balance domain.InventoryBalance) error {
	return m.Called(ctx, tx, balance).Error(0)
}

func (m *MockInventoryRepository) RecomputeBalanceInTx(ctx context.Context, tx pgx.Tx, itemID, location string, actor string, now time.Time) (*domain.InventoryBalance, error) {
	args := m.Called(ctx, tx, itemID, location, actor, now)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.InventoryBalance), args.Error(1)
}

// --- document repository ---

type MockDocumentRepository struct {
	mockTxManager
}

func (m *MockDocumentRepository) FindDocumentByID(ctx context.Context, documentID string) (*domain.Document, error) {
	args := m.Called(ctx, documentID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Document), args.Error(1)
}

func (m *MockDocumentRepository) FindLinesByDocumentID(ctx context.Context, documentID string) ([]domain.DocumentLine, error) {
	args := m.Called(ctx, documentID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.DocumentLine), args.Error(1)
}

func (m *MockDocumentRepository) SaveDocument(ctx context.Context, doc domain.Document, lines []domain.DocumentLine) error {
	return m.Called(ctx, doc, lines).Error(0)
}

func (m *MockDocumentRepository) ReplaceLines(ctx context.Context, doc domain.Document, lines []domain.DocumentLine) error {
	return m.Called(ctx, doc, lines).Error(0)
}

func (m *MockDocumentRepository) FindDocumentByIDForUpdate(ctx context.Context, tx pgx.Tx, documentID string) (*domain.Document, error) {
	args := m.Called(ctx, tx, documentID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Document), args.Error(1)
}

func (m *MockDocumentRepository) FindLinesByDocumentIDForUpdate(ctx context.Context, tx pgx.Tx, documentID string) ([]domain.DocumentLine, error) {
	args := m.Called(ctx, tx, documentID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.DocumentLine), args.Error(1)
}

func (m *MockDocumentRepository) UpdateStatusInTx(ctx context.Context, tx pgx.Tx, documentID string, status domain.DocumentStatus, actor string, now time.Time) error {
	return m.Called(ctx, tx, documentID, status, actor, now).Error(0)
}

func (m *MockDocumentRepository) UpdateLinkedDocumentInTx(ctx context.Context, tx pgx.Tx, documentID, linkedDocumentID string, actor string, now time.Time) error {
	return m.Called(ctx, tx, documentID, linkedDocumentID, actor, now).Error(0)
}

func (m *MockDocumentRepository) UpdateLineProgressInTx(ctx context.Context, tx pgx.Tx, lineID string, fulfilledDelta, invoicedDelta decimal.Decimal, actor string, now time.Time) error {
	return m.Called(ctx, tx, lineID, fulfilledDelta, invoicedDelta, actor, now).Error(0)
}

func (m *MockDocumentRepository) UpdateBalanceDueInTx(ctx context.Context, tx pgx.Tx, documentID string, balanceDue domain.Money, actor string, now time.Time) error {
	return m.Called(ctx, tx, documentID, balanceDue, actor, now).Error(0)
}

func (m *MockDocumentRepository) SaveDocumentInTx(ctx context.Context, tx pgx.Tx, doc domain.Document, lines []domain.DocumentLine) error {
	return m.Called(ctx, tx, doc, lines).Error(0)
}

// --- payment repository ---

type MockPaymentRepository struct {
	mockTxManager
}

func (m *MockPaymentRepository) FindPaymentByID(ctx context.Context, paymentID string) (*domain.Payment, error) {
	args := m.Called(ctx, paymentID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Payment), args.Error(1)
}

func (m *MockPaymentRepository) ListAllocationsByPayment(ctx context.Context, paymentID string) ([]domain.Allocation, error) {
	args := m.Called(ctx, paymentID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Allocation), args.Error(1)
}

func (m *MockPaymentRepository) ListAllocationsByInvoice(ctx context.Context, invoiceID string) ([]domain.Allocation, error) {
	args := m.Called(ctx, invoiceID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Allocation), args.Error(1)
}

func (m *MockPaymentRepository) SavePayment(ctx context.Context, payment domain.Payment) error {
	return m.Called(ctx, payment).Error(0)
}

func (m *MockPaymentRepository) SavePaymentInTx(ctx context.Context, tx pgx.Tx, payment domain.Payment) error {
	return m.Called(ctx, tx, payment).Error(0)
}

func (m *MockPaymentRepository) FindPaymentByIDForUpdate(ctx context.Context, tx pgx.Tx, paymentID string) (*domain.Payment, error) {
	args := m.Called(ctx, tx, paymentID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Payment), args.Error(1)
}

func (m *MockPaymentRepository) SaveAllocationInTx(ctx context.Context, tx pgx.Tx, allocation domain.Allocation) error {
	return m.Called(ctx, tx, allocation).Error(0)
}

func (m *MockPaymentRepository) UpdateAllocatedAmountInTx(ctx context.Context, tx pgx.Tx, paymentID string, allocated domain.Money, actor string, now time.Time) error {
	return m.Called(ctx, tx, paymentID, allocated, actor, now).Error(0)
}

// --- exchange rate repository ---

type MockExchangeRateRepository struct {
	mock.Mock
}

func (m *MockExchangeRateRepository) FindRateAsOf(ctx context.Context, fromCode, toCode string, asOf time.Time) (*domain.ExchangeRate, error) {
	args := m.Called(ctx, fromCode, toCode, asOf)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.ExchangeRate), args.Error(1)
}

func (m *MockExchangeRateRepository) SaveExchangeRate(ctx context.Context, rate domain.ExchangeRate) error {
	return m.Called(ctx, rate).Error(0)
}

// --- currency repository ---

type MockCurrencyRepository struct {
	mock.Mock
}

func (m *MockCurrencyRepository) FindCurrencyByCode(ctx context.Context, code string) (*domain.Currency, error) {
	args := m.Called(ctx, code)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Currency), args.Error(1)
}

func (m *MockCurrencyRepository) ListCurrencies(ctx context.Context) ([]domain.Currency, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Currency), args.Error(1)
}

// --- ledger poster service ---

type MockLedgerPoster struct {
	mock.Mock
}

func (m *MockLedgerPoster) PostEvent(ctx context.Context, event domain.LedgerEvent) (*domain.JournalEntry, error) {
	args := m.Called(ctx, event)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.JournalEntry), args.Error(1)
}

func (m *MockLedgerPoster) PostEventInTx(ctx context.Context, tx pgx.Tx, event domain.LedgerEvent) (*domain.JournalEntry, error) {
	args := m.Called(ctx, tx, event)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.JournalEntry), args.Error(1)
}

func (m *MockLedgerPoster) ReverseEntry(ctx context.Context, entryID string, actor string) (*domain.JournalEntry, error) {
	args := m.Called(ctx, entryID, actor)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.JournalEntry), args.Error(1)
}

func (m *MockLedgerPoster) ReverseEntryInTx(ctx context.Context, tx pgx.Tx, entryID string, actor string) (*domain.JournalEntry, error) {
	args := m.Called(ctx, tx, entryID, actor)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.JournalEntry), args.Error(1)
}

// --- inventory tx service ---

type MockInventoryTxSvc struct {
	mock.Mock
}

func (m *MockInventoryTxSvc) ReceiveStockInTx(ctx context.Context, tx pgx.Tx, req dto.ReceiveStockRequest, actor string) (*domain.StockLot, error) {
	args := m.Called(ctx, tx, req, actor)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.StockLot), args.Error(1)
}

func (m *MockInventoryTxSvc) ConsumeStockInTx(ctx context.Context, tx pgx.Tx, req dto.ConsumeStockRequest, actor string) ([]domain.LotConsumption, error) {
	args := m.Called(ctx, tx, req, actor)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.LotConsumption), args.Error(1)
}

func (m *MockInventoryTxSvc) ReserveStockInTx(ctx context.Context, tx pgx.Tx, itemID, location string, qty decimal.Decimal, actor string) error {
	return m.Called(ctx, tx, itemID, location, qty, actor).Error(0)
}

func (m *MockInventoryTxSvc) ReleaseReservationInTx(ctx context.Context, tx pgx.Tx, itemID, location string, qty decimal.Decimal, actor string) error {
	return m.Called(ctx, tx, itemID, location, qty, actor).Error(0)
}

// --- exchange rate service ---

type MockExchangeRateService struct {
	mock.Mock
}

func (m *MockExchangeRateService) Resolve(ctx context.Context, fromCode, toCode string, asOf time.Time) (*domain.ExchangeRate, error) {
	args := m.Called(ctx, fromCode, toCode, asOf)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.ExchangeRate), args.Error(1)
}

func (m *MockExchangeRateService) CreateExchangeRate(ctx context.Context, req dto.CreateExchangeRateRequest, actor string) (*domain.ExchangeRate, error) {
	args := m.Called(ctx, req, actor)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.ExchangeRate), args.Error(1)
}

// --- document transitioner service ---

type MockDocumentTransitioner struct {
	mock.Mock
}

func (m *MockDocumentTransitioner) Transition(ctx context.Context, documentID string, event domain.DocumentEvent, req dto.TransitionRequest, actor string) (*domain.Document, error) {
	args := m.Called(ctx, documentID, event, req, actor)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Document), args.Error(1)
}

func (m *MockDocumentTransitioner) TransitionInTx(ctx context.Context, tx pgx.Tx, documentID string, event domain.DocumentEvent, req dto.TransitionRequest, actor string) (*domain.Document, error) {
	args := m.Called(ctx, tx, documentID, event, req, actor)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Document), args.Error(1)
}
