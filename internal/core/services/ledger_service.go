package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"

	"github.com/bizledger/erp_core/internal/apperrors"
	"github.com/bizledger/erp_core/internal/core/domain"
	portsrepo "github.com/bizledger/erp_core/internal/core/ports/repositories"
	portssvc "github.com/bizledger/erp_core/internal/core/ports/services"
	"github.com/bizledger/erp_core/internal/platform/clock"
	"github.com/bizledger/erp_core/internal/platform/config"
	"github.com/bizledger/erp_core/internal/platform/logging"
	"github.com/bizledger/erp_core/internal/utils/accounting"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
)

var (
	// ErrUnbalancedEntry is the defensive invariant check on posting. A
	// correct event mapping can never produce it; if it fires, it is a bug,
	// not a recoverable business error.
	ErrUnbalancedEntry = errors.New("journal entry does not balance")

	// ErrAccountNotConfigured means an account required by the posting map is
	// missing or inactive.
	ErrAccountNotConfigured = errors.New("ledger account not configured")

	// ErrEntryReversed rejects reversing an entry twice.
	ErrEntryReversed = errors.New("journal entry already reversed")

	// ErrUnknownEventType rejects events the posting map does not cover.
	ErrUnknownEventType = errors.New("unknown ledger event type")

	// ErrRateRequired rejects a non-base-currency event carrying no frozen
	// rate. There is no implicit 1:1 fallback; posting at parity would leave
	// the base-currency control balances misstated.
	ErrRateRequired = errors.New("exchange rate required for non-base-currency event")
)

// ledgerService builds and persists balanced journal entries for business
// events. The account mapping is an explicit, validated configuration struct;
// there is no lookup of accounts by name or code substring.
type ledgerService struct {
	journalRepo  portsrepo.JournalRepositoryWithTx
	accountRepo  portsrepo.AccountRepositoryFacade
	auditRepo    portsrepo.AuditRepositoryFacade
	mapping      config.LedgerAccounts
	baseCurrency string
	clock        clock.Clock
}

// NewLedgerService creates the ledger poster.
func NewLedgerService(
	journalRepo portsrepo.JournalRepositoryWithTx,
	accountRepo portsrepo.AccountRepositoryFacade,
	auditRepo portsrepo.AuditRepositoryFacade,
	mapping config.LedgerAccounts,
	baseCurrency string,
	clk clock.Clock,
) portssvc.LedgerSvcFacade {
	return &ledgerService{
		journalRepo:  journalRepo,
		accountRepo:  accountRepo,
		auditRepo:    auditRepo,
		mapping:      mapping,
		baseCurrency: baseCurrency,
		clock:        clk,
	}
}

var _ portssvc.LedgerSvcFacade = (*ledgerService)(nil)

// lineSpec is one side of a posting before it becomes a JournalLine.
type lineSpec struct {
	accountCode string
	lineType    domain.LineType
	amount      domain.Money
	notes       string
}

// linesForEvent maps a business event to its debit/credit sides. Zero-amount
// sides (e.g. a tax-free invoice) are dropped.
func (s *ledgerService) linesForEvent(event domain.LedgerEvent) ([]lineSpec, error) {
	m := s.mapping
	var specs []lineSpec
	switch event.Type {
	case domain.CustomerInvoiceIssued:
		specs = []lineSpec{
			{m.AccountsReceivable, domain.Debit, event.GrossAmount, "customer invoice " + event.ReferenceID},
			{m.Revenue, domain.Credit, event.NetAmount, "revenue"},
			{m.TaxPayable, domain.Credit, event.TaxAmount, "tax collected"},
		}
	case domain.CustomerPaymentReceived:
		specs = []lineSpec{
			{m.Cash, domain.Debit, event.GrossAmount, "customer payment " + event.ReferenceID},
			{m.AccountsReceivable, domain.Credit, event.GrossAmount, "settles receivable"},
		}
	case domain.SupplierInvoiceReceived:
		specs = []lineSpec{
			{m.Inventory, domain.Debit, event.NetAmount, "supplier invoice " + event.ReferenceID},
			{m.TaxReceivable, domain.Debit, event.TaxAmount, "tax reclaimable"},
			{m.AccountsPayable, domain.Credit, event.GrossAmount, "payable"},
		}
	case domain.SupplierPaymentSent:
		specs = []lineSpec{
			{m.AccountsPayable, domain.Debit, event.GrossAmount, "supplier payment " + event.ReferenceID},
			{m.Cash, domain.Credit, event.GrossAmount, "cash out"},
		}
	case domain.GoodsReceived:
		specs = []lineSpec{
			{m.Inventory, domain.Debit, event.CostAmount, "goods received " + event.ReferenceID},
			{m.AccountsPayable, domain.Credit, event.CostAmount, "accrued payable"},
		}
	case domain.GoodsShipped:
		specs = []lineSpec{
			{m.CostOfGoodsSold, domain.Debit, event.CostAmount, "cost of goods shipped " + event.ReferenceID},
			{m.Inventory, domain.Credit, event.CostAmount, "inventory outflow"},
		}
	case domain.InventoryAdjusted:
		cost := event.CostAmount
		if cost.IsNegative() {
			specs = []lineSpec{
				{m.InventoryGainLoss, domain.Debit, cost.Neg(), "inventory write-down " + event.ReferenceID},
				{m.Inventory, domain.Credit, cost.Neg(), "inventory outflow"},
			}
		} else {
			specs = []lineSpec{
				{m.Inventory, domain.Debit, cost, "inventory write-up " + event.ReferenceID},
				{m.InventoryGainLoss, domain.Credit, cost, "adjustment gain"},
			}
		}
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnknownEventType, event.Type)
	}

	kept := specs[:0]
	for _, spec := range specs {
		if spec.amount.IsNegative() {
			return nil, fmt.Errorf("%w: negative %s amount %s for event %s",
				apperrors.ErrValidation, spec.lineType, spec.amount, event.Type)
		}
		if !spec.amount.IsZero() {
			kept = append(kept, spec)
		}
	}
	return kept, nil
}

// resolveAccounts loads and checks the mapped accounts for the given specs.
func (s *ledgerService) resolveAccounts(ctx context.Context, specs []lineSpec) (map[string]domain.Account, error) {
	codes := make([]string, 0, len(specs))
	seen := make(map[string]bool, len(specs))
	for _, spec := range specs {
		if !seen[spec.accountCode] {
			seen[spec.accountCode] = true
			codes = append(codes, spec.accountCode)
		}
	}

	accounts, err := s.accountRepo.FindAccountsByCodes(ctx, codes)
	if err != nil {
		return nil, fmt.Errorf("failed to load mapped accounts: %w", err)
	}
	for _, code := range codes {
		account, ok := accounts[code]
		if !ok {
			return nil, fmt.Errorf("%w: %w: no account with code %s", apperrors.ErrConsistency, ErrAccountNotConfigured, code)
		}
		if !account.IsActive {
			return nil, fmt.Errorf("%w: %w: account %s (%s) is inactive", apperrors.ErrConsistency, ErrAccountNotConfigured, account.Name, code)
		}
	}
	return accounts, nil
}

// lockAccounts locks the affected account rows in ascending ID order so
// concurrent postings touching overlapping accounts cannot deadlock.
func (s *ledgerService) lockAccounts(ctx context.Context, tx pgx.Tx, balanceChanges map[string]int64) error {
	accountIDs := make([]string, 0, len(balanceChanges))
	for accountID := range balanceChanges {
		accountIDs = append(accountIDs, accountID)
	}
	sort.Strings(accountIDs)
	if _, err := s.accountRepo.FindAccountsByIDsForUpdate(ctx, tx, accountIDs); err != nil {
		return fmt.Errorf("failed to lock accounts: %w", err)
	}
	return nil
}

// PostEvent implements portssvc.LedgerPosterSvc: one event, one transaction.
func (s *ledgerService) PostEvent(ctx context.Context, event domain.LedgerEvent) (*domain.JournalEntry, error) {
	tx, err := s.journalRepo.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer s.journalRepo.Rollback(ctx, tx)

	entry, err := s.PostEventInTx(ctx, tx, event)
	if err != nil {
		return nil, err
	}
	if err := s.journalRepo.Commit(ctx, tx); err != nil {
		return nil, err
	}
	return entry, nil
}

// PostEventInTx implements portssvc.LedgerPosterSvc. Entries are created
// already POSTED; there is no draft-journal workflow in the engine.
func (s *ledgerService) PostEventInTx(ctx context.Context, tx pgx.Tx, event domain.LedgerEvent) (*domain.JournalEntry, error) {
	logger := logging.FromContext(ctx)

	if event.CurrencyCode == "" {
		return nil, fmt.Errorf("%w: event currency is required", apperrors.ErrValidation)
	}
	if event.ExchangeRate.IsZero() {
		if event.CurrencyCode != s.baseCurrency {
			return nil, fmt.Errorf("%w: %w: %s event in %s",
				apperrors.ErrValidation, ErrRateRequired, event.Type, event.CurrencyCode)
		}
		event.ExchangeRate = decimal.NewFromInt(1)
	}

	specs, err := s.linesForEvent(event)
	if err != nil {
		return nil, err
	}
	accounts, err := s.resolveAccounts(ctx, specs)
	if err != nil {
		return nil, err
	}

	now := s.clock.Now()
	entryID := uuid.NewString()
	audit := domain.AuditFields{CreatedAt: now, CreatedBy: event.Actor, LastUpdatedAt: now, LastUpdatedBy: event.Actor}

	lines := make([]domain.JournalLine, 0, len(specs))
	balanceChanges := make(map[string]int64, len(specs))
	var debitTotal int64
	for _, spec := range specs {
		account := accounts[spec.accountCode]
		line := domain.JournalLine{
			LineID:      uuid.NewString(),
			EntryID:     entryID,
			AccountID:   account.AccountID,
			LineType:    spec.lineType,
			Amount:      spec.amount,
			Notes:       spec.notes,
			AuditFields: audit,
		}
		signed, err := accounting.CalculateSignedAmount(line, account.AccountType)
		if err != nil {
			return nil, err
		}
		// Account balances are kept in the base currency; re-express through
		// the event's frozen rate.
		signedBase := decimal.NewFromInt(signed.Amount).Mul(event.ExchangeRate).RoundBank(0).IntPart()
		balanceChanges[account.AccountID] += signedBase
		if spec.lineType == domain.Debit {
			debitTotal += spec.amount.Amount
		}
		lines = append(lines, line)
	}

	if err := accounting.ValidateEntryBalance(lines, event.CurrencyCode); err != nil {
		return nil, fmt.Errorf("%w: %w: %w", apperrors.ErrConsistency, ErrUnbalancedEntry, err)
	}

	if err := s.lockAccounts(ctx, tx, balanceChanges); err != nil {
		return nil, err
	}

	entry := domain.JournalEntry{
		EntryID:       entryID,
		EntryDate:     event.OccurredAt,
		Description:   event.Description,
		CurrencyCode:  event.CurrencyCode,
		ExchangeRate:  event.ExchangeRate,
		EventType:     event.Type,
		ReferenceType: event.ReferenceType,
		ReferenceID:   event.ReferenceID,
		Status:        domain.Posted,
		Amount:        domain.NewMoney(debitTotal, event.CurrencyCode),
		AuditFields:   audit,
	}

	if err := s.journalRepo.SaveEntryInTx(ctx, tx, entry, lines, balanceChanges); err != nil {
		return nil, fmt.Errorf("failed to persist journal entry: %w", err)
	}

	record := domain.AuditRecord{
		AuditID:     uuid.NewString(),
		EntityType:  "journal_entry",
		EntityID:    entryID,
		Action:      "post:" + string(event.Type),
		StatusAfter: string(domain.Posted),
		Actor:       event.Actor,
		RecordedAt:  now,
	}
	if err := s.auditRepo.SaveAuditRecordInTx(ctx, tx, record); err != nil {
		return nil, fmt.Errorf("failed to write audit record: %w", err)
	}

	logger.Info("journal entry posted",
		slog.String("entry_id", entryID),
		slog.String("event_type", string(event.Type)),
		slog.String("reference", event.ReferenceType+":"+event.ReferenceID),
		slog.Int64("debit_total", debitTotal),
	)
	return &entry, nil
}

// ReverseEntry implements portssvc.LedgerPosterSvc.
func (s *ledgerService) ReverseEntry(ctx context.Context, entryID string, actor string) (*domain.JournalEntry, error) {
	tx, err := s.journalRepo.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer s.journalRepo.Rollback(ctx, tx)

	entry, err := s.ReverseEntryInTx(ctx, tx, entryID, actor)
	if err != nil {
		return nil, err
	}
	if err := s.journalRepo.Commit(ctx, tx); err != nil {
		return nil, err
	}
	return entry, nil
}

// ReverseEntryInTx implements portssvc.LedgerPosterSvc. Posted entries are
// never edited; the correction is a new entry with every line's side flipped,
// linked back to the original.
func (s *ledgerService) ReverseEntryInTx(ctx context.Context, tx pgx.Tx, entryID string, actor string) (*domain.JournalEntry, error) {
	original, err := s.journalRepo.FindEntryByID(ctx, entryID)
	if err != nil {
		return nil, err
	}
	if original.Status == domain.Reversed {
		return nil, fmt.Errorf("%w: %w: %s", apperrors.ErrState, ErrEntryReversed, entryID)
	}
	originalLines, err := s.journalRepo.FindLinesByEntryID(ctx, entryID)
	if err != nil {
		return nil, err
	}

	accountIDs := make([]string, 0, len(originalLines))
	for _, line := range originalLines {
		accountIDs = append(accountIDs, line.AccountID)
	}
	accounts, err := s.accountRepo.FindAccountsByIDs(ctx, accountIDs)
	if err != nil {
		return nil, err
	}

	now := s.clock.Now()
	audit := domain.AuditFields{CreatedAt: now, CreatedBy: actor, LastUpdatedAt: now, LastUpdatedBy: actor}
	reversingID := uuid.NewString()

	lines := make([]domain.JournalLine, 0, len(originalLines))
	balanceChanges := make(map[string]int64, len(originalLines))
	var debitTotal int64
	for _, originalLine := range originalLines {
		flipped := domain.Credit
		if originalLine.LineType == domain.Credit {
			flipped = domain.Debit
		}
		line := domain.JournalLine{
			LineID:      uuid.NewString(),
			EntryID:     reversingID,
			AccountID:   originalLine.AccountID,
			LineType:    flipped,
			Amount:      originalLine.Amount,
			Notes:       "reversal of " + originalLine.LineID,
			AuditFields: audit,
		}
		account, ok := accounts[line.AccountID]
		if !ok {
			return nil, fmt.Errorf("%w: account %s referenced by entry %s", apperrors.ErrNotFound, line.AccountID, entryID)
		}
		signed, err := accounting.CalculateSignedAmount(line, account.AccountType)
		if err != nil {
			return nil, err
		}
		signedBase := decimal.NewFromInt(signed.Amount).Mul(original.ExchangeRate).RoundBank(0).IntPart()
		balanceChanges[line.AccountID] += signedBase
		if flipped == domain.Debit {
			debitTotal += line.Amount.Amount
		}
		lines = append(lines, line)
	}

	entry := domain.JournalEntry{
		EntryID:         reversingID,
		EntryDate:       now,
		Description:     "Reversal of " + original.EntryID,
		CurrencyCode:    original.CurrencyCode,
		ExchangeRate:    original.ExchangeRate,
		EventType:       original.EventType,
		ReferenceType:   original.ReferenceType,
		ReferenceID:     original.ReferenceID,
		Status:          domain.Posted,
		OriginalEntryID: original.EntryID,
		Amount:          domain.NewMoney(debitTotal, original.CurrencyCode),
		AuditFields:     audit,
	}

	if err := s.lockAccounts(ctx, tx, balanceChanges); err != nil {
		return nil, err
	}
	if err := s.journalRepo.SaveEntryInTx(ctx, tx, entry, lines, balanceChanges); err != nil {
		return nil, fmt.Errorf("failed to persist reversing entry: %w", err)
	}
	if err := s.journalRepo.MarkEntryReversedInTx(ctx, tx, original.EntryID, reversingID, actor, now); err != nil {
		return nil, fmt.Errorf("failed to link reversing entry: %w", err)
	}
	record := domain.AuditRecord{
		AuditID:      uuid.NewString(),
		EntityType:   "journal_entry",
		EntityID:     original.EntryID,
		Action:       "reverse",
		StatusBefore: string(domain.Posted),
		StatusAfter:  string(domain.Reversed),
		Actor:        actor,
		RecordedAt:   now,
	}
	if err := s.auditRepo.SaveAuditRecordInTx(ctx, tx, record); err != nil {
		return nil, fmt.Errorf("failed to write audit record: %w", err)
	}
	return &entry, nil
}

// GetEntry implements portssvc.LedgerReaderSvc.
func (s *ledgerService) GetEntry(ctx context.Context, entryID string) (*domain.JournalEntry, error) {
	return s.journalRepo.FindEntryByID(ctx, entryID)
}

// GetEntryLines implements portssvc.LedgerReaderSvc.
func (s *ledgerService) GetEntryLines(ctx context.Context, entryID string) ([]domain.JournalLine, error) {
	return s.journalRepo.FindLinesByEntryID(ctx, entryID)
}
