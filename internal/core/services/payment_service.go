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
	"github.com/bizledger/erp_core/internal/dto"
	"github.com/bizledger/erp_core/internal/platform/clock"
	"github.com/bizledger/erp_core/internal/platform/logging"
	"github.com/google/uuid"
)

var (
	// ErrOverAllocation means the requested allocations exceed either the
	// payment's unallocated remainder or an invoice's balance due.
	ErrOverAllocation = errors.New("allocation exceeds available amount")

	// ErrInvalidPayment rejects malformed payment input.
	ErrInvalidPayment = errors.New("invalid payment")

	// ErrInvoiceNotOpen means the allocation target is not an invoice awaiting
	// payment.
	ErrInvoiceNotOpen = errors.New("invoice is not open for allocation")

	// ErrDirectionMismatch means the payment's direction does not match the
	// invoice's side: inbound payments settle customer invoices, outbound
	// payments settle supplier bills.
	ErrDirectionMismatch = errors.New("payment direction does not match invoice side")
)

const referenceTypePayment = "payment"

// paymentService records payments and allocates them across invoices. The
// cash-side ledger entry is posted when the payment is recorded; allocations
// only move invoice balances and states.
type paymentService struct {
	paymentRepo  portsrepo.PaymentRepositoryWithTx
	docRepo      portsrepo.DocumentRepositoryFacade
	transitioner portssvc.DocumentTransitionerSvc
	rateSvc      portssvc.ExchangeRateSvcFacade
	ledgerSvc    portssvc.LedgerPosterSvc
	baseCurrency string
	clock        clock.Clock
}

// NewPaymentService creates the payment service.
func NewPaymentService(
	paymentRepo portsrepo.PaymentRepositoryWithTx,
	docRepo portsrepo.DocumentRepositoryFacade,
	transitioner portssvc.DocumentTransitionerSvc,
	rateSvc portssvc.ExchangeRateSvcFacade,
	ledgerSvc portssvc.LedgerPosterSvc,
	baseCurrency string,
	clk clock.Clock,
) portssvc.PaymentSvcFacade {
	return &paymentService{
		paymentRepo:  paymentRepo,
		docRepo:      docRepo,
		transitioner: transitioner,
		rateSvc:      rateSvc,
		ledgerSvc:    ledgerSvc,
		baseCurrency: baseCurrency,
		clock:        clk,
	}
}

var _ portssvc.PaymentSvcFacade = (*paymentService)(nil)

// GetPayment implements portssvc.PaymentReaderSvc.
func (s *paymentService) GetPayment(ctx context.Context, paymentID string) (*domain.Payment, error) {
	return s.paymentRepo.FindPaymentByID(ctx, paymentID)
}

// ListAllocationsByInvoice implements portssvc.PaymentReaderSvc.
func (s *paymentService) ListAllocationsByInvoice(ctx context.Context, invoiceID string) ([]domain.Allocation, error) {
	return s.paymentRepo.ListAllocationsByInvoice(ctx, invoiceID)
}

// CreatePayment implements portssvc.PaymentWriterSvc. The payment row and its
// cash-side journal entry commit together.
func (s *paymentService) CreatePayment(ctx context.Context, req dto.CreatePaymentRequest, actor string) (*domain.Payment, error) {
	direction := domain.PaymentDirection(req.Direction)
	if direction != domain.PaymentInbound && direction != domain.PaymentOutbound {
		return nil, fmt.Errorf("%w: %w: direction must be INBOUND or OUTBOUND", apperrors.ErrValidation, ErrInvalidPayment)
	}
	if req.Amount <= 0 {
		return nil, fmt.Errorf("%w: %w: amount must be positive", apperrors.ErrValidation, ErrInvalidPayment)
	}
	if req.CurrencyCode == "" {
		return nil, fmt.Errorf("%w: %w: currency code is required", apperrors.ErrValidation, ErrInvalidPayment)
	}

	now := s.clock.Now()
	paymentDate := req.PaymentDate
	if paymentDate.IsZero() {
		paymentDate = now
	}
	// The rate to the base currency is frozen onto the cash-side entry here;
	// a missing rate fails the whole payment rather than posting at parity.
	rate, err := s.rateSvc.Resolve(ctx, req.CurrencyCode, s.baseCurrency, paymentDate)
	if err != nil {
		return nil, err
	}
	payment := domain.Payment{
		PaymentID:       uuid.NewString(),
		Direction:       direction,
		CounterpartyID:  req.CounterpartyID,
		Amount:          domain.NewMoney(req.Amount, req.CurrencyCode),
		AllocatedAmount: domain.Money{Currency: req.CurrencyCode},
		PaymentDate:     paymentDate,
		Reference:       req.Reference,
		AuditFields:     domain.AuditFields{CreatedAt: now, CreatedBy: actor, LastUpdatedAt: now, LastUpdatedBy: actor},
	}

	eventType := domain.CustomerPaymentReceived
	description := "Customer payment " + payment.Reference
	if direction == domain.PaymentOutbound {
		eventType = domain.SupplierPaymentSent
		description = "Supplier payment " + payment.Reference
	}

	tx, err := s.paymentRepo.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer s.paymentRepo.Rollback(ctx, tx)

	if err := s.paymentRepo.SavePaymentInTx(ctx, tx, payment); err != nil {
		return nil, fmt.Errorf("failed to save payment: %w", err)
	}
	event := domain.LedgerEvent{
		Type:          eventType,
		ReferenceType: referenceTypePayment,
		ReferenceID:   payment.PaymentID,
		Description:   description,
		CurrencyCode:  req.CurrencyCode,
		ExchangeRate:  rate.Rate,
		GrossAmount:   payment.Amount,
		OccurredAt:    paymentDate,
		Actor:         actor,
	}
	if _, err := s.ledgerSvc.PostEventInTx(ctx, tx, event); err != nil {
		return nil, err
	}
	if err := s.paymentRepo.Commit(ctx, tx); err != nil {
		return nil, err
	}

	logging.FromContext(ctx).Info("payment recorded",
		slog.String("payment_id", payment.PaymentID),
		slog.String("direction", string(direction)),
		slog.Int64("amount", payment.Amount.Amount),
		slog.String("currency", payment.Amount.Currency),
	)
	return &payment, nil
}

// AllocatePayment implements portssvc.PaymentWriterSvc. The payment row is
// locked first so concurrent allocations cannot both spend the same
// remainder; invoices are then locked in ascending ID order.
func (s *paymentService) AllocatePayment(ctx context.Context, paymentID string, req dto.AllocatePaymentRequest, actor string) ([]domain.Allocation, error) {
	if len(req.Targets) == 0 {
		return nil, fmt.Errorf("%w: no allocation targets", apperrors.ErrValidation)
	}
	targets := make([]dto.AllocationTarget, len(req.Targets))
	copy(targets, req.Targets)
	sort.Slice(targets, func(i, j int) bool { return targets[i].InvoiceID < targets[j].InvoiceID })

	var requested int64
	seen := make(map[string]bool, len(targets))
	for _, target := range targets {
		if target.Amount <= 0 {
			return nil, fmt.Errorf("%w: allocation amount must be positive", apperrors.ErrValidation)
		}
		if seen[target.InvoiceID] {
			return nil, fmt.Errorf("%w: invoice %s targeted twice", apperrors.ErrValidation, target.InvoiceID)
		}
		seen[target.InvoiceID] = true
		requested += target.Amount
	}

	tx, err := s.paymentRepo.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer s.paymentRepo.Rollback(ctx, tx)

	payment, err := s.paymentRepo.FindPaymentByIDForUpdate(ctx, tx, paymentID)
	if err != nil {
		return nil, err
	}
	if requested > payment.UnallocatedAmount().Amount {
		return nil, fmt.Errorf("%w: %w: %s unallocated, %d requested",
			apperrors.ErrState, ErrOverAllocation, payment.UnallocatedAmount(), requested)
	}

	now := s.clock.Now()
	audit := domain.AuditFields{CreatedAt: now, CreatedBy: actor, LastUpdatedAt: now, LastUpdatedBy: actor}
	allocations := make([]domain.Allocation, 0, len(targets))
	for _, target := range targets {
		invoice, err := s.docRepo.FindDocumentByIDForUpdate(ctx, tx, target.InvoiceID)
		if err != nil {
			return nil, err
		}
		if invoice.DocumentType != domain.DocTypeInvoice {
			return nil, fmt.Errorf("%w: %s is a %s, not an invoice", apperrors.ErrValidation, target.InvoiceID, invoice.DocumentType)
		}
		if invoice.Status != domain.StatusSent && invoice.Status != domain.StatusPartial {
			return nil, fmt.Errorf("%w: %w: invoice %s is %s",
				apperrors.ErrState, ErrInvoiceNotOpen, target.InvoiceID, invoice.Status)
		}
		supplierBill, err := isSupplierInvoice(ctx, s.docRepo, invoice)
		if err != nil {
			return nil, err
		}
		if (payment.Direction == domain.PaymentInbound) == supplierBill {
			return nil, fmt.Errorf("%w: %w: %s payment against invoice %s",
				apperrors.ErrState, ErrDirectionMismatch, payment.Direction, target.InvoiceID)
		}
		if invoice.CurrencyCode != payment.Amount.Currency {
			return nil, fmt.Errorf("%w: %w: invoice is %s, payment is %s",
				apperrors.ErrValidation, domain.ErrCurrencyMismatch, invoice.CurrencyCode, payment.Amount.Currency)
		}
		if target.Amount > invoice.BalanceDue.Amount {
			return nil, fmt.Errorf("%w: %w: invoice %s has %s due, %d requested",
				apperrors.ErrState, ErrOverAllocation, target.InvoiceID, invoice.BalanceDue, target.Amount)
		}

		allocation := domain.Allocation{
			AllocationID: uuid.NewString(),
			PaymentID:    paymentID,
			InvoiceID:    target.InvoiceID,
			Amount:       domain.NewMoney(target.Amount, payment.Amount.Currency),
			AuditFields:  audit,
		}
		if err := s.paymentRepo.SaveAllocationInTx(ctx, tx, allocation); err != nil {
			return nil, fmt.Errorf("failed to save allocation: %w", err)
		}

		newBalance := domain.NewMoney(invoice.BalanceDue.Amount-target.Amount, invoice.CurrencyCode)
		if err := s.docRepo.UpdateBalanceDueInTx(ctx, tx, target.InvoiceID, newBalance, actor, now); err != nil {
			return nil, fmt.Errorf("failed to update invoice balance: %w", err)
		}

		event := domain.EventPayPartial
		if newBalance.IsZero() {
			event = domain.EventPayFull
		}
		if _, err := s.transitioner.TransitionInTx(ctx, tx, target.InvoiceID, event, dto.TransitionRequest{}, actor); err != nil {
			return nil, err
		}
		allocations = append(allocations, allocation)
	}

	newAllocated := domain.NewMoney(payment.AllocatedAmount.Amount+requested, payment.Amount.Currency)
	if err := s.paymentRepo.UpdateAllocatedAmountInTx(ctx, tx, paymentID, newAllocated, actor, now); err != nil {
		return nil, fmt.Errorf("failed to update allocated amount: %w", err)
	}
	if err := s.paymentRepo.Commit(ctx, tx); err != nil {
		return nil, err
	}

	logging.FromContext(ctx).Info("payment allocated",
		slog.String("payment_id", paymentID),
		slog.Int("invoices", len(allocations)),
		slog.Int64("allocated", requested),
	)
	return allocations, nil
}
