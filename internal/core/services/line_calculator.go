package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/bizledger/erp_core/internal/apperrors"
	"github.com/bizledger/erp_core/internal/core/domain"
	portssvc "github.com/bizledger/erp_core/internal/core/ports/services"
	"github.com/bizledger/erp_core/internal/dto"
	"github.com/shopspring/decimal"
)

// ErrInvalidLine rejects lines with non-positive quantity, a discount percent
// outside [0,100] or a negative tax percent.
var ErrInvalidLine = errors.New("invalid document line")

var oneHundred = decimal.NewFromInt(100)

// calculatorService computes per-line and document-level totals. It is
// stateless; all arithmetic runs in full decimal precision and each component
// is rounded to minor units exactly once, at the end.
type calculatorService struct{}

// NewCalculatorService creates the line calculator.
func NewCalculatorService() portssvc.CalculatorSvcFacade {
	return &calculatorService{}
}

var _ portssvc.CalculatorSvcFacade = (*calculatorService)(nil)

// computeLine is the shared computation behind the facade and the document
// service. Amounts stay decimal until the single banker's rounding per
// component; the total is then exact integer arithmetic over the rounded
// components, so total = subtotal - discount + tax always holds in minor
// units.
func computeLine(quantity decimal.Decimal, unitPrice domain.Money, discountPercent, taxPercent decimal.Decimal) (dto.LineComputation, error) {
	if quantity.LessThanOrEqual(decimal.Zero) {
		return dto.LineComputation{}, fmt.Errorf("%w: quantity must be positive, got %s", ErrInvalidLine, quantity)
	}
	if discountPercent.IsNegative() || discountPercent.GreaterThan(oneHundred) {
		return dto.LineComputation{}, fmt.Errorf("%w: discount percent must be within [0,100], got %s", ErrInvalidLine, discountPercent)
	}
	if taxPercent.IsNegative() {
		return dto.LineComputation{}, fmt.Errorf("%w: tax percent must not be negative, got %s", ErrInvalidLine, taxPercent)
	}

	currency := unitPrice.Currency
	subtotalRaw := quantity.Mul(decimal.NewFromInt(unitPrice.Amount))
	discountRaw := subtotalRaw.Mul(discountPercent).Div(oneHundred)
	taxableRaw := subtotalRaw.Sub(discountRaw)
	taxRaw := taxableRaw.Mul(taxPercent).Div(oneHundred)

	subtotal := domain.NewMoney(subtotalRaw.RoundBank(0).IntPart(), currency)
	discount := domain.NewMoney(discountRaw.RoundBank(0).IntPart(), currency)
	tax := domain.NewMoney(taxRaw.RoundBank(0).IntPart(), currency)
	total := domain.NewMoney(subtotal.Amount-discount.Amount+tax.Amount, currency)

	return dto.LineComputation{
		Subtotal:       subtotal,
		DiscountAmount: discount,
		TaxAmount:      tax,
		Total:          total,
	}, nil
}

// ComputeLine implements portssvc.CalculatorSvcFacade.
func (s *calculatorService) ComputeLine(ctx context.Context, req dto.ComputeLineRequest) (*dto.LineComputation, error) {
	if req.CurrencyCode == "" {
		return nil, fmt.Errorf("%w: currency code is required", apperrors.ErrValidation)
	}
	result, err := computeLine(req.Quantity, domain.NewMoney(req.UnitPrice, req.CurrencyCode), req.DiscountPercent, req.TaxPercent)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", apperrors.ErrValidation, err)
	}
	return &result, nil
}

// ComputeDocumentTotals implements portssvc.CalculatorSvcFacade. Totals are
// sums of the lines' already-computed components; nothing is re-derived from
// the aggregate, so editing one line never perturbs the others.
func (s *calculatorService) ComputeDocumentTotals(ctx context.Context, lines []domain.DocumentLine) (*dto.DocumentTotals, error) {
	if len(lines) == 0 {
		return nil, fmt.Errorf("%w: document has no lines", apperrors.ErrValidation)
	}
	currency := lines[0].UnitPrice.Currency
	totals := dto.DocumentTotals{
		Subtotal:       domain.Money{Currency: currency},
		DiscountAmount: domain.Money{Currency: currency},
		TaxAmount:      domain.Money{Currency: currency},
		TotalAmount:    domain.Money{Currency: currency},
	}
	for _, line := range lines {
		if line.UnitPrice.Currency != currency {
			return nil, fmt.Errorf("%w: line %s currency %s differs from document currency %s",
				apperrors.ErrValidation, line.LineID, line.UnitPrice.Currency, currency)
		}
		totals.Subtotal.Amount += line.Subtotal.Amount
		totals.DiscountAmount.Amount += line.DiscountAmount.Amount
		totals.TaxAmount.Amount += line.TaxAmount.Amount
		totals.TotalAmount.Amount += line.Total.Amount
	}
	return &totals, nil
}
