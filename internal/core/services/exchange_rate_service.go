package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/bizledger/erp_core/internal/apperrors"
	"github.com/bizledger/erp_core/internal/core/domain"
	portsrepo "github.com/bizledger/erp_core/internal/core/ports/repositories"
	portssvc "github.com/bizledger/erp_core/internal/core/ports/services"
	"github.com/bizledger/erp_core/internal/dto"
	"github.com/bizledger/erp_core/internal/platform/clock"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ErrRateNotFound means no rate row exists for the pair at or before the
// requested instant. There is deliberately no implicit 1:1 fallback for
// unequal currencies; a missing rate is a data-integrity problem.
var ErrRateNotFound = errors.New("exchange rate not found")

// exchangeRateService resolves rates for currency pairs at a point in time.
// A resolved rate is frozen onto the document or journal entry that requested
// it and never re-resolved, even if the rate table is later corrected.
type exchangeRateService struct {
	rateRepo     portsrepo.ExchangeRateRepositoryFacade
	currencyRepo portsrepo.CurrencyRepositoryFacade
	clock        clock.Clock
}

// NewExchangeRateService creates a new exchange rate service.
func NewExchangeRateService(rateRepo portsrepo.ExchangeRateRepositoryFacade, currencyRepo portsrepo.CurrencyRepositoryFacade, clk clock.Clock) portssvc.ExchangeRateSvcFacade {
	return &exchangeRateService{rateRepo: rateRepo, currencyRepo: currencyRepo, clock: clk}
}

var _ portssvc.ExchangeRateSvcFacade = (*exchangeRateService)(nil)

// Resolve implements portssvc.ExchangeRateSvcFacade.
func (s *exchangeRateService) Resolve(ctx context.Context, fromCode, toCode string, asOf time.Time) (*domain.ExchangeRate, error) {
	fromCode = strings.ToUpper(fromCode)
	toCode = strings.ToUpper(toCode)
	if len(fromCode) != 3 || len(toCode) != 3 {
		return nil, fmt.Errorf("%w: currency codes must be 3 letters", apperrors.ErrValidation)
	}

	if fromCode == toCode {
		return &domain.ExchangeRate{
			FromCurrencyCode: fromCode,
			ToCurrencyCode:   toCode,
			Rate:             decimal.NewFromInt(1),
			DateEffective:    asOf,
		}, nil
	}

	rate, err := s.rateRepo.FindRateAsOf(ctx, fromCode, toCode, asOf)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, fmt.Errorf("%w: no %s/%s rate effective at or before %s",
				ErrRateNotFound, fromCode, toCode, asOf.Format(time.RFC3339))
		}
		return nil, fmt.Errorf("failed to resolve exchange rate: %w", err)
	}
	return rate, nil
}

// CreateExchangeRate implements portssvc.ExchangeRateSvcFacade.
func (s *exchangeRateService) CreateExchangeRate(ctx context.Context, req dto.CreateExchangeRateRequest, actor string) (*domain.ExchangeRate, error) {
	if req.Rate.LessThanOrEqual(decimal.Zero) {
		return nil, fmt.Errorf("%w: exchange rate must be positive", apperrors.ErrValidation)
	}
	if req.FromCurrencyCode == req.ToCurrencyCode {
		return nil, fmt.Errorf("%w: from and to currency codes cannot be the same", apperrors.ErrValidation)
	}

	for _, code := range []string{req.FromCurrencyCode, req.ToCurrencyCode} {
		if _, err := s.currencyRepo.FindCurrencyByCode(ctx, code); err != nil {
			if errors.Is(err, apperrors.ErrNotFound) {
				return nil, fmt.Errorf("%w: currency code '%s' not found", apperrors.ErrValidation, code)
			}
			return nil, fmt.Errorf("failed to validate currency '%s': %w", code, err)
		}
	}

	now := s.clock.Now()
	rate := domain.ExchangeRate{
		ExchangeRateID:   uuid.NewString(),
		FromCurrencyCode: strings.ToUpper(req.FromCurrencyCode),
		ToCurrencyCode:   strings.ToUpper(req.ToCurrencyCode),
		Rate:             req.Rate,
		DateEffective:    req.DateEffective,
		AuditFields: domain.AuditFields{
			CreatedAt:     now,
			CreatedBy:     actor,
			LastUpdatedAt: now,
			LastUpdatedBy: actor,
		},
	}

	if err := s.rateRepo.SaveExchangeRate(ctx, rate); err != nil {
		return nil, fmt.Errorf("failed to create exchange rate: %w", err)
	}
	return &rate, nil
}
