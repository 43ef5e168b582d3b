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

type ExchangeRateServiceTestSuite struct {
	suite.Suite
	mockRateRepo     *MockExchangeRateRepository
	mockCurrencyRepo *MockCurrencyRepository
	now              time.Time
	service          portssvc.ExchangeRateSvcFacade
}

func (suite *ExchangeRateServiceTestSuite) SetupTest() {
	suite.mockRateRepo = new(MockExchangeRateRepository)
	suite.mockCurrencyRepo = new(MockCurrencyRepository)
	suite.now = time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC)
	suite.service = services.NewExchangeRateService(suite.mockRateRepo, suite.mockCurrencyRepo, clock.FixedClock{Instant: suite.now})
}

func (suite *ExchangeRateServiceTestSuite) TestResolve_SameCurrencyIsOne() {
	asOf := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)

	rate, err := suite.service.Resolve(context.Background(), "usd", "USD", asOf)

	suite.Require().NoError(err)
	suite.True(rate.Rate.Equal(decimal.NewFromInt(1)))
	// The rate table is never consulted for equal currencies.
	suite.mockRateRepo.AssertNotCalled(suite.T(), "FindRateAsOf", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func (suite *ExchangeRateServiceTestSuite) TestResolve_AsOfLookup() {
	asOf := time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)
	stored := &domain.ExchangeRate{
		ExchangeRateID:   "rate-1",
		FromCurrencyCode: "EUR",
		ToCurrencyCode:   "USD",
		Rate:             decimal.RequireFromString("1.0840"),
		DateEffective:    time.Date(2025, 6, 10, 0, 0, 0, 0, time.UTC),
	}
	suite.mockRateRepo.On("FindRateAsOf", mock.Anything, "EUR", "USD", asOf).Return(stored, nil).Once()

	rate, err := suite.service.Resolve(context.Background(), "eur", "usd", asOf)

	suite.Require().NoError(err)
	suite.Equal(stored, rate)
	suite.mockRateRepo.AssertExpectations(suite.T())
}

func (suite *ExchangeRateServiceTestSuite) TestResolve_NoRateNoFallback() {
	asOf := time.Date(2025, 6, 15, 0, 0, 0, 0, time.UTC)
	suite.mockRateRepo.On("FindRateAsOf", mock.Anything, "GBP", "USD", asOf).Return(nil, apperrors.ErrNotFound).Once()

	_, err := suite.service.Resolve(context.Background(), "GBP", "USD", asOf)

	suite.ErrorIs(err, services.ErrRateNotFound)
}

func (suite *ExchangeRateServiceTestSuite) TestResolve_BadCurrencyCodes() {
	_, err := suite.service.Resolve(context.Background(), "US", "EUR", time.Now())
	suite.ErrorIs(err, apperrors.ErrValidation)
}

func (suite *ExchangeRateServiceTestSuite) TestCreateExchangeRate_Success() {
	req := dto.CreateExchangeRateRequest{
		FromCurrencyCode: "USD",
		ToCurrencyCode:   "EUR",
		Rate:             decimal.RequireFromString("0.85"),
		DateEffective:    time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC),
	}
	suite.mockCurrencyRepo.On("FindCurrencyByCode", mock.Anything, "USD").Return(&domain.Currency{CurrencyCode: "USD"}, nil).Once()
	suite.mockCurrencyRepo.On("FindCurrencyByCode", mock.Anything, "EUR").Return(&domain.Currency{CurrencyCode: "EUR"}, nil).Once()
	suite.mockRateRepo.On("SaveExchangeRate", mock.Anything, mock.AnythingOfType("domain.ExchangeRate")).Return(nil).Once()

	rate, err := suite.service.CreateExchangeRate(context.Background(), req, "user-1")

	suite.Require().NoError(err)
	suite.NotEmpty(rate.ExchangeRateID)
	suite.Equal("USD", rate.FromCurrencyCode)
	suite.Equal("EUR", rate.ToCurrencyCode)
	suite.Equal(suite.now, rate.CreatedAt, "audit fields come from the injected clock")
	suite.mockRateRepo.AssertExpectations(suite.T())
	suite.mockCurrencyRepo.AssertExpectations(suite.T())
}

func (suite *ExchangeRateServiceTestSuite) TestCreateExchangeRate_Validation() {
	_, err := suite.service.CreateExchangeRate(context.Background(), dto.CreateExchangeRateRequest{
		FromCurrencyCode: "USD", ToCurrencyCode: "EUR", Rate: decimal.Zero,
	}, "user-1")
	suite.ErrorIs(err, apperrors.ErrValidation)

	_, err = suite.service.CreateExchangeRate(context.Background(), dto.CreateExchangeRateRequest{
		FromCurrencyCode: "USD", ToCurrencyCode: "USD", Rate: decimal.NewFromInt(1),
	}, "user-1")
	suite.ErrorIs(err, apperrors.ErrValidation)
}

func (suite *ExchangeRateServiceTestSuite) TestCreateExchangeRate_UnknownCurrency() {
	suite.mockCurrencyRepo.On("FindCurrencyByCode", mock.Anything, "XXX").Return(nil, apperrors.ErrNotFound).Once()

	_, err := suite.service.CreateExchangeRate(context.Background(), dto.CreateExchangeRateRequest{
		FromCurrencyCode: "XXX", ToCurrencyCode: "USD", Rate: decimal.NewFromInt(2),
	}, "user-1")

	suite.ErrorIs(err, apperrors.ErrValidation)
}

func TestExchangeRateServiceTestSuite(t *testing.T) {
	suite.Run(t, new(ExchangeRateServiceTestSuite))
}
