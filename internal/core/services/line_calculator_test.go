package services_test

import (
	"context"
	"testing"

	"github.com/bizledger/erp_core/internal/apperrors"
	"github.com/bizledger/erp_core/internal/core/domain"
	portssvc "github.com/bizledger/erp_core/internal/core/ports/services"
	"github.com/bizledger/erp_core/internal/core/services"
	"github.com/bizledger/erp_core/internal/dto"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/suite"
)

type CalculatorServiceTestSuite struct {
	suite.Suite
	service portssvc.CalculatorSvcFacade
}

func (suite *CalculatorServiceTestSuite) SetupTest() {
	suite.service = services.NewCalculatorService()
}

func (suite *CalculatorServiceTestSuite) TestComputeLine_DiscountAndTax() {
	// 10 x 100.00, 10% discount, 15% tax on the discounted base:
	// subtotal 1000.00, discount 100.00, tax 135.00, total 1035.00
	result, err := suite.service.ComputeLine(context.Background(), dto.ComputeLineRequest{
		Quantity:        decimal.NewFromInt(10),
		UnitPrice:       10000,
		CurrencyCode:    "USD",
		DiscountPercent: decimal.NewFromInt(10),
		TaxPercent:      decimal.NewFromInt(15),
	})

	suite.Require().NoError(err)
	suite.Equal(domain.NewMoney(100000, "USD"), result.Subtotal)
	suite.Equal(domain.NewMoney(10000, "USD"), result.DiscountAmount)
	suite.Equal(domain.NewMoney(13500, "USD"), result.TaxAmount)
	suite.Equal(domain.NewMoney(103500, "USD"), result.Total)
}

func (suite *CalculatorServiceTestSuite) TestComputeLine_NoDiscountNoTax() {
	result, err := suite.service.ComputeLine(context.Background(), dto.ComputeLineRequest{
		Quantity:     decimal.RequireFromString("2.5"),
		UnitPrice:    1999,
		CurrencyCode: "EUR",
	})

	suite.Require().NoError(err)
	// 2.5 x 19.99 = 49.975 -> 4998 minor units (banker's rounding)
	suite.Equal(domain.NewMoney(4998, "EUR"), result.Subtotal)
	suite.Equal(result.Subtotal, result.Total)
	suite.True(result.DiscountAmount.IsZero())
	suite.True(result.TaxAmount.IsZero())
}

func (suite *CalculatorServiceTestSuite) TestComputeLine_ComponentsReconcile() {
	// A case where rounding each component separately could drift: the total
	// must still equal subtotal - discount + tax in minor units.
	result, err := suite.service.ComputeLine(context.Background(), dto.ComputeLineRequest{
		Quantity:        decimal.RequireFromString("3"),
		UnitPrice:       3333,
		CurrencyCode:    "USD",
		DiscountPercent: decimal.RequireFromString("7.5"),
		TaxPercent:      decimal.RequireFromString("19"),
	})

	suite.Require().NoError(err)
	suite.Equal(result.Subtotal.Amount-result.DiscountAmount.Amount+result.TaxAmount.Amount, result.Total.Amount)
}

func (suite *CalculatorServiceTestSuite) TestComputeLine_Validation() {
	cases := []dto.ComputeLineRequest{
		{Quantity: decimal.Zero, UnitPrice: 100, CurrencyCode: "USD"},
		{Quantity: decimal.NewFromInt(-1), UnitPrice: 100, CurrencyCode: "USD"},
		{Quantity: decimal.NewFromInt(1), UnitPrice: 100, CurrencyCode: "USD", DiscountPercent: decimal.NewFromInt(101)},
		{Quantity: decimal.NewFromInt(1), UnitPrice: 100, CurrencyCode: "USD", TaxPercent: decimal.NewFromInt(-5)},
		{Quantity: decimal.NewFromInt(1), UnitPrice: 100},
	}
	for i, req := range cases {
		_, err := suite.service.ComputeLine(context.Background(), req)
		suite.ErrorIs(err, apperrors.ErrValidation, "case %d", i)
	}
}

func (suite *CalculatorServiceTestSuite) TestComputeDocumentTotals() {
	lines := []domain.DocumentLine{
		{
			LineID:         "l1",
			UnitPrice:      domain.NewMoney(10000, "USD"),
			Subtotal:       domain.NewMoney(100000, "USD"),
			DiscountAmount: domain.NewMoney(10000, "USD"),
			TaxAmount:      domain.NewMoney(13500, "USD"),
			Total:          domain.NewMoney(103500, "USD"),
		},
		{
			LineID:         "l2",
			UnitPrice:      domain.NewMoney(500, "USD"),
			Subtotal:       domain.NewMoney(2500, "USD"),
			DiscountAmount: domain.NewMoney(0, "USD"),
			TaxAmount:      domain.NewMoney(375, "USD"),
			Total:          domain.NewMoney(2875, "USD"),
		},
	}

	totals, err := suite.service.ComputeDocumentTotals(context.Background(), lines)
	suite.Require().NoError(err)
	suite.Equal(int64(102500), totals.Subtotal.Amount)
	suite.Equal(int64(10000), totals.DiscountAmount.Amount)
	suite.Equal(int64(13875), totals.TaxAmount.Amount)
	suite.Equal(int64(106375), totals.TotalAmount.Amount)
}

func (suite *CalculatorServiceTestSuite) TestComputeDocumentTotals_MixedCurrencies() {
	lines := []domain.DocumentLine{
		{LineID: "l1", UnitPrice: domain.NewMoney(100, "USD")},
		{LineID: "l2", UnitPrice: domain.NewMoney(100, "EUR")},
	}
	_, err := suite.service.ComputeDocumentTotals(context.Background(), lines)
	suite.ErrorIs(err, apperrors.ErrValidation)
}

func (suite *CalculatorServiceTestSuite) TestComputeDocumentTotals_Empty() {
	_, err := suite.service.ComputeDocumentTotals(context.Background(), nil)
	suite.ErrorIs(err, apperrors.ErrValidation)
}

func TestCalculatorServiceTestSuite(t *testing.T) {
	suite.Run(t, new(CalculatorServiceTestSuite))
}
