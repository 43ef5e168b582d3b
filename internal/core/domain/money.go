package domain

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
)

// ErrCurrencyMismatch is returned when arithmetic is attempted between two
// Money values of different currencies without an explicit conversion step.
var ErrCurrencyMismatch = errors.New("currency mismatch")

// Money is a monetary amount expressed as an integer count of minor units
// (cents for USD) plus a currency code. It is never a floating-point value.
//
// All operations round to minor-unit precision using banker's rounding, and
// only at the final step: scalar multiplications keep full decimal precision
// internally and round once when producing the resulting Money.
type Money struct {
	Amount   int64  `json:"amount"`   // Minor units
	Currency string `json:"currency"` // ISO 4217 code
}

// NewMoney builds a Money from a minor-unit amount.
func NewMoney(minorUnits int64, currency string) Money {
	return Money{Amount: minorUnits, Currency: currency}
}

// NewMoneyFromDecimal builds a Money from a major-unit decimal (e.g. 12.345),
// rounding to the currency's precision with banker's rounding.
func NewMoneyFromDecimal(d decimal.Decimal, currency string, precision int32) Money {
	return Money{Amount: d.Shift(precision).RoundBank(0).IntPart(), Currency: currency}
}

// Decimal re-expresses the amount in major units at the given precision.
func (m Money) Decimal(precision int32) decimal.Decimal {
	return decimal.New(m.Amount, -precision)
}

// IsZero reports whether the amount is zero.
func (m Money) IsZero() bool { return m.Amount == 0 }

// IsNegative reports whether the amount is below zero.
func (m Money) IsNegative() bool { return m.Amount < 0 }

// Neg returns the amount with its sign flipped.
func (m Money) Neg() Money { return Money{Amount: -m.Amount, Currency: m.Currency} }

func (m Money) sameCurrency(other Money) error {
	if m.Currency != other.Currency {
		return fmt.Errorf("%w: %s vs %s", ErrCurrencyMismatch, m.Currency, other.Currency)
	}
	return nil
}

// Add returns m + other. Fails with ErrCurrencyMismatch on differing currencies.
func (m Money) Add(other Money) (Money, error) {
	if err := m.sameCurrency(other); err != nil {
		return Money{}, err
	}
	return Money{Amount: m.Amount + other.Amount, Currency: m.Currency}, nil
}

// Sub returns m - other. Fails with ErrCurrencyMismatch on differing currencies.
func (m Money) Sub(other Money) (Money, error) {
	if err := m.sameCurrency(other); err != nil {
		return Money{}, err
	}
	return Money{Amount: m.Amount - other.Amount, Currency: m.Currency}, nil
}

// MulScalar multiplies the amount by a dimensionless scalar (quantity,
// percentage fraction), rounding the result to minor units with banker's
// rounding.
func (m Money) MulScalar(factor decimal.Decimal) Money {
	product := decimal.NewFromInt(m.Amount).Mul(factor)
	return Money{Amount: product.RoundBank(0).IntPart(), Currency: m.Currency}
}

// Cmp compares two amounts of the same currency: -1 if m < other, 0 if equal,
// +1 if m > other.
func (m Money) Cmp(other Money) (int, error) {
	if err := m.sameCurrency(other); err != nil {
		return 0, err
	}
	switch {
	case m.Amount < other.Amount:
		return -1, nil
	case m.Amount > other.Amount:
		return 1, nil
	default:
		return 0, nil
	}
}

// AllocateProRata splits the amount across weights so the parts sum exactly to
// the total. Each share is floored to minor units and the residual is assigned
// to the largest weight (the first one on ties). This is what keeps line-level
// tax and discount splits reconciling to document totals.
func (m Money) AllocateProRata(weights []decimal.Decimal) ([]Money, error) {
	if len(weights) == 0 {
		return nil, errors.New("allocate pro rata: no weights")
	}
	sum := decimal.Zero
	for _, w := range weights {
		if w.IsNegative() {
			return nil, errors.New("allocate pro rata: negative weight")
		}
		sum = sum.Add(w)
	}
	if sum.IsZero() {
		return nil, errors.New("allocate pro rata: weights sum to zero")
	}

	parts := make([]Money, len(weights))
	total := decimal.NewFromInt(m.Amount)
	var assigned int64
	largest := 0
	for i, w := range weights {
		share := total.Mul(w).Div(sum).Floor().IntPart()
		parts[i] = Money{Amount: share, Currency: m.Currency}
		assigned += share
		if w.GreaterThan(weights[largest]) {
			largest = i
		}
	}
	parts[largest].Amount += m.Amount - assigned
	return parts, nil
}

// Convert re-expresses the amount in another currency using an explicit rate.
// The rate and the currency precisions come from the caller (frozen on the
// owning document); rounding is banker's, applied once at the end.
func (m Money) Convert(rate decimal.Decimal, from, to Currency) (Money, error) {
	if m.Currency != from.CurrencyCode {
		return Money{}, fmt.Errorf("%w: amount is %s, source currency is %s", ErrCurrencyMismatch, m.Currency, from.CurrencyCode)
	}
	major := decimal.New(m.Amount, -from.Precision)
	converted := major.Mul(rate)
	return Money{
		Amount:   converted.Shift(to.Precision).RoundBank(0).IntPart(),
		Currency: to.CurrencyCode,
	}, nil
}

// String renders the raw minor-unit amount with its currency code, mainly for
// logs and error messages.
func (m Money) String() string {
	return fmt.Sprintf("%d %s", m.Amount, m.Currency)
}
