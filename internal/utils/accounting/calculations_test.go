package accounting_test

import (
	"testing"

	"github.com/bizledger/erp_core/internal/core/domain"
	"github.com/bizledger/erp_core/internal/utils/accounting"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func line(lineType domain.LineType, amount int64) domain.JournalLine {
	return domain.JournalLine{
		LineID:   "line-1",
		LineType: lineType,
		Amount:   domain.NewMoney(amount, "USD"),
	}
}

func TestCalculateSignedAmount(t *testing.T) {
	tests := []struct {
		name        string
		lineType    domain.LineType
		accountType domain.AccountType
		want        int64
	}{
		{"debit to asset is positive", domain.Debit, domain.Asset, 100},
		{"credit to asset is negative", domain.Credit, domain.Asset, -100},
		{"debit to expense is positive", domain.Debit, domain.Expense, 100},
		{"debit to liability is negative", domain.Debit, domain.Liability, -100},
		{"credit to liability is positive", domain.Credit, domain.Liability, 100},
		{"credit to income is positive", domain.Credit, domain.Income, 100},
		{"debit to equity is negative", domain.Debit, domain.Equity, -100},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := accounting.CalculateSignedAmount(line(tt.lineType, 100), tt.accountType)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got.Amount)
		})
	}
}

func TestCalculateSignedAmount_UnknownType(t *testing.T) {
	_, err := accounting.CalculateSignedAmount(line(domain.Debit, 100), domain.AccountType("BOGUS"))
	assert.Error(t, err)
}

func TestValidateEntryBalance(t *testing.T) {
	balanced := []domain.JournalLine{
		line(domain.Debit, 1035),
		line(domain.Credit, 900),
		line(domain.Credit, 135),
	}
	assert.NoError(t, accounting.ValidateEntryBalance(balanced, "USD"))

	unbalanced := []domain.JournalLine{
		line(domain.Debit, 1035),
		line(domain.Credit, 1000),
	}
	assert.Error(t, accounting.ValidateEntryBalance(unbalanced, "USD"))

	tooFew := []domain.JournalLine{line(domain.Debit, 100)}
	assert.Error(t, accounting.ValidateEntryBalance(tooFew, "USD"))

	wrongCurrency := []domain.JournalLine{
		line(domain.Debit, 100),
		{LineID: "line-2", LineType: domain.Credit, Amount: domain.NewMoney(100, "EUR")},
	}
	assert.Error(t, accounting.ValidateEntryBalance(wrongCurrency, "USD"))

	nonPositive := []domain.JournalLine{
		line(domain.Debit, 0),
		line(domain.Credit, 0),
	}
	assert.Error(t, accounting.ValidateEntryBalance(nonPositive, "USD"))
}
