package accounting

import (
	"fmt"

	"github.com/bizledger/erp_core/internal/core/domain"
)

// CalculateSignedAmount applies the correct sign to a journal line amount
// based on the account type and line type. Used by both services and
// repositories so balance math stays consistent.
//
// DEBIT to ASSET/EXPENSE -> Positive (+)
// CREDIT to ASSET/EXPENSE -> Negative (-)
// DEBIT to LIABILITY/EQUITY/INCOME -> Negative (-)
// CREDIT to LIABILITY/EQUITY/INCOME -> Positive (+)
func CalculateSignedAmount(line domain.JournalLine, accountType domain.AccountType) (domain.Money, error) {
	signed := line.Amount
	isDebit := line.LineType == domain.Debit

	switch accountType {
	case domain.Asset, domain.Expense:
		if !isDebit {
			signed = signed.Neg()
		}
	case domain.Liability, domain.Equity, domain.Income:
		if isDebit {
			signed = signed.Neg()
		}
	default:
		return domain.Money{}, fmt.Errorf("unknown account type '%s' encountered for account ID %s", accountType, line.AccountID)
	}
	return signed, nil
}

// ValidateEntryBalance checks that the lines of a journal entry balance: the
// sum of debit amounts equals the sum of credit amounts in the entry currency.
func ValidateEntryBalance(lines []domain.JournalLine, currencyCode string) error {
	if len(lines) < 2 {
		return fmt.Errorf("journal entry must have at least two lines")
	}

	var debits, credits int64
	for _, line := range lines {
		if line.Amount.Currency != currencyCode {
			return fmt.Errorf("line %s currency %s does not match entry currency %s", line.LineID, line.Amount.Currency, currencyCode)
		}
		if line.Amount.Amount <= 0 {
			return fmt.Errorf("line amount must be positive for line %s", line.LineID)
		}
		if line.LineType == domain.Debit {
			debits += line.Amount.Amount
		} else {
			credits += line.Amount.Amount
		}
	}

	if debits != credits {
		return fmt.Errorf("journal lines do not balance: debits %d, credits %d (%s)", debits, credits, currencyCode)
	}
	return nil
}
