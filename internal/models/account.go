package models

// AccountType defines the fundamental accounting type of an account.
type AccountType string

// Account is the accounts table row. The balance is a minor-unit integer in
// the account currency.
type Account struct {
	AccountID       string      `db:"account_id"`
	Code            string      `db:"code"`
	Name            string      `db:"name"`
	AccountType     AccountType `db:"account_type"`
	CurrencyCode    string      `db:"currency_code"`
	ParentAccountID *string     `db:"parent_account_id"` // Nullable
	Description     string      `db:"description"`
	IsActive        bool        `db:"is_active"`
	IsSystem        bool        `db:"is_system"`
	Balance         int64       `db:"balance"`
	AuditFields
}
