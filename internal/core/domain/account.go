package domain

// AccountType defines the fundamental accounting type of an account.
type AccountType string

const (
	Asset     AccountType = "ASSET"
	Liability AccountType = "LIABILITY"
	Equity    AccountType = "EQUITY"
	Income    AccountType = "INCOME"
	Expense   AccountType = "EXPENSE"
)

// Account is a node in the chart-of-accounts tree. Children reference their
// parent through ParentAccountID; ownership flows parent -> children only and
// the persistence layer resolves the hierarchy, so updates never follow a
// child -> parent pointer to mutate the parent.
type Account struct {
	AccountID       string      `json:"accountID"`       // Primary Key (UUID)
	Code            string      `json:"code"`            // Chart code (e.g., "1300")
	Name            string      `json:"name"`            // User-defined name
	AccountType     AccountType `json:"accountType"`     // ASSET, LIABILITY, etc.
	CurrencyCode    string      `json:"currencyCode"`    // FK -> currencies.code
	ParentAccountID string      `json:"parentAccountID"` // Nullable FK -> accounts.account_id
	Description     string      `json:"description"`
	IsActive        bool        `json:"isActive"`
	IsSystem        bool        `json:"isSystem"` // Protected: cannot be deleted or retyped
	Balance         Money       `json:"balance"`  // Sum of journal lines' signed amounts
	AuditFields
}
