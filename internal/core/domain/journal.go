package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// JournalStatus indicates the state of a journal entry.
type JournalStatus string

const (
	Posted   JournalStatus = "POSTED"
	Reversed JournalStatus = "REVERSED"
)

// LineType indicates whether a journal line is a Debit or a Credit.
type LineType string

const (
	Debit  LineType = "DEBIT"
	Credit LineType = "CREDIT"
)

// JournalEntry is a single balanced financial record created in response to
// exactly one business event. It is immutable once posted; corrections are
// reversing entries linked through OriginalEntryID/ReversingEntryID.
type JournalEntry struct {
	EntryID          string          `json:"entryID"`   // Primary Key (UUID)
	EntryDate        time.Time       `json:"entryDate"` // Date the business event occurred
	Description      string          `json:"description"`
	CurrencyCode     string          `json:"currencyCode"`     // Entry base currency
	ExchangeRate     decimal.Decimal `json:"exchangeRate"`     // Frozen at posting; 1 for base-currency entries
	EventType        LedgerEventType `json:"eventType"`        // Business event that produced this entry
	ReferenceType    string          `json:"referenceType"`    // Entity kind of the source event
	ReferenceID      string          `json:"referenceID"`      // Entity id of the source event
	Status           JournalStatus   `json:"status"`           // POSTED on creation
	OriginalEntryID  string          `json:"originalEntryID"`  // Set on reversing entries
	ReversingEntryID string          `json:"reversingEntryID"` // Set on reversed entries
	Amount           Money           `json:"amount"`           // Total of the debit side
	AuditFields
}

// JournalLine is a single line within a JournalEntry, affecting one account.
// Exactly one side is non-zero: the line is either a debit or a credit.
type JournalLine struct {
	LineID         string   `json:"lineID"`  // Primary Key (UUID)
	EntryID        string   `json:"entryID"` // FK -> JournalEntry (Not Null)
	AccountID      string   `json:"accountID"`
	LineType       LineType `json:"lineType"`
	Amount         Money    `json:"amount"`         // Positive, in the entry currency
	RunningBalance Money    `json:"runningBalance"` // Account balance after this line
	Notes          string   `json:"notes"`
	AuditFields
}
