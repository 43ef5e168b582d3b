package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// JournalStatus indicates the state of a journal entry.
type JournalStatus string

// LineType indicates whether a journal line is a debit or a credit.
type LineType string

// JournalEntry is the journal_entries table row. Amounts are minor-unit
// integers in the entry currency.
type JournalEntry struct {
	EntryID          string          `db:"entry_id"`
	EntryDate        time.Time       `db:"entry_date"`
	Description      string          `db:"description"`
	CurrencyCode     string          `db:"currency_code"`
	ExchangeRate     decimal.Decimal `db:"exchange_rate"`
	EventType        string          `db:"event_type"`
	ReferenceType    string          `db:"reference_type"`
	ReferenceID      string          `db:"reference_id"`
	Status           JournalStatus   `db:"status"`
	OriginalEntryID  *string         `db:"original_entry_id"`  // Nullable
	ReversingEntryID *string         `db:"reversing_entry_id"` // Nullable
	Amount           int64           `db:"amount"`
	AuditFields
}

// JournalLine is the journal_lines table row.
type JournalLine struct {
	LineID         string   `db:"line_id"`
	EntryID        string   `db:"entry_id"`
	AccountID      string   `db:"account_id"`
	LineType       LineType `db:"line_type"`
	Amount         int64    `db:"amount"`
	CurrencyCode   string   `db:"currency_code"`
	RunningBalance int64    `db:"running_balance"`
	Notes          string   `db:"notes"`
	AuditFields
}
