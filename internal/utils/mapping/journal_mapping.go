package mapping

import (
	"github.com/bizledger/erp_core/internal/core/domain"
	"github.com/bizledger/erp_core/internal/models"
)

// ToModelJournalEntry converts a domain JournalEntry to a model JournalEntry
func ToModelJournalEntry(d domain.JournalEntry) models.JournalEntry {
	return models.JournalEntry{
		EntryID:          d.EntryID,
		EntryDate:        d.EntryDate,
		Description:      d.Description,
		CurrencyCode:     d.CurrencyCode,
		ExchangeRate:     d.ExchangeRate,
		EventType:        string(d.EventType),
		ReferenceType:    d.ReferenceType,
		ReferenceID:      d.ReferenceID,
		Status:           models.JournalStatus(d.Status),
		OriginalEntryID:  nullableStr(d.OriginalEntryID),
		ReversingEntryID: nullableStr(d.ReversingEntryID),
		Amount:           d.Amount.Amount,
		AuditFields:      ToModelAuditFields(d.AuditFields),
	}
}

// ToDomainJournalEntry converts a model JournalEntry to a domain JournalEntry
func ToDomainJournalEntry(m models.JournalEntry) domain.JournalEntry {
	return domain.JournalEntry{
		EntryID:          m.EntryID,
		EntryDate:        m.EntryDate,
		Description:      m.Description,
		CurrencyCode:     m.CurrencyCode,
		ExchangeRate:     m.ExchangeRate,
		EventType:        domain.LedgerEventType(m.EventType),
		ReferenceType:    m.ReferenceType,
		ReferenceID:      m.ReferenceID,
		Status:           domain.JournalStatus(m.Status),
		OriginalEntryID:  derefStr(m.OriginalEntryID),
		ReversingEntryID: derefStr(m.ReversingEntryID),
		Amount:           domain.NewMoney(m.Amount, m.CurrencyCode),
		AuditFields:      ToDomainAuditFields(m.AuditFields),
	}
}

// ToModelJournalLine converts a domain JournalLine to a model JournalLine
func ToModelJournalLine(d domain.JournalLine) models.JournalLine {
	return models.JournalLine{
		LineID:         d.LineID,
		EntryID:        d.EntryID,
		AccountID:      d.AccountID,
		LineType:       models.LineType(d.LineType),
		Amount:         d.Amount.Amount,
		CurrencyCode:   d.Amount.Currency,
		RunningBalance: d.RunningBalance.Amount,
		Notes:          d.Notes,
		AuditFields:    ToModelAuditFields(d.AuditFields),
	}
}

// ToDomainJournalLine converts a model JournalLine to a domain JournalLine
func ToDomainJournalLine(m models.JournalLine) domain.JournalLine {
	return domain.JournalLine{
		LineID:         m.LineID,
		EntryID:        m.EntryID,
		AccountID:      m.AccountID,
		LineType:       domain.LineType(m.LineType),
		Amount:         domain.NewMoney(m.Amount, m.CurrencyCode),
		RunningBalance: domain.NewMoney(m.RunningBalance, m.CurrencyCode),
		Notes:          m.Notes,
		AuditFields:    ToDomainAuditFields(m.AuditFields),
	}
}

// ToDomainJournalLineSlice converts a slice of model JournalLines to domain
func ToDomainJournalLineSlice(ms []models.JournalLine) []domain.JournalLine {
	ds := make([]domain.JournalLine, len(ms))
	for i, m := range ms {
		ds[i] = ToDomainJournalLine(m)
	}
	return ds
}
