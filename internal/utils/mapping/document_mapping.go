package mapping

import (
	"github.com/bizledger/erp_core/internal/core/domain"
	"github.com/bizledger/erp_core/internal/models"
)

// ToModelDocument converts a domain Document to a model Document
func ToModelDocument(d domain.Document) models.Document {
	return models.Document{
		DocumentID:       d.DocumentID,
		DocumentType:     string(d.DocumentType),
		DocumentNumber:   d.DocumentNumber,
		Status:           string(d.Status),
		CounterpartyID:   d.CounterpartyID,
		CurrencyCode:     d.CurrencyCode,
		ExchangeRate:     d.ExchangeRate,
		IssueDate:        d.IssueDate,
		DueDate:          nullableTime(d.DueDate),
		ValidUntil:       nullableTime(d.ValidUntil),
		LinkedDocumentID: nullableStr(d.LinkedDocumentID),
		Subtotal:         d.Subtotal.Amount,
		DiscountAmount:   d.DiscountAmount.Amount,
		TaxAmount:        d.TaxAmount.Amount,
		TotalAmount:      d.TotalAmount.Amount,
		BalanceDue:       d.BalanceDue.Amount,
		Notes:            d.Notes,
		AuditFields:      ToModelAuditFields(d.AuditFields),
	}
}

// ToDomainDocument converts a model Document to a domain Document
func ToDomainDocument(m models.Document) domain.Document {
	return domain.Document{
		DocumentID:       m.DocumentID,
		DocumentType:     domain.DocumentType(m.DocumentType),
		DocumentNumber:   m.DocumentNumber,
		Status:           domain.DocumentStatus(m.Status),
		CounterpartyID:   m.CounterpartyID,
		CurrencyCode:     m.CurrencyCode,
		ExchangeRate:     m.ExchangeRate,
		IssueDate:        m.IssueDate,
		DueDate:          derefTime(m.DueDate),
		ValidUntil:       derefTime(m.ValidUntil),
		LinkedDocumentID: derefStr(m.LinkedDocumentID),
		Subtotal:         domain.NewMoney(m.Subtotal, m.CurrencyCode),
		DiscountAmount:   domain.NewMoney(m.DiscountAmount, m.CurrencyCode),
		TaxAmount:        domain.NewMoney(m.TaxAmount, m.CurrencyCode),
		TotalAmount:      domain.NewMoney(m.TotalAmount, m.CurrencyCode),
		BalanceDue:       domain.NewMoney(m.BalanceDue, m.CurrencyCode),
		Notes:            m.Notes,
		AuditFields:      ToDomainAuditFields(m.AuditFields),
	}
}

// ToModelDocumentLine converts a domain DocumentLine to a model DocumentLine
func ToModelDocumentLine(d domain.DocumentLine) models.DocumentLine {
	return models.DocumentLine{
		LineID:          d.LineID,
		DocumentID:      d.DocumentID,
		Position:        d.Position,
		ItemID:          d.ItemID,
		Description:     d.Description,
		Quantity:        d.Quantity,
		UnitPrice:       d.UnitPrice.Amount,
		DiscountPercent: d.DiscountPercent,
		TaxPercent:      d.TaxPercent,
		Subtotal:        d.Subtotal.Amount,
		DiscountAmount:  d.DiscountAmount.Amount,
		TaxAmount:       d.TaxAmount.Amount,
		Total:           d.Total.Amount,
		FulfilledQty:    d.FulfilledQty,
		InvoicedQty:     d.InvoicedQty,
		AuditFields:     ToModelAuditFields(d.AuditFields),
	}
}

// ToDomainDocumentLine converts a model DocumentLine to a domain DocumentLine.
// The document currency is carried in from the owning header; lines do not
// store it themselves.
func ToDomainDocumentLine(m models.DocumentLine, currencyCode string) domain.DocumentLine {
	return domain.DocumentLine{
		LineID:          m.LineID,
		DocumentID:      m.DocumentID,
		Position:        m.Position,
		ItemID:          m.ItemID,
		Description:     m.Description,
		Quantity:        m.Quantity,
		UnitPrice:       domain.NewMoney(m.UnitPrice, currencyCode),
		DiscountPercent: m.DiscountPercent,
		TaxPercent:      m.TaxPercent,
		Subtotal:        domain.NewMoney(m.Subtotal, currencyCode),
		DiscountAmount:  domain.NewMoney(m.DiscountAmount, currencyCode),
		TaxAmount:       domain.NewMoney(m.TaxAmount, currencyCode),
		Total:           domain.NewMoney(m.Total, currencyCode),
		FulfilledQty:    m.FulfilledQty,
		InvoicedQty:     m.InvoicedQty,
		AuditFields:     ToDomainAuditFields(m.AuditFields),
	}
}
