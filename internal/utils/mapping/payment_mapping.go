package mapping

import (
	"github.com/bizledger/erp_core/internal/core/domain"
	"github.com/bizledger/erp_core/internal/models"
)

// ToModelPayment converts a domain Payment to a model Payment
func ToModelPayment(d domain.Payment) models.Payment {
	return models.Payment{
		PaymentID:       d.PaymentID,
		Direction:       string(d.Direction),
		CounterpartyID:  d.CounterpartyID,
		Amount:          d.Amount.Amount,
		AllocatedAmount: d.AllocatedAmount.Amount,
		CurrencyCode:    d.Amount.Currency,
		PaymentDate:     d.PaymentDate,
		Reference:       d.Reference,
		AuditFields:     ToModelAuditFields(d.AuditFields),
	}
}

// ToDomainPayment converts a model Payment to a domain Payment
func ToDomainPayment(m models.Payment) domain.Payment {
	return domain.Payment{
		PaymentID:       m.PaymentID,
		Direction:       domain.PaymentDirection(m.Direction),
		CounterpartyID:  m.CounterpartyID,
		Amount:          domain.NewMoney(m.Amount, m.CurrencyCode),
		AllocatedAmount: domain.NewMoney(m.AllocatedAmount, m.CurrencyCode),
		PaymentDate:     m.PaymentDate,
		Reference:       m.Reference,
		AuditFields:     ToDomainAuditFields(m.AuditFields),
	}
}

// ToModelAllocation converts a domain Allocation to a model Allocation
func ToModelAllocation(d domain.Allocation) models.Allocation {
	return models.Allocation{
		AllocationID: d.AllocationID,
		PaymentID:    d.PaymentID,
		InvoiceID:    d.InvoiceID,
		Amount:       d.Amount.Amount,
		CurrencyCode: d.Amount.Currency,
		AuditFields:  ToModelAuditFields(d.AuditFields),
	}
}

// ToDomainAllocation converts a model Allocation to a domain Allocation
func ToDomainAllocation(m models.Allocation) domain.Allocation {
	return domain.Allocation{
		AllocationID: m.AllocationID,
		PaymentID:    m.PaymentID,
		InvoiceID:    m.InvoiceID,
		Amount:       domain.NewMoney(m.Amount, m.CurrencyCode),
		AuditFields:  ToDomainAuditFields(m.AuditFields),
	}
}

// ToDomainAllocationSlice converts a slice of model Allocations to domain
func ToDomainAllocationSlice(ms []models.Allocation) []domain.Allocation {
	ds := make([]domain.Allocation, len(ms))
	for i, m := range ms {
		ds[i] = ToDomainAllocation(m)
	}
	return ds
}
