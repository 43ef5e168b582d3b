package mapping

import (
	"github.com/bizledger/erp_core/internal/core/domain"
	"github.com/bizledger/erp_core/internal/models"
)

// ToModelStockLot converts a domain StockLot to a model StockLot
func ToModelStockLot(d domain.StockLot) models.StockLot {
	return models.StockLot{
		LotID:        d.LotID,
		ItemID:       d.ItemID,
		Location:     d.Location,
		ReceivedQty:  d.ReceivedQty,
		AvailableQty: d.AvailableQty,
		UnitCost:     d.UnitCost.Amount,
		CurrencyCode: d.UnitCost.Currency,
		ReceivedDate: d.ReceivedDate,
		AuditFields:  ToModelAuditFields(d.AuditFields),
	}
}

// ToDomainStockLot converts a model StockLot to a domain StockLot
func ToDomainStockLot(m models.StockLot) domain.StockLot {
	return domain.StockLot{
		LotID:        m.LotID,
		ItemID:       m.ItemID,
		Location:     m.Location,
		ReceivedQty:  m.ReceivedQty,
		AvailableQty: m.AvailableQty,
		UnitCost:     domain.NewMoney(m.UnitCost, m.CurrencyCode),
		ReceivedDate: m.ReceivedDate,
		AuditFields:  ToDomainAuditFields(m.AuditFields),
	}
}

// ToModelStockMovement converts a domain StockMovement to a model StockMovement
func ToModelStockMovement(d domain.StockMovement) models.StockMovement {
	return models.StockMovement{
		MovementID:         d.MovementID,
		MovementType:       string(d.MovementType),
		LotID:              d.LotID,
		ItemID:             d.ItemID,
		Location:           d.Location,
		Quantity:           d.Quantity,
		UnitCost:           d.UnitCost.Amount,
		CurrencyCode:       d.UnitCost.Currency,
		BalanceBefore:      d.BalanceBefore,
		BalanceAfter:       d.BalanceAfter,
		ReferenceType:      d.ReferenceType,
		ReferenceID:        d.ReferenceID,
		ReversesMovementID: nullableStr(d.ReversesMovementID),
		OccurredAt:         d.OccurredAt,
		AuditFields:        ToModelAuditFields(d.AuditFields),
	}
}

// ToDomainStockMovement converts a model StockMovement to a domain StockMovement
func ToDomainStockMovement(m models.StockMovement) domain.StockMovement {
	return domain.StockMovement{
		MovementID:         m.MovementID,
		MovementType:       domain.StockMovementType(m.MovementType),
		LotID:              m.LotID,
		ItemID:             m.ItemID,
		Location:           m.Location,
		Quantity:           m.Quantity,
		UnitCost:           domain.NewMoney(m.UnitCost, m.CurrencyCode),
		BalanceBefore:      m.BalanceBefore,
		BalanceAfter:       m.BalanceAfter,
		ReferenceType:      m.ReferenceType,
		ReferenceID:        m.ReferenceID,
		ReversesMovementID: derefStr(m.ReversesMovementID),
		OccurredAt:         m.OccurredAt,
		AuditFields:        ToDomainAuditFields(m.AuditFields),
	}
}

// ToModelInventoryBalance converts a domain InventoryBalance to a model InventoryBalance
func ToModelInventoryBalance(d domain.InventoryBalance) models.InventoryBalance {
	return models.InventoryBalance{
		ItemID:      d.ItemID,
		Location:    d.Location,
		Quantity:    d.Quantity,
		Reserved:    d.Reserved,
		Available:   d.Available,
		AuditFields: ToModelAuditFields(d.AuditFields),
	}
}

// ToDomainInventoryBalance converts a model InventoryBalance to a domain InventoryBalance
func ToDomainInventoryBalance(m models.InventoryBalance) domain.InventoryBalance {
	return domain.InventoryBalance{
		ItemID:      m.ItemID,
		Location:    m.Location,
		Quantity:    m.Quantity,
		Reserved:    m.Reserved,
		Available:   m.Available,
		AuditFields: ToDomainAuditFields(m.AuditFields),
	}
}
