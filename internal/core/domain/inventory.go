package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// StockMovementType classifies a stock movement.
type StockMovementType string

const (
	StockIn         StockMovementType = "STOCK_IN"
	StockOut        StockMovementType = "STOCK_OUT"
	StockAdjustment StockMovementType = "STOCK_ADJUSTMENT"
)

// StockLot is a specific costed receipt of an item, tracked separately so
// consumption can follow FIFO order. A lot is exhausted (AvailableQty zero)
// but never deleted: the costing history must survive.
type StockLot struct {
	LotID        string          `json:"lotID"` // Primary Key (UUID)
	ItemID       string          `json:"itemID"`
	Location     string          `json:"location"`
	ReceivedQty  decimal.Decimal `json:"receivedQty"`  // > 0, fixed at receipt
	AvailableQty decimal.Decimal `json:"availableQty"` // 0 <= available <= received
	UnitCost     Money           `json:"unitCost"`     // Historical cost per unit
	ReceivedDate time.Time       `json:"receivedDate"` // FIFO ordering key
	AuditFields
}

// StockMovement is an immutable, append-only record of a quantity change
// against one lot and one location. Corrections are compensating movements
// linked through ReversesMovementID; history is never edited.
type StockMovement struct {
	MovementID         string            `json:"movementID"` // Primary Key (UUID)
	MovementType       StockMovementType `json:"movementType"`
	LotID              string            `json:"lotID"`
	ItemID             string            `json:"itemID"`
	Location           string            `json:"location"`
	Quantity           decimal.Decimal   `json:"quantity"` // Signed: positive in, negative out
	UnitCost           Money             `json:"unitCost"` // Cost carried by the affected lot
	BalanceBefore      decimal.Decimal   `json:"balanceBefore"`
	BalanceAfter       decimal.Decimal   `json:"balanceAfter"`
	ReferenceType      string            `json:"referenceType"` // Source entity kind (document, adjustment)
	ReferenceID        string            `json:"referenceID"`
	ReversesMovementID string            `json:"reversesMovementID"` // Set on compensating movements
	OccurredAt         time.Time         `json:"occurredAt"`
	AuditFields
}

// InventoryBalance is the derived {item, location} quantity cache. It is
// recomputed from movements and treated as an index, not a source of truth.
type InventoryBalance struct {
	ItemID    string          `json:"itemID"`
	Location  string          `json:"location"`
	Quantity  decimal.Decimal `json:"quantity"`
	Reserved  decimal.Decimal `json:"reserved"`
	Available decimal.Decimal `json:"available"`
	AuditFields
}

// LotConsumption is one slice of a FIFO consumption: how much was taken from
// which lot and at what historical unit cost. The ledger posts cost of goods
// sold from these, not from a current or average cost.
type LotConsumption struct {
	LotID      string          `json:"lotID"`
	MovementID string          `json:"movementID"`
	QtyTaken   decimal.Decimal `json:"qtyTaken"`
	UnitCost   Money           `json:"unitCost"`
	Cost       Money           `json:"cost"` // QtyTaken x UnitCost, rounded once
}

// TotalCost sums the cost slices of a consumption breakdown.
func TotalCost(consumptions []LotConsumption, currency string) Money {
	total := Money{Currency: currency}
	for _, c := range consumptions {
		total.Amount += c.Cost.Amount
	}
	return total
}
