package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// StockLot is the stock_lots table row. Unit cost is a minor-unit integer in
// the base currency.
type StockLot struct {
	LotID        string          `db:"lot_id"`
	ItemID       string          `db:"item_id"`
	Location     string          `db:"location"`
	ReceivedQty  decimal.Decimal `db:"received_qty"`
	AvailableQty decimal.Decimal `db:"available_qty"`
	UnitCost     int64           `db:"unit_cost"`
	CurrencyCode string          `db:"currency_code"`
	ReceivedDate time.Time       `db:"received_date"`
	AuditFields
}

// StockMovement is the stock_movements table row. Append-only.
type StockMovement struct {
	MovementID         string          `db:"movement_id"`
	MovementType       string          `db:"movement_type"`
	LotID              string          `db:"lot_id"`
	ItemID             string          `db:"item_id"`
	Location           string          `db:"location"`
	Quantity           decimal.Decimal `db:"quantity"`
	UnitCost           int64           `db:"unit_cost"`
	CurrencyCode       string          `db:"currency_code"`
	BalanceBefore      decimal.Decimal `db:"balance_before"`
	BalanceAfter       decimal.Decimal `db:"balance_after"`
	ReferenceType      string          `db:"reference_type"`
	ReferenceID        string          `db:"reference_id"`
	ReversesMovementID *string         `db:"reverses_movement_id"` // Nullable
	OccurredAt         time.Time       `db:"occurred_at"`
	AuditFields
}

// InventoryBalance is the inventory_balances cache table row.
type InventoryBalance struct {
	ItemID    string          `db:"item_id"`
	Location  string          `db:"location"`
	Quantity  decimal.Decimal `db:"quantity"`
	Reserved  decimal.Decimal `db:"reserved"`
	Available decimal.Decimal `db:"available"`
	AuditFields
}
