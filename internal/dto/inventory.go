package dto

import "github.com/shopspring/decimal"

// ReceiveStockRequest creates a new costed lot.
type ReceiveStockRequest struct {
	ItemID        string          `json:"itemID"`
	Location      string          `json:"location"`
	Quantity      decimal.Decimal `json:"quantity"`
	UnitCost      int64           `json:"unitCost"` // Minor units, base currency
	ReferenceType string          `json:"referenceType"`
	ReferenceID   string          `json:"referenceID"`
}

// ConsumeStockRequest drains quantity from open lots in FIFO order.
type ConsumeStockRequest struct {
	ItemID        string          `json:"itemID"`
	Location      string          `json:"location"`
	Quantity      decimal.Decimal `json:"quantity"`
	ReferenceType string          `json:"referenceType"`
	ReferenceID   string          `json:"referenceID"`
}

// AdjustStockRequest corrects on-hand quantity up or down. Positive
// quantities create a new lot at the given unit cost; negative quantities
// consume FIFO like an outflow.
type AdjustStockRequest struct {
	ItemID   string          `json:"itemID"`
	Location string          `json:"location"`
	Quantity decimal.Decimal `json:"quantity"`
	UnitCost int64           `json:"unitCost"` // Only used for positive adjustments
	Reason   string          `json:"reason"`
}
