package services

import (
	"context"

	"github.com/bizledger/erp_core/internal/core/domain"
	"github.com/bizledger/erp_core/internal/dto"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
)

// InventoryReaderSvc defines lock-free inventory reads.
type InventoryReaderSvc interface {
	// GetBalance returns the derived {item, location} balance.
	GetBalance(ctx context.Context, itemID, location string) (*domain.InventoryBalance, error)

	// PreviewConsumption computes the FIFO cost breakdown a consumption would
	// produce, without locking or mutating anything.
	PreviewConsumption(ctx context.Context, req dto.ConsumeStockRequest) ([]domain.LotConsumption, error)
}

// InventoryWriterSvc defines the stand-alone cost engine operations, each in
// its own transaction.
type InventoryWriterSvc interface {
	// ReceiveStock creates a costed lot and its STOCK_IN movement.
	ReceiveStock(ctx context.Context, req dto.ReceiveStockRequest, actor string) (*domain.StockLot, error)

	// ConsumeStock drains open lots oldest-first and returns the cost
	// breakdown per lot consumed.
	ConsumeStock(ctx context.Context, req dto.ConsumeStockRequest, actor string) ([]domain.LotConsumption, error)

	// AdjustStock corrects on-hand quantity and posts the adjustment.
	AdjustStock(ctx context.Context, req dto.AdjustStockRequest, actor string) ([]domain.LotConsumption, error)

	// ReverseMovement appends a compensating movement restoring the exact lot
	// and quantity the original touched.
	ReverseMovement(ctx context.Context, movementID string, actor string) (*domain.StockMovement, error)
}

// InventoryTxSvc defines the in-transaction operations document transitions
// compose with. Lots are locked after the document and its lines.
type InventoryTxSvc interface {
	ReceiveStockInTx(ctx context.Context, tx pgx.Tx, req dto.ReceiveStockRequest, actor string) (*domain.StockLot, error)
	ConsumeStockInTx(ctx context.Context, tx pgx.Tx, req dto.ConsumeStockRequest, actor string) ([]domain.LotConsumption, error)
	ReserveStockInTx(ctx context.Context, tx pgx.Tx, itemID, location string, qty decimal.Decimal, actor string) error
	ReleaseReservationInTx(ctx context.Context, tx pgx.Tx, itemID, location string, qty decimal.Decimal, actor string) error
}

// InventorySvcFacade combines the inventory service interfaces.
type InventorySvcFacade interface {
	InventoryReaderSvc
	InventoryWriterSvc
	InventoryTxSvc
}
