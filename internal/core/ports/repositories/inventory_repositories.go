package repositories

import (
	"context"
	"time"

	"github.com/bizledger/erp_core/internal/core/domain"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
)

// InventoryReader defines lock-free read operations (previews, balances).
type InventoryReader interface {
	// ListOpenLots returns lots with available quantity for an item/location,
	// oldest received first. No locks: used for FIFO cost previews.
	ListOpenLots(ctx context.Context, itemID, location string) ([]domain.StockLot, error)

	// FindMovementByID retrieves a single stock movement.
	FindMovementByID(ctx context.Context, movementID string) (*domain.StockMovement, error)

	// FindMovementsByReference retrieves the movements recorded for a source
	// entity (e.g. all STOCK_OUT slices of one consumption).
	FindMovementsByReference(ctx context.Context, referenceType, referenceID string) ([]domain.StockMovement, error)

	// GetBalance retrieves the derived balance cache row for an item/location.
	GetBalance(ctx context.Context, itemID, location string) (*domain.InventoryBalance, error)
}

// InventoryTxOperator defines the in-transaction operations of the cost
// engine. Lots are locked in FIFO order, after the document and its lines.
type InventoryTxOperator interface {
	// SaveLotInTx persists a new stock lot.
	SaveLotInTx(ctx context.Context, tx pgx.Tx, lot domain.StockLot) error

	// FindLotByIDForUpdate locks a single lot row.
	FindLotByIDForUpdate(ctx context.Context, tx pgx.Tx, lotID string) (*domain.StockLot, error)

	// FindOpenLotsForUpdate locks all open lots for an item/location, oldest
	// received first, for FIFO consumption.
	FindOpenLotsForUpdate(ctx context.Context, tx pgx.Tx, itemID, location string) ([]domain.StockLot, error)

	// UpdateLotAvailableInTx sets a locked lot's available quantity.
	UpdateLotAvailableInTx(ctx context.Context, tx pgx.Tx, lotID string, availableQty decimal.Decimal, actor string, now time.Time) error

	// SaveMovementInTx appends a stock movement. Movements are never updated
	// or deleted.
	SaveMovementInTx(ctx context.Context, tx pgx.Tx, movement domain.StockMovement) error

	// UpsertBalanceInTx writes the derived balance cache row.
	UpsertBalanceInTx(ctx context.Context, tx pgx.Tx, balance domain.InventoryBalance) error

	// RecomputeBalanceInTx rebuilds the {item, location} balance from the
	// movement ledger and returns it. The cache is an index, not a source of
	// truth.
	RecomputeBalanceInTx(ctx context.Context, tx pgx.Tx, itemID, location string, actor string, now time.Time) (*domain.InventoryBalance, error)
}

// InventoryRepositoryFacade combines all inventory repository interfaces.
type InventoryRepositoryFacade interface {
	InventoryReader
	InventoryTxOperator
}

// InventoryRepositoryWithTx extends InventoryRepositoryFacade with transaction capabilities.
type InventoryRepositoryWithTx interface {
	InventoryRepositoryFacade
	TransactionManager
}
