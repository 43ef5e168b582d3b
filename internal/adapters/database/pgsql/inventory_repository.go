package pgsql

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/bizledger/erp_core/internal/apperrors"
	"github.com/bizledger/erp_core/internal/core/domain"
	portsrepo "github.com/bizledger/erp_core/internal/core/ports/repositories"
	"github.com/bizledger/erp_core/internal/models"
	"github.com/bizledger/erp_core/internal/utils/mapping"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
)

const stockLotColumns = `lot_id, item_id, location, received_qty, available_qty, unit_cost, currency_code, received_date, created_at, created_by, last_updated_at, last_updated_by`

const stockMovementColumns = `movement_id, movement_type, lot_id, item_id, location, quantity, unit_cost, currency_code, balance_before, balance_after, reference_type, reference_id, reverses_movement_id, occurred_at, created_at, created_by, last_updated_at, last_updated_by`

type PgxInventoryRepository struct {
	BaseRepository
}

// NewPgxInventoryRepository creates a new repository for stock lots, movements
// and the derived balance cache.
func NewPgxInventoryRepository(pool *pgxpool.Pool) portsrepo.InventoryRepositoryWithTx {
	return &PgxInventoryRepository{BaseRepository: NewBaseRepository(pool)}
}

func scanStockLots(rows pgx.Rows) ([]domain.StockLot, error) {
	defer rows.Close()
	lots := []domain.StockLot{}
	for rows.Next() {
		var m models.StockLot
		if err := rows.Scan(
			&m.LotID,
			&m.ItemID,
			&m.Location,
			&m.ReceivedQty,
			&m.AvailableQty,
			&m.UnitCost,
			&m.CurrencyCode,
			&m.ReceivedDate,
			&m.CreatedAt,
			&m.CreatedBy,
			&m.LastUpdatedAt,
			&m.LastUpdatedBy,
		); err != nil {
			return nil, fmt.Errorf("failed to scan stock lot row: %w", err)
		}
		lots = append(lots, mapping.ToDomainStockLot(m))
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating stock lot rows: %w", err)
	}
	return lots, nil
}

func scanStockMovement(row pgx.Row) (*models.StockMovement, error) {
	var m models.StockMovement
	err := row.Scan(
		&m.MovementID,
		&m.MovementType,
		&m.LotID,
		&m.ItemID,
		&m.Location,
		&m.Quantity,
		&m.UnitCost,
		&m.CurrencyCode,
		&m.BalanceBefore,
		&m.BalanceAfter,
		&m.ReferenceType,
		&m.ReferenceID,
		&m.ReversesMovementID,
		&m.OccurredAt,
		&m.CreatedAt,
		&m.CreatedBy,
		&m.LastUpdatedAt,
		&m.LastUpdatedBy,
	)
	if err != nil {
		return nil, err
	}
	return &m, nil
}

// ListOpenLots returns lots with available quantity, oldest received first.
func (r *PgxInventoryRepository) ListOpenLots(ctx context.Context, itemID, location string) ([]domain.StockLot, error) {
	query := `
		SELECT ` + stockLotColumns + `
		FROM stock_lots
		WHERE item_id = $1 AND location = $2 AND available_qty > 0
		ORDER BY received_date, lot_id;
	`
	rows, err := r.pool.Query(ctx, query, itemID, location)
	if err != nil {
		return nil, fmt.Errorf("failed to query open lots for %s@%s: %w", itemID, location, mapPgError(err))
	}
	return scanStockLots(rows)
}

// FindMovementByID retrieves a single stock movement.
func (r *PgxInventoryRepository) FindMovementByID(ctx context.Context, movementID string) (*domain.StockMovement, error) {
	query := `SELECT ` + stockMovementColumns + ` FROM stock_movements WHERE movement_id = $1;`
	m, err := scanStockMovement(r.pool.QueryRow(ctx, query, movementID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("%w: stock movement %s", apperrors.ErrNotFound, movementID)
		}
		return nil, fmt.Errorf("failed to find stock movement %s: %w", movementID, mapPgError(err))
	}
	movement := mapping.ToDomainStockMovement(*m)
	return &movement, nil
}

// FindMovementsByReference retrieves the movements recorded for a source entity.
func (r *PgxInventoryRepository) FindMovementsByReference(ctx context.Context, referenceType, referenceID string) ([]domain.StockMovement, error) {
	query := `
		SELECT ` + stockMovementColumns + `
		FROM stock_movements
		WHERE reference_type = $1 AND reference_id = $2
		ORDER BY occurred_at, movement_id;
	`
	rows, err := r.pool.Query(ctx, query, referenceType, referenceID)
	if err != nil {
		return nil, fmt.Errorf("failed to query movements for %s:%s: %w", referenceType, referenceID, mapPgError(err))
	}
	defer rows.Close()

	movements := []domain.StockMovement{}
	for rows.Next() {
		m, err := scanStockMovement(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan stock movement row: %w", err)
		}
		movements = append(movements, mapping.ToDomainStockMovement(*m))
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating stock movement rows: %w", err)
	}
	return movements, nil
}

// GetBalance retrieves the derived balance cache row for an item/location.
func (r *PgxInventoryRepository) GetBalance(ctx context.Context, itemID, location string) (*domain.InventoryBalance, error) {
	query := `
		SELECT item_id, location, quantity, reserved, available, created_at, created_by, last_updated_at, last_updated_by
		FROM inventory_balances
		WHERE item_id = $1 AND location = $2;
	`
	var m models.InventoryBalance
	err := r.pool.QueryRow(ctx, query, itemID, location).Scan(
		&m.ItemID,
		&m.Location,
		&m.Quantity,
		&m.Reserved,
		&m.Available,
		&m.CreatedAt,
		&m.CreatedBy,
		&m.LastUpdatedAt,
		&m.LastUpdatedBy,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("%w: no balance for %s@%s", apperrors.ErrNotFound, itemID, location)
		}
		return nil, fmt.Errorf("failed to find balance for %s@%s: %w", itemID, location, mapPgError(err))
	}
	balance := mapping.ToDomainInventoryBalance(m)
	return &balance, nil
}

// SaveLotInTx persists a new stock lot.
func (r *PgxInventoryRepository) SaveLotInTx(ctx context.Context, tx pgx.Tx, lot domain.StockLot) error {
	m := mapping.ToModelStockLot(lot)
	query := `
		INSERT INTO stock_lots (` + stockLotColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12);
	`
	_, err := tx.Exec(ctx, query,
		m.LotID, m.ItemID, m.Location, m.ReceivedQty, m.AvailableQty,
		m.UnitCost, m.CurrencyCode, m.ReceivedDate,
		m.CreatedAt, m.CreatedBy, m.LastUpdatedAt, m.LastUpdatedBy,
	)
	if err != nil {
		return fmt.Errorf("failed to insert stock lot %s: %w", m.LotID, mapPgError(err))
	}
	return nil
}

// FindLotByIDForUpdate locks a single lot row.
func (r *PgxInventoryRepository) FindLotByIDForUpdate(ctx context.Context, tx pgx.Tx, lotID string) (*domain.StockLot, error) {
	query := `SELECT ` + stockLotColumns + ` FROM stock_lots WHERE lot_id = $1 FOR UPDATE;`
	rows, err := tx.Query(ctx, query, lotID)
	if err != nil {
		return nil, fmt.Errorf("failed to lock stock lot %s: %w", lotID, mapPgError(err))
	}
	lots, err := scanStockLots(rows)
	if err != nil {
		return nil, err
	}
	if len(lots) == 0 {
		return nil, fmt.Errorf("%w: stock lot %s", apperrors.ErrNotFound, lotID)
	}
	return &lots[0], nil
}

// FindOpenLotsForUpdate locks all open lots for an item/location, oldest
// received first.
func (r *PgxInventoryRepository) FindOpenLotsForUpdate(ctx context.Context, tx pgx.Tx, itemID, location string) ([]domain.StockLot, error) {
	query := `
		SELECT ` + stockLotColumns + `
		FROM stock_lots
		WHERE item_id = $1 AND location = $2 AND available_qty > 0
		ORDER BY received_date, lot_id
		FOR UPDATE;
	`
	rows, err := tx.Query(ctx, query, itemID, location)
	if err != nil {
		return nil, fmt.Errorf("failed to lock open lots for %s@%s: %w", itemID, location, mapPgError(err))
	}
	return scanStockLots(rows)
}

// UpdateLotAvailableInTx sets a locked lot's available quantity.
func (r *PgxInventoryRepository) UpdateLotAvailableInTx(ctx context.Context, tx pgx.Tx, lotID string, availableQty decimal.Decimal, actor string, now time.Time) error {
	query := `
		UPDATE stock_lots
		SET available_qty = $2, last_updated_at = $3, last_updated_by = $4
		WHERE lot_id = $1;
	`
	tag, err := tx.Exec(ctx, query, lotID, availableQty, now, actor)
	if err != nil {
		return fmt.Errorf("failed to update stock lot %s: %w", lotID, mapPgError(err))
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%w: stock lot %s", apperrors.ErrNotFound, lotID)
	}
	return nil
}

// SaveMovementInTx appends a stock movement.
func (r *PgxInventoryRepository) SaveMovementInTx(ctx context.Context, tx pgx.Tx, movement domain.StockMovement) error {
	m := mapping.ToModelStockMovement(movement)
	query := `
		INSERT INTO stock_movements (` + stockMovementColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18);
	`
	_, err := tx.Exec(ctx, query,
		m.MovementID, m.MovementType, m.LotID, m.ItemID, m.Location,
		m.Quantity, m.UnitCost, m.CurrencyCode, m.BalanceBefore, m.BalanceAfter,
		m.ReferenceType, m.ReferenceID, m.ReversesMovementID, m.OccurredAt,
		m.CreatedAt, m.CreatedBy, m.LastUpdatedAt, m.LastUpdatedBy,
	)
	if err != nil {
		return fmt.Errorf("failed to insert stock movement %s: %w", m.MovementID, mapPgError(err))
	}
	return nil
}

// UpsertBalanceInTx writes the derived balance cache row.
func (r *PgxInventoryRepository) UpsertBalanceInTx(ctx context.Context, tx pgx.Tx, balance domain.InventoryBalance) error {
	m := mapping.ToModelInventoryBalance(balance)
	query := `
		INSERT INTO inventory_balances (item_id, location, quantity, reserved, available, created_at, created_by, last_updated_at, last_updated_by)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		ON CONFLICT (item_id, location) DO UPDATE
		SET quantity = EXCLUDED.quantity, reserved = EXCLUDED.reserved, available = EXCLUDED.available,
		    last_updated_at = EXCLUDED.last_updated_at, last_updated_by = EXCLUDED.last_updated_by;
	`
	_, err := tx.Exec(ctx, query,
		m.ItemID, m.Location, m.Quantity, m.Reserved, m.Available,
		m.CreatedAt, m.CreatedBy, m.LastUpdatedAt, m.LastUpdatedBy,
	)
	if err != nil {
		return fmt.Errorf("failed to upsert balance for %s@%s: %w", m.ItemID, m.Location, mapPgError(err))
	}
	return nil
}

// RecomputeBalanceInTx rebuilds the {item, location} quantity from the
// movement ledger, preserves the reservation, and writes the cache row back.
func (r *PgxInventoryRepository) RecomputeBalanceInTx(ctx context.Context, tx pgx.Tx, itemID, location string, actor string, now time.Time) (*domain.InventoryBalance, error) {
	var quantity decimal.Decimal
	sumQuery := `
		SELECT COALESCE(SUM(quantity), 0)
		FROM stock_movements
		WHERE item_id = $1 AND location = $2;
	`
	if err := tx.QueryRow(ctx, sumQuery, itemID, location).Scan(&quantity); err != nil {
		return nil, fmt.Errorf("failed to sum movements for %s@%s: %w", itemID, location, mapPgError(err))
	}

	reserved := decimal.Zero
	var existing models.InventoryBalance
	err := tx.QueryRow(ctx, `SELECT reserved, created_at, created_by FROM inventory_balances WHERE item_id = $1 AND location = $2;`, itemID, location).
		Scan(&existing.Reserved, &existing.CreatedAt, &existing.CreatedBy)
	switch {
	case err == nil:
		reserved = existing.Reserved
	case errors.Is(err, pgx.ErrNoRows):
		existing.CreatedAt = now
		existing.CreatedBy = actor
	default:
		return nil, fmt.Errorf("failed to read balance for %s@%s: %w", itemID, location, mapPgError(err))
	}

	balance := domain.InventoryBalance{
		ItemID:    itemID,
		Location:  location,
		Quantity:  quantity,
		Reserved:  reserved,
		Available: quantity.Sub(reserved),
		AuditFields: domain.AuditFields{
			CreatedAt:     existing.CreatedAt,
			CreatedBy:     existing.CreatedBy,
			LastUpdatedAt: now,
			LastUpdatedBy: actor,
		},
	}
	if err := r.UpsertBalanceInTx(ctx, tx, balance); err != nil {
		return nil, err
	}
	return &balance, nil
}
