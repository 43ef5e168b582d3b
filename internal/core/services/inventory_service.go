package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/bizledger/erp_core/internal/apperrors"
	"github.com/bizledger/erp_core/internal/core/domain"
	portsrepo "github.com/bizledger/erp_core/internal/core/ports/repositories"
	portssvc "github.com/bizledger/erp_core/internal/core/ports/services"
	"github.com/bizledger/erp_core/internal/dto"
	"github.com/bizledger/erp_core/internal/platform/clock"
	"github.com/bizledger/erp_core/internal/platform/logging"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
)

var (
	// ErrInsufficientStock means open lots cannot cover the requested
	// quantity. Stock never goes negative; the operation fails whole.
	ErrInsufficientStock = errors.New("insufficient stock")

	// ErrInvalidQuantity rejects zero or wrongly-signed quantities.
	ErrInvalidQuantity = errors.New("invalid stock quantity")

	// ErrMovementReversed rejects reversing a movement twice.
	ErrMovementReversed = errors.New("stock movement already reversed")
)

// referenceTypeMovement marks compensating movements, which reference the
// movement they undo rather than a business document.
const referenceTypeMovement = "stock_movement"

// inventoryService is the FIFO cost engine. Receipts create costed lots;
// consumptions drain lots oldest-received-first and carry each lot's
// historical cost out to the ledger. All quantity history is an append-only
// movement log; corrections are compensating movements.
type inventoryService struct {
	inventoryRepo portsrepo.InventoryRepositoryWithTx
	ledgerSvc     portssvc.LedgerPosterSvc
	baseCurrency  string
	clock         clock.Clock
}

// NewInventoryService creates the inventory cost engine.
func NewInventoryService(
	inventoryRepo portsrepo.InventoryRepositoryWithTx,
	ledgerSvc portssvc.LedgerPosterSvc,
	baseCurrency string,
	clk clock.Clock,
) portssvc.InventorySvcFacade {
	return &inventoryService{
		inventoryRepo: inventoryRepo,
		ledgerSvc:     ledgerSvc,
		baseCurrency:  baseCurrency,
		clock:         clk,
	}
}

var _ portssvc.InventorySvcFacade = (*inventoryService)(nil)

// fifoPlan computes which slices a FIFO consumption would take from the given
// lots (already in received-date order). It mutates nothing.
func fifoPlan(lots []domain.StockLot, quantity decimal.Decimal) ([]domain.LotConsumption, error) {
	remaining := quantity
	plan := make([]domain.LotConsumption, 0, len(lots))
	for _, lot := range lots {
		if remaining.IsZero() {
			break
		}
		if lot.AvailableQty.LessThanOrEqual(decimal.Zero) {
			continue
		}
		take := decimal.Min(remaining, lot.AvailableQty)
		plan = append(plan, domain.LotConsumption{
			LotID:    lot.LotID,
			QtyTaken: take,
			UnitCost: lot.UnitCost,
			Cost:     lot.UnitCost.MulScalar(take),
		})
		remaining = remaining.Sub(take)
	}
	if remaining.GreaterThan(decimal.Zero) {
		return nil, fmt.Errorf("%w: short by %s", ErrInsufficientStock, remaining)
	}
	return plan, nil
}

// GetBalance implements portssvc.InventoryReaderSvc.
func (s *inventoryService) GetBalance(ctx context.Context, itemID, location string) (*domain.InventoryBalance, error) {
	balance, err := s.inventoryRepo.GetBalance(ctx, itemID, location)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return &domain.InventoryBalance{ItemID: itemID, Location: location}, nil
		}
		return nil, err
	}
	return balance, nil
}

// PreviewConsumption implements portssvc.InventoryReaderSvc. Lock-free: the
// answer can be stale by the time a real consumption runs.
func (s *inventoryService) PreviewConsumption(ctx context.Context, req dto.ConsumeStockRequest) ([]domain.LotConsumption, error) {
	if req.Quantity.LessThanOrEqual(decimal.Zero) {
		return nil, fmt.Errorf("%w: %w: quantity must be positive", apperrors.ErrValidation, ErrInvalidQuantity)
	}
	lots, err := s.inventoryRepo.ListOpenLots(ctx, req.ItemID, req.Location)
	if err != nil {
		return nil, err
	}
	return fifoPlan(lots, req.Quantity)
}

// ReceiveStock implements portssvc.InventoryWriterSvc.
func (s *inventoryService) ReceiveStock(ctx context.Context, req dto.ReceiveStockRequest, actor string) (*domain.StockLot, error) {
	tx, err := s.inventoryRepo.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer s.inventoryRepo.Rollback(ctx, tx)

	lot, err := s.ReceiveStockInTx(ctx, tx, req, actor)
	if err != nil {
		return nil, err
	}
	if err := s.inventoryRepo.Commit(ctx, tx); err != nil {
		return nil, err
	}
	return lot, nil
}

// ReceiveStockInTx implements portssvc.InventoryTxSvc.
func (s *inventoryService) ReceiveStockInTx(ctx context.Context, tx pgx.Tx, req dto.ReceiveStockRequest, actor string) (*domain.StockLot, error) {
	if req.Quantity.LessThanOrEqual(decimal.Zero) {
		return nil, fmt.Errorf("%w: %w: received quantity must be positive", apperrors.ErrValidation, ErrInvalidQuantity)
	}
	if req.UnitCost < 0 {
		return nil, fmt.Errorf("%w: unit cost must not be negative", apperrors.ErrValidation)
	}

	now := s.clock.Now()
	audit := domain.AuditFields{CreatedAt: now, CreatedBy: actor, LastUpdatedAt: now, LastUpdatedBy: actor}
	lot := domain.StockLot{
		LotID:        uuid.NewString(),
		ItemID:       req.ItemID,
		Location:     req.Location,
		ReceivedQty:  req.Quantity,
		AvailableQty: req.Quantity,
		UnitCost:     domain.NewMoney(req.UnitCost, s.baseCurrency),
		ReceivedDate: now,
		AuditFields:  audit,
	}
	if err := s.inventoryRepo.SaveLotInTx(ctx, tx, lot); err != nil {
		return nil, fmt.Errorf("failed to save stock lot: %w", err)
	}

	if err := s.appendMovement(ctx, tx, domain.StockMovement{
		MovementID:    uuid.NewString(),
		MovementType:  domain.StockIn,
		LotID:         lot.LotID,
		ItemID:        req.ItemID,
		Location:      req.Location,
		Quantity:      req.Quantity,
		UnitCost:      lot.UnitCost,
		ReferenceType: req.ReferenceType,
		ReferenceID:   req.ReferenceID,
		OccurredAt:    now,
		AuditFields:   audit,
	}, actor, now); err != nil {
		return nil, err
	}

	logging.FromContext(ctx).Info("stock received",
		slog.String("lot_id", lot.LotID),
		slog.String("item_id", req.ItemID),
		slog.String("location", req.Location),
		slog.String("quantity", req.Quantity.String()),
	)
	return &lot, nil
}

// ConsumeStock implements portssvc.InventoryWriterSvc.
func (s *inventoryService) ConsumeStock(ctx context.Context, req dto.ConsumeStockRequest, actor string) ([]domain.LotConsumption, error) {
	tx, err := s.inventoryRepo.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer s.inventoryRepo.Rollback(ctx, tx)

	consumptions, err := s.ConsumeStockInTx(ctx, tx, req, actor)
	if err != nil {
		return nil, err
	}
	if err := s.inventoryRepo.Commit(ctx, tx); err != nil {
		return nil, err
	}
	return consumptions, nil
}

// ConsumeStockInTx implements portssvc.InventoryTxSvc. Lots are locked
// oldest-first, drained in the same order, and the historical lot costs come
// back as the consumption breakdown.
func (s *inventoryService) ConsumeStockInTx(ctx context.Context, tx pgx.Tx, req dto.ConsumeStockRequest, actor string) ([]domain.LotConsumption, error) {
	if req.Quantity.LessThanOrEqual(decimal.Zero) {
		return nil, fmt.Errorf("%w: %w: consumed quantity must be positive", apperrors.ErrValidation, ErrInvalidQuantity)
	}
	return s.drainLots(ctx, tx, domain.StockOut, req.ItemID, req.Location, req.Quantity, req.ReferenceType, req.ReferenceID, actor)
}

// drainLots locks open lots FIFO and takes quantity across them, writing one
// STOCK_OUT (or STOCK_ADJUSTMENT) movement per lot touched.
func (s *inventoryService) drainLots(ctx context.Context, tx pgx.Tx, movementType domain.StockMovementType, itemID, location string, quantity decimal.Decimal, referenceType, referenceID, actor string) ([]domain.LotConsumption, error) {
	lots, err := s.inventoryRepo.FindOpenLotsForUpdate(ctx, tx, itemID, location)
	if err != nil {
		return nil, fmt.Errorf("failed to lock open lots: %w", err)
	}
	plan, err := fifoPlan(lots, quantity)
	if err != nil {
		return nil, err
	}

	now := s.clock.Now()
	audit := domain.AuditFields{CreatedAt: now, CreatedBy: actor, LastUpdatedAt: now, LastUpdatedBy: actor}
	lotsByID := make(map[string]domain.StockLot, len(lots))
	for _, lot := range lots {
		lotsByID[lot.LotID] = lot
	}

	for i := range plan {
		slice := &plan[i]
		lot := lotsByID[slice.LotID]
		newAvailable := lot.AvailableQty.Sub(slice.QtyTaken)
		if err := s.inventoryRepo.UpdateLotAvailableInTx(ctx, tx, lot.LotID, newAvailable, actor, now); err != nil {
			return nil, fmt.Errorf("failed to update lot %s: %w", lot.LotID, err)
		}

		movement := domain.StockMovement{
			MovementID:    uuid.NewString(),
			MovementType:  movementType,
			LotID:         lot.LotID,
			ItemID:        itemID,
			Location:      location,
			Quantity:      slice.QtyTaken.Neg(),
			UnitCost:      lot.UnitCost,
			ReferenceType: referenceType,
			ReferenceID:   referenceID,
			OccurredAt:    now,
			AuditFields:   audit,
		}
		if err := s.appendMovement(ctx, tx, movement, actor, now); err != nil {
			return nil, err
		}
		slice.MovementID = movement.MovementID
	}

	logging.FromContext(ctx).Info("stock consumed",
		slog.String("item_id", itemID),
		slog.String("location", location),
		slog.String("quantity", quantity.String()),
		slog.Int("lots_touched", len(plan)),
	)
	return plan, nil
}

// AdjustStock implements portssvc.InventoryWriterSvc. Positive adjustments
// create a fresh lot at the given unit cost; negative adjustments drain FIFO
// like any other outflow. Both post an InventoryAdjusted journal entry in the
// same transaction.
func (s *inventoryService) AdjustStock(ctx context.Context, req dto.AdjustStockRequest, actor string) ([]domain.LotConsumption, error) {
	if req.Quantity.IsZero() {
		return nil, fmt.Errorf("%w: %w: adjustment quantity cannot be zero", apperrors.ErrValidation, ErrInvalidQuantity)
	}

	tx, err := s.inventoryRepo.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer s.inventoryRepo.Rollback(ctx, tx)

	now := s.clock.Now()
	referenceID := uuid.NewString()
	var consumptions []domain.LotConsumption
	var signedCost domain.Money

	if req.Quantity.IsPositive() {
		lot, err := s.receiveAdjustmentLot(ctx, tx, req, referenceID, actor, now)
		if err != nil {
			return nil, err
		}
		cost := lot.UnitCost.MulScalar(req.Quantity)
		consumptions = []domain.LotConsumption{{
			LotID:    lot.LotID,
			QtyTaken: req.Quantity,
			UnitCost: lot.UnitCost,
			Cost:     cost,
		}}
		signedCost = cost
	} else {
		consumptions, err = s.drainLots(ctx, tx, domain.StockAdjustment, req.ItemID, req.Location, req.Quantity.Neg(), "adjustment", referenceID, actor)
		if err != nil {
			return nil, err
		}
		signedCost = domain.TotalCost(consumptions, s.baseCurrency).Neg()
	}

	event := domain.LedgerEvent{
		Type:          domain.InventoryAdjusted,
		ReferenceType: "adjustment",
		ReferenceID:   referenceID,
		Description:   "Inventory adjustment: " + req.Reason,
		CurrencyCode:  s.baseCurrency,
		CostAmount:    signedCost,
		OccurredAt:    now,
		Actor:         actor,
	}
	if _, err := s.ledgerSvc.PostEventInTx(ctx, tx, event); err != nil {
		return nil, err
	}

	if err := s.inventoryRepo.Commit(ctx, tx); err != nil {
		return nil, err
	}
	return consumptions, nil
}

// receiveAdjustmentLot is the positive-adjustment half of AdjustStock: a new
// lot plus a STOCK_ADJUSTMENT inflow movement.
func (s *inventoryService) receiveAdjustmentLot(ctx context.Context, tx pgx.Tx, req dto.AdjustStockRequest, referenceID, actor string, now time.Time) (*domain.StockLot, error) {
	if req.UnitCost < 0 {
		return nil, fmt.Errorf("%w: unit cost must not be negative", apperrors.ErrValidation)
	}
	audit := domain.AuditFields{CreatedAt: now, CreatedBy: actor, LastUpdatedAt: now, LastUpdatedBy: actor}
	lot := domain.StockLot{
		LotID:        uuid.NewString(),
		ItemID:       req.ItemID,
		Location:     req.Location,
		ReceivedQty:  req.Quantity,
		AvailableQty: req.Quantity,
		UnitCost:     domain.NewMoney(req.UnitCost, s.baseCurrency),
		ReceivedDate: now,
		AuditFields:  audit,
	}
	if err := s.inventoryRepo.SaveLotInTx(ctx, tx, lot); err != nil {
		return nil, fmt.Errorf("failed to save adjustment lot: %w", err)
	}
	if err := s.appendMovement(ctx, tx, domain.StockMovement{
		MovementID:    uuid.NewString(),
		MovementType:  domain.StockAdjustment,
		LotID:         lot.LotID,
		ItemID:        req.ItemID,
		Location:      req.Location,
		Quantity:      req.Quantity,
		UnitCost:      lot.UnitCost,
		ReferenceType: "adjustment",
		ReferenceID:   referenceID,
		OccurredAt:    now,
		AuditFields:   audit,
	}, actor, now); err != nil {
		return nil, err
	}
	return &lot, nil
}

// ReverseMovement implements portssvc.InventoryWriterSvc. The original record
// stays untouched; a compensating movement with the opposite quantity is
// appended and linked back.
func (s *inventoryService) ReverseMovement(ctx context.Context, movementID string, actor string) (*domain.StockMovement, error) {
	original, err := s.inventoryRepo.FindMovementByID(ctx, movementID)
	if err != nil {
		return nil, err
	}
	existing, err := s.inventoryRepo.FindMovementsByReference(ctx, referenceTypeMovement, movementID)
	if err != nil {
		return nil, err
	}
	if len(existing) > 0 {
		return nil, fmt.Errorf("%w: %w: %s", apperrors.ErrState, ErrMovementReversed, movementID)
	}

	tx, err := s.inventoryRepo.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer s.inventoryRepo.Rollback(ctx, tx)

	lot, err := s.inventoryRepo.FindLotByIDForUpdate(ctx, tx, original.LotID)
	if err != nil {
		return nil, err
	}
	now := s.clock.Now()
	newAvailable := lot.AvailableQty.Sub(original.Quantity)
	if newAvailable.IsNegative() {
		return nil, fmt.Errorf("%w: lot %s has only %s available", ErrInsufficientStock, lot.LotID, lot.AvailableQty)
	}
	if newAvailable.GreaterThan(lot.ReceivedQty) {
		return nil, fmt.Errorf("%w: reversal would push lot %s above its received quantity", apperrors.ErrConsistency, lot.LotID)
	}
	if err := s.inventoryRepo.UpdateLotAvailableInTx(ctx, tx, lot.LotID, newAvailable, actor, now); err != nil {
		return nil, err
	}

	reversalType := original.MovementType
	switch original.MovementType {
	case domain.StockIn:
		reversalType = domain.StockOut
	case domain.StockOut:
		reversalType = domain.StockIn
	}
	movement := domain.StockMovement{
		MovementID:         uuid.NewString(),
		MovementType:       reversalType,
		LotID:              original.LotID,
		ItemID:             original.ItemID,
		Location:           original.Location,
		Quantity:           original.Quantity.Neg(),
		UnitCost:           original.UnitCost,
		ReferenceType:      referenceTypeMovement,
		ReferenceID:        original.MovementID,
		ReversesMovementID: original.MovementID,
		OccurredAt:         now,
		AuditFields:        domain.AuditFields{CreatedAt: now, CreatedBy: actor, LastUpdatedAt: now, LastUpdatedBy: actor},
	}
	if err := s.appendMovement(ctx, tx, movement, actor, now); err != nil {
		return nil, err
	}
	if err := s.inventoryRepo.Commit(ctx, tx); err != nil {
		return nil, err
	}
	return &movement, nil
}

// ReserveStockInTx implements portssvc.InventoryTxSvc. Reservations live only
// on the balance row; lots are untouched until the goods actually move.
func (s *inventoryService) ReserveStockInTx(ctx context.Context, tx pgx.Tx, itemID, location string, qty decimal.Decimal, actor string) error {
	if qty.LessThanOrEqual(decimal.Zero) {
		return fmt.Errorf("%w: %w: reserved quantity must be positive", apperrors.ErrValidation, ErrInvalidQuantity)
	}
	balance, err := s.inventoryRepo.RecomputeBalanceInTx(ctx, tx, itemID, location, actor, s.clock.Now())
	if err != nil {
		return err
	}
	if balance.Available.LessThan(qty) {
		return fmt.Errorf("%w: %s available, %s requested", ErrInsufficientStock, balance.Available, qty)
	}
	balance.Reserved = balance.Reserved.Add(qty)
	balance.Available = balance.Quantity.Sub(balance.Reserved)
	return s.inventoryRepo.UpsertBalanceInTx(ctx, tx, *balance)
}

// ReleaseReservationInTx implements portssvc.InventoryTxSvc. Releasing more
// than is reserved clamps to zero rather than failing; cancellation paths may
// race with partial fulfilment.
func (s *inventoryService) ReleaseReservationInTx(ctx context.Context, tx pgx.Tx, itemID, location string, qty decimal.Decimal, actor string) error {
	if qty.LessThanOrEqual(decimal.Zero) {
		return fmt.Errorf("%w: %w: released quantity must be positive", apperrors.ErrValidation, ErrInvalidQuantity)
	}
	balance, err := s.inventoryRepo.RecomputeBalanceInTx(ctx, tx, itemID, location, actor, s.clock.Now())
	if err != nil {
		return err
	}
	balance.Reserved = decimal.Max(decimal.Zero, balance.Reserved.Sub(qty))
	balance.Available = balance.Quantity.Sub(balance.Reserved)
	return s.inventoryRepo.UpsertBalanceInTx(ctx, tx, *balance)
}

// appendMovement stamps running balances onto the movement, saves it, and
// refreshes the derived balance row. The before-balance is recomputed inside
// the transaction so earlier uncommitted movements are counted.
func (s *inventoryService) appendMovement(ctx context.Context, tx pgx.Tx, movement domain.StockMovement, actor string, now time.Time) error {
	current, err := s.inventoryRepo.RecomputeBalanceInTx(ctx, tx, movement.ItemID, movement.Location, actor, now)
	if err != nil {
		return fmt.Errorf("failed to read inventory balance: %w", err)
	}
	movement.BalanceBefore = current.Quantity
	movement.BalanceAfter = current.Quantity.Add(movement.Quantity)
	if err := s.inventoryRepo.SaveMovementInTx(ctx, tx, movement); err != nil {
		return fmt.Errorf("failed to save stock movement: %w", err)
	}
	if _, err := s.inventoryRepo.RecomputeBalanceInTx(ctx, tx, movement.ItemID, movement.Location, actor, now); err != nil {
		return fmt.Errorf("failed to refresh inventory balance: %w", err)
	}
	return nil
}
