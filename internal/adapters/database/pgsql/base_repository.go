package pgsql

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// BaseRepository provides transaction management shared by all pgsql
// repositories. Services begin one transaction per state-changing operation
// and hand the pgx.Tx back down to the ...InTx methods.
type BaseRepository struct {
	pool *pgxpool.Pool
}

// NewBaseRepository creates a BaseRepository around a pgx pool.
func NewBaseRepository(pool *pgxpool.Pool) BaseRepository {
	return BaseRepository{pool: pool}
}

// Begin starts a new database transaction.
func (r BaseRepository) Begin(ctx context.Context) (pgx.Tx, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	return tx, nil
}

// Commit commits a transaction.
func (r BaseRepository) Commit(ctx context.Context, tx pgx.Tx) error {
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", mapPgError(err))
	}
	return nil
}

// Rollback rolls back a transaction. Safe to call after Commit; pgx returns
// ErrTxClosed which is ignored here.
func (r BaseRepository) Rollback(ctx context.Context, tx pgx.Tx) error {
	_ = tx.Rollback(ctx)
	return nil
}
