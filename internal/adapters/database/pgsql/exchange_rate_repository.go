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
)

type PgxExchangeRateRepository struct {
	BaseRepository
}

// NewPgxExchangeRateRepository creates a new repository for exchange rate data.
func NewPgxExchangeRateRepository(pool *pgxpool.Pool) portsrepo.ExchangeRateRepositoryFacade {
	return &PgxExchangeRateRepository{BaseRepository: NewBaseRepository(pool)}
}

// FindRateAsOf retrieves the latest rate for the pair effective at or before
// the given instant.
func (r *PgxExchangeRateRepository) FindRateAsOf(ctx context.Context, fromCode, toCode string, asOf time.Time) (*domain.ExchangeRate, error) {
	query := `
		SELECT exchange_rate_id, from_currency_code, to_currency_code, rate, date_effective, created_at, created_by, last_updated_at, last_updated_by
		FROM exchange_rates
		WHERE from_currency_code = $1 AND to_currency_code = $2 AND date_effective <= $3
		ORDER BY date_effective DESC
		LIMIT 1;
	`
	var m models.ExchangeRate
	err := r.pool.QueryRow(ctx, query, fromCode, toCode, asOf).Scan(
		&m.ExchangeRateID,
		&m.FromCurrencyCode,
		&m.ToCurrencyCode,
		&m.Rate,
		&m.DateEffective,
		&m.CreatedAt,
		&m.CreatedBy,
		&m.LastUpdatedAt,
		&m.LastUpdatedBy,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("%w: no %s/%s rate at or before %s", apperrors.ErrNotFound, fromCode, toCode, asOf.Format(time.RFC3339))
		}
		return nil, fmt.Errorf("failed to find exchange rate %s/%s: %w", fromCode, toCode, mapPgError(err))
	}
	rate := mapping.ToDomainExchangeRate(m)
	return &rate, nil
}

// SaveExchangeRate persists a new exchange rate row.
func (r *PgxExchangeRateRepository) SaveExchangeRate(ctx context.Context, rate domain.ExchangeRate) error {
	m := mapping.ToModelExchangeRate(rate)
	query := `
		INSERT INTO exchange_rates (exchange_rate_id, from_currency_code, to_currency_code, rate, date_effective, created_at, created_by, last_updated_at, last_updated_by)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9);
	`
	_, err := r.pool.Exec(ctx, query,
		m.ExchangeRateID, m.FromCurrencyCode, m.ToCurrencyCode, m.Rate, m.DateEffective,
		m.CreatedAt, m.CreatedBy, m.LastUpdatedAt, m.LastUpdatedBy,
	)
	if err != nil {
		return fmt.Errorf("failed to insert exchange rate %s: %w", m.ExchangeRateID, mapPgError(err))
	}
	return nil
}
