package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/garyjia/billing-ops/internal/application/port"
	"github.com/garyjia/billing-ops/internal/domain/entity"
	"go.uber.org/zap"
)

// CurrencyRepository implements port.CurrencyRepository
type CurrencyRepository struct {
	logger *zap.Logger
}

// NewCurrencyRepository creates a new currency repository
func NewCurrencyRepository(logger *zap.Logger) *CurrencyRepository {
	return &CurrencyRepository{logger: logger}
}

// GetByID retrieves a currency by ID
func (r *CurrencyRepository) GetByID(ctx context.Context, id int64) (*entity.Currency, error) {
	ex, err := getExecutor(ctx)
	if err != nil {
		return nil, err
	}

	var c entity.Currency
	err = ex.QueryRowContext(ctx,
		"SELECT id, code, name, symbol, precision FROM currencies WHERE id = ?", id,
	).Scan(&c.ID, &c.Code, &c.Name, &c.Symbol, &c.Precision)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, port.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get currency: %w", err)
	}
	return &c, nil
}

// All returns every currency keyed by ID
func (r *CurrencyRepository) All(ctx context.Context) (map[int64]*entity.Currency, error) {
	ex, err := getExecutor(ctx)
	if err != nil {
		return nil, err
	}

	rows, err := ex.QueryContext(ctx, "SELECT id, code, name, symbol, precision FROM currencies")
	if err != nil {
		r.logger.Error("Failed to list currencies", zap.Error(err))
		return nil, fmt.Errorf("failed to list currencies: %w", err)
	}
	defer rows.Close()

	currencies := make(map[int64]*entity.Currency)
	for rows.Next() {
		var c entity.Currency
		if err := rows.Scan(&c.ID, &c.Code, &c.Name, &c.Symbol, &c.Precision); err != nil {
			return nil, fmt.Errorf("failed to scan currency: %w", err)
		}
		currencies[c.ID] = &c
	}
	return currencies, rows.Err()
}

var _ port.CurrencyRepository = (*CurrencyRepository)(nil)
