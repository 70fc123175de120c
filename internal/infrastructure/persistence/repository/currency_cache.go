package repository

import (
	"context"
	"time"

	lru "github.com/hashicorp/golang-lru/v2/expirable"
	"golang.org/x/sync/singleflight"

	"github.com/garyjia/billing-ops/internal/application/port"
	"github.com/garyjia/billing-ops/internal/domain/entity"
	"github.com/garyjia/billing-ops/internal/tenant"
)

// Currency cache defaults
const (
	DefaultCurrencyCacheSize = 64
	DefaultCurrencyCacheTTL  = 10 * time.Minute
)

// CachedCurrencyRepository keeps each tenant's currency table in memory.
// Concurrent misses for the same tenant share one query.
type CachedCurrencyRepository struct {
	next  port.CurrencyRepository
	cache *lru.LRU[string, map[int64]*entity.Currency]
	group singleflight.Group
}

// NewCachedCurrencyRepository wraps next. Non-positive size or ttl take the defaults.
func NewCachedCurrencyRepository(next port.CurrencyRepository, size int, ttl time.Duration) *CachedCurrencyRepository {
	if size <= 0 {
		size = DefaultCurrencyCacheSize
	}
	if ttl <= 0 {
		ttl = DefaultCurrencyCacheTTL
	}
	return &CachedCurrencyRepository{
		next:  next,
		cache: lru.NewLRU[string, map[int64]*entity.Currency](size, nil, ttl),
	}
}

// All returns the tenant's currencies. Callers must not modify the map.
func (r *CachedCurrencyRepository) All(ctx context.Context) (map[int64]*entity.Currency, error) {
	t, ok := tenant.FromContext(ctx)
	if !ok {
		return nil, tenant.ErrNoTenant
	}

	if currencies, ok := r.cache.Get(t.Name); ok {
		return currencies, nil
	}

	v, err, _ := r.group.Do(t.Name, func() (interface{}, error) {
		currencies, err := r.next.All(ctx)
		if err != nil {
			return nil, err
		}
		r.cache.Add(t.Name, currencies)
		return currencies, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(map[int64]*entity.Currency), nil
}

// GetByID serves the currency from the cached table
func (r *CachedCurrencyRepository) GetByID(ctx context.Context, id int64) (*entity.Currency, error) {
	currencies, err := r.All(ctx)
	if err != nil {
		return nil, err
	}
	c, ok := currencies[id]
	if !ok {
		return nil, port.ErrNotFound
	}
	return c, nil
}

// Purge drops every cached table
func (r *CachedCurrencyRepository) Purge() {
	r.cache.Purge()
}

var _ port.CurrencyRepository = (*CachedCurrencyRepository)(nil)
