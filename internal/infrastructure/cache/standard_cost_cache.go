package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/erp/costing/internal/domain/costing"
	"github.com/erp/costing/internal/domain/shared"
	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// DefaultStandardCostTTL is used when the cache is built with a non-positive ttl
const DefaultStandardCostTTL = 10 * time.Minute

// StandardCostCache decorates a StandardCostRepository with a Redis read-through
// cache. Redis failures degrade to the repository instead of failing the lookup.
// A nil client turns the cache into a pass-through.
type StandardCostCache struct {
	next   costing.StandardCostRepository
	client redis.UniversalClient
	ttl    time.Duration
	logger *zap.Logger
}

type cachedStandardCost struct {
	SKU           string    `json:"sku"`
	UnitCost      string    `json:"unit_cost"`
	EffectiveFrom time.Time `json:"effective_from"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// NewStandardCostCache creates the decorator
func NewStandardCostCache(next costing.StandardCostRepository, client redis.UniversalClient, ttl time.Duration, logger *zap.Logger) *StandardCostCache {
	if ttl <= 0 {
		ttl = DefaultStandardCostTTL
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &StandardCostCache{
		next:   next,
		client: client,
		ttl:    ttl,
		logger: logger.Named("standard_cost_cache"),
	}
}

func standardCostKey(sku string) string {
	return fmt.Sprintf("costing:standard_cost:%s", sku)
}

// FindBySKU serves from Redis when possible and fills it on a miss
func (c *StandardCostCache) FindBySKU(ctx context.Context, sku string) (*costing.StandardCost, error) {
	if cost, ok := c.get(ctx, sku); ok {
		return cost, nil
	}

	cost, err := c.next.FindBySKU(ctx, sku)
	if err != nil {
		return nil, err
	}
	c.set(ctx, cost)
	return cost, nil
}

// StandardCost returns the configured cost and whether one exists
func (c *StandardCostCache) StandardCost(ctx context.Context, sku string) (decimal.Decimal, bool, error) {
	cost, err := c.FindBySKU(ctx, sku)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return decimal.Zero, false, nil
		}
		return decimal.Zero, false, err
	}
	return cost.UnitCost, true, nil
}

// HasStandardCost reports whether a standard cost is configured for the SKU
func (c *StandardCostCache) HasStandardCost(ctx context.Context, sku string) (bool, error) {
	_, ok, err := c.StandardCost(ctx, sku)
	return ok, err
}

// Save writes through to the repository and then drops the cached entry
func (c *StandardCostCache) Save(ctx context.Context, cost *costing.StandardCost) error {
	if err := c.next.Save(ctx, cost); err != nil {
		return err
	}
	c.invalidate(ctx, cost.SKU)
	return nil
}

func (c *StandardCostCache) get(ctx context.Context, sku string) (*costing.StandardCost, bool) {
	if c.client == nil {
		return nil, false
	}

	data, err := c.client.Get(ctx, standardCostKey(sku)).Bytes()
	if err == redis.Nil {
		c.logger.Debug("Cache miss for standard cost", zap.String("sku", sku))
		return nil, false
	}
	if err != nil {
		c.logger.Warn("Failed to read standard cost from cache",
			zap.String("sku", sku),
			zap.Error(err))
		return nil, false
	}

	var cached cachedStandardCost
	if err := json.Unmarshal(data, &cached); err != nil {
		c.logger.Warn("Dropping corrupted standard cost cache entry",
			zap.String("sku", sku),
			zap.Error(err))
		c.invalidate(ctx, sku)
		return nil, false
	}
	unitCost, err := decimal.NewFromString(cached.UnitCost)
	if err != nil {
		c.invalidate(ctx, sku)
		return nil, false
	}

	return &costing.StandardCost{
		SKU:           cached.SKU,
		UnitCost:      unitCost,
		EffectiveFrom: cached.EffectiveFrom,
		UpdatedAt:     cached.UpdatedAt,
	}, true
}

func (c *StandardCostCache) set(ctx context.Context, cost *costing.StandardCost) {
	if c.client == nil || cost == nil {
		return
	}
	data, err := json.Marshal(cachedStandardCost{
		SKU:           cost.SKU,
		UnitCost:      cost.UnitCost.String(),
		EffectiveFrom: cost.EffectiveFrom,
		UpdatedAt:     cost.UpdatedAt,
	})
	if err != nil {
		return
	}
	if err := c.client.Set(ctx, standardCostKey(cost.SKU), data, c.ttl).Err(); err != nil {
		c.logger.Warn("Failed to cache standard cost",
			zap.String("sku", cost.SKU),
			zap.Error(err))
	}
}

func (c *StandardCostCache) invalidate(ctx context.Context, sku string) {
	if c.client == nil {
		return
	}
	if err := c.client.Del(ctx, standardCostKey(sku)).Err(); err != nil {
		c.logger.Warn("Failed to invalidate standard cost",
			zap.String("sku", sku),
			zap.Error(err))
	}
}

var _ costing.StandardCostRepository = (*StandardCostCache)(nil)
