package costing

import (
	"context"

	"github.com/erp/costing/internal/domain/shared/strategy"
	"github.com/shopspring/decimal"
)

// StockLotSource supplies stock lots per SKU
type StockLotSource interface {
	// LotsForSKU returns the SKU's lots; callers must not rely on ordering
	LotsForSKU(ctx context.Context, sku string) ([]StockLot, error)
	// CurrentStock returns the sum of remaining quantities for the SKU
	CurrentStock(ctx context.Context, sku string) (int64, error)
}

// StandardCostSource supplies externally configured standard unit costs
type StandardCostSource interface {
	// StandardCost returns the configured cost and whether one exists
	StandardCost(ctx context.Context, sku string) (decimal.Decimal, bool, error)
	HasStandardCost(ctx context.Context, sku string) (bool, error)
}

// UnitCostCalculator turns (SKU, quantity) into a costed result under one cost method
type UnitCostCalculator interface {
	strategy.Strategy
	// Supports reports whether the calculator handles the given method
	Supports(method strategy.CostMethod) bool
	// SupportedMethod returns the method the calculator implements
	SupportedMethod() strategy.CostMethod
	// CanCalculate returns false for non-positive quantities and when the
	// calculator has nothing to price from
	CanCalculate(ctx context.Context, sku string, quantity int64) (bool, error)
	// Calculate prices the requested quantity. Shortfalls produce a partial
	// result, not an error.
	Calculate(ctx context.Context, sku string, quantity int64) (CostCalculationResult, error)
	// Recalculate prices the current stock of every SKU with stock on hand,
	// keeping input order and skipping SKUs without stock
	Recalculate(ctx context.Context, skus []string) ([]CostCalculationResult, error)
}
