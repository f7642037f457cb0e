package cost

import (
	"context"

	"github.com/erp/costing/internal/domain/costing"
	"github.com/erp/costing/internal/domain/shared/strategy"
)

// LIFOCostStrategy implements Last-In-First-Out cost calculation
type LIFOCostStrategy struct {
	strategy.BaseStrategy
	lots lotConsumption
}

// NewLIFOCostStrategy creates a new LIFO cost strategy
func NewLIFOCostStrategy(source costing.StockLotSource) *LIFOCostStrategy {
	return &LIFOCostStrategy{
		BaseStrategy: strategy.NewBaseStrategy(
			"lifo",
			strategy.StrategyTypeCost,
			"Last-In-First-Out cost calculation",
		),
		lots: lotConsumption{source: source, method: strategy.CostMethodLIFO, newestFirst: true},
	}
}

// Supports reports whether the strategy handles the method
func (s *LIFOCostStrategy) Supports(method strategy.CostMethod) bool {
	return method == strategy.CostMethodLIFO
}

// SupportedMethod returns the costing method
func (s *LIFOCostStrategy) SupportedMethod() strategy.CostMethod {
	return strategy.CostMethodLIFO
}

// CanCalculate returns true for a positive quantity of a SKU with lots
func (s *LIFOCostStrategy) CanCalculate(ctx context.Context, sku string, quantity int64) (bool, error) {
	return s.lots.canCalculate(ctx, sku, quantity)
}

// Calculate consumes lots newest first
func (s *LIFOCostStrategy) Calculate(ctx context.Context, sku string, quantity int64) (costing.CostCalculationResult, error) {
	return s.lots.calculate(ctx, sku, quantity)
}

// Recalculate prices the current stock of each SKU
func (s *LIFOCostStrategy) Recalculate(ctx context.Context, skus []string) ([]costing.CostCalculationResult, error) {
	return recalculate(ctx, s.lots.source, skus, s.Calculate)
}
