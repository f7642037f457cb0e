package cost

import (
	"context"

	"github.com/erp/costing/internal/domain/costing"
	"github.com/erp/costing/internal/domain/shared/strategy"
)

// FIFOCostStrategy implements First-In-First-Out cost calculation
type FIFOCostStrategy struct {
	strategy.BaseStrategy
	lots lotConsumption
}

// NewFIFOCostStrategy creates a new FIFO cost strategy
func NewFIFOCostStrategy(source costing.StockLotSource) *FIFOCostStrategy {
	return &FIFOCostStrategy{
		BaseStrategy: strategy.NewBaseStrategy(
			"fifo",
			strategy.StrategyTypeCost,
			"First-In-First-Out cost calculation",
		),
		lots: lotConsumption{source: source, method: strategy.CostMethodFIFO},
	}
}

// Supports reports whether the strategy handles the method
func (s *FIFOCostStrategy) Supports(method strategy.CostMethod) bool {
	return method == strategy.CostMethodFIFO
}

// SupportedMethod returns the costing method
func (s *FIFOCostStrategy) SupportedMethod() strategy.CostMethod {
	return strategy.CostMethodFIFO
}

// CanCalculate returns true for a positive quantity of a SKU with lots
func (s *FIFOCostStrategy) CanCalculate(ctx context.Context, sku string, quantity int64) (bool, error) {
	return s.lots.canCalculate(ctx, sku, quantity)
}

// Calculate consumes lots oldest first
func (s *FIFOCostStrategy) Calculate(ctx context.Context, sku string, quantity int64) (costing.CostCalculationResult, error) {
	return s.lots.calculate(ctx, sku, quantity)
}

// Recalculate prices the current stock of each SKU
func (s *FIFOCostStrategy) Recalculate(ctx context.Context, skus []string) ([]costing.CostCalculationResult, error) {
	return recalculate(ctx, s.lots.source, skus, s.Calculate)
}
