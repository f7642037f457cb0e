package cost

import (
	"context"
	"fmt"

	"github.com/erp/costing/internal/domain/costing"
	"github.com/erp/costing/internal/domain/shared"
	"github.com/erp/costing/internal/domain/shared/strategy"
	"github.com/shopspring/decimal"
)

// StandardCostStrategy prices stock at a configured standard unit cost
type StandardCostStrategy struct {
	strategy.BaseStrategy
	costs costing.StandardCostSource
	stock costing.StockLotSource
}

// NewStandardCostStrategy creates a new standard cost strategy.
// The stock source is only used by Recalculate to size current stock.
func NewStandardCostStrategy(costs costing.StandardCostSource, stock costing.StockLotSource) *StandardCostStrategy {
	return &StandardCostStrategy{
		BaseStrategy: strategy.NewBaseStrategy(
			"standard",
			strategy.StrategyTypeCost,
			"Standard cost calculation from configured unit costs",
		),
		costs: costs,
		stock: stock,
	}
}

// Supports reports whether the strategy handles the method
func (s *StandardCostStrategy) Supports(method strategy.CostMethod) bool {
	return method == strategy.CostMethodStandard
}

// SupportedMethod returns the costing method
func (s *StandardCostStrategy) SupportedMethod() strategy.CostMethod {
	return strategy.CostMethodStandard
}

// CanCalculate returns true for a positive quantity of a SKU with a standard cost
func (s *StandardCostStrategy) CanCalculate(ctx context.Context, sku string, quantity int64) (bool, error) {
	if quantity <= 0 {
		return false, nil
	}
	ok, err := s.costs.HasStandardCost(ctx, sku)
	if err != nil {
		return false, fmt.Errorf("failed to check standard cost for %s: %w", sku, err)
	}
	return ok, nil
}

// Calculate multiplies the quantity by the standard cost. A SKU without a
// standard cost yields a zero-cost partial result.
func (s *StandardCostStrategy) Calculate(ctx context.Context, sku string, quantity int64) (costing.CostCalculationResult, error) {
	if quantity <= 0 {
		return costing.CostCalculationResult{}, fmt.Errorf("%w: quantity must be positive, got %d", shared.ErrInvalidCostData, quantity)
	}

	unitCost, ok, err := s.costs.StandardCost(ctx, sku)
	if err != nil {
		return costing.CostCalculationResult{}, fmt.Errorf("failed to load standard cost for %s: %w", sku, err)
	}
	if !ok {
		details := costing.CostDetails{Shortage: quantity}
		return costing.NewCostCalculationResult(sku, quantity, decimal.Zero, decimal.Zero,
			strategy.CostMethodStandard, details, true)
	}

	details := costing.CostDetails{
		TotalSatisfied: quantity,
		StandardCost:   &unitCost,
	}
	return costing.NewCostCalculationResult(sku, quantity, unitCost, unitCost.Mul(decimal.NewFromInt(quantity)),
		strategy.CostMethodStandard, details, false)
}

// Recalculate prices the current stock of each SKU
func (s *StandardCostStrategy) Recalculate(ctx context.Context, skus []string) ([]costing.CostCalculationResult, error) {
	return recalculate(ctx, s.stock, skus, s.Calculate)
}
