package cost

import (
	"context"
	"fmt"

	"github.com/erp/costing/internal/domain/costing"
	"github.com/erp/costing/internal/domain/shared"
	"github.com/erp/costing/internal/domain/shared/strategy"
	"github.com/shopspring/decimal"
)

// WeightedAverageCostStrategy prices every unit at the weighted average
// cost of the remaining stock
type WeightedAverageCostStrategy struct {
	strategy.BaseStrategy
	source costing.StockLotSource
}

// NewWeightedAverageCostStrategy creates a new weighted average cost strategy
func NewWeightedAverageCostStrategy(source costing.StockLotSource) *WeightedAverageCostStrategy {
	return &WeightedAverageCostStrategy{
		BaseStrategy: strategy.NewBaseStrategy(
			"weighted_average",
			strategy.StrategyTypeCost,
			"Weighted average cost calculation over remaining stock",
		),
		source: source,
	}
}

// Supports reports whether the strategy handles the method
func (s *WeightedAverageCostStrategy) Supports(method strategy.CostMethod) bool {
	return method == strategy.CostMethodWeightedAverage
}

// SupportedMethod returns the costing method
func (s *WeightedAverageCostStrategy) SupportedMethod() strategy.CostMethod {
	return strategy.CostMethodWeightedAverage
}

// CanCalculate returns true for a positive quantity of a SKU with lots
func (s *WeightedAverageCostStrategy) CanCalculate(ctx context.Context, sku string, quantity int64) (bool, error) {
	if quantity <= 0 {
		return false, nil
	}
	lots, err := s.source.LotsForSKU(ctx, sku)
	if err != nil {
		return false, fmt.Errorf("failed to load stock lots for %s: %w", sku, err)
	}
	return len(lots) > 0, nil
}

// Calculate prices the quantity at sum(remaining * unit cost) / sum(remaining).
// Demand above the available stock is still priced at the average and
// flagged partial.
func (s *WeightedAverageCostStrategy) Calculate(ctx context.Context, sku string, quantity int64) (costing.CostCalculationResult, error) {
	if quantity <= 0 {
		return costing.CostCalculationResult{}, fmt.Errorf("%w: quantity must be positive, got %d", shared.ErrInvalidCostData, quantity)
	}

	lots, err := s.source.LotsForSKU(ctx, sku)
	if err != nil {
		return costing.CostCalculationResult{}, fmt.Errorf("failed to load stock lots for %s: %w", sku, err)
	}

	avgCost, available := AverageCost(lots)
	totalCost := avgCost.Mul(decimal.NewFromInt(quantity))

	details := costing.CostDetails{
		AvailableQuantity: available,
		TotalSatisfied:    min(quantity, available),
		Shortage:          max(quantity-available, 0),
	}
	if details.Shortage > 0 {
		details.ShortageUnitCost = avgCost
	}

	return costing.NewCostCalculationResult(sku, quantity, avgCost, totalCost,
		strategy.CostMethodWeightedAverage, details, quantity > available)
}

// Recalculate prices the current stock of each SKU
func (s *WeightedAverageCostStrategy) Recalculate(ctx context.Context, skus []string) ([]costing.CostCalculationResult, error) {
	return recalculate(ctx, s.source, skus, s.Calculate)
}

// AverageCost returns the weighted average unit cost over lots with stock
// remaining, and the total remaining quantity. No stock yields zero.
func AverageCost(lots []costing.StockLot) (decimal.Decimal, int64) {
	var totalQty int64
	totalValue := decimal.Zero

	for _, lot := range lots {
		if lot.RemainingQuantity <= 0 {
			continue
		}
		totalQty += lot.RemainingQuantity
		totalValue = totalValue.Add(lot.RemainingValue())
	}

	if totalQty == 0 {
		return decimal.Zero, 0
	}
	return totalValue.Div(decimal.NewFromInt(totalQty)), totalQty
}
