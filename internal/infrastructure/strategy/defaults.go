package strategy

import (
	"github.com/erp/costing/internal/domain/costing"
	"github.com/erp/costing/internal/infrastructure/strategy/allocation"
	"github.com/erp/costing/internal/infrastructure/strategy/cost"
)

// NewRegistryWithDefaults creates a registry holding the built-in cost
// calculators and allocation strategies. The registry is returned unsealed
// so callers can add their own strategies before calling Seal.
func NewRegistryWithDefaults(lots costing.StockLotSource, standardCosts costing.StandardCostSource) (*StrategyRegistry, error) {
	r := NewStrategyRegistry()

	// Register cost calculators
	calculators := []costing.UnitCostCalculator{
		cost.NewFIFOCostStrategy(lots),
		cost.NewLIFOCostStrategy(lots),
		cost.NewWeightedAverageCostStrategy(lots),
		cost.NewStandardCostStrategy(standardCosts, lots),
	}
	for _, c := range calculators {
		if err := r.RegisterCostCalculator(c); err != nil {
			return nil, err
		}
	}

	// Register allocation strategies
	strategies := []costing.AllocationStrategy{
		allocation.NewRatioAllocationStrategy(),
		allocation.NewQuantityAllocationStrategy(),
		allocation.NewValueAllocationStrategy(),
		allocation.NewActivityAllocationStrategy(),
	}
	for _, s := range strategies {
		if err := r.RegisterAllocationStrategy(s); err != nil {
			return nil, err
		}
	}

	return r, nil
}
