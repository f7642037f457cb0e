package allocation

import (
	"github.com/erp/costing/internal/domain/costing"
	"github.com/erp/costing/internal/domain/shared/strategy"
	"github.com/shopspring/decimal"
)

// RatioAllocationStrategy assigns each target totalAmount * ratio.
// Ratios must lie in [0, 1]; the ratios are not required to sum to 1.
type RatioAllocationStrategy struct {
	strategy.BaseStrategy
}

// NewRatioAllocationStrategy creates a new ratio allocation strategy
func NewRatioAllocationStrategy() *RatioAllocationStrategy {
	return &RatioAllocationStrategy{
		BaseStrategy: strategy.NewBaseStrategy(
			"ratio",
			strategy.StrategyTypeAllocation,
			"Allocate by a fixed ratio per target",
		),
	}
}

// Method returns the allocation method
func (s *RatioAllocationStrategy) Method() strategy.AllocationMethod {
	return strategy.AllocationMethodRatio
}

// Calculate allocates the amount by ratio, skipping malformed targets
func (s *RatioAllocationStrategy) Calculate(totalAmount decimal.Decimal, targets []costing.AllocationTarget) costing.AllocationResult {
	result := newResult(strategy.AllocationMethodRatio, totalAmount)

	for i, target := range targets {
		sku, ratio, reason := s.parse(target)
		if reason != "" {
			result.Skipped = append(result.Skipped, costing.SkippedTarget{TargetIndex: i, Reason: reason})
			continue
		}
		result.Allocations = append(result.Allocations, costing.Allocation{
			TargetIndex: i,
			SKU:         sku,
			Amount:      totalAmount.Mul(ratio),
		})
	}

	return result
}

// ValidateTargets returns true if at least one target carries a usable ratio
func (s *RatioAllocationStrategy) ValidateTargets(targets []costing.AllocationTarget) bool {
	for _, target := range targets {
		if _, _, reason := s.parse(target); reason == "" {
			return true
		}
	}
	return false
}

func (s *RatioAllocationStrategy) parse(target costing.AllocationTarget) (string, decimal.Decimal, string) {
	sku, ok := target.SKU()
	if !ok {
		return "", decimal.Zero, costing.SkipReasonMissingSKU
	}
	ratio, ok := target.Number(strategy.TargetFieldRatio)
	if !ok {
		return "", decimal.Zero, costing.SkipReasonMissingWeight
	}
	if ratio.IsNegative() || ratio.GreaterThan(decimal.NewFromInt(1)) {
		return "", decimal.Zero, costing.SkipReasonRatioOutOfRange
	}
	return sku, ratio, ""
}

func newResult(method strategy.AllocationMethod, totalAmount decimal.Decimal) costing.AllocationResult {
	return costing.AllocationResult{
		Method:      method,
		TotalAmount: totalAmount,
		Allocations: make([]costing.Allocation, 0),
		Skipped:     make([]costing.SkippedTarget, 0),
	}
}
