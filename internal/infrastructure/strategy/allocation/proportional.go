package allocation

import (
	"github.com/erp/costing/internal/domain/costing"
	"github.com/erp/costing/internal/domain/shared/strategy"
	"github.com/shopspring/decimal"
)

// ProportionalAllocationStrategy assigns each target
// totalAmount * weight / sum(weights), where the weight is read from a
// method-specific field. Quantity, value and activity allocation differ
// only in that field.
type ProportionalAllocationStrategy struct {
	strategy.BaseStrategy
	method strategy.AllocationMethod
	field  string
}

// NewProportionalAllocationStrategy creates a strategy weighting targets by field
func NewProportionalAllocationStrategy(method strategy.AllocationMethod, field, description string) *ProportionalAllocationStrategy {
	return &ProportionalAllocationStrategy{
		BaseStrategy: strategy.NewBaseStrategy(method.String(), strategy.StrategyTypeAllocation, description),
		method:       method,
		field:        field,
	}
}

// NewQuantityAllocationStrategy allocates in proportion to target quantity
func NewQuantityAllocationStrategy() *ProportionalAllocationStrategy {
	return NewProportionalAllocationStrategy(strategy.AllocationMethodQuantity, strategy.TargetFieldQuantity,
		"Allocate in proportion to target quantity")
}

// NewValueAllocationStrategy allocates in proportion to target value
func NewValueAllocationStrategy() *ProportionalAllocationStrategy {
	return NewProportionalAllocationStrategy(strategy.AllocationMethodValue, strategy.TargetFieldValue,
		"Allocate in proportion to target value")
}

// NewActivityAllocationStrategy allocates in proportion to consumed activity units
func NewActivityAllocationStrategy() *ProportionalAllocationStrategy {
	return NewProportionalAllocationStrategy(strategy.AllocationMethodActivity, strategy.TargetFieldActivityUnits,
		"Allocate in proportion to activity units")
}

// Method returns the allocation method
func (s *ProportionalAllocationStrategy) Method() strategy.AllocationMethod {
	return s.method
}

// WeightField returns the target field carrying the weight
func (s *ProportionalAllocationStrategy) WeightField() string {
	return s.field
}

type weightedTarget struct {
	index  int
	sku    string
	weight decimal.Decimal
}

// Calculate allocates the amount by weight share. Negative or malformed
// weights are skipped; when the remaining weights sum to zero or less the
// allocation is empty and every target is reported as skipped.
func (s *ProportionalAllocationStrategy) Calculate(totalAmount decimal.Decimal, targets []costing.AllocationTarget) costing.AllocationResult {
	result := newResult(s.method, totalAmount)

	valid := make([]weightedTarget, 0, len(targets))
	sum := decimal.Zero
	for i, target := range targets {
		sku, weight, reason := s.parse(target)
		if reason != "" {
			result.Skipped = append(result.Skipped, costing.SkippedTarget{TargetIndex: i, Reason: reason})
			continue
		}
		valid = append(valid, weightedTarget{index: i, sku: sku, weight: weight})
		sum = sum.Add(weight)
	}

	if !sum.IsPositive() {
		for _, wt := range valid {
			result.Skipped = append(result.Skipped, costing.SkippedTarget{
				TargetIndex: wt.index,
				Reason:      costing.SkipReasonNoPositiveWeight,
			})
		}
		return result
	}

	for _, wt := range valid {
		result.Allocations = append(result.Allocations, costing.Allocation{
			TargetIndex: wt.index,
			SKU:         wt.sku,
			Amount:      totalAmount.Mul(wt.weight).Div(sum),
		})
	}
	return result
}

// ValidateTargets returns true if at least one target carries a usable weight
func (s *ProportionalAllocationStrategy) ValidateTargets(targets []costing.AllocationTarget) bool {
	for _, target := range targets {
		if _, _, reason := s.parse(target); reason == "" {
			return true
		}
	}
	return false
}

func (s *ProportionalAllocationStrategy) parse(target costing.AllocationTarget) (string, decimal.Decimal, string) {
	sku, ok := target.SKU()
	if !ok {
		return "", decimal.Zero, costing.SkipReasonMissingSKU
	}
	weight, ok := target.Number(s.field)
	if !ok {
		return "", decimal.Zero, costing.SkipReasonMissingWeight
	}
	if weight.IsNegative() {
		return "", decimal.Zero, costing.SkipReasonNegativeWeight
	}
	return sku, weight, ""
}
