package costing

import (
	"fmt"
	"time"

	"github.com/erp/costing/internal/domain/shared"
	"github.com/erp/costing/internal/domain/shared/strategy"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// CostAllocation is a rule describing how a lump-sum cost is divided
type CostAllocation struct {
	shared.BaseEntity
	Name           string
	SourceCostType CostType
	TotalAmount    decimal.Decimal
	Method         strategy.AllocationMethod
	EffectiveDate  time.Time
	PeriodID       *uuid.UUID
	Targets        []AllocationTarget
}

// NewCostAllocation creates an allocation rule
func NewCostAllocation(
	name string,
	sourceCostType CostType,
	totalAmount decimal.Decimal,
	method strategy.AllocationMethod,
	effectiveDate time.Time,
	targets []AllocationTarget,
) (*CostAllocation, error) {
	if name == "" {
		return nil, fmt.Errorf("%w: allocation name cannot be empty", shared.ErrInvalidAllocation)
	}
	if sourceCostType == "" {
		sourceCostType = CostTypeIndirect
	}
	if !sourceCostType.IsValid() {
		return nil, fmt.Errorf("%w: invalid cost type %q", shared.ErrInvalidAllocation, sourceCostType)
	}
	if method == "" {
		return nil, fmt.Errorf("%w: allocation method is required", shared.ErrInvalidAllocation)
	}

	rule := &CostAllocation{
		BaseEntity:     shared.NewBaseEntity(),
		Name:           name,
		SourceCostType: sourceCostType,
		Method:         method,
		EffectiveDate:  effectiveDate,
		Targets:        cloneTargets(targets),
	}
	if err := rule.SetTotalAmount(totalAmount); err != nil {
		return nil, err
	}
	return rule, nil
}

// SetTotalAmount sets the amount to allocate; negative amounts are rejected
func (a *CostAllocation) SetTotalAmount(amount decimal.Decimal) error {
	if amount.IsNegative() {
		return fmt.Errorf("%w: total amount cannot be negative", shared.ErrInvalidAllocation)
	}
	a.TotalAmount = amount
	a.Touch()
	return nil
}

// SetTargets replaces the rule's targets
func (a *CostAllocation) SetTargets(targets []AllocationTarget) {
	a.Targets = cloneTargets(targets)
	a.Touch()
}

// AssignPeriod links the rule to a cost period
func (a *CostAllocation) AssignPeriod(periodID uuid.UUID) {
	a.PeriodID = &periodID
	a.Touch()
}

// Validate checks the rule can be calculated
func (a *CostAllocation) Validate() error {
	return ValidateAllocationInput(a.TotalAmount, a.Targets)
}

// ValidateAllocationInput checks a non-negative amount and a non-empty target list
func ValidateAllocationInput(totalAmount decimal.Decimal, targets []AllocationTarget) error {
	if totalAmount.IsNegative() {
		return fmt.Errorf("%w: total amount cannot be negative", shared.ErrInvalidAllocation)
	}
	if len(targets) == 0 {
		return fmt.Errorf("%w: targets cannot be empty", shared.ErrInvalidAllocation)
	}
	return nil
}

func cloneTargets(targets []AllocationTarget) []AllocationTarget {
	if targets == nil {
		return nil
	}
	out := make([]AllocationTarget, len(targets))
	for i, t := range targets {
		out[i] = t.Clone()
	}
	return out
}
