package costing

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/erp/costing/internal/domain/shared"
	"github.com/erp/costing/internal/domain/shared/strategy"
	"github.com/shopspring/decimal"
)

// AllocationTarget is one recipient of a shared cost: an open mapping of
// named fields such as sku_id, ratio, quantity, value or activity_units.
type AllocationTarget map[string]interface{}

// RatioTarget builds a target for the ratio method
func RatioTarget(sku string, ratio decimal.Decimal) AllocationTarget {
	return AllocationTarget{strategy.TargetFieldSKU: sku, strategy.TargetFieldRatio: ratio.String()}
}

// QuantityTarget builds a target for the quantity method
func QuantityTarget(sku string, quantity decimal.Decimal) AllocationTarget {
	return AllocationTarget{strategy.TargetFieldSKU: sku, strategy.TargetFieldQuantity: quantity.String()}
}

// ValueTarget builds a target for the value method
func ValueTarget(sku string, value decimal.Decimal) AllocationTarget {
	return AllocationTarget{strategy.TargetFieldSKU: sku, strategy.TargetFieldValue: value.String()}
}

// ActivityTarget builds a target for the activity method
func ActivityTarget(sku string, units decimal.Decimal) AllocationTarget {
	return AllocationTarget{strategy.TargetFieldSKU: sku, strategy.TargetFieldActivityUnits: units.String()}
}

// Clone returns a shallow copy of the target
func (t AllocationTarget) Clone() AllocationTarget {
	if t == nil {
		return nil
	}
	c := make(AllocationTarget, len(t))
	for k, v := range t {
		c[k] = v
	}
	return c
}

// SKU returns the target's sku_id. Integer ids are accepted and formatted.
func (t AllocationTarget) SKU() (string, bool) {
	raw, ok := t[strategy.TargetFieldSKU]
	if !ok || raw == nil {
		return "", false
	}
	switch v := raw.(type) {
	case string:
		v = strings.TrimSpace(v)
		return v, v != ""
	case json.Number:
		return v.String(), v.String() != ""
	case int, int32, int64, uint, uint32, uint64:
		return fmt.Sprintf("%d", v), true
	case float64:
		if v == float64(int64(v)) {
			return strconv.FormatInt(int64(v), 10), true
		}
		return "", false
	default:
		return "", false
	}
}

// Number coerces a field to a decimal. Numbers and numeric strings are
// accepted; anything else reports false.
func (t AllocationTarget) Number(field string) (decimal.Decimal, bool) {
	raw, ok := t[field]
	if !ok || raw == nil {
		return decimal.Zero, false
	}
	switch v := raw.(type) {
	case decimal.Decimal:
		return v, true
	case *decimal.Decimal:
		if v == nil {
			return decimal.Zero, false
		}
		return *v, true
	case float64:
		return decimal.NewFromFloat(v), true
	case float32:
		return decimal.NewFromFloat32(v), true
	case int:
		return decimal.NewFromInt(int64(v)), true
	case int32:
		return decimal.NewFromInt32(v), true
	case int64:
		return decimal.NewFromInt(v), true
	case uint:
		return decimal.NewFromUint64(uint64(v)), true
	case uint32:
		return decimal.NewFromUint64(uint64(v)), true
	case uint64:
		return decimal.NewFromUint64(v), true
	case json.Number:
		d, err := decimal.NewFromString(v.String())
		return d, err == nil
	case string:
		d, err := decimal.NewFromString(strings.TrimSpace(v))
		return d, err == nil
	default:
		return decimal.Zero, false
	}
}

// Allocation is the amount assigned to one target
type Allocation struct {
	TargetIndex int             `json:"target_index"`
	SKU         string          `json:"sku_id"`
	Amount      decimal.Decimal `json:"amount"`
}

// SkippedTarget reports a target excluded from an allocation
type SkippedTarget struct {
	TargetIndex int    `json:"target_index"`
	Reason      string `json:"reason"`
}

// Skip reasons
const (
	SkipReasonMissingSKU       = "missing sku_id"
	SkipReasonMissingWeight    = "missing or non-numeric weight"
	SkipReasonRatioOutOfRange  = "ratio outside [0, 1]"
	SkipReasonNegativeWeight   = "negative weight"
	SkipReasonNoPositiveWeight = "total weight is not positive"
)

// AllocationResult is the outcome of an allocation.
// Allocations keep target order; Skipped lists targets that were excluded.
type AllocationResult struct {
	Method      strategy.AllocationMethod `json:"method"`
	TotalAmount decimal.Decimal           `json:"total_amount"`
	Allocations []Allocation              `json:"allocations"`
	Skipped     []SkippedTarget           `json:"skipped,omitempty"`
}

// AsMap returns sku -> amount. A SKU appearing twice keeps the later amount.
func (r AllocationResult) AsMap() map[string]decimal.Decimal {
	out := make(map[string]decimal.Decimal, len(r.Allocations))
	for _, a := range r.Allocations {
		out[a.SKU] = a.Amount
	}
	return out
}

// TotalAllocated sums the allocated amounts
func (r AllocationResult) TotalAllocated() decimal.Decimal {
	sum := decimal.Zero
	for _, a := range r.Allocations {
		sum = sum.Add(a.Amount)
	}
	return sum
}

// HasSkipped reports whether any target was excluded
func (r AllocationResult) HasSkipped() bool {
	return len(r.Skipped) > 0
}

// CheckBalanced verifies the allocated amounts sum to the total within tolerance.
// Strategies never call this; callers opt in.
func (r AllocationResult) CheckBalanced(tolerance decimal.Decimal) error {
	diff := r.TotalAllocated().Sub(r.TotalAmount).Abs()
	if diff.GreaterThan(tolerance) {
		return fmt.Errorf("%w: allocated %s of %s", shared.ErrAllocationUnbalanced,
			r.TotalAllocated().String(), r.TotalAmount.String())
	}
	return nil
}

// AllocationStrategy divides a total amount across weighted targets
type AllocationStrategy interface {
	strategy.Strategy
	// Method returns the allocation method the strategy implements
	Method() strategy.AllocationMethod
	// Calculate allocates the amount; malformed targets are skipped and reported
	Calculate(totalAmount decimal.Decimal, targets []AllocationTarget) AllocationResult
	// ValidateTargets reports whether at least one target is usable
	ValidateTargets(targets []AllocationTarget) bool
}
