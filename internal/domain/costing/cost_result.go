package costing

import (
	"fmt"
	"time"

	"github.com/erp/costing/internal/domain/shared"
	"github.com/erp/costing/internal/domain/shared/strategy"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// LotUsage describes how much of a single lot went into a calculation
type LotUsage struct {
	LotID       uuid.UUID       `json:"lot_id"`
	BatchNumber string          `json:"batch_number,omitempty"`
	AcquiredAt  time.Time       `json:"acquired_at"`
	Quantity    int64           `json:"quantity"`
	UnitCost    decimal.Decimal `json:"unit_cost"`
	Cost        decimal.Decimal `json:"cost"`
}

// CostDetails is the strategy-specific breakdown of a calculation.
// Lot-walking strategies fill LotsUsed; weighted average fills
// AvailableQuantity; standard cost fills StandardCost.
type CostDetails struct {
	LotsUsed          []LotUsage       `json:"lots_used,omitempty"`
	TotalSatisfied    int64            `json:"total_satisfied"`
	Shortage          int64            `json:"shortage"`
	ShortageUnitCost  decimal.Decimal  `json:"shortage_unit_cost"`
	AvailableQuantity int64            `json:"available_quantity,omitempty"`
	StandardCost      *decimal.Decimal `json:"standard_cost,omitempty"`
}

func (d CostDetails) clone() CostDetails {
	c := d
	if d.LotsUsed != nil {
		c.LotsUsed = append([]LotUsage(nil), d.LotsUsed...)
	}
	if d.StandardCost != nil {
		v := *d.StandardCost
		c.StandardCost = &v
	}
	return c
}

// CostCalculationResult is the immutable outcome of a unit-cost calculation
type CostCalculationResult struct {
	sku       string
	quantity  int64
	unitCost  decimal.Decimal
	totalCost decimal.Decimal
	method    strategy.CostMethod
	details   CostDetails
	partial   bool
}

// NewCostCalculationResult validates and builds a result.
// An empty SKU, a non-positive quantity or a negative cost is rejected.
func NewCostCalculationResult(
	sku string,
	quantity int64,
	unitCost, totalCost decimal.Decimal,
	method strategy.CostMethod,
	details CostDetails,
	partial bool,
) (CostCalculationResult, error) {
	if sku == "" {
		return CostCalculationResult{}, fmt.Errorf("%w: sku cannot be empty", shared.ErrInvalidCostData)
	}
	if quantity <= 0 {
		return CostCalculationResult{}, fmt.Errorf("%w: quantity must be positive, got %d", shared.ErrInvalidCostData, quantity)
	}
	if unitCost.IsNegative() || totalCost.IsNegative() {
		return CostCalculationResult{}, fmt.Errorf("%w: cost cannot be negative", shared.ErrInvalidCostData)
	}

	return CostCalculationResult{
		sku:       sku,
		quantity:  quantity,
		unitCost:  unitCost,
		totalCost: totalCost,
		method:    method,
		details:   details.clone(),
		partial:   partial,
	}, nil
}

// SKU returns the SKU the result is for
func (r CostCalculationResult) SKU() string { return r.sku }

// Quantity returns the requested quantity
func (r CostCalculationResult) Quantity() int64 { return r.quantity }

// UnitCost returns the resulting unit cost
func (r CostCalculationResult) UnitCost() decimal.Decimal { return r.unitCost }

// TotalCost returns the resulting total cost
func (r CostCalculationResult) TotalCost() decimal.Decimal { return r.totalCost }

// Method returns the cost method that produced the result
func (r CostCalculationResult) Method() strategy.CostMethod { return r.method }

// Details returns a copy of the calculation breakdown
func (r CostCalculationResult) Details() CostDetails { return r.details.clone() }

// IsPartial reports whether demand exceeded priced supply
func (r CostCalculationResult) IsPartial() bool { return r.partial }

// Equal compares two results by value
func (r CostCalculationResult) Equal(o CostCalculationResult) bool {
	if r.sku != o.sku || r.quantity != o.quantity || r.method != o.method || r.partial != o.partial {
		return false
	}
	if !r.unitCost.Equal(o.unitCost) || !r.totalCost.Equal(o.totalCost) {
		return false
	}
	if len(r.details.LotsUsed) != len(o.details.LotsUsed) {
		return false
	}
	for i, u := range r.details.LotsUsed {
		v := o.details.LotsUsed[i]
		if u.LotID != v.LotID || u.Quantity != v.Quantity || !u.Cost.Equal(v.Cost) {
			return false
		}
	}
	return r.details.TotalSatisfied == o.details.TotalSatisfied && r.details.Shortage == o.details.Shortage
}
