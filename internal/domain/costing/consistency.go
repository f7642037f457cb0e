package costing

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// DefaultConsistencyTolerance is the tolerance for unit cost and total cost comparisons
var DefaultConsistencyTolerance = decimal.NewFromFloat(0.001)

// ConsistencyReport lists the findings for one cost record
type ConsistencyReport struct {
	Valid  bool     `json:"valid"`
	Errors []string `json:"errors"`
}

// ConsistencyValidator cross-checks a cost record against its originating stock lot
type ConsistencyValidator struct {
	tolerance decimal.Decimal
}

// NewConsistencyValidator creates a validator; a non-positive tolerance falls back to the default
func NewConsistencyValidator(tolerance decimal.Decimal) *ConsistencyValidator {
	if !tolerance.IsPositive() {
		tolerance = DefaultConsistencyTolerance
	}
	return &ConsistencyValidator{tolerance: tolerance}
}

// Tolerance returns the comparison tolerance
func (v *ConsistencyValidator) Tolerance() decimal.Decimal {
	return v.tolerance
}

// Validate runs every check and collects one finding per failed check
func (v *ConsistencyValidator) Validate(record *CostRecord, lot *StockLot) ConsistencyReport {
	errs := make([]string, 0)

	if record.SKU != lot.SKU {
		errs = append(errs, fmt.Sprintf("SKU mismatch: record %q, stock lot %q", record.SKU, lot.SKU))
	}
	if record.BatchNumber != lot.BatchNumber {
		errs = append(errs, fmt.Sprintf("Batch number mismatch: record %q, stock lot %q", record.BatchNumber, lot.BatchNumber))
	}
	if !v.unitCostMatches(record, lot) {
		errs = append(errs, fmt.Sprintf("Unit cost mismatch: record %s, stock lot %s",
			record.UnitCost.String(), lot.UnitCost.String()))
	}
	if record.Quantity > lot.RemainingQuantity {
		errs = append(errs, fmt.Sprintf("Quantity exceeds available stock: record %d, available %d",
			record.Quantity, lot.RemainingQuantity))
	}
	if !record.IsTotalConsistent(v.tolerance) {
		errs = append(errs, fmt.Sprintf("Total cost mismatch: expected %s, actual %s",
			record.ExpectedTotal().String(), record.TotalCost.String()))
	}
	if record.Quantity <= 0 {
		errs = append(errs, fmt.Sprintf("Quantity must be positive: %d", record.Quantity))
	}

	return ConsistencyReport{Valid: len(errs) == 0, Errors: errs}
}

// Fix copies SKU, batch number and unit cost from the lot when they differ
// and, if anything changed, recomputes the total. Returns true if the
// record was modified.
func (v *ConsistencyValidator) Fix(record *CostRecord, lot *StockLot) bool {
	changed := false

	if record.SKU != lot.SKU {
		record.SKU = lot.SKU
		changed = true
	}
	if record.BatchNumber != lot.BatchNumber {
		record.BatchNumber = lot.BatchNumber
		changed = true
	}
	if !v.unitCostMatches(record, lot) {
		record.UnitCost = lot.UnitCost
		changed = true
	}

	if changed {
		record.RecalculateTotal()
	}
	return changed
}

func (v *ConsistencyValidator) unitCostMatches(record *CostRecord, lot *StockLot) bool {
	return record.UnitCost.Sub(lot.UnitCost).Abs().LessThanOrEqual(v.tolerance)
}
