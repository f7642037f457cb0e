package costing

import (
	"fmt"
	"time"

	"github.com/erp/costing/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// CostType classifies a cost record
type CostType string

const (
	CostTypeDirect        CostType = "direct"
	CostTypeIndirect      CostType = "indirect"
	CostTypeManufacturing CostType = "manufacturing"
	CostTypeOverhead      CostType = "overhead"
	CostTypeLabor         CostType = "labor"
)

// IsValid returns true if the cost type is valid
func (t CostType) IsValid() bool {
	switch t {
	case CostTypeDirect, CostTypeIndirect, CostTypeManufacturing, CostTypeOverhead, CostTypeLabor:
		return true
	default:
		return false
	}
}

// String returns the string representation
func (t CostType) String() string {
	return string(t)
}

// DefaultRecordTotalTolerance is the allowed drift between total cost and unit cost times quantity
var DefaultRecordTotalTolerance = decimal.NewFromFloat(0.01)

// AllocationMethodPrefix marks the method of records materialized from an allocation
const AllocationMethodPrefix = "allocation:"

// CostRecord is a persisted costing event
type CostRecord struct {
	shared.BaseEntity
	SKU          string
	BatchNumber  string
	UnitCost     decimal.Decimal
	Quantity     int64
	TotalCost    decimal.Decimal
	Method       string
	CostType     CostType
	PeriodID     *uuid.UUID
	Operator     string
	Metadata     map[string]interface{}
	StockLotID   *uuid.UUID
	AllocationID *uuid.UUID
	RecordedAt   time.Time
}

// NewCostRecord creates a cost record
func NewCostRecord(sku string, quantity int64, unitCost, totalCost decimal.Decimal, method string, costType CostType) (*CostRecord, error) {
	if sku == "" {
		return nil, fmt.Errorf("%w: sku cannot be empty", shared.ErrInvalidCostData)
	}
	if quantity <= 0 {
		return nil, fmt.Errorf("%w: quantity must be positive, got %d", shared.ErrInvalidCostData, quantity)
	}
	if unitCost.IsNegative() {
		return nil, fmt.Errorf("%w: unit cost cannot be negative", shared.ErrInvalidCostData)
	}
	if totalCost.IsNegative() {
		return nil, fmt.Errorf("%w: total cost cannot be negative", shared.ErrInvalidCostData)
	}
	if costType == "" {
		costType = CostTypeDirect
	}
	if !costType.IsValid() {
		return nil, fmt.Errorf("%w: invalid cost type %q", shared.ErrInvalidCostData, costType)
	}

	base := shared.NewBaseEntity()
	return &CostRecord{
		BaseEntity: base,
		SKU:        sku,
		UnitCost:   unitCost,
		Quantity:   quantity,
		TotalCost:  totalCost,
		Method:     method,
		CostType:   costType,
		Metadata:   make(map[string]interface{}),
		RecordedAt: base.CreatedAt,
	}, nil
}

// NewCostRecordFromResult materializes a calculation result
func NewCostRecordFromResult(result CostCalculationResult, costType CostType) (*CostRecord, error) {
	record, err := NewCostRecord(result.SKU(), result.Quantity(), result.UnitCost(), result.TotalCost(), result.Method().String(), costType)
	if err != nil {
		return nil, err
	}
	details := result.Details()
	record.Metadata["cost_details"] = details
	record.Metadata["partial"] = result.IsPartial()
	if len(details.LotsUsed) == 1 {
		lot := details.LotsUsed[0]
		record.StockLotID = &lot.LotID
		record.BatchNumber = lot.BatchNumber
	}
	return record, nil
}

// NewCostRecordFromAllocation materializes one allocated amount as a record
// of quantity 1 priced at the amount
func NewCostRecordFromAllocation(rule *CostAllocation, allocation Allocation) (*CostRecord, error) {
	if allocation.Amount.IsNegative() {
		return nil, fmt.Errorf("%w: allocated amount cannot be negative", shared.ErrInvalidCostData)
	}
	record, err := NewCostRecord(allocation.SKU, 1, allocation.Amount, allocation.Amount,
		AllocationMethodPrefix+rule.Method.String(), rule.SourceCostType)
	if err != nil {
		return nil, err
	}
	ruleID := rule.ID
	record.AllocationID = &ruleID
	record.PeriodID = rule.PeriodID
	record.Metadata["allocation_name"] = rule.Name
	record.Metadata["target_index"] = allocation.TargetIndex
	return record, nil
}

// ExpectedTotal returns unit cost times quantity
func (r *CostRecord) ExpectedTotal() decimal.Decimal {
	return r.UnitCost.Mul(decimal.NewFromInt(r.Quantity))
}

// IsTotalConsistent reports whether total cost is within tolerance of unit cost times quantity
func (r *CostRecord) IsTotalConsistent(tolerance decimal.Decimal) bool {
	return r.TotalCost.Sub(r.ExpectedTotal()).Abs().LessThanOrEqual(tolerance)
}

// RecalculateTotal stores unit cost times quantity as the total
func (r *CostRecord) RecalculateTotal() {
	r.TotalCost = r.ExpectedTotal()
	r.Touch()
}

// AssignPeriod links the record to a cost period
func (r *CostRecord) AssignPeriod(periodID uuid.UUID) {
	r.PeriodID = &periodID
	r.Touch()
}

// AttachStockLot links the record to its originating lot
func (r *CostRecord) AttachStockLot(lot *StockLot) {
	id := lot.ID
	r.StockLotID = &id
	r.BatchNumber = lot.BatchNumber
	r.Touch()
}

// IsAllocation reports whether the record was produced by an allocation
func (r *CostRecord) IsAllocation() bool {
	return r.AllocationID != nil
}
