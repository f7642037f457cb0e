package costing

import (
	"time"

	"github.com/erp/costing/internal/domain/costing"
	"github.com/erp/costing/internal/domain/shared/strategy"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ===================== Cost calculation =====================

// CostItem is one SKU and quantity to price
type CostItem struct {
	SKU      string `json:"sku" binding:"required"`
	Quantity int64  `json:"quantity"`
}

// CalculateCostRequest prices one SKU. An empty method uses the service default.
type CalculateCostRequest struct {
	SKU      string `json:"sku" binding:"required"`
	Quantity int64  `json:"quantity"`
	Method   string `json:"method" binding:"omitempty,cost_method"`
}

// BatchCalculateCostRequest prices several SKUs under one method
type BatchCalculateCostRequest struct {
	Items  []CostItem `json:"items" binding:"required,min=1,dive"`
	Method string     `json:"method" binding:"omitempty,cost_method"`
}

// RecalculateRequest prices the current stock of each SKU
type RecalculateRequest struct {
	SKUs   []string `json:"skus" binding:"required,min=1,dive,required"`
	Method string   `json:"method" binding:"omitempty,cost_method"`
}

// RecordCostRequest prices a SKU and persists the result as a cost record
type RecordCostRequest struct {
	SKU      string                 `json:"sku" binding:"required"`
	Quantity int64                  `json:"quantity"`
	Method   string                 `json:"method" binding:"omitempty,cost_method"`
	PeriodID *uuid.UUID             `json:"period_id"`
	CostType string                 `json:"cost_type" binding:"omitempty,oneof=direct indirect manufacturing overhead labor"`
	Operator string                 `json:"operator"`
	Metadata map[string]interface{} `json:"metadata"`
}

// CanCalculateQuery asks whether a calculator can price a quantity
type CanCalculateQuery struct {
	SKU      string `form:"sku" binding:"required"`
	Quantity int64  `form:"quantity"`
	Method   string `form:"method" binding:"omitempty,cost_method"`
}

// CanCalculateResponse answers a CanCalculateQuery
type CanCalculateResponse struct {
	SKU          string `json:"sku"`
	Quantity     int64  `json:"quantity"`
	Method       string `json:"method"`
	CanCalculate bool   `json:"can_calculate"`
}

// CostResultResponse is a cost calculation result in API responses
type CostResultResponse struct {
	SKU       string              `json:"sku"`
	Quantity  int64               `json:"quantity"`
	UnitCost  decimal.Decimal     `json:"unit_cost"`
	TotalCost decimal.Decimal     `json:"total_cost"`
	Method    string              `json:"method"`
	Partial   bool                `json:"is_partial"`
	Details   costing.CostDetails `json:"details"`
}

// BatchCostItemResponse carries either the result or the error for one batch item
type BatchCostItemResponse struct {
	Index  int                 `json:"index"`
	SKU    string              `json:"sku"`
	Result *CostResultResponse `json:"result,omitempty"`
	Error  string              `json:"error,omitempty"`
}

// CostRecordResponse is a persisted cost record in API responses
type CostRecordResponse struct {
	ID           uuid.UUID              `json:"id"`
	SKU          string                 `json:"sku"`
	BatchNumber  string                 `json:"batch_number,omitempty"`
	UnitCost     decimal.Decimal        `json:"unit_cost"`
	Quantity     int64                  `json:"quantity"`
	TotalCost    decimal.Decimal        `json:"total_cost"`
	Method       string                 `json:"method"`
	CostType     string                 `json:"cost_type"`
	PeriodID     *uuid.UUID             `json:"period_id,omitempty"`
	Operator     string                 `json:"operator,omitempty"`
	Metadata     map[string]interface{} `json:"metadata,omitempty"`
	StockLotID   *uuid.UUID             `json:"stock_lot_id,omitempty"`
	AllocationID *uuid.UUID             `json:"allocation_id,omitempty"`
	RecordedAt   time.Time              `json:"recorded_at"`
	CreatedAt    time.Time              `json:"created_at"`
	UpdatedAt    time.Time              `json:"updated_at"`
}

// CostRecordListFilter defines filtering options for cost record queries
type CostRecordListFilter struct {
	SKU      string `form:"sku"`
	PeriodID string `form:"period_id" binding:"omitempty,uuid"`
	Method   string `form:"method"`
	Page     int    `form:"page" binding:"omitempty,min=1"`
	PageSize int    `form:"page_size" binding:"omitempty,min=1,max=100"`
}

// CostMethodResponse describes a registered cost method
type CostMethodResponse struct {
	Method      string `json:"method"`
	Strategy    string `json:"strategy"`
	Description string `json:"description"`
	Default     bool   `json:"default"`
}

// StrategyResponse describes a registered strategy of either kind
type StrategyResponse struct {
	Name        string `json:"name"`
	Type        string `json:"type"`
	Description string `json:"description"`
}

// ===================== Allocation =====================

// CalculateAllocationRequest allocates an amount without a persisted rule
type CalculateAllocationRequest struct {
	TotalAmount   decimal.Decimal          `json:"total_amount"`
	Method        string                   `json:"method" binding:"required,allocation_method"`
	Targets       []map[string]interface{} `json:"targets"`
	CheckBalanced bool                     `json:"check_balanced"`
}

// ValidateTargetsRequest dry-runs target validation for a method
type ValidateTargetsRequest struct {
	Method  string                   `json:"method" binding:"required,allocation_method"`
	Targets []map[string]interface{} `json:"targets"`
}

// ValidateTargetsResponse reports whether any target is usable
type ValidateTargetsResponse struct {
	Method string   `json:"method"`
	Valid  bool     `json:"valid"`
	Schema []string `json:"schema"`
}

// CreateAllocationRuleRequest creates a persisted allocation rule
type CreateAllocationRuleRequest struct {
	Name           string                   `json:"name" binding:"required,max=200"`
	SourceCostType string                   `json:"source_cost_type" binding:"omitempty,oneof=direct indirect manufacturing overhead labor"`
	TotalAmount    decimal.Decimal          `json:"total_amount"`
	Method         string                   `json:"method" binding:"required,allocation_method"`
	EffectiveDate  time.Time                `json:"effective_date"`
	PeriodID       *uuid.UUID               `json:"period_id"`
	Targets        []map[string]interface{} `json:"targets"`
}

// AllocationRuleListFilter defines paging for rule queries
type AllocationRuleListFilter struct {
	Method   string `form:"method"`
	Page     int    `form:"page" binding:"omitempty,min=1"`
	PageSize int    `form:"page_size" binding:"omitempty,min=1,max=100"`
}

// AllocationRuleResponse is an allocation rule in API responses
type AllocationRuleResponse struct {
	ID             uuid.UUID                `json:"id"`
	Name           string                   `json:"name"`
	SourceCostType string                   `json:"source_cost_type"`
	TotalAmount    decimal.Decimal          `json:"total_amount"`
	Method         string                   `json:"method"`
	EffectiveDate  time.Time                `json:"effective_date"`
	PeriodID       *uuid.UUID               `json:"period_id,omitempty"`
	Targets        []map[string]interface{} `json:"targets"`
	CreatedAt      time.Time                `json:"created_at"`
	UpdatedAt      time.Time                `json:"updated_at"`
}

// AllocationResultResponse is an allocation outcome in API responses
type AllocationResultResponse struct {
	Method         string                     `json:"method"`
	TotalAmount    decimal.Decimal            `json:"total_amount"`
	TotalAllocated decimal.Decimal            `json:"total_allocated"`
	Allocations    []costing.Allocation       `json:"allocations"`
	Amounts        map[string]decimal.Decimal `json:"amounts"`
	Skipped        []costing.SkippedTarget    `json:"skipped"`
}

// AllocateRuleResponse is the outcome of materializing a rule into cost records
type AllocateRuleResponse struct {
	RuleID  uuid.UUID                `json:"rule_id"`
	Result  AllocationResultResponse `json:"result"`
	Records []CostRecordResponse     `json:"records"`
}

// ===================== Periods =====================

// CreatePeriodRequest creates an open cost period
type CreatePeriodRequest struct {
	Name          string    `json:"name" binding:"max=100"`
	StartDate     time.Time `json:"start_date" binding:"required"`
	EndDate       time.Time `json:"end_date" binding:"required"`
	DefaultMethod string    `json:"default_method" binding:"omitempty,cost_method"`
}

// PeriodListFilter defines filtering options for period queries
type PeriodListFilter struct {
	Status   string `form:"status" binding:"omitempty,oneof=OPEN CLOSED FROZEN"`
	Page     int    `form:"page" binding:"omitempty,min=1"`
	PageSize int    `form:"page_size" binding:"omitempty,min=1,max=100"`
}

// PeriodResponse is a cost period in API responses
type PeriodResponse struct {
	ID            uuid.UUID  `json:"id"`
	Name          string     `json:"name"`
	StartDate     time.Time  `json:"start_date"`
	EndDate       time.Time  `json:"end_date"`
	DefaultMethod string     `json:"default_method"`
	Status        string     `json:"status"`
	Version       int        `json:"version"`
	CreatedAt     time.Time  `json:"created_at"`
	UpdatedAt     time.Time  `json:"updated_at"`
	DeletedAt     *time.Time `json:"deleted_at,omitempty"`
}

// CanCloseResponse reports whether a period may be closed
type CanCloseResponse struct {
	PeriodID uuid.UUID `json:"period_id"`
	Status   string    `json:"status"`
	CanClose bool      `json:"can_close"`
}

// ===================== Consistency =====================

// ConsistencyReportResponse is the validation outcome for one record
type ConsistencyReportResponse struct {
	RecordID   uuid.UUID `json:"record_id"`
	StockLotID uuid.UUID `json:"stock_lot_id"`
	Valid      bool      `json:"valid"`
	Errors     []string  `json:"errors"`
}

// FixRecordResponse is the outcome of repairing one record
type FixRecordResponse struct {
	RecordID uuid.UUID          `json:"record_id"`
	Fixed    bool               `json:"fixed"`
	Record   CostRecordResponse `json:"record"`
}

// RecordFinding lists residual findings for a record that could not be fully repaired
type RecordFinding struct {
	RecordID uuid.UUID `json:"record_id"`
	Errors   []string  `json:"errors"`
}

// RepairReport summarizes a batch repair run
type RepairReport struct {
	Scanned    int             `json:"scanned"`
	Fixed      int             `json:"fixed"`
	Unresolved []RecordFinding `json:"unresolved"`
}

// ===================== Stock lots and standard costs =====================

// RegisterLotRequest registers a received stock lot
type RegisterLotRequest struct {
	SKU         string          `json:"sku" binding:"required"`
	BatchNumber string          `json:"batch_number" binding:"max=50"`
	AcquiredAt  time.Time       `json:"acquired_at"`
	Quantity    int64           `json:"quantity" binding:"min=0"`
	UnitCost    decimal.Decimal `json:"unit_cost"`
}

// ConsumeLotRequest takes quantity out of a lot
type ConsumeLotRequest struct {
	Quantity int64 `json:"quantity" binding:"required,gt=0"`
}

// StockLotResponse is a stock lot in API responses
type StockLotResponse struct {
	ID                uuid.UUID       `json:"id"`
	SKU               string          `json:"sku"`
	BatchNumber       string          `json:"batch_number,omitempty"`
	AcquiredAt        time.Time       `json:"acquired_at"`
	OriginalQuantity  int64           `json:"original_quantity"`
	RemainingQuantity int64           `json:"remaining_quantity"`
	UnitCost          decimal.Decimal `json:"unit_cost"`
	RemainingValue    decimal.Decimal `json:"remaining_value"`
}

// StockSummaryResponse lists a SKU's lots and its current stock
type StockSummaryResponse struct {
	SKU          string             `json:"sku"`
	CurrentStock int64              `json:"current_stock"`
	Lots         []StockLotResponse `json:"lots"`
}

// SetStandardCostRequest configures a SKU's standard unit cost
type SetStandardCostRequest struct {
	UnitCost      decimal.Decimal `json:"unit_cost"`
	EffectiveFrom *time.Time      `json:"effective_from"`
}

// StandardCostResponse is a standard cost in API responses
type StandardCostResponse struct {
	SKU           string          `json:"sku"`
	UnitCost      decimal.Decimal `json:"unit_cost"`
	EffectiveFrom time.Time       `json:"effective_from"`
	UpdatedAt     time.Time       `json:"updated_at"`
}

// ===================== Converters =====================

// ToCostResultResponse converts a calculation result
func ToCostResultResponse(r costing.CostCalculationResult) CostResultResponse {
	return CostResultResponse{
		SKU:       r.SKU(),
		Quantity:  r.Quantity(),
		UnitCost:  r.UnitCost(),
		TotalCost: r.TotalCost(),
		Method:    r.Method().String(),
		Partial:   r.IsPartial(),
		Details:   r.Details(),
	}
}

// ToCostRecordResponse converts a cost record
func ToCostRecordResponse(r *costing.CostRecord) CostRecordResponse {
	return CostRecordResponse{
		ID:           r.ID,
		SKU:          r.SKU,
		BatchNumber:  r.BatchNumber,
		UnitCost:     r.UnitCost,
		Quantity:     r.Quantity,
		TotalCost:    r.TotalCost,
		Method:       r.Method,
		CostType:     r.CostType.String(),
		PeriodID:     r.PeriodID,
		Operator:     r.Operator,
		Metadata:     r.Metadata,
		StockLotID:   r.StockLotID,
		AllocationID: r.AllocationID,
		RecordedAt:   r.RecordedAt,
		CreatedAt:    r.CreatedAt,
		UpdatedAt:    r.UpdatedAt,
	}
}

// ToAllocationResultResponse converts an allocation result
func ToAllocationResultResponse(r costing.AllocationResult) AllocationResultResponse {
	allocations := r.Allocations
	if allocations == nil {
		allocations = []costing.Allocation{}
	}
	skipped := r.Skipped
	if skipped == nil {
		skipped = []costing.SkippedTarget{}
	}
	return AllocationResultResponse{
		Method:         r.Method.String(),
		TotalAmount:    r.TotalAmount,
		TotalAllocated: r.TotalAllocated(),
		Allocations:    allocations,
		Amounts:        r.AsMap(),
		Skipped:        skipped,
	}
}

// ToAllocationRuleResponse converts an allocation rule
func ToAllocationRuleResponse(a *costing.CostAllocation) AllocationRuleResponse {
	return AllocationRuleResponse{
		ID:             a.ID,
		Name:           a.Name,
		SourceCostType: a.SourceCostType.String(),
		TotalAmount:    a.TotalAmount,
		Method:         a.Method.String(),
		EffectiveDate:  a.EffectiveDate,
		PeriodID:       a.PeriodID,
		Targets:        fromTargets(a.Targets),
		CreatedAt:      a.CreatedAt,
		UpdatedAt:      a.UpdatedAt,
	}
}

// ToPeriodResponse converts a cost period
func ToPeriodResponse(p *costing.CostPeriod) PeriodResponse {
	return PeriodResponse{
		ID:            p.ID,
		Name:          p.Name,
		StartDate:     p.StartDate,
		EndDate:       p.EndDate,
		DefaultMethod: p.DefaultMethod.String(),
		Status:        p.Status.String(),
		Version:       p.Version,
		CreatedAt:     p.CreatedAt,
		UpdatedAt:     p.UpdatedAt,
		DeletedAt:     p.DeletedAt,
	}
}

// ToStockLotResponse converts a stock lot
func ToStockLotResponse(l *costing.StockLot) StockLotResponse {
	return StockLotResponse{
		ID:                l.ID,
		SKU:               l.SKU,
		BatchNumber:       l.BatchNumber,
		AcquiredAt:        l.AcquiredAt,
		OriginalQuantity:  l.OriginalQuantity,
		RemainingQuantity: l.RemainingQuantity,
		UnitCost:          l.UnitCost,
		RemainingValue:    l.RemainingValue(),
	}
}

// ToStandardCostResponse converts a standard cost
func ToStandardCostResponse(c *costing.StandardCost) StandardCostResponse {
	return StandardCostResponse{
		SKU:           c.SKU,
		UnitCost:      c.UnitCost,
		EffectiveFrom: c.EffectiveFrom,
		UpdatedAt:     c.UpdatedAt,
	}
}

// ToStrategyResponse converts a registered strategy
func ToStrategyResponse(s strategy.Strategy) StrategyResponse {
	return StrategyResponse{
		Name:        s.Name(),
		Type:        string(s.Type()),
		Description: s.Description(),
	}
}

func toTargets(raw []map[string]interface{}) []costing.AllocationTarget {
	if raw == nil {
		return nil
	}
	out := make([]costing.AllocationTarget, len(raw))
	for i, m := range raw {
		out[i] = costing.AllocationTarget(m)
	}
	return out
}

func fromTargets(targets []costing.AllocationTarget) []map[string]interface{} {
	out := make([]map[string]interface{}, len(targets))
	for i, t := range targets {
		out[i] = map[string]interface{}(t)
	}
	return out
}
