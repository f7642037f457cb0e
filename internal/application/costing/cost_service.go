package costing

import (
	"context"
	"fmt"
	"time"

	"github.com/erp/costing/internal/domain/costing"
	"github.com/erp/costing/internal/domain/shared"
	"github.com/erp/costing/internal/domain/shared/strategy"
	"github.com/erp/costing/internal/infrastructure/telemetry"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// DefaultLockTTL bounds how long a SKU stays locked while a cost is recorded
const DefaultLockTTL = 5 * time.Second

// CostCalculatorRegistry resolves unit-cost calculators by method
type CostCalculatorRegistry interface {
	GetCostCalculator(method strategy.CostMethod) (costing.UnitCostCalculator, error)
	ListCostCalculators() []costing.UnitCostCalculator
}

// CostServiceOption configures a CostService at construction
type CostServiceOption func(*CostService)

// WithDefaultMethod sets the method used when a call names none
func WithDefaultMethod(method strategy.CostMethod) CostServiceOption {
	return func(s *CostService) {
		if method != "" {
			s.defaultMethod = method
		}
	}
}

// WithLocker serializes RecordCost per SKU through locker
func WithLocker(locker shared.Locker, ttl time.Duration) CostServiceOption {
	return func(s *CostService) {
		s.locker = locker
		if ttl > 0 {
			s.lockTTL = ttl
		}
	}
}

// WithRecordTolerance sets the drift allowed between a new record's total and
// unit cost times quantity before a warning is logged
func WithRecordTolerance(tolerance decimal.Decimal) CostServiceOption {
	return func(s *CostService) {
		if tolerance.IsPositive() {
			s.recordTolerance = tolerance
		}
	}
}

// CostService dispatches cost calculations to the calculator registered for
// the requested method. The default method is fixed at construction.
type CostService struct {
	calculators     CostCalculatorRegistry
	records         costing.CostRecordRepository
	periods         costing.CostPeriodRepository
	locker          shared.Locker
	lockTTL         time.Duration
	defaultMethod   strategy.CostMethod
	recordTolerance decimal.Decimal
	logger          *zap.Logger
	metrics         *telemetry.CostingMetrics
}

// NewCostService creates a new CostService
func NewCostService(
	calculators CostCalculatorRegistry,
	records costing.CostRecordRepository,
	periods costing.CostPeriodRepository,
	logger *zap.Logger,
	opts ...CostServiceOption,
) *CostService {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &CostService{
		calculators:     calculators,
		records:         records,
		periods:         periods,
		lockTTL:         DefaultLockTTL,
		defaultMethod:   strategy.CostMethodFIFO,
		recordTolerance: costing.DefaultRecordTotalTolerance,
		logger:          logger,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// SetMetrics sets the metrics recorder (optional)
func (s *CostService) SetMetrics(metrics *telemetry.CostingMetrics) {
	s.metrics = metrics
}

// DefaultMethod returns the method used when a call names none
func (s *CostService) DefaultMethod() strategy.CostMethod {
	return s.defaultMethod
}

func (s *CostService) resolve(method string) (costing.UnitCostCalculator, error) {
	m := s.defaultMethod
	if method != "" {
		m = strategy.CostMethod(method)
	}
	return s.calculators.GetCostCalculator(m)
}

func (s *CostService) calculate(ctx context.Context, calc costing.UnitCostCalculator, sku string, quantity int64) (costing.CostCalculationResult, error) {
	start := time.Now()
	result, err := calc.Calculate(ctx, sku, quantity)
	if err != nil {
		return costing.CostCalculationResult{}, err
	}
	s.metrics.RecordCalculation(ctx, result.Method().String(), result.IsPartial(), time.Since(start))
	if result.IsPartial() {
		s.logger.Debug("Partial cost calculation",
			zap.String("sku", sku),
			zap.String("method", result.Method().String()),
			zap.Int64("quantity", quantity),
			zap.Int64("shortage", result.Details().Shortage),
		)
	}
	return result, nil
}

// CalculateCost prices a quantity of one SKU
func (s *CostService) CalculateCost(ctx context.Context, req CalculateCostRequest) (*CostResultResponse, error) {
	calc, err := s.resolve(req.Method)
	if err != nil {
		return nil, err
	}
	result, err := s.calculate(ctx, calc, req.SKU, req.Quantity)
	if err != nil {
		return nil, err
	}
	resp := ToCostResultResponse(result)
	return &resp, nil
}

// BatchCalculateCost prices each item in input order. A failing item is
// reported in its slot and does not stop the batch; only an unknown method
// fails the whole call.
func (s *CostService) BatchCalculateCost(ctx context.Context, req BatchCalculateCostRequest) ([]BatchCostItemResponse, error) {
	calc, err := s.resolve(req.Method)
	if err != nil {
		return nil, err
	}

	out := make([]BatchCostItemResponse, len(req.Items))
	for i, item := range req.Items {
		out[i] = BatchCostItemResponse{Index: i, SKU: item.SKU}
		result, err := s.calculate(ctx, calc, item.SKU, item.Quantity)
		if err != nil {
			s.logger.Warn("Batch cost item failed",
				zap.Int("index", i),
				zap.String("sku", item.SKU),
				zap.String("method", calc.SupportedMethod().String()),
				zap.Error(err),
			)
			out[i].Error = err.Error()
			continue
		}
		resp := ToCostResultResponse(result)
		out[i].Result = &resp
	}
	return out, nil
}

// Recalculate prices the current stock of each SKU; SKUs without stock are left out
func (s *CostService) Recalculate(ctx context.Context, req RecalculateRequest) ([]CostResultResponse, error) {
	calc, err := s.resolve(req.Method)
	if err != nil {
		return nil, err
	}
	results, err := calc.Recalculate(ctx, req.SKUs)
	if err != nil {
		return nil, err
	}
	out := make([]CostResultResponse, len(results))
	for i, r := range results {
		out[i] = ToCostResultResponse(r)
	}
	s.logger.Info("Recalculated stock costs",
		zap.String("method", calc.SupportedMethod().String()),
		zap.Int("requested", len(req.SKUs)),
		zap.Int("priced", len(out)),
	)
	return out, nil
}

// CanCalculate reports whether the resolved calculator can price the quantity
func (s *CostService) CanCalculate(ctx context.Context, sku string, quantity int64, method string) (bool, error) {
	calc, err := s.resolve(method)
	if err != nil {
		return false, err
	}
	return calc.CanCalculate(ctx, sku, quantity)
}

// SupportedMethods lists the registered calculators in dispatch order
func (s *CostService) SupportedMethods() []CostMethodResponse {
	calcs := s.calculators.ListCostCalculators()
	out := make([]CostMethodResponse, len(calcs))
	for i, c := range calcs {
		out[i] = CostMethodResponse{
			Method:      c.SupportedMethod().String(),
			Strategy:    c.Name(),
			Description: c.Description(),
			Default:     c.SupportedMethod() == s.defaultMethod,
		}
	}
	return out
}

// RecordCost prices a SKU and persists the result. Recording is refused for a
// period that is not open, and is serialized per SKU when a locker is set.
func (s *CostService) RecordCost(ctx context.Context, req RecordCostRequest) (*CostRecordResponse, error) {
	calc, err := s.resolve(req.Method)
	if err != nil {
		return nil, err
	}

	if req.PeriodID != nil {
		if err := ensurePeriodOpen(ctx, s.periods, *req.PeriodID); err != nil {
			return nil, err
		}
	}

	if s.locker != nil {
		lock, err := s.locker.Obtain(ctx, skuLockKey(req.SKU), s.lockTTL)
		if err != nil {
			return nil, err
		}
		defer func() {
			if err := lock.Release(ctx); err != nil {
				s.logger.Warn("Failed to release sku lock", zap.String("sku", req.SKU), zap.Error(err))
			}
		}()
	}

	result, err := s.calculate(ctx, calc, req.SKU, req.Quantity)
	if err != nil {
		return nil, err
	}

	record, err := costing.NewCostRecordFromResult(result, costing.CostType(req.CostType))
	if err != nil {
		return nil, err
	}
	if !record.IsTotalConsistent(s.recordTolerance) {
		s.logger.Warn("Cost record total drifts from unit cost times quantity",
			zap.String("sku", record.SKU),
			zap.String("method", record.Method),
			zap.String("expected_total", record.ExpectedTotal().String()),
			zap.String("total_cost", record.TotalCost.String()),
			zap.String("tolerance", s.recordTolerance.String()),
		)
	}
	record.Operator = req.Operator
	if req.PeriodID != nil {
		record.AssignPeriod(*req.PeriodID)
	}
	for k, v := range req.Metadata {
		if _, reserved := record.Metadata[k]; !reserved {
			record.Metadata[k] = v
		}
	}

	if err := s.records.Save(ctx, record); err != nil {
		s.logger.Error("Failed to save cost record",
			zap.String("sku", record.SKU),
			zap.String("method", record.Method),
			zap.Error(err),
		)
		return nil, err
	}

	s.logger.Info("Cost recorded",
		zap.String("record_id", record.ID.String()),
		zap.String("sku", record.SKU),
		zap.String("method", record.Method),
		zap.Int64("quantity", record.Quantity),
		zap.String("total_cost", record.TotalCost.String()),
		zap.Bool("partial", result.IsPartial()),
	)

	resp := ToCostRecordResponse(record)
	return &resp, nil
}

// GetRecord returns a cost record by id
func (s *CostService) GetRecord(ctx context.Context, id uuid.UUID) (*CostRecordResponse, error) {
	record, err := s.records.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	resp := ToCostRecordResponse(record)
	return &resp, nil
}

// ListRecords returns a page of cost records and the total count
func (s *CostService) ListRecords(ctx context.Context, filter CostRecordListFilter) ([]CostRecordResponse, int64, error) {
	f := shared.DefaultFilter()
	f.OrderBy = "recorded_at"
	if filter.Page > 0 {
		f.Page = filter.Page
	}
	if filter.PageSize > 0 {
		f.PageSize = filter.PageSize
	}
	if filter.SKU != "" {
		f.Filters["sku"] = filter.SKU
	}
	if filter.PeriodID != "" {
		f.Filters["period_id"] = filter.PeriodID
	}
	if filter.Method != "" {
		f.Filters["method"] = filter.Method
	}

	records, total, err := s.records.FindAll(ctx, f)
	if err != nil {
		return nil, 0, err
	}
	out := make([]CostRecordResponse, len(records))
	for i := range records {
		out[i] = ToCostRecordResponse(&records[i])
	}
	return out, total, nil
}

func ensurePeriodOpen(ctx context.Context, periods costing.CostPeriodRepository, periodID uuid.UUID) error {
	period, err := periods.FindByID(ctx, periodID)
	if err != nil {
		return err
	}
	if !period.IsOpen() {
		return fmt.Errorf("%w: period %s is %s", shared.ErrPeriodNotOpen, period.Name, period.Status)
	}
	return nil
}

func skuLockKey(sku string) string {
	return "costing:sku:" + sku
}

// Strategies lists the registered cost calculators
func (s *CostService) Strategies() []StrategyResponse {
	calcs := s.calculators.ListCostCalculators()
	out := make([]StrategyResponse, len(calcs))
	for i, c := range calcs {
		out[i] = ToStrategyResponse(c)
	}
	return out
}
