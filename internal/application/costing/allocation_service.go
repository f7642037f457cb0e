package costing

import (
	"context"
	"fmt"

	"github.com/erp/costing/internal/domain/costing"
	"github.com/erp/costing/internal/domain/shared"
	"github.com/erp/costing/internal/domain/shared/strategy"
	"github.com/erp/costing/internal/infrastructure/telemetry"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// DefaultBalanceTolerance is the default tolerance of the opt-in balance check
var DefaultBalanceTolerance = decimal.NewFromFloat(0.01)

// AllocationStrategyRegistry resolves allocation strategies by method
type AllocationStrategyRegistry interface {
	GetAllocationStrategy(method strategy.AllocationMethod) (costing.AllocationStrategy, error)
	ListAllocationStrategies() []costing.AllocationStrategy
}

// AllocationService validates allocation input, dispatches to the strategy
// for the method and materializes allocation rules into cost records
type AllocationService struct {
	strategies       AllocationStrategyRegistry
	rules            costing.CostAllocationRepository
	records          costing.CostRecordRepository
	periods          costing.CostPeriodRepository
	balanceTolerance decimal.Decimal
	logger           *zap.Logger
	metrics          *telemetry.CostingMetrics
}

// NewAllocationService creates a new AllocationService
func NewAllocationService(
	strategies AllocationStrategyRegistry,
	rules costing.CostAllocationRepository,
	records costing.CostRecordRepository,
	periods costing.CostPeriodRepository,
	logger *zap.Logger,
) *AllocationService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AllocationService{
		strategies:       strategies,
		rules:            rules,
		records:          records,
		periods:          periods,
		balanceTolerance: DefaultBalanceTolerance,
		logger:           logger,
	}
}

// SetBalanceTolerance sets the tolerance used when callers request a balance check
func (s *AllocationService) SetBalanceTolerance(tolerance decimal.Decimal) {
	if !tolerance.IsNegative() {
		s.balanceTolerance = tolerance
	}
}

// SetMetrics sets the metrics recorder (optional)
func (s *AllocationService) SetMetrics(metrics *telemetry.CostingMetrics) {
	s.metrics = metrics
}

// Calculate allocates a rule's stored amount over its stored targets
func (s *AllocationService) Calculate(ctx context.Context, rule *costing.CostAllocation) (costing.AllocationResult, error) {
	if err := rule.Validate(); err != nil {
		return costing.AllocationResult{}, err
	}
	return s.CalculateByParams(ctx, rule.TotalAmount, rule.Method, rule.Targets)
}

// CalculateByParams allocates without a persisted rule. Input is validated
// before the strategy runs: the amount must be non-negative, targets must be
// non-empty and at least one target must be usable by the method.
func (s *AllocationService) CalculateByParams(
	ctx context.Context,
	totalAmount decimal.Decimal,
	method strategy.AllocationMethod,
	targets []costing.AllocationTarget,
) (costing.AllocationResult, error) {
	if err := costing.ValidateAllocationInput(totalAmount, targets); err != nil {
		return costing.AllocationResult{}, err
	}
	strat, err := s.strategies.GetAllocationStrategy(method)
	if err != nil {
		return costing.AllocationResult{}, err
	}
	if !strat.ValidateTargets(targets) {
		return costing.AllocationResult{}, fmt.Errorf("%w: no usable targets for method %s", shared.ErrInvalidAllocation, method)
	}

	result := strat.Calculate(totalAmount, targets)
	s.metrics.RecordAllocation(ctx, method.String())
	if result.HasSkipped() {
		s.metrics.RecordSkippedTargets(ctx, method.String(), len(result.Skipped))
		s.logger.Debug("Allocation skipped targets",
			zap.String("method", method.String()),
			zap.Int("skipped", len(result.Skipped)),
			zap.Int("allocated", len(result.Allocations)),
		)
	}
	return result, nil
}

// CalculateAllocation allocates request parameters, optionally checking that
// the allocated amounts add up to the total
func (s *AllocationService) CalculateAllocation(ctx context.Context, req CalculateAllocationRequest) (*AllocationResultResponse, error) {
	method, err := strategy.ParseAllocationMethod(req.Method)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", shared.ErrInvalidAllocation, err.Error())
	}
	result, err := s.CalculateByParams(ctx, req.TotalAmount, method, toTargets(req.Targets))
	if err != nil {
		return nil, err
	}
	if req.CheckBalanced {
		if err := result.CheckBalanced(s.balanceTolerance); err != nil {
			return nil, err
		}
	}
	resp := ToAllocationResultResponse(result)
	return &resp, nil
}

// ValidateTargets dry-runs target validation for a method
func (s *AllocationService) ValidateTargets(ctx context.Context, req ValidateTargetsRequest) (*ValidateTargetsResponse, error) {
	method, err := strategy.ParseAllocationMethod(req.Method)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", shared.ErrInvalidAllocation, err.Error())
	}
	strat, err := s.strategies.GetAllocationStrategy(method)
	if err != nil {
		return nil, err
	}
	schema := method.SchemaFields()
	if schema == nil {
		schema = []string{}
	}
	return &ValidateTargetsResponse{
		Method: method.String(),
		Valid:  strat.ValidateTargets(toTargets(req.Targets)),
		Schema: schema,
	}, nil
}

// CreateRule persists a new allocation rule for a registered method
func (s *AllocationService) CreateRule(ctx context.Context, req CreateAllocationRuleRequest) (*AllocationRuleResponse, error) {
	method, err := strategy.ParseAllocationMethod(req.Method)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", shared.ErrInvalidAllocation, err.Error())
	}
	if _, err := s.strategies.GetAllocationStrategy(method); err != nil {
		return nil, err
	}

	rule, err := costing.NewCostAllocation(req.Name, costing.CostType(req.SourceCostType), req.TotalAmount,
		method, req.EffectiveDate, toTargets(req.Targets))
	if err != nil {
		return nil, err
	}
	if err := rule.Validate(); err != nil {
		return nil, err
	}
	if req.PeriodID != nil {
		if _, err := s.periods.FindByID(ctx, *req.PeriodID); err != nil {
			return nil, err
		}
		rule.AssignPeriod(*req.PeriodID)
	}

	if err := s.rules.Save(ctx, rule); err != nil {
		return nil, err
	}
	s.logger.Info("Allocation rule created",
		zap.String("rule_id", rule.ID.String()),
		zap.String("name", rule.Name),
		zap.String("method", method.String()),
	)
	resp := ToAllocationRuleResponse(rule)
	return &resp, nil
}

// GetRule returns an allocation rule by id
func (s *AllocationService) GetRule(ctx context.Context, id uuid.UUID) (*AllocationRuleResponse, error) {
	rule, err := s.rules.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	resp := ToAllocationRuleResponse(rule)
	return &resp, nil
}

// ListRules returns a page of allocation rules and the total count
func (s *AllocationService) ListRules(ctx context.Context, filter AllocationRuleListFilter) ([]AllocationRuleResponse, int64, error) {
	f := shared.DefaultFilter()
	if filter.Page > 0 {
		f.Page = filter.Page
	}
	if filter.PageSize > 0 {
		f.PageSize = filter.PageSize
	}
	if filter.Method != "" {
		f.Filters["method"] = filter.Method
	}

	rules, total, err := s.rules.FindAll(ctx, f)
	if err != nil {
		return nil, 0, err
	}
	out := make([]AllocationRuleResponse, len(rules))
	for i := range rules {
		out[i] = ToAllocationRuleResponse(&rules[i])
	}
	return out, total, nil
}

// AllocateRule calculates a stored rule and writes one cost record per
// allocated target. A rule bound to a period requires the period to be open.
func (s *AllocationService) AllocateRule(ctx context.Context, id uuid.UUID) (*AllocateRuleResponse, error) {
	rule, err := s.rules.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if rule.PeriodID != nil {
		if err := ensurePeriodOpen(ctx, s.periods, *rule.PeriodID); err != nil {
			return nil, err
		}
	}

	result, err := s.Calculate(ctx, rule)
	if err != nil {
		return nil, err
	}

	records := make([]*costing.CostRecord, 0, len(result.Allocations))
	for _, allocation := range result.Allocations {
		record, err := costing.NewCostRecordFromAllocation(rule, allocation)
		if err != nil {
			return nil, err
		}
		records = append(records, record)
	}
	if len(records) > 0 {
		if err := s.records.SaveBatch(ctx, records); err != nil {
			s.logger.Error("Failed to save allocation records",
				zap.String("rule_id", rule.ID.String()),
				zap.Error(err),
			)
			return nil, err
		}
	}

	s.logger.Info("Allocation rule applied",
		zap.String("rule_id", rule.ID.String()),
		zap.String("method", rule.Method.String()),
		zap.String("total_amount", rule.TotalAmount.String()),
		zap.Int("records", len(records)),
		zap.Int("skipped", len(result.Skipped)),
	)

	resp := &AllocateRuleResponse{
		RuleID:  rule.ID,
		Result:  ToAllocationResultResponse(result),
		Records: make([]CostRecordResponse, len(records)),
	}
	for i, r := range records {
		resp.Records[i] = ToCostRecordResponse(r)
	}
	return resp, nil
}

// Strategies lists the registered allocation strategies
func (s *AllocationService) Strategies() []StrategyResponse {
	strats := s.strategies.ListAllocationStrategies()
	out := make([]StrategyResponse, len(strats))
	for i, st := range strats {
		out[i] = ToStrategyResponse(st)
	}
	return out
}
