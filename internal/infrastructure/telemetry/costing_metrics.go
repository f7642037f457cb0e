package telemetry

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/metric"
	"go.uber.org/zap"
)

// ErrMeterNil is returned when no meter is supplied.
var ErrMeterNil = &MetricsError{Op: "NewCostingMetrics", Err: "meter cannot be nil"}

// MetricsError represents a metrics setup error.
type MetricsError struct {
	Op  string
	Err string
}

func (e *MetricsError) Error() string {
	return e.Op + ": " + e.Err
}

// CostingMetricsConfig holds configuration for costing metrics.
type CostingMetricsConfig struct {
	Meter  metric.Meter
	Logger *zap.Logger
}

// CostingMetrics records costing and allocation activity.
// All recorders are safe to call on a nil receiver.
type CostingMetrics struct {
	logger *zap.Logger

	calculationsTotal      *Counter
	calculationDuration    *Histogram
	allocationsTotal       *Counter
	skippedTargetsTotal    *Counter
	periodTransitionsTotal *Counter
	recordsRepairedTotal   *Counter
}

// NewCostingMetrics registers the costing instruments on cfg.Meter.
func NewCostingMetrics(cfg CostingMetricsConfig) (*CostingMetrics, error) {
	if cfg.Meter == nil {
		return nil, ErrMeterNil
	}
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	m := &CostingMetrics{logger: logger}
	var err error

	if m.calculationsTotal, err = NewCounter(cfg.Meter,
		"costing_calculations_total", "Total number of unit cost calculations", "{calculations}"); err != nil {
		return nil, err
	}
	if m.calculationDuration, err = NewHistogram(cfg.Meter, HistogramOpts{
		Name:        "costing_calculation_duration_seconds",
		Description: "Duration of unit cost calculations",
		Unit:        "s",
		Boundaries:  CalculationDurationBuckets,
	}); err != nil {
		return nil, err
	}
	if m.allocationsTotal, err = NewCounter(cfg.Meter,
		"costing_allocations_total", "Total number of cost allocations", "{allocations}"); err != nil {
		return nil, err
	}
	if m.skippedTargetsTotal, err = NewCounter(cfg.Meter,
		"costing_allocation_skipped_targets_total", "Allocation targets skipped as unusable", "{targets}"); err != nil {
		return nil, err
	}
	if m.periodTransitionsTotal, err = NewCounter(cfg.Meter,
		"costing_period_transitions_total", "Cost period status transitions", "{transitions}"); err != nil {
		return nil, err
	}
	if m.recordsRepairedTotal, err = NewCounter(cfg.Meter,
		"costing_records_repaired_total", "Cost records repaired against their stock lot", "{records}"); err != nil {
		return nil, err
	}

	return m, nil
}

// RecordCalculation counts one unit cost calculation.
func (m *CostingMetrics) RecordCalculation(ctx context.Context, method string, partial bool, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.calculationsTotal.Inc(ctx, AttrMethod.String(method), AttrPartial.Bool(partial))
	m.calculationDuration.RecordDuration(ctx, elapsed, AttrMethod.String(method))
}

// RecordAllocation counts one allocation run.
func (m *CostingMetrics) RecordAllocation(ctx context.Context, method string) {
	if m == nil {
		return
	}
	m.allocationsTotal.Inc(ctx, AttrMethod.String(method))
}

// RecordSkippedTargets counts targets dropped from an allocation.
func (m *CostingMetrics) RecordSkippedTargets(ctx context.Context, method string, count int) {
	if m == nil || count <= 0 {
		return
	}
	m.skippedTargetsTotal.Add(ctx, int64(count), AttrMethod.String(method))
}

// RecordPeriodTransition counts a period status change such as "close" or "freeze".
func (m *CostingMetrics) RecordPeriodTransition(ctx context.Context, transition string) {
	if m == nil {
		return
	}
	m.periodTransitionsTotal.Inc(ctx, AttrTransition.String(transition))
}

// RecordRepaired counts repaired cost records.
func (m *CostingMetrics) RecordRepaired(ctx context.Context, count int) {
	if m == nil || count <= 0 {
		return
	}
	m.recordsRepairedTotal.Add(ctx, int64(count))
	m.logger.Debug("Cost records repaired", zap.Int("count", count))
}
