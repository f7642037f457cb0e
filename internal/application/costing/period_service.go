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
	"go.uber.org/zap"
)

// PeriodService manages cost periods and their OPEN -> CLOSED <-> FROZEN lifecycle
type PeriodService struct {
	periods        costing.CostPeriodRepository
	eventPublisher shared.EventPublisher
	logger         *zap.Logger
	metrics        *telemetry.CostingMetrics
}

// NewPeriodService creates a new PeriodService
func NewPeriodService(periods costing.CostPeriodRepository, logger *zap.Logger) *PeriodService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &PeriodService{
		periods: periods,
		logger:  logger,
	}
}

// SetEventPublisher sets the event publisher for period transition events
func (s *PeriodService) SetEventPublisher(publisher shared.EventPublisher) {
	s.eventPublisher = publisher
}

// SetMetrics sets the metrics recorder (optional)
func (s *PeriodService) SetMetrics(metrics *telemetry.CostingMetrics) {
	s.metrics = metrics
}

// Create opens a new period
func (s *PeriodService) Create(ctx context.Context, req CreatePeriodRequest) (*PeriodResponse, error) {
	period, err := costing.NewCostPeriod(req.Name, req.StartDate, req.EndDate, strategy.CostMethod(req.DefaultMethod))
	if err != nil {
		return nil, err
	}
	if err := s.periods.Save(ctx, period); err != nil {
		return nil, err
	}
	s.logger.Info("Cost period created",
		zap.String("period_id", period.ID.String()),
		zap.String("name", period.Name),
	)
	resp := ToPeriodResponse(period)
	return &resp, nil
}

// Get returns a period by id
func (s *PeriodService) Get(ctx context.Context, id uuid.UUID) (*PeriodResponse, error) {
	period, err := s.periods.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	resp := ToPeriodResponse(period)
	return &resp, nil
}

// List returns a page of periods, optionally filtered by status
func (s *PeriodService) List(ctx context.Context, filter PeriodListFilter) ([]PeriodResponse, int64, error) {
	f := shared.DefaultFilter()
	f.OrderBy = "start_date"
	if filter.Page > 0 {
		f.Page = filter.Page
	}
	if filter.PageSize > 0 {
		f.PageSize = filter.PageSize
	}

	var status costing.PeriodStatus
	if filter.Status != "" {
		status = costing.PeriodStatus(filter.Status)
		if !status.IsValid() {
			return nil, 0, fmt.Errorf("%w: unknown period status %q", shared.ErrInvalidInput, filter.Status)
		}
	}

	periods, total, err := s.periods.FindAll(ctx, f, status)
	if err != nil {
		return nil, 0, err
	}
	out := make([]PeriodResponse, len(periods))
	for i := range periods {
		out[i] = ToPeriodResponse(&periods[i])
	}
	return out, total, nil
}

// FindByDate returns the earliest-starting period containing date (inclusive)
func (s *PeriodService) FindByDate(ctx context.Context, date time.Time) (*PeriodResponse, error) {
	period, err := s.periods.FindByDate(ctx, date)
	if err != nil {
		return nil, err
	}
	resp := ToPeriodResponse(period)
	return &resp, nil
}

// Close moves an open period to CLOSED
func (s *PeriodService) Close(ctx context.Context, id uuid.UUID) (*PeriodResponse, error) {
	return s.transition(ctx, id, "close", (*costing.CostPeriod).Close)
}

// Freeze moves a closed period to FROZEN
func (s *PeriodService) Freeze(ctx context.Context, id uuid.UUID) (*PeriodResponse, error) {
	return s.transition(ctx, id, "freeze", (*costing.CostPeriod).Freeze)
}

// Unfreeze moves a frozen period back to CLOSED
func (s *PeriodService) Unfreeze(ctx context.Context, id uuid.UUID) (*PeriodResponse, error) {
	return s.transition(ctx, id, "unfreeze", (*costing.CostPeriod).Unfreeze)
}

func (s *PeriodService) transition(ctx context.Context, id uuid.UUID, name string, apply func(*costing.CostPeriod) error) (*PeriodResponse, error) {
	period, err := s.periods.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	from := period.Status
	if err := apply(period); err != nil {
		s.logger.Warn("Rejected period transition",
			zap.String("period_id", id.String()),
			zap.String("transition", name),
			zap.String("status", from.String()),
		)
		return nil, err
	}
	if err := s.periods.Save(ctx, period); err != nil {
		return nil, err
	}

	s.publishDomainEvents(ctx, period)
	s.metrics.RecordPeriodTransition(ctx, name)
	s.logger.Info("Cost period transitioned",
		zap.String("period_id", id.String()),
		zap.String("transition", name),
		zap.String("from", from.String()),
		zap.String("to", period.Status.String()),
	)

	resp := ToPeriodResponse(period)
	return &resp, nil
}

// CanClose reports whether the period may be closed, without side effects
func (s *PeriodService) CanClose(ctx context.Context, id uuid.UUID) (*CanCloseResponse, error) {
	period, err := s.periods.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return &CanCloseResponse{
		PeriodID: period.ID,
		Status:   period.Status.String(),
		CanClose: period.CanClose(),
	}, nil
}

// Delete soft-deletes a period regardless of its status
func (s *PeriodService) Delete(ctx context.Context, id uuid.UUID) error {
	period, err := s.periods.FindByID(ctx, id)
	if err != nil {
		return err
	}
	period.SoftDelete()
	if err := s.periods.Save(ctx, period); err != nil {
		return err
	}
	s.logger.Info("Cost period deleted", zap.String("period_id", id.String()))
	return nil
}

// Restore brings back a soft-deleted period
func (s *PeriodService) Restore(ctx context.Context, id uuid.UUID) (*PeriodResponse, error) {
	period, err := s.periods.FindByIDUnscoped(ctx, id)
	if err != nil {
		return nil, err
	}
	if !period.IsDeleted() {
		return nil, fmt.Errorf("%w: period %s is not deleted", shared.ErrInvalidState, id)
	}
	period.Restore()
	if err := s.periods.Save(ctx, period); err != nil {
		return nil, err
	}
	s.logger.Info("Cost period restored", zap.String("period_id", id.String()))
	resp := ToPeriodResponse(period)
	return &resp, nil
}

// publishDomainEvents publishes and clears the period's pending events
func (s *PeriodService) publishDomainEvents(ctx context.Context, period *costing.CostPeriod) {
	events := period.GetDomainEvents()
	if len(events) == 0 {
		return
	}
	defer period.ClearDomainEvents()
	if s.eventPublisher == nil {
		return
	}
	if err := s.eventPublisher.Publish(ctx, events...); err != nil {
		s.logger.Warn("Failed to publish period events",
			zap.String("period_id", period.ID.String()),
			zap.Error(err),
		)
	}
}
