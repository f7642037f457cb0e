package event

import (
	"context"

	"github.com/erp/costing/internal/domain/costing"
	"github.com/erp/costing/internal/domain/shared"
	"github.com/erp/costing/internal/infrastructure/logger"
	"go.uber.org/zap"
)

// PeriodAuditHandler writes an audit log line for every cost period transition
type PeriodAuditHandler struct {
	logger *zap.Logger
}

// NewPeriodAuditHandler creates the handler
func NewPeriodAuditHandler(l *zap.Logger) *PeriodAuditHandler {
	if l == nil {
		l = zap.NewNop()
	}
	return &PeriodAuditHandler{logger: l.Named("period_audit")}
}

// EventTypes implements Handler
func (h *PeriodAuditHandler) EventTypes() []string {
	return []string{
		costing.EventTypeCostPeriodClosed,
		costing.EventTypeCostPeriodFrozen,
		costing.EventTypeCostPeriodUnfrozen,
	}
}

// Handle implements Handler
func (h *PeriodAuditHandler) Handle(ctx context.Context, event shared.DomainEvent) error {
	e, ok := event.(*costing.CostPeriodTransitionedEvent)
	if !ok {
		return nil
	}
	logger.WithLogger(ctx, h.logger).Info("Cost period transitioned",
		zap.String("event_type", e.EventType()),
		zap.String("period_id", e.PeriodID.String()),
		zap.String("status", e.Status.String()),
		zap.Time("start_date", e.StartDate),
		zap.Time("end_date", e.EndDate),
		zap.Time("occurred_at", e.OccurredAt()),
	)
	return nil
}
