package costing

import (
	"time"

	"github.com/erp/costing/internal/domain/shared"
	"github.com/google/uuid"
)

// Aggregate type constant for CostPeriod
const AggregateTypeCostPeriod = "CostPeriod"

// CostPeriod event type constants
const (
	EventTypeCostPeriodClosed   = "CostPeriodClosed"
	EventTypeCostPeriodFrozen   = "CostPeriodFrozen"
	EventTypeCostPeriodUnfrozen = "CostPeriodUnfrozen"
)

// CostPeriodTransitionedEvent is raised whenever a period changes status
type CostPeriodTransitionedEvent struct {
	shared.BaseDomainEvent
	PeriodID  uuid.UUID    `json:"period_id"`
	StartDate time.Time    `json:"start_date"`
	EndDate   time.Time    `json:"end_date"`
	Status    PeriodStatus `json:"status"`
}

func newCostPeriodTransitionedEvent(eventType string, p *CostPeriod) *CostPeriodTransitionedEvent {
	return &CostPeriodTransitionedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(eventType, AggregateTypeCostPeriod, p.ID),
		PeriodID:        p.ID,
		StartDate:       p.StartDate,
		EndDate:         p.EndDate,
		Status:          p.Status,
	}
}

// NewCostPeriodClosedEvent creates the event raised by Close
func NewCostPeriodClosedEvent(p *CostPeriod) *CostPeriodTransitionedEvent {
	return newCostPeriodTransitionedEvent(EventTypeCostPeriodClosed, p)
}

// NewCostPeriodFrozenEvent creates the event raised by Freeze
func NewCostPeriodFrozenEvent(p *CostPeriod) *CostPeriodTransitionedEvent {
	return newCostPeriodTransitionedEvent(EventTypeCostPeriodFrozen, p)
}

// NewCostPeriodUnfrozenEvent creates the event raised by Unfreeze
func NewCostPeriodUnfrozenEvent(p *CostPeriod) *CostPeriodTransitionedEvent {
	return newCostPeriodTransitionedEvent(EventTypeCostPeriodUnfrozen, p)
}
