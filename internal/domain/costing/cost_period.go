package costing

import (
	"fmt"
	"time"

	"github.com/erp/costing/internal/domain/shared"
	"github.com/erp/costing/internal/domain/shared/strategy"
)

// PeriodStatus represents the lifecycle status of a cost period
type PeriodStatus string

const (
	PeriodStatusOpen   PeriodStatus = "OPEN"
	PeriodStatusClosed PeriodStatus = "CLOSED"
	PeriodStatusFrozen PeriodStatus = "FROZEN"
)

// IsValid returns true if the status is valid
func (s PeriodStatus) IsValid() bool {
	switch s {
	case PeriodStatusOpen, PeriodStatusClosed, PeriodStatusFrozen:
		return true
	default:
		return false
	}
}

// String returns the string representation
func (s PeriodStatus) String() string {
	return string(s)
}

// CanTransitionTo checks if the status can transition to the target status.
// OPEN -> CLOSED -> FROZEN -> CLOSED; nothing leads back to OPEN.
func (s PeriodStatus) CanTransitionTo(target PeriodStatus) bool {
	switch s {
	case PeriodStatusOpen:
		return target == PeriodStatusClosed
	case PeriodStatusClosed:
		return target == PeriodStatusFrozen
	case PeriodStatusFrozen:
		return target == PeriodStatusClosed
	default:
		return false
	}
}

// CostPeriod is an accounting period whose status gates costing activity
type CostPeriod struct {
	shared.BaseAggregateRoot
	Name          string
	StartDate     time.Time
	EndDate       time.Time
	DefaultMethod strategy.CostMethod
	Status        PeriodStatus
	DeletedAt     *time.Time
}

// NewCostPeriod creates an open period. Start must be before end.
func NewCostPeriod(name string, startDate, endDate time.Time, defaultMethod strategy.CostMethod) (*CostPeriod, error) {
	if !startDate.Before(endDate) {
		return nil, fmt.Errorf("%w: period start %s must be before end %s", shared.ErrInvalidCostData,
			startDate.Format(time.DateOnly), endDate.Format(time.DateOnly))
	}
	if defaultMethod == "" {
		defaultMethod = strategy.CostMethodFIFO
	}
	if !defaultMethod.IsValid() {
		return nil, fmt.Errorf("%w: unknown default cost method %q", shared.ErrInvalidCostData, defaultMethod)
	}
	if name == "" {
		name = fmt.Sprintf("%s ~ %s", startDate.Format(time.DateOnly), endDate.Format(time.DateOnly))
	}

	return &CostPeriod{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		Name:              name,
		StartDate:         startDate,
		EndDate:           endDate,
		DefaultMethod:     defaultMethod,
		Status:            PeriodStatusOpen,
	}, nil
}

// IsOpen returns true if costing may be recorded against the period
func (p *CostPeriod) IsOpen() bool {
	return p.Status == PeriodStatusOpen
}

// CanClose mirrors the Close guard without side effects
func (p *CostPeriod) CanClose() bool {
	return p.Status == PeriodStatusOpen
}

// Close moves an open period to CLOSED
func (p *CostPeriod) Close() error {
	if !p.CanClose() {
		return fmt.Errorf("%w: cannot close period in status %s", shared.ErrInvalidPeriodTransition, p.Status)
	}
	p.transition(PeriodStatusClosed)
	p.AddDomainEvent(NewCostPeriodClosedEvent(p))
	return nil
}

// Freeze moves a closed period to FROZEN
func (p *CostPeriod) Freeze() error {
	if !p.Status.CanTransitionTo(PeriodStatusFrozen) {
		return fmt.Errorf("%w: cannot freeze period in status %s", shared.ErrInvalidPeriodTransition, p.Status)
	}
	p.transition(PeriodStatusFrozen)
	p.AddDomainEvent(NewCostPeriodFrozenEvent(p))
	return nil
}

// Unfreeze moves a frozen period back to CLOSED
func (p *CostPeriod) Unfreeze() error {
	if p.Status != PeriodStatusFrozen {
		return fmt.Errorf("%w: cannot unfreeze period in status %s", shared.ErrInvalidPeriodTransition, p.Status)
	}
	p.transition(PeriodStatusClosed)
	p.AddDomainEvent(NewCostPeriodUnfrozenEvent(p))
	return nil
}

func (p *CostPeriod) transition(to PeriodStatus) {
	p.Status = to
	p.IncrementVersion()
}

// Contains reports start <= date <= end
func (p *CostPeriod) Contains(date time.Time) bool {
	return !date.Before(p.StartDate) && !date.After(p.EndDate)
}

// SoftDelete marks the period deleted; status is left untouched
func (p *CostPeriod) SoftDelete() {
	now := time.Now()
	p.DeletedAt = &now
	p.IncrementVersion()
}

// Restore clears the soft-delete marker
func (p *CostPeriod) Restore() {
	p.DeletedAt = nil
	p.IncrementVersion()
}

// IsDeleted returns true if the period is soft-deleted
func (p *CostPeriod) IsDeleted() bool {
	return p.DeletedAt != nil
}
