package costing

import (
	"errors"
	"testing"
	"time"

	"github.com/erp/costing/internal/domain/shared"
	"github.com/erp/costing/internal/domain/shared/strategy"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func newJanuary(t *testing.T) *CostPeriod {
	t.Helper()
	p, err := NewCostPeriod("2024-01", date(2024, 1, 1), date(2024, 1, 31), strategy.CostMethodFIFO)
	require.NoError(t, err)
	return p
}

func TestNewCostPeriod(t *testing.T) {
	t.Run("creates open period", func(t *testing.T) {
		p := newJanuary(t)
		assert.Equal(t, PeriodStatusOpen, p.Status)
		assert.Equal(t, strategy.CostMethodFIFO, p.DefaultMethod)
		assert.True(t, p.IsOpen())
		assert.False(t, p.IsDeleted())
	})

	t.Run("rejects start not before end", func(t *testing.T) {
		_, err := NewCostPeriod("", date(2024, 2, 1), date(2024, 2, 1), strategy.CostMethodFIFO)
		assert.ErrorIs(t, err, shared.ErrInvalidCostData)

		_, err = NewCostPeriod("", date(2024, 3, 1), date(2024, 2, 1), strategy.CostMethodFIFO)
		assert.ErrorIs(t, err, shared.ErrInvalidCostData)
	})

	t.Run("rejects unknown default method", func(t *testing.T) {
		_, err := NewCostPeriod("", date(2024, 1, 1), date(2024, 1, 31), strategy.CostMethod("specific"))
		assert.ErrorIs(t, err, shared.ErrInvalidCostData)
	})

	t.Run("defaults name and method", func(t *testing.T) {
		p, err := NewCostPeriod("", date(2024, 1, 1), date(2024, 1, 31), "")
		require.NoError(t, err)
		assert.Equal(t, "2024-01-01 ~ 2024-01-31", p.Name)
		assert.Equal(t, strategy.CostMethodFIFO, p.DefaultMethod)
	})
}

func TestCostPeriod_StateMachine(t *testing.T) {
	p := newJanuary(t)

	require.True(t, p.CanClose())
	require.NoError(t, p.Close())
	assert.Equal(t, PeriodStatusClosed, p.Status)
	assert.False(t, p.CanClose())

	err := p.Close()
	require.Error(t, err)
	assert.True(t, errors.Is(err, shared.ErrInvalidPeriodTransition))
	assert.Contains(t, err.Error(), "cannot close period in status CLOSED")

	require.NoError(t, p.Freeze())
	assert.Equal(t, PeriodStatusFrozen, p.Status)

	err = p.Freeze()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "cannot freeze period in status FROZEN")

	require.NoError(t, p.Unfreeze())
	assert.Equal(t, PeriodStatusClosed, p.Status)

	events := p.GetDomainEvents()
	require.Len(t, events, 3)
	assert.Equal(t, EventTypeCostPeriodClosed, events[0].EventType())
	assert.Equal(t, EventTypeCostPeriodFrozen, events[1].EventType())
	assert.Equal(t, EventTypeCostPeriodUnfrozen, events[2].EventType())
	assert.Equal(t, 4, p.GetVersion())
}

func TestCostPeriod_DisallowedTransitions(t *testing.T) {
	t.Run("open cannot freeze", func(t *testing.T) {
		p := newJanuary(t)
		err := p.Freeze()
		assert.ErrorIs(t, err, shared.ErrInvalidPeriodTransition)
		assert.Contains(t, err.Error(), "OPEN")
		assert.Equal(t, PeriodStatusOpen, p.Status)
	})

	t.Run("open cannot unfreeze", func(t *testing.T) {
		p := newJanuary(t)
		err := p.Unfreeze()
		assert.ErrorIs(t, err, shared.ErrInvalidPeriodTransition)
		assert.Contains(t, err.Error(), "cannot unfreeze")
	})

	t.Run("frozen cannot close", func(t *testing.T) {
		p := newJanuary(t)
		require.NoError(t, p.Close())
		require.NoError(t, p.Freeze())
		assert.False(t, p.CanClose())
		assert.ErrorIs(t, p.Close(), shared.ErrInvalidPeriodTransition)
	})

	t.Run("status transitions table", func(t *testing.T) {
		assert.True(t, PeriodStatusOpen.CanTransitionTo(PeriodStatusClosed))
		assert.False(t, PeriodStatusOpen.CanTransitionTo(PeriodStatusFrozen))
		assert.True(t, PeriodStatusClosed.CanTransitionTo(PeriodStatusFrozen))
		assert.False(t, PeriodStatusClosed.CanTransitionTo(PeriodStatusOpen))
		assert.True(t, PeriodStatusFrozen.CanTransitionTo(PeriodStatusClosed))
		assert.False(t, PeriodStatusFrozen.CanTransitionTo(PeriodStatusOpen))
	})
}

func TestCostPeriod_Contains(t *testing.T) {
	p := newJanuary(t)

	assert.True(t, p.Contains(date(2024, 1, 1)))
	assert.True(t, p.Contains(date(2024, 1, 15)))
	assert.True(t, p.Contains(date(2024, 1, 31)))
	assert.False(t, p.Contains(date(2023, 12, 31)))
	assert.False(t, p.Contains(date(2024, 2, 1)))
}

func TestCostPeriod_SoftDelete(t *testing.T) {
	p := newJanuary(t)
	require.NoError(t, p.Close())

	p.SoftDelete()
	assert.True(t, p.IsDeleted())
	assert.Equal(t, PeriodStatusClosed, p.Status)
	assert.Equal(t, 3, p.GetVersion())

	p.Restore()
	assert.False(t, p.IsDeleted())
	assert.Equal(t, 4, p.GetVersion())
}
