package costing

import (
	"context"
	"testing"

	"github.com/erp/costing/internal/domain/costing"
	"github.com/erp/costing/internal/domain/shared"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestPeriodService_Create(t *testing.T) {
	ctx := context.Background()
	periods := new(MockCostPeriodRepository)
	svc := NewPeriodService(periods, nil)
	periods.On("Save", mock.Anything, mock.AnythingOfType("*costing.CostPeriod")).Return(nil)

	resp, err := svc.Create(ctx, CreatePeriodRequest{StartDate: date(2024, 2, 1), EndDate: date(2024, 2, 29)})
	require.NoError(t, err)
	assert.Equal(t, "OPEN", resp.Status)
	assert.Equal(t, "fifo", resp.DefaultMethod)
	assert.Equal(t, "2024-02-01 ~ 2024-02-29", resp.Name)

	_, err = svc.Create(ctx, CreatePeriodRequest{StartDate: date(2024, 2, 1), EndDate: date(2024, 2, 1)})
	assert.ErrorIs(t, err, shared.ErrInvalidCostData)
	periods.AssertNumberOfCalls(t, "Save", 1)
}

func TestPeriodService_Lifecycle(t *testing.T) {
	ctx := context.Background()
	periods := new(MockCostPeriodRepository)
	publisher := NewMockEventPublisher()
	svc := NewPeriodService(periods, nil)
	svc.SetEventPublisher(publisher)

	period := openPeriod(t)
	periods.On("FindByID", mock.Anything, period.ID).Return(period, nil)
	periods.On("Save", mock.Anything, period).Return(nil)

	resp, err := svc.Close(ctx, period.ID)
	require.NoError(t, err)
	assert.Equal(t, "CLOSED", resp.Status)

	_, err = svc.Close(ctx, period.ID)
	assert.ErrorIs(t, err, shared.ErrInvalidPeriodTransition)
	assert.Contains(t, err.Error(), "CLOSED")

	resp, err = svc.Freeze(ctx, period.ID)
	require.NoError(t, err)
	assert.Equal(t, "FROZEN", resp.Status)

	_, err = svc.Freeze(ctx, period.ID)
	assert.ErrorIs(t, err, shared.ErrInvalidPeriodTransition)

	resp, err = svc.Unfreeze(ctx, period.ID)
	require.NoError(t, err)
	assert.Equal(t, "CLOSED", resp.Status)

	assert.Len(t, publisher.GetEventsByType(costing.EventTypeCostPeriodClosed), 1)
	assert.Len(t, publisher.GetEventsByType(costing.EventTypeCostPeriodFrozen), 1)
	assert.Len(t, publisher.GetEventsByType(costing.EventTypeCostPeriodUnfrozen), 1)
	assert.Empty(t, period.GetDomainEvents())
	periods.AssertNumberOfCalls(t, "Save", 3)
}

func TestPeriodService_UnfreezeFromOpen(t *testing.T) {
	ctx := context.Background()
	periods := new(MockCostPeriodRepository)
	svc := NewPeriodService(periods, nil)

	period := openPeriod(t)
	periods.On("FindByID", mock.Anything, period.ID).Return(period, nil)

	_, err := svc.Unfreeze(ctx, period.ID)
	assert.ErrorIs(t, err, shared.ErrInvalidPeriodTransition)
	_, err = svc.Freeze(ctx, period.ID)
	assert.ErrorIs(t, err, shared.ErrInvalidPeriodTransition)
	periods.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
}

func TestPeriodService_CanClose(t *testing.T) {
	ctx := context.Background()
	periods := new(MockCostPeriodRepository)
	svc := NewPeriodService(periods, nil)

	period := openPeriod(t)
	periods.On("FindByID", mock.Anything, period.ID).Return(period, nil)

	resp, err := svc.CanClose(ctx, period.ID)
	require.NoError(t, err)
	assert.True(t, resp.CanClose)
	assert.Equal(t, "OPEN", period.Status.String())
}

func TestPeriodService_FindByDate(t *testing.T) {
	ctx := context.Background()
	periods := new(MockCostPeriodRepository)
	svc := NewPeriodService(periods, nil)

	period := openPeriod(t)
	periods.On("FindByDate", mock.Anything, date(2024, 1, 31)).Return(period, nil)
	periods.On("FindByDate", mock.Anything, date(2024, 2, 1)).Return(nil, shared.ErrNotFound)

	resp, err := svc.FindByDate(ctx, date(2024, 1, 31))
	require.NoError(t, err)
	assert.Equal(t, period.ID, resp.ID)

	_, err = svc.FindByDate(ctx, date(2024, 2, 1))
	assert.ErrorIs(t, err, shared.ErrNotFound)
}

func TestPeriodService_DeleteAndRestore(t *testing.T) {
	ctx := context.Background()
	periods := new(MockCostPeriodRepository)
	svc := NewPeriodService(periods, nil)

	period := openPeriod(t)
	require.NoError(t, period.Close())
	periods.On("FindByID", mock.Anything, period.ID).Return(period, nil)
	periods.On("FindByIDUnscoped", mock.Anything, period.ID).Return(period, nil)
	periods.On("Save", mock.Anything, period).Return(nil)

	require.NoError(t, svc.Delete(ctx, period.ID))
	assert.True(t, period.IsDeleted())
	assert.Equal(t, costing.PeriodStatusClosed, period.Status)

	resp, err := svc.Restore(ctx, period.ID)
	require.NoError(t, err)
	assert.Nil(t, resp.DeletedAt)

	_, err = svc.Restore(ctx, period.ID)
	assert.ErrorIs(t, err, shared.ErrInvalidState)
}

func TestPeriodService_List(t *testing.T) {
	ctx := context.Background()
	periods := new(MockCostPeriodRepository)
	svc := NewPeriodService(periods, nil)

	period := openPeriod(t)
	periods.On("FindAll", mock.Anything, mock.Anything, costing.PeriodStatusOpen).
		Return([]costing.CostPeriod{*period}, int64(1), nil)

	out, total, err := svc.List(ctx, PeriodListFilter{Status: "OPEN"})
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	assert.Len(t, out, 1)

	_, _, err = svc.List(ctx, PeriodListFilter{Status: "ARCHIVED"})
	assert.ErrorIs(t, err, shared.ErrInvalidInput)
}
