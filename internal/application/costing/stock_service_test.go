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

func TestStockService_RegisterAndConsume(t *testing.T) {
	ctx := context.Background()
	lots := new(MockStockLotRepository)
	svc := NewStockService(lots, new(MockStandardCostRepository), nil)

	var saved *costing.StockLot
	lots.On("Save", mock.Anything, mock.AnythingOfType("*costing.StockLot")).Run(func(args mock.Arguments) {
		saved = args.Get(1).(*costing.StockLot)
	}).Return(nil)

	resp, err := svc.RegisterLot(ctx, RegisterLotRequest{
		SKU: "SKU-1", BatchNumber: "B1", AcquiredAt: date(2024, 1, 1), Quantity: 10, UnitCost: dec("2.5"),
	})
	require.NoError(t, err)
	assert.True(t, resp.RemainingValue.Equal(dec("25")))
	require.NotNil(t, saved)

	locker := new(MockLocker)
	lock := new(MockLock)
	svc.SetLocker(locker, 0)
	lots.On("FindByID", mock.Anything, saved.ID).Return(saved, nil)
	locker.On("Obtain", mock.Anything, "costing:sku:SKU-1", DefaultLockTTL).Return(lock, nil)
	lock.On("Release", mock.Anything).Return(nil)

	consumed, err := svc.ConsumeLot(ctx, saved.ID, ConsumeLotRequest{Quantity: 4})
	require.NoError(t, err)
	assert.Equal(t, int64(6), consumed.RemainingQuantity)

	_, err = svc.ConsumeLot(ctx, saved.ID, ConsumeLotRequest{Quantity: 7})
	assert.ErrorIs(t, err, shared.ErrInsufficientStock)
	lock.AssertNumberOfCalls(t, "Release", 2)

	_, err = svc.RegisterLot(ctx, RegisterLotRequest{SKU: "", Quantity: 1})
	assert.ErrorIs(t, err, shared.ErrInvalidCostData)
}

func TestStockService_StandardCost(t *testing.T) {
	ctx := context.Background()
	standardCosts := new(MockStandardCostRepository)
	svc := NewStockService(new(MockStockLotRepository), standardCosts, nil)
	standardCosts.On("Save", mock.Anything, mock.AnythingOfType("*costing.StandardCost")).Return(nil)

	resp, err := svc.SetStandardCost(ctx, "SKU-1", SetStandardCostRequest{UnitCost: dec("7.25")})
	require.NoError(t, err)
	assert.Equal(t, "SKU-1", resp.SKU)
	assert.True(t, resp.UnitCost.Equal(dec("7.25")))

	_, err = svc.SetStandardCost(ctx, "SKU-1", SetStandardCostRequest{UnitCost: dec("-1")})
	assert.ErrorIs(t, err, shared.ErrInvalidCostData)
	standardCosts.AssertNumberOfCalls(t, "Save", 1)
}

func TestStockService_StockSummary(t *testing.T) {
	ctx := context.Background()
	lots := new(MockStockLotRepository)
	svc := NewStockService(lots, new(MockStandardCostRepository), nil)

	lots.On("LotsForSKU", mock.Anything, "SKU-1").Return([]costing.StockLot{
		newLot(t, "SKU-1", date(2024, 1, 1), 3, "1"),
		newLot(t, "SKU-1", date(2024, 1, 2), 4, "2"),
	}, nil)
	lots.On("CurrentStock", mock.Anything, "SKU-1").Return(int64(7), nil)

	summary, err := svc.StockSummary(ctx, "SKU-1")
	require.NoError(t, err)
	assert.Equal(t, int64(7), summary.CurrentStock)
	assert.Len(t, summary.Lots, 2)
}
