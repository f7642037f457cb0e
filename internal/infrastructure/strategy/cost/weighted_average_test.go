package cost

import (
	"context"
	"testing"

	"github.com/erp/costing/internal/domain/costing"
	"github.com/erp/costing/internal/domain/shared/strategy"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWeightedAverageCostStrategy(t *testing.T) {
	ctx := context.Background()
	source := &fakeLotSource{lots: map[string][]costing.StockLot{
		"SKU-001": {
			lot("SKU-001", 1, 100, "10.00"),
			lot("SKU-001", 2, 50, "12.00"),
			lot("SKU-001", 3, 75, "14.00"),
		},
	}}
	s := NewWeightedAverageCostStrategy(source)

	assert.Equal(t, "weighted_average", s.Name())
	assert.Equal(t, strategy.CostMethodWeightedAverage, s.SupportedMethod())

	t.Run("averages remaining stock", func(t *testing.T) {
		result, err := s.Calculate(ctx, "SKU-001", 100)
		require.NoError(t, err)

		assert.Equal(t, "11.78", result.UnitCost().StringFixed(2))
		assert.Equal(t, "1177.78", result.TotalCost().StringFixed(2))
		assert.False(t, result.IsPartial())
		assert.Equal(t, int64(225), result.Details().AvailableQuantity)
	})

	t.Run("unit cost independent of quantity", func(t *testing.T) {
		small, err := s.Calculate(ctx, "SKU-001", 1)
		require.NoError(t, err)
		large, err := s.Calculate(ctx, "SKU-001", 225)
		require.NoError(t, err)
		assert.True(t, small.UnitCost().Equal(large.UnitCost()))
	})

	t.Run("over-demand is priced at the average and flagged", func(t *testing.T) {
		result, err := s.Calculate(ctx, "SKU-001", 300)
		require.NoError(t, err)
		assert.True(t, result.IsPartial())
		assert.Equal(t, int64(75), result.Details().Shortage)
		assert.True(t, result.TotalCost().Equal(result.UnitCost().Mul(dec(t, "300"))))
	})

	t.Run("no stock", func(t *testing.T) {
		result, err := s.Calculate(ctx, "NONE", 10)
		require.NoError(t, err)
		assert.True(t, result.UnitCost().IsZero())
		assert.True(t, result.TotalCost().IsZero())
		assert.True(t, result.IsPartial())
	})

	t.Run("can calculate", func(t *testing.T) {
		ok, err := s.CanCalculate(ctx, "NONE", 10)
		require.NoError(t, err)
		assert.False(t, ok)
		ok, err = s.CanCalculate(ctx, "SKU-001", -3)
		require.NoError(t, err)
		assert.False(t, ok)
	})
}

func TestAverageCost(t *testing.T) {
	depleted := lot("S", 1, 10, "100.00")
	depleted.RemainingQuantity = 0
	avg, qty := AverageCost([]costing.StockLot{depleted, lot("S", 2, 10, "2.00"), lot("S", 3, 30, "4.00")})
	assert.Equal(t, int64(40), qty)
	assert.True(t, avg.Equal(dec(t, "3.5")))

	avg, qty = AverageCost(nil)
	assert.Equal(t, int64(0), qty)
	assert.True(t, avg.IsZero())
}
