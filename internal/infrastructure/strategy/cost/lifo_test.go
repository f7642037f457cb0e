package cost

import (
	"context"
	"testing"

	"github.com/erp/costing/internal/domain/costing"
	"github.com/erp/costing/internal/domain/shared/strategy"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLIFOCostStrategy(t *testing.T) {
	ctx := context.Background()
	source := &fakeLotSource{lots: map[string][]costing.StockLot{
		"SKU-001": {lot("SKU-001", 1, 100, "10.00"), lot("SKU-001", 2, 50, "12.00")},
	}}
	s := NewLIFOCostStrategy(source)

	assert.Equal(t, "lifo", s.Name())
	assert.True(t, s.Supports(strategy.CostMethodLIFO))
	assert.False(t, s.Supports(strategy.CostMethodFIFO))

	t.Run("consumes newest first", func(t *testing.T) {
		result, err := s.Calculate(ctx, "SKU-001", 120)
		require.NoError(t, err)

		// 50*12 + 70*10
		assert.True(t, result.TotalCost().Equal(dec(t, "1300")), result.TotalCost().String())
		assert.Equal(t, "10.83", result.UnitCost().StringFixed(2))
		assert.Equal(t, strategy.CostMethodLIFO, result.Method())

		details := result.Details()
		require.Len(t, details.LotsUsed, 2)
		assert.True(t, details.LotsUsed[0].UnitCost.Equal(dec(t, "12")))
		assert.Equal(t, int64(50), details.LotsUsed[0].Quantity)
		assert.Equal(t, int64(70), details.LotsUsed[1].Quantity)
	})

	t.Run("shortfall priced at oldest lot", func(t *testing.T) {
		result, err := s.Calculate(ctx, "SKU-001", 160)
		require.NoError(t, err)
		// 50*12 + 100*10 + 10*10
		assert.True(t, result.TotalCost().Equal(dec(t, "1700")))
		assert.True(t, result.IsPartial())
		assert.Equal(t, int64(10), result.Details().Shortage)
	})

	t.Run("recalculate", func(t *testing.T) {
		results, err := s.Recalculate(ctx, []string{"SKU-001"})
		require.NoError(t, err)
		require.Len(t, results, 1)
		assert.Equal(t, int64(150), results[0].Quantity())
		assert.True(t, results[0].TotalCost().Equal(dec(t, "1600")))
	})

	t.Run("can calculate", func(t *testing.T) {
		ok, err := s.CanCalculate(ctx, "SKU-001", 0)
		require.NoError(t, err)
		assert.False(t, ok)
		ok, err = s.CanCalculate(ctx, "SKU-001", 200)
		require.NoError(t, err)
		assert.True(t, ok)
	})
}
