package costing

import (
	"testing"
	"time"

	"github.com/erp/costing/internal/domain/shared"
	"github.com/erp/costing/internal/domain/shared/strategy"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewCostRecord(t *testing.T) {
	t.Run("valid record defaults to direct cost", func(t *testing.T) {
		r, err := NewCostRecord("SKU-001", 3, decimal.NewFromInt(10), decimal.NewFromInt(30), "fifo", "")
		require.NoError(t, err)
		assert.Equal(t, CostTypeDirect, r.CostType)
		assert.True(t, r.IsTotalConsistent(DefaultRecordTotalTolerance))
		assert.False(t, r.IsAllocation())
		assert.False(t, r.RecordedAt.IsZero())
	})

	tests := []struct {
		name     string
		sku      string
		qty      int64
		unit     int64
		total    int64
		costType CostType
	}{
		{"empty sku", "", 1, 1, 1, CostTypeDirect},
		{"zero quantity", "S", 0, 1, 0, CostTypeDirect},
		{"negative unit cost", "S", 1, -1, 1, CostTypeDirect},
		{"negative total", "S", 1, 1, -1, CostTypeDirect},
		{"bad cost type", "S", 1, 1, 1, CostType("tax")},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewCostRecord(tt.sku, tt.qty, decimal.NewFromInt(tt.unit), decimal.NewFromInt(tt.total), "fifo", tt.costType)
			assert.ErrorIs(t, err, shared.ErrInvalidCostData)
		})
	}
}

func TestCostRecord_TotalTolerance(t *testing.T) {
	r, err := NewCostRecord("S", 3, decimal.RequireFromString("10.333"), decimal.RequireFromString("31.005"), "fifo", CostTypeDirect)
	require.NoError(t, err)
	assert.True(t, r.IsTotalConsistent(DefaultRecordTotalTolerance))
	assert.False(t, r.IsTotalConsistent(DefaultConsistencyTolerance))

	r.RecalculateTotal()
	assert.True(t, r.TotalCost.Equal(decimal.RequireFromString("30.999")))
}

func TestNewCostRecordFromResult(t *testing.T) {
	lotID := uuid.New()
	result, err := NewCostCalculationResult("SKU-1", 5, decimal.NewFromInt(2), decimal.NewFromInt(10), strategy.CostMethodFIFO,
		CostDetails{LotsUsed: []LotUsage{{LotID: lotID, BatchNumber: "B7", Quantity: 5}}, TotalSatisfied: 5}, false)
	require.NoError(t, err)

	record, err := NewCostRecordFromResult(result, CostTypeManufacturing)
	require.NoError(t, err)
	assert.Equal(t, "fifo", record.Method)
	assert.Equal(t, CostTypeManufacturing, record.CostType)
	require.NotNil(t, record.StockLotID)
	assert.Equal(t, lotID, *record.StockLotID)
	assert.Equal(t, "B7", record.BatchNumber)
	assert.Equal(t, false, record.Metadata["partial"])
}

func TestNewCostRecordFromAllocation(t *testing.T) {
	periodID := uuid.New()
	rule, err := NewCostAllocation("rent", CostTypeOverhead, decimal.NewFromInt(1000), strategy.AllocationMethodRatio, time.Now(), nil)
	require.NoError(t, err)
	rule.AssignPeriod(periodID)

	record, err := NewCostRecordFromAllocation(rule, Allocation{TargetIndex: 1, SKU: "SKU-2", Amount: decimal.NewFromInt(700)})
	require.NoError(t, err)
	assert.Equal(t, int64(1), record.Quantity)
	assert.True(t, record.UnitCost.Equal(decimal.NewFromInt(700)))
	assert.True(t, record.TotalCost.Equal(decimal.NewFromInt(700)))
	assert.Equal(t, CostTypeOverhead, record.CostType)
	assert.Equal(t, "allocation:ratio", record.Method)
	require.NotNil(t, record.AllocationID)
	assert.Equal(t, rule.ID, *record.AllocationID)
	assert.Equal(t, periodID, *record.PeriodID)
	assert.True(t, record.IsAllocation())
}

func TestNewStockLot(t *testing.T) {
	lot, err := NewStockLot("SKU", "B1", date(2024, 1, 1), 10, decimal.NewFromInt(3))
	require.NoError(t, err)
	assert.Equal(t, int64(10), lot.RemainingQuantity)
	assert.NoError(t, lot.Validate())
	assert.True(t, lot.RemainingValue().Equal(decimal.NewFromInt(30)))
	assert.False(t, lot.IsDepleted())

	lot.RemainingQuantity = 11
	assert.ErrorIs(t, lot.Validate(), shared.ErrInvalidCostData)

	_, err = NewStockLot("", "B1", time.Now(), 1, decimal.Zero)
	assert.ErrorIs(t, err, shared.ErrInvalidCostData)
	_, err = NewStockLot("SKU", "B1", time.Now(), -1, decimal.Zero)
	assert.ErrorIs(t, err, shared.ErrInvalidCostData)
	_, err = NewStockLot("SKU", "B1", time.Now(), 1, decimal.NewFromInt(-1))
	assert.ErrorIs(t, err, shared.ErrInvalidCostData)
}

func TestStockLot_Consume(t *testing.T) {
	lot, err := NewStockLot("SKU", "B1", date(2024, 1, 1), 10, decimal.NewFromInt(3))
	require.NoError(t, err)

	require.NoError(t, lot.Consume(4))
	assert.Equal(t, int64(6), lot.RemainingQuantity)
	assert.Equal(t, int64(10), lot.OriginalQuantity)

	assert.ErrorIs(t, lot.Consume(7), shared.ErrInsufficientStock)
	assert.Equal(t, int64(6), lot.RemainingQuantity)
	assert.ErrorIs(t, lot.Consume(0), shared.ErrInvalidCostData)

	require.NoError(t, lot.Consume(6))
	assert.True(t, lot.IsDepleted())
}
