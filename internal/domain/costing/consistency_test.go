package costing

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newLot(t *testing.T, sku, batch string, qty int64, unitCost string) *StockLot {
	t.Helper()
	lot, err := NewStockLot(sku, batch, date(2024, 1, 1), qty, decimal.RequireFromString(unitCost))
	require.NoError(t, err)
	return lot
}

func recordFor(t *testing.T, lot *StockLot, qty int64, unitCost string) *CostRecord {
	t.Helper()
	unit := decimal.RequireFromString(unitCost)
	r, err := NewCostRecord(lot.SKU, qty, unit, unit.Mul(decimal.NewFromInt(qty)), "fifo", CostTypeDirect)
	require.NoError(t, err)
	r.AttachStockLot(lot)
	return r
}

func TestConsistencyValidator_Validate(t *testing.T) {
	v := NewConsistencyValidator(decimal.Zero)
	assert.True(t, v.Tolerance().Equal(DefaultConsistencyTolerance))

	t.Run("consistent record", func(t *testing.T) {
		lot := newLot(t, "SKU-001", "B1", 100, "10.50")
		report := v.Validate(recordFor(t, lot, 10, "10.50"), lot)
		assert.True(t, report.Valid)
		assert.Empty(t, report.Errors)
	})

	t.Run("unit cost mismatch", func(t *testing.T) {
		lot := newLot(t, "SKU-001", "B1", 100, "10.50")
		record := recordFor(t, lot, 10, "12.00")
		report := v.Validate(record, lot)
		assert.False(t, report.Valid)
		require.Len(t, report.Errors, 1)
		assert.Contains(t, report.Errors[0], "Unit cost mismatch")
	})

	t.Run("difference within tolerance passes", func(t *testing.T) {
		lot := newLot(t, "SKU-001", "B1", 100, "10.5000")
		record := recordFor(t, lot, 1, "10.5005")
		assert.True(t, v.Validate(record, lot).Valid)
	})

	t.Run("findings accumulate", func(t *testing.T) {
		lot := newLot(t, "SKU-001", "B1", 5, "10.00")
		record := recordFor(t, lot, 10, "10.00")
		record.SKU = "SKU-999"
		record.BatchNumber = "B2"
		record.TotalCost = decimal.NewFromInt(1)

		report := v.Validate(record, lot)
		assert.False(t, report.Valid)
		require.Len(t, report.Errors, 4)
		assert.Contains(t, report.Errors[0], "SKU mismatch")
		assert.Contains(t, report.Errors[1], "Batch number mismatch")
		assert.Contains(t, report.Errors[2], "Quantity exceeds available stock")
		assert.Contains(t, report.Errors[3], "Total cost mismatch")
	})

	t.Run("non-positive quantity", func(t *testing.T) {
		lot := newLot(t, "SKU-001", "B1", 5, "10.00")
		record := recordFor(t, lot, 1, "10.00")
		record.Quantity = 0
		record.TotalCost = decimal.Zero
		report := v.Validate(record, lot)
		require.Len(t, report.Errors, 1)
		assert.Contains(t, report.Errors[0], "Quantity must be positive")
	})
}

func TestConsistencyValidator_Fix(t *testing.T) {
	v := NewConsistencyValidator(DefaultConsistencyTolerance)

	t.Run("overwrites unit cost and recomputes total", func(t *testing.T) {
		lot := newLot(t, "SKU-001", "B1", 100, "10.50")
		record := recordFor(t, lot, 10, "12.00")

		assert.True(t, v.Fix(record, lot))
		assert.True(t, record.UnitCost.Equal(decimal.RequireFromString("10.50")))
		assert.True(t, record.TotalCost.Equal(decimal.RequireFromString("105")))
		assert.True(t, v.Validate(record, lot).Valid)
	})

	t.Run("copies sku and batch", func(t *testing.T) {
		lot := newLot(t, "SKU-001", "B1", 100, "10")
		record := recordFor(t, lot, 2, "10")
		record.SKU = "OLD"
		record.BatchNumber = "OLD"

		assert.True(t, v.Fix(record, lot))
		assert.Equal(t, "SKU-001", record.SKU)
		assert.Equal(t, "B1", record.BatchNumber)
	})

	t.Run("leaves consistent record untouched", func(t *testing.T) {
		lot := newLot(t, "SKU-001", "B1", 100, "10")
		record := recordFor(t, lot, 2, "10")
		record.TotalCost = decimal.NewFromInt(999)

		assert.False(t, v.Fix(record, lot))
		assert.True(t, record.TotalCost.Equal(decimal.NewFromInt(999)))
	})
}
