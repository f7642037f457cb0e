package cost

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/erp/costing/internal/domain/costing"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type fakeLotSource struct {
	lots map[string][]costing.StockLot
	err  error
}

func (f *fakeLotSource) LotsForSKU(_ context.Context, sku string) ([]costing.StockLot, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.lots[sku], nil
}

func (f *fakeLotSource) CurrentStock(_ context.Context, sku string) (int64, error) {
	if f.err != nil {
		return 0, f.err
	}
	var total int64
	for _, l := range f.lots[sku] {
		total += l.RemainingQuantity
	}
	return total, nil
}

type fakeStandardCosts map[string]decimal.Decimal

func (f fakeStandardCosts) StandardCost(_ context.Context, sku string) (decimal.Decimal, bool, error) {
	c, ok := f[sku]
	return c, ok, nil
}

func (f fakeStandardCosts) HasStandardCost(_ context.Context, sku string) (bool, error) {
	_, ok := f[sku]
	return ok, nil
}

var errSourceDown = errors.New("source down")

func lot(sku string, day int, qty int64, unitCost string) costing.StockLot {
	l := costing.StockLot{
		SKU:               sku,
		BatchNumber:       time.Date(2024, 1, day, 0, 0, 0, 0, time.UTC).Format("B20060102"),
		AcquiredAt:        time.Date(2024, 1, day, 0, 0, 0, 0, time.UTC),
		OriginalQuantity:  qty,
		RemainingQuantity: qty,
		UnitCost:          decimal.RequireFromString(unitCost),
	}
	l.ID = uuid.New()
	return l
}

func dec(t *testing.T, s string) decimal.Decimal {
	t.Helper()
	return decimal.RequireFromString(s)
}
