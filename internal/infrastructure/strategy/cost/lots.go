package cost

import (
	"context"
	"fmt"
	"sort"

	"github.com/erp/costing/internal/domain/costing"
	"github.com/erp/costing/internal/domain/shared"
	"github.com/erp/costing/internal/domain/shared/strategy"
	"github.com/shopspring/decimal"
)

// lotConsumption walks lots in acquisition order and prices the requested
// quantity. It is shared by the FIFO and LIFO strategies, which differ only
// in direction.
type lotConsumption struct {
	source      costing.StockLotSource
	method      strategy.CostMethod
	newestFirst bool
}

func (c lotConsumption) canCalculate(ctx context.Context, sku string, quantity int64) (bool, error) {
	if quantity <= 0 {
		return false, nil
	}
	lots, err := c.source.LotsForSKU(ctx, sku)
	if err != nil {
		return false, fmt.Errorf("failed to load stock lots for %s: %w", sku, err)
	}
	return len(lots) > 0, nil
}

func (c lotConsumption) calculate(ctx context.Context, sku string, quantity int64) (costing.CostCalculationResult, error) {
	if quantity <= 0 {
		return costing.CostCalculationResult{}, fmt.Errorf("%w: quantity must be positive, got %d", shared.ErrInvalidCostData, quantity)
	}

	lots, err := c.source.LotsForSKU(ctx, sku)
	if err != nil {
		return costing.CostCalculationResult{}, fmt.Errorf("failed to load stock lots for %s: %w", sku, err)
	}

	// Sort a copy by acquisition date; ties keep source order
	ordered := make([]costing.StockLot, len(lots))
	copy(ordered, lots)
	sort.SliceStable(ordered, func(i, j int) bool {
		if c.newestFirst {
			return ordered[i].AcquiredAt.After(ordered[j].AcquiredAt)
		}
		return ordered[i].AcquiredAt.Before(ordered[j].AcquiredAt)
	})

	remaining := quantity
	totalCost := decimal.Zero
	lastUnitCost := decimal.Zero
	used := make([]costing.LotUsage, 0)

	for _, lot := range ordered {
		if remaining == 0 {
			break
		}
		if lot.RemainingQuantity <= 0 {
			continue
		}

		take := min(remaining, lot.RemainingQuantity)
		lotCost := lot.UnitCost.Mul(decimal.NewFromInt(take))
		totalCost = totalCost.Add(lotCost)
		remaining -= take
		lastUnitCost = lot.UnitCost

		used = append(used, costing.LotUsage{
			LotID:       lot.ID,
			BatchNumber: lot.BatchNumber,
			AcquiredAt:  lot.AcquiredAt,
			Quantity:    take,
			UnitCost:    lot.UnitCost,
			Cost:        lotCost,
		})
	}

	partial := remaining > 0
	if partial {
		// Shortfall is priced at the last consumed lot's cost, zero if none
		totalCost = totalCost.Add(lastUnitCost.Mul(decimal.NewFromInt(remaining)))
	}

	details := costing.CostDetails{
		LotsUsed:       used,
		TotalSatisfied: quantity - remaining,
		Shortage:       remaining,
	}
	if partial {
		details.ShortageUnitCost = lastUnitCost
	}

	unitCost := totalCost.Div(decimal.NewFromInt(quantity))
	return costing.NewCostCalculationResult(sku, quantity, unitCost, totalCost, c.method, details, partial)
}

// recalculate prices the current stock of every SKU that has stock on hand
func recalculate(
	ctx context.Context,
	source costing.StockLotSource,
	skus []string,
	calculate func(ctx context.Context, sku string, quantity int64) (costing.CostCalculationResult, error),
) ([]costing.CostCalculationResult, error) {
	results := make([]costing.CostCalculationResult, 0, len(skus))
	for _, sku := range skus {
		stock, err := source.CurrentStock(ctx, sku)
		if err != nil {
			return results, fmt.Errorf("failed to load current stock for %s: %w", sku, err)
		}
		if stock <= 0 {
			continue
		}

		result, err := calculate(ctx, sku, stock)
		if err != nil {
			return results, err
		}
		results = append(results, result)
	}
	return results, nil
}
