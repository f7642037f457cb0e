package costing

import (
	"fmt"
	"time"

	"github.com/erp/costing/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// StockLot is a dated batch of a SKU's inventory with its own remaining
// quantity and unit cost. Calculators only read lots; Consume is the
// explicit depletion path.
type StockLot struct {
	shared.BaseEntity
	SKU               string
	BatchNumber       string
	AcquiredAt        time.Time
	OriginalQuantity  int64
	RemainingQuantity int64
	UnitCost          decimal.Decimal
}

// NewStockLot creates a stock lot whose remaining quantity equals its original quantity
func NewStockLot(sku, batchNumber string, acquiredAt time.Time, quantity int64, unitCost decimal.Decimal) (*StockLot, error) {
	if sku == "" {
		return nil, fmt.Errorf("%w: sku cannot be empty", shared.ErrInvalidCostData)
	}
	if quantity < 0 {
		return nil, fmt.Errorf("%w: quantity cannot be negative", shared.ErrInvalidCostData)
	}
	if unitCost.IsNegative() {
		return nil, fmt.Errorf("%w: unit cost cannot be negative", shared.ErrInvalidCostData)
	}
	if acquiredAt.IsZero() {
		acquiredAt = time.Now()
	}

	return &StockLot{
		BaseEntity:        shared.NewBaseEntity(),
		SKU:               sku,
		BatchNumber:       batchNumber,
		AcquiredAt:        acquiredAt,
		OriginalQuantity:  quantity,
		RemainingQuantity: quantity,
		UnitCost:          unitCost,
	}, nil
}

// Validate checks 0 <= remaining <= original and a non-negative unit cost
func (l *StockLot) Validate() error {
	if l.SKU == "" {
		return fmt.Errorf("%w: sku cannot be empty", shared.ErrInvalidCostData)
	}
	if l.RemainingQuantity < 0 || l.RemainingQuantity > l.OriginalQuantity {
		return fmt.Errorf("%w: remaining quantity %d out of range [0, %d]",
			shared.ErrInvalidCostData, l.RemainingQuantity, l.OriginalQuantity)
	}
	if l.UnitCost.IsNegative() {
		return fmt.Errorf("%w: unit cost cannot be negative", shared.ErrInvalidCostData)
	}
	return nil
}

// IsDepleted returns true when nothing remains in the lot
func (l *StockLot) IsDepleted() bool {
	return l.RemainingQuantity <= 0
}

// RemainingValue returns remaining quantity times unit cost
func (l *StockLot) RemainingValue() decimal.Decimal {
	return l.UnitCost.Mul(decimal.NewFromInt(l.RemainingQuantity))
}

// Consume takes quantity units out of the lot
func (l *StockLot) Consume(quantity int64) error {
	if quantity <= 0 {
		return fmt.Errorf("%w: consume quantity must be positive", shared.ErrInvalidCostData)
	}
	if quantity > l.RemainingQuantity {
		return fmt.Errorf("%w: lot %s has %d remaining, requested %d",
			shared.ErrInsufficientStock, l.ID, l.RemainingQuantity, quantity)
	}
	l.RemainingQuantity -= quantity
	l.Touch()
	return nil
}
