package costing

import (
	"context"
	"time"

	"github.com/erp/costing/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// StandardCost is a configured standard unit cost for a SKU
type StandardCost struct {
	SKU           string
	UnitCost      decimal.Decimal
	EffectiveFrom time.Time
	UpdatedAt     time.Time
}

// StockLotRepository persists stock lots and serves them as a StockLotSource
type StockLotRepository interface {
	StockLotSource
	FindByID(ctx context.Context, id uuid.UUID) (*StockLot, error)
	Save(ctx context.Context, lot *StockLot) error
}

// StandardCostRepository persists standard costs and serves them as a StandardCostSource
type StandardCostRepository interface {
	StandardCostSource
	FindBySKU(ctx context.Context, sku string) (*StandardCost, error)
	Save(ctx context.Context, cost *StandardCost) error
}

// CostRecordRepository is the cost record sink
type CostRecordRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*CostRecord, error)
	FindAll(ctx context.Context, filter shared.Filter) ([]CostRecord, int64, error)
	// FindWithStockLot pages through records that reference a stock lot, ordered by id
	FindWithStockLot(ctx context.Context, offset, limit int) ([]CostRecord, error)
	Save(ctx context.Context, record *CostRecord) error
	SaveBatch(ctx context.Context, records []*CostRecord) error
}

// CostAllocationRepository is the allocation rule source and sink
type CostAllocationRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*CostAllocation, error)
	FindAll(ctx context.Context, filter shared.Filter) ([]CostAllocation, int64, error)
	Save(ctx context.Context, rule *CostAllocation) error
}

// CostPeriodRepository persists cost periods. Soft-deleted periods are
// hidden unless explicitly requested.
type CostPeriodRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*CostPeriod, error)
	FindByIDUnscoped(ctx context.Context, id uuid.UUID) (*CostPeriod, error)
	// FindByDate returns the earliest-starting period with start <= date <= end
	FindByDate(ctx context.Context, date time.Time) (*CostPeriod, error)
	FindAll(ctx context.Context, filter shared.Filter, status PeriodStatus) ([]CostPeriod, int64, error)
	Save(ctx context.Context, period *CostPeriod) error
}
