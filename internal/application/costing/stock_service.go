package costing

import (
	"context"
	"fmt"
	"time"

	"github.com/erp/costing/internal/domain/costing"
	"github.com/erp/costing/internal/domain/shared"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// StockService maintains the stock lots and standard costs the calculators read
type StockService struct {
	lots          costing.StockLotRepository
	standardCosts costing.StandardCostRepository
	locker        shared.Locker
	lockTTL       time.Duration
	logger        *zap.Logger
}

// NewStockService creates a new StockService
func NewStockService(
	lots costing.StockLotRepository,
	standardCosts costing.StandardCostRepository,
	logger *zap.Logger,
) *StockService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &StockService{
		lots:          lots,
		standardCosts: standardCosts,
		lockTTL:       DefaultLockTTL,
		logger:        logger,
	}
}

// SetLocker serializes lot consumption per SKU through locker
func (s *StockService) SetLocker(locker shared.Locker, ttl time.Duration) {
	s.locker = locker
	if ttl > 0 {
		s.lockTTL = ttl
	}
}

// RegisterLot records a received stock lot
func (s *StockService) RegisterLot(ctx context.Context, req RegisterLotRequest) (*StockLotResponse, error) {
	lot, err := costing.NewStockLot(req.SKU, req.BatchNumber, req.AcquiredAt, req.Quantity, req.UnitCost)
	if err != nil {
		return nil, err
	}
	if err := s.lots.Save(ctx, lot); err != nil {
		return nil, err
	}
	s.logger.Info("Stock lot registered",
		zap.String("lot_id", lot.ID.String()),
		zap.String("sku", lot.SKU),
		zap.Int64("quantity", lot.OriginalQuantity),
	)
	resp := ToStockLotResponse(lot)
	return &resp, nil
}

// GetLot returns a stock lot by id
func (s *StockService) GetLot(ctx context.Context, id uuid.UUID) (*StockLotResponse, error) {
	lot, err := s.lots.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	resp := ToStockLotResponse(lot)
	return &resp, nil
}

// ConsumeLot takes quantity out of a lot. Calculators never do this.
func (s *StockService) ConsumeLot(ctx context.Context, id uuid.UUID, req ConsumeLotRequest) (*StockLotResponse, error) {
	lot, err := s.lots.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if s.locker != nil {
		lock, err := s.locker.Obtain(ctx, skuLockKey(lot.SKU), s.lockTTL)
		if err != nil {
			return nil, err
		}
		defer func() {
			if err := lock.Release(ctx); err != nil {
				s.logger.Warn("Failed to release sku lock", zap.String("sku", lot.SKU), zap.Error(err))
			}
		}()
		// Re-read under the lock
		if lot, err = s.lots.FindByID(ctx, id); err != nil {
			return nil, err
		}
	}

	if err := lot.Consume(req.Quantity); err != nil {
		return nil, err
	}
	if err := s.lots.Save(ctx, lot); err != nil {
		return nil, err
	}
	s.logger.Info("Stock lot consumed",
		zap.String("lot_id", lot.ID.String()),
		zap.String("sku", lot.SKU),
		zap.Int64("quantity", req.Quantity),
		zap.Int64("remaining", lot.RemainingQuantity),
	)
	resp := ToStockLotResponse(lot)
	return &resp, nil
}

// StockSummary lists a SKU's lots with its current stock
func (s *StockService) StockSummary(ctx context.Context, sku string) (*StockSummaryResponse, error) {
	lots, err := s.lots.LotsForSKU(ctx, sku)
	if err != nil {
		return nil, err
	}
	stock, err := s.lots.CurrentStock(ctx, sku)
	if err != nil {
		return nil, err
	}
	out := &StockSummaryResponse{SKU: sku, CurrentStock: stock, Lots: make([]StockLotResponse, len(lots))}
	for i := range lots {
		out.Lots[i] = ToStockLotResponse(&lots[i])
	}
	return out, nil
}

// SetStandardCost creates or replaces a SKU's standard unit cost
func (s *StockService) SetStandardCost(ctx context.Context, sku string, req SetStandardCostRequest) (*StandardCostResponse, error) {
	if sku == "" {
		return nil, fmt.Errorf("%w: sku cannot be empty", shared.ErrInvalidCostData)
	}
	if req.UnitCost.IsNegative() {
		return nil, fmt.Errorf("%w: standard cost cannot be negative", shared.ErrInvalidCostData)
	}

	now := time.Now()
	cost := &costing.StandardCost{
		SKU:           sku,
		UnitCost:      req.UnitCost,
		EffectiveFrom: now,
		UpdatedAt:     now,
	}
	if req.EffectiveFrom != nil {
		cost.EffectiveFrom = *req.EffectiveFrom
	}
	if err := s.standardCosts.Save(ctx, cost); err != nil {
		return nil, err
	}
	s.logger.Info("Standard cost set",
		zap.String("sku", sku),
		zap.String("unit_cost", cost.UnitCost.String()),
	)
	resp := ToStandardCostResponse(cost)
	return &resp, nil
}

// GetStandardCost returns a SKU's standard cost
func (s *StockService) GetStandardCost(ctx context.Context, sku string) (*StandardCostResponse, error) {
	cost, err := s.standardCosts.FindBySKU(ctx, sku)
	if err != nil {
		return nil, err
	}
	resp := ToStandardCostResponse(cost)
	return &resp, nil
}
