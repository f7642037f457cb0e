package persistence

import (
	"context"
	"errors"

	"github.com/erp/costing/internal/domain/costing"
	"github.com/erp/costing/internal/domain/shared"
	"github.com/erp/costing/internal/infrastructure/persistence/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GormStockLotRepository implements costing.StockLotRepository using GORM
type GormStockLotRepository struct {
	db *gorm.DB
}

// NewGormStockLotRepository creates a new GormStockLotRepository
func NewGormStockLotRepository(db *gorm.DB) *GormStockLotRepository {
	return &GormStockLotRepository{db: db}
}

// WithTx returns a new repository bound to the given transaction
func (r *GormStockLotRepository) WithTx(tx *gorm.DB) *GormStockLotRepository {
	return &GormStockLotRepository{db: tx}
}

// FindByID finds a stock lot by its ID
func (r *GormStockLotRepository) FindByID(ctx context.Context, id uuid.UUID) (*costing.StockLot, error) {
	var model models.StockLotModel
	if err := r.db.WithContext(ctx).First(&model, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// LotsForSKU returns all lots of a SKU, including depleted ones.
// Rows come back by acquisition date but callers order them themselves.
func (r *GormStockLotRepository) LotsForSKU(ctx context.Context, sku string) ([]costing.StockLot, error) {
	var rows []models.StockLotModel
	if err := r.db.WithContext(ctx).
		Where("sku = ?", sku).
		Order("acquired_at ASC, id ASC").
		Find(&rows).Error; err != nil {
		return nil, err
	}

	lots := make([]costing.StockLot, len(rows))
	for i := range rows {
		lots[i] = *rows[i].ToDomain()
	}
	return lots, nil
}

// CurrentStock returns the sum of remaining quantities for a SKU
func (r *GormStockLotRepository) CurrentStock(ctx context.Context, sku string) (int64, error) {
	var total int64
	if err := r.db.WithContext(ctx).
		Model(&models.StockLotModel{}).
		Select("CAST(COALESCE(SUM(remaining_quantity), 0) AS BIGINT)").
		Where("sku = ?", sku).
		Scan(&total).Error; err != nil {
		return 0, err
	}
	return total, nil
}

// Save creates or updates a stock lot
func (r *GormStockLotRepository) Save(ctx context.Context, lot *costing.StockLot) error {
	return r.db.WithContext(ctx).Save(models.StockLotModelFromDomain(lot)).Error
}

var _ costing.StockLotRepository = (*GormStockLotRepository)(nil)
