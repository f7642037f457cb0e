package persistence

import (
	"context"
	"errors"

	"github.com/erp/costing/internal/domain/costing"
	"github.com/erp/costing/internal/domain/shared"
	"github.com/erp/costing/internal/infrastructure/persistence/models"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// GormStandardCostRepository implements costing.StandardCostRepository using GORM
type GormStandardCostRepository struct {
	db *gorm.DB
}

// NewGormStandardCostRepository creates a new GormStandardCostRepository
func NewGormStandardCostRepository(db *gorm.DB) *GormStandardCostRepository {
	return &GormStandardCostRepository{db: db}
}

// FindBySKU finds the standard cost configured for a SKU
func (r *GormStandardCostRepository) FindBySKU(ctx context.Context, sku string) (*costing.StandardCost, error) {
	var model models.StandardCostModel
	if err := r.db.WithContext(ctx).First(&model, "sku = ?", sku).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// StandardCost returns the configured cost and whether one exists
func (r *GormStandardCostRepository) StandardCost(ctx context.Context, sku string) (decimal.Decimal, bool, error) {
	cost, err := r.FindBySKU(ctx, sku)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return decimal.Zero, false, nil
		}
		return decimal.Zero, false, err
	}
	return cost.UnitCost, true, nil
}

// HasStandardCost reports whether a standard cost is configured for the SKU
func (r *GormStandardCostRepository) HasStandardCost(ctx context.Context, sku string) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&models.StandardCostModel{}).
		Where("sku = ?", sku).
		Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// Save creates or replaces the standard cost of a SKU
func (r *GormStandardCostRepository) Save(ctx context.Context, cost *costing.StandardCost) error {
	return r.db.WithContext(ctx).Save(models.StandardCostModelFromDomain(cost)).Error
}

var _ costing.StandardCostRepository = (*GormStandardCostRepository)(nil)
