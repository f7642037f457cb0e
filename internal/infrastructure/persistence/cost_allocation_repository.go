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

// GormCostAllocationRepository implements costing.CostAllocationRepository using GORM
type GormCostAllocationRepository struct {
	db *gorm.DB
}

// NewGormCostAllocationRepository creates a new GormCostAllocationRepository
func NewGormCostAllocationRepository(db *gorm.DB) *GormCostAllocationRepository {
	return &GormCostAllocationRepository{db: db}
}

// FindByID finds an allocation rule by its ID
func (r *GormCostAllocationRepository) FindByID(ctx context.Context, id uuid.UUID) (*costing.CostAllocation, error) {
	var model models.CostAllocationModel
	if err := r.db.WithContext(ctx).First(&model, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindAll lists allocation rules. Supported filters: method, period_id.
func (r *GormCostAllocationRepository) FindAll(ctx context.Context, filter shared.Filter) ([]costing.CostAllocation, int64, error) {
	query := r.db.WithContext(ctx).Model(&models.CostAllocationModel{})
	for key, value := range filter.Filters {
		switch key {
		case "method":
			if v, ok := value.(string); ok && v != "" {
				query = query.Where("method = ?", v)
			}
		case "period_id":
			if v, ok := value.(uuid.UUID); ok {
				query = query.Where("period_id = ?", v)
			}
		}
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var rows []models.CostAllocationModel
	if err := applyPaging(query, filter, allocationSorts, "created_at").Find(&rows).Error; err != nil {
		return nil, 0, err
	}

	rules := make([]costing.CostAllocation, len(rows))
	for i := range rows {
		rules[i] = *rows[i].ToDomain()
	}
	return rules, total, nil
}

// Save creates or updates an allocation rule
func (r *GormCostAllocationRepository) Save(ctx context.Context, rule *costing.CostAllocation) error {
	return r.db.WithContext(ctx).Save(models.CostAllocationModelFromDomain(rule)).Error
}

var _ costing.CostAllocationRepository = (*GormCostAllocationRepository)(nil)
