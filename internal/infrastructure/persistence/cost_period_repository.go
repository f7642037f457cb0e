package persistence

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/erp/costing/internal/domain/costing"
	"github.com/erp/costing/internal/domain/shared"
	"github.com/erp/costing/internal/infrastructure/persistence/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GormCostPeriodRepository implements costing.CostPeriodRepository using GORM.
// Soft-deleted periods are filtered out by GORM's deleted_at scope.
type GormCostPeriodRepository struct {
	db *gorm.DB
}

// NewGormCostPeriodRepository creates a new GormCostPeriodRepository
func NewGormCostPeriodRepository(db *gorm.DB) *GormCostPeriodRepository {
	return &GormCostPeriodRepository{db: db}
}

// FindByID finds a live period by its ID
func (r *GormCostPeriodRepository) FindByID(ctx context.Context, id uuid.UUID) (*costing.CostPeriod, error) {
	return r.first(r.db.WithContext(ctx), "id = ?", id)
}

// FindByIDUnscoped finds a period by its ID, including soft-deleted ones
func (r *GormCostPeriodRepository) FindByIDUnscoped(ctx context.Context, id uuid.UUID) (*costing.CostPeriod, error) {
	return r.first(r.db.WithContext(ctx).Unscoped(), "id = ?", id)
}

// FindByDate returns the earliest-starting live period containing the date
func (r *GormCostPeriodRepository) FindByDate(ctx context.Context, date time.Time) (*costing.CostPeriod, error) {
	return r.first(r.db.WithContext(ctx).Order("start_date ASC"), "start_date <= ? AND end_date >= ?", date, date)
}

// FindAll lists live periods, optionally restricted to a status
func (r *GormCostPeriodRepository) FindAll(ctx context.Context, filter shared.Filter, status costing.PeriodStatus) ([]costing.CostPeriod, int64, error) {
	query := r.db.WithContext(ctx).Model(&models.CostPeriodModel{})
	if status != "" {
		query = query.Where("status = ?", status.String())
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var rows []models.CostPeriodModel
	if err := applyPaging(query, filter, periodSorts, "start_date").Find(&rows).Error; err != nil {
		return nil, 0, err
	}

	periods := make([]costing.CostPeriod, len(rows))
	for i := range rows {
		periods[i] = *rows[i].ToDomain()
	}
	return periods, total, nil
}

// Save inserts a new period or updates an existing one with optimistic locking.
// Every mutation bumps the aggregate version, so the stored row must still carry
// Version-1; otherwise another writer got there first.
func (r *GormCostPeriodRepository) Save(ctx context.Context, period *costing.CostPeriod) error {
	model := models.CostPeriodModelFromDomain(period)
	if period.Version <= 1 {
		return r.db.WithContext(ctx).Create(model).Error
	}

	result := r.db.WithContext(ctx).
		Unscoped().
		Model(model).
		Select("*").
		Omit("id", "created_at").
		Where("id = ? AND version = ?", period.ID, period.Version-1).
		Updates(model)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("%w: period %s was modified concurrently", shared.ErrConcurrencyConflict, period.ID)
	}
	return nil
}

func (r *GormCostPeriodRepository) first(query *gorm.DB, cond string, args ...interface{}) (*costing.CostPeriod, error) {
	var model models.CostPeriodModel
	if err := query.Where(cond, args...).First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

var _ costing.CostPeriodRepository = (*GormCostPeriodRepository)(nil)
