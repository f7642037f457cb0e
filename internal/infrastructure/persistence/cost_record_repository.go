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

const costRecordBatchSize = 100

// GormCostRecordRepository implements costing.CostRecordRepository using GORM
type GormCostRecordRepository struct {
	db *gorm.DB
}

// NewGormCostRecordRepository creates a new GormCostRecordRepository
func NewGormCostRecordRepository(db *gorm.DB) *GormCostRecordRepository {
	return &GormCostRecordRepository{db: db}
}

// WithTx returns a new repository bound to the given transaction
func (r *GormCostRecordRepository) WithTx(tx *gorm.DB) *GormCostRecordRepository {
	return &GormCostRecordRepository{db: tx}
}

// FindByID finds a cost record by its ID
func (r *GormCostRecordRepository) FindByID(ctx context.Context, id uuid.UUID) (*costing.CostRecord, error) {
	var model models.CostRecordModel
	if err := r.db.WithContext(ctx).First(&model, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindAll lists cost records. Supported filters: sku, period_id, method.
func (r *GormCostRecordRepository) FindAll(ctx context.Context, filter shared.Filter) ([]costing.CostRecord, int64, error) {
	query := r.applyFilters(r.db.WithContext(ctx).Model(&models.CostRecordModel{}), filter)

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var rows []models.CostRecordModel
	if err := applyPaging(query, filter, costRecordSorts, "recorded_at").Find(&rows).Error; err != nil {
		return nil, 0, err
	}
	return toCostRecords(rows), total, nil
}

// FindWithStockLot pages through records that reference a stock lot, ordered by id
func (r *GormCostRecordRepository) FindWithStockLot(ctx context.Context, offset, limit int) ([]costing.CostRecord, error) {
	var rows []models.CostRecordModel
	if err := r.db.WithContext(ctx).
		Where("stock_lot_id IS NOT NULL").
		Order("id ASC").
		Offset(offset).
		Limit(limit).
		Find(&rows).Error; err != nil {
		return nil, err
	}
	return toCostRecords(rows), nil
}

// Save creates or updates a cost record
func (r *GormCostRecordRepository) Save(ctx context.Context, record *costing.CostRecord) error {
	return r.db.WithContext(ctx).Save(models.CostRecordModelFromDomain(record)).Error
}

// SaveBatch inserts records in one transaction; either all land or none
func (r *GormCostRecordRepository) SaveBatch(ctx context.Context, records []*costing.CostRecord) error {
	if len(records) == 0 {
		return nil
	}
	rows := make([]*models.CostRecordModel, len(records))
	for i, record := range records {
		rows[i] = models.CostRecordModelFromDomain(record)
	}
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return tx.CreateInBatches(rows, costRecordBatchSize).Error
	})
}

func (r *GormCostRecordRepository) applyFilters(query *gorm.DB, filter shared.Filter) *gorm.DB {
	for key, value := range filter.Filters {
		switch key {
		case "sku":
			if v, ok := value.(string); ok && v != "" {
				query = query.Where("sku = ?", v)
			}
		case "period_id":
			switch v := value.(type) {
			case uuid.UUID:
				query = query.Where("period_id = ?", v)
			case *uuid.UUID:
				if v != nil {
					query = query.Where("period_id = ?", *v)
				}
			}
		case "method":
			if v, ok := value.(string); ok && v != "" {
				query = query.Where("method = ?", v)
			}
		}
	}
	return query
}

func toCostRecords(rows []models.CostRecordModel) []costing.CostRecord {
	records := make([]costing.CostRecord, len(rows))
	for i := range rows {
		records[i] = *rows[i].ToDomain()
	}
	return records
}

var _ costing.CostRecordRepository = (*GormCostRecordRepository)(nil)
