package models

import (
	"encoding/json"
	"strings"
	"time"

	"github.com/erp/costing/internal/domain/costing"
	"github.com/erp/costing/internal/domain/shared/strategy"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

var modelLogger = zap.L().Named("costing.models")

// StockLotModel is the persistence model for the StockLot entity.
type StockLotModel struct {
	BaseModel
	SKU               string          `gorm:"column:sku;type:varchar(100);not null;index:idx_stock_lots_sku_acquired,priority:1"`
	BatchNumber       string          `gorm:"type:varchar(50)"`
	AcquiredAt        time.Time       `gorm:"not null;index:idx_stock_lots_sku_acquired,priority:2"`
	OriginalQuantity  int64           `gorm:"not null"`
	RemainingQuantity int64           `gorm:"not null"`
	UnitCost          decimal.Decimal `gorm:"type:decimal(24,10);not null"`
}

// TableName returns the table name for GORM
func (StockLotModel) TableName() string {
	return "stock_lots"
}

// ToDomain converts the persistence model to a domain StockLot entity.
func (m *StockLotModel) ToDomain() *costing.StockLot {
	return &costing.StockLot{
		BaseEntity:        m.entity(),
		SKU:               m.SKU,
		BatchNumber:       m.BatchNumber,
		AcquiredAt:        m.AcquiredAt,
		OriginalQuantity:  m.OriginalQuantity,
		RemainingQuantity: m.RemainingQuantity,
		UnitCost:          m.UnitCost,
	}
}

// FromDomain populates the persistence model from a domain StockLot entity.
func (m *StockLotModel) FromDomain(l *costing.StockLot) {
	m.BaseModel = BaseModel(l.BaseEntity)
	m.SKU = l.SKU
	m.BatchNumber = l.BatchNumber
	m.AcquiredAt = l.AcquiredAt
	m.OriginalQuantity = l.OriginalQuantity
	m.RemainingQuantity = l.RemainingQuantity
	m.UnitCost = l.UnitCost
}

// StockLotModelFromDomain creates a new persistence model from a domain StockLot entity.
func StockLotModelFromDomain(l *costing.StockLot) *StockLotModel {
	m := &StockLotModel{}
	m.FromDomain(l)
	return m
}

// StandardCostModel is the persistence model for configured standard costs.
type StandardCostModel struct {
	SKU           string          `gorm:"column:sku;type:varchar(100);primaryKey"`
	UnitCost      decimal.Decimal `gorm:"type:decimal(24,10);not null"`
	EffectiveFrom time.Time       `gorm:"not null"`
	UpdatedAt     time.Time       `gorm:"not null"`
}

// TableName returns the table name for GORM
func (StandardCostModel) TableName() string {
	return "standard_costs"
}

// ToDomain converts the persistence model to a domain StandardCost.
func (m *StandardCostModel) ToDomain() *costing.StandardCost {
	return &costing.StandardCost{
		SKU:           m.SKU,
		UnitCost:      m.UnitCost,
		EffectiveFrom: m.EffectiveFrom,
		UpdatedAt:     m.UpdatedAt,
	}
}

// StandardCostModelFromDomain creates a new persistence model from a domain StandardCost.
func StandardCostModelFromDomain(c *costing.StandardCost) *StandardCostModel {
	return &StandardCostModel{
		SKU:           c.SKU,
		UnitCost:      c.UnitCost,
		EffectiveFrom: c.EffectiveFrom,
		UpdatedAt:     c.UpdatedAt,
	}
}

// CostRecordModel is the persistence model for the CostRecord entity.
type CostRecordModel struct {
	BaseModel
	SKU          string          `gorm:"column:sku;type:varchar(100);not null;index"`
	BatchNumber  string          `gorm:"type:varchar(50)"`
	UnitCost     decimal.Decimal `gorm:"type:decimal(24,10);not null"`
	Quantity     int64           `gorm:"not null"`
	TotalCost    decimal.Decimal `gorm:"type:decimal(24,10);not null"`
	Method       string          `gorm:"type:varchar(64);not null;index"`
	CostType     string          `gorm:"type:varchar(32);not null"`
	PeriodID     *uuid.UUID      `gorm:"type:uuid;index"`
	Operator     string          `gorm:"type:varchar(100)"`
	MetadataJSON string          `gorm:"column:metadata;type:jsonb"`
	StockLotID   *uuid.UUID      `gorm:"type:uuid;index"`
	AllocationID *uuid.UUID      `gorm:"type:uuid;index"`
	RecordedAt   time.Time       `gorm:"not null;index"`
}

// TableName returns the table name for GORM
func (CostRecordModel) TableName() string {
	return "cost_records"
}

// ToDomain converts the persistence model to a domain CostRecord entity.
func (m *CostRecordModel) ToDomain() *costing.CostRecord {
	record := &costing.CostRecord{
		BaseEntity:   m.entity(),
		SKU:          m.SKU,
		BatchNumber:  m.BatchNumber,
		UnitCost:     m.UnitCost,
		Quantity:     m.Quantity,
		TotalCost:    m.TotalCost,
		Method:       m.Method,
		CostType:     costing.CostType(m.CostType),
		PeriodID:     m.PeriodID,
		Operator:     m.Operator,
		Metadata:     make(map[string]interface{}),
		StockLotID:   m.StockLotID,
		AllocationID: m.AllocationID,
		RecordedAt:   m.RecordedAt,
	}
	if m.MetadataJSON != "" && m.MetadataJSON != "null" {
		if err := json.Unmarshal([]byte(m.MetadataJSON), &record.Metadata); err != nil {
			modelLogger.Warn("failed to parse cost record metadata",
				zap.String("record_id", m.ID.String()),
				zap.Error(err))
		}
	}
	return record
}

// FromDomain populates the persistence model from a domain CostRecord entity.
func (m *CostRecordModel) FromDomain(r *costing.CostRecord) {
	m.BaseModel = BaseModel(r.BaseEntity)
	m.SKU = r.SKU
	m.BatchNumber = r.BatchNumber
	m.UnitCost = r.UnitCost
	m.Quantity = r.Quantity
	m.TotalCost = r.TotalCost
	m.Method = r.Method
	m.CostType = r.CostType.String()
	m.PeriodID = r.PeriodID
	m.Operator = r.Operator
	m.StockLotID = r.StockLotID
	m.AllocationID = r.AllocationID
	m.RecordedAt = r.RecordedAt
	m.MetadataJSON = "{}"
	if len(r.Metadata) > 0 {
		if data, err := json.Marshal(r.Metadata); err == nil {
			m.MetadataJSON = string(data)
		} else {
			modelLogger.Warn("failed to encode cost record metadata",
				zap.String("record_id", r.ID.String()),
				zap.Error(err))
		}
	}
}

// CostRecordModelFromDomain creates a new persistence model from a domain CostRecord entity.
func CostRecordModelFromDomain(r *costing.CostRecord) *CostRecordModel {
	m := &CostRecordModel{}
	m.FromDomain(r)
	return m
}

// CostAllocationModel is the persistence model for allocation rules.
type CostAllocationModel struct {
	BaseModel
	Name           string          `gorm:"type:varchar(200);not null"`
	SourceCostType string          `gorm:"type:varchar(32);not null"`
	TotalAmount    decimal.Decimal `gorm:"type:decimal(24,10);not null"`
	Method         string          `gorm:"type:varchar(64);not null;index"`
	EffectiveDate  time.Time       `gorm:"not null"`
	PeriodID       *uuid.UUID      `gorm:"type:uuid;index"`
	TargetsJSON    string          `gorm:"column:targets;type:jsonb;not null"`
}

// TableName returns the table name for GORM
func (CostAllocationModel) TableName() string {
	return "cost_allocations"
}

// ToDomain converts the persistence model to a domain CostAllocation.
// Target values keep their JSON numeric text so ratios and weights stay exact.
func (m *CostAllocationModel) ToDomain() *costing.CostAllocation {
	rule := &costing.CostAllocation{
		BaseEntity:     m.entity(),
		Name:           m.Name,
		SourceCostType: costing.CostType(m.SourceCostType),
		TotalAmount:    m.TotalAmount,
		Method:         strategy.AllocationMethod(m.Method),
		EffectiveDate:  m.EffectiveDate,
		PeriodID:       m.PeriodID,
		Targets:        make([]costing.AllocationTarget, 0),
	}
	if m.TargetsJSON != "" {
		if err := decodeTargets(m.TargetsJSON, &rule.Targets); err != nil {
			modelLogger.Warn("failed to parse allocation targets",
				zap.String("allocation_id", m.ID.String()),
				zap.Error(err))
		}
	}
	return rule
}

// FromDomain populates the persistence model from a domain CostAllocation.
func (m *CostAllocationModel) FromDomain(a *costing.CostAllocation) {
	m.BaseModel = BaseModel(a.BaseEntity)
	m.Name = a.Name
	m.SourceCostType = a.SourceCostType.String()
	m.TotalAmount = a.TotalAmount
	m.Method = a.Method.String()
	m.EffectiveDate = a.EffectiveDate
	m.PeriodID = a.PeriodID
	m.TargetsJSON = "[]"
	if len(a.Targets) > 0 {
		if data, err := json.Marshal(a.Targets); err == nil {
			m.TargetsJSON = string(data)
		} else {
			modelLogger.Warn("failed to encode allocation targets",
				zap.String("allocation_id", a.ID.String()),
				zap.Error(err))
		}
	}
}

// CostAllocationModelFromDomain creates a new persistence model from a domain CostAllocation.
func CostAllocationModelFromDomain(a *costing.CostAllocation) *CostAllocationModel {
	m := &CostAllocationModel{}
	m.FromDomain(a)
	return m
}

// CostPeriodModel is the persistence model for the CostPeriod aggregate root.
type CostPeriodModel struct {
	AggregateModel
	Name          string         `gorm:"type:varchar(100);not null"`
	StartDate     time.Time      `gorm:"not null;index"`
	EndDate       time.Time      `gorm:"not null;index"`
	DefaultMethod string         `gorm:"type:varchar(32);not null"`
	Status        string         `gorm:"type:varchar(16);not null;default:'OPEN';index"`
	DeletedAt     gorm.DeletedAt `gorm:"index"`
}

// TableName returns the table name for GORM
func (CostPeriodModel) TableName() string {
	return "cost_periods"
}

// ToDomain converts the persistence model to a domain CostPeriod aggregate.
func (m *CostPeriodModel) ToDomain() *costing.CostPeriod {
	period := &costing.CostPeriod{
		BaseAggregateRoot: m.aggregate(),
		Name:              m.Name,
		StartDate:         m.StartDate,
		EndDate:           m.EndDate,
		DefaultMethod:     strategy.CostMethod(m.DefaultMethod),
		Status:            costing.PeriodStatus(m.Status),
	}
	if m.DeletedAt.Valid {
		deletedAt := m.DeletedAt.Time
		period.DeletedAt = &deletedAt
	}
	return period
}

// FromDomain populates the persistence model from a domain CostPeriod aggregate.
func (m *CostPeriodModel) FromDomain(p *costing.CostPeriod) {
	m.AggregateModel = aggregateModelOf(p.BaseAggregateRoot)
	m.Name = p.Name
	m.StartDate = p.StartDate
	m.EndDate = p.EndDate
	m.DefaultMethod = p.DefaultMethod.String()
	m.Status = p.Status.String()
	m.DeletedAt = gorm.DeletedAt{}
	if p.DeletedAt != nil {
		m.DeletedAt = gorm.DeletedAt{Time: *p.DeletedAt, Valid: true}
	}
}

// CostPeriodModelFromDomain creates a new persistence model from a domain CostPeriod.
func CostPeriodModelFromDomain(p *costing.CostPeriod) *CostPeriodModel {
	m := &CostPeriodModel{}
	m.FromDomain(p)
	return m
}

// AllModels lists every costing model, in dependency order, for schema setup in tests
func AllModels() []interface{} {
	return []interface{}{
		&StockLotModel{},
		&StandardCostModel{},
		&CostPeriodModel{},
		&CostAllocationModel{},
		&CostRecordModel{},
	}
}

func decodeTargets(raw string, out *[]costing.AllocationTarget) error {
	var decoded []map[string]interface{}
	dec := json.NewDecoder(strings.NewReader(raw))
	dec.UseNumber()
	if err := dec.Decode(&decoded); err != nil {
		return err
	}
	targets := make([]costing.AllocationTarget, len(decoded))
	for i, t := range decoded {
		targets[i] = costing.AllocationTarget(t)
	}
	*out = targets
	return nil
}
