package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/erp/costing/internal/domain/shared"
)

// BaseModel holds the identity columns every costing table carries.
// Its field set mirrors shared.BaseEntity so the two convert directly.
type BaseModel struct {
	ID        uuid.UUID `gorm:"type:uuid;primary_key"`
	CreatedAt time.Time `gorm:"not null"`
	UpdatedAt time.Time `gorm:"not null"`
}

func (m BaseModel) entity() shared.BaseEntity {
	return shared.BaseEntity(m)
}

// AggregateModel adds the optimistic-lock version column
type AggregateModel struct {
	BaseModel
	Version int `gorm:"not null;default:1"`
}

func aggregateModelOf(a shared.BaseAggregateRoot) AggregateModel {
	return AggregateModel{BaseModel: BaseModel(a.BaseEntity), Version: a.Version}
}

func (m AggregateModel) aggregate() shared.BaseAggregateRoot {
	return shared.BaseAggregateRoot{BaseEntity: m.entity(), Version: m.Version}
}
