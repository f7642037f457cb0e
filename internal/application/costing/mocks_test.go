package costing

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/erp/costing/internal/domain/costing"
	"github.com/erp/costing/internal/domain/shared"
	"github.com/erp/costing/internal/domain/shared/strategy"
	infrastrategy "github.com/erp/costing/internal/infrastructure/strategy"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// MockStockLotRepository is a mock implementation of StockLotRepository
type MockStockLotRepository struct {
	mock.Mock
}

func (m *MockStockLotRepository) LotsForSKU(ctx context.Context, sku string) ([]costing.StockLot, error) {
	args := m.Called(ctx, sku)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]costing.StockLot), args.Error(1)
}

func (m *MockStockLotRepository) CurrentStock(ctx context.Context, sku string) (int64, error) {
	args := m.Called(ctx, sku)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockStockLotRepository) FindByID(ctx context.Context, id uuid.UUID) (*costing.StockLot, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*costing.StockLot), args.Error(1)
}

func (m *MockStockLotRepository) Save(ctx context.Context, lot *costing.StockLot) error {
	args := m.Called(ctx, lot)
	return args.Error(0)
}

// MockStandardCostRepository is a mock implementation of StandardCostRepository
type MockStandardCostRepository struct {
	mock.Mock
}

func (m *MockStandardCostRepository) StandardCost(ctx context.Context, sku string) (decimal.Decimal, bool, error) {
	args := m.Called(ctx, sku)
	return args.Get(0).(decimal.Decimal), args.Bool(1), args.Error(2)
}

func (m *MockStandardCostRepository) HasStandardCost(ctx context.Context, sku string) (bool, error) {
	args := m.Called(ctx, sku)
	return args.Bool(0), args.Error(1)
}

func (m *MockStandardCostRepository) FindBySKU(ctx context.Context, sku string) (*costing.StandardCost, error) {
	args := m.Called(ctx, sku)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*costing.StandardCost), args.Error(1)
}

func (m *MockStandardCostRepository) Save(ctx context.Context, cost *costing.StandardCost) error {
	args := m.Called(ctx, cost)
	return args.Error(0)
}

// MockCostRecordRepository is a mock implementation of CostRecordRepository
type MockCostRecordRepository struct {
	mock.Mock
}

func (m *MockCostRecordRepository) FindByID(ctx context.Context, id uuid.UUID) (*costing.CostRecord, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*costing.CostRecord), args.Error(1)
}

func (m *MockCostRecordRepository) FindAll(ctx context.Context, filter shared.Filter) ([]costing.CostRecord, int64, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).([]costing.CostRecord), args.Get(1).(int64), args.Error(2)
}

func (m *MockCostRecordRepository) FindWithStockLot(ctx context.Context, offset, limit int) ([]costing.CostRecord, error) {
	args := m.Called(ctx, offset, limit)
	return args.Get(0).([]costing.CostRecord), args.Error(1)
}

func (m *MockCostRecordRepository) Save(ctx context.Context, record *costing.CostRecord) error {
	args := m.Called(ctx, record)
	return args.Error(0)
}

func (m *MockCostRecordRepository) SaveBatch(ctx context.Context, records []*costing.CostRecord) error {
	args := m.Called(ctx, records)
	return args.Error(0)
}

// MockCostAllocationRepository is a mock implementation of CostAllocationRepository
type MockCostAllocationRepository struct {
	mock.Mock
}

func (m *MockCostAllocationRepository) FindByID(ctx context.Context, id uuid.UUID) (*costing.CostAllocation, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*costing.CostAllocation), args.Error(1)
}

func (m *MockCostAllocationRepository) FindAll(ctx context.Context, filter shared.Filter) ([]costing.CostAllocation, int64, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).([]costing.CostAllocation), args.Get(1).(int64), args.Error(2)
}

func (m *MockCostAllocationRepository) Save(ctx context.Context, rule *costing.CostAllocation) error {
	args := m.Called(ctx, rule)
	return args.Error(0)
}

// MockCostPeriodRepository is a mock implementation of CostPeriodRepository
type MockCostPeriodRepository struct {
	mock.Mock
}

func (m *MockCostPeriodRepository) FindByID(ctx context.Context, id uuid.UUID) (*costing.CostPeriod, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*costing.CostPeriod), args.Error(1)
}

func (m *MockCostPeriodRepository) FindByIDUnscoped(ctx context.Context, id uuid.UUID) (*costing.CostPeriod, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*costing.CostPeriod), args.Error(1)
}

func (m *MockCostPeriodRepository) FindByDate(ctx context.Context, date time.Time) (*costing.CostPeriod, error) {
	args := m.Called(ctx, date)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*costing.CostPeriod), args.Error(1)
}

func (m *MockCostPeriodRepository) FindAll(ctx context.Context, filter shared.Filter, status costing.PeriodStatus) ([]costing.CostPeriod, int64, error) {
	args := m.Called(ctx, filter, status)
	return args.Get(0).([]costing.CostPeriod), args.Get(1).(int64), args.Error(2)
}

func (m *MockCostPeriodRepository) Save(ctx context.Context, period *costing.CostPeriod) error {
	args := m.Called(ctx, period)
	return args.Error(0)
}

// MockLocker is a mock implementation of shared.Locker
type MockLocker struct {
	mock.Mock
}

func (m *MockLocker) Obtain(ctx context.Context, key string, ttl time.Duration) (shared.Lock, error) {
	args := m.Called(ctx, key, ttl)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(shared.Lock), args.Error(1)
}

// MockLock is a mock implementation of shared.Lock
type MockLock struct {
	mock.Mock
}

func (m *MockLock) Release(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

// MockEventPublisher records published events
type MockEventPublisher struct {
	mu     sync.Mutex
	events []shared.DomainEvent
}

func NewMockEventPublisher() *MockEventPublisher {
	return &MockEventPublisher{events: make([]shared.DomainEvent, 0)}
}

func (m *MockEventPublisher) Publish(ctx context.Context, events ...shared.DomainEvent) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.events = append(m.events, events...)
	return nil
}

func (m *MockEventPublisher) GetEventsByType(eventType string) []shared.DomainEvent {
	m.mu.Lock()
	defer m.mu.Unlock()
	result := make([]shared.DomainEvent, 0)
	for _, e := range m.events {
		if e.EventType() == eventType {
			result = append(result, e)
		}
	}
	return result
}

// ===================== helpers =====================

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func newLot(t *testing.T, sku string, acquired time.Time, qty int64, cost string) costing.StockLot {
	t.Helper()
	lot, err := costing.NewStockLot(sku, "B-"+acquired.Format("0102"), acquired, qty, dec(cost))
	require.NoError(t, err)
	return *lot
}

func newRegistry(t *testing.T, lots costing.StockLotSource, standardCosts costing.StandardCostSource) *infrastrategy.StrategyRegistry {
	t.Helper()
	registry, err := infrastrategy.NewRegistryWithDefaults(lots, standardCosts)
	require.NoError(t, err)
	registry.Seal()
	return registry
}

func openPeriod(t *testing.T) *costing.CostPeriod {
	t.Helper()
	p, err := costing.NewCostPeriod("2024-01", date(2024, 1, 1), date(2024, 1, 31), strategy.CostMethodFIFO)
	require.NoError(t, err)
	return p
}
