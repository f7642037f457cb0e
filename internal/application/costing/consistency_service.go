package costing

import (
	"context"
	"errors"
	"fmt"

	"github.com/erp/costing/internal/domain/costing"
	"github.com/erp/costing/internal/domain/shared"
	"github.com/erp/costing/internal/infrastructure/telemetry"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// DefaultRepairPageSize is the number of records loaded per repair page
const DefaultRepairPageSize = 200

// ConsistencyService cross-checks cost records against their stock lots and
// repairs the lot-derived fields on request
type ConsistencyService struct {
	records   costing.CostRecordRepository
	lots      costing.StockLotRepository
	validator *costing.ConsistencyValidator
	pageSize  int
	logger    *zap.Logger
	metrics   *telemetry.CostingMetrics
}

// NewConsistencyService creates a new ConsistencyService
func NewConsistencyService(
	records costing.CostRecordRepository,
	lots costing.StockLotRepository,
	validator *costing.ConsistencyValidator,
	logger *zap.Logger,
) *ConsistencyService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if validator == nil {
		validator = costing.NewConsistencyValidator(costing.DefaultConsistencyTolerance)
	}
	return &ConsistencyService{
		records:   records,
		lots:      lots,
		validator: validator,
		pageSize:  DefaultRepairPageSize,
		logger:    logger,
	}
}

// SetMetrics sets the metrics recorder (optional)
func (s *ConsistencyService) SetMetrics(metrics *telemetry.CostingMetrics) {
	s.metrics = metrics
}

// SetPageSize sets the repair page size
func (s *ConsistencyService) SetPageSize(size int) {
	if size > 0 {
		s.pageSize = size
	}
}

func (s *ConsistencyService) load(ctx context.Context, id uuid.UUID) (*costing.CostRecord, *costing.StockLot, error) {
	record, err := s.records.FindByID(ctx, id)
	if err != nil {
		return nil, nil, err
	}
	if record.StockLotID == nil {
		return nil, nil, fmt.Errorf("%w: cost record %s has no stock lot", shared.ErrInvalidState, id)
	}
	lot, err := s.lots.FindByID(ctx, *record.StockLotID)
	if err != nil {
		return nil, nil, err
	}
	return record, lot, nil
}

// ValidateRecord reports every mismatch between a record and its stock lot
func (s *ConsistencyService) ValidateRecord(ctx context.Context, id uuid.UUID) (*ConsistencyReportResponse, error) {
	record, lot, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	report := s.validator.Validate(record, lot)
	return &ConsistencyReportResponse{
		RecordID:   record.ID,
		StockLotID: lot.ID,
		Valid:      report.Valid,
		Errors:     report.Errors,
	}, nil
}

// FixRecord copies the lot-derived fields into the record and saves it when
// anything changed
func (s *ConsistencyService) FixRecord(ctx context.Context, id uuid.UUID) (*FixRecordResponse, error) {
	record, lot, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}

	fixed := s.validator.Fix(record, lot)
	if fixed {
		if err := s.records.Save(ctx, record); err != nil {
			return nil, err
		}
		s.metrics.RecordRepaired(ctx, 1)
		s.logger.Info("Cost record repaired",
			zap.String("record_id", record.ID.String()),
			zap.String("sku", record.SKU),
		)
	}
	return &FixRecordResponse{
		RecordID: record.ID,
		Fixed:    fixed,
		Record:   ToCostRecordResponse(record),
	}, nil
}

// FixInconsistentRecords scans every record that references a stock lot and
// repairs it. Findings the fixer does not correct are reported as unresolved.
func (s *ConsistencyService) FixInconsistentRecords(ctx context.Context) (*RepairReport, error) {
	report := &RepairReport{Unresolved: make([]RecordFinding, 0)}

	for offset := 0; ; offset += s.pageSize {
		page, err := s.records.FindWithStockLot(ctx, offset, s.pageSize)
		if err != nil {
			return nil, err
		}

		for i := range page {
			record := &page[i]
			report.Scanned++

			lot, err := s.lots.FindByID(ctx, *record.StockLotID)
			if errors.Is(err, shared.ErrNotFound) {
				report.Unresolved = append(report.Unresolved, RecordFinding{
					RecordID: record.ID,
					Errors:   []string{fmt.Sprintf("Stock lot not found: %s", record.StockLotID)},
				})
				continue
			}
			if err != nil {
				return nil, err
			}

			if s.validator.Fix(record, lot) {
				if err := s.records.Save(ctx, record); err != nil {
					return nil, err
				}
				report.Fixed++
			}
			if residual := s.validator.Validate(record, lot); !residual.Valid {
				report.Unresolved = append(report.Unresolved, RecordFinding{RecordID: record.ID, Errors: residual.Errors})
			}
		}

		if len(page) < s.pageSize {
			break
		}
	}

	s.metrics.RecordRepaired(ctx, report.Fixed)
	s.logger.Info("Cost record repair completed",
		zap.Int("scanned", report.Scanned),
		zap.Int("fixed", report.Fixed),
		zap.Int("unresolved", len(report.Unresolved)),
	)
	return report, nil
}
