package persistence

import (
	"strings"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/erp/costing/internal/domain/shared"
)

// sortColumns is the set of columns a listing may be ordered by
type sortColumns map[string]struct{}

func columns(names ...string) sortColumns {
	set := sortColumns{"id": {}, "created_at": {}, "updated_at": {}}
	for _, n := range names {
		set[n] = struct{}{}
	}
	return set
}

var (
	costRecordSorts = columns("sku", "method", "quantity", "unit_cost", "total_cost", "recorded_at")
	allocationSorts = columns("name", "method", "total_amount", "effective_date")
	periodSorts     = columns("name", "start_date", "end_date", "status")
)

// orderBy resolves a caller-supplied ordering against the allowed columns.
// Unknown columns fall back to fallback; anything other than "asc" sorts descending.
func (s sortColumns) orderBy(field, dir, fallback string) clause.OrderByColumn {
	field = strings.TrimSpace(field)
	if _, ok := s[field]; !ok {
		field = fallback
	}
	return clause.OrderByColumn{
		Column: clause.Column{Name: field},
		Desc:   !strings.EqualFold(strings.TrimSpace(dir), "asc"),
	}
}

// applyPaging applies whitelisted ordering and page bounds to a query
func applyPaging(query *gorm.DB, filter shared.Filter, allowed sortColumns, fallback string) *gorm.DB {
	query = query.Order(allowed.orderBy(filter.OrderBy, filter.OrderDir, fallback))
	if filter.PageSize > 0 {
		query = query.Offset(filter.Offset()).Limit(filter.PageSize)
	}
	return query
}
