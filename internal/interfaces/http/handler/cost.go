package handler

import (
	costingapp "github.com/erp/costing/internal/application/costing"
	"github.com/erp/costing/internal/infrastructure/logger"
	"github.com/gin-gonic/gin"
)

// CostHandler serves unit-cost calculation and cost record endpoints
type CostHandler struct {
	BaseHandler
	costService *costingapp.CostService
}

// NewCostHandler creates a new CostHandler
func NewCostHandler(costService *costingapp.CostService) *CostHandler {
	return &CostHandler{costService: costService}
}

// Calculate handles POST /costs/calculate
func (h *CostHandler) Calculate(c *gin.Context) {
	var req costingapp.CalculateCostRequest
	if !h.bindJSON(c, &req) {
		return
	}
	scopeSKU(c, req.SKU)

	result, err := h.costService.CalculateCost(c.Request.Context(), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, result)
}

// BatchCalculate handles POST /costs/batch-calculate.
// Item failures are reported per item; only request-level errors fail the call.
func (h *CostHandler) BatchCalculate(c *gin.Context) {
	var req costingapp.BatchCalculateCostRequest
	if !h.bindJSON(c, &req) {
		return
	}

	items, err := h.costService.BatchCalculateCost(c.Request.Context(), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, items)
}

// Recalculate handles POST /costs/recalculate
func (h *CostHandler) Recalculate(c *gin.Context) {
	var req costingapp.RecalculateRequest
	if !h.bindJSON(c, &req) {
		return
	}

	results, err := h.costService.Recalculate(c.Request.Context(), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, results)
}

// RecordCost handles POST /costs/records. The operator defaults to the X-Operator header.
func (h *CostHandler) RecordCost(c *gin.Context) {
	var req costingapp.RecordCostRequest
	if !h.bindJSON(c, &req) {
		return
	}
	scopeSKU(c, req.SKU)
	if req.Operator == "" {
		req.Operator = logger.GetOperator(c.Request.Context())
	}

	record, err := h.costService.RecordCost(c.Request.Context(), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, record)
}

// GetRecord handles GET /costs/records/:id
func (h *CostHandler) GetRecord(c *gin.Context) {
	id, ok := h.pathID(c, "cost record")
	if !ok {
		return
	}

	record, err := h.costService.GetRecord(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, record)
}

// ListRecords handles GET /costs/records
func (h *CostHandler) ListRecords(c *gin.Context) {
	var filter costingapp.CostRecordListFilter
	if !h.bindQuery(c, &filter) {
		return
	}

	records, total, err := h.costService.ListRecords(c.Request.Context(), filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.SuccessWithMeta(c, records, total, filter.Page, filter.PageSize)
}

// CanCalculate handles GET /costs/can-calculate
func (h *CostHandler) CanCalculate(c *gin.Context) {
	var query costingapp.CanCalculateQuery
	if !h.bindQuery(c, &query) {
		return
	}
	scopeSKU(c, query.SKU)

	ok, err := h.costService.CanCalculate(c.Request.Context(), query.SKU, query.Quantity, query.Method)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	method := query.Method
	if method == "" {
		method = h.costService.DefaultMethod().String()
	}
	h.Success(c, costingapp.CanCalculateResponse{
		SKU:          query.SKU,
		Quantity:     query.Quantity,
		Method:       method,
		CanCalculate: ok,
	})
}

// Methods handles GET /costs/methods
func (h *CostHandler) Methods(c *gin.Context) {
	h.Success(c, h.costService.SupportedMethods())
}
