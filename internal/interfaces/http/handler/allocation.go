package handler

import (
	costingapp "github.com/erp/costing/internal/application/costing"
	"github.com/gin-gonic/gin"
)

// AllocationHandler serves allocation calculation and allocation rule endpoints
type AllocationHandler struct {
	BaseHandler
	allocationService *costingapp.AllocationService
}

// NewAllocationHandler creates a new AllocationHandler
func NewAllocationHandler(allocationService *costingapp.AllocationService) *AllocationHandler {
	return &AllocationHandler{allocationService: allocationService}
}

// Calculate handles POST /allocations/calculate
func (h *AllocationHandler) Calculate(c *gin.Context) {
	var req costingapp.CalculateAllocationRequest
	if !h.bindJSON(c, &req) {
		return
	}

	result, err := h.allocationService.CalculateAllocation(c.Request.Context(), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, result)
}

// ValidateTargets handles POST /allocations/validate-targets
func (h *AllocationHandler) ValidateTargets(c *gin.Context) {
	var req costingapp.ValidateTargetsRequest
	if !h.bindJSON(c, &req) {
		return
	}

	result, err := h.allocationService.ValidateTargets(c.Request.Context(), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, result)
}

// CreateRule handles POST /allocations/rules
func (h *AllocationHandler) CreateRule(c *gin.Context) {
	var req costingapp.CreateAllocationRuleRequest
	if !h.bindJSON(c, &req) {
		return
	}

	rule, err := h.allocationService.CreateRule(c.Request.Context(), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, rule)
}

// GetRule handles GET /allocations/rules/:id
func (h *AllocationHandler) GetRule(c *gin.Context) {
	id, ok := h.pathID(c, "allocation rule")
	if !ok {
		return
	}

	rule, err := h.allocationService.GetRule(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, rule)
}

// ListRules handles GET /allocations/rules
func (h *AllocationHandler) ListRules(c *gin.Context) {
	var filter costingapp.AllocationRuleListFilter
	if !h.bindQuery(c, &filter) {
		return
	}

	rules, total, err := h.allocationService.ListRules(c.Request.Context(), filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.SuccessWithMeta(c, rules, total, filter.Page, filter.PageSize)
}

// AllocateRule handles POST /allocations/rules/:id/allocate
func (h *AllocationHandler) AllocateRule(c *gin.Context) {
	id, ok := h.pathID(c, "allocation rule")
	if !ok {
		return
	}

	result, err := h.allocationService.AllocateRule(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, result)
}
