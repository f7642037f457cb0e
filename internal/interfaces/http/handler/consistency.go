package handler

import (
	costingapp "github.com/erp/costing/internal/application/costing"
	"github.com/gin-gonic/gin"
)

// ConsistencyHandler serves record-versus-lot validation and repair endpoints
type ConsistencyHandler struct {
	BaseHandler
	consistencyService *costingapp.ConsistencyService
}

// NewConsistencyHandler creates a new ConsistencyHandler
func NewConsistencyHandler(consistencyService *costingapp.ConsistencyService) *ConsistencyHandler {
	return &ConsistencyHandler{consistencyService: consistencyService}
}

// ValidateRecord handles GET /consistency/records/:id
func (h *ConsistencyHandler) ValidateRecord(c *gin.Context) {
	id, ok := h.pathID(c, "cost record")
	if !ok {
		return
	}

	report, err := h.consistencyService.ValidateRecord(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, report)
}

// FixRecord handles POST /consistency/records/:id/fix
func (h *ConsistencyHandler) FixRecord(c *gin.Context) {
	id, ok := h.pathID(c, "cost record")
	if !ok {
		return
	}

	result, err := h.consistencyService.FixRecord(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, result)
}

// Repair handles POST /consistency/repair
func (h *ConsistencyHandler) Repair(c *gin.Context) {
	report, err := h.consistencyService.FixInconsistentRecords(c.Request.Context())
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, report)
}
