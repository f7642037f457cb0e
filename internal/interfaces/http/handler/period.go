package handler

import (
	"context"
	"time"

	costingapp "github.com/erp/costing/internal/application/costing"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// PeriodHandler serves cost period lifecycle endpoints
type PeriodHandler struct {
	BaseHandler
	periodService *costingapp.PeriodService
}

// NewPeriodHandler creates a new PeriodHandler
func NewPeriodHandler(periodService *costingapp.PeriodService) *PeriodHandler {
	return &PeriodHandler{periodService: periodService}
}

// Create handles POST /periods
func (h *PeriodHandler) Create(c *gin.Context) {
	var req costingapp.CreatePeriodRequest
	if !h.bindJSON(c, &req) {
		return
	}

	period, err := h.periodService.Create(c.Request.Context(), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, period)
}

// List handles GET /periods
func (h *PeriodHandler) List(c *gin.Context) {
	var filter costingapp.PeriodListFilter
	if !h.bindQuery(c, &filter) {
		return
	}

	periods, total, err := h.periodService.List(c.Request.Context(), filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.SuccessWithMeta(c, periods, total, filter.Page, filter.PageSize)
}

// FindByDate handles GET /periods/by-date?date=YYYY-MM-DD
func (h *PeriodHandler) FindByDate(c *gin.Context) {
	raw := c.Query("date")
	if raw == "" {
		h.BadRequest(c, "date query parameter is required")
		return
	}
	date, err := time.Parse(time.DateOnly, raw)
	if err != nil {
		h.BadRequest(c, "date must be formatted as YYYY-MM-DD")
		return
	}

	period, err := h.periodService.FindByDate(c.Request.Context(), date)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, period)
}

// Get handles GET /periods/:id
func (h *PeriodHandler) Get(c *gin.Context) {
	id, ok := h.pathID(c, "cost period")
	if !ok {
		return
	}

	period, err := h.periodService.Get(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, period)
}

// Close handles POST /periods/:id/close
func (h *PeriodHandler) Close(c *gin.Context) {
	h.transition(c, h.periodService.Close)
}

// Freeze handles POST /periods/:id/freeze
func (h *PeriodHandler) Freeze(c *gin.Context) {
	h.transition(c, h.periodService.Freeze)
}

// Unfreeze handles POST /periods/:id/unfreeze
func (h *PeriodHandler) Unfreeze(c *gin.Context) {
	h.transition(c, h.periodService.Unfreeze)
}

// Restore handles POST /periods/:id/restore
func (h *PeriodHandler) Restore(c *gin.Context) {
	h.transition(c, h.periodService.Restore)
}

type periodTransition func(context.Context, uuid.UUID) (*costingapp.PeriodResponse, error)

func (h *PeriodHandler) transition(c *gin.Context, apply periodTransition) {
	id, ok := h.pathID(c, "cost period")
	if !ok {
		return
	}

	period, err := apply(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, period)
}

// CanClose handles GET /periods/:id/can-close
func (h *PeriodHandler) CanClose(c *gin.Context) {
	id, ok := h.pathID(c, "cost period")
	if !ok {
		return
	}

	result, err := h.periodService.CanClose(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, result)
}

// Delete handles DELETE /periods/:id. Deletion is soft and allowed in any status.
func (h *PeriodHandler) Delete(c *gin.Context) {
	id, ok := h.pathID(c, "cost period")
	if !ok {
		return
	}

	if err := h.periodService.Delete(c.Request.Context(), id); err != nil {
		h.HandleError(c, err)
		return
	}
	h.NoContent(c)
}
