package handler

import (
	"strings"

	costingapp "github.com/erp/costing/internal/application/costing"
	"github.com/gin-gonic/gin"
)

// StockHandler serves stock lot and standard cost endpoints
type StockHandler struct {
	BaseHandler
	stockService *costingapp.StockService
}

// NewStockHandler creates a new StockHandler
func NewStockHandler(stockService *costingapp.StockService) *StockHandler {
	return &StockHandler{stockService: stockService}
}

// RegisterLot handles POST /stock/lots
func (h *StockHandler) RegisterLot(c *gin.Context) {
	var req costingapp.RegisterLotRequest
	if !h.bindJSON(c, &req) {
		return
	}
	scopeSKU(c, req.SKU)

	lot, err := h.stockService.RegisterLot(c.Request.Context(), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, lot)
}

// GetLot handles GET /stock/lots/:id
func (h *StockHandler) GetLot(c *gin.Context) {
	id, ok := h.pathID(c, "stock lot")
	if !ok {
		return
	}

	lot, err := h.stockService.GetLot(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, lot)
}

// ConsumeLot handles POST /stock/lots/:id/consume
func (h *StockHandler) ConsumeLot(c *gin.Context) {
	id, ok := h.pathID(c, "stock lot")
	if !ok {
		return
	}
	var req costingapp.ConsumeLotRequest
	if !h.bindJSON(c, &req) {
		return
	}

	lot, err := h.stockService.ConsumeLot(c.Request.Context(), id, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, lot)
}

// StockSummary handles GET /stock/skus/:sku
func (h *StockHandler) StockSummary(c *gin.Context) {
	sku, ok := h.skuParam(c)
	if !ok {
		return
	}

	summary, err := h.stockService.StockSummary(c.Request.Context(), sku)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, summary)
}

// SetStandardCost handles PUT /stock/skus/:sku/standard-cost
func (h *StockHandler) SetStandardCost(c *gin.Context) {
	sku, ok := h.skuParam(c)
	if !ok {
		return
	}
	var req costingapp.SetStandardCostRequest
	if !h.bindJSON(c, &req) {
		return
	}

	cost, err := h.stockService.SetStandardCost(c.Request.Context(), sku, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, cost)
}

// GetStandardCost handles GET /stock/skus/:sku/standard-cost
func (h *StockHandler) GetStandardCost(c *gin.Context) {
	sku, ok := h.skuParam(c)
	if !ok {
		return
	}

	cost, err := h.stockService.GetStandardCost(c.Request.Context(), sku)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, cost)
}

func (h *StockHandler) skuParam(c *gin.Context) (string, bool) {
	sku := strings.TrimSpace(c.Param("sku"))
	if sku == "" {
		h.BadRequest(c, "SKU is required")
		return "", false
	}
	scopeSKU(c, sku)
	return sku, true
}
