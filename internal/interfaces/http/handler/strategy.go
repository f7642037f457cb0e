package handler

import (
	costingapp "github.com/erp/costing/internal/application/costing"
	"github.com/gin-gonic/gin"
)

// StrategyHandler lists the registered cost and allocation strategies
type StrategyHandler struct {
	BaseHandler
	costService       *costingapp.CostService
	allocationService *costingapp.AllocationService
}

// NewStrategyHandler creates a new StrategyHandler
func NewStrategyHandler(costService *costingapp.CostService, allocationService *costingapp.AllocationService) *StrategyHandler {
	return &StrategyHandler{
		costService:       costService,
		allocationService: allocationService,
	}
}

// StrategiesResponse groups strategies by kind
type StrategiesResponse struct {
	DefaultCostMethod string                        `json:"default_cost_method"`
	Cost              []costingapp.StrategyResponse `json:"cost"`
	Allocation        []costingapp.StrategyResponse `json:"allocation"`
}

// ListStrategies handles GET /strategies
func (h *StrategyHandler) ListStrategies(c *gin.Context) {
	h.Success(c, StrategiesResponse{
		DefaultCostMethod: string(h.costService.DefaultMethod()),
		Cost:              h.costService.Strategies(),
		Allocation:        h.allocationService.Strategies(),
	})
}
