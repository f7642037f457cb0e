package router

import (
	"github.com/erp/costing/internal/infrastructure/logger"
	"github.com/erp/costing/internal/interfaces/http/handler"
	"github.com/erp/costing/internal/interfaces/http/middleware"
	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/otel/metric"
	"go.uber.org/zap"
)

// Handlers holds the handlers mounted by NewEngine
type Handlers struct {
	System      *handler.SystemHandler
	Cost        *handler.CostHandler
	Allocation  *handler.AllocationHandler
	Period      *handler.PeriodHandler
	Consistency *handler.ConsistencyHandler
	Stock       *handler.StockHandler
	Strategy    *handler.StrategyHandler
}

// EngineConfig configures the global middleware chain
type EngineConfig struct {
	Logger      *zap.Logger
	Tracing     middleware.TracingConfig
	CORS        middleware.CORSConfig
	MaxBodySize int64
	Meter       metric.Meter
}

// NewEngine builds the gin engine with the global middleware chain and every
// costing route mounted under /api/v1.
func NewEngine(cfg EngineConfig, h Handlers) *gin.Engine {
	log := cfg.Logger
	if log == nil {
		log = zap.NewNop()
	}

	engine := gin.New()
	engine.Use(
		logger.Recovery(log),
		middleware.RequestID(),
		middleware.Tracing(cfg.Tracing),
		middleware.TracingAttributeInjector(),
		middleware.SpanErrorMarker(),
		logger.GinMiddleware(log),
		middleware.HTTPMetrics(cfg.Meter, log),
		middleware.CORS(cfg.CORS),
		middleware.BodyLimit(cfg.MaxBodySize),
	)

	r := NewRouter(engine)
	for _, g := range CostingGroups(h) {
		r.Register(g)
	}
	r.Setup()
	return engine
}

// CostingGroups returns the route groups of the costing API
func CostingGroups(h Handlers) []*DomainGroup {
	system := NewDomainGroup("system", "").
		GET("/health", h.System.Health)

	costs := NewDomainGroup("costs", "/costs").
		POST("/calculate", h.Cost.Calculate).
		POST("/batch-calculate", h.Cost.BatchCalculate).
		POST("/recalculate", h.Cost.Recalculate).
		POST("/records", h.Cost.RecordCost).
		GET("/records", h.Cost.ListRecords).
		GET("/records/:id", h.Cost.GetRecord).
		GET("/can-calculate", h.Cost.CanCalculate).
		GET("/methods", h.Cost.Methods)

	allocations := NewDomainGroup("allocations", "/allocations").
		POST("/calculate", h.Allocation.Calculate).
		POST("/validate-targets", h.Allocation.ValidateTargets).
		POST("/rules", h.Allocation.CreateRule).
		GET("/rules", h.Allocation.ListRules).
		GET("/rules/:id", h.Allocation.GetRule).
		POST("/rules/:id/allocate", h.Allocation.AllocateRule)

	periods := NewDomainGroup("periods", "/periods").
		POST("", h.Period.Create).
		GET("", h.Period.List).
		GET("/by-date", h.Period.FindByDate).
		GET("/:id", h.Period.Get).
		POST("/:id/close", h.Period.Close).
		POST("/:id/freeze", h.Period.Freeze).
		POST("/:id/unfreeze", h.Period.Unfreeze).
		GET("/:id/can-close", h.Period.CanClose).
		DELETE("/:id", h.Period.Delete).
		POST("/:id/restore", h.Period.Restore)

	consistency := NewDomainGroup("consistency", "/consistency").
		GET("/records/:id", h.Consistency.ValidateRecord).
		POST("/records/:id/fix", h.Consistency.FixRecord).
		POST("/repair", h.Consistency.Repair)

	stock := NewDomainGroup("stock", "/stock").
		POST("/lots", h.Stock.RegisterLot).
		GET("/lots/:id", h.Stock.GetLot).
		POST("/lots/:id/consume", h.Stock.ConsumeLot).
		GET("/skus/:sku", h.Stock.StockSummary).
		GET("/skus/:sku/standard-cost", h.Stock.GetStandardCost).
		PUT("/skus/:sku/standard-cost", h.Stock.SetStandardCost)

	strategies := NewDomainGroup("strategies", "/strategies").
		GET("", h.Strategy.ListStrategies)

	return []*DomainGroup{system, costs, allocations, periods, consistency, stock, strategies}
}
