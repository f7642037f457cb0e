package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	costingapp "github.com/erp/costing/internal/application/costing"
	"github.com/erp/costing/internal/domain/costing"
	"github.com/erp/costing/internal/domain/shared"
	"github.com/erp/costing/internal/domain/shared/strategy"
	"github.com/erp/costing/internal/infrastructure/cache"
	"github.com/erp/costing/internal/infrastructure/config"
	"github.com/erp/costing/internal/infrastructure/event"
	"github.com/erp/costing/internal/infrastructure/lock"
	"github.com/erp/costing/internal/infrastructure/logger"
	"github.com/erp/costing/internal/infrastructure/persistence"
	infrastrategy "github.com/erp/costing/internal/infrastructure/strategy"
	"github.com/erp/costing/internal/infrastructure/telemetry"
	"github.com/erp/costing/internal/interfaces/http/handler"
	"github.com/erp/costing/internal/interfaces/http/middleware"
	"github.com/erp/costing/internal/interfaces/http/router"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// version is set at build time with -ldflags "-X main.version=..."
var version = "dev"

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("Failed to load configuration: " + err.Error())
	}

	log, err := logger.New(&logger.Config{
		Service:    cfg.App.Name,
		Level:      cfg.Log.Level,
		Format:     cfg.Log.Format,
		Output:     cfg.Log.Output,
	})
	if err != nil {
		panic("Failed to initialize logger: " + err.Error())
	}
	defer func() {
		_ = logger.Sync(log)
	}()

	log.Info("Starting costing engine",
		zap.String("app", cfg.App.Name),
		zap.String("env", cfg.App.Env),
		zap.String("port", cfg.App.Port),
		zap.String("version", version),
	)
	if cfg.App.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	ctx := context.Background()

	// Telemetry
	tracerProvider, err := telemetry.NewTracerProvider(ctx, telemetry.Config{
		Enabled:           cfg.Telemetry.Enabled,
		CollectorEndpoint: cfg.Telemetry.CollectorEndpoint,
		SamplingRatio:     cfg.Telemetry.SamplingRatio,
		ServiceName:       cfg.Telemetry.ServiceName,
		Insecure:          cfg.Telemetry.Insecure,
	}, log)
	if err != nil {
		log.Fatal("Failed to initialize tracer provider", zap.Error(err))
	}
	meterProvider, err := telemetry.NewMeterProvider(ctx, telemetry.MetricsConfig{
		Enabled:           cfg.Telemetry.Enabled,
		CollectorEndpoint: cfg.Telemetry.CollectorEndpoint,
		ExportInterval:    cfg.Telemetry.MetricsInterval,
		ServiceName:       cfg.Telemetry.ServiceName,
		Insecure:          cfg.Telemetry.Insecure,
	}, log)
	if err != nil {
		log.Fatal("Failed to initialize meter provider", zap.Error(err))
	}
	meter := meterProvider.Meter(cfg.Telemetry.ServiceName)

	// Database
	dbOpts := []persistence.Option{
		persistence.WithLogger(logger.NewGormLogger(log, logger.MapGormLogLevel(cfg.Log.Level),
			logger.WithParameterizedQueries(!cfg.Telemetry.DBLogFullSQL),
		)),
	}
	if cfg.Telemetry.DBTraceEnabled {
		dbOpts = append(dbOpts, persistence.WithTracing(cfg.Database.DBName, cfg.Telemetry.DBLogFullSQL))
	}
	db, err := persistence.NewDatabase(&cfg.Database, dbOpts...)
	if err != nil {
		log.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer func() {
		if stats, err := db.Stats(); err == nil {
			log.Info("Database pool at shutdown",
				zap.Int("open", stats.OpenConnections),
				zap.Int("in_use", stats.InUse),
				zap.Int64("wait_count", stats.WaitCount),
				zap.Duration("wait_duration", stats.WaitDuration),
			)
		}
		if err := db.Close(); err != nil {
			log.Error("Error closing database", zap.Error(err))
		}
	}()
	log.Info("Database connected successfully")

	// Redis is optional; without it standard costs are read uncached and SKU locks are in-process
	var redisClient *redis.Client
	if cfg.Redis.Enabled {
		redisClient, err = cache.NewRedisClient(ctx, cfg.Redis)
		if err != nil {
			log.Fatal("Failed to connect to Redis", zap.Error(err))
		}
		defer func() {
			if err := redisClient.Close(); err != nil {
				log.Error("Error closing Redis client", zap.Error(err))
			}
		}()
		log.Info("Redis connected", zap.String("addr", cfg.Redis.Addr()))
	}

	// Repositories
	stockLotRepo := persistence.NewGormStockLotRepository(db.DB)
	costRecordRepo := persistence.NewGormCostRecordRepository(db.DB)
	costPeriodRepo := persistence.NewGormCostPeriodRepository(db.DB)
	costAllocationRepo := persistence.NewGormCostAllocationRepository(db.DB)
	var standardCostRepo costing.StandardCostRepository = persistence.NewGormStandardCostRepository(db.DB)
	if redisClient != nil {
		standardCostRepo = cache.NewStandardCostCache(standardCostRepo, redisClient, cfg.Costing.StandardCostCacheTTL, log)
	}

	// Strategies are registered once at startup and the registry is sealed
	registry, err := infrastrategy.NewRegistryWithDefaults(stockLotRepo, standardCostRepo)
	if err != nil {
		log.Fatal("Failed to register costing strategies", zap.Error(err))
	}
	registry.Seal()
	log.Info("Costing strategies registered", zap.Any("counts", registry.Stats()))

	costingMetrics, err := telemetry.NewCostingMetrics(telemetry.CostingMetricsConfig{Meter: meter, Logger: log})
	if err != nil {
		log.Fatal("Failed to initialize costing metrics", zap.Error(err))
	}

	lockOpts := []lock.Option{
		lock.WithRetry(50*time.Millisecond, 20),
		lock.WithLockerLogger(log),
	}
	var locker shared.Locker = lock.NewMutexLocker(lockOpts...)
	if redisClient != nil {
		locker = lock.NewRedisLocker(redisClient, lockOpts...)
	}

	// Application services
	costService := costingapp.NewCostService(registry, costRecordRepo, costPeriodRepo, log,
		costingapp.WithDefaultMethod(strategy.CostMethod(cfg.Costing.DefaultMethod)),
		costingapp.WithLocker(locker, cfg.Costing.LockTTL),
		costingapp.WithRecordTolerance(decimal.NewFromFloat(cfg.Costing.RecordTolerance)),
	)
	costService.SetMetrics(costingMetrics)

	allocationService := costingapp.NewAllocationService(registry, costAllocationRepo, costRecordRepo, costPeriodRepo, log)
	allocationService.SetBalanceTolerance(decimal.NewFromFloat(cfg.Costing.AllocationBalanceTolerance))
	allocationService.SetMetrics(costingMetrics)

	eventBus := event.NewInMemoryEventBus(log)
	eventBus.Subscribe(event.NewPeriodAuditHandler(log))

	periodService := costingapp.NewPeriodService(costPeriodRepo, log)
	periodService.SetEventPublisher(eventBus)
	periodService.SetMetrics(costingMetrics)

	consistencyValidator := costing.NewConsistencyValidator(decimal.NewFromFloat(cfg.Costing.ConsistencyTolerance))
	consistencyService := costingapp.NewConsistencyService(costRecordRepo, stockLotRepo, consistencyValidator, log)
	consistencyService.SetMetrics(costingMetrics)

	stockService := costingapp.NewStockService(stockLotRepo, standardCostRepo, log)
	stockService.SetLocker(locker, cfg.Costing.LockTTL)

	// HTTP
	if err := middleware.SetupValidator(); err != nil {
		log.Fatal("Failed to register request validators", zap.Error(err))
	}

	systemHandler := handler.NewSystemHandler(cfg.App.Name, version)
	systemHandler.AddCheck("database", db.Ping)
	if redisClient != nil {
		systemHandler.AddCheck("redis", func(ctx context.Context) error { return redisClient.Ping(ctx).Err() })
	}

	engine := router.NewEngine(router.EngineConfig{
		Logger: log,
		Tracing: middleware.TracingConfig{
			ServiceName: cfg.Telemetry.ServiceName,
			Enabled:     tracerProvider.IsEnabled(),
		},
		CORS:        middleware.CORSConfigFromHTTP(cfg.HTTP),
		MaxBodySize: cfg.HTTP.MaxBodySize,
		Meter:       meter,
	}, router.Handlers{
		System:      systemHandler,
		Cost:        handler.NewCostHandler(costService),
		Allocation:  handler.NewAllocationHandler(allocationService),
		Period:      handler.NewPeriodHandler(periodService),
		Consistency: handler.NewConsistencyHandler(consistencyService),
		Stock:       handler.NewStockHandler(stockService),
		Strategy:    handler.NewStrategyHandler(costService, allocationService),
	})

	srv := &http.Server{
		Addr:           ":" + cfg.App.Port,
		Handler:        engine,
		ReadTimeout:    cfg.HTTP.ReadTimeout,
		WriteTimeout:   cfg.HTTP.WriteTimeout,
		IdleTimeout:    cfg.HTTP.IdleTimeout,
		MaxHeaderBytes: cfg.HTTP.MaxHeaderBytes,
	}

	go func() {
		log.Info("Server starting", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("Server forced to shutdown", zap.Error(err))
	}
	if err := meterProvider.Shutdown(shutdownCtx); err != nil {
		log.Error("Failed to flush metrics", zap.Error(err))
	}
	if err := tracerProvider.Shutdown(shutdownCtx); err != nil {
		log.Error("Failed to flush traces", zap.Error(err))
	}

	log.Info("Server exited gracefully")
}
