package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	fiberlogger "github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/valyala/fasthttp/fasthttpadaptor"
	"go.uber.org/zap"

	"github.com/fleetops/fuelwatch/internal/adapter/cache"
	"github.com/fleetops/fuelwatch/internal/adapter/http/fiber/handlers"
	"github.com/fleetops/fuelwatch/internal/adapter/http/fiber/middleware"
	"github.com/fleetops/fuelwatch/internal/adapter/queue"
	"github.com/fleetops/fuelwatch/internal/adapter/storage/postgres"
	"github.com/fleetops/fuelwatch/internal/domain"
	"github.com/fleetops/fuelwatch/internal/observability/telemetry"
	"github.com/fleetops/fuelwatch/internal/ports"
	"github.com/fleetops/fuelwatch/internal/service/analysis"
	"github.com/fleetops/fuelwatch/internal/service/assignment"
	"github.com/fleetops/fuelwatch/internal/service/resolver"
	"github.com/fleetops/fuelwatch/internal/similarity"
	"github.com/fleetops/fuelwatch/pkg/config"
)

const (
	serviceName    = "fuelwatch-engine"
	serviceVersion = "v1.0.0"
)

func main() {
	// 1. Initialize Logger
	logger, err := zap.NewProduction()
	if err != nil {
		log.Fatal("Failed to initialize logger:", err)
	}
	defer logger.Sync()

	logger.Info("Starting FuelWatch Engine",
		zap.String("service", serviceName),
		zap.String("version", serviceVersion),
	)

	// 2. Load Configuration
	cfg, err := config.Load()
	if err != nil {
		logger.Fatal("Failed to load configuration", zap.Error(err))
	}

	// 3. Initialize OpenTelemetry (Distributed Tracing)
	if cfg.OpenTelemetry.Enabled {
		tracerProvider, err := telemetry.InitTracer(serviceName, cfg.OpenTelemetry.Jaeger.Endpoint)
		if err != nil {
			logger.Fatal("Failed to initialize tracer", zap.Error(err))
		}
		defer func() {
			if err := tracerProvider.Shutdown(context.Background()); err != nil {
				logger.Error("Error shutting down tracer provider", zap.Error(err))
			}
		}()
	}

	// 4. Initialize PostgreSQL Connection Pool
	db, err := postgres.NewConnection(cfg.Database.URL, logger)
	if err != nil {
		logger.Fatal("Failed to connect to database", zap.Error(err))
	}
	sqlDB, err := db.DB()
	if err != nil {
		logger.Fatal("Failed to get underlying SQL DB", zap.Error(err))
	}
	defer sqlDB.Close()

	// Run migrations
	if err := postgres.RunMigrations(db); err != nil {
		logger.Fatal("Failed to run migrations", zap.Error(err))
	}

	// 5. Initialize Cache (Redis with in-memory fallback)
	var appCache ports.Cache
	if cfg.Redis.URL != "" {
		appCache, err = cache.NewRedisCache(cfg.Redis.URL, logger)
		if err != nil {
			logger.Warn("Redis unavailable, falling back to local cache", zap.Error(err))
			appCache = cache.NewLocalCache(time.Minute, logger)
		}
	} else {
		appCache = cache.NewLocalCache(time.Minute, logger)
	}
	defer appCache.Close()

	// 6. Initialize Message Queue
	messageQueue, err := newMessageQueue(cfg, logger)
	if err != nil {
		logger.Fatal("Failed to connect to message broker", zap.Error(err))
	}
	defer messageQueue.Close()

	// 7. Initialize Repositories
	vehicleRepo := postgres.NewVehicleRepository(db, logger)
	cardRepo := postgres.NewFuelCardRepository(db, logger)
	stationRepo := postgres.NewGasStationRepository(db, logger)
	fuelTypeRepo := postgres.NewFuelTypeRepository(db, logger)
	profileRepo := postgres.NewNormalizationProfileRepository(db, logger)
	transactionRepo := postgres.NewTransactionRepository(db, logger)
	telemetryRepo := postgres.NewTelemetryRepository(db, logger)
	analysisRepo := postgres.NewAnalysisRepository(db, logger)

	// 8. Initialize Services (Business Logic Layer)
	scorer := similarity.NewLevenshteinScorer()
	resolverService := resolver.NewService(
		vehicleRepo, cardRepo, stationRepo, fuelTypeRepo, profileRepo,
		appCache, messageQueue, scorer, resolverConfig(cfg.Resolver), logger,
	)
	assignmentService := assignment.NewService(cardRepo, vehicleRepo, logger)
	analysisService := analysis.NewService(
		transactionRepo, vehicleRepo, stationRepo, telemetryRepo, analysisRepo,
		messageQueue, logger,
	)

	// 9. Initialize Fiber HTTP Server
	app := fiber.New(fiber.Config{
		AppName:               serviceName,
		ServerHeader:          serviceName,
		DisableStartupMessage: true,
		ErrorHandler:          middleware.ErrorHandler(logger),
	})

	// Global Middleware
	app.Use(recover.New())
	app.Use(fiberlogger.New())
	app.Use(middleware.NewCORS(cfg.CORS))
	if cfg.RateLimiting.Enabled {
		app.Use(middleware.RateLimit(cfg.RateLimiting.MaxRequests, cfg.RateLimiting.Window))
	}
	if cfg.CircuitBreaker.Enabled {
		app.Use(middleware.CircuitBreaker(logger))
	}

	// Health Check Endpoints
	app.Get("/health/live", func(c *fiber.Ctx) error {
		return c.SendString("OK")
	})
	app.Get("/health/ready", func(c *fiber.Ctx) error {
		if err := sqlDB.Ping(); err != nil {
			return c.Status(503).SendString("Database not ready")
		}
		if err := appCache.Ping(); err != nil {
			return c.Status(503).SendString("Cache not ready")
		}
		return c.SendString("Ready")
	})

	// Metrics endpoint for Prometheus
	app.Get("/metrics", func(c *fiber.Ctx) error {
		handler := fasthttpadaptor.NewFastHTTPHandler(promhttp.Handler())
		handler(c.Context())
		return nil
	})

	// API v1 Routes
	v1 := app.Group("/api/v1")
	if cfg.JWT.Enabled {
		v1.Use(middleware.AuthRequired(cfg.JWT.Secret))
	}

	// Resolution routes
	resolveHandler := handlers.NewResolveHandler(resolverService, logger)
	v1.Post("/resolve/vehicles", resolveHandler.ResolveVehicle)
	v1.Post("/resolve/cards", resolveHandler.ResolveCard)
	v1.Post("/resolve/stations", resolveHandler.ResolveGasStation)
	v1.Post("/resolve/fuel-types", resolveHandler.ResolveFuelType)
	v1.Post("/vehicles/merge", resolveHandler.MergeVehicles)

	// Dictionary routes
	dictHandler := handlers.NewDictionaryHandler(vehicleRepo, cardRepo, stationRepo, fuelTypeRepo, logger)
	v1.Get("/vehicles", dictHandler.ListVehicles)
	v1.Get("/vehicles/:id", dictHandler.GetVehicle)
	v1.Get("/cards/:id", dictHandler.GetCard)
	v1.Get("/stations/:id", dictHandler.GetGasStation)
	v1.Get("/fuel-types/:id", dictHandler.GetFuelType)

	// Assignment routes
	assignmentHandler := handlers.NewAssignmentHandler(assignmentService, logger)
	v1.Post("/cards/:id/assign", assignmentHandler.Assign)
	v1.Post("/cards/:id/unassign", assignmentHandler.Unassign)
	v1.Get("/cards/:id/assignments", assignmentHandler.History)

	// Transaction ingestion routes
	txHandler := handlers.NewTransactionHandler(resolverService, transactionRepo, logger)
	v1.Post("/transactions", txHandler.Ingest)
	v1.Get("/transactions/:id", txHandler.Get)

	// Telemetry ingestion routes
	telemetryHandler := handlers.NewTelemetryHandler(telemetryRepo, logger)
	v1.Post("/telemetry/refuels", telemetryHandler.IngestRefuel)
	v1.Post("/telemetry/locations", telemetryHandler.IngestLocation)

	// Analysis routes
	analysisHandler := handlers.NewAnalysisHandler(analysisService, analysisDefaults(cfg.Analysis), logger)
	v1.Post("/analysis/transactions/:id", analysisHandler.AnalyzeTransaction)
	v1.Post("/analysis/period", analysisHandler.AnalyzePeriod)
	v1.Get("/analysis/anomalies/stats", analysisHandler.AnomalyStats)

	// 10. Start Background Workers
	go startBackgroundWorkers(messageQueue, logger)

	// 11. Start HTTP Server
	go func() {
		logger.Info("Starting HTTP Server", zap.Int("port", cfg.HTTP.Port))
		if err := app.Listen(fmt.Sprintf(":%d", cfg.HTTP.Port)); err != nil {
			logger.Fatal("HTTP Server failed", zap.Error(err))
		}
	}()

	// 12. Graceful Shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(ctx); err != nil {
		logger.Fatal("Server forced to shutdown", zap.Error(err))
	}

	logger.Info("Server exited gracefully")
}

// newMessageQueue selects the broker from config. With no driver set the
// engine runs standalone and events are dropped.
func newMessageQueue(cfg *config.Config, logger *zap.Logger) (queue.MessageQueue, error) {
	switch cfg.Queue.Driver {
	case "nats":
		return queue.NewNATSQueue(cfg.Queue.URL, logger)
	case "rabbitmq":
		return queue.NewRabbitMQQueue(cfg.Queue.URL, logger)
	default:
		return queue.NewNoopQueue(logger), nil
	}
}

// resolverConfig overlays configured thresholds on the engine defaults.
func resolverConfig(rc config.ResolverConfig) resolver.Config {
	cfg := resolver.DefaultConfig()
	if rc.MergeThreshold > 0 {
		cfg.MergeThreshold = rc.MergeThreshold
	}
	if rc.WarnThreshold > 0 {
		cfg.WarnThreshold = rc.WarnThreshold
	}
	if rc.CardMergeThreshold > 0 {
		cfg.CardMergeThreshold = rc.CardMergeThreshold
	}
	if rc.CardWarnThreshold > 0 {
		cfg.CardWarnThreshold = rc.CardWarnThreshold
	}
	if rc.BatchSize > 0 {
		cfg.BatchSize = rc.BatchSize
	}
	if rc.MaxScanRows > 0 {
		cfg.MaxScanRows = rc.MaxScanRows
	}
	if rc.TopK > 0 {
		cfg.TopK = rc.TopK
	}
	return cfg
}

// analysisDefaults turns configured correlation tunables into request-level
// defaults. Nil when nothing is configured, so the engine defaults apply.
func analysisDefaults(ac config.AnalysisConfig) *domain.AnalysisParams {
	if ac.TimeWindowMinutes == 0 && ac.QuantityTolerancePercent == 0 &&
		ac.AZSRadiusMeters == 0 && ac.LargePurchaseFloorLiters == 0 {
		return nil
	}
	return &domain.AnalysisParams{
		TimeWindowMinutes:        ac.TimeWindowMinutes,
		QuantityTolerancePercent: ac.QuantityTolerancePercent,
		AZSRadiusMeters:          ac.AZSRadiusMeters,
		LargePurchaseFloorLiters: ac.LargePurchaseFloorLiters,
	}
}

// startBackgroundWorkers consumes engine events. The duplicate-suspected
// stream is logged for operator review; detected anomalies are logged at
// warn level so they surface in aggregated logs even without a broker
// consumer downstream.
func startBackgroundWorkers(mq queue.MessageQueue, logger *zap.Logger) {
	logger.Info("Starting background workers")

	mq.Subscribe(resolver.SubjectDuplicateSuspected, func(msg []byte) error {
		logger.Info("Possible duplicate dictionary entry", zap.ByteString("event", msg))
		return nil
	})

	mq.Subscribe(resolver.SubjectMerged, func(msg []byte) error {
		logger.Info("Dictionary entries merged", zap.ByteString("event", msg))
		return nil
	})

	mq.Subscribe(analysis.SubjectAnomalyDetected, func(msg []byte) error {
		logger.Warn("Fuel anomaly detected", zap.ByteString("event", msg))
		return nil
	})
}
