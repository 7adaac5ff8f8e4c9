package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	activityapp "github.com/commerce/backoffice/internal/application/activity"
	catalogapp "github.com/commerce/backoffice/internal/application/catalog"
	identityapp "github.com/commerce/backoffice/internal/application/identity"
	inventoryapp "github.com/commerce/backoffice/internal/application/inventory"
	orderapp "github.com/commerce/backoffice/internal/application/order"
	storeapp "github.com/commerce/backoffice/internal/application/store"
	"github.com/commerce/backoffice/internal/domain/order"
	"github.com/commerce/backoffice/internal/infrastructure/auth"
	"github.com/commerce/backoffice/internal/infrastructure/cache"
	"github.com/commerce/backoffice/internal/infrastructure/config"
	"github.com/commerce/backoffice/internal/infrastructure/event"
	"github.com/commerce/backoffice/internal/infrastructure/logger"
	"github.com/commerce/backoffice/internal/infrastructure/persistence"
	"github.com/commerce/backoffice/internal/infrastructure/scheduler"
	"github.com/commerce/backoffice/internal/infrastructure/telemetry"
	"github.com/commerce/backoffice/internal/interfaces/http/handler"
	"github.com/commerce/backoffice/internal/interfaces/http/middleware"
	"github.com/commerce/backoffice/internal/interfaces/http/router"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// maxRequestBody caps incoming request bodies. Bulk product imports are the
// largest expected payload and stay well under this.
const maxRequestBody = 4 << 20

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		panic("Failed to load configuration: " + err.Error())
	}

	// Initialize logger
	log, err := logger.New(&logger.Config{
		Level:  cfg.Log.Level,
		Format: cfg.Log.Format,
		Output: cfg.Log.Output,
	})
	if err != nil {
		panic("Failed to initialize logger: " + err.Error())
	}
	defer func() {
		_ = log.Sync()
	}()

	log.Info("Starting back office",
		zap.String("app", cfg.App.Name),
		zap.String("env", cfg.App.Env),
		zap.String("port", cfg.App.Port),
	)

	// Initialize tracing. Disabled by default; when enabled, spans flow
	// to the OTLP collector and the gin and gorm layers attach to it.
	telemetryCfg := telemetry.Config{
		Enabled:           cfg.Telemetry.Enabled,
		CollectorEndpoint: cfg.Telemetry.CollectorEndpoint,
		SamplingRatio:     cfg.Telemetry.SamplingRatio,
		ServiceName:       cfg.App.Name,
		Insecure:          cfg.Telemetry.Insecure,
	}
	tracerProvider, err := telemetry.NewTracerProvider(context.Background(), telemetryCfg, log)
	if err != nil {
		log.Fatal("Failed to initialize tracer provider", zap.Error(err))
	}
	defer func() {
		if err := tracerProvider.Shutdown(context.Background()); err != nil {
			log.Error("Error shutting down tracer provider", zap.Error(err))
		}
	}()

	// Create GORM logger backed by zap
	gormLog := logger.NewGormLogger(log, logger.MapGormLogLevel(cfg.Log.Level))

	// Initialize database connection with custom logger
	db, err := persistence.NewDatabaseWithLogger(&cfg.Database, gormLog)
	if err != nil {
		log.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Error("Error closing database", zap.Error(err))
		}
	}()
	log.Info("Database connected successfully")

	if err := telemetry.RegisterDBTracing(db.DB, telemetryCfg, log); err != nil {
		log.Fatal("Failed to register database tracing", zap.Error(err))
	}

	// Initialize repositories
	productRepo := persistence.NewGormProductRepository(db.DB)
	categoryRepo := persistence.NewGormCategoryRepository(db.DB)
	membershipRepo := persistence.NewGormMembershipRepository(db.DB)
	tenantRepo := persistence.NewGormTenantRepository(db.DB)
	activityRepo := persistence.NewGormActivityRepository(db.DB)
	txScope := persistence.NewGormTransactionScope(db.DB)

	// Initialize application services
	gate := identityapp.NewPermissionService(membershipRepo)
	ledgerService := inventoryapp.NewLedgerService(txScope, gate)
	ledgerService.SetLowStockThreshold(cfg.Inventory.LowStockThreshold)
	workflowService := orderapp.NewWorkflowService(txScope, ledgerService, gate, order.TransitionPolicy{
		AllowEarlyRefund: cfg.Order.AllowEarlyRefund,
	})
	productService := catalogapp.NewProductService(productRepo, categoryRepo, activityRepo, gate)
	importService := catalogapp.NewImportService(productRepo, activityRepo, gate)
	memberService := identityapp.NewMemberService(membershipRepo, activityRepo, gate)
	recorder := activityapp.NewRecorder(activityRepo, log, cfg.Activity.Retention)

	// Cart storage: Redis when reachable, in-memory otherwise
	cartFactory := cache.NewCartStoreFactory(cfg.Redis,
		cache.WithLogger(log),
		cache.WithCartTTL(cfg.Store.CartTTL),
	)
	cartStore, err := cartFactory.CreateStore()
	if err != nil {
		log.Fatal("Failed to create cart store", zap.Error(err))
	}
	storefrontService := storeapp.NewStorefrontService(tenantRepo, productService, workflowService, cartStore)

	// JWT authentication
	jwtService := auth.NewJWTService(cfg.JWT)

	// Initialize event bus and the low stock read model
	eventBus := event.NewInMemoryEventBus(log)
	lowStockMonitor := inventoryapp.NewLowStockMonitor(log)
	eventBus.Subscribe(lowStockMonitor)

	if err := eventBus.Start(context.Background()); err != nil {
		log.Fatal("Failed to start event bus", zap.Error(err))
	}
	defer func() {
		if err := eventBus.Stop(context.Background()); err != nil {
			log.Error("Error stopping event bus", zap.Error(err))
		}
	}()

	// Inject event bus into services that publish events
	ledgerService.SetEventPublisher(eventBus)
	workflowService.SetEventPublisher(eventBus)
	productService.SetEventPublisher(eventBus)
	memberService.SetEventPublisher(eventBus)

	// Maintenance scheduler: activity retention purge plus the cart sweep
	// when carts live in memory (Redis carts expire on their own)
	var sweeper scheduler.CartSweeper
	if inMemory, ok := cartStore.(*cache.InMemoryCartStore); ok {
		sweeper = inMemory
	}
	maintenance := scheduler.NewMaintenanceScheduler(scheduler.Config{
		Enabled:              cfg.Scheduler.Enabled,
		ActivityCronSchedule: cfg.Scheduler.ActivityCronSchedule,
		CartSweepInterval:    cfg.Scheduler.CartSweepInterval,
	}, recorder, sweeper, log)
	if err := maintenance.Start(); err != nil {
		log.Fatal("Failed to start maintenance scheduler", zap.Error(err))
	}
	defer func() {
		stopCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := maintenance.Stop(stopCtx); err != nil {
			log.Error("Error stopping maintenance scheduler", zap.Error(err))
		}
	}()

	// Set Gin mode based on environment
	if cfg.App.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	// Setup validation
	middleware.SetupValidator()

	engine := gin.New()

	// Configure trusted proxies
	if len(cfg.HTTP.TrustedProxies) > 0 {
		if err := engine.SetTrustedProxies(cfg.HTTP.TrustedProxies); err != nil {
			log.Warn("Failed to set trusted proxies", zap.Error(err))
		}
	}

	// Apply middleware stack in order:
	// 1. RequestID - Generate/propagate request ID
	// 2. Recovery - Catch panics
	// 3. Logger - Log requests
	// 4. CORS - Handle cross-origin requests
	// 5. BodyLimit - Limit request body size
	engine.Use(middleware.RequestID())
	engine.Use(middleware.Tracing(middleware.TracingConfig{
		ServiceName: cfg.App.Name,
		Enabled:     cfg.Telemetry.Enabled,
	}))
	engine.Use(logger.Recovery(log))
	engine.Use(logger.GinMiddleware(log))
	engine.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins:     cfg.HTTP.CORSAllowOrigins,
		AllowMethods:     cfg.HTTP.CORSAllowMethods,
		AllowHeaders:     cfg.HTTP.CORSAllowHeaders,
		ExposeHeaders:    []string{"X-Request-ID", handler.CartTokenHeader},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))
	engine.Use(middleware.BodyLimit(maxRequestBody))

	// Setup API routes: the back office API requires a bearer token, the
	// storefront surface is public and tenant-scoped by slug. The router
	// also owns GET /health, wired here to the DB-aware handler.
	r := router.NewRouter(engine,
		router.WithAPIVersion("v1"),
		router.WithHealthHandler(healthHandler(db)),
		router.WithAuthMiddleware(
			middleware.AuthMiddleware(jwtService, log),
			middleware.TracingAttributes(),
		),
	)
	r.RegisterAPI(handler.NewProductHandler(productService, importService))
	r.RegisterAPI(handler.NewInventoryHandler(ledgerService, lowStockMonitor))
	r.RegisterAPI(handler.NewOrderHandler(workflowService))
	r.RegisterAPI(handler.NewMemberHandler(memberService))
	r.RegisterAPI(handler.NewActivityHandler(recorder))
	r.RegisterPublic(handler.NewStoreHandler(storefrontService))
	r.Setup()

	// Create HTTP server with config
	srv := &http.Server{
		Addr:           ":" + cfg.App.Port,
		Handler:        engine,
		ReadTimeout:    cfg.HTTP.ReadTimeout,
		WriteTimeout:   cfg.HTTP.WriteTimeout,
		IdleTimeout:    cfg.HTTP.IdleTimeout,
		MaxHeaderBytes: cfg.HTTP.MaxHeaderBytes,
	}

	// Start server in goroutine
	go func() {
		log.Info("Server starting", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal("Server forced to shutdown", zap.Error(err))
	}

	log.Info("Server exited gracefully")
}

// healthHandler returns a handler for health check endpoints
func healthHandler(db *persistence.Database) gin.HandlerFunc {
	return func(c *gin.Context) {
		if err := db.Ping(); err != nil {
			logger.GetGinLogger(c).Warn("Health check failed", zap.Error(err))
			c.JSON(http.StatusServiceUnavailable, gin.H{
				"status":   "unhealthy",
				"time":     time.Now().Format(time.RFC3339),
				"database": "error",
			})
			return
		}
		c.JSON(http.StatusOK, gin.H{
			"status":   "healthy",
			"time":     time.Now().Format(time.RFC3339),
			"database": "ok",
		})
	}
}
