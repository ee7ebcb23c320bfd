package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	appaccounting "github.com/farmops/backend/internal/application/accounting"
	"github.com/farmops/backend/internal/infrastructure/auth"
	"github.com/farmops/backend/internal/infrastructure/cache"
	"github.com/farmops/backend/internal/infrastructure/config"
	"github.com/farmops/backend/internal/infrastructure/einvoice"
	"github.com/farmops/backend/internal/infrastructure/logger"
	"github.com/farmops/backend/internal/infrastructure/persistence"
	"github.com/farmops/backend/internal/infrastructure/scheduler"
	"github.com/farmops/backend/internal/infrastructure/storage"
	"github.com/farmops/backend/internal/interfaces/http/handler"
	"github.com/farmops/backend/internal/interfaces/http/middleware"
	"github.com/farmops/backend/internal/interfaces/http/router"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		panic("Failed to load configuration: " + err.Error())
	}

	// Initialize logger
	log, err := logger.New(&logger.Config{
		Level:      cfg.Log.Level,
		Format:     cfg.Log.Format,
		Output:     cfg.Log.Output,
		TimeFormat: "2006-01-02T15:04:05.000Z07:00",
	})
	if err != nil {
		panic("Failed to initialize logger: " + err.Error())
	}
	defer func() {
		_ = log.Sync()
	}()

	log.Info("Starting FarmOps Backend",
		zap.String("app", cfg.App.Name),
		zap.String("env", cfg.App.Env),
		zap.String("port", cfg.App.Port),
	)

	// Create GORM logger backed by zap
	gormLogLevel := logger.MapGormLogLevel(cfg.Log.Level)
	gormLog := logger.NewGormLogger(log, gormLogLevel)

	// Initialize database connection with custom logger
	db, err := persistence.NewDatabaseWithCustomLogger(&cfg.Database, gormLog)
	if err != nil {
		log.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Error("Error closing database", zap.Error(err))
		}
	}()
	log.Info("Database connected successfully")

	// Deduplication store for exchange sync runs
	seenStore, err := cache.NewRedisSeenStore(&cfg.Redis)
	if err != nil {
		log.Fatal("Failed to connect to Redis", zap.Error(err))
	}
	defer func() {
		if err := seenStore.Close(); err != nil {
			log.Error("Error closing Redis connection", zap.Error(err))
		}
	}()
	log.Info("Redis connected successfully")

	// Object storage for invoice attachments
	fileStore, err := storage.NewS3FileStore(&cfg.Storage)
	if err != nil {
		log.Fatal("Failed to initialize object storage", zap.Error(err))
	}
	{
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		if err := fileStore.EnsureBucket(ctx); err != nil {
			log.Fatal("Failed to ensure storage bucket", zap.Error(err))
		}
		cancel()
	}
	log.Info("Object storage ready", zap.String("bucket", fileStore.GetBucket()))

	// E-invoice exchange client and XML parser
	exchangeClient := einvoice.NewExchangeClient(&cfg.Exchange, log)
	xmlParser := einvoice.NewParser()

	// Unit of work binding all repositories to one transaction
	uow := persistence.NewGormUnitOfWork(db.DB)

	// Application services
	assignmentService := appaccounting.NewAssignmentService(xmlParser, log)
	contractorResolver := appaccounting.NewContractorResolver(log)
	moduleSync := appaccounting.NewModuleSynchronizer(fileStore, contractorResolver, log)
	paymentSync := appaccounting.NewPaymentSynchronizer(log)
	lifecycleService := appaccounting.NewLifecycleService(uow, moduleSync, paymentSync, assignmentService, log)
	ingestService := appaccounting.NewIngestService(uow, exchangeClient, seenStore, xmlParser, fileStore, assignmentService, log)

	// Background exchange poller (disabled when no poll interval is set)
	var syncScheduler *scheduler.ExchangeSyncScheduler
	if cfg.Exchange.PollInterval > 0 {
		syncActorID := scheduler.SystemActorID
		if cfg.Exchange.SystemActorID != "" {
			syncActorID, err = uuid.Parse(cfg.Exchange.SystemActorID)
			if err != nil {
				log.Fatal("Invalid exchange.system_actor_id", zap.Error(err))
			}
		}
		syncScheduler = scheduler.NewExchangeSyncScheduler(scheduler.ExchangeSyncConfig{
			Interval: cfg.Exchange.PollInterval,
			Lookback: cfg.Exchange.Lookback,
			ActorID:  syncActorID,
		}, ingestService, log)
		if err := syncScheduler.Start(context.Background()); err != nil {
			log.Fatal("Failed to start exchange sync scheduler", zap.Error(err))
		}
		defer syncScheduler.Stop()
	}

	// JWT service
	jwtService := auth.NewJWTService(cfg.JWT)

	// HTTP handlers
	invoiceHandler := handler.NewInvoiceHandler(lifecycleService)
	ingestHandler := handler.NewIngestHandler(ingestService)
	ruleHandler := handler.NewAssignmentRuleHandler(uow, assignmentService)

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

	// Middleware stack, applied in order: request ID, panic
	// recovery, request logging, security headers, CORS, body limit.
	engine.Use(middleware.RequestID())
	engine.Use(logger.Recovery(log))
	engine.Use(logger.GinMiddleware(log))
	engine.Use(middleware.Secure())

	corsConfig := middleware.CORSConfig{
		AllowOrigins:     cfg.HTTP.CORSAllowOrigins,
		AllowMethods:     cfg.HTTP.CORSAllowMethods,
		AllowHeaders:     cfg.HTTP.CORSAllowHeaders,
		ExposeHeaders:    []string{"X-Request-ID"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}
	engine.Use(middleware.CORSWithConfig(corsConfig))

	engine.Use(middleware.BodyLimit(cfg.HTTP.MaxBodySize))

	// Health check endpoint (outside API versioning)
	engine.GET("/health", healthHandler(db))

	// API routes
	r := router.NewRouter(engine, router.WithAPIVersion("v1"))

	jwtConfig := middleware.JWTMiddlewareConfig{
		JWTService: jwtService,
		SkipPaths: []string{
			"/api/v1/ping",
		},
		Logger: log,
	}
	r.Use(middleware.JWTAuthMiddlewareWithConfig(jwtConfig))

	// Accounting domain: invoice lifecycle and ingestion
	accountingRoutes := router.NewDomainGroup("accounting", "/accounting")
	accountingRoutes.GET("/invoices", invoiceHandler.List)
	accountingRoutes.GET("/invoices/:id", invoiceHandler.GetByID)
	accountingRoutes.GET("/invoices/:id/audit-log", invoiceHandler.AuditLog)
	accountingRoutes.POST("/invoices", ingestHandler.CreateManual)
	accountingRoutes.POST("/invoices/import-xml", ingestHandler.ImportXML)
	accountingRoutes.POST("/invoices/sync-exchange", ingestHandler.SyncFromExchange)
	accountingRoutes.POST("/invoices/transfer-to-office", invoiceHandler.TransferToOffice)
	accountingRoutes.POST("/invoices/:id/accept", invoiceHandler.Accept)
	accountingRoutes.POST("/invoices/:id/accept-no-linking", invoiceHandler.AcceptNoLinking)
	accountingRoutes.POST("/invoices/:id/reject", invoiceHandler.Reject)
	accountingRoutes.POST("/invoices/:id/hold", invoiceHandler.Hold)
	accountingRoutes.POST("/invoices/:id/link", invoiceHandler.Link)
	accountingRoutes.POST("/invoices/:id/postpone-reminder", invoiceHandler.PostponeReminder)
	accountingRoutes.POST("/invoices/:id/sync-payment", invoiceHandler.SyncPayment)
	accountingRoutes.PUT("/invoices/:id", invoiceHandler.Update)
	accountingRoutes.DELETE("/invoices/:id", invoiceHandler.Delete)

	// Assignment rules
	accountingRoutes.GET("/assignment-rules", ruleHandler.List)
	accountingRoutes.POST("/assignment-rules", ruleHandler.Create)
	accountingRoutes.POST("/assignment-rules/:id/reorder", ruleHandler.Reorder)
	accountingRoutes.POST("/assignment-rules/:id/deactivate", ruleHandler.Deactivate)

	r.Register(accountingRoutes)

	// Setup routes
	r.Setup()

	// Simple ping at root API level for basic health checks
	engine.GET("/api/v1/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": "pong"})
	})

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
		reqLog := logger.GetGinLogger(c)
		if err := db.Ping(); err != nil {
			reqLog.Warn("Health check failed", zap.Error(err))
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
