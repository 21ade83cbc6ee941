package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	appres "github.com/freshstock/backend/internal/application/reservation"
	appstock "github.com/freshstock/backend/internal/application/stock"
	"github.com/freshstock/backend/internal/infrastructure/config"
	"github.com/freshstock/backend/internal/infrastructure/logger"
	"github.com/freshstock/backend/internal/infrastructure/persistence"
	"github.com/freshstock/backend/internal/interfaces/http/handler"
	"github.com/freshstock/backend/internal/interfaces/http/middleware"
	"github.com/freshstock/backend/internal/interfaces/http/router"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

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

	log.Info("Starting FreshStock Backend",
		zap.String("app", cfg.App.Name),
		zap.String("env", cfg.App.Env),
		zap.String("port", cfg.App.Port),
	)

	// Create GORM logger backed by zap
	gormLog := logger.NewGormLogger(log, logger.MapGormLogLevel(cfg.Log.Level))

	// Initialize database connection
	db, err := persistence.NewDatabaseWithLogger(&cfg.Database, gormLog)
	if err != nil {
		log.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Error("Error closing database", zap.Error(err))
		}
	}()
	if stats, err := db.Stats(); err == nil {
		log.Info("Database connected",
			zap.Int("max_open_conns", stats.MaxOpenConnections),
			zap.Int("open_conns", stats.OpenConnections),
		)
	}

	// Initialize repositories
	movementRepo := persistence.NewGormMovementRepository(db.DB)
	levelRepo := persistence.NewGormStockLevelRepository(db.DB)
	batchRepo := persistence.NewGormBatchRepository(db.DB)
	reservationRepo := persistence.NewGormReservationRepository(db.DB)
	productReader := persistence.NewGormProductReader(db.DB)
	supplierReader := persistence.NewGormSupplierReader(db.DB)
	txScope := persistence.NewGormTransactionScope(db.DB)

	// Initialize application services
	operationsService := appstock.NewOperationsService(txScope, productReader, supplierReader)
	queryService := appstock.NewMovementQueryService(movementRepo, levelRepo)
	batchService := appstock.NewBatchService(batchRepo, levelRepo, productReader, supplierReader)
	reportService := appstock.NewReportService(batchRepo, levelRepo, movementRepo, reservationRepo)
	reservationService := appres.NewService(txScope)

	// Initialize HTTP handlers
	stockHandler := handler.NewStockHandler(operationsService, queryService)
	movementHandler := handler.NewMovementHandler(queryService)
	batchHandler := handler.NewBatchHandler(batchService)
	reservationHandler := handler.NewReservationHandler(reservationService)
	reportHandler := handler.NewReportHandler(reportService, cfg.Report.ExpiryThresholdDays, cfg.Report.MismatchLookbackDays)
	systemHandler := handler.NewSystemHandler(db)

	// Set Gin mode based on environment
	if cfg.App.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	// Setup validation
	middleware.SetupValidator()

	// Initialize router with custom middleware
	engine := gin.New()

	// Configure trusted proxies
	if len(cfg.HTTP.TrustedProxies) > 0 {
		if err := engine.SetTrustedProxies(cfg.HTTP.TrustedProxies); err != nil {
			log.Warn("Failed to set trusted proxies", zap.Error(err))
		}
	}

	engine.Use(middleware.RequestID())
	engine.Use(logger.Recovery(log))
	engine.Use(logger.GinMiddleware(log))

	corsConfig := middleware.CORSConfig{
		AllowOrigins:     cfg.HTTP.CORSAllowOrigins,
		AllowMethods:     cfg.HTTP.CORSAllowMethods,
		AllowHeaders:     cfg.HTTP.CORSAllowHeaders,
		ExposeHeaders:    []string{"X-Request-ID"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}
	engine.Use(middleware.CORSWithConfig(corsConfig))

	// Health check endpoint (outside API versioning)
	engine.GET("/health", systemHandler.Health)

	// Setup API routes
	router.NewRouter(engine, router.WithAPIVersion("v1")).
		Register(stockHandler).
		Register(movementHandler).
		Register(batchHandler).
		Register(reservationHandler).
		Register(reportHandler).
		Setup()

	srv := &http.Server{
		Addr:           ":" + cfg.App.Port,
		Handler:        engine,
		ReadTimeout:    cfg.HTTP.ReadTimeout,
		WriteTimeout:   cfg.HTTP.WriteTimeout,
		IdleTimeout:    cfg.HTTP.IdleTimeout,
		MaxHeaderBytes: cfg.HTTP.MaxHeaderBytes,
	}

	go func() {
		log.Info("HTTP server listening", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	// Wait for interrupt signal for graceful shutdown
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
