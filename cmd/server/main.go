package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	appbilling "github.com/SAMI-SEP490/SAMI-BackEnd-sub002/internal/application/billing"
	appmetering "github.com/SAMI-SEP490/SAMI-BackEnd-sub002/internal/application/metering"
	"github.com/SAMI-SEP490/SAMI-BackEnd-sub002/internal/domain/shared"
	"github.com/SAMI-SEP490/SAMI-BackEnd-sub002/internal/infrastructure/auth"
	"github.com/SAMI-SEP490/SAMI-BackEnd-sub002/internal/infrastructure/cache"
	"github.com/SAMI-SEP490/SAMI-BackEnd-sub002/internal/infrastructure/config"
	"github.com/SAMI-SEP490/SAMI-BackEnd-sub002/internal/infrastructure/logger"
	"github.com/SAMI-SEP490/SAMI-BackEnd-sub002/internal/infrastructure/notification"
	"github.com/SAMI-SEP490/SAMI-BackEnd-sub002/internal/infrastructure/persistence"
	"github.com/SAMI-SEP490/SAMI-BackEnd-sub002/internal/infrastructure/scheduler"
	"github.com/SAMI-SEP490/SAMI-BackEnd-sub002/internal/infrastructure/telemetry"
	"github.com/SAMI-SEP490/SAMI-BackEnd-sub002/internal/interfaces/http/handler"
	"github.com/SAMI-SEP490/SAMI-BackEnd-sub002/internal/interfaces/http/middleware"
	"github.com/SAMI-SEP490/SAMI-BackEnd-sub002/internal/interfaces/http/router"
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

	log.Info("Starting tenancy billing service",
		zap.String("app", cfg.App.Name),
		zap.String("env", cfg.App.Env),
		zap.String("port", cfg.App.Port),
	)

	// Initialize tracing
	telemetryCfg := telemetry.Config{
		Enabled:           cfg.Telemetry.Enabled,
		CollectorEndpoint: cfg.Telemetry.CollectorEndpoint,
		SamplingRatio:     cfg.Telemetry.SamplingRatio,
		ServiceName:       cfg.Telemetry.ServiceName,
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

	// Bridge zap into the OTLP log pipeline so application logs land next
	// to the traces
	logsCfg := telemetryCfg
	logsCfg.Enabled = cfg.Telemetry.Enabled && cfg.Telemetry.LogsEnabled
	loggerProvider, err := telemetry.NewLoggerProvider(context.Background(), logsCfg, log)
	if err != nil {
		log.Fatal("Failed to initialize logger provider", zap.Error(err))
	}
	defer func() {
		if err := loggerProvider.Shutdown(context.Background()); err != nil {
			log.Error("Error shutting down logger provider", zap.Error(err))
		}
	}()
	if cfg.Telemetry.Enabled && cfg.Telemetry.LogsEnabled {
		bridged, err := logger.NewTee(&logger.Config{
			Level:      cfg.Log.Level,
			Format:     cfg.Log.Format,
			Output:     cfg.Log.Output,
			TimeFormat: "2006-01-02T15:04:05.000Z07:00",
		}, loggerProvider.ZapCore(cfg.Telemetry.ServiceName))
		if err != nil {
			log.Fatal("Failed to initialize bridged logger", zap.Error(err))
		}
		log = bridged
	}

	// Metrics for the daily billing run
	metricsCfg := telemetryCfg
	metricsCfg.Enabled = cfg.Telemetry.Enabled && cfg.Telemetry.MetricsEnabled
	meterProvider, err := telemetry.NewMeterProvider(context.Background(), metricsCfg, log)
	if err != nil {
		log.Fatal("Failed to initialize meter provider", zap.Error(err))
	}
	defer func() {
		if err := meterProvider.Shutdown(context.Background()); err != nil {
			log.Error("Error shutting down meter provider", zap.Error(err))
		}
	}()
	billingMetrics, err := telemetry.NewBillingMetrics()
	if err != nil {
		log.Fatal("Failed to register billing metrics", zap.Error(err))
	}

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

	// Attach query tracing to the connection
	dbTracing := telemetry.DefaultDBTracingConfig()
	dbTracing.Enabled = cfg.Telemetry.Enabled && cfg.Telemetry.DBTraceEnabled
	if err := telemetry.NewDBTracingPlugin(dbTracing, log).Register(db.DB); err != nil {
		log.Fatal("Failed to register database tracing", zap.Error(err))
	}

	// Initialize repositories
	billRepo := persistence.NewGormBillRepository(db.DB)
	readingRepo := persistence.NewGormReadingRepository(db.DB)
	contractRepo := persistence.NewGormContractRepository(db.DB)
	buildingRepo := persistence.NewGormBuildingRepository(db.DB)
	roomRepo := persistence.NewGormRoomRepository(db.DB)
	txManager := persistence.NewGormTxManager(db.DB)

	// Batch lock: Redis when available, in-memory otherwise
	batchLock := cache.NewBatchLock(cfg.Redis, log)

	// All billing day boundaries run on the configured timezone
	clock := shared.NewSystemClock(cfg.App.Timezone)

	billingCfg := appbilling.Config{
		DueInDays:          cfg.Billing.DueInDays,
		GraceDays:          cfg.Billing.GraceDays,
		MinStayDays:        cfg.Billing.MinStayDays,
		ReminderWindowDays: cfg.Billing.ReminderWindowDays,
	}

	// Initialize application services
	billService := appbilling.NewBillService(
		billRepo, contractRepo, roomRepo, buildingRepo, readingRepo,
		txManager, clock, billingCfg, log)
	autoBillingService := appbilling.NewAutoBillingService(
		billRepo, contractRepo, buildingRepo, roomRepo, readingRepo,
		txManager, clock, billingCfg, log)
	reminderService := appbilling.NewReminderService(
		billRepo, notification.NewLogNotifier(log), clock, billingCfg, log)
	readingService := appmetering.NewReadingService(
		readingRepo, roomRepo, buildingRepo, batchLock, txManager, clock, log)

	// JWT auth
	jwtService := auth.NewJWTService(cfg.JWT)

	// Daily billing trigger
	jobs := scheduler.Jobs{
		Bills:       billService,
		AutoBilling: autoBillingService,
		Reminders:   reminderService,
	}
	if cfg.Scheduler.Enabled {
		trigger := scheduler.NewDailyTrigger(scheduler.Config{
			TriggerHour:  cfg.Scheduler.TriggerHour,
			PollInterval: cfg.Scheduler.PollInterval,
			JobTimeout:   cfg.Scheduler.JobTimeout,
		}, jobs, clock, log).WithMetrics(billingMetrics)
		if err := trigger.Start(context.Background()); err != nil {
			log.Fatal("Failed to start daily billing trigger", zap.Error(err))
		}
		defer func() {
			if err := trigger.Stop(context.Background()); err != nil {
				log.Error("Error stopping daily billing trigger", zap.Error(err))
			}
		}()
		log.Info("Daily billing trigger started",
			zap.Int("trigger_hour", cfg.Scheduler.TriggerHour),
			zap.Duration("job_timeout", cfg.Scheduler.JobTimeout),
		)
	}

	// Set Gin mode based on environment
	if cfg.App.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	middleware.SetupValidator()

	engine := gin.New()

	if len(cfg.HTTP.TrustedProxies) > 0 {
		if err := engine.SetTrustedProxies(cfg.HTTP.TrustedProxies); err != nil {
			log.Warn("Failed to set trusted proxies", zap.Error(err))
		}
	}

	// Middleware stack, in order: request ID, panic recovery, request
	// logging, tracing, CORS, body size limit, JWT auth
	engine.Use(middleware.RequestID())
	engine.Use(logger.Recovery(log))
	engine.Use(logger.GinMiddleware(log))
	engine.Use(middleware.TracingWithConfig(middleware.TracingConfig{
		ServiceName: cfg.Telemetry.ServiceName,
		Enabled:     cfg.Telemetry.Enabled,
	})...)

	corsConfig := middleware.DefaultCORSConfig()
	corsConfig.AllowOrigins = cfg.HTTP.CORSAllowOrigins
	if len(cfg.HTTP.CORSAllowMethods) > 0 {
		corsConfig.AllowMethods = cfg.HTTP.CORSAllowMethods
	}
	if len(cfg.HTTP.CORSAllowHeaders) > 0 {
		corsConfig.AllowHeaders = cfg.HTTP.CORSAllowHeaders
	}
	engine.Use(middleware.CORSWithConfig(corsConfig))
	engine.Use(middleware.BodyLimit(cfg.HTTP.MaxBodySize))
	engine.Use(middleware.JWTAuth(middleware.JWTConfig{
		Service:   jwtService,
		SkipPaths: []string{"/health"},
	}))

	// Health check endpoint (outside API versioning)
	engine.GET("/health", healthHandler(db))

	// Register API routes
	r := router.NewRouter(engine)
	r.Register(handler.NewBillHandler(billService)).
		Register(handler.NewReadingHandler(readingService)).
		Register(handler.NewSystemHandler(jobs))
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
			reqLog := logger.GetGinLogger(c)
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
