package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	identityapp "github.com/invoicehub/backend/internal/application/identity"
	invoiceapp "github.com/invoicehub/backend/internal/application/invoicing"
	tenantapp "github.com/invoicehub/backend/internal/application/tenant"
	"github.com/invoicehub/backend/internal/infrastructure/auth"
	"github.com/invoicehub/backend/internal/infrastructure/cache"
	"github.com/invoicehub/backend/internal/infrastructure/config"
	"github.com/invoicehub/backend/internal/infrastructure/fbr"
	"github.com/invoicehub/backend/internal/infrastructure/logger"
	"github.com/invoicehub/backend/internal/infrastructure/persistence"
	"github.com/invoicehub/backend/internal/interfaces/http/handler"
	"github.com/invoicehub/backend/internal/interfaces/http/middleware"
	"github.com/invoicehub/backend/internal/interfaces/http/router"
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
		_ = logger.Sync(log)
	}()

	log.Info("Starting InvoiceHub Backend",
		zap.String("app", cfg.App.Name),
		zap.String("env", cfg.App.Env),
		zap.String("port", cfg.App.Port),
	)

	// Create GORM logger backed by zap
	gormLogLevel := logger.MapGormLogLevel(cfg.Log.Level)
	gormLog := logger.NewGormLogger(log, gormLogLevel)

	// Master database holds the tenant directory and admin users
	master, err := persistence.NewDatabaseWithLogger(&cfg.MasterDatabase, gormLog)
	if err != nil {
		log.Fatal("Failed to connect to master database", zap.Error(err))
	}
	defer func() {
		if err := master.Close(); err != nil {
			log.Error("Error closing master database", zap.Error(err))
		}
	}()
	log.Info("Master database connected")

	// Per-tenant connection registry, populated lazily on first use
	registry := persistence.NewRegistry(&cfg.MasterDatabase, &cfg.TenantPool, gormLog, log)
	defer registry.Close()

	provisioner := persistence.NewProvisioner(master, registry, log)
	reconciler := persistence.NewReconciler(registry, log)

	// Tenant directory cache: Redis when enabled, in-memory otherwise
	directoryCache, err := cache.NewTenantCacheFactory(cfg.Redis, cache.WithLogger(log)).CreateCache()
	if err != nil {
		log.Fatal("Failed to initialize tenant cache", zap.Error(err))
	}

	// Initialize repositories on the master database
	tenantRepo := persistence.NewGormTenantRepository(master.DB)
	adminUserRepo := persistence.NewGormAdminUserRepository(master.DB)
	locator := persistence.NewInvoiceLocator(tenantRepo, registry, log)

	// Initialize application services
	jwtService := auth.NewJWTService(cfg.JWT)
	tenantService := tenantapp.NewService(tenantRepo, directoryCache, registry, provisioner, reconciler, log)
	fbrClient := fbr.NewClient(&cfg.FBR, log)
	invoiceService := invoiceapp.NewService(tenantService, fbrClient, locator, log)
	buyerService := invoiceapp.NewBuyerService(tenantService, log)
	authService := identityapp.NewAuthService(adminUserRepo, jwtService, log)

	// Bring every active tenant's schema up to date before serving traffic.
	// Partial completions are logged per tenant and do not block startup.
	startupCtx, cancelStartup := context.WithTimeout(context.Background(), 2*time.Minute)
	reports, err := tenantService.ReconcileAll(startupCtx)
	cancelStartup()
	if err != nil {
		log.Fatal("Failed to run startup schema reconciliation", zap.Error(err))
	}
	for _, report := range reports {
		if report.Error != "" {
			log.Warn("Startup schema reconciliation failed for tenant",
				zap.String("tenant_id", report.TenantID),
				zap.String("database", report.Database),
				zap.String("error", report.Error),
			)
			continue
		}
		if report.Result != nil && report.Result.Changed() {
			log.Info("Startup schema reconciliation applied changes",
				zap.String("tenant_id", report.TenantID),
				zap.String("database", report.Database),
				zap.Int("columns_added", len(report.Result.ColumnsAdded)),
				zap.Int("columns_failed", len(report.Result.ColumnsFailed)),
				zap.Strings("tables_skipped", report.Result.TablesSkipped),
			)
		}
	}
	log.Info("Startup schema reconciliation finished", zap.Int("tenants", len(reports)))

	// Initialize HTTP handlers
	authHandler := handler.NewAuthHandler(authService)
	tenantHandler := handler.NewTenantHandler(tenantService, jwtService)
	invoiceHandler := handler.NewInvoiceHandler(invoiceService)
	buyerHandler := handler.NewBuyerHandler(buyerService)
	systemHandler := handler.NewSystemHandler(master, tenantService, jwtService)

	// Set Gin mode based on environment
	if cfg.App.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	engine := gin.New()
	engine.Use(middleware.RequestID())
	engine.Use(middleware.Recovery(log))
	engine.Use(logger.GinMiddleware(log))

	router.NewRouter(engine, router.WithAPIVersion("v1")).
		Register(authHandler).
		Register(tenantHandler).
		Register(invoiceHandler).
		Register(buyerHandler).
		Register(systemHandler).
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
			log.Fatal("HTTP server failed", zap.Error(err))
		}
	}()

	// Wait for interrupt signal for graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("Server forced to shutdown", zap.Error(err))
	}

	log.Info("Server exited")
}
