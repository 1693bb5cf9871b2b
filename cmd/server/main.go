package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	appbilling "github.com/fieldserve/backend/internal/application/billing"
	appinventory "github.com/fieldserve/backend/internal/application/inventory"
	appworkorder "github.com/fieldserve/backend/internal/application/workorder"
	"github.com/fieldserve/backend/internal/domain/tax"
	"github.com/fieldserve/backend/internal/infrastructure/config"
	"github.com/fieldserve/backend/internal/infrastructure/event"
	"github.com/fieldserve/backend/internal/infrastructure/logger"
	"github.com/fieldserve/backend/internal/infrastructure/notify"
	"github.com/fieldserve/backend/internal/infrastructure/persistence"
	"github.com/fieldserve/backend/internal/infrastructure/telemetry"
	"github.com/fieldserve/backend/internal/interfaces/http/handler"
	"github.com/fieldserve/backend/internal/interfaces/http/middleware"
	"github.com/fieldserve/backend/internal/interfaces/http/router"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("failed to load configuration: " + err.Error())
	}

	log, err := logger.New(logger.Options{
		Level:  cfg.Log.Level,
		Format: cfg.Log.Format,
		Output: cfg.Log.Output,
	})
	if err != nil {
		panic("failed to initialize logger: " + err.Error())
	}
	defer func() {
		_ = log.Sync()
	}()

	log.Info("starting fieldserve backend",
		zap.String("app", cfg.App.Name),
		zap.String("env", cfg.App.Env),
		zap.String("port", cfg.App.Port),
	)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	tracerProvider, err := telemetry.NewTracerProvider(ctx, telemetry.Config{
		Enabled:           cfg.Telemetry.Enabled,
		CollectorEndpoint: cfg.Telemetry.CollectorEndpoint,
		SamplingRatio:     cfg.Telemetry.SamplingRatio,
		ServiceName:       cfg.Telemetry.ServiceName,
		Insecure:          cfg.Telemetry.Insecure,
	}, log)
	if err != nil {
		log.Fatal("failed to initialize tracing", zap.Error(err))
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := tracerProvider.Shutdown(shutdownCtx); err != nil {
			log.Error("error shutting down tracer provider", zap.Error(err))
		}
	}()

	gormLog := logger.NewGormLogger(log, logger.GormLevelFor(cfg.Log.Level))
	db, err := persistence.NewDatabase(&cfg.Database, gormLog)
	if err != nil {
		log.Fatal("failed to connect to database", zap.Error(err))
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Error("error closing database", zap.Error(err))
		}
	}()
	log.Info("database connected")

	if cfg.Telemetry.Enabled {
		if err := telemetry.RegisterDBTracing(db.DB, cfg.Database.DBName, log); err != nil {
			log.Fatal("failed to enable database tracing", zap.Error(err))
		}
	}

	// Transaction scopes hand out tx-bound repositories per bounded context
	billingScope := persistence.NewGormBillingTransactionScope(db.DB)
	inventoryScope := persistence.NewGormInventoryTransactionScope(db.DB)
	workOrderScope := persistence.NewGormWorkOrderTransactionScope(db.DB)

	taxEngine := tax.NewEngine(tax.DefaultRegistry())
	eventBus := event.NewInMemoryBus(log)

	invoiceService := appbilling.NewInvoiceService(billingScope, taxEngine)
	invoiceService.SetEventPublisher(eventBus)
	stockService := appinventory.NewStockService(inventoryScope)
	workOrderService := appworkorder.NewWorkOrderService(workOrderScope)
	completionService := appworkorder.NewCompletionService(workOrderScope, taxEngine, eventBus, log)

	// Post-commit completion events fan out to the customer notifier
	notifier := notify.NewLogNotifier(log)
	notificationHandler := appworkorder.NewCompletionNotificationHandler(notifier, log)
	eventBus.Subscribe(notificationHandler)
	log.Info("event handlers registered",
		zap.Strings("completion_events", notificationHandler.EventTypes()))

	if cfg.App.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	middleware.SetupValidator()

	engine, err := router.New(log, router.Options{
		ServiceName:    cfg.Telemetry.ServiceName,
		Tracing:        cfg.Telemetry.Enabled,
		TrustedProxies: cfg.HTTP.TrustedProxies,
	},
		handler.NewSystemHandler(db),
		handler.NewInvoiceHandler(invoiceService),
		handler.NewStockHandler(stockService),
		handler.NewWorkOrderHandler(workOrderService, completionService),
		handler.NewTaxHandler(taxEngine, cfg.Tax.DefaultJurisdiction),
	)
	if err != nil {
		log.Fatal("failed to build router", zap.Error(err))
	}

	server := &http.Server{
		Addr:           ":" + cfg.App.Port,
		Handler:        engine,
		ReadTimeout:    cfg.HTTP.ReadTimeout,
		WriteTimeout:   cfg.HTTP.WriteTimeout,
		IdleTimeout:    cfg.HTTP.IdleTimeout,
		MaxHeaderBytes: cfg.HTTP.MaxHeaderBytes,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info("http server listening", zap.String("addr", server.Addr))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case <-ctx.Done():
		log.Info("shutdown signal received")
	case err := <-errCh:
		log.Error("http server failed", zap.Error(err))
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error("graceful shutdown failed", zap.Error(err))
	}
	log.Info("server stopped")
}
