package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/mesterwork/worksite-api/docs"
	"github.com/mesterwork/worksite-api/internal/auth"
	"github.com/mesterwork/worksite-api/internal/clients/invoicer"
	"github.com/mesterwork/worksite-api/internal/clients/mailer"
	"github.com/mesterwork/worksite-api/internal/clients/payments"
	"github.com/mesterwork/worksite-api/internal/clients/pricescout"
	"github.com/mesterwork/worksite-api/internal/clients/textgen"
	"github.com/mesterwork/worksite-api/internal/config"
	"github.com/mesterwork/worksite-api/internal/database"
	"github.com/mesterwork/worksite-api/internal/http/handler"
	"github.com/mesterwork/worksite-api/internal/http/middleware"
	"github.com/mesterwork/worksite-api/internal/http/router"
	"github.com/mesterwork/worksite-api/internal/jobs"
	"github.com/mesterwork/worksite-api/internal/logger"
	"github.com/mesterwork/worksite-api/internal/repository"
	"github.com/mesterwork/worksite-api/internal/service"
	"github.com/mesterwork/worksite-api/internal/storage"
	"github.com/mesterwork/worksite-api/internal/warehouse"
	"go.uber.org/zap"
)

// @title Worksite API
// @version 1.0
// @description Multi-tenant API for construction offers, works, daily progress diaries, and billing

// @contact.name API Support
// @contact.email support@mesterwork.no

// @license.name MIT
// @license.url https://opensource.org/licenses/MIT

// @host localhost:8080
// @BasePath /api/v1

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description JWT Bearer token issued by the identity gateway
// @Security BearerAuth

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	ctx := context.Background()

	// Load basic configuration first (for logging setup)
	basicCfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	log, err := logger.NewLogger(&basicCfg.Logging, &basicCfg.App)
	if err != nil {
		return fmt.Errorf("failed to create logger: %w", err)
	}
	defer func() { _ = log.Sync() }()

	log.Info("Starting application",
		zap.String("app", basicCfg.App.Name),
		zap.String("env", basicCfg.App.Environment),
		zap.Int("port", basicCfg.App.Port),
	)

	// Configure Swagger host based on environment
	switch basicCfg.App.Environment {
	case "staging":
		docs.SwaggerInfo.Host = "worksite-staging.mesterwork.no"
	case "production":
		docs.SwaggerInfo.Host = "api.mesterwork.no"
	default:
		docs.SwaggerInfo.Host = fmt.Sprintf("localhost:%d", basicCfg.App.Port)
	}

	// Load full configuration with secrets
	// In development: uses environment variables
	// In staging/production: fetches from Azure Key Vault
	cfg, err := config.LoadWithSecrets(ctx, log)
	if err != nil {
		return fmt.Errorf("failed to load secrets: %w", err)
	}

	db, err := database.NewDatabase(&cfg.Database)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}

	fileStorage, err := storage.NewStorage(&cfg.Storage, log)
	if err != nil {
		return fmt.Errorf("failed to initialize storage: %w", err)
	}
	log.Info("Storage initialized", zap.String("mode", cfg.Storage.Mode))

	// Reporting warehouse connection (optional, write-only). The app
	// continues without it; only the nightly snapshot job needs it.
	warehouseClient, err := warehouse.NewClient(&cfg.Warehouse, log)
	if err != nil {
		log.Warn("Warehouse connection failed, continuing without it", zap.Error(err))
		warehouseClient = nil
	} else if warehouseClient != nil {
		log.Info("Warehouse connected")
	} else {
		log.Info("Warehouse not configured, skipping")
	}

	// Repositories
	userRepo := repository.NewUserRepository(db)
	offerRepo := repository.NewOfferRepository(db)
	offerItemRepo := repository.NewOfferItemRepository(db)
	workRepo := repository.NewWorkRepository(db)
	workItemRepo := repository.NewWorkItemRepository(db)
	workerRepo := repository.NewWorkerRepository(db)
	workforceRepo := repository.NewWorkforceRepository(db)
	materialRepo := repository.NewMaterialRepository(db)
	toolRepo := repository.NewToolRepository(db)
	diaryRepo := repository.NewDiaryRepository(db)
	billingRepo := repository.NewBillingRepository(db)
	priceListRepo := repository.NewPriceListRepository(db)
	performanceRepo := repository.NewPerformanceRepository(db)

	// External service clients
	textGenClient := textgen.NewClient(&cfg.Clients.TextGen, log)
	mailerClient := mailer.NewClient(&cfg.Clients.Mailer, log)
	invoicerClient := invoicer.NewClient(&cfg.Clients.Invoicer, log)
	priceScoutClient := pricescout.NewClient(&cfg.Clients.PriceScout, log)
	paymentsClient := payments.NewClient(&cfg.Clients.Payments, log)

	// Services
	offerService := service.NewOfferService(db, offerRepo, offerItemRepo, workRepo, workItemRepo, priceListRepo, textGenClient, log)
	workService := service.NewWorkService(db, workRepo, workItemRepo, offerRepo, diaryRepo, fileStorage, log)
	diaryService := service.NewDiaryService(diaryRepo, workRepo, workItemRepo, workforceRepo, fileStorage, log)
	profitService := service.NewProfitService(workRepo, diaryRepo, workforceRepo, log)
	workerService := service.NewWorkerService(workerRepo, workRepo, workItemRepo, workforceRepo, log)
	workforceService := service.NewWorkforceService(workforceRepo, log)
	materialService := service.NewMaterialService(
		materialRepo,
		workRepo,
		priceScoutClient,
		cfg.Clients.PriceScout.BatchSize,
		cfg.Clients.PriceScout.MaxMaterials,
		cfg.Clients.PriceScout.BatchDelayDuration(),
		log,
	)
	toolService := service.NewToolService(toolRepo, workRepo, log)
	billingService := service.NewBillingService(billingRepo, offerRepo, invoicerClient, mailerClient, log)
	priceListService := service.NewPriceListService(priceListRepo, log)
	performanceService := service.NewPerformanceService(performanceRepo, workRepo, profitService, log)
	paymentService := service.NewPaymentService(paymentsClient, log)

	// Middleware
	authMiddleware := auth.NewMiddleware(cfg, userRepo, log)
	rateLimiter := middleware.NewRateLimiter(&cfg.RateLimit, log)

	// Handlers
	authHandler := handler.NewAuthHandler(log)
	offerHandler := handler.NewOfferHandler(offerService, log)
	workHandler := handler.NewWorkHandler(workService, profitService, log)
	diaryHandler := handler.NewDiaryHandler(diaryService, cfg.Storage.MaxUploadSizeMB, log)
	workerHandler := handler.NewWorkerHandler(workerService, log)
	workforceHandler := handler.NewWorkforceHandler(workforceService, log)
	materialHandler := handler.NewMaterialHandler(materialService, log)
	toolHandler := handler.NewToolHandler(toolService, log)
	billingHandler := handler.NewBillingHandler(billingService, log)
	priceListHandler := handler.NewPriceListHandler(priceListService, log)
	performanceHandler := handler.NewPerformanceHandler(performanceService, log)
	paymentHandler := handler.NewPaymentHandler(paymentService, log)

	rt := router.NewRouter(
		cfg,
		log,
		db,
		warehouseClient,
		authMiddleware,
		rateLimiter,
		authHandler,
		offerHandler,
		workHandler,
		diaryHandler,
		workerHandler,
		workforceHandler,
		materialHandler,
		toolHandler,
		billingHandler,
		priceListHandler,
		performanceHandler,
		paymentHandler,
	)

	// Background jobs
	var scheduler *jobs.Scheduler
	if cfg.Jobs.Enabled {
		scheduler = jobs.NewScheduler(log)

		resyncJob := jobs.NewDiaryResyncJob(workRepo, diaryService, log)
		if err := scheduler.AddJob("diary-resync", cfg.Jobs.DiaryResyncSchedule, resyncJob.Run); err != nil {
			log.Error("Failed to register diary resync job", zap.Error(err))
		}

		snapshotJob := jobs.NewWarehouseSnapshotJob(workRepo, performanceRepo, profitService, warehouseClient, log)
		if err := scheduler.AddJob("warehouse-snapshot", cfg.Jobs.WarehouseSnapshotSchedule, snapshotJob.Run); err != nil {
			log.Error("Failed to register warehouse snapshot job", zap.Error(err))
		}

		scheduler.Start()
		log.Info("Scheduler started",
			zap.Strings("jobs", scheduler.GetJobNames()),
			zap.String("diary_resync", cfg.Jobs.DiaryResyncSchedule),
			zap.String("warehouse_snapshot", cfg.Jobs.WarehouseSnapshotSchedule),
		)
	} else {
		log.Info("Background jobs disabled")
	}

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.App.Port),
		Handler:      rt.Setup(),
		ReadTimeout:  cfg.Server.ReadTimeoutDuration(),
		WriteTimeout: cfg.Server.WriteTimeoutDuration(),
	}

	serverErrors := make(chan error, 1)
	go func() {
		log.Info("Server starting", zap.String("addr", srv.Addr))
		serverErrors <- srv.ListenAndServe()
	}()

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-serverErrors:
		return fmt.Errorf("server error: %w", err)
	case sig := <-shutdown:
		log.Info("Shutdown signal received", zap.String("signal", sig.String()))

		if scheduler != nil {
			ctx := scheduler.Stop()
			<-ctx.Done()
			log.Info("Scheduler stopped")
		}

		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		if err := srv.Shutdown(ctx); err != nil {
			log.Error("Failed to shutdown gracefully", zap.Error(err))
			return err
		}

		if warehouseClient != nil {
			if err := warehouseClient.Close(); err != nil {
				log.Warn("Error closing warehouse connection", zap.Error(err))
			}
		}

		log.Info("Server stopped gracefully")
	}

	return nil
}
