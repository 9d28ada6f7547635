package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/straye-as/salesops-api/docs"
	"github.com/straye-as/salesops-api/internal/auth"
	"github.com/straye-as/salesops-api/internal/catalog"
	"github.com/straye-as/salesops-api/internal/config"
	"github.com/straye-as/salesops-api/internal/database"
	"github.com/straye-as/salesops-api/internal/http/handler"
	"github.com/straye-as/salesops-api/internal/http/middleware"
	"github.com/straye-as/salesops-api/internal/http/router"
	"github.com/straye-as/salesops-api/internal/jobs"
	"github.com/straye-as/salesops-api/internal/logger"
	"github.com/straye-as/salesops-api/internal/metrics"
	"github.com/straye-as/salesops-api/internal/productdb"
	"github.com/straye-as/salesops-api/internal/repository"
	"github.com/straye-as/salesops-api/internal/service"
	"github.com/straye-as/salesops-api/internal/session"
	"github.com/straye-as/salesops-api/internal/storage"
	"go.uber.org/zap"
)

// @title Straye Sales Ops API
// @version 1.0
// @description Sales activity logging, quotation pricing and document generation

// @contact.name API Support
// @contact.email support@straye.io

// @host localhost:8080
// @BasePath /api/v1

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description JWT Bearer token

// @securityDefinitions.apikey ApiKeyAuth
// @in header
// @name x-api-key
// @description API Key for system operations
// @Security BearerAuth
// @Security ApiKeyAuth

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

	docs.SwaggerInfo.Host = fmt.Sprintf("localhost:%d", basicCfg.App.Port)

	// In development secrets come from the environment,
	// in staging/production from Azure Key Vault
	cfg, err := config.LoadWithSecrets(ctx, log)
	if err != nil {
		return fmt.Errorf("failed to load secrets: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	m := metrics.New(registry)

	db, err := database.NewDatabase(&cfg.Database, log)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	if cfg.Database.AutoMigrate {
		if err := database.AutoMigrate(db); err != nil {
			return fmt.Errorf("failed to migrate database: %w", err)
		}
		log.Info("Database schema auto-migrated")
	}

	// Export links and session flags live in Redis; exports cannot work without it
	redisClient, err := session.NewRedisClient(ctx, &cfg.Redis)
	if err != nil {
		return fmt.Errorf("failed to connect to redis: %w", err)
	}
	defer redisClient.Close()

	blobs, err := storage.NewBlobStore(ctx, &cfg.Storage, log)
	if err != nil {
		return fmt.Errorf("failed to initialize storage: %w", err)
	}
	log.Info("Storage initialized", zap.String("mode", cfg.Storage.Mode))

	// Product sources are optional; search answers 502 when none is configured
	var sources []catalog.ProductSource
	productDB, err := productdb.NewClient(&cfg.ProductDatabase, log)
	if err != nil {
		log.Warn("Product database connection failed, continuing without it", zap.Error(err))
	} else if productDB != nil {
		defer productDB.Close()
		sources = append(sources, catalog.NewProductDBSource(productDB, cfg.ProductDatabase.SearchLimit))
	}
	if cfg.Catalog.Enabled {
		sources = append(sources, catalog.NewCatalogSource(&cfg.Catalog))
	}
	if len(sources) == 0 {
		log.Warn("No product source configured, product search is unavailable")
	}

	// Repositories
	activityRepo := repository.NewActivityRepository(db)

	// Services
	numberService := service.NewNumberSequenceService(activityRepo, m, log)
	activityService := service.NewActivityService(activityRepo, log)
	productService := service.NewProductService(m, log, sources...)
	quotationService, err := service.NewQuotationService(&cfg.Document, m, log)
	if err != nil {
		return fmt.Errorf("failed to initialize quotation service: %w", err)
	}
	exportService := service.NewExportService(
		quotationService,
		blobs,
		session.NewLinkStore(redisClient, cfg.Redis.Namespace()),
		session.NewExportSessionStore(redisClient, cfg.Redis.Namespace()),
		cfg.Export.LinkTTLDuration(),
		cfg.App.PublicBaseURL,
		m,
		log,
	)

	log.Info("Services initialized",
		zap.Strings("product_sources", productService.Sources()),
		zap.String("pdf_renderer", quotationService.Renderer()),
	)

	authMiddleware := auth.NewMiddleware(cfg, log)
	rateLimiter := middleware.NewRateLimiter(&cfg.RateLimit, log)

	rt := router.NewRouter(
		cfg,
		log,
		db,
		redisClient,
		authMiddleware,
		rateLimiter,
		m,
		registry,
		router.Handlers{
			Activity:        handler.NewActivityHandler(activityService, log),
			Product:         handler.NewProductHandler(productService, log),
			QuotationNumber: handler.NewQuotationNumberHandler(numberService, log),
			Quotation:       handler.NewQuotationHandler(quotationService, log),
			Export:          handler.NewExportHandler(exportService, log),
		},
	)

	var scheduler *jobs.Scheduler
	if cfg.Jobs.Enabled {
		scheduler = jobs.NewScheduler(log)
		if err := jobs.RegisterExportCleanupJob(
			scheduler,
			exportService,
			cfg.Jobs.ExportCleanupBatch,
			cfg.Jobs.ExportCleanupCron,
			log,
			true, // clear exports that expired while the service was down
		); err != nil {
			return fmt.Errorf("failed to register export cleanup job: %w", err)
		}
		scheduler.Start()
	} else {
		log.Info("Background jobs disabled")
	}

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.App.Port),
		Handler:           rt.Setup(),
		ReadTimeout:       cfg.Server.ReadTimeoutDuration(),
		ReadHeaderTimeout: 10 * time.Second,
		WriteTimeout:      cfg.Server.WriteTimeoutDuration(),
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
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("server error: %w", err)
	case sig := <-shutdown:
		log.Info("Shutdown signal received", zap.String("signal", sig.String()))

		if scheduler != nil {
			<-scheduler.Stop().Done()
			log.Info("Scheduler stopped")
		}

		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		if err := srv.Shutdown(ctx); err != nil {
			log.Error("Failed to shutdown gracefully", zap.Error(err))
			return err
		}

		log.Info("Server stopped gracefully")
	}

	return nil
}
