package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/andresuchdata/eximdesk/internal/api"
	"github.com/andresuchdata/eximdesk/internal/auth"
	"github.com/andresuchdata/eximdesk/internal/cache"
	"github.com/andresuchdata/eximdesk/internal/config"
	"github.com/andresuchdata/eximdesk/internal/drive"
	"github.com/andresuchdata/eximdesk/internal/importer"
	"github.com/andresuchdata/eximdesk/internal/repository/postgres"
	"github.com/andresuchdata/eximdesk/internal/service"
	"github.com/andresuchdata/eximdesk/internal/storage"
	"github.com/andresuchdata/eximdesk/pkg/logger"
	"github.com/gin-gonic/gin"
)

func main() {
	// Load configuration
	cfg := config.Load()

	// Initialize logger
	logger.Configure(cfg.Server.Mode, cfg.Server.LogLevel)
	if err := cfg.Validate(); err != nil {
		logger.Log.Fatal().Err(err).Msg("Invalid configuration")
	}
	if cfg.Server.Mode == "debug" {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}

	ctx := context.Background()

	// Initialize database
	db, err := postgres.NewDB(&cfg.Database)
	if err != nil {
		logger.Log.Fatal().Err(err).Msg("Failed to connect to database")
	}
	defer db.Close()

	if err := db.Migrate(ctx); err != nil {
		logger.Log.Fatal().Err(err).Msg("Failed to apply schema")
	}

	dashboardCache, err := cache.NewDashboardCache(cfg.Cache)
	if err != nil {
		logger.Log.Warn().Err(err).Msg("Redis unavailable, dashboard cache disabled")
		dashboardCache = cache.NewNoopDashboardCache()
	}

	store, err := storage.New(ctx, cfg.Storage)
	if err != nil {
		logger.Log.Fatal().Err(err).Msg("Failed to initialize document storage")
	}

	// Initialize repositories
	jobRepo := postgres.NewJobRepository(db)
	directoryRepo := postgres.NewDirectoryRepository(db)
	employeeRepo := postgres.NewEmployeeRepository(db)
	userRepo := postgres.NewUserRepository(db)
	auditRepo := postgres.NewAuditRepository(db)
	importRepo := postgres.NewImportRepository(db)

	// Initialize services
	jobService := service.NewJobService(jobRepo, directoryRepo, dashboardCache)
	authService := service.NewAuthService(userRepo, auth.NewTokenManager(cfg.Auth), cfg.Auth.BcryptCost)
	worker := importer.NewWorker(importer.Config{WorkerCount: cfg.Import.WorkerCount}, importRepo, jobService)

	services := &api.Services{
		Auth:      authService,
		Jobs:      jobService,
		Status:    service.NewStatusService(jobRepo, dashboardCache),
		Dashboard: service.NewDashboardService(jobRepo, dashboardCache),
		Billing:   service.NewBillingService(jobRepo, dashboardCache),
		Documents: service.NewDocumentService(jobRepo, store, cfg.Storage.PresignTTL),
		Reports:   service.NewReportService(jobRepo),
		Directory: service.NewDirectoryService(directoryRepo),
		Employees: service.NewEmployeeService(employeeRepo),
		Audit:     service.NewAuditService(auditRepo),
		Imports:   service.NewImportService(importRepo, worker),
		Health:    db.PingContext,
	}

	if cfg.Drive.CredentialsJSON != "" {
		driveService, err := drive.NewService(ctx, cfg.Drive.CredentialsJSON)
		if err != nil {
			logger.Log.Warn().Err(err).Msg("Google Drive disabled")
		} else {
			services.DriveFolders = driveService
			services.Drive = drive.NewIngestService(driveService, worker, cfg.Drive.FolderID, cfg.Import.TempDir)
		}
	}

	if err := authService.EnsureAdmin(ctx, cfg.Auth.AdminUser, cfg.Auth.AdminPass); err != nil {
		logger.Log.Fatal().Err(err).Msg("Failed to bootstrap admin user")
	}

	// Initialize HTTP server
	router := api.NewRouter(services, api.Options{
		AllowedOrigins: cfg.Server.AllowedOrigins,
		UploadDir:      cfg.Import.TempDir,
		MaxUploadMB:    cfg.Server.MaxUploadMB,
	})
	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
	}

	// Start server in a goroutine
	go func() {
		logger.Log.Info().Str("port", cfg.Server.Port).Msg("Starting server")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Log.Fatal().Err(err).Msg("Failed to start server")
		}
	}()

	// Wait for interrupt signal to gracefully shut down the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Log.Info().Msg("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Log.Fatal().Err(err).Msg("Server forced to shutdown")
	}

	// Let in-flight import runs finish before the database closes.
	worker.Wait()
	logger.Log.Info().Msg("Server exiting")
}
