package api

import (
	"context"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/andresuchdata/eximdesk/internal/api/handlers"
	"github.com/andresuchdata/eximdesk/internal/api/middleware"
	"github.com/andresuchdata/eximdesk/internal/drive"
	"github.com/andresuchdata/eximdesk/internal/service"
	"github.com/andresuchdata/eximdesk/internal/validation"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog/log"
)

type Services struct {
	Auth      *service.AuthService
	Jobs      *service.JobService
	Status    *service.StatusService
	Dashboard *service.DashboardService
	Billing   *service.BillingService
	Documents *service.DocumentService
	Reports   *service.ReportService
	Directory *service.DirectoryService
	Employees *service.EmployeeService
	Audit     *service.AuditService
	Imports   *service.ImportService
	// Drive is nil when no Drive credentials are configured.
	Drive *drive.IngestService
	// DriveFolders resolves folder paths; optional.
	DriveFolders *drive.Service
	// Health reports whether backing stores are reachable.
	Health func(ctx context.Context) error
}

type Options struct {
	AllowedOrigins []string
	UploadDir      string
	MaxUploadMB    int64
}

var registerOnce sync.Once

// registerValidation adds the custom rules to gin's binding validator.
func registerValidation() {
	registerOnce.Do(func() {
		v, ok := binding.Validator.Engine().(*validator.Validate)
		if !ok {
			return
		}
		if err := validation.Register(v); err != nil {
			log.Fatal().Err(err).Msg("failed to register validation rules")
		}
	})
}

func NewRouter(services *Services, opts Options) *gin.Engine {
	registerValidation()

	router := gin.New()
	if opts.MaxUploadMB > 0 {
		router.MaxMultipartMemory = opts.MaxUploadMB << 20
	}

	// Add middleware
	router.Use(middleware.RequestID())
	router.Use(middleware.Logger())
	router.Use(middleware.Recovery())
	router.Use(cors.New(corsConfig(opts.AllowedOrigins)))

	router.GET("/health", healthHandler(services))

	apiGroup := router.Group("/api/v1")
	apiGroup.GET("/health", healthHandler(services))

	if services == nil || services.Auth == nil {
		return router
	}

	authHandler := handlers.NewAuthHandler(services.Auth)
	apiGroup.POST("/auth/login", authHandler.Login)

	secured := apiGroup.Group("")
	secured.Use(middleware.Auth(services.Auth))
	if services.Audit != nil {
		secured.Use(middleware.Audit(services.Audit))
	}
	admin := middleware.RequireAdmin()

	secured.GET("/auth/me", authHandler.Me)
	secured.GET("/auth/users", admin, authHandler.ListUsers)
	secured.POST("/auth/users", admin, authHandler.CreateUser)

	if services.Jobs != nil {
		jobHandler := handlers.NewJobHandler(services.Jobs, services.Billing, services.Documents, services.Reports)
		jobGroup := secured.Group("/jobs")
		{
			jobGroup.GET("", jobHandler.List)
			jobGroup.POST("", jobHandler.Create)
			jobGroup.GET("/years", jobHandler.Years)
			jobGroup.GET("/export", jobHandler.Export)
			jobGroup.GET("/:id", jobHandler.Get)
			jobGroup.PUT("/:id", jobHandler.Update)
			jobGroup.POST("/:id/cancel", jobHandler.Cancel)
			jobGroup.POST("/:id/bill", jobHandler.Bill)
			jobGroup.GET("/:id/invoices", jobHandler.Invoices)
			jobGroup.POST("/:id/documents", jobHandler.UploadDocument)
			jobGroup.GET("/:id/documents/url", jobHandler.DocumentURL)
		}

		if services.Imports != nil {
			importHandler := handlers.NewImportHandler(services.Imports, opts.UploadDir, opts.MaxUploadMB)
			jobGroup.POST("/import", importHandler.Upload)
			secured.GET("/imports", importHandler.ListRuns)
			secured.GET("/imports/:id", importHandler.GetRun)
		}
	}

	if services.Status != nil {
		statusHandler := handlers.NewStatusHandler(services.Status, services.Dashboard)
		secured.GET("/statuses", statusHandler.Catalogue)
		secured.GET("/dashboard/status-counts", statusHandler.StatusCounts)
		secured.POST("/jobs/status/recompute", admin, statusHandler.Recompute)
	}

	if services.Directory != nil {
		directoryHandler := handlers.NewDirectoryHandler(services.Directory)
		directoryGroup := secured.Group("/directories/:kind")
		{
			directoryGroup.GET("", directoryHandler.List)
			directoryGroup.POST("", directoryHandler.Create)
			directoryGroup.GET("/:id", directoryHandler.Get)
			directoryGroup.PUT("/:id", directoryHandler.Update)
			directoryGroup.DELETE("/:id", admin, directoryHandler.Delete)
		}
	}

	if services.Employees != nil {
		employeeHandler := handlers.NewEmployeeHandler(services.Employees)
		employeeGroup := secured.Group("/employees")
		{
			employeeGroup.GET("", employeeHandler.List)
			employeeGroup.POST("", admin, employeeHandler.Create)
			employeeGroup.GET("/:id", employeeHandler.Get)
			employeeGroup.PUT("/:id", admin, employeeHandler.Update)
			employeeGroup.DELETE("/:id", admin, employeeHandler.Delete)
		}
	}

	if services.Audit != nil {
		auditHandler := handlers.NewAuditHandler(services.Audit)
		secured.GET("/audit-logs", admin, auditHandler.List)
	}

	if services.Drive != nil {
		driveHandler := drive.NewHandler(services.DriveFolders, services.Drive, middleware.Username)
		driveHandler.RegisterRoutes(secured)
	}

	return router
}

func healthHandler(services *Services) gin.HandlerFunc {
	return func(c *gin.Context) {
		if services != nil && services.Health != nil {
			ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
			defer cancel()
			if err := services.Health(ctx); err != nil {
				log.Warn().Err(err).Msg("health check failed")
				c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable", "error": err.Error()})
				return
			}
		}
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	}
}

func corsConfig(allowedOrigins []string) cors.Config {
	defaultOrigins := []string{"http://localhost:3000", "http://127.0.0.1:3000"}
	config := cors.Config{
		AllowOrigins:     defaultOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization", middleware.RequestIDHeader},
		ExposeHeaders:    []string{"Content-Length", "Content-Disposition", middleware.RequestIDHeader},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}
	if len(allowedOrigins) > 0 {
		normalizedOrigins, allowAll := normalizeAllowedOrigins(allowedOrigins)
		if allowAll {
			config.AllowOrigins = nil
			config.AllowOriginFunc = func(origin string) bool { return true }
		} else if len(normalizedOrigins) > 0 {
			config.AllowOrigins = normalizedOrigins
		}
	}
	return config
}

func normalizeAllowedOrigins(origins []string) ([]string, bool) {
	var (
		parsed   []string
		allowAll bool
	)
	for _, origin := range origins {
		parts := strings.Split(origin, ",")
		for _, part := range parts {
			trimmed := strings.TrimSpace(part)
			if trimmed == "" {
				continue
			}
			if trimmed == "*" {
				allowAll = true
				continue
			}
			parsed = append(parsed, trimmed)
		}
	}
	return parsed, allowAll
}
