package router

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"github.com/straye-as/salesops-api/internal/auth"
	"github.com/straye-as/salesops-api/internal/config"
	"github.com/straye-as/salesops-api/internal/database"
	"github.com/straye-as/salesops-api/internal/domain"
	"github.com/straye-as/salesops-api/internal/http/handler"
	"github.com/straye-as/salesops-api/internal/http/middleware"
	"github.com/straye-as/salesops-api/internal/metrics"
	httpSwagger "github.com/swaggo/http-swagger/v2"
	"go.uber.org/zap"
	"gorm.io/gorm"

	_ "github.com/straye-as/salesops-api/docs" // Import generated swagger docs
)

// Handlers groups the HTTP handlers mounted under /api/v1
type Handlers struct {
	Activity        *handler.ActivityHandler
	Product         *handler.ProductHandler
	QuotationNumber *handler.QuotationNumberHandler
	Quotation       *handler.QuotationHandler
	Export          *handler.ExportHandler
}

type Router struct {
	cfg            *config.Config
	logger         *zap.Logger
	db             *gorm.DB
	redis          redis.Cmdable
	authMiddleware *auth.Middleware
	rateLimiter    *middleware.RateLimiter
	metrics        *metrics.Metrics
	gatherer       prometheus.Gatherer
	handlers       Handlers
}

func NewRouter(
	cfg *config.Config,
	logger *zap.Logger,
	db *gorm.DB,
	redisClient redis.Cmdable,
	authMiddleware *auth.Middleware,
	rateLimiter *middleware.RateLimiter,
	m *metrics.Metrics,
	gatherer prometheus.Gatherer,
	handlers Handlers,
) *Router {
	return &Router{
		cfg:            cfg,
		logger:         logger,
		db:             db,
		redis:          redisClient,
		authMiddleware: authMiddleware,
		rateLimiter:    rateLimiter,
		metrics:        m,
		gatherer:       gatherer,
		handlers:       handlers,
	}
}

func (rt *Router) Setup() http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(middleware.Recovery(rt.logger))
	r.Use(middleware.Logging(rt.logger))
	r.Use(middleware.Metrics(rt.metrics))
	r.Use(middleware.SecurityHeaders(&rt.cfg.Security))
	r.Use(middleware.CORS(&rt.cfg.CORS, rt.cfg.App.Environment, rt.logger))
	r.Use(rt.rateLimiter.LimitByIP)

	// Liveness
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("OK"))
	})

	r.Get("/health/db", rt.databaseHealth)
	r.Get("/health/ready", rt.readiness)

	if rt.cfg.Server.EnableSwagger {
		r.Get("/swagger/*", httpSwagger.Handler(
			httpSwagger.URL("/swagger/doc.json"),
		))
	}

	if rt.cfg.Server.EnableMetrics && rt.gatherer != nil {
		r.Handle("/metrics", promhttp.HandlerFor(rt.gatherer, promhttp.HandlerOpts{}))
	}

	h := rt.handlers
	r.Route("/api/v1", func(r chi.Router) {
		// The token is the credential; links are single use and short lived
		r.Get("/downloads/{token}", h.Export.Download)

		r.Group(func(r chi.Router) {
			r.Use(rt.authMiddleware.Authenticate)
			r.Use(rt.rateLimiter.Limit)

			r.Get("/products", h.Product.Search)

			r.Route("/quotation-numbers", func(r chi.Router) {
				r.Get("/", h.QuotationNumber.List)
				r.Post("/generate", h.QuotationNumber.Generate)
			})

			r.Route("/quotations", func(r chi.Router) {
				r.Post("/calculate", h.Quotation.Calculate)

				r.Group(func(r chi.Router) {
					r.Use(rt.rateLimiter.LimitRender)
					r.With(middleware.DocumentCSP).Post("/preview", h.Quotation.Preview)
					r.Post("/pdf", h.Quotation.PDF)
					r.Post("/{brand}/spreadsheet", h.Quotation.Spreadsheet)
					r.Post("/export", h.Export.Export)
				})
			})

			r.Get("/export-sessions/current", h.Export.CurrentSession)

			r.Route("/activities", func(r chi.Router) {
				r.Get("/", h.Activity.List)
				r.Post("/", h.Activity.Create)
				r.Get("/stats", h.Activity.Stats)
				r.Get("/{id}", h.Activity.GetByID)
				r.Put("/{id}", h.Activity.Update)
				r.Delete("/{id}", h.Activity.Delete)
				r.Post("/{id}/submit", h.Activity.Submit)

				r.Group(func(r chi.Router) {
					r.Use(rt.authMiddleware.RequireRole(domain.RoleManager, domain.RoleAdmin))
					r.Post("/{id}/approve", h.Activity.Approve)
					r.Post("/{id}/decline", h.Activity.Decline)
				})
			})
		})
	})

	return r
}

func (rt *Router) databaseHealth(w http.ResponseWriter, r *http.Request) {
	stats, err := database.HealthCheckWithStats(rt.db)
	if err != nil {
		rt.logger.Error("Database health check failed", zap.Error(err))
		writeHealth(w, http.StatusServiceUnavailable, map[string]interface{}{
			"status":  "unhealthy",
			"error":   err.Error(),
			"service": "database",
		})
		return
	}

	writeHealth(w, http.StatusOK, map[string]interface{}{
		"status":  "healthy",
		"service": "database",
		"stats": map[string]interface{}{
			"max_open_connections": stats.MaxOpenConnections,
			"open_connections":     stats.OpenConnections,
			"in_use":               stats.InUse,
			"idle":                 stats.Idle,
			"wait_count":           stats.WaitCount,
			"wait_duration_ms":     stats.WaitDuration.Milliseconds(),
		},
	})
}

// readiness checks every dependency a request may touch
func (rt *Router) readiness(w http.ResponseWriter, r *http.Request) {
	checks := make(map[string]interface{})
	allHealthy := true

	if err := database.HealthCheck(rt.db); err != nil {
		rt.logger.Error("Database health check failed", zap.Error(err))
		checks["database"] = map[string]interface{}{"status": "unhealthy", "error": err.Error()}
		allHealthy = false
	} else {
		checks["database"] = map[string]interface{}{"status": "healthy"}
	}

	if rt.redis != nil {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		err := rt.redis.Ping(ctx).Err()
		cancel()
		if err != nil {
			rt.logger.Error("Redis health check failed", zap.Error(err))
			checks["redis"] = map[string]interface{}{"status": "unhealthy", "error": err.Error()}
			allHealthy = false
		} else {
			checks["redis"] = map[string]interface{}{"status": "healthy"}
		}
	}

	status, label := http.StatusOK, "healthy"
	if !allHealthy {
		status, label = http.StatusServiceUnavailable, "unhealthy"
	}
	writeHealth(w, status, map[string]interface{}{
		"status": label,
		"checks": checks,
	})
}

func writeHealth(w http.ResponseWriter, status int, body map[string]interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}
