package server

import (
	"log/slog"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/cozysnippet/api/internal/auth"
	"github.com/cozysnippet/api/internal/config"
	"github.com/cozysnippet/api/internal/handler"
	"github.com/cozysnippet/api/internal/metrics"
	"github.com/cozysnippet/api/internal/middleware"
	"github.com/cozysnippet/api/internal/openapi"
	"github.com/cozysnippet/api/internal/ratelimit"
	"github.com/cozysnippet/api/internal/service"
)

// RouterDeps holds everything the HTTP routes need.
type RouterDeps struct {
	Config    *config.Config
	Logger    *slog.Logger
	Keyring   *auth.Keyring
	Users     *service.UserService
	Keys      *service.KeyService
	Metrics   metrics.Recorder
	Snapshots metrics.Snapshotter // nil makes /admin/metrics answer 503
	Limiter   *ratelimit.Limiter  // nil disables rate limiting
	Doc       *openapi.Document
}

// NewRouter configures the chi router with all routes and middleware.
//
// Every request passes through rate limiting before any credential check.
// /health and the documentation routes are public; /api/v1 requires an API
// key and /admin the admin secret.
func NewRouter(deps RouterDeps) *chi.Mux {
	cfg := deps.Config
	logger := deps.Logger

	r := chi.NewRouter()

	// 404 and 405 handlers are registered first so sub-routers inherit them.
	r.NotFound(handler.NotFound)
	r.MethodNotAllowed(handler.MethodNotAllowed)

	corsCfg := middleware.DefaultCORSConfig()
	if origins := cfg.GetCORSAllowedOrigins(); len(origins) > 0 {
		corsCfg.AllowedOrigins = origins
	}

	// Global middleware
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.RequestID)
	r.Use(middleware.Logger(logger, deps.Metrics))
	r.Use(middleware.Recoverer(logger))
	r.Use(middleware.Security(middleware.SecurityConfig{IsDevelopment: cfg.IsDevelopment()}))
	// Every request, preflights and oversize bodies included, is counted
	// before CORS or the body cap can answer it.
	r.Use(middleware.RateLimit(middleware.RateLimitConfig{
		Logger:  logger,
		Limiter: deps.Limiter,
		Metrics: deps.Metrics,
	}))
	r.Use(middleware.CORS(corsCfg))
	r.Use(middleware.MaxBodySize(cfg.MaxRequestBodySize))

	healthHandler := handler.NewHealthHandler(cfg.AppVersion)
	userHandler := handler.NewUserHandler(deps.Users, logger)
	adminHandler := handler.NewAdminHandler(deps.Keys, logger)
	metricsHandler := handler.NewMetricsHandler(deps.Snapshots, deps.Users.Count)

	authCfg := middleware.AuthConfig{
		Logger:  logger,
		Keyring: deps.Keyring,
		Metrics: deps.Metrics,
	}

	// Public endpoints
	r.Get("/health", healthHandler.Health)
	if deps.Doc != nil {
		r.Get("/doc", deps.Doc.JSON)
		r.Get("/doc.yaml", deps.Doc.YAML)
		r.Get("/ui", deps.Doc.UI)
	}

	// Admin endpoints
	r.Route("/admin", func(r chi.Router) {
		r.Use(middleware.AdminAuth(authCfg))

		r.Post("/keys/generate", adminHandler.GenerateKeys)
		r.Get("/keys/info", adminHandler.KeysInfo)
		r.Get("/health", adminHandler.Health)
		r.Get("/metrics", metricsHandler.Metrics)
	})

	// API v1 routes
	r.Route("/api/v1", func(r chi.Router) {
		r.Use(middleware.APIKeyAuth(authCfg))

		r.Route("/users", func(r chi.Router) {
			r.Get("/", userHandler.List)
			r.Post("/", userHandler.Create)
			r.Post("/seed", userHandler.Seed)
			r.Get("/{id}", userHandler.Get)
			r.Put("/{id}", userHandler.Update)
			r.Delete("/{id}", userHandler.Delete)
		})
	})

	return r
}

