// Package main is the entrypoint for the CozySnippet API server.
package main

import (
	"context"
	"log/slog"
	"os"

	"github.com/cozysnippet/api/internal/auth"
	"github.com/cozysnippet/api/internal/config"
	"github.com/cozysnippet/api/internal/metrics"
	"github.com/cozysnippet/api/internal/openapi"
	"github.com/cozysnippet/api/internal/ratelimit"
	"github.com/cozysnippet/api/internal/repository"
	"github.com/cozysnippet/api/internal/server"
	"github.com/cozysnippet/api/internal/service"
)

func main() {
	ctx := context.Background()

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger := initLogger(cfg)

	// Credentials
	keyring := auth.NewKeyring(cfg.GetAPIKeys(), cfg.AdminSecret)
	if !keyring.HasAPIKeys() {
		logger.Warn("no API keys configured; /api/v1 requests will fail with AUTH_CONFIG_ERROR")
	}
	if !keyring.HasAdminSecret() {
		logger.Warn("no admin secret configured; /admin requests will fail with ADMIN_CONFIG_ERROR")
	}

	// Storage and services
	recorder := metrics.NewInMemory()
	repo := repository.New()
	userService := service.NewUserService(repo, recorder)
	keyService := service.NewKeyService(keyring, recorder)

	if cfg.SeedOnStart > 0 {
		seeded, err := userService.SeedUsers(ctx, service.SeedUsersRequest{Count: &cfg.SeedOnStart})
		if err != nil {
			logger.Error("failed to seed users", "error", err)
			os.Exit(1)
		}
		logger.Info("seeded users", "count", len(seeded))
	}

	doc, err := openapi.Load(ctx, cfg.AppVersion)
	if err != nil {
		logger.Error("failed to load openapi document", "error", err)
		os.Exit(1)
	}

	var limiter *ratelimit.Limiter
	if cfg.RateLimitEnabled {
		limiter = ratelimit.New(ratelimit.Config{
			Limit:         cfg.RateLimitMaxRequests,
			Window:        cfg.RateLimitWindow,
			Shards:        cfg.RateLimitShards,
			SweepInterval: cfg.RateLimitSweepInterval,
		})
	}

	r := server.NewRouter(server.RouterDeps{
		Config:    cfg,
		Logger:    logger,
		Keyring:   keyring,
		Users:     userService,
		Keys:      keyService,
		Metrics:   recorder,
		Snapshots: recorder,
		Limiter:   limiter,
		Doc:       doc,
	})

	// Create and run server
	srv := server.New(r, server.Options{
		Port:            cfg.AppPort,
		ReadTimeout:     cfg.ReadTimeout,
		WriteTimeout:    cfg.WriteTimeout,
		ShutdownTimeout: cfg.ShutdownTimeout,
	}, logger)

	if limiter != nil {
		srv.OnShutdown("rate limiter", func(ctx context.Context) error {
			limiter.Stop()
			return nil
		})
	}

	logger.Info("starting server",
		"port", cfg.AppPort,
		"env", cfg.AppEnv,
		"version", cfg.AppVersion,
		"rate_limit_enabled", cfg.RateLimitEnabled,
		"api_keys", keyring.APIKeyCount(),
	)

	if err := srv.Run(ctx); err != nil {
		logger.Error("server error", "error", err)
		os.Exit(1)
	}
}

// initLogger initializes the slog logger based on configuration.
func initLogger(cfg *config.Config) *slog.Logger {
	var h slog.Handler

	opts := &slog.HandlerOptions{
		Level: parseLogLevel(cfg.LogLevel),
	}

	if cfg.LogFormat == "json" {
		h = slog.NewJSONHandler(os.Stdout, opts)
	} else {
		h = slog.NewTextHandler(os.Stdout, opts)
	}

	logger := slog.New(h)
	slog.SetDefault(logger)

	return logger
}

// parseLogLevel converts string log level to slog.Level.
func parseLogLevel(level string) slog.Level {
	switch level {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
