// Package bootstrap wires process-wide runtime dependencies for the commands.
package bootstrap

import (
	"context"
	"fmt"
	"log/slog"

	"sociopedia/internal/cache"
	"sociopedia/internal/config"
	"sociopedia/internal/database"
	"sociopedia/internal/middleware"
	"sociopedia/internal/observability"

	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// Runtime holds the connections shared by a command.
type Runtime struct {
	DB    *gorm.DB
	Redis *redis.Client

	shutdownTracing func(context.Context) error
}

// InitRuntime rebuilds the logger from cfg, starts tracing, connects to the
// database and tries Redis. A nil Redis client means the process runs without cache.
func InitRuntime(cfg *config.Config) (*Runtime, error) {
	middleware.Logger = middleware.NewLogger(cfg.Env, cfg.LogLevel)

	shutdownTracing, err := observability.InitTracing(observability.TracingConfig{
		ServiceName:    "sociopedia-api",
		ServiceVersion: "1.0.0",
		Environment:    cfg.Env,
		Enabled:        cfg.TracingEnabled,
		Exporter:       cfg.TracingExporter,
		OTLPEndpoint:   cfg.OTLPEndpoint,
		SamplerRatio:   cfg.TracingSampleRatio,
	})
	if err != nil {
		return nil, fmt.Errorf("tracing init failed: %w", err)
	}

	db, err := database.Connect(cfg)
	if err != nil {
		_ = shutdownTracing(context.Background())
		return nil, fmt.Errorf("database connection failed: %w", err)
	}

	rdb := cache.InitRedis(cfg.RedisURL)

	middleware.Logger.Info("runtime initialized",
		slog.String("env", cfg.Env),
		slog.String("db_driver", cfg.DBDriver),
		slog.Bool("redis", rdb != nil),
		slog.Bool("tracing", cfg.TracingEnabled),
	)
	return &Runtime{DB: db, Redis: rdb, shutdownTracing: shutdownTracing}, nil
}

// Close flushes traces. Database and Redis are closed by their owners.
func (r *Runtime) Close(ctx context.Context) error {
	if r.shutdownTracing == nil {
		return nil
	}
	return r.shutdownTracing(ctx)
}
