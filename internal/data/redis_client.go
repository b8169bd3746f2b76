package data

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/redis/go-redis/extra/redisprometheus/v9"
	"github.com/redis/go-redis/v9"

	"batch-release/internal/config"
	"batch-release/internal/metrics"
)

// NewRedisClient connects to the configured redis (directly or through
// sentinel) using database db. The pool is exported to prometheus under
// subsystem.
func NewRedisClient(ctx context.Context, cfg *config.Config, db int, subsystem string, logger *slog.Logger) (*redis.Client, error) {
	if cfg.Redis == nil {
		return nil, fmt.Errorf("redis is not configured")
	}

	var client *redis.Client
	if cfg.Redis.Sentinel != nil {
		logger.Info("connecting to redis via sentinel",
			"master", cfg.Redis.Sentinel.MasterName,
			"sentinels", cfg.Redis.Sentinel.SentinelAddresses)

		client = redis.NewFailoverClient(&redis.FailoverOptions{
			MasterName:       cfg.Redis.Sentinel.MasterName,
			SentinelAddrs:    cfg.Redis.Sentinel.SentinelAddresses,
			SentinelUsername: cfg.Redis.Sentinel.SentinelUsername,
			SentinelPassword: cfg.Redis.Sentinel.SentinelPassword,
			Username:         cfg.Redis.Username,
			Password:         cfg.Redis.Password,
			DB:               db,
			MinIdleConns:     2,
		})
	} else {
		client = redis.NewClient(&redis.Options{
			Addr:         cfg.Redis.Address,
			Username:     cfg.Redis.Username,
			Password:     cfg.Redis.Password,
			DB:           db,
			MinIdleConns: 2,
		})
	}

	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("redis connection failed: %w", err)
	}

	collector := redisprometheus.NewCollector(metrics.Namespace, subsystem, client)
	if err := prometheus.Register(collector); err != nil {
		logger.Debug("failed to register redis collector: already registered", "subsystem", subsystem, "error", err)
	}

	return client, nil
}
