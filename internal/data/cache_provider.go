package data

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"batch-release/internal/config"
)

var ErrCacheMiss = errors.New("cache miss")

//go:generate mockgen -source=cache_provider.go -destination=../mocks/cache.go -package=mocks

// CacheProvider is a string key/value store with per-key expiry. A ttl of
// zero keeps the entry until it is deleted.
type CacheProvider interface {
	GetKey(ctx context.Context, key string) (string, error)
	SetKey(ctx context.Context, key string, value interface{}, ttl time.Duration) error
	GetDelKey(ctx context.Context, key string) (string, error)
	Delete(ctx context.Context, key string) error
	Size(ctx context.Context) int
}

// NewCacheProvider returns a new CacheProvider
func NewCacheProvider(cfg *config.Config, logger *slog.Logger) (CacheProvider, error) {
	switch cfg.Cache.Type {
	case "redis":
		return NewRedisCache(cfg, logger)
	case "memory":
		fallthrough
	default:
		return NewMemCache(cfg, logger), nil
	}
}
