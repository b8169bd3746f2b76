package data

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"

	"batch-release/internal/config"
	"batch-release/internal/metrics"
)

const (
	redisKeyPrefix = "batch-release:"
	scanBatch      = 500
)

// RedisCacheClient is the subset of the go-redis client the cache uses.
type RedisCacheClient interface {
	Get(ctx context.Context, key string) *redis.StringCmd
	GetDel(ctx context.Context, key string) *redis.StringCmd
	Set(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.StatusCmd
	Del(ctx context.Context, keys ...string) *redis.IntCmd
	Scan(ctx context.Context, cursor uint64, match string, count int64) *redis.ScanCmd
	Close() error
}

type RedisCache struct {
	client RedisCacheClient
	logger *slog.Logger
}

// NewRedisCache creates a new Redis-backed cache
func NewRedisCache(cfg *config.Config, logger *slog.Logger) (*RedisCache, error) {
	if cfg.Redis == nil {
		return nil, errors.New("redis cache requires a redis section")
	}

	client, err := NewRedisClient(context.Background(), cfg, cfg.Redis.CacheIndex, "cache", logger)
	if err != nil {
		return nil, err
	}

	return &RedisCache{
		client: client,
		logger: logger,
	}, nil
}

// key generates a namespaced Redis key
func (r *RedisCache) key(key string) string {
	return redisKeyPrefix + key
}

// ClosePool closes the Redis connection pool
func (r *RedisCache) ClosePool() error {
	return r.client.Close()
}

func (r *RedisCache) GetKey(ctx context.Context, key string) (string, error) {
	start := time.Now()
	defer observe(metrics.CacheTypeRedis, metrics.CacheOperationTypeGet, start)

	value, err := r.client.Get(ctx, r.key(key)).Result()
	return r.result(value, err, "GET")
}

func (r *RedisCache) SetKey(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	start := time.Now()
	defer observe(metrics.CacheTypeRedis, metrics.CacheOperationTypeSet, start)

	if err := r.client.Set(ctx, r.key(key), value, ttl).Err(); err != nil {
		r.logger.Error("error executing redis 'SET'", "error", err)
		return err
	}
	return nil
}

func (r *RedisCache) GetDelKey(ctx context.Context, key string) (string, error) {
	start := time.Now()
	defer observe(metrics.CacheTypeRedis, metrics.CacheOperationTypeGetDel, start)

	value, err := r.client.GetDel(ctx, r.key(key)).Result()
	return r.result(value, err, "GETDEL")
}

// Delete removes an entry from the cache
func (r *RedisCache) Delete(ctx context.Context, key string) error {
	start := time.Now()
	defer observe(metrics.CacheTypeRedis, metrics.CacheOperationTypeDelete, start)

	if err := r.client.Del(ctx, r.key(key)).Err(); err != nil {
		r.logger.Error("error executing redis 'DEL'", "error", err)
		return err
	}
	return nil
}

// Size counts the keys under the cache prefix with SCAN so a large keyspace
// never blocks the server.
func (r *RedisCache) Size(ctx context.Context) int {
	var (
		cursor uint64
		total  int
	)
	for {
		keys, next, err := r.client.Scan(ctx, cursor, r.key("*"), scanBatch).Result()
		if err != nil {
			r.logger.Error("error executing redis 'SCAN'", "error", err)
			return 0
		}
		total += len(keys)
		if next == 0 {
			break
		}
		cursor = next
	}

	metrics.CacheItems.WithLabelValues(metrics.CacheTypeRedis).Set(float64(total))
	return total
}

func (r *RedisCache) result(value string, err error, command string) (string, error) {
	if errors.Is(err, redis.Nil) {
		metrics.CacheMisses.WithLabelValues(metrics.CacheTypeRedis).Inc()
		return "", ErrCacheMiss
	}
	if err != nil {
		r.logger.Error("error executing redis command", "command", command, "error", err)
		return "", err
	}

	metrics.CacheHits.WithLabelValues(metrics.CacheTypeRedis).Inc()
	return value, nil
}
