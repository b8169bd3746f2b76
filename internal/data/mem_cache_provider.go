package data

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"batch-release/internal/config"
	"batch-release/internal/metrics"
)

type memEntry struct {
	value     string
	expiresAt time.Time
}

func (e memEntry) expired(now time.Time) bool {
	return !e.expiresAt.IsZero() && !now.Before(e.expiresAt)
}

type MemCache struct {
	cache  map[string]memEntry
	mutex  sync.RWMutex
	logger *slog.Logger
	now    func() time.Time
}

func NewMemCache(cfg *config.Config, logger *slog.Logger) *MemCache {
	return &MemCache{
		cache:  make(map[string]memEntry),
		logger: logger,
		now:    time.Now,
	}
}

func (d *MemCache) GetKey(ctx context.Context, key string) (string, error) {
	start := time.Now()
	defer observe(metrics.CacheTypeMemory, metrics.CacheOperationTypeGet, start)

	d.mutex.RLock()
	entry, exists := d.cache[key]
	d.mutex.RUnlock()

	if !exists || entry.expired(d.now()) {
		metrics.CacheMisses.WithLabelValues(metrics.CacheTypeMemory).Inc()
		return "", ErrCacheMiss
	}

	metrics.CacheHits.WithLabelValues(metrics.CacheTypeMemory).Inc()
	return entry.value, nil
}

func (d *MemCache) SetKey(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	start := time.Now()
	defer observe(metrics.CacheTypeMemory, metrics.CacheOperationTypeSet, start)

	entry := memEntry{value: stringify(value)}
	if ttl > 0 {
		entry.expiresAt = d.now().Add(ttl)
	}

	d.mutex.Lock()
	d.cache[key] = entry
	size := len(d.cache)
	d.mutex.Unlock()

	metrics.CacheItems.WithLabelValues(metrics.CacheTypeMemory).Set(float64(size))
	return nil
}

// GetDelKey returns the value and removes it in one step, so two callers
// can never both consume the same key.
func (d *MemCache) GetDelKey(ctx context.Context, key string) (string, error) {
	start := time.Now()
	defer observe(metrics.CacheTypeMemory, metrics.CacheOperationTypeGetDel, start)

	d.mutex.Lock()
	entry, exists := d.cache[key]
	delete(d.cache, key)
	d.mutex.Unlock()

	if !exists || entry.expired(d.now()) {
		metrics.CacheMisses.WithLabelValues(metrics.CacheTypeMemory).Inc()
		return "", ErrCacheMiss
	}

	metrics.CacheHits.WithLabelValues(metrics.CacheTypeMemory).Inc()
	return entry.value, nil
}

func (d *MemCache) Delete(ctx context.Context, key string) error {
	start := time.Now()
	defer observe(metrics.CacheTypeMemory, metrics.CacheOperationTypeDelete, start)

	d.mutex.Lock()
	defer d.mutex.Unlock()
	delete(d.cache, key)
	return nil
}

// Size returns the current number of elements in the cache, expired or not.
func (d *MemCache) Size(ctx context.Context) int {
	d.mutex.RLock()
	defer d.mutex.RUnlock()
	return len(d.cache)
}

// Prune drops expired entries and returns how many were removed.
func (d *MemCache) Prune(ctx context.Context) int {
	start := time.Now()
	defer observe(metrics.CacheTypeMemory, metrics.CacheOperationTypePrune, start)

	now := d.now()

	d.mutex.Lock()
	removed := 0
	for k, entry := range d.cache {
		if entry.expired(now) {
			delete(d.cache, k)
			removed++
		}
	}
	size := len(d.cache)
	d.mutex.Unlock()

	metrics.CacheItems.WithLabelValues(metrics.CacheTypeMemory).Set(float64(size))
	if removed > 0 && d.logger != nil {
		d.logger.Debug("pruned expired cache entries", "removed", removed, "remaining", size)
	}
	return removed
}

func stringify(value interface{}) string {
	switch v := value.(type) {
	case string:
		return v
	case []byte:
		return string(v)
	case fmt.Stringer:
		return v.String()
	default:
		return fmt.Sprint(v)
	}
}

func observe(cacheName, operation string, start time.Time) {
	metrics.CacheOperationDuration.WithLabelValues(cacheName, operation).Observe(time.Since(start).Seconds())
}
