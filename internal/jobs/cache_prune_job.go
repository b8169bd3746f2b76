package jobs

import (
	"context"
	"log/slog"
	"time"
)

type CachePruner interface {
	Prune(ctx context.Context) int
}

// CachePruneJob drops expired entries from the in-memory cache. Redis expires
// its own keys, so the job is only registered for the memory store.
type CachePruneJob struct {
	cache    CachePruner
	interval time.Duration
	logger   *slog.Logger
}

func NewCachePruneJob(cache CachePruner, interval time.Duration, logger *slog.Logger) *CachePruneJob {
	return &CachePruneJob{
		cache:    cache,
		interval: interval,
		logger:   logger,
	}
}

func (j *CachePruneJob) Name() string {
	return "cache_prune"
}

func (j *CachePruneJob) Interval() time.Duration {
	return j.interval
}

func (j *CachePruneJob) Run(ctx context.Context) error {
	if n := j.cache.Prune(ctx); n > 0 {
		j.logger.Debug("pruned expired cache entries", "count", n)
	}
	return nil
}
