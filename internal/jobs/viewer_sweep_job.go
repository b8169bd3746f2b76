package jobs

import (
	"context"
	"log/slog"
	"time"

	"batch-release/internal/metrics"
)

type ViewerSweeper interface {
	Sweep(maxIdle time.Duration) int
}

// ViewerSweepJob closes viewer sessions nobody has touched for idleTimeout,
// releasing their rendered documents.
type ViewerSweepJob struct {
	viewers     ViewerSweeper
	idleTimeout time.Duration
	interval    time.Duration
	logger      *slog.Logger
}

func NewViewerSweepJob(viewers ViewerSweeper, idleTimeout, interval time.Duration, logger *slog.Logger) *ViewerSweepJob {
	return &ViewerSweepJob{
		viewers:     viewers,
		idleTimeout: idleTimeout,
		interval:    interval,
		logger:      logger,
	}
}

func (j *ViewerSweepJob) Name() string {
	return "viewer_sweep"
}

func (j *ViewerSweepJob) Interval() time.Duration {
	return j.interval
}

func (j *ViewerSweepJob) Run(ctx context.Context) error {
	closed := j.viewers.Sweep(j.idleTimeout)
	if closed > 0 {
		metrics.ViewersSwept.Add(float64(closed))
		j.logger.Info("closed idle viewers", "count", closed, "idle_timeout", j.idleTimeout)
	}
	return nil
}
