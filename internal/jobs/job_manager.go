package jobs

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
)

// Job is one pass of a housekeeping task. The manager decides when passes run.
type Job interface {
	Name() string
	Interval() time.Duration
	Run(ctx context.Context) error
}

// JobManager schedules housekeeping jobs for this instance. Viewer state lives
// in process memory, so every replica runs its own copy of each job.
type JobManager struct {
	cron    *cron.Cron
	logger  *slog.Logger
	jobs    []Job
	entries map[string]cron.EntryID
	wg      sync.WaitGroup
	mu      sync.Mutex
	ctx     context.Context
	cancel  context.CancelFunc
}

func NewJobManager(logger *slog.Logger) *JobManager {
	cl := cronLogger{logger: logger}
	return &JobManager{
		cron:    cron.New(cron.WithLogger(cl), cron.WithChain(cron.Recover(cl), cron.SkipIfStillRunning(cl))),
		logger:  logger,
		entries: make(map[string]cron.EntryID),
	}
}

func (jm *JobManager) Register(job Job) {
	jm.mu.Lock()
	defer jm.mu.Unlock()
	jm.jobs = append(jm.jobs, job)
}

// Start runs every registered job once and then on its interval. Calling it
// again only schedules jobs registered since the last call.
func (jm *JobManager) Start(ctx context.Context) error {
	jm.mu.Lock()
	defer jm.mu.Unlock()

	if jm.ctx == nil {
		jm.ctx, jm.cancel = context.WithCancel(ctx)
	}
	if err := jm.scheduleNew(jm.ctx); err != nil {
		return err
	}
	jm.cron.Start()
	return nil
}

func (jm *JobManager) scheduleNew(ctx context.Context) error {
	for _, job := range jm.jobs {
		if _, exists := jm.entries[job.Name()]; exists {
			continue
		}
		if job.Interval() <= 0 {
			return fmt.Errorf("job %s: interval must be positive", job.Name())
		}

		j := job
		pass := func() { jm.runOnce(ctx, j) }
		jm.entries[j.Name()] = jm.cron.Schedule(cron.Every(j.Interval()), cron.FuncJob(pass))
		jm.logger.Info("Starting Job", "name", j.Name(), "interval", j.Interval())

		jm.wg.Add(1)
		go func() {
			defer jm.wg.Done()
			pass()
		}()
	}
	return nil
}

func (jm *JobManager) runOnce(ctx context.Context, job Job) {
	if ctx.Err() != nil {
		return
	}
	if err := job.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		jm.logger.Error("Job failed", "job", job.Name(), "error", err)
	}
}

func (jm *JobManager) Shutdown(ctx context.Context) {
	jm.logger.Debug("Shutting down job manager...")

	jm.mu.Lock()
	if jm.cancel != nil {
		jm.cancel()
	}
	for name, id := range jm.entries {
		jm.cron.Remove(id)
		delete(jm.entries, name)
	}
	jm.mu.Unlock()

	stopped := jm.cron.Stop()
	done := make(chan struct{})
	go func() {
		<-stopped.Done()
		jm.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		jm.logger.Debug("All jobs stopped cleanly")
	case <-ctx.Done():
		jm.logger.Warn("Jobs failed to stop before shutdown deadline")
	}
}

type cronLogger struct {
	logger *slog.Logger
}

func (l cronLogger) Info(msg string, keysAndValues ...any) {
	l.logger.Debug("cron: "+msg, keysAndValues...)
}

func (l cronLogger) Error(err error, msg string, keysAndValues ...any) {
	l.logger.Error("cron: "+msg, append(keysAndValues, "error", err)...)
}
