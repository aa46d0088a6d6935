package jobs

import (
	"context"
	"errors"
	"time"

	"github.com/goliatone/go-pagetree/internal/logging"
	"github.com/goliatone/go-pagetree/pkg/interfaces"
)

// DefaultSweepInterval is how often the runner triggers a sweep pass when the
// host does not configure one.
const DefaultSweepInterval = time.Minute

// Runner drives the sweep worker on a fixed interval until its context is
// cancelled. Hosts that already have a job system can skip it and call
// Worker.Process from their own loop.
type Runner struct {
	worker   *Worker
	interval time.Duration
	logger   interfaces.Logger
}

type RunnerOption func(*Runner)

func WithInterval(interval time.Duration) RunnerOption {
	return func(r *Runner) {
		if interval > 0 {
			r.interval = interval
		}
	}
}

func WithRunnerLogger(logger interfaces.Logger) RunnerOption {
	return func(r *Runner) {
		if logger != nil {
			r.logger = logger
		}
	}
}

func NewRunner(worker *Worker, opts ...RunnerOption) *Runner {
	r := &Runner{
		worker:   worker,
		interval: DefaultSweepInterval,
		logger:   logging.NoOp(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Run performs an immediate sweep pass and then one per interval. It blocks
// until ctx is done and returns ctx.Err.
func (r *Runner) Run(ctx context.Context) error {
	if r.worker == nil {
		return errors.New("jobs: runner has no worker")
	}

	r.sweep(ctx)

	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			r.sweep(ctx)
		}
	}
}

func (r *Runner) sweep(ctx context.Context) {
	if err := r.worker.Process(ctx); err != nil {
		r.logger.Error("scheduled publish sweep failed", "error", err)
	}
}
