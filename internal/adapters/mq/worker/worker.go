// Package worker drains completed match results and runs the downstream
// pipeline for each: archive, points table recompute, notification.
package worker

import (
	"context"
	"errors"
	"fmt"
	"runtime"
	"strconv"
	"time"

	"github.com/okian/scorebook/internal/domain/model"
	"github.com/okian/scorebook/pkg/logger"
	"github.com/okian/scorebook/pkg/metrics"
)

const (
	poolShutdownTimeout = 30 * time.Second
)

// Item is what workers read off the queue.
type Item = model.Result

// Queue defines how workers receive results.
type Queue interface {
	Dequeue(ctx context.Context) <-chan Item
}

// Recomputer rebuilds and republishes a tournament's points table.
type Recomputer interface {
	RecomputeStandings(ctx context.Context, tournamentID string) error
}

// Archiver stores a completed result durably.
type Archiver interface {
	SaveResult(ctx context.Context, r model.Result) error
}

// Notifier announces a completed result to external consumers.
type Notifier interface {
	Publish(ctx context.Context, r model.Result) error
}

// Worker processes results until its queue closes.
type Worker interface {
	// Run starts the worker loop until ctx is canceled or the queue is drained.
	Run(ctx context.Context)

	// Shutdown stops the worker without waiting for the queue to drain.
	Shutdown(ctx context.Context) error
}

// InMemoryWorker implements Worker.
type InMemoryWorker struct {
	queue      Queue
	recomputer Recomputer
	archive    Archiver
	notifier   Notifier
	name       string

	shutdown chan struct{}
	done     chan struct{}

	logger logger.Logger
}

// NewInMemoryWorker creates a worker. Archive and notifier are optional and
// set through options.
func NewInMemoryWorker(q Queue, recomputer Recomputer, opts ...Option) *InMemoryWorker {
	w := &InMemoryWorker{
		queue:      q,
		recomputer: recomputer,
		name:       "worker",
		shutdown:   make(chan struct{}),
		done:       make(chan struct{}),
	}
	for _, opt := range opts {
		opt(w)
	}
	if w.logger == nil {
		w.logger = logger.Named(w.name)
	}
	return w
}

// Run starts the worker loop.
func (w *InMemoryWorker) Run(ctx context.Context) {
	defer close(w.done)

	items := w.queue.Dequeue(ctx)
	for {
		select {
		case <-ctx.Done():
			return
		case <-w.shutdown:
			return
		case r, ok := <-items:
			if !ok {
				return
			}
			if err := w.process(ctx, r); err != nil {
				w.logger.Error(ctx, "error processing result",
					logger.String("tournament_id", r.TournamentID),
					logger.String("match_id", r.MatchID),
					logger.Error(err),
				)
			}
		}
	}
}

// Shutdown stops the worker and waits for the current result to finish.
func (w *InMemoryWorker) Shutdown(ctx context.Context) error {
	select {
	case <-w.shutdown:
	default:
		close(w.shutdown)
	}

	select {
	case <-w.done:
		return nil
	case <-ctx.Done():
		w.logger.Warn(ctx, "shutdown timed out")
		return fmt.Errorf("shutdown timed out: %w", ctx.Err())
	}
}

// process archives the result, recomputes standings, then notifies.
// An archive or notify failure does not block the recompute.
func (w *InMemoryWorker) process(ctx context.Context, r model.Result) error { //nolint:gocritic // hugeParam: results are passed by value through the channel
	start := time.Now()
	defer func() {
		metrics.RecordWorkerProcessingLatency(float64(time.Since(start).Milliseconds()))
	}()

	var errs []error

	if w.archive != nil {
		if err := w.archive.SaveResult(ctx, r); err != nil {
			metrics.RecordWorkerError()
			metrics.RecordErrorByComponent("worker", "archive_error")
			errs = append(errs, fmt.Errorf("archive result %s: %w", r.MatchID, err))
		}
	}

	if err := w.recomputer.RecomputeStandings(ctx, r.TournamentID); err != nil {
		metrics.RecordWorkerError()
		metrics.RecordErrorByComponent("worker", "standings_error")
		errs = append(errs, fmt.Errorf("recompute standings for %s: %w", r.TournamentID, err))
	}

	if w.notifier != nil {
		if err := w.notifier.Publish(ctx, r); err != nil {
			metrics.RecordWorkerError()
			metrics.RecordErrorByComponent("worker", "notify_error")
			errs = append(errs, fmt.Errorf("notify result %s: %w", r.MatchID, err))
		}
	}

	return errors.Join(errs...)
}

// Pool manages multiple workers sharing one queue.
type Pool struct {
	workers []*InMemoryWorker
	queue   Queue

	logger logger.Logger
}

// NewPool creates a pool of workerCount workers. Options apply to every worker.
func NewPool(workerCount int, q Queue, recomputer Recomputer, opts ...Option) *Pool {
	if workerCount < 1 {
		workerCount = runtime.NumCPU()
	}

	p := &Pool{
		workers: make([]*InMemoryWorker, workerCount),
		queue:   q,
		logger:  logger.Named("worker-pool"),
	}
	for i := 0; i < workerCount; i++ {
		workerOpts := append([]Option{WithName("worker-" + strconv.Itoa(i))}, opts...)
		p.workers[i] = NewInMemoryWorker(q, recomputer, workerOpts...)
	}

	metrics.UpdateWorkerCount(workerCount)
	return p
}

// Size returns the number of workers.
func (p *Pool) Size() int { return len(p.workers) }

// Start starts all workers in the pool.
func (p *Pool) Start(ctx context.Context) {
	for _, w := range p.workers {
		go w.Run(ctx)
	}
}

// Shutdown closes the queue and lets the workers drain it. Workers still busy
// when ctx (or the pool timeout) expires are stopped.
func (p *Pool) Shutdown(ctx context.Context) error {
	if closer, ok := p.queue.(interface{ Close() error }); ok {
		if err := closer.Close(); err != nil {
			p.logger.Error(ctx, "error closing queue", logger.Error(err))
		}
	}

	drainCtx, cancel := context.WithTimeout(ctx, poolShutdownTimeout)
	defer cancel()

	var timedOut bool
	for i, w := range p.workers {
		select {
		case <-w.done:
		case <-drainCtx.Done():
			timedOut = true
			p.logger.Warn(ctx, "worker drain timed out", logger.Int("worker_id", i))
			_ = w.Shutdown(context.Background())
		}
	}
	metrics.UpdateWorkerCount(0)

	if timedOut {
		return fmt.Errorf("worker pool drain: %w", drainCtx.Err())
	}
	return nil
}
