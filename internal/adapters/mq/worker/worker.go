// Package worker executes queued pipeline runs.
package worker

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/okian/piste/internal/adapters/mq/queue"
	"github.com/okian/piste/pkg/logger"
	"github.com/okian/piste/pkg/metrics"
)

const poolShutdownTimeout = 30 * time.Second

// Executor performs one run. Failures are reported by the executor itself;
// the returned error is only logged.
type Executor interface {
	Execute(ctx context.Context, r queue.Request) error
}

// Queue defines how workers receive runs.
type Queue interface {
	Dequeue(ctx context.Context) <-chan queue.Request
}

// Worker processes runs until stopped.
type Worker interface {
	Run(ctx context.Context)
	Shutdown(ctx context.Context) error
}

// InMemoryWorker pulls runs from a Queue and hands them to an Executor.
type InMemoryWorker struct {
	queue    Queue
	executor Executor
	name     string

	shutdown chan struct{}
	done     chan struct{}

	logger logger.Logger
}

// NewInMemoryWorker creates a worker.
func NewInMemoryWorker(q Queue, exec Executor, opts ...Option) *InMemoryWorker {
	w := &InMemoryWorker{
		queue:    q,
		executor: exec,
		name:     "worker",
		shutdown: make(chan struct{}),
		done:     make(chan struct{}),
		logger:   logger.Get().Named("worker"),
	}
	for _, opt := range opts {
		opt(w)
	}
	if w.name != "worker" {
		w.logger = w.logger.Named(w.name)
	}
	return w
}

// Run executes runs one at a time until ctx is done, Shutdown is called or
// the queue channel closes.
func (w *InMemoryWorker) Run(ctx context.Context) {
	defer close(w.done)

	runs := w.queue.Dequeue(ctx)
	for {
		select {
		case <-ctx.Done():
			return
		case <-w.shutdown:
			return
		case r, ok := <-runs:
			if !ok {
				return
			}
			w.execute(ctx, r)
		}
	}
}

func (w *InMemoryWorker) execute(ctx context.Context, r queue.Request) {
	ctx = logger.WithRunID(ctx, r.RunID)
	metrics.UpdateWorkerActive(1)
	defer metrics.UpdateWorkerActive(-1)

	start := time.Now()
	w.logger.Info(ctx, "run started",
		logger.String("stage", string(r.Stage)),
		logger.Int("year", r.Year),
	)
	if err := w.executor.Execute(ctx, r); err != nil {
		w.logger.Error(ctx, "run failed",
			logger.String("stage", string(r.Stage)),
			logger.Int("year", r.Year),
			logger.Error(err),
		)
		return
	}
	w.logger.Info(ctx, "run finished", logger.Duration("took", time.Since(start)))
}

// Shutdown stops the worker after the current run.
func (w *InMemoryWorker) Shutdown(ctx context.Context) error {
	close(w.shutdown)
	select {
	case <-w.done:
		return nil
	case <-ctx.Done():
		w.logger.Warn(ctx, "shutdown timed out")
		return fmt.Errorf("shutdown timed out: %w", ctx.Err())
	}
}

// Pool runs a fixed number of workers against one queue.
type Pool struct {
	workers []*InMemoryWorker
	queue   Queue
	logger  logger.Logger
}

// NewPool creates a pool. A count below one yields a single worker so runs
// stay serial.
func NewPool(count int, q Queue, exec Executor) *Pool {
	if count < 1 {
		count = 1
	}
	p := &Pool{
		workers: make([]*InMemoryWorker, count),
		queue:   q,
		logger:  logger.Get().Named("worker-pool"),
	}
	for i := range p.workers {
		p.workers[i] = NewInMemoryWorker(q, exec, WithName("worker-"+strconv.Itoa(i)))
	}
	return p
}

// Size returns the number of workers.
func (p *Pool) Size() int { return len(p.workers) }

// Start launches every worker.
func (p *Pool) Start(ctx context.Context) {
	for _, w := range p.workers {
		go w.Run(ctx)
	}
}

// Shutdown closes the queue and waits for the workers to drain it.
func (p *Pool) Shutdown(ctx context.Context) error {
	if closer, ok := p.queue.(interface{ Close() error }); ok {
		if err := closer.Close(); err != nil {
			p.logger.Error(ctx, "error closing queue", logger.Error(err))
		}
	}

	waitCtx, cancel := context.WithTimeout(ctx, poolShutdownTimeout)
	defer cancel()

	for i, w := range p.workers {
		select {
		case <-w.done:
		case <-waitCtx.Done():
			p.logger.Warn(ctx, "worker shutdown timed out", logger.Int("worker_id", i))
			return fmt.Errorf("worker %d: %w", i, waitCtx.Err())
		}
	}
	return nil
}
