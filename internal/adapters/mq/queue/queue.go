// Package queue holds pending pipeline runs between submission and execution.
package queue

import (
	"context"
	"sync"

	"github.com/okian/piste/internal/domain/model"
	"github.com/okian/piste/pkg/metrics"
)

const defaultCapacity = 64

// Request is the payload flowing through the queue.
type Request = model.RunRequest

// Queue provides non-blocking enqueue and channel-based dequeue.
type Queue interface {
	// Enqueue adds a run. It returns false when the queue is full or closed.
	Enqueue(ctx context.Context, r Request) bool

	// Dequeue returns a channel of runs, closed after the queue is closed and drained.
	Dequeue(ctx context.Context) <-chan Request

	Len(ctx context.Context) int
	Close() error
	IsClosed() bool
}

// InMemoryQueue implements Queue using a buffered channel.
type InMemoryQueue struct {
	runs     chan Request
	capacity int

	mu     sync.RWMutex
	closed bool
}

// NewInMemoryQueue creates a bounded queue.
func NewInMemoryQueue(opts ...Option) *InMemoryQueue {
	q := &InMemoryQueue{capacity: defaultCapacity}
	for _, opt := range opts {
		opt(q)
	}
	q.runs = make(chan Request, q.capacity)

	metrics.UpdateQueueCapacity(q.capacity)
	metrics.UpdateQueueSize(0)
	return q
}

// Enqueue adds a run to the queue without blocking.
func (q *InMemoryQueue) Enqueue(ctx context.Context, r Request) bool {
	q.mu.RLock()
	defer q.mu.RUnlock()

	if q.closed || ctx.Err() != nil {
		metrics.RecordQueueRejected()
		return false
	}

	select {
	case q.runs <- r:
		metrics.RecordQueueEnqueue()
		metrics.UpdateQueueSize(len(q.runs))
		return true
	default:
		metrics.RecordQueueRejected()
		return false
	}
}

// Dequeue returns a channel that yields queued runs until the queue is closed
// or ctx is done.
func (q *InMemoryQueue) Dequeue(ctx context.Context) <-chan Request {
	out := make(chan Request)
	go func() {
		defer close(out)
		for r := range q.runs {
			select {
			case out <- r:
				metrics.UpdateQueueSize(len(q.runs))
			case <-ctx.Done():
				return
			}
		}
	}()
	return out
}

// Len returns the number of queued runs.
func (q *InMemoryQueue) Len(_ context.Context) int {
	return len(q.runs)
}

// Close stops accepting runs. Already queued runs are still delivered.
func (q *InMemoryQueue) Close() error {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.closed {
		return nil
	}
	close(q.runs)
	q.closed = true
	return nil
}

// IsClosed reports whether Close was called.
func (q *InMemoryQueue) IsClosed() bool {
	q.mu.RLock()
	defer q.mu.RUnlock()
	return q.closed
}
