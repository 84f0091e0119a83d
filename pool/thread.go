package pool

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"
)

// ThreadExecutor runs units on a fixed set of goroutines sharing process
// memory. Unit functions and their inputs can be arbitrary Go values; no
// serialization is involved.
//
// Workers are started at construction and torn down by Close. A unit
// failure (error or panic) is reported through its Completion and never
// stops the other workers.
type ThreadExecutor[T any, R any] struct {
	queue       chan queued[T, R]
	completions chan Completion[R]
	limiter     *rate.Limiter
	done        chan struct{}
	closed      atomic.Bool
	closeOnce   sync.Once
}

// NewThreadExecutor creates a thread-backed executor and starts its workers.
// Default configuration: workers = available CPUs - 1, queue = worker count.
func NewThreadExecutor[T any, R any](opts ...Option) *ThreadExecutor[T, R] {
	cfg := newConfig(opts...)

	ex := &ThreadExecutor[T, R]{
		queue:       make(chan queued[T, R], cfg.queueSize),
		completions: make(chan Completion[R], cfg.queueSize),
		limiter:     cfg.limiter,
		done:        make(chan struct{}),
	}

	var g errgroup.Group
	for i := 0; i < cfg.workerCount; i++ {
		g.Go(ex.worker)
	}

	go func() {
		_ = g.Wait()
		close(ex.completions)
		close(ex.done)
	}()

	return ex
}

// Submit schedules a unit for execution. It blocks while the queue is full
// and returns ErrPoolClosed after Close, or ctx.Err() if ctx ends first.
func (ex *ThreadExecutor[T, R]) Submit(ctx context.Context, u Unit[T, R]) error {
	if ex.closed.Load() {
		return ErrPoolClosed
	}

	select {
	case ex.queue <- queued[T, R]{Unit: u, ctx: ctx}:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Completions returns the stream of finished units, in completion order.
func (ex *ThreadExecutor[T, R]) Completions() <-chan Completion[R] {
	return ex.completions
}

// Close stops accepting work and waits for in-flight units to finish.
// It is safe to call more than once.
func (ex *ThreadExecutor[T, R]) Close() error {
	return ex.CloseTimeout(0)
}

// CloseTimeout is Close with an upper bound on how long to wait for workers
// to drain. A timeout <= 0 waits forever.
func (ex *ThreadExecutor[T, R]) CloseTimeout(timeout time.Duration) error {
	ex.closed.Store(true)
	ex.closeOnce.Do(func() {
		close(ex.queue)
	})
	return waitUntil(ex.done, timeout)
}

// worker drains the queue until it is closed. Every dequeued unit produces
// exactly one Completion.
func (ex *ThreadExecutor[T, R]) worker() error {
	for q := range ex.queue {
		if ex.limiter != nil {
			if err := ex.limiter.Wait(q.ctx); err != nil {
				ex.completions <- Completion[R]{ID: q.ID, Err: err}
				continue
			}
		}

		value, err := runRecovered(q.ctx, q.Fn, q.Input)
		if err != nil {
			ex.completions <- Completion[R]{ID: q.ID, Err: err}
			continue
		}
		ex.completions <- Completion[R]{ID: q.ID, Value: value}
	}
	return nil
}
