package pool

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/exec"
	"sync"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"
)

// ProcessExecutor runs units in worker subprocesses, spawned by re-executing
// the current binary with the worker environment markers set. Inputs and
// results cross the pipe through the configured Codec and must be encodable
// by it.
//
// Each subprocess handles one unit at a time. A unit that crashes its worker
// (rather than returning an error) fails with the transport error and the
// worker is respawned for subsequent units, so one poisonous unit cannot
// take down the batch.
type ProcessExecutor[T any, R any] struct {
	task        string
	codec       Codec
	exe         string
	queue       chan queued[T, R]
	completions chan Completion[R]
	limiter     *rate.Limiter
	done        chan struct{}
	closed      atomic.Bool
	closeOnce   sync.Once
}

// NewProcessExecutor creates a process-backed executor for the named task
// and spawns its worker processes. The task must have been registered with
// RegisterTask in this binary; this is checked eagerly, before anything is
// spawned. Failure to start a worker is fatal and tears down any workers
// already started.
func NewProcessExecutor[T any, R any](task string, opts ...Option) (*ProcessExecutor[T, R], error) {
	if _, ok := lookupTask(task); !ok {
		return nil, fmt.Errorf("%w: %q", ErrTaskNotRegistered, task)
	}

	exe, err := os.Executable()
	if err != nil {
		return nil, fmt.Errorf("pool: locate executable: %w", err)
	}

	cfg := newConfig(opts...)
	ex := &ProcessExecutor[T, R]{
		task:        task,
		codec:       cfg.codec,
		exe:         exe,
		queue:       make(chan queued[T, R], cfg.queueSize),
		completions: make(chan Completion[R], cfg.queueSize),
		limiter:     cfg.limiter,
		done:        make(chan struct{}),
	}

	workers := make([]*procWorker, 0, cfg.workerCount)
	for i := 0; i < cfg.workerCount; i++ {
		w, err := ex.spawn()
		if err != nil {
			for _, started := range workers {
				started.kill()
			}
			return nil, fmt.Errorf("pool: start worker: %w", err)
		}
		workers = append(workers, w)
	}

	var g errgroup.Group
	for _, w := range workers {
		w := w
		g.Go(func() error {
			return ex.serve(w)
		})
	}

	go func() {
		_ = g.Wait()
		close(ex.completions)
		close(ex.done)
	}()

	return ex, nil
}

// Submit schedules a unit for execution. The unit's Fn is ignored; the
// executor runs its registered task. Submit blocks while the queue is full
// and returns ErrPoolClosed after Close, or ctx.Err() if ctx ends first.
func (ex *ProcessExecutor[T, R]) Submit(ctx context.Context, u Unit[T, R]) error {
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
func (ex *ProcessExecutor[T, R]) Completions() <-chan Completion[R] {
	return ex.completions
}

// Close stops accepting work, waits for in-flight units to finish and shuts
// the worker processes down. It is safe to call more than once.
func (ex *ProcessExecutor[T, R]) Close() error {
	return ex.CloseTimeout(0)
}

// CloseTimeout is Close with an upper bound on how long to wait for workers
// to drain. A timeout <= 0 waits forever.
func (ex *ProcessExecutor[T, R]) CloseTimeout(timeout time.Duration) error {
	ex.closed.Store(true)
	ex.closeOnce.Do(func() {
		close(ex.queue)
	})
	return waitUntil(ex.done, timeout)
}

// serve feeds one worker process from the shared queue. A transport failure
// fails the in-flight unit and replaces the process; if a replacement cannot
// be spawned, the goroutine keeps draining the queue and failing units so
// that no unit is silently dropped.
func (ex *ProcessExecutor[T, R]) serve(w *procWorker) error {
	var spawnErr error

	for q := range ex.queue {
		if ex.limiter != nil {
			if err := ex.limiter.Wait(q.ctx); err != nil {
				ex.completions <- Completion[R]{ID: q.ID, Err: err}
				continue
			}
		}

		if w == nil {
			ex.completions <- Completion[R]{ID: q.ID, Err: fmt.Errorf("pool: worker unavailable: %w", spawnErr)}
			continue
		}

		resp, err := roundTrip[T, R](w, q)
		if err != nil {
			ex.completions <- Completion[R]{ID: q.ID, Err: fmt.Errorf("pool: worker process failed: %w", err)}
			w.kill()
			w, spawnErr = ex.spawn()
			continue
		}

		if resp.Failed {
			ex.completions <- Completion[R]{ID: q.ID, Err: &RemoteError{Task: ex.task, Message: resp.Error}}
			continue
		}
		ex.completions <- Completion[R]{ID: q.ID, Value: resp.Result}
	}

	if w != nil {
		w.stop()
	}
	return nil
}

func (ex *ProcessExecutor[T, R]) spawn() (*procWorker, error) {
	cmd := exec.Command(ex.exe)
	cmd.Env = append(os.Environ(),
		workerTaskEnv+"="+ex.task,
		workerCodecEnv+"="+ex.codec.Name(),
	)
	cmd.Stderr = os.Stderr

	stdin, err := cmd.StdinPipe()
	if err != nil {
		return nil, err
	}
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return nil, err
	}

	if err := cmd.Start(); err != nil {
		return nil, err
	}

	return &procWorker{
		cmd:   cmd,
		stdin: stdin,
		enc:   ex.codec.NewEncoder(stdin),
		dec:   ex.codec.NewDecoder(stdout),
	}, nil
}

// roundTrip sends one unit to a worker and reads back its outcome. Each
// worker handles one unit at a time, so request and response pair up.
func roundTrip[T any, R any](w *procWorker, q queued[T, R]) (procResponse[R], error) {
	var resp procResponse[R]

	if err := w.enc.Encode(procRequest[T]{ID: q.ID, Input: q.Input}); err != nil {
		return resp, fmt.Errorf("send unit: %w", err)
	}
	if err := w.dec.Decode(&resp); err != nil {
		return resp, fmt.Errorf("receive result: %w", err)
	}
	if resp.ID != q.ID {
		return resp, fmt.Errorf("response for unit %d, want %d", resp.ID, q.ID)
	}
	return resp, nil
}

// procWorker is one live worker subprocess and its halves of the pipe.
type procWorker struct {
	cmd   *exec.Cmd
	stdin io.WriteCloser
	enc   Encoder
	dec   Decoder
}

// stop closes the worker's stdin, which makes it exit cleanly, then reaps it.
func (w *procWorker) stop() {
	_ = w.stdin.Close()
	_ = w.cmd.Wait()
}

// kill terminates the worker immediately. Used when the pipe is broken.
func (w *procWorker) kill() {
	_ = w.stdin.Close()
	if w.cmd.Process != nil {
		_ = w.cmd.Process.Kill()
	}
	_ = w.cmd.Wait()
}
