package multi

import (
	"errors"
	"fmt"

	"github.com/tsellis/gather/internal/sysinfo"
	"github.com/tsellis/gather/pool"
	"github.com/tsellis/gather/progress"
)

// ErrExecutorConflict is returned when a call combines WithExecutor and
// WithMaxWorkers. A caller-supplied executor retains full control of its own
// configuration, so a worker-count hint cannot be honored.
var ErrExecutorConflict = errors.New("multi: WithExecutor and WithMaxWorkers are mutually exclusive")

// Option is a functional option for one batch call.
type Option[T any, R any] func(*config[T, R])

type config[T any, R any] struct {
	executor   pool.Executor[T, R]
	maxWorkers int
	check      bool
	keepInputs bool
	reporter   progress.Reporter
	poolOpts   []pool.Option
}

// newConfig resolves options and rejects conflicting ones eagerly, before
// any unit is submitted.
func newConfig[T any, R any](opts ...Option[T, R]) (*config[T, R], error) {
	cfg := &config[T, R]{keepInputs: true}
	for _, opt := range opts {
		opt(cfg)
	}

	if cfg.executor != nil && cfg.maxWorkers > 0 {
		return nil, ErrExecutorConflict
	}
	return cfg, nil
}

// WithExecutor supplies a pre-built executor instead of a default one. The
// caller keeps control of its configuration (size, throughput, codec), but
// the batch still owns its lifecycle: the executor is closed when the batch
// ends. Mutually exclusive with WithMaxWorkers.
func WithExecutor[T any, R any](ex pool.Executor[T, R]) Option[T, R] {
	return func(cfg *config[T, R]) {
		cfg.executor = ex
	}
}

// WithMaxWorkers sizes the default executor. Mutually exclusive with
// WithExecutor. If neither is given, the default is one less than the
// available CPUs.
func WithMaxWorkers[T any, R any](n int) Option[T, R] {
	return func(cfg *config[T, R]) {
		if n > 0 {
			cfg.maxWorkers = n
		}
	}
}

// WithCheck makes the call fail with the CheckResults error when any unit
// failed. The full result list is still returned alongside the error.
func WithCheck[T any, R any]() Option[T, R] {
	return func(cfg *config[T, R]) {
		cfg.check = true
	}
}

// WithoutInputs omits the Input field from every FutureResult, so that big
// inputs are not kept alive by the result list after completion.
func WithoutInputs[T any, R any]() Option[T, R] {
	return func(cfg *config[T, R]) {
		cfg.keepInputs = false
	}
}

// WithProgress substitutes the progress reporter. The default is a terminal
// bar sized to the batch; pass progress.Discard() to disable reporting.
func WithProgress[T any, R any](r progress.Reporter) Option[T, R] {
	return func(cfg *config[T, R]) {
		if r != nil {
			cfg.reporter = r
		}
	}
}

// WithPoolOptions forwards options to the default executor's construction,
// e.g. pool.WithThroughput or pool.WithCodec. Ignored when WithExecutor is
// used.
func WithPoolOptions[T any, R any](opts ...pool.Option) Option[T, R] {
	return func(cfg *config[T, R]) {
		cfg.poolOpts = append(cfg.poolOpts, opts...)
	}
}

// resolveThread produces the executor for a thread-backed batch.
func (cfg *config[T, R]) resolveThread() pool.Executor[T, R] {
	if cfg.executor != nil {
		return cfg.executor
	}

	opts := cfg.poolOpts
	if cfg.maxWorkers > 0 {
		opts = append(opts, pool.WithWorkerCount(cfg.maxWorkers))
	}
	return pool.NewThreadExecutor[T, R](opts...)
}

// resolveProcess produces the executor for a process-backed batch. Worker
// hints beyond the available CPU count are rejected: unlike goroutines,
// surplus worker processes only add spawn and serialization cost.
func (cfg *config[T, R]) resolveProcess(task string) (pool.Executor[T, R], error) {
	if cfg.executor != nil {
		return cfg.executor, nil
	}

	if available := sysinfo.Available(); cfg.maxWorkers > available {
		return nil, fmt.Errorf("multi: at most %d worker processes are available, not %d", available, cfg.maxWorkers)
	}

	opts := cfg.poolOpts
	if cfg.maxWorkers > 0 {
		opts = append(opts, pool.WithWorkerCount(cfg.maxWorkers))
	}
	return pool.NewProcessExecutor[T, R](task, opts...)
}
