package multi

import (
	"context"
	"fmt"

	"github.com/tsellis/gather/pool"
	"github.com/tsellis/gather/progress"
)

// Multithread calls fn over every element of inputs on a thread-backed pool
// and returns one FutureResult per input, in completion order. Unit failures
// are captured into their records and never abort the batch; the returned
// error is reserved for configuration and pool errors and, with WithCheck,
// for the aggregated unit failures.
func Multithread[T any, R any](ctx context.Context, fn pool.Func[T, R], inputs []T, opts ...Option[T, R]) ([]FutureResult[T, R], error) {
	cfg, err := newConfig(opts...)
	if err != nil {
		return nil, err
	}
	return run(ctx, cfg.resolveThread(), fn, inputs, cfg)
}

// Multiprocess is Multithread on a process-backed pool. The function is
// named rather than passed: task must have been registered with
// pool.RegisterTask in this binary, and inputs and results must be
// encodable by the pool's codec.
func Multiprocess[T any, R any](ctx context.Context, task string, inputs []T, opts ...Option[T, R]) ([]FutureResult[T, R], error) {
	cfg, err := newConfig(opts...)
	if err != nil {
		return nil, err
	}

	ex, err := cfg.resolveProcess(task)
	if err != nil {
		return nil, err
	}
	return run(ctx, ex, nil, inputs, cfg)
}

// run is the scatter-gather driver: submit everything, consume completions
// as they arrive, one record and one progress tick per unit. The executor
// and the reporter are released on every exit path.
func run[T any, R any](ctx context.Context, ex pool.Executor[T, R], fn pool.Func[T, R], inputs []T, cfg *config[T, R]) (results []FutureResult[T, R], err error) {
	reporter := cfg.reporter
	if reporter == nil {
		reporter = progress.Bar(len(inputs))
	}
	defer reporter.Close()

	// Pool release is scoped to the batch: it happens on every exit path,
	// including errors not attributable to any unit. A teardown failure is
	// fatal only when nothing else already failed.
	defer func() {
		if cerr := ex.Close(); cerr != nil && err == nil {
			results, err = nil, cerr
		}
	}()

	results = make([]FutureResult[T, R], 0, len(inputs))

	type submitted struct {
		n   int
		err error
	}
	subCh := make(chan submitted, 1)
	go func() {
		n := 0
		for i, input := range inputs {
			if err := ex.Submit(ctx, pool.Unit[T, R]{ID: i, Input: input, Fn: fn}); err != nil {
				subCh <- submitted{n: n, err: err}
				return
			}
			n++
		}
		subCh <- submitted{n: n}
	}()

	// The driver is the sole consumer of completions. When submission
	// fails partway, want drops to the number of units actually queued so
	// the loop still drains every outstanding completion before returning.
	want := len(inputs)
	for got := 0; got < want; {
		select {
		case s := <-subCh:
			subCh = nil
			want = s.n
			err = s.err
		case c, ok := <-ex.Completions():
			if !ok {
				// The executor stopped with units outstanding, e.g. it was
				// closed by an earlier batch. Not attributable to any unit,
				// so the batch fails as a whole.
				if err != nil {
					return nil, err
				}
				return nil, fmt.Errorf("multi: executor stopped with %d of %d units outstanding: %w",
					want-got, want, pool.ErrPoolClosed)
			}
			results = append(results, newResult(c, inputs, cfg.keepInputs))
			_ = reporter.Add(1)
			got++
		}
	}
	if err != nil {
		return nil, err
	}

	if cfg.check {
		if cerr := CheckResults(results); cerr != nil {
			return results, cerr
		}
	}
	return results, nil
}

// newResult builds a unit's record from its completion. Result and Err stay
// mutually exclusive by construction, and the input is echoed back only
// when the batch retains inputs.
func newResult[T any, R any](c pool.Completion[R], inputs []T, keepInputs bool) FutureResult[T, R] {
	fr := FutureResult[T, R]{Err: c.Err}
	if c.Err == nil {
		fr.Result = c.Value
	}
	if keepInputs && c.ID >= 0 && c.ID < len(inputs) {
		input := inputs[c.ID]
		fr.Input = &input
	}
	return fr
}
