// Package multi is the scatter-gather execution engine: it dispatches a
// function over a collection of independent inputs on a worker pool, waits
// for every unit to finish, and returns one FutureResult per unit carrying
// either the computed value or the captured failure. One unit's failure
// never aborts the batch.
//
// # Basic usage
//
//	results, err := multi.Multithread(ctx, fetch, urls,
//	    multi.WithMaxWorkers[string, Page](8),
//	    multi.WithProgress[string, Page](progress.Discard()),
//	)
//	for _, r := range results {
//	    if r.Failed() {
//	        log.Printf("fetch %v: %v", *r.Input, r.Err)
//	    }
//	}
//
// Results arrive in completion order, which is not submission order and is
// not deterministic across runs. The number of results always equals the
// number of inputs.
//
// # Failure handling
//
// By default failures are only recorded, never raised. Pass WithCheck to
// fail the call when any unit failed, or call CheckResults later:
//
//	results, err := multi.Multithread(ctx, fn, inputs, multi.WithCheck[In, Out]())
//	var group *multierror.Error
//	if errors.As(err, &group) {
//	    // group.Errors lists every unit failure, in completion order
//	}
//
// # Process-backed batches
//
// Multiprocess has the same shape but runs units in worker subprocesses.
// The function is named rather than passed, since closures cannot cross a
// process boundary; see pool.RegisterTask.
//
// # Pool ownership
//
// Each call resolves an executor (a default one, sized by WithMaxWorkers,
// or a caller-supplied one via WithExecutor) and releases it when the batch
// ends, on every exit path. Supplying both WithExecutor and WithMaxWorkers
// is a programming error, reported by ErrExecutorConflict before any unit
// is submitted. Note that a caller-supplied executor is also closed at
// batch end: the batch owns its pool.
package multi
