// Package pool provides the worker-pool backends for scatter-gather
// execution: a thread-backed executor running units on goroutines, and a
// process-backed executor running units in worker subprocesses.
//
// Both backends implement the Executor interface, the capability consumed
// by the batch driver in package multi: submit units, consume completions
// in completion order, and release all workers on Close. A unit failure is
// never fatal to the pool; it is reported through the unit's Completion and
// the workers move on.
//
// # Thread-backed execution
//
//	ex := pool.NewThreadExecutor[string, int](pool.WithWorkerCount(8))
//	defer ex.Close()
//
// Units carry an arbitrary Go function and input; nothing needs to be
// serializable.
//
// # Process-backed execution
//
// Worker processes are started by re-executing the current binary, so the
// function to run cannot be passed as a closure. Instead it is registered
// under a name known to both sides:
//
//	func init() {
//	    pool.RegisterTask("double", func(ctx context.Context, n int) (int, error) {
//	        return n * 2, nil
//	    })
//	}
//
//	func main() {
//	    if pool.IsWorker() {
//	        os.Exit(pool.WorkerMain())
//	    }
//	    ex, err := pool.NewProcessExecutor[int, int]("double")
//	    ...
//	}
//
// Inputs and results cross the process boundary through a Codec and must be
// encodable by it. The default is Gob, which handles most Go types; JSON is
// available for inputs that are defined in terms of JSON anyway. The
// thread-backed executor has no such constraint.
//
// # Throughput limiting
//
// Both backends accept a pool-level token-bucket throttle:
//
//	pool.NewThreadExecutor[Req, Resp](pool.WithThroughput(10, 5))
//
// which caps unit starts at 10 per second with a burst of 5. This is
// distinct from the sliding-window admission control in package ratelimit,
// which units call themselves while running.
package pool
