package pool

import "context"

// Func is the unit-of-work function type: it receives the submission context
// and one input, and returns a result or an error.
//
// Type parameters:
//   - T: The input type
//   - R: The result type
type Func[T any, R any] func(ctx context.Context, input T) (R, error)

// Unit is one independent function invocation scheduled as part of a batch.
// A Unit is immutable once submitted and owned by the submitting batch until
// its Completion is emitted.
//
// Fields:
//   - ID: The batch-assigned identifier, echoed back in the Completion
//   - Input: The unit's input value
//   - Fn: The function to run. In-process backends execute it directly;
//     the process-backed executor ignores it and runs its registered task,
//     since closures cannot cross a process boundary.
type Unit[T any, R any] struct {
	ID    int
	Input T
	Fn    Func[T, R]
}

// Completion reports the outcome of one finished unit. Exactly one of
// Value/Err is meaningful: Err is nil on success, and Value is the zero
// value on failure.
type Completion[R any] struct {
	ID    int
	Value R
	Err   error
}

// Executor is the pool capability consumed by the batch driver: units go in
// via Submit, outcomes come out of Completions in completion order, and
// Close tears the workers down.
//
// Implementations must emit exactly one Completion per successfully
// submitted unit and must never let one unit's failure prevent other units
// from running. An Executor is owned by one in-flight batch at a time for
// submission purposes.
type Executor[T any, R any] interface {
	// Submit schedules a unit for execution. It blocks while the queue is
	// full and fails if the executor has been closed or ctx ends first.
	Submit(ctx context.Context, u Unit[T, R]) error

	// Completions returns the channel on which finished units are reported.
	// The channel is closed after Close has drained the workers.
	Completions() <-chan Completion[R]

	// Close stops accepting work, waits for in-flight units to finish and
	// releases the underlying workers.
	Close() error
}

// queued pairs a submitted unit with the context it was submitted under.
// The context is handed to the unit's function when it runs.
type queued[T any, R any] struct {
	Unit[T, R]
	ctx context.Context
}
