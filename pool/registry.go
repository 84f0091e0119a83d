package pool

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"sync"
)

// Environment markers set by the host when spawning worker processes.
const (
	workerTaskEnv  = "GATHER_WORKER_TASK"
	workerCodecEnv = "GATHER_WORKER_CODEC"
)

// ErrTaskNotRegistered is returned when a process executor is created for a
// task name that RegisterTask was never called with.
var ErrTaskNotRegistered = errors.New("pool: task not registered")

// procRequest is one unit of work on the wire, host to worker.
type procRequest[T any] struct {
	ID    int
	Input T
}

// procResponse is one unit outcome on the wire, worker to host. Only the
// failure message survives the process boundary; the host rebuilds it as a
// *RemoteError.
type procResponse[R any] struct {
	ID     int
	Result R
	Failed bool
	Error  string
}

// RemoteError is a unit failure that occurred inside a worker process.
type RemoteError struct {
	Task    string
	Message string
}

func (e *RemoteError) Error() string {
	return fmt.Sprintf("task %q: %s", e.Task, e.Message)
}

type taskEntry struct {
	serve func(c Codec, in io.Reader, out io.Writer) error
}

var registry = struct {
	sync.RWMutex
	entries map[string]taskEntry
}{entries: make(map[string]taskEntry)}

// RegisterTask makes fn runnable by process-backed executors under the given
// name. Because worker processes are re-executions of the current binary,
// registration must happen on both sides: call it from an init function or
// early in main, before NewProcessExecutor or WorkerMain.
//
// RegisterTask panics if name is empty or already registered.
func RegisterTask[T any, R any](name string, fn Func[T, R]) {
	if name == "" {
		panic("pool: RegisterTask with empty name")
	}
	if fn == nil {
		panic("pool: RegisterTask with nil function")
	}

	registry.Lock()
	defer registry.Unlock()

	if _, dup := registry.entries[name]; dup {
		panic(fmt.Sprintf("pool: task %q registered twice", name))
	}
	registry.entries[name] = taskEntry{
		serve: func(c Codec, in io.Reader, out io.Writer) error {
			return serveTask(c, in, out, fn)
		},
	}
}

func lookupTask(name string) (taskEntry, bool) {
	registry.RLock()
	defer registry.RUnlock()
	entry, ok := registry.entries[name]
	return entry, ok
}

// IsWorker reports whether the current process was spawned as a pool worker.
// Check it first thing in main (or TestMain) and hand control to WorkerMain
// when it returns true.
func IsWorker() bool {
	return os.Getenv(workerTaskEnv) != ""
}

// WorkerMain runs the worker side of a process-backed executor: it serves
// the registered task over stdin/stdout until the host closes the pipe.
// It returns the process exit code.
//
//	func main() {
//	    if pool.IsWorker() {
//	        os.Exit(pool.WorkerMain())
//	    }
//	    ...
//	}
func WorkerMain() int {
	name := os.Getenv(workerTaskEnv)
	entry, ok := lookupTask(name)
	if !ok {
		fmt.Fprintf(os.Stderr, "gather worker: task %q not registered\n", name)
		return 2
	}

	c := codecByName(os.Getenv(workerCodecEnv))
	if err := entry.serve(c, os.Stdin, os.Stdout); err != nil {
		fmt.Fprintf(os.Stderr, "gather worker: %v\n", err)
		return 1
	}
	return 0
}

// serveTask is the worker-side loop: decode a request, run the unit with
// panic recovery, encode the response. Returns nil when the host closes the
// pipe.
func serveTask[T any, R any](c Codec, in io.Reader, out io.Writer, fn Func[T, R]) error {
	dec := c.NewDecoder(in)
	enc := c.NewEncoder(out)

	for {
		var req procRequest[T]
		if err := dec.Decode(&req); err != nil {
			if errors.Is(err, io.EOF) {
				return nil
			}
			return fmt.Errorf("decode request: %w", err)
		}

		value, err := runRecovered(context.Background(), fn, req.Input)
		resp := procResponse[R]{ID: req.ID, Result: value}
		if err != nil {
			var zero R
			resp.Result = zero
			resp.Failed = true
			resp.Error = err.Error()
		}

		if err := enc.Encode(resp); err != nil {
			return fmt.Errorf("encode response: %w", err)
		}
	}
}
