package pool

import (
	"context"
	"errors"
	"fmt"
	"runtime"
	"time"
)

var (
	// ErrShutdownTimeout is returned by CloseTimeout when workers did not
	// drain within the allowed duration.
	ErrShutdownTimeout = errors.New("error in shutting down: timeout reached")

	// ErrPoolClosed is returned by Submit after the executor has been closed.
	ErrPoolClosed = errors.New("pool: executor closed")
)

// runRecovered executes one unit with panic recovery. A panic inside the
// unit's function is converted to an error carrying the stack trace, so a
// misbehaving unit cannot crash its worker.
func runRecovered[T any, R any](ctx context.Context, fn Func[T, R], input T) (result R, err error) {
	defer func() {
		if r := recover(); r != nil {
			buf := make([]byte, 4096)
			n := runtime.Stack(buf, false)
			err = fmt.Errorf("unit panic: %v\nstack trace:\n%s", r, buf[:n])
		}
	}()

	if fn == nil {
		return result, errors.New("pool: unit has no function")
	}

	return fn(ctx, input)
}

// waitUntil blocks until either the done channel is closed or the timeout is
// reached. A timeout <= 0 waits forever.
func waitUntil(d <-chan struct{}, timeout time.Duration) error {
	if timeout <= 0 {
		<-d
		return nil
	}

	select {
	case <-d:
		return nil
	case <-time.After(timeout):
		return ErrShutdownTimeout
	}
}
