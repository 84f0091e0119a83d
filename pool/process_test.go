package pool

import (
	"context"
	"errors"
	"strings"
	"testing"
)

func init() {
	RegisterTask("pool-square", func(ctx context.Context, n int) (int, error) {
		return n * n, nil
	})
	RegisterTask("pool-fail-negative", func(ctx context.Context, n int) (int, error) {
		if n < 0 {
			return 0, errors.New("negative input")
		}
		return n, nil
	})
	RegisterTask("pool-panic", func(ctx context.Context, n int) (int, error) {
		panic("worker panic")
	})
}

func TestProcessExecutor_Basic(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping process pool test in short mode")
	}

	ex, err := NewProcessExecutor[int, int]("pool-square", WithWorkerCount(2))
	if err != nil {
		t.Fatalf("new process executor: %v", err)
	}
	defer ex.Close()

	const n = 6
	for i := 0; i < n; i++ {
		if err := ex.Submit(context.Background(), Unit[int, int]{ID: i, Input: i}); err != nil {
			t.Fatalf("submit %d: %v", i, err)
		}
	}

	seen := make(map[int]int, n)
	for _, c := range collect(t, ex, n) {
		if c.Err != nil {
			t.Fatalf("unit %d: unexpected error: %v", c.ID, c.Err)
		}
		seen[c.ID] = c.Value
	}
	for id, v := range seen {
		if v != id*id {
			t.Errorf("unit %d: expected %d, got %d", id, id*id, v)
		}
	}
}

func TestProcessExecutor_RemoteError(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping process pool test in short mode")
	}

	ex, err := NewProcessExecutor[int, int]("pool-fail-negative", WithWorkerCount(1))
	if err != nil {
		t.Fatalf("new process executor: %v", err)
	}
	defer ex.Close()

	if err := ex.Submit(context.Background(), Unit[int, int]{ID: 0, Input: -1}); err != nil {
		t.Fatalf("submit: %v", err)
	}

	c := collect(t, ex, 1)[0]
	var remote *RemoteError
	if !errors.As(c.Err, &remote) {
		t.Fatalf("expected *RemoteError, got %v", c.Err)
	}
	if remote.Task != "pool-fail-negative" {
		t.Errorf("unexpected task in remote error: %q", remote.Task)
	}
	if !strings.Contains(remote.Message, "negative input") {
		t.Errorf("remote error lost the cause: %q", remote.Message)
	}
}

func TestProcessExecutor_PanicInWorker(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping process pool test in short mode")
	}

	ex, err := NewProcessExecutor[int, int]("pool-panic", WithWorkerCount(1))
	if err != nil {
		t.Fatalf("new process executor: %v", err)
	}
	defer ex.Close()

	if err := ex.Submit(context.Background(), Unit[int, int]{ID: 0, Input: 1}); err != nil {
		t.Fatalf("submit: %v", err)
	}
	// Panics are recovered inside the worker loop, so the process stays up.
	c := collect(t, ex, 1)[0]
	if c.Err == nil {
		t.Fatal("expected a captured panic error")
	}
	if !strings.Contains(c.Err.Error(), "panic") {
		t.Errorf("error does not mention the panic: %v", c.Err)
	}

	// The same worker must still serve followup units.
	if err := ex.Submit(context.Background(), Unit[int, int]{ID: 1, Input: 2}); err != nil {
		t.Fatalf("submit after panic: %v", err)
	}
	if c := collect(t, ex, 1)[0]; c.Err == nil {
		t.Fatal("expected the panic task to keep failing")
	}
}

func TestProcessExecutor_UnregisteredTask(t *testing.T) {
	_, err := NewProcessExecutor[int, int]("no-such-task")
	if !errors.Is(err, ErrTaskNotRegistered) {
		t.Fatalf("expected ErrTaskNotRegistered, got %v", err)
	}
}

func TestProcessExecutor_JSONCodec(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping process pool test in short mode")
	}

	ex, err := NewProcessExecutor[int, int]("pool-square", WithWorkerCount(1), WithCodec(JSON))
	if err != nil {
		t.Fatalf("new process executor: %v", err)
	}
	defer ex.Close()

	if err := ex.Submit(context.Background(), Unit[int, int]{ID: 0, Input: 7}); err != nil {
		t.Fatalf("submit: %v", err)
	}
	c := collect(t, ex, 1)[0]
	if c.Err != nil {
		t.Fatalf("unexpected error: %v", c.Err)
	}
	if c.Value != 49 {
		t.Errorf("expected 49, got %d", c.Value)
	}
}

func TestProcessExecutor_SubmitAfterClose(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping process pool test in short mode")
	}

	ex, err := NewProcessExecutor[int, int]("pool-square", WithWorkerCount(1))
	if err != nil {
		t.Fatalf("new process executor: %v", err)
	}
	if err := ex.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}

	err = ex.Submit(context.Background(), Unit[int, int]{ID: 0, Input: 1})
	if !errors.Is(err, ErrPoolClosed) {
		t.Fatalf("expected ErrPoolClosed, got %v", err)
	}
}

func TestRegisterTask_Validation(t *testing.T) {
	t.Run("empty name", func(t *testing.T) {
		defer func() {
			if recover() == nil {
				t.Error("expected panic for empty task name")
			}
		}()
		RegisterTask("", func(ctx context.Context, n int) (int, error) { return n, nil })
	})

	t.Run("duplicate", func(t *testing.T) {
		defer func() {
			if recover() == nil {
				t.Error("expected panic for duplicate task name")
			}
		}()
		RegisterTask("pool-square", func(ctx context.Context, n int) (int, error) { return n, nil })
	})

	t.Run("nil func", func(t *testing.T) {
		defer func() {
			if recover() == nil {
				t.Error("expected panic for nil task func")
			}
		}()
		RegisterTask[int, int]("pool-nil", nil)
	})
}
