package benchmarks

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/tsellis/gather/multi"
	"github.com/tsellis/gather/pool"
	"github.com/tsellis/gather/progress"
	"github.com/tsellis/gather/ratelimit"
)

// cpuBoundWork simulates a CPU-intensive unit.
func cpuBoundWork(iterations int) pool.Func[int, int] {
	return func(ctx context.Context, n int) (int, error) {
		result := 0
		for i := 0; i < iterations; i++ {
			result += i * n
		}
		return result, nil
	}
}

// ioBoundWork simulates an I/O unit with a fixed delay.
func ioBoundWork(delay time.Duration) pool.Func[int, int] {
	return func(ctx context.Context, n int) (int, error) {
		select {
		case <-time.After(delay):
			return n * 2, nil
		case <-ctx.Done():
			return 0, ctx.Err()
		}
	}
}

func runBatch(b *testing.B, ex pool.Executor[int, int], fn pool.Func[int, int], units int) {
	b.Helper()
	go func() {
		for i := 0; i < units; i++ {
			if err := ex.Submit(context.Background(), pool.Unit[int, int]{ID: i, Input: i, Fn: fn}); err != nil {
				b.Errorf("submit %d: %v", i, err)
				return
			}
		}
	}()
	for i := 0; i < units; i++ {
		if c := <-ex.Completions(); c.Err != nil {
			b.Fatalf("unit %d: %v", c.ID, c.Err)
		}
	}
}

func BenchmarkThreadExecutor_WorkerScaling(b *testing.B) {
	workerCounts := []int{1, 2, 4, 8, 16}
	const units = 1000

	for _, workers := range workerCounts {
		b.Run(fmt.Sprintf("workers-%d", workers), func(b *testing.B) {
			fn := cpuBoundWork(1000)
			b.ResetTimer()
			for i := 0; i < b.N; i++ {
				ex := pool.NewThreadExecutor[int, int](pool.WithWorkerCount(workers))
				runBatch(b, ex, fn, units)
				ex.Close()
			}
		})
	}
}

func BenchmarkThreadExecutor_IOBound(b *testing.B) {
	const units = 200
	ex := pool.NewThreadExecutor[int, int](pool.WithWorkerCount(32), pool.WithQueueSize(units))
	defer ex.Close()
	fn := ioBoundWork(time.Millisecond)

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		runBatch(b, ex, fn, units)
	}
}

func BenchmarkMultithread(b *testing.B) {
	inputs := make([]int, 500)
	for i := range inputs {
		inputs[i] = i
	}
	fn := cpuBoundWork(1000)

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_, err := multi.Multithread(context.Background(), fn, inputs,
			multi.WithMaxWorkers[int, int](8),
			multi.WithProgress[int, int](progress.Discard()),
		)
		if err != nil {
			b.Fatal(err)
		}
	}
}

func BenchmarkRateLimiter_Reached(b *testing.B) {
	rl := ratelimit.New(1<<30, time.Second)
	b.RunParallel(func(pb *testing.PB) {
		for pb.Next() {
			rl.Reached("bench")
		}
	})
}
