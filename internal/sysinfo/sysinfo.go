// Package sysinfo derives default worker counts from the host's CPU
// configuration. Keeping the derivation a pure function makes pool sizing
// testable and easy to override.
package sysinfo

import "runtime"

// Available reports how many CPUs the Go runtime will schedule work onto.
// This respects GOMAXPROCS and, on Linux, the process CPU affinity mask.
func Available() int {
	return runtime.GOMAXPROCS(0)
}

// WorkerCount derives the default pool size from a CPU count, keeping one
// CPU free for the goroutine driving the batch. Never returns less than one.
func WorkerCount(numCPU int) int {
	if numCPU <= 1 {
		return 1
	}
	return numCPU - 1
}
