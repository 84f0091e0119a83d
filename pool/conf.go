package pool

import (
	"golang.org/x/time/rate"

	"github.com/tsellis/gather/internal/sysinfo"
)

// Option is a functional option for configuring an executor.
type Option func(*config)

type config struct {
	workerCount int
	queueSize   int
	limiter     *rate.Limiter
	codec       Codec
}

func newConfig(opts ...Option) *config {
	cfg := &config{
		workerCount: sysinfo.WorkerCount(sysinfo.Available()),
		queueSize:   0, // resolved to workerCount below unless an option set it
		codec:       Gob,
	}

	for _, opt := range opts {
		opt(cfg)
	}

	if cfg.queueSize == 0 {
		cfg.queueSize = cfg.workerCount
	}

	return cfg
}

// WithWorkerCount sets the number of concurrent workers.
// If not specified, defaults to one less than the available CPUs.
func WithWorkerCount(count int) Option {
	return func(cfg *config) {
		if count > 0 {
			cfg.workerCount = count
		}
	}
}

// WithQueueSize sets the buffer size for the submission queue.
// A larger buffer decouples submission from execution but uses more memory.
// Sizes below one are ignored; if not specified, the queue defaults to the
// number of workers.
func WithQueueSize(size int) Option {
	return func(cfg *config) {
		if size > 0 {
			cfg.queueSize = size
		}
	}
}

// WithThroughput caps how fast units are started, across all workers.
// unitsPerSecond is the sustained rate and burst the number of units that
// may start back-to-back. Useful when units call an external service with
// its own quota.
//
// Example:
//
//	WithThroughput(10, 5) // 10 units/sec, bursts of 5
func WithThroughput(unitsPerSecond float64, burst int) Option {
	return func(cfg *config) {
		if unitsPerSecond > 0 && burst > 0 {
			cfg.limiter = rate.NewLimiter(rate.Limit(unitsPerSecond), burst)
		}
	}
}

// WithCodec selects the codec used to move inputs and results across the
// process boundary. Only meaningful for the process-backed executor; the
// default is Gob.
func WithCodec(c Codec) Option {
	return func(cfg *config) {
		if c != nil {
			cfg.codec = c
		}
	}
}
