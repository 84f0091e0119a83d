package ratelimit

import (
	"context"
	"time"
)

// Defaults for New and Default: 5 hits per 1-second window.
const (
	DefaultLimit  = 5
	DefaultWindow = time.Second
)

// RateLimiter decides admission against a sliding-window quota of limit
// hits per window, tracked per identifier in its Store. Instances are
// immutable after construction and safe for concurrent use.
type RateLimiter struct {
	limit  int
	window time.Duration
	store  Store
}

// LimiterOption is a functional option for configuring a RateLimiter.
type LimiterOption func(*RateLimiter)

// WithStore substitutes the accounting backend, e.g. a RedisStore for
// cross-process enforcement. The default is a fresh MemoryStore.
func WithStore(s Store) LimiterOption {
	return func(rl *RateLimiter) {
		if s != nil {
			rl.store = s
		}
	}
}

// New creates a limiter allowing limit hits per window. A limit of zero
// means the quota is always reached. A window <= 0 falls back to
// DefaultWindow.
func New(limit int, window time.Duration, opts ...LimiterOption) *RateLimiter {
	if window <= 0 {
		window = DefaultWindow
	}

	rl := &RateLimiter{
		limit:  limit,
		window: window,
	}
	for _, opt := range opts {
		opt(rl)
	}
	if rl.store == nil {
		rl.store = NewMemoryStore()
	}
	return rl
}

// Default returns a limiter with the default quota of 5 hits per second on
// an in-memory store.
func Default() *RateLimiter {
	return New(DefaultLimit, DefaultWindow)
}

// Reached reports whether the quota for identifier is exhausted. When it is
// not, the call itself is recorded as a hit; when it is, nothing is recorded
// and the caller should back off and retry. Use the empty identifier when
// no per-context partitioning is needed.
//
// A store failure counts as reached, so a broken external store throttles
// rather than unleashes callers. Use ReachedContext to observe the error.
func (rl *RateLimiter) Reached(identifier string) bool {
	reached, _ := rl.ReachedContext(context.Background(), identifier)
	return reached
}

// ReachedContext is Reached with a caller-supplied context for stores that
// do I/O, and with the store error exposed.
func (rl *RateLimiter) ReachedContext(ctx context.Context, identifier string) (bool, error) {
	recorded, err := rl.store.Hit(ctx, identifier, rl.limit, rl.window)
	if err != nil {
		return true, err
	}
	return !recorded, nil
}
