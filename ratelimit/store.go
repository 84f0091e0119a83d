package ratelimit

import (
	"context"
	"sync"
	"time"
)

// Store is the accounting backend for a RateLimiter. Hit must atomically
// drop the identifier's hits that fell out of the trailing window, count the
// remainder, and record a new hit only when fewer than limit remain. It
// reports whether the hit was recorded.
//
// The atomicity requirement is what keeps concurrent callers from jointly
// exceeding the quota: two callers must not both observe "under limit" for
// the same remaining slot.
type Store interface {
	Hit(ctx context.Context, identifier string, limit int, window time.Duration) (bool, error)
}

// MemoryStore tracks hit timestamps in process memory. It is the default
// store: cheap, dependency-free, and safe for concurrent goroutines, but
// blind across process boundaries.
type MemoryStore struct {
	mu   sync.Mutex
	hits map[string][]time.Time
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		hits: make(map[string][]time.Time),
	}
}

// Hit implements Store. The mutex serializes purge, count and record so the
// admission decision is atomic.
func (s *MemoryStore) Hit(_ context.Context, identifier string, limit int, window time.Duration) (bool, error) {
	now := time.Now()
	cutoff := now.Add(-window)

	s.mu.Lock()
	defer s.mu.Unlock()

	// Timestamps are appended in order, so everything before the first
	// in-window entry has aged out.
	entries := s.hits[identifier]
	i := 0
	for i < len(entries) && !entries[i].After(cutoff) {
		i++
	}
	entries = append(entries[:0], entries[i:]...)

	if limit <= 0 || len(entries) >= limit {
		s.hits[identifier] = entries
		return false, nil
	}

	s.hits[identifier] = append(entries, now)
	return true, nil
}
