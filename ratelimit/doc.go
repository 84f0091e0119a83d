// Package ratelimit implements sliding-window admission control for
// rate-sensitive operations, typically called from inside units of work
// running on a pool.
//
// The accounting is a true moving window, not fixed buckets: a hit counts
// against the quota for exactly the window duration after it happened. The
// limiter is a boolean query; it never blocks or fails a caller. Enforcement
// is the caller's job, usually a backoff loop:
//
//	rl := ratelimit.Default() // 5 hits per second
//	for rl.Reached("scraper") {
//	    ratelimit.Wait(ratelimit.DefaultWait, true)
//	}
//	// proceed
//
// One RateLimiter instance may be shared by any number of goroutines; the
// check-and-record step is atomic, so concurrent callers cannot jointly
// exceed the quota.
//
// Hits are tracked per identifier, letting a single instance serve several
// contexts. The empty identifier is fine when no partitioning is needed.
//
// The backing store is pluggable. The default MemoryStore is process-local;
// substitute a RedisStore to enforce one quota across processes or hosts.
package ratelimit
