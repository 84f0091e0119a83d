package ratelimit

import (
	"math/rand"
	"time"
)

// DefaultWait is a reasonable base delay for a Reached backoff loop.
const DefaultWait = 100 * time.Millisecond

// Wait blocks the calling goroutine for d plus, when jitter is enabled, a
// uniformly random addition of at most 1% of d. The jitter desynchronizes
// goroutines polling the same limiter so they do not retry in lockstep.
// A d <= 0 falls back to DefaultWait.
func Wait(d time.Duration, jitter bool) {
	if d <= 0 {
		d = DefaultWait
	}

	sleep := d
	if jitter {
		// #nosec G404 -- crypto rand not needed for backoff jitter
		sleep += time.Duration(rand.Float64() * float64(d) / 100)
	}
	time.Sleep(sleep)
}
