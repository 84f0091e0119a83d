package ratelimit

import (
	"context"
	"strconv"
	"sync/atomic"
	"time"

	"github.com/redis/go-redis/v9"
)

// slidingWindow performs purge + count + conditional record as one atomic
// server-side step. Hits live in a sorted set scored by nanosecond
// timestamp.
//
// KEYS[1] = hit set, ARGV = cutoff, limit, now, member, ttl millis.
var slidingWindow = redis.NewScript(`
redis.call('ZREMRANGEBYSCORE', KEYS[1], '-inf', ARGV[1])
if redis.call('ZCARD', KEYS[1]) < tonumber(ARGV[2]) then
	redis.call('ZADD', KEYS[1], ARGV[3], ARGV[4])
	redis.call('PEXPIRE', KEYS[1], ARGV[5])
	return 1
end
return 0
`)

// RedisStore keeps the hit record in Redis, making one quota enforceable
// across processes and hosts sharing the same server.
type RedisStore struct {
	client *redis.Client
	prefix string
	seq    atomic.Int64
}

// RedisOption is a functional option for configuring a RedisStore.
type RedisOption func(*RedisStore)

// WithKeyPrefix overrides the key namespace. The default is "gather:ratelimit".
func WithKeyPrefix(prefix string) RedisOption {
	return func(s *RedisStore) {
		if prefix != "" {
			s.prefix = prefix
		}
	}
}

// NewRedisStore creates a store backed by the given client.
func NewRedisStore(client *redis.Client, opts ...RedisOption) *RedisStore {
	s := &RedisStore{
		client: client,
		prefix: "gather:ratelimit",
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Hit implements Store. The Lua script runs atomically on the server, so
// concurrent callers across any number of processes cannot jointly exceed
// the quota.
func (s *RedisStore) Hit(ctx context.Context, identifier string, limit int, window time.Duration) (bool, error) {
	if limit <= 0 {
		return false, nil
	}

	now := time.Now().UnixNano()
	cutoff := now - window.Nanoseconds()
	// Sequence suffix keeps members unique when two hits share a timestamp.
	member := strconv.FormatInt(now, 10) + "-" + strconv.FormatInt(s.seq.Add(1), 10)
	ttl := window.Milliseconds() + 1

	admitted, err := slidingWindow.Run(ctx, s.client,
		[]string{s.prefix + ":" + identifier},
		cutoff, limit, now, member, ttl,
	).Int()
	if err != nil {
		return false, err
	}
	return admitted == 1, nil
}
