package ratelimit

import (
	"context"
	"fmt"
	"os"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
)

// redisStore connects to the server named by GATHER_REDIS_ADDR, skipping the
// test when none is configured.
func redisStore(t *testing.T) *RedisStore {
	t.Helper()
	addr := os.Getenv("GATHER_REDIS_ADDR")
	if addr == "" {
		t.Skip("set GATHER_REDIS_ADDR to run Redis store tests")
	}

	client := redis.NewClient(&redis.Options{Addr: addr})
	if err := client.Ping(context.Background()).Err(); err != nil {
		t.Fatalf("ping %s: %v", addr, err)
	}
	t.Cleanup(func() { client.Close() })

	// A per-test prefix keeps runs from seeing each other's hits.
	prefix := fmt.Sprintf("gather:test:%s:%d", t.Name(), time.Now().UnixNano())
	return NewRedisStore(client, WithKeyPrefix(prefix))
}

func TestRedisStore_QuotaEnforced(t *testing.T) {
	s := redisStore(t)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		ok, err := s.Hit(ctx, "k", 3, time.Second)
		if err != nil {
			t.Fatalf("hit %d: %v", i+1, err)
		}
		if !ok {
			t.Fatalf("hit %d should be recorded", i+1)
		}
	}

	ok, err := s.Hit(ctx, "k", 3, time.Second)
	if err != nil {
		t.Fatalf("hit over quota: %v", err)
	}
	if ok {
		t.Fatal("4th hit against a quota of 3 should be refused")
	}
}

func TestRedisStore_WindowSlides(t *testing.T) {
	s := redisStore(t)
	ctx := context.Background()

	window := 200 * time.Millisecond
	if ok, err := s.Hit(ctx, "k", 1, window); err != nil || !ok {
		t.Fatalf("first hit: recorded=%v err=%v", ok, err)
	}
	if ok, _ := s.Hit(ctx, "k", 1, window); ok {
		t.Fatal("second hit inside the window should be refused")
	}

	time.Sleep(window + 50*time.Millisecond)
	if ok, err := s.Hit(ctx, "k", 1, window); err != nil || !ok {
		t.Fatalf("hit after window: recorded=%v err=%v", ok, err)
	}
}

func TestRedisStore_BehindRateLimiter(t *testing.T) {
	s := redisStore(t)
	rl := New(2, time.Second, WithStore(s))

	if rl.Reached("job") || rl.Reached("job") {
		t.Fatal("first two hits should be admitted")
	}
	if !rl.Reached("job") {
		t.Fatal("third hit should be rejected")
	}
}
