//go:build integration

package testutil

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/go-redis/redis/v8"
)

// RedisAddr returns the address of the Redis instance used as a stand-in
// switch runtime for integration tests.
func RedisAddr() string {
	if addr := os.Getenv("FLOWPLANE_TEST_REDIS"); addr != "" {
		return addr
	}
	return "127.0.0.1:6379"
}

// SkipIfNoRedis skips the test when no Redis is reachable.
func SkipIfNoRedis(t *testing.T) {
	t.Helper()
	client := redis.NewClient(&redis.Options{Addr: RedisAddr(), DialTimeout: time.Second})
	defer client.Close()
	if err := client.Ping(context.Background()).Err(); err != nil {
		t.Skipf("no Redis at %s: %v", RedisAddr(), err)
	}
}

// FlushTestRedis empties the test instance so tests start clean.
func FlushTestRedis(t *testing.T) {
	t.Helper()
	client := redis.NewClient(&redis.Options{Addr: RedisAddr()})
	defer client.Close()
	if err := client.FlushDB(context.Background()).Err(); err != nil {
		t.Fatalf("flushing test Redis: %v", err)
	}
}

// SeedRegister writes a raw register cell value, bypassing the client, so
// tests can plant malformed values.
func SeedRegister(t *testing.T, name, index, raw string) {
	t.Helper()
	client := redis.NewClient(&redis.Options{Addr: RedisAddr()})
	defer client.Close()
	if err := client.HSet(context.Background(), "REG|"+name, index, raw).Err(); err != nil {
		t.Fatalf("seeding register %s[%s]: %v", name, index, err)
	}
}
