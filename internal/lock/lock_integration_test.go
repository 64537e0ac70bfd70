//go:build integration

package lock

import (
	"context"
	"errors"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

func TestIntegration_RedisLock(t *testing.T) {
	addr := os.Getenv("REDIS_ADDR")
	if addr == "" {
		t.Skip("REDIS_ADDR not set, skipping integration test")
	}
	client := redis.NewClient(&redis.Options{Addr: addr})
	t.Cleanup(func() { client.Close() })

	ctx := context.Background()
	if err := client.Ping(ctx).Err(); err != nil {
		t.Fatalf("redis ping: %v", err)
	}

	l := NewRedis(client, 2*time.Second, 100*time.Millisecond)
	name := "test-" + uuid.New().String()[:8]

	release, err := l.Acquire(ctx, name)
	if err != nil {
		t.Fatalf("acquire: %v", err)
	}
	if _, err := l.Acquire(ctx, name); !errors.Is(err, ErrNotAcquired) {
		t.Errorf("expected ErrNotAcquired while held, got %v", err)
	}
	release()

	again, err := l.Acquire(ctx, name)
	if err != nil {
		t.Fatalf("acquire after release: %v", err)
	}
	again()
}
