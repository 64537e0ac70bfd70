// Package lock serializes read-check-write sequences against the activation
// table. Redis is used when configured so several bot instances share one
// lock; otherwise an in-process mutex is used.
package lock

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// ErrNotAcquired is returned when the lock could not be taken before the
// wait deadline.
var ErrNotAcquired = errors.New("lock not acquired")

// Locker takes a named lock. The returned func releases it.
type Locker interface {
	Acquire(ctx context.Context, name string) (release func(), err error)
}

const (
	keyPrefix    = "aktivasi:lock:"
	pollInterval = 50 * time.Millisecond
)

// Only the holder's token may delete the key.
var releaseScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0`)

// Redis is a Locker over SET NX PX. TTL bounds how long a crashed holder
// keeps the lock; Wait bounds how long Acquire polls.
type Redis struct {
	client *redis.Client
	ttl    time.Duration
	wait   time.Duration
}

func NewRedis(client *redis.Client, ttl, wait time.Duration) *Redis {
	return &Redis{client: client, ttl: ttl, wait: wait}
}

func (r *Redis) Acquire(ctx context.Context, name string) (func(), error) {
	key := keyPrefix + name
	token := uuid.New().String()

	ctx, cancel := context.WithTimeout(ctx, r.wait)
	defer cancel()

	ticker := time.NewTicker(pollInterval)
	defer ticker.Stop()

	for {
		ok, err := r.client.SetNX(ctx, key, token, r.ttl).Result()
		if err != nil {
			if ctx.Err() != nil {
				return nil, ErrNotAcquired
			}
			return nil, fmt.Errorf("acquire %s: %w", name, err)
		}
		if ok {
			return func() {
				// Release must still run after the caller's context is done.
				releaseScript.Run(context.Background(), r.client, []string{key}, token)
			}, nil
		}

		select {
		case <-ctx.Done():
			return nil, ErrNotAcquired
		case <-ticker.C:
		}
	}
}

// Local is an in-process Locker keyed by name.
type Local struct {
	wait time.Duration

	mu    sync.Mutex
	locks map[string]chan struct{}
}

func NewLocal(wait time.Duration) *Local {
	return &Local{wait: wait, locks: make(map[string]chan struct{})}
}

func (l *Local) slot(name string) chan struct{} {
	l.mu.Lock()
	defer l.mu.Unlock()
	ch, ok := l.locks[name]
	if !ok {
		ch = make(chan struct{}, 1)
		l.locks[name] = ch
	}
	return ch
}

func (l *Local) Acquire(ctx context.Context, name string) (func(), error) {
	ch := l.slot(name)

	timer := time.NewTimer(l.wait)
	defer timer.Stop()

	select {
	case ch <- struct{}{}:
		var once sync.Once
		return func() { once.Do(func() { <-ch }) }, nil
	case <-timer.C:
		return nil, ErrNotAcquired
	case <-ctx.Done():
		return nil, ErrNotAcquired
	}
}
