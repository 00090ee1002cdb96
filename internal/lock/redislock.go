package lock

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const (
	defaultLease   = 10 * time.Second
	defaultBackoff = 25 * time.Millisecond
	releaseTimeout = 2 * time.Second
)

// ErrNotConfigured is returned when a Redis lock has no client.
var ErrNotConfigured = errors.New("lock: redis client not configured")

// releaseScript deletes the key only while it still carries our token, so a
// caller whose lease expired cannot release somebody else's hold.
var releaseScript = redis.NewScript(`if redis.call("get", KEYS[1]) == ARGV[1] then
  return redis.call("del", KEYS[1])
end
return 0`)

// Redis is a lease-based alternative to Keyed: each hold is a SET NX key with
// an expiry, so a holder that stalls past the lease loses the lock. It guards
// the baskets of this process only, since baskets are not shared between
// replicas.
type Redis struct {
	client  redis.UniversalClient
	lease   time.Duration
	backoff time.Duration
}

// NewRedis builds a Redis lock. Non-positive lease or backoff fall back to
// 10s and 25ms.
func NewRedis(client redis.UniversalClient, lease, backoff time.Duration) *Redis {
	if lease <= 0 {
		lease = defaultLease
	}
	if backoff <= 0 {
		backoff = defaultBackoff
	}
	return &Redis{client: client, lease: lease, backoff: backoff}
}

// WithLock polls until it owns key, runs fn and then releases the key. Polling
// stops when ctx is done.
func (l *Redis) WithLock(ctx context.Context, key string, fn func(context.Context) error) error {
	if l == nil || l.client == nil {
		return ErrNotConfigured
	}
	if fn == nil {
		return errors.New("lock: callback not provided")
	}
	token := uuid.NewString()
	if err := l.acquire(ctx, key, token); err != nil {
		return err
	}
	defer l.release(ctx, key, token)
	return fn(ctx)
}

func (l *Redis) acquire(ctx context.Context, key, token string) error {
	ticker := time.NewTicker(l.backoff)
	defer ticker.Stop()
	for {
		ok, err := l.client.SetNX(ctx, key, token, l.lease).Result()
		if err != nil {
			return fmt.Errorf("lock: acquire %s: %w", key, err)
		}
		if ok {
			return nil
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
	}
}

func (l *Redis) release(ctx context.Context, key, token string) {
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), releaseTimeout)
	defer cancel()
	// A failed release is left to the lease expiry.
	_ = releaseScript.Run(ctx, l.client, []string{key}, token).Err()
}
