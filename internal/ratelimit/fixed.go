package ratelimit

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
	limiter "github.com/ulule/limiter/v3"
	"github.com/ulule/limiter/v3/drivers/store/memory"
	limiterredis "github.com/ulule/limiter/v3/drivers/store/redis"
)

const storePrefix = "basket:ratelimit"

// Fixed is a fixed window limiter over a ulule limiter store.
type Fixed struct {
	Store limiter.Store
}

// NewMemoryFixed keeps counters in process. Used when Redis is not configured.
// Expired counters are swept every window.
func NewMemoryFixed(window time.Duration) Fixed {
	return Fixed{Store: memory.NewStoreWithOptions(memoryStoreOptions(window))}
}

func memoryStoreOptions(window time.Duration) limiter.StoreOptions {
	if window <= 0 {
		window = time.Minute
	}
	return limiter.StoreOptions{Prefix: storePrefix, CleanUpInterval: window}
}

// NewRedisFixed shares counters between instances through Redis.
func NewRedisFixed(rdb *redis.Client) (Fixed, error) {
	store, err := limiterredis.NewStoreWithOptions(rdb, limiter.StoreOptions{Prefix: storePrefix})
	if err != nil {
		return Fixed{}, err
	}
	return Fixed{Store: store}, nil
}

// Allow implements Allower.
func (f Fixed) Allow(ctx context.Context, key string, window time.Duration, limit int) (bool, int, time.Time, error) {
	if f.Store == nil || limit <= 0 || window <= 0 {
		return true, limit, time.Now().Add(window), nil
	}
	lc, err := limiter.New(f.Store, limiter.Rate{Period: window, Limit: int64(limit)}).Get(ctx, key)
	if err != nil {
		return false, 0, time.Now().Add(window), err
	}
	return !lc.Reached, int(lc.Remaining), time.Unix(lc.Reset, 0), nil
}
