package ratelimit

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// slidingScript trims events older than the window and records a new one only
// while fewer than limit remain. It returns {allowed, remaining, oldest}, where
// oldest is the score of the earliest event still counted when denied.
// Scores are Unix milliseconds, which Lua still formats exactly.
var slidingScript = redis.NewScript(`
local now = tonumber(ARGV[1])
local window = tonumber(ARGV[2])
local limit = tonumber(ARGV[3])
redis.call("ZREMRANGEBYSCORE", KEYS[1], "-inf", now - window)
local count = redis.call("ZCARD", KEYS[1])
if count < limit then
  redis.call("ZADD", KEYS[1], now, ARGV[4])
  redis.call("PEXPIRE", KEYS[1], window)
  return {1, limit - count - 1, 0}
end
local oldest = redis.call("ZRANGE", KEYS[1], 0, 0, "WITHSCORES")
return {0, 0, tonumber(oldest[2])}
`)

// SlidingWindow limits requests per key over a rolling window kept in a Redis
// sorted set. Rejected requests are not recorded.
type SlidingWindow struct {
	Client redis.Scripter
	Prefix string
}

// Allow implements Allower. When denied, reset is the moment the oldest
// counted request leaves the window.
func (l SlidingWindow) Allow(ctx context.Context, key string, window time.Duration, limit int) (bool, int, time.Time, error) {
	now := time.Now()
	if l.Client == nil || limit <= 0 || window <= 0 {
		return true, limit, now.Add(window), nil
	}

	res, err := slidingScript.Run(ctx, l.Client, []string{l.Prefix + key},
		now.UnixMilli(), max(window.Milliseconds(), 1), limit, uuid.NewString()).Int64Slice()
	if err != nil {
		return false, 0, now.Add(window), fmt.Errorf("sliding window %s: %w", key, err)
	}
	if len(res) != 3 {
		return false, 0, now.Add(window), fmt.Errorf("sliding window %s: unexpected reply %v", key, res)
	}
	if res[0] == 1 {
		return true, int(res[1]), now.Add(window), nil
	}
	return false, 0, time.UnixMilli(res[2]).Add(window), nil
}
