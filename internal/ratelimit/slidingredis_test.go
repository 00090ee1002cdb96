package ratelimit

import (
	"context"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
)

func TestSlidingWindowAllow(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	limiter := SlidingWindow{Client: client, Prefix: "test:"}

	ctx := context.Background()
	window := 2 * time.Second
	limit := 2

	for i := 0; i < limit; i++ {
		allowed, remaining, _, err := limiter.Allow(ctx, "key", window, limit)
		require.NoError(t, err)
		require.True(t, allowed, "request %d", i)
		require.Equal(t, limit-(i+1), remaining)
	}

	allowed, remaining, reset, err := limiter.Allow(ctx, "key", window, limit)
	require.NoError(t, err)
	require.False(t, allowed)
	require.Zero(t, remaining)
	require.True(t, reset.After(time.Now()))

	members, err := mr.ZMembers("test:key")
	require.NoError(t, err)
	require.Len(t, members, limit, "rejected requests are not recorded")
}

func TestSlidingWindowFreesSlotsAsWindowSlides(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	limiter := SlidingWindow{Client: client}
	ctx := context.Background()
	window := 50 * time.Millisecond

	allowed, _, _, err := limiter.Allow(ctx, "ip:1", window, 1)
	require.NoError(t, err)
	require.True(t, allowed)
	allowed, _, _, err = limiter.Allow(ctx, "ip:1", window, 1)
	require.NoError(t, err)
	require.False(t, allowed)

	require.Eventually(t, func() bool {
		ok, _, _, err := limiter.Allow(ctx, "ip:1", window, 1)
		return err == nil && ok
	}, time.Second, 10*time.Millisecond)
}

func TestSlidingWindowWithoutClient(t *testing.T) {
	allowed, remaining, _, err := SlidingWindow{}.Allow(context.Background(), "key", time.Second, 5)
	require.NoError(t, err)
	require.True(t, allowed)
	require.Equal(t, 5, remaining)
}
