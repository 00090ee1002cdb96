package store

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/jellydator/ttlcache/v3"

	"github.com/noah-isme/backend-basket/internal/basket"
	"github.com/noah-isme/backend-basket/internal/obs"
)

// DefaultIdleTTL is how long an untouched basket is kept.
const DefaultIdleTTL = 24 * time.Hour

// Memory keeps baskets in process memory. Every read extends the basket's
// lifetime; baskets idle for longer than the TTL are evicted.
type Memory struct {
	cache   *ttlcache.Cache[uuid.UUID, *basket.Basket]
	running atomic.Bool
}

// NewMemory constructs the store. Call Start to run background expiry.
func NewMemory(idleTTL time.Duration) *Memory {
	if idleTTL <= 0 {
		idleTTL = DefaultIdleTTL
	}
	cache := ttlcache.New[uuid.UUID, *basket.Basket](
		ttlcache.WithTTL[uuid.UUID, *basket.Basket](idleTTL),
	)
	cache.OnEviction(func(_ context.Context, reason ttlcache.EvictionReason, _ *ttlcache.Item[uuid.UUID, *basket.Basket]) {
		if reason == ttlcache.EvictionReasonExpired {
			obs.RecordBasketExpired()
		}
	})
	return &Memory{cache: cache}
}

// Start runs the expiry loop until Stop is called.
func (m *Memory) Start() {
	if m.running.CompareAndSwap(false, true) {
		go m.cache.Start()
	}
}

// Stop ends the expiry loop. It is a no-op when the loop is not running.
func (m *Memory) Stop() {
	if m.running.CompareAndSwap(true, false) {
		m.cache.Stop()
	}
}

// GetOrCreate implements basket.Repository.
func (m *Memory) GetOrCreate(ctx context.Context, id uuid.UUID) (*basket.Basket, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if item := m.cache.Get(id); item != nil {
		return item.Value(), nil
	}
	item, _ := m.cache.GetOrSet(id, basket.New(id))
	return item.Value(), nil
}

// Len reports the number of live baskets.
func (m *Memory) Len() int {
	return m.cache.Len()
}
