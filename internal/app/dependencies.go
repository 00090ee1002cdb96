package app

import (
	"context"
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
	redis "github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/noah-isme/backend-basket/internal/basket"
	"github.com/noah-isme/backend-basket/internal/config"
	"github.com/noah-isme/backend-basket/internal/lock"
	"github.com/noah-isme/backend-basket/internal/ratelimit"
	"github.com/noah-isme/backend-basket/internal/shipping"
	"github.com/noah-isme/backend-basket/internal/store"
	"github.com/noah-isme/backend-basket/internal/voucher"
)

// Dependencies enumerates the services shared by the HTTP layer.
type Dependencies struct {
	Config  *config.Config
	Logger  zerolog.Logger
	Redis   *redis.Client
	Store   *store.Memory
	Service *basket.Service
	Limiter ratelimit.Allower
	// Registry receives the HTTP and domain collectors. Nil uses the
	// Prometheus default registry.
	Registry *prometheus.Registry
}

// NewDependencies builds the basket service for cfg. rdb may be nil when Redis
// is not configured.
func NewDependencies(cfg *config.Config, logger zerolog.Logger, rdb *redis.Client) (*Dependencies, error) {
	if cfg.LockBackend == config.LockRedis && rdb == nil {
		return nil, fmt.Errorf("lock backend %q needs a redis client", cfg.LockBackend)
	}

	mem := store.NewMemory(cfg.BasketIdleTTL)

	var locks basket.Locker = lock.NewKeyed()
	if cfg.LockBackend == config.LockRedis {
		locks = lock.NewRedis(rdb, cfg.LockTTL, cfg.LockRetryBackoff)
	}

	limiter, err := newLimiter(cfg, rdb)
	if err != nil {
		return nil, err
	}

	vat := cfg.VATRate
	svcLogger := logger.With().Str("component", "basket").Logger()
	return &Dependencies{
		Config: cfg,
		Logger: logger,
		Redis:  rdb,
		Store:  mem,
		Service: &basket.Service{
			Repo:      mem,
			Discounts: voucher.NewCatalog(voucher.DefaultCodes),
			Shipping:  shipping.NewRateTable(),
			Locks:     locks,
			VATRate:   &vat,
			Logger:    &svcLogger,
		},
		Limiter: limiter,
	}, nil
}

func newLimiter(cfg *config.Config, rdb *redis.Client) (ratelimit.Allower, error) {
	if cfg.RateLimitMax <= 0 {
		return nil, nil
	}
	switch {
	case cfg.RateLimitAlgorithm == config.RateLimitSliding && rdb != nil:
		return ratelimit.SlidingWindow{Client: rdb, Prefix: "basket:ratelimit:"}, nil
	case rdb != nil:
		f, err := ratelimit.NewRedisFixed(rdb)
		if err != nil {
			return nil, fmt.Errorf("rate limit store: %w", err)
		}
		return f, nil
	default:
		return ratelimit.NewMemoryFixed(cfg.RateLimitWindow), nil
	}
}

// Start launches background work owned by the dependencies.
func (d *Dependencies) Start() {
	d.Store.Start()
}

// Close stops background work and releases the Redis client.
func (d *Dependencies) Close(_ context.Context) error {
	d.Store.Stop()
	if d.Redis != nil {
		return d.Redis.Close()
	}
	return nil
}
