// Package cache is the cache-aside layer in front of the read-heavy
// user queries.
//
// The cache is advisory and never the source of truth: every error on
// the Redis side is swallowed — a failed GET is a miss, a failed SET is
// dropped — so cache unavailability can never fail an otherwise
// successful read or write. Populated keys get a TTL drawn uniformly
// from a configured window so keys written at the same moment do not
// expire at the same moment.
package cache

import (
	"context"
	"errors"
	"math/rand"
	"sync"
	"time"

	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"
)

// Client wraps a Redis connection with jittered-TTL population.
// A nil redis client disables caching: every Get is a miss and every
// Set is a no-op.
type Client struct {
	rdb *redis.Client
	min time.Duration
	max time.Duration
	log *zap.Logger

	mu  sync.Mutex
	rng *rand.Rand
}

// New builds a cache client. min and max bound the randomized TTL;
// rdb may be nil when Redis is unavailable.
func New(rdb *redis.Client, min, max time.Duration, logger *zap.Logger) *Client {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Client{
		rdb: rdb,
		min: min,
		max: max,
		log: logger,
		rng: rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

// Get returns the cached payload for key, or ok=false on a miss.
// Redis errors count as misses.
func (c *Client) Get(ctx context.Context, key string) ([]byte, bool) {
	if c.rdb == nil {
		return nil, false
	}
	val, err := c.rdb.Get(ctx, key).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			c.log.Debug("cache get failed, treating as miss",
				zap.String("key", key), zap.Error(err))
		}
		return nil, false
	}
	return val, true
}

// Set stores payload under key with a jittered TTL. Failures are
// logged and dropped.
func (c *Client) Set(ctx context.Context, key string, payload []byte) {
	if c.rdb == nil {
		return
	}
	if err := c.rdb.Set(ctx, key, payload, c.ttl()).Err(); err != nil {
		c.log.Debug("cache set failed, dropping",
			zap.String("key", key), zap.Error(err))
	}
}

// Invalidate removes keys. Failures are logged and dropped.
func (c *Client) Invalidate(ctx context.Context, keys ...string) {
	if c.rdb == nil || len(keys) == 0 {
		return
	}
	if err := c.rdb.Del(ctx, keys...).Err(); err != nil {
		c.log.Debug("cache invalidate failed",
			zap.Strings("keys", keys), zap.Error(err))
	}
}

// ttl draws a TTL uniformly from [min, max).
func (c *Client) ttl() time.Duration {
	c.mu.Lock()
	defer c.mu.Unlock()
	return jitterTTL(c.rng, c.min, c.max)
}

// jitterTTL spreads expiry across keys created near the same instant.
func jitterTTL(rng *rand.Rand, min, max time.Duration) time.Duration {
	if max <= min {
		return min
	}
	return min + time.Duration(rng.Int63n(int64(max-min)))
}
