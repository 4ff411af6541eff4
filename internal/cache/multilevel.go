package cache

import (
	"context"
	"errors"
	"log"
	"time"
)

type Cache interface {
	Get(ctx context.Context, key string, dest interface{}) error
	Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
	DeletePrefix(ctx context.Context, prefix string) error
	Health(ctx context.Context) error
	Stats() map[string]interface{}
	Close() error
}

// MultiLevelCache keeps an in-process L1 in front of an optional Redis L2.
// L2 calls go through a circuit breaker and L2 failures are logged and
// swallowed, so an unreachable Redis degrades to L1 only.
type MultiLevelCache struct {
	l1      *MemoryCache
	l2      *RedisCache
	breaker *CircuitBreaker
	metrics *CacheMetrics

	// l1TTL bounds how long a value fetched from L2 lives in L1.
	l1TTL time.Duration
}

// NewMultiLevelCache builds the cache. redisCache may be nil.
func NewMultiLevelCache(redisCache *RedisCache, breakerConfig *CircuitBreakerConfig) *MultiLevelCache {
	return &MultiLevelCache{
		l1:      NewMemoryCache(),
		l2:      redisCache,
		breaker: NewCircuitBreaker(breakerConfig),
		metrics: NewCacheMetrics(),
		l1TTL:   30 * time.Second,
	}
}

func (c *MultiLevelCache) Get(ctx context.Context, key string, dest interface{}) error {
	if err := c.l1.Get(ctx, key, dest); err == nil {
		c.metrics.RecordL1Hit()
		return nil
	}

	if c.l2 == nil {
		c.metrics.RecordMiss()
		return ErrCacheMiss
	}

	var l2Err error
	err := c.breaker.Execute(func() error {
		l2Err = c.l2.Get(ctx, key, dest)
		if errors.Is(l2Err, ErrCacheMiss) {
			return nil
		}
		return l2Err
	})
	if err != nil {
		c.l2Failed("get", key, err)
		c.metrics.RecordMiss()
		return ErrCacheMiss
	}
	if l2Err != nil {
		c.metrics.RecordMiss()
		return ErrCacheMiss
	}

	c.metrics.RecordL2Hit()
	if err := c.l1.Set(ctx, key, dest, c.l1TTL); err != nil {
		log.Printf("cache: failed to backfill L1 for %s: %v", key, err)
	}
	return nil
}

func (c *MultiLevelCache) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	l1TTL := ttl
	if c.l1TTL > 0 && (l1TTL <= 0 || l1TTL > c.l1TTL) {
		l1TTL = c.l1TTL
	}
	if err := c.l1.Set(ctx, key, value, l1TTL); err != nil {
		return err
	}
	c.metrics.RecordSet()

	if c.l2 != nil {
		if err := c.breaker.Execute(func() error {
			return c.l2.Set(ctx, key, value, ttl)
		}); err != nil {
			c.l2Failed("set", key, err)
		}
	}
	return nil
}

func (c *MultiLevelCache) Delete(ctx context.Context, key string) error {
	c.l1.Delete(ctx, key)
	c.metrics.RecordDelete()

	if c.l2 != nil {
		if err := c.breaker.Execute(func() error {
			return c.l2.Delete(ctx, key)
		}); err != nil {
			c.l2Failed("delete", key, err)
		}
	}
	return nil
}

func (c *MultiLevelCache) DeletePrefix(ctx context.Context, prefix string) error {
	c.l1.DeletePrefix(ctx, prefix)
	c.metrics.RecordDelete()

	if c.l2 != nil {
		if err := c.breaker.Execute(func() error {
			return c.l2.DeletePrefix(ctx, prefix)
		}); err != nil {
			c.l2Failed("delete prefix", prefix, err)
		}
	}
	return nil
}

func (c *MultiLevelCache) l2Failed(op, key string, err error) {
	c.metrics.RecordL2Error()
	if !errors.Is(err, ErrCircuitBreakerOpen) {
		log.Printf("cache: redis %s %s failed: %v", op, key, err)
	}
}

// Health reports the L2 connection. A cache without L2 is always healthy.
func (c *MultiLevelCache) Health(ctx context.Context) error {
	if c.l2 != nil {
		return c.l2.Health(ctx)
	}
	return nil
}

func (c *MultiLevelCache) Metrics() CacheMetrics {
	return c.metrics.Snapshot()
}

func (c *MultiLevelCache) BreakerState() CircuitBreakerState {
	return c.breaker.GetState()
}

func (c *MultiLevelCache) Stats() map[string]interface{} {
	stats := map[string]interface{}{
		"l1":       c.l1.Stats(),
		"metrics":  c.metrics.Snapshot(),
		"hit_rate": c.metrics.HitRate(),
	}

	if c.l2 != nil {
		stats["l2"] = c.l2.Stats()
		stats["circuit_breaker"] = c.breaker.GetStats()
	}

	return stats
}

func (c *MultiLevelCache) Close() error {
	c.l1.Close()
	if c.l2 != nil {
		return c.l2.Close()
	}
	return nil
}
