package infra

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
	"github.com/sony/gobreaker"
)

// ── In-memory LRU ────────────────────────────────────────────────────────────

type cacheEntry struct {
	value      []byte
	expiresAt  time.Time
	insertedAt time.Time
}

// MemoryCache is a thread-safe in-memory cache with TTL and max-size
// eviction. At capacity the oldest entry by insertion time is evicted;
// expired entries are dropped lazily on Get.
type MemoryCache struct {
	mu      sync.Mutex
	items   map[string]*cacheEntry
	maxSize int
	ttl     time.Duration
}

func NewMemoryCache(maxSize int, ttl time.Duration) *MemoryCache {
	if maxSize < 1 {
		maxSize = 1
	}
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	return &MemoryCache{items: make(map[string]*cacheEntry, maxSize), maxSize: maxSize, ttl: ttl}
}

func (c *MemoryCache) Get(_ context.Context, key string) ([]byte, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.items[key]
	if !ok {
		return nil, false
	}
	if time.Now().After(e.expiresAt) {
		delete(c.items, key)
		return nil, false
	}
	return e.value, true
}

func (c *MemoryCache) Set(_ context.Context, key string, val []byte) {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := time.Now()
	if _, ok := c.items[key]; !ok && len(c.items) >= c.maxSize {
		c.evictOldest()
	}
	c.items[key] = &cacheEntry{value: val, expiresAt: now.Add(c.ttl), insertedAt: now}
}

func (c *MemoryCache) Delete(_ context.Context, keys ...string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, k := range keys {
		delete(c.items, k)
	}
}

// Len counts entries, including expired ones not yet collected.
func (c *MemoryCache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.items)
}

// evictOldest must be called with c.mu held.
func (c *MemoryCache) evictOldest() {
	var oldestKey string
	var oldest time.Time
	first := true
	for k, e := range c.items {
		if first || e.insertedAt.Before(oldest) {
			oldestKey, oldest, first = k, e.insertedAt, false
		}
	}
	if !first {
		delete(c.items, oldestKey)
	}
}

// ── Redis ────────────────────────────────────────────────────────────────────

// RedisCache stores entries in Redis behind a circuit breaker. While the
// breaker is open every call is a miss, so callers fall back to walking the
// graph.
type RedisCache struct {
	rdb    *redis.Client
	ttl    time.Duration
	prefix string
	cb     *gobreaker.CircuitBreaker
}

func NewRedisCache(rdb *redis.Client, ttl time.Duration) *RedisCache {
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	return &RedisCache{
		rdb:    rdb,
		ttl:    ttl,
		prefix: "bake:",
		cb:     NewCircuitBreaker(DefaultCBConfig("redis-cache")),
	}
}

func (c *RedisCache) Get(ctx context.Context, key string) ([]byte, bool) {
	out, err := c.cb.Execute(func() (interface{}, error) {
		b, err := c.rdb.Get(ctx, c.prefix+key).Bytes()
		if errors.Is(err, redis.Nil) {
			// A miss is not a failure.
			return nil, nil
		}
		return b, err
	})
	if err != nil {
		c.logFailure("get", err)
		return nil, false
	}
	b, _ := out.([]byte)
	return b, b != nil
}

func (c *RedisCache) Set(ctx context.Context, key string, val []byte) {
	_, err := c.cb.Execute(func() (interface{}, error) {
		return nil, c.rdb.Set(ctx, c.prefix+key, val, c.ttl).Err()
	})
	if err != nil {
		c.logFailure("set", err)
	}
}

func (c *RedisCache) Delete(ctx context.Context, keys ...string) {
	if len(keys) == 0 {
		return
	}
	full := make([]string, len(keys))
	for i, k := range keys {
		full[i] = c.prefix + k
	}
	_, err := c.cb.Execute(func() (interface{}, error) {
		return nil, c.rdb.Del(ctx, full...).Err()
	})
	if err != nil {
		c.logFailure("delete", err)
	}
}

// State reports the breaker state for the health endpoint.
func (c *RedisCache) State() string { return c.cb.State().String() }

func (c *RedisCache) logFailure(op string, err error) {
	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		return
	}
	log.Warn().Err(err).Str("op", op).Msg("redis cache unavailable")
}
