package data

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

// Cache key prefixes.
const (
	// CacheKeyCustomer is the prefix for customer caches: customer:{id}
	CacheKeyCustomer = "customer"
	// CacheKeyAnalytics is the prefix for report caches: analytics:{report}
	CacheKeyAnalytics = "analytics"
	// CacheKeyRate is the prefix for rate limit counters: rate:{ip}:{window}
	CacheKeyRate = "rate"
)

// TTLCustomer is the TTL for customer caches.
const TTLCustomer = 5 * time.Minute

var (
	// ErrCacheNotFound is returned when a cache key does not exist
	ErrCacheNotFound = errors.New("cache: key not found")
	// ErrCacheUnavailable is returned when no Redis client is configured
	ErrCacheUnavailable = errors.New("cache: redis client is nil")
)

// CacheClient defines the interface for cache operations.
// Values are stored as JSON.
type CacheClient interface {
	// Get deserializes the cached value into dest or returns ErrCacheNotFound.
	Get(ctx context.Context, key string, dest interface{}) error
	// Set stores value with the given TTL.
	Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error
	// Delete removes keys from the cache.
	Delete(ctx context.Context, keys ...string) error
}

type redisCache struct {
	client *redis.Client
}

// NewCacheClient creates a new Redis-based cache client.
// If the Redis client is nil, cache operations fail with ErrCacheUnavailable.
func NewCacheClient(rdb *redis.Client) CacheClient {
	return &redisCache{client: rdb}
}

func (c *redisCache) Get(ctx context.Context, key string, dest interface{}) error {
	if c.client == nil {
		return ErrCacheUnavailable
	}

	val, err := c.client.Get(ctx, key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return ErrCacheNotFound
		}
		return fmt.Errorf("cache: failed to get key %s: %w", key, err)
	}

	if err := json.Unmarshal(val, dest); err != nil {
		return fmt.Errorf("cache: failed to unmarshal value for key %s: %w", key, err)
	}
	return nil
}

func (c *redisCache) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	if c.client == nil {
		return ErrCacheUnavailable
	}

	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("cache: failed to marshal value for key %s: %w", key, err)
	}

	if err := c.client.Set(ctx, key, data, ttl).Err(); err != nil {
		return fmt.Errorf("cache: failed to set key %s: %w", key, err)
	}
	return nil
}

func (c *redisCache) Delete(ctx context.Context, keys ...string) error {
	if c.client == nil {
		return ErrCacheUnavailable
	}
	if len(keys) == 0 {
		return nil
	}

	if err := c.client.Del(ctx, keys...).Err(); err != nil {
		return fmt.Errorf("cache: failed to delete keys %v: %w", keys, err)
	}
	return nil
}

// BuildCacheKey constructs a cache key with the appropriate prefix.
// Examples:
//   - BuildCacheKey(CacheKeyCustomer, "5f7c...") -> "customer:5f7c..."
//   - BuildCacheKey(CacheKeyRate, "10.0.0.1", "28512345") -> "rate:10.0.0.1:28512345"
func BuildCacheKey(prefix string, parts ...string) string {
	return strings.Join(append([]string{prefix}, parts...), ":")
}
