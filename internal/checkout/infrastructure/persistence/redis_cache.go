package persistence

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/felixgeelhaar/tollgate/internal/checkout/domain"
	"github.com/redis/go-redis/v9"
)

// RedisEntitlementCache stores snapshots as JSON values with a TTL. Keys are
// namespaced: tollgate:entitlements:{user_id}.
type RedisEntitlementCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisEntitlementCache builds a cache over an existing client.
func NewRedisEntitlementCache(client *redis.Client, ttl time.Duration) *RedisEntitlementCache {
	return &RedisEntitlementCache{client: client, ttl: ttl}
}

// NewRedisEntitlementCacheFromURL parses a redis URL and builds the cache.
func NewRedisEntitlementCacheFromURL(redisURL string, ttl time.Duration) (*RedisEntitlementCache, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse redis url: %w", err)
	}
	return NewRedisEntitlementCache(redis.NewClient(opts), ttl), nil
}

func (c *RedisEntitlementCache) key(userID string) string {
	return "tollgate:entitlements:" + userID
}

// Save replaces the user's snapshot.
func (c *RedisEntitlementCache) Save(ctx context.Context, userID string, entitlements []domain.Entitlement) error {
	payload, err := json.Marshal(entitlements)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, c.key(userID), payload, c.ttl).Err()
}

// Load returns the cached snapshot, or nil when the key is absent or expired.
func (c *RedisEntitlementCache) Load(ctx context.Context, userID string) ([]domain.Entitlement, error) {
	payload, err := c.client.Get(ctx, c.key(userID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var out []domain.Entitlement
	if err := json.Unmarshal(payload, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// Close closes the underlying client.
func (c *RedisEntitlementCache) Close() error {
	return c.client.Close()
}

var _ EntitlementCache = (*RedisEntitlementCache)(nil)
