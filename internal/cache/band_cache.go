// Package cache keeps band directory listings in Redis.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/gigbook/service-booking/internal/config"
)

const (
	keyPrefix  = "bands:list"
	versionKey = "bands:list:version"
)

// NewRedisClient creates a Redis client from configuration.
func NewRedisClient(cfg config.RedisConfig) *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})
}

// BandListCache stores serialized band listings under a generation counter.
// Bumping the counter orphans every cached listing at once; orphans expire by TTL.
type BandListCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewBandListCache creates a new BandListCache.
func NewBandListCache(client *redis.Client, ttl time.Duration) *BandListCache {
	return &BandListCache{client: client, ttl: ttl}
}

func (c *BandListCache) key(ctx context.Context, query string) (string, error) {
	version, err := c.client.Get(ctx, versionKey).Int64()
	if err != nil && !errors.Is(err, redis.Nil) {
		return "", fmt.Errorf("failed to read cache version: %w", err)
	}
	return fmt.Sprintf("%s:v%d:%s", keyPrefix, version, query), nil
}

// Get loads the listing cached for query into dest. It reports false on a miss.
// The returned entry key is pinned to the generation current at lookup time;
// pass it to Set so a listing read before an invalidation is never reachable after it.
func (c *BandListCache) Get(ctx context.Context, query string, dest interface{}) (string, bool, error) {
	key, err := c.key(ctx, query)
	if err != nil {
		return "", false, err
	}
	raw, err := c.client.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return key, false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("failed to get cached bands: %w", err)
	}
	if err := json.Unmarshal(raw, dest); err != nil {
		return key, false, fmt.Errorf("failed to unmarshal cached bands: %w", err)
	}
	return key, true, nil
}

// Set caches a listing under an entry key returned by Get.
func (c *BandListCache) Set(ctx context.Context, entryKey string, value interface{}) error {
	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("failed to marshal bands: %w", err)
	}
	if err := c.client.Set(ctx, entryKey, data, c.ttl).Err(); err != nil {
		return fmt.Errorf("failed to cache bands: %w", err)
	}
	return nil
}

// Invalidate discards every cached listing.
func (c *BandListCache) Invalidate(ctx context.Context) error {
	if err := c.client.Incr(ctx, versionKey).Err(); err != nil {
		return fmt.Errorf("failed to invalidate band cache: %w", err)
	}
	return nil
}
