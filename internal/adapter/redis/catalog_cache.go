package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/reelcart/storefront/internal/repository"
)

// catalogVersionKey holds the monotonically increasing catalog version.
// Search keys embed the version, so bumping it orphans every search entry
// built against the old catalog without scanning the keyspace.
const catalogVersionKey = "catalog:version"

type catalogCache struct {
	client *redis.Client
}

func NewCatalogCache(client *redis.Client) repository.CatalogCache {
	return &catalogCache{client: client}
}

func (c *catalogCache) Get(ctx context.Context, key string) ([]byte, error) {
	value, err := c.client.Get(ctx, key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, repository.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get cache key %s: %w", key, err)
	}
	return value, nil
}

func (c *catalogCache) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	err := c.client.Set(ctx, key, value, ttl).Err()
	if err != nil {
		return fmt.Errorf("failed to set cache key %s: %w", key, err)
	}
	return nil
}

func (c *catalogCache) Delete(ctx context.Context, keys ...string) error {
	if len(keys) == 0 {
		return nil
	}
	err := c.client.Del(ctx, keys...).Err()
	if err != nil {
		return fmt.Errorf("failed to delete cache keys: %w", err)
	}
	return nil
}

func (c *catalogCache) Version(ctx context.Context) (int64, error) {
	version, err := c.client.Get(ctx, catalogVersionKey).Int64()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return 0, nil
		}
		return 0, fmt.Errorf("failed to read catalog version: %w", err)
	}
	return version, nil
}

func (c *catalogCache) BumpVersion(ctx context.Context) error {
	err := c.client.Incr(ctx, catalogVersionKey).Err()
	if err != nil {
		return fmt.Errorf("failed to bump catalog version: %w", err)
	}
	return nil
}
