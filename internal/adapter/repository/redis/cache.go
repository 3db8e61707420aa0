package redis

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/iho/splitledger/internal/usecase"
)

// DefaultKeyspace prefixes every cache key written by NewCache.
const DefaultKeyspace = "splitledger:"

// Cache implements usecase.Cache on Redis strings.
type Cache struct {
	client   redis.UniversalClient
	keyspace string
}

func NewCache(client redis.UniversalClient) *Cache {
	return NewCacheWithKeyspace(client, DefaultKeyspace)
}

// NewCacheWithKeyspace lets several deployments share one Redis database.
func NewCacheWithKeyspace(client redis.UniversalClient, keyspace string) *Cache {
	return &Cache{client: client, keyspace: keyspace}
}

// Get returns usecase.ErrCacheMiss for absent or expired keys.
func (c *Cache) Get(ctx context.Context, key string) (string, error) {
	val, err := c.client.Get(ctx, c.keyspace+key).Result()
	if errors.Is(err, redis.Nil) {
		return "", usecase.ErrCacheMiss
	}
	return val, err
}

func (c *Cache) Set(ctx context.Context, key, value string, ttl time.Duration) error {
	return c.client.Set(ctx, c.keyspace+key, value, ttl).Err()
}

func (c *Cache) Delete(ctx context.Context, key string) error {
	return c.client.Unlink(ctx, c.keyspace+key).Err()
}
