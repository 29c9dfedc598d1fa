package cache

import (
	"context"
	"encoding/json"
	"log"
	"time"

	"github.com/redis/go-redis/v9"
)

// NewClient connects to Redis. Returns nil when Redis is unreachable so
// callers can degrade to cache-less operation.
func NewClient(address string) *redis.Client {
	client := redis.NewClient(&redis.Options{
		Addr: address,
	})
	if _, err := client.Ping(context.Background()).Result(); err != nil {
		log.Println("Redis not available. Running without Redis.")
		return nil
	}

	log.Println("Redis connected successfully.")
	return client
}

// Cache is a small JSON cache with versioned keys: readers include the
// current version in their key, writers bump the version to invalidate
// every derived entry at once.
type Cache struct {
	client *redis.Client
}

func NewCache(client *redis.Client) *Cache {
	return &Cache{client: client}
}

func (c *Cache) Get(ctx context.Context, key string, dest any) (bool, error) {
	if c.client == nil {
		return false, nil
	}
	raw, err := c.client.Get(ctx, key).Bytes()
	if err == redis.Nil {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	if err := json.Unmarshal(raw, dest); err != nil {
		return false, err
	}
	return true, nil
}

func (c *Cache) Set(ctx context.Context, key string, value any, ttl time.Duration) {
	if c.client == nil {
		return
	}
	raw, err := json.Marshal(value)
	if err != nil {
		log.Printf("[CACHE] failed to marshal %s: %v", key, err)
		return
	}
	if err := c.client.Set(ctx, key, raw, ttl).Err(); err != nil {
		log.Printf("[CACHE] failed to set %s: %v", key, err)
	}
}

func (c *Cache) GetVersion(ctx context.Context, key string) uint64 {
	if c.client == nil {
		return 0
	}
	v, err := c.client.Get(ctx, key).Uint64()
	if err != nil {
		return 0
	}
	return v
}

func (c *Cache) IncrementVersion(ctx context.Context, key string) {
	if c.client == nil {
		return
	}
	if err := c.client.Incr(ctx, key).Err(); err != nil {
		log.Printf("[CACHE] failed to bump %s: %v", key, err)
	}
}
