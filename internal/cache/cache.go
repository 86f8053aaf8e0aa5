// server/internal/cache/cache.go
package cache

import (
	"context"
	"encoding/json"
	"log"
	"time"

	"github.com/redis/go-redis/v9"
)

// Cache is a Redis-backed cache-aside component with a configurable TTL.
// It is injected where caching is wanted (the directory gateway) instead of
// living as ambient global state. A nil client degrades to a no-op so the
// server keeps working without Redis.
type Cache struct {
	client *redis.Client
	ttl    time.Duration
}

// New connects to Redis and returns a Cache. When the connection fails the
// returned Cache is a no-op and the server continues without caching.
func New(addr string, ttl time.Duration) *Cache {
	client := redis.NewClient(&redis.Options{Addr: addr})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		log.Printf("Redis connection warning: %v (continuing without cache)", err)
		client = nil
	} else {
		log.Println("Redis connected successfully")
	}

	return &Cache{client: client, ttl: ttl}
}

// GetJSON attempts to get the key and unmarshal into dest.
// Returns (true, nil) if found and unmarshaled, (false, nil) if not found.
func (c *Cache) GetJSON(ctx context.Context, key string, dest any) (bool, error) {
	if c == nil || c.client == nil {
		return false, nil
	}
	s, err := c.client.Get(ctx, key).Result()
	if err == redis.Nil {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	if err := json.Unmarshal([]byte(s), dest); err != nil {
		return false, err
	}
	return true, nil
}

// SetJSON marshals v and sets the key with the configured TTL.
func (c *Cache) SetJSON(ctx context.Context, key string, v any) error {
	if c == nil || c.client == nil {
		return nil
	}
	b, err := json.Marshal(v)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, key, b, c.ttl).Err()
}

// Aside tries the cache first; on miss it calls fetch (which must write into
// dest), then stores the result. Cache errors fall through to fetch.
func (c *Cache) Aside(ctx context.Context, key string, dest any, fetch func() error) error {
	found, err := c.GetJSON(ctx, key, dest)
	if err != nil {
		log.Printf("Cache read failed for %q: %v", key, err)
	}
	if found {
		return nil
	}
	if err := fetch(); err != nil {
		return err
	}
	if err := c.SetJSON(ctx, key, dest); err != nil {
		log.Printf("Cache write failed for %q: %v", key, err)
	}
	return nil
}
