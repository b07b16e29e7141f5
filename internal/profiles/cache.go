package profiles

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const cacheTTL = 10 * time.Minute

// Cache is a read-through redis cache in front of the profile repository.
// A nil redis client disables caching entirely.
type Cache struct {
	redis *redis.Client
}

// NewCache wraps a redis client; redisClient may be nil.
func NewCache(redisClient *redis.Client) *Cache {
	return &Cache{redis: redisClient}
}

func (c *Cache) key(id string) string {
	return fmt.Sprintf("profile:%s", id)
}

// Get returns the cached profile or nil on miss or any cache failure. Cache
// errors never fail the request path.
func (c *Cache) Get(ctx context.Context, id string) *Profile {
	if c == nil || c.redis == nil {
		return nil
	}
	data, err := c.redis.Get(ctx, c.key(id)).Bytes()
	if err != nil {
		return nil
	}
	var p Profile
	if err := json.Unmarshal(data, &p); err != nil {
		return nil
	}
	return &p
}

// Put stores the profile with a short TTL.
func (c *Cache) Put(ctx context.Context, p *Profile) {
	if c == nil || c.redis == nil || p == nil {
		return
	}
	data, err := json.Marshal(p)
	if err != nil {
		return
	}
	_ = c.redis.Set(ctx, c.key(p.ID), data, cacheTTL).Err()
}

// Invalidate drops the cached entry after a write.
func (c *Cache) Invalidate(ctx context.Context, id string) {
	if c == nil || c.redis == nil {
		return
	}
	_ = c.redis.Del(ctx, c.key(id)).Err()
}
