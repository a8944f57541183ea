// README: Redis read cache for single-ride lookups. Never a source of
// truth: every write path invalidates, reads fall through on any error.
package ride

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"

	"waypool/internal/types"
)

const cacheTTL = 30 * time.Second

type Cache struct {
	redis *redis.Client
}

func NewCache(redis *redis.Client) *Cache {
	return &Cache{redis: redis}
}

func cacheKey(id types.ID) string {
	return "ride:" + string(id)
}

// Get returns the cached ride, or (nil, nil) on a miss. A decode
// failure is treated as a miss.
func (c *Cache) Get(ctx context.Context, id types.ID) (*Ride, error) {
	data, err := c.redis.Get(ctx, cacheKey(id)).Bytes()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var r Ride
	if err := json.Unmarshal(data, &r); err != nil {
		return nil, nil
	}
	return &r, nil
}

func (c *Cache) Set(ctx context.Context, r *Ride) error {
	// Cache the bare ride; enrichment is re-applied per read.
	bare := *r
	bare.Driver = nil
	bare.Vehicle = nil
	data, err := json.Marshal(&bare)
	if err != nil {
		return err
	}
	return c.redis.Set(ctx, cacheKey(r.ID), data, cacheTTL).Err()
}

func (c *Cache) Invalidate(ctx context.Context, id types.ID) error {
	return c.redis.Del(ctx, cacheKey(id)).Err()
}
