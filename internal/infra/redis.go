// README: Shared Redis client; backs the ride origin geo index and
// the single-ride read cache.
package infra

import "github.com/redis/go-redis/v9"

func NewRedis(addr string) *redis.Client {
	return redis.NewClient(&redis.Options{Addr: addr})
}
