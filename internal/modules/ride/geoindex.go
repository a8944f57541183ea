// README: Redis GEO index of scheduled ride origins, used to
// prefilter proximity searches before exact route matching.
package ride

import (
	"context"

	"github.com/redis/go-redis/v9"

	"waypool/internal/types"
)

const originGeoKey = "rides:origins"

type GeoIndex struct {
	redis *redis.Client
}

func NewGeoIndex(redis *redis.Client) *GeoIndex {
	return &GeoIndex{redis: redis}
}

func (g *GeoIndex) Add(ctx context.Context, id types.ID, origin types.Point) error {
	return g.redis.GeoAdd(ctx, originGeoKey, &redis.GeoLocation{
		Name:      string(id),
		Longitude: origin.Lng,
		Latitude:  origin.Lat,
	}).Err()
}

func (g *GeoIndex) Remove(ctx context.Context, id types.ID) error {
	return g.redis.ZRem(ctx, originGeoKey, string(id)).Err()
}

// Nearby returns ids of rides whose origin lies within radiusKm of p,
// closest first.
func (g *GeoIndex) Nearby(ctx context.Context, p types.Point, radiusKm float64) ([]types.ID, error) {
	results, err := g.redis.GeoSearch(ctx, originGeoKey, &redis.GeoSearchQuery{
		Longitude:  p.Lng,
		Latitude:   p.Lat,
		Radius:     radiusKm,
		RadiusUnit: "km",
		Sort:       "ASC",
	}).Result()
	if err != nil {
		return nil, err
	}
	ids := make([]types.ID, len(results))
	for i, r := range results {
		ids[i] = types.ID(r)
	}
	return ids, nil
}
