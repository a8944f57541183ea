// Package maps wraps the Google Maps Directions API for route geometry.
package maps

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"time"

	gmaps "googlemaps.github.io/maps"

	"waypool/internal/geo"
	"waypool/internal/types"
)

// fallbackSpeedKmh is the assumed average speed when the provider is
// unreachable and the ETA has to be derived from a straight line.
const fallbackSpeedKmh = 50.0

// Route is the geometry a ride is published with.
type Route struct {
	Points     []types.Point
	DistanceKm float64
	EtaMinutes int
}

// Directions supplies a drivable route between two points. Implementations
// must always return a usable route; provider failures degrade to the
// straight-line fallback instead of surfacing an error to ride creation.
type Directions interface {
	GetRoute(ctx context.Context, origin, dest types.Point, waypoints []types.Point) (Route, error)
}

// Service is the production Directions implementation backed by the
// Google Maps API.
type Service struct {
	client *gmaps.Client
}

// NewService creates a Service with the given API key.
func NewService(apiKey string) (*Service, error) {
	client, err := gmaps.NewClient(gmaps.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create maps client: %w", err)
	}
	return &Service{client: client}, nil
}

// GetRoute fetches the driving route from origin to dest through the
// optional waypoints. On any provider failure it returns Fallback,
// the straight-line contract, with a nil error.
func (s *Service) GetRoute(ctx context.Context, origin, dest types.Point, waypoints []types.Point) (Route, error) {
	req := &gmaps.DirectionsRequest{
		Origin:      formatPoint(origin),
		Destination: formatPoint(dest),
		Mode:        gmaps.TravelModeDriving,
	}
	for _, w := range waypoints {
		req.Waypoints = append(req.Waypoints, formatPoint(w))
	}

	routes, _, err := s.client.Directions(ctx, req)
	if err != nil {
		slog.Warn("directions api failed, using straight-line fallback", "err", err)
		return Fallback(origin, dest), nil
	}
	if len(routes) == 0 {
		slog.Warn("directions api returned no routes, using straight-line fallback")
		return Fallback(origin, dest), nil
	}

	decoded, err := routes[0].OverviewPolyline.Decode()
	if err != nil || len(decoded) < 2 {
		slog.Warn("directions polyline unusable, using straight-line fallback", "err", err)
		return Fallback(origin, dest), nil
	}

	points := make([]types.Point, len(decoded))
	for i, ll := range decoded {
		points[i] = types.Point{Lat: ll.Lat, Lng: ll.Lng}
	}

	var meters int
	var duration time.Duration
	for _, leg := range routes[0].Legs {
		meters += leg.Distance.Meters
		duration += leg.Duration
	}

	return Route{
		Points:     points,
		DistanceKm: float64(meters) / 1000.0,
		EtaMinutes: int(math.Round(duration.Minutes())),
	}, nil
}

// Fallback is the contractual degraded route: the straight line from
// origin to dest, haversine distance, and an ETA assuming
// fallbackSpeedKmh average speed.
func Fallback(origin, dest types.Point) Route {
	dist := geo.HaversineKm(origin, dest)
	return Route{
		Points:     []types.Point{origin, dest},
		DistanceKm: dist,
		EtaMinutes: int(math.Round(dist / fallbackSpeedKmh * 60)),
	}
}

func formatPoint(p types.Point) string {
	return fmt.Sprintf("%f,%f", p.Lat, p.Lng)
}
