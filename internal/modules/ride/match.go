// README: Route compatibility check between a search and a published ride.
package ride

import (
	"waypool/internal/geo"
	"waypool/internal/types"
)

// Matching policy. Fixed product constants, not per-request knobs.
const (
	// originRadiusKm bounds how far the ride's start may be from the
	// passenger's desired start (and likewise for the destination).
	originRadiusKm = 5.0
	// pickupThresholdM bounds how far the passenger's pickup point may
	// lie from the driver's route polyline.
	pickupThresholdM = 300.0
)

// SearchQuery is a passenger's desired trip. All three points must be
// set for the query to participate in geo filtering.
type SearchQuery struct {
	Origin types.Point
	Dest   types.Point
	Pickup types.Point
}

// Complete reports whether the query carries all coordinates needed
// for route matching. Partial coordinate sets are ignored by listings.
func (q SearchQuery) Complete() bool {
	return !q.Origin.IsZero() && !q.Dest.IsZero() && !q.Pickup.IsZero()
}

// Matches decides whether r's published route satisfies the query:
// ride origin and destination within originRadiusKm of the requested
// ones, and the pickup point within pickupThresholdM of the route.
// Rides without coordinates or without a usable route never match.
func (q SearchQuery) Matches(r *Ride) bool {
	if r.OriginLatLng.IsZero() || r.DestLatLng.IsZero() || len(r.Route) < 2 {
		return false
	}
	if geo.HaversineKm(r.OriginLatLng, q.Origin) > originRadiusKm {
		return false
	}
	if geo.HaversineKm(r.DestLatLng, q.Dest) > originRadiusKm {
		return false
	}
	return geo.IsNearPolyline(q.Pickup, r.Route, pickupThresholdM)
}
