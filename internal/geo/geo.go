// Package geo contains pure geographic computation helpers.
package geo

import (
	"math"

	"waypool/internal/types"
)

const earthRadiusKm = 6371.0

// HaversineKm returns the great-circle distance in kilometres between
// two points specified in decimal degrees.
func HaversineKm(a, b types.Point) float64 {
	dLat := degreesToRadians(b.Lat - a.Lat)
	dLng := degreesToRadians(b.Lng - a.Lng)

	rLat1 := degreesToRadians(a.Lat)
	rLat2 := degreesToRadians(b.Lat)

	h := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(rLat1)*math.Cos(rLat2)*math.Sin(dLng/2)*math.Sin(dLng/2)
	c := 2 * math.Atan2(math.Sqrt(h), math.Sqrt(1-h))

	return earthRadiusKm * c
}

// DistanceToPolylineM returns the minimum distance in metres from p to
// any segment of line. A line with fewer than two points has no
// segments; the result is +Inf and callers must treat it as no match.
func DistanceToPolylineM(p types.Point, line []types.Point) float64 {
	min := math.Inf(1)
	for i := 0; i < len(line)-1; i++ {
		if d := distanceToSegmentM(p, line[i], line[i+1]); d < min {
			min = d
		}
	}
	return min
}

// IsNearPolyline reports whether p lies within thresholdM metres of
// any segment of line.
func IsNearPolyline(p types.Point, line []types.Point, thresholdM float64) bool {
	for i := 0; i < len(line)-1; i++ {
		if distanceToSegmentM(p, line[i], line[i+1]) <= thresholdM {
			return true
		}
	}
	return false
}

// distanceToSegmentM projects p onto the segment v-w with a clamped
// parametric t in a planar approximation of the lat/lng plane, then
// measures the great-circle distance from p to the projection.
func distanceToSegmentM(p, v, w types.Point) float64 {
	segKm := HaversineKm(v, w)
	if segKm == 0 {
		return HaversineKm(p, v) * 1000
	}
	t := ((p.Lat-v.Lat)*(w.Lat-v.Lat) + (p.Lng-v.Lng)*(w.Lng-v.Lng)) / (segKm * segKm)
	t = math.Max(0, math.Min(1, t))
	proj := types.Point{
		Lat: v.Lat + t*(w.Lat-v.Lat),
		Lng: v.Lng + t*(w.Lng-v.Lng),
	}
	return HaversineKm(p, proj) * 1000
}

func degreesToRadians(deg float64) float64 {
	return deg * math.Pi / 180.0
}
