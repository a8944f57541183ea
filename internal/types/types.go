// README: Shared identifier and coordinate types.
package types

// ID is an opaque entity identifier.
type ID string

// Point is a WGS-84 coordinate in decimal degrees.
type Point struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// IsZero reports whether the point carries no coordinate. (0,0) is in
// the Gulf of Guinea and never a real pickup, so it doubles as "unset".
func (p Point) IsZero() bool {
	return p.Lat == 0 && p.Lng == 0
}
