// README: Ride offer aggregate and status definitions.
package ride

import (
	"time"

	"waypool/internal/modules/vehicle"
	"waypool/internal/types"
)

type Status string

const (
	StatusScheduled  Status = "scheduled"
	StatusInProgress Status = "in_progress"
	StatusCompleted  Status = "completed"
	StatusCancelled  Status = "cancelled"
)

// ValidStatus reports whether s is one of the known ride statuses.
func ValidStatus(s Status) bool {
	switch s {
	case StatusScheduled, StatusInProgress, StatusCompleted, StatusCancelled:
		return true
	}
	return false
}

// Ride is a driver's published trip offer with route and seat inventory.
// AvailableSeats is mutated only through Service.AdjustSeats.
type Ride struct {
	ID             types.ID
	DriverID       types.ID
	VehicleID      types.ID
	Origin         string
	Destination    string
	OriginLatLng   types.Point
	DestLatLng     types.Point
	Route          []types.Point
	Stops          []types.Point
	DistanceKm     float64
	EtaMinutes     int
	DepartureTime  time.Time
	TotalSeats     int
	AvailableSeats int
	PricePerSeat   types.Money
	Status         Status
	CreatedAt      time.Time

	// Display enrichment, filled best-effort on reads.
	Driver  *Driver
	Vehicle *vehicle.Vehicle
}

// Driver is the display subset of a user record attached to listings.
type Driver struct {
	ID    types.ID
	Name  string
	Phone string
}
