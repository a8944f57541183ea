// README: Booking aggregate and status definitions.
package booking

import (
	"time"

	"waypool/internal/modules/ride"
	"waypool/internal/types"
)

type Status string

const (
	StatusConfirmed Status = "confirmed"
	StatusCancelled Status = "cancelled"
	// StatusCompleted is set by the external ride-completion workflow.
	// This module never writes it but must respect it in the
	// duplicate-booking check.
	StatusCompleted Status = "completed"
)

// Booking is a passenger's seat reservation against one ride.
// TotalPrice is frozen at booking time; price changes on the ride
// never reprice an existing booking.
type Booking struct {
	ID          types.ID
	RideID      types.ID
	PassengerID types.ID
	SeatsBooked int
	TotalPrice  types.Money
	Status      Status
	BookingTime time.Time

	// Cancellation tracking, set once on cancel and never mutated after.
	CancelledAt            *time.Time
	CancelReason           *string
	TimeBeforeDepartureMin *int

	// Display enrichment, filled best-effort on reads.
	Ride      *ride.Ride
	Passenger *Passenger
}

// Passenger is the display subset of a user record attached to
// ride-scoped booking listings.
type Passenger struct {
	ID    types.ID
	Name  string
	Phone string
}
