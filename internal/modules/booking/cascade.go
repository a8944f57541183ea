// README: Driver-initiated ride cancellation: cancels every confirmed
// booking, refunds its seats, then retires the ride.
package booking

import (
	"context"
	"errors"
	"time"

	"waypool/internal/events"
	"waypool/internal/modules/ride"
	"waypool/internal/observability"
	"waypool/internal/types"
)

// CancelRide walks all confirmed bookings on the ride, cancelling each
// and crediting its seats back, and flips the ride to cancelled last.
// A crash mid-cascade leaves the ride scheduled with partially
// restored seats; re-invoking re-scans the remaining confirmed
// bookings, so the operation is retryable and never double-credits.
func (s *Service) CancelRide(ctx context.Context, rideID, driverID types.ID) error {
	r, err := s.rides.GetFresh(ctx, rideID)
	if err != nil {
		return err
	}
	if r.DriverID != driverID {
		return ErrUnauthorized
	}
	if r.Status != ride.StatusScheduled {
		return ErrRideNotCancellable
	}

	bookings, err := s.store.ListForRide(ctx, rideID, StatusConfirmed)
	if err != nil {
		return err
	}
	now := time.Now()
	for _, b := range bookings {
		// No cancel reason: driver-initiated, not the passenger's doing.
		if err := s.store.MarkCancelled(ctx, b.ID, nil, nil, now); err != nil {
			if errors.Is(err, ErrAlreadyCancelled) {
				// Lost a race with the passenger's own cancel, which
				// already credited the seats.
				continue
			}
			return err
		}
		if err := s.rides.AdjustSeats(ctx, rideID, b.SeatsBooked); err != nil {
			return err
		}
		observability.BookingsCancelled.Inc()
		s.publish(ctx, events.BookingEvent{
			Type:        events.TypeBookingCancelled,
			RideID:      rideID,
			DriverID:    driverID,
			PassengerID: b.PassengerID,
			Seats:       b.SeatsBooked,
			OccurredAt:  now,
		})
	}

	// The status flip comes last so an interrupted cascade stays
	// retryable instead of leaving a cancelled ride with seats missing.
	if err := s.rides.SetStatus(ctx, rideID, ride.StatusCancelled); err != nil {
		return err
	}
	observability.RidesCancelled.Inc()
	s.publish(ctx, events.BookingEvent{
		Type:       events.TypeRideCancelled,
		RideID:     rideID,
		DriverID:   driverID,
		OccurredAt: now,
	})
	return nil
}
