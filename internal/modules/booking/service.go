// README: Booking ledger: seat reservation with the full validation
// chain, compensation for lost inventory races, and cancellation.
package booking

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"time"

	"github.com/google/uuid"

	"waypool/internal/events"
	"waypool/internal/modules/ride"
	"waypool/internal/observability"
	"waypool/internal/types"
)

var (
	ErrNotFound            = errors.New("booking not found")
	ErrUnauthorized        = errors.New("booking belongs to another passenger")
	ErrSelfBooking         = errors.New("drivers cannot book their own ride")
	ErrDuplicate           = errors.New("ride already booked by this passenger")
	ErrRideNotBookable     = errors.New("ride is not open for booking")
	ErrBookingWindowClosed = errors.New("bookings close one hour before departure")
	ErrAlreadyCancelled    = errors.New("booking is already cancelled")
	ErrRideNotCancellable  = errors.New("only scheduled rides can be cancelled")
	ErrBadRequest          = errors.New("bad request")
)

// InsufficientSeatsError carries the remaining count so callers can
// render "only N seats available".
type InsufficientSeatsError struct {
	Available int
}

func (e *InsufficientSeatsError) Error() string {
	return fmt.Sprintf("only %d seats available", e.Available)
}

// bookingWindow is the minimum lead time before departure. Last-minute
// bookings the driver cannot reasonably accommodate are refused.
const bookingWindow = time.Hour

// RideCatalog is the slice of the ride service this module mutates
// inventory through. AdjustSeats is the single seat primitive.
// Validation reads go through GetFresh: the cached Get is for display
// enrichment only and may lag the store by the cache TTL.
type RideCatalog interface {
	Get(ctx context.Context, id types.ID) (*ride.Ride, error)
	GetFresh(ctx context.Context, id types.ID) (*ride.Ride, error)
	AdjustSeats(ctx context.Context, id types.ID, delta int) error
	SetStatus(ctx context.Context, id types.ID, status ride.Status) error
}

type Service struct {
	store  *Store
	rides  RideCatalog
	events events.Publisher
}

// NewService wires the ledger. events may be nil; publishing is then
// skipped entirely.
func NewService(store *Store, rides RideCatalog, events events.Publisher) *Service {
	return &Service{store: store, rides: rides, events: events}
}

type CreateCommand struct {
	RideID      types.ID
	PassengerID types.ID
	Seats       int
}

type CancelCommand struct {
	BookingID   types.ID
	PassengerID types.ID
	Reason      string
}

// Create reserves seats on a ride. The checks run in order and the
// first failure is the result; nothing is written until all pass. The
// confirmed booking and the seat decrement form one unit: if the
// decrement loses the inventory race the booking is rolled back and
// the caller sees the same InsufficientSeatsError as a plainly late
// request.
func (s *Service) Create(ctx context.Context, cmd CreateCommand) (*Booking, error) {
	if cmd.RideID == "" || cmd.PassengerID == "" || cmd.Seats < 1 {
		return nil, ErrBadRequest
	}

	r, err := s.rides.GetFresh(ctx, cmd.RideID)
	if err != nil {
		return nil, err
	}
	if r.DriverID == cmd.PassengerID {
		return nil, s.reject(ErrSelfBooking, "self_booking")
	}
	active, err := s.store.HasActive(ctx, cmd.RideID, cmd.PassengerID)
	if err != nil {
		return nil, err
	}
	if active {
		return nil, s.reject(ErrDuplicate, "duplicate")
	}
	if cmd.Seats > r.AvailableSeats {
		return nil, s.reject(&InsufficientSeatsError{Available: r.AvailableSeats}, "insufficient_seats")
	}
	if r.Status != ride.StatusScheduled {
		return nil, s.reject(ErrRideNotBookable, "not_bookable")
	}
	if time.Until(r.DepartureTime) < bookingWindow {
		return nil, s.reject(ErrBookingWindowClosed, "window_closed")
	}

	b := &Booking{
		ID:          types.ID(uuid.NewString()),
		RideID:      cmd.RideID,
		PassengerID: cmd.PassengerID,
		SeatsBooked: cmd.Seats,
		TotalPrice:  r.PricePerSeat.Times(cmd.Seats),
		Status:      StatusConfirmed,
		BookingTime: time.Now(),
	}
	if err := s.store.Create(ctx, b); err != nil {
		return nil, err
	}

	if err := s.rides.AdjustSeats(ctx, cmd.RideID, -cmd.Seats); err != nil {
		// The booking must not survive a failed decrement. Remove it,
		// then report the loss of the race as an availability problem.
		if derr := s.store.Delete(ctx, b.ID); derr != nil {
			slog.Error("orphaned booking: compensation delete failed", "booking_id", b.ID, "err", derr)
		}
		if errors.Is(err, ride.ErrSeatConflict) {
			avail := 0
			if cur, gerr := s.rides.GetFresh(ctx, cmd.RideID); gerr == nil {
				avail = cur.AvailableSeats
			}
			return nil, s.reject(&InsufficientSeatsError{Available: avail}, "insufficient_seats")
		}
		return nil, err
	}

	observability.BookingsConfirmed.Inc()
	s.publish(ctx, events.BookingEvent{
		Type:        events.TypeBookingConfirmed,
		RideID:      r.ID,
		DriverID:    r.DriverID,
		PassengerID: cmd.PassengerID,
		Seats:       cmd.Seats,
		OccurredAt:  b.BookingTime,
	})
	return b, nil
}

// Cancel releases a passenger's booking and returns its seats. There
// is no minimum notice: any confirmed booking may be cancelled up to
// manual completion.
func (s *Service) Cancel(ctx context.Context, cmd CancelCommand) error {
	b, err := s.store.Get(ctx, cmd.BookingID)
	if err != nil {
		return err
	}
	if b.PassengerID != cmd.PassengerID {
		return ErrUnauthorized
	}
	if b.Status == StatusCancelled {
		return ErrAlreadyCancelled
	}

	r, err := s.rides.GetFresh(ctx, b.RideID)
	if err != nil {
		return err
	}
	now := time.Now()
	minutes := int(math.Floor(r.DepartureTime.Sub(now).Minutes()))

	if err := s.store.MarkCancelled(ctx, b.ID, &cmd.Reason, &minutes, now); err != nil {
		return err
	}
	if err := s.rides.AdjustSeats(ctx, b.RideID, b.SeatsBooked); err != nil {
		return err
	}

	observability.BookingsCancelled.Inc()
	s.publish(ctx, events.BookingEvent{
		Type:        events.TypeBookingCancelled,
		RideID:      r.ID,
		DriverID:    r.DriverID,
		PassengerID: b.PassengerID,
		Seats:       b.SeatsBooked,
		OccurredAt:  now,
	})
	return nil
}

// Get returns a single booking without enrichment.
func (s *Service) Get(ctx context.Context, id types.ID) (*Booking, error) {
	return s.store.Get(ctx, id)
}

// ListByPassenger returns the passenger's bookings newest first, each
// enriched with its ride when the lookup succeeds.
func (s *Service) ListByPassenger(ctx context.Context, passengerID types.ID) ([]*Booking, error) {
	bookings, err := s.store.ListByPassenger(ctx, passengerID)
	if err != nil {
		return nil, err
	}
	for _, b := range bookings {
		if r, err := s.rides.Get(ctx, b.RideID); err == nil {
			b.Ride = r
		} else if !errors.Is(err, ride.ErrNotFound) {
			slog.Warn("ride enrichment failed", "booking_id", b.ID, "err", err)
		}
	}
	return bookings, nil
}

// ListForRide returns the ride's confirmed bookings oldest first, each
// enriched with passenger display data when the lookup succeeds.
func (s *Service) ListForRide(ctx context.Context, rideID types.ID) ([]*Booking, error) {
	bookings, err := s.store.ListForRide(ctx, rideID, StatusConfirmed)
	if err != nil {
		return nil, err
	}
	for _, b := range bookings {
		if p, err := s.store.GetPassenger(ctx, b.PassengerID); err == nil {
			b.Passenger = p
		} else if !errors.Is(err, ErrNotFound) {
			slog.Warn("passenger enrichment failed", "booking_id", b.ID, "err", err)
		}
	}
	return bookings, nil
}

func (s *Service) reject(err error, reason string) error {
	observability.BookingRejections.WithLabelValues(reason).Inc()
	return err
}

func (s *Service) publish(ctx context.Context, ev events.BookingEvent) {
	if s.events == nil {
		return
	}
	if err := s.events.Publish(ctx, string(ev.RideID), ev); err != nil {
		slog.Warn("booking event publish failed", "type", ev.Type, "ride_id", ev.RideID, "err", err)
	}
}
