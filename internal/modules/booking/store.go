// README: Booking store backed by PostgreSQL.
package booking

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"waypool/internal/types"
)

// uniqueViolation is the Postgres error code raised when the partial
// unique index on active bookings settles a duplicate-booking race.
const uniqueViolation = "23505"

type Store struct {
	db *pgxpool.Pool
}

func NewStore(db *pgxpool.Pool) *Store {
	return &Store{db: db}
}

const bookingColumns = `
	id, ride_id, passenger_id, seats_booked,
	total_price, currency, status, booking_time,
	cancelled_at, cancel_reason, time_before_departure_min`

func (s *Store) Create(ctx context.Context, b *Booking) error {
	_, err := s.db.Exec(ctx, `
		INSERT INTO bookings (
			id, ride_id, passenger_id, seats_booked,
			total_price, currency, status, booking_time
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		string(b.ID), string(b.RideID), string(b.PassengerID), b.SeatsBooked,
		b.TotalPrice.Amount, b.TotalPrice.Currency, string(b.Status), b.BookingTime,
	)
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
		return ErrDuplicate
	}
	return err
}

func (s *Store) Get(ctx context.Context, id types.ID) (*Booking, error) {
	row := s.db.QueryRow(ctx,
		`SELECT `+bookingColumns+` FROM bookings WHERE id = $1`, string(id))
	b, err := scanBooking(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	return b, err
}

// Delete removes a booking outright. Only the creation compensation
// path uses it, when the seat decrement loses the inventory race.
func (s *Store) Delete(ctx context.Context, id types.ID) error {
	_, err := s.db.Exec(ctx, `DELETE FROM bookings WHERE id = $1`, string(id))
	return err
}

// HasActive reports whether the passenger already holds a confirmed or
// completed booking on the ride.
func (s *Store) HasActive(ctx context.Context, rideID, passengerID types.ID) (bool, error) {
	row := s.db.QueryRow(ctx, `
		SELECT EXISTS (
			SELECT 1 FROM bookings
			WHERE ride_id = $1
			  AND passenger_id = $2
			  AND status IN ('confirmed', 'completed')
		)`, string(rideID), string(passengerID),
	)
	var exists bool
	if err := row.Scan(&exists); err != nil {
		return false, err
	}
	return exists, nil
}

// MarkCancelled flips a booking to cancelled in one conditional
// update. reason and minutesBefore are nil for driver-initiated
// cascade cancellations. Returns ErrAlreadyCancelled if another
// request (passenger cancel vs. cascade) won the race.
func (s *Store) MarkCancelled(ctx context.Context, id types.ID, reason *string, minutesBefore *int, at time.Time) error {
	tag, err := s.db.Exec(ctx, `
		UPDATE bookings
		SET status = 'cancelled',
		    cancelled_at = $2,
		    cancel_reason = $3,
		    time_before_departure_min = $4
		WHERE id = $1 AND status <> 'cancelled'`,
		string(id), at, reason, minutesBefore,
	)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 1 {
		return nil
	}

	var exists bool
	if err := s.db.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM bookings WHERE id = $1)`, string(id)).Scan(&exists); err != nil {
		return err
	}
	if !exists {
		return ErrNotFound
	}
	return ErrAlreadyCancelled
}

// ListByPassenger returns the passenger's bookings, newest first.
func (s *Store) ListByPassenger(ctx context.Context, passengerID types.ID) ([]*Booking, error) {
	return s.list(ctx,
		`SELECT `+bookingColumns+` FROM bookings
		WHERE passenger_id = $1
		ORDER BY booking_time DESC`, string(passengerID))
}

// ListForRide returns the ride's bookings with the given status,
// oldest first.
func (s *Store) ListForRide(ctx context.Context, rideID types.ID, status Status) ([]*Booking, error) {
	return s.list(ctx,
		`SELECT `+bookingColumns+` FROM bookings
		WHERE ride_id = $1 AND status = $2
		ORDER BY booking_time ASC`, string(rideID), string(status))
}

// GetPassenger fetches the display subset of a user record.
func (s *Store) GetPassenger(ctx context.Context, id types.ID) (*Passenger, error) {
	row := s.db.QueryRow(ctx,
		`SELECT id, name, phone FROM users WHERE id = $1`, string(id))
	var p Passenger
	err := row.Scan(&p.ID, &p.Name, &p.Phone)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (s *Store) list(ctx context.Context, query string, args ...any) ([]*Booking, error) {
	rows, err := s.db.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*Booking
	for rows.Next() {
		b, err := scanBooking(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, b)
	}
	return out, rows.Err()
}

func scanBooking(row pgx.Row) (*Booking, error) {
	var (
		b            Booking
		cancelledAt  *time.Time
		cancelReason *string
		minutes      *int
	)
	err := row.Scan(
		&b.ID, &b.RideID, &b.PassengerID, &b.SeatsBooked,
		&b.TotalPrice.Amount, &b.TotalPrice.Currency, &b.Status, &b.BookingTime,
		&cancelledAt, &cancelReason, &minutes,
	)
	if err != nil {
		return nil, err
	}
	b.CancelledAt = cancelledAt
	b.CancelReason = cancelReason
	b.TimeBeforeDepartureMin = minutes
	return &b, nil
}
