// README: Ride store backed by PostgreSQL. The seat counter is only
// ever changed through the conditional update in AdjustSeats.
package ride

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"waypool/internal/types"
)

type Store struct {
	db *pgxpool.Pool
}

func NewStore(db *pgxpool.Pool) *Store {
	return &Store{db: db}
}

const rideColumns = `
	id, driver_id, vehicle_id, origin, destination,
	origin_lat, origin_lng, dest_lat, dest_lng,
	route, stops, distance_km, eta_minutes,
	departure_time, total_seats, available_seats,
	price_per_seat, currency, status, created_at`

func (s *Store) Create(ctx context.Context, r *Ride) error {
	routeJSON, err := json.Marshal(r.Route)
	if err != nil {
		return err
	}
	stopsJSON, err := json.Marshal(r.Stops)
	if err != nil {
		return err
	}
	_, err = s.db.Exec(ctx, `
		INSERT INTO rides (
			id, driver_id, vehicle_id, origin, destination,
			origin_lat, origin_lng, dest_lat, dest_lng,
			route, stops, distance_km, eta_minutes,
			departure_time, total_seats, available_seats,
			price_per_seat, currency, status, created_at
		) VALUES (
			$1, $2, $3, $4, $5,
			$6, $7, $8, $9,
			$10, $11, $12, $13,
			$14, $15, $16,
			$17, $18, $19, $20
		)`,
		string(r.ID), string(r.DriverID), string(r.VehicleID), r.Origin, r.Destination,
		r.OriginLatLng.Lat, r.OriginLatLng.Lng, r.DestLatLng.Lat, r.DestLatLng.Lng,
		routeJSON, stopsJSON, r.DistanceKm, r.EtaMinutes,
		r.DepartureTime, r.TotalSeats, r.AvailableSeats,
		r.PricePerSeat.Amount, r.PricePerSeat.Currency, string(r.Status), r.CreatedAt,
	)
	return err
}

func (s *Store) Get(ctx context.Context, id types.ID) (*Ride, error) {
	row := s.db.QueryRow(ctx,
		`SELECT `+rideColumns+` FROM rides WHERE id = $1`, string(id))
	r, err := scanRide(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	return r, err
}

// List returns rides matching f, newest departure first. Geo matching
// is not done here; the service applies SearchQuery on the result.
func (s *Store) List(ctx context.Context, f Filters) ([]*Ride, error) {
	var (
		where []string
		args  []any
	)
	arg := func(v any) string {
		args = append(args, v)
		return fmt.Sprintf("$%d", len(args))
	}

	if !f.IncludeCancelled {
		where = append(where, "status <> "+arg(string(StatusCancelled)))
	}
	if f.DriverID != "" {
		where = append(where, "driver_id = "+arg(string(f.DriverID)))
	}
	if f.Origin != "" {
		where = append(where, "origin = "+arg(f.Origin))
	}
	if f.Destination != "" {
		where = append(where, "destination = "+arg(f.Destination))
	}
	if f.Date != nil {
		start, end := dayBounds(*f.Date)
		where = append(where, "departure_time >= "+arg(start))
		where = append(where, "departure_time <= "+arg(end))
	}

	query := `SELECT ` + rideColumns + ` FROM rides`
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	query += " ORDER BY departure_time DESC"

	rows, err := s.db.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*Ride
	for rows.Next() {
		r, err := scanRide(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

func (s *Store) UpdateStatus(ctx context.Context, id types.ID, status Status) error {
	tag, err := s.db.Exec(ctx,
		`UPDATE rides SET status = $1 WHERE id = $2`, string(status), string(id))
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// AdjustSeats applies available_seats += delta as one conditional
// update. The WHERE clause is the invariant: the write lands only if
// the resulting count stays within [0, total_seats], so concurrent
// bookings can never overdraw the inventory.
func (s *Store) AdjustSeats(ctx context.Context, id types.ID, delta int) error {
	tag, err := s.db.Exec(ctx, `
		UPDATE rides
		SET available_seats = available_seats + $1
		WHERE id = $2
		  AND available_seats + $1 >= 0
		  AND available_seats + $1 <= total_seats`,
		delta, string(id),
	)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 1 {
		return nil
	}

	// Zero rows: either the ride is gone or the update lost the
	// inventory race. Disambiguate with a lookup.
	var exists bool
	if err := s.db.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM rides WHERE id = $1)`, string(id)).Scan(&exists); err != nil {
		return err
	}
	if !exists {
		return ErrNotFound
	}
	return ErrSeatConflict
}

// GetDriver fetches the display subset of a user record.
func (s *Store) GetDriver(ctx context.Context, id types.ID) (*Driver, error) {
	row := s.db.QueryRow(ctx,
		`SELECT id, name, phone FROM users WHERE id = $1`, string(id))
	var d Driver
	err := row.Scan(&d.ID, &d.Name, &d.Phone)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &d, nil
}

func scanRide(row pgx.Row) (*Ride, error) {
	var (
		r                    Ride
		routeJSON, stopsJSON []byte
	)
	err := row.Scan(
		&r.ID, &r.DriverID, &r.VehicleID, &r.Origin, &r.Destination,
		&r.OriginLatLng.Lat, &r.OriginLatLng.Lng, &r.DestLatLng.Lat, &r.DestLatLng.Lng,
		&routeJSON, &stopsJSON, &r.DistanceKm, &r.EtaMinutes,
		&r.DepartureTime, &r.TotalSeats, &r.AvailableSeats,
		&r.PricePerSeat.Amount, &r.PricePerSeat.Currency, &r.Status, &r.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	if err := json.Unmarshal(routeJSON, &r.Route); err != nil {
		return nil, err
	}
	if err := json.Unmarshal(stopsJSON, &r.Stops); err != nil {
		return nil, err
	}
	return &r, nil
}

// dayBounds converts a calendar day to instant bounds in the time's
// own location. The end is derived from the next day's midnight, not
// start+24h, so DST-transition days keep their real length.
func dayBounds(t time.Time) (time.Time, time.Time) {
	start := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
	end := time.Date(t.Year(), t.Month(), t.Day()+1, 0, 0, 0, 0, t.Location()).Add(-time.Nanosecond)
	return start, end
}
