// README: Booking ledger tests (validation chain, cancellation, cascade).
package booking

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"waypool/internal/modules/ride"
	"waypool/internal/types"
)

func TestCreateBookingHappyPath(t *testing.T) {
	svc, rides := setupTestServices(t)
	ctx := context.Background()

	r := mustPublishRide(t, rides, "d1", 4, 2*time.Hour)

	b, err := svc.Create(ctx, CreateCommand{RideID: r.ID, PassengerID: "p1", Seats: 2})
	if err != nil {
		t.Fatalf("create booking: %v", err)
	}
	if b.Status != StatusConfirmed {
		t.Errorf("expected confirmed, got %s", b.Status)
	}
	if want := r.PricePerSeat.Times(2); b.TotalPrice != want {
		t.Errorf("expected total price %v, got %v", want, b.TotalPrice)
	}

	got, err := rides.Get(ctx, r.ID)
	if err != nil {
		t.Fatalf("get ride: %v", err)
	}
	if got.AvailableSeats != 2 {
		t.Errorf("expected 2 seats left, got %d", got.AvailableSeats)
	}
}

func TestCreateBookingRejectsBadCommands(t *testing.T) {
	svc, rides := setupTestServices(t)
	ctx := context.Background()

	r := mustPublishRide(t, rides, "d1", 4, 2*time.Hour)

	cases := []CreateCommand{
		{RideID: r.ID, PassengerID: "p1", Seats: 0},
		{RideID: r.ID, Seats: 1},
		{PassengerID: "p1", Seats: 1},
	}
	for i, cmd := range cases {
		if _, err := svc.Create(ctx, cmd); err != ErrBadRequest {
			t.Errorf("case %d: expected ErrBadRequest, got %v", i, err)
		}
	}

	if _, err := svc.Create(ctx, CreateCommand{RideID: "r_missing", PassengerID: "p1", Seats: 1}); err != ride.ErrNotFound {
		t.Errorf("missing ride: expected ride.ErrNotFound, got %v", err)
	}
}

func TestCreateBookingSelfBooking(t *testing.T) {
	svc, rides := setupTestServices(t)

	r := mustPublishRide(t, rides, "d1", 4, 2*time.Hour)
	if _, err := svc.Create(context.Background(), CreateCommand{RideID: r.ID, PassengerID: "d1", Seats: 1}); err != ErrSelfBooking {
		t.Fatalf("expected ErrSelfBooking, got %v", err)
	}
}

func TestCreateBookingDuplicate(t *testing.T) {
	svc, rides := setupTestServices(t)
	ctx := context.Background()

	r := mustPublishRide(t, rides, "d1", 4, 2*time.Hour)
	if _, err := svc.Create(ctx, CreateCommand{RideID: r.ID, PassengerID: "p1", Seats: 1}); err != nil {
		t.Fatalf("first booking: %v", err)
	}
	if _, err := svc.Create(ctx, CreateCommand{RideID: r.ID, PassengerID: "p1", Seats: 1}); err != ErrDuplicate {
		t.Fatalf("expected ErrDuplicate, got %v", err)
	}
}

func TestCreateBookingInsufficientSeats(t *testing.T) {
	svc, rides := setupTestServices(t)
	ctx := context.Background()

	r := mustPublishRide(t, rides, "d1", 2, 2*time.Hour)
	if _, err := svc.Create(ctx, CreateCommand{RideID: r.ID, PassengerID: "p1", Seats: 1}); err != nil {
		t.Fatalf("first booking: %v", err)
	}

	_, err := svc.Create(ctx, CreateCommand{RideID: r.ID, PassengerID: "p2", Seats: 2})
	var insufficient *InsufficientSeatsError
	if !errors.As(err, &insufficient) {
		t.Fatalf("expected InsufficientSeatsError, got %v", err)
	}
	if insufficient.Available != 1 {
		t.Fatalf("expected 1 seat reported available, got %d", insufficient.Available)
	}
}

func TestCreateBookingRideNotBookable(t *testing.T) {
	svc, rides := setupTestServices(t)
	ctx := context.Background()

	r := mustPublishRide(t, rides, "d1", 4, 2*time.Hour)
	if err := rides.SetStatus(ctx, r.ID, ride.StatusInProgress); err != nil {
		t.Fatalf("set status: %v", err)
	}
	if _, err := svc.Create(ctx, CreateCommand{RideID: r.ID, PassengerID: "p1", Seats: 1}); err != ErrRideNotBookable {
		t.Fatalf("expected ErrRideNotBookable, got %v", err)
	}
}

func TestCreateBookingWindow(t *testing.T) {
	svc, rides := setupTestServices(t)
	ctx := context.Background()

	soon := mustPublishRide(t, rides, "d1", 4, 30*time.Minute)
	if _, err := svc.Create(ctx, CreateCommand{RideID: soon.ID, PassengerID: "p1", Seats: 1}); err != ErrBookingWindowClosed {
		t.Fatalf("30min before departure: expected ErrBookingWindowClosed, got %v", err)
	}

	later := mustPublishRide(t, rides, "d1", 4, 90*time.Minute)
	if _, err := svc.Create(ctx, CreateCommand{RideID: later.ID, PassengerID: "p1", Seats: 1}); err != nil {
		t.Fatalf("90min before departure: %v", err)
	}
}

func TestCancelBookingRoundTrip(t *testing.T) {
	svc, rides := setupTestServices(t)
	ctx := context.Background()

	r := mustPublishRide(t, rides, "d1", 4, 2*time.Hour)
	b, err := svc.Create(ctx, CreateCommand{RideID: r.ID, PassengerID: "p1", Seats: 3})
	if err != nil {
		t.Fatalf("create booking: %v", err)
	}

	if err := svc.Cancel(ctx, CancelCommand{BookingID: b.ID, PassengerID: "p2", Reason: "nope"}); err != ErrUnauthorized {
		t.Fatalf("foreign cancel: expected ErrUnauthorized, got %v", err)
	}

	if err := svc.Cancel(ctx, CancelCommand{BookingID: b.ID, PassengerID: "p1", Reason: "change of plans"}); err != nil {
		t.Fatalf("cancel: %v", err)
	}

	got, err := svc.Get(ctx, b.ID)
	if err != nil {
		t.Fatalf("get booking: %v", err)
	}
	if got.Status != StatusCancelled {
		t.Errorf("expected cancelled, got %s", got.Status)
	}
	if got.CancelReason == nil || *got.CancelReason != "change of plans" {
		t.Errorf("cancel reason not recorded: %v", got.CancelReason)
	}
	if got.TimeBeforeDepartureMin == nil || *got.TimeBeforeDepartureMin > 120 || *got.TimeBeforeDepartureMin < 115 {
		t.Errorf("unexpected lead-time minutes: %v", got.TimeBeforeDepartureMin)
	}

	cur, err := rides.Get(ctx, r.ID)
	if err != nil {
		t.Fatalf("get ride: %v", err)
	}
	if cur.AvailableSeats != 4 {
		t.Errorf("expected seats restored to 4, got %d", cur.AvailableSeats)
	}

	if err := svc.Cancel(ctx, CancelCommand{BookingID: b.ID, PassengerID: "p1"}); err != ErrAlreadyCancelled {
		t.Fatalf("re-cancel: expected ErrAlreadyCancelled, got %v", err)
	}
}

func TestRebookAfterCancel(t *testing.T) {
	svc, rides := setupTestServices(t)
	ctx := context.Background()

	r := mustPublishRide(t, rides, "d1", 2, 2*time.Hour)
	b, err := svc.Create(ctx, CreateCommand{RideID: r.ID, PassengerID: "p1", Seats: 1})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if err := svc.Cancel(ctx, CancelCommand{BookingID: b.ID, PassengerID: "p1"}); err != nil {
		t.Fatalf("cancel: %v", err)
	}
	// A cancelled booking no longer blocks a new one on the same ride.
	if _, err := svc.Create(ctx, CreateCommand{RideID: r.ID, PassengerID: "p1", Seats: 1}); err != nil {
		t.Fatalf("rebook: %v", err)
	}
}

func TestCancelRideCascade(t *testing.T) {
	svc, rides := setupTestServices(t)
	ctx := context.Background()

	r := mustPublishRide(t, rides, "d1", 5, 2*time.Hour)
	if _, err := svc.Create(ctx, CreateCommand{RideID: r.ID, PassengerID: "p1", Seats: 1}); err != nil {
		t.Fatalf("booking p1: %v", err)
	}
	b2, err := svc.Create(ctx, CreateCommand{RideID: r.ID, PassengerID: "p2", Seats: 2})
	if err != nil {
		t.Fatalf("booking p2: %v", err)
	}

	if err := svc.CancelRide(ctx, r.ID, "d_other"); err != ErrUnauthorized {
		t.Fatalf("foreign driver: expected ErrUnauthorized, got %v", err)
	}
	if err := svc.CancelRide(ctx, r.ID, "d1"); err != nil {
		t.Fatalf("cancel ride: %v", err)
	}

	cur, err := rides.Get(ctx, r.ID)
	if err != nil {
		t.Fatalf("get ride: %v", err)
	}
	if cur.Status != ride.StatusCancelled {
		t.Errorf("expected ride cancelled, got %s", cur.Status)
	}
	if cur.AvailableSeats != 5 {
		t.Errorf("expected all seats restored, got %d", cur.AvailableSeats)
	}

	got, err := svc.Get(ctx, b2.ID)
	if err != nil {
		t.Fatalf("get booking: %v", err)
	}
	if got.Status != StatusCancelled {
		t.Errorf("expected booking cancelled, got %s", got.Status)
	}
	if got.CancelReason != nil {
		t.Errorf("driver-initiated cancel must not set a passenger reason, got %v", *got.CancelReason)
	}

	if err := svc.CancelRide(ctx, r.ID, "d1"); err != ErrRideNotCancellable {
		t.Fatalf("re-cancel: expected ErrRideNotCancellable, got %v", err)
	}
}

func TestListByPassenger(t *testing.T) {
	svc, rides := setupTestServices(t)
	ctx := context.Background()

	r1 := mustPublishRide(t, rides, "d1", 4, 2*time.Hour)
	r2 := mustPublishRide(t, rides, "d2", 4, 3*time.Hour)
	if _, err := svc.Create(ctx, CreateCommand{RideID: r1.ID, PassengerID: "p1", Seats: 1}); err != nil {
		t.Fatalf("booking r1: %v", err)
	}
	if _, err := svc.Create(ctx, CreateCommand{RideID: r2.ID, PassengerID: "p1", Seats: 1}); err != nil {
		t.Fatalf("booking r2: %v", err)
	}
	if _, err := svc.Create(ctx, CreateCommand{RideID: r2.ID, PassengerID: "p2", Seats: 1}); err != nil {
		t.Fatalf("booking p2: %v", err)
	}

	mine, err := svc.ListByPassenger(ctx, "p1")
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(mine) != 2 {
		t.Fatalf("expected 2 bookings, got %d", len(mine))
	}
	for _, b := range mine {
		if b.Ride == nil {
			t.Errorf("booking %s missing ride enrichment", b.ID)
		}
	}

	forRide, err := svc.ListForRide(ctx, r2.ID)
	if err != nil {
		t.Fatalf("list for ride: %v", err)
	}
	if len(forRide) != 2 {
		t.Fatalf("expected 2 ride bookings, got %d", len(forRide))
	}
}

// laggingCatalog is a catalog whose cached read serves a snapshot
// frozen before later writes reached the store, the way the redis
// ride cache can lag a cancellation by its TTL.
type laggingCatalog struct {
	*ride.Service
	stale *ride.Ride
}

func (c *laggingCatalog) Get(_ context.Context, _ types.ID) (*ride.Ride, error) {
	cp := *c.stale
	return &cp, nil
}

func TestCreateBookingIgnoresStaleCachedStatus(t *testing.T) {
	svc, rides := setupTestServices(t)
	ctx := context.Background()

	r := mustPublishRide(t, rides, "d1", 4, 2*time.Hour)
	stale := *r // still scheduled

	if err := svc.CancelRide(ctx, r.ID, "d1"); err != nil {
		t.Fatalf("cancel ride: %v", err)
	}

	lagging := NewService(svc.store, &laggingCatalog{Service: rides, stale: &stale}, nil)
	if _, err := lagging.Create(ctx, CreateCommand{RideID: r.ID, PassengerID: "p1", Seats: 1}); err != ErrRideNotBookable {
		t.Fatalf("stale cached status must not confirm a booking: got %v", err)
	}
}

var rideSeq int

// mustPublishRide creates a scheduled ride through the catalog service
// so tests exercise the same path production does.
func mustPublishRide(t *testing.T, rides *ride.Service, driverID types.ID, seats int, untilDeparture time.Duration) *ride.Ride {
	t.Helper()
	rideSeq++
	r, err := rides.Create(context.Background(), ride.Draft{
		DriverID:      driverID,
		VehicleID:     types.ID(fmt.Sprintf("v%d", rideSeq)),
		Origin:        "Bangalore",
		Destination:   "Mysore",
		OriginLatLng:  types.Point{Lat: 12.9716, Lng: 77.5946},
		DestLatLng:    types.Point{Lat: 12.3052, Lng: 76.6552},
		DepartureTime: time.Now().Add(untilDeparture),
		TotalSeats:    seats,
		PricePerSeat:  types.Money{Amount: 45000, Currency: "INR"},
	})
	if err != nil {
		t.Fatalf("publish ride: %v", err)
	}
	return r
}

func setupTestServices(t *testing.T) (*Service, *ride.Service) {
	t.Helper()

	dsn := os.Getenv("WAYPOOL_TEST_DSN")
	if dsn == "" {
		t.Skip("WAYPOOL_TEST_DSN not set; skipping DB-backed tests")
	}

	ctx := context.Background()
	db, err := pgxpool.New(ctx, dsn)
	if err != nil {
		t.Fatalf("connect db: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	if err := applyMigration(ctx, db); err != nil {
		t.Fatalf("apply migration: %v", err)
	}
	if _, err := db.Exec(ctx, "TRUNCATE TABLE bookings, rides, vehicles, users"); err != nil {
		t.Fatalf("truncate tables: %v", err)
	}

	rideSvc := ride.NewService(ride.NewStore(db), nil, nil, nil, nil)
	return NewService(NewStore(db), rideSvc, nil), rideSvc
}

func applyMigration(ctx context.Context, db *pgxpool.Pool) error {
	root, err := repoRoot()
	if err != nil {
		return err
	}
	content, err := os.ReadFile(filepath.Join(root, "migrations", "0001_init.sql"))
	if err != nil {
		return err
	}
	for _, stmt := range splitSQL(stripSQLComments(string(content))) {
		if _, err := db.Exec(ctx, stmt); err != nil {
			return err
		}
	}
	return nil
}

func repoRoot() (string, error) {
	dir, err := os.Getwd()
	if err != nil {
		return "", err
	}
	for i := 0; i < 6; i++ {
		if _, err := os.Stat(filepath.Join(dir, "go.mod")); err == nil {
			return dir, nil
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}
	return "", os.ErrNotExist
}

func stripSQLComments(input string) string {
	var b strings.Builder
	scanner := bufio.NewScanner(strings.NewReader(input))
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "--") {
			continue
		}
		b.WriteString(scanner.Text())
		b.WriteString("\n")
	}
	return b.String()
}

func splitSQL(input string) []string {
	parts := strings.Split(input, ";")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if stmt := strings.TrimSpace(p); stmt != "" {
			out = append(out, stmt)
		}
	}
	return out
}
