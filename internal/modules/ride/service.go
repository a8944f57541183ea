// README: Ride catalog service: listing, lookup, creation, status and
// the seat-inventory primitive.
package ride

import (
	"context"
	"errors"
	"log/slog"
	"sort"
	"time"

	"github.com/google/uuid"

	"waypool/internal/maps"
	"waypool/internal/modules/vehicle"
	"waypool/internal/observability"
	"waypool/internal/types"
)

var (
	ErrNotFound     = errors.New("ride not found")
	ErrSeatConflict = errors.New("seat change rejected: inventory exhausted or overfull")
	ErrBadRequest   = errors.New("bad request")
)

type Service struct {
	store      *Store
	vehicles   *vehicle.Store
	directions maps.Directions
	geoIdx     *GeoIndex
	cache      *Cache
}

// NewService wires the catalog. directions, geoIdx, and cache may be
// nil; the catalog then skips route fetching (straight-line fallback),
// geo prefiltering, and caching respectively.
func NewService(store *Store, vehicles *vehicle.Store, directions maps.Directions, geoIdx *GeoIndex, cache *Cache) *Service {
	return &Service{store: store, vehicles: vehicles, directions: directions, geoIdx: geoIdx, cache: cache}
}

// Filters narrows a listing. Geo takes part only when Complete.
type Filters struct {
	DriverID         types.ID
	Origin           string
	Destination      string
	Date             *time.Time
	IncludeCancelled bool
	Geo              SearchQuery
}

type Draft struct {
	DriverID      types.ID
	VehicleID     types.ID
	Origin        string
	Destination   string
	OriginLatLng  types.Point
	DestLatLng    types.Point
	Stops         []types.Point
	DepartureTime time.Time
	TotalSeats    int
	PricePerSeat  types.Money
}

func (d Draft) validate() error {
	switch {
	case d.DriverID == "" || d.VehicleID == "":
		return ErrBadRequest
	case d.Origin == "" || d.Destination == "":
		return ErrBadRequest
	case d.OriginLatLng.IsZero() || d.DestLatLng.IsZero():
		return ErrBadRequest
	case d.TotalSeats < 1:
		return ErrBadRequest
	case d.PricePerSeat.Amount < 0:
		return ErrBadRequest
	case !d.DepartureTime.After(time.Now()):
		return ErrBadRequest
	}
	return nil
}

// Create publishes a ride offer. The route comes from the directions
// provider (or its straight-line fallback); the store write is the
// only step allowed to fail the call. Index and cache upkeep are
// best-effort side effects.
func (s *Service) Create(ctx context.Context, d Draft) (*Ride, error) {
	if err := d.validate(); err != nil {
		return nil, err
	}

	route := maps.Fallback(d.OriginLatLng, d.DestLatLng)
	if s.directions != nil {
		rt, err := s.directions.GetRoute(ctx, d.OriginLatLng, d.DestLatLng, d.Stops)
		if err != nil {
			slog.Warn("directions lookup failed, publishing straight-line route", "err", err)
		} else {
			route = rt
		}
	}

	r := &Ride{
		ID:             types.ID(uuid.NewString()),
		DriverID:       d.DriverID,
		VehicleID:      d.VehicleID,
		Origin:         d.Origin,
		Destination:    d.Destination,
		OriginLatLng:   d.OriginLatLng,
		DestLatLng:     d.DestLatLng,
		Route:          route.Points,
		Stops:          d.Stops,
		DistanceKm:     route.DistanceKm,
		EtaMinutes:     route.EtaMinutes,
		DepartureTime:  d.DepartureTime,
		TotalSeats:     d.TotalSeats,
		AvailableSeats: d.TotalSeats,
		PricePerSeat:   d.PricePerSeat,
		Status:         StatusScheduled,
		CreatedAt:      time.Now(),
	}
	if err := s.store.Create(ctx, r); err != nil {
		return nil, err
	}
	observability.RidesCreated.Inc()

	if s.geoIdx != nil {
		if err := s.geoIdx.Add(ctx, r.ID, r.OriginLatLng); err != nil {
			slog.Warn("ride geo index add failed", "ride_id", r.ID, "err", err)
		}
	}
	s.invalidate(ctx, r.ID)
	return r, nil
}

// List returns rides matching f, departure descending. Driver and
// vehicle enrichment is best-effort; a degraded users or vehicles
// lookup never fails the listing.
func (s *Service) List(ctx context.Context, f Filters) ([]*Ride, error) {
	rides, err := s.store.List(ctx, f)
	if err != nil {
		return nil, err
	}

	if f.Geo.Complete() {
		rides = s.matchRoute(ctx, rides, f.Geo)
	}

	for _, r := range rides {
		s.enrich(ctx, r)
	}
	return rides, nil
}

// matchRoute applies the route matcher to every listed ride, then
// orders the matches by the redis origin index's proximity ranking
// when it is reachable. The index is advisory only: a ride missing
// from it (a failed Add, a flushed key) still matches, it just sorts
// after the ranked ones.
func (s *Service) matchRoute(ctx context.Context, rides []*Ride, q SearchQuery) []*Ride {
	matched := make([]*Ride, 0, len(rides))
	for _, r := range rides {
		if q.Matches(r) {
			matched = append(matched, r)
		}
	}

	if s.geoIdx != nil && len(matched) > 1 {
		ids, err := s.geoIdx.Nearby(ctx, q.Origin, originRadiusKm)
		if err != nil {
			slog.Warn("geo index unavailable, keeping listing order", "err", err)
		} else {
			orderByProximity(matched, ids)
		}
	}
	return matched
}

// orderByProximity sorts rides by their position in ranked (closest
// origin first). Rides the index does not know keep their relative
// order after the ranked ones; ranking may reorder results but never
// drops them.
func orderByProximity(rides []*Ride, ranked []types.ID) {
	rank := make(map[types.ID]int, len(ranked))
	for i, id := range ranked {
		rank[id] = i
	}
	sort.SliceStable(rides, func(i, j int) bool {
		ri, iok := rank[rides[i].ID]
		rj, jok := rank[rides[j].ID]
		if iok && jok {
			return ri < rj
		}
		return iok && !jok
	})
}

// GetFresh reads the ride from the store, bypassing the read cache.
// Decisions on status, departure, or inventory must never trust a
// copy that can lag a cancellation by the cache TTL; the cache serves
// display reads only.
func (s *Service) GetFresh(ctx context.Context, id types.ID) (*Ride, error) {
	return s.store.Get(ctx, id)
}

func (s *Service) Get(ctx context.Context, id types.ID) (*Ride, error) {
	if s.cache != nil {
		if r, err := s.cache.Get(ctx, id); err != nil {
			slog.Warn("ride cache read failed", "ride_id", id, "err", err)
		} else if r != nil {
			s.enrich(ctx, r)
			return r, nil
		}
	}

	r, err := s.store.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if s.cache != nil {
		if err := s.cache.Set(ctx, r); err != nil {
			slog.Warn("ride cache write failed", "ride_id", id, "err", err)
		}
	}
	s.enrich(ctx, r)
	return r, nil
}

// SetStatus updates the lifecycle status only. It has no seat-count
// side effects and does not cascade; ride cancellation with booking
// cleanup is the booking module's CancelRide.
func (s *Service) SetStatus(ctx context.Context, id types.ID, status Status) error {
	if !ValidStatus(status) {
		return ErrBadRequest
	}
	if err := s.store.UpdateStatus(ctx, id, status); err != nil {
		return err
	}
	if status == StatusCancelled && s.geoIdx != nil {
		if err := s.geoIdx.Remove(ctx, id); err != nil {
			slog.Warn("ride geo index remove failed", "ride_id", id, "err", err)
		}
	}
	s.invalidate(ctx, id)
	return nil
}

// AdjustSeats is the only seat-mutating operation. delta may be
// negative (booking) or positive (cancellation refund); the store
// rejects any result outside [0, total_seats] with ErrSeatConflict.
func (s *Service) AdjustSeats(ctx context.Context, id types.ID, delta int) error {
	if err := s.store.AdjustSeats(ctx, id, delta); err != nil {
		return err
	}
	observability.SeatAdjustments.Add(float64(abs(delta)))
	s.invalidate(ctx, id)
	return nil
}

func (s *Service) enrich(ctx context.Context, r *Ride) {
	if d, err := s.store.GetDriver(ctx, r.DriverID); err == nil {
		r.Driver = d
	} else if !errors.Is(err, ErrNotFound) {
		slog.Warn("driver enrichment failed", "ride_id", r.ID, "err", err)
	}
	if s.vehicles == nil {
		return
	}
	if v, err := s.vehicles.Get(ctx, r.VehicleID); err == nil {
		r.Vehicle = v
	} else if !errors.Is(err, vehicle.ErrNotFound) {
		slog.Warn("vehicle enrichment failed", "ride_id", r.ID, "err", err)
	}
}

func (s *Service) invalidate(ctx context.Context, id types.ID) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Invalidate(ctx, id); err != nil {
		slog.Warn("ride cache invalidation failed", "ride_id", id, "err", err)
	}
}

func abs(n int) int {
	if n < 0 {
		return -n
	}
	return n
}
