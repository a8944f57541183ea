// README: Ride handlers: search/list, create, lookup, status, cancel.
package handlers

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"waypool/internal/http/middleware"
	"waypool/internal/modules/booking"
	"waypool/internal/modules/ride"
	"waypool/internal/types"
)

type RideHandler struct {
	rides    *ride.Service
	bookings *booking.Service
}

func NewRideHandler(rides *ride.Service, bookings *booking.Service) *RideHandler {
	return &RideHandler{rides: rides, bookings: bookings}
}

// List handles GET /api/rides. Geo filtering activates only when all
// of origin, destination, and pickup coordinates are present.
func (h *RideHandler) List(c *gin.Context) {
	var f ride.Filters
	f.DriverID = types.ID(c.Query("driver_id"))
	f.Origin = c.Query("origin")
	f.Destination = c.Query("destination")
	f.IncludeCancelled = c.Query("include_cancelled") == "true"

	if d := c.Query("date"); d != "" {
		day, err := time.ParseInLocation("2006-01-02", d, time.Local)
		if err != nil {
			writeError(c, http.StatusBadRequest, "date must be YYYY-MM-DD")
			return
		}
		f.Date = &day
	}

	f.Geo = ride.SearchQuery{
		Origin: queryPoint(c, "origin_lat", "origin_lng"),
		Dest:   queryPoint(c, "dest_lat", "dest_lng"),
		Pickup: queryPoint(c, "pickup_lat", "pickup_lng"),
	}

	rides, err := h.rides.List(c.Request.Context(), f)
	if err != nil {
		writeServiceError(c, err)
		return
	}
	out := make([]rideDTO, len(rides))
	for i, r := range rides {
		out[i] = toRideDTO(r)
	}
	c.JSON(http.StatusOK, gin.H{"rides": out})
}

type createRideReq struct {
	VehicleID     string     `json:"vehicle_id"`
	Origin        string     `json:"origin"`
	Destination   string     `json:"destination"`
	OriginLatLng  pointDTO   `json:"origin_lat_lng"`
	DestLatLng    pointDTO   `json:"dest_lat_lng"`
	Stops         []pointDTO `json:"stops"`
	DepartureTime time.Time  `json:"departure_time"`
	TotalSeats    int        `json:"total_seats"`
	PricePerSeat  int64      `json:"price_per_seat"`
	Currency      string     `json:"currency"`
}

func (h *RideHandler) Create(c *gin.Context) {
	var req createRideReq
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, http.StatusBadRequest, "invalid json")
		return
	}
	r, err := h.rides.Create(c.Request.Context(), ride.Draft{
		DriverID:      middleware.UID(c),
		VehicleID:     types.ID(req.VehicleID),
		Origin:        req.Origin,
		Destination:   req.Destination,
		OriginLatLng:  fromPointDTO(req.OriginLatLng),
		DestLatLng:    fromPointDTO(req.DestLatLng),
		Stops:         fromPointDTOs(req.Stops),
		DepartureTime: req.DepartureTime,
		TotalSeats:    req.TotalSeats,
		PricePerSeat:  types.Money{Amount: req.PricePerSeat, Currency: req.Currency},
	})
	if err != nil {
		writeServiceError(c, err)
		return
	}
	c.JSON(http.StatusCreated, toRideDTO(r))
}

func (h *RideHandler) Get(c *gin.Context) {
	r, err := h.rides.Get(c.Request.Context(), types.ID(c.Param("id")))
	if err != nil {
		writeServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, toRideDTO(r))
}

type setStatusReq struct {
	Status string `json:"status"`
}

// SetStatus handles the in_progress/completed lifecycle updates. Ride
// cancellation goes through Cancel so bookings are cleaned up.
func (h *RideHandler) SetStatus(c *gin.Context) {
	var req setStatusReq
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, http.StatusBadRequest, "invalid json")
		return
	}
	id := types.ID(c.Param("id"))

	r, err := h.rides.Get(c.Request.Context(), id)
	if err != nil {
		writeServiceError(c, err)
		return
	}
	if r.DriverID != middleware.UID(c) {
		writeError(c, http.StatusForbidden, "only the driver can update ride status")
		return
	}
	if err := h.rides.SetStatus(c.Request.Context(), id, ride.Status(req.Status)); err != nil {
		writeServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"id": id, "status": req.Status})
}

// Cancel handles POST /api/rides/:id/cancel, the cascading
// driver-side cancellation.
func (h *RideHandler) Cancel(c *gin.Context) {
	id := types.ID(c.Param("id"))
	if err := h.bookings.CancelRide(c.Request.Context(), id, middleware.UID(c)); err != nil {
		writeServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"id": id, "status": ride.StatusCancelled})
}

// Bookings handles GET /api/rides/:id/bookings, the driver's view of
// confirmed reservations.
func (h *RideHandler) Bookings(c *gin.Context) {
	id := types.ID(c.Param("id"))
	r, err := h.rides.Get(c.Request.Context(), id)
	if err != nil {
		writeServiceError(c, err)
		return
	}
	if r.DriverID != middleware.UID(c) {
		writeError(c, http.StatusForbidden, "only the driver can list ride bookings")
		return
	}
	bookings, err := h.bookings.ListForRide(c.Request.Context(), id)
	if err != nil {
		writeServiceError(c, err)
		return
	}
	out := make([]bookingDTO, len(bookings))
	for i, b := range bookings {
		out[i] = toBookingDTO(b)
	}
	c.JSON(http.StatusOK, gin.H{"bookings": out})
}

// queryPoint parses a lat/lng query pair; either part missing or
// malformed yields the zero point, which the geo filter ignores.
func queryPoint(c *gin.Context, latKey, lngKey string) types.Point {
	latS, lngS := c.Query(latKey), c.Query(lngKey)
	if latS == "" || lngS == "" {
		return types.Point{}
	}
	lat, err1 := strconv.ParseFloat(latS, 64)
	lng, err2 := strconv.ParseFloat(lngS, 64)
	if err1 != nil || err2 != nil {
		return types.Point{}
	}
	return types.Point{Lat: lat, Lng: lng}
}
