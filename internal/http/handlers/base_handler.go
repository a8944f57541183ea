// README: Shared handler utilities: JSON helpers and error mapping.
package handlers

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"waypool/internal/modules/booking"
	"waypool/internal/modules/ride"
	"waypool/internal/modules/vehicle"
	"waypool/internal/types"
)

type errorResponse struct {
	Error string `json:"error"`
}

func writeError(c *gin.Context, status int, msg string) {
	c.JSON(status, errorResponse{Error: msg})
}

// writeServiceError maps module errors onto HTTP statuses. Validation
// failures keep their message verbatim so the client can render it.
func writeServiceError(c *gin.Context, err error) {
	var insufficient *booking.InsufficientSeatsError
	switch {
	case errors.Is(err, ride.ErrNotFound),
		errors.Is(err, booking.ErrNotFound),
		errors.Is(err, vehicle.ErrNotFound):
		writeError(c, http.StatusNotFound, err.Error())
	case errors.Is(err, ride.ErrBadRequest),
		errors.Is(err, booking.ErrBadRequest),
		errors.Is(err, vehicle.ErrBadRequest):
		writeError(c, http.StatusBadRequest, err.Error())
	case errors.Is(err, booking.ErrUnauthorized),
		errors.Is(err, booking.ErrSelfBooking):
		writeError(c, http.StatusForbidden, err.Error())
	case errors.As(err, &insufficient),
		errors.Is(err, booking.ErrDuplicate),
		errors.Is(err, booking.ErrRideNotBookable),
		errors.Is(err, booking.ErrBookingWindowClosed),
		errors.Is(err, booking.ErrAlreadyCancelled),
		errors.Is(err, booking.ErrRideNotCancellable),
		errors.Is(err, ride.ErrSeatConflict):
		writeError(c, http.StatusConflict, err.Error())
	default:
		writeError(c, http.StatusInternalServerError, "internal error")
	}
}

// Wire representations. Money crosses the API as amount + currency.

type pointDTO struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

func toPointDTO(p types.Point) pointDTO {
	return pointDTO{Lat: p.Lat, Lng: p.Lng}
}

func fromPointDTO(p pointDTO) types.Point {
	return types.Point{Lat: p.Lat, Lng: p.Lng}
}

func toPointDTOs(ps []types.Point) []pointDTO {
	out := make([]pointDTO, len(ps))
	for i, p := range ps {
		out[i] = toPointDTO(p)
	}
	return out
}

func fromPointDTOs(ps []pointDTO) []types.Point {
	out := make([]types.Point, len(ps))
	for i, p := range ps {
		out[i] = fromPointDTO(p)
	}
	return out
}

type driverDTO struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Phone string `json:"phone"`
}

type vehicleDTO struct {
	ID          string `json:"id"`
	Model       string `json:"model"`
	PlateNumber string `json:"plate_number"`
	Color       string `json:"color"`
	Capacity    int    `json:"capacity"`
}

type rideDTO struct {
	ID             string      `json:"id"`
	DriverID       string      `json:"driver_id"`
	VehicleID      string      `json:"vehicle_id"`
	Origin         string      `json:"origin"`
	Destination    string      `json:"destination"`
	OriginLatLng   pointDTO    `json:"origin_lat_lng"`
	DestLatLng     pointDTO    `json:"dest_lat_lng"`
	Route          []pointDTO  `json:"route"`
	Stops          []pointDTO  `json:"stops"`
	DistanceKm     float64     `json:"distance_km"`
	EtaMinutes     int         `json:"eta_minutes"`
	DepartureTime  time.Time   `json:"departure_time"`
	TotalSeats     int         `json:"total_seats"`
	AvailableSeats int         `json:"available_seats"`
	PricePerSeat   int64       `json:"price_per_seat"`
	Currency       string      `json:"currency"`
	Status         string      `json:"status"`
	CreatedAt      time.Time   `json:"created_at"`
	Driver         *driverDTO  `json:"driver,omitempty"`
	Vehicle        *vehicleDTO `json:"vehicle,omitempty"`
}

func toRideDTO(r *ride.Ride) rideDTO {
	dto := rideDTO{
		ID:             string(r.ID),
		DriverID:       string(r.DriverID),
		VehicleID:      string(r.VehicleID),
		Origin:         r.Origin,
		Destination:    r.Destination,
		OriginLatLng:   toPointDTO(r.OriginLatLng),
		DestLatLng:     toPointDTO(r.DestLatLng),
		Route:          toPointDTOs(r.Route),
		Stops:          toPointDTOs(r.Stops),
		DistanceKm:     r.DistanceKm,
		EtaMinutes:     r.EtaMinutes,
		DepartureTime:  r.DepartureTime,
		TotalSeats:     r.TotalSeats,
		AvailableSeats: r.AvailableSeats,
		PricePerSeat:   r.PricePerSeat.Amount,
		Currency:       r.PricePerSeat.Currency,
		Status:         string(r.Status),
		CreatedAt:      r.CreatedAt,
	}
	if r.Driver != nil {
		dto.Driver = &driverDTO{ID: string(r.Driver.ID), Name: r.Driver.Name, Phone: r.Driver.Phone}
	}
	if r.Vehicle != nil {
		dto.Vehicle = &vehicleDTO{
			ID:          string(r.Vehicle.ID),
			Model:       r.Vehicle.Model,
			PlateNumber: r.Vehicle.PlateNumber,
			Color:       r.Vehicle.Color,
			Capacity:    r.Vehicle.Capacity,
		}
	}
	return dto
}

type bookingDTO struct {
	ID                     string     `json:"id"`
	RideID                 string     `json:"ride_id"`
	PassengerID            string     `json:"passenger_id"`
	SeatsBooked            int        `json:"seats_booked"`
	TotalPrice             int64      `json:"total_price"`
	Currency               string     `json:"currency"`
	Status                 string     `json:"status"`
	BookingTime            time.Time  `json:"booking_time"`
	CancelledAt            *time.Time `json:"cancelled_at,omitempty"`
	CancelReason           *string    `json:"cancel_reason,omitempty"`
	TimeBeforeDepartureMin *int       `json:"time_before_departure_min,omitempty"`
	Ride                   *rideDTO   `json:"ride,omitempty"`
	Passenger              *driverDTO `json:"passenger,omitempty"`
}

func toBookingDTO(b *booking.Booking) bookingDTO {
	dto := bookingDTO{
		ID:                     string(b.ID),
		RideID:                 string(b.RideID),
		PassengerID:            string(b.PassengerID),
		SeatsBooked:            b.SeatsBooked,
		TotalPrice:             b.TotalPrice.Amount,
		Currency:               b.TotalPrice.Currency,
		Status:                 string(b.Status),
		BookingTime:            b.BookingTime,
		CancelledAt:            b.CancelledAt,
		CancelReason:           b.CancelReason,
		TimeBeforeDepartureMin: b.TimeBeforeDepartureMin,
	}
	if b.Ride != nil {
		r := toRideDTO(b.Ride)
		dto.Ride = &r
	}
	if b.Passenger != nil {
		dto.Passenger = &driverDTO{ID: string(b.Passenger.ID), Name: b.Passenger.Name, Phone: b.Passenger.Phone}
	}
	return dto
}
