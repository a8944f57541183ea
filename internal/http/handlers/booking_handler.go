// README: Booking handlers: reserve seats, list own bookings, cancel.
package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"waypool/internal/http/middleware"
	"waypool/internal/modules/booking"
	"waypool/internal/types"
)

type BookingHandler struct {
	bookings *booking.Service
}

func NewBookingHandler(bookings *booking.Service) *BookingHandler {
	return &BookingHandler{bookings: bookings}
}

type createBookingReq struct {
	RideID string `json:"ride_id"`
	Seats  int    `json:"seats"`
}

func (h *BookingHandler) Create(c *gin.Context) {
	var req createBookingReq
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, http.StatusBadRequest, "invalid json")
		return
	}
	b, err := h.bookings.Create(c.Request.Context(), booking.CreateCommand{
		RideID:      types.ID(req.RideID),
		PassengerID: middleware.UID(c),
		Seats:       req.Seats,
	})
	if err != nil {
		writeServiceError(c, err)
		return
	}
	c.JSON(http.StatusCreated, toBookingDTO(b))
}

func (h *BookingHandler) ListMine(c *gin.Context) {
	bookings, err := h.bookings.ListByPassenger(c.Request.Context(), middleware.UID(c))
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

type cancelBookingReq struct {
	Reason string `json:"reason"`
}

func (h *BookingHandler) Cancel(c *gin.Context) {
	var req cancelBookingReq
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			writeError(c, http.StatusBadRequest, "invalid json")
			return
		}
	}
	err := h.bookings.Cancel(c.Request.Context(), booking.CancelCommand{
		BookingID:   types.ID(c.Param("id")),
		PassengerID: middleware.UID(c),
		Reason:      req.Reason,
	})
	if err != nil {
		writeServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"id": c.Param("id"), "status": booking.StatusCancelled})
}
