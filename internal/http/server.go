// README: HTTP router registration.
package http

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"waypool/internal/http/handlers"
	"waypool/internal/http/middleware"
	"waypool/internal/infra"
	"waypool/internal/modules/booking"
	"waypool/internal/modules/ride"
	"waypool/internal/modules/vehicle"
)

type RouterDeps struct {
	Rides    *ride.Service
	Bookings *booking.Service
	Vehicles *vehicle.Service
	Verifier infra.TokenVerifier
}

func NewRouter(deps RouterDeps) http.Handler {
	gin.SetMode(gin.ReleaseMode)
	r := gin.New()
	r.Use(middleware.Recovery())
	r.Use(middleware.Logging())
	r.Use(middleware.Metrics())

	r.GET("/health", func(c *gin.Context) {
		c.String(http.StatusOK, "OK")
	})
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	api := r.Group("/api")
	api.Use(middleware.Auth(deps.Verifier))

	rideHandler := handlers.NewRideHandler(deps.Rides, deps.Bookings)
	api.GET("/rides", rideHandler.List)
	api.POST("/rides", rideHandler.Create)
	api.GET("/rides/:id", rideHandler.Get)
	api.PATCH("/rides/:id/status", rideHandler.SetStatus)
	api.POST("/rides/:id/cancel", rideHandler.Cancel)
	api.GET("/rides/:id/bookings", rideHandler.Bookings)

	bookingHandler := handlers.NewBookingHandler(deps.Bookings)
	api.POST("/bookings", bookingHandler.Create)
	api.GET("/bookings", bookingHandler.ListMine)
	api.POST("/bookings/:id/cancel", bookingHandler.Cancel)

	vehicleHandler := handlers.NewVehicleHandler(deps.Vehicles)
	api.GET("/vehicles", vehicleHandler.ListMine)
	api.POST("/vehicles", vehicleHandler.Create)

	return r
}
