package observability

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	RidesCreated    = promauto.NewCounter(prometheus.CounterOpts{Namespace: "waypool", Name: "rides_created_total", Help: "Total ride offers published"})
	RidesCancelled  = promauto.NewCounter(prometheus.CounterOpts{Namespace: "waypool", Name: "rides_cancelled_total", Help: "Total rides cancelled by drivers"})
	SeatAdjustments = promauto.NewCounter(prometheus.CounterOpts{Namespace: "waypool", Name: "seat_adjustments_total", Help: "Total seats moved through the inventory primitive"})

	BookingsConfirmed = promauto.NewCounter(prometheus.CounterOpts{Namespace: "waypool", Name: "bookings_confirmed_total", Help: "Total bookings confirmed"})
	BookingsCancelled = promauto.NewCounter(prometheus.CounterOpts{Namespace: "waypool", Name: "bookings_cancelled_total", Help: "Total bookings cancelled (passenger or cascade)"})
	BookingRejections = promauto.NewCounterVec(
		prometheus.CounterOpts{Namespace: "waypool", Name: "booking_rejections_total", Help: "Bookings rejected by validation, by reason"},
		[]string{"reason"},
	)

	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{Namespace: "waypool", Name: "http_requests_total", Help: "Total HTTP requests handled"},
		[]string{"method", "path", "status"},
	)
	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "waypool",
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency distribution",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"method", "path", "status"},
	)
)
