// README: Entry point; loads config, wires services, starts the HTTP server.
package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"waypool/internal/config"
	"waypool/internal/events"
	httptransport "waypool/internal/http"
	"waypool/internal/infra"
	"waypool/internal/logging"
	"waypool/internal/maps"
	"waypool/internal/modules/booking"
	"waypool/internal/modules/ride"
	"waypool/internal/modules/vehicle"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("config load", "err", err)
		os.Exit(1)
	}
	logger := logging.NewLogger(cfg.Log.Level)
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if cfg.Firebase.ProjectID == "" {
		logger.Error("WAYPOOL_FIREBASE_PROJECT_ID is required")
		os.Exit(1)
	}
	verifier, err := infra.NewFirebaseVerifier(ctx, cfg.Firebase.ProjectID, cfg.Firebase.CredentialsFile)
	if err != nil {
		logger.Error("firebase init", "err", err)
		os.Exit(1)
	}

	dbPool, err := infra.NewDB(ctx, cfg.DB.DSN)
	if err != nil {
		logger.Error("db connect", "err", err)
		os.Exit(1)
	}
	defer dbPool.Close()

	redisClient := infra.NewRedis(cfg.Redis.Addr)

	directions, err := maps.NewService(cfg.Maps.APIKey)
	if err != nil {
		logger.Error("maps init", "err", err)
		os.Exit(1)
	}

	producer := events.NewProducer(cfg.Kafka.Brokers, cfg.Kafka.Topic)
	defer producer.Close()

	vehicleStore := vehicle.NewStore(dbPool)
	vehicleSvc := vehicle.NewService(vehicleStore)

	rideStore := ride.NewStore(dbPool)
	rideSvc := ride.NewService(rideStore, vehicleStore, directions, ride.NewGeoIndex(redisClient), ride.NewCache(redisClient))

	bookingStore := booking.NewStore(dbPool)
	bookingSvc := booking.NewService(bookingStore, rideSvc, producer)

	handler := httptransport.NewRouter(httptransport.RouterDeps{
		Rides:    rideSvc,
		Bookings: bookingSvc,
		Vehicles: vehicleSvc,
		Verifier: verifier,
	})

	server := &http.Server{Addr: cfg.HTTP.Addr, Handler: handler}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		_ = server.Shutdown(shutdownCtx)
	}()

	logger.Info("listening", "addr", cfg.HTTP.Addr)
	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Error("server exited", "err", err)
		os.Exit(1)
	}
}
