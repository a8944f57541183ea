// README: Booking-event worker; consumes the Kafka stream and logs activity.
package main

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"waypool/internal/config"
	"waypool/internal/events"
	"waypool/internal/logging"
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

	consumer := events.NewConsumer(cfg.Kafka.Brokers, cfg.Kafka.Topic, cfg.Kafka.GroupID)
	defer consumer.Close()

	logger.Info("worker started", "topic", cfg.Kafka.Topic, "group", cfg.Kafka.GroupID)
	for {
		ev, err := consumer.Next(ctx)
		if err != nil {
			if errors.Is(err, context.Canceled) || ctx.Err() != nil {
				logger.Info("worker stopping")
				return
			}
			logger.Error("read event", "err", err)
			continue
		}
		logger.Info("booking event",
			"type", string(ev.Type),
			"ride_id", string(ev.RideID),
			"driver_id", string(ev.DriverID),
			"passenger_id", string(ev.PassengerID),
			"seats", ev.Seats,
			"occurred_at", ev.OccurredAt,
		)
	}
}
