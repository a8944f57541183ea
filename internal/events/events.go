// Package events publishes booking lifecycle events to Kafka. The
// stream carries the ride/driver/passenger identity triple an external
// chat or notification subsystem needs to key a conversation.
package events

import (
	"context"
	"encoding/json"
	"time"

	"github.com/segmentio/kafka-go"

	"waypool/internal/types"
)

type Type string

const (
	TypeBookingConfirmed Type = "booking_confirmed"
	TypeBookingCancelled Type = "booking_cancelled"
	TypeRideCancelled    Type = "ride_cancelled"
)

type BookingEvent struct {
	Type        Type      `json:"type"`
	RideID      types.ID  `json:"ride_id"`
	DriverID    types.ID  `json:"driver_id"`
	PassengerID types.ID  `json:"passenger_id,omitempty"`
	Seats       int       `json:"seats,omitempty"`
	OccurredAt  time.Time `json:"occurred_at"`
}

// Publisher is the narrow surface the booking module depends on.
type Publisher interface {
	Publish(ctx context.Context, key string, ev BookingEvent) error
}

type Producer struct {
	writer *kafka.Writer
}

func NewProducer(brokers []string, topic string) *Producer {
	return &Producer{
		writer: &kafka.Writer{
			Addr:         kafka.TCP(brokers...),
			Topic:        topic,
			Balancer:     &kafka.LeastBytes{},
			BatchTimeout: 50 * time.Millisecond,
			RequiredAcks: kafka.RequireOne,
		},
	}
}

func (p *Producer) Publish(ctx context.Context, key string, ev BookingEvent) error {
	data, err := json.Marshal(ev)
	if err != nil {
		return err
	}
	return p.writer.WriteMessages(ctx, kafka.Message{
		Key:   []byte(key),
		Value: data,
		Time:  time.Now(),
	})
}

func (p *Producer) Close() error {
	return p.writer.Close()
}
