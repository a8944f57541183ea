// README: Kafka consumer side of the booking-event stream.
package events

import (
	"context"
	"encoding/json"

	"github.com/segmentio/kafka-go"
)

type Consumer struct {
	reader *kafka.Reader
}

func NewConsumer(brokers []string, topic, groupID string) *Consumer {
	return &Consumer{
		reader: kafka.NewReader(kafka.ReaderConfig{
			Brokers: brokers,
			Topic:   topic,
			GroupID: groupID,
		}),
	}
}

// Next blocks until the next booking event arrives or ctx is done.
func (c *Consumer) Next(ctx context.Context) (BookingEvent, error) {
	msg, err := c.reader.ReadMessage(ctx)
	if err != nil {
		return BookingEvent{}, err
	}
	var ev BookingEvent
	if err := json.Unmarshal(msg.Value, &ev); err != nil {
		return BookingEvent{}, err
	}
	return ev, nil
}

func (c *Consumer) Close() error {
	return c.reader.Close()
}
