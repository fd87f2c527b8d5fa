package kafkax

import (
	"context"
	"encoding/json"
	"time"

	"github.com/segmentio/kafka-go"
)

const (
	EventBookingCreated = "booking.created"
	EventBookingUpdated = "booking.updated"
	EventBookingPaid    = "booking.paid"
)

// BookingEvent is published after a booking transaction commits.
type BookingEvent struct {
	Type       string    `json:"type"`
	BookingID  int64     `json:"booking_id"`
	RoomID     int64     `json:"room_id"`
	CheckIn    string    `json:"check_in_date"`
	CheckOut   string    `json:"check_out_date"`
	FirstName  string    `json:"first_name"`
	Email      string    `json:"email,omitempty"`
	TotalPrice float64   `json:"total_price"`
	OccurredAt time.Time `json:"occurred_at"`
}

type Consumer struct {
	reader *kafka.Reader
}

func NewConsumer(brokers []string, group, topic string) *Consumer {
	return &Consumer{reader: kafka.NewReader(kafka.ReaderConfig{
		Brokers:  brokers,
		GroupID:  group,
		Topic:    topic,
		MinBytes: 1,
		MaxBytes: 10e6,
	})}
}

func (c *Consumer) Fetch(ctx context.Context) (kafka.Message, error) {
	return c.reader.FetchMessage(ctx)
}

func (c *Consumer) Commit(ctx context.Context, m kafka.Message) error {
	return c.reader.CommitMessages(ctx, m)
}

func (c *Consumer) Close() error { return c.reader.Close() }

func ParseBookingEvent(b []byte) (BookingEvent, error) {
	var e BookingEvent
	err := json.Unmarshal(b, &e)
	return e, err
}
