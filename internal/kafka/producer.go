package kafkax

import (
	"context"
	"encoding/json"
	"strconv"
	"time"

	"github.com/segmentio/kafka-go"
)

// Producer writes booking events keyed by booking id so that all events of a
// booking land on the same partition.
type Producer struct {
	writer *kafka.Writer
}

func NewProducer(brokers []string, topic string) *Producer {
	return &Producer{writer: &kafka.Writer{
		Addr:         kafka.TCP(brokers...),
		Topic:        topic,
		RequiredAcks: kafka.RequireAll,
		Balancer:     &kafka.Hash{},
		WriteTimeout: 5 * time.Second,
	}}
}

func (p *Producer) Publish(ctx context.Context, key, value []byte) error {
	msg := kafka.Message{
		Key:   key,
		Value: value,
		Time:  time.Now(),
	}
	return p.writer.WriteMessages(ctx, msg)
}

// PublishBookingEvent serializes ev and publishes it.
func (p *Producer) PublishBookingEvent(ctx context.Context, ev BookingEvent) error {
	if ev.OccurredAt.IsZero() {
		ev.OccurredAt = time.Now().UTC()
	}
	by, err := json.Marshal(ev)
	if err != nil {
		return err
	}
	return p.Publish(ctx, []byte(strconv.FormatInt(ev.BookingID, 10)), by)
}

func (p *Producer) Close() error { return p.writer.Close() }
