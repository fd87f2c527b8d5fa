package worker

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	kafkax "github.com/seniorstay/staycation-api/internal/kafka"
)

type chanConsumer struct {
	msgs chan kafka.Message

	mu        sync.Mutex
	committed []int64
}

func (c *chanConsumer) Fetch(ctx context.Context) (kafka.Message, error) {
	select {
	case m := <-c.msgs:
		return m, nil
	case <-ctx.Done():
		return kafka.Message{}, ctx.Err()
	}
}

func (c *chanConsumer) Commit(_ context.Context, m kafka.Message) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.committed = append(c.committed, m.Offset)
	return nil
}

func (c *chanConsumer) offsets() []int64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]int64(nil), c.committed...)
}

type recordingDLQ struct {
	mu   sync.Mutex
	keys []string
}

func (d *recordingDLQ) Publish(_ context.Context, key, _ []byte) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.keys = append(d.keys, string(key))
	return nil
}

type failOn int64

func (f failOn) HandleBookingEvent(_ context.Context, ev kafkax.BookingEvent) error {
	if ev.BookingID == int64(f) {
		return errors.New("smtp down")
	}
	return nil
}

func TestNotifierCommitsAndParksFailures(t *testing.T) {
	c := &chanConsumer{msgs: make(chan kafka.Message, 3)}
	c.msgs <- kafka.Message{Offset: 1, Key: []byte("1"), Value: []byte(`{"type":"booking.created","booking_id":1}`)}
	c.msgs <- kafka.Message{Offset: 2, Key: []byte("2"), Value: []byte(`{"type":"booking.created","booking_id":2}`)}
	c.msgs <- kafka.Message{Offset: 3, Key: []byte("3"), Value: []byte(`not json`)}
	dlq := &recordingDLQ{}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- NewNotifier(zap.NewNop(), failOn(2), c, dlq, 2).Run(ctx) }()

	require.Eventually(t, func() bool { return len(c.offsets()) == 3 }, 2*time.Second, 10*time.Millisecond)
	cancel()
	assert.ErrorIs(t, <-done, context.Canceled)

	assert.ElementsMatch(t, []int64{1, 2, 3}, c.offsets())
	assert.ElementsMatch(t, []string{"2", "3"}, dlq.keys)
}

type failingConsumer struct {
	mu      sync.Mutex
	fetches int
}

func (c *failingConsumer) Fetch(context.Context) (kafka.Message, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.fetches++
	return kafka.Message{}, errors.New("broker unavailable")
}

func (c *failingConsumer) Commit(context.Context, kafka.Message) error { return nil }

func (c *failingConsumer) count() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.fetches
}

func TestNotifierBacksOffOnFetchErrors(t *testing.T) {
	c := &failingConsumer{}
	n := NewNotifier(zap.NewNop(), failOn(0), c, nil, 1)
	n.backoff = 40 * time.Millisecond

	ctx, cancel := context.WithTimeout(context.Background(), 150*time.Millisecond)
	defer cancel()

	start := time.Now()
	err := n.Run(ctx)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Less(t, time.Since(start), time.Second, "cancellation interrupts the wait")

	// 40ms, 80ms, then the 160ms wait is cut short by the deadline.
	assert.LessOrEqual(t, c.count(), 3)
	assert.GreaterOrEqual(t, c.count(), 2)
}
