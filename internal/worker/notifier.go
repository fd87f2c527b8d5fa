package worker

import (
	"context"
	"sync"
	"time"

	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"

	kafkax "github.com/seniorstay/staycation-api/internal/kafka"
)

type Consumer interface {
	Fetch(ctx context.Context) (kafka.Message, error)
	Commit(ctx context.Context, m kafka.Message) error
}

type DeadLetters interface {
	Publish(ctx context.Context, key, value []byte) error
}

type Handler interface {
	HandleBookingEvent(ctx context.Context, ev kafkax.BookingEvent) error
}

const (
	defaultFetchBackoff = 500 * time.Millisecond
	maxFetchBackoff     = 30 * time.Second
)

// Notifier consumes booking events with at most maxWorkers in flight.
// Messages that fail are parked on the dead letter topic and committed.
// Fetch errors are retried with a doubling delay capped at maxFetchBackoff.
type Notifier struct {
	log        *zap.Logger
	handler    Handler
	c          Consumer
	dlq        DeadLetters
	maxWorkers int
	backoff    time.Duration
}

func NewNotifier(log *zap.Logger, handler Handler, c Consumer, dlq DeadLetters, maxWorkers int) *Notifier {
	if maxWorkers < 1 {
		maxWorkers = 1
	}
	return &Notifier{
		log:        log,
		handler:    handler,
		c:          c,
		dlq:        dlq,
		maxWorkers: maxWorkers,
		backoff:    defaultFetchBackoff,
	}
}

// Run blocks until ctx is cancelled and in-flight messages are done.
func (n *Notifier) Run(ctx context.Context) error {
	sem := make(chan struct{}, n.maxWorkers)
	var wg sync.WaitGroup
	defer wg.Wait()

	delay := n.backoff
	for {
		m, err := n.c.Fetch(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			n.log.Error("failed to read message", zap.Duration("retry_in", delay), zap.Error(err))
			select {
			case <-time.After(delay):
			case <-ctx.Done():
				return ctx.Err()
			}
			delay = min(2*delay, maxFetchBackoff)
			continue
		}
		delay = n.backoff

		select {
		case sem <- struct{}{}:
		case <-ctx.Done():
			return ctx.Err()
		}
		wg.Add(1)
		go func(m kafka.Message) {
			defer wg.Done()
			defer func() { <-sem }()
			n.process(context.WithoutCancel(ctx), m)
		}(m)
	}
}

func (n *Notifier) process(ctx context.Context, m kafka.Message) {
	if err := n.handle(ctx, m); err != nil {
		n.log.Error("failed to handle message", zap.ByteString("key", m.Key), zap.Error(err))
		if n.dlq == nil {
			return
		}
		if err := n.dlq.Publish(ctx, m.Key, m.Value); err != nil {
			n.log.Error("failed to write dead letter", zap.ByteString("key", m.Key), zap.Error(err))
			return
		}
	}
	if err := n.c.Commit(ctx, m); err != nil {
		n.log.Error("failed to commit message", zap.Int64("offset", m.Offset), zap.Error(err))
	}
}

func (n *Notifier) handle(ctx context.Context, m kafka.Message) error {
	ev, err := kafkax.ParseBookingEvent(m.Value)
	if err != nil {
		return err
	}
	return n.handler.HandleBookingEvent(ctx, ev)
}
