package outbox

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/confluentinc/confluent-kafka-go/v2/kafka"
	"go.uber.org/zap"
)

// confirmer marks delivered records as SENT in batches. Failed deliveries are
// left alone so the fetcher retries them.
type confirmer struct {
	repository    repository
	deliveryChan  <-chan kafka.Event
	log           *zap.Logger
	batchSize     int
	flushInterval time.Duration
	wg            sync.WaitGroup
}

func newConfirmer(repo repository, deliveryChan <-chan kafka.Event, log *zap.Logger, conf Config) *confirmer {
	return &confirmer{
		repository:    repo,
		deliveryChan:  deliveryChan,
		log:           log.With(zap.String("component", "outbox")),
		batchSize:     conf.BatchSize,
		flushInterval: conf.FlushInterval,
	}
}

func (c *confirmer) Run(ctx context.Context) error {
	events := make([]kafka.Event, 0, c.batchSize)

	// Confirmations in flight at shutdown still get written.
	updateCtx := context.WithoutCancel(ctx)
	flush := func() {
		if len(events) == 0 {
			return
		}
		batch := make([]kafka.Event, len(events))
		copy(batch, events)
		events = events[:0]
		c.wg.Add(1)
		go c.handleConfirmation(updateCtx, batch)
	}

	ticker := time.NewTicker(c.flushInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			c.drain(&events)
			flush()
			c.wg.Wait()
			return nil
		case event := <-c.deliveryChan:
			events = append(events, event)
			if len(events) >= c.batchSize {
				flush()
			}
		case <-ticker.C:
			flush()
		}
	}
}

func (c *confirmer) drain(events *[]kafka.Event) {
	for {
		select {
		case event := <-c.deliveryChan:
			*events = append(*events, event)
		default:
			return
		}
	}
}

func (c *confirmer) handleConfirmation(ctx context.Context, events []kafka.Event) {
	defer c.wg.Done()

	ids := make([]string, 0, len(events))
	for _, event := range events {
		msg, ok := event.(*kafka.Message)
		if !ok {
			c.log.Error("skipping confirmation", zap.String("reason", "unexpected event type"), zap.String("got", fmt.Sprintf("%T", event)))
			continue
		}
		if msg.TopicPartition.Error != nil {
			c.log.Error("kafka delivery failed, message will be retried",
				zap.Any("message_id", msg.Opaque),
				zap.Int32("partition", msg.TopicPartition.Partition),
				zap.Error(msg.TopicPartition.Error))
			continue
		}
		id, ok := msg.Opaque.(string)
		if !ok {
			c.log.Error("skipping confirmation", zap.String("reason", "opaque is not a string"), zap.Any("opaque", msg.Opaque))
			continue
		}
		ids = append(ids, id)
	}

	if len(ids) == 0 {
		return
	}
	if err := c.repository.UpdateAsSentByIds(ctx, ids); err != nil {
		c.log.Error("failed to update confirmation", zap.Error(err))
		return
	}
	c.log.Debug("outbox sending confirmed", zap.Int("count", len(ids)))
}
