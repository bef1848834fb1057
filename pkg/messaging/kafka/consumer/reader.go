package consumer

import (
	"context"
	"time"

	"github.com/Sokol111/ecommerce-catalog-sync/pkg/core/logger"
	"github.com/confluentinc/confluent-kafka-go/v2/kafka"
	"go.uber.org/zap"
)

const pollTimeout = 5 * time.Second

type messageReader interface {
	ReadMessage(timeout time.Duration) (*kafka.Message, error)
}

// reader polls Kafka and hands messages to the processor over messagesChan.
type reader struct {
	consumer     messageReader
	messagesChan chan<- *kafka.Message
	log          *zap.Logger
	throttler    *logger.LogThrottler
}

func newReader(consumer messageReader, messagesChan chan<- *kafka.Message, log *zap.Logger) *reader {
	return &reader{
		consumer:     consumer,
		messagesChan: messagesChan,
		log:          log,
		throttler:    logger.NewLogThrottler(log, 0),
	}
}

// Run returns nil when ctx is cancelled and an error only when the consumer
// hits a fatal error.
func (r *reader) Run(ctx context.Context) error {
	r.log.Info("reader started")

	for ctx.Err() == nil {
		msg, err := r.consumer.ReadMessage(pollTimeout)
		if err != nil {
			rerr := wrapReaderError(err)
			if rerr.isTimeout() {
				continue
			}
			if rerr.isFatal() {
				r.log.Error("stopping reader", zap.Error(rerr))
				return rerr
			}
			r.throttler.Warn(rerr.errorKey, rerr.description, zap.Error(err))
			sleep(ctx, rerr.pause())
			continue
		}

		select {
		case <-ctx.Done():
			return nil
		case r.messagesChan <- msg:
		}
	}
	return nil
}
