package consumer

import (
	"context"
	"errors"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/confluentinc/confluent-kafka-go/v2/kafka"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

type offsetStorer interface {
	StoreMessage(m *kafka.Message) (storedOffsets []kafka.TopicPartition, err error)
}

const (
	outcomeProcessed   = "processed"
	outcomeSkipped     = "skipped"
	outcomeDeadLetter  = "dead_letter"
	outcomeInterrupted = "interrupted"
)

// resultHandler decides what happens to a message once handling has finished.
type resultHandler struct {
	consumerName string
	log          *zap.Logger
	dlqHandler   DLQHandler
	consumer     offsetStorer
	outcomes     metric.Int64Counter
	parkBackOff  func() backoff.BackOff
}

func defaultParkBackOff() backoff.BackOff {
	policy := backoff.NewExponentialBackOff()
	policy.InitialInterval = time.Second
	policy.MaxInterval = 30 * time.Second
	policy.MaxElapsedTime = 0
	return policy
}

func newResultHandler(consumerName string, log *zap.Logger, dlqHandler DLQHandler, consumer offsetStorer, mp metric.MeterProvider) (*resultHandler, error) {
	outcomes, err := mp.Meter("kafka-consumer").Int64Counter("kafka.consumer.messages",
		metric.WithDescription("Consumed messages by outcome"))
	if err != nil {
		return nil, err
	}
	return &resultHandler{
		consumerName: consumerName,
		log:          log,
		dlqHandler:   dlqHandler,
		consumer:     consumer,
		outcomes:     outcomes,
		parkBackOff:  defaultParkBackOff,
	}, nil
}

func (h *resultHandler) handle(ctx context.Context, err error, message *kafka.Message, span trace.Span) {
	switch {
	case err == nil:
		span.SetStatus(codes.Ok, "message processed successfully")
		h.record(ctx, outcomeProcessed)

	case errors.Is(err, ErrSkipMessage):
		span.SetStatus(codes.Ok, "message skipped")
		h.log.Info("skipping message", h.messageFieldsWithError(message, err)...)
		h.record(ctx, outcomeSkipped)

	case ctx.Err() != nil && errors.Is(err, context.Canceled):
		// The offset is left unstored so the message is redelivered after restart.
		span.SetStatus(codes.Error, "interrupted by shutdown")
		h.log.Info("message processing interrupted by shutdown", h.messageFields(message)...)
		h.record(ctx, outcomeInterrupted)
		return

	case errors.Is(err, ErrPermanent):
		span.RecordError(err)
		span.SetStatus(codes.Error, "permanent error - sending to DLQ")
		h.log.Error("permanent error - sending message to DLQ", h.messageFieldsWithError(message, err)...)
		if !h.park(ctx, message, err) {
			return
		}
		h.record(ctx, outcomeDeadLetter)

	default:
		span.RecordError(err)
		span.SetStatus(codes.Error, "message processing failed - sending to DLQ")
		h.log.Error("message processing failed after retries - sending to DLQ", h.messageFieldsWithError(message, err)...)
		if !h.park(ctx, message, err) {
			return
		}
		h.record(ctx, outcomeDeadLetter)
	}

	h.storeOffset(message)
}

// park retries the DLQ until it accepts the message. Later offsets must not be
// stored past an unparked message, so the partition waits here. It reports
// false only when ctx ends first, in which case the offset stays unstored.
func (h *resultHandler) park(ctx context.Context, message *kafka.Message, processingErr error) bool {
	attempt := 0
	err := backoff.Retry(func() error {
		attempt++
		if err := h.dlqHandler.SendToDLQ(ctx, message, processingErr); err != nil {
			h.log.Warn("failed to park message, will retry",
				append(h.messageFieldsWithError(message, err), zap.Int("attempt", attempt))...)
			return err
		}
		return nil
	}, backoff.WithContext(h.parkBackOff(), ctx))
	if err != nil {
		h.log.Info("message left unacknowledged for redelivery",
			append(h.messageFieldsWithError(message, err), zap.Int("attempts", attempt))...)
		h.record(ctx, outcomeInterrupted)
		return false
	}
	return true
}

func (h *resultHandler) record(ctx context.Context, outcome string) {
	h.outcomes.Add(context.WithoutCancel(ctx), 1, metric.WithAttributes(
		attribute.String("consumer", h.consumerName),
		attribute.String("outcome", outcome),
	))
}

func (h *resultHandler) storeOffset(message *kafka.Message) {
	if _, err := h.consumer.StoreMessage(message); err != nil {
		h.log.Error("failed to store offset", h.messageFieldsWithError(message, err)...)
	}
}

func (h *resultHandler) messageFields(message *kafka.Message) []zap.Field {
	return []zap.Field{
		zap.String("topic", topicOf(message)),
		zap.String("key", string(message.Key)),
		zap.String("event_id", GetHeader(message.Headers, HeaderEventID)),
		zap.Int32("partition", message.TopicPartition.Partition),
		zap.Int64("offset", int64(message.TopicPartition.Offset)),
	}
}

func (h *resultHandler) messageFieldsWithError(message *kafka.Message, err error) []zap.Field {
	return append(h.messageFields(message), zap.Error(err))
}
