package consumer

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/Sokol111/ecommerce-catalog-sync/pkg/messaging/kafka/producer"
	"github.com/confluentinc/confluent-kafka-go/v2/kafka"
	"go.opentelemetry.io/otel/codes"
	"go.uber.org/zap"
)

const dlqDeliveryTimeout = 30 * time.Second

// ErrDLQDisabled is returned by the handler used when a consumer has no DLQ.
var ErrDLQDisabled = errors.New("dead letter queue is not configured")

// DLQHandler parks messages that could not be handled. A nil error means the
// broker acknowledged the copy and the original offset may be committed.
type DLQHandler interface {
	SendToDLQ(ctx context.Context, message *kafka.Message, processingErr error) error
}

type dlqHandler struct {
	producer producer.Producer
	dlqTopic string
	tracer   MessageTracer
	log      *zap.Logger
}

func newDLQHandler(p producer.Producer, dlqTopic string, tracer MessageTracer, log *zap.Logger) *dlqHandler {
	return &dlqHandler{
		producer: p,
		dlqTopic: dlqTopic,
		tracer:   tracer,
		log:      log,
	}
}

func (h *dlqHandler) SendToDLQ(ctx context.Context, message *kafka.Message, processingErr error) error {
	ctx, span := h.tracer.StartDLQSpan(ctx, message, h.dlqTopic)
	defer span.End()

	headers := make([]kafka.Header, 0, len(message.Headers)+5)
	headers = append(headers, message.Headers...)
	headers = append(headers,
		kafka.Header{Key: "dlq.original.topic", Value: []byte(topicOf(message))},
		kafka.Header{Key: "dlq.original.partition", Value: []byte(strconv.Itoa(int(message.TopicPartition.Partition)))},
		kafka.Header{Key: "dlq.original.offset", Value: []byte(strconv.FormatInt(int64(message.TopicPartition.Offset), 10))},
		kafka.Header{Key: "dlq.error", Value: []byte(processingErr.Error())},
		kafka.Header{Key: "dlq.timestamp", Value: []byte(time.Now().UTC().Format(time.RFC3339))},
	)

	dlqMessage := &kafka.Message{
		TopicPartition: kafka.TopicPartition{Topic: &h.dlqTopic, Partition: kafka.PartitionAny},
		Key:            message.Key,
		Value:          message.Value,
		Headers:        headers,
	}
	h.tracer.InjectContext(ctx, dlqMessage)

	fields := []zap.Field{zap.String("dlq_topic", h.dlqTopic), zap.String("key", string(message.Key))}

	deliveryChan := make(chan kafka.Event, 1)
	if err := h.producer.Produce(dlqMessage, deliveryChan); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to send message to DLQ")
		h.log.Error("failed to send message to DLQ", append(fields, zap.Error(err))...)
		return fmt.Errorf("produce to %s: %w", h.dlqTopic, err)
	}

	var deliveryErr error
	select {
	case e := <-deliveryChan:
		m, ok := e.(*kafka.Message)
		switch {
		case !ok:
			deliveryErr = errors.New("unexpected event type from delivery channel")
		case m.TopicPartition.Error != nil:
			deliveryErr = m.TopicPartition.Error
		}
	case <-time.After(dlqDeliveryTimeout):
		deliveryErr = errors.New("timed out waiting for DLQ delivery report")
	case <-ctx.Done():
		deliveryErr = ctx.Err()
	}

	if deliveryErr != nil {
		span.RecordError(deliveryErr)
		span.SetStatus(codes.Error, "failed to deliver message to DLQ")
		h.log.Error("failed to deliver message to DLQ", append(fields, zap.Error(deliveryErr))...)
		return fmt.Errorf("deliver to %s: %w", h.dlqTopic, deliveryErr)
	}

	span.SetStatus(codes.Ok, "message sent to DLQ")
	h.log.Info("message sent to DLQ", append(fields,
		zap.Int32("original_partition", message.TopicPartition.Partition),
		zap.Int64("original_offset", int64(message.TopicPartition.Offset)))...)
	return nil
}

// noopDLQHandler is used when the consumer has no DLQ configured. It never
// accepts a message, so a failed message keeps its offset uncommitted and is
// redelivered after restart.
type noopDLQHandler struct {
	log *zap.Logger
}

func (h *noopDLQHandler) SendToDLQ(_ context.Context, message *kafka.Message, processingErr error) error {
	h.log.Warn("DLQ not configured, message stays unacknowledged",
		zap.String("key", string(message.Key)),
		zap.Int32("partition", message.TopicPartition.Partition),
		zap.Int64("offset", int64(message.TopicPartition.Offset)),
		zap.Error(processingErr))
	return ErrDLQDisabled
}
