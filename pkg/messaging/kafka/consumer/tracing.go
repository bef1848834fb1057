package consumer

import (
	"context"

	"github.com/confluentinc/confluent-kafka-go/v2/kafka"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/trace"
)

// MessageTracer carries trace context across Kafka headers and opens the
// consumer side spans.
type MessageTracer interface {
	ExtractContext(ctx context.Context, message *kafka.Message) context.Context
	StartConsumerSpan(ctx context.Context, message *kafka.Message) (context.Context, trace.Span)
	StartDLQSpan(ctx context.Context, message *kafka.Message, dlqTopic string) (context.Context, trace.Span)
	InjectContext(ctx context.Context, message *kafka.Message)
}

type messageTracer struct {
	tracer     trace.Tracer
	propagator propagation.TextMapPropagator
}

func newMessageTracer(tp trace.TracerProvider) MessageTracer {
	return &messageTracer{
		tracer:     tp.Tracer("kafka-consumer"),
		propagator: otel.GetTextMapPropagator(),
	}
}

func (t *messageTracer) ExtractContext(ctx context.Context, message *kafka.Message) context.Context {
	if len(message.Headers) == 0 {
		return ctx
	}
	return t.propagator.Extract(ctx, headersCarrier(message.Headers))
}

func (t *messageTracer) StartConsumerSpan(ctx context.Context, message *kafka.Message) (context.Context, trace.Span) {
	return t.tracer.Start(ctx, "kafka.consume",
		trace.WithSpanKind(trace.SpanKindConsumer),
		trace.WithAttributes(
			attribute.String("messaging.system", "kafka"),
			attribute.String("messaging.destination", topicOf(message)),
			attribute.Int("messaging.partition", int(message.TopicPartition.Partition)),
			attribute.Int64("messaging.offset", int64(message.TopicPartition.Offset)),
			attribute.String("messaging.message.key", string(message.Key)),
			attribute.String("messaging.message.id", GetHeader(message.Headers, HeaderEventID)),
		),
	)
}

func (t *messageTracer) StartDLQSpan(ctx context.Context, message *kafka.Message, dlqTopic string) (context.Context, trace.Span) {
	return t.tracer.Start(ctx, "kafka.send_to_dlq",
		trace.WithSpanKind(trace.SpanKindProducer),
		trace.WithAttributes(
			attribute.String("messaging.system", "kafka"),
			attribute.String("messaging.destination", dlqTopic),
			attribute.String("messaging.source.topic", topicOf(message)),
			attribute.Int("messaging.source.partition", int(message.TopicPartition.Partition)),
			attribute.Int64("messaging.source.offset", int64(message.TopicPartition.Offset)),
		),
	)
}

func (t *messageTracer) InjectContext(ctx context.Context, message *kafka.Message) {
	carrier := headersCarrier(message.Headers)
	t.propagator.Inject(ctx, carrier)

	message.Headers = message.Headers[:0:0]
	for key, value := range carrier {
		message.Headers = append(message.Headers, kafka.Header{Key: key, Value: []byte(value)})
	}
}

func headersCarrier(headers []kafka.Header) propagation.MapCarrier {
	carrier := make(propagation.MapCarrier, len(headers))
	for _, header := range headers {
		carrier[header.Key] = string(header.Value)
	}
	return carrier
}

func topicOf(message *kafka.Message) string {
	if message.TopicPartition.Topic == nil {
		return ""
	}
	return *message.TopicPartition.Topic
}
