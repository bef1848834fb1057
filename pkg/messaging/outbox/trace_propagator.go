package outbox

import (
	"context"
	"maps"

	"github.com/confluentinc/confluent-kafka-go/v2/kafka"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/trace"
)

type tracePropagator interface {
	// SaveTraceContext writes the active trace context into headers for storage.
	SaveTraceContext(ctx context.Context, headers map[string]string) map[string]string
	// StartKafkaProducerSpan restores the stored context, starts a producer
	// span under it and returns Kafka headers carrying the new span.
	StartKafkaProducerSpan(headers map[string]string, topic, messageID string) (context.Context, trace.Span, []kafka.Header)
}

type otelTracePropagator struct {
	tracer     trace.Tracer
	propagator propagation.TextMapPropagator
}

func newTracePropagator(tp trace.TracerProvider) *otelTracePropagator {
	return &otelTracePropagator{
		tracer:     tp.Tracer("outbox"),
		propagator: otel.GetTextMapPropagator(),
	}
}

func (t *otelTracePropagator) SaveTraceContext(ctx context.Context, headers map[string]string) map[string]string {
	if headers == nil {
		headers = make(map[string]string)
	}
	t.propagator.Inject(ctx, propagation.MapCarrier(headers))
	return headers
}

func (t *otelTracePropagator) StartKafkaProducerSpan(headers map[string]string, topic, messageID string) (context.Context, trace.Span, []kafka.Header) {
	ctx := context.Background()
	if len(headers) > 0 {
		ctx = t.propagator.Extract(ctx, propagation.MapCarrier(headers))
	}

	ctx, span := t.tracer.Start(ctx, "kafka.produce",
		trace.WithSpanKind(trace.SpanKindProducer),
		trace.WithAttributes(
			attribute.String("messaging.system", "kafka"),
			attribute.String("messaging.destination", topic),
			attribute.String("messaging.message.id", messageID),
		),
	)

	updated := maps.Clone(headers)
	if updated == nil {
		updated = make(map[string]string)
	}
	t.propagator.Inject(ctx, propagation.MapCarrier(updated))

	kafkaHeaders := make([]kafka.Header, 0, len(updated))
	for key, value := range updated {
		kafkaHeaders = append(kafkaHeaders, kafka.Header{Key: key, Value: []byte(value)})
	}
	return ctx, span, kafkaHeaders
}
