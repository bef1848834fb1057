package outbox

import (
	"context"
	"sync"

	"github.com/confluentinc/confluent-kafka-go/v2/kafka"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"
)

type mockRepository struct {
	mu              sync.Mutex
	created         []*outboxEntity
	createErr       error
	fetchFunc       func(ctx context.Context) (*outboxEntity, error)
	updateAsSentIDs []string
	updateErr       error
	updateCalls     int
}

func (m *mockRepository) FetchAndLock(ctx context.Context) (*outboxEntity, error) {
	if m.fetchFunc != nil {
		return m.fetchFunc(ctx)
	}
	return nil, errEntityNotFound
}

func (m *mockRepository) Create(_ context.Context, entity *outboxEntity) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.createErr != nil {
		return m.createErr
	}
	m.created = append(m.created, entity)
	return nil
}

func (m *mockRepository) UpdateAsSentByIds(_ context.Context, ids []string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.updateCalls++
	if m.updateErr != nil {
		return m.updateErr
	}
	m.updateAsSentIDs = append(m.updateAsSentIDs, ids...)
	return nil
}

func (m *mockRepository) sentIDs() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.updateAsSentIDs...)
}

type mockProducer struct {
	mu          sync.Mutex
	produceFunc func(msg *kafka.Message, deliveryChan chan kafka.Event) error
	messages    []*kafka.Message
}

func (m *mockProducer) Produce(msg *kafka.Message, deliveryChan chan kafka.Event) error {
	m.mu.Lock()
	m.messages = append(m.messages, msg)
	m.mu.Unlock()
	if m.produceFunc != nil {
		return m.produceFunc(msg, deliveryChan)
	}
	return nil
}

func (m *mockProducer) Close() {}

func (m *mockProducer) produced() []*kafka.Message {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]*kafka.Message(nil), m.messages...)
}

type stubPropagator struct{}

func (stubPropagator) SaveTraceContext(_ context.Context, headers map[string]string) map[string]string {
	headers["traceparent"] = "00-trace-span-01"
	return headers
}

func (stubPropagator) StartKafkaProducerSpan(headers map[string]string, _, _ string) (context.Context, trace.Span, []kafka.Header) {
	_, span := noop.NewTracerProvider().Tracer("test").Start(context.Background(), "produce")
	out := make([]kafka.Header, 0, len(headers))
	for k, v := range headers {
		out = append(out, kafka.Header{Key: k, Value: []byte(v)})
	}
	return context.Background(), span, out
}
