package consumer

import (
	"context"
	"sync"
	"time"

	"github.com/confluentinc/confluent-kafka-go/v2/kafka"
	"github.com/stretchr/testify/mock"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"
)

type mockHandler struct {
	mu          sync.Mutex
	processFunc func(ctx context.Context, event any) error
	calls       int
}

func (m *mockHandler) Process(ctx context.Context, event any) error {
	m.mu.Lock()
	m.calls++
	m.mu.Unlock()
	if m.processFunc != nil {
		return m.processFunc(ctx, event)
	}
	return nil
}

func (m *mockHandler) callCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls
}

type mockDeserializer struct {
	event any
	err   error
}

func (m *mockDeserializer) Deserialize([]byte) (any, error) {
	return m.event, m.err
}

type mockInbox struct {
	mock.Mock
}

func (m *mockInbox) Seen(ctx context.Context, consumer, eventID string) (bool, error) {
	args := m.Called(ctx, consumer, eventID)
	return args.Bool(0), args.Error(1)
}

func (m *mockInbox) Mark(ctx context.Context, consumer, eventID string) error {
	args := m.Called(ctx, consumer, eventID)
	return args.Error(0)
}

type mockDLQHandler struct {
	mu       sync.Mutex
	messages []*kafka.Message
	errs     []error
	// failures is the number of calls rejected with sendErr before one succeeds;
	// a negative value rejects every call.
	failures int
	sendErr  error
	attempts int
}

func (m *mockDLQHandler) SendToDLQ(_ context.Context, message *kafka.Message, err error) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.attempts++
	if m.failures != 0 {
		if m.failures > 0 {
			m.failures--
		}
		return m.sendErr
	}
	m.messages = append(m.messages, message)
	m.errs = append(m.errs, err)
	return nil
}

type mockOffsetStorer struct {
	mu     sync.Mutex
	stored []*kafka.Message
	err    error
}

func (m *mockOffsetStorer) StoreMessage(msg *kafka.Message) ([]kafka.TopicPartition, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.stored = append(m.stored, msg)
	return []kafka.TopicPartition{msg.TopicPartition}, m.err
}

func (m *mockOffsetStorer) count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.stored)
}

type passThroughTracer struct{}

func (passThroughTracer) ExtractContext(ctx context.Context, _ *kafka.Message) context.Context {
	return ctx
}

func (passThroughTracer) StartConsumerSpan(ctx context.Context, _ *kafka.Message) (context.Context, trace.Span) {
	return noop.NewTracerProvider().Tracer("test").Start(ctx, "consume")
}

func (passThroughTracer) StartDLQSpan(ctx context.Context, _ *kafka.Message, _ string) (context.Context, trace.Span) {
	return noop.NewTracerProvider().Tracer("test").Start(ctx, "dlq")
}

func (passThroughTracer) InjectContext(context.Context, *kafka.Message) {}

type mockSpan struct {
	trace.Span
	statusCode    codes.Code
	recordedError error
}

func newMockSpan() *mockSpan {
	_, span := noop.NewTracerProvider().Tracer("test").Start(context.Background(), "test")
	return &mockSpan{Span: span}
}

func (m *mockSpan) SetStatus(code codes.Code, _ string) {
	m.statusCode = code
}

func (m *mockSpan) RecordError(err error, _ ...trace.EventOption) {
	m.recordedError = err
}

func newTestMessage(eventID string) *kafka.Message {
	topic := "product.removed"
	msg := &kafka.Message{
		TopicPartition: kafka.TopicPartition{Topic: &topic, Partition: 0, Offset: 100},
		Key:            []byte("42"),
		Value:          []byte(`{"type":"product.removed","productId":42}`),
	}
	if eventID != "" {
		msg.Headers = []kafka.Header{{Key: HeaderEventID, Value: []byte(eventID)}}
	}
	return msg
}

func newTestRetryExecutor(maxAttempts int) *retryExecutor {
	return newRetryExecutor(maxAttempts, 5*time.Millisecond, 20*time.Millisecond, time.Second, zapNop)
}
