package consumer

import (
	"context"
	"errors"
	"testing"

	"github.com/confluentinc/confluent-kafka-go/v2/kafka"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type mockProducer struct {
	produced []*kafka.Message
	err      error
	deliver  error
}

func (m *mockProducer) Produce(msg *kafka.Message, deliveryChan chan kafka.Event) error {
	if m.err != nil {
		return m.err
	}
	m.produced = append(m.produced, msg)
	reply := *msg
	reply.TopicPartition.Error = m.deliver
	deliveryChan <- &reply
	return nil
}

func (m *mockProducer) Close() {}

func TestDLQHandler_SendToDLQ(t *testing.T) {
	t.Run("copies message with dlq headers", func(t *testing.T) {
		p := &mockProducer{}
		h := newDLQHandler(p, "cart-cleanup.dlq", passThroughTracer{}, zapNop)
		original := newTestMessage("evt-1")

		require.NoError(t, h.SendToDLQ(context.Background(), original, errors.New("db down")))

		require.Len(t, p.produced, 1)
		sent := p.produced[0]
		assert.Equal(t, "cart-cleanup.dlq", *sent.TopicPartition.Topic)
		assert.Equal(t, original.Value, sent.Value)
		assert.Equal(t, "product.removed", GetHeader(sent.Headers, "dlq.original.topic"))
		assert.Equal(t, "100", GetHeader(sent.Headers, "dlq.original.offset"))
		assert.Equal(t, "db down", GetHeader(sent.Headers, "dlq.error"))
		assert.Equal(t, "evt-1", GetHeader(sent.Headers, HeaderEventID))
		assert.Len(t, original.Headers, 1)
	})

	t.Run("produce error is returned", func(t *testing.T) {
		produceErr := errors.New("queue full")
		h := newDLQHandler(&mockProducer{err: produceErr}, "x.dlq", passThroughTracer{}, zapNop)

		err := h.SendToDLQ(context.Background(), newTestMessage(""), errors.New("boom"))

		assert.ErrorIs(t, err, produceErr)
	})

	t.Run("delivery failure is returned", func(t *testing.T) {
		p := &mockProducer{deliver: kafka.NewError(kafka.ErrMsgSizeTooLarge, "too large", false)}
		h := newDLQHandler(p, "x.dlq", passThroughTracer{}, zapNop)

		err := h.SendToDLQ(context.Background(), newTestMessage(""), errors.New("boom"))

		assert.ErrorContains(t, err, "too large")
		assert.Len(t, p.produced, 1)
	})
}

func TestNoopDLQHandler_SendToDLQ(t *testing.T) {
	h := &noopDLQHandler{log: zapNop}

	err := h.SendToDLQ(context.Background(), newTestMessage("evt-1"), errors.New("boom"))

	assert.ErrorIs(t, err, ErrDLQDisabled)
}
