package consumer

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/Sokol111/ecommerce-catalog-sync/pkg/messaging/kafka/config"
	"github.com/confluentinc/confluent-kafka-go/v2/kafka"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type mockMetadata struct {
	topics map[string]kafka.TopicMetadata
	err    error
	calls  int
}

func (m *mockMetadata) GetMetadata(topic *string, _ bool, _ int) (*kafka.Metadata, error) {
	m.calls++
	if m.err != nil {
		return nil, m.err
	}
	meta := &kafka.Metadata{Topics: map[string]kafka.TopicMetadata{}}
	if tm, ok := m.topics[*topic]; ok {
		meta.Topics[*topic] = tm
	}
	return meta, nil
}

func readyTopic(name string) kafka.TopicMetadata {
	return kafka.TopicMetadata{Topic: name, Partitions: []kafka.PartitionMetadata{{ID: 0}}}
}

func TestWaitForTopics(t *testing.T) {
	topics := []string{"product.added", "product.removed"}

	t.Run("all topics ready", func(t *testing.T) {
		md := &mockMetadata{topics: map[string]kafka.TopicMetadata{
			"product.added":   readyTopic("product.added"),
			"product.removed": readyTopic("product.removed"),
		}}

		err := waitForTopics(context.Background(), md, topics, 5, true, zapNop)

		require.NoError(t, err)
		assert.Equal(t, 2, md.calls)
	})

	t.Run("missing topic fails when required", func(t *testing.T) {
		md := &mockMetadata{topics: map[string]kafka.TopicMetadata{"product.added": readyTopic("product.added")}}

		err := waitForTopics(context.Background(), md, topics, 1, true, zapNop)

		require.Error(t, err)
		assert.ErrorIs(t, err, context.DeadlineExceeded)
		assert.Contains(t, err.Error(), "product.removed")
		assert.False(t, strings.Contains(err.Error(), "[product.added"))
	})

	t.Run("missing topic tolerated when optional", func(t *testing.T) {
		md := &mockMetadata{err: errors.New("broker down")}

		err := waitForTopics(context.Background(), md, topics, 1, false, zapNop)

		assert.NoError(t, err)
	})
}

func TestResolveConsumerConfig(t *testing.T) {
	conf := config.Config{ConsumersConfig: config.ConsumersConfig{ConsumerConfig: []config.ConsumerConfig{
		{Name: "cart-cleanup", GroupID: "catalog-sync", AutoOffsetReset: "earliest"},
		{Name: "cache-evict", GroupID: "catalog-sync", AutoOffsetReset: "earliest", Exclusive: true},
	}}}

	t.Run("shared group", func(t *testing.T) {
		c, err := resolveConsumerConfig(conf, "cart-cleanup")

		require.NoError(t, err)
		assert.Equal(t, "catalog-sync", c.GroupID)
		assert.Equal(t, "earliest", c.AutoOffsetReset)
	})

	t.Run("exclusive gets private group", func(t *testing.T) {
		first, err := resolveConsumerConfig(conf, "cache-evict")
		require.NoError(t, err)
		second, err := resolveConsumerConfig(conf, "cache-evict")
		require.NoError(t, err)

		assert.True(t, strings.HasPrefix(first.GroupID, "cache-evict-"))
		assert.NotEqual(t, first.GroupID, second.GroupID)
		assert.Equal(t, "latest", first.AutoOffsetReset)
	})

	t.Run("unknown consumer", func(t *testing.T) {
		_, err := resolveConsumerConfig(conf, "nope")

		assert.Error(t, err)
	})
}
