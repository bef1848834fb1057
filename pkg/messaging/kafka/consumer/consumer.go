package consumer

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/Sokol111/ecommerce-catalog-sync/pkg/core/health"
	"github.com/Sokol111/ecommerce-catalog-sync/pkg/messaging/kafka/config"
	"github.com/confluentinc/confluent-kafka-go/v2/kafka"
	"github.com/google/uuid"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

type metadataProvider interface {
	GetMetadata(topic *string, allTopics bool, timeoutMs int) (*kafka.Metadata, error)
}

// resolveConsumerConfig looks up the named consumer. Exclusive consumers get a
// fresh group so each instance receives every message from now on.
func resolveConsumerConfig(conf config.Config, name string) (config.ConsumerConfig, error) {
	consumerConf, ok := conf.GetConsumer(name)
	if !ok {
		return config.ConsumerConfig{}, fmt.Errorf("no consumer config found for consumer name: %s", name)
	}
	if consumerConf.Exclusive {
		consumerConf.GroupID = name + "-" + uuid.NewString()
		consumerConf.AutoOffsetReset = "latest"
	}
	return consumerConf, nil
}

func provideKafkaConsumer(lc fx.Lifecycle, conf config.Config, consumerConf config.ConsumerConfig, log *zap.Logger, readiness health.ComponentManager) (*kafka.Consumer, error) {
	kafkaConsumer, err := kafka.NewConsumer(&kafka.ConfigMap{
		"bootstrap.servers":        conf.Brokers,
		"group.id":                 consumerConf.GroupID,
		"enable.auto.commit":       true,
		"enable.auto.offset.store": false,
		"auto.commit.interval.ms":  3000,
		"auto.offset.reset":        consumerConf.AutoOffsetReset,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create kafka consumer, name: %s: %w", consumerConf.Name, err)
	}

	markReady := readiness.AddComponent("kafka-consumer-" + consumerConf.Name)
	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			log.Info("subscribing to topics")
			rebalanceCb := func(_ *kafka.Consumer, event kafka.Event) error {
				switch ev := event.(type) {
				case kafka.AssignedPartitions:
					logPartitionEvent(log, "partitions assigned", ev.Partitions)
				case kafka.RevokedPartitions:
					logPartitionEvent(log, "partitions revoked", ev.Partitions)
				}
				return nil
			}
			if err := kafkaConsumer.SubscribeTopics(consumerConf.Topics, rebalanceCb); err != nil {
				return fmt.Errorf("failed to subscribe to topics: %w", err)
			}

			if err := waitForTopics(ctx, kafkaConsumer, consumerConf.Topics, consumerConf.ReadinessTimeoutSeconds, consumerConf.FailOnTopicError, log); err != nil {
				return err
			}
			markReady()
			return nil
		},
		OnStop: func(context.Context) error {
			if _, commitErr := kafkaConsumer.Commit(); commitErr != nil {
				var kafkaErr kafka.Error
				if !errors.As(commitErr, &kafkaErr) || kafkaErr.Code() != kafka.ErrNoOffset {
					log.Warn("failed to commit offsets on shutdown", zap.Error(commitErr))
				}
			}
			log.Info("closing kafka consumer")
			return kafkaConsumer.Close()
		},
	})

	return kafkaConsumer, nil
}

func logPartitionEvent(log *zap.Logger, event string, partitions []kafka.TopicPartition) {
	if len(partitions) == 0 {
		log.Warn(event + ": no partitions")
		return
	}

	ids := make([]string, len(partitions))
	for i, partition := range partitions {
		ids[i] = fmt.Sprintf("%s/%d", topicOfPartition(partition), partition.Partition)
	}
	log.Info(event, zap.Int("partition_count", len(partitions)), zap.Strings("partitions", ids))
}

func topicOfPartition(tp kafka.TopicPartition) string {
	if tp.Topic == nil {
		return ""
	}
	return *tp.Topic
}

// waitForTopics polls metadata until every topic exists with partitions.
// When the timeout runs out it fails only if failOnError is set.
func waitForTopics(ctx context.Context, md metadataProvider, topics []string, timeoutSec int, failOnError bool, log *zap.Logger) error {
	if timeoutSec > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, time.Duration(timeoutSec)*time.Second)
		defer cancel()
	}

	pending := append([]string(nil), topics...)
	var lastErr error
	for len(pending) > 0 {
		if ctx.Err() != nil {
			err := fmt.Errorf("topics not ready [%s]: %w", strings.Join(pending, ", "), ctx.Err())
			if lastErr != nil {
				err = fmt.Errorf("%w: %w", err, lastErr)
			}
			if failOnError {
				return err
			}
			log.Warn("topic verification failed, continuing anyway", zap.Error(err))
			return nil
		}

		remaining := pending[:0]
		for _, topic := range pending {
			if err := checkTopic(md, topic); err != nil {
				lastErr = err
				remaining = append(remaining, topic)
				continue
			}
			log.Info("topic is ready", zap.String("topic", topic))
		}
		pending = remaining

		if len(pending) > 0 {
			sleep(ctx, time.Second)
		}
	}
	return nil
}

func checkTopic(md metadataProvider, topic string) error {
	metadata, err := md.GetMetadata(&topic, false, 5000)
	if err != nil {
		return fmt.Errorf("failed to get topic metadata: %w", err)
	}
	topicMeta, ok := metadata.Topics[topic]
	if !ok {
		return fmt.Errorf("topic %s not found in metadata", topic)
	}
	if topicMeta.Error.Code() != kafka.ErrNoError {
		return fmt.Errorf("topic %s has error: %s", topic, topicMeta.Error.String())
	}
	if len(topicMeta.Partitions) == 0 {
		return fmt.Errorf("topic %s has no partitions", topic)
	}
	return nil
}
