package messaging

import (
	"github.com/Sokol111/ecommerce-catalog-sync/pkg/messaging/inbox"
	"github.com/Sokol111/ecommerce-catalog-sync/pkg/messaging/kafka/config"
	"github.com/Sokol111/ecommerce-catalog-sync/pkg/messaging/kafka/producer"
	"github.com/Sokol111/ecommerce-catalog-sync/pkg/messaging/outbox"
	"go.uber.org/fx"
)

type messagingOptions struct {
	kafkaConfig *config.Config
	outbox      bool
	redisInbox  bool
}

type Option func(*messagingOptions)

// WithKafkaConfig uses a static Kafka config instead of viper.
func WithKafkaConfig(cfg config.Config) Option {
	return func(o *messagingOptions) { o.kafkaConfig = &cfg }
}

// WithOutbox adds the Mongo backed outbox and its relay workers.
func WithOutbox() Option {
	return func(o *messagingOptions) { o.outbox = true }
}

// WithRedisInbox dedupes consumed events in Redis. Without it consumers use a
// no-op inbox and rely on idempotent handlers alone.
func WithRedisInbox() Option {
	return func(o *messagingOptions) { o.redisInbox = true }
}

// NewMessagingModule provides the Kafka config, a producer, an inbox and
// optionally the outbox.
//
//	messaging.NewMessagingModule(messaging.WithOutbox())
func NewMessagingModule(opts ...Option) fx.Option {
	o := &messagingOptions{}
	for _, opt := range opts {
		opt(o)
	}

	options := []fx.Option{
		kafkaConfigModule(o),
		producer.NewProducerModule(),
	}
	if o.redisInbox {
		options = append(options, inbox.NewRedisInboxModule())
	} else {
		options = append(options, inbox.NewNoopInboxModule())
	}
	if o.outbox {
		options = append(options, outbox.NewOutboxModule())
	}
	return fx.Options(options...)
}

func kafkaConfigModule(o *messagingOptions) fx.Option {
	if o.kafkaConfig != nil {
		return config.NewKafkaConfigModule(config.WithKafkaConfig(*o.kafkaConfig))
	}
	return config.NewKafkaConfigModule()
}
