package consumer

import (
	"fmt"

	"github.com/Sokol111/ecommerce-catalog-sync/pkg/core/worker"
	"github.com/Sokol111/ecommerce-catalog-sync/pkg/messaging/inbox"
	"github.com/Sokol111/ecommerce-catalog-sync/pkg/messaging/kafka/config"
	"github.com/Sokol111/ecommerce-catalog-sync/pkg/messaging/kafka/producer"
	"github.com/confluentinc/confluent-kafka-go/v2/kafka"
	"go.opentelemetry.io/otel/metric"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

// RegisterHandlerAndConsumer wires a Kafka consumer named consumerName to the
// Handler built by handlerConstructor. Settings come from the consumer entry
// with the same name in the kafka config.
//
//	consumer.RegisterHandlerAndConsumer("cart-cleanup", cart.NewProductRemovedHandler)
func RegisterHandlerAndConsumer(consumerName string, handlerConstructor any) fx.Option {
	return fx.Module(
		consumerName,
		fx.Decorate(func(log *zap.Logger, consumerConf config.ConsumerConfig) *zap.Logger {
			return log.With(
				zap.String("component", "consumer"),
				zap.String("consumer_name", consumerConf.Name),
				zap.Strings("topics", consumerConf.Topics),
				zap.String("group_id", consumerConf.GroupID),
			)
		}),
		fx.Provide(
			func(conf config.Config) (config.ConsumerConfig, error) {
				return resolveConsumerConfig(conf, consumerName)
			},
			fx.Annotate(handlerConstructor, fx.As(new(Handler))),
			provideKafkaConsumer,
			provideMessageChannel,
			provideReader,
			provideRetryExecutor,
			newMessageTracer,
			provideDLQHandler,
			provideResultHandler,
			provideProcessor,
			fx.Private,
		),
		fx.Provide(
			worker.Register[*reader]("kafka-reader-"+consumerName, worker.WithReady(), worker.WithShutdown()),
			worker.Register[*processor]("kafka-processor-"+consumerName),
		),
	)
}

func provideMessageChannel(consumerConf config.ConsumerConfig) chan *kafka.Message {
	return make(chan *kafka.Message, consumerConf.ChannelBufferSize)
}

func provideReader(kafkaConsumer *kafka.Consumer, messagesChan chan *kafka.Message, log *zap.Logger) *reader {
	return newReader(kafkaConsumer, messagesChan, log)
}

func provideRetryExecutor(consumerConf config.ConsumerConfig, log *zap.Logger) *retryExecutor {
	return newRetryExecutor(consumerConf.MaxRetryAttempts, consumerConf.InitialBackoff, consumerConf.MaxBackoff, consumerConf.ProcessingTimeout, log)
}

type dlqParams struct {
	fx.In

	ConsumerConf config.ConsumerConfig
	Producer     producer.Producer `optional:"true"`
	Tracer       MessageTracer
	Log          *zap.Logger
}

func provideDLQHandler(p dlqParams) (DLQHandler, error) {
	if !p.ConsumerConf.EnableDLQ {
		return &noopDLQHandler{log: p.Log}, nil
	}
	if p.Producer == nil {
		return nil, fmt.Errorf("consumer %s has DLQ enabled but no kafka producer is provided", p.ConsumerConf.Name)
	}
	return newDLQHandler(p.Producer, p.ConsumerConf.DLQTopic, p.Tracer, p.Log), nil
}

func provideResultHandler(consumerConf config.ConsumerConfig, log *zap.Logger, dlq DLQHandler, kafkaConsumer *kafka.Consumer, mp metric.MeterProvider) (*resultHandler, error) {
	return newResultHandler(consumerConf.Name, log, dlq, kafkaConsumer, mp)
}

func provideProcessor(
	consumerConf config.ConsumerConfig,
	messagesChan chan *kafka.Message,
	handler Handler,
	deserializer Deserializer,
	ib inbox.Inbox,
	log *zap.Logger,
	results *resultHandler,
	retries *retryExecutor,
	tracer MessageTracer,
) *processor {
	return newProcessor(consumerConf.Name, messagesChan, handler, deserializer, ib, log, results, retries, tracer)
}
