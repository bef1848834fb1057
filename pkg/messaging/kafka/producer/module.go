package producer

import (
	"context"

	"github.com/Sokol111/ecommerce-catalog-sync/pkg/core/health"
	"github.com/Sokol111/ecommerce-catalog-sync/pkg/messaging/kafka/config"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

func NewProducerModule() fx.Option {
	return fx.Provide(provideProducer)
}

func provideProducer(lc fx.Lifecycle, log *zap.Logger, conf config.Config, readiness health.ComponentManager) (Producer, error) {
	log = log.With(zap.String("component", "producer"))

	kp, err := newKafkaProducer(conf.Brokers)
	if err != nil {
		return nil, err
	}
	p := newProducer(kp, log)
	p.closer = func() {
		if remaining := kp.Flush(5000); remaining > 0 {
			log.Warn("producer closed with undelivered messages", zap.Int("remaining", remaining))
		}
		kp.Close()
	}
	go logEvents(kp.Events(), log)

	markReady := readiness.AddComponent("kafka-producer")
	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			if err := waitForBrokers(ctx, kp, log, conf.ProducerConfig.ReadinessTimeoutSeconds, *conf.ProducerConfig.FailOnBrokerError); err != nil {
				return err
			}
			markReady()
			return nil
		},
		OnStop: func(context.Context) error {
			p.Close()
			return nil
		},
	})

	return p, nil
}
