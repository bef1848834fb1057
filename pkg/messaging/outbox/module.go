package outbox

import (
	"context"

	"github.com/Sokol111/ecommerce-catalog-sync/pkg/core/config"
	"github.com/Sokol111/ecommerce-catalog-sync/pkg/core/worker"
	"github.com/Sokol111/ecommerce-catalog-sync/pkg/messaging/kafka/producer"
	"github.com/Sokol111/ecommerce-catalog-sync/pkg/persistence/mongo"
	"github.com/confluentinc/confluent-kafka-go/v2/kafka"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

const (
	entitiesBuffer = 100
	deliveryBuffer = 1000
)

type channels struct {
	entities chan *outboxEntity
	delivery chan kafka.Event
}

func newChannels() *channels {
	return &channels{
		entities: make(chan *outboxEntity, entitiesBuffer),
		delivery: make(chan kafka.Event, deliveryBuffer),
	}
}

// NewOutboxModule provides Outbox and runs the fetcher, sender and confirmer
// workers. Requires Mongo and a kafka producer.
func NewOutboxModule() fx.Option {
	return fx.Module("outbox",
		fx.Provide(
			newConfig,
			newChannels,
			func(m mongo.Mongo, conf Config) repository { return newOutboxRepository(m, conf) },
			func(tp trace.TracerProvider) tracePropagator { return newTracePropagator(tp) },
			provideFetcher,
			provideSender,
			provideConfirmer,
			fx.Private,
		),
		fx.Provide(
			provideOutbox,
			worker.Register[*fetcher]("outbox-fetcher", worker.WithReady()),
			worker.Register[*sender]("outbox-sender"),
			worker.Register[*confirmer]("outbox-confirmer"),
		),
		fx.Invoke(registerIndexes),
	)
}

func provideOutbox(repo repository, ch *channels, propagator tracePropagator, app config.AppConfig) Outbox {
	return newOutbox(repo, ch.entities, propagator, app.ServiceName)
}

func provideFetcher(repo repository, ch *channels, log *zap.Logger) *fetcher {
	return newFetcher(repo, ch.entities, log)
}

func provideSender(p producer.Producer, ch *channels, log *zap.Logger, propagator tracePropagator) *sender {
	return newSender(p, ch.entities, ch.delivery, log, propagator)
}

func provideConfirmer(repo repository, ch *channels, log *zap.Logger, conf Config) *confirmer {
	return newConfirmer(repo, ch.delivery, log, conf)
}

func registerIndexes(lc fx.Lifecycle, m mongo.Mongo, log *zap.Logger) {
	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			if err := ensureIndexes(ctx, m); err != nil {
				return err
			}
			log.Info("outbox indexes ensured")
			return nil
		},
	})
}
