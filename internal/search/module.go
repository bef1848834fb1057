package search

import (
	"context"

	"github.com/Sokol111/ecommerce-catalog-sync/pkg/messaging/kafka/consumer"
	es "github.com/elastic/go-elasticsearch/v8"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

const ConsumerName = "search-projection"

// NewSearchModule projects product events into Elasticsearch. It requires
// the elasticsearch module.
func NewSearchModule() fx.Option {
	return fx.Module("search",
		fx.Provide(fx.Private, newIndex),
		fx.Invoke(registerIndex),
		consumer.RegisterHandlerAndConsumer(ConsumerName, newProjectionHandler),
	)
}

func registerIndex(lc fx.Lifecycle, client *es.Client, log *zap.Logger) {
	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			if err := ensureIndex(ctx, client); err != nil {
				return err
			}
			log.Info("search index ensured", zap.String("index", IndexName))
			return nil
		},
	})
}
