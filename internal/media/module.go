package media

import (
	"github.com/Sokol111/ecommerce-catalog-sync/pkg/messaging/kafka/consumer"
	"go.uber.org/fx"
)

const ConsumerName = "media-gc"

// NewMediaModule consumes media.removed. It requires the mongo and minio
// modules.
func NewMediaModule() fx.Option {
	return fx.Module("media",
		fx.Provide(
			fx.Private,
			newRepository,
			newObjectStorage,
		),
		consumer.RegisterHandlerAndConsumer(ConsumerName, newMediaRemovedHandler),
	)
}
