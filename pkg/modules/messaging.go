package modules

import (
	"github.com/Sokol111/ecommerce-catalog-sync/pkg/messaging"
	"go.uber.org/fx"
)

// NewMessagingModule provides Kafka config, producer and inbox, plus the
// outbox when messaging.WithOutbox is passed. Consumers are registered by the
// services with consumer.RegisterHandlerAndConsumer.
func NewMessagingModule(opts ...messaging.Option) fx.Option {
	return messaging.NewMessagingModule(opts...)
}
