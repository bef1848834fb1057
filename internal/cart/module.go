package cart

import (
	"github.com/Sokol111/ecommerce-catalog-sync/pkg/http/client"
	"github.com/Sokol111/ecommerce-catalog-sync/pkg/messaging/kafka/consumer"
	"go.uber.org/fx"
)

// ConsumerName is the kafka consumer entry the product.removed handler reads.
const ConsumerName = "cart-product-removed"

// NewCartModule mounts the cart routes and consumes product.removed.
// It requires *sqlx.DB and the kafka messaging module.
func NewCartModule() fx.Option {
	return fx.Module("cart",
		fx.Provide(
			fx.Private,
			newStore,
			client.Provide("catalog"),
			newCatalogClient,
			newService,
			newHandler,
		),
		fx.Invoke(registerRoutes),
		consumer.RegisterHandlerAndConsumer(ConsumerName, newProductRemovedHandler),
	)
}
