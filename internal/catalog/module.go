package catalog

import "go.uber.org/fx"

// NewCatalogModule mounts the product routes. It requires a Store,
// persistence.TxManager and outbox.Outbox.
func NewCatalogModule() fx.Option {
	return fx.Module("catalog",
		fx.Provide(
			fx.Private,
			newPublisher,
			newService,
			newHandler,
		),
		fx.Invoke(registerRoutes),
	)
}
