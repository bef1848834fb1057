package modules

import (
	"github.com/Sokol111/ecommerce-catalog-sync/pkg/observability"
	"go.uber.org/fx"
)

func NewObservabilityModule(opts ...observability.Option) fx.Option {
	return observability.NewObservabilityModule(opts...)
}
