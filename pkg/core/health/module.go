package health

import (
	"context"

	"github.com/Sokol111/ecommerce-catalog-sync/pkg/core/config"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

// startupComponent stays pending until the fx start phase begins, so a
// service is never reported ready while providers are still registering.
const startupComponent = "startup"

func NewReadinessModule() fx.Option {
	return fx.Module("readiness",
		fx.Provide(
			func(log *zap.Logger, app config.AppConfig) *readiness {
				return newReadiness(log, app.IsKubernetes)
			},
			func(r *readiness) ComponentManager { return r },
			func(r *readiness) ReadinessChecker { return r },
			func(r *readiness) ReadinessWaiter { return r },
			func(r *readiness) TrafficController { return r },
		),
		fx.Invoke(func(lc fx.Lifecycle, r *readiness) {
			markReady := r.AddComponent(startupComponent)
			lc.Append(fx.Hook{
				OnStart: func(context.Context) error {
					markReady()
					return nil
				},
			})
		}),
	)
}
