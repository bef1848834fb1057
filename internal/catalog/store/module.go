package store

import (
	"context"

	"github.com/Sokol111/ecommerce-catalog-sync/internal/catalog"
	"github.com/Sokol111/ecommerce-catalog-sync/pkg/persistence/mongo"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

// NewStoreModule provides catalog.Store on top of the mongo module.
func NewStoreModule() fx.Option {
	return fx.Module("catalog-store",
		fx.Provide(func(m mongo.Mongo, seq mongo.Sequence) catalog.Store {
			return newStore(m, seq)
		}),
		fx.Invoke(registerIndexes),
	)
}

func registerIndexes(lc fx.Lifecycle, m mongo.Mongo, log *zap.Logger) {
	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			if err := ensureIndexes(ctx, m); err != nil {
				return err
			}
			log.Info("catalog indexes ensured")
			return nil
		},
	})
}
