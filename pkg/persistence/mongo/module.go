package mongo

import (
	"context"

	"github.com/Sokol111/ecommerce-catalog-sync/pkg/core/health"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

type moduleOptions struct {
	static *Config
}

type Option func(*moduleOptions)

// WithMongoConfig uses cfg instead of the "mongo" viper section.
func WithMongoConfig(cfg Config) Option {
	return func(o *moduleOptions) { o.static = &cfg }
}

// NewMongoModule provides Mongo, Config, persistence.TxManager and Sequence.
func NewMongoModule(opts ...Option) fx.Option {
	o := &moduleOptions{}
	for _, opt := range opts {
		opt(o)
	}

	configProvider := fx.Provide(newConfig)
	if o.static != nil {
		cfg := *o.static
		cfg.applyDefaults()
		configProvider = fx.Supply(cfg)
	}

	return fx.Module("mongo",
		configProvider,
		fx.Provide(
			provideMongo,
			func(m *mongo) Mongo { return m },
			newTxManager,
			NewSequence,
		),
	)
}

func provideMongo(lc fx.Lifecycle, log *zap.Logger, conf Config, readiness health.ComponentManager) (*mongo, error) {
	m, err := newMongo(log.With(zap.String("component", "mongo")), conf)
	if err != nil {
		return nil, err
	}

	markReady := readiness.AddComponent("mongo")
	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			if err := m.connect(ctx); err != nil {
				return err
			}
			markReady()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			return m.disconnect(ctx)
		},
	})

	return m, nil
}
