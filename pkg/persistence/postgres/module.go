package postgres

import (
	"context"

	"github.com/Sokol111/ecommerce-catalog-sync/pkg/core/health"
	"github.com/jmoiron/sqlx"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

type moduleOptions struct {
	static *Config
}

type Option func(*moduleOptions)

// WithPostgresConfig uses cfg instead of the "postgres" viper section.
func WithPostgresConfig(cfg Config) Option {
	return func(o *moduleOptions) { o.static = &cfg }
}

// NewPostgresModule provides *sqlx.DB and Config.
func NewPostgresModule(opts ...Option) fx.Option {
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

	return fx.Module("postgres",
		configProvider,
		fx.Provide(provideDB),
	)
}

func provideDB(lc fx.Lifecycle, log *zap.Logger, conf Config, readiness health.ComponentManager) (*sqlx.DB, error) {
	db, err := open(conf)
	if err != nil {
		return nil, err
	}
	log = log.With(zap.String("component", "postgres"))

	markReady := readiness.AddComponent("postgres")
	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			if err := ping(ctx, db, conf, log); err != nil {
				return err
			}
			markReady()
			return nil
		},
		OnStop: func(context.Context) error {
			return db.Close()
		},
	})

	return db, nil
}
