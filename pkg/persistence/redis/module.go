package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/Sokol111/ecommerce-catalog-sync/pkg/core/health"
	goredis "github.com/redis/go-redis/v9"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

type moduleOptions struct {
	static *Config
}

type Option func(*moduleOptions)

// WithRedisConfig uses cfg instead of the "redis" viper section.
func WithRedisConfig(cfg Config) Option {
	return func(o *moduleOptions) { o.static = &cfg }
}

// NewRedisModule provides a *goredis.Client that is pinged on start.
func NewRedisModule(opts ...Option) fx.Option {
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

	return fx.Module("redis",
		configProvider,
		fx.Provide(provideClient),
	)
}

func provideClient(lc fx.Lifecycle, log *zap.Logger, conf Config, readiness health.ComponentManager) *goredis.Client {
	client := goredis.NewClient(&goredis.Options{
		Addr:         conf.Addr(),
		Password:     conf.Password,
		DB:           conf.DB,
		DialTimeout:  conf.DialTimeout,
		ReadTimeout:  conf.ReadTimeout,
		WriteTimeout: conf.WriteTimeout,
		PoolSize:     conf.PoolSize,
	})
	log = log.With(zap.String("component", "redis"))

	markReady := readiness.AddComponent("redis")
	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
			defer cancel()
			if err := client.Ping(pingCtx).Err(); err != nil {
				return fmt.Errorf("redis connection failed: %w", err)
			}
			log.Info("connected to redis", zap.String("addr", conf.Addr()), zap.Int("db", conf.DB))
			markReady()
			return nil
		},
		OnStop: func(context.Context) error {
			return client.Close()
		},
	})
	return client
}
