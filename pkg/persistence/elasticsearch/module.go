// Package elasticsearch provides a go-elasticsearch client checked on start.
package elasticsearch

import (
	"context"
	"fmt"
	"time"

	"github.com/Sokol111/ecommerce-catalog-sync/pkg/core/health"
	"github.com/cenkalti/backoff/v4"
	es "github.com/elastic/go-elasticsearch/v8"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

type moduleOptions struct {
	static *Config
}

type Option func(*moduleOptions)

// WithElasticsearchConfig uses cfg instead of the "elasticsearch" viper section.
func WithElasticsearchConfig(cfg Config) Option {
	return func(o *moduleOptions) { o.static = &cfg }
}

// NewElasticsearchModule provides *es.Client and Config.
func NewElasticsearchModule(opts ...Option) fx.Option {
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

	return fx.Module("elasticsearch",
		configProvider,
		fx.Provide(provideClient),
	)
}

// NewClient builds a client without the fx lifecycle.
func NewClient(conf Config) (*es.Client, error) {
	client, err := es.NewClient(es.Config{
		Addresses:  conf.Addresses,
		Username:   conf.Username,
		Password:   conf.Password,
		APIKey:     conf.APIKey,
		MaxRetries: conf.MaxRetries,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create elasticsearch client: %w", err)
	}
	return client, nil
}

func provideClient(lc fx.Lifecycle, log *zap.Logger, conf Config, readiness health.ComponentManager) (*es.Client, error) {
	client, err := NewClient(conf)
	if err != nil {
		return nil, err
	}
	log = log.With(zap.String("component", "elasticsearch"))

	markReady := readiness.AddComponent("elasticsearch")
	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			if err := ping(ctx, client, conf, log); err != nil {
				return err
			}
			markReady()
			return nil
		},
	})
	return client, nil
}

func ping(ctx context.Context, client *es.Client, conf Config, log *zap.Logger) error {
	ctx, cancel := context.WithTimeout(ctx, conf.ConnectTimeout)
	defer cancel()

	policy := backoff.NewExponentialBackOff()
	policy.InitialInterval = 500 * time.Millisecond
	policy.MaxInterval = 5 * time.Second

	attempt := 0
	err := backoff.Retry(func() error {
		attempt++
		res, err := client.Info(client.Info.WithContext(ctx))
		if err != nil {
			log.Warn("elasticsearch not reachable yet", zap.Int("attempt", attempt), zap.Error(err))
			return err
		}
		defer func() { _ = res.Body.Close() }()
		if res.IsError() {
			return backoff.Permanent(fmt.Errorf("elasticsearch info failed: %s", res.Status()))
		}
		return nil
	}, backoff.WithContext(policy, ctx))
	if err != nil {
		return fmt.Errorf("failed to connect to elasticsearch after %d attempts: %w", attempt, err)
	}

	log.Info("connected to elasticsearch", zap.Strings("addresses", conf.Addresses))
	return nil
}
