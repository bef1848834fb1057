// Package minio provides an S3 compatible object storage client.
package minio

import (
	"context"
	"fmt"

	"github.com/Sokol111/ecommerce-catalog-sync/pkg/core/health"
	miniogo "github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

type moduleOptions struct {
	static *Config
}

type Option func(*moduleOptions)

// WithMinioConfig uses cfg instead of the "minio" viper section.
func WithMinioConfig(cfg Config) Option {
	return func(o *moduleOptions) { o.static = &cfg }
}

// NewMinioModule provides *miniogo.Client and Config. The bucket is checked
// on start.
func NewMinioModule(opts ...Option) fx.Option {
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

	return fx.Module("minio",
		configProvider,
		fx.Provide(provideClient),
	)
}

func provideClient(lc fx.Lifecycle, log *zap.Logger, conf Config, readiness health.ComponentManager) (*miniogo.Client, error) {
	client, err := miniogo.New(conf.Endpoint, &miniogo.Options{
		Creds:  credentials.NewStaticV4(conf.AccessKey, conf.SecretKey, ""),
		Secure: conf.UseSSL,
		Region: conf.Region,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create minio client: %w", err)
	}
	log = log.With(zap.String("component", "minio"))

	markReady := readiness.AddComponent("minio")
	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			ctx, cancel := context.WithTimeout(ctx, conf.ConnectTimeout)
			defer cancel()
			if err := ensureBucket(ctx, client, conf); err != nil {
				return err
			}
			log.Info("connected to minio", zap.String("endpoint", conf.Endpoint), zap.String("bucket", conf.Bucket))
			markReady()
			return nil
		},
	})
	return client, nil
}

func ensureBucket(ctx context.Context, client *miniogo.Client, conf Config) error {
	exists, err := client.BucketExists(ctx, conf.Bucket)
	if err != nil {
		return fmt.Errorf("failed to check minio bucket %s: %w", conf.Bucket, err)
	}
	if exists {
		return nil
	}
	if !conf.CreateBucket {
		return fmt.Errorf("minio bucket %s does not exist", conf.Bucket)
	}
	if err := client.MakeBucket(ctx, conf.Bucket, miniogo.MakeBucketOptions{Region: conf.Region}); err != nil {
		return fmt.Errorf("failed to create minio bucket %s: %w", conf.Bucket, err)
	}
	return nil
}
