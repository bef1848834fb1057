package config

import (
	"fmt"

	"github.com/spf13/viper"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

type configOptions struct {
	config         *Config
	disableTracing bool
	disableMetrics bool
}

type Option func(*configOptions)

// WithConfig uses cfg instead of the "observability" viper section.
func WithConfig(cfg Config) Option {
	return func(opts *configOptions) {
		opts.config = &cfg
	}
}

func WithDisableTracing() Option {
	return func(opts *configOptions) {
		opts.disableTracing = true
	}
}

func WithDisableMetrics() Option {
	return func(opts *configOptions) {
		opts.disableMetrics = true
	}
}

// NewObservabilityConfigModule provides Config. A missing section leaves
// tracing and metrics disabled.
func NewObservabilityConfigModule(opts ...Option) fx.Option {
	o := &configOptions{}
	for _, opt := range opts {
		opt(o)
	}

	return fx.Provide(func(v *viper.Viper, log *zap.Logger) (Config, error) {
		return provideConfig(o, v, log)
	})
}

func provideConfig(opts *configOptions, v *viper.Viper, log *zap.Logger) (Config, error) {
	var cfg Config
	if opts.config != nil {
		cfg = *opts.config
	} else if sub := v.Sub("observability"); sub != nil {
		if err := sub.Unmarshal(&cfg); err != nil {
			return cfg, fmt.Errorf("failed to load observability config: %w", err)
		}
	}

	applyDefaults(&cfg)
	if opts.disableTracing {
		cfg.Tracing.Enabled = false
	}
	if opts.disableMetrics {
		cfg.Metrics.Enabled = false
	}
	if err := validate(cfg); err != nil {
		return cfg, err
	}

	log.Info("loaded observability config",
		zap.Bool("tracing", cfg.Tracing.Enabled),
		zap.Bool("metrics", cfg.Metrics.Enabled),
	)
	return cfg, nil
}

func applyDefaults(cfg *Config) {
	if cfg.Metrics.Interval == 0 {
		cfg.Metrics.Interval = DefaultMetricsInterval
	}
	if cfg.Tracing.SampleRatio == 0 {
		cfg.Tracing.SampleRatio = DefaultSampleRatio
	}
}

func validate(cfg Config) error {
	if cfg.Tracing.SampleRatio < 0 || cfg.Tracing.SampleRatio > 1 {
		return fmt.Errorf("observability: sample-ratio must be between 0 and 1, got %v", cfg.Tracing.SampleRatio)
	}
	if cfg.Metrics.Enabled && cfg.OtelCollectorEndpoint == "" {
		return fmt.Errorf("observability: otel-collector-endpoint is required when metrics are enabled")
	}
	return nil
}
