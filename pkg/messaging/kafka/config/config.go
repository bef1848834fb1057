package config

import (
	"errors"
	"fmt"

	"github.com/spf13/viper"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

type moduleOptions struct {
	static *Config
}

type Option func(*moduleOptions)

// WithKafkaConfig uses cfg instead of the "kafka" viper section.
func WithKafkaConfig(cfg Config) Option {
	return func(o *moduleOptions) { o.static = &cfg }
}

func NewKafkaConfigModule(opts ...Option) fx.Option {
	o := &moduleOptions{}
	for _, opt := range opts {
		opt(o)
	}

	if o.static != nil {
		cfg := *o.static
		return fx.Provide(func(log *zap.Logger) (Config, error) {
			return finalize(cfg, log)
		})
	}
	return fx.Provide(newConfig)
}

func newConfig(v *viper.Viper, log *zap.Logger) (Config, error) {
	var cfg Config
	sub := v.Sub("kafka")
	if sub == nil {
		return cfg, errors.New("kafka config section is missing")
	}
	if err := sub.Unmarshal(&cfg); err != nil {
		return cfg, fmt.Errorf("failed to load kafka config: %w", err)
	}
	return finalize(cfg, log)
}

func finalize(cfg Config, log *zap.Logger) (Config, error) {
	applyDefaults(&cfg)
	if err := validateConfig(&cfg); err != nil {
		return cfg, fmt.Errorf("invalid kafka config: %w", err)
	}
	log.Info("loaded kafka config",
		zap.String("brokers", cfg.Brokers),
		zap.Int("consumers", len(cfg.ConsumersConfig.ConsumerConfig)),
	)
	return cfg, nil
}
