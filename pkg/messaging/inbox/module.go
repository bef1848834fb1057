package inbox

import (
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/spf13/viper"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

const defaultTTL = 7 * 24 * time.Hour

type Config struct {
	TTL time.Duration `mapstructure:"ttl"`
}

func newConfig(v *viper.Viper) (Config, error) {
	cfg := Config{}
	if sub := v.Sub("inbox"); sub != nil {
		if err := sub.Unmarshal(&cfg); err != nil {
			return cfg, fmt.Errorf("failed to load inbox config: %w", err)
		}
	}
	if cfg.TTL == 0 {
		cfg.TTL = defaultTTL
	}
	if cfg.TTL < time.Minute {
		return cfg, fmt.Errorf("inbox ttl must be at least 1m, got: %v", cfg.TTL)
	}
	return cfg, nil
}

// NewRedisInboxModule provides an Inbox kept in Redis. Requires a *redis.Client.
func NewRedisInboxModule() fx.Option {
	return fx.Module("inbox",
		fx.Provide(
			fx.Private,
			newConfig,
		),
		fx.Provide(func(client *redis.Client, conf Config, log *zap.Logger) Inbox {
			log.Info("using redis inbox", zap.Duration("ttl", conf.TTL))
			return newRedisInbox(client, conf.TTL, log.With(zap.String("component", "inbox")))
		}),
	)
}

// NewNoopInboxModule provides an Inbox that never reports an event as seen.
func NewNoopInboxModule() fx.Option {
	return fx.Provide(func() Inbox { return noopInbox{} })
}
