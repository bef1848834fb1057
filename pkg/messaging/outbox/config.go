package outbox

import (
	"fmt"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	// MaxBackoff caps the delay between redelivery attempts of one record.
	MaxBackoff time.Duration `mapstructure:"max-backoff"`
	// BatchSize is how many delivery reports are confirmed in one update.
	BatchSize int `mapstructure:"batch-size"`
	// FlushInterval confirms a partial batch after this long.
	FlushInterval time.Duration `mapstructure:"flush-interval"`
}

func newConfig(v *viper.Viper) (Config, error) {
	cfg := Config{}
	if sub := v.Sub("outbox"); sub != nil {
		if err := sub.Unmarshal(&cfg); err != nil {
			return cfg, fmt.Errorf("failed to load outbox config: %w", err)
		}
	}
	cfg.applyDefaults()
	return cfg, nil
}

func (c *Config) applyDefaults() {
	if c.MaxBackoff <= 0 {
		c.MaxBackoff = 10 * time.Hour
	}
	if c.BatchSize <= 0 {
		c.BatchSize = 100
	}
	if c.FlushInterval <= 0 {
		c.FlushInterval = 2 * time.Second
	}
}
