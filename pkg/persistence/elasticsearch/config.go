package elasticsearch

import (
	"errors"
	"fmt"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	Addresses []string `mapstructure:"addresses"`
	Username  string   `mapstructure:"username"`
	Password  string   `mapstructure:"password"`
	APIKey    string   `mapstructure:"api-key"`

	MaxRetries     int           `mapstructure:"max-retries"`
	ConnectTimeout time.Duration `mapstructure:"connect-timeout"`
}

func (c *Config) applyDefaults() {
	if c.MaxRetries == 0 {
		c.MaxRetries = 3
	}
	if c.ConnectTimeout == 0 {
		c.ConnectTimeout = 30 * time.Second
	}
}

func (c Config) Validate() error {
	if len(c.Addresses) == 0 {
		return errors.New("elasticsearch addresses are required")
	}
	if c.APIKey != "" && c.Username != "" {
		return errors.New("elasticsearch api-key and username are mutually exclusive")
	}
	return nil
}

func newConfig(v *viper.Viper) (Config, error) {
	var cfg Config
	sub := v.Sub("elasticsearch")
	if sub == nil {
		return cfg, errors.New("elasticsearch config section is missing")
	}
	if err := sub.Unmarshal(&cfg); err != nil {
		return cfg, fmt.Errorf("failed to load elasticsearch config: %w", err)
	}
	cfg.applyDefaults()
	return cfg, cfg.Validate()
}
