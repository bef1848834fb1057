package client

import (
	"errors"
	"fmt"
	"net/url"
	"time"

	"github.com/samber/lo"
	"github.com/spf13/viper"
)

const (
	DefaultTimeout             = 10 * time.Second
	DefaultMaxIdleConnsPerHost = 100
	DefaultIdleConnTimeout     = 90 * time.Second
	// DefaultMaxConnLifetime rotates connections so new pods behind a
	// service get traffic.
	DefaultMaxConnLifetime = 60 * time.Second
	MaxRetriesCap          = 5
)

// Config is one entry of the "clients" section:
//
//	clients:
//	  catalog:
//	    base-url: http://catalog:8080
//	    timeout: 5s
//
// Omitted durations get defaults, an explicit 0 disables them.
type Config struct {
	BaseURL             string         `mapstructure:"base-url"`
	Timeout             *time.Duration `mapstructure:"timeout"`
	MaxIdleConnsPerHost *int           `mapstructure:"max-idle-conns-per-host"`
	IdleConnTimeout     *time.Duration `mapstructure:"idle-conn-timeout"`
	MaxConnLifetime     *time.Duration `mapstructure:"max-conn-lifetime"`
}

func (c *Config) applyDefaults() {
	if c.Timeout == nil {
		c.Timeout = lo.ToPtr(DefaultTimeout)
	}
	if c.MaxIdleConnsPerHost == nil {
		c.MaxIdleConnsPerHost = lo.ToPtr(DefaultMaxIdleConnsPerHost)
	}
	if c.IdleConnTimeout == nil {
		c.IdleConnTimeout = lo.ToPtr(DefaultIdleConnTimeout)
	}
	if c.MaxConnLifetime == nil {
		c.MaxConnLifetime = lo.ToPtr(DefaultMaxConnLifetime)
	}
}

func (c Config) validate() error {
	if c.BaseURL == "" {
		return errors.New("base-url is required")
	}
	u, err := url.Parse(c.BaseURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("base-url %q is not an absolute url", c.BaseURL)
	}
	return nil
}

func loadConfig(v *viper.Viper, name string) (Config, error) {
	var cfg Config
	if err := v.UnmarshalKey("clients."+name, &cfg); err != nil {
		return cfg, fmt.Errorf("failed to unmarshal client config %q: %w", name, err)
	}
	if err := cfg.validate(); err != nil {
		return cfg, fmt.Errorf("invalid client config %q: %w", name, err)
	}
	cfg.applyDefaults()
	return cfg, nil
}
