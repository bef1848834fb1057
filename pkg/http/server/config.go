package server

import (
	"errors"
	"fmt"
	"time"

	"github.com/samber/lo"
	"github.com/spf13/viper"
)

type Config struct {
	Port int `mapstructure:"port"`

	Connection ConnectionConfig `mapstructure:"connection"`
	Timeout    TimeoutConfig    `mapstructure:"timeout"`
	RateLimit  RateLimitConfig  `mapstructure:"rate-limit"`
	Bulkhead   BulkheadConfig   `mapstructure:"bulkhead"`
}

// ConnectionConfig holds the net/http server limits. These close the
// connection without a response, unlike TimeoutConfig.
type ConnectionConfig struct {
	ReadHeaderTimeout time.Duration `mapstructure:"read-header-timeout"`
	ReadTimeout       time.Duration `mapstructure:"read-timeout"`
	WriteTimeout      time.Duration `mapstructure:"write-timeout"`
	IdleTimeout       time.Duration `mapstructure:"idle-timeout"`
	MaxHeaderBytes    int           `mapstructure:"max-header-bytes"`
}

type TimeoutConfig struct {
	Enabled        *bool         `mapstructure:"enabled"`
	RequestTimeout time.Duration `mapstructure:"request-timeout"`
}

type RateLimitConfig struct {
	Enabled           *bool `mapstructure:"enabled"`
	RequestsPerSecond int   `mapstructure:"requests-per-second"`
	Burst             int   `mapstructure:"burst"`
}

type BulkheadConfig struct {
	Enabled       *bool         `mapstructure:"enabled"`
	MaxConcurrent int           `mapstructure:"max-concurrent"`
	Timeout       time.Duration `mapstructure:"timeout"`
}

func newConfig(v *viper.Viper) (Config, error) {
	var cfg Config
	sub := v.Sub("server")
	if sub == nil {
		return cfg, errors.New("server config section is missing")
	}
	if err := sub.Unmarshal(&cfg); err != nil {
		return cfg, fmt.Errorf("failed to load server config: %w", err)
	}
	cfg.applyDefaults()
	return cfg, cfg.Validate()
}

func (c *Config) applyDefaults() {
	if c.Port == 0 {
		c.Port = 8080
	}
	c.Timeout.setDefaults()
	c.RateLimit.setDefaults()
	c.Bulkhead.setDefaults()
	c.Connection.setDefaults(c.Timeout)
}

func (c Config) Validate() error {
	if c.Port < 1 || c.Port > 65535 {
		return fmt.Errorf("server port %d is out of range", c.Port)
	}
	if c.RateLimit.IsEnabled() && c.RateLimit.Burst < 1 {
		return errors.New("rate-limit burst must be positive")
	}
	return nil
}

func (c *ConnectionConfig) setDefaults(timeout TimeoutConfig) {
	if c.ReadHeaderTimeout == 0 {
		c.ReadHeaderTimeout = 10 * time.Second
	}
	if c.ReadTimeout == 0 {
		c.ReadTimeout = 30 * time.Second
	}
	if c.WriteTimeout == 0 {
		// leaves room for the timeout middleware to write its 504
		if timeout.IsEnabled() {
			c.WriteTimeout = timeout.RequestTimeout + 10*time.Second
		} else {
			c.WriteTimeout = 40 * time.Second
		}
	}
	if c.IdleTimeout == 0 {
		c.IdleTimeout = 120 * time.Second
	}
	if c.MaxHeaderBytes == 0 {
		c.MaxHeaderBytes = 1 << 20
	}
}

func (c *TimeoutConfig) setDefaults() {
	if c.Enabled == nil {
		c.Enabled = lo.ToPtr(true)
	}
	if *c.Enabled && c.RequestTimeout == 0 {
		c.RequestTimeout = 30 * time.Second
	}
}

func (c TimeoutConfig) IsEnabled() bool { return c.Enabled != nil && *c.Enabled }

func (c *RateLimitConfig) setDefaults() {
	if c.Enabled == nil {
		c.Enabled = lo.ToPtr(true)
	}
	if !*c.Enabled {
		return
	}
	if c.RequestsPerSecond == 0 {
		c.RequestsPerSecond = 1000
	}
	if c.Burst == 0 {
		c.Burst = 100
	}
}

func (c RateLimitConfig) IsEnabled() bool { return c.Enabled != nil && *c.Enabled }

func (c *BulkheadConfig) setDefaults() {
	if c.Enabled == nil {
		c.Enabled = lo.ToPtr(true)
	}
	if !*c.Enabled {
		return
	}
	if c.MaxConcurrent == 0 {
		c.MaxConcurrent = 500
	}
	if c.Timeout == 0 {
		c.Timeout = 100 * time.Millisecond
	}
}

func (c BulkheadConfig) IsEnabled() bool { return c.Enabled != nil && *c.Enabled }
