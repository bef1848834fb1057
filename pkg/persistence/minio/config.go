package minio

import (
	"errors"
	"fmt"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	Endpoint  string `mapstructure:"endpoint"`
	AccessKey string `mapstructure:"access-key"`
	SecretKey string `mapstructure:"secret-key"`
	UseSSL    bool   `mapstructure:"use-ssl"`
	Bucket    string `mapstructure:"bucket"`
	Region    string `mapstructure:"region"`
	// CreateBucket makes the bucket on start when it does not exist.
	CreateBucket   bool          `mapstructure:"create-bucket"`
	ConnectTimeout time.Duration `mapstructure:"connect-timeout"`
}

func (c *Config) applyDefaults() {
	if c.ConnectTimeout == 0 {
		c.ConnectTimeout = 10 * time.Second
	}
}

func (c Config) Validate() error {
	if c.Endpoint == "" || c.Bucket == "" {
		return errors.New("minio endpoint and bucket are required")
	}
	if c.AccessKey == "" || c.SecretKey == "" {
		return errors.New("minio access-key and secret-key are required")
	}
	return nil
}

func newConfig(v *viper.Viper) (Config, error) {
	var cfg Config
	sub := v.Sub("minio")
	if sub == nil {
		return cfg, errors.New("minio config section is missing")
	}
	if err := sub.Unmarshal(&cfg); err != nil {
		return cfg, fmt.Errorf("failed to load minio config: %w", err)
	}
	cfg.applyDefaults()
	return cfg, cfg.Validate()
}
