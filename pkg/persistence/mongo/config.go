package mongo

import (
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	ConnectionString string `mapstructure:"connection-string"`
	Host             string `mapstructure:"host"`
	Port             int    `mapstructure:"port"`
	ReplicaSet       string `mapstructure:"replica-set"`
	Username         string `mapstructure:"username"`
	Password         string `mapstructure:"password"`
	Database         string `mapstructure:"database"`
	DirectConnection bool   `mapstructure:"direct-connection"`

	MaxPoolSize         uint64        `mapstructure:"max-pool-size"`
	MinPoolSize         uint64        `mapstructure:"min-pool-size"`
	MaxConnIdleTime     time.Duration `mapstructure:"max-conn-idle-time"`
	ConnectTimeout      time.Duration `mapstructure:"connect-timeout"`
	ServerSelectTimeout time.Duration `mapstructure:"server-select-timeout"`

	// QueryTimeout bounds every single operation (client side operation timeout).
	QueryTimeout time.Duration `mapstructure:"query-timeout"`

	// TransactionTimeout bounds a whole WithTransaction call, retries included.
	TransactionTimeout time.Duration `mapstructure:"transaction-timeout"`
}

func (c *Config) applyDefaults() {
	if c.MaxPoolSize == 0 {
		c.MaxPoolSize = 100
	}
	if c.MinPoolSize == 0 {
		c.MinPoolSize = 10
	}
	if c.MaxConnIdleTime == 0 {
		c.MaxConnIdleTime = 5 * time.Minute
	}
	if c.ConnectTimeout == 0 {
		c.ConnectTimeout = 10 * time.Second
	}
	if c.ServerSelectTimeout == 0 {
		c.ServerSelectTimeout = 30 * time.Second
	}
	if c.QueryTimeout == 0 {
		c.QueryTimeout = 30 * time.Second
	}
	if c.TransactionTimeout == 0 {
		c.TransactionTimeout = 45 * time.Second
	}
}

func (c Config) Validate() error {
	if c.Database == "" {
		return errors.New("mongo database is required")
	}
	if c.ConnectionString != "" {
		return nil
	}
	if c.Host == "" || c.Port == 0 {
		return errors.New("mongo host and port are required when connection-string is empty")
	}
	return nil
}

// URI returns the connection string, building it from parts when
// ConnectionString is empty.
func (c Config) URI() string {
	if c.ConnectionString != "" {
		return c.ConnectionString
	}

	u := url.URL{
		Scheme: "mongodb",
		Host:   c.Host + ":" + strconv.Itoa(c.Port),
		Path:   "/" + c.Database,
	}
	if c.Username != "" {
		u.User = url.UserPassword(c.Username, c.Password)
	}

	params := []string{}
	if c.ReplicaSet != "" {
		params = append(params, "replicaSet="+url.QueryEscape(c.ReplicaSet))
	}
	if c.DirectConnection {
		params = append(params, "directConnection=true")
	}
	u.RawQuery = strings.Join(params, "&")

	return u.String()
}

func newConfig(v *viper.Viper) (Config, error) {
	var cfg Config
	sub := v.Sub("mongo")
	if sub == nil {
		return cfg, errors.New("mongo config section is missing")
	}
	if err := sub.Unmarshal(&cfg); err != nil {
		return cfg, fmt.Errorf("failed to load mongo config: %w", err)
	}
	cfg.applyDefaults()
	return cfg, cfg.Validate()
}
