package config

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

type viperOptions struct {
	configPath   *string
	noConfigFile bool
}

// ViperOption is a functional option for configuring the Viper module.
type ViperOption func(*viperOptions)

// WithConfigPath reads the given file instead of AppConfig.ConfigFile.
func WithConfigPath(path string) ViperOption {
	return func(o *viperOptions) {
		o.configPath = &path
	}
}

// WithoutConfigFile provides a Viper instance backed by environment variables only.
func WithoutConfigFile() ViperOption {
	return func(o *viperOptions) {
		o.noConfigFile = true
	}
}

// FilePath is the configuration file Viper reads. Empty means none.
type FilePath string

// NewViperModule provides *viper.Viper. Environment variables always win over
// file values; "kafka.bootstrap-servers" is looked up as KAFKA_BOOTSTRAP_SERVERS.
func NewViperModule(opts ...ViperOption) fx.Option {
	o := &viperOptions{}
	for _, opt := range opts {
		opt(o)
	}

	return fx.Module("viper",
		fx.Provide(
			func(app AppConfig) FilePath {
				return resolveFilePath(o, app)
			},
			newViper,
		),
		fx.Invoke(func(logger *zap.Logger, v *viper.Viper) {
			logger.Info("configuration loaded",
				zap.String("configFile", v.ConfigFileUsed()),
				zap.Int("settingsCount", len(v.AllSettings())),
			)
		}),
	)
}

func resolveFilePath(o *viperOptions, app AppConfig) FilePath {
	if o.noConfigFile {
		return ""
	}
	if o.configPath != nil {
		return FilePath(*o.configPath)
	}
	return FilePath(app.ConfigFile)
}

func newViper(configFile FilePath) (*viper.Viper, error) {
	v := viper.New()
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))

	if configFile == "" {
		return v, nil
	}

	v.SetConfigFile(string(configFile))
	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("failed to read config file [%s]: %w", configFile, err)
	}

	return v, nil
}
