package core

import (
	"time"

	"github.com/Sokol111/ecommerce-catalog-sync/pkg/core/config"
	"github.com/Sokol111/ecommerce-catalog-sync/pkg/core/health"
	"github.com/Sokol111/ecommerce-catalog-sync/pkg/core/logger"
	"github.com/Sokol111/ecommerce-catalog-sync/pkg/core/worker"
	"go.uber.org/fx"
)

type coreOptions struct {
	appConfig     *config.AppConfig
	loggerConfig  *logger.Config
	disableDotEnv bool
	configPath    *string
	noConfigFile  bool
}

type Option func(*coreOptions)

// WithAppConfig supplies a static AppConfig instead of reading APP_* variables.
func WithAppConfig(cfg config.AppConfig) Option {
	return func(o *coreOptions) { o.appConfig = &cfg }
}

// WithLoggerConfig supplies a static logger config.
func WithLoggerConfig(cfg logger.Config) Option {
	return func(o *coreOptions) { o.loggerConfig = &cfg }
}

func WithoutEnvFile() Option {
	return func(o *coreOptions) { o.disableDotEnv = true }
}

// WithConfigFile overrides the YAML file resolved from AppConfig.
func WithConfigFile(path string) Option {
	return func(o *coreOptions) { o.configPath = &path }
}

func WithoutConfigFile() Option {
	return func(o *coreOptions) { o.noConfigFile = true }
}

// NewCoreModule wires configuration, logging, readiness tracking and the
// worker group. Every service binary starts from it.
func NewCoreModule(opts ...Option) fx.Option {
	o := &coreOptions{}
	for _, opt := range opts {
		opt(o)
	}

	return fx.Options(
		fx.StartTimeout(5*time.Minute),
		fx.StopTimeout(5*time.Minute),

		dotEnvModule(o),
		viperModule(o),
		appConfigModule(o),
		loggerModule(o),
		health.NewReadinessModule(),
		worker.NewWorkersModule(),
	)
}

func dotEnvModule(o *coreOptions) fx.Option {
	if o.disableDotEnv {
		return fx.Options()
	}
	return config.NewDotEnvModule(".env")
}

func viperModule(o *coreOptions) fx.Option {
	switch {
	case o.noConfigFile:
		return config.NewViperModule(config.WithoutConfigFile())
	case o.configPath != nil:
		return config.NewViperModule(config.WithConfigPath(*o.configPath))
	default:
		return config.NewViperModule()
	}
}

func appConfigModule(o *coreOptions) fx.Option {
	if o.appConfig != nil {
		return config.NewAppConfigModule(config.WithAppConfig(*o.appConfig))
	}
	return config.NewAppConfigModule()
}

func loggerModule(o *coreOptions) fx.Option {
	if o.loggerConfig != nil {
		return logger.NewZapLoggingModule(logger.WithLoggerConfig(*o.loggerConfig))
	}
	return logger.NewZapLoggingModule()
}
