package config

import (
	"fmt"
	"os"
	"path/filepath"

	"go.uber.org/fx"
	"go.uber.org/zap"
)

const (
	envAppEnv            = "APP_ENV"
	envAppServiceName    = "APP_SERVICE_NAME"
	envAppServiceVersion = "APP_SERVICE_VERSION"
	envConfigFile        = "CONFIG_FILE"
	envConfigDir         = "CONFIG_DIR"
	envConfigName        = "CONFIG_NAME"
	envKubernetesHost    = "KUBERNETES_SERVICE_HOST"
)

const defaultConfigDir = "./configs"

// AppConfig identifies the running process: which service it is, which
// build, which environment, and where its YAML configuration lives.
type AppConfig struct {
	ConfigFile     string
	ServiceName    string
	ServiceVersion string
	Environment    string
	// IsKubernetes is true when the process was scheduled by Kubernetes.
	// The readiness tracker then waits for the first probe before traffic workers start.
	IsKubernetes bool
}

type appConfigOptions struct {
	static *AppConfig
}

// AppConfigOption configures NewAppConfigModule.
type AppConfigOption func(*appConfigOptions)

// WithAppConfig supplies a fixed AppConfig instead of reading the environment.
func WithAppConfig(cfg AppConfig) AppConfigOption {
	return func(o *appConfigOptions) {
		o.static = &cfg
	}
}

// NewAppConfigModule provides AppConfig.
//
// Required environment variables: APP_ENV, APP_SERVICE_NAME, APP_SERVICE_VERSION.
// CONFIG_FILE overrides the file location, otherwise CONFIG_DIR and CONFIG_NAME
// are combined (default ./configs/config.{APP_ENV}.yaml).
func NewAppConfigModule(opts ...AppConfigOption) fx.Option {
	o := &appConfigOptions{}
	for _, opt := range opts {
		opt(o)
	}

	provide := fx.Provide(newAppConfig)
	if o.static != nil {
		provide = fx.Supply(*o.static)
	}

	return fx.Module("appconfig",
		provide,
		fx.Invoke(func(logger *zap.Logger, conf AppConfig) {
			logger.Info("application configuration loaded",
				zap.String("service", conf.ServiceName),
				zap.String("version", conf.ServiceVersion),
				zap.String("environment", conf.Environment),
				zap.String("configFile", conf.ConfigFile),
				zap.Bool("kubernetes", conf.IsKubernetes),
			)
		}),
	)
}

func newAppConfig() (AppConfig, error) {
	env := os.Getenv(envAppEnv)
	if env == "" {
		return AppConfig{}, fmt.Errorf("%s is required", envAppEnv)
	}

	serviceName := os.Getenv(envAppServiceName)
	if serviceName == "" {
		return AppConfig{}, fmt.Errorf("%s is required", envAppServiceName)
	}

	serviceVersion := os.Getenv(envAppServiceVersion)
	if serviceVersion == "" {
		return AppConfig{}, fmt.Errorf("%s is required", envAppServiceVersion)
	}

	return AppConfig{
		ConfigFile:     resolveConfigFile(env),
		ServiceName:    serviceName,
		ServiceVersion: serviceVersion,
		Environment:    env,
		IsKubernetes:   os.Getenv(envKubernetesHost) != "",
	}, nil
}

func resolveConfigFile(env string) string {
	if configFile := os.Getenv(envConfigFile); configFile != "" {
		return configFile
	}

	configDir := os.Getenv(envConfigDir)
	if configDir == "" {
		configDir = defaultConfigDir
	}

	configName := os.Getenv(envConfigName)
	if configName == "" {
		configName = "config." + env
	}

	return filepath.Join(configDir, configName+".yaml")
}
