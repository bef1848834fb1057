package config

import (
	"context"

	"github.com/joho/godotenv"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

// NewDotEnvModule loads a .env file into the process environment.
// Loading happens when the module is built so that later providers see the values.
func NewDotEnvModule(path string) fx.Option {
	if path == "" {
		path = ".env"
	}
	loaded := godotenv.Load(path) == nil

	return fx.Module("dotenv",
		fx.Invoke(func(lc fx.Lifecycle, logger *zap.Logger) {
			lc.Append(fx.Hook{
				OnStart: func(context.Context) error {
					if loaded {
						logger.Info("loaded .env file", zap.String("path", path))
					} else {
						logger.Debug("no .env file loaded", zap.String("path", path))
					}
					return nil
				},
			})
		}),
	)
}
