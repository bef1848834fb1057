package server

import (
	"context"
	"net/http"

	"github.com/Sokol111/ecommerce-catalog-sync/pkg/core/health"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

type moduleOptions struct {
	static *Config
}

type Option func(*moduleOptions)

// WithServerConfig uses cfg instead of the "server" viper section.
func WithServerConfig(cfg Config) Option {
	return func(o *moduleOptions) { o.static = &cfg }
}

// NewHTTPServerModule serves the provided http.Handler for the lifetime of
// the application.
func NewHTTPServerModule(opts ...Option) fx.Option {
	o := &moduleOptions{}
	for _, opt := range opts {
		opt(o)
	}

	configProvider := fx.Provide(newConfig)
	if o.static != nil {
		cfg := *o.static
		cfg.applyDefaults()
		configProvider = fx.Supply(cfg)
	}

	return fx.Options(
		configProvider,
		fx.Invoke(startHTTPServer),
	)
}

func startHTTPServer(lc fx.Lifecycle, log *zap.Logger, conf Config, handler http.Handler, readiness health.ComponentManager, shutdowner fx.Shutdowner) {
	log = log.With(zap.String("component", "http-server"))
	var srv Server
	markReady := readiness.AddComponent("http-server")
	lc.Append(fx.Hook{
		OnStart: func(context.Context) error {
			// routes are all registered once OnStart runs
			srv = newServer(log, conf, handler)

			go func() {
				if err := srv.ServeWithReadyCallback(markReady); err != nil {
					log.Error("HTTP server failed, shutting down application", zap.Error(err))
					_ = shutdowner.Shutdown(fx.ExitCode(1)) //nolint:errcheck // best effort
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			if srv != nil {
				return srv.Shutdown(ctx)
			}
			return nil
		},
	})
}
