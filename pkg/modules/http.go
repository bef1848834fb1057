package modules

import (
	"github.com/Sokol111/ecommerce-catalog-sync/pkg/http/health"
	"github.com/Sokol111/ecommerce-catalog-sync/pkg/http/middleware"
	"github.com/Sokol111/ecommerce-catalog-sync/pkg/http/server"
	"go.uber.org/fx"
)

type httpOptions struct {
	serverConfig *server.Config
}

type HTTPOption func(*httpOptions)

func WithServerConfig(cfg server.Config) HTTPOption {
	return func(opts *httpOptions) {
		opts.serverConfig = &cfg
	}
}

// NewHTTPModule provides the gin engine with its middleware chain, the
// health routes and the server that serves them.
func NewHTTPModule(opts ...HTTPOption) fx.Option {
	o := &httpOptions{}
	for _, opt := range opts {
		opt(o)
	}

	var serverOpts []server.Option
	if o.serverConfig != nil {
		serverOpts = append(serverOpts, server.WithServerConfig(*o.serverConfig))
	}

	return fx.Options(
		server.NewHTTPServerModule(serverOpts...),
		middleware.NewGinModule(),
		health.NewHealthRoutesModule(),
	)
}
