// Package observability wires OpenTelemetry tracing and metrics.
//
//	observability.NewObservabilityModule()
//
//	// tests
//	observability.NewObservabilityModule(
//	    observability.WithoutTracing(),
//	    observability.WithoutMetrics(),
//	)
//
// Both providers are always available for injection; disabled ones are noop.
package observability

import (
	appconfig "github.com/Sokol111/ecommerce-catalog-sync/pkg/core/config"
	"github.com/Sokol111/ecommerce-catalog-sync/pkg/http/middleware"
	"github.com/Sokol111/ecommerce-catalog-sync/pkg/observability/config"
	otelinternal "github.com/Sokol111/ecommerce-catalog-sync/pkg/observability/internal"
	"github.com/Sokol111/ecommerce-catalog-sync/pkg/observability/metrics"
	"github.com/Sokol111/ecommerce-catalog-sync/pkg/observability/tracing"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/fx"
)

type observabilityOptions struct {
	config         *config.Config
	disableTracing bool
	disableMetrics bool
}

type Option func(*observabilityOptions)

// WithConfig uses cfg instead of the "observability" viper section.
func WithConfig(cfg config.Config) Option {
	return func(opts *observabilityOptions) {
		opts.config = &cfg
	}
}

func WithoutTracing() Option {
	return func(opts *observabilityOptions) {
		opts.disableTracing = true
	}
}

func WithoutMetrics() Option {
	return func(opts *observabilityOptions) {
		opts.disableMetrics = true
	}
}

func NewObservabilityModule(opts ...Option) fx.Option {
	o := &observabilityOptions{}
	for _, opt := range opts {
		opt(o)
	}

	return fx.Options(
		configModule(o),
		tracing.NewTracingModule(),
		metrics.NewMetricsModule(),
		fx.Provide(fx.Annotate(
			httpInstrumentation,
			fx.ResultTags(`group:"gin_mw"`),
		)),
	)
}

// httpInstrumentation opens the server span and records request metrics.
// It runs before the trace logger so the span is already in the context.
func httpInstrumentation(appCfg appconfig.AppConfig, cfg config.Config, tp trace.TracerProvider, mp metric.MeterProvider) middleware.Middleware {
	if !cfg.Tracing.Enabled && !cfg.Metrics.Enabled {
		return middleware.Middleware{}
	}
	return middleware.Middleware{
		Priority: 5,
		Handler: otelgin.Middleware(appCfg.ServiceName,
			otelgin.WithTracerProvider(tp),
			otelgin.WithMeterProvider(mp),
			otelgin.WithPropagators(otel.GetTextMapPropagator()),
			otelgin.WithGinFilter(otelinternal.FilterPaths),
		),
	}
}

func configModule(opts *observabilityOptions) fx.Option {
	var configOpts []config.Option

	if opts.config != nil {
		configOpts = append(configOpts, config.WithConfig(*opts.config))
	}
	if opts.disableTracing {
		configOpts = append(configOpts, config.WithDisableTracing())
	}
	if opts.disableMetrics {
		configOpts = append(configOpts, config.WithDisableMetrics())
	}

	return config.NewObservabilityConfigModule(configOpts...)
}
