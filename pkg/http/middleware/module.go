package middleware

import (
	"github.com/Sokol111/ecommerce-catalog-sync/pkg/http/server"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

// NewGinModule provides *gin.Engine (also as http.Handler) with the
// standard middleware chain. Lower priority runs earlier:
//
//	 5 - otel instrumentation (observability)
//	10 - Timeout
//	15 - trace logger (observability)
//	20 - RateLimit
//	30 - Bulkhead
//	40 - Recovery
//	50 - Logger
//	70 - ErrorLogger
//	80 - Problem
func NewGinModule() fx.Option {
	return fx.Options(
		provide(func(conf server.Config, log *zap.Logger) Middleware {
			return newTimeoutMiddleware(conf.Timeout, log, 10)
		}),
		provide(func(conf server.Config, log *zap.Logger) Middleware {
			return newRateLimitMiddleware(conf.RateLimit, log, 20)
		}),
		provide(func(conf server.Config, log *zap.Logger) Middleware {
			return newBulkheadMiddleware(conf.Bulkhead, log, 30)
		}),
		provide(func() Middleware { return Middleware{Priority: 40, Handler: recoveryMiddleware()} }),
		provide(func() Middleware { return Middleware{Priority: 50, Handler: loggerMiddleware()} }),
		provide(func() Middleware { return Middleware{Priority: 70, Handler: errorLoggerMiddleware()} }),
		provide(func() Middleware { return Middleware{Priority: 80, Handler: ProblemDetails()} }),
		fx.Provide(provideGinAndHandler),
	)
}

func provide(constructor any) fx.Option {
	return fx.Provide(fx.Annotate(constructor, fx.ResultTags(`group:"gin_mw"`)))
}
