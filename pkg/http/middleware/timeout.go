package middleware

import (
	"context"
	"errors"

	"github.com/Sokol111/ecommerce-catalog-sync/pkg/http/problems"
	"github.com/Sokol111/ecommerce-catalog-sync/pkg/http/server"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// newTimeoutMiddleware puts a deadline on the request context. Handlers that
// honor ctx return early; if nothing was written by then the client gets 504.
func newTimeoutMiddleware(conf server.TimeoutConfig, log *zap.Logger, priority int) Middleware {
	if !conf.IsEnabled() {
		return Middleware{Priority: priority}
	}

	log.Info("HTTP timeout middleware initialized", zap.Duration("request-timeout", conf.RequestTimeout))

	return Middleware{
		Priority: priority,
		Handler: func(c *gin.Context) {
			if isHealthPath(c.Request.URL.Path) {
				c.Next()
				return
			}

			ctx, cancel := context.WithTimeout(c.Request.Context(), conf.RequestTimeout)
			defer cancel()
			c.Request = c.Request.WithContext(ctx)

			c.Next()

			if errors.Is(ctx.Err(), context.DeadlineExceeded) && !c.Writer.Written() {
				log.Warn("HTTP request timeout", append(requestFields(c), zap.Duration("timeout", conf.RequestTimeout))...)
				abortWithProblem(c, ErrRequestTimeout, problems.GatewayTimeout("request took too long to process"))
			}
		},
	}
}
