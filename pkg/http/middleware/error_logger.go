package middleware

import (
	"net/http"

	"github.com/Sokol111/ecommerce-catalog-sync/pkg/core/logger"
	"github.com/Sokol111/ecommerce-catalog-sync/pkg/http/problems"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// errorLoggerMiddleware logs handler errors: 5xx at error level, the rest at
// debug since they describe the client's mistake.
func errorLoggerMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if len(c.Errors) == 0 {
			return
		}
		log := logger.Get(c.Request.Context())
		for _, e := range c.Errors {
			status := c.Writer.Status()
			if p, ok := e.Meta.(*problems.Problem); ok {
				status = p.Status
			}
			fields := append(requestFields(c),
				zap.Int("status", status),
				zap.String("error", e.Error()),
			)
			if status >= http.StatusInternalServerError {
				log.Error("request error", fields...)
			} else {
				log.Debug("request rejected", fields...)
			}
		}
	}
}
