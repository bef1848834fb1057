package middleware

import (
	"time"

	"github.com/Sokol111/ecommerce-catalog-sync/pkg/core/logger"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

func loggerMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		if isHealthPath(c.Request.URL.Path) {
			c.Next()
			return
		}

		start := time.Now()
		c.Next()

		fields := append(requestFields(c),
			zap.String("route", c.FullPath()),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("latency", time.Since(start)),
			zap.String("user_agent", c.Request.UserAgent()),
		)
		logger.Get(c.Request.Context()).Debug("incoming request", fields...)
	}
}
