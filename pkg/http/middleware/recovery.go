package middleware

import (
	"runtime/debug"

	"github.com/Sokol111/ecommerce-catalog-sync/pkg/core/logger"
	"github.com/Sokol111/ecommerce-catalog-sync/pkg/http/problems"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

func recoveryMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			if r := recover(); r != nil {
				fields := append(requestFields(c),
					zap.Any("panic", r),
					zap.ByteString("stack", debug.Stack()),
				)
				logger.Get(c.Request.Context()).Error("panic recovered", fields...)
				if c.Writer.Written() {
					c.Abort()
					return
				}
				abortWithProblem(c, ErrPanic, problems.Internal("internal server error"))
			}
		}()
		c.Next()
	}
}
