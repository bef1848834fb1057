package middleware

import (
	"context"
	"time"

	"github.com/Sokol111/ecommerce-catalog-sync/pkg/http/problems"
	"github.com/Sokol111/ecommerce-catalog-sync/pkg/http/server"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"golang.org/x/sync/semaphore"
)

type weightedSemaphore interface {
	Acquire(ctx context.Context, n int64) error
	Release(n int64)
}

// newBulkheadMiddleware caps concurrent requests. A request that cannot get a
// slot within the configured wait is rejected with 503.
func newBulkheadMiddleware(conf server.BulkheadConfig, log *zap.Logger, priority int) Middleware {
	if !conf.IsEnabled() {
		return Middleware{Priority: priority}
	}

	log.Info("HTTP bulkhead initialized",
		zap.Int("max-concurrent", conf.MaxConcurrent),
		zap.Duration("timeout", conf.Timeout),
	)
	sem := semaphore.NewWeighted(int64(conf.MaxConcurrent))
	return Middleware{Priority: priority, Handler: bulkheadHandler(sem, conf.Timeout, log)}
}

func bulkheadHandler(sem weightedSemaphore, wait time.Duration, log *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		if isHealthPath(c.Request.URL.Path) {
			c.Next()
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), wait)
		err := sem.Acquire(ctx, 1)
		cancel()
		if err != nil {
			log.Warn("HTTP bulkhead full, rejecting request", append(requestFields(c), zap.Error(err))...)
			abortWithProblem(c, ErrBulkheadFull, problems.ServiceUnavailable("too many concurrent requests, please try again later"))
			return
		}
		defer sem.Release(1)

		c.Next()
	}
}
