package middleware

import (
	"github.com/Sokol111/ecommerce-catalog-sync/pkg/http/problems"
	"github.com/Sokol111/ecommerce-catalog-sync/pkg/http/server"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

type rateLimiter interface {
	Allow() bool
}

func newRateLimitMiddleware(conf server.RateLimitConfig, log *zap.Logger, priority int) Middleware {
	if !conf.IsEnabled() {
		return Middleware{Priority: priority}
	}

	log.Info("HTTP rate limit initialized",
		zap.Int("requests-per-second", conf.RequestsPerSecond),
		zap.Int("burst", conf.Burst),
	)
	limiter := rate.NewLimiter(rate.Limit(conf.RequestsPerSecond), conf.Burst)
	return Middleware{Priority: priority, Handler: rateLimitHandler(limiter)}
}

func rateLimitHandler(limiter rateLimiter) gin.HandlerFunc {
	return func(c *gin.Context) {
		if isHealthPath(c.Request.URL.Path) {
			c.Next()
			return
		}
		if !limiter.Allow() {
			abortWithProblem(c, ErrRateLimitExceeded, problems.TooManyRequests("rate limit exceeded, please try again later"))
			return
		}
		c.Next()
	}
}
