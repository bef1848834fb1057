package middleware

import (
	"errors"
	"strings"

	"github.com/Sokol111/ecommerce-catalog-sync/pkg/http/problems"
	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

var (
	ErrRequestTimeout    = errors.New("request timeout")
	ErrRateLimitExceeded = errors.New("rate limit exceeded")
	ErrBulkheadFull      = errors.New("too many concurrent requests")
	ErrPanic             = errors.New("internal server error")
)

// Middleware is a gin handler contributed to the "gin_mw" group. A nil
// Handler is skipped.
type Middleware struct {
	Priority int
	Handler  gin.HandlerFunc
}

func requestFields(c *gin.Context) []zap.Field {
	return []zap.Field{
		zap.String("method", c.Request.Method),
		zap.String("path", c.Request.URL.Path),
		zap.String("query", c.Request.URL.RawQuery),
		zap.String("client_ip", c.ClientIP()),
	}
}

func isHealthPath(path string) bool {
	return strings.HasPrefix(path, "/health/")
}

// abortWithProblem writes p immediately. Used by middlewares that run
// outside the problem middleware and so cannot defer to it.
func abortWithProblem(c *gin.Context, err error, p *problems.Problem) {
	_ = c.Error(err).SetMeta(p)
	writeProblem(c, p)
	c.Abort()
}

func writeProblem(c *gin.Context, p *problems.Problem) {
	if p.Instance == "" {
		p.Instance = c.Request.URL.Path
	}
	if p.TraceID == "" {
		if sc := trace.SpanContextFromContext(c.Request.Context()); sc.IsValid() {
			p.TraceID = sc.TraceID().String()
		}
	}
	c.Header("Content-Type", problems.ContentType)
	c.JSON(p.Status, p)
}
