package middleware

import (
	"net/http"
	"testing"

	"github.com/Sokol111/ecommerce-catalog-sync/pkg/http/server"
	"github.com/gin-gonic/gin"
	"github.com/samber/lo"
	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
)

type mockRateLimiter struct {
	allow bool
	calls int
}

func (m *mockRateLimiter) Allow() bool {
	m.calls++
	return m.allow
}

func TestRateLimitHandler(t *testing.T) {
	ok := func(c *gin.Context) { c.Status(http.StatusOK) }

	t.Run("allows request", func(t *testing.T) {
		limiter := &mockRateLimiter{allow: true}
		e := newTestEngine(rateLimitHandler(limiter))
		e.GET("/x", ok)

		w := serve(e, http.MethodGet, "/x")

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, 1, limiter.calls)
	})

	t.Run("rejects with 429", func(t *testing.T) {
		limiter := &mockRateLimiter{allow: false}
		e := newTestEngine(rateLimitHandler(limiter))
		handlerCalled := false
		e.GET("/x", func(c *gin.Context) { handlerCalled = true })

		w := serve(e, http.MethodGet, "/x")

		assert.Equal(t, http.StatusTooManyRequests, w.Code)
		assert.False(t, handlerCalled)
		assert.Equal(t, http.StatusTooManyRequests, decodeProblem(t, w).Status)
	})

	t.Run("health checks bypass limiter", func(t *testing.T) {
		limiter := &mockRateLimiter{allow: false}
		e := newTestEngine(rateLimitHandler(limiter))
		e.GET("/health/live", ok)

		w := serve(e, http.MethodGet, "/health/live")

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Zero(t, limiter.calls)
	})
}

func TestNewRateLimitMiddleware_Disabled(t *testing.T) {
	mw := newRateLimitMiddleware(server.RateLimitConfig{Enabled: lo.ToPtr(false)}, zap.NewNop(), 20)

	assert.Nil(t, mw.Handler)
	assert.Equal(t, 20, mw.Priority)
}
