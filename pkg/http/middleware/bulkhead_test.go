package middleware

import (
	"context"
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/Sokol111/ecommerce-catalog-sync/pkg/http/server"
	"github.com/gin-gonic/gin"
	"github.com/samber/lo"
	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
	"golang.org/x/sync/semaphore"
)

type failingSemaphore struct{}

func (failingSemaphore) Acquire(context.Context, int64) error { return errors.New("deadline") }
func (failingSemaphore) Release(int64)                        {}

func TestBulkheadHandler(t *testing.T) {
	t.Run("releases slot after request", func(t *testing.T) {
		sem := semaphore.NewWeighted(1)
		e := newTestEngine(bulkheadHandler(sem, 10*time.Millisecond, zap.NewNop()))
		e.GET("/x", func(c *gin.Context) { c.Status(http.StatusOK) })

		first := serve(e, http.MethodGet, "/x")
		second := serve(e, http.MethodGet, "/x")

		assert.Equal(t, http.StatusOK, first.Code)
		assert.Equal(t, http.StatusOK, second.Code)
		assert.True(t, sem.TryAcquire(1))
	})

	t.Run("rejects when full", func(t *testing.T) {
		e := newTestEngine(bulkheadHandler(failingSemaphore{}, time.Millisecond, zap.NewNop()))
		e.GET("/x", func(c *gin.Context) { c.Status(http.StatusOK) })

		w := serve(e, http.MethodGet, "/x")

		assert.Equal(t, http.StatusServiceUnavailable, w.Code)
		assert.Equal(t, "too many concurrent requests, please try again later", decodeProblem(t, w).Detail)
	})

	t.Run("health bypasses bulkhead", func(t *testing.T) {
		e := newTestEngine(bulkheadHandler(failingSemaphore{}, time.Millisecond, zap.NewNop()))
		e.GET("/health/ready", func(c *gin.Context) { c.Status(http.StatusOK) })

		w := serve(e, http.MethodGet, "/health/ready")

		assert.Equal(t, http.StatusOK, w.Code)
	})
}

func TestNewBulkheadMiddleware_Disabled(t *testing.T) {
	mw := newBulkheadMiddleware(server.BulkheadConfig{Enabled: lo.ToPtr(false)}, zap.NewNop(), 30)

	assert.Nil(t, mw.Handler)
}
