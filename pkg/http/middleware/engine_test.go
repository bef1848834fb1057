package middleware

import (
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func TestNewEngine_OrdersByPriorityAndSkipsNil(t *testing.T) {
	var order []int
	mark := func(n int) gin.HandlerFunc {
		return func(c *gin.Context) {
			order = append(order, n)
			c.Next()
		}
	}

	engine := newEngine([]Middleware{
		{Priority: 30, Handler: mark(30)},
		{Priority: 10, Handler: mark(10)},
		{Priority: 20},
		{Priority: 20, Handler: mark(20)},
	})
	engine.GET("/x", func(c *gin.Context) { c.Status(http.StatusNoContent) })

	w := serve(engine, http.MethodGet, "/x")

	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, []int{10, 20, 30}, order)
}
