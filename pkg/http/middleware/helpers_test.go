package middleware

import (
	"encoding/json"
	"net/http/httptest"
	"testing"

	"github.com/Sokol111/ecommerce-catalog-sync/pkg/http/problems"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func newTestEngine(mws ...gin.HandlerFunc) *gin.Engine {
	e := gin.New()
	e.ContextWithFallback = true
	e.Use(mws...)
	return e
}

func serve(e *gin.Engine, method, path string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	e.ServeHTTP(w, httptest.NewRequest(method, path, nil))
	return w
}

func decodeProblem(t *testing.T, w *httptest.ResponseRecorder) problems.Problem {
	t.Helper()
	require.Equal(t, problems.ContentType, w.Header().Get("Content-Type"))
	var p problems.Problem
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &p))
	return p
}

