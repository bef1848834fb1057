package cart

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/Sokol111/ecommerce-catalog-sync/pkg/http/client"
	"github.com/samber/lo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/trace/noop"
)

func newTestCatalog(t *testing.T, handler http.HandlerFunc) ProductReader {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	c := client.New(client.Config{
		BaseURL:             srv.URL,
		Timeout:             lo.ToPtr(client.DefaultTimeout),
		MaxIdleConnsPerHost: lo.ToPtr(2),
		IdleConnTimeout:     lo.ToPtr(client.DefaultIdleConnTimeout),
		MaxConnLifetime:     lo.ToPtr(client.DefaultMaxConnLifetime),
	}, noop.NewTracerProvider())
	return newCatalogClient(c)
}

func TestCatalogClient_GetProduct(t *testing.T) {
	t.Run("decodes product", func(t *testing.T) {
		products := newTestCatalog(t, func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "/product/7", r.URL.Path)
			w.Header().Set("Content-Type", "application/json")
			_, _ = w.Write([]byte(`{"id":7,"name":"Lamp","originalPrice":200,"discount":{"percentage":10,"discountPrice":20},"variants":[]}`))
		})

		p, err := products.GetProduct(context.Background(), 7)

		require.NoError(t, err)
		assert.Equal(t, "Lamp", p.Name)
		assert.Equal(t, 180.0, p.Price())
	})

	t.Run("not found", func(t *testing.T) {
		products := newTestCatalog(t, func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusNotFound)
		})

		_, err := products.GetProduct(context.Background(), 7)

		assert.ErrorIs(t, err, ErrProductNotFound)
	})

	t.Run("server error", func(t *testing.T) {
		products := newTestCatalog(t, func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusInternalServerError)
		})

		_, err := products.GetProduct(context.Background(), 7)

		assert.ErrorIs(t, err, ErrCatalogUnavailable)
	})
}
