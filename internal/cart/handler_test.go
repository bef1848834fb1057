package cart

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/Sokol111/ecommerce-catalog-sync/pkg/http/middleware"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

type mockService struct {
	mock.Mock
}

func (m *mockService) AddItem(ctx context.Context, userID string, productID int64, quantity int) (LineItem, error) {
	args := m.Called(ctx, userID, productID, quantity)
	return args.Get(0).(LineItem), args.Error(1)
}

func (m *mockService) Items(ctx context.Context, userID string) ([]LineItem, error) {
	args := m.Called(ctx, userID)
	return args.Get(0).([]LineItem), args.Error(1)
}

func (m *mockService) UpdateQuantity(ctx context.Context, userID string, productID int64, quantity int) (LineItem, error) {
	args := m.Called(ctx, userID, productID, quantity)
	return args.Get(0).(LineItem), args.Error(1)
}

func (m *mockService) RemoveItem(ctx context.Context, userID string, itemID int64) error {
	return m.Called(ctx, userID, itemID).Error(0)
}

func newTestRouter(svc Service) *gin.Engine {
	gin.SetMode(gin.TestMode)
	e := gin.New()
	e.Use(middleware.ProblemDetails())
	registerRoutes(e, newHandler(svc))
	return e
}

func TestHandler_AddItem(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		status int
	}{
		{name: "created", status: http.StatusCreated},
		{name: "unknown product", err: ErrProductNotFound, status: http.StatusNotFound},
		{name: "catalog down", err: ErrCatalogUnavailable, status: http.StatusBadGateway},
		{name: "missing user", err: ErrMissingUser, status: http.StatusUnauthorized},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := &mockService{}
			svc.On("AddItem", mock.Anything, "alice", int64(7), 2).Return(LineItem{ProductID: 7, Quantity: 2}, tt.err)
			e := newTestRouter(svc)

			req := httptest.NewRequest(http.MethodPost, "/cart/items", strings.NewReader(`{"productId":7,"quantity":2}`))
			req.Header.Set(HeaderUserID, "alice")
			req.Header.Set("Content-Type", "application/json")
			w := httptest.NewRecorder()
			e.ServeHTTP(w, req)

			assert.Equal(t, tt.status, w.Code)
		})
	}
}

func TestHandler_Items(t *testing.T) {
	svc := &mockService{}
	svc.On("Items", mock.Anything, "alice").Return([]LineItem{{ProductID: 7, ProductName: "Lamp", Quantity: 1}}, nil)
	e := newTestRouter(svc)

	req := httptest.NewRequest(http.MethodGet, "/cart", nil)
	req.Header.Set(HeaderUserID, "alice")
	w := httptest.NewRecorder()
	e.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"productName":"Lamp"`)
}

func TestHandler_UpdateItem(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		status int
	}{
		{name: "updated", status: http.StatusOK},
		{name: "not in cart", err: ErrItemNotFound, status: http.StatusNotFound},
		{name: "invalid quantity", err: ErrInvalidItem, status: http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := &mockService{}
			svc.On("UpdateQuantity", mock.Anything, "alice", int64(7), 4).Return(LineItem{ProductID: 7, Quantity: 4}, tt.err)
			e := newTestRouter(svc)

			req := httptest.NewRequest(http.MethodPut, "/cart/update", strings.NewReader(`{"productId":7,"quantity":4}`))
			req.Header.Set(HeaderUserID, "alice")
			req.Header.Set("Content-Type", "application/json")
			w := httptest.NewRecorder()
			e.ServeHTTP(w, req)

			assert.Equal(t, tt.status, w.Code)
		})
	}
}

func TestHandler_RemoveItem(t *testing.T) {
	t.Run("removed", func(t *testing.T) {
		svc := &mockService{}
		svc.On("RemoveItem", mock.Anything, "alice", int64(3)).Return(nil)
		e := newTestRouter(svc)

		req := httptest.NewRequest(http.MethodDelete, "/cart/remove", strings.NewReader(`{"cartItemId":3}`))
		req.Header.Set(HeaderUserID, "alice")
		req.Header.Set("Content-Type", "application/json")
		w := httptest.NewRecorder()
		e.ServeHTTP(w, req)

		assert.Equal(t, http.StatusNoContent, w.Code)
		svc.AssertExpectations(t)
	})

	t.Run("malformed body", func(t *testing.T) {
		e := newTestRouter(&mockService{})

		req := httptest.NewRequest(http.MethodDelete, "/cart/remove", strings.NewReader(`{"cartItemId":`))
		req.Header.Set(HeaderUserID, "alice")
		w := httptest.NewRecorder()
		e.ServeHTTP(w, req)

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}
