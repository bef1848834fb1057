package cart

import (
	"errors"
	"net/http"

	"github.com/Sokol111/ecommerce-catalog-sync/pkg/http/problems"
	"github.com/gin-gonic/gin"
)

const HeaderUserID = "X-User-Id"

type addItemRequest struct {
	ProductID int64 `json:"productId"`
	Quantity  int   `json:"quantity"`
}

type removeItemRequest struct {
	CartItemID int64 `json:"cartItemId"`
}

type handler struct {
	service Service
}

func newHandler(service Service) *handler {
	return &handler{service: service}
}

func registerRoutes(r *gin.Engine, h *handler) {
	r.GET("/cart", h.items)
	r.POST("/cart/items", h.addItem)
	r.PUT("/cart/update", h.updateItem)
	r.DELETE("/cart/remove", h.removeItem)
}

func (h *handler) items(c *gin.Context) {
	items, err := h.service.Items(c, c.GetHeader(HeaderUserID))
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"items": items})
}

func (h *handler) addItem(c *gin.Context) {
	var req addItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		_ = c.Error(err).SetMeta(problems.BadRequest("malformed request body"))
		return
	}
	item, err := h.service.AddItem(c, c.GetHeader(HeaderUserID), req.ProductID, req.Quantity)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, item)
}

func (h *handler) updateItem(c *gin.Context) {
	var req addItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		_ = c.Error(err).SetMeta(problems.BadRequest("malformed request body"))
		return
	}
	item, err := h.service.UpdateQuantity(c, c.GetHeader(HeaderUserID), req.ProductID, req.Quantity)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, item)
}

func (h *handler) removeItem(c *gin.Context) {
	var req removeItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		_ = c.Error(err).SetMeta(problems.BadRequest("malformed request body"))
		return
	}
	if err := h.service.RemoveItem(c, c.GetHeader(HeaderUserID), req.CartItemID); err != nil {
		fail(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func fail(c *gin.Context, err error) {
	switch {
	case errors.Is(err, ErrMissingUser):
		_ = c.Error(err).SetMeta(problems.New(http.StatusUnauthorized, err.Error()))
	case errors.Is(err, ErrInvalidItem):
		_ = c.Error(err).SetMeta(problems.BadRequest(err.Error()))
	case errors.Is(err, ErrProductNotFound), errors.Is(err, ErrItemNotFound):
		_ = c.Error(err).SetMeta(problems.NotFound(err.Error()))
	case errors.Is(err, ErrCatalogUnavailable):
		_ = c.Error(err).SetMeta(problems.New(http.StatusBadGateway, "catalog is unavailable"))
	default:
		_ = c.Error(err).SetMeta(problems.Internal("failed to process cart"))
	}
}
