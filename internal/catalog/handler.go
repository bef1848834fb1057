package catalog

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/Sokol111/ecommerce-catalog-sync/pkg/http/problems"
	"github.com/gin-gonic/gin"
)

const (
	HeaderUserRole = "X-User-Role"
	RoleAdmin      = "ADMIN"
)

type handler struct {
	service Service
}

func newHandler(service Service) *handler {
	return &handler{service: service}
}

func registerRoutes(r *gin.Engine, h *handler) {
	r.GET("/product/all", h.list)
	r.GET("/product/:id", h.get)

	admin := r.Group("/product", requireAdmin)
	admin.POST("", h.create)
	admin.PATCH("/:id", h.update)
	admin.DELETE("/:id", h.delete)
}

func requireAdmin(c *gin.Context) {
	if c.GetHeader(HeaderUserRole) != RoleAdmin {
		_ = c.Error(ErrForbidden).SetMeta(problems.Forbidden(ErrForbidden.Error()))
		c.Abort()
		return
	}
	c.Next()
}

func (h *handler) get(c *gin.Context) {
	id, ok := productID(c)
	if !ok {
		return
	}
	agg, err := h.service.Get(c, id)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, agg)
}

func (h *handler) list(c *gin.Context) {
	products, err := h.service.List(c)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"products": products})
}

func (h *handler) create(c *gin.Context) {
	var in CreateProduct
	if !bindJSON(c, &in) {
		return
	}
	agg, err := h.service.Create(c, in)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, agg)
}

func (h *handler) update(c *gin.Context) {
	id, ok := productID(c)
	if !ok {
		return
	}
	var patch ProductPatch
	if !bindJSON(c, &patch) {
		return
	}
	agg, err := h.service.Update(c, id, patch)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, agg)
}

func (h *handler) delete(c *gin.Context) {
	id, ok := productID(c)
	if !ok {
		return
	}
	if err := h.service.Delete(c, id); err != nil {
		fail(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func productID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err == nil && id <= 0 {
		err = errors.New("non-positive product id")
	}
	if err != nil {
		_ = c.Error(err).SetMeta(problems.BadRequest("product id must be a positive integer"))
		return 0, false
	}
	return id, true
}

// bindJSON keeps the absent/null distinction of Field, which decodes itself.
func bindJSON(c *gin.Context, dst any) bool {
	if err := c.ShouldBindJSON(dst); err != nil {
		_ = c.Error(err).SetMeta(problems.BadRequest("malformed request body: " + err.Error()))
		return false
	}
	return true
}

func fail(c *gin.Context, err error) {
	var validation *ValidationError
	switch {
	case errors.As(err, &validation):
		_ = c.Error(err).SetMeta(problems.BadRequest(ErrValidation.Error()).WithFields(validation.Fields))
	case errors.Is(err, ErrNotFound):
		_ = c.Error(err).SetMeta(problems.NotFound(err.Error()))
	default:
		_ = c.Error(err).SetMeta(problems.Internal("failed to process product"))
	}
}
