package cart

import (
	"context"
	"fmt"
	"strconv"

	"github.com/Sokol111/ecommerce-catalog-sync/pkg/http/client"
)

type ProductReader interface {
	GetProduct(ctx context.Context, id int64) (Product, error)
}

type catalogClient struct {
	http *client.Client
}

func newCatalogClient(c *client.Client) ProductReader {
	return &catalogClient{http: c}
}

func (c *catalogClient) GetProduct(ctx context.Context, id int64) (Product, error) {
	var p Product
	if err := c.http.GetJSON(ctx, "/product/"+strconv.FormatInt(id, 10), nil, &p); err != nil {
		if client.IsNotFound(err) {
			return Product{}, fmt.Errorf("%w: %d", ErrProductNotFound, id)
		}
		return Product{}, fmt.Errorf("%w: %w", ErrCatalogUnavailable, err)
	}
	return p, nil
}
