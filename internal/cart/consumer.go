package cart

import (
	"context"
	"fmt"

	"github.com/Sokol111/ecommerce-catalog-sync/internal/events"
	"github.com/Sokol111/ecommerce-catalog-sync/pkg/core/logger"
	"github.com/Sokol111/ecommerce-catalog-sync/pkg/messaging/kafka/consumer"
	"go.uber.org/zap"
)

// productRemovedHandler drops a removed product from every cart. Deleting
// nothing counts as success, so redelivery is harmless.
type productRemovedHandler struct {
	store Store
}

func newProductRemovedHandler(store Store) *productRemovedHandler {
	return &productRemovedHandler{store: store}
}

func (h *productRemovedHandler) Process(ctx context.Context, event any) error {
	e, ok := event.(events.ProductRemoved)
	if !ok {
		return consumer.ErrSkipMessage
	}

	n, err := h.store.DeleteByProduct(ctx, e.ID)
	if err != nil {
		return fmt.Errorf("failed to clean carts: %w", err)
	}

	logger.Get(ctx).Info("removed product from carts",
		zap.Int64("productId", e.ID),
		zap.Int64("lineItems", n),
	)
	return nil
}
