package search

import (
	"context"
	"time"

	"github.com/Sokol111/ecommerce-catalog-sync/internal/events"
	"github.com/Sokol111/ecommerce-catalog-sync/pkg/core/logger"
	"github.com/Sokol111/ecommerce-catalog-sync/pkg/messaging/kafka/consumer"
	"go.uber.org/zap"
)

type projectionHandler struct {
	index Index
}

func newProjectionHandler(index Index) *projectionHandler {
	return &projectionHandler{index: index}
}

func (h *projectionHandler) Process(ctx context.Context, event any) error {
	switch e := event.(type) {
	case events.ProductAdded:
		return h.upsert(ctx, e.Type(), e.ID, e.Name, e.ShortDesc, e.UpdatedAt)
	case events.ProductUpdated:
		return h.upsert(ctx, e.Type(), e.ID, e.Name, e.ShortDesc, e.UpdatedAt)
	case events.ProductRemoved:
		if err := h.index.Delete(ctx, e.ID, e.RemovedAt); err != nil {
			return err
		}
		logger.Get(ctx).Info("product removed from search", zap.Int64("productId", e.ID))
		return nil
	default:
		return consumer.ErrSkipMessage
	}
}

func (h *projectionHandler) upsert(ctx context.Context, typ events.Type, id int64, name, shortDesc string, updatedAt time.Time) error {
	doc := Document{ProductID: id, Name: name, ShortDesc: shortDesc}
	if !updatedAt.IsZero() {
		doc.UpdatedAt = &updatedAt
	}

	applied, err := h.index.Upsert(ctx, doc)
	if err != nil {
		return err
	}

	log := logger.Get(ctx).With(zap.Int64("productId", id), zap.Stringer("type", typ))
	if !applied {
		log.Debug("stale search update ignored")
		return nil
	}
	log.Info("search projection updated")
	return nil
}
