package media

import (
	"context"
	"errors"
	"fmt"

	"github.com/Sokol111/ecommerce-catalog-sync/internal/events"
	"github.com/Sokol111/ecommerce-catalog-sync/pkg/core/logger"
	"github.com/Sokol111/ecommerce-catalog-sync/pkg/messaging/kafka/consumer"
	"github.com/Sokol111/ecommerce-catalog-sync/pkg/persistence"
	"go.uber.org/zap"
)

type mediaRemovedHandler struct {
	repo      Repository
	storage   ObjectStorage
	throttler *logger.LogThrottler
}

func newMediaRemovedHandler(repo Repository, storage ObjectStorage, log *zap.Logger) *mediaRemovedHandler {
	return &mediaRemovedHandler{
		repo:      repo,
		storage:   storage,
		throttler: logger.NewLogThrottler(log, 0),
	}
}

// Process deletes every named media. Unknown ids are skipped, and a storage
// failure is logged and not retried so the record is still removed.
func (h *mediaRemovedHandler) Process(ctx context.Context, event any) error {
	e, ok := event.(events.MediaRemoved)
	if !ok {
		return consumer.ErrSkipMessage
	}
	log := logger.Get(ctx)

	removed := 0
	for _, id := range e.MediaIDs {
		rec, err := h.repo.Find(ctx, id)
		if errors.Is(err, persistence.ErrEntityNotFound) {
			log.Debug("media already removed", zap.String("publicId", id))
			continue
		}
		if err != nil {
			return err
		}

		if err := h.storage.Delete(ctx, rec.PublicID); err != nil {
			h.throttler.Warn("storage-delete", "failed to delete media object",
				zap.String("publicId", rec.PublicID),
				zap.Error(err),
			)
		}

		if err := h.repo.Delete(ctx, rec.PublicID); err != nil {
			return fmt.Errorf("media %s object removed but record kept: %w", rec.PublicID, err)
		}
		removed++
	}

	log.Info("media removed",
		zap.Int64("productId", e.ID),
		zap.Int("requested", len(e.MediaIDs)),
		zap.Int("removed", removed),
	)
	return nil
}
