package catalog

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Sokol111/ecommerce-catalog-sync/internal/events"
	"github.com/Sokol111/ecommerce-catalog-sync/pkg/core/logger"
	"github.com/Sokol111/ecommerce-catalog-sync/pkg/messaging/outbox"
	"github.com/Sokol111/ecommerce-catalog-sync/pkg/persistence"
	"github.com/samber/lo"
	"go.uber.org/zap"
)

// Store persists product aggregates. Every method joins the transaction
// carried by ctx.
type Store interface {
	Load(ctx context.Context, id int64) (Aggregate, error)
	// List returns every product ordered by id.
	List(ctx context.Context) ([]Summary, error)
	Create(ctx context.Context, agg Aggregate) (Aggregate, error)
	// Commit applies ws and returns the reloaded aggregate.
	Commit(ctx context.Context, id int64, ws WriteSet) (Aggregate, error)
	// Delete removes the aggregate and returns what it held.
	Delete(ctx context.Context, id int64) (Aggregate, error)
	// ReferencedMediaIDs returns the subset of ids used by any product other
	// than excludeProductID.
	ReferencedMediaIDs(ctx context.Context, ids []string, excludeProductID int64) ([]string, error)
}

type Service interface {
	Get(ctx context.Context, id int64) (Aggregate, error)
	List(ctx context.Context) ([]Summary, error)
	Create(ctx context.Context, in CreateProduct) (Aggregate, error)
	Update(ctx context.Context, id int64, patch ProductPatch) (Aggregate, error)
	Delete(ctx context.Context, id int64) error
}

type service struct {
	store     Store
	txManager persistence.TxManager
	publisher Publisher
	now       func() time.Time
}

func newService(store Store, txManager persistence.TxManager, publisher Publisher) Service {
	return &service{
		store:     store,
		txManager: txManager,
		publisher: publisher,
		now:       func() time.Time { return time.Now().UTC().Truncate(time.Millisecond) },
	}
}

// txResult is what a transaction hands back to be acted on after commit.
type txResult struct {
	aggregate Aggregate
	sends     []outbox.SendFunc
}

func (s *service) Get(ctx context.Context, id int64) (Aggregate, error) {
	agg, err := s.store.Load(ctx, id)
	if err != nil {
		return Aggregate{}, classify(err, id)
	}
	return agg, nil
}

func (s *service) List(ctx context.Context) ([]Summary, error) {
	products, err := s.store.List(ctx)
	if err != nil {
		return nil, classify(err, 0)
	}
	return products, nil
}

func (s *service) Create(ctx context.Context, in CreateProduct) (Aggregate, error) {
	agg, err := newAggregate(in, s.now())
	if err != nil {
		return Aggregate{}, err
	}

	res, err := s.inTx(ctx, func(txCtx context.Context) (*txResult, error) {
		created, err := s.store.Create(txCtx, agg)
		if err != nil {
			return nil, err
		}
		send, err := s.publisher.Publish(txCtx, events.ProductAdded{
			ID:        created.ID,
			Name:      created.Name,
			ShortDesc: created.ShortDesc,
			UpdatedAt: created.UpdatedAt,
		})
		if err != nil {
			return nil, err
		}
		return &txResult{aggregate: created, sends: []outbox.SendFunc{send}}, nil
	})
	if err != nil {
		return Aggregate{}, classify(err, 0)
	}

	s.flush(ctx, res.sends)
	logger.Get(ctx).Info("product created", zap.Int64("productId", res.aggregate.ID))
	return res.aggregate, nil
}

func (s *service) Update(ctx context.Context, id int64, patch ProductPatch) (Aggregate, error) {
	var orphaned []string

	res, err := s.inTx(ctx, func(txCtx context.Context) (*txResult, error) {
		existing, err := s.store.Load(txCtx, id)
		if err != nil {
			return nil, err
		}

		ws, candidates, err := Reconcile(existing, patch, s.now())
		if err != nil {
			return nil, err
		}

		updated, err := s.store.Commit(txCtx, id, ws)
		if err != nil {
			return nil, err
		}

		orphaned, err = s.unreferenced(txCtx, candidates, id)
		if err != nil {
			return nil, err
		}

		var sends []outbox.SendFunc
		send, err := s.publisher.Publish(txCtx, events.ProductUpdated{
			ID:        updated.ID,
			Name:      updated.Name,
			ShortDesc: updated.ShortDesc,
			UpdatedAt: updated.UpdatedAt,
		})
		if err != nil {
			return nil, err
		}
		sends = append(sends, send)

		if len(orphaned) > 0 {
			send, err := s.publisher.Publish(txCtx, events.MediaRemoved{ID: id, MediaIDs: orphaned, RemovedAt: updated.UpdatedAt})
			if err != nil {
				return nil, err
			}
			sends = append(sends, send)
		}
		return &txResult{aggregate: updated, sends: sends}, nil
	})
	if err != nil {
		return Aggregate{}, classify(err, id)
	}

	s.flush(ctx, res.sends)
	logger.Get(ctx).Info("product updated",
		zap.Int64("productId", id),
		zap.Strings("orphanedMediaIds", orphaned),
	)
	return res.aggregate, nil
}

func (s *service) Delete(ctx context.Context, id int64) error {
	var mediaIDs []string

	res, err := s.inTx(ctx, func(txCtx context.Context) (*txResult, error) {
		removed, err := s.store.Delete(txCtx, id)
		if err != nil {
			return nil, err
		}

		mediaIDs, err = s.unreferenced(txCtx, removed.MediaIDs(), id)
		if err != nil {
			return nil, err
		}

		removedAt := s.now()
		send, err := s.publisher.Publish(txCtx, events.ProductRemoved{ID: id, RemovedAt: removedAt})
		if err != nil {
			return nil, err
		}
		sends := []outbox.SendFunc{send}

		if len(mediaIDs) > 0 {
			send, err := s.publisher.Publish(txCtx, events.MediaRemoved{ID: id, MediaIDs: mediaIDs, RemovedAt: removedAt})
			if err != nil {
				return nil, err
			}
			sends = append(sends, send)
		}
		return &txResult{aggregate: removed, sends: sends}, nil
	})
	if err != nil {
		return classify(err, id)
	}

	s.flush(ctx, res.sends)
	logger.Get(ctx).Info("product deleted",
		zap.Int64("productId", id),
		zap.Strings("mediaIds", mediaIDs),
	)
	return nil
}

// unreferenced drops from ids every media id another product still uses.
func (s *service) unreferenced(ctx context.Context, ids []string, productID int64) ([]string, error) {
	ids = lo.Uniq(ids)
	if len(ids) == 0 {
		return nil, nil
	}
	inUse, err := s.store.ReferencedMediaIDs(ctx, ids, productID)
	if err != nil {
		return nil, err
	}
	return lo.Without(ids, inUse...), nil
}

func (s *service) inTx(ctx context.Context, fn func(txCtx context.Context) (*txResult, error)) (*txResult, error) {
	res, err := s.txManager.WithTransaction(ctx, func(txCtx context.Context) (any, error) {
		return fn(txCtx)
	})
	if err != nil {
		return nil, err
	}
	return res.(*txResult), nil
}

// flush hands committed outbox records to the sender. A failure only delays
// delivery until the fetcher picks the record up.
func (s *service) flush(ctx context.Context, sends []outbox.SendFunc) {
	for _, send := range sends {
		if err := send(ctx); err != nil {
			logger.Get(ctx).Warn("event left for outbox fetcher", zap.Error(err))
		}
	}
}

func classify(err error, id int64) error {
	switch {
	case errors.Is(err, persistence.ErrEntityNotFound):
		return fmt.Errorf("%w: %d", ErrNotFound, id)
	case errors.Is(err, ErrValidation), errors.Is(err, ErrNotFound),
		errors.Is(err, ErrPersistence), errors.Is(err, ErrPublish):
		return err
	default:
		return fmt.Errorf("%w: %w", ErrPersistence, err)
	}
}
