package outbox

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"
)

const (
	idleDelay  = 2 * time.Second
	errorDelay = 5 * time.Second
)

// fetcher feeds due records to the sender. It covers records whose SendFunc
// was never called and deliveries that failed.
type fetcher struct {
	repository   repository
	entitiesChan chan<- *outboxEntity
	log          *zap.Logger
}

func newFetcher(repo repository, entitiesChan chan<- *outboxEntity, log *zap.Logger) *fetcher {
	return &fetcher{
		repository:   repo,
		entitiesChan: entitiesChan,
		log:          log.With(zap.String("component", "outbox")),
	}
}

func (f *fetcher) Run(ctx context.Context) error {
	for ctx.Err() == nil {
		entity, err := f.repository.FetchAndLock(ctx)
		if err != nil {
			if errors.Is(err, errEntityNotFound) {
				wait(ctx, idleDelay)
				continue
			}
			if ctx.Err() != nil {
				return nil
			}
			f.log.Error("failed to get outbox entity", zap.Error(err))
			wait(ctx, errorDelay)
			continue
		}

		if entity.AttemptsToSend > 1 {
			f.log.Info("redelivering outbox message",
				zap.String("id", entity.ID),
				zap.Int32("attempt", entity.AttemptsToSend))
		}

		select {
		case <-ctx.Done():
			return nil
		case f.entitiesChan <- entity:
		}
	}
	return nil
}

func wait(ctx context.Context, d time.Duration) {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
	case <-timer.C:
	}
}
