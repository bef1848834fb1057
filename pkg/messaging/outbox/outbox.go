// Package outbox stores messages in the same Mongo transaction as the
// business write and relays them to Kafka afterwards.
//
// A record is sent right after commit through SendFunc when possible. The
// fetcher picks up anything that was not confirmed, with exponential backoff,
// so every committed message is delivered at least once.
package outbox

import (
	"context"
	"fmt"
	"maps"
	"strconv"
	"time"

	"github.com/Sokol111/ecommerce-catalog-sync/pkg/core/logger"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

const (
	HeaderEventID   = "event-id"
	HeaderEventType = "event-type"
	HeaderSource    = "source"
	HeaderTimestamp = "timestamp"
)

type Message struct {
	Topic     string
	Key       string
	EventType string
	Payload   []byte
	Headers   map[string]string
}

type Outbox interface {
	// Create records msg using ctx, which should carry the caller's
	// transaction. The returned SendFunc must only be called after commit.
	Create(ctx context.Context, msg Message) (SendFunc, error)
}

// SendFunc hands a committed record to the sender without waiting for the fetcher.
type SendFunc func(ctx context.Context) error

type outbox struct {
	repository      repository
	entitiesChan    chan<- *outboxEntity
	tracePropagator tracePropagator
	source          string
	now             func() time.Time
}

func newOutbox(repo repository, entitiesChan chan<- *outboxEntity, propagator tracePropagator, source string) *outbox {
	return &outbox{
		repository:      repo,
		entitiesChan:    entitiesChan,
		tracePropagator: propagator,
		source:          source,
		now:             time.Now,
	}
}

func (o *outbox) Create(ctx context.Context, msg Message) (SendFunc, error) {
	if msg.Topic == "" {
		return nil, fmt.Errorf("outbox message topic is required")
	}

	now := o.now().UTC()
	id := uuid.NewString()

	headers := maps.Clone(msg.Headers)
	if headers == nil {
		headers = make(map[string]string, 6)
	}
	headers[HeaderEventID] = id
	headers[HeaderEventType] = msg.EventType
	headers[HeaderSource] = o.source
	headers[HeaderTimestamp] = strconv.FormatInt(now.UnixMilli(), 10)
	headers = o.tracePropagator.SaveTraceContext(ctx, headers)

	entity := &outboxEntity{
		ID:               id,
		Payload:          msg.Payload,
		Key:              msg.Key,
		Topic:            msg.Topic,
		Headers:          headers,
		Status:           StatusProcessing,
		CreatedAt:        now,
		LockExpiresAt:    now.Add(firstAttempt),
		NextAttemptAfter: now.Add(firstAttempt),
	}
	if err := o.repository.Create(ctx, entity); err != nil {
		return nil, fmt.Errorf("failed to create outbox message: %w", err)
	}

	o.log(ctx).Debug("outbox created", zap.String("id", id), zap.String("topic", msg.Topic))
	return o.sendFunc(entity), nil
}

func (o *outbox) sendFunc(entity *outboxEntity) SendFunc {
	return func(ctx context.Context) error {
		timer := time.NewTimer(time.Second)
		defer timer.Stop()
		select {
		case <-ctx.Done():
			return fmt.Errorf("outbox message %s not handed to sender: %w", entity.ID, ctx.Err())
		case o.entitiesChan <- entity:
			return nil
		case <-timer.C:
			o.log(ctx).Warn("sender queue is full, leaving message to the fetcher", zap.String("id", entity.ID))
			return fmt.Errorf("sender queue is full")
		}
	}
}

func (o *outbox) log(ctx context.Context) *zap.Logger {
	return logger.Get(ctx).With(zap.String("component", "outbox"))
}
