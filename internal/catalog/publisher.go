package catalog

import (
	"context"
	"fmt"
	"strconv"

	"github.com/Sokol111/ecommerce-catalog-sync/internal/events"
	"github.com/Sokol111/ecommerce-catalog-sync/pkg/messaging/outbox"
)

// Publisher records events in the outbox. Publish must be called with the
// transaction context of the write the event describes.
type Publisher interface {
	Publish(ctx context.Context, e events.Event) (outbox.SendFunc, error)
}

type outboxPublisher struct {
	outbox outbox.Outbox
}

func newPublisher(o outbox.Outbox) Publisher {
	return &outboxPublisher{outbox: o}
}

func (p *outboxPublisher) Publish(ctx context.Context, e events.Event) (outbox.SendFunc, error) {
	payload, err := events.Encode(e)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrPublish, err)
	}

	send, err := p.outbox.Create(ctx, outbox.Message{
		Topic:     e.Type().Topic(),
		Key:       strconv.FormatInt(e.ProductID(), 10),
		EventType: e.Type().String(),
		Payload:   payload,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %s for product %d: %w", ErrPublish, e.Type(), e.ProductID(), err)
	}
	return send, nil
}
