package consumer

import (
	"context"
	"fmt"

	"github.com/Sokol111/ecommerce-catalog-sync/pkg/core/logger"
	"github.com/Sokol111/ecommerce-catalog-sync/pkg/messaging/inbox"
	"github.com/confluentinc/confluent-kafka-go/v2/kafka"
	"go.uber.org/zap"
)

type executor interface {
	Execute(ctx context.Context, fn func(ctx context.Context) error) error
}

// processor handles messages one at a time in the order the reader delivers them.
type processor struct {
	name          string
	messagesChan  <-chan *kafka.Message
	handler       Handler
	deserializer  Deserializer
	inbox         inbox.Inbox
	log           *zap.Logger
	resultHandler *resultHandler
	retryExecutor executor
	tracer        MessageTracer
}

func newProcessor(
	name string,
	messagesChan <-chan *kafka.Message,
	handler Handler,
	deserializer Deserializer,
	ib inbox.Inbox,
	log *zap.Logger,
	resultHandler *resultHandler,
	retryExecutor executor,
	tracer MessageTracer,
) *processor {
	return &processor{
		name:          name,
		messagesChan:  messagesChan,
		handler:       handler,
		deserializer:  deserializer,
		inbox:         ib,
		log:           log,
		resultHandler: resultHandler,
		retryExecutor: retryExecutor,
		tracer:        tracer,
	}
}

func (p *processor) Run(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			return nil
		case msg := <-p.messagesChan:
			if ctx.Err() != nil {
				return nil
			}
			p.processMessage(ctx, msg)
		}
	}
}

func (p *processor) processMessage(ctx context.Context, message *kafka.Message) {
	ctx = p.tracer.ExtractContext(ctx, message)
	ctx, span := p.tracer.StartConsumerSpan(ctx, message)
	defer span.End()

	eventID := GetHeader(message.Headers, HeaderEventID)
	ctx = logger.With(ctx, p.log.With(
		zap.String("event_id", eventID),
		zap.String("event_type", GetHeader(message.Headers, HeaderEventType)),
	))

	err := p.handleMessage(ctx, eventID, message)
	p.resultHandler.handle(ctx, err, message, span)
}

func (p *processor) handleMessage(ctx context.Context, eventID string, message *kafka.Message) error {
	if eventID != "" {
		seen, err := p.inbox.Seen(ctx, p.name, eventID)
		if err != nil {
			p.log.Warn("inbox lookup failed, handling message anyway", zap.String("event_id", eventID), zap.Error(err))
		} else if seen {
			return fmt.Errorf("%w: event %s already handled", ErrSkipMessage, eventID)
		}
	}

	event, err := p.deserializer.Deserialize(message.Value)
	if err != nil {
		return fmt.Errorf("%w: deserialization failed: %w", ErrPermanent, err)
	}

	err = p.retryExecutor.Execute(ctx, func(ctx context.Context) error {
		return p.handler.Process(ctx, event)
	})
	if err != nil || eventID == "" {
		return err
	}

	if markErr := p.inbox.Mark(ctx, p.name, eventID); markErr != nil {
		p.log.Warn("failed to record event in inbox", zap.String("event_id", eventID), zap.Error(markErr))
	}
	return nil
}
