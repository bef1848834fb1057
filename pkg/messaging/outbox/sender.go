package outbox

import (
	"context"
	"fmt"

	"github.com/Sokol111/ecommerce-catalog-sync/pkg/messaging/kafka/producer"
	"github.com/confluentinc/confluent-kafka-go/v2/kafka"
	"go.opentelemetry.io/otel/codes"
	"go.uber.org/zap"
)

// sender produces records asynchronously. Delivery reports go to the
// confirmer through deliveryChan, with the record id in Opaque.
type sender struct {
	producer        producer.Producer
	entitiesChan    <-chan *outboxEntity
	deliveryChan    chan kafka.Event
	log             *zap.Logger
	tracePropagator tracePropagator
}

func newSender(p producer.Producer, entitiesChan <-chan *outboxEntity, deliveryChan chan kafka.Event, log *zap.Logger, propagator tracePropagator) *sender {
	return &sender{
		producer:        p,
		entitiesChan:    entitiesChan,
		deliveryChan:    deliveryChan,
		log:             log.With(zap.String("component", "outbox")),
		tracePropagator: propagator,
	}
}

func (s *sender) Run(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			return nil
		case entity := <-s.entitiesChan:
			if err := s.send(entity); err != nil {
				s.log.Error("failed to send outbox message", zap.String("id", entity.ID), zap.Error(err))
				continue
			}
			s.log.Debug("outbox sent to kafka", zap.String("id", entity.ID))
		}
	}
}

func (s *sender) send(entity *outboxEntity) error {
	_, span, headers := s.tracePropagator.StartKafkaProducerSpan(entity.Headers, entity.Topic, entity.ID)
	defer span.End()

	err := s.producer.Produce(&kafka.Message{
		TopicPartition: kafka.TopicPartition{Topic: &entity.Topic, Partition: kafka.PartitionAny},
		Opaque:         entity.ID,
		Key:            []byte(entity.Key),
		Value:          entity.Payload,
		Headers:        headers,
	}, s.deliveryChan)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "produce failed")
		return fmt.Errorf("failed to send outbox message with id %v: %w", entity.ID, err)
	}
	return nil
}
