package producer

import (
	"fmt"

	"github.com/confluentinc/confluent-kafka-go/v2/kafka"
	"go.uber.org/zap"
)

type Producer interface {
	Produce(message *kafka.Message, deliveryChan chan kafka.Event) error
	Close()
}

type kafkaProducer interface {
	Produce(msg *kafka.Message, deliveryChan chan kafka.Event) error
}

type producer struct {
	producer kafkaProducer
	closer   func()
	log      *zap.Logger
}

func newProducer(p kafkaProducer, log *zap.Logger) *producer {
	return &producer{producer: p, log: log, closer: func() {}}
}

func newKafkaProducer(brokers string) (*kafka.Producer, error) {
	p, err := kafka.NewProducer(&kafka.ConfigMap{
		"bootstrap.servers":  brokers,
		"acks":               "all",
		"enable.idempotence": true,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create producer: %w", err)
	}
	return p, nil
}

func (p *producer) Produce(message *kafka.Message, deliveryChan chan kafka.Event) error {
	if err := p.producer.Produce(message, deliveryChan); err != nil {
		return fmt.Errorf("failed to send message to topic %s: %w", topicOf(message), err)
	}
	return nil
}

func (p *producer) Close() {
	p.closer()
}

// logEvents drains the default events channel. Deliveries sent with an explicit
// delivery channel never show up here, only client level errors and stray reports.
func logEvents(events <-chan kafka.Event, log *zap.Logger) {
	for e := range events {
		switch ev := e.(type) {
		case *kafka.Message:
			if ev.TopicPartition.Error != nil {
				log.Error("message delivery failed",
					zap.String("topic", topicOf(ev)),
					zap.Error(ev.TopicPartition.Error))
			}
		case kafka.Error:
			log.Warn("kafka producer error", zap.Error(ev), zap.Bool("fatal", ev.IsFatal()))
		}
	}
}

func topicOf(message *kafka.Message) string {
	if message == nil || message.TopicPartition.Topic == nil {
		return ""
	}
	return *message.TopicPartition.Topic
}
