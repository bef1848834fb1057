package consumer

import (
	"errors"
	"fmt"
	"time"

	"github.com/confluentinc/confluent-kafka-go/v2/kafka"
)

type kafkaErrorType int

const (
	errorTypeTimeout kafkaErrorType = iota
	errorTypeFatal
	errorTypeTopicNotFound
	errorTypeBrokerConnection
	errorTypeLeaderElection
	errorTypeRetriable
	errorTypeUnknown
)

// readerError is a ReadMessage failure classified by how the reader should react.
type readerError struct {
	err         error
	errorType   kafkaErrorType
	errorKey    string
	description string
}

func (e *readerError) Error() string {
	if e.description != "" {
		return fmt.Sprintf("%s: %v", e.description, e.err)
	}
	return e.err.Error()
}

func (e *readerError) Unwrap() error {
	return e.err
}

func wrapReaderError(err error) *readerError {
	if err == nil {
		return nil
	}

	var kafkaErr kafka.Error
	if !errors.As(err, &kafkaErr) {
		return &readerError{err: err, errorType: errorTypeUnknown, errorKey: "non_kafka_error", description: "non-kafka error occurred"}
	}

	if kafkaErr.IsTimeout() {
		return &readerError{err: err, errorType: errorTypeTimeout}
	}
	if kafkaErr.IsFatal() {
		return &readerError{err: err, errorType: errorTypeFatal, description: "fatal kafka error, consumer is no longer operable"}
	}

	switch kafkaErr.Code() {
	case kafka.ErrUnknownTopicOrPart, kafka.ErrUnknownTopic:
		return &readerError{err: err, errorType: errorTypeTopicNotFound, errorKey: "topic_not_found", description: "topic not available, waiting for topic creation"}
	case kafka.ErrTransport, kafka.ErrAllBrokersDown, kafka.ErrNetworkException:
		return &readerError{err: err, errorType: errorTypeBrokerConnection, errorKey: "broker_connection", description: "broker connection issue, retrying"}
	case kafka.ErrLeaderNotAvailable, kafka.ErrNotLeaderForPartition:
		return &readerError{err: err, errorType: errorTypeLeaderElection, errorKey: "leader_election", description: "partition leader changing, retrying"}
	}

	if kafkaErr.IsRetriable() {
		return &readerError{err: err, errorType: errorTypeRetriable, errorKey: "retriable_error", description: "retriable kafka error, retrying"}
	}
	return &readerError{err: err, errorType: errorTypeUnknown, errorKey: "unknown_error", description: "unknown kafka error"}
}

func (e *readerError) isFatal() bool {
	return e.errorType == errorTypeFatal
}

func (e *readerError) isTimeout() bool {
	return e.errorType == errorTypeTimeout
}

// pause is how long the reader waits before polling again.
func (e *readerError) pause() time.Duration {
	switch e.errorType {
	case errorTypeTimeout:
		return 0
	case errorTypeTopicNotFound:
		return 10 * time.Second
	case errorTypeBrokerConnection:
		return 5 * time.Second
	case errorTypeLeaderElection:
		return 2 * time.Second
	default:
		return time.Second
	}
}
