package consumer

import (
	"context"
	"errors"
	"fmt"
)

var (
	// ErrSkipMessage acknowledges a message without handling it.
	ErrSkipMessage = errors.New("skip message")
	// ErrPermanent marks a failure that retrying cannot fix.
	ErrPermanent = errors.New("permanent error")
)

// Handler handles one decoded event. Returning an error that wraps
// ErrPermanent sends the message straight to the DLQ; other errors are retried.
type Handler interface {
	Process(ctx context.Context, event any) error
}

// Deserializer turns a message value into the event passed to Handler.
type Deserializer interface {
	Deserialize(data []byte) (any, error)
}

type PanicError struct {
	Panic any
	Stack []byte
}

func (e *PanicError) Error() string {
	return fmt.Sprintf("panic: %v", e.Panic)
}
