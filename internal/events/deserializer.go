package events

import (
	"fmt"

	"github.com/Sokol111/ecommerce-catalog-sync/pkg/messaging/kafka/consumer"
)

type deserializer struct{}

// NewDeserializer decodes message values with Decode. A malformed payload is
// reported as consumer.ErrPermanent so it goes straight to the DLQ.
func NewDeserializer() consumer.Deserializer {
	return deserializer{}
}

func (deserializer) Deserialize(data []byte) (any, error) {
	e, err := Decode(data)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", consumer.ErrPermanent, err)
	}
	return e, nil
}
