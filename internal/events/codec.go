package events

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"
)

// ErrMalformed is returned by Decode for any payload it cannot turn into an
// Event. Redelivering such a payload never helps.
var ErrMalformed = errors.New("malformed event")

type wireEvent struct {
	Type      Type       `json:"type"`
	ProductID *int64     `json:"productId"`
	Name      *string    `json:"name,omitempty"`
	ShortDesc *string    `json:"shortDesc,omitempty"`
	UpdatedAt *time.Time `json:"updatedAt,omitempty"`
	MediaIDs  []string   `json:"mediaIds,omitempty"`
	Timestamp *time.Time `json:"timestamp,omitempty"`
}

// Encode requires a non-zero OccurredAt, so every payload it produces carries
// a timestamp.
func Encode(e Event) ([]byte, error) {
	if e == nil {
		return nil, errors.New("cannot encode nil event")
	}
	if e.OccurredAt().IsZero() {
		return nil, fmt.Errorf("cannot encode %s for product %d without a timestamp", e.Type(), e.ProductID())
	}
	id := e.ProductID()
	w := wireEvent{Type: e.Type(), ProductID: &id, Timestamp: timePtr(e.OccurredAt())}

	switch ev := e.(type) {
	case ProductAdded:
		w.Name, w.ShortDesc, w.UpdatedAt = &ev.Name, &ev.ShortDesc, timePtr(ev.UpdatedAt)
	case ProductUpdated:
		w.Name, w.ShortDesc, w.UpdatedAt = &ev.Name, &ev.ShortDesc, timePtr(ev.UpdatedAt)
	case MediaRemoved:
		w.MediaIDs = ev.MediaIDs
		if w.MediaIDs == nil {
			w.MediaIDs = []string{}
		}
	}
	return json.Marshal(w)
}

func Decode(data []byte) (Event, error) {
	var w wireEvent
	if err := json.Unmarshal(data, &w); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrMalformed, err)
	}
	if !w.Type.valid() {
		return nil, fmt.Errorf("%w: unknown type %q", ErrMalformed, w.Type)
	}
	if w.ProductID == nil || *w.ProductID <= 0 {
		return nil, fmt.Errorf("%w: %s without a valid productId", ErrMalformed, w.Type)
	}
	id := *w.ProductID

	switch w.Type {
	case TypeProductAdded, TypeProductUpdated:
		if w.Name == nil {
			return nil, fmt.Errorf("%w: %s without name", ErrMalformed, w.Type)
		}
		name, shortDesc, updatedAt := *w.Name, deref(w.ShortDesc), derefTime(firstTime(w.UpdatedAt, w.Timestamp))
		if w.Type == TypeProductAdded {
			return ProductAdded{ID: id, Name: name, ShortDesc: shortDesc, UpdatedAt: updatedAt}, nil
		}
		return ProductUpdated{ID: id, Name: name, ShortDesc: shortDesc, UpdatedAt: updatedAt}, nil
	case TypeProductRemoved:
		return ProductRemoved{ID: id, RemovedAt: derefTime(firstTime(w.Timestamp, w.UpdatedAt))}, nil
	default:
		if w.MediaIDs == nil {
			return nil, fmt.Errorf("%w: %s without mediaIds", ErrMalformed, w.Type)
		}
		return MediaRemoved{ID: id, MediaIDs: w.MediaIDs, RemovedAt: derefTime(w.Timestamp)}, nil
	}
}

func timePtr(t time.Time) *time.Time {
	if t.IsZero() {
		return nil
	}
	u := t.UTC()
	return &u
}

func firstTime(ts ...*time.Time) *time.Time {
	for _, t := range ts {
		if t != nil {
			return t
		}
	}
	return nil
}

func derefTime(t *time.Time) time.Time {
	if t == nil {
		return time.Time{}
	}
	return t.UTC()
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
