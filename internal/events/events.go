// Package events defines the product events exchanged between the catalog
// and its downstream services, and their JSON wire encoding.
package events

import "time"

// Type is both the event discriminator and the Kafka topic it travels on.
type Type string

const (
	TypeProductAdded   Type = "product.added"
	TypeProductUpdated Type = "product.updated"
	TypeProductRemoved Type = "product.removed"
	TypeMediaRemoved   Type = "media.removed"
)

// Types lists every known event type.
var Types = []Type{TypeProductAdded, TypeProductUpdated, TypeProductRemoved, TypeMediaRemoved}

func (t Type) String() string { return string(t) }

func (t Type) Topic() string { return string(t) }

func (t Type) valid() bool {
	switch t {
	case TypeProductAdded, TypeProductUpdated, TypeProductRemoved, TypeMediaRemoved:
		return true
	}
	return false
}

// Event is implemented only by the types in this package.
type Event interface {
	Type() Type
	ProductID() int64
	// OccurredAt is carried on the wire as timestamp.
	OccurredAt() time.Time
	isEvent()
}

type ProductAdded struct {
	ID        int64
	Name      string
	ShortDesc string
	UpdatedAt time.Time
}

type ProductUpdated struct {
	ID        int64
	Name      string
	ShortDesc string
	// UpdatedAt orders projections. Zero means unknown, in which case
	// consumers apply the event unconditionally.
	UpdatedAt time.Time
}

type ProductRemoved struct {
	ID        int64
	RemovedAt time.Time
}

// MediaRemoved names media that no live product references anymore.
type MediaRemoved struct {
	ID        int64
	MediaIDs  []string
	RemovedAt time.Time
}

func (ProductAdded) Type() Type   { return TypeProductAdded }
func (ProductUpdated) Type() Type { return TypeProductUpdated }
func (ProductRemoved) Type() Type { return TypeProductRemoved }
func (MediaRemoved) Type() Type   { return TypeMediaRemoved }

func (e ProductAdded) ProductID() int64   { return e.ID }
func (e ProductUpdated) ProductID() int64 { return e.ID }
func (e ProductRemoved) ProductID() int64 { return e.ID }
func (e MediaRemoved) ProductID() int64   { return e.ID }

func (e ProductAdded) OccurredAt() time.Time   { return e.UpdatedAt }
func (e ProductUpdated) OccurredAt() time.Time { return e.UpdatedAt }
func (e ProductRemoved) OccurredAt() time.Time { return e.RemovedAt }
func (e MediaRemoved) OccurredAt() time.Time   { return e.RemovedAt }

func (ProductAdded) isEvent()   {}
func (ProductUpdated) isEvent() {}
func (ProductRemoved) isEvent() {}
func (MediaRemoved) isEvent()   {}
