package persistence

import "errors"

var (
	// ErrEntityNotFound is returned when a lookup matches nothing.
	ErrEntityNotFound = errors.New("entity not found")

	// ErrOptimisticLocking is returned when a conditional write lost a race.
	ErrOptimisticLocking = errors.New("optimistic locking error")
)
