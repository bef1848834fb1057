package catalog

import (
	"bytes"
	"encoding/json"
)

// Field distinguishes a JSON key that is absent from one that is explicitly
// null and from one carrying a value. The zero Field is absent.
type Field[T any] struct {
	set   bool
	null  bool
	value T
}

func Set[T any](v T) Field[T] { return Field[T]{set: true, value: v} }

func Null[T any]() Field[T] { return Field[T]{set: true, null: true} }

func (f Field[T]) IsAbsent() bool { return !f.set }

func (f Field[T]) IsNull() bool { return f.set && f.null }

func (f Field[T]) HasValue() bool { return f.set && !f.null }

// Get returns the value and whether there is one.
func (f Field[T]) Get() (T, bool) {
	return f.value, f.HasValue()
}

// UnmarshalJSON is only called for keys that are present.
func (f *Field[T]) UnmarshalJSON(data []byte) error {
	f.set = true
	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		f.null = true
		var zero T
		f.value = zero
		return nil
	}
	f.null = false
	return json.Unmarshal(data, &f.value)
}

func (f Field[T]) MarshalJSON() ([]byte, error) {
	if !f.HasValue() {
		return []byte("null"), nil
	}
	return json.Marshal(f.value)
}
