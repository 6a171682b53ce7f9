// Package patch turns sparse "changed fields only" input into minimal store
// updates.
package patch

import (
	"bytes"
	"encoding/json"
)

// Field is one optional input of a partial update. It is in one of three
// states: absent (the zero value), set to a value, or explicitly cleared.
type Field[T any] struct {
	set   bool
	null  bool
	value T
}

// Set returns a present field holding v.
func Set[T any](v T) Field[T] {
	return Field[T]{set: true, value: v}
}

// Clear returns a present field asking for the stored value to be removed.
func Clear[T any]() Field[T] {
	return Field[T]{set: true, null: true}
}

// FromPtr returns Set(*p), or an absent field when p is nil.
func FromPtr[T any](p *T) Field[T] {
	if p == nil {
		return Field[T]{}
	}
	return Set(*p)
}

func (f Field[T]) IsSet() bool  { return f.set }
func (f Field[T]) IsNull() bool { return f.set && f.null }
func (f Field[T]) IsZero() bool { return !f.set }

// Get returns the value and whether the field carries one.
func (f Field[T]) Get() (T, bool) {
	if !f.set || f.null {
		var zero T
		return zero, false
	}
	return f.value, true
}

// UnmarshalJSON marks the field present; JSON null clears it.
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

// MarshalJSON writes null for a cleared field. Absent fields should be
// dropped with the omitzero tag option.
func (f Field[T]) MarshalJSON() ([]byte, error) {
	if !f.set || f.null {
		return []byte("null"), nil
	}
	return json.Marshal(f.value)
}
