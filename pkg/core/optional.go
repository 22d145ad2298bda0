package core

import (
	"bytes"
	"encoding/json"
)

// Optional is a field of a partial update that distinguishes three states:
// absent (leave untouched), null (clear) and a value (set).
type Optional[T any] struct {
	Value T
	Set   bool
	Valid bool
}

// Some returns an Optional holding v.
func Some[T any](v T) Optional[T] {
	return Optional[T]{Value: v, Set: true, Valid: true}
}

// Null returns an Optional that clears the field.
func Null[T any]() Optional[T] {
	return Optional[T]{Set: true}
}

// Ptr returns the value, or nil when the field is absent or null.
func (o Optional[T]) Ptr() *T {
	if !o.Valid {
		return nil
	}
	v := o.Value
	return &v
}

// UnmarshalJSON is only called for keys present in the document, which is
// what marks the field as set.
func (o *Optional[T]) UnmarshalJSON(b []byte) error {
	o.Set = true
	if bytes.Equal(bytes.TrimSpace(b), []byte("null")) {
		var zero T
		o.Value, o.Valid = zero, false
		return nil
	}
	if err := json.Unmarshal(b, &o.Value); err != nil {
		return err
	}
	o.Valid = true
	return nil
}

// MarshalJSON writes the value or null. Pair it with omitzero so absent
// fields are dropped.
func (o Optional[T]) MarshalJSON() ([]byte, error) {
	if !o.Valid {
		return []byte("null"), nil
	}
	return json.Marshal(o.Value)
}
