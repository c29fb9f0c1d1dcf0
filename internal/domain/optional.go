package domain

import (
	"bytes"
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// Optional is a payload field that can be absent, explicitly null, or hold a value.
type Optional[T any] struct {
	value T
	set   bool
	null  bool
}

func Some[T any](v T) Optional[T] {
	return Optional[T]{value: v, set: true}
}

func Null[T any]() Optional[T] {
	return Optional[T]{set: true, null: true}
}

// IsSet reports whether the field appeared in the payload at all.
func (o Optional[T]) IsSet() bool { return o.set }

// IsNull reports whether the field appeared as an explicit null.
func (o Optional[T]) IsNull() bool { return o.set && o.null }

// HasValue reports whether the field carries a non-null value.
func (o Optional[T]) HasValue() bool { return o.set && !o.null }

func (o Optional[T]) Get() (T, bool) {
	return o.value, o.HasValue()
}

func (o *Optional[T]) UnmarshalJSON(data []byte) error {
	o.set = true
	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		var zero T
		o.value = zero
		o.null = true
		return nil
	}
	o.null = false
	return json.Unmarshal(data, &o.value)
}

func (o Optional[T]) MarshalJSON() ([]byte, error) {
	if !o.HasValue() {
		return []byte("null"), nil
	}
	return json.Marshal(o.value)
}

// storeValue converts a decoded payload value into the form written to the store.
func storeValue(v any) any {
	switch x := v.(type) {
	case uuid.UUID:
		return x.String()
	case time.Time:
		return x.UTC()
	default:
		return v
	}
}

// putValue writes the field when it carries a value. Absent and null are both skipped.
func putValue[T any](f Fields, column string, o Optional[T]) {
	if v, ok := o.Get(); ok {
		f[column] = storeValue(v)
	}
}

// putDefault writes the field's value, or def when the field is absent. Create shapes
// reject an explicit null on these fields in Validate.
func putDefault[T any](f Fields, column string, o Optional[T], def T) {
	if v, ok := o.Get(); ok {
		f[column] = storeValue(v)
		return
	}
	f[column] = storeValue(def)
}

// putPatch applies update semantics: absent is skipped, a value is written, and an
// explicit null clears the column only when the column is nullable.
func putPatch[T any](f Fields, column string, o Optional[T], nullable bool) {
	switch {
	case o.HasValue():
		f[column] = storeValue(o.value)
	case o.IsNull() && nullable:
		f[column] = nil
	}
}
