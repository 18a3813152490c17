package patch

import (
	"bytes"
	"encoding/json"
)

// Field es un campo de PATCH con tres estados: no enviado, null, o valor.
type Field[T any] struct {
	Set   bool
	Null  bool
	Value T
}

func Value[T any](v T) Field[T] {
	return Field[T]{Set: true, Value: v}
}

func Null[T any]() Field[T] {
	return Field[T]{Set: true, Null: true}
}

// HasValue: enviado y distinto de null.
func (f Field[T]) HasValue() bool {
	return f.Set && !f.Null
}

// Ptr devuelve nil si no hay valor (no enviado o null).
func (f Field[T]) Ptr() *T {
	if !f.HasValue() {
		return nil
	}
	v := f.Value
	return &v
}

// UnmarshalJSON solo se invoca cuando la clave está presente en el body,
// incluido el literal null.
func (f *Field[T]) UnmarshalJSON(b []byte) error {
	f.Set = true
	if bytes.Equal(bytes.TrimSpace(b), []byte("null")) {
		f.Null = true
		var zero T
		f.Value = zero
		return nil
	}
	f.Null = false
	return json.Unmarshal(b, &f.Value)
}
