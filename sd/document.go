// Package sd implements the schema-flexible document type used for
// response and request bodies that are interpreted as data rather than
// raw bytes. A document is a tree of maps, arrays and scalars, with an
// undefined zero value, serialized as JSON.
package sd

import (
	"github.com/bytedance/sonic"
	"github.com/pkg/errors"
)

// Document is a schema-flexible tree value: map, array, scalar or
// undefined. The zero value is undefined.
type Document struct {
	v any
}

// Undefined returns the undefined document. Equivalent to Document{}.
func Undefined() Document { return Document{} }

func FromString(s string) Document  { return Document{v: s} }
func FromInt(i int) Document        { return Document{v: float64(i)} }
func FromFloat(f float64) Document  { return Document{v: f} }
func FromBool(b bool) Document      { return Document{v: b} }
func Map(m map[string]Document) Document {
	clone := make(map[string]any, len(m))
	for k, d := range m {
		clone[k] = d.v
	}
	return Document{v: clone}
}
func Array(elems ...Document) Document {
	clone := make([]any, len(elems))
	for i, d := range elems {
		clone[i] = d.v
	}
	return Document{v: clone}
}

// Parse decodes p as JSON. An empty input yields the undefined document
// without error.
func Parse(p []byte) (Document, error) {
	if len(p) == 0 {
		return Undefined(), nil
	}

	var v any
	if err := sonic.Unmarshal(p, &v); err != nil {
		return Undefined(), errors.Wrap(err, "parsing document")
	}
	return Document{v: v}, nil
}

// Marshal renders d as JSON. The undefined document renders as null.
func (d Document) Marshal() ([]byte, error) {
	p, err := sonic.Marshal(d.v)
	if err != nil {
		return nil, errors.Wrap(err, "marshaling document")
	}
	return p, nil
}

func (d Document) IsUndefined() bool { return d.v == nil }

func (d Document) IsMap() bool {
	_, ok := d.v.(map[string]any)
	return ok
}

func (d Document) IsArray() bool {
	_, ok := d.v.([]any)
	return ok
}

// AsString returns the scalar string value, or "" when d is not a string.
func (d Document) AsString() string {
	s, _ := d.v.(string)
	return s
}

// AsInt returns the scalar numeric value truncated to int, or 0.
func (d Document) AsInt() int {
	switch n := d.v.(type) {
	case float64:
		return int(n)
	case int:
		return n
	}
	return 0
}

func (d Document) AsFloat() float64 {
	f, _ := d.v.(float64)
	return f
}

func (d Document) AsBool() bool {
	b, _ := d.v.(bool)
	return b
}

// Get returns the value under key when d is a map, else undefined.
func (d Document) Get(key string) Document {
	m, ok := d.v.(map[string]any)
	if !ok {
		return Undefined()
	}
	return Document{v: m[key]}
}

// At returns the i-th element when d is an array, else undefined.
func (d Document) At(i int) Document {
	a, ok := d.v.([]any)
	if !ok || i < 0 || i >= len(a) {
		return Undefined()
	}
	return Document{v: a[i]}
}

// Len returns the element count of a map or array, 0 otherwise.
func (d Document) Len() int {
	switch v := d.v.(type) {
	case map[string]any:
		return len(v)
	case []any:
		return len(v)
	}
	return 0
}

// Keys returns the keys of a map document. Order is unspecified.
func (d Document) Keys() []string {
	m, ok := d.v.(map[string]any)
	if !ok {
		return nil
	}
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	return keys
}
