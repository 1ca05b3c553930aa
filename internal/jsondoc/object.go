// Package jsondoc provides a JSON object that keeps its keys in insertion
// order. Form documents rely on property order for field order, which
// map[string]any cannot carry.
package jsondoc

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
)

// Object is an ordered JSON object. Nested objects parsed by Parse are
// *Object, arrays are []any, numbers are float64.
type Object struct {
	keys   []string
	values map[string]any
}

// New returns an empty object.
func New() *Object {
	return &Object{values: make(map[string]any)}
}

// Set stores a value, keeping the original position of an existing key.
func (o *Object) Set(key string, value any) *Object {
	if o.values == nil {
		o.values = make(map[string]any)
	}
	if _, ok := o.values[key]; !ok {
		o.keys = append(o.keys, key)
	}
	o.values[key] = value
	return o
}

// Get returns the value stored under key.
func (o *Object) Get(key string) (any, bool) {
	if o == nil {
		return nil, false
	}
	v, ok := o.values[key]
	return v, ok
}

// Has reports whether key is present.
func (o *Object) Has(key string) bool {
	_, ok := o.Get(key)
	return ok
}

// Keys returns the keys in insertion order.
func (o *Object) Keys() []string {
	if o == nil {
		return nil
	}
	return append([]string(nil), o.keys...)
}

// Len returns the number of keys.
func (o *Object) Len() int {
	if o == nil {
		return 0
	}
	return len(o.keys)
}

// First returns the first key and its value.
func (o *Object) First() (string, any, bool) {
	if o.Len() == 0 {
		return "", nil, false
	}
	key := o.keys[0]
	return key, o.values[key], true
}

// MarshalJSON emits the keys in insertion order.
func (o *Object) MarshalJSON() ([]byte, error) {
	if o == nil {
		return []byte("null"), nil
	}
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, key := range o.keys {
		if i > 0 {
			buf.WriteByte(',')
		}
		keyPayload, err := json.Marshal(key)
		if err != nil {
			return nil, err
		}
		valuePayload, err := json.Marshal(o.values[key])
		if err != nil {
			return nil, fmt.Errorf("jsondoc: marshal %q: %w", key, err)
		}
		buf.Write(keyPayload)
		buf.WriteByte(':')
		buf.Write(valuePayload)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// ErrTrailingData is returned when a document holds more than one value.
var ErrTrailingData = errors.New("jsondoc: trailing data after document")

// Parse decodes a JSON document, building *Object for every object.
func Parse(data []byte) (any, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	value, err := parseValue(dec)
	if err != nil {
		return nil, err
	}
	if _, err := dec.Token(); !errors.Is(err, io.EOF) {
		return nil, ErrTrailingData
	}
	return value, nil
}

func parseValue(dec *json.Decoder) (any, error) {
	tok, err := dec.Token()
	if err != nil {
		return nil, fmt.Errorf("jsondoc: %w", err)
	}
	switch t := tok.(type) {
	case json.Delim:
		switch t {
		case '{':
			return parseObject(dec)
		case '[':
			return parseArray(dec)
		}
		return nil, fmt.Errorf("jsondoc: unexpected delimiter %q", t)
	default:
		return t, nil
	}
}

func parseObject(dec *json.Decoder) (*Object, error) {
	obj := New()
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return nil, fmt.Errorf("jsondoc: %w", err)
		}
		key, ok := tok.(string)
		if !ok {
			return nil, fmt.Errorf("jsondoc: object key must be a string, got %v", tok)
		}
		value, err := parseValue(dec)
		if err != nil {
			return nil, err
		}
		obj.Set(key, value)
	}
	if _, err := dec.Token(); err != nil {
		return nil, fmt.Errorf("jsondoc: %w", err)
	}
	return obj, nil
}

func parseArray(dec *json.Decoder) ([]any, error) {
	out := []any{}
	for dec.More() {
		value, err := parseValue(dec)
		if err != nil {
			return nil, err
		}
		out = append(out, value)
	}
	if _, err := dec.Token(); err != nil {
		return nil, fmt.Errorf("jsondoc: %w", err)
	}
	return out, nil
}

// FromAny converts plain decoded JSON (map[string]any) into ordered form.
// Map keys carry no order, so they are added in sorted order.
func FromAny(v any) any {
	switch t := v.(type) {
	case map[string]any:
		obj := New()
		for _, key := range sortedKeys(t) {
			obj.Set(key, FromAny(t[key]))
		}
		return obj
	case []any:
		out := make([]any, len(t))
		for i, item := range t {
			out[i] = FromAny(item)
		}
		return out
	}
	return v
}

// ToAny converts an ordered value back into plain map[string]any form.
func ToAny(v any) any {
	switch t := v.(type) {
	case *Object:
		out := make(map[string]any, t.Len())
		for _, key := range t.keys {
			out[key] = ToAny(t.values[key])
		}
		return out
	case []any:
		out := make([]any, len(t))
		for i, item := range t {
			out[i] = ToAny(item)
		}
		return out
	}
	return v
}
