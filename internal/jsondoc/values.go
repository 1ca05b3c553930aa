package jsondoc

import (
	"math"
	"sort"
	"strconv"
	"strings"
)

// String returns v when it is a string.
func String(v any) (string, bool) {
	s, ok := v.(string)
	return s, ok
}

// Number returns v as a float64 when it is a JSON number or a numeric string.
func Number(v any) (float64, bool) {
	switch t := v.(type) {
	case float64:
		return t, true
	case int:
		return float64(t), true
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(t), 64)
		if err != nil || math.IsNaN(f) {
			return 0, false
		}
		return f, true
	}
	return 0, false
}

// Int returns v truncated to an int when it is a JSON number.
func Int(v any) (int, bool) {
	f, ok := v.(float64)
	if !ok {
		return 0, false
	}
	return int(f), true
}

// Array returns v when it is a JSON array.
func Array(v any) ([]any, bool) {
	a, ok := v.([]any)
	return a, ok
}

// AsObject returns v when it is an ordered object.
func AsObject(v any) (*Object, bool) {
	o, ok := v.(*Object)
	return o, ok && o != nil
}

// Strings collects the string items of an array, skipping other values.
func Strings(v any) []string {
	items, ok := Array(v)
	if !ok {
		return nil
	}
	out := make([]string, 0, len(items))
	for _, item := range items {
		if s, ok := item.(string); ok {
			out = append(out, s)
		}
	}
	return out
}

// StringSet collects the string items of an array into a set.
func StringSet(v any) map[string]struct{} {
	set := make(map[string]struct{})
	for _, s := range Strings(v) {
		set[s] = struct{}{}
	}
	return set
}

// StringOf returns the string stored under the first present key among keys.
func (o *Object) StringOf(keys ...string) (string, bool) {
	for _, key := range keys {
		if v, ok := o.Get(key); ok {
			if s, ok := v.(string); ok {
				return s, true
			}
		}
	}
	return "", false
}

// Lookup returns the value stored under the first present, non-null key.
func (o *Object) Lookup(keys ...string) (any, bool) {
	for _, key := range keys {
		if v, ok := o.Get(key); ok && v != nil {
			return v, true
		}
	}
	return nil, false
}

// Path walks nested objects by key.
func (o *Object) Path(keys ...string) (any, bool) {
	var cur any = o
	for _, key := range keys {
		obj, ok := AsObject(cur)
		if !ok {
			return nil, false
		}
		cur, ok = obj.Get(key)
		if !ok {
			return nil, false
		}
	}
	return cur, true
}

func sortedKeys(m map[string]any) []string {
	keys := make([]string, 0, len(m))
	for key := range m {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}
