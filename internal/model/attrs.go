package model

import (
	"reflect"
	"sort"
)

// Attrs holds node attributes.
// Attrs stored in a Node must not be modified; use Clone or With.
type Attrs map[string]any

// Clone returns a shallow copy of the attributes.
func (a Attrs) Clone() Attrs {
	out := make(Attrs, len(a))
	for k, v := range a {
		out[k] = v
	}
	return out
}

// With returns a copy of the attributes with key set to value.
func (a Attrs) With(key string, value any) Attrs {
	out := a.Clone()
	out[key] = normalizeValue(value)
	return out
}

// Int returns the attribute as an int.
func (a Attrs) Int(key string) (int, bool) {
	switch v := a[key].(type) {
	case int:
		return v, true
	case int64:
		return int(v), true
	case int32:
		return int(v), true
	case float64:
		if v == float64(int(v)) {
			return int(v), true
		}
	case uint64:
		return int(v), true
	}
	return 0, false
}

// Keys returns the attribute names in sorted order.
func (a Attrs) Keys() []string {
	keys := make([]string, 0, len(a))
	for k := range a {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Eq reports whether two attribute sets hold the same values.
func (a Attrs) Eq(b Attrs) bool {
	if len(a) != len(b) {
		return false
	}
	for k, v := range a {
		w, ok := b[k]
		if !ok {
			return false
		}
		if !valueEq(v, w) {
			return false
		}
	}
	return true
}

func valueEq(a, b any) bool {
	return reflect.DeepEqual(normalizeValue(a), normalizeValue(b))
}

// normalizeValue folds the numeric types produced by the JSON and YAML
// decoders into int when the value is integral.
func normalizeValue(v any) any {
	switch n := v.(type) {
	case float64:
		if n == float64(int(n)) {
			return int(n)
		}
	case float32:
		if n == float32(int(n)) {
			return int(n)
		}
	case int64:
		return int(n)
	case int32:
		return int(n)
	case uint64:
		return int(n)
	case uint:
		return int(n)
	}
	return v
}
