// Package record models parsed record files as a tree of Scalar, List and Map values.
package record

import (
	"maps"
	"reflect"
	"slices"
	"time"
)

// Value is one node of a record tree: Scalar, List or Map.
type Value interface {
	isValue()
}

// Scalar wraps a leaf: string, int64, float64, bool or time.Time.
type Scalar struct {
	V any
}

// List is an ordered sequence of values.
type List []Value

// Map is a string-keyed table of values.
type Map map[string]Value

func (Scalar) isValue() {}
func (List) isValue()   {}
func (Map) isValue()    {}

// String is a convenience constructor for string scalars.
func String(s string) Scalar { return Scalar{V: s} }

// Strings builds a List of string scalars.
func Strings(ss ...string) List {
	l := make(List, len(ss))
	for i, s := range ss {
		l[i] = String(s)
	}
	return l
}

// Keys returns the map's keys sorted.
func (m Map) Keys() []string {
	return slices.Sorted(maps.Keys(m))
}

// Clone deep-copies m.
func (m Map) Clone() Map {
	if m == nil {
		return nil
	}
	out := make(Map, len(m))
	for k, v := range m {
		out[k] = Clone(v)
	}
	return out
}

// Clone deep-copies v. Scalars are immutable and shared.
func Clone(v Value) Value {
	switch val := v.(type) {
	case Map:
		return val.Clone()
	case List:
		out := make(List, len(val))
		for i, item := range val {
			out[i] = Clone(item)
		}
		return out
	default:
		return v
	}
}

// IsEmpty reports whether v carries no content: nil, "", an empty list, or a
// map whose values are all empty. Booleans, numbers and times are never empty.
func IsEmpty(v Value) bool {
	switch val := v.(type) {
	case nil:
		return true
	case Scalar:
		s, ok := val.V.(string)
		return val.V == nil || (ok && s == "")
	case List:
		return len(val) == 0
	case Map:
		for _, child := range val {
			if !IsEmpty(child) {
				return false
			}
		}
		return true
	default:
		return false
	}
}

// Equal reports whether a and b are structurally equal.
func Equal(a, b Value) bool {
	switch x := a.(type) {
	case Map:
		y, ok := b.(Map)
		if !ok || len(x) != len(y) {
			return false
		}
		for k, v := range x {
			w, ok := y[k]
			if !ok || !Equal(v, w) {
				return false
			}
		}
		return true
	case List:
		y, ok := b.(List)
		if !ok || len(x) != len(y) {
			return false
		}
		for i := range x {
			if !Equal(x[i], y[i]) {
				return false
			}
		}
		return true
	case Scalar:
		y, ok := b.(Scalar)
		if !ok {
			return false
		}
		if t, ok := x.V.(time.Time); ok {
			u, ok := y.V.(time.Time)
			return ok && t.Equal(u)
		}
		return reflect.DeepEqual(x.V, y.V)
	default:
		return a == nil && b == nil
	}
}
