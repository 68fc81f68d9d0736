package vfs

import "strconv"

// Value is the content of the graph: a closed set of kinds dispatched over
// by the operation methods on Node.
type Value interface {
	value()
}

// Scalar is a text value, convertible to bytes as-is.
type Scalar string

// Number is a numeric value, convertible to bytes by decimal formatting.
type Number float64

// Bool is a boolean value, convertible to "true"/"false".
type Bool bool

// Binary is an opaque byte sequence, a terminal leaf of the graph.
type Binary []byte

// List is an ordered, heterogeneous sequence of values. Lists are held by
// pointer so in-place appends are visible through every alias.
type List struct {
	Items []Value
}

func (Scalar) value() {}
func (Number) value() {}
func (Bool) value()   {}
func (Binary) value() {}
func (*List) value()  {}

// NewList builds a list from the given items.
func NewList(items ...Value) *List {
	return &List{Items: items}
}

// Bytes coerces a value to its byte rendering. Containers and handlers have
// no direct rendering and coerce to nil; a nil value coerces to empty.
func Bytes(v Value) Binary {
	switch val := v.(type) {
	case Binary:
		return val
	case Scalar:
		return Binary(val)
	case Number:
		return Binary(strconv.FormatFloat(float64(val), 'f', -1, 64))
	case Bool:
		if val {
			return Binary("true")
		}
		return Binary("false")
	}
	return nil
}

// Truthy reports whether a value counts as affirmative: empty scalars,
// zero numbers, false, empty binaries and nil do not.
func Truthy(v Value) bool {
	switch val := v.(type) {
	case nil:
		return false
	case Scalar:
		return val != ""
	case Number:
		return val != 0
	case Bool:
		return bool(val)
	case Binary:
		return len(val) > 0
	}
	return true
}
