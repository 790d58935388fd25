package ir

import (
	"fmt"
	"strconv"
)

// Value is a sealed interface over the literal types that may appear in a
// selection predicate. Only Null, String, Int, Float, and Bool implement it.
//
// Floats are permitted here (unlike hashing-sensitive IRs) because literals
// are only ever passed to the database as bound parameters; they never feed
// content-addressed identity except through the canonical decimal rendering
// in canonical.go.
type Value interface {
	irValue() // Sealed - only types in this package implement it
}

// Null represents an absent value.
type Null struct{}

func (Null) irValue() {}

// String represents a text literal.
type String string

func (String) irValue() {}

// Int represents an integer literal. Always int64.
type Int int64

func (Int) irValue() {}

// Float represents a floating-point literal.
type Float float64

func (Float) irValue() {}

// Bool represents a boolean literal.
type Bool bool

func (Bool) irValue() {}

// Param converts a Value to the native Go type accepted by database/sql as
// a bound parameter.
func Param(v Value) (any, error) {
	switch val := v.(type) {
	case String:
		return string(val), nil
	case Int:
		return int64(val), nil
	case Float:
		return float64(val), nil
	case Bool:
		return bool(val), nil
	case Null:
		return nil, nil
	default:
		return nil, fmt.Errorf("unsupported literal type for SQL parameter: %T", v)
	}
}

// Render returns the stable textual form of a Value. Used for result-row
// output and for the canonical encoding; never for SQL interpolation.
func Render(v Value) string {
	switch val := v.(type) {
	case String:
		return string(val)
	case Int:
		return strconv.FormatInt(int64(val), 10)
	case Float:
		// 'g' with -1 precision is the shortest representation that
		// round-trips, so equal floats always render identically.
		return strconv.FormatFloat(float64(val), 'g', -1, 64)
	case Bool:
		return strconv.FormatBool(bool(val))
	case Null:
		return ""
	default:
		return fmt.Sprintf("%v", v)
	}
}
