// Package value implements the runtime value representation shared by the
// compiler and the virtual machine: the tagged Value sum type, the heap
// object kinds (strings, functions, closures, classes, ...), and the
// bytecode Chunk they are assembled into.
//
// Values are represented as a boxed sum rather than NaN-boxed: Value is a Go
// interface, whose own type tag and pointer word are the idiomatic Go
// analogue of a C tagged union, and its three non-heap variants (Nil, Bool,
// Number) are small value types that implement it directly.
package value

import (
	"fmt"
	"strconv"
)

// Value is implemented by every value the virtual machine can manipulate:
// the non-heap variants Nil, Bool and Number, and every heap object kind
// declared in object.go.
type Value interface {
	// String returns the value's printed representation, as used by the
	// print statement and by error messages.
	String() string
	// Type returns a short, human-readable name of the value's runtime type.
	Type() string
}

// Nil is the sole value of nil type.
type Nil struct{}

func (Nil) String() string { return "nil" }
func (Nil) Type() string   { return "nil" }

// Bool is a boolean value.
type Bool bool

func (b Bool) String() string {
	if b {
		return "true"
	}
	return "false"
}
func (Bool) Type() string { return "bool" }

// Number is a double-precision floating point number.
type Number float64

func (n Number) String() string { return strconv.FormatFloat(float64(n), 'g', -1, 64) }
func (Number) Type() string     { return "number" }

// IsFalsey reports whether v is "falsey": nil and false are, every other
// value (including 0 and the empty string) is truthy.
func IsFalsey(v Value) bool {
	switch v := v.(type) {
	case Nil:
		return true
	case Bool:
		return !bool(v)
	default:
		return false
	}
}

// Equal reports whether a and b are equal using the language's value
// equality: numbers compare by IEEE ==, booleans by ==, nil equals nil, and
// every heap kind compares by reference identity (which, thanks to string
// interning, also gives strings structural equality).
func Equal(a, b Value) bool {
	switch a := a.(type) {
	case Nil:
		_, ok := b.(Nil)
		return ok
	case Bool:
		bb, ok := b.(Bool)
		return ok && a == bb
	case Number:
		bb, ok := b.(Number)
		return ok && a == bb
	case *String:
		bb, ok := b.(*String)
		return ok && a == bb // interned: pointer identity implies content identity
	default:
		return a == b
	}
}

// Print formats v the way the print statement renders it to stdout.
func Print(v Value) string {
	return fmt.Sprint(v)
}
