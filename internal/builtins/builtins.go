// Package builtins holds ember's native function library and registers it
// into a freshly constructed VM's globals.
//
// The registry itself is backed by github.com/dolthub/swiss, the
// SIMD-friendly open-addressing map the teacher pulls in for its own
// lang/machine Map type: it is a natural fit for a small, write-once,
// read-many table of name -> native function looked up once at VM startup.
package builtins

import (
	"fmt"
	"time"

	"github.com/dolthub/swiss"

	"github.com/ember-lang/ember/lang/value"
)

// Registry holds the set of natives to install, keyed by name.
type Registry struct {
	fns *swiss.Map[string, value.NativeFn]
}

// NewRegistry builds the standard registry: clock, str, and type, per
// SPEC_FULL.md's native library section. intern must route through the
// same table the VM uses for every other string, so natives that fabricate
// strings still satisfy the identity-equality invariant on interned
// strings.
func NewRegistry(uptime func() time.Duration, intern func(string) *value.String) *Registry {
	m := swiss.NewMap[string, value.NativeFn](8)

	m.Put("clock", func(args []value.Value) (value.Value, error) {
		if len(args) != 0 {
			return nil, fmt.Errorf("clock() takes no arguments")
		}
		return value.Number(uptime().Seconds()), nil
	})

	m.Put("str", func(args []value.Value) (value.Value, error) {
		if len(args) != 1 {
			return nil, fmt.Errorf("str() takes exactly one argument")
		}
		return intern(value.Print(args[0])), nil
	})

	m.Put("type", func(args []value.Value) (value.Value, error) {
		if len(args) != 1 {
			return nil, fmt.Errorf("type() takes exactly one argument")
		}
		return intern(args[0].Type()), nil
	})

	return &Registry{fns: m}
}

// Installer is satisfied by *vm.VM: the seam lets this package stay
// independent of the vm package's concrete type. NewNative routes the
// allocation through the VM's single tracked-allocation entry point, the
// same as every other heap object kind, so the Native is linked onto the
// heap list and counted for GC purposes.
type Installer interface {
	Define(name string, v value.Value)
	NewNative(name string, fn value.NativeFn) *value.Native
}

// Install binds every native in r into target's globals, wrapping each
// NativeFn in a *value.Native so it prints and type-checks like any other
// callable.
func (r *Registry) Install(target Installer) {
	r.fns.Iter(func(name string, fn value.NativeFn) bool {
		target.Define(name, target.NewNative(name, fn))
		return false
	})
}
