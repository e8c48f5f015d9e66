package vm

import "github.com/ember-lang/ember/lang/value"

// This file implements the precise mark-and-sweep collector spec.md §4.5
// describes, grounded on original_source/memory.c's reallocate/collectGarbage
// shape: every heap allocation funnels through track, which is the single
// safe point a collection may run at; marking uses a gray worklist rather
// than recursion so deeply nested structures can't blow the Go stack.

// track registers a freshly allocated heap object on the VM's intrusive
// list and accounts for its size, triggering a collection first if the
// configured threshold has been crossed.
func (vm *VM) track(obj value.HeapObject) {
	vm.bytesAllocated += objectSize(obj)

	if vm.stressGC || vm.bytesAllocated > vm.nextGCAt {
		vm.collectGarbage()
	}

	obj.SetNext(vm.objects)
	vm.objects = obj
}

// objectSize is a coarse per-kind accounting unit; ember doesn't need exact
// byte counts, only a monotonic measure that makes nextGCAt meaningful.
func objectSize(obj value.HeapObject) int64 {
	switch o := obj.(type) {
	case *value.String:
		return int64(32 + len(o.Chars))
	case *value.Function:
		return 64
	case *value.Native:
		return 32
	case *value.Upvalue:
		return 24
	case *value.Closure:
		return int64(24 + 8*len(o.Upvalues))
	case *value.Class:
		return 48
	case *value.Instance:
		return 48
	case *value.BoundMethod:
		return 24
	default:
		return 16
	}
}

// InternString returns the canonical *String for chars, allocating and
// interning a new one if this is the first time chars has been seen. Every
// string literal and every runtime string concatenation routes through
// here so Value equality on strings can use pointer identity (spec.md §4.4).
func (vm *VM) InternString(chars string) *value.String {
	hash := value.FNV1a32(chars)
	if existing := vm.strings.FindString(chars, hash); existing != nil {
		return existing
	}

	s := &value.String{Chars: chars, Hash: hash}
	// Pin s on the stack across the allocations inside track/Set, matching
	// original_source/vm.c's push-before-allocate discipline for any
	// transient root that must survive a GC safe point.
	vm.push(s)
	vm.track(s)
	vm.strings.Set(s, value.Bool(true))
	vm.pop()
	return s
}

// NewFunction allocates a Function and tracks it on the heap, implementing
// compiler.Allocator.
func (vm *VM) NewFunction() *value.Function {
	fn := value.NewFunction()
	vm.track(fn)
	return fn
}

// NewNative allocates a Native wrapping fn and tracks it on the heap, the
// same way every other heap object is constructed: implements
// internal/builtins.Installer.
func (vm *VM) NewNative(name string, fn value.NativeFn) *value.Native {
	n := &value.Native{Name: name, Fn: fn}
	vm.track(n)
	return n
}

// PushCompilerRoot pins fn as a GC root for the duration of its compilation:
// while a function body is still being compiled, nothing on the VM stack
// references it yet, so markRoots must walk this list explicitly.
func (vm *VM) PushCompilerRoot(fn *value.Function) {
	vm.compilerRoots = append(vm.compilerRoots, fn)
}

func (vm *VM) PopCompilerRoot() {
	vm.compilerRoots = vm.compilerRoots[:len(vm.compilerRoots)-1]
}

// collectGarbage runs one full mark-sweep cycle: mark every root, trace
// until the gray stack is empty, drop unmarked strings from the intern
// table, sweep the heap list, then grow the next threshold.
func (vm *VM) collectGarbage() {
	vm.markRoots()
	vm.traceReferences()
	vm.strings.RemoveWhite()
	vm.sweep()

	vm.nextGCAt = vm.bytesAllocated * vm.growFactor
}

func (vm *VM) markRoots() {
	for i := 0; i < vm.stackTop; i++ {
		vm.markValue(vm.stack[i])
	}
	for i := 0; i < vm.frameCount; i++ {
		vm.markObject(vm.frames[i].closure)
	}
	for u := vm.openUpvalues; u != nil; u = u.NextOpen {
		vm.markObject(u)
	}
	vm.globals.Mark(vm.markValue)
	for _, fn := range vm.compilerRoots {
		vm.markObject(fn)
	}
	vm.markObject(vm.initString)
}

// markValue marks v if it is a heap object; non-heap Values (Nil, Bool,
// Number) carry no allocation and are no-ops.
func (vm *VM) markValue(v value.Value) {
	if obj, ok := v.(value.HeapObject); ok {
		vm.markObject(obj)
	}
}

// markObject sets obj's mark bit and pushes it onto the gray worklist, but
// only the first time it's reached in this cycle.
func (vm *VM) markObject(obj value.HeapObject) {
	if obj == nil || isNilInterface(obj) || obj.Marked() {
		return
	}
	obj.SetMarked(true)
	vm.grayStack = append(vm.grayStack, obj)
}

// isNilInterface guards against a typed-nil pointer (e.g. a nil *Closure
// stored as a value.HeapObject) being treated as a live reference.
func isNilInterface(obj value.HeapObject) bool {
	switch o := obj.(type) {
	case *value.String:
		return o == nil
	case *value.Function:
		return o == nil
	case *value.Native:
		return o == nil
	case *value.Upvalue:
		return o == nil
	case *value.Closure:
		return o == nil
	case *value.Class:
		return o == nil
	case *value.Instance:
		return o == nil
	case *value.BoundMethod:
		return o == nil
	}
	return false
}

// traceReferences drains the gray stack, blackening each object by marking
// everything it points to, until no new gray objects are discovered.
func (vm *VM) traceReferences() {
	for len(vm.grayStack) > 0 {
		n := len(vm.grayStack) - 1
		obj := vm.grayStack[n]
		vm.grayStack = vm.grayStack[:n]
		vm.blacken(obj)
	}
}

func (vm *VM) blacken(obj value.HeapObject) {
	switch o := obj.(type) {
	case *value.String, *value.Native:
		// no outgoing references
	case *value.Upvalue:
		vm.markValue(o.Closed)
	case *value.Function:
		for _, c := range o.Chunk.Constants {
			vm.markValue(c)
		}
	case *value.Closure:
		vm.markObject(o.Function)
		for _, u := range o.Upvalues {
			if u != nil {
				vm.markObject(u)
			}
		}
	case *value.Class:
		for _, m := range o.Methods {
			vm.markObject(m)
		}
	case *value.Instance:
		vm.markObject(o.Class)
		for _, f := range o.Fields {
			vm.markValue(f)
		}
	case *value.BoundMethod:
		vm.markObject(o.Receiver)
		vm.markObject(o.Method)
	}
}

// sweep walks the intrusive heap list, unlinking and dropping every object
// that wasn't reached by this cycle's trace, and clears the mark bit on
// everything that survives.
func (vm *VM) sweep() {
	var prev value.HeapObject
	cur, _ := vm.objects.(value.HeapObject)

	for cur != nil {
		next, _ := cur.Next().(value.HeapObject)
		if cur.Marked() {
			cur.SetMarked(false)
			prev = cur
		} else {
			if prev != nil {
				prev.SetNext(cur.Next())
			} else {
				vm.objects = cur.Next()
			}
		}
		cur = next
	}
}
