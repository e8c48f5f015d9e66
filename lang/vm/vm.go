// Package vm implements the bytecode interpreter: a fixed call-frame stack
// dispatching over value.Op, backed by the tracing garbage collector in
// gc.go. It is grounded on lang/machine/machine.go's dispatch-loop shape
// (switch over opcodes, explicit operand stack, inFlightErr-style error
// propagation) generalized from the teacher's register-free stack machine
// to the slots/frames model spec.md describes.
package vm

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/ember-lang/ember/lang/compiler"
	"github.com/ember-lang/ember/lang/table"
	"github.com/ember-lang/ember/lang/value"
)

// InterpretResult mirrors clox's three-way interpret() outcome, used by the
// driver to pick a process exit code.
type InterpretResult int

const (
	InterpretOK InterpretResult = iota
	InterpretCompileError
	InterpretRuntimeError
)

const (
	framesMax        = 64
	defaultStackSize = framesMax * 256
)

// CallFrame is one activation record: the closure being executed, its
// instruction pointer, and the base stack slot its locals start at.
type CallFrame struct {
	closure *value.Closure
	ip      int
	slots   int // index into vm.stack where this frame's window begins
}

// VM is the full interpreter state for one interpret() call: operand stack,
// call frames, globals, the open-upvalue list, and everything gc.go needs
// to trace and collect the object heap.
type VM struct {
	Stdout io.Writer
	Stderr io.Writer

	stack    []value.Value // fixed-capacity: never reallocated, so &stack[i] stays stable
	stackTop int

	frames     [framesMax]CallFrame
	frameCount int

	globals *table.Table
	strings *table.Table // intern table

	openUpvalues *value.Upvalue // sorted by descending stack slot

	initString *value.String

	// GC bookkeeping, see gc.go.
	objects        value.Value // intrusive heap list head
	bytesAllocated int64
	nextGCAt       int64
	grayStack      []value.HeapObject
	compilerRoots  []*value.Function
	stressGC       bool
	traceExec      bool
	growFactor     int64
	maxStackCfg    int
	startTime      time.Time
}

// Option configures a VM at construction time.
type Option func(*VM)

func WithStressGC(on bool) Option       { return func(vm *VM) { vm.stressGC = on } }
func WithTraceExecution(on bool) Option { return func(vm *VM) { vm.traceExec = on } }
func WithGrowFactor(f int64) Option     { return func(vm *VM) { vm.growFactor = f } }
func WithStdout(w io.Writer) Option     { return func(vm *VM) { vm.Stdout = w } }
func WithStderr(w io.Writer) Option     { return func(vm *VM) { vm.Stderr = w } }
func WithMaxStack(n int) Option         { return func(vm *VM) { vm.maxStackCfg = n } }
func WithInitialGCThreshold(n int64) Option {
	return func(vm *VM) {
		if n > 0 {
			vm.nextGCAt = n
		}
	}
}

// New returns a VM with empty globals and its standard library wired in by
// the caller (see internal/builtins).
func New(opts ...Option) *VM {
	vm := &VM{
		Stdout:     os.Stdout,
		Stderr:     os.Stderr,
		globals:    table.New(),
		strings:    table.New(),
		growFactor: 2,
		nextGCAt:   1 << 20,
		startTime:  time.Now(),
	}
	for _, opt := range opts {
		opt(vm)
	}
	if vm.maxStackCfg <= 0 {
		vm.maxStackCfg = defaultStackSize
	}
	vm.stack = make([]value.Value, vm.maxStackCfg)
	vm.initString = vm.InternString("init")
	return vm
}

// Define registers a global binding directly, used to install native
// functions before any user code runs.
func (vm *VM) Define(name string, v value.Value) {
	vm.globals.Set(vm.InternString(name), v)
}

// Uptime returns the duration since the VM was constructed, backing the
// clock() native.
func (vm *VM) Uptime() time.Duration { return time.Since(vm.startTime) }

// Interpret compiles and runs source, reporting compile diagnostics to
// Stderr and returning the clox-style three-way result.
func (vm *VM) Interpret(source string) InterpretResult {
	fn, diags := compiler.Compile(source, vm)
	if diags != nil {
		for _, d := range diags {
			fmt.Fprintln(vm.Stderr, d.Error())
		}
		return InterpretCompileError
	}

	vm.push(fn)
	closure := value.NewClosure(fn)
	vm.track(closure)
	vm.pop()
	vm.push(closure)
	vm.callValue(closure, 0)

	if err := vm.run(); err != nil {
		fmt.Fprintln(vm.Stderr, err.Error())
		vm.resetStack()
		return InterpretRuntimeError
	}
	return InterpretOK
}

func (vm *VM) resetStack() {
	vm.stackTop = 0
	vm.frameCount = 0
	vm.openUpvalues = nil
}

func (vm *VM) push(v value.Value) {
	vm.stack[vm.stackTop] = v
	vm.stackTop++
}

func (vm *VM) pop() value.Value {
	vm.stackTop--
	return vm.stack[vm.stackTop]
}

func (vm *VM) peek(distance int) value.Value {
	return vm.stack[vm.stackTop-1-distance]
}

// RuntimeError is returned by run() on an unrecoverable runtime fault; its
// Error() includes a youngest-first stack trace, per spec.md §7.
type RuntimeError struct {
	Message string
	Trace   []string
}

func (e *RuntimeError) Error() string {
	s := e.Message
	for _, line := range e.Trace {
		s += "\n" + line
	}
	return s
}

func (vm *VM) runtimeError(format string, args ...any) *RuntimeError {
	msg := fmt.Sprintf(format, args...)
	trace := make([]string, 0, vm.frameCount)
	for i := vm.frameCount - 1; i >= 0; i-- {
		fr := &vm.frames[i]
		fn := fr.closure.Function
		line := fn.Chunk.GetLine(fr.ip - 1)
		name := "script"
		if fn.Name != "" {
			name = fn.Name + "()"
		}
		trace = append(trace, fmt.Sprintf("[line %d] in %s", line, name))
	}
	return &RuntimeError{Message: msg, Trace: trace}
}
