package value

import "fmt"

// objHeader is the common header every heap object embeds: the tracing
// garbage collector's mark bit and the object's link in the VM's intrusive
// heap list. Embedding it (rather than tagging values in a union, as the
// original C does) is the idiomatic Go way to give every heap kind the same
// GC bookkeeping fields while keeping Value itself a plain interface.
type objHeader struct {
	marked bool
	next   Value // next object in the VM's intrusive allocation list
}

// Marked reports whether the object has been reached by the current GC
// cycle's trace.
func (h *objHeader) Marked() bool { return h.marked }

// SetMarked sets or clears the object's mark bit.
func (h *objHeader) SetMarked(m bool) { h.marked = m }

// Next returns the next object in the VM's heap list.
func (h *objHeader) Next() Value { return h.next }

// SetNext sets the object's link in the VM's heap list.
func (h *objHeader) SetNext(v Value) { h.next = v }

// HeapObject is implemented by every heap-allocated Value; the VM's
// allocator and garbage collector operate only in terms of this interface so
// that gc.go never needs a type switch just to walk the heap list.
type HeapObject interface {
	Value
	Marked() bool
	SetMarked(bool)
	Next() Value
	SetNext(Value)
}

// String is an immutable, interned sequence of bytes. Two Strings with equal
// content are always the same *String value: the VM's string intern table
// guarantees it, so Value equality on strings can use pointer identity.
type String struct {
	objHeader
	Chars string
	Hash  uint32
}

func (s *String) String() string { return s.Chars }
func (s *String) Type() string   { return "string" }

// FNV1a32 computes the 32-bit FNV-1a hash of s, used both to place a String
// in the intern table and to place it as a key in a Table.
func FNV1a32(s string) uint32 {
	var h uint32 = 2166136261
	for i := 0; i < len(s); i++ {
		h ^= uint32(s[i])
		h *= 16777619
	}
	return h
}

// Function is a compiled function: its arity, how many upvalues its
// closures need, its own bytecode chunk, and its name (empty for the
// implicit top-level script function).
type Function struct {
	objHeader
	Arity        int
	UpvalueCount int
	Chunk        *Chunk
	Name         string
}

func NewFunction() *Function { return &Function{Chunk: New()} }

func (f *Function) String() string {
	if f.Name == "" {
		return "<script>"
	}
	return fmt.Sprintf("<fn %s>", f.Name)
}
func (f *Function) Type() string { return "function" }

// NativeFn is the signature every built-in function implements: it receives
// the arguments passed at the call site and returns a result or an error
// (reported to the caller as a runtime error).
type NativeFn func(args []Value) (Value, error)

// Native wraps a host-implemented function so it can be called from ember
// code like any other callable.
type Native struct {
	objHeader
	Name string
	Fn   NativeFn
}

func (n *Native) String() string { return fmt.Sprintf("<native fn %s>", n.Name) }
func (n *Native) Type() string   { return "native" }

// Upvalue is a closure's indirect reference to a variable declared in an
// enclosing function. While open, Location points into a live VM stack
// slot; Close copies that slot's value into Closed and repoints Location at
// it, a transition that happens at most once.
type Upvalue struct {
	objHeader
	Location *Value // points into the stack while open, at &Closed once closed
	Closed   Value
	NextOpen *Upvalue // next entry in the VM's open-upvalue list (by descending slot)
}

func NewUpvalue(slot *Value) *Upvalue {
	return &Upvalue{Location: slot}
}

// Close promotes the upvalue from open to closed: ownership of the value
// moves from the stack slot into the upvalue itself.
func (u *Upvalue) Close() {
	u.Closed = *u.Location
	u.Location = &u.Closed
}

func (u *Upvalue) String() string { return "upvalue" }
func (u *Upvalue) Type() string   { return "upvalue" }

// Closure pairs a Function with the array of Upvalues its body captured
// from enclosing scopes.
type Closure struct {
	objHeader
	Function *Function
	Upvalues []*Upvalue
}

func NewClosure(fn *Function) *Closure {
	return &Closure{Function: fn, Upvalues: make([]*Upvalue, fn.UpvalueCount)}
}

func (c *Closure) String() string { return c.Function.String() }
func (c *Closure) Type() string   { return "closure" }
func (c *Closure) Name() string   { return c.Function.Name }

// Class is a class declaration's runtime representation: its name and the
// table mapping method name to the Closure implementing it.
type Class struct {
	objHeader
	Name    string
	Methods map[string]*Closure
}

func NewClass(name string) *Class {
	return &Class{Name: name, Methods: make(map[string]*Closure)}
}

func (c *Class) String() string { return c.Name }
func (c *Class) Type() string   { return "class" }

// Instance is an instance of a Class: the class it was constructed from and
// its own table of field values.
type Instance struct {
	objHeader
	Class  *Class
	Fields map[string]Value
}

func NewInstance(class *Class) *Instance {
	return &Instance{Class: class, Fields: make(map[string]Value)}
}

func (i *Instance) String() string { return fmt.Sprintf("%s instance", i.Class.Name) }
func (i *Instance) Type() string   { return "instance" }

// BoundMethod pairs a receiver Instance with the Closure implementing the
// method looked up on it, produced by a GET_PROPERTY that resolves to a
// method rather than a field, and by GET_SUPER. INVOKE and SUPER_INVOKE call
// the method directly without creating one.
type BoundMethod struct {
	objHeader
	Receiver *Instance
	Method   *Closure
}

func (b *BoundMethod) String() string { return b.Method.String() }
func (b *BoundMethod) Type() string   { return "bound method" }
