package compiler_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/ember-lang/ember/lang/compiler"
	"github.com/ember-lang/ember/lang/value"
)

// fakeAllocator is a minimal compiler.Allocator that interns strings in a
// plain Go map instead of the VM's GC-tracked table: enough to exercise the
// compiler in isolation.
type fakeAllocator struct {
	strings map[string]*value.String
	roots   []*value.Function
}

func newFakeAllocator() *fakeAllocator {
	return &fakeAllocator{strings: make(map[string]*value.String)}
}

func (a *fakeAllocator) InternString(chars string) *value.String {
	if s, ok := a.strings[chars]; ok {
		return s
	}
	s := &value.String{Chars: chars, Hash: value.FNV1a32(chars)}
	a.strings[chars] = s
	return s
}

func (a *fakeAllocator) NewFunction() *value.Function { return value.NewFunction() }
func (a *fakeAllocator) PushCompilerRoot(fn *value.Function) {
	a.roots = append(a.roots, fn)
}
func (a *fakeAllocator) PopCompilerRoot() { a.roots = a.roots[:len(a.roots)-1] }

func compile(t *testing.T, src string) *value.Function {
	t.Helper()
	fn, diags := compiler.Compile(src, newFakeAllocator())
	require.Nil(t, diags, "unexpected diagnostics: %v", diags)
	require.NotNil(t, fn)
	return fn
}

func TestCompileConstantReturn(t *testing.T) {
	fn := compile(t, "fun f() { return 1; } print f();")
	require.NotEmpty(t, fn.Chunk.Code)
}

func TestCompileReportsUnexpectedToken(t *testing.T) {
	_, diags := compiler.Compile("var;", newFakeAllocator())
	require.NotEmpty(t, diags)
}

func TestCompileResynchronizesAfterError(t *testing.T) {
	// two independent syntax errors separated by a semicolon: panic-mode
	// resynchronization should keep compiling past the first one instead of
	// aborting, so both get reported rather than just the first.
	_, diags := compiler.Compile("var x = ;\nvar y = ;", newFakeAllocator())
	require.GreaterOrEqual(t, len(diags), 2)
}

func TestReadingLocalInOwnInitializerIsCompileError(t *testing.T) {
	_, diags := compiler.Compile("{ var x = x; }", newFakeAllocator())
	require.NotEmpty(t, diags)
	found := false
	for _, d := range diags {
		if d.Message == "Can't read local variable in its own initializer." {
			found = true
		}
	}
	require.True(t, found)
}

func TestTopLevelReturnWithValueIsCompileError(t *testing.T) {
	_, diags := compiler.Compile("return 1;", newFakeAllocator())
	require.NotEmpty(t, diags)
}

func TestFunctionDeclarationEmitsClosure(t *testing.T) {
	fn := compile(t, "fun add(a, b) { return a + b; } print add(1, 2);")
	require.NotEmpty(t, fn.Chunk.Constants)

	foundClosure := false
	for _, op := range fn.Chunk.Code {
		if value.Op(op) == value.OpClosure {
			foundClosure = true
		}
	}
	require.True(t, foundClosure)
}

func TestClassDeclarationEmitsClassAndMethod(t *testing.T) {
	fn := compile(t, "class A { hi() { print \"hi\"; } }")
	ops := make(map[value.Op]bool)
	for _, b := range fn.Chunk.Code {
		ops[value.Op(b)] = true
	}
	require.True(t, ops[value.OpClass])
	require.True(t, ops[value.OpMethod])
}

func TestSuperOutsideClassIsCompileError(t *testing.T) {
	_, diags := compiler.Compile("fun f() { super.x(); }", newFakeAllocator())
	require.NotEmpty(t, diags)
}

func Test257thConstantUsesConstantLong(t *testing.T) {
	src := "var a = 0;\n"
	for i := 0; i < 300; i++ {
		src += "print " + itoa(i) + ";\n"
	}
	fn := compile(t, src)

	foundLong := false
	for _, b := range fn.Chunk.Code {
		if value.Op(b) == value.OpConstantLong {
			foundLong = true
		}
	}
	require.True(t, foundLong, "expected OP_CONSTANT_LONG once the constant pool exceeds 256 entries")
}

func itoa(n int) string {
	if n == 0 {
		return "0"
	}
	digits := ""
	for n > 0 {
		digits = string(rune('0'+n%10)) + digits
		n /= 10
	}
	return digits
}
