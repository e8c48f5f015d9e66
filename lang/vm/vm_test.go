package vm_test

import (
	"bytes"
	"strconv"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/ember-lang/ember/lang/vm"
)

func run(t *testing.T, src string) (stdout string, result vm.InterpretResult) {
	t.Helper()
	var out, errOut bytes.Buffer
	m := vm.New(vm.WithStdout(&out), vm.WithStderr(&errOut))
	res := m.Interpret(src)
	if res == vm.InterpretRuntimeError {
		t.Logf("runtime error: %s", errOut.String())
	}
	return out.String(), res
}

func TestArithmeticPrecedence(t *testing.T) {
	out, res := run(t, `print 1 + 2 * 3;`)
	require.Equal(t, vm.InterpretOK, res)
	require.Equal(t, "7\n", out)
}

func TestForLoopAccumulates(t *testing.T) {
	out, res := run(t, `var x = 0; for (var i = 0; i < 5; i = i + 1) x = x + i; print x;`)
	require.Equal(t, vm.InterpretOK, res)
	require.Equal(t, "10\n", out)
}

func TestClosureCapturesUpvalueAcrossCalls(t *testing.T) {
	src := `
fun mk() {
  var a = 1;
  fun inc() {
    a = a + 1;
    return a;
  }
  return inc;
}
var f = mk();
print f();
print f();
print f();
`
	out, res := run(t, src)
	require.Equal(t, vm.InterpretOK, res)
	require.Equal(t, "2\n3\n4\n", out)
}

func TestInheritanceAndSuper(t *testing.T) {
	src := `
class A { hi() { print "a"; } }
class B < A { hi() { super.hi(); print "b"; } }
B().hi();
`
	out, res := run(t, src)
	require.Equal(t, vm.InterpretOK, res)
	require.Equal(t, "a\nb\n", out)
}

func TestInitializerSetsField(t *testing.T) {
	src := `class P { init(n) { this.n = n; } } print P(7).n;`
	out, res := run(t, src)
	require.Equal(t, vm.InterpretOK, res)
	require.Equal(t, "7\n", out)
}

func TestStringConcatenation(t *testing.T) {
	out, res := run(t, `print "foo" + "bar";`)
	require.Equal(t, vm.InterpretOK, res)
	require.Equal(t, "foobar\n", out)
}

func TestUndefinedGlobalIsRuntimeError(t *testing.T) {
	_, res := run(t, `print nope;`)
	require.Equal(t, vm.InterpretRuntimeError, res)
}

func TestCompileErrorReturnsCompileErrorResult(t *testing.T) {
	_, res := run(t, `var;`)
	require.Equal(t, vm.InterpretCompileError, res)
}

func TestDeepRecursionOverflowsStack(t *testing.T) {
	// 65 nested calls exceeds the 64-frame call stack: "Stack overflow."
	var b strings.Builder
	b.WriteString("fun rec(n) { if (n <= 0) return 0; return 1 + rec(n - 1); } print rec(" + strconv.Itoa(100) + ");")
	var out, errOut bytes.Buffer
	m := vm.New(vm.WithStdout(&out), vm.WithStderr(&errOut))
	res := m.Interpret(b.String())
	require.Equal(t, vm.InterpretRuntimeError, res)
	require.Contains(t, errOut.String(), "Stack overflow")
}

func TestClockIsUndefinedWithoutBuiltins(t *testing.T) {
	// clock() is not installed by the bare VM (internal/builtins wires it in
	// at the CLI layer), so calling it is an undefined-global runtime error.
	_, res := run(t, `print clock();`)
	require.Equal(t, vm.InterpretRuntimeError, res)
}
