// Package compiler implements a single-pass Pratt parser that compiles
// ember source directly to bytecode: there is no separate AST or resolver
// pass. It is grounded on original_source/compiler.c, restructured into the
// compiler-state-stack shape the teacher repo uses for its own (AST-based)
// compiler package (lang/compiler/compiler.go's pcomp/fcomp split), adapted
// here to a single pcomp-equivalent (*compilerState) stack since there is no
// separate resolver pass to hand scope information to.
package compiler

import (
	"fmt"
	"strconv"

	"github.com/ember-lang/ember/lang/scanner"
	"github.com/ember-lang/ember/lang/token"
	"github.com/ember-lang/ember/lang/value"
)

// maxLocals and maxUpvalues mirror UINT8_COUNT in the original: a single
// OP_GET_LOCAL/OP_GET_UPVALUE operand byte addresses at most 256 slots.
const (
	maxLocals    = 256
	maxUpvalues  = 256
	maxConstants = 1 << 24 // OP_CONSTANT_LONG has a 24-bit operand
)

// Allocator is the VM's allocation surface that the compiler needs: interning
// string literals into the same table the runtime uses, allocating Function
// objects through the same GC-tracked entry point as every other heap
// object, and pinning the function currently being compiled as a GC root for
// the duration of its compilation (spec roots: "every temporary root held by
// the compiler stack").
type Allocator interface {
	InternString(chars string) *value.String
	NewFunction() *value.Function
	PushCompilerRoot(fn *value.Function)
	PopCompilerRoot()
}

// Diagnostic is a single compile error, formatted the way spec.md §7
// requires: "[line L] Error at '<token>': <message>".
type Diagnostic struct {
	Line    int
	Where   string
	Message string
}

func (d *Diagnostic) Error() string {
	return fmt.Sprintf("[line %d] Error%s: %s", d.Line, d.Where, d.Message)
}

// Compile compiles source into a top-level script Function. If any error is
// encountered, Compile still returns as many diagnostics as panic-mode
// resynchronization could collect, and a nil Function.
func Compile(source string, alloc Allocator) (*value.Function, []*Diagnostic) {
	p := &parser{scan: scanner.New(source), alloc: alloc}
	c := newCompilerState(p, nil, kindScript, "")
	p.current = c

	p.advance()
	for !p.match(token.EOF) {
		p.declaration()
	}
	fn := p.endFunction()

	if p.hadError {
		return nil, p.diags
	}
	return fn, nil
}

type functionKind int

const (
	kindScript functionKind = iota
	kindFunction
	kindMethod
	kindInitializer
)

type local struct {
	name       string
	depth      int // -1 while uninitialized
	isCaptured bool
}

type upvalueDesc struct {
	index   uint8
	isLocal bool
}

// compilerState tracks everything scoped to a single Function being
// compiled: its locals, its upvalue descriptors, and the enclosing
// compilerState so upvalue resolution can walk outward.
type compilerState struct {
	enclosing *compilerState
	fn        *value.Function
	kind      functionKind

	locals     []local
	upvalues   []upvalueDesc
	scopeDepth int
}

func newCompilerState(p *parser, enclosing *compilerState, kind functionKind, name string) *compilerState {
	fn := p.alloc.NewFunction()
	fn.Name = name
	c := &compilerState{enclosing: enclosing, fn: fn, kind: kind}

	// Slot 0 is reserved: the receiver in methods/initializers, or an
	// unnamed placeholder for a plain function/script.
	recv := ""
	if kind == kindMethod || kind == kindInitializer {
		recv = "this"
	}
	c.locals = append(c.locals, local{name: recv, depth: 0})

	p.alloc.PushCompilerRoot(fn)
	return c
}

// classCompilerState tracks the enclosing class (if any) so `this` and
// `super` resolve correctly, as a parallel stack to compilerState.
type classCompilerState struct {
	enclosing        *classCompilerState
	hasSuperclass    bool
}

// parser holds all single-pass parsing state: the token stream, panic-mode
// bookkeeping, and the stack of compilerState/classCompilerState currently
// in progress.
type parser struct {
	scan *scanner.Scanner
	alloc Allocator

	previous scanner.Token
	current_ scanner.Token

	hadError  bool
	panicMode bool
	diags     []*Diagnostic

	current      *compilerState
	currentClass *classCompilerState
}

func (p *parser) chunk() *value.Chunk { return p.current.fn.Chunk }

func (p *parser) advance() {
	p.previous = p.current_
	for {
		p.current_ = p.scan.Next()
		if p.current_.Type != token.ILLEGAL {
			break
		}
		p.errorAtCurrent(p.current_.Lexeme)
	}
}

func (p *parser) check(t token.Token) bool { return p.current_.Type == t }

func (p *parser) match(t token.Token) bool {
	if !p.check(t) {
		return false
	}
	p.advance()
	return true
}

func (p *parser) consume(t token.Token, message string) {
	if p.current_.Type == t {
		p.advance()
		return
	}
	p.errorAtCurrent(message)
}

func (p *parser) errorAtCurrent(message string) { p.errorAt(p.current_, message) }
func (p *parser) error(message string)          { p.errorAt(p.previous, message) }

func (p *parser) errorAt(tok scanner.Token, message string) {
	if p.panicMode {
		return
	}
	p.panicMode = true

	where := ""
	switch {
	case tok.Type == token.EOF:
		where = " at end"
	case tok.Type == token.ILLEGAL:
		// lexical error: message is already descriptive, token text isn't useful
	default:
		where = fmt.Sprintf(" at '%s'", tok.Lexeme)
	}

	p.diags = append(p.diags, &Diagnostic{Line: tok.Line, Where: where, Message: message})
	p.hadError = true
}

// --- byte emission -------------------------------------------------------

func (p *parser) emitByte(b byte) {
	p.chunk().Write(b, p.previous.Line)
}

func (p *parser) emitOp(op value.Op) { p.emitByte(byte(op)) }

func (p *parser) emitBytes(a, b byte) {
	p.emitByte(a)
	p.emitByte(b)
}

func (p *parser) emitLoop(loopStart int) {
	p.emitOp(value.OpLoop)
	offset := len(p.chunk().Code) - loopStart + 2
	if offset > 0xffff {
		p.error("Loop body too large.")
	}
	p.emitByte(byte((offset >> 8) & 0xff))
	p.emitByte(byte(offset & 0xff))
}

// emitJump emits a jump instruction with a placeholder 16-bit offset and
// returns the offset of the first placeholder byte, to be patched once the
// jump target is known.
func (p *parser) emitJump(op value.Op) int {
	p.emitOp(op)
	p.emitByte(0xff)
	p.emitByte(0xff)
	return len(p.chunk().Code) - 2
}

func (p *parser) patchJump(offset int) {
	jump := len(p.chunk().Code) - offset - 2
	if jump > 0xffff {
		p.error("Too much code to jump over.")
	}
	p.chunk().Code[offset] = byte((jump >> 8) & 0xff)
	p.chunk().Code[offset+1] = byte(jump & 0xff)
}

func (p *parser) emitReturn() {
	if p.current.kind == kindInitializer {
		// an initializer with a bare `return;` returns `this`, not nil
		p.emitBytes(byte(value.OpGetLocal), 0)
	} else {
		p.emitOp(value.OpNil)
	}
	p.emitOp(value.OpReturn)
}

// makeConstant adds v to the current chunk's constant pool and returns a
// constant reference: when the pool holds 256 or fewer entries it fits an
// OP_CONSTANT operand byte, otherwise the caller must emit OP_CONSTANT_LONG.
func (p *parser) makeConstant(v value.Value) int {
	idx := p.chunk().AddConstant(v)
	if idx >= maxConstants {
		p.error("Too many constants in one chunk.")
		return 0
	}
	return idx
}

func (p *parser) emitConstant(v value.Value) {
	p.emitConstantIndex(p.makeConstant(v))
}

func (p *parser) emitConstantIndex(idx int) {
	if idx <= 0xff {
		p.emitBytes(byte(value.OpConstant), byte(idx))
		return
	}
	p.emitOp(value.OpConstantLong)
	p.emitByte(byte(idx & 0xff))
	p.emitByte(byte((idx >> 8) & 0xff))
	p.emitByte(byte((idx >> 16) & 0xff))
}

// endFunction finishes compiling the current function, emits its implicit
// return, pops it as a GC root, and restores the enclosing compilerState.
func (p *parser) endFunction() *value.Function {
	p.emitReturn()
	fn := p.current.fn
	fn.UpvalueCount = len(p.current.upvalues)
	p.alloc.PopCompilerRoot()
	p.current = p.current.enclosing
	return fn
}

func (p *parser) identifierConstant(name string) int {
	return p.makeConstant(p.alloc.InternString(name))
}

func identifiersEqual(a, b string) bool { return a == b }

// parseNumber converts a scanned numeric lexeme to a float64, grounded on
// original_source/compiler.c's number() which hands the lexeme straight to
// strtod.
func parseNumber(lexeme string) float64 {
	f, err := strconv.ParseFloat(lexeme, 64)
	if err != nil {
		return 0
	}
	return f
}
