package compiler

import (
	"github.com/ember-lang/ember/lang/token"
	"github.com/ember-lang/ember/lang/value"
)

func (p *parser) beginScope() { p.current.scopeDepth++ }

// endScope pops every local declared in the scope being closed, emitting
// OP_CLOSE_UPVALUE for locals that were captured by a nested closure and
// OP_POP for the rest.
func (p *parser) endScope() {
	c := p.current
	c.scopeDepth--

	for len(c.locals) > 0 && c.locals[len(c.locals)-1].depth > c.scopeDepth {
		last := c.locals[len(c.locals)-1]
		if last.isCaptured {
			p.emitOp(value.OpCloseUpvalue)
		} else {
			p.emitOp(value.OpPop)
		}
		c.locals = c.locals[:len(c.locals)-1]
	}
}

func (p *parser) declareVariable() {
	if p.current.scopeDepth == 0 {
		return // globals are late-bound by name, not declared into a slot
	}

	name := p.previous.Lexeme
	c := p.current
	for i := len(c.locals) - 1; i >= 0; i-- {
		l := c.locals[i]
		if l.depth != -1 && l.depth < c.scopeDepth {
			break
		}
		if identifiersEqual(name, l.name) {
			p.error("Already a variable with this name in this scope.")
		}
	}
	p.addLocal(name)
}

func (p *parser) addLocal(name string) {
	if len(p.current.locals) >= maxLocals {
		p.error("Too many local variables in function.")
		return
	}
	p.current.locals = append(p.current.locals, local{name: name, depth: -1})
}

// markInitialized marks the most recently declared local as usable: it's
// called right after the local's initializer has been fully compiled.
func (p *parser) markInitialized() {
	if p.current.scopeDepth == 0 {
		return
	}
	p.current.locals[len(p.current.locals)-1].depth = p.current.scopeDepth
}

// resolveLocal looks up name in c's own locals only, returning -1 if it is
// not declared there. Reading a local whose depth is still -1 (i.e. still
// inside its own initializer) is a compile error.
func (p *parser) resolveLocal(c *compilerState, name string) int {
	for i := len(c.locals) - 1; i >= 0; i-- {
		if identifiersEqual(c.locals[i].name, name) {
			if c.locals[i].depth == -1 {
				p.error("Can't read local variable in its own initializer.")
			}
			return i
		}
	}
	return -1
}

// resolveUpvalue recursively searches enclosing compilerStates for name. If
// it is a local there, that compiler's local is marked captured, and a new
// upvalue descriptor with isLocal=true is added. Otherwise it recurses, and
// if found, adds a descriptor with isLocal=false referring to the
// enclosing function's own upvalue at that index. Existing descriptors for
// the same source are reused rather than duplicated.
func (p *parser) resolveUpvalue(c *compilerState, name string) int {
	if c.enclosing == nil {
		return -1
	}

	if local := p.resolveLocal(c.enclosing, name); local != -1 {
		c.enclosing.locals[local].isCaptured = true
		return p.addUpvalue(c, uint8(local), true)
	}

	if up := p.resolveUpvalue(c.enclosing, name); up != -1 {
		return p.addUpvalue(c, uint8(up), false)
	}

	return -1
}

func (p *parser) addUpvalue(c *compilerState, index uint8, isLocal bool) int {
	for i, u := range c.upvalues {
		if u.index == index && u.isLocal == isLocal {
			return i
		}
	}
	if len(c.upvalues) >= maxUpvalues {
		p.error("Too many closure variables in function.")
		return 0
	}
	c.upvalues = append(c.upvalues, upvalueDesc{index: index, isLocal: isLocal})
	return len(c.upvalues) - 1
}

// parseVariable consumes an identifier token and declares it, returning the
// constant-pool index of its name for a global, or 0 (unused) for a local.
func (p *parser) parseVariable(errMessage string) int {
	p.consume(token.IDENT, errMessage)
	p.declareVariable()
	if p.current.scopeDepth > 0 {
		return 0
	}
	return p.identifierConstant(p.previous.Lexeme)
}

func (p *parser) defineVariable(global int) {
	if p.current.scopeDepth > 0 {
		p.markInitialized()
		return
	}
	p.emitBytes(byte(value.OpDefineGlobal), byte(global))
}
