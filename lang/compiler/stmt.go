package compiler

import (
	"github.com/ember-lang/ember/lang/token"
	"github.com/ember-lang/ember/lang/value"
)

func (p *parser) declaration() {
	switch {
	case p.match(token.CLASS):
		p.classDeclaration()
	case p.match(token.FUN):
		p.funDeclaration()
	case p.match(token.VAR):
		p.varDeclaration()
	default:
		p.statement()
	}

	if p.panicMode {
		p.synchronize()
	}
}

func (p *parser) statement() {
	switch {
	case p.match(token.PRINT):
		p.printStatement()
	case p.match(token.FOR):
		p.forStatement()
	case p.match(token.IF):
		p.ifStatement()
	case p.match(token.RETURN):
		p.returnStatement()
	case p.match(token.WHILE):
		p.whileStatement()
	case p.match(token.LBRACE):
		p.beginScope()
		p.block()
		p.endScope()
	default:
		p.expressionStatement()
	}
}

func (p *parser) varDeclaration() {
	global := p.parseVariable("Expect variable name.")

	if p.match(token.EQ) {
		p.expression()
	} else {
		p.emitOp(value.OpNil)
	}
	p.consume(token.SEMI, "Expect ';' after variable declaration.")

	p.defineVariable(global)
}

func (p *parser) funDeclaration() {
	global := p.parseVariable("Expect function name.")
	p.markInitialized()
	p.function(kindFunction)
	p.defineVariable(global)
}

// function compiles the parameter list and body of a function/method whose
// name has already been consumed (it's p.previous), pushing a fresh
// compilerState, emitting OP_CLOSURE with its upvalue descriptors, and
// restoring the enclosing compilerState.
func (p *parser) function(kind functionKind) {
	c := newCompilerState(p, p.current, kind, p.previous.Lexeme)
	p.current = c
	p.beginScope()

	p.consume(token.LPAREN, "Expect '(' after function name.")
	if !p.check(token.RPAREN) {
		for {
			p.current.fn.Arity++
			if p.current.fn.Arity > 255 {
				p.errorAtCurrent("Can't have more than 255 parameters.")
			}
			paramConst := p.parseVariable("Expect parameter name.")
			p.defineVariable(paramConst)
			if !p.match(token.COMMA) {
				break
			}
		}
	}
	p.consume(token.RPAREN, "Expect ')' after parameters.")
	p.consume(token.LBRACE, "Expect '{' before function body.")
	p.block()

	upvalues := c.upvalues
	fn := p.endFunction()

	idx := p.makeConstant(fn)
	p.emitBytes(byte(value.OpClosure), byte(idx))
	for _, uv := range upvalues {
		isLocal := byte(0)
		if uv.isLocal {
			isLocal = 1
		}
		p.emitBytes(isLocal, uv.index)
	}
}

func (p *parser) classDeclaration() {
	p.consume(token.IDENT, "Expect class name.")
	className := p.previous.Lexeme
	nameConst := p.identifierConstant(className)
	p.declareVariable()

	p.emitBytes(byte(value.OpClass), byte(nameConst))
	p.defineVariable(nameConst)

	classCompiler := &classCompilerState{enclosing: p.currentClass}
	p.currentClass = classCompiler

	if p.match(token.LT) {
		p.consume(token.IDENT, "Expect superclass name.")
		p.variable(false)

		if className == p.previous.Lexeme {
			p.error("A class can't inherit from itself.")
		}

		p.beginScope()
		p.addLocal("super")
		p.defineVariable(0)

		p.namedVariable(className, false)
		p.emitOp(value.OpInherit)
		classCompiler.hasSuperclass = true
	}

	p.namedVariable(className, false)
	p.consume(token.LBRACE, "Expect '{' before class body.")
	for !p.check(token.RBRACE) && !p.check(token.EOF) {
		p.method()
	}
	p.consume(token.RBRACE, "Expect '}' after class body.")
	p.emitOp(value.OpPop) // drop the class name pushed for method binding

	if classCompiler.hasSuperclass {
		p.endScope()
	}

	p.currentClass = p.currentClass.enclosing
}

func (p *parser) method() {
	p.consume(token.IDENT, "Expect method name.")
	name := p.previous.Lexeme
	nameConst := p.identifierConstant(name)

	kind := kindMethod
	if name == "init" {
		kind = kindInitializer
	}
	p.function(kind)
	p.emitBytes(byte(value.OpMethod), byte(nameConst))
}

func (p *parser) block() {
	for !p.check(token.RBRACE) && !p.check(token.EOF) {
		p.declaration()
	}
	p.consume(token.RBRACE, "Expect '}' after block.")
}

func (p *parser) expressionStatement() {
	p.expression()
	p.consume(token.SEMI, "Expect ';' after expression.")
	p.emitOp(value.OpPop)
}

func (p *parser) printStatement() {
	p.expression()
	p.consume(token.SEMI, "Expect ';' after value.")
	p.emitOp(value.OpPrint)
}

func (p *parser) returnStatement() {
	if p.current.kind == kindScript {
		p.error("Can't return from top-level code.")
	}

	if p.match(token.SEMI) {
		p.emitReturn()
		return
	}

	if p.current.kind == kindInitializer {
		p.error("Can't return a value from an initializer.")
	}

	p.expression()
	p.consume(token.SEMI, "Expect ';' after return value.")
	p.emitOp(value.OpReturn)
}

func (p *parser) ifStatement() {
	p.consume(token.LPAREN, "Expect '(' after 'if'.")
	p.expression()
	p.consume(token.RPAREN, "Expect ')' after condition.")

	thenJump := p.emitJump(value.OpJumpIfFalse)
	p.emitOp(value.OpPop)
	p.statement()

	elseJump := p.emitJump(value.OpJump)
	p.patchJump(thenJump)
	p.emitOp(value.OpPop)

	if p.match(token.ELSE) {
		p.statement()
	}
	p.patchJump(elseJump)
}

func (p *parser) whileStatement() {
	loopStart := len(p.chunk().Code)
	p.consume(token.LPAREN, "Expect '(' after 'while'.")
	p.expression()
	p.consume(token.RPAREN, "Expect ')' after condition.")

	exitJump := p.emitJump(value.OpJumpIfFalse)
	p.emitOp(value.OpPop)
	p.statement()
	p.emitLoop(loopStart)

	p.patchJump(exitJump)
	p.emitOp(value.OpPop)
}

// forStatement desugars `for (init; cond; incr) body` into the equivalent
// while loop: init runs once, then the condition gate, body, and increment
// (spliced in via a jump-over/jump-back pair) repeat.
func (p *parser) forStatement() {
	p.beginScope()
	p.consume(token.LPAREN, "Expect '(' after 'for'.")

	switch {
	case p.match(token.SEMI):
		// no initializer
	case p.match(token.VAR):
		p.varDeclaration()
	default:
		p.expressionStatement()
	}

	loopStart := len(p.chunk().Code)
	exitJump := -1
	if !p.match(token.SEMI) {
		p.expression()
		p.consume(token.SEMI, "Expect ';' after loop condition.")

		exitJump = p.emitJump(value.OpJumpIfFalse)
		p.emitOp(value.OpPop)
	}

	if !p.match(token.RPAREN) {
		bodyJump := p.emitJump(value.OpJump)

		incrStart := len(p.chunk().Code)
		p.expression()
		p.emitOp(value.OpPop)
		p.consume(token.RPAREN, "Expect ')' after for clauses.")

		p.emitLoop(loopStart)
		loopStart = incrStart
		p.patchJump(bodyJump)
	}

	p.statement()
	p.emitLoop(loopStart)

	if exitJump != -1 {
		p.patchJump(exitJump)
		p.emitOp(value.OpPop)
	}

	p.endScope()
}

// synchronize discards tokens until it reaches a likely statement boundary,
// so a single syntax error doesn't cascade into a flood of diagnostics.
func (p *parser) synchronize() {
	p.panicMode = false

	for p.current_.Type != token.EOF {
		if p.previous.Type == token.SEMI {
			return
		}
		switch p.current_.Type {
		case token.CLASS, token.FUN, token.VAR, token.FOR, token.IF, token.WHILE, token.PRINT, token.RETURN:
			return
		}
		p.advance()
	}
}
