package compiler

import (
	"github.com/ember-lang/ember/lang/token"
	"github.com/ember-lang/ember/lang/value"
)

func (p *parser) grouping(canAssign bool) {
	p.expression()
	p.consume(token.RPAREN, "Expect ')' after expression.")
}

func (p *parser) number(canAssign bool) {
	p.emitConstant(value.Number(parseNumber(p.previous.Lexeme)))
}

func (p *parser) string(canAssign bool) {
	lexeme := p.previous.Lexeme
	s := p.alloc.InternString(lexeme[1 : len(lexeme)-1]) // strip quotes
	p.emitConstant(s)
}

func (p *parser) literal(canAssign bool) {
	switch p.previous.Type {
	case token.FALSE:
		p.emitOp(value.OpFalse)
	case token.TRUE:
		p.emitOp(value.OpTrue)
	case token.NIL:
		p.emitOp(value.OpNil)
	}
}

func (p *parser) unary(canAssign bool) {
	opType := p.previous.Type
	p.parsePrecedence(precUnary)
	switch opType {
	case token.BANG:
		p.emitOp(value.OpNot)
	case token.MINUS:
		p.emitOp(value.OpNegate)
	}
}

func (p *parser) binary(canAssign bool) {
	opType := p.previous.Type
	rule := getRule(opType)
	p.parsePrecedence(rule.precedence + 1)

	switch opType {
	case token.BANG_EQ:
		p.emitBytes(byte(value.OpEqual), byte(value.OpNot))
	case token.EQ_EQ:
		p.emitOp(value.OpEqual)
	case token.GT:
		p.emitOp(value.OpGreater)
	case token.GT_EQ:
		p.emitBytes(byte(value.OpLess), byte(value.OpNot))
	case token.LT:
		p.emitOp(value.OpLess)
	case token.LT_EQ:
		p.emitBytes(byte(value.OpGreater), byte(value.OpNot))
	case token.PLUS:
		p.emitOp(value.OpAdd)
	case token.MINUS:
		p.emitOp(value.OpSubtract)
	case token.STAR:
		p.emitOp(value.OpMultiply)
	case token.SLASH:
		p.emitOp(value.OpDivide)
	}
}

func (p *parser) and_(canAssign bool) {
	endJump := p.emitJump(value.OpJumpIfFalse)
	p.emitOp(value.OpPop)
	p.parsePrecedence(precAnd)
	p.patchJump(endJump)
}

func (p *parser) or_(canAssign bool) {
	elseJump := p.emitJump(value.OpJumpIfFalse)
	endJump := p.emitJump(value.OpJump)

	p.patchJump(elseJump)
	p.emitOp(value.OpPop)

	p.parsePrecedence(precOr)
	p.patchJump(endJump)
}

func (p *parser) call(canAssign bool) {
	argCount := p.argumentList()
	p.emitBytes(byte(value.OpCall), byte(argCount))
}

func (p *parser) argumentList() int {
	argCount := 0
	if !p.check(token.RPAREN) {
		for {
			p.expression()
			if argCount == 255 {
				p.error("Can't have more than 255 arguments.")
			}
			argCount++
			if !p.match(token.COMMA) {
				break
			}
		}
	}
	p.consume(token.RPAREN, "Expect ')' after arguments.")
	return argCount
}

func (p *parser) dot(canAssign bool) {
	p.consume(token.IDENT, "Expect property name after '.'.")
	name := p.identifierConstant(p.previous.Lexeme)

	switch {
	case canAssign && p.match(token.EQ):
		p.expression()
		p.emitBytes(byte(value.OpSetProperty), byte(name))
	case p.match(token.LPAREN):
		argCount := p.argumentList()
		p.emitBytes(byte(value.OpInvoke), byte(name))
		p.emitByte(byte(argCount))
	default:
		p.emitBytes(byte(value.OpGetProperty), byte(name))
	}
}

func (p *parser) variable(canAssign bool) {
	p.namedVariable(p.previous.Lexeme, canAssign)
}

func (p *parser) this(canAssign bool) {
	if p.currentClass == nil {
		p.error("Can't use 'this' outside of a class.")
		return
	}
	p.variable(false)
}

func (p *parser) super_(canAssign bool) {
	switch {
	case p.currentClass == nil:
		p.error("Can't use 'super' outside of a class.")
	case !p.currentClass.hasSuperclass:
		p.error("Can't use 'super' in a class with no superclass.")
	}

	p.consume(token.DOT, "Expect '.' after 'super'.")
	p.consume(token.IDENT, "Expect superclass method name.")
	name := p.identifierConstant(p.previous.Lexeme)

	p.namedVariable("this", false)
	if p.match(token.LPAREN) {
		argCount := p.argumentList()
		p.namedVariable("super", false)
		p.emitBytes(byte(value.OpSuperInvoke), byte(name))
		p.emitByte(byte(argCount))
		return
	}

	p.namedVariable("super", false)
	p.emitBytes(byte(value.OpGetSuper), byte(name))
}

// namedVariable compiles a read or (if canAssign and an '=' follows) a write
// of the variable named name, resolving it as a local, an upvalue, or a
// global, in that order.
func (p *parser) namedVariable(name string, canAssign bool) {
	var getOp, setOp value.Op
	arg := p.resolveLocal(p.current, name)
	if arg != -1 {
		getOp, setOp = value.OpGetLocal, value.OpSetLocal
	} else if arg = p.resolveUpvalue(p.current, name); arg != -1 {
		getOp, setOp = value.OpGetUpvalue, value.OpSetUpvalue
	} else {
		arg = p.identifierConstant(name)
		getOp, setOp = value.OpGetGlobal, value.OpSetGlobal
	}

	if canAssign && p.match(token.EQ) {
		p.expression()
		p.emitBytes(byte(setOp), byte(arg))
	} else {
		p.emitBytes(byte(getOp), byte(arg))
	}
}
