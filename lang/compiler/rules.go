package compiler

import "github.com/ember-lang/ember/lang/token"

// precedence levels, low to high.
type precedence int

const (
	precNone       precedence = iota
	precAssignment            // =
	precOr                    // or
	precAnd                   // and
	precEquality              // == !=
	precComparison            // < > <= >=
	precTerm                  // + -
	precFactor                // * /
	precUnary                 // ! -
	precCall                  // . ()
	precPrimary
)

type parseFn func(p *parser, canAssign bool)

type parseRule struct {
	prefix     parseFn
	infix      parseFn
	precedence precedence
}

var rules map[token.Token]parseRule

func init() {
	rules = map[token.Token]parseRule{
		token.LPAREN:  {prefix: (*parser).grouping, infix: (*parser).call, precedence: precCall},
		token.DOT:     {infix: (*parser).dot, precedence: precCall},
		token.MINUS:   {prefix: (*parser).unary, infix: (*parser).binary, precedence: precTerm},
		token.PLUS:    {infix: (*parser).binary, precedence: precTerm},
		token.SLASH:   {infix: (*parser).binary, precedence: precFactor},
		token.STAR:    {infix: (*parser).binary, precedence: precFactor},
		token.BANG:    {prefix: (*parser).unary},
		token.BANG_EQ: {infix: (*parser).binary, precedence: precEquality},
		token.EQ_EQ:   {infix: (*parser).binary, precedence: precEquality},
		token.GT:      {infix: (*parser).binary, precedence: precComparison},
		token.GT_EQ:   {infix: (*parser).binary, precedence: precComparison},
		token.LT:      {infix: (*parser).binary, precedence: precComparison},
		token.LT_EQ:   {infix: (*parser).binary, precedence: precComparison},
		token.IDENT:   {prefix: (*parser).variable},
		token.STRING:  {prefix: (*parser).string},
		token.NUMBER:  {prefix: (*parser).number},
		token.AND:     {infix: (*parser).and_, precedence: precAnd},
		token.OR:      {infix: (*parser).or_, precedence: precOr},
		token.FALSE:   {prefix: (*parser).literal},
		token.NIL:     {prefix: (*parser).literal},
		token.TRUE:    {prefix: (*parser).literal},
		token.THIS:    {prefix: (*parser).this},
		token.SUPER:   {prefix: (*parser).super_},
	}
}

func getRule(t token.Token) parseRule { return rules[t] }

// parsePrecedence is the heart of the Pratt parser: it consumes one prefix
// expression, then keeps folding in infix operators whose precedence is at
// least prec.
func (p *parser) parsePrecedence(prec precedence) {
	p.advance()
	prefix := getRule(p.previous.Type).prefix
	if prefix == nil {
		p.error("Expect expression.")
		return
	}

	canAssign := prec <= precAssignment
	prefix(p, canAssign)

	for prec <= getRule(p.current_.Type).precedence {
		p.advance()
		infix := getRule(p.previous.Type).infix
		infix(p, canAssign)
	}

	if canAssign && p.match(token.EQ) {
		p.error("Invalid assignment target.")
	}
}

func (p *parser) expression() {
	p.parsePrecedence(precAssignment)
}
