package scanner_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/ember-lang/ember/lang/scanner"
	"github.com/ember-lang/ember/lang/token"
)

func scanAll(t *testing.T, src string) []scanner.Token {
	t.Helper()
	s := scanner.New(src)
	var toks []scanner.Token
	for {
		tok := s.Next()
		toks = append(toks, tok)
		if tok.Type == token.EOF {
			return toks
		}
	}
}

func TestNextPunctuationAndOperators(t *testing.T) {
	toks := scanAll(t, "(){};,.+-*/!= == <= >= < >")
	types := make([]token.Token, 0, len(toks))
	for _, tok := range toks {
		types = append(types, tok.Type)
	}
	require.Equal(t, []token.Token{
		token.LPAREN, token.RPAREN, token.LBRACE, token.RBRACE, token.SEMI,
		token.COMMA, token.DOT, token.PLUS, token.MINUS, token.STAR, token.SLASH,
		token.BANG_EQ, token.EQ_EQ, token.LT_EQ, token.GT_EQ, token.LT, token.GT,
		token.EOF,
	}, types)
}

func TestNextKeywordsAndIdentifiers(t *testing.T) {
	toks := scanAll(t, "class fun var orchid")
	require.Equal(t, token.CLASS, toks[0].Type)
	require.Equal(t, token.FUN, toks[1].Type)
	require.Equal(t, token.VAR, toks[2].Type)
	require.Equal(t, token.IDENT, toks[3].Type)
	require.Equal(t, "orchid", toks[3].Lexeme)
}

func TestNextStringAndNumber(t *testing.T) {
	toks := scanAll(t, `"foo bar" 3.14 42`)
	require.Equal(t, token.STRING, toks[0].Type)
	require.Equal(t, `"foo bar"`, toks[0].Lexeme)
	require.Equal(t, token.NUMBER, toks[1].Type)
	require.Equal(t, "3.14", toks[1].Lexeme)
	require.Equal(t, token.NUMBER, toks[2].Type)
	require.Equal(t, "42", toks[2].Lexeme)
}

func TestNextTracksLinesAndComments(t *testing.T) {
	toks := scanAll(t, "var a = 1; // comment\nvar b = 2;")
	require.Equal(t, 1, toks[0].Line)
	last := toks[len(toks)-2]
	require.Equal(t, 2, last.Line)
}

func TestNextUnterminatedString(t *testing.T) {
	toks := scanAll(t, `"unterminated`)
	require.Equal(t, token.ILLEGAL, toks[0].Type)
	require.Contains(t, toks[0].Lexeme, "Unterminated")
}
