package maincmd

import (
	"context"
	"fmt"
	"os"

	"github.com/mna/mainer"

	"github.com/ember-lang/ember/lang/scanner"
	"github.com/ember-lang/ember/lang/token"
)

// Tokenize scans the named file and prints each token, one per line, until
// EOF.
func (c *Cmd) Tokenize(_ context.Context, stdio mainer.Stdio, args []string) error {
	src, err := os.ReadFile(args[0])
	if err != nil {
		return err
	}

	s := scanner.New(string(src))
	for {
		tok := s.Next()
		fmt.Fprintf(stdio.Stdout, "%4d %-12s '%s'\n", tok.Line, tok.Type, tok.Lexeme)
		if tok.Type == token.EOF {
			return nil
		}
	}
}
