package maincmd

import (
	"context"
	"os"

	"github.com/mna/mainer"

	"github.com/ember-lang/ember/internal/disasm"
	"github.com/ember-lang/ember/lang/compiler"
)

// Disassemble compiles the named script and prints its bytecode without
// executing it, reusing a VM purely as the compiler's Allocator.
func (c *Cmd) Disassemble(_ context.Context, stdio mainer.Stdio, args []string) error {
	src, err := os.ReadFile(args[0])
	if err != nil {
		return err
	}

	m, err := newVM(c.ConfigPath, stdio)
	if err != nil {
		return err
	}

	fn, diags := compiler.Compile(string(src), m)
	if diags != nil {
		for _, d := range diags {
			stdio.Stderr.Write([]byte(d.Error() + "\n"))
		}
		return &exitError{code: 65, msg: "compile error"}
	}

	disasm.Chunk(stdio.Stdout, fn.Chunk, args[0])
	return nil
}
