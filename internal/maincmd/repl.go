package maincmd

import (
	"bufio"
	"context"
	"fmt"
	"io"

	"github.com/mna/mainer"
)

// Repl reads and interprets one line at a time until stdin reaches EOF, per
// spec.md §6's REPL mode. Each line runs as its own top-level program: state
// does not persist across lines beyond the VM's own globals table, since a
// fresh Interpret call reuses the same *vm.VM.
func (c *Cmd) Repl(_ context.Context, stdio mainer.Stdio, _ []string) error {
	m, err := newVM(c.ConfigPath, stdio)
	if err != nil {
		return err
	}

	scan := bufio.NewScanner(stdio.Stdin)
	for {
		fmt.Fprint(stdio.Stdout, "> ")
		if !scan.Scan() {
			break
		}
		m.Interpret(scan.Text())
	}
	if err := scan.Err(); err != nil && err != io.EOF {
		return err
	}
	return nil
}
