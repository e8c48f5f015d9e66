package maincmd

import (
	"context"
	"os"

	"github.com/mna/mainer"

	"github.com/ember-lang/ember/internal/builtins"
	"github.com/ember-lang/ember/internal/config"
	"github.com/ember-lang/ember/lang/vm"
)

// Run compiles and executes the single script named in args, per spec.md
// §6's driver contract: exit 65 on a compile error, 70 on a runtime error.
func (c *Cmd) Run(_ context.Context, stdio mainer.Stdio, args []string) error {
	src, err := os.ReadFile(args[0])
	if err != nil {
		return err
	}

	m, err := newVM(c.ConfigPath, stdio)
	if err != nil {
		return err
	}

	switch m.Interpret(string(src)) {
	case vm.InterpretCompileError:
		return &exitError{code: 65, msg: "compile error"}
	case vm.InterpretRuntimeError:
		return &exitError{code: 70, msg: "runtime error"}
	}
	return nil
}

// newVM builds a VM with its native library installed and its GC/debug
// tunables loaded from cfgPath (if any) and the environment.
func newVM(cfgPath string, stdio mainer.Stdio) (*vm.VM, error) {
	cfg, err := config.Load(cfgPath)
	if err != nil {
		return nil, err
	}

	m := vm.New(
		vm.WithStdout(stdio.Stdout),
		vm.WithStderr(stdio.Stderr),
		vm.WithStressGC(cfg.DebugStressGC),
		vm.WithTraceExecution(cfg.DebugTrace),
		vm.WithGrowFactor(cfg.GCGrowFactor),
		vm.WithMaxStack(cfg.MaxStack),
		vm.WithInitialGCThreshold(cfg.GCHeapGrowMin),
	)
	builtins.NewRegistry(m.Uptime, m.InternString).Install(m)
	return m, nil
}
