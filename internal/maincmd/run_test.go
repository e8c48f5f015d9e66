package maincmd

import (
	"bytes"
	"context"
	"flag"
	"path/filepath"
	"testing"

	"github.com/mna/mainer"

	"github.com/ember-lang/ember/internal/filetest"
)

var testUpdateRunTests = flag.Bool("test.update-run-tests", false, "If set, replace expected run test results with actual results.")

// TestRun exercises spec.md §8's end-to-end scenarios (and a few more)
// through the same run command the ember binary dispatches to, diffing
// stdout against golden files the same way the teacher's scanner_test.go
// diffs tokenize output.
func TestRun(t *testing.T) {
	ctx := context.Background()
	srcDir, resultDir := filepath.Join("testdata", "in"), filepath.Join("testdata", "out")

	for _, fi := range filetest.SourceFiles(t, srcDir, ".ember") {
		t.Run(fi.Name(), func(t *testing.T) {
			var buf, ebuf bytes.Buffer
			stdio := mainer.Stdio{Stdout: &buf, Stderr: &ebuf}

			c := &Cmd{}
			err := c.Run(ctx, stdio, []string{filepath.Join(srcDir, fi.Name())})
			if err != nil {
				t.Fatalf("unexpected error running %s: %v", fi.Name(), err)
			}

			filetest.DiffOutput(t, fi, buf.String(), resultDir, testUpdateRunTests)
		})
	}
}
