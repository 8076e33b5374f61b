package toolchain

import (
	"context"
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"git.home.luguber.info/inful/texbuild/internal/errors"
)

// writeStub creates an executable shell script in dir and returns its path.
func writeStub(t *testing.T, dir, name, body string) string {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("stub scripts require a POSIX shell")
	}
	path := filepath.Join(dir, name)
	script := "#!/bin/sh\n" + body + "\n"
	if err := os.WriteFile(path, []byte(script), 0o755); err != nil {
		t.Fatalf("write stub: %v", err)
	}
	return path
}

func TestResolveMissingTool(t *testing.T) {
	r := NewResolver(nil)
	_, err := r.Resolve("definitely-not-a-real-binary-xyz")
	if err == nil {
		t.Fatal("expected error for missing tool")
	}
	if !errors.IsCategory(err, errors.CategoryMissingTool) {
		t.Fatalf("expected missing_tool category, got %v", errors.GetCategory(err))
	}
}

func TestResolveOverride(t *testing.T) {
	dir := t.TempDir()
	stub := writeStub(t, dir, "fakelatex", "exit 0")

	r := NewResolver(map[string]string{"pdflatex": stub})
	path, err := r.Resolve("pdflatex")
	if err != nil {
		t.Fatalf("Resolve() failed: %v", err)
	}
	if path != stub {
		t.Fatalf("Resolve() = %q, want override %q", path, stub)
	}
}

func TestPreflightFailsBeforeAnyRun(t *testing.T) {
	dir := t.TempDir()
	stub := writeStub(t, dir, "pdflatex", "exit 0")

	r := NewResolver(map[string]string{"pdflatex": stub})
	err := r.Preflight([]string{"pdflatex", "no-such-bibtex"})
	if err == nil {
		t.Fatal("expected preflight failure")
	}
	if !errors.IsCategory(err, errors.CategoryMissingTool) {
		t.Fatalf("expected missing_tool category, got %v", errors.GetCategory(err))
	}
}

func TestRunSuccess(t *testing.T) {
	dir := t.TempDir()
	work := t.TempDir()
	stub := writeStub(t, dir, "pdflatex", `echo "compiled" > out.txt`)

	runner := NewRunner(NewResolver(map[string]string{"pdflatex": stub}), work)
	if err := runner.Run(context.Background(), "pdflatex", nil); err != nil {
		t.Fatalf("Run() failed: %v", err)
	}

	// The step ran in the working directory.
	if _, err := os.Stat(filepath.Join(work, "out.txt")); err != nil {
		t.Fatalf("step did not run in working dir: %v", err)
	}
}

func TestRunNonzeroExit(t *testing.T) {
	dir := t.TempDir()
	stub := writeStub(t, dir, "pdflatex", "echo boom; exit 3")

	runner := NewRunner(NewResolver(map[string]string{"pdflatex": stub}), t.TempDir())
	err := runner.Run(context.Background(), "pdflatex", nil)
	if err == nil {
		t.Fatal("expected error for nonzero exit")
	}
	if !errors.IsCategory(err, errors.CategoryStep) {
		t.Fatalf("expected step category, got %v", errors.GetCategory(err))
	}
}

func TestTailBounded(t *testing.T) {
	long := make([]byte, outputTailLimit*3)
	for i := range long {
		long[i] = 'x'
	}
	if got := len(tail(long)); got != outputTailLimit {
		t.Fatalf("tail length = %d, want %d", got, outputTailLimit)
	}
	if got := tail([]byte("short")); got != "short" {
		t.Fatalf("tail(short) = %q", got)
	}
}
