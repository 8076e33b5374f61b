// Package toolchain resolves and runs the external LaTeX binaries.
//
// Child process output is suppressed from the console; the tail of the
// combined output is retained so failures can be diagnosed at debug level.
package toolchain

import (
	"bytes"
	"context"
	"log/slog"
	"os/exec"

	"git.home.luguber.info/inful/texbuild/internal/errors"
)

// outputTailLimit bounds how much child output is kept for diagnostics.
const outputTailLimit = 2048

// Resolver maps step command names to executable paths.
type Resolver struct {
	overrides map[string]string
	resolved  map[string]string
}

// NewResolver creates a resolver. Overrides map command names (e.g.
// "pdflatex") to explicit binary paths, bypassing PATH lookup.
func NewResolver(overrides map[string]string) *Resolver {
	return &Resolver{
		overrides: overrides,
		resolved:  make(map[string]string),
	}
}

// Resolve returns the executable path for a command name.
func (r *Resolver) Resolve(command string) (string, error) {
	if path, ok := r.resolved[command]; ok {
		return path, nil
	}
	name := command
	if override, ok := r.overrides[command]; ok && override != "" {
		name = override
	}
	path, err := exec.LookPath(name)
	if err != nil {
		return "", errors.MissingTool(name, err)
	}
	r.resolved[command] = path
	return path, nil
}

// Preflight resolves every command name up front so a missing tool is
// reported before any step runs.
func (r *Resolver) Preflight(commands []string) error {
	for _, command := range commands {
		if _, err := r.Resolve(command); err != nil {
			return err
		}
	}
	return nil
}

// Runner executes single build steps in a working directory.
type Runner struct {
	resolver *Resolver
	dir      string
}

// NewRunner creates a runner executing commands in dir ("" = process cwd).
func NewRunner(resolver *Resolver, dir string) *Runner {
	return &Runner{resolver: resolver, dir: dir}
}

// Run executes one external command and waits for it to finish.
// The child's stdout/stderr never reach the console.
func (r *Runner) Run(ctx context.Context, command string, args []string) error {
	path, err := r.resolver.Resolve(command)
	if err != nil {
		return err
	}

	var output bytes.Buffer
	cmd := exec.CommandContext(ctx, path, args...)
	cmd.Dir = r.dir
	cmd.Stdout = &output
	cmd.Stderr = &output

	slog.Debug("Running step command", "command", command, "path", path, "args", args)

	if err := cmd.Run(); err != nil {
		slog.Debug("Step command failed",
			"command", command,
			"error", err,
			"output_tail", tail(output.Bytes()))
		return errors.StepFailed(command, err)
	}
	return nil
}

func tail(b []byte) string {
	if len(b) > outputTailLimit {
		b = b[len(b)-outputTailLimit:]
	}
	return string(b)
}
