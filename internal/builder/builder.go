// Package builder runs the declarative step sequences that turn LaTeX
// sources into PDF artifacts.
package builder

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"git.home.luguber.info/inful/texbuild/internal/config"
	"git.home.luguber.info/inful/texbuild/internal/errors"
	"git.home.luguber.info/inful/texbuild/internal/toolchain"
)

// StepStatus is the outcome of a single step execution.
type StepStatus string

const (
	StepSucceeded StepStatus = "succeeded"
	StepFailed    StepStatus = "failed"
	StepWarned    StepStatus = "warned" // best-effort step failed, build continued
)

// StepResult records the outcome of one executed step.
type StepResult struct {
	Command  string
	Status   StepStatus
	Duration time.Duration
	Err      error
}

// Result is the outcome of one document build.
type Result struct {
	BuildID      string
	Document     string
	Success      bool
	ArtifactPath string
	ArtifactSize int64
	StartedAt    time.Time
	Duration     time.Duration
	Steps        []StepResult
	FailureCause error
}

// Builder executes document build sequences in a working directory.
type Builder struct {
	resolver *toolchain.Resolver
	runner   *toolchain.Runner
	dir      string
}

// New creates a builder for the given configuration and working directory.
func New(cfg *config.Config, dir string) *Builder {
	resolver := toolchain.NewResolver(cfg.Tools)
	return &Builder{
		resolver: resolver,
		runner:   toolchain.NewRunner(resolver, dir),
		dir:      dir,
	}
}

// Preflight resolves every distinct command used by the given documents'
// sequences. A missing tool fails the whole invocation before any step runs.
func (b *Builder) Preflight(docs []config.Document, quick bool) error {
	seen := make(map[string]bool)
	var commands []string
	for _, doc := range docs {
		for _, step := range selectSteps(doc, quick) {
			if !seen[step.Command] {
				seen[step.Command] = true
				commands = append(commands, step.Command)
			}
		}
	}
	return b.resolver.Preflight(commands)
}

// BuildDocument runs a document's step sequence and verifies its artifact.
// Required step failures abort the sequence; best-effort failures are
// logged and the build continues.
func (b *Builder) BuildDocument(ctx context.Context, doc config.Document, quick bool) (*Result, error) {
	steps := selectSteps(doc, quick)
	result := &Result{
		BuildID:   uuid.NewString(),
		Document:  doc.Name,
		StartedAt: time.Now(),
	}

	slog.Info("Building document", "document", doc.Name, "steps", len(steps), "build_id", result.BuildID)

	for i, step := range steps {
		stepStart := time.Now()
		err := b.runner.Run(ctx, step.Command, step.Args)
		stepResult := StepResult{
			Command:  step.Command,
			Status:   StepSucceeded,
			Duration: time.Since(stepStart),
			Err:      err,
		}

		if err != nil {
			if step.BestEffort() {
				stepResult.Status = StepWarned
				slog.Warn("Best-effort step failed, continuing",
					"document", doc.Name, "step", i+1, "command", step.Command, "error", err)
			} else {
				stepResult.Status = StepFailed
				result.Steps = append(result.Steps, stepResult)
				result.Duration = time.Since(result.StartedAt)
				result.FailureCause = err
				slog.Error("Required step failed, aborting document build",
					"document", doc.Name, "step", i+1, "command", step.Command, "error", err)
				return result, err
			}
		} else {
			slog.Info("Step completed", "document", doc.Name, "step", i+1, "command", step.Command)
		}
		result.Steps = append(result.Steps, stepResult)
	}

	if err := b.verifyArtifact(doc, result); err != nil {
		result.Duration = time.Since(result.StartedAt)
		result.FailureCause = err
		return result, err
	}

	result.Success = true
	result.Duration = time.Since(result.StartedAt)
	slog.Info("Document built",
		"document", doc.Name,
		"artifact", result.ArtifactPath,
		"size_bytes", result.ArtifactSize,
		"duration", result.Duration.Round(time.Millisecond))
	return result, nil
}

// BuildAll builds the given documents in order, stopping at the first failure.
func (b *Builder) BuildAll(ctx context.Context, docs []config.Document, quick bool) ([]*Result, error) {
	var results []*Result
	for _, doc := range docs {
		result, err := b.BuildDocument(ctx, doc, quick)
		results = append(results, result)
		if err != nil {
			return results, err
		}
	}
	return results, nil
}

func (b *Builder) verifyArtifact(doc config.Document, result *Result) error {
	path := filepath.Join(b.dir, doc.Artifact)
	result.ArtifactPath = path

	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return errors.ArtifactMissing(path)
		}
		return errors.Wrap(err, errors.CategoryFileSystem, errors.SeverityError, "stat artifact")
	}
	result.ArtifactSize = info.Size()
	return nil
}

func selectSteps(doc config.Document, quick bool) []config.Step {
	if quick && len(doc.Quick) > 0 {
		return doc.Quick
	}
	return doc.Steps
}
