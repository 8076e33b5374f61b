package config

import (
	"fmt"
	"strings"
)

// NormalizeResult carries non-fatal findings from configuration normalization.
type NormalizeResult struct {
	Warnings []string
}

func (r *NormalizeResult) warnf(format string, args ...any) {
	r.Warnings = append(r.Warnings, fmt.Sprintf(format, args...))
}

// Normalize applies defaults and coerces enum-like fields in place.
// Unknown step classes fall back to required; structural problems
// (a document without a name or steps) are errors.
func Normalize(cfg *Config) (*NormalizeResult, error) {
	res := &NormalizeResult{}

	if len(cfg.Documents) == 0 {
		return nil, fmt.Errorf("configuration defines no documents")
	}

	seen := make(map[string]bool, len(cfg.Documents))
	for i := range cfg.Documents {
		doc := &cfg.Documents[i]
		if doc.Name == "" {
			return nil, fmt.Errorf("document %d has no name", i)
		}
		if seen[doc.Name] {
			return nil, fmt.Errorf("duplicate document name %q", doc.Name)
		}
		seen[doc.Name] = true

		if len(doc.Steps) == 0 {
			return nil, fmt.Errorf("document %q has no steps", doc.Name)
		}
		if doc.Artifact == "" {
			doc.Artifact = doc.Name + ".pdf"
		}

		if err := normalizeSteps(doc.Name, doc.Steps, res); err != nil {
			return nil, err
		}
		if len(doc.Quick) == 0 {
			// Quick defaults to the first required step alone.
			for _, step := range doc.Steps {
				if !step.BestEffort() {
					doc.Quick = []Step{step}
					break
				}
			}
		} else if err := normalizeSteps(doc.Name, doc.Quick, res); err != nil {
			return nil, err
		}
	}

	if len(cfg.Cleanup.Extensions) == 0 {
		cfg.Cleanup.Extensions = DefaultCleanupExtensions
	}
	for i, ext := range cfg.Cleanup.Extensions {
		if !strings.HasPrefix(ext, ".") {
			cfg.Cleanup.Extensions[i] = "." + ext
			res.warnf("cleanup extension %q missing leading dot, normalized", ext)
		}
	}

	if cfg.Watch.DebounceMillis <= 0 {
		if cfg.Watch.DebounceMillis < 0 {
			res.warnf("negative watch debounce clamped to default")
		}
		cfg.Watch.DebounceMillis = defaultDebounceMillis
	}
	if len(cfg.Watch.Patterns) == 0 {
		cfg.Watch.Patterns = DefaultWatchPatterns
	}

	if cfg.Journal.Enabled && cfg.Journal.Path == "" {
		cfg.Journal.Path = ".texbuild/journal.db"
	}

	return res, nil
}

func normalizeSteps(docName string, steps []Step, res *NormalizeResult) error {
	for i := range steps {
		step := &steps[i]
		if step.Command == "" {
			return fmt.Errorf("document %q step %d has no command", docName, i)
		}
		switch StepClass(strings.ToLower(string(step.Class))) {
		case StepRequired, StepBestEffort:
			step.Class = StepClass(strings.ToLower(string(step.Class)))
		case "":
			step.Class = StepRequired
		default:
			res.warnf("document %q step %d has unknown class %q, treating as required", docName, i, step.Class)
			step.Class = StepRequired
		}
	}
	return nil
}
