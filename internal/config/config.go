// Package config loads and validates the texbuild project configuration.
//
// Configuration is optional: when no texbuild.yaml exists the compiled-in
// defaults describe the standard report/presentation documents, so the tool
// works in a bare LaTeX working directory.
package config

import (
	"fmt"
	"log/slog"
	"os"

	"gopkg.in/yaml.v3"
)

// DefaultPath is the configuration file looked up when none is given.
const DefaultPath = "texbuild.yaml"

// Config represents the application configuration
type Config struct {
	Documents []Document        `yaml:"documents"`
	Tools     map[string]string `yaml:"tools,omitempty"` // command name -> binary path override
	Cleanup   CleanupConfig     `yaml:"cleanup"`
	Journal   JournalConfig     `yaml:"journal"`
	Watch     WatchConfig       `yaml:"watch"`
}

// Document represents one buildable LaTeX document
type Document struct {
	Name     string `yaml:"name"`
	Artifact string `yaml:"artifact,omitempty"` // defaults to <name>.pdf
	Steps    []Step `yaml:"steps"`
	Quick    []Step `yaml:"quick,omitempty"` // defaults to the first compile step alone
}

// Step represents a single external command invocation
type Step struct {
	Command string    `yaml:"command"`
	Args    []string  `yaml:"args,omitempty"`
	Class   StepClass `yaml:"class,omitempty"`
}

// StepClass classifies a step as required or best-effort
type StepClass string

const (
	StepRequired   StepClass = "required"
	StepBestEffort StepClass = "best-effort"
)

// BestEffort reports whether a failing step should be logged instead of aborting.
func (s Step) BestEffort() bool {
	return s.Class == StepBestEffort
}

// CleanupConfig lists the auxiliary file extensions removed by the clean target
type CleanupConfig struct {
	Extensions []string `yaml:"extensions,omitempty"`
}

// JournalConfig controls the sqlite build history
type JournalConfig struct {
	Enabled bool   `yaml:"enabled"`
	Path    string `yaml:"path,omitempty"`
}

// WatchConfig controls watch-mode behaviour
type WatchConfig struct {
	DebounceMillis int      `yaml:"debounce_ms,omitempty"`
	Patterns       []string `yaml:"patterns,omitempty"`
}

// Load loads configuration from the specified file.
//
// A missing file at the default path is not an error: the built-in defaults
// are returned instead. An explicitly named file must exist.
func Load(configPath string) (*Config, error) {
	loadEnvFiles()

	if configPath == "" {
		configPath = DefaultPath
	}

	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		if configPath == DefaultPath {
			cfg := Default()
			if _, err := Normalize(cfg); err != nil {
				return nil, err
			}
			return cfg, nil
		}
		return nil, fmt.Errorf("configuration file not found: %s", configPath)
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	// Expand environment variables in the YAML content
	expandedData := os.ExpandEnv(string(data))

	var config Config
	if err := yaml.Unmarshal([]byte(expandedData), &config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	res, err := Normalize(&config)
	if err != nil {
		return nil, err
	}
	for _, warning := range res.Warnings {
		slog.Warn("Configuration warning", "warning", warning)
	}
	return &config, nil
}

// FindDocument returns the configured document with the given name.
func (c *Config) FindDocument(name string) (Document, bool) {
	for _, doc := range c.Documents {
		if doc.Name == name {
			return doc, true
		}
	}
	return Document{}, false
}

// Primary returns the first configured document, the one the quick target builds.
func (c *Config) Primary() (Document, bool) {
	if len(c.Documents) == 0 {
		return Document{}, false
	}
	return c.Documents[0], true
}
