package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/alecthomas/kong"

	"git.home.luguber.info/inful/texbuild/internal/builder"
	"git.home.luguber.info/inful/texbuild/internal/cleanup"
	"git.home.luguber.info/inful/texbuild/internal/config"
	"git.home.luguber.info/inful/texbuild/internal/journal"
	"git.home.luguber.info/inful/texbuild/internal/version"
	"git.home.luguber.info/inful/texbuild/internal/viewer"
	"git.home.luguber.info/inful/texbuild/internal/watch"
)

var CLI struct {
	Config  string `short:"c" help:"Configuration file path" default:"texbuild.yaml"`
	Dir     string `short:"C" help:"Working directory" default:"."`
	Verbose bool   `short:"v" help:"Enable verbose logging"`

	All struct {
	} `cmd:"" help:"Build every configured document (full sequences)"`

	Quick struct {
	} `cmd:"" help:"Single compile pass of the primary document"`

	Presentation struct {
	} `cmd:"" help:"Build the presentation document"`

	Clean struct {
	} `cmd:"" help:"Remove generated auxiliary files"`

	View struct {
	} `cmd:"" help:"Open built PDFs with the OS default viewer"`

	Watch struct {
		Target string `arg:"" optional:"" default:"all" enum:"all,quick,presentation" help:"Build target to rerun on source changes"`
	} `cmd:"" help:"Rebuild whenever LaTeX sources change"`

	History struct {
		Limit int `short:"n" default:"10" help:"Number of builds to list"`
	} `cmd:"" help:"Show recent builds from the journal"`

	Version struct {
	} `cmd:"" help:"Print version information"`
}

func main() {
	parser := kong.Must(&CLI,
		kong.Name("texbuild"),
		kong.Description("Build LaTeX documents with pdflatex and bibtex."))

	kctx, err := parser.Parse(os.Args[1:])
	if err != nil {
		// An absent or unrecognized target routes to usage, exit 0.
		fmt.Fprintf(os.Stderr, "texbuild: %v\n\n", err)
		var parseErr *kong.ParseError
		if errors.As(err, &parseErr) {
			_ = parseErr.Context.PrintUsage(false)
		}
		os.Exit(0)
	}

	// Set up logging
	logLevel := slog.LevelInfo
	if CLI.Verbose {
		logLevel = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: logLevel,
	}))
	slog.SetDefault(logger)

	// Execute command
	switch kctx.Command() {
	case "all":
		cfg := loadConfig()
		if err := runBuild(cfg, "all", false); err != nil {
			slog.Error("Build failed", "error", err)
			os.Exit(1)
		}
	case "quick":
		cfg := loadConfig()
		if err := runBuild(cfg, "quick", true); err != nil {
			slog.Error("Build failed", "error", err)
			os.Exit(1)
		}
	case "presentation":
		cfg := loadConfig()
		if err := runBuild(cfg, "presentation", false); err != nil {
			slog.Error("Build failed", "error", err)
			os.Exit(1)
		}
	case "clean":
		cfg := loadConfig()
		if _, err := cleanup.Clean(CLI.Dir, cfg.Cleanup.Extensions); err != nil {
			slog.Error("Cleanup failed", "error", err)
			os.Exit(1)
		}
	case "view":
		cfg := loadConfig()
		if err := runView(cfg); err != nil {
			slog.Error("View failed", "error", err)
			os.Exit(1)
		}
	case "watch", "watch <target>":
		cfg := loadConfig()
		if err := runWatch(cfg, CLI.Watch.Target); err != nil {
			slog.Error("Watch failed", "error", err)
			os.Exit(1)
		}
	case "history":
		cfg := loadConfig()
		if err := runHistory(cfg, CLI.History.Limit); err != nil {
			slog.Error("History failed", "error", err)
			os.Exit(1)
		}
	case "version":
		fmt.Printf("texbuild %s (commit %s, built %s)\n", version.Version, version.GitCommit, version.BuildTime)
	}
}

func loadConfig() *config.Config {
	cfg, err := config.Load(CLI.Config)
	if err != nil {
		slog.Error("Failed to load configuration", "error", err)
		os.Exit(1)
	}
	return cfg
}

// selectDocuments maps a build target to the documents it builds.
func selectDocuments(cfg *config.Config, target string) ([]config.Document, error) {
	switch target {
	case "all":
		return cfg.Documents, nil
	case "quick":
		primary, ok := cfg.Primary()
		if !ok {
			return nil, fmt.Errorf("no documents configured")
		}
		return []config.Document{primary}, nil
	case "presentation":
		doc, ok := cfg.FindDocument("presentation")
		if !ok {
			return nil, fmt.Errorf("no document named %q configured", "presentation")
		}
		return []config.Document{doc}, nil
	}
	return nil, fmt.Errorf("unknown build target %q", target)
}

func runBuild(cfg *config.Config, target string, quick bool) error {
	docs, err := selectDocuments(cfg, target)
	if err != nil {
		return err
	}

	b := builder.New(cfg, CLI.Dir)
	if err := b.Preflight(docs, quick); err != nil {
		return err
	}

	slog.Info("Starting build", "target", target, "documents", len(docs))

	results, buildErr := b.BuildAll(context.Background(), docs, quick)
	recordResults(cfg, target, results)
	return buildErr
}

// recordResults appends build outcomes to the journal. Journal trouble is
// never allowed to fail a build.
func recordResults(cfg *config.Config, target string, results []*builder.Result) {
	if !cfg.Journal.Enabled || len(results) == 0 {
		return
	}

	j, err := journal.Open(cfg.Journal.Path)
	if err != nil {
		slog.Warn("Failed to open build journal", "path", cfg.Journal.Path, "error", err)
		return
	}
	defer func() {
		if err := j.Close(); err != nil {
			slog.Warn("Failed to close build journal", "error", err)
		}
	}()

	for _, result := range results {
		rec := journal.Record{
			BuildID:      result.BuildID,
			Document:     result.Document,
			Target:       target,
			Success:      result.Success,
			ArtifactPath: result.ArtifactPath,
			ArtifactSize: result.ArtifactSize,
			StartedAt:    result.StartedAt,
			Duration:     result.Duration,
		}
		if result.FailureCause != nil {
			rec.Failure = result.FailureCause.Error()
		}
		if err := j.Append(context.Background(), rec); err != nil {
			slog.Warn("Failed to record build", "build_id", result.BuildID, "error", err)
		}
	}
}

func runView(cfg *config.Config) error {
	artifacts := make([]string, 0, len(cfg.Documents))
	for _, doc := range cfg.Documents {
		artifacts = append(artifacts, doc.Artifact)
	}

	opened, err := viewer.OpenArtifacts(CLI.Dir, artifacts)
	if err != nil {
		return err
	}
	if opened == 0 {
		slog.Warn("No artifacts found to open", "dir", CLI.Dir)
	}
	return nil
}

func runWatch(cfg *config.Config, target string) error {
	quick := target == "quick"
	docs, err := selectDocuments(cfg, target)
	if err != nil {
		return err
	}

	b := builder.New(cfg, CLI.Dir)
	if err := b.Preflight(docs, quick); err != nil {
		return err
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	rebuild := func(ctx context.Context) error {
		results, err := b.BuildAll(ctx, docs, quick)
		recordResults(cfg, target, results)
		return err
	}

	// Build once up front so the watcher starts from a known state.
	if err := rebuild(ctx); err != nil {
		slog.Error("Initial build failed, watching for fixes", "error", err)
	}

	debounce := time.Duration(cfg.Watch.DebounceMillis) * time.Millisecond
	w, err := watch.New(CLI.Dir, cfg.Watch.Patterns, debounce, rebuild)
	if err != nil {
		return err
	}
	return w.Run(ctx)
}

func runHistory(cfg *config.Config, limit int) error {
	if !cfg.Journal.Enabled {
		return fmt.Errorf("build journal is disabled in configuration")
	}

	j, err := journal.Open(cfg.Journal.Path)
	if err != nil {
		return err
	}
	defer j.Close()

	records, err := j.Recent(context.Background(), limit)
	if err != nil {
		return err
	}
	if len(records) == 0 {
		fmt.Println("no recorded builds")
		return nil
	}

	for _, rec := range records {
		status := "ok"
		if !rec.Success {
			status = "failed"
		}
		line := fmt.Sprintf("%s  %-12s %-12s %-6s %s",
			rec.StartedAt.Format(time.DateTime), rec.Document, rec.Target, status,
			rec.Duration.Round(time.Millisecond))
		if rec.Success && rec.ArtifactSize > 0 {
			line += fmt.Sprintf("  %s (%d bytes)", rec.ArtifactPath, rec.ArtifactSize)
		}
		if rec.Failure != "" {
			line += "  " + rec.Failure
		}
		fmt.Println(line)
	}
	return nil
}
