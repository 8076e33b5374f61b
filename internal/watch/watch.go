// Package watch reruns a build whenever LaTeX sources change.
//
// Every triggered run executes the full step sequence for the target; no
// attempt is made to detect what changed or rebuild incrementally.
package watch

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
)

// RebuildFunc runs one full build. Errors are the caller's to report;
// watching continues regardless.
type RebuildFunc func(ctx context.Context) error

// Watcher monitors a working directory for source changes and triggers
// debounced rebuilds.
type Watcher struct {
	dir      string
	patterns []string
	debounce time.Duration
	rebuild  RebuildFunc
	watcher  *fsnotify.Watcher
}

// New creates a watcher over dir. Patterns are filepath.Match globs applied
// to event base names (e.g. "*.tex").
func New(dir string, patterns []string, debounce time.Duration, rebuild RebuildFunc) (*Watcher, error) {
	fsWatcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create file watcher: %w", err)
	}

	absDir, err := filepath.Abs(dir)
	if err != nil {
		fsWatcher.Close()
		return nil, fmt.Errorf("failed to resolve watch directory: %w", err)
	}

	return &Watcher{
		dir:      absDir,
		patterns: patterns,
		debounce: debounce,
		rebuild:  rebuild,
		watcher:  fsWatcher,
	}, nil
}

// Run watches until the context is cancelled. Rapid event bursts are
// coalesced into a single rebuild per debounce window.
func (w *Watcher) Run(ctx context.Context) error {
	defer w.watcher.Close()

	if err := w.watcher.Add(w.dir); err != nil {
		return fmt.Errorf("failed to watch directory %s: %w", w.dir, err)
	}

	slog.Info("Watching for source changes",
		"dir", w.dir, "patterns", w.patterns, "debounce", w.debounce)

	// The timer is armed on the first matching event and reset on each
	// subsequent one; the rebuild fires when the burst goes quiet.
	timer := time.NewTimer(w.debounce)
	if !timer.Stop() {
		<-timer.C
	}
	armed := false

	for {
		select {
		case <-ctx.Done():
			slog.Info("Stopping watcher")
			return nil

		case event, ok := <-w.watcher.Events:
			if !ok {
				return nil
			}
			if !w.matches(event) {
				continue
			}
			slog.Debug("Source change detected", "file", event.Name, "op", event.Op.String())
			if armed && !timer.Stop() {
				<-timer.C
			}
			timer.Reset(w.debounce)
			armed = true

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return nil
			}
			slog.Warn("Watcher error", "error", err)

		case <-timer.C:
			armed = false
			slog.Info("Rebuilding after source change")
			if err := w.rebuild(ctx); err != nil {
				slog.Error("Rebuild failed, continuing to watch", "error", err)
			}
		}
	}
}

func (w *Watcher) matches(event fsnotify.Event) bool {
	if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
		return false
	}
	base := filepath.Base(event.Name)
	for _, pattern := range w.patterns {
		if ok, err := filepath.Match(pattern, base); err == nil && ok {
			return true
		}
	}
	return false
}
