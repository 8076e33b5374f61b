// Package viewer opens produced PDF artifacts with the OS default handler.
package viewer

import (
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
)

// openCmd returns the platform command that hands a file to the desktop
// default handler, or nil when the platform has none.
func openCmd(path string) *exec.Cmd {
	switch runtime.GOOS {
	case "linux":
		return exec.Command("xdg-open", path)
	case "windows":
		return exec.Command("rundll32", "url.dll,FileProtocolHandler", path)
	case "darwin":
		return exec.Command("open", path)
	}
	return nil
}

// OpenArtifacts opens every artifact that exists on disk. Missing artifacts
// are reported but not fatal. Returns the number of artifacts opened.
func OpenArtifacts(dir string, artifacts []string) (int, error) {
	opened := 0
	for _, artifact := range artifacts {
		path := filepath.Join(dir, artifact)
		if _, err := os.Stat(path); os.IsNotExist(err) {
			slog.Warn("Artifact not found, skipping", "artifact", path)
			continue
		}

		cmd := openCmd(path)
		if cmd == nil {
			return opened, fmt.Errorf("no default file handler on %s", runtime.GOOS)
		}
		if err := cmd.Start(); err != nil {
			slog.Warn("Failed to open artifact", "artifact", path, "error", err)
			continue
		}
		// Detach: the viewer outlives the CLI.
		if err := cmd.Process.Release(); err != nil {
			slog.Debug("Release viewer process", "error", err)
		}
		slog.Info("Opened artifact", "artifact", path)
		opened++
	}
	return opened, nil
}
