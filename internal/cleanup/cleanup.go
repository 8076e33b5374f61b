// Package cleanup removes the auxiliary files LaTeX toolchains scatter
// through the working directory.
package cleanup

import (
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"git.home.luguber.info/inful/texbuild/internal/errors"
)

// Clean deletes files in dir whose names end in one of the given
// extensions. Absent files are a no-op; only the top level of dir is
// considered. Returns the number of files removed.
func Clean(dir string, extensions []string) (int, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return 0, errors.Wrap(err, errors.CategoryFileSystem, errors.SeverityError, "read working directory")
	}

	removed := 0
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		if !matchesExtension(entry.Name(), extensions) {
			continue
		}
		path := filepath.Join(dir, entry.Name())
		if err := os.Remove(path); err != nil {
			if os.IsNotExist(err) {
				continue
			}
			return removed, errors.Wrap(err, errors.CategoryFileSystem, errors.SeverityError, "remove "+entry.Name())
		}
		slog.Debug("Removed auxiliary file", "path", path)
		removed++
	}

	slog.Info("Cleanup finished", "dir", dir, "removed", removed)
	return removed, nil
}

// matchesExtension uses suffix matching rather than filepath.Ext so that
// compound extensions like .synctex.gz and .fdb_latexmk match.
func matchesExtension(name string, extensions []string) bool {
	for _, ext := range extensions {
		if strings.HasSuffix(name, ext) {
			return true
		}
	}
	return false
}
