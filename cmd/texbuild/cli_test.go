package main

import (
	"context"
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"git.home.luguber.info/inful/texbuild/internal/builder"
	"git.home.luguber.info/inful/texbuild/internal/config"
	"git.home.luguber.info/inful/texbuild/internal/errors"
	"git.home.luguber.info/inful/texbuild/internal/journal"
)

func writeStub(t *testing.T, dir, name, body string) string {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("stub scripts require a POSIX shell")
	}
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte("#!/bin/sh\n"+body+"\n"), 0o755))
	return path
}

func testConfig(tools map[string]string, journalPath string) *config.Config {
	cfg := config.Default()
	cfg.Tools = tools
	cfg.Journal = config.JournalConfig{Enabled: journalPath != "", Path: journalPath}
	return cfg
}

func TestSelectDocuments(t *testing.T) {
	cfg := config.Default()

	docs, err := selectDocuments(cfg, "all")
	require.NoError(t, err)
	assert.Len(t, docs, 2)

	docs, err = selectDocuments(cfg, "quick")
	require.NoError(t, err)
	require.Len(t, docs, 1)
	assert.Equal(t, "report", docs[0].Name)

	docs, err = selectDocuments(cfg, "presentation")
	require.NoError(t, err)
	require.Len(t, docs, 1)
	assert.Equal(t, "presentation", docs[0].Name)

	_, err = selectDocuments(cfg, "bogus")
	assert.Error(t, err)

	noPres := &config.Config{Documents: []config.Document{{Name: "report"}}}
	_, err = selectDocuments(noPres, "presentation")
	assert.Error(t, err)
}

func TestRunBuildQuick(t *testing.T) {
	bin := t.TempDir()
	work := t.TempDir()
	latex := writeStub(t, bin, "pdflatex", "echo '%PDF-stub' > report.pdf")
	bib := writeStub(t, bin, "bibtex", "exit 0")

	oldDir := CLI.Dir
	CLI.Dir = work
	t.Cleanup(func() { CLI.Dir = oldDir })

	cfg := testConfig(map[string]string{"pdflatex": latex, "bibtex": bib}, "")
	require.NoError(t, runBuild(cfg, "quick", true))

	_, err := os.Stat(filepath.Join(work, "report.pdf"))
	require.NoError(t, err)
}

func TestRunBuildMissingToolFailsBeforeCompile(t *testing.T) {
	work := t.TempDir()
	oldDir := CLI.Dir
	CLI.Dir = work
	t.Cleanup(func() { CLI.Dir = oldDir })

	cfg := testConfig(map[string]string{"pdflatex": "/nonexistent/pdflatex"}, "")
	err := runBuild(cfg, "all", false)
	require.Error(t, err)
	assert.True(t, errors.IsCategory(err, errors.CategoryMissingTool))

	// Preflight must reject before anything touches the working directory.
	entries, readErr := os.ReadDir(work)
	require.NoError(t, readErr)
	assert.Empty(t, entries)
}

func TestRecordResultsWritesJournal(t *testing.T) {
	journalPath := filepath.Join(t.TempDir(), "journal.db")
	cfg := testConfig(nil, journalPath)

	recordResults(cfg, "quick", []*builder.Result{{
		BuildID:  "b1",
		Document: "report",
		Success:  true,
	}})

	j, err := journal.Open(journalPath)
	require.NoError(t, err)
	defer j.Close()

	records, err := j.Recent(context.Background(), 10)
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, "quick", records[0].Target)
}

func TestRecordResultsDisabledJournal(t *testing.T) {
	dir := t.TempDir()
	cfg := testConfig(nil, "")

	recordResults(cfg, "quick", []*builder.Result{{BuildID: "b1", Document: "report"}})

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestRunHistory(t *testing.T) {
	journalPath := filepath.Join(t.TempDir(), "journal.db")
	cfg := testConfig(nil, journalPath)

	recordResults(cfg, "all", []*builder.Result{
		{BuildID: "b1", Document: "report", Success: true, ArtifactSize: 100},
		{BuildID: "b2", Document: "presentation", Success: false},
	})

	require.NoError(t, runHistory(cfg, 10))

	disabled := testConfig(nil, "")
	assert.Error(t, runHistory(disabled, 10))
}
