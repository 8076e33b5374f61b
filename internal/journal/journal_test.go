package journal

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAppendAndRecent(t *testing.T) {
	j, err := Open(":memory:")
	require.NoError(t, err)
	defer j.Close()

	ctx := context.Background()
	started := time.Now().Truncate(time.Second)

	require.NoError(t, j.Append(ctx, Record{
		BuildID:      "b1",
		Document:     "report",
		Target:       "all",
		Success:      true,
		ArtifactPath: "report.pdf",
		ArtifactSize: 12345,
		StartedAt:    started,
		Duration:     1500 * time.Millisecond,
	}))
	require.NoError(t, j.Append(ctx, Record{
		BuildID:   "b2",
		Document:  "presentation",
		Target:    "presentation",
		Success:   false,
		StartedAt: started.Add(time.Minute),
		Duration:  200 * time.Millisecond,
		Failure:   `required step "pdflatex" failed`,
	}))

	records, err := j.Recent(ctx, 10)
	require.NoError(t, err)
	require.Len(t, records, 2)

	// Newest first.
	assert.Equal(t, "b2", records[0].BuildID)
	assert.False(t, records[0].Success)
	assert.Contains(t, records[0].Failure, "pdflatex")

	assert.Equal(t, "b1", records[1].BuildID)
	assert.True(t, records[1].Success)
	assert.Equal(t, int64(12345), records[1].ArtifactSize)
	assert.Equal(t, started.Unix(), records[1].StartedAt.Unix())
	assert.Equal(t, 1500*time.Millisecond, records[1].Duration)
}

func TestRecentLimit(t *testing.T) {
	j, err := Open(":memory:")
	require.NoError(t, err)
	defer j.Close()

	ctx := context.Background()
	for i := 0; i < 5; i++ {
		require.NoError(t, j.Append(ctx, Record{
			BuildID: "b", Document: "report", Target: "quick",
			StartedAt: time.Now(),
		}))
	}

	records, err := j.Recent(ctx, 3)
	require.NoError(t, err)
	assert.Len(t, records, 3)

	// Nonpositive limit falls back to a sane default.
	records, err = j.Recent(ctx, 0)
	require.NoError(t, err)
	assert.Len(t, records, 5)
}

func TestOpenCreatesParentDirectory(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "nested", "journal.db")

	j, err := Open(path)
	require.NoError(t, err)
	defer j.Close()

	require.NoError(t, j.Append(context.Background(), Record{
		BuildID: "b1", Document: "report", Target: "quick", StartedAt: time.Now(),
	}))

	// Reopen and read back.
	require.NoError(t, j.Close())
	j2, err := Open(path)
	require.NoError(t, err)
	defer j2.Close()

	records, err := j2.Recent(context.Background(), 1)
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, "report", records[0].Document)
}
