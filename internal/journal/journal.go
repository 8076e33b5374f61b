// Package journal persists build history in a SQLite database.
//
// Journaling is advisory: a failure to record a build is logged as a
// warning and never fails the build itself.
package journal

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	_ "modernc.org/sqlite"
)

// Record is one journaled document build.
type Record struct {
	ID           int64
	BuildID      string
	Document     string
	Target       string
	Success      bool
	ArtifactPath string
	ArtifactSize int64
	StartedAt    time.Time
	Duration     time.Duration
	Failure      string
}

// Journal is a SQLite-backed build history.
type Journal struct {
	db *sql.DB
	mu sync.Mutex
}

// Open opens (creating if needed) the journal database at dbPath.
// Use ":memory:" for an in-memory database.
func Open(dbPath string) (*Journal, error) {
	if dbPath != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
			return nil, fmt.Errorf("create journal directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open journal database: %w", err)
	}

	j := &Journal{db: db}
	if err := j.initialize(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("initialize schema: %w", err)
	}
	return j, nil
}

func (j *Journal) initialize() error {
	schema := `
	CREATE TABLE IF NOT EXISTS builds (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		build_id TEXT NOT NULL,
		document TEXT NOT NULL,
		target TEXT NOT NULL,
		success INTEGER NOT NULL,
		artifact_path TEXT,
		artifact_size INTEGER,
		started_at INTEGER NOT NULL,
		duration_ms INTEGER NOT NULL,
		failure TEXT
	);
	CREATE INDEX IF NOT EXISTS idx_builds_started_at ON builds(started_at);
	CREATE INDEX IF NOT EXISTS idx_builds_document ON builds(document);
	`
	_, err := j.db.Exec(schema)
	return err
}

// Append records one build.
func (j *Journal) Append(ctx context.Context, rec Record) error {
	j.mu.Lock()
	defer j.mu.Unlock()

	_, err := j.db.ExecContext(ctx,
		`INSERT INTO builds (build_id, document, target, success, artifact_path, artifact_size, started_at, duration_ms, failure)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		rec.BuildID, rec.Document, rec.Target, boolToInt(rec.Success),
		rec.ArtifactPath, rec.ArtifactSize,
		rec.StartedAt.Unix(), rec.Duration.Milliseconds(), rec.Failure,
	)
	if err != nil {
		return fmt.Errorf("insert build record: %w", err)
	}
	return nil
}

// Recent returns the most recent builds, newest first.
func (j *Journal) Recent(ctx context.Context, limit int) ([]Record, error) {
	j.mu.Lock()
	defer j.mu.Unlock()

	if limit <= 0 {
		limit = 10
	}
	rows, err := j.db.QueryContext(ctx,
		`SELECT id, build_id, document, target, success, artifact_path, artifact_size, started_at, duration_ms, failure
		 FROM builds ORDER BY id DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("query build records: %w", err)
	}
	defer rows.Close()

	return scanRecords(rows)
}

func scanRecords(rows *sql.Rows) ([]Record, error) {
	var records []Record
	for rows.Next() {
		var rec Record
		var success int
		var startedUnix, durationMillis int64

		err := rows.Scan(&rec.ID, &rec.BuildID, &rec.Document, &rec.Target, &success,
			&rec.ArtifactPath, &rec.ArtifactSize, &startedUnix, &durationMillis, &rec.Failure)
		if err != nil {
			return nil, fmt.Errorf("scan build record: %w", err)
		}

		rec.Success = success != 0
		rec.StartedAt = time.Unix(startedUnix, 0)
		rec.Duration = time.Duration(durationMillis) * time.Millisecond
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate rows: %w", err)
	}
	return records, nil
}

// Close closes the database connection.
func (j *Journal) Close() error {
	j.mu.Lock()
	defer j.mu.Unlock()
	return j.db.Close()
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
