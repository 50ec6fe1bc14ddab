// Package history persists run summaries in a local SQLite database so
// earlier runs can be reviewed from the CLI.
package history

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"

	"declutter/internal/config"
	"declutter/internal/pipeline"
)

// Store manages run history persistence backed by SQLite.
type Store struct {
	db   *sql.DB
	path string
}

// DefaultPath returns the history database location under the per-user
// cache directory.
func DefaultPath() (string, error) {
	dir, err := config.CacheDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "history.db"), nil
}

// Open initializes or connects to the history database and applies
// migrations.
func Open(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout = 5000",
	}
	for _, pragma := range pragmas {
		if _, execErr := db.Exec(pragma); execErr != nil {
			_ = db.Close()
			return nil, fmt.Errorf("apply pragma %q: %w", pragma, execErr)
		}
	}

	store := &Store{db: db, path: dbPath}
	if err := store.applyMigrations(context.Background()); err != nil {
		_ = db.Close()
		return nil, err
	}
	return store, nil
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// Path returns the database file location.
func (s *Store) Path() string {
	return s.path
}

// Entry is one recorded run, newest-first when listed.
type Entry struct {
	ID             int64          `json:"id"`
	RunID          string         `json:"run_id"`
	Source         string         `json:"source"`
	Destination    string         `json:"destination"`
	DryRun         bool           `json:"dry_run"`
	StartedAt      time.Time      `json:"started_at"`
	Duration       time.Duration  `json:"duration_ns"`
	Moved          int            `json:"moved"`
	Skipped        int            `json:"skipped"`
	MoveFailures   int            `json:"move_failures"`
	ByCategory     map[string]int `json:"by_category,omitempty"`
	Extracted      int            `json:"extracted"`
	FailedArchives []string       `json:"failed_archives,omitempty"`
	Pruned         int            `json:"pruned"`
}

// Clean reports whether the recorded run had no per-file or per-archive
// failures.
func (e Entry) Clean() bool {
	return e.MoveFailures == 0 && len(e.FailedArchives) == 0
}

// RecordRun appends a run summary to the history.
func (s *Store) RecordRun(ctx context.Context, summary *pipeline.Summary) error {
	byCategory, err := marshalNullableMap(summary.ByCategory)
	if err != nil {
		return fmt.Errorf("marshal category counts: %w", err)
	}
	failedArchives, err := marshalNullableSlice(summary.FailedArchives)
	if err != nil {
		return fmt.Errorf("marshal failed archives: %w", err)
	}

	_, err = s.db.ExecContext(
		ctx,
		`INSERT INTO runs (
            run_id, source, destination, dry_run, started_at, duration_ms,
            moved, skipped, move_failures, by_category_json,
            extracted, failed_archives_json, pruned
        ) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		summary.RunID,
		summary.Source,
		summary.Destination,
		boolToInt(summary.DryRun),
		summary.StartedAt.UTC().Format(time.RFC3339Nano),
		summary.Duration.Milliseconds(),
		summary.Moved,
		summary.Skipped,
		summary.MoveFailures,
		byCategory,
		summary.Extracted,
		failedArchives,
		summary.Pruned,
	)
	if err != nil {
		return fmt.Errorf("insert run: %w", err)
	}
	return nil
}

// Recent returns the most recent runs, newest first. A non-positive limit
// defaults to 10.
func (s *Store) Recent(ctx context.Context, limit int) ([]Entry, error) {
	if limit <= 0 {
		limit = 10
	}

	rows, err := s.db.QueryContext(
		ctx,
		`SELECT id, run_id, source, destination, dry_run, started_at, duration_ms,
            moved, skipped, move_failures, by_category_json,
            extracted, failed_archives_json, pruned
        FROM runs ORDER BY id DESC LIMIT ?`,
		limit,
	)
	if err != nil {
		return nil, fmt.Errorf("query runs: %w", err)
	}
	defer rows.Close()

	entries := make([]Entry, 0, limit)
	for rows.Next() {
		entry, err := scanEntry(rows)
		if err != nil {
			return nil, err
		}
		entries = append(entries, entry)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate runs: %w", err)
	}
	return entries, nil
}

func scanEntry(rows *sql.Rows) (Entry, error) {
	var (
		entry          Entry
		dryRun         int
		startedAt      string
		durationMillis int64
		byCategory     sql.NullString
		failedArchives sql.NullString
	)
	if err := rows.Scan(
		&entry.ID,
		&entry.RunID,
		&entry.Source,
		&entry.Destination,
		&dryRun,
		&startedAt,
		&durationMillis,
		&entry.Moved,
		&entry.Skipped,
		&entry.MoveFailures,
		&byCategory,
		&entry.Extracted,
		&failedArchives,
		&entry.Pruned,
	); err != nil {
		return Entry{}, fmt.Errorf("scan run: %w", err)
	}

	entry.DryRun = dryRun != 0
	entry.Duration = time.Duration(durationMillis) * time.Millisecond
	if ts, err := time.Parse(time.RFC3339Nano, startedAt); err == nil {
		entry.StartedAt = ts
	}
	if byCategory.Valid && byCategory.String != "" {
		if err := json.Unmarshal([]byte(byCategory.String), &entry.ByCategory); err != nil {
			return Entry{}, fmt.Errorf("decode category counts: %w", err)
		}
	}
	if failedArchives.Valid && failedArchives.String != "" {
		if err := json.Unmarshal([]byte(failedArchives.String), &entry.FailedArchives); err != nil {
			return Entry{}, fmt.Errorf("decode failed archives: %w", err)
		}
	}
	return entry, nil
}

// marshalNullableMap encodes a count map as JSON, mapping an empty map to
// NULL so the column stays readable in raw queries.
func marshalNullableMap(v map[string]int) (any, error) {
	if len(v) == 0 {
		return nil, nil
	}
	data, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	return string(data), nil
}

func marshalNullableSlice(v []string) (any, error) {
	if len(v) == 0 {
		return nil, nil
	}
	data, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	return string(data), nil
}

func boolToInt(v bool) int {
	if v {
		return 1
	}
	return 0
}
