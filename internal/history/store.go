package history

import (
	"context"
	"database/sql"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"

	"gazette/internal/config"
)

//go:embed schema.sql
var schemaSQL string

// schemaVersion is the current schema version. Bump this when the schema
// changes; users must delete the database after a bump.
const schemaVersion = 1

// ErrSchemaMismatch indicates the database was created by a different
// gazette version.
var ErrSchemaMismatch = errors.New("schema version mismatch")

// Record describes one completed collection run.
type Record struct {
	ID           int64
	RunID        string
	StartedAt    time.Time
	FinishedAt   time.Time
	WindowStart  time.Time
	WindowEnd    time.Time
	Outcome      string
	TotalPapers  int
	GroupCounts  map[string]int
	ArtifactPath string
	ErrorMessage string
}

// Store manages run-history persistence backed by SQLite.
type Store struct {
	db   *sql.DB
	path string
}

// Open initializes or connects to the history database under the log
// directory.
func Open(cfg *config.Config) (*Store, error) {
	if err := cfg.EnsureDirectories(); err != nil {
		return nil, fmt.Errorf("ensure directories: %w", err)
	}

	dbPath := filepath.Join(cfg.Paths.LogDir, "history.db")
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA foreign_keys = ON",
		"PRAGMA busy_timeout = 5000",
	}
	for _, pragma := range pragmas {
		if _, execErr := db.Exec(pragma); execErr != nil {
			_ = db.Close()
			return nil, fmt.Errorf("apply pragma %q: %w", pragma, execErr)
		}
	}

	store := &Store{db: db, path: dbPath}
	if err := store.initSchema(context.Background()); err != nil {
		_ = db.Close()
		return nil, err
	}
	return store, nil
}

// Path returns the database file location.
func (s *Store) Path() string {
	return s.path
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

func (s *Store) initSchema(ctx context.Context) error {
	var tableExists int
	err := s.db.QueryRowContext(ctx,
		"SELECT COUNT(1) FROM sqlite_master WHERE type='table' AND name='schema_version'",
	).Scan(&tableExists)
	if err != nil {
		return fmt.Errorf("check schema_version table: %w", err)
	}

	if tableExists == 0 {
		return s.createSchema(ctx)
	}

	var version int
	if err := s.db.QueryRowContext(ctx, "SELECT version FROM schema_version LIMIT 1").Scan(&version); err != nil {
		return fmt.Errorf("read schema version: %w", err)
	}
	if version != schemaVersion {
		return fmt.Errorf("%w: database has version %d, expected %d (delete %s to reset)",
			ErrSchemaMismatch, version, schemaVersion, s.path)
	}
	return nil
}

func (s *Store) createSchema(ctx context.Context) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin schema tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, schemaSQL); err != nil {
		return fmt.Errorf("create schema: %w", err)
	}
	if _, err := tx.ExecContext(ctx, "INSERT INTO schema_version (version) VALUES (?)", schemaVersion); err != nil {
		return fmt.Errorf("record schema version: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit schema: %w", err)
	}
	return nil
}

// RecordRun inserts a run record and returns its row id.
func (s *Store) RecordRun(ctx context.Context, rec Record) (int64, error) {
	var countsJSON any
	if len(rec.GroupCounts) > 0 {
		data, err := json.Marshal(rec.GroupCounts)
		if err != nil {
			return 0, fmt.Errorf("marshal group counts: %w", err)
		}
		countsJSON = string(data)
	}

	res, err := s.db.ExecContext(
		ctx,
		`INSERT INTO runs (
            run_id, started_at, finished_at, window_start, window_end,
            outcome, total_papers, group_counts_json, artifact_path, error_message
        ) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		rec.RunID,
		rec.StartedAt.UTC().Format(time.RFC3339Nano),
		rec.FinishedAt.UTC().Format(time.RFC3339Nano),
		rec.WindowStart.UTC().Format(time.RFC3339Nano),
		rec.WindowEnd.UTC().Format(time.RFC3339Nano),
		rec.Outcome,
		rec.TotalPapers,
		countsJSON,
		nullableString(rec.ArtifactPath),
		nullableString(rec.ErrorMessage),
	)
	if err != nil {
		return 0, fmt.Errorf("insert run: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("last insert id: %w", err)
	}
	return id, nil
}

const selectColumns = `id, run_id, started_at, finished_at, window_start, window_end,
        outcome, total_papers, group_counts_json, artifact_path, error_message`

// LastRun returns the most recent run record, or nil when no runs exist.
func (s *Store) LastRun(ctx context.Context) (*Record, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+selectColumns+` FROM runs ORDER BY started_at DESC, id DESC LIMIT 1`)
	rec, err := scanRecord(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &rec, nil
}

// ListRuns returns up to limit run records, most recent first.
func (s *Store) ListRuns(ctx context.Context, limit int) ([]Record, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+selectColumns+` FROM runs ORDER BY started_at DESC, id DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("query runs: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var records []Record
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, err
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate runs: %w", err)
	}
	return records, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanRecord(row scanner) (Record, error) {
	var (
		rec          Record
		startedAt    string
		finishedAt   string
		windowStart  string
		windowEnd    string
		countsJSON   sql.NullString
		artifactPath sql.NullString
		errorMessage sql.NullString
	)
	err := row.Scan(
		&rec.ID, &rec.RunID, &startedAt, &finishedAt, &windowStart, &windowEnd,
		&rec.Outcome, &rec.TotalPapers, &countsJSON, &artifactPath, &errorMessage,
	)
	if err != nil {
		return Record{}, err
	}

	for _, field := range []struct {
		raw  string
		dest *time.Time
	}{
		{startedAt, &rec.StartedAt},
		{finishedAt, &rec.FinishedAt},
		{windowStart, &rec.WindowStart},
		{windowEnd, &rec.WindowEnd},
	} {
		ts, parseErr := time.Parse(time.RFC3339Nano, field.raw)
		if parseErr != nil {
			return Record{}, fmt.Errorf("parse timestamp %q: %w", field.raw, parseErr)
		}
		*field.dest = ts
	}

	if countsJSON.Valid && countsJSON.String != "" {
		if err := json.Unmarshal([]byte(countsJSON.String), &rec.GroupCounts); err != nil {
			return Record{}, fmt.Errorf("unmarshal group counts: %w", err)
		}
	}
	rec.ArtifactPath = artifactPath.String
	rec.ErrorMessage = errorMessage.String
	return rec, nil
}

func nullableString(value string) any {
	if value == "" {
		return nil
	}
	return value
}
