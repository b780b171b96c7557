// Package store persists evaluation run history so results can be
// compared across skill revisions.
package store

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/8ddieHu0314/skill-lab/internal/logger"

	_ "modernc.org/sqlite" // SQLite driver for database/sql
)

// Run is one recorded evaluation run.
type Run struct {
	ID         string    `json:"id"`
	SkillPath  string    `json:"skill_path"`
	SkillName  string    `json:"skill_name"`
	Kind       string    `json:"kind"` // static, triggers, trace
	Runtime    string    `json:"runtime,omitempty"`
	StartedAt  time.Time `json:"started_at"`
	DurationMS float64   `json:"duration_ms"`
	Passed     bool      `json:"passed"`
	Score      float64   `json:"score,omitempty"`
	TestsRun   int       `json:"tests_run"`
	TestsFail  int       `json:"tests_failed"`

	// ReportJSON holds the full serialized report for later
	// inspection.
	ReportJSON string `json:"-"`
}

// RunStore defines the interface for run-history persistence
type RunStore interface {
	SaveRun(run *Run) error
	SaveReport(run *Run, report interface{}) error
	GetRun(id string) (*Run, error)
	ListRuns(skillPath string, limit int) ([]*Run, error)
	CleanupOldRuns(ttl time.Duration) (int64, error)
	Close() error
}

// SQLiteStore implements RunStore using SQLite
type SQLiteStore struct {
	db     *sql.DB
	dbPath string
	mu     sync.RWMutex
}

var _ RunStore = (*SQLiteStore)(nil)

// NewSQLiteStore opens (creating if needed) the run-history database.
// An empty path defaults to ~/.sklab/history.db.
func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	if dbPath == "" {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("failed to get home directory: %w", err)
		}
		dbPath = filepath.Join(homeDir, ".sklab", "history.db")
	}

	if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
		return nil, fmt.Errorf("failed to create history directory: %w", err)
	}

	// WAL mode for better concurrency
	db, err := sql.Open("sqlite", dbPath+"?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	store := &SQLiteStore{db: db, dbPath: dbPath}
	if err := store.initSchema(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	logger.Debug().
		Str("path", dbPath).
		Msg("Opened run history store")

	return store, nil
}

func (s *SQLiteStore) initSchema() error {
	schema := `
	CREATE TABLE IF NOT EXISTS runs (
		id TEXT PRIMARY KEY,
		skill_path TEXT NOT NULL,
		skill_name TEXT,
		kind TEXT NOT NULL,
		runtime TEXT,
		started_at INTEGER NOT NULL,
		duration_ms REAL NOT NULL,
		passed INTEGER NOT NULL,
		score REAL,
		tests_run INTEGER NOT NULL,
		tests_failed INTEGER NOT NULL,
		report TEXT
	);

	CREATE INDEX IF NOT EXISTS idx_runs_skill ON runs(skill_path, started_at);
	`

	_, err := s.db.Exec(schema)
	return err
}

// SaveRun records a run. A missing ID is assigned.
func (s *SQLiteStore) SaveRun(run *Run) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if run.ID == "" {
		run.ID = uuid.New().String()
	}
	if run.StartedAt.IsZero() {
		run.StartedAt = time.Now()
	}

	_, err := s.db.Exec(
		`INSERT INTO runs (id, skill_path, skill_name, kind, runtime, started_at, duration_ms, passed, score, tests_run, tests_failed, report)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		run.ID, run.SkillPath, run.SkillName, run.Kind, run.Runtime,
		run.StartedAt.Unix(), run.DurationMS, boolToInt(run.Passed),
		run.Score, run.TestsRun, run.TestsFail, run.ReportJSON,
	)
	if err != nil {
		return fmt.Errorf("failed to save run: %w", err)
	}

	logger.Debug().
		Str("run_id", run.ID).
		Str("kind", run.Kind).
		Str("skill", run.SkillPath).
		Msg("Saved run")

	return nil
}

// SaveReport serializes any report value and records it as a run.
func (s *SQLiteStore) SaveReport(run *Run, report interface{}) error {
	data, err := json.Marshal(report)
	if err != nil {
		return fmt.Errorf("failed to serialize report: %w", err)
	}
	run.ReportJSON = string(data)
	return s.SaveRun(run)
}

// GetRun retrieves a run by ID.
func (s *SQLiteStore) GetRun(id string) (*Run, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	row := s.db.QueryRow(
		`SELECT id, skill_path, skill_name, kind, runtime, started_at, duration_ms, passed, score, tests_run, tests_failed, report
		 FROM runs WHERE id = ?`, id)
	return scanRun(row)
}

// ListRuns returns runs for a skill, newest first. An empty skillPath
// lists runs for every skill.
func (s *SQLiteStore) ListRuns(skillPath string, limit int) ([]*Run, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if limit <= 0 {
		limit = 20
	}

	query := `SELECT id, skill_path, skill_name, kind, runtime, started_at, duration_ms, passed, score, tests_run, tests_failed, report
		  FROM runs`
	args := []interface{}{}
	if skillPath != "" {
		query += " WHERE skill_path = ?"
		args = append(args, skillPath)
	}
	query += " ORDER BY started_at DESC LIMIT ?"
	args = append(args, limit)

	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list runs: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var runs []*Run
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		runs = append(runs, run)
	}
	return runs, rows.Err()
}

// CleanupOldRuns deletes runs older than ttl and returns the count.
func (s *SQLiteStore) CleanupOldRuns(ttl time.Duration) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	cutoff := time.Now().Add(-ttl).Unix()
	result, err := s.db.Exec("DELETE FROM runs WHERE started_at < ?", cutoff)
	if err != nil {
		return 0, fmt.Errorf("failed to cleanup runs: %w", err)
	}

	deleted, _ := result.RowsAffected()
	if deleted > 0 {
		logger.Debug().Int64("deleted", deleted).Msg("Cleaned up old runs")
	}
	return deleted, nil
}

// Close closes the underlying database.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanRun(row rowScanner) (*Run, error) {
	var (
		run       Run
		startedAt int64
		passed    int
		score     sql.NullFloat64
		runtime   sql.NullString
		skillName sql.NullString
		report    sql.NullString
	)
	err := row.Scan(&run.ID, &run.SkillPath, &skillName, &run.Kind, &runtime,
		&startedAt, &run.DurationMS, &passed, &score, &run.TestsRun, &run.TestsFail, &report)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("run not found")
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan run: %w", err)
	}
	run.StartedAt = time.Unix(startedAt, 0)
	run.Passed = passed != 0
	run.Score = score.Float64
	run.Runtime = runtime.String
	run.SkillName = skillName.String
	run.ReportJSON = report.String
	return &run, nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
