package store

import (
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"
)

// ErrJobNotFound is returned when a job id does not exist.
var ErrJobNotFound = errors.New("job not found")

// Job statuses.
const (
	StatusQueued    = "queued"
	StatusRunning   = "running"
	StatusCompleted = "completed"
	StatusFailed    = "failed"
)

// Job is one persisted reframe request.
type Job struct {
	ID         string
	URL        string
	ClipID     string
	Status     string
	CoordsPath string
	Error      string
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

const schema = `
CREATE TABLE IF NOT EXISTS jobs (
	id          TEXT PRIMARY KEY,
	url         TEXT NOT NULL,
	clip_id     TEXT NOT NULL,
	status      TEXT NOT NULL,
	coords_path TEXT NOT NULL DEFAULT '',
	error       TEXT NOT NULL DEFAULT '',
	created_at  TIMESTAMP NOT NULL DEFAULT (datetime('now')),
	updated_at  TIMESTAMP NOT NULL DEFAULT (datetime('now'))
);
CREATE INDEX IF NOT EXISTS idx_jobs_status ON jobs(status);
`

// Store persists jobs in a local sqlite database.
type Store struct {
	db *sql.DB
}

// Open creates the database file if needed, applies pragmas and the schema,
// and fails any job left running by a previous process.
func Open(dbPath string) (*Store, error) {
	if dir := filepath.Dir(dbPath); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	for _, pragma := range []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout=5000",
	} {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, fmt.Errorf("failed to execute %s: %w", pragma, err)
		}
	}

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to apply schema: %w", err)
	}

	s := &Store{db: db}
	if err := s.markInterrupted(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to mark interrupted jobs: %w", err)
	}
	return s, nil
}

// Close releases the database handle.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) markInterrupted() error {
	_, err := s.db.Exec(
		`UPDATE jobs SET status = ?, error = 'interrupted by restart', updated_at = datetime('now') WHERE status = ?`,
		StatusFailed, StatusRunning)
	return err
}

// Create inserts a new queued job.
func (s *Store) Create(job Job) error {
	_, err := s.db.Exec(
		`INSERT INTO jobs (id, url, clip_id, status) VALUES (?, ?, ?, ?)`,
		job.ID, job.URL, job.ClipID, StatusQueued)
	if err != nil {
		return fmt.Errorf("failed to create job: %w", err)
	}
	return nil
}

// Get fetches a job by id.
func (s *Store) Get(id string) (Job, error) {
	row := s.db.QueryRow(
		`SELECT id, url, clip_id, status, coords_path, error, created_at, updated_at FROM jobs WHERE id = ?`, id)

	// The driver converts TIMESTAMP-declared columns to time.Time itself.
	var job Job
	err := row.Scan(&job.ID, &job.URL, &job.ClipID, &job.Status,
		&job.CoordsPath, &job.Error, &job.CreatedAt, &job.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return Job{}, ErrJobNotFound
	}
	if err != nil {
		return Job{}, fmt.Errorf("failed to get job: %w", err)
	}
	return job, nil
}

// SetRunning marks the job as picked up by a worker.
func (s *Store) SetRunning(id string) error {
	return s.setStatus(id, StatusRunning, "", "")
}

// SetCompleted records the coords artifact path.
func (s *Store) SetCompleted(id, coordsPath string) error {
	return s.setStatus(id, StatusCompleted, coordsPath, "")
}

// SetFailed records the failure reason.
func (s *Store) SetFailed(id string, jobErr error) error {
	msg := ""
	if jobErr != nil {
		msg = jobErr.Error()
	}
	return s.setStatus(id, StatusFailed, "", msg)
}

func (s *Store) setStatus(id, status, coordsPath, errMsg string) error {
	res, err := s.db.Exec(
		`UPDATE jobs SET status = ?, coords_path = ?, error = ?, updated_at = datetime('now') WHERE id = ?`,
		status, coordsPath, errMsg, id)
	if err != nil {
		return fmt.Errorf("failed to update job: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrJobNotFound
	}
	return nil
}

// Queued returns ids of jobs waiting for a worker, oldest first. Used to
// requeue work after a restart.
func (s *Store) Queued() ([]string, error) {
	rows, err := s.db.Query(`SELECT id FROM jobs WHERE status = ? ORDER BY created_at, rowid`, StatusQueued)
	if err != nil {
		return nil, fmt.Errorf("failed to list queued jobs: %w", err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan job id: %w", err)
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}
