// Package history persists observed job status transitions to a local
// SQLite database, so status changes seen while watching survive across
// sessions and can be inspected later.
package history

import (
	"database/sql"
	"embed"
	"fmt"
	"time"

	"github.com/pressly/goose/v3"
	_ "modernc.org/sqlite"
)

//go:embed migrations/*.sql
var migrations embed.FS

// OpenDatabase opens the SQLite database and runs migrations.
func OpenDatabase(path string) (*sql.DB, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// Connection pragmas must be set outside of transactions.
	if _, err := db.Exec("PRAGMA journal_mode = WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to set journal mode: %w", err)
	}
	if _, err := db.Exec("PRAGMA synchronous = NORMAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to set synchronous mode: %w", err)
	}
	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to enable foreign keys: %w", err)
	}

	goose.SetBaseFS(migrations)
	if err := goose.SetDialect("sqlite3"); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to set dialect: %w", err)
	}
	goose.SetLogger(goose.NopLogger())

	if err := goose.Up(db, "migrations"); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	return db, nil
}

// Transition is one observed job status change. OldStatus is empty for the
// first observation of a job.
type Transition struct {
	ID         int64
	JobID      int
	Name       string
	OldStatus  string
	Status     string
	Finished   *time.Time
	ObservedAt time.Time
}

// Store handles all database operations for the transition history.
type Store struct {
	db *sql.DB
}

// NewStore creates a store over an open database.
func NewStore(db *sql.DB) *Store {
	return &Store{db: db}
}

// RecordTransition appends one observed status change.
func (s *Store) RecordTransition(t *Transition) error {
	var finished *string
	if t.Finished != nil {
		v := t.Finished.Format(time.RFC3339)
		finished = &v
	}

	observedAt := t.ObservedAt
	if observedAt.IsZero() {
		observedAt = time.Now()
	}

	_, err := s.db.Exec(`
		INSERT INTO transitions (job_id, name, old_status, status, finished, observed_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`, t.JobID, t.Name, t.OldStatus, t.Status, finished, observedAt.Format(time.RFC3339))
	if err != nil {
		return fmt.Errorf("failed to record transition: %w", err)
	}
	return nil
}

// TransitionsForJob loads a job's transitions, oldest first.
func (s *Store) TransitionsForJob(jobID int) ([]*Transition, error) {
	rows, err := s.db.Query(`
		SELECT id, job_id, name, old_status, status, finished, observed_at
		FROM transitions
		WHERE job_id = ?
		ORDER BY id
	`, jobID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanTransitions(rows)
}

// Recent loads the most recent transitions across all jobs, newest first.
func (s *Store) Recent(limit int) ([]*Transition, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := s.db.Query(`
		SELECT id, job_id, name, old_status, status, finished, observed_at
		FROM transitions
		ORDER BY id DESC
		LIMIT ?
	`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanTransitions(rows)
}

// Prune deletes transitions observed before the cutoff and returns the
// number removed.
func (s *Store) Prune(before time.Time) (int64, error) {
	res, err := s.db.Exec(`
		DELETE FROM transitions WHERE observed_at < ?
	`, before.Format(time.RFC3339))
	if err != nil {
		return 0, fmt.Errorf("failed to prune transitions: %w", err)
	}
	return res.RowsAffected()
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

func scanTransitions(rows *sql.Rows) ([]*Transition, error) {
	var out []*Transition
	for rows.Next() {
		var (
			t           Transition
			finishedStr sql.NullString
			observedStr string
		)
		if err := rows.Scan(&t.ID, &t.JobID, &t.Name, &t.OldStatus, &t.Status, &finishedStr, &observedStr); err != nil {
			return nil, err
		}

		observedAt, err := time.Parse(time.RFC3339, observedStr)
		if err != nil {
			return nil, fmt.Errorf("failed to parse observed_at: %w", err)
		}
		t.ObservedAt = observedAt

		if finishedStr.Valid {
			finished, err := time.Parse(time.RFC3339, finishedStr.String)
			if err != nil {
				return nil, fmt.Errorf("failed to parse finished: %w", err)
			}
			t.Finished = &finished
		}

		out = append(out, &t)
	}
	return out, rows.Err()
}
