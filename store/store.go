// Package store persists session records in SQLite and serves the
// month-bounded snapshots the analysis engine consumes. The engine
// itself never touches storage; this is the data-store collaborator
// feeding it.
package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"session-analyzer/models"
)

const (
	dateLayout = "2006-01-02"
	timeLayout = "15:04"
)

const schema = `
CREATE TABLE IF NOT EXISTS sessions (
	id          TEXT PRIMARY KEY,
	date        TEXT NOT NULL,
	start_time  TEXT NOT NULL,
	end_time    TEXT NOT NULL,
	client_name TEXT NOT NULL,
	exam_name   TEXT NOT NULL,
	candidates  INTEGER NOT NULL,
	branch      TEXT,
	created_at  TEXT NOT NULL,
	updated_at  TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_sessions_date ON sessions(date);
CREATE INDEX IF NOT EXISTS idx_sessions_branch ON sessions(branch);
`

// Store manages the SQLite session database.
type Store struct {
	db *sql.DB
}

// Open opens (creating if needed) the session database at path and
// ensures the schema exists. Use ":memory:" for an in-memory database.
func Open(path string) (*Store, error) {
	dsn := fmt.Sprintf("file:%s?_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)", path)
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open session database: %w", err)
	}
	// modernc.org/sqlite serializes access per connection; a single
	// connection avoids table-lock errors from concurrent writers.
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to apply session schema: %w", err)
	}

	return &Store{db: db}, nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

// Ping tests the database connection.
func (s *Store) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// withTransaction executes fn within a transaction, rolling back if fn
// returns an error or panics.
func (s *Store) withTransaction(ctx context.Context, fn func(tx *sql.Tx) error) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}

	defer func() {
		if p := recover(); p != nil {
			tx.Rollback()
			panic(p)
		}
	}()

	if err := fn(tx); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			return fmt.Errorf("rollback failed: %v (original error: %w)", rbErr, err)
		}
		return err
	}

	return tx.Commit()
}

// Put inserts or replaces one session. A blank ID gets a fresh UUID;
// the stored session (with its final ID) is returned.
func (s *Store) Put(ctx context.Context, session models.Session) (models.Session, error) {
	var out models.Session
	err := s.withTransaction(ctx, func(tx *sql.Tx) error {
		stored, err := putTx(tx, session)
		if err != nil {
			return err
		}
		out = stored
		return nil
	})
	return out, err
}

// PutAll stores a batch of sessions in a single transaction. Either all
// rows land or none do.
func (s *Store) PutAll(ctx context.Context, sessions []models.Session) error {
	return s.withTransaction(ctx, func(tx *sql.Tx) error {
		for _, session := range sessions {
			if _, err := putTx(tx, session); err != nil {
				return err
			}
		}
		return nil
	})
}

func putTx(tx *sql.Tx, session models.Session) (models.Session, error) {
	if session.ID == "" {
		session.ID = uuid.NewString()
	}

	var branch sql.NullString
	if session.Branch != "" {
		branch.String = session.Branch
		branch.Valid = true
	}

	now := time.Now().UTC().Format(time.RFC3339)
	query := `
		INSERT INTO sessions (id, date, start_time, end_time, client_name, exam_name, candidates, branch, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			date = excluded.date,
			start_time = excluded.start_time,
			end_time = excluded.end_time,
			client_name = excluded.client_name,
			exam_name = excluded.exam_name,
			candidates = excluded.candidates,
			branch = excluded.branch,
			updated_at = excluded.updated_at
	`
	_, err := tx.Exec(query,
		session.ID,
		session.Date.Format(dateLayout),
		session.Start.Format(timeLayout),
		session.End.Format(timeLayout),
		session.ClientName,
		session.ExamName,
		session.Candidates,
		branch,
		now,
		now,
	)
	if err != nil {
		return models.Session{}, fmt.Errorf("failed to store session %s: %w", session.ID, err)
	}
	return session, nil
}

// Delete removes a session by ID. Deleting an absent ID is not an
// error.
func (s *Store) Delete(ctx context.Context, id string) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM sessions WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete session %s: %w", id, err)
	}
	return nil
}

// ListMonth returns the snapshot for one calendar month, optionally
// filtered to a branch ("" or "global" means all branches). Rows come
// back ordered by date then start time.
func (s *Store) ListMonth(ctx context.Context, year int, month time.Month, branch string) ([]models.Session, error) {
	first := time.Date(year, month, 1, 0, 0, 0, 0, time.UTC)
	next := first.AddDate(0, 1, 0)

	query := `
		SELECT id, date, start_time, end_time, client_name, exam_name, candidates, branch
		FROM sessions
		WHERE date >= ? AND date < ?
	`
	args := []any{first.Format(dateLayout), next.Format(dateLayout)}
	if branch != "" && branch != "global" {
		query += ` AND branch = ?`
		args = append(args, branch)
	}
	query += ` ORDER BY date, start_time, id`

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query sessions: %w", err)
	}
	defer rows.Close()

	sessions := make([]models.Session, 0)
	for rows.Next() {
		var (
			session                   models.Session
			dateStr, startStr, endStr string
			branchCol                 sql.NullString
		)
		if err := rows.Scan(
			&session.ID,
			&dateStr,
			&startStr,
			&endStr,
			&session.ClientName,
			&session.ExamName,
			&session.Candidates,
			&branchCol,
		); err != nil {
			return nil, fmt.Errorf("failed to scan session row: %w", err)
		}

		session.Date, err = time.ParseInLocation(dateLayout, dateStr, time.UTC)
		if err != nil {
			return nil, fmt.Errorf("corrupt date column for session %s: %w", session.ID, err)
		}
		session.Start, err = anchorClock(startStr, session.Date)
		if err != nil {
			return nil, fmt.Errorf("corrupt start_time column for session %s: %w", session.ID, err)
		}
		session.End, err = anchorClock(endStr, session.Date)
		if err != nil {
			return nil, fmt.Errorf("corrupt end_time column for session %s: %w", session.ID, err)
		}
		if branchCol.Valid {
			session.Branch = branchCol.String
		}

		sessions = append(sessions, session)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate session rows: %w", err)
	}

	return sessions, nil
}

// anchorClock re-anchors a stored HH:MM column to the session's date.
func anchorClock(value string, date time.Time) (time.Time, error) {
	t, err := time.ParseInLocation(timeLayout, value, time.UTC)
	if err != nil {
		return time.Time{}, err
	}
	return time.Date(date.Year(), date.Month(), date.Day(), t.Hour(), t.Minute(), 0, 0, time.UTC), nil
}
