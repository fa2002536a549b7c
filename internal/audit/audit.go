// Package audit records directory lookups and remote launches in a local
// SQLite database.
package audit

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3" // registers the sqlite3 driver with database/sql
)

// Outcome values stored in the outcome column.
const (
	OutcomeOK    = "ok"
	OutcomeError = "error"
)

// Event is one audited action.
type Event struct {
	ID         string
	SessionID  string
	OccurredAt time.Time
	Command    string // "search" | "remote"
	Query      string
	Strategy   string
	Account    string
	Target     string
	Outcome    string
	Error      string
}

// Store wraps a *sql.DB with the path it was opened from.
type Store struct {
	db   *sql.DB
	path string
}

// Open opens (or creates) the audit database at path and initialises the schema.
func Open(path string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return nil, fmt.Errorf("audit.Open: create dir: %w", err)
	}
	sqldb, err := sql.Open("sqlite3", path+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("audit.Open: %w", err)
	}
	s := &Store{db: sqldb, path: path}
	if err := s.createSchema(); err != nil {
		_ = sqldb.Close()
		return nil, fmt.Errorf("audit.Open createSchema: %w", err)
	}
	return s, nil
}

// Path returns the database path.
func (s *Store) Path() string { return s.path }

// Close closes the underlying database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// ---------------------------------------------------------------------------
// Schema
// ---------------------------------------------------------------------------

func (s *Store) createSchema() error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS events (
			rowid       INTEGER PRIMARY KEY AUTOINCREMENT,
			id          TEXT UNIQUE NOT NULL,
			session_id  TEXT NOT NULL,
			occurred_at TEXT NOT NULL,
			command     TEXT NOT NULL,
			query       TEXT,
			strategy    TEXT,
			account     TEXT,
			target      TEXT,
			outcome     TEXT NOT NULL,
			error       TEXT
		)`,
		`CREATE INDEX IF NOT EXISTS events_session ON events(session_id)`,
		`CREATE INDEX IF NOT EXISTS events_account ON events(account)`,
	}
	for _, stmt := range stmts {
		if _, err := s.db.Exec(stmt); err != nil {
			return fmt.Errorf("createSchema exec: %w\nSQL: %s", err, stmt)
		}
	}
	return nil
}

// ---------------------------------------------------------------------------
// Events
// ---------------------------------------------------------------------------

// NewSessionID returns a fresh identifier grouping one process's events.
func NewSessionID() string {
	return uuid.NewString()
}

// Record inserts ev, assigning an ID and timestamp when they are unset.
func (s *Store) Record(ev Event) (Event, error) {
	if ev.ID == "" {
		ev.ID = uuid.NewString()
	}
	if ev.OccurredAt.IsZero() {
		ev.OccurredAt = time.Now().UTC()
	}
	if ev.Outcome == "" {
		ev.Outcome = OutcomeOK
	}
	_, err := s.db.Exec(
		`INSERT INTO events (id, session_id, occurred_at, command, query, strategy, account, target, outcome, error)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		ev.ID, ev.SessionID, ev.OccurredAt.UTC().Format(time.RFC3339Nano),
		ev.Command, ev.Query, ev.Strategy, ev.Account, ev.Target, ev.Outcome, ev.Error,
	)
	if err != nil {
		return ev, fmt.Errorf("audit.Record: %w", err)
	}
	return ev, nil
}

// Recent returns up to limit events, newest first. An account filter of ""
// matches every event.
func (s *Store) Recent(limit int, account string) ([]Event, error) {
	if limit <= 0 {
		limit = 20
	}
	q := `SELECT id, session_id, occurred_at, command, COALESCE(query, ''), COALESCE(strategy, ''),
	             COALESCE(account, ''), COALESCE(target, ''), outcome, COALESCE(error, '')
	      FROM events`
	args := []any{}
	if account != "" {
		q += ` WHERE account = ? COLLATE NOCASE`
		args = append(args, account)
	}
	q += ` ORDER BY rowid DESC LIMIT ?`
	args = append(args, limit)

	rows, err := s.db.Query(q, args...)
	if err != nil {
		return nil, fmt.Errorf("audit.Recent: %w", err)
	}
	defer rows.Close()

	var events []Event
	for rows.Next() {
		var ev Event
		var ts string
		if err := rows.Scan(&ev.ID, &ev.SessionID, &ts, &ev.Command, &ev.Query, &ev.Strategy,
			&ev.Account, &ev.Target, &ev.Outcome, &ev.Error); err != nil {
			return nil, fmt.Errorf("audit.Recent scan: %w", err)
		}
		ev.OccurredAt, _ = time.Parse(time.RFC3339Nano, ts)
		events = append(events, ev)
	}
	return events, rows.Err()
}

// Count returns the number of stored events.
func (s *Store) Count() (int, error) {
	var n int
	err := s.db.QueryRow(`SELECT COUNT(*) FROM events`).Scan(&n)
	return n, err
}
