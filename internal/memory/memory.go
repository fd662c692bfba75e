// Package memory keeps a sqlite log of per-run learnings: the
// evaluator's score and critique for every completed research run.
package memory

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "github.com/mattn/go-sqlite3"
)

// Note is one learning entry.
type Note struct {
	Timestamp time.Time `json:"ts"`
	Ticker    string    `json:"ticker"`
	Score     float64   `json:"score"`
	Critique  string    `json:"critique"`
}

type Store struct {
	db *sql.DB
}

// Open creates the learnings database, its directory, and the schema.
func Open(dbPath string) (*Store, error) {
	if strings.TrimSpace(dbPath) == "" {
		return nil, fmt.Errorf("db path is required")
	}

	if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
		return nil, fmt.Errorf("create db dir: %w", err)
	}

	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	pragmas := []string{
		"PRAGMA journal_mode=WAL;",
		"PRAGMA busy_timeout=3000;",
		"PRAGMA synchronous=NORMAL;",
	}
	for _, p := range pragmas {
		if _, err := db.Exec(p); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("set pragma %s: %w", p, err)
		}
	}

	schema := `
CREATE TABLE IF NOT EXISTS learnings (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    ts DATETIME NOT NULL,
    ticker TEXT NOT NULL,
    score REAL NOT NULL,
    critique TEXT NOT NULL DEFAULT ''
);
CREATE INDEX IF NOT EXISTS idx_learnings_ticker ON learnings(ticker, ts DESC);
`
	if _, err := db.Exec(schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("init schema: %w", err)
	}

	return &Store{db: db}, nil
}

func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// UpdateFromRun appends one learning entry for a completed run.
func (s *Store) UpdateFromRun(ctx context.Context, ticker string, score float64, critique string) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO learnings (ts, ticker, score, critique) VALUES (?, ?, ?, ?)`,
		time.Now().UTC(), ticker, score, critique)
	if err != nil {
		return fmt.Errorf("insert learning: %w", err)
	}
	return nil
}

// FetchNotes returns the most recent entries for a ticker, newest first.
func (s *Store) FetchNotes(ctx context.Context, ticker string, limit int) ([]Note, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT ts, ticker, score, critique FROM learnings WHERE ticker = ? ORDER BY ts DESC LIMIT ?`,
		ticker, limit)
	if err != nil {
		return nil, fmt.Errorf("query learnings: %w", err)
	}
	defer rows.Close()

	var notes []Note
	for rows.Next() {
		var n Note
		if err := rows.Scan(&n.Timestamp, &n.Ticker, &n.Score, &n.Critique); err != nil {
			return nil, fmt.Errorf("scan learning: %w", err)
		}
		notes = append(notes, n)
	}
	return notes, rows.Err()
}
