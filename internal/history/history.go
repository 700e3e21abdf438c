// Package history stores past search terms in a SQLite database and exposes
// the most recent one as the persisted term slot.
package history

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "modernc.org/sqlite"
)

// ErrClosed is returned by operations on a closed Store.
var ErrClosed = errors.New("history store closed")

const schema = `
CREATE TABLE IF NOT EXISTS searches (
	term        TEXT PRIMARY KEY,
	count       INTEGER NOT NULL DEFAULT 1,
	searched_at INTEGER NOT NULL
);
CREATE INDEX IF NOT EXISTS searches_searched_at ON searches (searched_at DESC);
`

// Entry is one remembered search term.
type Entry struct {
	Term       string    `json:"term"`
	Count      int       `json:"count"`
	SearchedAt time.Time `json:"searchedAt"`
}

// Store is the SQLite-backed search history.
type Store struct {
	db  *sql.DB
	now func() time.Time
}

// Open opens (creating if needed) the history database at path.
// ":memory:" opens a private in-memory database.
func Open(path string) (*Store, error) {
	if path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
			return nil, fmt.Errorf("creating history dir: %w", err)
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("opening history: %w", err)
	}
	// A single connection keeps ":memory:" databases consistent and
	// serializes writers.
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating history schema: %w", err)
	}

	return &Store{db: db, now: time.Now}, nil
}

// Close releases the database.
func (s *Store) Close() error {
	if s.db == nil {
		return ErrClosed
	}
	err := s.db.Close()
	s.db = nil
	return err
}

// SetTerm records a search for term, bumping its count and timestamp.
// Blank terms are ignored.
func (s *Store) SetTerm(ctx context.Context, term string) error {
	if s.db == nil {
		return ErrClosed
	}
	term = strings.TrimSpace(term)
	if term == "" {
		return nil
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO searches (term, count, searched_at) VALUES (?, 1, ?)
		ON CONFLICT(term) DO UPDATE SET
			count = count + 1,
			searched_at = excluded.searched_at
	`, term, s.now().UnixNano())
	if err != nil {
		return fmt.Errorf("saving search %q: %w", term, err)
	}
	return nil
}

// LastTerm returns the most recently searched term, or "" if there is none.
func (s *Store) LastTerm(ctx context.Context) (string, error) {
	entries, err := s.Recent(ctx, 1)
	if err != nil {
		return "", err
	}
	if len(entries) == 0 {
		return "", nil
	}
	return entries[0].Term, nil
}

// Recent returns up to limit terms, newest first.
func (s *Store) Recent(ctx context.Context, limit int) ([]Entry, error) {
	if s.db == nil {
		return nil, ErrClosed
	}
	if limit <= 0 {
		limit = 50
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT term, count, searched_at
		FROM searches
		ORDER BY searched_at DESC
		LIMIT ?
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("loading history: %w", err)
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		var e Entry
		var ts int64
		if err := rows.Scan(&e.Term, &e.Count, &ts); err != nil {
			return nil, fmt.Errorf("reading history: %w", err)
		}
		e.SearchedAt = time.Unix(0, ts)
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// Remove deletes term from the history.
func (s *Store) Remove(ctx context.Context, term string) error {
	if s.db == nil {
		return ErrClosed
	}
	if _, err := s.db.ExecContext(ctx, `DELETE FROM searches WHERE term = ?`, term); err != nil {
		return fmt.Errorf("removing %q: %w", term, err)
	}
	return nil
}

// Clear deletes every entry.
func (s *Store) Clear(ctx context.Context) error {
	if s.db == nil {
		return ErrClosed
	}
	if _, err := s.db.ExecContext(ctx, `DELETE FROM searches`); err != nil {
		return fmt.Errorf("clearing history: %w", err)
	}
	return nil
}

// FormatForDisplay creates display strings for fzf selection from history entries.
func FormatForDisplay(entries []Entry) []string {
	items := make([]string, 0, len(entries))
	for _, e := range entries {
		display := e.Term
		if e.Count > 1 {
			display += fmt.Sprintf(" [%dx]", e.Count)
		}
		display += " · " + e.SearchedAt.Format("2006-01-02 15:04")
		items = append(items, display)
	}
	return items
}
