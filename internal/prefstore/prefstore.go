// Package prefstore persists user preferences in a small SQLite key-value
// table. The only key the application currently writes is KeyBook, the id of
// the last book a note was saved into.
package prefstore

import (
	"database/sql"
	"fmt"

	_ "github.com/mattn/go-sqlite3"
)

// KeyBook stores the id of the last used book.
const KeyBook = "book"

const schemaSQL = `
CREATE TABLE IF NOT EXISTS preferences (
	key        TEXT PRIMARY KEY,
	value      TEXT NOT NULL DEFAULT '',
	updated_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);
`

// Store wraps a sql.DB with preference operations.
type Store struct {
	conn *sql.DB
}

// Open opens (or creates) the SQLite database and applies the schema.
func Open(dsn string) (*Store, error) {
	conn, err := sql.Open("sqlite3", dsn+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("prefstore: open db: %w", err)
	}
	if err := conn.Ping(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("prefstore: ping: %w", err)
	}
	if _, err := conn.Exec(schemaSQL); err != nil {
		conn.Close()
		return nil, fmt.Errorf("prefstore: apply schema: %w", err)
	}
	return &Store{conn: conn}, nil
}

// Get returns the stored value for key, or empty string if unset.
func (s *Store) Get(key string) (string, error) {
	var v string
	err := s.conn.QueryRow(`SELECT value FROM preferences WHERE key = ?`, key).Scan(&v)
	if err == sql.ErrNoRows {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("prefstore: get %q: %w", key, err)
	}
	return v, nil
}

// Set inserts or replaces the value for key.
func (s *Store) Set(key, value string) error {
	_, err := s.conn.Exec(`
		INSERT INTO preferences (key, value, updated_at)
		VALUES (?, ?, CURRENT_TIMESTAMP)
		ON CONFLICT(key) DO UPDATE SET
			value      = excluded.value,
			updated_at = excluded.updated_at
	`, key, value)
	if err != nil {
		return fmt.Errorf("prefstore: set %q: %w", key, err)
	}
	return nil
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	return s.conn.Close()
}
