package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "github.com/mattn/go-sqlite3"
)

// DefaultSQLiteFile is the database file name used when only a directory is given.
const DefaultSQLiteFile = "podbrief.db"

// SQLiteStore keeps flags in a local SQLite database
type SQLiteStore struct {
	db   *sql.DB
	path string
}

// NewSQLiteStore opens (and creates) the database at path. A path without
// a .db extension is treated as a directory.
func NewSQLiteStore(path string) (*SQLiteStore, error) {
	if path == "" {
		path = filepath.Join(".podbrief", DefaultSQLiteFile)
	}
	if filepath.Ext(path) != ".db" {
		path = filepath.Join(path, DefaultSQLiteFile)
	}

	// Ensure data directory exists
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("failed to create data directory: %w", err)
	}

	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	store := &SQLiteStore{db: db, path: path}
	if err := store.initialize(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}

	return store, nil
}

func (s *SQLiteStore) initialize() error {
	flagsTable := `
	CREATE TABLE IF NOT EXISTS flags (
		key TEXT PRIMARY KEY,
		value TEXT NOT NULL,
		updated_at DATETIME
	);`

	if _, err := s.db.Exec(flagsTable); err != nil {
		return fmt.Errorf("failed to create table: %w", err)
	}
	return nil
}

// Path returns the database file location.
func (s *SQLiteStore) Path() string {
	return s.path
}

// Close closes the database connection
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func (s *SQLiteStore) Get(ctx context.Context, key string) ([]string, error) {
	var raw string
	err := s.db.QueryRowContext(ctx, `SELECT value FROM flags WHERE key = ?`, key).Scan(&raw)
	if errors.Is(err, sql.ErrNoRows) {
		return []string{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read flag %s: %w", key, err)
	}

	var values []string
	if err := json.Unmarshal([]byte(raw), &values); err != nil {
		return nil, fmt.Errorf("failed to decode flag %s: %w", key, err)
	}
	return values, nil
}

func (s *SQLiteStore) Set(ctx context.Context, key string, values []string) error {
	if values == nil {
		values = []string{}
	}
	raw, err := json.Marshal(values)
	if err != nil {
		return fmt.Errorf("failed to encode flag %s: %w", key, err)
	}

	query := `
	INSERT OR REPLACE INTO flags (key, value, updated_at)
	VALUES (?, ?, ?)`

	if _, err := s.db.ExecContext(ctx, query, key, string(raw), time.Now().UTC()); err != nil {
		return fmt.Errorf("failed to write flag %s: %w", key, err)
	}
	return nil
}

func (s *SQLiteStore) Delete(ctx context.Context, key string) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM flags WHERE key = ?`, key); err != nil {
		return fmt.Errorf("failed to delete flag %s: %w", key, err)
	}
	return nil
}
