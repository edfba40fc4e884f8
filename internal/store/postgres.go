package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/lib/pq"
)

// PostgresStore keeps flags in a shared PostgreSQL table
type PostgresStore struct {
	db *sql.DB
}

// NewPostgresStore connects with dsn and ensures the flags table exists.
func NewPostgresStore(ctx context.Context, dsn string) (*PostgresStore, error) {
	if dsn == "" {
		return nil, errors.New("postgres dsn is required")
	}

	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	db.SetMaxOpenConns(5)
	db.SetMaxIdleConns(2)
	db.SetConnMaxLifetime(5 * time.Minute)

	pingCtx, cancel := context.WithTimeout(ctx, pingTimeout)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	const flagsTable = `
	CREATE TABLE IF NOT EXISTS podbrief_flags (
		key TEXT PRIMARY KEY,
		value TEXT[] NOT NULL,
		updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`
	if _, err := db.ExecContext(ctx, flagsTable); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create table: %w", err)
	}

	return &PostgresStore{db: db}, nil
}

func (p *PostgresStore) Close() error {
	return p.db.Close()
}

func (p *PostgresStore) Get(ctx context.Context, key string) ([]string, error) {
	var values []string
	err := p.db.QueryRowContext(ctx, `SELECT value FROM podbrief_flags WHERE key = $1`, key).Scan(pq.Array(&values))
	if errors.Is(err, sql.ErrNoRows) {
		return []string{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read flag %s: %w", key, err)
	}
	if values == nil {
		values = []string{}
	}
	return values, nil
}

func (p *PostgresStore) Set(ctx context.Context, key string, values []string) error {
	if values == nil {
		values = []string{}
	}
	query := `
		INSERT INTO podbrief_flags (key, value, updated_at)
		VALUES ($1, $2, NOW())
		ON CONFLICT (key) DO UPDATE SET value = EXCLUDED.value, updated_at = NOW()`

	if _, err := p.db.ExecContext(ctx, query, key, pq.Array(values)); err != nil {
		return fmt.Errorf("failed to write flag %s: %w", key, err)
	}
	return nil
}

func (p *PostgresStore) Delete(ctx context.Context, key string) error {
	if _, err := p.db.ExecContext(ctx, `DELETE FROM podbrief_flags WHERE key = $1`, key); err != nil {
		return fmt.Errorf("failed to delete flag %s: %w", key, err)
	}
	return nil
}
