// Package store persists small named string lists, such as the set of
// meetings that have already been processed.
package store

import (
	"context"
	"fmt"
	"time"
)

// FlagStore is a key/value store whose values are string lists.
// Get on a missing key returns an empty list and no error.
type FlagStore interface {
	Get(ctx context.Context, key string) ([]string, error)
	Set(ctx context.Context, key string, values []string) error
	Delete(ctx context.Context, key string) error
	Close() error
}

// Driver names accepted by Open.
const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
	DriverRedis    = "redis"
)

// Options selects and configures a FlagStore backend.
type Options struct {
	Driver        string
	SQLitePath    string
	PostgresDSN   string
	RedisAddr     string
	RedisPassword string
	RedisDB       int
}

// Open connects to the configured backend.
func Open(ctx context.Context, opts Options) (FlagStore, error) {
	switch opts.Driver {
	case "", DriverSQLite:
		return NewSQLiteStore(opts.SQLitePath)
	case DriverPostgres:
		return NewPostgresStore(ctx, opts.PostgresDSN)
	case DriverRedis:
		return NewRedisStore(ctx, opts.RedisAddr, opts.RedisPassword, opts.RedisDB)
	default:
		return nil, fmt.Errorf("unsupported store driver: %s", opts.Driver)
	}
}

const pingTimeout = 5 * time.Second
