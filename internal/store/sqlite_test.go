package store

import (
	"context"
	"os"
	"path/filepath"
	"testing"
)

func TestNewSQLiteStore(t *testing.T) {
	tmpDir := t.TempDir()

	store, err := NewSQLiteStore(tmpDir)
	if err != nil {
		t.Fatalf("NewSQLiteStore failed: %v", err)
	}
	defer func() { _ = store.Close() }()

	dbPath := filepath.Join(tmpDir, DefaultSQLiteFile)
	if store.Path() != dbPath {
		t.Errorf("Expected path %s, got %s", dbPath, store.Path())
	}
	if _, err := os.Stat(dbPath); os.IsNotExist(err) {
		t.Error("Database file should be created")
	}
}

func TestNewSQLiteStore_ExplicitFile(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "nested", "flags.db")

	store, err := NewSQLiteStore(dbPath)
	if err != nil {
		t.Fatalf("NewSQLiteStore failed: %v", err)
	}
	defer func() { _ = store.Close() }()

	if store.Path() != dbPath {
		t.Errorf("Expected path %s, got %s", dbPath, store.Path())
	}
}

func TestNewSQLiteStore_InvalidDirectory(t *testing.T) {
	tmpDir := t.TempDir()
	invalidPath := filepath.Join(tmpDir, "file.txt")
	_ = os.WriteFile(invalidPath, []byte("test"), 0644)

	_, err := NewSQLiteStore(invalidPath)
	if err == nil {
		t.Error("Expected error when creating store under a regular file")
	}
}

func TestSQLiteStore_GetSetDelete(t *testing.T) {
	ctx := context.Background()
	store, err := NewSQLiteStore(t.TempDir())
	if err != nil {
		t.Fatalf("NewSQLiteStore failed: %v", err)
	}
	defer func() { _ = store.Close() }()

	values, err := store.Get(ctx, "missing")
	if err != nil {
		t.Fatalf("Get on missing key failed: %v", err)
	}
	if len(values) != 0 {
		t.Errorf("Expected empty list, got %v", values)
	}

	if err := store.Set(ctx, "key", []string{"a", "b"}); err != nil {
		t.Fatalf("Set failed: %v", err)
	}
	if err := store.Set(ctx, "key", []string{"a", "b", "c"}); err != nil {
		t.Fatalf("Overwrite failed: %v", err)
	}

	values, err = store.Get(ctx, "key")
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if len(values) != 3 || values[0] != "a" || values[2] != "c" {
		t.Errorf("Expected [a b c], got %v", values)
	}

	if err := store.Delete(ctx, "key"); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}
	values, _ = store.Get(ctx, "key")
	if len(values) != 0 {
		t.Errorf("Expected empty list after delete, got %v", values)
	}
}

func TestSQLiteStore_PersistsAcrossReopen(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()

	first, err := NewSQLiteStore(dir)
	if err != nil {
		t.Fatalf("NewSQLiteStore failed: %v", err)
	}
	if err := first.Set(ctx, DefaultProcessedKey, []string{"evt-1"}); err != nil {
		t.Fatalf("Set failed: %v", err)
	}
	_ = first.Close()

	second, err := NewSQLiteStore(dir)
	if err != nil {
		t.Fatalf("Reopen failed: %v", err)
	}
	defer func() { _ = second.Close() }()

	values, err := second.Get(ctx, DefaultProcessedKey)
	if err != nil || len(values) != 1 || values[0] != "evt-1" {
		t.Errorf("Expected [evt-1] after reopen, got %v (err=%v)", values, err)
	}
}

func TestOpen_UnsupportedDriver(t *testing.T) {
	if _, err := Open(context.Background(), Options{Driver: "etcd"}); err == nil {
		t.Error("Expected error for unsupported driver")
	}
}

func TestOpen_DefaultsToSQLite(t *testing.T) {
	store, err := Open(context.Background(), Options{SQLitePath: t.TempDir()})
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	defer func() { _ = store.Close() }()

	if _, ok := store.(*SQLiteStore); !ok {
		t.Errorf("Expected *SQLiteStore, got %T", store)
	}
}
