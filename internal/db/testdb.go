package db

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/jmoiron/sqlx"
)

// NewTestDB creates a fresh migrated SQLite database in a temporary directory.
func NewTestDB(t *testing.T) *sqlx.DB {
	t.Helper()

	db, err := Open(filepath.Join(t.TempDir(), "test.sqlite3"))
	if err != nil {
		t.Fatalf("opening test database: %v", err)
	}

	if err := Migrate(context.Background(), db); err != nil {
		db.Close()
		t.Fatalf("migrating test database: %v", err)
	}

	t.Cleanup(func() { db.Close() })

	return db
}

// NewTestPartitions returns a partition pool rooted in a temporary directory.
func NewTestPartitions(t *testing.T) *Partitions {
	t.Helper()

	p := NewPartitions(t.TempDir())
	t.Cleanup(func() { p.Close() })
	return p
}
