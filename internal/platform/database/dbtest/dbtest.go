// Package dbtest opens migrated databases for store tests.
package dbtest

import (
	"context"
	"path/filepath"
	"testing"

	"intentions/internal/platform/config"
	"intentions/internal/platform/database"
	"intentions/internal/platform/sqlstore"
)

// SQLite returns a migrated SQLite database in a temporary directory.
func SQLite(t testing.TB) *sqlstore.DB {
	t.Helper()
	db, err := database.Open(context.Background(), config.Storage{
		Driver: config.DriverSQLite,
		DSN:    filepath.Join(t.TempDir(), "intentions.db"),
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })
	return db
}
