//go:build integration

package dbtest

import (
	"context"
	"testing"

	"intentions/internal/platform/config"
	"intentions/internal/platform/database"
	"intentions/internal/platform/sqlstore"
	"intentions/pkg/testutil/containers"
)

// Postgres starts a PostgreSQL container and returns a migrated database.
func Postgres(t *testing.T) *sqlstore.DB {
	t.Helper()
	pg := containers.NewPostgresContainer(t)
	db, err := database.Open(context.Background(), config.Storage{
		Driver: config.DriverPostgres,
		DSN:    pg.DSN,
	})
	if err != nil {
		t.Fatalf("open postgres: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })
	return db
}
