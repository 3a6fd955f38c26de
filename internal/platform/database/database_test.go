package database

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"intentions/internal/platform/config"
	"intentions/internal/platform/sqlstore"
)

func TestOpenSQLiteAppliesSchema(t *testing.T) {
	ctx := context.Background()
	db, err := Open(ctx, config.Storage{
		Driver: config.DriverSQLite,
		DSN:    filepath.Join(t.TempDir(), "intentions.db"),
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	assert.Equal(t, sqlstore.SQLite, db.Dialect())

	for _, table := range []string{"users", "items", "intents", "facts", "v2_intents", "v2_prompts", "v2_outputs", "v2_insights"} {
		var name string
		err := db.Conn().QueryRowContext(ctx,
			"SELECT name FROM sqlite_master WHERE type = 'table' AND name = ?", table).Scan(&name)
		require.NoError(t, err, table)
	}

	// Re-running the schema is harmless.
	require.NoError(t, Migrate(ctx, db))

	var fk int
	require.NoError(t, db.Conn().QueryRowContext(ctx, "PRAGMA foreign_keys").Scan(&fk))
	assert.Equal(t, 1, fk)
}

func TestOpenUnsupportedDriver(t *testing.T) {
	_, err := Open(context.Background(), config.Storage{Driver: "mongo"})
	require.Error(t, err)
}

func TestSQLiteDSN(t *testing.T) {
	assert.Contains(t, sqliteDSN("/tmp/x.db"), "/tmp/x.db?_pragma=foreign_keys(1)")
	assert.Contains(t, sqliteDSN("file:x.db?cache=shared"), "cache=shared&_pragma=foreign_keys(1)")
}
