// Package database opens the relational backends and applies the schema.
package database

import (
	"context"
	"database/sql"
	"embed"
	"fmt"
	"strings"
	"time"

	_ "github.com/lib/pq"
	_ "modernc.org/sqlite"

	"intentions/internal/platform/config"
	"intentions/internal/platform/sqlstore"
)

//go:embed migrations/*.sql
var migrations embed.FS

// Open connects to the configured SQL backend, verifies the connection and
// applies the schema.
func Open(ctx context.Context, cfg config.Storage) (*sqlstore.DB, error) {
	var (
		conn    *sql.DB
		dialect sqlstore.Dialect
		err     error
	)
	switch cfg.Driver {
	case config.DriverPostgres:
		dialect = sqlstore.Postgres
		conn, err = sql.Open("postgres", cfg.DSN)
		if err == nil {
			conn.SetMaxOpenConns(20)
			conn.SetMaxIdleConns(5)
			conn.SetConnMaxLifetime(30 * time.Minute)
		}
	case config.DriverSQLite:
		dialect = sqlstore.SQLite
		conn, err = sql.Open("sqlite", sqliteDSN(cfg.DSN))
		if err == nil {
			// SQLite allows one writer at a time.
			conn.SetMaxOpenConns(1)
		}
	default:
		return nil, fmt.Errorf("database: unsupported driver %q", cfg.Driver)
	}
	if err != nil {
		return nil, fmt.Errorf("database: open %s: %w", cfg.Driver, err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := conn.PingContext(pingCtx); err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("database: ping %s: %w", cfg.Driver, err)
	}

	db := sqlstore.New(conn, dialect)
	if err := Migrate(ctx, db); err != nil {
		_ = conn.Close()
		return nil, err
	}
	return db, nil
}

// Migrate applies the schema for db's dialect. Statements are idempotent.
func Migrate(ctx context.Context, db *sqlstore.DB) error {
	raw, err := migrations.ReadFile("migrations/" + string(db.Dialect()) + ".sql")
	if err != nil {
		return fmt.Errorf("database: read schema: %w", err)
	}
	if _, err := db.Conn().ExecContext(ctx, string(raw)); err != nil {
		return fmt.Errorf("database: migrate: %w", err)
	}
	return nil
}

func sqliteDSN(dsn string) string {
	pragmas := []string{
		"_pragma=foreign_keys(1)",
		"_pragma=busy_timeout(5000)",
		"_pragma=journal_mode(WAL)",
		"_time_format=sqlite",
	}
	sep := "?"
	if strings.Contains(dsn, "?") {
		sep = "&"
	}
	return dsn + sep + strings.Join(pragmas, "&")
}
