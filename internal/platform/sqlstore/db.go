// Package sqlstore provides generic relational tables for entity families on
// top of database/sql. Queries are written with ? placeholders and rebound for
// the active dialect.
package sqlstore

import (
	"context"
	"database/sql"
	"fmt"
	"strconv"
	"strings"
)

// Dialect selects placeholder syntax and DDL flavour.
type Dialect string

const (
	Postgres Dialect = "postgres"
	SQLite   Dialect = "sqlite"
)

// DB wraps a connection pool with its dialect.
type DB struct {
	conn    *sql.DB
	dialect Dialect
}

// New wraps conn.
func New(conn *sql.DB, dialect Dialect) *DB {
	return &DB{conn: conn, dialect: dialect}
}

// Conn returns the underlying pool.
func (db *DB) Conn() *sql.DB { return db.conn }

// Dialect returns the active dialect.
func (db *DB) Dialect() Dialect { return db.dialect }

// Close closes the pool.
func (db *DB) Close() error { return db.conn.Close() }

type dbExecutor interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// txKey scopes a context transaction to the DB that opened it.
type txKey struct{ db *DB }

func (db *DB) txFrom(ctx context.Context) (*sql.Tx, bool) {
	tx, ok := ctx.Value(txKey{db}).(*sql.Tx)
	return tx, ok
}

func (db *DB) execer(ctx context.Context) dbExecutor {
	if tx, ok := db.txFrom(ctx); ok {
		return tx
	}
	return db.conn
}

// Rebind rewrites ? placeholders into $n for PostgreSQL.
func (db *DB) Rebind(query string) string {
	if db.dialect != Postgres {
		return query
	}
	var b strings.Builder
	b.Grow(len(query) + 8)
	n := 0
	for _, r := range query {
		if r == '?' {
			n++
			b.WriteByte('$')
			b.WriteString(strconv.Itoa(n))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

// Exec runs a statement on the transaction in ctx, or the pool.
func (db *DB) Exec(ctx context.Context, query string, args ...any) (sql.Result, error) {
	return db.execer(ctx).ExecContext(ctx, db.Rebind(query), args...)
}

// Query runs a query on the transaction in ctx, or the pool.
func (db *DB) Query(ctx context.Context, query string, args ...any) (*sql.Rows, error) {
	return db.execer(ctx).QueryContext(ctx, db.Rebind(query), args...)
}

// QueryRow runs a single-row query on the transaction in ctx, or the pool.
func (db *DB) QueryRow(ctx context.Context, query string, args ...any) *sql.Row {
	return db.execer(ctx).QueryRowContext(ctx, db.Rebind(query), args...)
}

// RunInTx runs fn inside a transaction carried by the context passed to fn.
// When ctx already carries a transaction fn joins it.
func (db *DB) RunInTx(ctx context.Context, fn func(ctx context.Context) error) (err error) {
	if _, ok := db.txFrom(ctx); ok {
		return fn(ctx)
	}
	tx, err := db.conn.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer func() {
		if p := recover(); p != nil {
			_ = tx.Rollback()
			panic(p)
		}
		if err != nil {
			_ = tx.Rollback()
		}
	}()
	if err = fn(context.WithValue(ctx, txKey{db}, tx)); err != nil {
		return err
	}
	if err = tx.Commit(); err != nil {
		return fmt.Errorf("commit tx: %w", err)
	}
	return nil
}
