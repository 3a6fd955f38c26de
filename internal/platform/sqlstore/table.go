package sqlstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"intentions/internal/platform/entity"
	"intentions/pkg/platform/sentinel"
	"intentions/pkg/requestcontext"
)

// Mapping describes how one entity type maps onto a table. Columns lists the
// mutable columns (including any owning foreign key); id, created_at and
// updated_at are handled by the table.
type Mapping[T entity.Entity[T]] struct {
	Table   string
	Columns []string
	// Values returns column values in Columns order.
	Values func(T) []any
	// Targets returns scan destinations in Columns order.
	Targets func(T) []any
	New     func() T
}

// Table is the relational rendition of one entity family. Ids come from the
// database sequence, which never hands out a value twice.
type Table[T entity.Entity[T]] struct {
	db *DB
	m  Mapping[T]

	selectCols string
}

// NewTable builds a table for m.
func NewTable[T entity.Entity[T]](db *DB, m Mapping[T]) *Table[T] {
	cols := append([]string{"id", "created_at", "updated_at"}, m.Columns...)
	return &Table[T]{db: db, m: m, selectCols: strings.Join(cols, ", ")}
}

// Name returns the table name.
func (t *Table[T]) Name() string { return t.m.Table }

func (t *Table[T]) scan(row interface{ Scan(...any) error }) (T, error) {
	e := t.m.New()
	meta := e.Metadata()
	dest := append([]any{&meta.ID, &meta.CreatedAt, &meta.UpdatedAt}, t.m.Targets(e)...)
	if err := row.Scan(dest...); err != nil {
		return e, err
	}
	meta.CreatedAt = meta.CreatedAt.UTC()
	meta.UpdatedAt = meta.UpdatedAt.UTC()
	return e, nil
}

// Insert stores draft and returns the persisted copy with its new id.
func (t *Table[T]) Insert(ctx context.Context, draft T) (T, error) {
	row := draft.Clone()
	meta := row.Metadata()
	cols := append(append([]string{}, t.m.Columns...), "created_at", "updated_at")
	args := append(t.m.Values(row), meta.CreatedAt, meta.UpdatedAt)
	query := fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s) RETURNING id",
		t.m.Table, strings.Join(cols, ", "), placeholders(len(cols)))
	if err := t.db.QueryRow(ctx, query, args...).Scan(&meta.ID); err != nil {
		return row, fmt.Errorf("insert into %s: %w", t.m.Table, err)
	}
	return row, nil
}

// Get returns the record with the given id or sentinel.ErrNotFound.
func (t *Table[T]) Get(ctx context.Context, id int64) (T, error) {
	query := fmt.Sprintf("SELECT %s FROM %s WHERE id = ?", t.selectCols, t.m.Table)
	e, err := t.scan(t.db.QueryRow(ctx, query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return e, sentinel.ErrNotFound
	}
	if err != nil {
		return e, fmt.Errorf("select from %s: %w", t.m.Table, err)
	}
	return e, nil
}

// Exists reports whether a record with the given id is stored.
func (t *Table[T]) Exists(ctx context.Context, id int64) (bool, error) {
	var one int
	query := fmt.Sprintf("SELECT 1 FROM %s WHERE id = ?", t.m.Table)
	err := t.db.QueryRow(ctx, query, id).Scan(&one)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("probe %s: %w", t.m.Table, err)
	}
	return true, nil
}

// List returns every record in creation order.
func (t *Table[T]) List(ctx context.Context) ([]T, error) {
	return t.Select(ctx, "")
}

// Select returns the records matching where (a ? placeholder fragment), in
// creation order. An empty where selects everything.
func (t *Table[T]) Select(ctx context.Context, where string, args ...any) ([]T, error) {
	query := fmt.Sprintf("SELECT %s FROM %s", t.selectCols, t.m.Table)
	if where != "" {
		query += " WHERE " + where
	}
	query += " ORDER BY id"
	rows, err := t.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("select from %s: %w", t.m.Table, err)
	}
	defer rows.Close()

	out := []T{}
	for rows.Next() {
		e, err := t.scan(rows)
		if err != nil {
			return nil, fmt.Errorf("scan %s: %w", t.m.Table, err)
		}
		out = append(out, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate %s: %w", t.m.Table, err)
	}
	return out, nil
}

// Replace overwrites the mutable columns of the record with the given id,
// keeping its creation time. Returns sentinel.ErrNotFound if absent.
func (t *Table[T]) Replace(ctx context.Context, id int64, draft T) (T, error) {
	var out T
	err := t.db.RunInTx(ctx, func(ctx context.Context) error {
		stored, err := t.Get(ctx, id)
		if err != nil {
			return err
		}
		row := draft.Clone()
		meta := row.Metadata()
		entity.Carry(stored.Metadata(), meta, requestcontext.Now(ctx))

		sets := make([]string, 0, len(t.m.Columns)+1)
		for _, c := range t.m.Columns {
			sets = append(sets, c+" = ?")
		}
		sets = append(sets, "updated_at = ?")
		args := append(t.m.Values(row), meta.UpdatedAt, id)
		query := fmt.Sprintf("UPDATE %s SET %s WHERE id = ?", t.m.Table, strings.Join(sets, ", "))
		if _, err := t.db.Exec(ctx, query, args...); err != nil {
			return fmt.Errorf("update %s: %w", t.m.Table, err)
		}
		out = row
		return nil
	})
	return out, err
}

// Delete removes the record with the given id.
func (t *Table[T]) Delete(ctx context.Context, id int64) (bool, error) {
	n, err := t.DeleteWhere(ctx, "id = ?", id)
	return n > 0, err
}

// DeleteWhere removes the records matching where and returns how many went.
func (t *Table[T]) DeleteWhere(ctx context.Context, where string, args ...any) (int64, error) {
	query := fmt.Sprintf("DELETE FROM %s WHERE %s", t.m.Table, where)
	res, err := t.db.Exec(ctx, query, args...)
	if err != nil {
		return 0, fmt.Errorf("delete from %s: %w", t.m.Table, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("delete from %s: %w", t.m.Table, err)
	}
	return n, nil
}

func placeholders(n int) string {
	return strings.TrimSuffix(strings.Repeat("?, ", n), ", ")
}
