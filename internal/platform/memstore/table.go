// Package memstore provides generic in-memory tables for entity families.
//
// Tables are not synchronised on their own: a domain store owns one mutex and
// holds it across every table it touches, so cascades run in a single critical
// section.
package memstore

import (
	"slices"
	"time"

	"intentions/internal/platform/entity"
)

// Table holds the records of one family in creation order. Ids come from a
// counter starting at 1 that never goes backwards, so ids are not reused
// after deletion.
type Table[T entity.Entity[T]] struct {
	rows   map[int64]T
	order  []int64
	nextID int64
}

// NewTable returns an empty table.
func NewTable[T entity.Entity[T]]() *Table[T] {
	return &Table[T]{rows: make(map[int64]T), nextID: 1}
}

// Insert assigns the next id to a copy of draft and stores it.
func (t *Table[T]) Insert(draft T) T {
	row := draft.Clone()
	row.Metadata().ID = t.nextID
	t.nextID++
	t.rows[row.Metadata().ID] = row
	t.order = append(t.order, row.Metadata().ID)
	return row.Clone()
}

// Get returns a copy of the record with the given id.
func (t *Table[T]) Get(id int64) (T, bool) {
	row, ok := t.rows[id]
	if !ok {
		var zero T
		return zero, false
	}
	return row.Clone(), true
}

// Has reports whether id is stored.
func (t *Table[T]) Has(id int64) bool {
	_, ok := t.rows[id]
	return ok
}

// All returns copies of every record in creation order.
func (t *Table[T]) All() []T {
	return t.Filter(nil)
}

// Filter returns copies of the records matching keep, in creation order.
// A nil keep matches everything.
func (t *Table[T]) Filter(keep func(T) bool) []T {
	out := make([]T, 0, len(t.order))
	for _, id := range t.order {
		row := t.rows[id]
		if keep == nil || keep(row) {
			out = append(out, row.Clone())
		}
	}
	return out
}

// Replace stores draft in place of the record with the given id, keeping the
// stored id and creation time.
func (t *Table[T]) Replace(id int64, draft T, now time.Time) (T, bool) {
	stored, ok := t.rows[id]
	if !ok {
		var zero T
		return zero, false
	}
	row := draft.Clone()
	entity.Carry(stored.Metadata(), row.Metadata(), now)
	t.rows[id] = row
	return row.Clone(), true
}

// Remove deletes the record with the given id.
func (t *Table[T]) Remove(id int64) bool {
	if _, ok := t.rows[id]; !ok {
		return false
	}
	delete(t.rows, id)
	t.order = slices.DeleteFunc(t.order, func(v int64) bool { return v == id })
	return true
}

// RemoveWhere deletes every record matching drop and returns their ids.
func (t *Table[T]) RemoveWhere(drop func(T) bool) []int64 {
	var removed []int64
	t.order = slices.DeleteFunc(t.order, func(id int64) bool {
		if drop(t.rows[id]) {
			removed = append(removed, id)
			delete(t.rows, id)
			return true
		}
		return false
	})
	return removed
}

// Len returns the number of stored records.
func (t *Table[T]) Len() int {
	return len(t.order)
}

// Each calls fn on every stored record in place. Timestamps are untouched; it
// exists for rewriting references, not for updates.
func (t *Table[T]) Each(fn func(T)) {
	for _, id := range t.order {
		fn(t.rows[id])
	}
}
