package sqlstore

import (
	"context"

	"intentions/internal/platform/entity"
	"intentions/pkg/platform/sentinel"
)

// Prober reports whether a parent record exists.
type Prober interface {
	Exists(ctx context.Context, id int64) (bool, error)
}

// ChildTable is a Table of owned records implementing entity.Children.
// ownerColumn must be one of the mapping's Columns.
type ChildTable[T entity.Child[T]] struct {
	*Table[T]
	ownerColumn string
	parent      Prober
}

// NewChildTable builds a child table whose owner lives in parent.
func NewChildTable[T entity.Child[T]](db *DB, m Mapping[T], ownerColumn string, parent Prober) *ChildTable[T] {
	return &ChildTable[T]{Table: NewTable(db, m), ownerColumn: ownerColumn, parent: parent}
}

// OwnerColumn returns the owning foreign key column.
func (c *ChildTable[T]) OwnerColumn() string { return c.ownerColumn }

// Add inserts draft under parentID inside a transaction. A missing parent is
// sentinel.ErrParentNotFound.
func (c *ChildTable[T]) Add(ctx context.Context, parentID int64, draft T) (T, error) {
	var out T
	err := c.db.RunInTx(ctx, func(ctx context.Context) error {
		ok, err := c.parent.Exists(ctx, parentID)
		if err != nil {
			return err
		}
		if !ok {
			return sentinel.ErrParentNotFound
		}
		row := draft.Clone()
		row.SetOwnerID(parentID)
		out, err = c.Insert(ctx, row)
		return err
	})
	return out, err
}

// FindByID returns the record only when parentID owns it.
func (c *ChildTable[T]) FindByID(ctx context.Context, parentID, id int64) (T, error) {
	rows, err := c.Select(ctx, "id = ? AND "+c.ownerColumn+" = ?", id, parentID)
	if err != nil {
		var zero T
		return zero, err
	}
	if len(rows) == 0 {
		var zero T
		return zero, sentinel.ErrNotFound
	}
	return rows[0], nil
}

// ListByParent returns parentID's records in id order.
func (c *ChildTable[T]) ListByParent(ctx context.Context, parentID int64) ([]T, error) {
	return c.Select(ctx, c.ownerColumn+" = ?", parentID)
}

// Update replaces a record owned by parentID, or returns
// sentinel.ErrNotFound and the zero value.
func (c *ChildTable[T]) Update(ctx context.Context, parentID, id int64, draft T) (T, error) {
	var out T
	err := c.db.RunInTx(ctx, func(ctx context.Context) error {
		if _, err := c.FindByID(ctx, parentID, id); err != nil {
			return err
		}
		row := draft.Clone()
		row.SetOwnerID(parentID)
		var err error
		out, err = c.Replace(ctx, id, row)
		return err
	})
	if err != nil {
		var zero T
		return zero, err
	}
	return out, nil
}

// Remove reports whether a record owned by parentID was deleted.
func (c *ChildTable[T]) Remove(ctx context.Context, parentID, id int64) (bool, error) {
	n, err := c.DeleteWhere(ctx, "id = ? AND "+c.ownerColumn+" = ?", id, parentID)
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// RemoveByParent deletes every record owned by parentID.
func (c *ChildTable[T]) RemoveByParent(ctx context.Context, parentID int64) (int64, error) {
	return c.DeleteWhere(ctx, c.ownerColumn+" = ?", parentID)
}
