package memstore

import (
	"context"
	"sync"

	"intentions/internal/platform/entity"
	"intentions/pkg/platform/sentinel"
	"intentions/pkg/requestcontext"
)

// ChildTable is a Table of owned records implementing entity.Children. It
// locks the owning store's mutex; parentExists is called with that mutex held
// and must not lock it again.
type ChildTable[T entity.Child[T]] struct {
	mu           *sync.RWMutex
	rows         *Table[T]
	parentExists func(id int64) bool
}

// NewChildTable returns a child table guarded by mu.
func NewChildTable[T entity.Child[T]](mu *sync.RWMutex, parentExists func(id int64) bool) *ChildTable[T] {
	return &ChildTable[T]{mu: mu, rows: NewTable[T](), parentExists: parentExists}
}

// Add stores a copy of draft under parentID. A missing parent is
// sentinel.ErrParentNotFound.
func (c *ChildTable[T]) Add(_ context.Context, parentID int64, draft T) (T, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.AddLocked(parentID, draft)
}

// AddLocked is Add for callers already holding the mutex.
func (c *ChildTable[T]) AddLocked(parentID int64, draft T) (T, error) {
	if !c.parentExists(parentID) {
		var zero T
		return zero, sentinel.ErrParentNotFound
	}
	row := draft.Clone()
	row.SetOwnerID(parentID)
	return c.rows.Insert(row), nil
}

// FindByID returns the record only when parentID owns it.
func (c *ChildTable[T]) FindByID(_ context.Context, parentID, id int64) (T, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.findLocked(parentID, id)
}

func (c *ChildTable[T]) findLocked(parentID, id int64) (T, error) {
	row, ok := c.rows.Get(id)
	if !ok || row.OwnerID() != parentID {
		var zero T
		return zero, sentinel.ErrNotFound
	}
	return row, nil
}

// ListByParent returns parentID's records in creation order.
func (c *ChildTable[T]) ListByParent(_ context.Context, parentID int64) ([]T, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.ListLocked(parentID), nil
}

// ListLocked is ListByParent for callers already holding the mutex.
func (c *ChildTable[T]) ListLocked(parentID int64) []T {
	return c.rows.Filter(func(row T) bool { return row.OwnerID() == parentID })
}

// Update replaces a record owned by parentID, or returns
// sentinel.ErrNotFound and the zero value.
func (c *ChildTable[T]) Update(ctx context.Context, parentID, id int64, draft T) (T, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, err := c.findLocked(parentID, id); err != nil {
		var zero T
		return zero, err
	}
	row := draft.Clone()
	row.SetOwnerID(parentID)
	updated, _ := c.rows.Replace(id, row, requestcontext.Now(ctx))
	return updated, nil
}

// Remove reports whether a record owned by parentID was deleted.
func (c *ChildTable[T]) Remove(_ context.Context, parentID, id int64) (bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, err := c.findLocked(parentID, id); err != nil {
		return false, nil
	}
	return c.rows.Remove(id), nil
}

// Get returns a record by id regardless of owner. The caller holds the mutex.
func (c *ChildTable[T]) Get(id int64) (T, bool) {
	return c.rows.Get(id)
}

// RemoveByParentLocked deletes every record owned by parentID and returns the
// removed ids. The caller holds the mutex.
func (c *ChildTable[T]) RemoveByParentLocked(parentID int64) []int64 {
	return c.rows.RemoveWhere(func(row T) bool { return row.OwnerID() == parentID })
}

// RemoveByParentsLocked deletes every record owned by any of parentIDs.
func (c *ChildTable[T]) RemoveByParentsLocked(parentIDs []int64) []int64 {
	owners := make(map[int64]struct{}, len(parentIDs))
	for _, id := range parentIDs {
		owners[id] = struct{}{}
	}
	return c.rows.RemoveWhere(func(row T) bool {
		_, ok := owners[row.OwnerID()]
		return ok
	})
}

// EachLocked calls fn on every stored record in place. The caller holds the
// mutex.
func (c *ChildTable[T]) EachLocked(fn func(T)) {
	c.rows.Each(fn)
}

// HasLocked reports whether parentID owns the record with the given id. The
// caller holds the mutex.
func (c *ChildTable[T]) HasLocked(parentID, id int64) bool {
	_, err := c.findLocked(parentID, id)
	return err == nil
}

// RemoveLocked is Remove for callers already holding the mutex.
func (c *ChildTable[T]) RemoveLocked(parentID, id int64) bool {
	if !c.HasLocked(parentID, id) {
		return false
	}
	return c.rows.Remove(id)
}

// MaxLocked returns the largest value of key among the records owned by
// parentID, or zero when it owns none. The caller holds the mutex.
func (c *ChildTable[T]) MaxLocked(parentID int64, key func(T) int) int {
	top := 0
	for _, row := range c.ListLocked(parentID) {
		if v := key(row); v > top {
			top = v
		}
	}
	return top
}
