// Package entity defines the contract shared by every persisted record: a
// family-unique integer id plus creation and modification timestamps, and the
// generic collection interface for records owned by a parent.
package entity

import (
	"context"
	"time"
)

// Meta is embedded by every entity. ID is zero until the entity is persisted.
type Meta struct {
	ID        int64     `json:"id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Metadata exposes the embedded Meta so generic stores can assign ids and timestamps.
func (m *Meta) Metadata() *Meta { return m }

// Persisted reports whether an id has been assigned.
func (m Meta) Persisted() bool { return m.ID != 0 }

// Entity is implemented by pointer types embedding Meta.
type Entity[T any] interface {
	Metadata() *Meta
	Clone() T
}

// Child is an entity with an owning foreign key to a parent in another family.
type Child[T any] interface {
	Entity[T]
	OwnerID() int64
	SetOwnerID(id int64)
}

// Children is the collection of records of one child type, scoped by owner.
// Add on a missing owner fails with sentinel.ErrParentNotFound; lookups of a
// child that is absent or owned by someone else fail with sentinel.ErrNotFound.
type Children[T any] interface {
	Add(ctx context.Context, parentID int64, draft T) (T, error)
	FindByID(ctx context.Context, parentID, id int64) (T, error)
	ListByParent(ctx context.Context, parentID int64) ([]T, error)
	Update(ctx context.Context, parentID, id int64, draft T) (T, error)
	Remove(ctx context.Context, parentID, id int64) (bool, error)
}

// NewMeta returns the metadata of a freshly constructed, unpersisted entity.
func NewMeta(now time.Time) Meta {
	t := Stamp(now)
	return Meta{CreatedAt: t, UpdatedAt: t}
}

// Stamp normalises t to UTC with microsecond precision so that values survive
// a round trip through any supported backend unchanged.
func Stamp(t time.Time) time.Time {
	return t.UTC().Truncate(time.Microsecond)
}

// Carry prepares draft to replace stored: the id and creation time are taken
// from stored and the modification time becomes now, never moving backwards.
func Carry(stored, draft *Meta, now time.Time) {
	draft.ID = stored.ID
	draft.CreatedAt = stored.CreatedAt
	updated := Stamp(now)
	if updated.Before(stored.UpdatedAt) {
		updated = stored.UpdatedAt
	}
	draft.UpdatedAt = updated
}
