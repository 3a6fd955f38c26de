package store

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"intentions/internal/intents/models"
	"intentions/internal/platform/database/dbtest"
	"intentions/internal/platform/entity"
	"intentions/pkg/platform/sentinel"
	"intentions/pkg/requestcontext"
)

type intentStore interface {
	List(ctx context.Context) ([]*models.Intent, error)
	FindByID(ctx context.Context, id int64) (*models.Intent, error)
	Create(ctx context.Context, i *models.Intent) (*models.Intent, error)
	Update(ctx context.Context, id int64, i *models.Intent) (*models.Intent, error)
	Delete(ctx context.Context, id int64) (bool, error)
	Facts() entity.Children[*models.Fact]
}

var (
	_ intentStore = (*InMemory)(nil)
	_ intentStore = (*SQL)(nil)
)

type StoreSuite struct {
	suite.Suite
	newStore func(t *testing.T) intentStore
	store    intentStore
	ctx      context.Context
	base     time.Time
}

func TestInMemoryStore(t *testing.T) {
	suite.Run(t, &StoreSuite{newStore: func(*testing.T) intentStore { return NewInMemory() }})
}

func TestSQLiteStore(t *testing.T) {
	suite.Run(t, &StoreSuite{newStore: func(t *testing.T) intentStore { return NewSQL(dbtest.SQLite(t)) }})
}

func (s *StoreSuite) SetupTest() {
	s.store = s.newStore(s.T())
	s.base = time.Date(2025, 4, 1, 8, 0, 0, 0, time.UTC)
	s.ctx = requestcontext.WithTime(context.Background(), s.base)
}

func (s *StoreSuite) intent(name string) *models.Intent {
	draft, err := models.NewIntent(name, "describe "+name, "json", nil, nil, nil, s.base)
	s.Require().NoError(err)
	created, err := s.store.Create(s.ctx, draft)
	s.Require().NoError(err)
	return created
}

func (s *StoreSuite) fact(intentID int64, value string) *models.Fact {
	draft, err := models.NewFact(value, s.base)
	s.Require().NoError(err)
	created, err := s.store.Facts().Add(s.ctx, intentID, draft)
	s.Require().NoError(err)
	return created
}

func (s *StoreSuite) TestFindPopulatesFacts() {
	i := s.intent("summarize")
	s.Empty(i.Facts)
	f1 := s.fact(i.ID, "documents are academic")
	f2 := s.fact(i.ID, "readers are students")
	other := s.intent("translate")
	s.fact(other.ID, "target is French")

	found, err := s.store.FindByID(s.ctx, i.ID)
	s.Require().NoError(err)
	s.Require().Len(found.Facts, 2)
	s.Equal(f1.ID, found.Facts[0].ID)
	s.Equal(f2.ID, found.Facts[1].ID)
	s.Equal(i.ID, found.Facts[0].IntentID)

	all, err := s.store.List(s.ctx)
	s.Require().NoError(err)
	s.Require().Len(all, 2)
	s.Len(all[0].Facts, 2)
	s.Len(all[1].Facts, 1)
}

func (s *StoreSuite) TestAddFactToMissingIntent() {
	draft, err := models.NewFact("orphan", s.base)
	s.Require().NoError(err)

	_, err = s.store.Facts().Add(s.ctx, 999, draft)
	s.ErrorIs(err, sentinel.ErrParentNotFound)

	facts, err := s.store.Facts().ListByParent(s.ctx, 999)
	s.Require().NoError(err)
	s.Empty(facts)
}

func (s *StoreSuite) TestFactScopedByIntent() {
	a := s.intent("a")
	b := s.intent("b")
	f := s.fact(a.ID, "belongs to a")

	_, err := s.store.Facts().FindByID(s.ctx, b.ID, f.ID)
	s.ErrorIs(err, sentinel.ErrNotFound)

	removed, err := s.store.Facts().Remove(s.ctx, b.ID, f.ID)
	s.Require().NoError(err)
	s.False(removed)

	removed, err = s.store.Facts().Remove(s.ctx, a.ID, f.ID)
	s.Require().NoError(err)
	s.True(removed)
}

func (s *StoreSuite) TestUpdateFactPreservesCreatedAt() {
	i := s.intent("a")
	f := s.fact(i.ID, "old")
	later := s.base.Add(time.Minute)
	ctx := requestcontext.WithTime(s.ctx, later)

	draft, err := models.NewFact("new", later)
	s.Require().NoError(err)
	updated, err := s.store.Facts().Update(ctx, i.ID, f.ID, draft)
	s.Require().NoError(err)
	s.Equal("new", updated.Value)
	s.Equal(i.ID, updated.IntentID)
	s.True(updated.CreatedAt.Equal(s.base))
	s.True(updated.UpdatedAt.Equal(later))
}

func (s *StoreSuite) TestUpdateKeepsFacts() {
	i := s.intent("a")
	s.fact(i.ID, "kept")
	next, err := i.With(models.FieldName, strPtr("renamed"))
	s.Require().NoError(err)

	updated, err := s.store.Update(s.ctx, i.ID, next)
	s.Require().NoError(err)
	s.Equal("renamed", updated.Name)
	s.Len(updated.Facts, 1)

	_, err = s.store.Update(s.ctx, 404, next)
	s.ErrorIs(err, sentinel.ErrNotFound)
}

func (s *StoreSuite) TestDeleteCascades() {
	i := s.intent("a")
	f := s.fact(i.ID, "gone with the intent")
	survivor := s.intent("b")
	kept := s.fact(survivor.ID, "stays")

	deleted, err := s.store.Delete(s.ctx, i.ID)
	s.Require().NoError(err)
	s.True(deleted)

	_, err = s.store.FindByID(s.ctx, i.ID)
	s.ErrorIs(err, sentinel.ErrNotFound)
	_, err = s.store.Facts().FindByID(s.ctx, i.ID, f.ID)
	s.ErrorIs(err, sentinel.ErrNotFound)
	_, err = s.store.Facts().FindByID(s.ctx, survivor.ID, kept.ID)
	s.NoError(err)

	deleted, err = s.store.Delete(s.ctx, i.ID)
	s.Require().NoError(err)
	s.False(deleted)

	next := s.intent("c")
	s.Greater(next.ID, survivor.ID)
	nextFact := s.fact(next.ID, "fresh")
	s.Greater(nextFact.ID, kept.ID)
}

func strPtr(v string) *string { return &v }
