package sqlstore

import (
	"context"
	"database/sql"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"
	_ "modernc.org/sqlite"

	"intentions/internal/platform/entity"
	"intentions/pkg/platform/sentinel"
	"intentions/pkg/requestcontext"
)

type note struct {
	entity.Meta
	Text string
	Memo *string
}

func (n *note) Clone() *note {
	out := *n
	out.Memo = entity.CloneString(n.Memo)
	return &out
}

type tag struct {
	entity.Meta
	NoteID int64
	Label  string
}

func (t *tag) Clone() *tag {
	out := *t
	return &out
}

func (t *tag) OwnerID() int64      { return t.NoteID }
func (t *tag) SetOwnerID(id int64) { t.NoteID = id }

var _ entity.Children[*tag] = (*ChildTable[*tag])(nil)

const testSchema = `
CREATE TABLE notes (
	id         INTEGER PRIMARY KEY AUTOINCREMENT,
	text       TEXT NOT NULL,
	memo       TEXT,
	created_at TIMESTAMP NOT NULL,
	updated_at TIMESTAMP NOT NULL
);
CREATE TABLE tags (
	id         INTEGER PRIMARY KEY AUTOINCREMENT,
	note_id    INTEGER NOT NULL REFERENCES notes(id) ON DELETE CASCADE,
	label      TEXT NOT NULL,
	created_at TIMESTAMP NOT NULL,
	updated_at TIMESTAMP NOT NULL
);`

type TableSuite struct {
	suite.Suite
	db    *DB
	notes *Table[*note]
	tags  *ChildTable[*tag]
	base  time.Time
}

func TestTableSuite(t *testing.T) {
	suite.Run(t, new(TableSuite))
}

func (s *TableSuite) SetupTest() {
	conn, err := sql.Open("sqlite", filepath.Join(s.T().TempDir(), "test.db")+"?_pragma=foreign_keys(1)")
	s.Require().NoError(err)
	conn.SetMaxOpenConns(1)
	_, err = conn.Exec(testSchema)
	s.Require().NoError(err)
	s.T().Cleanup(func() { _ = conn.Close() })

	s.db = New(conn, SQLite)
	s.notes = NewTable(s.db, Mapping[*note]{
		Table:   "notes",
		Columns: []string{"text", "memo"},
		Values:  func(n *note) []any { return []any{n.Text, n.Memo} },
		Targets: func(n *note) []any { return []any{&n.Text, &n.Memo} },
		New:     func() *note { return &note{} },
	})
	s.tags = NewChildTable(s.db, Mapping[*tag]{
		Table:   "tags",
		Columns: []string{"note_id", "label"},
		Values:  func(t *tag) []any { return []any{t.NoteID, t.Label} },
		Targets: func(t *tag) []any { return []any{&t.NoteID, &t.Label} },
		New:     func() *tag { return &tag{} },
	}, "note_id", s.notes)
	s.base = time.Date(2025, 6, 1, 9, 0, 0, 0, time.UTC)
}

func (s *TableSuite) draft(text string) *note {
	return &note{Meta: entity.NewMeta(s.base), Text: text}
}

func (s *TableSuite) TestRoundTrip() {
	ctx := context.Background()
	memo := "keep"
	d := s.draft("hello")
	d.Memo = &memo

	stored, err := s.notes.Insert(ctx, d)
	s.Require().NoError(err)
	s.Equal(int64(1), stored.ID)

	got, err := s.notes.Get(ctx, stored.ID)
	s.Require().NoError(err)
	s.Equal("hello", got.Text)
	s.Require().NotNil(got.Memo)
	s.Equal("keep", *got.Memo)
	s.True(got.CreatedAt.Equal(s.base))
	s.True(got.UpdatedAt.Equal(s.base))

	bare, err := s.notes.Insert(ctx, s.draft("bare"))
	s.Require().NoError(err)
	got, err = s.notes.Get(ctx, bare.ID)
	s.Require().NoError(err)
	s.Nil(got.Memo)
}

func (s *TableSuite) TestIDsNotReusedAfterDelete() {
	ctx := context.Background()
	_, err := s.notes.Insert(ctx, s.draft("a"))
	s.Require().NoError(err)
	b, err := s.notes.Insert(ctx, s.draft("b"))
	s.Require().NoError(err)

	deleted, err := s.notes.Delete(ctx, b.ID)
	s.Require().NoError(err)
	s.True(deleted)

	c, err := s.notes.Insert(ctx, s.draft("c"))
	s.Require().NoError(err)
	s.Greater(c.ID, b.ID)
}

func (s *TableSuite) TestGetMissing() {
	_, err := s.notes.Get(context.Background(), 404)
	s.ErrorIs(err, sentinel.ErrNotFound)
}

func (s *TableSuite) TestReplacePreservesCreatedAt() {
	stored, err := s.notes.Insert(context.Background(), s.draft("v1"))
	s.Require().NoError(err)

	later := s.base.Add(time.Hour)
	ctx := requestcontext.WithTime(context.Background(), later)
	updated, err := s.notes.Replace(ctx, stored.ID, &note{Meta: entity.NewMeta(later.Add(time.Hour)), Text: "v2"})
	s.Require().NoError(err)
	s.True(updated.CreatedAt.Equal(s.base))
	s.True(updated.UpdatedAt.Equal(later))

	got, err := s.notes.Get(ctx, stored.ID)
	s.Require().NoError(err)
	s.Equal("v2", got.Text)
	s.True(got.CreatedAt.Equal(s.base))

	_, err = s.notes.Replace(ctx, 404, s.draft("x"))
	s.ErrorIs(err, sentinel.ErrNotFound)
}

func (s *TableSuite) TestListOrderAndSelect() {
	ctx := context.Background()
	for _, text := range []string{"one", "two", "three"} {
		_, err := s.notes.Insert(ctx, s.draft(text))
		s.Require().NoError(err)
	}
	all, err := s.notes.List(ctx)
	s.Require().NoError(err)
	s.Len(all, 3)
	s.Equal("one", all[0].Text)
	s.Equal("three", all[2].Text)

	some, err := s.notes.Select(ctx, "text LIKE ?", "t%")
	s.Require().NoError(err)
	s.Len(some, 2)
}

func (s *TableSuite) TestChildren() {
	ctx := context.Background()
	parent, err := s.notes.Insert(ctx, s.draft("parent"))
	s.Require().NoError(err)

	_, err = s.tags.Add(ctx, 999, &tag{Meta: entity.NewMeta(s.base), Label: "orphan"})
	s.ErrorIs(err, sentinel.ErrParentNotFound)

	first, err := s.tags.Add(ctx, parent.ID, &tag{Meta: entity.NewMeta(s.base), Label: "a"})
	s.Require().NoError(err)
	s.Equal(parent.ID, first.NoteID)
	_, err = s.tags.Add(ctx, parent.ID, &tag{Meta: entity.NewMeta(s.base), Label: "b"})
	s.Require().NoError(err)

	list, err := s.tags.ListByParent(ctx, parent.ID)
	s.Require().NoError(err)
	s.Len(list, 2)

	_, err = s.tags.FindByID(ctx, parent.ID+1, first.ID)
	s.ErrorIs(err, sentinel.ErrNotFound)

	updated, err := s.tags.Update(ctx, parent.ID, first.ID, &tag{Meta: entity.NewMeta(s.base), Label: "a2"})
	s.Require().NoError(err)
	s.Equal("a2", updated.Label)

	missed, err := s.tags.Update(ctx, parent.ID+1, first.ID, &tag{Meta: entity.NewMeta(s.base), Label: "stray"})
	s.ErrorIs(err, sentinel.ErrNotFound)
	s.Nil(missed)

	removed, err := s.tags.Remove(ctx, parent.ID, first.ID)
	s.Require().NoError(err)
	s.True(removed)
	removed, err = s.tags.Remove(ctx, parent.ID, first.ID)
	s.Require().NoError(err)
	s.False(removed)

	n, err := s.tags.RemoveByParent(ctx, parent.ID)
	s.Require().NoError(err)
	s.Equal(int64(1), n)
}

func (s *TableSuite) TestRunInTxRollsBack() {
	ctx := context.Background()
	boom := errors.New("boom")
	err := s.db.RunInTx(ctx, func(ctx context.Context) error {
		if _, err := s.notes.Insert(ctx, s.draft("doomed")); err != nil {
			return err
		}
		return boom
	})
	s.ErrorIs(err, boom)

	all, err := s.notes.List(ctx)
	s.Require().NoError(err)
	s.Empty(all)
}

func (s *TableSuite) TestNestedRunInTxJoinsOuter() {
	ctx := context.Background()
	boom := errors.New("boom")
	err := s.db.RunInTx(ctx, func(ctx context.Context) error {
		inner := s.db.RunInTx(ctx, func(ctx context.Context) error {
			_, err := s.notes.Insert(ctx, s.draft("inner"))
			return err
		})
		s.Require().NoError(inner)
		return boom
	})
	s.ErrorIs(err, boom)

	all, err := s.notes.List(ctx)
	s.Require().NoError(err)
	s.Empty(all)
}

func (s *TableSuite) TestRebind() {
	pg := New(nil, Postgres)
	s.Equal("SELECT 1 WHERE a = $1 AND b = $2", pg.Rebind("SELECT 1 WHERE a = ? AND b = ?"))
	s.Equal("a = ?", s.db.Rebind("a = ?"))
}
