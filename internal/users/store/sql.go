package store

import (
	"context"

	"intentions/internal/platform/sqlstore"
	"intentions/internal/users/models"
)

var userMapping = sqlstore.Mapping[*models.User]{
	Table:   "users",
	Columns: []string{"username", "email"},
	Values:  func(u *models.User) []any { return []any{u.Username, u.Email} },
	Targets: func(u *models.User) []any { return []any{&u.Username, &u.Email} },
	New:     func() *models.User { return &models.User{} },
}

// SQL stores users in a relational database.
type SQL struct {
	users *sqlstore.Table[*models.User]
}

// NewSQL returns a store backed by db.
func NewSQL(db *sqlstore.DB) *SQL {
	return &SQL{users: sqlstore.NewTable(db, userMapping)}
}

func (s *SQL) List(ctx context.Context) ([]*models.User, error) {
	return s.users.List(ctx)
}

func (s *SQL) FindByID(ctx context.Context, id int64) (*models.User, error) {
	return s.users.Get(ctx, id)
}

func (s *SQL) Create(ctx context.Context, u *models.User) (*models.User, error) {
	return s.users.Insert(ctx, u)
}

func (s *SQL) Update(ctx context.Context, id int64, u *models.User) (*models.User, error) {
	return s.users.Replace(ctx, id, u)
}

func (s *SQL) Delete(ctx context.Context, id int64) (bool, error) {
	return s.users.Delete(ctx, id)
}
