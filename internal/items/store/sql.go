package store

import (
	"context"
	"strings"

	"intentions/internal/items/models"
	"intentions/internal/platform/sqlstore"
)

var itemMapping = sqlstore.Mapping[*models.Item]{
	Table:   "items",
	Columns: []string{"name", "description", "price", "is_available"},
	Values: func(i *models.Item) []any {
		return []any{i.Name, i.Description, i.Price, i.IsAvailable}
	},
	Targets: func(i *models.Item) []any {
		return []any{&i.Name, &i.Description, &i.Price, &i.IsAvailable}
	},
	New: func() *models.Item { return &models.Item{} },
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// SQL stores items in a relational database.
type SQL struct {
	items *sqlstore.Table[*models.Item]
}

func NewSQL(db *sqlstore.DB) *SQL {
	return &SQL{items: sqlstore.NewTable(db, itemMapping)}
}

func (s *SQL) List(ctx context.Context) ([]*models.Item, error) {
	return s.items.List(ctx)
}

// Search translates q into a WHERE clause. Name matching lowercases both sides
// so it behaves the same on PostgreSQL and SQLite.
func (s *SQL) Search(ctx context.Context, q models.SearchQuery) ([]*models.Item, error) {
	var (
		clauses []string
		args    []any
	)
	if q.Name != "" {
		clauses = append(clauses, `LOWER(name) LIKE ? ESCAPE '\'`)
		args = append(args, "%"+likeEscaper.Replace(strings.ToLower(q.Name))+"%")
	}
	if q.MinPrice != nil {
		clauses = append(clauses, "price >= ?")
		args = append(args, *q.MinPrice)
	}
	if q.MaxPrice != nil {
		clauses = append(clauses, "price <= ?")
		args = append(args, *q.MaxPrice)
	}
	if q.AvailableOnly {
		clauses = append(clauses, "is_available = ?")
		args = append(args, true)
	}
	return s.items.Select(ctx, strings.Join(clauses, " AND "), args...)
}

func (s *SQL) FindByID(ctx context.Context, id int64) (*models.Item, error) {
	return s.items.Get(ctx, id)
}

func (s *SQL) Create(ctx context.Context, item *models.Item) (*models.Item, error) {
	return s.items.Insert(ctx, item)
}

func (s *SQL) Update(ctx context.Context, id int64, item *models.Item) (*models.Item, error) {
	return s.items.Replace(ctx, id, item)
}

func (s *SQL) Delete(ctx context.Context, id int64) (bool, error) {
	return s.items.Delete(ctx, id)
}
