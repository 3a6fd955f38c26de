package store

import (
	"context"

	"intentions/internal/intents/models"
	"intentions/internal/platform/entity"
	"intentions/internal/platform/sqlstore"
)

var intentMapping = sqlstore.Mapping[*models.Intent]{
	Table:   "intents",
	Columns: []string{"name", "description", "output_format", "output_structure", "context", "constraints"},
	Values: func(i *models.Intent) []any {
		return []any{i.Name, i.Description, i.OutputFormat, i.OutputStructure, i.Context, i.Constraints}
	},
	Targets: func(i *models.Intent) []any {
		return []any{&i.Name, &i.Description, &i.OutputFormat, &i.OutputStructure, &i.Context, &i.Constraints}
	},
	New: func() *models.Intent { return &models.Intent{Facts: []*models.Fact{}} },
}

var factMapping = sqlstore.Mapping[*models.Fact]{
	Table:   "facts",
	Columns: []string{"intent_id", "value"},
	Values:  func(f *models.Fact) []any { return []any{f.IntentID, f.Value} },
	Targets: func(f *models.Fact) []any { return []any{&f.IntentID, &f.Value} },
	New:     func() *models.Fact { return &models.Fact{} },
}

// SQL stores intents in the intents table and their facts in facts.
type SQL struct {
	db      *sqlstore.DB
	intents *sqlstore.Table[*models.Intent]
	facts   *sqlstore.ChildTable[*models.Fact]
}

func NewSQL(db *sqlstore.DB) *SQL {
	intents := sqlstore.NewTable(db, intentMapping)
	return &SQL{
		db:      db,
		intents: intents,
		facts:   sqlstore.NewChildTable(db, factMapping, "intent_id", intents),
	}
}

func (s *SQL) Facts() entity.Children[*models.Fact] { return s.facts }

func (s *SQL) List(ctx context.Context) ([]*models.Intent, error) {
	var intents []*models.Intent
	err := s.db.RunInTx(ctx, func(ctx context.Context) error {
		var err error
		if intents, err = s.intents.List(ctx); err != nil {
			return err
		}
		facts, err := s.facts.List(ctx)
		if err != nil {
			return err
		}
		byIntent := make(map[int64][]*models.Fact, len(intents))
		for _, f := range facts {
			byIntent[f.IntentID] = append(byIntent[f.IntentID], f)
		}
		for _, i := range intents {
			if owned, ok := byIntent[i.ID]; ok {
				i.Facts = owned
			}
		}
		return nil
	})
	return intents, err
}

func (s *SQL) FindByID(ctx context.Context, id int64) (*models.Intent, error) {
	var out *models.Intent
	err := s.db.RunInTx(ctx, func(ctx context.Context) error {
		i, err := s.intents.Get(ctx, id)
		if err != nil {
			return err
		}
		if i.Facts, err = s.facts.ListByParent(ctx, id); err != nil {
			return err
		}
		out = i
		return nil
	})
	return out, err
}

func (s *SQL) Create(ctx context.Context, i *models.Intent) (*models.Intent, error) {
	created, err := s.intents.Insert(ctx, i)
	if err != nil {
		return nil, err
	}
	created.Facts = []*models.Fact{}
	return created, nil
}

func (s *SQL) Update(ctx context.Context, id int64, i *models.Intent) (*models.Intent, error) {
	var out *models.Intent
	err := s.db.RunInTx(ctx, func(ctx context.Context) error {
		updated, err := s.intents.Replace(ctx, id, i)
		if err != nil {
			return err
		}
		if updated.Facts, err = s.facts.ListByParent(ctx, id); err != nil {
			return err
		}
		out = updated
		return nil
	})
	return out, err
}

// Delete removes the facts first and then the intent, in one transaction.
func (s *SQL) Delete(ctx context.Context, id int64) (bool, error) {
	var deleted bool
	err := s.db.RunInTx(ctx, func(ctx context.Context) error {
		if _, err := s.facts.RemoveByParent(ctx, id); err != nil {
			return err
		}
		var err error
		deleted, err = s.intents.Delete(ctx, id)
		return err
	})
	return deleted, err
}
