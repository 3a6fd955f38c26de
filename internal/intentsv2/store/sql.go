package store

import (
	"context"
	"fmt"

	"intentions/internal/intentsv2/models"
	"intentions/internal/platform/entity"
	"intentions/internal/platform/sqlstore"
	"intentions/pkg/platform/sentinel"
)

var intentMapping = sqlstore.Mapping[*models.Intent]{
	Table:   "v2_intents",
	Columns: []string{"name", "description"},
	Values:  func(i *models.Intent) []any { return []any{i.Name, i.Description} },
	Targets: func(i *models.Intent) []any { return []any{&i.Name, &i.Description} },
	New:     func() *models.Intent { return &models.Intent{} },
}

var aspectMapping = sqlstore.Mapping[*models.Aspect]{
	Table:   "v2_aspects",
	Columns: []string{"intent_id", "name", "description"},
	Values:  func(a *models.Aspect) []any { return []any{a.IntentID, a.Name, a.Description} },
	Targets: func(a *models.Aspect) []any { return []any{&a.IntentID, &a.Name, &a.Description} },
	New:     func() *models.Aspect { return &models.Aspect{} },
}

var inputMapping = sqlstore.Mapping[*models.Input]{
	Table:   "v2_inputs",
	Columns: []string{"intent_id", "aspect_id", "name", "description", "format", "required"},
	Values: func(in *models.Input) []any {
		return []any{in.IntentID, in.AspectID, in.Name, in.Description, in.Format, in.Required}
	},
	Targets: func(in *models.Input) []any {
		return []any{&in.IntentID, &in.AspectID, &in.Name, &in.Description, &in.Format, &in.Required}
	},
	New: func() *models.Input { return &models.Input{} },
}

var choiceMapping = sqlstore.Mapping[*models.Choice]{
	Table:   "v2_choices",
	Columns: []string{"intent_id", "aspect_id", "name", "description", "options", "selected_option", "rationale"},
	Values: func(c *models.Choice) []any {
		return []any{c.IntentID, c.AspectID, c.Name, c.Description, c.Options, c.SelectedOption, c.Rationale}
	},
	Targets: func(c *models.Choice) []any {
		return []any{&c.IntentID, &c.AspectID, &c.Name, &c.Description, &c.Options, &c.SelectedOption, &c.Rationale}
	},
	New: func() *models.Choice { return &models.Choice{} },
}

var pitfallMapping = sqlstore.Mapping[*models.Pitfall]{
	Table:   "v2_pitfalls",
	Columns: []string{"intent_id", "aspect_id", "description", "mitigation"},
	Values:  func(p *models.Pitfall) []any { return []any{p.IntentID, p.AspectID, p.Description, p.Mitigation} },
	Targets: func(p *models.Pitfall) []any { return []any{&p.IntentID, &p.AspectID, &p.Description, &p.Mitigation} },
	New:     func() *models.Pitfall { return &models.Pitfall{} },
}

var assumptionMapping = sqlstore.Mapping[*models.Assumption]{
	Table:   "v2_assumptions",
	Columns: []string{"intent_id", "aspect_id", "description", "confidence"},
	Values:  func(a *models.Assumption) []any { return []any{a.IntentID, a.AspectID, a.Description, a.Confidence} },
	Targets: func(a *models.Assumption) []any {
		return []any{&a.IntentID, &a.AspectID, &a.Description, &a.Confidence}
	},
	New: func() *models.Assumption { return &models.Assumption{} },
}

var qualityMapping = sqlstore.Mapping[*models.Quality]{
	Table:   "v2_qualities",
	Columns: []string{"intent_id", "aspect_id", "criterion", "measurement", "priority"},
	Values: func(q *models.Quality) []any {
		return []any{q.IntentID, q.AspectID, q.Criterion, q.Measurement, q.Priority}
	},
	Targets: func(q *models.Quality) []any {
		return []any{&q.IntentID, &q.AspectID, &q.Criterion, &q.Measurement, &q.Priority}
	},
	New: func() *models.Quality { return &models.Quality{} },
}

var exampleMapping = sqlstore.Mapping[*models.Example]{
	Table:   "v2_examples",
	Columns: []string{"intent_id", "aspect_id", "sample", "explanation", "source"},
	Values: func(e *models.Example) []any {
		return []any{e.IntentID, e.AspectID, e.Sample, e.Explanation, e.Source}
	},
	Targets: func(e *models.Example) []any {
		return []any{&e.IntentID, &e.AspectID, &e.Sample, &e.Explanation, &e.Source}
	},
	New: func() *models.Example { return &models.Example{} },
}

var promptMapping = sqlstore.Mapping[*models.Prompt]{
	Table:   "v2_prompts",
	Columns: []string{"intent_id", "content", "version"},
	Values:  func(p *models.Prompt) []any { return []any{p.IntentID, p.Content, p.Version} },
	Targets: func(p *models.Prompt) []any { return []any{&p.IntentID, &p.Content, &p.Version} },
	New:     func() *models.Prompt { return &models.Prompt{} },
}

var outputMapping = sqlstore.Mapping[*models.Output]{
	Table:   "v2_outputs",
	Columns: []string{"prompt_id", "content"},
	Values:  func(o *models.Output) []any { return []any{o.PromptID, o.Content} },
	Targets: func(o *models.Output) []any { return []any{&o.PromptID, &o.Content} },
	New:     func() *models.Output { return &models.Output{} },
}

var insightMapping = sqlstore.Mapping[*models.Insight]{
	Table: "v2_insights",
	Columns: []string{"intent_id", "content", "source_type", "source_output_id",
		"source_prompt_id", "source_assumption_id", "status"},
	Values: func(in *models.Insight) []any {
		return []any{in.IntentID, in.Content, in.SourceType, in.SourceOutputID,
			in.SourcePromptID, in.SourceAssumptionID, in.Status}
	},
	Targets: func(in *models.Insight) []any {
		return []any{&in.IntentID, &in.Content, &in.SourceType, &in.SourceOutputID,
			&in.SourcePromptID, &in.SourceAssumptionID, &in.Status}
	},
	New: func() *models.Insight { return &models.Insight{} },
}

type remover interface {
	Remove(ctx context.Context, parentID, id int64) (bool, error)
	RemoveByParent(ctx context.Context, parentID int64) (int64, error)
}

// SQL stores V2 intents across the v2_* tables. Cross-references are
// cleared by ON DELETE SET NULL; owned rows are removed explicitly.
type SQL struct {
	db          *sqlstore.DB
	intents     *sqlstore.Table[*models.Intent]
	aspects     *sqlstore.ChildTable[*models.Aspect]
	inputs      *sqlstore.ChildTable[*models.Input]
	choices     *sqlstore.ChildTable[*models.Choice]
	pitfalls    *sqlstore.ChildTable[*models.Pitfall]
	assumptions *sqlstore.ChildTable[*models.Assumption]
	qualities   *sqlstore.ChildTable[*models.Quality]
	examples    *sqlstore.ChildTable[*models.Example]
	prompts     *sqlstore.ChildTable[*models.Prompt]
	outputs     *sqlstore.ChildTable[*models.Output]
	insights    *sqlstore.ChildTable[*models.Insight]

	byKind map[models.Kind]remover
}

func NewSQL(db *sqlstore.DB) *SQL {
	intents := sqlstore.NewTable(db, intentMapping)
	prompts := sqlstore.NewChildTable(db, promptMapping, "intent_id", intents)
	s := &SQL{
		db:          db,
		intents:     intents,
		aspects:     sqlstore.NewChildTable(db, aspectMapping, "intent_id", intents),
		inputs:      sqlstore.NewChildTable(db, inputMapping, "intent_id", intents),
		choices:     sqlstore.NewChildTable(db, choiceMapping, "intent_id", intents),
		pitfalls:    sqlstore.NewChildTable(db, pitfallMapping, "intent_id", intents),
		assumptions: sqlstore.NewChildTable(db, assumptionMapping, "intent_id", intents),
		qualities:   sqlstore.NewChildTable(db, qualityMapping, "intent_id", intents),
		examples:    sqlstore.NewChildTable(db, exampleMapping, "intent_id", intents),
		prompts:     prompts,
		outputs:     sqlstore.NewChildTable(db, outputMapping, "prompt_id", prompts),
		insights:    sqlstore.NewChildTable(db, insightMapping, "intent_id", intents),
	}
	s.byKind = map[models.Kind]remover{
		models.KindAspects:     s.aspects,
		models.KindInputs:      s.inputs,
		models.KindChoices:     s.choices,
		models.KindPitfalls:    s.pitfalls,
		models.KindAssumptions: s.assumptions,
		models.KindQualities:   s.qualities,
		models.KindExamples:    s.examples,
	}
	return s
}

func (s *SQL) Aspects() entity.Children[*models.Aspect]         { return s.aspects }
func (s *SQL) Inputs() entity.Children[*models.Input]           { return s.inputs }
func (s *SQL) Choices() entity.Children[*models.Choice]         { return s.choices }
func (s *SQL) Pitfalls() entity.Children[*models.Pitfall]       { return s.pitfalls }
func (s *SQL) Assumptions() entity.Children[*models.Assumption] { return s.assumptions }
func (s *SQL) Qualities() entity.Children[*models.Quality]      { return s.qualities }
func (s *SQL) Examples() entity.Children[*models.Example]       { return s.examples }
func (s *SQL) Outputs() entity.Children[*models.Output]         { return s.outputs }
func (s *SQL) Insights() entity.Children[*models.Insight]       { return s.insights }

func (s *SQL) assemble(ctx context.Context, i *models.Intent) error {
	var err error
	if i.Aspects, err = s.aspects.ListByParent(ctx, i.ID); err != nil {
		return err
	}
	if i.Inputs, err = s.inputs.ListByParent(ctx, i.ID); err != nil {
		return err
	}
	if i.Choices, err = s.choices.ListByParent(ctx, i.ID); err != nil {
		return err
	}
	if i.Pitfalls, err = s.pitfalls.ListByParent(ctx, i.ID); err != nil {
		return err
	}
	if i.Assumptions, err = s.assumptions.ListByParent(ctx, i.ID); err != nil {
		return err
	}
	if i.Qualities, err = s.qualities.ListByParent(ctx, i.ID); err != nil {
		return err
	}
	if i.Examples, err = s.examples.ListByParent(ctx, i.ID); err != nil {
		return err
	}
	if i.Prompts, err = s.prompts.ListByParent(ctx, i.ID); err != nil {
		return err
	}
	i.Insights, err = s.insights.ListByParent(ctx, i.ID)
	return err
}

func (s *SQL) List(ctx context.Context) ([]*models.Intent, error) {
	var intents []*models.Intent
	err := s.db.RunInTx(ctx, func(ctx context.Context) error {
		var err error
		if intents, err = s.intents.List(ctx); err != nil {
			return err
		}
		for _, i := range intents {
			if err := s.assemble(ctx, i); err != nil {
				return err
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
		if err := s.assemble(ctx, i); err != nil {
			return err
		}
		out = i
		return nil
	})
	return out, err
}

// Create inserts the intent and its initial articulation in one transaction.
func (s *SQL) Create(ctx context.Context, i *models.Intent, a models.Articulation) (*models.Intent, error) {
	var out *models.Intent
	err := s.db.RunInTx(ctx, func(ctx context.Context) error {
		created, err := s.intents.Insert(ctx, i.Bare())
		if err != nil {
			return err
		}
		if err := s.replace(ctx, created.ID, a); err != nil {
			return err
		}
		if err := s.assemble(ctx, created); err != nil {
			return err
		}
		out = created
		return nil
	})
	return out, err
}

func (s *SQL) Update(ctx context.Context, id int64, i *models.Intent) (*models.Intent, error) {
	var out *models.Intent
	err := s.db.RunInTx(ctx, func(ctx context.Context) error {
		updated, err := s.intents.Replace(ctx, id, i.Bare())
		if err != nil {
			return err
		}
		if err := s.assemble(ctx, updated); err != nil {
			return err
		}
		out = updated
		return nil
	})
	return out, err
}

func (s *SQL) ReplaceArticulation(ctx context.Context, id int64, a models.Articulation) (*models.Intent, error) {
	var out *models.Intent
	err := s.db.RunInTx(ctx, func(ctx context.Context) error {
		i, err := s.intents.Get(ctx, id)
		if err != nil {
			return err
		}
		if err := s.replace(ctx, id, a); err != nil {
			return err
		}
		if err := s.assemble(ctx, i); err != nil {
			return err
		}
		out = i
		return nil
	})
	return out, err
}

// replace runs inside the caller's transaction. Aspects go last so the SET
// NULL cascade reaches the rows written just before.
func (s *SQL) replace(ctx context.Context, id int64, a models.Articulation) error {
	if err := replaceRows(ctx, s.inputs, id, a.Inputs); err != nil {
		return err
	}
	if err := replaceRows(ctx, s.choices, id, a.Choices); err != nil {
		return err
	}
	if err := replaceRows(ctx, s.pitfalls, id, a.Pitfalls); err != nil {
		return err
	}
	if err := replaceRows(ctx, s.assumptions, id, a.Assumptions); err != nil {
		return err
	}
	if err := replaceRows(ctx, s.qualities, id, a.Qualities); err != nil {
		return err
	}
	if err := replaceRows(ctx, s.examples, id, a.Examples); err != nil {
		return err
	}
	return replaceRows(ctx, s.aspects, id, a.Aspects)
}

func replaceRows[T entity.Child[T]](ctx context.Context, t *sqlstore.ChildTable[T], intentID int64, drafts []T) error {
	if drafts == nil {
		return nil
	}
	if _, err := t.RemoveByParent(ctx, intentID); err != nil {
		return err
	}
	for _, d := range drafts {
		if _, err := t.Add(ctx, intentID, d); err != nil {
			return err
		}
	}
	return nil
}

func (s *SQL) RemoveChild(ctx context.Context, kind models.Kind, intentID, childID int64) (bool, error) {
	t, ok := s.byKind[kind]
	if !ok {
		return false, errUnknownKind(kind)
	}
	return t.Remove(ctx, intentID, childID)
}

// AddPrompt reads the highest version and inserts the next one in the same
// transaction.
func (s *SQL) AddPrompt(ctx context.Context, intentID int64, draft *models.Prompt) (*models.Prompt, error) {
	var out *models.Prompt
	err := s.db.RunInTx(ctx, func(ctx context.Context) error {
		ok, err := s.intents.Exists(ctx, intentID)
		if err != nil {
			return err
		}
		if !ok {
			return sentinel.ErrParentNotFound
		}
		var latest int
		query := fmt.Sprintf("SELECT COALESCE(MAX(version), 0) FROM %s WHERE intent_id = ?", s.prompts.Name())
		if err := s.db.QueryRow(ctx, query, intentID).Scan(&latest); err != nil {
			return fmt.Errorf("read prompt version: %w", err)
		}
		p := draft.Clone()
		p.Version = latest + 1
		out, err = s.prompts.Add(ctx, intentID, p)
		return err
	})
	return out, err
}

func (s *SQL) FindOutput(ctx context.Context, id int64) (*models.Output, error) {
	return s.outputs.Get(ctx, id)
}

func (s *SQL) FindPrompt(ctx context.Context, id int64) (*models.Prompt, error) {
	return s.prompts.Get(ctx, id)
}

// Delete removes the outputs of the intent's prompts, every owned family and
// then the intent, in one transaction.
func (s *SQL) Delete(ctx context.Context, id int64) (bool, error) {
	var deleted bool
	err := s.db.RunInTx(ctx, func(ctx context.Context) error {
		if _, err := s.insights.RemoveByParent(ctx, id); err != nil {
			return err
		}
		ownedPrompts := fmt.Sprintf("prompt_id IN (SELECT id FROM %s WHERE intent_id = ?)", s.prompts.Name())
		if _, err := s.outputs.DeleteWhere(ctx, ownedPrompts, id); err != nil {
			return err
		}
		if _, err := s.prompts.RemoveByParent(ctx, id); err != nil {
			return err
		}
		for _, k := range models.ArticulationKinds {
			if _, err := s.byKind[k].RemoveByParent(ctx, id); err != nil {
				return err
			}
		}
		var err error
		deleted, err = s.intents.Delete(ctx, id)
		return err
	})
	return deleted, err
}
