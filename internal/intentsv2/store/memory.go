package store

import (
	"context"
	"sync"

	"intentions/internal/intentsv2/models"
	"intentions/internal/platform/entity"
	"intentions/internal/platform/memstore"
	"intentions/pkg/platform/sentinel"
	"intentions/pkg/requestcontext"
)

// InMemory keeps V2 intents and everything they own in process memory behind
// one mutex. Removing a record that others point at clears those pointers,
// matching ON DELETE SET NULL in the relational schema.
type InMemory struct {
	mu          sync.RWMutex
	intents     *memstore.Table[*models.Intent]
	aspects     *memstore.ChildTable[*models.Aspect]
	inputs      *memstore.ChildTable[*models.Input]
	choices     *memstore.ChildTable[*models.Choice]
	pitfalls    *memstore.ChildTable[*models.Pitfall]
	assumptions *memstore.ChildTable[*models.Assumption]
	qualities   *memstore.ChildTable[*models.Quality]
	examples    *memstore.ChildTable[*models.Example]
	prompts     *memstore.ChildTable[*models.Prompt]
	outputs     *memstore.ChildTable[*models.Output]
	insights    *memstore.ChildTable[*models.Insight]
}

func NewInMemory() *InMemory {
	s := &InMemory{intents: memstore.NewTable[*models.Intent]()}
	s.aspects = memstore.NewChildTable[*models.Aspect](&s.mu, s.intents.Has)
	s.inputs = memstore.NewChildTable[*models.Input](&s.mu, s.intents.Has)
	s.choices = memstore.NewChildTable[*models.Choice](&s.mu, s.intents.Has)
	s.pitfalls = memstore.NewChildTable[*models.Pitfall](&s.mu, s.intents.Has)
	s.assumptions = memstore.NewChildTable[*models.Assumption](&s.mu, s.intents.Has)
	s.qualities = memstore.NewChildTable[*models.Quality](&s.mu, s.intents.Has)
	s.examples = memstore.NewChildTable[*models.Example](&s.mu, s.intents.Has)
	s.prompts = memstore.NewChildTable[*models.Prompt](&s.mu, s.intents.Has)
	s.outputs = memstore.NewChildTable[*models.Output](&s.mu, func(id int64) bool {
		_, ok := s.prompts.Get(id)
		return ok
	})
	s.insights = memstore.NewChildTable[*models.Insight](&s.mu, s.intents.Has)
	return s
}

func (s *InMemory) Aspects() entity.Children[*models.Aspect]         { return s.aspects }
func (s *InMemory) Inputs() entity.Children[*models.Input]           { return s.inputs }
func (s *InMemory) Choices() entity.Children[*models.Choice]         { return s.choices }
func (s *InMemory) Pitfalls() entity.Children[*models.Pitfall]       { return s.pitfalls }
func (s *InMemory) Assumptions() entity.Children[*models.Assumption] { return s.assumptions }
func (s *InMemory) Qualities() entity.Children[*models.Quality]      { return s.qualities }
func (s *InMemory) Examples() entity.Children[*models.Example]       { return s.examples }
func (s *InMemory) Outputs() entity.Children[*models.Output]         { return s.outputs }
func (s *InMemory) Insights() entity.Children[*models.Insight]       { return s.insights }

func (s *InMemory) assemble(i *models.Intent) *models.Intent {
	i.Aspects = s.aspects.ListLocked(i.ID)
	i.Inputs = s.inputs.ListLocked(i.ID)
	i.Choices = s.choices.ListLocked(i.ID)
	i.Pitfalls = s.pitfalls.ListLocked(i.ID)
	i.Assumptions = s.assumptions.ListLocked(i.ID)
	i.Qualities = s.qualities.ListLocked(i.ID)
	i.Examples = s.examples.ListLocked(i.ID)
	i.Prompts = s.prompts.ListLocked(i.ID)
	i.Insights = s.insights.ListLocked(i.ID)
	return i
}

func (s *InMemory) List(_ context.Context) ([]*models.Intent, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	intents := s.intents.All()
	for _, i := range intents {
		s.assemble(i)
	}
	return intents, nil
}

func (s *InMemory) FindByID(_ context.Context, id int64) (*models.Intent, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	i, ok := s.intents.Get(id)
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	return s.assemble(i), nil
}

// Create stores the intent and the initial articulation in one step.
func (s *InMemory) Create(_ context.Context, i *models.Intent, a models.Articulation) (*models.Intent, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	created := s.intents.Insert(i.Bare())
	if err := s.replaceLocked(created.ID, a); err != nil {
		return nil, err
	}
	return s.assemble(created), nil
}

// Update replaces name and description. Children are left untouched.
func (s *InMemory) Update(ctx context.Context, id int64, i *models.Intent) (*models.Intent, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	updated, ok := s.intents.Replace(id, i.Bare(), requestcontext.Now(ctx))
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	return s.assemble(updated), nil
}

// ReplaceArticulation swaps every supplied list for its new contents.
func (s *InMemory) ReplaceArticulation(_ context.Context, id int64, a models.Articulation) (*models.Intent, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	i, ok := s.intents.Get(id)
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	if err := s.replaceLocked(id, a); err != nil {
		return nil, err
	}
	return s.assemble(i), nil
}

func (s *InMemory) replaceLocked(id int64, a models.Articulation) error {
	if err := replaceKind(s.inputs, id, a.Inputs); err != nil {
		return err
	}
	if err := replaceKind(s.choices, id, a.Choices); err != nil {
		return err
	}
	if err := replaceKind(s.pitfalls, id, a.Pitfalls); err != nil {
		return err
	}
	if a.Assumptions != nil {
		s.unlinkAssumptions(s.assumptions.RemoveByParentLocked(id))
		if err := addAll(s.assumptions, id, a.Assumptions); err != nil {
			return err
		}
	}
	if err := replaceKind(s.qualities, id, a.Qualities); err != nil {
		return err
	}
	if err := replaceKind(s.examples, id, a.Examples); err != nil {
		return err
	}
	if a.Aspects != nil {
		s.unlinkAspects(s.aspects.RemoveByParentLocked(id))
		if err := addAll(s.aspects, id, a.Aspects); err != nil {
			return err
		}
	}
	return nil
}

// RemoveChild removes one articulation record owned by the intent.
func (s *InMemory) RemoveChild(_ context.Context, kind models.Kind, intentID, childID int64) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	switch kind {
	case models.KindAspects:
		if !s.aspects.RemoveLocked(intentID, childID) {
			return false, nil
		}
		s.unlinkAspects([]int64{childID})
		return true, nil
	case models.KindInputs:
		return s.inputs.RemoveLocked(intentID, childID), nil
	case models.KindChoices:
		return s.choices.RemoveLocked(intentID, childID), nil
	case models.KindPitfalls:
		return s.pitfalls.RemoveLocked(intentID, childID), nil
	case models.KindAssumptions:
		if !s.assumptions.RemoveLocked(intentID, childID) {
			return false, nil
		}
		s.unlinkAssumptions([]int64{childID})
		return true, nil
	case models.KindQualities:
		return s.qualities.RemoveLocked(intentID, childID), nil
	case models.KindExamples:
		return s.examples.RemoveLocked(intentID, childID), nil
	}
	return false, errUnknownKind(kind)
}

// AddPrompt stores the prompt as the next version for the intent.
func (s *InMemory) AddPrompt(_ context.Context, intentID int64, draft *models.Prompt) (*models.Prompt, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.intents.Has(intentID) {
		return nil, sentinel.ErrParentNotFound
	}
	p := draft.Clone()
	p.Version = s.prompts.MaxLocked(intentID, func(p *models.Prompt) int { return p.Version }) + 1
	return s.prompts.AddLocked(intentID, p)
}

// FindOutput returns an output by id whichever prompt owns it.
func (s *InMemory) FindOutput(_ context.Context, id int64) (*models.Output, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	o, ok := s.outputs.Get(id)
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	return o, nil
}

// FindPrompt returns a prompt by id whichever intent owns it.
func (s *InMemory) FindPrompt(_ context.Context, id int64) (*models.Prompt, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	p, ok := s.prompts.Get(id)
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	return p, nil
}

// Delete removes the intent, the outputs of its prompts, and every record it
// owns.
func (s *InMemory) Delete(_ context.Context, id int64) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.intents.Has(id) {
		return false, nil
	}
	s.insights.RemoveByParentLocked(id)
	s.outputs.RemoveByParentsLocked(s.prompts.RemoveByParentLocked(id))
	s.inputs.RemoveByParentLocked(id)
	s.choices.RemoveByParentLocked(id)
	s.pitfalls.RemoveByParentLocked(id)
	s.assumptions.RemoveByParentLocked(id)
	s.qualities.RemoveByParentLocked(id)
	s.examples.RemoveByParentLocked(id)
	s.aspects.RemoveByParentLocked(id)
	return s.intents.Remove(id), nil
}

func (s *InMemory) unlinkAspects(removed []int64) {
	if len(removed) == 0 {
		return
	}
	gone := idSet(removed)
	unlink(s.inputs, gone, func(v *models.Input) **int64 { return &v.AspectID })
	unlink(s.choices, gone, func(v *models.Choice) **int64 { return &v.AspectID })
	unlink(s.pitfalls, gone, func(v *models.Pitfall) **int64 { return &v.AspectID })
	unlink(s.assumptions, gone, func(v *models.Assumption) **int64 { return &v.AspectID })
	unlink(s.qualities, gone, func(v *models.Quality) **int64 { return &v.AspectID })
	unlink(s.examples, gone, func(v *models.Example) **int64 { return &v.AspectID })
}

func (s *InMemory) unlinkAssumptions(removed []int64) {
	if len(removed) == 0 {
		return
	}
	unlink(s.insights, idSet(removed), func(v *models.Insight) **int64 { return &v.SourceAssumptionID })
}

func replaceKind[T entity.Child[T]](t *memstore.ChildTable[T], intentID int64, drafts []T) error {
	if drafts == nil {
		return nil
	}
	t.RemoveByParentLocked(intentID)
	return addAll(t, intentID, drafts)
}

func addAll[T entity.Child[T]](t *memstore.ChildTable[T], intentID int64, drafts []T) error {
	for _, d := range drafts {
		if _, err := t.AddLocked(intentID, d); err != nil {
			return err
		}
	}
	return nil
}

// unlink clears the reference selected by ref wherever it points into gone.
func unlink[T entity.Child[T]](t *memstore.ChildTable[T], gone map[int64]struct{}, ref func(T) **int64) {
	t.EachLocked(func(row T) {
		p := ref(row)
		if *p == nil {
			return
		}
		if _, ok := gone[**p]; ok {
			*p = nil
		}
	})
}

func idSet(ids []int64) map[int64]struct{} {
	set := make(map[int64]struct{}, len(ids))
	for _, id := range ids {
		set[id] = struct{}{}
	}
	return set
}
