package store

import (
	"context"
	"sync"

	"intentions/internal/intents/models"
	"intentions/internal/platform/entity"
	"intentions/internal/platform/memstore"
	"intentions/pkg/platform/sentinel"
	"intentions/pkg/requestcontext"
)

// InMemory keeps intents and their facts in process memory. One mutex guards
// both tables so deleting an intent and its facts is a single step.
type InMemory struct {
	mu      sync.RWMutex
	intents *memstore.Table[*models.Intent]
	facts   *memstore.ChildTable[*models.Fact]
}

func NewInMemory() *InMemory {
	s := &InMemory{intents: memstore.NewTable[*models.Intent]()}
	s.facts = memstore.NewChildTable[*models.Fact](&s.mu, s.intents.Has)
	return s
}

func (s *InMemory) Facts() entity.Children[*models.Fact] { return s.facts }

func (s *InMemory) withFacts(i *models.Intent) *models.Intent {
	i.Facts = s.facts.ListLocked(i.ID)
	return i
}

func (s *InMemory) List(_ context.Context) ([]*models.Intent, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	intents := s.intents.All()
	for _, i := range intents {
		s.withFacts(i)
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
	return s.withFacts(i), nil
}

func (s *InMemory) Create(_ context.Context, i *models.Intent) (*models.Intent, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	draft := i.Clone()
	draft.Facts = nil
	return s.withFacts(s.intents.Insert(draft)), nil
}

// Update replaces the scalar fields of an intent. Facts are managed through
// Facts and are left untouched.
func (s *InMemory) Update(ctx context.Context, id int64, i *models.Intent) (*models.Intent, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	draft := i.Clone()
	draft.Facts = nil
	updated, ok := s.intents.Replace(id, draft, requestcontext.Now(ctx))
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	return s.withFacts(updated), nil
}

// Delete removes the intent together with its facts.
func (s *InMemory) Delete(_ context.Context, id int64) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.intents.Has(id) {
		return false, nil
	}
	s.facts.RemoveByParentLocked(id)
	return s.intents.Remove(id), nil
}
