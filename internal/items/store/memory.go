package store

import (
	"context"
	"sync"

	"intentions/internal/items/models"
	"intentions/internal/platform/memstore"
	"intentions/pkg/platform/sentinel"
	"intentions/pkg/requestcontext"
)

// InMemory keeps items in process memory.
type InMemory struct {
	mu    sync.RWMutex
	items *memstore.Table[*models.Item]
}

func NewInMemory() *InMemory {
	return &InMemory{items: memstore.NewTable[*models.Item]()}
}

func (s *InMemory) List(_ context.Context) ([]*models.Item, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.items.All(), nil
}

func (s *InMemory) Search(_ context.Context, q models.SearchQuery) ([]*models.Item, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.items.Filter(func(i *models.Item) bool { return i.Matches(q) }), nil
}

func (s *InMemory) FindByID(_ context.Context, id int64) (*models.Item, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	item, ok := s.items.Get(id)
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	return item, nil
}

func (s *InMemory) Create(_ context.Context, item *models.Item) (*models.Item, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.items.Insert(item), nil
}

func (s *InMemory) Update(ctx context.Context, id int64, item *models.Item) (*models.Item, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	updated, ok := s.items.Replace(id, item, requestcontext.Now(ctx))
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	return updated, nil
}

func (s *InMemory) Delete(_ context.Context, id int64) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.items.Remove(id), nil
}
