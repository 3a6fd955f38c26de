package store

import (
	"context"
	"sync"

	"intentions/internal/platform/memstore"
	"intentions/internal/users/models"
	"intentions/pkg/platform/sentinel"
	"intentions/pkg/requestcontext"
)

// InMemory keeps users in process memory.
type InMemory struct {
	mu    sync.RWMutex
	users *memstore.Table[*models.User]
}

// NewInMemory returns an empty store.
func NewInMemory() *InMemory {
	return &InMemory{users: memstore.NewTable[*models.User]()}
}

func (s *InMemory) List(_ context.Context) ([]*models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.users.All(), nil
}

func (s *InMemory) FindByID(_ context.Context, id int64) (*models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	u, ok := s.users.Get(id)
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	return u, nil
}

func (s *InMemory) Create(_ context.Context, u *models.User) (*models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.users.Insert(u), nil
}

func (s *InMemory) Update(ctx context.Context, id int64, u *models.User) (*models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	updated, ok := s.users.Replace(id, u, requestcontext.Now(ctx))
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	return updated, nil
}

func (s *InMemory) Delete(_ context.Context, id int64) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.users.Remove(id), nil
}
