package profile

import (
	"context"
	"sync"

	"carehub/internal/registry/models"
	id "carehub/pkg/domain"
	"carehub/pkg/platform/sentinel"
)

// InMemory keeps profiles in a map. It stores and returns deep copies, so a
// caller can stage changes against a snapshot and abandon them without the
// store ever seeing a partial write.
type InMemory struct {
	mu       sync.RWMutex
	profiles map[id.Identity]*models.Profile
}

// NewInMemory returns an empty in-memory profile store.
func NewInMemory() *InMemory {
	return &InMemory{profiles: make(map[id.Identity]*models.Profile)}
}

func (s *InMemory) Create(_ context.Context, p *models.Profile) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.profiles[p.Identity]; ok {
		return sentinel.ErrConflict
	}
	s.profiles[p.Identity] = p.Clone()
	return nil
}

func (s *InMemory) FindByIdentity(_ context.Context, identity id.Identity) (*models.Profile, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	p, ok := s.profiles[identity]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	return p.Clone(), nil
}

func (s *InMemory) Update(_ context.Context, p *models.Profile) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.profiles[p.Identity]; !ok {
		return sentinel.ErrNotFound
	}
	s.profiles[p.Identity] = p.Clone()
	return nil
}

func (s *InMemory) Count(_ context.Context) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.profiles), nil
}
