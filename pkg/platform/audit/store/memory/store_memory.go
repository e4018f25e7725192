package memory

import (
	"context"
	"sync"

	id "carehub/pkg/domain"
	audit "carehub/pkg/platform/audit"
)

// InMemoryStore keeps audit events per profile identity. Used in tests and
// as the sink behind the channel worker when Kafka is not configured.
type InMemoryStore struct {
	mu     sync.RWMutex
	events map[id.Identity][]audit.Event
}

func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{events: make(map[id.Identity][]audit.Event)}
}

func (s *InMemoryStore) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events = make(map[id.Identity][]audit.Event)
}

func (s *InMemoryStore) Append(_ context.Context, event audit.Event) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events[event.Identity] = append(s.events[event.Identity], event)
	return nil
}

func (s *InMemoryStore) ListByIdentity(_ context.Context, identity id.Identity) ([]audit.Event, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]audit.Event{}, s.events[identity]...), nil
}

// ListAll returns all audit events across all identities.
func (s *InMemoryStore) ListAll(_ context.Context) ([]audit.Event, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var all []audit.Event
	for _, events := range s.events {
		all = append(all, events...)
	}
	return all, nil
}
