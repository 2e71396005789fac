package permissions

import (
	"context"
	"sync"
)

// MemoryStore implements Store using an in-memory map of grant sets.
// Safe for concurrent use.
type MemoryStore struct {
	mu     sync.Mutex
	grants map[string]map[Grant]struct{}
}

// NewMemoryStore creates a new empty in-memory grant store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		grants: make(map[string]map[Grant]struct{}),
	}
}

// Put stores a grant for a username. Idempotent.
func (s *MemoryStore) Put(ctx context.Context, username string, grant Grant) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	set, ok := s.grants[username]
	if !ok {
		set = make(map[Grant]struct{})
		s.grants[username] = set
	}
	set[grant] = struct{}{}
	return nil
}

// Delete removes a grant from a username. Idempotent.
func (s *MemoryStore) Delete(ctx context.Context, username string, grant Grant) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if set, ok := s.grants[username]; ok {
		delete(set, grant)
		if len(set) == 0 {
			delete(s.grants, username)
		}
	}
	return nil
}

// List returns all grants held by a username.
func (s *MemoryStore) List(ctx context.Context, username string) ([]Grant, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	set := s.grants[username]
	out := make([]Grant, 0, len(set))
	for g := range set {
		out = append(out, g)
	}
	return out, nil
}
