package identity

import (
	"context"
	"fmt"
	"sort"
	"sync"
)

// MemoryStore implements Store using an in-memory map.
// Safe for concurrent use. This is the default backend for a single-process
// deployment; the DynamoDB backend serves shared deployments.
type MemoryStore struct {
	mu         sync.Mutex
	identities map[string]*Identity
}

// NewMemoryStore creates a new empty in-memory identity store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		identities: make(map[string]*Identity),
	}
}

// Create stores a new identity. Returns ErrIdentityExists if the username is taken.
func (s *MemoryStore) Create(ctx context.Context, id *Identity) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.identities[id.Username]; exists {
		return fmt.Errorf("%s: %w", id.Username, ErrIdentityExists)
	}
	s.identities[id.Username] = cloneIdentity(id)
	return nil
}

// Get retrieves an identity by username.
func (s *MemoryStore) Get(ctx context.Context, username string) (*Identity, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	id, exists := s.identities[username]
	if !exists {
		return nil, fmt.Errorf("%s: %w", username, ErrIdentityNotFound)
	}
	return cloneIdentity(id), nil
}

// Update modifies an existing identity.
func (s *MemoryStore) Update(ctx context.Context, id *Identity) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.identities[id.Username]; !exists {
		return fmt.Errorf("%s: %w", id.Username, ErrIdentityNotFound)
	}
	s.identities[id.Username] = cloneIdentity(id)
	return nil
}

// List returns identities ordered by username.
func (s *MemoryStore) List(ctx context.Context, limit int) ([]*Identity, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	limit = capLimit(limit)
	usernames := make([]string, 0, len(s.identities))
	for username := range s.identities {
		usernames = append(usernames, username)
	}
	sort.Strings(usernames)

	out := make([]*Identity, 0, len(usernames))
	for _, username := range usernames {
		if len(out) >= limit {
			break
		}
		out = append(out, cloneIdentity(s.identities[username]))
	}
	return out, nil
}

// Count returns the number of identities in the store.
func (s *MemoryStore) Count(ctx context.Context) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.identities), nil
}

// cloneIdentity copies an identity so callers never share the stored value.
func cloneIdentity(id *Identity) *Identity {
	c := *id
	return &c
}
