package audit

import (
	"context"
	"fmt"
	"sync"
)

// MemoryStore implements Store using an in-memory append-only slice.
// Safe for concurrent appends.
type MemoryStore struct {
	mu      sync.Mutex
	records []*Record
	byID    map[string]struct{}
}

// NewMemoryStore creates a new empty in-memory audit store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		byID: make(map[string]struct{}),
	}
}

// Append stores a new record.
func (s *MemoryStore) Append(ctx context.Context, rec *Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.byID[rec.ID]; exists {
		return fmt.Errorf("%s: %w", rec.ID, ErrRecordExists)
	}
	c := *rec
	s.records = append(s.records, &c)
	s.byID[rec.ID] = struct{}{}
	return nil
}

// List returns records ordered newest first.
func (s *MemoryStore) List(ctx context.Context, limit int) ([]*Record, error) {
	return s.filter(limit, func(*Record) bool { return true })
}

// ListByUser returns records attributed to a username, newest first.
func (s *MemoryStore) ListByUser(ctx context.Context, username string, limit int) ([]*Record, error) {
	return s.filter(limit, func(r *Record) bool { return r.Username == username })
}

// ListByKind returns records of a specific kind, newest first.
func (s *MemoryStore) ListByKind(ctx context.Context, kind Kind, limit int) ([]*Record, error) {
	return s.filter(limit, func(r *Record) bool { return r.Kind == kind })
}

// filter walks the append order backwards so results come out newest first.
func (s *MemoryStore) filter(limit int, keep func(*Record) bool) ([]*Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	limit = capLimit(limit)
	out := make([]*Record, 0, limit)
	for i := len(s.records) - 1; i >= 0 && len(out) < limit; i-- {
		if keep(s.records[i]) {
			c := *s.records[i]
			out = append(out, &c)
		}
	}
	return out, nil
}

// Len returns the total number of records. Intended for tests.
func (s *MemoryStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.records)
}
