package resource

import (
	"context"
	"fmt"
	"sort"
	"sync"
)

// MemoryStore implements NoteStore and TaskStore with in-memory maps.
// Safe for concurrent use.
type MemoryStore struct {
	mu    sync.Mutex
	notes map[string]*Note
	tasks map[string]*Task
}

// NewMemoryStore creates a new empty in-memory resource store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		notes: make(map[string]*Note),
		tasks: make(map[string]*Task),
	}
}

// PutNote creates or replaces a note by ID.
func (s *MemoryStore) PutNote(ctx context.Context, note *Note) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	c := *note
	s.notes[note.ID] = &c
	return nil
}

// GetNote resolves a note by ID.
func (s *MemoryStore) GetNote(ctx context.Context, id string) (*Note, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	note, ok := s.notes[id]
	if !ok {
		return nil, fmt.Errorf("%s: %w", id, ErrNoteNotFound)
	}
	c := *note
	return &c, nil
}

// ListNotes returns all notes, newest first.
func (s *MemoryStore) ListNotes(ctx context.Context) ([]*Note, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]*Note, 0, len(s.notes))
	for _, note := range s.notes {
		c := *note
		out = append(out, &c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

// DeleteNote removes a note by ID.
func (s *MemoryStore) DeleteNote(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.notes[id]; !ok {
		return fmt.Errorf("%s: %w", id, ErrNoteNotFound)
	}
	delete(s.notes, id)
	return nil
}

// PutTask creates or replaces a task by ID.
func (s *MemoryStore) PutTask(ctx context.Context, task *Task) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	c := *task
	s.tasks[task.ID] = &c
	return nil
}

// GetTask resolves a task by ID.
func (s *MemoryStore) GetTask(ctx context.Context, id string) (*Task, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	task, ok := s.tasks[id]
	if !ok {
		return nil, fmt.Errorf("%s: %w", id, ErrTaskNotFound)
	}
	c := *task
	return &c, nil
}

// ListTasks returns all tasks, newest first.
func (s *MemoryStore) ListTasks(ctx context.Context) ([]*Task, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]*Task, 0, len(s.tasks))
	for _, task := range s.tasks {
		c := *task
		out = append(out, &c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

// DeleteTask removes a task by ID.
func (s *MemoryStore) DeleteTask(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.tasks[id]; !ok {
		return fmt.Errorf("%s: %w", id, ErrTaskNotFound)
	}
	delete(s.tasks, id)
	return nil
}
