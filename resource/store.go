package resource

import "context"

// NoteStore defines the interface for note persistence.
// Implementations must be safe for concurrent use.
type NoteStore interface {
	// PutNote creates or replaces a note by ID.
	PutNote(ctx context.Context, note *Note) error

	// GetNote resolves a note by ID. Returns ErrNoteNotFound if absent.
	GetNote(ctx context.Context, id string) (*Note, error)

	// ListNotes returns all notes, newest first.
	ListNotes(ctx context.Context) ([]*Note, error)

	// DeleteNote removes a note by ID. Returns ErrNoteNotFound if absent.
	DeleteNote(ctx context.Context, id string) error
}

// TaskStore defines the interface for task persistence.
// Implementations must be safe for concurrent use.
type TaskStore interface {
	// PutTask creates or replaces a task by ID.
	PutTask(ctx context.Context, task *Task) error

	// GetTask resolves a task by ID. Returns ErrTaskNotFound if absent.
	GetTask(ctx context.Context, id string) (*Task, error)

	// ListTasks returns all tasks, newest first.
	ListTasks(ctx context.Context) ([]*Task, error)

	// DeleteTask removes a task by ID. Returns ErrTaskNotFound if absent.
	DeleteTask(ctx context.Context, id string) error
}
