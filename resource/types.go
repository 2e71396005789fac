// Package resource implements the gated resources themselves: notes and
// tasks. Operations are exposed as guard closures so every call runs under
// a permission check and lands in the audit trail.
package resource

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
	"time"
)

var (
	// ErrNoteNotFound is returned when a note ID resolves to nothing.
	ErrNoteNotFound = errors.New("note not found")

	// ErrTaskNotFound is returned when a task ID resolves to nothing.
	ErrTaskNotFound = errors.New("task not found")

	// ErrEmptyTitle is returned when a note or task is created without a title.
	ErrEmptyTitle = errors.New("title must not be empty")
)

// Note is a free-text note.
type Note struct {
	// ID is the unique note identifier (16 lowercase hex chars).
	ID string `yaml:"id" json:"id"`

	// Owner names the identity that created the note.
	Owner string `yaml:"owner" json:"owner"`

	// Title is the note's display title.
	Title string `yaml:"title" json:"title"`

	// Body is the note's content.
	Body string `yaml:"body" json:"body"`

	// CreatedAt is when the note was created.
	CreatedAt time.Time `yaml:"created_at" json:"created_at"`

	// UpdatedAt is when the note was last modified.
	UpdatedAt time.Time `yaml:"updated_at" json:"updated_at"`
}

// Task is a unit of work with a done flag.
type Task struct {
	// ID is the unique task identifier (16 lowercase hex chars).
	ID string `yaml:"id" json:"id"`

	// Owner names the identity that created the task.
	Owner string `yaml:"owner" json:"owner"`

	// Title is the task's display title.
	Title string `yaml:"title" json:"title"`

	// Done reports whether the task is complete.
	Done bool `yaml:"done" json:"done"`

	// CreatedAt is when the task was created.
	CreatedAt time.Time `yaml:"created_at" json:"created_at"`

	// UpdatedAt is when the task was last modified.
	UpdatedAt time.Time `yaml:"updated_at" json:"updated_at"`
}

// newID generates a 16-character lowercase hex identifier.
func newID() string {
	bytes := make([]byte, 8)
	if _, err := rand.Read(bytes); err != nil {
		// This should never happen with crypto/rand.
		return "0000000000000000"
	}
	return hex.EncodeToString(bytes)
}
