package resource

import (
	"context"
	"fmt"
	"time"

	"github.com/wardkeep/wardkeep/guard"
)

// Operations builds guard closures over a resource store. Each method
// returns an operation ready to hand to the permission guard; nothing here
// touches the store until the guard lets the closure run.
type Operations struct {
	notes NoteStore
	tasks TaskStore
	now   func() time.Time
}

// NewOperations creates resource operations over the given stores.
func NewOperations(notes NoteStore, tasks TaskStore) *Operations {
	return &Operations{
		notes: notes,
		tasks: tasks,
		now:   time.Now,
	}
}

// CreateNote returns an operation that creates a note owned by owner.
func (o *Operations) CreateNote(owner, title, body string) guard.Operation {
	return func(ctx context.Context) (*guard.Result, error) {
		if title == "" {
			return nil, ErrEmptyTitle
		}
		now := o.now().UTC()
		note := &Note{
			ID:        newID(),
			Owner:     owner,
			Title:     title,
			Body:      body,
			CreatedAt: now,
			UpdatedAt: now,
		}
		if err := o.notes.PutNote(ctx, note); err != nil {
			return nil, err
		}
		return &guard.Result{
			Value:  note,
			Detail: fmt.Sprintf("Note created with title %q", title),
		}, nil
	}
}

// ListNotes returns an operation that lists all notes.
func (o *Operations) ListNotes() guard.Operation {
	return func(ctx context.Context) (*guard.Result, error) {
		notes, err := o.notes.ListNotes(ctx)
		if err != nil {
			return nil, err
		}
		return &guard.Result{
			Value:  notes,
			Detail: "Note list retrieved",
		}, nil
	}
}

// ShowNote returns an operation that resolves a single note.
func (o *Operations) ShowNote(id string) guard.Operation {
	return func(ctx context.Context) (*guard.Result, error) {
		note, err := o.notes.GetNote(ctx, id)
		if err != nil {
			return nil, err
		}
		return &guard.Result{
			Value:  note,
			Detail: fmt.Sprintf("Note %s retrieved", id),
		}, nil
	}
}

// UpdateNote returns an operation that replaces a note's title and body.
func (o *Operations) UpdateNote(id, title, body string) guard.Operation {
	return func(ctx context.Context) (*guard.Result, error) {
		if title == "" {
			return nil, ErrEmptyTitle
		}
		note, err := o.notes.GetNote(ctx, id)
		if err != nil {
			return nil, err
		}
		note.Title = title
		note.Body = body
		note.UpdatedAt = o.now().UTC()
		if err := o.notes.PutNote(ctx, note); err != nil {
			return nil, err
		}
		return &guard.Result{
			Value:  note,
			Detail: fmt.Sprintf("Note %s updated with title %q", id, title),
		}, nil
	}
}

// DeleteNote returns an operation that removes a note.
func (o *Operations) DeleteNote(id string) guard.Operation {
	return func(ctx context.Context) (*guard.Result, error) {
		if err := o.notes.DeleteNote(ctx, id); err != nil {
			return nil, err
		}
		return &guard.Result{
			Detail: fmt.Sprintf("Note %s deleted", id),
		}, nil
	}
}

// CreateTask returns an operation that creates a task owned by owner.
func (o *Operations) CreateTask(owner, title string) guard.Operation {
	return func(ctx context.Context) (*guard.Result, error) {
		if title == "" {
			return nil, ErrEmptyTitle
		}
		now := o.now().UTC()
		task := &Task{
			ID:        newID(),
			Owner:     owner,
			Title:     title,
			CreatedAt: now,
			UpdatedAt: now,
		}
		if err := o.tasks.PutTask(ctx, task); err != nil {
			return nil, err
		}
		return &guard.Result{
			Value:  task,
			Detail: fmt.Sprintf("Task created with title %q", title),
		}, nil
	}
}

// ListTasks returns an operation that lists all tasks.
func (o *Operations) ListTasks() guard.Operation {
	return func(ctx context.Context) (*guard.Result, error) {
		tasks, err := o.tasks.ListTasks(ctx)
		if err != nil {
			return nil, err
		}
		return &guard.Result{
			Value:  tasks,
			Detail: "Task list retrieved",
		}, nil
	}
}

// ShowTask returns an operation that resolves a single task.
func (o *Operations) ShowTask(id string) guard.Operation {
	return func(ctx context.Context) (*guard.Result, error) {
		task, err := o.tasks.GetTask(ctx, id)
		if err != nil {
			return nil, err
		}
		return &guard.Result{
			Value:  task,
			Detail: fmt.Sprintf("Task %s retrieved", id),
		}, nil
	}
}

// CompleteTask returns an operation that marks a task done.
func (o *Operations) CompleteTask(id string) guard.Operation {
	return func(ctx context.Context) (*guard.Result, error) {
		task, err := o.tasks.GetTask(ctx, id)
		if err != nil {
			return nil, err
		}
		task.Done = true
		task.UpdatedAt = o.now().UTC()
		if err := o.tasks.PutTask(ctx, task); err != nil {
			return nil, err
		}
		return &guard.Result{
			Value:  task,
			Detail: fmt.Sprintf("Task %s marked done", id),
		}, nil
	}
}

// DeleteTask returns an operation that removes a task.
func (o *Operations) DeleteTask(id string) guard.Operation {
	return func(ctx context.Context) (*guard.Result, error) {
		if err := o.tasks.DeleteTask(ctx, id); err != nil {
			return nil, err
		}
		return &guard.Result{
			Detail: fmt.Sprintf("Task %s deleted", id),
		}, nil
	}
}
