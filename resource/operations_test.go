package resource

import (
	"context"
	"errors"
	"testing"

	"github.com/wardkeep/wardkeep/guard"
)

func runOp(t *testing.T, op guard.Operation) *guard.Result {
	t.Helper()
	result, err := op(context.Background())
	if err != nil {
		t.Fatalf("operation failed: %v", err)
	}
	return result
}

func TestCreateNoteOperation(t *testing.T) {
	store := NewMemoryStore()
	ops := NewOperations(store, store)

	result := runOp(t, ops.CreateNote("alice", "groceries", "milk, eggs"))

	note, ok := result.Value.(*Note)
	if !ok {
		t.Fatalf("expected *Note value, got %T", result.Value)
	}
	if note.Owner != "alice" || note.Title != "groceries" {
		t.Errorf("note = %+v", note)
	}
	if note.ID == "" {
		t.Error("expected assigned note ID")
	}
	if result.Detail != `Note created with title "groceries"` {
		t.Errorf("detail = %q", result.Detail)
	}

	stored, err := store.GetNote(context.Background(), note.ID)
	if err != nil {
		t.Fatalf("GetNote: %v", err)
	}
	if stored.Body != "milk, eggs" {
		t.Errorf("stored body = %q", stored.Body)
	}
}

func TestCreateNoteEmptyTitle(t *testing.T) {
	store := NewMemoryStore()
	ops := NewOperations(store, store)

	_, err := ops.CreateNote("alice", "", "body")(context.Background())
	if !errors.Is(err, ErrEmptyTitle) {
		t.Errorf("expected ErrEmptyTitle, got %v", err)
	}
}

func TestListNotesOperation(t *testing.T) {
	store := NewMemoryStore()
	ops := NewOperations(store, store)

	runOp(t, ops.CreateNote("alice", "one", ""))
	runOp(t, ops.CreateNote("alice", "two", ""))

	result := runOp(t, ops.ListNotes())
	notes, ok := result.Value.([]*Note)
	if !ok {
		t.Fatalf("expected []*Note value, got %T", result.Value)
	}
	if len(notes) != 2 {
		t.Errorf("expected 2 notes, got %d", len(notes))
	}
	if result.Detail != "Note list retrieved" {
		t.Errorf("detail = %q", result.Detail)
	}
}

func TestShowNoteOperation(t *testing.T) {
	store := NewMemoryStore()
	ops := NewOperations(store, store)

	created := runOp(t, ops.CreateNote("alice", "groceries", "milk")).Value.(*Note)
	result := runOp(t, ops.ShowNote(created.ID))

	shown := result.Value.(*Note)
	if shown.Title != "groceries" || shown.Body != "milk" {
		t.Errorf("shown = %+v", shown)
	}
	if result.Detail != "Note "+created.ID+" retrieved" {
		t.Errorf("detail = %q", result.Detail)
	}

	_, err := ops.ShowNote("ffffffffffffffff")(context.Background())
	if !errors.Is(err, ErrNoteNotFound) {
		t.Errorf("expected ErrNoteNotFound, got %v", err)
	}
}

func TestShowTaskOperation(t *testing.T) {
	store := NewMemoryStore()
	ops := NewOperations(store, store)

	created := runOp(t, ops.CreateTask("alice", "pay rent")).Value.(*Task)
	shown := runOp(t, ops.ShowTask(created.ID)).Value.(*Task)
	if shown.Title != "pay rent" || shown.Done {
		t.Errorf("shown = %+v", shown)
	}

	_, err := ops.ShowTask("ffffffffffffffff")(context.Background())
	if !errors.Is(err, ErrTaskNotFound) {
		t.Errorf("expected ErrTaskNotFound, got %v", err)
	}
}

func TestUpdateNoteOperation(t *testing.T) {
	store := NewMemoryStore()
	ops := NewOperations(store, store)

	created := runOp(t, ops.CreateNote("alice", "draft", "v1")).Value.(*Note)
	result := runOp(t, ops.UpdateNote(created.ID, "final", "v2"))

	updated := result.Value.(*Note)
	if updated.Title != "final" || updated.Body != "v2" {
		t.Errorf("updated = %+v", updated)
	}

	_, err := ops.UpdateNote("ffffffffffffffff", "x", "y")(context.Background())
	if !errors.Is(err, ErrNoteNotFound) {
		t.Errorf("expected ErrNoteNotFound, got %v", err)
	}
}

func TestDeleteNoteOperation(t *testing.T) {
	store := NewMemoryStore()
	ops := NewOperations(store, store)

	created := runOp(t, ops.CreateNote("alice", "temp", "")).Value.(*Note)
	result := runOp(t, ops.DeleteNote(created.ID))
	if result.Detail != "Note "+created.ID+" deleted" {
		t.Errorf("detail = %q", result.Detail)
	}

	_, err := ops.DeleteNote(created.ID)(context.Background())
	if !errors.Is(err, ErrNoteNotFound) {
		t.Errorf("expected ErrNoteNotFound, got %v", err)
	}
}

func TestTaskOperations(t *testing.T) {
	store := NewMemoryStore()
	ops := NewOperations(store, store)

	result := runOp(t, ops.CreateTask("alice", "pay rent"))
	task := result.Value.(*Task)
	if result.Detail != `Task created with title "pay rent"` {
		t.Errorf("detail = %q", result.Detail)
	}

	completed := runOp(t, ops.CompleteTask(task.ID)).Value.(*Task)
	if !completed.Done {
		t.Error("expected task marked done")
	}

	listed := runOp(t, ops.ListTasks()).Value.([]*Task)
	if len(listed) != 1 || !listed[0].Done {
		t.Errorf("listed = %+v", listed)
	}

	runOp(t, ops.DeleteTask(task.ID))
	if _, err := ops.CompleteTask(task.ID)(context.Background()); !errors.Is(err, ErrTaskNotFound) {
		t.Errorf("expected ErrTaskNotFound, got %v", err)
	}
}
