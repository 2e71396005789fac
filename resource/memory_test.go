package resource

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestMemoryStoreNoteLifecycle(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()

	note := &Note{ID: "0000000000000001", Owner: "alice", Title: "groceries", Body: "milk"}
	if err := store.PutNote(ctx, note); err != nil {
		t.Fatalf("PutNote: %v", err)
	}

	got, err := store.GetNote(ctx, note.ID)
	if err != nil {
		t.Fatalf("GetNote: %v", err)
	}
	if got.Title != "groceries" || got.Owner != "alice" {
		t.Errorf("got %+v", got)
	}

	if err := store.DeleteNote(ctx, note.ID); err != nil {
		t.Fatalf("DeleteNote: %v", err)
	}
	if _, err := store.GetNote(ctx, note.ID); !errors.Is(err, ErrNoteNotFound) {
		t.Errorf("expected ErrNoteNotFound, got %v", err)
	}
	if err := store.DeleteNote(ctx, note.ID); !errors.Is(err, ErrNoteNotFound) {
		t.Errorf("expected ErrNoteNotFound on double delete, got %v", err)
	}
}

func TestMemoryStoreListNotesNewestFirst(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	base := time.Date(2026, 8, 29, 12, 0, 0, 0, time.UTC)

	for i := 0; i < 3; i++ {
		store.PutNote(ctx, &Note{
			ID:        string(rune('a' + i)),
			Title:     "n",
			CreatedAt: base.Add(time.Duration(i) * time.Minute),
		})
	}

	notes, err := store.ListNotes(ctx)
	if err != nil {
		t.Fatalf("ListNotes: %v", err)
	}
	if len(notes) != 3 {
		t.Fatalf("expected 3 notes, got %d", len(notes))
	}
	if notes[0].ID != "c" {
		t.Errorf("expected newest note first, got %s", notes[0].ID)
	}
}

func TestMemoryStoreReturnsNoteCopies(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()

	store.PutNote(ctx, &Note{ID: "0000000000000001", Title: "original"})

	got, _ := store.GetNote(ctx, "0000000000000001")
	got.Title = "mutated"

	again, _ := store.GetNote(ctx, "0000000000000001")
	if again.Title != "original" {
		t.Error("mutating a returned note must not affect the stored note")
	}
}

func TestMemoryStoreTaskLifecycle(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()

	task := &Task{ID: "0000000000000001", Owner: "alice", Title: "pay rent"}
	if err := store.PutTask(ctx, task); err != nil {
		t.Fatalf("PutTask: %v", err)
	}

	got, err := store.GetTask(ctx, task.ID)
	if err != nil {
		t.Fatalf("GetTask: %v", err)
	}
	if got.Done {
		t.Error("new task must not be done")
	}

	got.Done = true
	store.PutTask(ctx, got)
	again, _ := store.GetTask(ctx, task.ID)
	if !again.Done {
		t.Error("expected done flag to persist")
	}

	if err := store.DeleteTask(ctx, task.ID); err != nil {
		t.Fatalf("DeleteTask: %v", err)
	}
	if _, err := store.GetTask(ctx, task.ID); !errors.Is(err, ErrTaskNotFound) {
		t.Errorf("expected ErrTaskNotFound, got %v", err)
	}
}
