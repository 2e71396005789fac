package cli

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/wardkeep/wardkeep/guard"
)

func TestNoteAddAndList(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()
	registerUser(t, svc, "alice")

	out := output(t, func(stdout *bytes.Buffer) error {
		return NoteAddCommand(ctx, NoteCommandInput{
			Username: "alice",
			Title:    "groceries",
			Body:     "milk",
			Service:  svc,
			Stdout:   stdout,
		})
	})
	if !strings.Contains(out, "created") {
		t.Errorf("output = %q", out)
	}

	out = output(t, func(stdout *bytes.Buffer) error {
		return NoteListCommand(ctx, NoteCommandInput{
			Username: "alice",
			Service:  svc,
			Stdout:   stdout,
		})
	})
	if !strings.Contains(out, "groceries") {
		t.Errorf("list output = %q", out)
	}
}

func TestNoteShow(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()
	registerUser(t, svc, "alice")

	note, err := svc.CreateNote(ctx, "alice", "groceries", "milk")
	if err != nil {
		t.Fatalf("CreateNote: %v", err)
	}

	out := output(t, func(stdout *bytes.Buffer) error {
		return NoteShowCommand(ctx, NoteCommandInput{
			Username: "alice",
			NoteID:   note.ID,
			Service:  svc,
			Stdout:   stdout,
		})
	})
	if !strings.Contains(out, "groceries") || !strings.Contains(out, "milk") {
		t.Errorf("output = %q", out)
	}
}

func TestNoteEditAndRemove(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()
	registerUser(t, svc, "alice")

	note, err := svc.CreateNote(ctx, "alice", "groceries", "milk")
	if err != nil {
		t.Fatalf("CreateNote: %v", err)
	}

	out := output(t, func(stdout *bytes.Buffer) error {
		return NoteEditCommand(ctx, NoteCommandInput{
			Username: "alice",
			NoteID:   note.ID,
			Title:    "groceries",
			Body:     "milk, eggs",
			Service:  svc,
			Stdout:   stdout,
		})
	})
	if !strings.Contains(out, "updated") {
		t.Errorf("output = %q", out)
	}

	out = output(t, func(stdout *bytes.Buffer) error {
		return NoteRemoveCommand(ctx, NoteCommandInput{
			Username: "alice",
			NoteID:   note.ID,
			Service:  svc,
			Stdout:   stdout,
		})
	})
	if !strings.Contains(out, "deleted") {
		t.Errorf("output = %q", out)
	}
}

func TestNoteAddDeniedForViewer(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()
	registerUser(t, svc, "alice") // admin
	registerUser(t, svc, "bob")   // view-only

	err := NoteAddCommand(ctx, NoteCommandInput{
		Username: "bob",
		Title:    "sneaky",
		Service:  svc,
		Stdout:   &bytes.Buffer{},
	})
	if !errors.Is(err, guard.ErrPermissionDenied) {
		t.Fatalf("expected ErrPermissionDenied, got %v", err)
	}

	// The denial is on the record, and no note was created.
	notes, err := svc.ListNotes(ctx, "alice")
	if err != nil {
		t.Fatalf("ListNotes: %v", err)
	}
	if len(notes) != 0 {
		t.Errorf("denied add still created %d notes", len(notes))
	}
}
