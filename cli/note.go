package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"text/tabwriter"

	"github.com/alecthomas/kingpin/v2"

	"github.com/wardkeep/wardkeep/wardkeep"
)

// NoteCommandInput contains the input shared by the note subcommands.
type NoteCommandInput struct {
	Username string
	NoteID   string
	Title    string
	Body     string

	// Service is an optional composed service for testing.
	// If nil, the service is built from configuration.
	Service *wardkeep.Service

	// Stdout is an optional writer for output (for testing).
	// If nil, os.Stdout will be used.
	Stdout io.Writer
}

// ConfigureNoteCommand sets up the note command and its subcommands.
// Every subcommand runs through the permission guard, so a denied action
// produces an audit record and never touches the store.
func ConfigureNoteCommand(app *kingpin.Application, w *Wardkeep) {
	input := NoteCommandInput{}

	cmd := app.Command("note", "Manage notes")

	cmd.Flag("user", "Identity performing the action (defaults to the current session)").
		StringVar(&input.Username)

	add := cmd.Command("add", "Create a note")
	add.Arg("title", "Note title").Required().StringVar(&input.Title)
	add.Arg("body", "Note body").StringVar(&input.Body)
	add.Action(noteAction(app, w, &input, NoteAddCommand, "note add"))

	list := cmd.Command("list", "List notes")
	list.Action(noteAction(app, w, &input, NoteListCommand, "note list"))

	show := cmd.Command("show", "Show a note")
	show.Arg("id", "Note ID").Required().StringVar(&input.NoteID)
	show.Action(noteAction(app, w, &input, NoteShowCommand, "note show"))

	edit := cmd.Command("edit", "Replace a note's title and body")
	edit.Arg("id", "Note ID").Required().StringVar(&input.NoteID)
	edit.Arg("title", "New title").Required().StringVar(&input.Title)
	edit.Arg("body", "New body").StringVar(&input.Body)
	edit.Action(noteAction(app, w, &input, NoteEditCommand, "note edit"))

	rm := cmd.Command("rm", "Delete a note")
	rm.Arg("id", "Note ID").Required().StringVar(&input.NoteID)
	rm.Action(noteAction(app, w, &input, NoteRemoveCommand, "note rm"))
}

func noteAction(app *kingpin.Application, w *Wardkeep, input *NoteCommandInput, run func(context.Context, NoteCommandInput) error, name string) func(*kingpin.ParseContext) error {
	return func(c *kingpin.ParseContext) error {
		ctx := context.Background()
		if input.Service == nil {
			svc, err := w.Service(ctx)
			if err != nil {
				return err
			}
			input.Service = svc
		}
		err := run(ctx, *input)
		app.FatalIfError(err, name)
		return nil
	}
}

// NoteAddCommand creates a note under the ADD check.
func NoteAddCommand(ctx context.Context, input NoteCommandInput) error {
	stdout := input.Stdout
	if stdout == nil {
		stdout = os.Stdout
	}

	username, err := resolveUsername(input.Username)
	if err != nil {
		return err
	}

	note, err := input.Service.CreateNote(ctx, username, input.Title, input.Body)
	if err != nil {
		return err
	}

	fmt.Fprintf(stdout, "%s note %s created\n", render(styleSuccess, "ok:"), note.ID)
	return nil
}

// NoteListCommand lists notes under the VIEW check.
func NoteListCommand(ctx context.Context, input NoteCommandInput) error {
	stdout := input.Stdout
	if stdout == nil {
		stdout = os.Stdout
	}

	username, err := resolveUsername(input.Username)
	if err != nil {
		return err
	}

	notes, err := input.Service.ListNotes(ctx, username)
	if err != nil {
		return err
	}

	tw := tabwriter.NewWriter(stdout, 0, 2, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tOWNER\tTITLE\tUPDATED")
	for _, note := range notes {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n",
			note.ID, note.Owner, note.Title, note.UpdatedAt.Format("2006-01-02 15:04"))
	}
	return tw.Flush()
}

// NoteShowCommand resolves a single note under the VIEW check.
func NoteShowCommand(ctx context.Context, input NoteCommandInput) error {
	stdout := input.Stdout
	if stdout == nil {
		stdout = os.Stdout
	}

	username, err := resolveUsername(input.Username)
	if err != nil {
		return err
	}

	note, err := input.Service.GetNote(ctx, username, input.NoteID)
	if err != nil {
		return err
	}

	fmt.Fprintf(stdout, "%s %s (%s, updated %s)\n", render(styleHeading, note.Title),
		note.ID, note.Owner, note.UpdatedAt.Format("2006-01-02 15:04"))
	if note.Body != "" {
		fmt.Fprintln(stdout, note.Body)
	}
	return nil
}

// NoteEditCommand replaces a note's content under the CHANGE check.
func NoteEditCommand(ctx context.Context, input NoteCommandInput) error {
	stdout := input.Stdout
	if stdout == nil {
		stdout = os.Stdout
	}

	username, err := resolveUsername(input.Username)
	if err != nil {
		return err
	}

	note, err := input.Service.UpdateNote(ctx, username, input.NoteID, input.Title, input.Body)
	if err != nil {
		return err
	}

	fmt.Fprintf(stdout, "%s note %s updated\n", render(styleSuccess, "ok:"), note.ID)
	return nil
}

// NoteRemoveCommand deletes a note under the DELETE check.
func NoteRemoveCommand(ctx context.Context, input NoteCommandInput) error {
	stdout := input.Stdout
	if stdout == nil {
		stdout = os.Stdout
	}

	username, err := resolveUsername(input.Username)
	if err != nil {
		return err
	}

	if err := input.Service.DeleteNote(ctx, username, input.NoteID); err != nil {
		return err
	}

	fmt.Fprintf(stdout, "%s note %s deleted\n", render(styleSuccess, "ok:"), input.NoteID)
	return nil
}
