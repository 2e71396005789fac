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

// TaskCommandInput contains the input shared by the task subcommands.
type TaskCommandInput struct {
	Username string
	TaskID   string
	Title    string

	// Service is an optional composed service for testing.
	// If nil, the service is built from configuration.
	Service *wardkeep.Service

	// Stdout is an optional writer for output (for testing).
	// If nil, os.Stdout will be used.
	Stdout io.Writer
}

// ConfigureTaskCommand sets up the task command and its subcommands.
func ConfigureTaskCommand(app *kingpin.Application, w *Wardkeep) {
	input := TaskCommandInput{}

	cmd := app.Command("task", "Manage tasks")

	cmd.Flag("user", "Identity performing the action (defaults to the current session)").
		StringVar(&input.Username)

	add := cmd.Command("add", "Create a task")
	add.Arg("title", "Task title").Required().StringVar(&input.Title)
	add.Action(taskAction(app, w, &input, TaskAddCommand, "task add"))

	list := cmd.Command("list", "List tasks")
	list.Action(taskAction(app, w, &input, TaskListCommand, "task list"))

	show := cmd.Command("show", "Show a task")
	show.Arg("id", "Task ID").Required().StringVar(&input.TaskID)
	show.Action(taskAction(app, w, &input, TaskShowCommand, "task show"))

	done := cmd.Command("done", "Mark a task as done")
	done.Arg("id", "Task ID").Required().StringVar(&input.TaskID)
	done.Action(taskAction(app, w, &input, TaskDoneCommand, "task done"))

	rm := cmd.Command("rm", "Delete a task")
	rm.Arg("id", "Task ID").Required().StringVar(&input.TaskID)
	rm.Action(taskAction(app, w, &input, TaskRemoveCommand, "task rm"))
}

func taskAction(app *kingpin.Application, w *Wardkeep, input *TaskCommandInput, run func(context.Context, TaskCommandInput) error, name string) func(*kingpin.ParseContext) error {
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

// TaskAddCommand creates a task under the ADD check.
func TaskAddCommand(ctx context.Context, input TaskCommandInput) error {
	stdout := input.Stdout
	if stdout == nil {
		stdout = os.Stdout
	}

	username, err := resolveUsername(input.Username)
	if err != nil {
		return err
	}

	task, err := input.Service.CreateTask(ctx, username, input.Title)
	if err != nil {
		return err
	}

	fmt.Fprintf(stdout, "%s task %s created\n", render(styleSuccess, "ok:"), task.ID)
	return nil
}

// TaskListCommand lists tasks under the VIEW check.
func TaskListCommand(ctx context.Context, input TaskCommandInput) error {
	stdout := input.Stdout
	if stdout == nil {
		stdout = os.Stdout
	}

	username, err := resolveUsername(input.Username)
	if err != nil {
		return err
	}

	tasks, err := input.Service.ListTasks(ctx, username)
	if err != nil {
		return err
	}

	tw := tabwriter.NewWriter(stdout, 0, 2, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tOWNER\tTITLE\tDONE")
	for _, task := range tasks {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%t\n", task.ID, task.Owner, task.Title, task.Done)
	}
	return tw.Flush()
}

// TaskShowCommand resolves a single task under the VIEW check.
func TaskShowCommand(ctx context.Context, input TaskCommandInput) error {
	stdout := input.Stdout
	if stdout == nil {
		stdout = os.Stdout
	}

	username, err := resolveUsername(input.Username)
	if err != nil {
		return err
	}

	task, err := input.Service.GetTask(ctx, username, input.TaskID)
	if err != nil {
		return err
	}

	status := "open"
	if task.Done {
		status = "done"
	}
	fmt.Fprintf(stdout, "%s %s (%s, %s)\n", render(styleHeading, task.Title),
		task.ID, task.Owner, status)
	return nil
}

// TaskDoneCommand marks a task done under the CHANGE check.
func TaskDoneCommand(ctx context.Context, input TaskCommandInput) error {
	stdout := input.Stdout
	if stdout == nil {
		stdout = os.Stdout
	}

	username, err := resolveUsername(input.Username)
	if err != nil {
		return err
	}

	task, err := input.Service.CompleteTask(ctx, username, input.TaskID)
	if err != nil {
		return err
	}

	fmt.Fprintf(stdout, "%s task %s marked done\n", render(styleSuccess, "ok:"), task.ID)
	return nil
}

// TaskRemoveCommand deletes a task under the DELETE check.
func TaskRemoveCommand(ctx context.Context, input TaskCommandInput) error {
	stdout := input.Stdout
	if stdout == nil {
		stdout = os.Stdout
	}

	username, err := resolveUsername(input.Username)
	if err != nil {
		return err
	}

	if err := input.Service.DeleteTask(ctx, username, input.TaskID); err != nil {
		return err
	}

	fmt.Fprintf(stdout, "%s task %s deleted\n", render(styleSuccess, "ok:"), input.TaskID)
	return nil
}
