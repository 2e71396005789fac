package cli

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/alecthomas/kingpin/v2"

	"github.com/wardkeep/wardkeep/wardkeep"
)

// LoginCommandInput contains the input for the login command.
type LoginCommandInput struct {
	Username string
	Password string

	// Service is an optional composed service for testing.
	// If nil, the service is built from configuration.
	Service *wardkeep.Service

	// Stdout is an optional writer for output (for testing).
	// If nil, os.Stdout will be used.
	Stdout io.Writer
}

// ConfigureLoginCommand sets up the login command.
func ConfigureLoginCommand(app *kingpin.Application, w *Wardkeep) {
	input := LoginCommandInput{}

	cmd := app.Command("login", "Verify credentials and start a session")

	cmd.Arg("username", "Username to log in as").
		Required().
		StringVar(&input.Username)

	cmd.Flag("password", "Password (prompted if omitted)").
		Envar("WARDKEEP_PASSWORD").
		StringVar(&input.Password)

	cmd.Action(func(c *kingpin.ParseContext) error {
		ctx := context.Background()
		if input.Service == nil {
			svc, err := w.Service(ctx)
			if err != nil {
				return err
			}
			input.Service = svc
		}
		err := LoginCommand(ctx, input)
		app.FatalIfError(err, "login")
		return nil
	})
}

// LoginCommand executes the login command logic. Every attempt, good or
// bad, lands in the audit trail; only success updates the session file.
func LoginCommand(ctx context.Context, input LoginCommandInput) error {
	stdout := input.Stdout
	if stdout == nil {
		stdout = os.Stdout
	}

	password := input.Password
	if password == "" {
		var err error
		password, err = promptPassword("Password for " + input.Username + ":")
		if err != nil {
			return err
		}
	}

	id, err := input.Service.Login(ctx, input.Username, password)
	if err != nil {
		return err
	}

	if err := setCurrentUser(id.Username); err != nil {
		return fmt.Errorf("save session: %w", err)
	}

	fmt.Fprintf(stdout, "%s logged in as %s (%s)\n",
		render(styleSuccess, "ok:"), id.Username, id.Role)
	return nil
}
