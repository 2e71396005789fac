package cli

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/alecthomas/kingpin/v2"

	"github.com/wardkeep/wardkeep/wardkeep"
)

// LogoutCommandInput contains the input for the logout command.
type LogoutCommandInput struct {
	Username string

	// Service is an optional composed service for testing.
	// If nil, the service is built from configuration.
	Service *wardkeep.Service

	// Stdout is an optional writer for output (for testing).
	// If nil, os.Stdout will be used.
	Stdout io.Writer
}

// ConfigureLogoutCommand sets up the logout command.
func ConfigureLogoutCommand(app *kingpin.Application, w *Wardkeep) {
	input := LogoutCommandInput{}

	cmd := app.Command("logout", "End the current session")

	cmd.Flag("user", "Username to log out (defaults to the current session)").
		StringVar(&input.Username)

	cmd.Action(func(c *kingpin.ParseContext) error {
		ctx := context.Background()
		if input.Service == nil {
			svc, err := w.Service(ctx)
			if err != nil {
				return err
			}
			input.Service = svc
		}
		err := LogoutCommand(ctx, input)
		app.FatalIfError(err, "logout")
		return nil
	})
}

// LogoutCommand executes the logout command logic. The session file is
// cleared even when the identity was already logged out, so a stale file
// never wedges the CLI.
func LogoutCommand(ctx context.Context, input LogoutCommandInput) error {
	stdout := input.Stdout
	if stdout == nil {
		stdout = os.Stdout
	}

	username, err := resolveUsername(input.Username)
	if err != nil {
		return err
	}

	logoutErr := input.Service.Logout(ctx, username)

	if err := clearCurrentUser(); err != nil {
		return fmt.Errorf("clear session: %w", err)
	}
	if logoutErr != nil {
		return logoutErr
	}

	fmt.Fprintf(stdout, "%s %s logged out\n", render(styleSuccess, "ok:"), username)
	return nil
}
