package cli

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/alecthomas/kingpin/v2"

	"github.com/wardkeep/wardkeep/identity"
	"github.com/wardkeep/wardkeep/wardkeep"
)

// RegisterCommandInput contains the input for the register command.
type RegisterCommandInput struct {
	Username string
	Password string
	Admin    bool

	// Service is an optional composed service for testing.
	// If nil, the service is built from configuration.
	Service *wardkeep.Service

	// Stdout is an optional writer for output (for testing).
	// If nil, os.Stdout will be used.
	Stdout io.Writer
}

// ConfigureRegisterCommand sets up the register command.
func ConfigureRegisterCommand(app *kingpin.Application, w *Wardkeep) {
	input := RegisterCommandInput{}

	cmd := app.Command("register", "Register a new identity and log it in")

	cmd.Arg("username", "Username of the new identity").
		Required().
		StringVar(&input.Username)

	cmd.Flag("password", "Password for the new identity (prompted if omitted)").
		Envar("WARDKEEP_PASSWORD").
		StringVar(&input.Password)

	cmd.Flag("admin", "Request the ADMIN role for the new identity").
		BoolVar(&input.Admin)

	cmd.Action(func(c *kingpin.ParseContext) error {
		ctx := context.Background()
		if input.Service == nil {
			svc, err := w.Service(ctx)
			if err != nil {
				return err
			}
			input.Service = svc
		}
		err := RegisterCommand(ctx, input)
		app.FatalIfError(err, "register")
		return nil
	})
}

// RegisterCommand executes the register command logic. Registration
// doubles as the first login: the new identity comes back with an active
// session, and the local session file is updated to it.
func RegisterCommand(ctx context.Context, input RegisterCommandInput) error {
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
		confirm, err := promptPassword("Confirm password:")
		if err != nil {
			return err
		}
		if password != confirm {
			return fmt.Errorf("passwords do not match")
		}
	}

	role := identity.RoleUser
	if input.Admin {
		role = identity.RoleAdmin
	}

	id, err := input.Service.Register(ctx, input.Username, password, role)
	if err != nil {
		return err
	}

	if err := setCurrentUser(id.Username); err != nil {
		return fmt.Errorf("save session: %w", err)
	}

	fmt.Fprintf(stdout, "%s %s registered with role %s and logged in\n",
		render(styleSuccess, "ok:"), id.Username, id.Role)
	return nil
}
