package cli

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/alecthomas/kingpin/v2"

	"github.com/wardkeep/wardkeep/permissions"
	"github.com/wardkeep/wardkeep/wardkeep"
)

// GrantCommandInput contains the input for the grant command.
type GrantCommandInput struct {
	Username string
	Resource string
	Access   string
	Actor    string

	// Service is an optional composed service for testing.
	// If nil, the service is built from configuration.
	Service *wardkeep.Service

	// Stdout is an optional writer for output (for testing).
	// If nil, os.Stdout will be used.
	Stdout io.Writer
}

// ConfigureGrantCommand sets up the grant command.
func ConfigureGrantCommand(app *kingpin.Application, w *Wardkeep) {
	input := GrantCommandInput{}

	cmd := app.Command("grant", "Grant an access level on a resource to an identity")

	cmd.Arg("username", "Identity receiving the grant").
		Required().
		StringVar(&input.Username)

	cmd.Arg("resource", "Resource type (NOTE or TASK)").
		Required().
		StringVar(&input.Resource)

	cmd.Arg("access", "Access level (VIEW, ADD, CHANGE, DELETE; READ, WRITE and UPDATE are accepted aliases)").
		Required().
		StringVar(&input.Access)

	cmd.Flag("actor", "Identity performing the grant (defaults to the current session)").
		StringVar(&input.Actor)

	cmd.Action(func(c *kingpin.ParseContext) error {
		ctx := context.Background()
		if input.Service == nil {
			svc, err := w.Service(ctx)
			if err != nil {
				return err
			}
			input.Service = svc
		}
		err := GrantCommand(ctx, input)
		app.FatalIfError(err, "grant")
		return nil
	})
}

// GrantCommand executes the grant command logic.
func GrantCommand(ctx context.Context, input GrantCommandInput) error {
	stdout := input.Stdout
	if stdout == nil {
		stdout = os.Stdout
	}

	actor, err := resolveUsername(input.Actor)
	if err != nil {
		return err
	}

	res, err := permissions.ParseResource(input.Resource)
	if err != nil {
		return err
	}
	access, err := permissions.ParseAccess(input.Access)
	if err != nil {
		return err
	}

	set, err := input.Service.Grant(ctx, actor, input.Username, res, access)
	if err != nil {
		return err
	}

	grant := permissions.Grant{Resource: res, Access: access}
	fmt.Fprintf(stdout, "%s %s granted to %s (now holds %d permissions)\n",
		render(styleSuccess, "ok:"), grant.Codename(), input.Username, set.Len())
	return nil
}
