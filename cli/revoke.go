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

// RevokeCommandInput contains the input for the revoke command.
type RevokeCommandInput struct {
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

// ConfigureRevokeCommand sets up the revoke command.
func ConfigureRevokeCommand(app *kingpin.Application, w *Wardkeep) {
	input := RevokeCommandInput{}

	cmd := app.Command("revoke", "Revoke an access level on a resource from an identity")

	cmd.Arg("username", "Identity losing the grant").
		Required().
		StringVar(&input.Username)

	cmd.Arg("resource", "Resource type (NOTE or TASK)").
		Required().
		StringVar(&input.Resource)

	cmd.Arg("access", "Access level (VIEW, ADD, CHANGE, DELETE; READ, WRITE and UPDATE are accepted aliases)").
		Required().
		StringVar(&input.Access)

	cmd.Flag("actor", "Identity performing the revoke (defaults to the current session)").
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
		err := RevokeCommand(ctx, input)
		app.FatalIfError(err, "revoke")
		return nil
	})
}

// RevokeCommand executes the revoke command logic.
func RevokeCommand(ctx context.Context, input RevokeCommandInput) error {
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

	set, err := input.Service.Revoke(ctx, actor, input.Username, res, access)
	if err != nil {
		return err
	}

	grant := permissions.Grant{Resource: res, Access: access}
	fmt.Fprintf(stdout, "%s %s revoked from %s (now holds %d permissions)\n",
		render(styleSuccess, "ok:"), grant.Codename(), input.Username, set.Len())
	return nil
}
