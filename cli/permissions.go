package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/alecthomas/kingpin/v2"

	"github.com/wardkeep/wardkeep/permissions"
	"github.com/wardkeep/wardkeep/wardkeep"
)

// PermissionsCommandInput contains the input for the permissions command.
type PermissionsCommandInput struct {
	Username   string
	JSONOutput bool

	// Service is an optional composed service for testing.
	// If nil, the service is built from configuration.
	Service *wardkeep.Service

	// Stdout is an optional writer for output (for testing).
	// If nil, os.Stdout will be used.
	Stdout io.Writer
}

// ConfigurePermissionsCommand sets up the permissions command.
func ConfigurePermissionsCommand(app *kingpin.Application, w *Wardkeep) {
	input := PermissionsCommandInput{}

	cmd := app.Command("permissions", "Show the grant set held by an identity")

	cmd.Flag("user", "Identity to inspect (defaults to the current session)").
		StringVar(&input.Username)

	cmd.Flag("json", "Output in JSON format").
		BoolVar(&input.JSONOutput)

	cmd.Action(func(c *kingpin.ParseContext) error {
		ctx := context.Background()
		if input.Service == nil {
			svc, err := w.Service(ctx)
			if err != nil {
				return err
			}
			input.Service = svc
		}
		err := PermissionsCommand(ctx, input)
		app.FatalIfError(err, "permissions")
		return nil
	})
}

// PermissionsCommand executes the permissions command logic. Grants are
// shown grouped by resource with one line per resource.
func PermissionsCommand(ctx context.Context, input PermissionsCommandInput) error {
	stdout := input.Stdout
	if stdout == nil {
		stdout = os.Stdout
	}

	username, err := resolveUsername(input.Username)
	if err != nil {
		return err
	}

	set, err := input.Service.PermissionsOf(ctx, username)
	if err != nil {
		return err
	}

	if input.JSONOutput {
		jsonBytes, err := json.MarshalIndent(set.Grants(), "", "  ")
		if err != nil {
			return err
		}
		fmt.Fprintln(stdout, string(jsonBytes))
		return nil
	}

	fmt.Fprintf(stdout, "%s\n\n", render(styleHeading, "Permissions for "+username))
	if set.Len() == 0 {
		fmt.Fprintln(stdout, "  (none)")
		return nil
	}
	for _, res := range permissions.AllResources() {
		accesses := set.AccessOn(res)
		if len(accesses) == 0 {
			continue
		}
		fmt.Fprintf(stdout, "  %-6s", res)
		for _, access := range accesses {
			fmt.Fprintf(stdout, " %s", access)
		}
		fmt.Fprintln(stdout)
	}
	return nil
}
