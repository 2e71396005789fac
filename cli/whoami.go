package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/alecthomas/kingpin/v2"

	"github.com/wardkeep/wardkeep/wardkeep"
)

// WhoamiCommandInput contains the input for the whoami command.
type WhoamiCommandInput struct {
	JSONOutput bool

	// Service is an optional composed service for testing.
	// If nil, the service is built from configuration.
	Service *wardkeep.Service

	// Stdout is an optional writer for output (for testing).
	// If nil, os.Stdout will be used.
	Stdout io.Writer
}

// WhoamiResult represents the JSON output format for the whoami command.
type WhoamiResult struct {
	Username    string   `json:"username"`
	Role        string   `json:"role"`
	Active      bool     `json:"active"`
	Permissions []string `json:"permissions"`
}

// ConfigureWhoamiCommand sets up the whoami command.
func ConfigureWhoamiCommand(app *kingpin.Application, w *Wardkeep) {
	input := WhoamiCommandInput{}

	cmd := app.Command("whoami", "Show the current identity and its permissions")

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
		err := WhoamiCommand(ctx, input)
		app.FatalIfError(err, "whoami")
		return nil
	})
}

// WhoamiCommand executes the whoami command logic.
func WhoamiCommand(ctx context.Context, input WhoamiCommandInput) error {
	stdout := input.Stdout
	if stdout == nil {
		stdout = os.Stdout
	}

	username, err := resolveUsername("")
	if err != nil {
		return err
	}

	id, err := input.Service.Identity(ctx, username)
	if err != nil {
		return err
	}

	set, err := input.Service.PermissionsOf(ctx, username)
	if err != nil {
		return err
	}
	codenames := []string{}
	for _, grant := range set.Grants() {
		codenames = append(codenames, grant.Codename())
	}

	result := WhoamiResult{
		Username:    id.Username,
		Role:        id.Role.String(),
		Active:      id.Active,
		Permissions: codenames,
	}

	if input.JSONOutput {
		jsonBytes, err := json.MarshalIndent(result, "", "  ")
		if err != nil {
			return err
		}
		fmt.Fprintln(stdout, string(jsonBytes))
		return nil
	}

	fmt.Fprintln(stdout, render(styleHeading, "Wardkeep Identity"))
	fmt.Fprintln(stdout)
	fmt.Fprintf(stdout, "Username: %s\n", result.Username)
	fmt.Fprintf(stdout, "Role:     %s\n", result.Role)
	fmt.Fprintf(stdout, "Active:   %t\n", result.Active)
	fmt.Fprintln(stdout, "Permissions:")
	for _, codename := range result.Permissions {
		fmt.Fprintf(stdout, "  - %s\n", codename)
	}
	return nil
}
