package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"text/tabwriter"

	"github.com/alecthomas/kingpin/v2"

	"github.com/wardkeep/wardkeep/audit"
	"github.com/wardkeep/wardkeep/wardkeep"
)

// AuditCommandInput contains the input for the audit command.
type AuditCommandInput struct {
	Username   string
	Kind       string
	Limit      int
	JSONOutput bool

	// Service is an optional composed service for testing.
	// If nil, the service is built from configuration.
	Service *wardkeep.Service

	// Stdout is an optional writer for output (for testing).
	// If nil, os.Stdout will be used.
	Stdout io.Writer
}

// ConfigureAuditCommand sets up the audit command.
func ConfigureAuditCommand(app *kingpin.Application, w *Wardkeep) {
	input := AuditCommandInput{}

	cmd := app.Command("audit", "Show the audit trail, newest first")

	cmd.Flag("user", "Only show records attributed to this identity").
		StringVar(&input.Username)

	cmd.Flag("kind", "Only show records of this kind (e.g. login, grant, delete_note)").
		StringVar(&input.Kind)

	cmd.Flag("limit", "Maximum number of records to show").
		Default("50").
		IntVar(&input.Limit)

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
		err := AuditCommand(ctx, input)
		app.FatalIfError(err, "audit")
		return nil
	})
}

// AuditCommand executes the audit command logic. The user and kind
// filters are mutually exclusive because each maps to its own store query.
func AuditCommand(ctx context.Context, input AuditCommandInput) error {
	stdout := input.Stdout
	if stdout == nil {
		stdout = os.Stdout
	}

	if input.Username != "" && input.Kind != "" {
		return fmt.Errorf("--user and --kind cannot be combined")
	}

	var records []*audit.Record
	var err error
	switch {
	case input.Username != "":
		records, err = input.Service.AuditLogFor(ctx, input.Username, input.Limit)
	case input.Kind != "":
		kind := audit.Kind(input.Kind)
		if !kind.IsValid() {
			return fmt.Errorf("unknown audit kind %q", input.Kind)
		}
		records, err = input.Service.AuditLogByKind(ctx, kind, input.Limit)
	default:
		records, err = input.Service.AuditLog(ctx, input.Limit)
	}
	if err != nil {
		return err
	}

	if input.JSONOutput {
		jsonBytes, err := json.MarshalIndent(records, "", "  ")
		if err != nil {
			return err
		}
		fmt.Fprintln(stdout, string(jsonBytes))
		return nil
	}

	tw := tabwriter.NewWriter(stdout, 0, 2, 2, ' ', 0)
	fmt.Fprintln(tw, "TIME\tUSER\tKIND\tOK\tDETAIL")
	for _, rec := range records {
		status := render(styleSuccess, "yes")
		if !rec.Success {
			status = render(styleFailure, "no")
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n",
			rec.Timestamp.Format("2006-01-02 15:04:05"), rec.Username, rec.Kind, status, rec.Detail)
	}
	return tw.Flush()
}
