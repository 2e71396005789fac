package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/alecthomas/kingpin/v2"

	"github.com/wardkeep/wardkeep/infrastructure"
)

// SetupCommandInput contains the input for the setup command.
type SetupCommandInput struct {
	Plan       bool
	JSONOutput bool

	// Provisioner is an optional provisioner for testing.
	// If nil, one is built from the AWS configuration.
	Provisioner *infrastructure.TableProvisioner

	// Schemas are the table schemas to provision, for testing.
	// If nil, they are derived from configuration.
	Schemas []infrastructure.TableSchema

	// Stdout is an optional writer for output (for testing).
	// If nil, os.Stdout will be used.
	Stdout io.Writer
}

// ConfigureSetupCommand sets up the setup command.
func ConfigureSetupCommand(app *kingpin.Application, w *Wardkeep) {
	input := SetupCommandInput{}

	cmd := app.Command("setup", "Create the DynamoDB tables wardkeep stores data in")

	cmd.Flag("plan", "Show what would be created without touching DynamoDB").
		BoolVar(&input.Plan)

	cmd.Flag("json", "Output in JSON format").
		BoolVar(&input.JSONOutput)

	cmd.Action(func(c *kingpin.ParseContext) error {
		ctx := context.Background()

		cfg, err := w.Config()
		if err != nil {
			app.FatalIfError(err, "setup")
			return nil
		}
		if input.Schemas == nil {
			input.Schemas = infrastructure.AllTableSchemas(cfg)
		}
		if input.Provisioner == nil && !input.Plan {
			awsCfg, err := w.AWSConfig(ctx, cfg.Region)
			if err != nil {
				app.FatalIfError(err, "setup")
				return nil
			}
			input.Provisioner = infrastructure.NewTableProvisioner(awsCfg)
		}

		err = SetupCommand(ctx, input)
		app.FatalIfError(err, "setup")
		return nil
	})
}

// SetupCommand executes the setup command logic. With --plan it prints
// the table layouts without calling DynamoDB at all, so it works before
// any credentials are configured.
func SetupCommand(ctx context.Context, input SetupCommandInput) error {
	stdout := input.Stdout
	if stdout == nil {
		stdout = os.Stdout
	}

	if input.Plan {
		return setupPlan(stdout, input)
	}
	return setupCreate(ctx, stdout, input)
}

func setupPlan(stdout io.Writer, input SetupCommandInput) error {
	planner := input.Provisioner
	if planner == nil {
		planner = &infrastructure.TableProvisioner{}
	}

	plans := make([]*infrastructure.ProvisionPlan, 0, len(input.Schemas))
	for _, schema := range input.Schemas {
		plan, err := planner.Plan(schema)
		if err != nil {
			return err
		}
		plans = append(plans, plan)
	}

	if input.JSONOutput {
		jsonBytes, err := json.MarshalIndent(plans, "", "  ")
		if err != nil {
			return err
		}
		fmt.Fprintln(stdout, string(jsonBytes))
		return nil
	}

	for _, plan := range plans {
		fmt.Fprintf(stdout, "%s %s\n", render(styleHeading, "table:"), plan.TableName)
		fmt.Fprintf(stdout, "  partition key: %s\n", plan.PartitionKey)
		if plan.SortKey != "" {
			fmt.Fprintf(stdout, "  sort key: %s\n", plan.SortKey)
		}
		if len(plan.GSIs) > 0 {
			fmt.Fprintf(stdout, "  indexes: %s\n", strings.Join(plan.GSIs, ", "))
		}
		fmt.Fprintf(stdout, "  billing: %s\n", plan.BillingMode)
	}
	return nil
}

func setupCreate(ctx context.Context, stdout io.Writer, input SetupCommandInput) error {
	results := make([]*infrastructure.ProvisionResult, 0, len(input.Schemas))
	var failed bool
	for _, schema := range input.Schemas {
		result, err := input.Provisioner.Create(ctx, schema)
		if err != nil {
			return err
		}
		if result.Status == infrastructure.StatusFailed {
			failed = true
		}
		results = append(results, result)
	}

	if input.JSONOutput {
		jsonBytes, err := json.MarshalIndent(results, "", "  ")
		if err != nil {
			return err
		}
		fmt.Fprintln(stdout, string(jsonBytes))
	} else {
		for _, result := range results {
			switch result.Status {
			case infrastructure.StatusCreated:
				fmt.Fprintf(stdout, "%s created table %s\n", render(styleSuccess, "ok:"), result.TableName)
			case infrastructure.StatusExists:
				fmt.Fprintf(stdout, "%s table %s already exists\n", render(styleSuccess, "ok:"), result.TableName)
			case infrastructure.StatusFailed:
				fmt.Fprintf(stdout, "%s table %s: %v\n", render(styleFailure, "failed:"), result.TableName, result.Error)
			}
		}
	}

	if failed {
		return fmt.Errorf("one or more tables could not be created")
	}
	return nil
}
