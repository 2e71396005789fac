package infrastructure

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"

	warderrors "github.com/wardkeep/wardkeep/errors"
)

// ProvisionStatus represents the result status of a provision operation.
type ProvisionStatus string

const (
	// StatusCreated indicates the table was created successfully.
	StatusCreated ProvisionStatus = "CREATED"
	// StatusExists indicates the table already exists and is active.
	StatusExists ProvisionStatus = "EXISTS"
	// StatusFailed indicates the provision operation failed.
	StatusFailed ProvisionStatus = "FAILED"
)

// Backoff configuration for waiting on table status.
const (
	initialBackoff = 1 * time.Second
	maxBackoff     = 30 * time.Second
	waitTimeout    = 5 * time.Minute
)

// dynamoDBProvisionerAPI defines the DynamoDB operations used by TableProvisioner.
// This interface enables testing with mock implementations.
type dynamoDBProvisionerAPI interface {
	CreateTable(ctx context.Context, params *dynamodb.CreateTableInput, optFns ...func(*dynamodb.Options)) (*dynamodb.CreateTableOutput, error)
	DescribeTable(ctx context.Context, params *dynamodb.DescribeTableInput, optFns ...func(*dynamodb.Options)) (*dynamodb.DescribeTableOutput, error)
}

// TableProvisioner handles DynamoDB table creation for the Wardkeep
// stores. Creation is idempotent: an existing ACTIVE table is a success.
type TableProvisioner struct {
	client dynamoDBProvisionerAPI
}

// NewTableProvisioner creates a new TableProvisioner using the provided
// AWS configuration.
func NewTableProvisioner(cfg aws.Config) *TableProvisioner {
	return &TableProvisioner{client: dynamodb.NewFromConfig(cfg)}
}

// newTableProvisionerWithClient creates a TableProvisioner with a custom
// client for testing.
func newTableProvisionerWithClient(client dynamoDBProvisionerAPI) *TableProvisioner {
	return &TableProvisioner{client: client}
}

// ProvisionResult contains the result of a table provisioning operation.
type ProvisionResult struct {
	// TableName is the name of the table.
	TableName string `json:"table_name"`
	// Status indicates the operation result.
	Status ProvisionStatus `json:"status"`
	// ARN is the table ARN (set when created or exists).
	ARN string `json:"arn,omitempty"`
	// Error is the error if status is FAILED.
	Error error `json:"error,omitempty"`
}

// ProvisionPlan describes what would be created for a table.
type ProvisionPlan struct {
	// TableName is the name of the table.
	TableName string `json:"table_name"`
	// PartitionKey is the table's partition key attribute.
	PartitionKey string `json:"partition_key"`
	// SortKey is the table's sort key attribute, if any.
	SortKey string `json:"sort_key,omitempty"`
	// GSIs lists the GSI names that would be created.
	GSIs []string `json:"gsis,omitempty"`
	// BillingMode is the billing mode that would be set.
	BillingMode string `json:"billing_mode"`
}

// Create provisions a DynamoDB table from the given schema.
// If the table exists but is still being created, Create waits for it to
// become ACTIVE before returning.
func (p *TableProvisioner) Create(ctx context.Context, schema TableSchema) (*ProvisionResult, error) {
	if err := schema.Validate(); err != nil {
		return nil, fmt.Errorf("invalid schema: %w", err)
	}

	status, arn, err := p.getTableStatus(ctx, schema.TableName)
	if err != nil {
		return nil, err
	}

	switch status {
	case "ACTIVE":
		return &ProvisionResult{TableName: schema.TableName, Status: StatusExists, ARN: arn}, nil

	case "CREATING", "UPDATING":
		return p.awaitExisting(ctx, schema.TableName)

	case "NOT_FOUND":
		output, err := p.client.CreateTable(ctx, schemaToCreateTableInput(schema))
		if err != nil {
			// Concurrent creation by another process counts as success.
			var riu *types.ResourceInUseException
			if errors.As(err, &riu) {
				return p.awaitExisting(ctx, schema.TableName)
			}
			return &ProvisionResult{
				TableName: schema.TableName,
				Status:    StatusFailed,
				Error:     warderrors.WrapDynamoDBError(err, schema.TableName, "CreateTable"),
			}, nil
		}

		arn, err := p.waitForActive(ctx, schema.TableName)
		if err != nil {
			return &ProvisionResult{TableName: schema.TableName, Status: StatusFailed, Error: err}, nil
		}
		if arn == "" && output.TableDescription != nil {
			arn = aws.ToString(output.TableDescription.TableArn)
		}
		return &ProvisionResult{TableName: schema.TableName, Status: StatusCreated, ARN: arn}, nil

	default:
		return &ProvisionResult{
			TableName: schema.TableName,
			Status:    StatusFailed,
			Error:     fmt.Errorf("table exists with unexpected status: %s", status),
		}, nil
	}
}

// Plan returns what would be created for the given schema without making
// changes or touching DynamoDB, so it works before any permissions exist.
func (p *TableProvisioner) Plan(schema TableSchema) (*ProvisionPlan, error) {
	if err := schema.Validate(); err != nil {
		return nil, fmt.Errorf("invalid schema: %w", err)
	}

	plan := &ProvisionPlan{
		TableName:    schema.TableName,
		PartitionKey: schema.PartitionKey.Name,
		GSIs:         schema.GSINames(),
		BillingMode:  string(BillingModePayPerRequest),
	}
	if schema.SortKey != nil {
		plan.SortKey = schema.SortKey.Name
	}
	if schema.BillingMode != "" {
		plan.BillingMode = string(schema.BillingMode)
	}
	return plan, nil
}

// TableStatus returns the current status of a table.
// Returns "NOT_FOUND" if the table doesn't exist.
func (p *TableProvisioner) TableStatus(ctx context.Context, tableName string) (string, error) {
	status, _, err := p.getTableStatus(ctx, tableName)
	return status, err
}

// awaitExisting waits for a table created elsewhere to become ACTIVE.
func (p *TableProvisioner) awaitExisting(ctx context.Context, tableName string) (*ProvisionResult, error) {
	arn, err := p.waitForActive(ctx, tableName)
	if err != nil {
		return &ProvisionResult{TableName: tableName, Status: StatusFailed, Error: err}, nil
	}
	return &ProvisionResult{TableName: tableName, Status: StatusExists, ARN: arn}, nil
}

// getTableStatus checks if a table exists and returns its status and ARN.
// Returns ("NOT_FOUND", "", nil) if the table doesn't exist.
func (p *TableProvisioner) getTableStatus(ctx context.Context, tableName string) (string, string, error) {
	output, err := p.client.DescribeTable(ctx, &dynamodb.DescribeTableInput{
		TableName: aws.String(tableName),
	})
	if err != nil {
		var rnf *types.ResourceNotFoundException
		if errors.As(err, &rnf) {
			return "NOT_FOUND", "", nil
		}
		return "", "", warderrors.WrapDynamoDBError(err, tableName, "DescribeTable")
	}
	if output.Table == nil {
		return "NOT_FOUND", "", nil
	}
	return string(output.Table.TableStatus), aws.ToString(output.Table.TableArn), nil
}

// waitForActive polls until the table reaches ACTIVE status or timeout,
// with exponential backoff between polls.
func (p *TableProvisioner) waitForActive(ctx context.Context, tableName string) (string, error) {
	backoff := initialBackoff
	deadline := time.Now().Add(waitTimeout)

	for {
		if time.Now().After(deadline) {
			return "", fmt.Errorf("timeout waiting for table %s to become ACTIVE", tableName)
		}

		status, arn, err := p.getTableStatus(ctx, tableName)
		if err != nil {
			return "", err
		}
		if status == "ACTIVE" {
			return arn, nil
		}
		if status == "NOT_FOUND" || status == "DELETING" {
			return "", fmt.Errorf("table %s is %s", tableName, status)
		}

		select {
		case <-ctx.Done():
			return "", ctx.Err()
		case <-time.After(backoff):
		}
		backoff *= 2
		if backoff > maxBackoff {
			backoff = maxBackoff
		}
	}
}

// schemaToCreateTableInput converts a TableSchema to a DynamoDB
// CreateTableInput, collecting attribute definitions from the table keys
// and every GSI key.
func schemaToCreateTableInput(schema TableSchema) *dynamodb.CreateTableInput {
	attrDefs := make(map[string]types.AttributeDefinition)
	addAttr := func(ka KeyAttribute) {
		attrDefs[ka.Name] = types.AttributeDefinition{
			AttributeName: aws.String(ka.Name),
			AttributeType: types.ScalarAttributeType(ka.Type),
		}
	}

	addAttr(schema.PartitionKey)
	if schema.SortKey != nil {
		addAttr(*schema.SortKey)
	}
	for _, gsi := range schema.GlobalSecondaryIndexes {
		addAttr(gsi.PartitionKey)
		if gsi.SortKey != nil {
			addAttr(*gsi.SortKey)
		}
	}

	attrDefSlice := make([]types.AttributeDefinition, 0, len(attrDefs))
	for _, ad := range attrDefs {
		attrDefSlice = append(attrDefSlice, ad)
	}

	keySchema := []types.KeySchemaElement{
		{AttributeName: aws.String(schema.PartitionKey.Name), KeyType: types.KeyTypeHash},
	}
	if schema.SortKey != nil {
		keySchema = append(keySchema, types.KeySchemaElement{
			AttributeName: aws.String(schema.SortKey.Name),
			KeyType:       types.KeyTypeRange,
		})
	}

	var gsis []types.GlobalSecondaryIndex
	for _, gsi := range schema.GlobalSecondaryIndexes {
		gsiKeySchema := []types.KeySchemaElement{
			{AttributeName: aws.String(gsi.PartitionKey.Name), KeyType: types.KeyTypeHash},
		}
		if gsi.SortKey != nil {
			gsiKeySchema = append(gsiKeySchema, types.KeySchemaElement{
				AttributeName: aws.String(gsi.SortKey.Name),
				KeyType:       types.KeyTypeRange,
			})
		}
		gsis = append(gsis, types.GlobalSecondaryIndex{
			IndexName:  aws.String(gsi.IndexName),
			KeySchema:  gsiKeySchema,
			Projection: &types.Projection{ProjectionType: types.ProjectionTypeAll},
		})
	}

	billingMode := types.BillingModePayPerRequest
	if schema.BillingMode != "" {
		billingMode = types.BillingMode(schema.BillingMode)
	}

	input := &dynamodb.CreateTableInput{
		TableName:            aws.String(schema.TableName),
		AttributeDefinitions: attrDefSlice,
		KeySchema:            keySchema,
		BillingMode:          billingMode,
	}
	if len(gsis) > 0 {
		input.GlobalSecondaryIndexes = gsis
	}
	return input
}
