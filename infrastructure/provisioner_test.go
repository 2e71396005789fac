package infrastructure

import (
	"context"
	"errors"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
)

// mockDynamoDB implements dynamoDBProvisionerAPI with behavior functions.
type mockDynamoDB struct {
	createTableFunc   func(ctx context.Context, params *dynamodb.CreateTableInput, optFns ...func(*dynamodb.Options)) (*dynamodb.CreateTableOutput, error)
	describeTableFunc func(ctx context.Context, params *dynamodb.DescribeTableInput, optFns ...func(*dynamodb.Options)) (*dynamodb.DescribeTableOutput, error)

	createCalls   int
	describeCalls int
}

func (m *mockDynamoDB) CreateTable(ctx context.Context, params *dynamodb.CreateTableInput, optFns ...func(*dynamodb.Options)) (*dynamodb.CreateTableOutput, error) {
	m.createCalls++
	return m.createTableFunc(ctx, params, optFns...)
}

func (m *mockDynamoDB) DescribeTable(ctx context.Context, params *dynamodb.DescribeTableInput, optFns ...func(*dynamodb.Options)) (*dynamodb.DescribeTableOutput, error) {
	m.describeCalls++
	return m.describeTableFunc(ctx, params, optFns...)
}

func describeOutput(status types.TableStatus, arn string) *dynamodb.DescribeTableOutput {
	return &dynamodb.DescribeTableOutput{
		Table: &types.TableDescription{
			TableStatus: status,
			TableArn:    aws.String(arn),
		},
	}
}

func TestCreateTableAlreadyActive(t *testing.T) {
	mock := &mockDynamoDB{
		describeTableFunc: func(ctx context.Context, params *dynamodb.DescribeTableInput, optFns ...func(*dynamodb.Options)) (*dynamodb.DescribeTableOutput, error) {
			return describeOutput(types.TableStatusActive, "arn:aws:dynamodb:::table/t"), nil
		},
	}
	p := newTableProvisionerWithClient(mock)

	result, err := p.Create(context.Background(), IdentityTableSchema("t"))
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if result.Status != StatusExists {
		t.Errorf("status = %s, want EXISTS", result.Status)
	}
	if mock.createCalls != 0 {
		t.Errorf("CreateTable called %d times for existing table", mock.createCalls)
	}
}

func TestCreateTableNotFound(t *testing.T) {
	described := 0
	mock := &mockDynamoDB{
		describeTableFunc: func(ctx context.Context, params *dynamodb.DescribeTableInput, optFns ...func(*dynamodb.Options)) (*dynamodb.DescribeTableOutput, error) {
			described++
			if described == 1 {
				return nil, &types.ResourceNotFoundException{}
			}
			return describeOutput(types.TableStatusActive, "arn:aws:dynamodb:::table/t"), nil
		},
		createTableFunc: func(ctx context.Context, params *dynamodb.CreateTableInput, optFns ...func(*dynamodb.Options)) (*dynamodb.CreateTableOutput, error) {
			if aws.ToString(params.TableName) != "t" {
				t.Errorf("table name = %s", aws.ToString(params.TableName))
			}
			return &dynamodb.CreateTableOutput{}, nil
		},
	}
	p := newTableProvisionerWithClient(mock)

	result, err := p.Create(context.Background(), IdentityTableSchema("t"))
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if result.Status != StatusCreated {
		t.Errorf("status = %s, want CREATED", result.Status)
	}
	if mock.createCalls != 1 {
		t.Errorf("CreateTable calls = %d", mock.createCalls)
	}
}

func TestCreateTableConcurrentCreation(t *testing.T) {
	described := 0
	mock := &mockDynamoDB{
		describeTableFunc: func(ctx context.Context, params *dynamodb.DescribeTableInput, optFns ...func(*dynamodb.Options)) (*dynamodb.DescribeTableOutput, error) {
			described++
			if described == 1 {
				return nil, &types.ResourceNotFoundException{}
			}
			return describeOutput(types.TableStatusActive, "arn"), nil
		},
		createTableFunc: func(ctx context.Context, params *dynamodb.CreateTableInput, optFns ...func(*dynamodb.Options)) (*dynamodb.CreateTableOutput, error) {
			return nil, &types.ResourceInUseException{}
		},
	}
	p := newTableProvisionerWithClient(mock)

	result, err := p.Create(context.Background(), IdentityTableSchema("t"))
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if result.Status != StatusExists {
		t.Errorf("status = %s, want EXISTS after concurrent creation", result.Status)
	}
}

func TestCreateTableFailure(t *testing.T) {
	mock := &mockDynamoDB{
		describeTableFunc: func(ctx context.Context, params *dynamodb.DescribeTableInput, optFns ...func(*dynamodb.Options)) (*dynamodb.DescribeTableOutput, error) {
			return nil, &types.ResourceNotFoundException{}
		},
		createTableFunc: func(ctx context.Context, params *dynamodb.CreateTableInput, optFns ...func(*dynamodb.Options)) (*dynamodb.CreateTableOutput, error) {
			return nil, errors.New("access denied")
		},
	}
	p := newTableProvisionerWithClient(mock)

	result, err := p.Create(context.Background(), IdentityTableSchema("t"))
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if result.Status != StatusFailed || result.Error == nil {
		t.Errorf("result = %+v, want FAILED with error", result)
	}
}

func TestCreateTableInvalidSchema(t *testing.T) {
	p := newTableProvisionerWithClient(&mockDynamoDB{})
	if _, err := p.Create(context.Background(), TableSchema{}); err == nil {
		t.Fatal("expected error for invalid schema")
	}
}

func TestTableStatusNotFound(t *testing.T) {
	mock := &mockDynamoDB{
		describeTableFunc: func(ctx context.Context, params *dynamodb.DescribeTableInput, optFns ...func(*dynamodb.Options)) (*dynamodb.DescribeTableOutput, error) {
			return nil, &types.ResourceNotFoundException{}
		},
	}
	p := newTableProvisionerWithClient(mock)

	status, err := p.TableStatus(context.Background(), "absent")
	if err != nil {
		t.Fatalf("TableStatus: %v", err)
	}
	if status != "NOT_FOUND" {
		t.Errorf("status = %s", status)
	}
}

func TestPlan(t *testing.T) {
	p := newTableProvisionerWithClient(&mockDynamoDB{})

	plan, err := p.Plan(AuditTableSchema("wardkeep-audit"))
	if err != nil {
		t.Fatalf("Plan: %v", err)
	}
	if plan.TableName != "wardkeep-audit" || plan.PartitionKey != "id" {
		t.Errorf("plan = %+v", plan)
	}
	if len(plan.GSIs) != 2 {
		t.Errorf("GSIs = %v", plan.GSIs)
	}
	if plan.BillingMode != string(BillingModePayPerRequest) {
		t.Errorf("billing mode = %s", plan.BillingMode)
	}
}

func TestSchemaToCreateTableInput(t *testing.T) {
	input := schemaToCreateTableInput(AuditTableSchema("wardkeep-audit"))

	// id, username, kind, timestamp: each defined exactly once even
	// though timestamp keys two indexes.
	if len(input.AttributeDefinitions) != 4 {
		t.Errorf("attribute definitions = %d", len(input.AttributeDefinitions))
	}
	if len(input.KeySchema) != 1 || aws.ToString(input.KeySchema[0].AttributeName) != "id" {
		t.Errorf("key schema = %+v", input.KeySchema)
	}
	if len(input.GlobalSecondaryIndexes) != 2 {
		t.Errorf("GSIs = %d", len(input.GlobalSecondaryIndexes))
	}
	if input.BillingMode != types.BillingModePayPerRequest {
		t.Errorf("billing mode = %s", input.BillingMode)
	}

	grantInput := schemaToCreateTableInput(GrantTableSchema("wardkeep-grants"))
	if len(grantInput.KeySchema) != 2 {
		t.Errorf("grant table key schema = %+v", grantInput.KeySchema)
	}
}
