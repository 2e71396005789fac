package permissions

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	warderrors "github.com/wardkeep/wardkeep/errors"
)

// dynamoDBAPI defines the DynamoDB operations used by DynamoDBStore.
// This interface enables testing with mock implementations.
type dynamoDBAPI interface {
	PutItem(ctx context.Context, params *dynamodb.PutItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error)
	DeleteItem(ctx context.Context, params *dynamodb.DeleteItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.DeleteItemOutput, error)
	Query(ctx context.Context, params *dynamodb.QueryInput, optFns ...func(*dynamodb.Options)) (*dynamodb.QueryOutput, error)
}

// DynamoDBStore implements Store using AWS DynamoDB.
//
// Table schema assumptions (provisioned by `wardkeep setup`, see the
// infrastructure package):
//   - Partition key: username (String)
//   - Sort key: grant (String, codename form e.g. "view_note")
//
// A grant is one item; idempotency falls out of PutItem/DeleteItem being
// last-writer-wins on the composite key.
type DynamoDBStore struct {
	client    dynamoDBAPI
	tableName string
}

// NewDynamoDBStore creates a new DynamoDBStore using the provided AWS
// configuration. The tableName specifies the DynamoDB table for grants.
func NewDynamoDBStore(cfg aws.Config, tableName string) *DynamoDBStore {
	return &DynamoDBStore{
		client:    dynamodb.NewFromConfig(cfg),
		tableName: tableName,
	}
}

// newDynamoDBStoreWithClient creates a DynamoDBStore with a custom client.
// This is primarily used for testing with mock clients.
func newDynamoDBStoreWithClient(client dynamoDBAPI, tableName string) *DynamoDBStore {
	return &DynamoDBStore{
		client:    client,
		tableName: tableName,
	}
}

// dynamoGrantItem represents the DynamoDB item structure for a Grant.
type dynamoGrantItem struct {
	Username string `dynamodbav:"username"`
	GrantKey string `dynamodbav:"grant"` // codename, e.g. "view_note"
	Resource string `dynamodbav:"resource"`
	Access   string `dynamodbav:"access"`
}

// Put stores a grant for a username. Idempotent.
func (s *DynamoDBStore) Put(ctx context.Context, username string, grant Grant) error {
	av, err := attributevalue.MarshalMap(&dynamoGrantItem{
		Username: username,
		GrantKey: grant.Codename(),
		Resource: string(grant.Resource),
		Access:   string(grant.Access),
	})
	if err != nil {
		return fmt.Errorf("marshal grant: %w", err)
	}

	_, err = s.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(s.tableName),
		Item:      av,
	})
	if err != nil {
		return warderrors.WrapDynamoDBError(err, s.tableName, "PutItem")
	}
	return nil
}

// Delete removes a grant from a username. Idempotent.
func (s *DynamoDBStore) Delete(ctx context.Context, username string, grant Grant) error {
	_, err := s.client.DeleteItem(ctx, &dynamodb.DeleteItemInput{
		TableName: aws.String(s.tableName),
		Key: map[string]types.AttributeValue{
			"username": &types.AttributeValueMemberS{Value: username},
			"grant":    &types.AttributeValueMemberS{Value: grant.Codename()},
		},
	})
	if err != nil {
		return warderrors.WrapDynamoDBError(err, s.tableName, "DeleteItem")
	}
	return nil
}

// List returns all grants held by a username.
func (s *DynamoDBStore) List(ctx context.Context, username string) ([]Grant, error) {
	out, err := s.client.Query(ctx, &dynamodb.QueryInput{
		TableName:              aws.String(s.tableName),
		KeyConditionExpression: aws.String("username = :u"),
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":u": &types.AttributeValueMemberS{Value: username},
		},
		ConsistentRead: aws.Bool(true),
	})
	if err != nil {
		return nil, warderrors.WrapDynamoDBError(err, s.tableName, "Query")
	}

	grants := make([]Grant, 0, len(out.Items))
	for _, raw := range out.Items {
		var item dynamoGrantItem
		if err := attributevalue.UnmarshalMap(raw, &item); err != nil {
			return nil, fmt.Errorf("unmarshal grant: %w", err)
		}
		g := Grant{Resource: Resource(item.Resource), Access: Access(item.Access)}
		if !g.IsValid() {
			return nil, fmt.Errorf("stored grant %q has unknown resource or access", item.GrantKey)
		}
		grants = append(grants, g)
	}
	return grants, nil
}
