package identity

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

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
	GetItem(ctx context.Context, params *dynamodb.GetItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.GetItemOutput, error)
	Scan(ctx context.Context, params *dynamodb.ScanInput, optFns ...func(*dynamodb.Options)) (*dynamodb.ScanOutput, error)
}

// DynamoDBStore implements Store using AWS DynamoDB.
//
// Table schema assumptions (provisioned by `wardkeep setup`, see the
// infrastructure package):
//   - Partition key: username (String)
//   - All Identity fields stored as attributes
type DynamoDBStore struct {
	client    dynamoDBAPI
	tableName string
}

// NewDynamoDBStore creates a new DynamoDBStore using the provided AWS
// configuration. The tableName specifies the DynamoDB table for identities.
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

// dynamoItem represents the DynamoDB item structure for an Identity.
// It uses explicit field mapping for proper serialization of Go types.
type dynamoItem struct {
	Username     string `dynamodbav:"username"`
	PasswordHash string `dynamodbav:"password_hash"`
	Role         string `dynamodbav:"role"`
	Active       bool   `dynamodbav:"active"`
	CreatedAt    string `dynamodbav:"created_at"` // RFC3339
	UpdatedAt    string `dynamodbav:"updated_at"` // RFC3339
}

// identityToItem converts an Identity to a DynamoDB item structure.
func identityToItem(id *Identity) *dynamoItem {
	return &dynamoItem{
		Username:     id.Username,
		PasswordHash: id.PasswordHash,
		Role:         string(id.Role),
		Active:       id.Active,
		CreatedAt:    id.CreatedAt.Format(time.RFC3339Nano),
		UpdatedAt:    id.UpdatedAt.Format(time.RFC3339Nano),
	}
}

// itemToIdentity converts a DynamoDB item structure back to an Identity.
func itemToIdentity(item *dynamoItem) (*Identity, error) {
	createdAt, err := time.Parse(time.RFC3339Nano, item.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("parse created_at: %w", err)
	}
	updatedAt, err := time.Parse(time.RFC3339Nano, item.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("parse updated_at: %w", err)
	}

	return &Identity{
		Username:     item.Username,
		PasswordHash: item.PasswordHash,
		Role:         Role(item.Role),
		Active:       item.Active,
		CreatedAt:    createdAt,
		UpdatedAt:    updatedAt,
	}, nil
}

// Create stores a new identity. Returns ErrIdentityExists if the username is taken.
func (s *DynamoDBStore) Create(ctx context.Context, id *Identity) error {
	av, err := attributevalue.MarshalMap(identityToItem(id))
	if err != nil {
		return fmt.Errorf("marshal identity: %w", err)
	}

	_, err = s.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName:           aws.String(s.tableName),
		Item:                av,
		ConditionExpression: aws.String("attribute_not_exists(username)"),
	})
	if err != nil {
		var ccf *types.ConditionalCheckFailedException
		if errors.As(err, &ccf) {
			return fmt.Errorf("%s: %w", id.Username, ErrIdentityExists)
		}
		return warderrors.WrapDynamoDBError(err, s.tableName, "PutItem")
	}
	return nil
}

// Get retrieves an identity by username.
func (s *DynamoDBStore) Get(ctx context.Context, username string) (*Identity, error) {
	out, err := s.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName: aws.String(s.tableName),
		Key: map[string]types.AttributeValue{
			"username": &types.AttributeValueMemberS{Value: username},
		},
		ConsistentRead: aws.Bool(true),
	})
	if err != nil {
		return nil, warderrors.WrapDynamoDBError(err, s.tableName, "GetItem")
	}
	if out.Item == nil {
		return nil, fmt.Errorf("%s: %w", username, ErrIdentityNotFound)
	}

	var item dynamoItem
	if err := attributevalue.UnmarshalMap(out.Item, &item); err != nil {
		return nil, fmt.Errorf("unmarshal identity: %w", err)
	}
	return itemToIdentity(&item)
}

// Update modifies an existing identity.
func (s *DynamoDBStore) Update(ctx context.Context, id *Identity) error {
	av, err := attributevalue.MarshalMap(identityToItem(id))
	if err != nil {
		return fmt.Errorf("marshal identity: %w", err)
	}

	_, err = s.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName:           aws.String(s.tableName),
		Item:                av,
		ConditionExpression: aws.String("attribute_exists(username)"),
	})
	if err != nil {
		var ccf *types.ConditionalCheckFailedException
		if errors.As(err, &ccf) {
			return fmt.Errorf("%s: %w", id.Username, ErrIdentityNotFound)
		}
		return warderrors.WrapDynamoDBError(err, s.tableName, "PutItem")
	}
	return nil
}

// List returns identities ordered by username.
func (s *DynamoDBStore) List(ctx context.Context, limit int) ([]*Identity, error) {
	limit = capLimit(limit)

	out, err := s.client.Scan(ctx, &dynamodb.ScanInput{
		TableName: aws.String(s.tableName),
		Limit:     aws.Int32(int32(limit)),
	})
	if err != nil {
		return nil, warderrors.WrapDynamoDBError(err, s.tableName, "Scan")
	}

	identities := make([]*Identity, 0, len(out.Items))
	for _, raw := range out.Items {
		var item dynamoItem
		if err := attributevalue.UnmarshalMap(raw, &item); err != nil {
			return nil, fmt.Errorf("unmarshal identity: %w", err)
		}
		id, err := itemToIdentity(&item)
		if err != nil {
			return nil, err
		}
		identities = append(identities, id)
	}
	sort.Slice(identities, func(i, j int) bool {
		return identities[i].Username < identities[j].Username
	})
	return identities, nil
}

// Count returns the number of identities in the store.
func (s *DynamoDBStore) Count(ctx context.Context) (int, error) {
	out, err := s.client.Scan(ctx, &dynamodb.ScanInput{
		TableName:      aws.String(s.tableName),
		Select:         types.SelectCount,
		ConsistentRead: aws.Bool(true),
	})
	if err != nil {
		return 0, warderrors.WrapDynamoDBError(err, s.tableName, "Scan")
	}
	return int(out.Count), nil
}
