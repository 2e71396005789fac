package audit

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

// GSI name constants for DynamoDB Global Secondary Indexes.
// The table and its indexes are created by the infrastructure
// provisioner, via `wardkeep setup`.
const (
	// GSIUsername indexes records by username with timestamp sort key.
	GSIUsername = "gsi-username"
	// GSIKind indexes records by kind with timestamp sort key.
	GSIKind = "gsi-kind"
)

// dynamoDBAPI defines the DynamoDB operations used by DynamoDBStore.
// This interface enables testing with mock implementations.
type dynamoDBAPI interface {
	PutItem(ctx context.Context, params *dynamodb.PutItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error)
	Query(ctx context.Context, params *dynamodb.QueryInput, optFns ...func(*dynamodb.Options)) (*dynamodb.QueryOutput, error)
	Scan(ctx context.Context, params *dynamodb.ScanInput, optFns ...func(*dynamodb.Options)) (*dynamodb.ScanOutput, error)
}

// DynamoDBStore implements Store using AWS DynamoDB.
//
// Table schema assumptions (provisioned by `wardkeep setup`, see the
// infrastructure package):
//   - Partition key: id (String)
//   - GSI gsi-username: partition username, sort timestamp
//   - GSI gsi-kind: partition kind, sort timestamp
//
// The store only ever issues conditional PutItem and reads; there is no
// update or delete path, preserving the append-only invariant at the
// storage layer.
type DynamoDBStore struct {
	client    dynamoDBAPI
	tableName string
}

// NewDynamoDBStore creates a new DynamoDBStore using the provided AWS
// configuration. The tableName specifies the DynamoDB table for records.
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

// dynamoItem represents the DynamoDB item structure for a Record.
type dynamoItem struct {
	ID        string `dynamodbav:"id"`
	Username  string `dynamodbav:"username"`
	Timestamp string `dynamodbav:"timestamp"` // RFC3339
	Kind      string `dynamodbav:"kind"`
	Detail    string `dynamodbav:"detail"`
	Success   bool   `dynamodbav:"success"`
}

// recordToItem converts a Record to a DynamoDB item structure.
func recordToItem(rec *Record) *dynamoItem {
	return &dynamoItem{
		ID:        rec.ID,
		Username:  rec.Username,
		Timestamp: rec.Timestamp.Format(time.RFC3339Nano),
		Kind:      string(rec.Kind),
		Detail:    rec.Detail,
		Success:   rec.Success,
	}
}

// itemToRecord converts a DynamoDB item structure back to a Record.
func itemToRecord(item *dynamoItem) (*Record, error) {
	ts, err := time.Parse(time.RFC3339Nano, item.Timestamp)
	if err != nil {
		return nil, fmt.Errorf("parse timestamp: %w", err)
	}
	return &Record{
		ID:        item.ID,
		Username:  item.Username,
		Timestamp: ts,
		Kind:      Kind(item.Kind),
		Detail:    item.Detail,
		Success:   item.Success,
	}, nil
}

// Append stores a new record.
func (s *DynamoDBStore) Append(ctx context.Context, rec *Record) error {
	av, err := attributevalue.MarshalMap(recordToItem(rec))
	if err != nil {
		return fmt.Errorf("marshal record: %w", err)
	}

	_, err = s.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName:           aws.String(s.tableName),
		Item:                av,
		ConditionExpression: aws.String("attribute_not_exists(id)"),
	})
	if err != nil {
		var ccf *types.ConditionalCheckFailedException
		if errors.As(err, &ccf) {
			return fmt.Errorf("%s: %w", rec.ID, ErrRecordExists)
		}
		return warderrors.WrapDynamoDBError(err, s.tableName, "PutItem")
	}
	return nil
}

// List returns records ordered newest first. Scan pages come back in key
// order, so the page is sorted by timestamp before returning.
func (s *DynamoDBStore) List(ctx context.Context, limit int) ([]*Record, error) {
	limit = capLimit(limit)

	out, err := s.client.Scan(ctx, &dynamodb.ScanInput{
		TableName: aws.String(s.tableName),
		Limit:     aws.Int32(int32(limit)),
	})
	if err != nil {
		return nil, warderrors.WrapDynamoDBError(err, s.tableName, "Scan")
	}
	records, err := itemsToRecords(out.Items)
	if err != nil {
		return nil, err
	}
	sort.Slice(records, func(i, j int) bool {
		return records[i].Timestamp.After(records[j].Timestamp)
	})
	return records, nil
}

// ListByUser returns records attributed to a username, newest first.
func (s *DynamoDBStore) ListByUser(ctx context.Context, username string, limit int) ([]*Record, error) {
	return s.queryGSI(ctx, GSIUsername, "username", username, limit)
}

// ListByKind returns records of a specific kind, newest first.
func (s *DynamoDBStore) ListByKind(ctx context.Context, kind Kind, limit int) ([]*Record, error) {
	return s.queryGSI(ctx, GSIKind, "kind", string(kind), limit)
}

// queryGSI queries one GSI partition, newest first.
func (s *DynamoDBStore) queryGSI(ctx context.Context, index, key, value string, limit int) ([]*Record, error) {
	limit = capLimit(limit)

	out, err := s.client.Query(ctx, &dynamodb.QueryInput{
		TableName:              aws.String(s.tableName),
		IndexName:              aws.String(index),
		KeyConditionExpression: aws.String("#k = :v"),
		ExpressionAttributeNames: map[string]string{
			"#k": key,
		},
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":v": &types.AttributeValueMemberS{Value: value},
		},
		ScanIndexForward: aws.Bool(false), // newest first
		Limit:            aws.Int32(int32(limit)),
	})
	if err != nil {
		return nil, warderrors.WrapDynamoDBError(err, s.tableName, "Query")
	}
	return itemsToRecords(out.Items)
}

// itemsToRecords unmarshals a page of raw items.
func itemsToRecords(items []map[string]types.AttributeValue) ([]*Record, error) {
	records := make([]*Record, 0, len(items))
	for _, raw := range items {
		var item dynamoItem
		if err := attributevalue.UnmarshalMap(raw, &item); err != nil {
			return nil, fmt.Errorf("unmarshal record: %w", err)
		}
		rec, err := itemToRecord(&item)
		if err != nil {
			return nil, err
		}
		records = append(records, rec)
	}
	return records, nil
}
