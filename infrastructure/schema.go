// Package infrastructure provisions Wardkeep's DynamoDB tables: the
// identity table, the grant table, and the audit table with its
// username and kind indexes.
package infrastructure

import (
	"errors"
	"fmt"

	"github.com/wardkeep/wardkeep/audit"
	"github.com/wardkeep/wardkeep/config"
)

// KeyType represents a DynamoDB attribute type for keys.
type KeyType string

const (
	// KeyTypeString represents the DynamoDB String type.
	KeyTypeString KeyType = "S"
	// KeyTypeNumber represents the DynamoDB Number type.
	KeyTypeNumber KeyType = "N"
	// KeyTypeBinary represents the DynamoDB Binary type.
	KeyTypeBinary KeyType = "B"
)

// IsValid returns true if the KeyType is a valid DynamoDB key type.
func (kt KeyType) IsValid() bool {
	return kt == KeyTypeString || kt == KeyTypeNumber || kt == KeyTypeBinary
}

// String returns the string representation of the KeyType.
func (kt KeyType) String() string {
	return string(kt)
}

// BillingMode represents DynamoDB table billing mode.
type BillingMode string

const (
	// BillingModePayPerRequest is on-demand billing mode.
	BillingModePayPerRequest BillingMode = "PAY_PER_REQUEST"
	// BillingModeProvisioned is provisioned capacity billing mode.
	BillingModeProvisioned BillingMode = "PROVISIONED"
)

// IsValid returns true if the BillingMode is a valid DynamoDB billing mode.
func (bm BillingMode) IsValid() bool {
	return bm == BillingModePayPerRequest || bm == BillingModeProvisioned
}

// String returns the string representation of the BillingMode.
func (bm BillingMode) String() string {
	return string(bm)
}

// KeyAttribute represents a key attribute definition for DynamoDB tables.
type KeyAttribute struct {
	// Name is the attribute name used as a key.
	Name string
	// Type is the DynamoDB attribute type (S, N, B).
	Type KeyType
}

// Validate checks if the KeyAttribute has valid values.
func (ka KeyAttribute) Validate() error {
	if ka.Name == "" {
		return errors.New("key attribute name is required")
	}
	if !ka.Type.IsValid() {
		return fmt.Errorf("invalid key type %q: must be S, N, or B", ka.Type)
	}
	return nil
}

// GSISchema represents a Global Secondary Index definition.
// All Wardkeep indexes project every attribute.
type GSISchema struct {
	// IndexName is the name of the GSI.
	IndexName string
	// PartitionKey is the partition key for this GSI.
	PartitionKey KeyAttribute
	// SortKey is the optional sort key for this GSI.
	SortKey *KeyAttribute
}

// Validate checks if the GSISchema has valid values.
func (gsi GSISchema) Validate() error {
	if gsi.IndexName == "" {
		return errors.New("GSI index name is required")
	}
	if err := gsi.PartitionKey.Validate(); err != nil {
		return fmt.Errorf("GSI %q partition key: %w", gsi.IndexName, err)
	}
	if gsi.SortKey != nil {
		if err := gsi.SortKey.Validate(); err != nil {
			return fmt.Errorf("GSI %q sort key: %w", gsi.IndexName, err)
		}
	}
	return nil
}

// TableSchema represents a complete DynamoDB table schema definition.
type TableSchema struct {
	// TableName is the name of the DynamoDB table.
	TableName string
	// PartitionKey is the table's partition key.
	PartitionKey KeyAttribute
	// SortKey is the optional sort key for the table.
	SortKey *KeyAttribute
	// GlobalSecondaryIndexes are the GSIs for this table.
	GlobalSecondaryIndexes []GSISchema
	// BillingMode is the table's billing mode.
	BillingMode BillingMode
}

// Validate checks if the TableSchema has valid values.
func (ts TableSchema) Validate() error {
	if ts.TableName == "" {
		return errors.New("table name is required")
	}
	if err := ts.PartitionKey.Validate(); err != nil {
		return fmt.Errorf("partition key: %w", err)
	}
	if ts.SortKey != nil {
		if err := ts.SortKey.Validate(); err != nil {
			return fmt.Errorf("sort key: %w", err)
		}
	}
	for i, gsi := range ts.GlobalSecondaryIndexes {
		if err := gsi.Validate(); err != nil {
			return fmt.Errorf("GSI[%d]: %w", i, err)
		}
	}
	if ts.BillingMode != "" && !ts.BillingMode.IsValid() {
		return fmt.Errorf("invalid billing mode %q", ts.BillingMode)
	}
	return nil
}

// GSINames returns a list of all GSI names in this schema.
func (ts TableSchema) GSINames() []string {
	names := make([]string, len(ts.GlobalSecondaryIndexes))
	for i, gsi := range ts.GlobalSecondaryIndexes {
		names[i] = gsi.IndexName
	}
	return names
}

// IdentityTableSchema returns the schema for the identity table.
// Identities are keyed by username alone; lookups never need an index.
func IdentityTableSchema(tableName string) TableSchema {
	return TableSchema{
		TableName:    tableName,
		PartitionKey: KeyAttribute{Name: "username", Type: KeyTypeString},
		BillingMode:  BillingModePayPerRequest,
	}
}

// GrantTableSchema returns the schema for the grant table.
// One item per (username, grant codename) pair, so a Query on the
// partition key returns a user's whole grant set.
func GrantTableSchema(tableName string) TableSchema {
	return TableSchema{
		TableName:    tableName,
		PartitionKey: KeyAttribute{Name: "username", Type: KeyTypeString},
		SortKey:      &KeyAttribute{Name: "grant", Type: KeyTypeString},
		BillingMode:  BillingModePayPerRequest,
	}
}

// AuditTableSchema returns the schema for the audit table.
// Records are keyed by ID, with timestamp-sorted indexes for the
// by-user and by-kind queries.
func AuditTableSchema(tableName string) TableSchema {
	timestampSortKey := &KeyAttribute{Name: "timestamp", Type: KeyTypeString}

	return TableSchema{
		TableName:    tableName,
		PartitionKey: KeyAttribute{Name: "id", Type: KeyTypeString},
		GlobalSecondaryIndexes: []GSISchema{
			{
				IndexName:    audit.GSIUsername,
				PartitionKey: KeyAttribute{Name: "username", Type: KeyTypeString},
				SortKey:      timestampSortKey,
			},
			{
				IndexName:    audit.GSIKind,
				PartitionKey: KeyAttribute{Name: "kind", Type: KeyTypeString},
				SortKey:      timestampSortKey,
			},
		},
		BillingMode: BillingModePayPerRequest,
	}
}

// AllTableSchemas returns the schemas for every table named in the
// configuration, in provisioning order.
func AllTableSchemas(cfg *config.Config) []TableSchema {
	return []TableSchema{
		IdentityTableSchema(cfg.IdentityTable),
		GrantTableSchema(cfg.GrantTable),
		AuditTableSchema(cfg.AuditTable),
	}
}
