package audit

import (
	"context"
	"errors"
)

// Query limit constants for List operations.
const (
	// DefaultQueryLimit is the default number of results for List operations.
	DefaultQueryLimit = 100
	// MaxQueryLimit is the maximum number of results for List operations.
	MaxQueryLimit = 1000
)

// Storage-related sentinel errors for Store implementations.
var (
	// ErrRecordExists is returned on a record ID collision.
	ErrRecordExists = errors.New("audit record already exists")
)

// Store defines the interface for audit record persistence.
// Implementations must be safe for concurrent appends. The interface is
// append-only by construction: there is no update and no delete.
type Store interface {
	// Append stores a new record. Returns ErrRecordExists if the ID is taken.
	Append(ctx context.Context, rec *Record) error

	// List returns records ordered newest first.
	// If limit is 0, DefaultQueryLimit is used. Limit is capped at MaxQueryLimit.
	List(ctx context.Context, limit int) ([]*Record, error)

	// ListByUser returns records attributed to a username, newest first.
	// Returns an empty slice if none exist.
	ListByUser(ctx context.Context, username string, limit int) ([]*Record, error)

	// ListByKind returns records of a specific kind, newest first.
	ListByKind(ctx context.Context, kind Kind, limit int) ([]*Record, error)
}

// capLimit normalizes a caller-supplied limit to store bounds.
func capLimit(limit int) int {
	if limit <= 0 {
		return DefaultQueryLimit
	}
	if limit > MaxQueryLimit {
		return MaxQueryLimit
	}
	return limit
}
