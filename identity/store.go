package identity

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
// These errors support errors.Is() checking for robust error handling.
var (
	// ErrIdentityNotFound is returned when the requested identity does not exist.
	ErrIdentityNotFound = errors.New("identity not found")

	// ErrIdentityExists is returned when attempting to create an identity with
	// a username that already exists in the store.
	ErrIdentityExists = errors.New("identity already exists")
)

// Store defines the interface for identity persistence.
// Implementations must be safe for concurrent use. There is deliberately no
// Delete: identities are never hard-deleted in this design.
type Store interface {
	// Create stores a new identity. Returns ErrIdentityExists if the username
	// is already taken.
	Create(ctx context.Context, id *Identity) error

	// Get retrieves an identity by username. Returns ErrIdentityNotFound if
	// it does not exist.
	Get(ctx context.Context, username string) (*Identity, error)

	// Update modifies an existing identity. Returns ErrIdentityNotFound if it
	// does not exist. The username is the key and never changes.
	Update(ctx context.Context, id *Identity) error

	// List returns identities ordered by username.
	// If limit is 0, DefaultQueryLimit is used. Limit is capped at MaxQueryLimit.
	List(ctx context.Context, limit int) ([]*Identity, error)

	// Count returns the number of identities in the store.
	// Used by the one-time admin bootstrap check.
	Count(ctx context.Context) (int, error)
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
