package permissions

import (
	"context"
)

// Store defines the interface for grant persistence.
// Implementations must be safe for concurrent use, and Put/Delete must be
// idempotent: writing a grant that exists, or deleting one that does not, is
// a no-op rather than an error. The Matrix owns all mutation sequencing; a
// Store only persists.
type Store interface {
	// Put stores a grant for a username. Idempotent.
	Put(ctx context.Context, username string, grant Grant) error

	// Delete removes a grant from a username. Idempotent.
	Delete(ctx context.Context, username string, grant Grant) error

	// List returns all grants held by a username. Returns an empty slice for
	// usernames with no grants.
	List(ctx context.Context, username string) ([]Grant, error)
}
