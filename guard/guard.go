// Package guard gates resource operations behind the permission matrix.
// A guarded call checks the caller's grant before the operation runs,
// records the outcome in the audit trail, and never invokes the operation
// on denial.
package guard

import (
	"context"
	"errors"
	"fmt"

	"github.com/wardkeep/wardkeep/audit"
	"github.com/wardkeep/wardkeep/permissions"
)

// ErrPermissionDenied is returned when the caller lacks the grant an
// operation requires. The denial is recorded before this is returned.
var ErrPermissionDenied = errors.New("permission denied")

// deniedDetail is the audit detail recorded on every denial.
const deniedDetail = "Insufficient permission to perform the operation"

// Result is what a guarded operation yields: the value for the caller and
// the detail line that goes into the success audit record.
type Result struct {
	// Value is the operation's payload, passed through to the caller.
	Value any

	// Detail describes what the operation did, e.g. `Task created with
	// title "pay rent"`.
	Detail string
}

// Operation is a resource action to run under a permission check. It is
// only invoked after the check passes.
type Operation func(ctx context.Context) (*Result, error)

// Guard runs operations under permission checks, recording every outcome.
type Guard struct {
	matrix *permissions.Matrix
	trail  *audit.Trail
}

// New creates a Guard over the given matrix and trail.
func New(matrix *permissions.Matrix, trail *audit.Trail) *Guard {
	return &Guard{
		matrix: matrix,
		trail:  trail,
	}
}

// Run executes op for username if the identity holds (resource, access).
//
// Outcomes, in order of precedence:
//   - invalid resource or access enum: the error is returned immediately
//     and nothing is recorded, since nothing was attempted;
//   - permission missing: a failure record is appended and
//     ErrPermissionDenied is returned without invoking op;
//   - op returns an error: a failure record carrying the error text is
//     appended and the error is returned unchanged;
//   - op succeeds: a success record carrying the result detail is appended.
func (g *Guard) Run(ctx context.Context, username string, resource permissions.Resource, access permissions.Access, op Operation) (*Result, error) {
	ok, err := g.matrix.Has(ctx, username, resource, access)
	if err != nil {
		return nil, err
	}

	kind := audit.KindFor(string(access), string(resource))

	if !ok {
		if _, err := g.trail.Failure(ctx, username, kind, deniedDetail); err != nil {
			return nil, err
		}
		return nil, fmt.Errorf("%w: %s requires %s on %s", ErrPermissionDenied, username, access, resource)
	}

	result, opErr := op(ctx)
	if opErr != nil {
		if _, err := g.trail.Failure(ctx, username, kind, opErr.Error()); err != nil {
			return nil, err
		}
		return nil, opErr
	}

	detail := ""
	if result != nil {
		detail = result.Detail
	}
	if _, err := g.trail.Success(ctx, username, kind, detail); err != nil {
		return nil, err
	}
	return result, nil
}
