package permissions

import (
	"context"
	"fmt"

	"github.com/wardkeep/wardkeep/audit"
)

// ChangeAuditor wraps Matrix mutations with before/after auditing. It
// diffs the snapshots the Matrix takes around the mutation and appends
// one audit record per grant that actually changed. Idempotent re-grants
// and re-revokes therefore produce no records at all.
type ChangeAuditor struct {
	matrix *Matrix
	trail  *audit.Trail
}

// NewChangeAuditor creates a ChangeAuditor over the given matrix and trail.
func NewChangeAuditor(matrix *Matrix, trail *audit.Trail) *ChangeAuditor {
	return &ChangeAuditor{
		matrix: matrix,
		trail:  trail,
	}
}

// AuditedGrant grants (resource, access) to username on behalf of guarantor
// and records every grant the mutation added. Returns the snapshots taken
// immediately before and after the mutation, both under the identity lock.
func (a *ChangeAuditor) AuditedGrant(ctx context.Context, guarantor, username string, resource Resource, access Access) (before, after GrantSet, err error) {
	before, after, err = a.matrix.GrantDiff(ctx, username, resource, access)
	if err != nil {
		return GrantSet{}, GrantSet{}, err
	}
	return before, after, a.recordDiff(ctx, guarantor, username, before, after)
}

// AuditedRevoke revokes (resource, access) from username on behalf of
// guarantor and records every grant the mutation removed. Returns the
// snapshots taken immediately before and after the mutation.
func (a *ChangeAuditor) AuditedRevoke(ctx context.Context, guarantor, username string, resource Resource, access Access) (before, after GrantSet, err error) {
	before, after, err = a.matrix.RevokeDiff(ctx, username, resource, access)
	if err != nil {
		return GrantSet{}, GrantSet{}, err
	}
	return before, after, a.recordDiff(ctx, guarantor, username, before, after)
}

// recordDiff appends one record per added grant and one per removed grant.
// Records are attributed to the identity whose grant set changed, so the
// target's audit log shows every change made to it; the guarantor is named
// in the detail.
func (a *ChangeAuditor) recordDiff(ctx context.Context, guarantor, username string, before, after GrantSet) error {
	added, removed := after.Diff(before)

	for _, grant := range added {
		detail := fmt.Sprintf("Granted %s permission to %s by %s", grant.Codename(), username, guarantor)
		if _, err := a.trail.Success(ctx, username, audit.KindGrant, detail); err != nil {
			return err
		}
	}
	for _, grant := range removed {
		detail := fmt.Sprintf("Revoked %s permission to %s by %s", grant.Codename(), username, guarantor)
		if _, err := a.trail.Success(ctx, username, audit.KindRevoke, detail); err != nil {
			return err
		}
	}
	return nil
}
