// Package testutil provides shared helpers and mock implementations for
// Wardkeep tests: fixed clocks, fixture factories for identities, grants,
// and audit records, and assertion shorthands built on the standard
// testing package.
package testutil

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/wardkeep/wardkeep/audit"
	"github.com/wardkeep/wardkeep/identity"
	"github.com/wardkeep/wardkeep/permissions"
)

// ============================================================================
// Time helpers
// ============================================================================

// MustParseTime parses a time string using the given layout and panics on error.
// Useful for test data initialization where parse errors indicate a test bug.
//
// Example:
//
//	t := MustParseTime(time.RFC3339, "2026-01-15T10:00:00Z")
func MustParseTime(layout, value string) time.Time {
	t, err := time.Parse(layout, value)
	if err != nil {
		panic("testutil.MustParseTime: " + err.Error())
	}
	return t
}

// FixedClock returns a function that always returns the given time.
// Useful for testing time-dependent logic with deterministic values.
//
// Example:
//
//	now := time.Now()
//	clock := FixedClock(now)
//	// clock() always returns now
func FixedClock(t time.Time) func() time.Time {
	return func() time.Time {
		return t
	}
}

// ============================================================================
// Identity helpers
// ============================================================================

// MakeIdentity creates a test identity with the USER role and an active
// session. The password hash is a placeholder, not a real bcrypt digest.
//
// Example:
//
//	id := MakeIdentity("alice")
func MakeIdentity(username string) *identity.Identity {
	now := time.Now()
	return &identity.Identity{
		Username:     username,
		PasswordHash: "$2a$10$test-hash-for-" + username,
		Role:         identity.RoleUser,
		Active:       true,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
}

// MakeAdminIdentity creates a test identity with the ADMIN role and an
// active session.
//
// Example:
//
//	admin := MakeAdminIdentity("alice")
func MakeAdminIdentity(username string) *identity.Identity {
	id := MakeIdentity(username)
	id.Role = identity.RoleAdmin
	return id
}

// MakeInactiveIdentity creates a test identity with no live session.
//
// Example:
//
//	id := MakeInactiveIdentity("bob")
func MakeInactiveIdentity(username string) *identity.Identity {
	id := MakeIdentity(username)
	id.Active = false
	return id
}

// ============================================================================
// Grant helpers
// ============================================================================

// MakeGrant creates a grant from canonical enum values.
//
// Example:
//
//	g := MakeGrant(permissions.ResourceNote, permissions.AccessView)
func MakeGrant(res permissions.Resource, access permissions.Access) permissions.Grant {
	return permissions.Grant{Resource: res, Access: access}
}

// MakeViewerGrants returns the grant set every fresh identity receives:
// VIEW on every resource.
func MakeViewerGrants() []permissions.Grant {
	resources := permissions.AllResources()
	grants := make([]permissions.Grant, 0, len(resources))
	for _, res := range resources {
		grants = append(grants, permissions.Grant{Resource: res, Access: permissions.AccessView})
	}
	return grants
}

// MakeAdminGrants returns the full grant set a bootstrap admin receives:
// every access level on every resource.
func MakeAdminGrants() []permissions.Grant {
	resources := permissions.AllResources()
	accesses := permissions.AllAccessLevels()
	grants := make([]permissions.Grant, 0, len(resources)*len(accesses))
	for _, res := range resources {
		for _, access := range accesses {
			grants = append(grants, permissions.Grant{Resource: res, Access: access})
		}
	}
	return grants
}

// ============================================================================
// Audit record helpers
// ============================================================================

// MakeRecord creates a successful test audit record with a fresh ID.
//
// Example:
//
//	rec := MakeRecord("alice", audit.KindLogin, "Logged in - true")
func MakeRecord(username string, kind audit.Kind, detail string) *audit.Record {
	return &audit.Record{
		ID:        audit.NewRecordID(),
		Username:  username,
		Timestamp: time.Now(),
		Kind:      kind,
		Detail:    detail,
		Success:   true,
	}
}

// MakeFailedRecord creates a failed test audit record with a fresh ID.
//
// Example:
//
//	rec := MakeFailedRecord("alice", audit.KindLogin, "Logged in - false")
func MakeFailedRecord(username string, kind audit.Kind, detail string) *audit.Record {
	rec := MakeRecord(username, kind, detail)
	rec.Success = false
	return rec
}

// ============================================================================
// Assertion helpers
// ============================================================================

// AssertErrorIs checks if got error matches want error using errors.Is.
// Uses t.Helper() for correct line number reporting.
//
// Example:
//
//	AssertErrorIs(t, err, identity.ErrIdentityNotFound)
func AssertErrorIs(t *testing.T, got, want error) {
	t.Helper()
	if !errors.Is(got, want) {
		t.Errorf("error mismatch:\n  got:  %v\n  want: %v", got, want)
	}
}

// AssertNoError fails the test if err is not nil.
// Uses t.Helper() for correct line number reporting.
//
// Example:
//
//	AssertNoError(t, err)
func AssertNoError(t *testing.T, err error) {
	t.Helper()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

// AssertError fails the test if err is nil.
// Uses t.Helper() for correct line number reporting.
//
// Example:
//
//	AssertError(t, err)
func AssertError(t *testing.T, err error) {
	t.Helper()
	if err == nil {
		t.Fatal("expected error, got nil")
	}
}

// AssertContains checks if got string contains substr.
// Uses t.Helper() for correct line number reporting.
//
// Example:
//
//	AssertContains(t, err.Error(), "not found")
func AssertContains(t *testing.T, got, substr string) {
	t.Helper()
	if !strings.Contains(got, substr) {
		t.Errorf("string does not contain expected substring:\n  got:    %q\n  substr: %q", got, substr)
	}
}

// AssertEqual checks if got equals want.
// Uses t.Helper() for correct line number reporting.
//
// Example:
//
//	AssertEqual(t, rec.Kind, audit.KindLogin)
func AssertEqual[T comparable](t *testing.T, got, want T) {
	t.Helper()
	if got != want {
		t.Errorf("value mismatch:\n  got:  %v\n  want: %v", got, want)
	}
}

// AssertTrue fails if condition is false.
// Uses t.Helper() for correct line number reporting.
//
// Example:
//
//	AssertTrue(t, set.Has(permissions.ResourceNote, permissions.AccessView))
func AssertTrue(t *testing.T, condition bool, msg ...string) {
	t.Helper()
	if !condition {
		if len(msg) > 0 {
			t.Errorf("expected true: %s", msg[0])
		} else {
			t.Error("expected true, got false")
		}
	}
}

// AssertFalse fails if condition is true.
// Uses t.Helper() for correct line number reporting.
//
// Example:
//
//	AssertFalse(t, id.Active)
func AssertFalse(t *testing.T, condition bool, msg ...string) {
	t.Helper()
	if condition {
		if len(msg) > 0 {
			t.Errorf("expected false: %s", msg[0])
		} else {
			t.Error("expected false, got true")
		}
	}
}

// Ptr returns a pointer to the given value.
// Useful for constructing test data with pointer fields.
//
// Example:
//
//	input := &dynamodb.GetItemInput{TableName: testutil.Ptr("wardkeep-audit")}
func Ptr[T any](v T) *T {
	return &v
}
