package cli

import (
	"bytes"
	"context"
	"testing"

	"github.com/wardkeep/wardkeep/identity"
	"github.com/wardkeep/wardkeep/wardkeep"
)

const testPassword = "hunter2024!"

// newTestService returns a memory-backed service and points the session
// file at a throwaway home directory.
func newTestService(t *testing.T) *wardkeep.Service {
	t.Helper()
	t.Setenv("HOME", t.TempDir())
	return wardkeep.New(wardkeep.Options{})
}

// registerUser registers a user directly through the service, bypassing
// the CLI, and returns its identity.
func registerUser(t *testing.T, svc *wardkeep.Service, username string) *identity.Identity {
	t.Helper()
	id, err := svc.Register(context.Background(), username, testPassword, identity.RoleUser)
	if err != nil {
		t.Fatalf("register %s: %v", username, err)
	}
	return id
}

// output runs fn against a buffer and returns what was written.
func output(t *testing.T, fn func(stdout *bytes.Buffer) error) string {
	t.Helper()
	var buf bytes.Buffer
	if err := fn(&buf); err != nil {
		t.Fatalf("command failed: %v", err)
	}
	return buf.String()
}
