package cli

import (
	"bytes"
	"context"
	"strings"
	"testing"
)

func TestGrantCommand(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()
	registerUser(t, svc, "alice") // bootstrap admin
	registerUser(t, svc, "bob")

	out := output(t, func(stdout *bytes.Buffer) error {
		return GrantCommand(ctx, GrantCommandInput{
			Username: "bob",
			Resource: "TASK",
			Access:   "DELETE",
			Actor:    "alice",
			Service:  svc,
			Stdout:   stdout,
		})
	})

	if !strings.Contains(out, "delete_task granted to bob") {
		t.Errorf("output = %q", out)
	}
}

func TestGrantCommandAcceptsAliases(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()
	registerUser(t, svc, "alice")
	registerUser(t, svc, "bob")

	// WRITE is the abstract alias for ADD.
	out := output(t, func(stdout *bytes.Buffer) error {
		return GrantCommand(ctx, GrantCommandInput{
			Username: "bob",
			Resource: "NOTE",
			Access:   "write",
			Actor:    "alice",
			Service:  svc,
			Stdout:   stdout,
		})
	})

	if !strings.Contains(out, "add_note granted to bob") {
		t.Errorf("output = %q", out)
	}
}

func TestGrantCommandUnknownAccess(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()
	registerUser(t, svc, "alice")

	err := GrantCommand(ctx, GrantCommandInput{
		Username: "alice",
		Resource: "NOTE",
		Access:   "FLY",
		Actor:    "alice",
		Service:  svc,
		Stdout:   &bytes.Buffer{},
	})
	if err == nil {
		t.Fatal("expected error for unknown access level")
	}
}

func TestRevokeCommand(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()
	registerUser(t, svc, "alice")

	out := output(t, func(stdout *bytes.Buffer) error {
		return RevokeCommand(ctx, RevokeCommandInput{
			Username: "alice",
			Resource: "NOTE",
			Access:   "DELETE",
			Actor:    "alice",
			Service:  svc,
			Stdout:   stdout,
		})
	})

	if !strings.Contains(out, "delete_note revoked from alice") {
		t.Errorf("output = %q", out)
	}
}

func TestPermissionsCommand(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()
	registerUser(t, svc, "alice") // admin: all accesses on all resources

	out := output(t, func(stdout *bytes.Buffer) error {
		return PermissionsCommand(ctx, PermissionsCommandInput{
			Username: "alice",
			Service:  svc,
			Stdout:   stdout,
		})
	})

	for _, want := range []string{"NOTE", "TASK", "VIEW", "DELETE"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
}
