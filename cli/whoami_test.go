package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"strings"
	"testing"
)

func TestWhoamiCommand(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()
	registerUser(t, svc, "alice")
	if err := setCurrentUser("alice"); err != nil {
		t.Fatalf("setCurrentUser: %v", err)
	}

	out := output(t, func(stdout *bytes.Buffer) error {
		return WhoamiCommand(ctx, WhoamiCommandInput{
			Service: svc,
			Stdout:  stdout,
		})
	})

	if !strings.Contains(out, "alice") || !strings.Contains(out, "ADMIN") {
		t.Errorf("output = %q", out)
	}
	if !strings.Contains(out, "delete_task") {
		t.Errorf("output missing admin permission codename:\n%s", out)
	}
}

func TestWhoamiCommandJSON(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()
	registerUser(t, svc, "alice")
	if err := setCurrentUser("alice"); err != nil {
		t.Fatalf("setCurrentUser: %v", err)
	}

	out := output(t, func(stdout *bytes.Buffer) error {
		return WhoamiCommand(ctx, WhoamiCommandInput{
			JSONOutput: true,
			Service:    svc,
			Stdout:     stdout,
		})
	})

	var result WhoamiResult
	if err := json.Unmarshal([]byte(out), &result); err != nil {
		t.Fatalf("invalid JSON output: %v\n%s", err, out)
	}
	if result.Username != "alice" || result.Role != "ADMIN" || !result.Active {
		t.Errorf("result = %+v", result)
	}
	if len(result.Permissions) != 8 { // 2 resources x 4 access levels
		t.Errorf("permissions = %v", result.Permissions)
	}
}

func TestWhoamiCommandNoSession(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	err := WhoamiCommand(ctx, WhoamiCommandInput{
		Service: svc,
		Stdout:  &bytes.Buffer{},
	})
	if err == nil {
		t.Fatal("expected error when no user is logged in")
	}
}
