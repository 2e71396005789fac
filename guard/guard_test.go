package guard

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/wardkeep/wardkeep/audit"
	"github.com/wardkeep/wardkeep/identity"
	"github.com/wardkeep/wardkeep/permissions"
	"github.com/wardkeep/wardkeep/testutil"
)

func newTestGuard(t *testing.T) (*Guard, *permissions.Matrix, *audit.MemoryStore) {
	t.Helper()
	ctx := context.Background()

	identities := identity.NewMemoryStore()
	err := identities.Create(ctx, &identity.Identity{
		Username:  "alice",
		Role:      identity.RoleUser,
		Active:    true,
		CreatedAt: time.Now().UTC(),
		UpdatedAt: time.Now().UTC(),
	})
	if err != nil {
		t.Fatalf("create identity: %v", err)
	}

	matrix := permissions.NewMatrix(identities, permissions.NewMemoryStore(), permissions.DefaultGrants())
	records := audit.NewMemoryStore()
	return New(matrix, audit.NewTrail(records, nil)), matrix, records
}

func TestGuardRunAllowed(t *testing.T) {
	ctx := context.Background()
	g, matrix, records := newTestGuard(t)
	matrix.Grant(ctx, "alice", permissions.ResourceTask, permissions.AccessAdd)

	invoked := 0
	result, err := g.Run(ctx, "alice", permissions.ResourceTask, permissions.AccessAdd, func(ctx context.Context) (*Result, error) {
		invoked++
		return &Result{Value: 42, Detail: `Task created with title "pay rent"`}, nil
	})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if invoked != 1 {
		t.Errorf("operation invoked %d times, want 1", invoked)
	}
	if result.Value != 42 {
		t.Errorf("result value = %v", result.Value)
	}

	recs, _ := records.ListByKind(ctx, audit.Kind("add_task"), 0)
	if len(recs) != 1 {
		t.Fatalf("expected 1 add_task record, got %d", len(recs))
	}
	if !recs[0].Success {
		t.Error("expected success record")
	}
	if recs[0].Detail != `Task created with title "pay rent"` {
		t.Errorf("detail = %q", recs[0].Detail)
	}
}

func TestGuardRunDenied(t *testing.T) {
	ctx := context.Background()
	g, _, records := newTestGuard(t)

	invoked := 0
	_, err := g.Run(ctx, "alice", permissions.ResourceTask, permissions.AccessDelete, func(ctx context.Context) (*Result, error) {
		invoked++
		return nil, nil
	})
	if !errors.Is(err, ErrPermissionDenied) {
		t.Fatalf("expected ErrPermissionDenied, got %v", err)
	}
	if invoked != 0 {
		t.Error("operation must not run on denial")
	}

	recs, _ := records.ListByKind(ctx, audit.Kind("delete_task"), 0)
	if len(recs) != 1 {
		t.Fatalf("expected 1 denial record, got %d", len(recs))
	}
	rec := recs[0]
	if rec.Success {
		t.Error("denial must be a failure record")
	}
	if rec.Detail != "Insufficient permission to perform the operation" {
		t.Errorf("detail = %q", rec.Detail)
	}
	if rec.Username != "alice" {
		t.Errorf("record attributed to %q", rec.Username)
	}
}

func TestGuardRunUnknownUserDenied(t *testing.T) {
	ctx := context.Background()
	g, _, records := newTestGuard(t)

	_, err := g.Run(ctx, "ghost", permissions.ResourceNote, permissions.AccessView, func(ctx context.Context) (*Result, error) {
		t.Error("operation must not run")
		return nil, nil
	})
	if !errors.Is(err, ErrPermissionDenied) {
		t.Fatalf("expected ErrPermissionDenied, got %v", err)
	}
	if records.Len() != 1 {
		t.Errorf("expected denial record, got %d records", records.Len())
	}
}

func TestGuardRunInvalidEnumNoRecord(t *testing.T) {
	ctx := context.Background()
	g, _, records := newTestGuard(t)

	_, err := g.Run(ctx, "alice", permissions.Resource("FOLDER"), permissions.AccessView, func(ctx context.Context) (*Result, error) {
		t.Error("operation must not run")
		return nil, nil
	})
	if !errors.Is(err, permissions.ErrUnknownResource) {
		t.Fatalf("expected ErrUnknownResource, got %v", err)
	}
	if records.Len() != 0 {
		t.Errorf("enum validation must not be audited, got %d records", records.Len())
	}

	_, err = g.Run(ctx, "alice", permissions.ResourceNote, permissions.Access("EXECUTE"), nil)
	if !errors.Is(err, permissions.ErrUnknownAccess) {
		t.Fatalf("expected ErrUnknownAccess, got %v", err)
	}
}

func TestGuardRunOperationError(t *testing.T) {
	ctx := context.Background()
	g, matrix, records := newTestGuard(t)
	matrix.Grant(ctx, "alice", permissions.ResourceNote, permissions.AccessChange)

	opErr := errors.New("note 7 not found")
	_, err := g.Run(ctx, "alice", permissions.ResourceNote, permissions.AccessChange, func(ctx context.Context) (*Result, error) {
		return nil, opErr
	})
	if !errors.Is(err, opErr) {
		t.Fatalf("expected operation error to pass through, got %v", err)
	}

	recs, _ := records.ListByKind(ctx, audit.Kind("change_note"), 0)
	if len(recs) != 1 {
		t.Fatalf("expected 1 record, got %d", len(recs))
	}
	if recs[0].Success {
		t.Error("operation error must be a failure record")
	}
	if recs[0].Detail != "note 7 not found" {
		t.Errorf("detail = %q", recs[0].Detail)
	}
}

func TestGuardRunTrailFailureSurfaces(t *testing.T) {
	ctx := context.Background()
	identities := identity.NewMemoryStore()
	err := identities.Create(ctx, &identity.Identity{
		Username:  "alice",
		Role:      identity.RoleUser,
		Active:    true,
		CreatedAt: time.Now().UTC(),
		UpdatedAt: time.Now().UTC(),
	})
	if err != nil {
		t.Fatalf("create identity: %v", err)
	}
	matrix := permissions.NewMatrix(identities, permissions.NewMemoryStore(), permissions.DefaultGrants())
	matrix.Grant(ctx, "alice", permissions.ResourceNote, permissions.AccessView)

	records := testutil.NewMockAuditStore()
	records.AppendErr = errors.New("audit store unavailable")
	g := New(matrix, audit.NewTrail(records, nil))

	// An action without a durable record did not happen; the store
	// failure replaces the operation's own result.
	_, err = g.Run(ctx, "alice", permissions.ResourceNote, permissions.AccessView, func(ctx context.Context) (*Result, error) {
		return &Result{Detail: "Notes listed"}, nil
	})
	if !errors.Is(err, records.AppendErr) {
		t.Fatalf("expected append error to surface, got %v", err)
	}

	// Denial path: the store failure masks ErrPermissionDenied too.
	_, err = g.Run(ctx, "alice", permissions.ResourceNote, permissions.AccessDelete, func(ctx context.Context) (*Result, error) {
		t.Error("operation must not run on denial")
		return nil, nil
	})
	if !errors.Is(err, records.AppendErr) {
		t.Fatalf("expected append error on denial, got %v", err)
	}
	if len(records.AppendCalls) != 2 {
		t.Errorf("expected 2 append attempts, got %d", len(records.AppendCalls))
	}
}

func TestGuardRunNilResultDetail(t *testing.T) {
	ctx := context.Background()
	g, matrix, records := newTestGuard(t)
	matrix.Grant(ctx, "alice", permissions.ResourceNote, permissions.AccessView)

	result, err := g.Run(ctx, "alice", permissions.ResourceNote, permissions.AccessView, func(ctx context.Context) (*Result, error) {
		return nil, nil
	})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if result != nil {
		t.Errorf("expected nil result passthrough, got %+v", result)
	}
	recs, _ := records.ListByKind(ctx, audit.Kind("view_note"), 0)
	if len(recs) != 1 || !recs[0].Success {
		t.Fatalf("expected 1 success record, got %v", recs)
	}
}
