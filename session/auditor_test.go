package session

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/wardkeep/wardkeep/audit"
	"github.com/wardkeep/wardkeep/identity"
	"github.com/wardkeep/wardkeep/permissions"
	"github.com/wardkeep/wardkeep/ratelimit"
	"github.com/wardkeep/wardkeep/testutil"
)

const goodPassword = "hunter2024!"

func newTestAuditor(t *testing.T, limiter ratelimit.RateLimiter) (*Auditor, *audit.MemoryStore) {
	t.Helper()
	idStore := identity.NewMemoryStore()
	identities := identity.NewService(idStore, identity.DefaultPasswordPolicy())
	records := audit.NewMemoryStore()
	matrix := permissions.NewMatrix(idStore, permissions.NewMemoryStore(), permissions.DefaultGrants())
	return NewAuditor(identities, matrix, audit.NewTrail(records, nil), limiter), records
}

func TestRegisterFirstUserBecomesActiveAdmin(t *testing.T) {
	ctx := context.Background()
	auditor, records := newTestAuditor(t, nil)

	id, err := auditor.Register(ctx, "alice", goodPassword, identity.RoleUser)
	if err != nil {
		t.Fatalf("Register: %v", err)
	}
	if id.Role != identity.RoleAdmin {
		t.Errorf("first identity role = %s, want ADMIN", id.Role)
	}
	if !id.Active {
		t.Error("registered identity must be active")
	}

	recs, _ := records.ListByKind(ctx, audit.KindRegister, 0)
	if len(recs) != 1 {
		t.Fatalf("expected 1 register record, got %d", len(recs))
	}
	if !recs[0].Success || recs[0].Detail != "Logged in - true" {
		t.Errorf("unexpected record: %+v", recs[0])
	}
}

func TestRegisterGrantsDefaults(t *testing.T) {
	ctx := context.Background()
	idStore := identity.NewMemoryStore()
	identities := identity.NewService(idStore, identity.DefaultPasswordPolicy())
	matrix := permissions.NewMatrix(idStore, permissions.NewMemoryStore(), permissions.DefaultGrants())
	auditor := NewAuditor(identities, matrix, audit.NewTrail(audit.NewMemoryStore(), nil), nil)

	admin, err := auditor.Register(ctx, "root", goodPassword, identity.RoleUser)
	if err != nil {
		t.Fatalf("Register admin: %v", err)
	}
	user, err := auditor.Register(ctx, "bob", goodPassword, identity.RoleUser)
	if err != nil {
		t.Fatalf("Register user: %v", err)
	}

	adminSet, _ := matrix.Snapshot(ctx, admin.Username)
	if !adminSet.Has(permissions.ResourceTask, permissions.AccessDelete) {
		t.Error("admin must receive DELETE by default")
	}
	userSet, _ := matrix.Snapshot(ctx, user.Username)
	if !userSet.Has(permissions.ResourceNote, permissions.AccessView) {
		t.Error("user must receive VIEW by default")
	}
	if userSet.Has(permissions.ResourceNote, permissions.AccessDelete) {
		t.Error("user must not receive DELETE by default")
	}
}

func TestRegisterDuplicateRecordsFailure(t *testing.T) {
	ctx := context.Background()
	auditor, records := newTestAuditor(t, nil)

	auditor.Register(ctx, "alice", goodPassword, identity.RoleUser)
	_, err := auditor.Register(ctx, "alice", goodPassword, identity.RoleUser)
	if !errors.Is(err, identity.ErrIdentityExists) {
		t.Fatalf("expected ErrIdentityExists, got %v", err)
	}

	recs, _ := records.ListByKind(ctx, audit.KindRegister, 0)
	if len(recs) != 2 {
		t.Fatalf("expected 2 register records, got %d", len(recs))
	}
	if recs[0].Success {
		t.Error("duplicate registration must be a failure record")
	}
}

func TestRegisterWeakPasswordRecordsFailure(t *testing.T) {
	ctx := context.Background()
	auditor, records := newTestAuditor(t, nil)

	_, err := auditor.Register(ctx, "alice", "short", identity.RoleUser)
	if !errors.Is(err, identity.ErrWeakPassword) {
		t.Fatalf("expected weak password error, got %v", err)
	}

	recs, _ := records.ListByKind(ctx, audit.KindRegister, 0)
	if len(recs) != 1 || recs[0].Success {
		t.Errorf("expected 1 failure record, got %v", recs)
	}
}

func TestRegisterInvalidUsernameNoRecord(t *testing.T) {
	ctx := context.Background()
	auditor, records := newTestAuditor(t, nil)

	if _, err := auditor.Register(ctx, "Bad Name!", goodPassword, identity.RoleUser); err == nil {
		t.Fatal("expected username validation error")
	}
	if records.Len() != 0 {
		t.Errorf("malformed usernames must not reach the trail, got %d records", records.Len())
	}
}

func TestLoginSuccess(t *testing.T) {
	ctx := context.Background()
	auditor, records := newTestAuditor(t, nil)

	auditor.Register(ctx, "alice", goodPassword, identity.RoleUser)
	auditor.Logout(ctx, "alice")

	id, err := auditor.Login(ctx, "alice", goodPassword)
	if err != nil {
		t.Fatalf("Login: %v", err)
	}
	if !id.Active {
		t.Error("login must activate the session")
	}

	recs, _ := records.ListByKind(ctx, audit.KindLogin, 0)
	if len(recs) != 1 {
		t.Fatalf("expected 1 login record, got %d", len(recs))
	}
	if !recs[0].Success || recs[0].Detail != "Logged in - true" {
		t.Errorf("unexpected record: %+v", recs[0])
	}
}

func TestLoginWrongPassword(t *testing.T) {
	ctx := context.Background()
	auditor, records := newTestAuditor(t, nil)

	auditor.Register(ctx, "alice", goodPassword, identity.RoleUser)
	auditor.Logout(ctx, "alice")

	_, err := auditor.Login(ctx, "alice", "wrongpass9!")
	if !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials, got %v", err)
	}

	// Wrong password must not activate.
	id, _ := identityOf(ctx, auditor, "alice")
	if id.Active {
		t.Error("failed login must not activate the session")
	}

	recs, _ := records.ListByKind(ctx, audit.KindLogin, 0)
	if len(recs) != 1 {
		t.Fatalf("expected 1 login record, got %d", len(recs))
	}
	if recs[0].Success || recs[0].Detail != "Logged in - false" {
		t.Errorf("unexpected record: %+v", recs[0])
	}
}

func TestLoginUnknownUserNoRecord(t *testing.T) {
	ctx := context.Background()
	auditor, records := newTestAuditor(t, nil)

	_, err := auditor.Login(ctx, "ghost", goodPassword)
	if !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials, got %v", err)
	}
	if records.Len() != 0 {
		t.Errorf("unknown usernames must not reach the trail, got %d records", records.Len())
	}
}

func TestLoginThrottled(t *testing.T) {
	ctx := context.Background()
	limiter, err := ratelimit.NewMemoryRateLimiter(ratelimit.Config{AttemptsPerWindow: 2, Window: time.Minute})
	if err != nil {
		t.Fatalf("NewMemoryRateLimiter: %v", err)
	}
	defer limiter.Close()
	auditor, _ := newTestAuditor(t, limiter)

	auditor.Register(ctx, "alice", goodPassword, identity.RoleUser)

	auditor.Login(ctx, "alice", "wrongpass9!")
	auditor.Login(ctx, "alice", "wrongpass9!")

	_, err = auditor.Login(ctx, "alice", goodPassword)
	if !errors.Is(err, ErrRateLimited) {
		t.Fatalf("expected ErrRateLimited, got %v", err)
	}
}

func TestLogout(t *testing.T) {
	ctx := context.Background()
	auditor, records := newTestAuditor(t, nil)

	auditor.Register(ctx, "alice", goodPassword, identity.RoleUser)

	if err := auditor.Logout(ctx, "alice"); err != nil {
		t.Fatalf("Logout: %v", err)
	}

	recs, _ := records.ListByKind(ctx, audit.KindLogout, 0)
	if len(recs) != 1 {
		t.Fatalf("expected 1 logout record, got %d", len(recs))
	}
	if !recs[0].Success || recs[0].Detail != "Logged out - true" {
		t.Errorf("unexpected record: %+v", recs[0])
	}
}

func TestLogoutAlreadyLoggedOut(t *testing.T) {
	ctx := context.Background()
	auditor, records := newTestAuditor(t, nil)

	auditor.Register(ctx, "alice", goodPassword, identity.RoleUser)
	auditor.Logout(ctx, "alice")

	err := auditor.Logout(ctx, "alice")
	if !errors.Is(err, ErrAlreadyLoggedOut) {
		t.Fatalf("expected ErrAlreadyLoggedOut, got %v", err)
	}

	recs, _ := records.ListByKind(ctx, audit.KindLogout, 0)
	if len(recs) != 2 {
		t.Fatalf("expected 2 logout records, got %d", len(recs))
	}
	if recs[0].Success || recs[0].Detail != "Logged out - false" {
		t.Errorf("unexpected record: %+v", recs[0])
	}
}

func TestLogoutUnknownUser(t *testing.T) {
	ctx := context.Background()
	auditor, records := newTestAuditor(t, nil)

	err := auditor.Logout(ctx, "ghost")
	if !errors.Is(err, identity.ErrIdentityNotFound) {
		t.Fatalf("expected ErrIdentityNotFound, got %v", err)
	}
	if records.Len() != 0 {
		t.Errorf("unknown usernames must not reach the trail, got %d records", records.Len())
	}
}

func TestRegisterTrailFailureSurfaces(t *testing.T) {
	ctx := context.Background()
	idStore := testutil.NewMockIdentityStore()
	identities := identity.NewService(idStore, identity.DefaultPasswordPolicy())
	matrix := permissions.NewMatrix(idStore, permissions.NewMemoryStore(), permissions.DefaultGrants())
	records := testutil.NewMockAuditStore()
	records.AppendErr = errors.New("audit store unavailable")
	auditor := NewAuditor(identities, matrix, audit.NewTrail(records, nil), nil)

	_, err := auditor.Register(ctx, "alice", goodPassword, identity.RoleUser)
	if !errors.Is(err, records.AppendErr) {
		t.Fatalf("expected trail failure to surface, got %v", err)
	}
	if len(records.AppendCalls) != 1 {
		t.Errorf("expected 1 append attempt, got %d", len(records.AppendCalls))
	}
}

func TestLoginIdentityStoreFailure(t *testing.T) {
	ctx := context.Background()
	idStore := testutil.NewMockIdentityStore()
	identities := identity.NewService(idStore, identity.DefaultPasswordPolicy())
	matrix := permissions.NewMatrix(idStore, permissions.NewMemoryStore(), permissions.DefaultGrants())
	auditor := NewAuditor(identities, matrix, audit.NewTrail(audit.NewMemoryStore(), nil), nil)

	// A backend failure is not a credential problem and must not be
	// reported as one.
	idStore.GetErr = errors.New("identity store unavailable")
	_, err := auditor.Login(ctx, "alice", goodPassword)
	if errors.Is(err, ErrInvalidCredentials) {
		t.Fatal("store failure must not be reported as invalid credentials")
	}
	if !errors.Is(err, idStore.GetErr) {
		t.Fatalf("expected store error to surface, got %v", err)
	}
	if len(idStore.GetCalls) != 1 || idStore.GetCalls[0] != "alice" {
		t.Errorf("unexpected lookups: %v", idStore.GetCalls)
	}
}

// identityOf fetches the stored identity through the auditor's service.
func identityOf(ctx context.Context, a *Auditor, username string) (*identity.Identity, error) {
	return a.identities.Get(ctx, username)
}
