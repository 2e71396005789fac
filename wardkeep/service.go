// Package wardkeep composes the access control subsystem into one
// service: the credential store, the permission matrix, the audit trail,
// the permission guard, and the gated note and task resources behind it.
// Callers talk to this facade; the packages underneath stay independently
// testable.
package wardkeep

import (
	"context"
	"fmt"
	"os"

	"github.com/wardkeep/wardkeep/audit"
	"github.com/wardkeep/wardkeep/guard"
	"github.com/wardkeep/wardkeep/identity"
	"github.com/wardkeep/wardkeep/logging"
	"github.com/wardkeep/wardkeep/notification"
	"github.com/wardkeep/wardkeep/permissions"
	"github.com/wardkeep/wardkeep/ratelimit"
	"github.com/wardkeep/wardkeep/resource"
	"github.com/wardkeep/wardkeep/session"
)

// Options configures a Service. Zero-value stores default to in-memory
// implementations, so Options{} yields a fully working service.
type Options struct {
	// IdentityStore persists identities. Defaults to memory.
	IdentityStore identity.Store

	// GrantStore persists grants. Defaults to memory.
	GrantStore permissions.Store

	// AuditStore persists audit records. Defaults to memory.
	AuditStore audit.Store

	// NoteStore persists notes. Defaults to memory.
	NoteStore resource.NoteStore

	// TaskStore persists tasks. Defaults to memory.
	TaskStore resource.TaskStore

	// PasswordPolicy overrides identity.DefaultPasswordPolicy.
	PasswordPolicy *identity.PasswordPolicy

	// GrantPolicy overrides permissions.DefaultGrants.
	GrantPolicy *permissions.DefaultGrantPolicy

	// Logger mirrors audit records to a structured log. Defaults to no-op.
	Logger logging.Logger

	// LoginLimiter throttles login attempts. Nil disables throttling.
	LoginLimiter ratelimit.RateLimiter

	// Notifier receives permission-change events. Nil disables delivery.
	Notifier notification.Notifier
}

// Service is the composed access control subsystem.
type Service struct {
	identities *identity.Service
	matrix     *permissions.Matrix
	changes    *permissions.ChangeAuditor
	sessions   *session.Auditor
	guard      *guard.Guard
	resources  *resource.Operations
	trail      *audit.Trail
	notifier   notification.Notifier
}

// New assembles a Service from the given options.
func New(opts Options) *Service {
	if opts.IdentityStore == nil {
		opts.IdentityStore = identity.NewMemoryStore()
	}
	if opts.GrantStore == nil {
		opts.GrantStore = permissions.NewMemoryStore()
	}
	if opts.AuditStore == nil {
		opts.AuditStore = audit.NewMemoryStore()
	}
	if opts.NoteStore == nil || opts.TaskStore == nil {
		mem := resource.NewMemoryStore()
		if opts.NoteStore == nil {
			opts.NoteStore = mem
		}
		if opts.TaskStore == nil {
			opts.TaskStore = mem
		}
	}

	passwordPolicy := identity.DefaultPasswordPolicy()
	if opts.PasswordPolicy != nil {
		passwordPolicy = *opts.PasswordPolicy
	}
	grantPolicy := permissions.DefaultGrants()
	if opts.GrantPolicy != nil {
		grantPolicy = *opts.GrantPolicy
	}

	identities := identity.NewService(opts.IdentityStore, passwordPolicy)
	matrix := permissions.NewMatrix(opts.IdentityStore, opts.GrantStore, grantPolicy)
	trail := audit.NewTrail(opts.AuditStore, opts.Logger)

	return &Service{
		identities: identities,
		matrix:     matrix,
		changes:    permissions.NewChangeAuditor(matrix, trail),
		sessions:   session.NewAuditor(identities, matrix, trail, opts.LoginLimiter),
		guard:      guard.New(matrix, trail),
		resources:  resource.NewOperations(opts.NoteStore, opts.TaskStore),
		trail:      trail,
		notifier:   opts.Notifier,
	}
}

// Identity resolves an identity by username.
func (s *Service) Identity(ctx context.Context, username string) (*identity.Identity, error) {
	return s.identities.Get(ctx, username)
}

// Register creates an identity, grants it the registration defaults, and
// starts its session.
func (s *Service) Register(ctx context.Context, username, password string, role identity.Role) (*identity.Identity, error) {
	return s.sessions.Register(ctx, username, password, role)
}

// Login verifies credentials and activates the session.
func (s *Service) Login(ctx context.Context, username, password string) (*identity.Identity, error) {
	return s.sessions.Login(ctx, username, password)
}

// Logout deactivates the session.
func (s *Service) Logout(ctx context.Context, username string) error {
	return s.sessions.Logout(ctx, username)
}

// Grant adds (resource, access) to username's grant set on behalf of
// actor, auditing and notifying every effective change.
func (s *Service) Grant(ctx context.Context, actor, username string, res permissions.Resource, access permissions.Access) (permissions.GrantSet, error) {
	before, after, err := s.changes.AuditedGrant(ctx, actor, username, res, access)
	if err != nil {
		return permissions.GrantSet{}, err
	}
	s.notifyDiff(ctx, actor, username, before, after)
	return after, nil
}

// Revoke removes (resource, access) from username's grant set on behalf
// of actor, auditing and notifying every effective change.
func (s *Service) Revoke(ctx context.Context, actor, username string, res permissions.Resource, access permissions.Access) (permissions.GrantSet, error) {
	before, after, err := s.changes.AuditedRevoke(ctx, actor, username, res, access)
	if err != nil {
		return permissions.GrantSet{}, err
	}
	s.notifyDiff(ctx, actor, username, before, after)
	return after, nil
}

// notifyDiff delivers one event per effective change. Delivery is
// advisory: failures are reported to stderr and swallowed, never failing
// the permission change itself.
func (s *Service) notifyDiff(ctx context.Context, actor, username string, before, after permissions.GrantSet) {
	if s.notifier == nil {
		return
	}
	added, removed := after.Diff(before)
	for _, g := range added {
		event := notification.NewEvent(notification.EventPermissionGranted, username, actor, g)
		if err := s.notifier.Notify(ctx, event); err != nil {
			fmt.Fprintf(os.Stderr, "notification error: %v\n", err)
		}
	}
	for _, g := range removed {
		event := notification.NewEvent(notification.EventPermissionRevoked, username, actor, g)
		if err := s.notifier.Notify(ctx, event); err != nil {
			fmt.Fprintf(os.Stderr, "notification error: %v\n", err)
		}
	}
}

// PermissionsOf returns username's current grant set.
func (s *Service) PermissionsOf(ctx context.Context, username string) (permissions.GrantSet, error) {
	return s.matrix.Snapshot(ctx, username)
}

// Run executes an arbitrary operation for username under a permission
// check. Most callers want the typed entry points below instead.
func (s *Service) Run(ctx context.Context, username string, res permissions.Resource, access permissions.Access, op guard.Operation) (*guard.Result, error) {
	return s.guard.Run(ctx, username, res, access, op)
}

// CreateNote creates a note for username under the ADD check.
func (s *Service) CreateNote(ctx context.Context, username, title, body string) (*resource.Note, error) {
	result, err := s.guard.Run(ctx, username, permissions.ResourceNote, permissions.AccessAdd,
		s.resources.CreateNote(username, title, body))
	if err != nil {
		return nil, err
	}
	return result.Value.(*resource.Note), nil
}

// ListNotes lists all notes for username under the VIEW check.
func (s *Service) ListNotes(ctx context.Context, username string) ([]*resource.Note, error) {
	result, err := s.guard.Run(ctx, username, permissions.ResourceNote, permissions.AccessView,
		s.resources.ListNotes())
	if err != nil {
		return nil, err
	}
	return result.Value.([]*resource.Note), nil
}

// GetNote resolves a single note for username under the VIEW check.
func (s *Service) GetNote(ctx context.Context, username, id string) (*resource.Note, error) {
	result, err := s.guard.Run(ctx, username, permissions.ResourceNote, permissions.AccessView,
		s.resources.ShowNote(id))
	if err != nil {
		return nil, err
	}
	return result.Value.(*resource.Note), nil
}

// UpdateNote replaces a note's content for username under the CHANGE check.
func (s *Service) UpdateNote(ctx context.Context, username, id, title, body string) (*resource.Note, error) {
	result, err := s.guard.Run(ctx, username, permissions.ResourceNote, permissions.AccessChange,
		s.resources.UpdateNote(id, title, body))
	if err != nil {
		return nil, err
	}
	return result.Value.(*resource.Note), nil
}

// DeleteNote removes a note for username under the DELETE check.
func (s *Service) DeleteNote(ctx context.Context, username, id string) error {
	_, err := s.guard.Run(ctx, username, permissions.ResourceNote, permissions.AccessDelete,
		s.resources.DeleteNote(id))
	return err
}

// CreateTask creates a task for username under the ADD check.
func (s *Service) CreateTask(ctx context.Context, username, title string) (*resource.Task, error) {
	result, err := s.guard.Run(ctx, username, permissions.ResourceTask, permissions.AccessAdd,
		s.resources.CreateTask(username, title))
	if err != nil {
		return nil, err
	}
	return result.Value.(*resource.Task), nil
}

// ListTasks lists all tasks for username under the VIEW check.
func (s *Service) ListTasks(ctx context.Context, username string) ([]*resource.Task, error) {
	result, err := s.guard.Run(ctx, username, permissions.ResourceTask, permissions.AccessView,
		s.resources.ListTasks())
	if err != nil {
		return nil, err
	}
	return result.Value.([]*resource.Task), nil
}

// GetTask resolves a single task for username under the VIEW check.
func (s *Service) GetTask(ctx context.Context, username, id string) (*resource.Task, error) {
	result, err := s.guard.Run(ctx, username, permissions.ResourceTask, permissions.AccessView,
		s.resources.ShowTask(id))
	if err != nil {
		return nil, err
	}
	return result.Value.(*resource.Task), nil
}

// CompleteTask marks a task done for username under the CHANGE check.
func (s *Service) CompleteTask(ctx context.Context, username, id string) (*resource.Task, error) {
	result, err := s.guard.Run(ctx, username, permissions.ResourceTask, permissions.AccessChange,
		s.resources.CompleteTask(id))
	if err != nil {
		return nil, err
	}
	return result.Value.(*resource.Task), nil
}

// DeleteTask removes a task for username under the DELETE check.
func (s *Service) DeleteTask(ctx context.Context, username, id string) error {
	_, err := s.guard.Run(ctx, username, permissions.ResourceTask, permissions.AccessDelete,
		s.resources.DeleteTask(id))
	return err
}

// AuditLog returns recent audit records, newest first.
func (s *Service) AuditLog(ctx context.Context, limit int) ([]*audit.Record, error) {
	return s.trail.List(ctx, limit)
}

// AuditLogFor returns recent audit records for one username, newest first.
func (s *Service) AuditLogFor(ctx context.Context, username string, limit int) ([]*audit.Record, error) {
	return s.trail.ListByUser(ctx, username, limit)
}

// AuditLogByKind returns recent audit records of one kind, newest first.
func (s *Service) AuditLogByKind(ctx context.Context, kind audit.Kind, limit int) ([]*audit.Record, error) {
	return s.trail.ListByKind(ctx, kind, limit)
}
