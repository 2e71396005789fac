package identity

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/wardkeep/wardkeep/validate"
)

// ErrWrongPassword is returned by ChangePassword when the current password
// does not verify against the stored digest.
var ErrWrongPassword = errors.New("current password does not match")

// Service is Wardkeep's credential store. It validates and hashes
// credentials, owns identity lifecycle transitions, and applies the one-time
// admin bootstrap invariant: the first identity ever created is promoted to
// ADMIN and activated regardless of the requested role.
type Service struct {
	store  Store
	policy PasswordPolicy

	// bootstrapMu serializes the count-then-promote bootstrap check so two
	// concurrent first registrations cannot both be promoted.
	bootstrapMu sync.Mutex

	// now is swappable for tests.
	now func() time.Time
}

// NewService creates a credential store backed by the given identity store,
// enforcing the given password policy.
func NewService(store Store, policy PasswordPolicy) *Service {
	return &Service{
		store:  store,
		policy: policy,
		now:    time.Now,
	}
}

// Create registers a new identity with the requested role.
// It fails with ErrIdentityExists on duplicate usernames and with an
// ErrWeakPassword-class error when the password fails policy. The very first
// identity in the store becomes ADMIN and active whatever role was asked for.
func (s *Service) Create(ctx context.Context, username, password string, role Role) (*Identity, error) {
	if err := validate.ValidateUsername(username); err != nil {
		return nil, err
	}
	if !role.IsValid() {
		return nil, fmt.Errorf("unknown role %q", role)
	}
	if err := s.policy.Validate(password); err != nil {
		return nil, err
	}

	hash, err := HashPassword(password)
	if err != nil {
		return nil, err
	}

	now := s.now()
	id := &Identity{
		Username:     username,
		PasswordHash: hash,
		Role:         role,
		Active:       false,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	// The count and the create must be atomic as a unit, otherwise two
	// concurrent first registrations could both observe an empty store.
	s.bootstrapMu.Lock()
	defer s.bootstrapMu.Unlock()

	count, err := s.store.Count(ctx)
	if err != nil {
		return nil, err
	}
	if count == 0 {
		id.Role = RoleAdmin
		id.Active = true
	}

	if err := s.store.Create(ctx, id); err != nil {
		return nil, err
	}
	return id, nil
}

// Get resolves an identity by username.
func (s *Service) Get(ctx context.Context, username string) (*Identity, error) {
	return s.store.Get(ctx, username)
}

// Activate marks the identity's session active if the password verifies.
// When a digest is stored and the password does not verify, it returns false
// and does not activate. When no digest has ever been stored (first-time
// activation path) or the password verifies, it activates and returns true.
func (s *Service) Activate(ctx context.Context, id *Identity, password string) (bool, error) {
	if id.PasswordHash != "" && !VerifyPassword(password, id.PasswordHash) {
		return false, nil
	}

	id.Active = true
	id.UpdatedAt = s.now()
	if err := s.store.Update(ctx, id); err != nil {
		return false, err
	}
	return true, nil
}

// Deactivate idempotently marks the identity's session inactive.
func (s *Service) Deactivate(ctx context.Context, id *Identity) error {
	if !id.Active {
		return nil
	}
	id.Active = false
	id.UpdatedAt = s.now()
	return s.store.Update(ctx, id)
}

// ChangePassword replaces the identity's password after verifying the
// current one. The new password must satisfy the password policy.
func (s *Service) ChangePassword(ctx context.Context, id *Identity, current, next string) error {
	if id.PasswordHash != "" && !VerifyPassword(current, id.PasswordHash) {
		return ErrWrongPassword
	}
	if err := s.policy.Validate(next); err != nil {
		return err
	}

	hash, err := HashPassword(next)
	if err != nil {
		return err
	}
	id.PasswordHash = hash
	id.UpdatedAt = s.now()
	return s.store.Update(ctx, id)
}
