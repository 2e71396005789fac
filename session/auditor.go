// Package session wraps the credential store's lifecycle operations with
// audit logging and login throttling. Registration, login, and logout all
// flow through the Auditor, so every session transition, successful or not,
// leaves a record.
package session

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/wardkeep/wardkeep/audit"
	"github.com/wardkeep/wardkeep/identity"
	"github.com/wardkeep/wardkeep/permissions"
	"github.com/wardkeep/wardkeep/ratelimit"
	"github.com/wardkeep/wardkeep/validate"
)

var (
	// ErrInvalidCredentials is returned on login when the username is
	// unknown or the password does not verify. The two cases are
	// indistinguishable to the caller.
	ErrInvalidCredentials = errors.New("invalid credentials")

	// ErrAlreadyLoggedOut is returned on logout of an inactive session.
	ErrAlreadyLoggedOut = errors.New("already logged out")

	// ErrRateLimited is returned when login attempts for a username are
	// throttled.
	ErrRateLimited = errors.New("too many login attempts")
)

// Session detail strings. Fixed text, so log pipelines can match on them.
const (
	detailLoginTrue   = "Logged in - true"
	detailLoginFalse  = "Logged in - false"
	detailLogoutTrue  = "Logged out - true"
	detailLogoutFalse = "Logged out - false"
)

// Auditor runs the session protocol: credential checks through the
// identity service, default grants at registration, throttling on login,
// and an audit record for every attempt that names a real identity.
//
// Attempts against usernames that resolve to nothing are rejected without
// a record; the trail tracks identities, not arbitrary input strings.
type Auditor struct {
	identities *identity.Service
	matrix     *permissions.Matrix
	trail      *audit.Trail
	limiter    ratelimit.RateLimiter
}

// NewAuditor creates a session auditor. A nil limiter disables login
// throttling.
func NewAuditor(identities *identity.Service, matrix *permissions.Matrix, trail *audit.Trail, limiter ratelimit.RateLimiter) *Auditor {
	return &Auditor{
		identities: identities,
		matrix:     matrix,
		trail:      trail,
		limiter:    limiter,
	}
}

// Register creates an identity, applies the default-grant policy, and
// activates the fresh session. A successful registration is recorded as a
// logged-in session; a failed one is recorded against the attempted
// username unless the username itself was unusable.
func (a *Auditor) Register(ctx context.Context, username, password string, role identity.Role) (*identity.Identity, error) {
	// A malformed username never reaches the trail.
	if err := validate.ValidateUsername(username); err != nil {
		return nil, err
	}

	id, err := a.identities.Create(ctx, username, password, role)
	if err != nil {
		if _, recErr := a.trail.Failure(ctx, username, audit.KindRegister, err.Error()); recErr != nil {
			return nil, recErr
		}
		return nil, err
	}

	if err := a.matrix.GrantDefaults(ctx, id); err != nil {
		return nil, err
	}

	// Registration doubles as the first login.
	if _, err := a.identities.Activate(ctx, id, password); err != nil {
		return nil, err
	}

	if _, err := a.trail.Success(ctx, username, audit.KindRegister, detailLoginTrue); err != nil {
		return nil, err
	}
	return id, nil
}

// Login verifies credentials and activates the session. Unknown usernames
// and wrong passwords both return ErrInvalidCredentials; only the latter
// leaves a record, attributed to the real identity it targeted.
func (a *Auditor) Login(ctx context.Context, username, password string) (*identity.Identity, error) {
	if a.limiter != nil {
		allowed, retryAfter, err := a.limiter.Allow(ctx, username)
		if err != nil {
			return nil, err
		}
		if !allowed {
			return nil, fmt.Errorf("%w: retry in %s", ErrRateLimited, retryAfter.Round(time.Second))
		}
	}

	id, err := a.identities.Get(ctx, username)
	if err != nil {
		if errors.Is(err, identity.ErrIdentityNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}

	ok, err := a.identities.Activate(ctx, id, password)
	if err != nil {
		return nil, err
	}
	if !ok {
		if _, recErr := a.trail.Failure(ctx, username, audit.KindLogin, detailLoginFalse); recErr != nil {
			return nil, recErr
		}
		return nil, ErrInvalidCredentials
	}

	if _, err := a.trail.Success(ctx, username, audit.KindLogin, detailLoginTrue); err != nil {
		return nil, err
	}
	return id, nil
}

// Logout deactivates the session. Logging out an already-inactive session
// fails with ErrAlreadyLoggedOut and is recorded as a failed attempt.
func (a *Auditor) Logout(ctx context.Context, username string) error {
	id, err := a.identities.Get(ctx, username)
	if err != nil {
		return err
	}

	if !id.Active {
		if _, recErr := a.trail.Failure(ctx, username, audit.KindLogout, detailLogoutFalse); recErr != nil {
			return recErr
		}
		return ErrAlreadyLoggedOut
	}

	if err := a.identities.Deactivate(ctx, id); err != nil {
		return err
	}

	if _, err := a.trail.Success(ctx, username, audit.KindLogout, detailLogoutTrue); err != nil {
		return err
	}
	return nil
}
