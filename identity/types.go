// Package identity defines Wardkeep's identity schema and credential store.
// Identities are the authenticated principals of the system: each carries a
// unique username, a salted password hash, a role, and an active-session
// flag. The first identity ever created is promoted to ADMIN and activated
// as a one-time bootstrap step.
package identity

import (
	"time"
)

// Role represents the privilege tier of an identity.
// It can be ADMIN or USER.
type Role string

const (
	// RoleAdmin grants the full default permission set at registration.
	RoleAdmin Role = "ADMIN"
	// RoleUser grants the view-only default permission set at registration.
	RoleUser Role = "USER"
)

// IsValid returns true if the Role is a known value.
func (r Role) IsValid() bool {
	switch r {
	case RoleAdmin, RoleUser:
		return true
	}
	return false
}

// String returns the string representation of the Role.
func (r Role) String() string {
	return string(r)
}

// AllRoles returns all valid role values.
func AllRoles() []Role {
	return []Role{RoleAdmin, RoleUser}
}

// Identity represents an authenticated principal.
// The username is immutable once created; everything else is mutated through
// the credential store (activation, deactivation, password changes).
// Identities are never hard-deleted.
type Identity struct {
	// Username is the unique, immutable login name.
	Username string `yaml:"username" json:"username"`

	// PasswordHash is the salted bcrypt digest of the password.
	// Empty until a password has been set.
	PasswordHash string `yaml:"password_hash" json:"password_hash"`

	// Role is the privilege tier (ADMIN or USER).
	Role Role `yaml:"role" json:"role"`

	// Active reports whether the identity currently has a live session.
	Active bool `yaml:"active" json:"active"`

	// CreatedAt is when the identity was registered.
	CreatedAt time.Time `yaml:"created_at" json:"created_at"`

	// UpdatedAt is when the identity record was last modified.
	UpdatedAt time.Time `yaml:"updated_at" json:"updated_at"`
}

// IsAdmin returns true if the identity holds the ADMIN role.
func (i *Identity) IsAdmin() bool {
	return i.Role == RoleAdmin
}
