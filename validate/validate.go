// Package validate provides centralized input validation utilities for
// Wardkeep's external boundaries.
//
// The package includes a username validator and a log sanitizer used by the
// audit trail so that attacker-controlled detail strings cannot inject
// fabricated log lines or control sequences.
package validate

import (
	"errors"
	"regexp"
	"strings"
	"unicode"
)

// Validation constants for input limits.
const (
	// MaxUsernameLength is the maximum length for usernames.
	MaxUsernameLength = 64

	// MaxDetailLength is the maximum length for audit detail strings.
	MaxDetailLength = 1024
)

// Validation errors for input validation failures.
var (
	// ErrUsernameEmpty indicates the username is empty.
	ErrUsernameEmpty = errors.New("username cannot be empty")

	// ErrUsernameTooLong indicates the username exceeds MaxUsernameLength.
	ErrUsernameTooLong = errors.New("username exceeds maximum length of 64 characters")

	// ErrUsernameInvalidChars indicates the username contains invalid characters.
	ErrUsernameInvalidChars = errors.New("username contains invalid characters; allowed: lowercase alphanumeric, dot, hyphen, underscore")

	// ErrUsernameNullByte indicates the username contains null bytes.
	ErrUsernameNullByte = errors.New("username contains null byte")

	// ErrUsernameControlChars indicates the username contains control characters.
	ErrUsernameControlChars = errors.New("username contains control characters")
)

// usernameRegex matches valid usernames: lowercase alphanumeric plus dot,
// hyphen, and underscore, starting with a letter or digit.
var usernameRegex = regexp.MustCompile(`^[a-z0-9][a-z0-9._-]*$`)

// ValidateUsername checks that a username is safe to store and to embed in
// audit details. Checks are ordered from cheap to expensive.
func ValidateUsername(username string) error {
	if username == "" {
		return ErrUsernameEmpty
	}
	if len(username) > MaxUsernameLength {
		return ErrUsernameTooLong
	}
	if strings.ContainsRune(username, 0) {
		return ErrUsernameNullByte
	}
	for _, r := range username {
		if unicode.IsControl(r) {
			return ErrUsernameControlChars
		}
	}
	if !usernameRegex.MatchString(username) {
		return ErrUsernameInvalidChars
	}
	return nil
}

// SanitizeLogValue makes a string safe for single-line log output and audit
// details. Newlines become spaces, other control characters are dropped, and
// the result is truncated to MaxDetailLength.
func SanitizeLogValue(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		switch {
		case r == '\n' || r == '\r' || r == '\t':
			b.WriteRune(' ')
		case unicode.IsControl(r):
			// dropped
		default:
			b.WriteRune(r)
		}
	}
	out := b.String()
	if len(out) > MaxDetailLength {
		out = out[:MaxDetailLength]
	}
	return out
}
