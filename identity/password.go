package identity

import (
	"errors"
	"fmt"
	"unicode"

	"golang.org/x/crypto/bcrypt"
)

// Default password policy values, matching the registration policy defaults.
const (
	// DefaultMinLength is the default minimum password length.
	DefaultMinLength = 8
	// DefaultMinDigits is the default minimum number of digit characters.
	DefaultMinDigits = 1
	// DefaultMinSpecial is the default minimum number of non-alphanumeric characters.
	DefaultMinSpecial = 1
)

// Password policy errors. All wrap ErrWeakPassword so callers can match the
// whole class with errors.Is.
var (
	// ErrWeakPassword is the class error for any policy violation.
	ErrWeakPassword = errors.New("password does not satisfy the password policy")

	// ErrPasswordTooShort indicates the password is below the minimum length.
	ErrPasswordTooShort = fmt.Errorf("%w: too short", ErrWeakPassword)

	// ErrPasswordNoDigit indicates the password has too few digits.
	ErrPasswordNoDigit = fmt.Errorf("%w: missing digit", ErrWeakPassword)

	// ErrPasswordNoSpecial indicates the password has too few special characters.
	ErrPasswordNoSpecial = fmt.Errorf("%w: missing special character", ErrWeakPassword)
)

// PasswordPolicy holds the configurable strength requirements enforced at
// registration and password change.
type PasswordPolicy struct {
	// MinLength is the minimum password length in bytes.
	MinLength int `yaml:"min_length" json:"min_length"`

	// MinDigits is the minimum number of digit characters.
	MinDigits int `yaml:"min_digits" json:"min_digits"`

	// MinSpecial is the minimum number of non-alphanumeric characters.
	MinSpecial int `yaml:"min_special" json:"min_special"`
}

// DefaultPasswordPolicy returns the policy used when no registration policy
// file overrides it: minimum 8 characters, 1 digit, 1 special character.
func DefaultPasswordPolicy() PasswordPolicy {
	return PasswordPolicy{
		MinLength:  DefaultMinLength,
		MinDigits:  DefaultMinDigits,
		MinSpecial: DefaultMinSpecial,
	}
}

// Validate checks a candidate password against the policy.
// The returned errors all match ErrWeakPassword via errors.Is.
func (p PasswordPolicy) Validate(password string) error {
	if len(password) < p.MinLength {
		return fmt.Errorf("%w (minimum %d characters)", ErrPasswordTooShort, p.MinLength)
	}

	digits, special := 0, 0
	for _, r := range password {
		switch {
		case unicode.IsDigit(r):
			digits++
		case !unicode.IsLetter(r) && !unicode.IsDigit(r):
			special++
		}
	}
	if digits < p.MinDigits {
		return fmt.Errorf("%w (minimum %d)", ErrPasswordNoDigit, p.MinDigits)
	}
	if special < p.MinSpecial {
		return fmt.Errorf("%w (minimum %d)", ErrPasswordNoSpecial, p.MinSpecial)
	}
	return nil
}

// HashPassword produces a salted bcrypt digest of the password.
// bcrypt generates a fresh random salt per call, so hashing the same
// password twice yields different digests.
func HashPassword(password string) (string, error) {
	digest, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("hash password: %w", err)
	}
	return string(digest), nil
}

// VerifyPassword reports whether the password matches the stored digest.
// It never returns an error on mismatch; bcrypt's comparison is resistant
// to timing attacks.
func VerifyPassword(password, digest string) bool {
	return bcrypt.CompareHashAndPassword([]byte(digest), []byte(password)) == nil
}
