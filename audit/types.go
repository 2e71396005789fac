// Package audit defines Wardkeep's append-only audit trail.
// Every sensitive action (session events, permission changes, and gated
// resource operations, successful or not) becomes one immutable Record.
// Records are created exclusively through the Trail's append operation,
// which is invoked only by the permission guard, the permission change
// auditor, and the session auditor; business logic never writes records
// directly.
//
// # Record ID Format
//
// Record IDs are 16-character lowercase hexadecimal strings (64 bits of
// entropy), providing uniqueness and correlation across the trail.
package audit

import (
	"crypto/rand"
	"encoding/hex"
	"regexp"
	"strings"
	"time"
)

// RecordIDLength is the exact length for record IDs (16 hex chars).
const RecordIDLength = 16

// Kind is the action kind recorded on an audit record: a session action
// (register, login, logout), a permission-change action (grant, revoke), or
// a resource-action codename such as "view_task" or "add_note".
type Kind string

const (
	// KindRegister records a registration attempt.
	KindRegister Kind = "register"
	// KindLogin records a login attempt.
	KindLogin Kind = "login"
	// KindLogout records a logout attempt.
	KindLogout Kind = "logout"
	// KindGrant records a permission being granted.
	KindGrant Kind = "grant"
	// KindRevoke records a permission being revoked.
	KindRevoke Kind = "revoke"
)

// kindCodenameRegex matches resource-action kinds like "view_note".
var kindCodenameRegex = regexp.MustCompile(`^[a-z]+_[a-z]+$`)

// IsValid returns true for the fixed kinds and for resource-action
// codenames of the form "<access>_<resource>".
func (k Kind) IsValid() bool {
	switch k {
	case KindRegister, KindLogin, KindLogout, KindGrant, KindRevoke:
		return true
	}
	return kindCodenameRegex.MatchString(string(k))
}

// String returns the string representation of the Kind.
func (k Kind) String() string {
	return string(k)
}

// KindFor derives the resource-action kind for an access level on a
// resource, e.g. KindFor("VIEW", "TASK") == "view_task".
func KindFor(access, resource string) Kind {
	return Kind(strings.ToLower(access) + "_" + strings.ToLower(resource))
}

// Record is one immutable entry in the audit trail.
// The username is a weak reference: it is recorded as plain text and never
// cascades, so a record outlives any change to the identity it names.
type Record struct {
	// ID is the unique record identifier (16 lowercase hex chars).
	ID string `yaml:"id" json:"id"`

	// Username names the identity the action is attributed to.
	Username string `yaml:"username" json:"username"`

	// Timestamp is when the record was appended.
	Timestamp time.Time `yaml:"timestamp" json:"timestamp"`

	// Kind is the action kind.
	Kind Kind `yaml:"kind" json:"kind"`

	// Detail is the free-text description of what happened.
	Detail string `yaml:"detail" json:"detail"`

	// Success reports whether the recorded action succeeded.
	Success bool `yaml:"success" json:"success"`
}

// recordIDRegex matches valid record IDs (16 lowercase hex chars).
var recordIDRegex = regexp.MustCompile(`^[0-9a-f]{16}$`)

// NewRecordID generates a new 16-character lowercase hex record ID using
// crypto/rand.
func NewRecordID() string {
	bytes := make([]byte, 8)
	if _, err := rand.Read(bytes); err != nil {
		// This should never happen with crypto/rand.
		// Fall back to zeros rather than panic.
		return "0000000000000000"
	}
	return hex.EncodeToString(bytes)
}

// ValidateRecordID checks if the given string is a valid record ID.
func ValidateRecordID(id string) bool {
	return recordIDRegex.MatchString(id)
}
