// Package permissions provides Wardkeep's permission matrix: the mapping
// from identity to its set of (resource, access-level) grants, the
// grant/revoke protocol that mutates it, and the diff-based change auditor
// that records every effective permission change.
package permissions

import (
	"errors"
	"fmt"
	"strings"
)

// Enum validation errors. These are caller-input errors and are surfaced
// immediately, without audit-logging overhead.
var (
	// ErrUnknownResource is returned for resource names outside the known set.
	ErrUnknownResource = errors.New("unknown resource")

	// ErrUnknownAccess is returned for access levels outside the known set.
	ErrUnknownAccess = errors.New("unknown access level")

	// ErrUnknownIdentity is returned when a grant or revoke targets a
	// username that cannot be resolved.
	ErrUnknownIdentity = errors.New("unknown identity")
)

// Resource identifies a type of gated resource.
type Resource string

const (
	// ResourceNote is the notes resource type.
	ResourceNote Resource = "NOTE"
	// ResourceTask is the tasks resource type.
	ResourceTask Resource = "TASK"
)

// IsValid returns true if the Resource is a known value.
func (r Resource) IsValid() bool {
	switch r {
	case ResourceNote, ResourceTask:
		return true
	}
	return false
}

// String returns the string representation of the Resource.
func (r Resource) String() string {
	return string(r)
}

// AllResources returns all valid resource values.
func AllResources() []Resource {
	return []Resource{ResourceNote, ResourceTask}
}

// ParseResource parses a resource name, case-insensitively.
func ParseResource(s string) (Resource, error) {
	r := Resource(strings.ToUpper(strings.TrimSpace(s)))
	if !r.IsValid() {
		return "", fmt.Errorf("%w: %q", ErrUnknownResource, s)
	}
	return r, nil
}

// Access identifies an access level on a resource.
//
// The operational vocabulary VIEW/ADD/CHANGE/DELETE is canonical. The
// abstract names READ/WRITE/UPDATE seen in older documents are accepted by
// ParseAccess as aliases and normalized (READ->VIEW, WRITE->ADD,
// UPDATE->CHANGE); they never appear in stored grants or audit records.
type Access string

const (
	// AccessView permits listing and reading a resource.
	AccessView Access = "VIEW"
	// AccessAdd permits creating a resource.
	AccessAdd Access = "ADD"
	// AccessChange permits editing a resource.
	AccessChange Access = "CHANGE"
	// AccessDelete permits deleting a resource.
	AccessDelete Access = "DELETE"
)

// accessAliases maps the abstract access vocabulary onto the canonical one.
var accessAliases = map[string]Access{
	"READ":   AccessView,
	"WRITE":  AccessAdd,
	"UPDATE": AccessChange,
}

// IsValid returns true if the Access is a known canonical value.
func (a Access) IsValid() bool {
	switch a {
	case AccessView, AccessAdd, AccessChange, AccessDelete:
		return true
	}
	return false
}

// String returns the string representation of the Access.
func (a Access) String() string {
	return string(a)
}

// AllAccessLevels returns all valid canonical access values.
func AllAccessLevels() []Access {
	return []Access{AccessView, AccessAdd, AccessChange, AccessDelete}
}

// ParseAccess parses an access level, case-insensitively, accepting both the
// canonical names and the abstract aliases.
func ParseAccess(s string) (Access, error) {
	upper := strings.ToUpper(strings.TrimSpace(s))
	if alias, ok := accessAliases[upper]; ok {
		return alias, nil
	}
	a := Access(upper)
	if !a.IsValid() {
		return "", fmt.Errorf("%w: %q", ErrUnknownAccess, s)
	}
	return a, nil
}

// Grant is a single (resource, access-level) authorization fact. A grant is
// a set member: holding it twice is meaningless and absence means no access.
type Grant struct {
	// Resource is the resource type the grant applies to.
	Resource Resource `yaml:"resource" json:"resource"`

	// Access is the access level held on the resource.
	Access Access `yaml:"access" json:"access"`
}

// IsValid returns true if both components are known enum values.
func (g Grant) IsValid() bool {
	return g.Resource.IsValid() && g.Access.IsValid()
}

// Codename returns the grant's compact lowercase form, e.g. "view_note".
// Audit record kinds for resource actions use this form.
func (g Grant) Codename() string {
	return strings.ToLower(string(g.Access)) + "_" + strings.ToLower(string(g.Resource))
}

// String returns a human-readable form, e.g. "VIEW on NOTE".
func (g Grant) String() string {
	return string(g.Access) + " on " + string(g.Resource)
}
