package permissions

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/wardkeep/wardkeep/identity"
)

// DefaultGrantPolicy decides which grants an identity receives at
// registration. This is a registration-time policy decision, not a rule the
// Matrix enforces elsewhere.
type DefaultGrantPolicy struct {
	// Everyone is granted to every identity on every resource.
	Everyone []Access `yaml:"everyone" json:"everyone"`

	// AdminExtra is additionally granted on every resource when the
	// identity's role is ADMIN.
	AdminExtra []Access `yaml:"admin_extra" json:"admin_extra"`
}

// DefaultGrants returns the stock policy: VIEW for everyone, plus
// ADD/CHANGE/DELETE for admins.
func DefaultGrants() DefaultGrantPolicy {
	return DefaultGrantPolicy{
		Everyone:   []Access{AccessView},
		AdminExtra: []Access{AccessAdd, AccessChange, AccessDelete},
	}
}

// Matrix maps identities to their grant sets and exclusively owns all grant
// mutation. Every read-modify-write on one identity's set runs under that
// identity's lock, so concurrent grant/revoke calls can never interleave
// into a lost update. A Matrix never holds locks for two identities at once.
type Matrix struct {
	identities identity.Store
	store      Store
	policy     DefaultGrantPolicy

	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

// NewMatrix creates a permission matrix over the given identity and grant
// stores, using the given default-grant policy at registration.
func NewMatrix(identities identity.Store, store Store, policy DefaultGrantPolicy) *Matrix {
	return &Matrix{
		identities: identities,
		store:      store,
		policy:     policy,
		locks:      make(map[string]*sync.Mutex),
	}
}

// lockFor returns the mutex guarding one identity's grant set.
func (m *Matrix) lockFor(username string) *sync.Mutex {
	m.mu.Lock()
	defer m.mu.Unlock()

	l, ok := m.locks[username]
	if !ok {
		l = &sync.Mutex{}
		m.locks[username] = l
	}
	return l
}

// resolve checks that the username exists, translating the store's
// not-found into ErrUnknownIdentity for callers of the grant protocol.
func (m *Matrix) resolve(ctx context.Context, username string) error {
	_, err := m.identities.Get(ctx, username)
	if err != nil {
		if errors.Is(err, identity.ErrIdentityNotFound) {
			return fmt.Errorf("%w: %s", ErrUnknownIdentity, username)
		}
		return err
	}
	return nil
}

// validateGrant rejects unknown enum values before any store work.
func validateGrant(resource Resource, access Access) error {
	if !resource.IsValid() {
		return fmt.Errorf("%w: %q", ErrUnknownResource, resource)
	}
	if !access.IsValid() {
		return fmt.Errorf("%w: %q", ErrUnknownAccess, access)
	}
	return nil
}

// Grant idempotently adds (resource, access) to the identity's grant set and
// returns the full resulting set. Fails with ErrUnknownIdentity for
// unresolvable usernames and ErrUnknownResource/ErrUnknownAccess for invalid
// enum values.
func (m *Matrix) Grant(ctx context.Context, username string, resource Resource, access Access) (GrantSet, error) {
	_, after, err := m.GrantDiff(ctx, username, resource, access)
	return after, err
}

// Revoke idempotently removes (resource, access) from the identity's grant
// set and returns the full resulting set.
func (m *Matrix) Revoke(ctx context.Context, username string, resource Resource, access Access) (GrantSet, error) {
	_, after, err := m.RevokeDiff(ctx, username, resource, access)
	return after, err
}

// GrantDiff is Grant returning both the before and after snapshots. Both
// are taken under the identity lock that covers the mutation, so the pair
// always brackets exactly this change, never a concurrent one.
func (m *Matrix) GrantDiff(ctx context.Context, username string, resource Resource, access Access) (before, after GrantSet, err error) {
	return m.change(ctx, username, resource, access, m.store.Put)
}

// RevokeDiff is Revoke returning both the before and after snapshots,
// with the same consistency guarantee as GrantDiff.
func (m *Matrix) RevokeDiff(ctx context.Context, username string, resource Resource, access Access) (before, after GrantSet, err error) {
	return m.change(ctx, username, resource, access, m.store.Delete)
}

// change runs one store mutation between two snapshots, all under the
// identity lock.
func (m *Matrix) change(ctx context.Context, username string, resource Resource, access Access, op func(context.Context, string, Grant) error) (GrantSet, GrantSet, error) {
	if err := validateGrant(resource, access); err != nil {
		return GrantSet{}, GrantSet{}, err
	}

	l := m.lockFor(username)
	l.Lock()
	defer l.Unlock()

	if err := m.resolve(ctx, username); err != nil {
		return GrantSet{}, GrantSet{}, err
	}
	before, err := m.snapshotLocked(ctx, username)
	if err != nil {
		return GrantSet{}, GrantSet{}, err
	}
	if err := op(ctx, username, Grant{Resource: resource, Access: access}); err != nil {
		return GrantSet{}, GrantSet{}, err
	}
	after, err := m.snapshotLocked(ctx, username)
	if err != nil {
		return GrantSet{}, GrantSet{}, err
	}
	return before, after, nil
}

// Has reports whether the identity holds (resource, access). Unknown
// usernames simply hold nothing.
func (m *Matrix) Has(ctx context.Context, username string, resource Resource, access Access) (bool, error) {
	if err := validateGrant(resource, access); err != nil {
		return false, err
	}
	set, err := m.Snapshot(ctx, username)
	if err != nil {
		return false, err
	}
	return set.Has(resource, access), nil
}

// AccessOn returns the access levels the identity holds on a resource,
// sorted, for introspection and display.
func (m *Matrix) AccessOn(ctx context.Context, username string, resource Resource) ([]Access, error) {
	if !resource.IsValid() {
		return nil, fmt.Errorf("%w: %q", ErrUnknownResource, resource)
	}
	set, err := m.Snapshot(ctx, username)
	if err != nil {
		return nil, err
	}
	return set.AccessOn(resource), nil
}

// Snapshot returns an immutable snapshot of the identity's current grants.
func (m *Matrix) Snapshot(ctx context.Context, username string) (GrantSet, error) {
	grants, err := m.store.List(ctx, username)
	if err != nil {
		return GrantSet{}, err
	}
	return NewGrantSet(grants), nil
}

// snapshotLocked is Snapshot for callers already holding the identity lock.
func (m *Matrix) snapshotLocked(ctx context.Context, username string) (GrantSet, error) {
	grants, err := m.store.List(ctx, username)
	if err != nil {
		return GrantSet{}, err
	}
	return NewGrantSet(grants), nil
}

// GrantDefaults applies the registration-time default-grant policy: the
// Everyone accesses on every resource for any identity, plus the AdminExtra
// accesses when the role is ADMIN. Called exactly once, at registration.
func (m *Matrix) GrantDefaults(ctx context.Context, id *identity.Identity) error {
	l := m.lockFor(id.Username)
	l.Lock()
	defer l.Unlock()

	accesses := m.policy.Everyone
	if id.IsAdmin() {
		accesses = append(append([]Access{}, m.policy.Everyone...), m.policy.AdminExtra...)
	}

	for _, resource := range AllResources() {
		for _, access := range accesses {
			grant := Grant{Resource: resource, Access: access}
			if !grant.IsValid() {
				return fmt.Errorf("default grant policy contains invalid grant %q", grant.Codename())
			}
			if err := m.store.Put(ctx, id.Username, grant); err != nil {
				return err
			}
		}
	}
	return nil
}
