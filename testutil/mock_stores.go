package testutil

import (
	"context"
	"sort"
	"sync"

	"github.com/wardkeep/wardkeep/audit"
	"github.com/wardkeep/wardkeep/identity"
	"github.com/wardkeep/wardkeep/logging"
	"github.com/wardkeep/wardkeep/notification"
	"github.com/wardkeep/wardkeep/permissions"
)

// ============================================================================
// MockIdentityStore - implements identity.Store interface
// ============================================================================

// MockIdentityStore implements identity.Store for testing.
// Supports configurable responses and in-memory storage for stateful tests.
type MockIdentityStore struct {
	mu sync.Mutex

	// Configurable behavior functions
	CreateFunc func(ctx context.Context, id *identity.Identity) error
	GetFunc    func(ctx context.Context, username string) (*identity.Identity, error)
	UpdateFunc func(ctx context.Context, id *identity.Identity) error
	ListFunc   func(ctx context.Context, limit int) ([]*identity.Identity, error)
	CountFunc  func(ctx context.Context) (int, error)

	// Error injection (used if behavior function is nil)
	CreateErr error
	GetErr    error
	UpdateErr error
	ListErr   error
	CountErr  error

	// In-memory storage for stateful tests
	Identities map[string]*identity.Identity

	// Call tracking
	CreateCalls []*identity.Identity
	GetCalls    []string
	UpdateCalls []*identity.Identity
	ListCalls   []int
	CountCalls  int
}

// NewMockIdentityStore creates a new MockIdentityStore with initialized maps.
func NewMockIdentityStore() *MockIdentityStore {
	return &MockIdentityStore{
		Identities: make(map[string]*identity.Identity),
	}
}

// Create stores a new identity.
func (m *MockIdentityStore) Create(ctx context.Context, id *identity.Identity) error {
	m.mu.Lock()
	m.CreateCalls = append(m.CreateCalls, id)
	m.mu.Unlock()

	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, id)
	}
	if m.CreateErr != nil {
		return m.CreateErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Identities == nil {
		m.Identities = make(map[string]*identity.Identity)
	}
	if _, ok := m.Identities[id.Username]; ok {
		return identity.ErrIdentityExists
	}
	m.Identities[id.Username] = id
	return nil
}

// Get retrieves an identity by username.
func (m *MockIdentityStore) Get(ctx context.Context, username string) (*identity.Identity, error) {
	m.mu.Lock()
	m.GetCalls = append(m.GetCalls, username)
	m.mu.Unlock()

	if m.GetFunc != nil {
		return m.GetFunc(ctx, username)
	}
	if m.GetErr != nil {
		return nil, m.GetErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if id, ok := m.Identities[username]; ok {
		return id, nil
	}
	return nil, identity.ErrIdentityNotFound
}

// Update modifies an existing identity.
func (m *MockIdentityStore) Update(ctx context.Context, id *identity.Identity) error {
	m.mu.Lock()
	m.UpdateCalls = append(m.UpdateCalls, id)
	m.mu.Unlock()

	if m.UpdateFunc != nil {
		return m.UpdateFunc(ctx, id)
	}
	if m.UpdateErr != nil {
		return m.UpdateErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.Identities[id.Username]; !ok {
		return identity.ErrIdentityNotFound
	}
	m.Identities[id.Username] = id
	return nil
}

// List returns identities ordered by username.
func (m *MockIdentityStore) List(ctx context.Context, limit int) ([]*identity.Identity, error) {
	m.mu.Lock()
	m.ListCalls = append(m.ListCalls, limit)
	m.mu.Unlock()

	if m.ListFunc != nil {
		return m.ListFunc(ctx, limit)
	}
	if m.ListErr != nil {
		return nil, m.ListErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]*identity.Identity, 0, len(m.Identities))
	for _, id := range m.Identities {
		out = append(out, id)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Username < out[j].Username })
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

// Count returns the number of identities in the store.
func (m *MockIdentityStore) Count(ctx context.Context) (int, error) {
	m.mu.Lock()
	m.CountCalls++
	m.mu.Unlock()

	if m.CountFunc != nil {
		return m.CountFunc(ctx)
	}
	if m.CountErr != nil {
		return 0, m.CountErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.Identities), nil
}

// Reset clears all call tracking and stored data.
func (m *MockIdentityStore) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.CreateCalls = nil
	m.GetCalls = nil
	m.UpdateCalls = nil
	m.ListCalls = nil
	m.CountCalls = 0
	m.Identities = make(map[string]*identity.Identity)
}

// ============================================================================
// MockGrantStore - implements permissions.Store interface
// ============================================================================

// MockGrantStore implements permissions.Store for testing.
// Supports configurable responses and in-memory storage for stateful tests.
type MockGrantStore struct {
	mu sync.Mutex

	// Configurable behavior functions
	PutFunc    func(ctx context.Context, username string, grant permissions.Grant) error
	DeleteFunc func(ctx context.Context, username string, grant permissions.Grant) error
	ListFunc   func(ctx context.Context, username string) ([]permissions.Grant, error)

	// Error injection (used if behavior function is nil)
	PutErr    error
	DeleteErr error
	ListErr   error

	// In-memory storage for stateful tests
	Grants map[string][]permissions.Grant

	// Call tracking
	PutCalls    []GrantCall
	DeleteCalls []GrantCall
	ListCalls   []string
}

// GrantCall tracks parameters for Put and Delete calls.
type GrantCall struct {
	Username string
	Grant    permissions.Grant
}

// NewMockGrantStore creates a new MockGrantStore with initialized maps.
func NewMockGrantStore() *MockGrantStore {
	return &MockGrantStore{
		Grants: make(map[string][]permissions.Grant),
	}
}

// Put stores a grant for a username.
func (m *MockGrantStore) Put(ctx context.Context, username string, grant permissions.Grant) error {
	m.mu.Lock()
	m.PutCalls = append(m.PutCalls, GrantCall{Username: username, Grant: grant})
	m.mu.Unlock()

	if m.PutFunc != nil {
		return m.PutFunc(ctx, username, grant)
	}
	if m.PutErr != nil {
		return m.PutErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Grants == nil {
		m.Grants = make(map[string][]permissions.Grant)
	}
	for _, g := range m.Grants[username] {
		if g == grant {
			return nil
		}
	}
	m.Grants[username] = append(m.Grants[username], grant)
	return nil
}

// Delete removes a grant from a username.
func (m *MockGrantStore) Delete(ctx context.Context, username string, grant permissions.Grant) error {
	m.mu.Lock()
	m.DeleteCalls = append(m.DeleteCalls, GrantCall{Username: username, Grant: grant})
	m.mu.Unlock()

	if m.DeleteFunc != nil {
		return m.DeleteFunc(ctx, username, grant)
	}
	if m.DeleteErr != nil {
		return m.DeleteErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	kept := m.Grants[username][:0]
	for _, g := range m.Grants[username] {
		if g != grant {
			kept = append(kept, g)
		}
	}
	m.Grants[username] = kept
	return nil
}

// List returns all grants held by a username.
func (m *MockGrantStore) List(ctx context.Context, username string) ([]permissions.Grant, error) {
	m.mu.Lock()
	m.ListCalls = append(m.ListCalls, username)
	m.mu.Unlock()

	if m.ListFunc != nil {
		return m.ListFunc(ctx, username)
	}
	if m.ListErr != nil {
		return nil, m.ListErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]permissions.Grant, len(m.Grants[username]))
	copy(out, m.Grants[username])
	return out, nil
}

// Reset clears all call tracking and stored data.
func (m *MockGrantStore) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.PutCalls = nil
	m.DeleteCalls = nil
	m.ListCalls = nil
	m.Grants = make(map[string][]permissions.Grant)
}

// ============================================================================
// MockAuditStore - implements audit.Store interface
// ============================================================================

// MockAuditStore implements audit.Store for testing.
// Appended records are kept in order; lists return newest first.
type MockAuditStore struct {
	mu sync.Mutex

	// Configurable behavior functions
	AppendFunc     func(ctx context.Context, rec *audit.Record) error
	ListFunc       func(ctx context.Context, limit int) ([]*audit.Record, error)
	ListByUserFunc func(ctx context.Context, username string, limit int) ([]*audit.Record, error)
	ListByKindFunc func(ctx context.Context, kind audit.Kind, limit int) ([]*audit.Record, error)

	// Error injection (used if behavior function is nil)
	AppendErr     error
	ListErr       error
	ListByUserErr error
	ListByKindErr error

	// In-memory storage for stateful tests, oldest first
	Records []*audit.Record

	// Call tracking
	AppendCalls []*audit.Record
}

// NewMockAuditStore creates a new MockAuditStore.
func NewMockAuditStore() *MockAuditStore {
	return &MockAuditStore{}
}

// Append stores a new record.
func (m *MockAuditStore) Append(ctx context.Context, rec *audit.Record) error {
	m.mu.Lock()
	m.AppendCalls = append(m.AppendCalls, rec)
	m.mu.Unlock()

	if m.AppendFunc != nil {
		return m.AppendFunc(ctx, rec)
	}
	if m.AppendErr != nil {
		return m.AppendErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, existing := range m.Records {
		if existing.ID == rec.ID {
			return audit.ErrRecordExists
		}
	}
	m.Records = append(m.Records, rec)
	return nil
}

// List returns records newest first.
func (m *MockAuditStore) List(ctx context.Context, limit int) ([]*audit.Record, error) {
	if m.ListFunc != nil {
		return m.ListFunc(ctx, limit)
	}
	if m.ListErr != nil {
		return nil, m.ListErr
	}
	return m.filter(func(*audit.Record) bool { return true }, limit), nil
}

// ListByUser returns records attributed to a username, newest first.
func (m *MockAuditStore) ListByUser(ctx context.Context, username string, limit int) ([]*audit.Record, error) {
	if m.ListByUserFunc != nil {
		return m.ListByUserFunc(ctx, username, limit)
	}
	if m.ListByUserErr != nil {
		return nil, m.ListByUserErr
	}
	return m.filter(func(rec *audit.Record) bool { return rec.Username == username }, limit), nil
}

// ListByKind returns records of a specific kind, newest first.
func (m *MockAuditStore) ListByKind(ctx context.Context, kind audit.Kind, limit int) ([]*audit.Record, error) {
	if m.ListByKindFunc != nil {
		return m.ListByKindFunc(ctx, kind, limit)
	}
	if m.ListByKindErr != nil {
		return nil, m.ListByKindErr
	}
	return m.filter(func(rec *audit.Record) bool { return rec.Kind == kind }, limit), nil
}

func (m *MockAuditStore) filter(keep func(*audit.Record) bool, limit int) []*audit.Record {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := []*audit.Record{}
	for i := len(m.Records) - 1; i >= 0; i-- {
		if keep(m.Records[i]) {
			out = append(out, m.Records[i])
		}
		if limit > 0 && len(out) == limit {
			break
		}
	}
	return out
}

// Reset clears all call tracking and stored data.
func (m *MockAuditStore) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.AppendCalls = nil
	m.Records = nil
}

// ============================================================================
// MockNotifier - notification.Notifier interface
// ============================================================================

// MockNotifier implements notification.Notifier for testing.
// Tracks all notification calls for assertions.
type MockNotifier struct {
	mu sync.Mutex

	// Configurable behavior function
	NotifyFunc func(ctx context.Context, event *notification.Event) error

	// Error injection
	NotifyErr error

	// Call tracking
	NotifyCalls []*notification.Event
}

// NewMockNotifier creates a new MockNotifier.
func NewMockNotifier() *MockNotifier {
	return &MockNotifier{}
}

// Notify sends a notification.
func (m *MockNotifier) Notify(ctx context.Context, event *notification.Event) error {
	m.mu.Lock()
	m.NotifyCalls = append(m.NotifyCalls, event)
	m.mu.Unlock()

	if m.NotifyFunc != nil {
		return m.NotifyFunc(ctx, event)
	}
	if m.NotifyErr != nil {
		return m.NotifyErr
	}
	return nil
}

// Reset clears all call tracking.
func (m *MockNotifier) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.NotifyCalls = nil
}

// NotifyCallCount returns the number of Notify calls made.
func (m *MockNotifier) NotifyCallCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.NotifyCalls)
}

// LastNotification returns the last notification event, or nil if none.
func (m *MockNotifier) LastNotification() *notification.Event {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.NotifyCalls) == 0 {
		return nil
	}
	return m.NotifyCalls[len(m.NotifyCalls)-1]
}

// ============================================================================
// MockLogger - logging.Logger interface
// ============================================================================

// MockLogger implements logging.Logger for testing.
// Captures all action log entries for assertions.
type MockLogger struct {
	mu sync.Mutex

	// Captured log entries
	ActionEntries []logging.ActionLogEntry
}

// NewMockLogger creates a new MockLogger.
func NewMockLogger() *MockLogger {
	return &MockLogger{}
}

// LogAction captures an action log entry.
func (m *MockLogger) LogAction(entry logging.ActionLogEntry) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.ActionEntries = append(m.ActionEntries, entry)
}

// Reset clears all captured log entries.
func (m *MockLogger) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.ActionEntries = nil
}

// ActionCount returns the number of captured action entries.
func (m *MockLogger) ActionCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.ActionEntries)
}

// LastAction returns the last captured action entry, or empty if none.
func (m *MockLogger) LastAction() logging.ActionLogEntry {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.ActionEntries) == 0 {
		return logging.ActionLogEntry{}
	}
	return m.ActionEntries[len(m.ActionEntries)-1]
}
