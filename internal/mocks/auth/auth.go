package auth

// Package auth contains simple hand-written test doubles for auth ports.
// These are lightweight and suitable for unit tests without codegen.

import (
	"context"
	"io"
	"strings"
	"sync"
	"time"

	domainauth "github.com/fixify/ui-core/internal/domain/auth"
	"github.com/fixify/ui-core/internal/ports"
)

// Ensure compile-time conformance to ports.
var (
	_ ports.IdentityProvider = (*MockIdentityProvider)(nil)
	_ ports.ProfileStore     = (*MockProfileStore)(nil)
	_ ports.SessionMarker    = (*MemoryMarker)(nil)
	_ ports.AuthEvents       = (*ScriptedAuthEvents)(nil)
	_ ports.Visibility       = (*ManualVisibility)(nil)
	_ ports.FileStore        = (*MemoryFileStore)(nil)
)

// MockIdentityProvider simulates the backend's identity authority.
type MockIdentityProvider struct {
	CurrentFunc func(ctx context.Context) (domainauth.Identity, error)
	SignOutFunc func(ctx context.Context) error

	// DefaultIdentity is returned when CurrentFunc is unset.
	DefaultIdentity domainauth.Identity

	mu           sync.Mutex
	currentCalls int
	signOutCalls int
}

// NewMockIdentityProvider creates a MockIdentityProvider with a default
// live identity.
func NewMockIdentityProvider() *MockIdentityProvider {
	return &MockIdentityProvider{
		DefaultIdentity: domainauth.Identity{
			ID:        "mock-user-1",
			Email:     "mock.user@example.com",
			ExpiresAt: time.Now().Add(time.Hour),
		},
	}
}

func (m *MockIdentityProvider) Current(ctx context.Context) (domainauth.Identity, error) {
	m.mu.Lock()
	m.currentCalls++
	m.mu.Unlock()
	if m.CurrentFunc != nil {
		return m.CurrentFunc(ctx)
	}
	return m.DefaultIdentity, nil
}

func (m *MockIdentityProvider) SignOut(ctx context.Context) error {
	m.mu.Lock()
	m.signOutCalls++
	m.mu.Unlock()
	if m.SignOutFunc != nil {
		return m.SignOutFunc(ctx)
	}
	return nil
}

// CurrentCalls returns how many live identity checks were made.
func (m *MockIdentityProvider) CurrentCalls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.currentCalls
}

// SignOutCalls returns how many backend sign-out calls were made.
func (m *MockIdentityProvider) SignOutCalls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.signOutCalls
}

// MockProfileStore serves profiles from an in-memory map.
type MockProfileStore struct {
	GetFunc func(ctx context.Context, id string) (domainauth.Profile, error)

	mu       sync.Mutex
	profiles map[string]domainauth.Profile
}

// NewMockProfileStore creates an empty MockProfileStore.
func NewMockProfileStore() *MockProfileStore {
	return &MockProfileStore{profiles: make(map[string]domainauth.Profile)}
}

// Put seeds a profile row.
func (m *MockProfileStore) Put(p domainauth.Profile) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.profiles[p.ID] = p
}

func (m *MockProfileStore) Get(ctx context.Context, id string) (domainauth.Profile, error) {
	if m.GetFunc != nil {
		return m.GetFunc(ctx, id)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.profiles[id]
	if !ok {
		return domainauth.Profile{}, ports.ErrProfileNotFound
	}
	return p, nil
}

// MemoryMarker is an in-memory session marker with watch support. Mutations
// through Set/Clear/Touch notify watchers, mimicking a cross-context change.
type MemoryMarker struct {
	mu       sync.Mutex
	present  bool
	nextID   int
	watchers map[int]func()
}

// NewMemoryMarker creates a MemoryMarker, present or not.
func NewMemoryMarker(present bool) *MemoryMarker {
	return &MemoryMarker{present: present, watchers: make(map[int]func())}
}

func (m *MemoryMarker) Present(_ context.Context) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.present, nil
}

func (m *MemoryMarker) Clear(_ context.Context) error {
	m.mu.Lock()
	m.present = false
	m.mu.Unlock()
	return nil
}

// Set makes the marker present without notifying watchers, as if this
// context's own sign-in wrote it.
func (m *MemoryMarker) Set() {
	m.mu.Lock()
	m.present = true
	m.mu.Unlock()
}

// Touch simulates another context mutating the marker: it flips presence and
// notifies every watcher.
func (m *MemoryMarker) Touch(nowPresent bool) {
	m.mu.Lock()
	m.present = nowPresent
	cbs := make([]func(), 0, len(m.watchers))
	for _, cb := range m.watchers {
		cbs = append(cbs, cb)
	}
	m.mu.Unlock()
	for _, cb := range cbs {
		cb()
	}
}

func (m *MemoryMarker) Watch(cb func()) (ports.Unsubscribe, error) {
	m.mu.Lock()
	id := m.nextID
	m.nextID++
	m.watchers[id] = cb
	m.mu.Unlock()
	return func() {
		m.mu.Lock()
		delete(m.watchers, id)
		m.mu.Unlock()
	}, nil
}

// WatcherCount returns the number of live watch subscriptions.
func (m *MemoryMarker) WatcherCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.watchers)
}

// ScriptedAuthEvents is an auth-event stream driven by the test via Emit.
type ScriptedAuthEvents struct {
	mu       sync.Mutex
	nextID   int
	subs     map[int]func(ports.AuthEvent)
	subCount int
}

// NewScriptedAuthEvents creates an empty scripted stream.
func NewScriptedAuthEvents() *ScriptedAuthEvents {
	return &ScriptedAuthEvents{subs: make(map[int]func(ports.AuthEvent))}
}

func (s *ScriptedAuthEvents) Subscribe(cb func(ports.AuthEvent)) (ports.Unsubscribe, error) {
	s.mu.Lock()
	id := s.nextID
	s.nextID++
	s.subs[id] = cb
	s.subCount++
	s.mu.Unlock()
	return func() {
		s.mu.Lock()
		delete(s.subs, id)
		s.mu.Unlock()
	}, nil
}

// Emit delivers an event synchronously to every subscriber.
func (s *ScriptedAuthEvents) Emit(e ports.AuthEvent) {
	s.mu.Lock()
	cbs := make([]func(ports.AuthEvent), 0, len(s.subs))
	for _, cb := range s.subs {
		cbs = append(cbs, cb)
	}
	s.mu.Unlock()
	for _, cb := range cbs {
		cb(e)
	}
}

// SubscriberCount returns the number of live subscriptions.
func (s *ScriptedAuthEvents) SubscriberCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.subs)
}

// TotalSubscribes returns how many Subscribe calls were ever made,
// including since-released ones.
func (s *ScriptedAuthEvents) TotalSubscribes() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.subCount
}

// ManualVisibility is a visibility signal driven by the test via Regain.
type ManualVisibility struct {
	mu     sync.Mutex
	nextID int
	subs   map[int]func()
}

// NewManualVisibility creates an empty ManualVisibility.
func NewManualVisibility() *ManualVisibility {
	return &ManualVisibility{subs: make(map[int]func())}
}

func (v *ManualVisibility) Subscribe(cb func()) ports.Unsubscribe {
	v.mu.Lock()
	id := v.nextID
	v.nextID++
	v.subs[id] = cb
	v.mu.Unlock()
	return func() {
		v.mu.Lock()
		delete(v.subs, id)
		v.mu.Unlock()
	}
}

// Regain simulates the context becoming visible/focused again.
func (v *ManualVisibility) Regain() {
	v.mu.Lock()
	cbs := make([]func(), 0, len(v.subs))
	for _, cb := range v.subs {
		cbs = append(cbs, cb)
	}
	v.mu.Unlock()
	for _, cb := range cbs {
		cb()
	}
}

// SubscriberCount returns the number of live subscriptions.
func (v *ManualVisibility) SubscriberCount() int {
	v.mu.Lock()
	defer v.mu.Unlock()
	return len(v.subs)
}

// MemoryFileStore records uploads in memory for tests.
type MemoryFileStore struct {
	mu      sync.Mutex
	Objects map[string][]byte
}

// NewMemoryFileStore creates an empty MemoryFileStore.
func NewMemoryFileStore() *MemoryFileStore {
	return &MemoryFileStore{Objects: make(map[string][]byte)}
}

func (f *MemoryFileStore) Upload(_ context.Context, bucket, path string, r io.Reader) (string, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return "", err
	}
	key := bucket + "/" + strings.TrimPrefix(path, "/")
	f.mu.Lock()
	f.Objects[key] = data
	f.mu.Unlock()
	return "mem://" + key, nil
}
