package redis

// Package redis provides Redis-based adapters for the fixify client core.

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/fixify/ui-core/internal/ports"
)

// DefaultPollInterval is how often the watcher compares the marker against
// its last observed value.
const DefaultPollInterval = 2 * time.Second

// markerAbsent is the internal sentinel for "no marker". Redis values can
// never collide with it because Set rejects empty values.
const markerAbsent = "\x00absent"

// MarkerStore persists the session-presence marker under a fixed key shared
// by every window/process of one install, mirroring what a browser origin
// shares through local storage. Any writer may clear it; watchers in other
// contexts treat a change as "possibly signed out elsewhere" and re-validate.
type MarkerStore struct {
	client redis.UniversalClient
	key    string
	poll   time.Duration
	log    *slog.Logger

	mu       sync.Mutex
	nextID   int
	watchers map[int]func()
	lastSeen string
	started  bool
	closing  chan struct{}
}

var _ ports.SessionMarker = (*MarkerStore)(nil)

// MarkerStoreOptions configures a MarkerStore.
type MarkerStoreOptions struct {
	Client redis.UniversalClient

	// Key is the fixed marker key. Required so separate installs sharing one
	// Redis cannot watch each other's sessions.
	Key string

	// PollInterval overrides DefaultPollInterval when positive.
	PollInterval time.Duration

	Logger *slog.Logger
}

// NewMarkerStore creates a MarkerStore.
func NewMarkerStore(opts MarkerStoreOptions) (*MarkerStore, error) {
	if opts.Client == nil {
		return nil, errors.New("redis client is required")
	}
	if opts.Key == "" {
		return nil, errors.New("marker key is required")
	}
	poll := opts.PollInterval
	if poll <= 0 {
		poll = DefaultPollInterval
	}
	log := opts.Logger
	if log == nil {
		log = slog.Default()
	}
	return &MarkerStore{
		client:   opts.Client,
		key:      opts.Key,
		poll:     poll,
		log:      log,
		watchers: make(map[int]func()),
		lastSeen: markerAbsent,
		closing:  make(chan struct{}),
	}, nil
}

// Set writes the marker, as the sign-in flow's side effect. The value is
// opaque; watchers only care that it changed.
func (s *MarkerStore) Set(ctx context.Context, value string) error {
	if value == "" {
		return errors.New("marker value cannot be empty")
	}
	if err := s.client.Set(ctx, s.key, value, 0).Err(); err != nil {
		return fmt.Errorf("redis set marker: %w", err)
	}
	// Our own write must not look like a cross-context change.
	s.observe(value)
	return nil
}

// Present reports whether the marker exists.
func (s *MarkerStore) Present(ctx context.Context) (bool, error) {
	n, err := s.client.Exists(ctx, s.key).Result()
	if err != nil {
		return false, fmt.Errorf("redis exists marker: %w", err)
	}
	return n > 0, nil
}

// Clear removes the marker. Removing an absent marker is not an error.
func (s *MarkerStore) Clear(ctx context.Context) error {
	if err := s.client.Del(ctx, s.key).Err(); err != nil {
		return fmt.Errorf("redis del marker: %w", err)
	}
	s.observe(markerAbsent)
	return nil
}

// Watch registers cb for marker changes made by other contexts and starts
// the polling loop on first use.
func (s *MarkerStore) Watch(cb func()) (ports.Unsubscribe, error) {
	s.mu.Lock()
	id := s.nextID
	s.nextID++
	s.watchers[id] = cb
	if !s.started {
		s.started = true
		// Seed lastSeen before polling so pre-existing markers do not fire
		// a spurious change on the first tick.
		go s.pollLoop()
	}
	s.mu.Unlock()

	return func() {
		s.mu.Lock()
		delete(s.watchers, id)
		s.mu.Unlock()
	}, nil
}

// Close stops the polling loop. Watch handles stay valid no-ops afterwards.
func (s *MarkerStore) Close() {
	s.mu.Lock()
	select {
	case <-s.closing:
	default:
		close(s.closing)
	}
	s.mu.Unlock()
}

func (s *MarkerStore) pollLoop() {
	// First read primes the comparison value without notifying.
	if v, err := s.read(); err == nil {
		s.observe(v)
	}

	ticker := time.NewTicker(s.poll)
	defer ticker.Stop()

	for {
		select {
		case <-s.closing:
			return
		case <-ticker.C:
		}

		v, err := s.read()
		if err != nil {
			// Transient Redis trouble is not a session decision; keep
			// polling and let reconciliation passes decide auth state.
			s.log.Debug("redis: marker poll failed", "error", err)
			continue
		}
		if s.changed(v) {
			s.notify()
		}
	}
}

func (s *MarkerStore) read() (string, error) {
	ctx, cancel := context.WithTimeout(context.Background(), s.poll)
	defer cancel()

	v, err := s.client.Get(ctx, s.key).Result()
	if errors.Is(err, redis.Nil) {
		return markerAbsent, nil
	}
	if err != nil {
		return "", err
	}
	return v, nil
}

// observe records v as the last known value, returning nothing; used for
// writes made by this context.
func (s *MarkerStore) observe(v string) {
	s.mu.Lock()
	s.lastSeen = v
	s.mu.Unlock()
}

// changed records v and reports whether it differs from the previous value.
func (s *MarkerStore) changed(v string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if v == s.lastSeen {
		return false
	}
	s.lastSeen = v
	return true
}

func (s *MarkerStore) notify() {
	s.mu.Lock()
	cbs := make([]func(), 0, len(s.watchers))
	for _, cb := range s.watchers {
		cbs = append(cbs, cb)
	}
	s.mu.Unlock()
	for _, cb := range cbs {
		cb()
	}
}
