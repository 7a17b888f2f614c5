package session

// Package session owns the client's authoritative view of "who is the
// current user". A single Controller reconciles every trigger that suggests
// the session may have changed (backend auth events, visibility regained,
// cross-context marker changes, explicit refreshes) into one consistent
// State, always re-deriving it from the backend rather than patching it.

import (
	"context"
	"log/slog"
	"sync"
	"time"

	domainauth "github.com/fixify/ui-core/internal/domain/auth"
	"github.com/fixify/ui-core/internal/ports"
	"golang.org/x/sync/singleflight"
)

// DefaultLoadingBound is the fail-safe bound after which Loading is forced
// to false even if the backend never responds.
const DefaultLoadingBound = 5 * time.Second

// Options groups dependencies for the Controller. Identity and Profiles are
// required; the remaining triggers are optional and simply not wired when nil.
type Options struct {
	Identity ports.IdentityProvider
	Profiles ports.ProfileStore

	// Events is the backend's push stream. Optional.
	Events ports.AuthEvents

	// Marker is the locally persisted session marker. Optional; when set it
	// is cleared on failed identity checks and watched for cross-context
	// changes.
	Marker ports.SessionMarker

	// Visibility signals this context becoming active again. Optional.
	Visibility ports.Visibility

	// LoadingBound overrides DefaultLoadingBound when positive.
	LoadingBound time.Duration

	Logger *slog.Logger
}

// Controller maintains auth state and reconciles it on every trigger.
// Construct with New, call Start exactly once (extra calls are no-ops), and
// Close when the owning scope ends.
type Controller struct {
	identity   ports.IdentityProvider
	profiles   ports.ProfileStore
	events     ports.AuthEvents
	marker     ports.SessionMarker
	visibility ports.Visibility

	log          *slog.Logger
	loadingBound time.Duration

	mu    sync.RWMutex
	state domainauth.State

	// inflight coalesces reconciliation passes triggered concurrently by
	// multiple sources. Correctness does not depend on it: every pass fully
	// re-derives state, so overlapping passes converge.
	inflight singleflight.Group

	startOnce sync.Once
	closeOnce sync.Once
	unsubs    []ports.Unsubscribe
	failsafe  *time.Timer
}

// New constructs a Controller. The initial state is loading with no user,
// so route gating holds off until the first reconciliation settles.
func New(opts Options) *Controller {
	log := opts.Logger
	if log == nil {
		log = slog.Default()
	}
	bound := opts.LoadingBound
	if bound <= 0 {
		bound = DefaultLoadingBound
	}
	return &Controller{
		identity:     opts.Identity,
		profiles:     opts.Profiles,
		events:       opts.Events,
		marker:       opts.Marker,
		visibility:   opts.Visibility,
		log:          log,
		loadingBound: bound,
		state:        domainauth.State{Loading: true},
	}
}

// State returns a snapshot of the current auth state.
func (c *Controller) State() domainauth.State {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.state
}

// Start runs the initial reconciliation pass and registers every trigger.
// It is idempotent: repeated calls register nothing twice. The context is
// used for the initial pass and for passes spawned by triggers.
func (c *Controller) Start(ctx context.Context) {
	c.startOnce.Do(func() {
		// Fail-safe: never leave the UI stuck behind Loading if the backend
		// never settles. Does not cancel in-flight work or touch User.
		c.failsafe = time.AfterFunc(c.loadingBound, func() {
			c.mu.Lock()
			stuck := c.state.Loading
			c.state.Loading = false
			c.mu.Unlock()
			if stuck {
				c.log.Warn("session: fail-safe released loading flag", "bound", c.loadingBound)
			}
		})

		if c.events != nil {
			unsub, err := c.events.Subscribe(func(e ports.AuthEvent) {
				c.onAuthEvent(ctx, e)
			})
			if err != nil {
				c.log.Warn("session: auth event subscription failed", "error", err)
			} else {
				c.unsubs = append(c.unsubs, unsub)
			}
		}

		if c.visibility != nil {
			unsub := c.visibility.Subscribe(func() {
				// A long-backgrounded context's belief about session
				// validity may be stale relative to token expiry or a
				// sign-out performed elsewhere.
				c.RefreshUser(ctx)
			})
			c.unsubs = append(c.unsubs, unsub)
		}

		if c.marker != nil {
			unsub, err := c.marker.Watch(func() {
				c.RefreshUser(ctx)
			})
			if err != nil {
				c.log.Warn("session: marker watch failed", "error", err)
			} else {
				c.unsubs = append(c.unsubs, unsub)
			}
		}

		// Initial pass. Runs off the caller's goroutine so a slow backend
		// cannot block application startup; the fail-safe above bounds how
		// long consumers can observe Loading regardless.
		go c.RefreshUser(ctx)
	})
}

// Close releases every trigger subscription and the fail-safe timer.
func (c *Controller) Close() {
	c.closeOnce.Do(func() {
		if c.failsafe != nil {
			c.failsafe.Stop()
		}
		for _, unsub := range c.unsubs {
			unsub()
		}
		c.unsubs = nil
	})
}

// RefreshUser forces one reconciliation pass and returns when state has been
// updated. It never fails: every error path degrades to a nil user.
func (c *Controller) RefreshUser(ctx context.Context) {
	// Coalesce: a pass started while one is in flight shares its result.
	_, _, _ = c.inflight.Do("reconcile", func() (any, error) {
		c.reconcile(ctx)
		return nil, nil
	})
}

// SignOut invalidates the credential with the backend and clears local state.
// The local effect never waits on backend confirmation: losing access is the
// user-visible meaning of sign-out, not the remote call succeeding.
func (c *Controller) SignOut(ctx context.Context) {
	c.setLoading(true)
	defer c.setLoading(false)

	if err := c.identity.SignOut(ctx); err != nil {
		c.log.Warn("session: backend sign-out failed, clearing locally", "error", err)
	}
	if c.marker != nil {
		if err := c.marker.Clear(ctx); err != nil {
			c.log.Warn("session: clearing session marker failed", "error", err)
		}
	}
	c.setUser(nil)
}

// onAuthEvent handles one backend auth event. Sign-out-class events and
// events without a session payload clear state directly, skipping the
// redundant network round trip; anything carrying a live session runs a
// full pass.
func (c *Controller) onAuthEvent(ctx context.Context, e ports.AuthEvent) {
	if e.SignOutClass() || e.Session == nil {
		c.mu.Lock()
		c.state = domainauth.State{User: nil, Loading: false}
		c.mu.Unlock()
		return
	}
	c.RefreshUser(ctx)
}

// reconcile is one full pass of the state derivation: live identity check,
// then fresh profile fetch. All failure branches fail closed to a nil user;
// the loading flag is released on every exit path, including panics.
func (c *Controller) reconcile(ctx context.Context) {
	c.setLoading(true)
	defer c.setLoading(false)
	defer func() {
		if r := recover(); r != nil {
			c.log.Error("session: reconciliation panicked", "panic", r)
			c.setUser(nil)
		}
	}()

	identity, err := c.identity.Current(ctx)
	if err != nil {
		// Identity checks fail as a matter of course; this is the expected
		// shape of "not logged in", not an error to surface.
		c.log.Debug("session: no live identity", "error", err)
		c.clearPoisonedMarker(ctx)
		c.setUser(nil)
		return
	}

	profile, err := c.profiles.Get(ctx, identity.ID)
	if err != nil {
		// An identity without a resolvable profile is not a usable session.
		c.log.Warn("session: profile lookup failed, failing closed",
			"user_id", identity.ID, "error", err)
		c.setUser(nil)
		return
	}

	if profile.Email == "" {
		profile.Email = identity.Email
	}
	c.setUser(&profile)
}

// clearPoisonedMarker deletes the local session marker after the backend
// refused the credential: keeping it would let sibling contexts keep
// believing they are signed in.
func (c *Controller) clearPoisonedMarker(ctx context.Context) {
	if c.marker == nil {
		return
	}
	if err := c.marker.Clear(ctx); err != nil {
		c.log.Warn("session: clearing poisoned marker failed", "error", err)
	}
}

func (c *Controller) setLoading(v bool) {
	c.mu.Lock()
	c.state.Loading = v
	c.mu.Unlock()
}

func (c *Controller) setUser(p *domainauth.Profile) {
	if p != nil {
		// Store a copy so later caller mutations cannot leak into state.
		cp := *p
		p = &cp
	}
	c.mu.Lock()
	c.state.User = p
	c.mu.Unlock()
}
