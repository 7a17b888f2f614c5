package ports

// Package ports defines interfaces (hexagonal ports) for auth-related behavior.
// Implementations live in internal/adapters; orchestration in internal/session.

import (
	"context"
	"errors"
	"io"

	domainauth "github.com/fixify/ui-core/internal/domain/auth"
)

// ErrNoIdentity is returned by Current when the backend reports that the
// credential the client holds is absent, invalid, or expired.
var ErrNoIdentity = errors.New("no authenticated identity")

// ErrProfileNotFound is returned by ProfileStore.Get when no row matches
// the identity id.
var ErrProfileNotFound = errors.New("profile not found")

// Unsubscribe releases one subscription. Calling it more than once is a no-op.
type Unsubscribe func()

// IdentityProvider validates and releases the credential the client holds.
type IdentityProvider interface {
	// Current performs a live validation of the held credential against the
	// backend's authority and returns the associated identity. It must not
	// answer from a local cache. Returns ErrNoIdentity when there is no
	// usable session.
	Current(ctx context.Context) (domainauth.Identity, error)

	// SignOut invalidates the held credential with the backend. A failure
	// here does not prevent the local session from being discarded.
	SignOut(ctx context.Context) error
}

// AuthEventKind classifies events pushed by the backend's auth stream.
type AuthEventKind string

const (
	AuthEventSignedIn       AuthEventKind = "signed_in"
	AuthEventSignedOut      AuthEventKind = "signed_out"
	AuthEventTokenRefreshed AuthEventKind = "token_refreshed"
	AuthEventUserUpdated    AuthEventKind = "user_updated"
)

// AuthEvent is one notification from the backend's auth stream. Session is
// nil when the event carries no live session payload.
type AuthEvent struct {
	Kind    AuthEventKind
	Session *domainauth.Identity
}

// SignOutClass reports whether the event means the session ended and local
// state can be cleared without a network round trip.
func (e AuthEvent) SignOutClass() bool {
	return e.Kind == AuthEventSignedOut
}

// AuthEvents is the backend's push-based auth notification stream.
type AuthEvents interface {
	// Subscribe registers cb for every subsequent auth event. The returned
	// handle stops delivery; cb must not be invoked after it returns.
	Subscribe(cb func(AuthEvent)) (Unsubscribe, error)
}

// ProfileStore reads application profiles keyed by identity id.
type ProfileStore interface {
	// Get returns the profile row whose id matches the identity id, or
	// ErrProfileNotFound when no such row exists.
	Get(ctx context.Context, id string) (domainauth.Profile, error)
}

// SessionMarker is the locally persisted, fixed-key marker of session
// presence, shared across browsing contexts of the same install. It is
// written by the backend client library as a side effect of sign-in/out;
// this core only clears it (when judged poisoned) and watches it.
type SessionMarker interface {
	// Present reports whether the marker currently exists.
	Present(ctx context.Context) (bool, error)

	// Clear removes the marker. Removing an absent marker is not an error.
	Clear(ctx context.Context) error

	// Watch invokes cb whenever another context mutates the marker.
	Watch(cb func()) (Unsubscribe, error)
}

// Visibility signals that this context became the active/visible one again.
// Implementations must wire both focus and visibility-change sources so the
// transition is not missed on platforms that only deliver one of them.
type Visibility interface {
	Subscribe(cb func()) Unsubscribe
}

// FileStore uploads objects to the backend's storage service.
type FileStore interface {
	// Upload stores the object and returns its public URL.
	Upload(ctx context.Context, bucket, path string, r io.Reader) (string, error)
}
