package session

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	domainauth "github.com/fixify/ui-core/internal/domain/auth"
	mocks "github.com/fixify/ui-core/internal/mocks/auth"
	"github.com/fixify/ui-core/internal/ports"
)

func seededProfile(id string, role domainauth.Role) domainauth.Profile {
	return domainauth.Profile{
		ID:        id,
		Email:     id + "@example.com",
		FullName:  "Ali",
		Phone:     "555-0100",
		Role:      role,
		CreatedAt: time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC),
	}
}

type fixture struct {
	identity   *mocks.MockIdentityProvider
	profiles   *mocks.MockProfileStore
	events     *mocks.ScriptedAuthEvents
	marker     *mocks.MemoryMarker
	visibility *mocks.ManualVisibility
	controller *Controller
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	f := &fixture{
		identity:   mocks.NewMockIdentityProvider(),
		profiles:   mocks.NewMockProfileStore(),
		events:     mocks.NewScriptedAuthEvents(),
		marker:     mocks.NewMemoryMarker(true),
		visibility: mocks.NewManualVisibility(),
	}
	f.profiles.Put(seededProfile("mock-user-1", domainauth.RoleCustomer))
	f.controller = New(Options{
		Identity:   f.identity,
		Profiles:   f.profiles,
		Events:     f.events,
		Marker:     f.marker,
		Visibility: f.visibility,
	})
	t.Cleanup(f.controller.Close)
	return f
}

// startAndSettle starts the controller and waits until the background
// initial pass has fully landed, so later assertions cannot race it.
func (f *fixture) startAndSettle(t *testing.T) {
	t.Helper()
	f.controller.Start(context.Background())
	require.Eventually(t, func() bool {
		return f.identity.CurrentCalls() >= 1
	}, time.Second, time.Millisecond, "initial pass must run")
	// Joins the initial pass if it is still in flight, or runs one more
	// deterministic pass if it already finished.
	f.controller.RefreshUser(context.Background())
}

func TestController_InitialStateIsLoading(t *testing.T) {
	f := newFixture(t)

	st := f.controller.State()
	assert.True(t, st.Loading)
	assert.Nil(t, st.User)
}

// A valid identity plus matching profile populates state.
func TestController_Reconcile_Success(t *testing.T) {
	f := newFixture(t)

	f.controller.RefreshUser(context.Background())

	st := f.controller.State()
	require.NotNil(t, st.User)
	assert.False(t, st.Loading)
	assert.Equal(t, "mock-user-1", st.User.ID)
	assert.Equal(t, "Ali", st.User.FullName)
	assert.Equal(t, domainauth.RoleCustomer, st.User.Role)
}

// An identity-check failure fails closed and poisons the local marker.
func TestController_Reconcile_IdentityFailure(t *testing.T) {
	f := newFixture(t)
	f.identity.CurrentFunc = func(context.Context) (domainauth.Identity, error) {
		return domainauth.Identity{}, errors.New("expired token")
	}

	f.controller.RefreshUser(context.Background())

	st := f.controller.State()
	assert.Nil(t, st.User)
	assert.False(t, st.Loading)

	present, err := f.marker.Present(context.Background())
	require.NoError(t, err)
	assert.False(t, present, "poisoned marker must be removed")
}

// A missing profile fails closed even though the identity is live.
func TestController_Reconcile_ProfileMissing(t *testing.T) {
	f := newFixture(t)
	f.identity.DefaultIdentity.ID = "no-profile-user"

	f.controller.RefreshUser(context.Background())

	st := f.controller.State()
	assert.Nil(t, st.User)
	assert.False(t, st.Loading)
}

// A profile fetch error is treated identically to a missing profile.
func TestController_Reconcile_ProfileFetchError(t *testing.T) {
	f := newFixture(t)
	f.profiles.GetFunc = func(context.Context, string) (domainauth.Profile, error) {
		return domainauth.Profile{}, errors.New("network unreachable")
	}

	f.controller.RefreshUser(context.Background())

	assert.Nil(t, f.controller.State().User)
	assert.False(t, f.controller.State().Loading)
}

// A panic inside the pass must still release the loading flag and fail closed.
func TestController_Reconcile_PanicReleasesLoading(t *testing.T) {
	f := newFixture(t)
	f.profiles.GetFunc = func(context.Context, string) (domainauth.Profile, error) {
		panic("boom")
	}

	f.controller.RefreshUser(context.Background())

	st := f.controller.State()
	assert.Nil(t, st.User)
	assert.False(t, st.Loading)
}

// Loading is released within the fail-safe bound even when the identity
// check never resolves.
func TestController_FailsafeReleasesLoading(t *testing.T) {
	f := newFixture(t)
	hang := make(chan struct{})
	t.Cleanup(func() { close(hang) })
	f.identity.CurrentFunc = func(ctx context.Context) (domainauth.Identity, error) {
		<-hang
		return domainauth.Identity{}, errors.New("too late")
	}
	f.controller.loadingBound = 50 * time.Millisecond

	f.controller.Start(context.Background())

	require.Eventually(t, func() bool {
		return !f.controller.State().Loading
	}, time.Second, 5*time.Millisecond, "fail-safe must unblock loading")
	// The hung pass is not cancelled; it just lands later.
	assert.Nil(t, f.controller.State().User)
}

// Sign-out clears locally even when the backend call fails.
func TestController_SignOut_BackendFailure(t *testing.T) {
	f := newFixture(t)
	f.controller.RefreshUser(context.Background())
	require.NotNil(t, f.controller.State().User)

	f.identity.SignOutFunc = func(context.Context) error {
		return errors.New("backend unavailable")
	}

	f.controller.SignOut(context.Background())

	st := f.controller.State()
	assert.Nil(t, st.User)
	assert.False(t, st.Loading)

	present, err := f.marker.Present(context.Background())
	require.NoError(t, err)
	assert.False(t, present)
}

func TestController_SignOut_Success(t *testing.T) {
	f := newFixture(t)
	f.controller.RefreshUser(context.Background())
	require.NotNil(t, f.controller.State().User)

	f.controller.SignOut(context.Background())

	assert.Nil(t, f.controller.State().User)
	assert.Equal(t, 1, f.identity.SignOutCalls())
}

// Starting twice registers each trigger listener exactly once.
func TestController_Start_Idempotent(t *testing.T) {
	f := newFixture(t)

	ctx := context.Background()
	f.controller.Start(ctx)
	f.controller.Start(ctx)
	f.controller.Start(ctx)

	assert.Equal(t, 1, f.events.SubscriberCount())
	assert.Equal(t, 1, f.events.TotalSubscribes())
	assert.Equal(t, 1, f.visibility.SubscriberCount())
	assert.Equal(t, 1, f.marker.WatcherCount())
}

func TestController_Close_ReleasesSubscriptions(t *testing.T) {
	f := newFixture(t)
	f.controller.Start(context.Background())
	require.Equal(t, 1, f.events.SubscriberCount())

	f.controller.Close()

	assert.Zero(t, f.events.SubscriberCount())
	assert.Zero(t, f.visibility.SubscriberCount())
	assert.Zero(t, f.marker.WatcherCount())
	// Closing twice is a no-op.
	f.controller.Close()
}

// Sign-out-class events clear state directly without a network round trip.
func TestController_AuthEvent_SignedOutClearsWithoutRoundTrip(t *testing.T) {
	f := newFixture(t)
	f.startAndSettle(t)
	require.NotNil(t, f.controller.State().User)

	before := f.identity.CurrentCalls()
	f.events.Emit(ports.AuthEvent{Kind: ports.AuthEventSignedOut})

	st := f.controller.State()
	assert.Nil(t, st.User)
	assert.False(t, st.Loading)
	assert.Equal(t, before, f.identity.CurrentCalls(), "sign-out event must skip the identity check")
}

// Events without a session payload also clear directly.
func TestController_AuthEvent_NoSessionClears(t *testing.T) {
	f := newFixture(t)
	f.startAndSettle(t)
	require.NotNil(t, f.controller.State().User)

	f.events.Emit(ports.AuthEvent{Kind: ports.AuthEventTokenRefreshed, Session: nil})

	assert.Nil(t, f.controller.State().User)
}

// Events carrying a live session run a full reconciliation pass.
func TestController_AuthEvent_WithSessionReconciles(t *testing.T) {
	f := newFixture(t)
	f.startAndSettle(t)

	before := f.identity.CurrentCalls()
	id := domainauth.Identity{ID: "mock-user-1", ExpiresAt: time.Now().Add(time.Hour)}
	f.events.Emit(ports.AuthEvent{Kind: ports.AuthEventSignedIn, Session: &id})

	require.NotNil(t, f.controller.State().User)
	assert.Greater(t, f.identity.CurrentCalls(), before)
}

// Visibility regained re-validates; a still-valid session keeps
// the user populated.
func TestController_VisibilityRegained_Revalidates(t *testing.T) {
	f := newFixture(t)
	f.startAndSettle(t)
	require.NotNil(t, f.controller.State().User)

	before := f.identity.CurrentCalls()
	f.visibility.Regain()

	st := f.controller.State()
	require.NotNil(t, st.User)
	assert.Equal(t, "mock-user-1", st.User.ID)
	assert.False(t, st.Loading)
	assert.Greater(t, f.identity.CurrentCalls(), before)
}

// A cross-context marker change triggers reconciliation here; if
// the backend now reports no identity, this context's user becomes nil.
func TestController_MarkerChange_SignedOutElsewhere(t *testing.T) {
	f := newFixture(t)
	f.startAndSettle(t)
	require.NotNil(t, f.controller.State().User)

	f.identity.CurrentFunc = func(context.Context) (domainauth.Identity, error) {
		return domainauth.Identity{}, ports.ErrNoIdentity
	}
	f.marker.Touch(false)

	assert.Nil(t, f.controller.State().User)
	assert.False(t, f.controller.State().Loading)
}

// Overlapping triggers converge: concurrent passes coalesce and the state
// settles to the backend's answer.
func TestController_ConcurrentTriggersConverge(t *testing.T) {
	f := newFixture(t)
	f.startAndSettle(t)

	done := make(chan struct{})
	for i := 0; i < 8; i++ {
		go func() {
			f.controller.RefreshUser(context.Background())
			done <- struct{}{}
		}()
	}
	for i := 0; i < 8; i++ {
		<-done
	}

	st := f.controller.State()
	require.NotNil(t, st.User)
	assert.Equal(t, "mock-user-1", st.User.ID)
	assert.False(t, st.Loading)
}

// A profile with no email inherits the identity's email.
func TestController_ProfileEmailFallsBackToIdentity(t *testing.T) {
	f := newFixture(t)
	p := seededProfile("mock-user-1", domainauth.RoleStaff)
	p.Email = ""
	f.profiles.Put(p)

	f.controller.RefreshUser(context.Background())

	st := f.controller.State()
	require.NotNil(t, st.User)
	assert.Equal(t, "mock.user@example.com", st.User.Email)
	assert.Equal(t, domainauth.RoleStaff, st.User.Role)
}
