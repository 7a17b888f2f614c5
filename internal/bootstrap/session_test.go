package bootstrap

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fixify/ui-core/config"
	"github.com/fixify/ui-core/internal/domain/auth"
	mockauth "github.com/fixify/ui-core/internal/mocks/auth"
	"github.com/fixify/ui-core/internal/routegate"
)

func TestBuildSessionController_RequiresBackend(t *testing.T) {
	t.Parallel()

	_, err := BuildSessionController(SessionConfig{})
	assert.Error(t, err)
}

func TestBuildSessionController_FromMockBackend(t *testing.T) {
	t.Parallel()

	backend := &SessionBackend{
		Identity: mockauth.NewMockIdentityProvider(),
		Profiles: mockauth.NewMockProfileStore(),
	}

	ctrl, err := BuildSessionController(SessionConfig{
		Session: config.SessionConfig{LoadingBound: 2 * time.Second},
		Backend: backend,
	})
	require.NoError(t, err)
	require.NotNil(t, ctrl)
	ctrl.Close()
}

func TestBuildRouteGate_UsesConfiguredPaths(t *testing.T) {
	t.Parallel()

	gate := BuildRouteGate(config.RoutesConfig{
		Login:        "/signin",
		AdminHome:    "/admin",
		StaffHome:    "/staff",
		CustomerHome: "/",
	})

	out := gate.Evaluate(nil, "/admin/services", auth.State{})
	assert.Equal(t, routegate.ActionRedirectLogin, out.Action)
	assert.Equal(t, "/signin", out.Target)

	staff := auth.State{User: &auth.Profile{ID: "u1", Role: auth.RoleStaff}}
	out = gate.Evaluate([]auth.Role{auth.RoleAdmin}, "/admin/services", staff)
	assert.Equal(t, routegate.ActionRedirectRoleHome, out.Action)
	assert.Equal(t, "/staff", out.Target)
}
