package routegate

// Package routegate decides, per navigation to a protected view, whether to
// render it, send the visitor to login, or send an authenticated visitor of
// the wrong role to their own home view. It treats the session controller
// purely as a capability query and knows nothing about how state is derived.

import (
	"fmt"
	"slices"

	domainauth "github.com/fixify/ui-core/internal/domain/auth"
)

// State is the evaluation state for one navigation attempt. PENDING means no
// redirect decision may be made yet; DENIED and GRANTED are terminal for the
// attempt, and a new navigation or a change in auth state re-evaluates from
// PENDING.
type State int

const (
	StatePending State = iota
	StateDenied
	StateGranted
)

func (s State) String() string {
	switch s {
	case StatePending:
		return "pending"
	case StateDenied:
		return "denied"
	case StateGranted:
		return "granted"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

// Action is what the surrounding rendering layer should do.
type Action int

const (
	// ActionRenderPlaceholder shows a neutral loading view; evaluation is
	// still pending and no redirect may be issued.
	ActionRenderPlaceholder Action = iota
	// ActionRender shows the requested view.
	ActionRender
	// ActionRedirectLogin sends the visitor to the login view, carrying the
	// originally requested path.
	ActionRedirectLogin
	// ActionRedirectRoleHome sends the visitor to their role's home view.
	ActionRedirectRoleHome
)

// Outcome is one gate decision.
type Outcome struct {
	State  State
	Action Action
	// Target is the redirect destination for redirect actions, empty
	// otherwise.
	Target string
	// From is the originally requested path, preserved on login redirects so
	// login can return the visitor there afterward.
	From string
}

// Paths configures the gate's navigation targets.
type Paths struct {
	Login        string
	AdminHome    string
	StaffHome    string
	CustomerHome string
}

// DefaultPaths mirror the product's route table.
var DefaultPaths = Paths{
	Login:        "/login",
	AdminHome:    "/admin",
	StaffHome:    "/staff",
	CustomerHome: "/dashboard",
}

// Home is the total mapping from role to home path. Adding a role without
// extending this switch is a compile-visible gap, not a silent fallthrough.
func (p Paths) Home(role domainauth.Role) string {
	switch role {
	case domainauth.RoleAdmin:
		return p.AdminHome
	case domainauth.RoleStaff:
		return p.StaffHome
	case domainauth.RoleCustomer:
		return p.CustomerHome
	}
	// Unknown roles cannot be granted a home; send them through login.
	return p.Login
}

// Gate evaluates navigation attempts against the current auth state.
type Gate struct {
	paths Paths
}

// New creates a Gate. Zero-valued path fields fall back to DefaultPaths.
func New(paths Paths) *Gate {
	if paths.Login == "" {
		paths.Login = DefaultPaths.Login
	}
	if paths.AdminHome == "" {
		paths.AdminHome = DefaultPaths.AdminHome
	}
	if paths.StaffHome == "" {
		paths.StaffHome = DefaultPaths.StaffHome
	}
	if paths.CustomerHome == "" {
		paths.CustomerHome = DefaultPaths.CustomerHome
	}
	return &Gate{paths: paths}
}

// Paths returns the configured navigation targets.
func (g *Gate) Paths() Paths { return g.paths }

// Evaluate decides one navigation attempt. required is the set of roles the
// view demands; empty means any authenticated role. path is the attempted
// navigation target.
func (g *Gate) Evaluate(required []domainauth.Role, path string, st domainauth.State) Outcome {
	// While the session controller is still reconciling, no redirect
	// decision is allowed: flashing the login view during the initial
	// bootstrap window would be wrong for users who turn out to be
	// signed in.
	if st.Loading {
		return Outcome{State: StatePending, Action: ActionRenderPlaceholder, From: path}
	}

	if st.User == nil {
		return Outcome{
			State:  StateDenied,
			Action: ActionRedirectLogin,
			Target: g.paths.Login,
			From:   path,
		}
	}

	if len(required) > 0 && !slices.Contains(required, st.User.Role) {
		return Outcome{
			State:  StateDenied,
			Action: ActionRedirectRoleHome,
			Target: g.paths.Home(st.User.Role),
			From:   path,
		}
	}

	return Outcome{State: StateGranted, Action: ActionRender, From: path}
}
