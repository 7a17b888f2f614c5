package config

import "time"

// SessionConfig contains session reconciliation configuration.
type SessionConfig struct {
	// LoadingBound caps how long the session may report loading before the
	// fail-safe forces a reconcile.
	LoadingBound time.Duration `env:"SESSION_LOADING_BOUND" envDefault:"10s"`

	// MarkerKey is the Redis key holding the shared session marker.
	MarkerKey string `env:"SESSION_MARKER_KEY" envDefault:"fixify:session:marker"`

	// MarkerPoll is how often the marker store checks for foreign changes.
	MarkerPoll time.Duration `env:"SESSION_MARKER_POLL" envDefault:"2s"`
}

// Sanitize applies guardrails to session configuration values.
func (s *SessionConfig) Sanitize() {
	if s.LoadingBound < time.Second {
		s.LoadingBound = time.Second
	}
	if s.MarkerKey == "" {
		s.MarkerKey = "fixify:session:marker"
	}
	if s.MarkerPoll < 100*time.Millisecond {
		s.MarkerPoll = 100 * time.Millisecond
	}
}

// RoutesConfig names the destinations the route gate redirects to.
type RoutesConfig struct {
	Login        string `env:"LOGIN"         envDefault:"/login"`
	AdminHome    string `env:"ADMIN_HOME"    envDefault:"/admin"`
	StaffHome    string `env:"STAFF_HOME"    envDefault:"/staff"`
	CustomerHome string `env:"CUSTOMER_HOME" envDefault:"/dashboard"`
}

// Sanitize applies guardrails to route configuration values.
func (r *RoutesConfig) Sanitize() {
	if r.Login == "" {
		r.Login = "/login"
	}
	if r.AdminHome == "" {
		r.AdminHome = "/admin"
	}
	if r.StaffHome == "" {
		r.StaffHome = "/staff"
	}
	if r.CustomerHome == "" {
		r.CustomerHome = "/dashboard"
	}
}
