package config

import (
	"fmt"
	"strings"
	"time"
)

// AuthMode selects which identity backend the session core talks to.
type AuthMode string

const (
	// AuthModeHosted validates sessions against the hosted backend's REST API.
	AuthModeHosted AuthMode = "hosted"
	// AuthModeOIDC validates sessions against a standalone OIDC provider.
	AuthModeOIDC AuthMode = "oidc"
	// AuthModeMock uses the in-process dev identity (for development only).
	AuthModeMock AuthMode = "mock"
)

// UnmarshalText implements encoding.TextUnmarshaler for AuthMode.
func (a *AuthMode) UnmarshalText(text []byte) error {
	v := strings.ToLower(string(text))
	switch v {
	case "hosted", "oidc", "mock":
		*a = AuthMode(v)
		return nil
	default:
		return fmt.Errorf("invalid AuthMode: %q (valid options: hosted, oidc, mock)", v)
	}
}

// HostedConfig configures the hosted backend client (identity checks,
// profile fetches, auth event stream, file storage).
type HostedConfig struct {
	BaseURL string        `env:"BASE_URL"`
	APIKey  string        `env:"API_KEY"`
	Timeout time.Duration `env:"TIMEOUT" envDefault:"10s"`

	// Events enables the websocket auth event stream.
	Events bool `env:"EVENTS" envDefault:"true"`
}

// OIDCConfig contains standalone OIDC provider configuration.
// Used when AUTH_MODE=oidc; profiles then come from the local database.
type OIDCConfig struct {
	ClientID     string `env:"CLIENT_ID"     envDefault:"fixify"`
	DiscoveryURL string `env:"DISCOVERY_URL"`
	LogoutURL    string `env:"LOGOUT_URL"`
}

// DevAuthConfig controls mock/dev authentication identity.
// Used when AUTH_MODE=mock for development and testing.
type DevAuthConfig struct {
	UserID          string        `env:"USER_ID"          envDefault:"dev-user"`
	Email           string        `env:"EMAIL"            envDefault:"dev@example.com"`
	SessionDuration time.Duration `env:"SESSION_DURATION" envDefault:"8h"`
}

// AuthConfig groups all authentication-related configuration.
type AuthConfig struct {
	// Mode determines which identity backend to use.
	Mode AuthMode `env:"AUTH_MODE" envDefault:"hosted"`

	// Hosted configuration (used when Mode=hosted).
	Hosted HostedConfig `envPrefix:"HOSTED_"`

	// OIDC configuration (used when Mode=oidc).
	OIDC OIDCConfig `envPrefix:"OIDC_"`

	// DevAuth configuration (used when Mode=mock).
	DevAuth DevAuthConfig `envPrefix:"DEV_AUTH_"`
}
