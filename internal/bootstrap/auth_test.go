package bootstrap

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fixify/ui-core/config"
)

func TestBuildSessionBackend_Hosted(t *testing.T) {
	t.Parallel()

	backend, err := BuildSessionBackend(context.Background(), SessionBackendConfig{
		Auth: config.AuthConfig{
			Mode: config.AuthModeHosted,
			Hosted: config.HostedConfig{
				BaseURL: "http://localhost:9999",
				APIKey:  "anon-key",
				Events:  true,
			},
		},
	})
	require.NoError(t, err)
	defer backend.Close()

	assert.NotNil(t, backend.Identity)
	assert.NotNil(t, backend.Profiles)
	assert.NotNil(t, backend.Files)
	assert.NotNil(t, backend.Events)
	assert.NotNil(t, backend.Tokens)
}

func TestBuildSessionBackend_HostedWithoutEvents(t *testing.T) {
	t.Parallel()

	backend, err := BuildSessionBackend(context.Background(), SessionBackendConfig{
		Auth: config.AuthConfig{
			Mode:   config.AuthModeHosted,
			Hosted: config.HostedConfig{BaseURL: "http://localhost:9999", APIKey: "anon-key"},
		},
	})
	require.NoError(t, err)
	defer backend.Close()

	assert.Nil(t, backend.Events)
}

func TestBuildSessionBackend_HostedRequiresBaseURL(t *testing.T) {
	t.Parallel()

	_, err := BuildSessionBackend(context.Background(), SessionBackendConfig{
		Auth: config.AuthConfig{Mode: config.AuthModeHosted},
	})
	assert.Error(t, err)
}

func TestBuildSessionBackend_MockRequiresDev(t *testing.T) {
	t.Parallel()

	_, err := BuildSessionBackend(context.Background(), SessionBackendConfig{
		Auth:  config.AuthConfig{Mode: config.AuthModeMock},
		IsDev: false,
	})
	assert.Error(t, err)
}

func TestBuildSessionBackend_UnsupportedMode(t *testing.T) {
	t.Parallel()

	_, err := BuildSessionBackend(context.Background(), SessionBackendConfig{
		Auth: config.AuthConfig{Mode: config.AuthMode("ldap")},
	})
	assert.Error(t, err)
}
