package devauth

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fixify/ui-core/internal/ports"
)

func TestNewProvider_Validation(t *testing.T) {
	_, err := NewProvider(Config{})
	assert.Error(t, err)

	_, err = NewProvider(Config{UserID: "dev-user"})
	assert.Error(t, err)

	p, err := NewProvider(Config{UserID: "dev-user", Email: "dev@example.com"})
	require.NoError(t, err)
	assert.NotNil(t, p)
}

func TestProvider_CurrentAndSignOut(t *testing.T) {
	p, err := NewProvider(Config{UserID: "dev-user", Email: "dev@example.com"})
	require.NoError(t, err)
	ctx := context.Background()

	id, err := p.Current(ctx)
	require.NoError(t, err)
	assert.Equal(t, "dev-user", id.ID)
	assert.Equal(t, "dev@example.com", id.Email)
	assert.True(t, id.ExpiresAt.After(time.Now()))

	require.NoError(t, p.SignOut(ctx))
	_, err = p.Current(ctx)
	assert.ErrorIs(t, err, ports.ErrNoIdentity)

	p.Reset()
	_, err = p.Current(ctx)
	assert.NoError(t, err)
}

func TestProvider_RefreshesExpiry(t *testing.T) {
	p, err := NewProvider(Config{UserID: "dev-user", Email: "dev@example.com", SessionDuration: time.Minute})
	require.NoError(t, err)

	id, err := p.Current(context.Background())
	require.NoError(t, err)
	// A one-minute session is always inside the refresh window, so expiry
	// moves forward on each call.
	assert.True(t, time.Until(id.ExpiresAt) > 30*time.Second)
}
