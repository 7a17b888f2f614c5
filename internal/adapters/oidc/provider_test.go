package oidc

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/oauth2"
)

// droppableTokens is a minimal token source with a discardable credential.
type droppableTokens struct {
	tok     *oauth2.Token
	dropped bool
}

func (d *droppableTokens) Token() (*oauth2.Token, error) {
	if d.dropped || d.tok == nil {
		return nil, errors.New("no token held")
	}
	return d.tok, nil
}

func (d *droppableTokens) Drop() { d.dropped = true }

func TestIssuerFromDiscoveryURL(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"https://id.example.com", "https://id.example.com"},
		{"https://id.example.com/", "https://id.example.com"},
		{"https://id.example.com/.well-known/openid-configuration", "https://id.example.com"},
		{"https://id.example.com/realm/fixify/.well-known/openid-configuration", "https://id.example.com/realm/fixify"},
	}
	for _, c := range cases {
		assert.Equal(t, c.want, issuerFromDiscoveryURL(c.in), "input %q", c.in)
	}
}

func TestNewProvider_Validation(t *testing.T) {
	ctx := context.Background()

	_, err := NewProvider(ctx, ProviderConfig{})
	assert.Error(t, err)

	_, err = NewProvider(ctx, ProviderConfig{ClientID: "fixify"})
	assert.Error(t, err)

	_, err = NewProvider(ctx, ProviderConfig{ClientID: "fixify", DiscoveryURL: "https://id.example.com"})
	assert.Error(t, err, "token source is required")
}

func TestProvider_SignOutDropsCredential(t *testing.T) {
	tokens := &droppableTokens{tok: &oauth2.Token{AccessToken: "at"}}
	p := &Provider{tokens: tokens}

	require.NoError(t, p.SignOut(context.Background()))

	assert.True(t, tokens.dropped, "credential must be discarded even without a logout URL")
	_, err := tokens.Token()
	assert.Error(t, err)
}

func TestProvider_SignOutDropsCredentialWhenIssuerFails(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "end-session unavailable", http.StatusInternalServerError)
	}))
	defer srv.Close()

	tokens := &droppableTokens{tok: &oauth2.Token{AccessToken: "at"}}
	p := &Provider{
		tokens:     tokens,
		logoutURL:  srv.URL,
		httpClient: srv.Client(),
	}

	err := p.SignOut(context.Background())

	require.Error(t, err, "issuer refused the logout")
	assert.True(t, tokens.dropped, "a failed logout must still discard the credential")
}

func TestFirstNonEmpty(t *testing.T) {
	assert.Equal(t, "b", firstNonEmpty("", "b", "c"))
	assert.Equal(t, "", firstNonEmpty("", ""))
}
